package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ComplexHandler serves the public complex listing backing the registration
// form's picker.
type ComplexHandler struct {
	Complexes ComplexStore
}

func NewComplexHandler(complexes ComplexStore) *ComplexHandler {
	return &ComplexHandler{Complexes: complexes}
}

type complexPart struct {
	Name string `json:"name"`
}

// List returns the names of every registered complex.
func (h *ComplexHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	names, err := h.Complexes.ListNames(ctx)
	if err != nil {
		c.Logger().Errorf("complex list failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list complexes"})
	}

	out := make([]complexPart, 0, len(names))
	for _, name := range names {
		out = append(out, complexPart{Name: name})
	}
	return c.JSON(http.StatusOK, out)
}
