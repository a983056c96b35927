package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/condo-maintenance/internal/auth"
	"github.com/iliyamo/condo-maintenance/internal/middleware"
	"github.com/iliyamo/condo-maintenance/internal/model"
	"github.com/iliyamo/condo-maintenance/internal/queue"
	"github.com/iliyamo/condo-maintenance/internal/repository"
)

// RequisitionHandler implements filing and listing of maintenance tickets.
// Publish is the broker hook for requisition.created events; it may be nil
// (tests, broker-less deployments) and failures never affect the request.
type RequisitionHandler struct {
	Users        UserStore
	Requisitions RequisitionStore
	Publish      func(ctx context.Context, event queue.RequisitionCreatedEvent) error
}

func NewRequisitionHandler(users UserStore, reqs RequisitionStore,
	publish func(ctx context.Context, event queue.RequisitionCreatedEvent) error) *RequisitionHandler {
	return &RequisitionHandler{Users: users, Requisitions: reqs, Publish: publish}
}

type createRequisitionReq struct {
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	Location string  `json:"location"`
	ImgURL   *string `json:"imgUrl"`
	Priority string  `json:"priority"`
}

type requisitionPart struct {
	ID        uint64  `json:"id"`
	UserID    uint64  `json:"userId"`
	ComplexID uint64  `json:"complexId"`
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	Location  string  `json:"location"`
	ImgURL    *string `json:"imgUrl"`
	Priority  string  `json:"priority"`
	Status    string  `json:"status"`
}

// Create files a new requisition for the authenticated user. The complex is
// always taken from the creator's user row; a complexId in the body is
// ignored. Status is fixed to PENDING.
func (h *RequisitionHandler) Create(c echo.Context) error {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
	}

	var req createRequisitionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Title == "" || req.Content == "" || req.Location == "" || req.Priority == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "all required fields must be filled"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	creator, err := h.Users.GetByID(ctx, ident.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		c.Logger().Errorf("user lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create requisition"})
	}

	q, err := h.Requisitions.Create(ctx, model.Requisition{
		UserID:    creator.ID,
		ComplexID: creator.ComplexID,
		Title:     req.Title,
		Content:   req.Content,
		Location:  req.Location,
		ImgURL:    req.ImgURL,
		Priority:  req.Priority,
		Status:    model.RequisitionStatusPending,
	})
	if err != nil {
		c.Logger().Errorf("create requisition failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create requisition"})
	}

	if h.Publish != nil {
		event := queue.RequisitionCreatedEvent{
			RequisitionID: q.ID,
			UserID:        creator.ID,
			Username:      creator.Username,
			ComplexID:     q.ComplexID,
			Title:         q.Title,
			Location:      q.Location,
			Priority:      q.Priority,
			CreatedAt:     time.Now().UTC().Format(time.RFC3339),
		}
		// Fire and forget; the ticket is already committed.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = h.Publish(ctx, event)
		}()
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message":     "requisition created",
		"requisition": toRequisitionPart(q),
	})
}

// List returns the caller's requisitions. Residents see only their own
// tickets; every managerial role gets the full triage view.
func (h *RequisitionHandler) List(c echo.Context) error {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	var (
		rows []model.Requisition
		err  error
	)
	if ident.Role == auth.RoleMorador {
		rows, err = h.Requisitions.ListByUser(ctx, ident.ID)
	} else {
		rows, err = h.Requisitions.ListAll(ctx)
	}
	if err != nil {
		c.Logger().Errorf("list requisitions failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list requisitions"})
	}

	out := make([]requisitionPart, 0, len(rows))
	for _, q := range rows {
		out = append(out, toRequisitionPart(q))
	}
	return c.JSON(http.StatusOK, out)
}

func toRequisitionPart(q model.Requisition) requisitionPart {
	return requisitionPart{
		ID:        q.ID,
		UserID:    q.UserID,
		ComplexID: q.ComplexID,
		Title:     q.Title,
		Content:   q.Content,
		Location:  q.Location,
		ImgURL:    q.ImgURL,
		Priority:  q.Priority,
		Status:    q.Status,
	}
}
