package handler_test

import (
	"testing"

	"github.com/iliyamo/condo-maintenance/internal/model"
)

func TestListComplexes(t *testing.T) {
	v := newEnv(t)
	v.complexes.rows = append(v.complexes.rows, model.Complex{ID: 2, Name: "Beta Gardens"})

	rec := v.do("GET", "/v1/complexes", "", nil)
	if rec.Code != 200 {
		t.Fatalf("list: status %d", rec.Code)
	}
	var list []struct {
		Name string `json:"name"`
	}
	decode(t, rec, &list)
	if len(list) != 2 {
		t.Fatalf("got %d complexes, want 2", len(list))
	}
	if list[0].Name != "Alpha Residences" || list[1].Name != "Beta Gardens" {
		t.Errorf("names = %+v", list)
	}
}
