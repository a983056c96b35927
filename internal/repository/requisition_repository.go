package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/condo-maintenance/internal/model"
)

type RequisitionRepo struct{ DB *sql.DB }

func NewRequisitionRepo(db *sql.DB) *RequisitionRepo { return &RequisitionRepo{DB: db} }

const requisitionColumns = "id,user_id,complex_id,title,content,location,img_url,priority,status,created_at"

// Create inserts a requisition and returns it with the generated ID.
func (r *RequisitionRepo) Create(ctx context.Context, req model.Requisition) (model.Requisition, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO requisitions (user_id, complex_id, title, content, location, img_url, priority, status) VALUES (?,?,?,?,?,?,?,?)",
		req.UserID, req.ComplexID, req.Title, req.Content, req.Location, req.ImgURL, req.Priority, req.Status)
	if err != nil {
		return model.Requisition{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Requisition{}, err
	}
	req.ID = uint64(id)
	return req, nil
}

// ListByUser returns the requisitions filed by one user.
func (r *RequisitionRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Requisition, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+requisitionColumns+" FROM requisitions WHERE user_id=? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// ListAll returns every requisition, newest first. Used for the triage view
// of managers and maintenance staff.
func (r *RequisitionRepo) ListAll(ctx context.Context) ([]model.Requisition, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+requisitionColumns+" FROM requisitions ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func collect(rows *sql.Rows) ([]model.Requisition, error) {
	defer rows.Close()
	out := make([]model.Requisition, 0)
	for rows.Next() {
		var q model.Requisition
		if err := rows.Scan(&q.ID, &q.UserID, &q.ComplexID, &q.Title, &q.Content,
			&q.Location, &q.ImgURL, &q.Priority, &q.Status, &q.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
