package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/condo-maintenance/internal/auth"
)

// TokenRepo persists token pairs, one row per user. The table carries
// UNIQUE(user_id); together with the upsert in Replace that enforces the
// at-most-one-pair invariant without a delete/insert window.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Replace upserts the pair for p.UserID in a single statement. A concurrent
// reader sees either the old row or the new one, never neither.
func (r *TokenRepo) Replace(ctx context.Context, p auth.StoredPair) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO tokens (user_id, access_token, refresh_token, expires_at)
		 VALUES (?,?,?,?)
		 ON DUPLICATE KEY UPDATE
		 access_token=VALUES(access_token), refresh_token=VALUES(refresh_token), expires_at=VALUES(expires_at)`,
		p.UserID, p.AccessToken, p.RefreshToken, p.ExpiresAt)
	return err
}

// FindByAccess looks a pair up by exact access-token match.
func (r *TokenRepo) FindByAccess(ctx context.Context, accessToken string) (auth.StoredPair, error) {
	return r.findBy(ctx, "access_token", accessToken)
}

// FindByRefresh looks a pair up by exact refresh-token match.
func (r *TokenRepo) FindByRefresh(ctx context.Context, refreshToken string) (auth.StoredPair, error) {
	return r.findBy(ctx, "refresh_token", refreshToken)
}

// Update rewrites the token columns of the user's existing row. Expiry is
// left untouched: the row lives as long as the original refresh grant.
func (r *TokenRepo) Update(ctx context.Context, p auth.StoredPair) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE tokens SET access_token=?, refresh_token=? WHERE user_id=?",
		p.AccessToken, p.RefreshToken, p.UserID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return auth.ErrNoPair
	}
	return nil
}

// DeleteByUser drops the user's pair, if any.
func (r *TokenRepo) DeleteByUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM tokens WHERE user_id=?", userID)
	return err
}

func (r *TokenRepo) findBy(ctx context.Context, column, value string) (auth.StoredPair, error) {
	var p auth.StoredPair
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, access_token, refresh_token, expires_at FROM tokens WHERE "+column+"=? LIMIT 1",
		value).Scan(&p.UserID, &p.AccessToken, &p.RefreshToken, &p.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.StoredPair{}, auth.ErrNoPair
	}
	if err != nil {
		return auth.StoredPair{}, err
	}
	return p, nil
}
