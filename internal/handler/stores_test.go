package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/condo-maintenance/internal/auth"
	"github.com/iliyamo/condo-maintenance/internal/config"
	"github.com/iliyamo/condo-maintenance/internal/handler"
	"github.com/iliyamo/condo-maintenance/internal/model"
	"github.com/iliyamo/condo-maintenance/internal/repository"
	"github.com/iliyamo/condo-maintenance/internal/router"
	"github.com/iliyamo/condo-maintenance/internal/utils"
)

// In-memory store fakes. They mirror the repository sentinel-error contract
// so handlers exercise the same paths as against MySQL.

type memUserStore struct {
	seq  uint64
	rows map[uint64]model.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{rows: make(map[uint64]model.User)}
}

func (s *memUserStore) add(u model.User) model.User {
	s.seq++
	u.ID = s.seq
	s.rows[u.ID] = u
	return u
}

func (s *memUserStore) Create(_ context.Context, username, passwordHash, name string, complexID uint64, complement string) (model.User, error) {
	for _, u := range s.rows {
		if u.Username == username {
			return model.User{}, repository.ErrUsernameExists
		}
	}
	return s.add(model.User{
		Username:     username,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         auth.RoleNaoValidado,
		Status:       true,
		ComplexID:    complexID,
		Complement:   complement,
	}), nil
}

func (s *memUserStore) GetByUsername(_ context.Context, username string) (model.User, error) {
	for _, u := range s.rows {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (s *memUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := s.rows[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (s *memUserStore) UpdateRole(_ context.Context, id uint64, role auth.Role) error {
	u, ok := s.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Role = role
	s.rows[id] = u
	return nil
}

func (s *memUserStore) Delete(_ context.Context, id uint64) error {
	if _, ok := s.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

type memComplexStore struct {
	rows []model.Complex
}

func (s *memComplexStore) GetByNameSubstring(_ context.Context, name string) (model.Complex, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, c := range s.rows {
		if strings.Contains(strings.ToLower(c.Name), needle) {
			return c, nil
		}
	}
	return model.Complex{}, repository.ErrNotFound
}

func (s *memComplexStore) ListNames(_ context.Context) ([]string, error) {
	names := make([]string, 0, len(s.rows))
	for _, c := range s.rows {
		names = append(names, c.Name)
	}
	return names, nil
}

type memRequisitionStore struct {
	seq  uint64
	rows []model.Requisition
}

func (s *memRequisitionStore) Create(_ context.Context, req model.Requisition) (model.Requisition, error) {
	s.seq++
	req.ID = s.seq
	req.CreatedAt = time.Now().UTC()
	s.rows = append(s.rows, req)
	return req, nil
}

func (s *memRequisitionStore) ListByUser(_ context.Context, userID uint64) ([]model.Requisition, error) {
	out := make([]model.Requisition, 0)
	for _, q := range s.rows {
		if q.UserID == userID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *memRequisitionStore) ListAll(_ context.Context) ([]model.Requisition, error) {
	return append([]model.Requisition(nil), s.rows...), nil
}

type memTokenStore struct {
	rows map[uint64]auth.StoredPair
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{rows: make(map[uint64]auth.StoredPair)}
}

func (s *memTokenStore) Replace(_ context.Context, p auth.StoredPair) error {
	s.rows[p.UserID] = p
	return nil
}

func (s *memTokenStore) FindByAccess(_ context.Context, accessToken string) (auth.StoredPair, error) {
	for _, p := range s.rows {
		if p.AccessToken == accessToken {
			return p, nil
		}
	}
	return auth.StoredPair{}, auth.ErrNoPair
}

func (s *memTokenStore) FindByRefresh(_ context.Context, refreshToken string) (auth.StoredPair, error) {
	for _, p := range s.rows {
		if p.RefreshToken == refreshToken {
			return p, nil
		}
	}
	return auth.StoredPair{}, auth.ErrNoPair
}

func (s *memTokenStore) Update(_ context.Context, p auth.StoredPair) error {
	row, ok := s.rows[p.UserID]
	if !ok {
		return auth.ErrNoPair
	}
	row.AccessToken = p.AccessToken
	row.RefreshToken = p.RefreshToken
	s.rows[p.UserID] = row
	return nil
}

func (s *memTokenStore) DeleteByUser(_ context.Context, userID uint64) error {
	delete(s.rows, userID)
	return nil
}

// env is a fully wired application over in-memory stores, served through the
// real router and middleware chain.
type env struct {
	e         *echo.Echo
	users     *memUserStore
	complexes *memComplexStore
	reqs      *memRequisitionStore
	tokens    *auth.Service
}

func newEnv(t *testing.T) *env {
	t.Helper()
	users := newMemUserStore()
	complexes := &memComplexStore{rows: []model.Complex{{ID: 1, Name: "Alpha Residences"}}}
	reqs := &memRequisitionStore{}
	tokens := auth.NewService(auth.Config{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}, newMemTokenStore())
	cfg := config.Config{BcryptCost: bcrypt.MinCost}

	h := router.Handlers{
		Auth:         handler.NewAuthHandler(cfg, users, complexes, tokens),
		Users:        handler.NewUserHandler(users),
		Complexes:    handler.NewComplexHandler(complexes),
		Requisitions: handler.NewRequisitionHandler(users, reqs, nil),
	}
	e := echo.New()
	router.Register(e, h, tokens, nil)
	return &env{e: e, users: users, complexes: complexes, reqs: reqs, tokens: tokens}
}

// seedUser inserts a user directly into the store, bypassing registration.
func (v *env) seedUser(t *testing.T, username, password string, role auth.Role) model.User {
	t.Helper()
	hash, err := utils.HashPassword(password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return v.users.add(model.User{
		Username:     username,
		PasswordHash: hash,
		Name:         username,
		Role:         role,
		Status:       true,
		ComplexID:    1,
		Complement:   "ap 1",
	})
}

// login performs a login request and returns the decoded response.
func (v *env) login(t *testing.T, username, password string) (string, string) {
	t.Helper()
	rec := v.do("POST", "/v1/auth/login", "", map[string]string{
		"username": username, "password": password,
	})
	if rec.Code != 200 {
		t.Fatalf("login %q: status %d body %s", username, rec.Code, rec.Body.String())
	}
	var resp struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	decode(t, rec, &resp)
	return resp.AccessToken, resp.RefreshToken
}

func (v *env) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	v.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}
