package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoPair is returned by TokenStore implementations when no row
	// matches the lookup. The service fails closed on it.
	ErrNoPair = errors.New("token pair not found")

	// ErrInvalidToken covers signature mismatch, malformed claims and
	// JWT-level expiry on an access token.
	ErrInvalidToken = errors.New("invalid token")

	// ErrInvalidRefreshToken is returned by Rotate for both an unknown
	// refresh token and one that fails signature verification.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// Identity is the authenticated principal embedded in every token pair and
// recovered from an access token by ParseAccess.
type Identity struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Pair is the credential pair returned to clients on login and refresh.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// StoredPair mirrors the persisted token row. At most one row exists per
// user; Replace enforces that atomically in the store.
type StoredPair struct {
	UserID       uint64
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// TokenStore is the persistence contract the token service needs. The SQL
// implementation lives in internal/repository; tests substitute an in-memory
// fake.
type TokenStore interface {
	// Replace atomically upserts the one pair belonging to p.UserID,
	// discarding any previous pair. It must not leave a window where the
	// user has zero or two rows.
	Replace(ctx context.Context, p StoredPair) error
	FindByAccess(ctx context.Context, accessToken string) (StoredPair, error)
	FindByRefresh(ctx context.Context, refreshToken string) (StoredPair, error)
	// Update rewrites the token columns of the existing row for
	// p.UserID in place, leaving its expiry untouched.
	Update(ctx context.Context, p StoredPair) error
	DeleteByUser(ctx context.Context, userID uint64) error
}

// Config carries the signing material and lifetimes for both token kinds.
// Access and refresh tokens are signed with distinct secrets so that a
// leaked refresh key cannot be used to mint access tokens and vice versa.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration // e.g. 15 * time.Minute
	RefreshTTL    time.Duration // e.g. 7 * 24 * time.Hour
}

// Service implements the token lifecycle: issuance, storage-backed
// validation, rotation and revocation. A credential is only accepted when it
// passes BOTH the persisted-row check (instant revocation on reissue) and
// the cryptographic check (ParseAccess).
type Service struct {
	cfg   Config
	store TokenStore
	now   func() time.Time // injectable clock for tests
}

func NewService(cfg Config, store TokenStore) *Service {
	return &Service{cfg: cfg, store: store, now: func() time.Time { return time.Now().UTC() }}
}

// Issue mints a fresh access+refresh pair for ident and persists it,
// replacing any pair the user already had. The stored row expires with the
// refresh token; the shorter access lifetime is enforced by the JWT itself.
func (s *Service) Issue(ctx context.Context, ident Identity) (Pair, error) {
	pair, err := s.mint(ident)
	if err != nil {
		return Pair{}, err
	}
	row := StoredPair{
		UserID:       ident.ID,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    s.now().Add(s.cfg.RefreshTTL),
	}
	if err := s.store.Replace(ctx, row); err != nil {
		return Pair{}, err
	}
	return pair, nil
}

// ValidateAccess is the O(1) persisted-state gate: the token must match a
// stored row that has not expired. No claims are decoded here; callers run
// ParseAccess afterwards for the cryptographic check.
func (s *Service) ValidateAccess(ctx context.Context, accessToken string) (bool, error) {
	row, err := s.store.FindByAccess(ctx, accessToken)
	if errors.Is(err, ErrNoPair) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return s.now().Before(row.ExpiresAt), nil
}

// Rotate exchanges a refresh token for a brand-new pair. The stored row is
// updated in place rather than deleted and recreated, so a concurrent
// request can never observe a missing row mid-rotation. The old access token
// stops validating the moment the row is rewritten. Unknown and
// signature-invalid refresh tokens both yield ErrInvalidRefreshToken with no
// write performed.
func (s *Service) Rotate(ctx context.Context, refreshToken string) (Pair, error) {
	row, err := s.store.FindByRefresh(ctx, refreshToken)
	if errors.Is(err, ErrNoPair) {
		return Pair{}, ErrInvalidRefreshToken
	}
	if err != nil {
		return Pair{}, err
	}
	ident, err := s.parse(refreshToken, s.cfg.RefreshSecret)
	if err != nil {
		return Pair{}, ErrInvalidRefreshToken
	}
	pair, err := s.mint(ident)
	if err != nil {
		return Pair{}, err
	}
	update := StoredPair{
		UserID:       row.UserID,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}
	if err := s.store.Update(ctx, update); err != nil {
		return Pair{}, err
	}
	return pair, nil
}

// ParseAccess verifies the access token's signature and JWT expiry and
// decodes the embedded identity.
func (s *Service) ParseAccess(accessToken string) (Identity, error) {
	return s.parse(accessToken, s.cfg.AccessSecret)
}

// Revoke drops the user's pair outright. Nothing in the login flow calls
// this (invalidation normally rides on reissue); it backs the logout
// endpoint.
func (s *Service) Revoke(ctx context.Context, userID uint64) error {
	return s.store.DeleteByUser(ctx, userID)
}

// mint signs both tokens of a pair for ident, each with its own secret and
// lifetime.
func (s *Service) mint(ident Identity) (Pair, error) {
	access, err := s.sign(ident, s.cfg.AccessSecret, s.cfg.AccessTTL)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := s.sign(ident, s.cfg.RefreshSecret, s.cfg.RefreshTTL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) sign(ident Identity, secret []byte, ttl time.Duration) (string, error) {
	// The jti nonce keeps tokens unique even when two pairs are minted
	// within the same second; without it a rotation could hand back the
	// byte-identical credential it was meant to replace.
	jti, err := randomHex(8)
	if err != nil {
		return "", err
	}
	now := s.now()
	claims := jwt.MapClaims{
		"id":       ident.ID,
		"username": ident.Username,
		"role":     int(ident.Role),
		"jti":      jti,
		"exp":      now.Add(ttl).Unix(),
		"iat":      now.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// randomHex returns a hex string built from n bytes of cryptographically
// secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func (s *Service) parse(token string, secret []byte) (Identity, error) {
	tok, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything but HMAC; without this an
		// attacker could downgrade to "none" or an asymmetric scheme.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !tok.Valid {
		return Identity{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	id, ok := claims["id"].(float64)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	username, ok := claims["username"].(string)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	roleNum, ok := claims["role"].(float64)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	role := Role(int(roleNum))
	if !role.Valid() {
		return Identity{}, ErrInvalidToken
	}
	return Identity{ID: uint64(id), Username: username, Role: role}, nil
}
