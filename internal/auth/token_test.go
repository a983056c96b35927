package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeTokenStore is an in-memory TokenStore keyed by user ID, mirroring the
// UNIQUE(user_id) constraint of the real table.
type fakeTokenStore struct {
	rows   map[uint64]StoredPair
	writes int
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{rows: make(map[uint64]StoredPair)}
}

func (f *fakeTokenStore) Replace(_ context.Context, p StoredPair) error {
	f.rows[p.UserID] = p
	f.writes++
	return nil
}

func (f *fakeTokenStore) FindByAccess(_ context.Context, accessToken string) (StoredPair, error) {
	for _, p := range f.rows {
		if p.AccessToken == accessToken {
			return p, nil
		}
	}
	return StoredPair{}, ErrNoPair
}

func (f *fakeTokenStore) FindByRefresh(_ context.Context, refreshToken string) (StoredPair, error) {
	for _, p := range f.rows {
		if p.RefreshToken == refreshToken {
			return p, nil
		}
	}
	return StoredPair{}, ErrNoPair
}

func (f *fakeTokenStore) Update(_ context.Context, p StoredPair) error {
	row, ok := f.rows[p.UserID]
	if !ok {
		return ErrNoPair
	}
	row.AccessToken = p.AccessToken
	row.RefreshToken = p.RefreshToken
	f.rows[p.UserID] = row
	f.writes++
	return nil
}

func (f *fakeTokenStore) DeleteByUser(_ context.Context, userID uint64) error {
	delete(f.rows, userID)
	f.writes++
	return nil
}

func testConfig() Config {
	return Config{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}
}

func testIdentity() Identity {
	return Identity{ID: 42, Username: "ana", Role: RoleMorador}
}

func TestIssueReplacesPriorPair(t *testing.T) {
	store := newFakeTokenStore()
	svc := NewService(testConfig(), store)
	ctx := context.Background()

	first, err := svc.Issue(ctx, testIdentity())
	if err != nil {
		t.Fatalf("first issue: %v", err)
	}
	second, err := svc.Issue(ctx, testIdentity())
	if err != nil {
		t.Fatalf("second issue: %v", err)
	}

	if len(store.rows) != 1 {
		t.Fatalf("expected exactly one stored pair, got %d", len(store.rows))
	}
	if ok, _ := svc.ValidateAccess(ctx, first.AccessToken); ok {
		t.Error("first pair still validates after reissue")
	}
	if ok, err := svc.ValidateAccess(ctx, second.AccessToken); err != nil || !ok {
		t.Errorf("second pair does not validate: ok=%v err=%v", ok, err)
	}
}

func TestValidateAccessExpiredRow(t *testing.T) {
	store := newFakeTokenStore()
	svc := NewService(testConfig(), store)
	ctx := context.Background()

	base := time.Now().UTC()
	svc.now = func() time.Time { return base }
	pair, err := svc.Issue(ctx, testIdentity())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Jump past the row expiry. The row still exists but must not validate.
	svc.now = func() time.Time { return base.Add(8 * 24 * time.Hour) }
	ok, err := svc.ValidateAccess(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if ok {
		t.Error("expired row validated")
	}
	if len(store.rows) != 1 {
		t.Error("expired row was purged; lookup-time invalidation expected instead")
	}
}

func TestValidateAccessUnknownToken(t *testing.T) {
	svc := NewService(testConfig(), newFakeTokenStore())
	ok, err := svc.ValidateAccess(context.Background(), "no-such-token")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if ok {
		t.Error("unknown token validated")
	}
}

func TestRotateUnknownRefreshToken(t *testing.T) {
	store := newFakeTokenStore()
	svc := NewService(testConfig(), store)

	_, err := svc.Rotate(context.Background(), "never-issued")
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("err = %v, want ErrInvalidRefreshToken", err)
	}
	if store.writes != 0 {
		t.Errorf("rotate with unknown token performed %d writes", store.writes)
	}
}

func TestRotateTamperedRefreshToken(t *testing.T) {
	store := newFakeTokenStore()
	svc := NewService(testConfig(), store)
	ctx := context.Background()

	// A row exists but its refresh token was signed with the wrong key,
	// as if the stored value had been tampered with.
	forged := NewService(Config{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("attacker-key"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}, newFakeTokenStore())
	bad, err := forged.mint(testIdentity())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	store.rows[42] = StoredPair{
		UserID:       42,
		AccessToken:  bad.AccessToken,
		RefreshToken: bad.RefreshToken,
		ExpiresAt:    time.Now().UTC().Add(time.Hour),
	}
	writes := store.writes

	_, err = svc.Rotate(ctx, bad.RefreshToken)
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("err = %v, want ErrInvalidRefreshToken", err)
	}
	if store.writes != writes {
		t.Error("rotate with tampered token wrote to the store")
	}
}

func TestRotateOverwritesPairInPlace(t *testing.T) {
	store := newFakeTokenStore()
	svc := NewService(testConfig(), store)
	ctx := context.Background()

	base := time.Now().UTC()
	svc.now = func() time.Time { return base }
	old, err := svc.Issue(ctx, testIdentity())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	svc.now = func() time.Time { return base.Add(time.Minute) }
	fresh, err := svc.Rotate(ctx, old.RefreshToken)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if fresh.AccessToken == old.AccessToken || fresh.RefreshToken == old.RefreshToken {
		t.Fatal("rotate returned the old credentials")
	}

	// The old access token is unexpired at the JWT level but the row now
	// holds the new values, so the storage gate rejects it.
	if ok, _ := svc.ValidateAccess(ctx, old.AccessToken); ok {
		t.Error("old access token still validates after rotation")
	}
	if ok, err := svc.ValidateAccess(ctx, fresh.AccessToken); err != nil || !ok {
		t.Errorf("new access token does not validate: ok=%v err=%v", ok, err)
	}
	if len(store.rows) != 1 {
		t.Errorf("expected one row after rotation, got %d", len(store.rows))
	}

	ident, err := svc.ParseAccess(fresh.AccessToken)
	if err != nil {
		t.Fatalf("parse rotated access: %v", err)
	}
	if ident != testIdentity() {
		t.Errorf("rotated identity = %+v, want %+v", ident, testIdentity())
	}
}

func TestParseAccess(t *testing.T) {
	svc := NewService(testConfig(), newFakeTokenStore())
	ctx := context.Background()

	pair, err := svc.Issue(ctx, testIdentity())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	ident, err := svc.ParseAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ident != testIdentity() {
		t.Errorf("identity = %+v, want %+v", ident, testIdentity())
	}

	// Refresh tokens are signed with a different key and must not pass as
	// access tokens.
	if _, err := svc.ParseAccess(pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("refresh token parsed as access token: %v", err)
	}
	if _, err := svc.ParseAccess("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token parsed: %v", err)
	}
}

func TestParseAccessExpired(t *testing.T) {
	svc := NewService(testConfig(), newFakeTokenStore())
	ctx := context.Background()

	base := time.Now().UTC()
	svc.now = func() time.Time { return base }
	pair, err := svc.Issue(ctx, testIdentity())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Past the access TTL but inside the row lifetime: the storage gate
	// still passes, the signature/expiry check must not.
	svc.now = func() time.Time { return base.Add(16 * time.Minute) }
	if ok, _ := svc.ValidateAccess(ctx, pair.AccessToken); !ok {
		t.Error("row gate rejected an unexpired row")
	}
	if _, err := svc.ParseAccess(pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired access token parsed: %v", err)
	}
}

func TestRevoke(t *testing.T) {
	store := newFakeTokenStore()
	svc := NewService(testConfig(), store)
	ctx := context.Background()

	pair, err := svc.Issue(ctx, testIdentity())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := svc.Revoke(ctx, 42); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if ok, _ := svc.ValidateAccess(ctx, pair.AccessToken); ok {
		t.Error("revoked access token still validates")
	}
}
