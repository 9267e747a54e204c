package auth

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/justsurfingit/job-tracker-client/internal/api"
	"github.com/justsurfingit/job-tracker-client/internal/database"
	"github.com/justsurfingit/job-tracker-client/internal/dtos"
	"github.com/justsurfingit/job-tracker-client/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeRefresher struct {
	mu    sync.Mutex
	calls int
	resp  *dtos.AuthResponse
	err   error
}

func (f *fakeRefresher) Refresh(_ context.Context, _ string) (*dtos.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.resp, f.err
}

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(filepath.Join(t.TempDir(), "session.db"), zap.NewNop())
	require.NoError(t, err)
	return db
}

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestBegin_DecodesClaimsAndPersists(t *testing.T) {
	db := openDB(t)
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	s := NewSession(db, nil, zap.NewNop())

	err := s.Begin(&dtos.AuthResponse{
		AccessToken: signed(t, jwt.MapClaims{
			"sub": "u-1", "email": "ada@example.com", "name": "Ada", "role": "admin", "exp": exp.Unix(),
		}),
		RefreshToken: "r-1",
	})
	require.NoError(t, err)

	id, err := s.Identity()
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: "u-1", Email: "ada@example.com", Name: "Ada", Role: "admin"}, id)
	assert.True(t, s.IsAdmin())

	// a fresh store sees the same session after hydrating
	other := NewSession(db, nil, zap.NewNop())
	require.NoError(t, other.Hydrate())
	require.True(t, other.LoggedIn())
	tok, err := other.Token()
	require.NoError(t, err)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.Equal(t, "r-1", tok.RefreshToken)
	assert.True(t, tok.Expiry.Equal(exp))
}

func TestBegin_UserOverridesClaimsAndRecordsOnboarding(t *testing.T) {
	db := openDB(t)
	s := NewSession(db, nil, zap.NewNop())

	require.NoError(t, s.Begin(&dtos.AuthResponse{
		AccessToken: "opaque-token",
		ExpiresIn:   3600,
		User:        &dtos.User{ID: "u-2", Email: "grace@example.com", OnboardingCompleted: true},
	}))

	id, err := s.Identity()
	require.NoError(t, err)
	assert.Equal(t, "u-2", id.UserID)

	v, ok, err := database.GetSetting(db, database.OnboardingCompletedKey("u-2"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", v)
}

func TestBegin_RequiresUser(t *testing.T) {
	s := NewSession(openDB(t), nil, zap.NewNop())
	assert.Error(t, s.Begin(&dtos.AuthResponse{AccessToken: "opaque"}))
	assert.Error(t, s.Begin(&dtos.AuthResponse{}))
	assert.False(t, s.LoggedIn())
}

func TestHydrate_Empty(t *testing.T) {
	s := NewSession(openDB(t), nil, zap.NewNop())
	require.NoError(t, s.Hydrate())
	assert.False(t, s.LoggedIn())

	_, err := s.Token()
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	_, err = s.Identity()
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestToken_RefreshesWhenExpired(t *testing.T) {
	db := openDB(t)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	refresher := &fakeRefresher{resp: &dtos.AuthResponse{
		AccessToken: signed(t, jwt.MapClaims{"sub": "u-1", "exp": now.Add(time.Hour).Unix()}),
	}}
	s := NewSession(db, refresher, zap.NewNop())
	s.now = func() time.Time { return now }

	require.NoError(t, s.Begin(&dtos.AuthResponse{
		AccessToken:  signed(t, jwt.MapClaims{"sub": "u-1", "exp": now.Add(5 * time.Second).Unix()}),
		RefreshToken: "keep-me",
	}))

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Token()
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, refresher.calls, "concurrent callers share one refresh")
	assert.Equal(t, "keep-me", s.RefreshToken(), "refresh token survives a non-rotating refresh")
	tok, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, refresher.resp.AccessToken, tok.AccessToken)
}

func TestToken_RejectedRefreshClearsSession(t *testing.T) {
	db := openDB(t)
	now := time.Now()
	refresher := &fakeRefresher{err: &api.Error{Status: 401, Message: "refresh token revoked"}}
	s := NewSession(db, refresher, zap.NewNop())

	require.NoError(t, s.Begin(&dtos.AuthResponse{
		AccessToken:  signed(t, jwt.MapClaims{"sub": "u-1", "exp": now.Add(-time.Minute).Unix()}),
		RefreshToken: "r",
	}))
	require.NoError(t, db.Create(&models.OnboardingDraft{UserID: "u-1", Data: "{}"}).Error)

	_, err := s.Token()
	require.ErrorIs(t, err, ErrNotLoggedIn)
	assert.Contains(t, err.Error(), "refresh token revoked")
	assert.False(t, s.LoggedIn())

	var count int64
	db.Model(&models.OnboardingDraft{}).Count(&count)
	assert.Zero(t, count, "draft mirror is dropped with the session")
}

func TestToken_TransientRefreshFailureKeepsSession(t *testing.T) {
	refresher := &fakeRefresher{err: errors.New("connection reset")}
	s := NewSession(openDB(t), refresher, zap.NewNop())

	require.NoError(t, s.Begin(&dtos.AuthResponse{
		AccessToken:  signed(t, jwt.MapClaims{"sub": "u-1", "exp": time.Now().Add(-time.Minute).Unix()}),
		RefreshToken: "r",
	}))

	_, err := s.Token()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotLoggedIn)
	assert.True(t, s.LoggedIn())
}

func TestClear(t *testing.T) {
	db := openDB(t)
	s := NewSession(db, nil, zap.NewNop())
	require.NoError(t, s.Begin(&dtos.AuthResponse{AccessToken: "opaque", User: &dtos.User{ID: "u-3"}}))

	require.NoError(t, s.Clear())
	assert.False(t, s.LoggedIn())
	assert.Empty(t, s.RefreshToken())

	again := NewSession(db, nil, zap.NewNop())
	require.NoError(t, again.Hydrate())
	assert.False(t, again.LoggedIn())
}
