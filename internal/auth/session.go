// Package auth keeps the logged-in session: tokens, the user they belong to,
// and their persistence in the local store.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/justsurfingit/job-tracker-client/internal/api"
	"github.com/justsurfingit/job-tracker-client/internal/database"
	"github.com/justsurfingit/job-tracker-client/internal/dtos"
	"github.com/justsurfingit/job-tracker-client/internal/models"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

var ErrNotLoggedIn = errors.New("not logged in")

// refreshes happen this long before the access token actually expires
const expiryDelta = 10 * time.Second

const refreshTimeout = 15 * time.Second

// Refresher exchanges a refresh token for a new token pair.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*dtos.AuthResponse, error)
}

// Identity is who the session belongs to.
type Identity struct {
	UserID string
	Email  string
	Name   string
	Role   string
}

// Session is the explicit session store. Lifecycle: Hydrate on boot, Begin
// after login or signup, Clear on logout. It is an oauth2.TokenSource and
// refreshes expired access tokens on demand.
type Session struct {
	DB        *gorm.DB
	refresher Refresher
	log       *zap.Logger
	now       func() time.Time

	mu      sync.Mutex
	current *models.LocalSession
}

func NewSession(db *gorm.DB, refresher Refresher, log *zap.Logger) *Session {
	return &Session{
		DB:        db,
		refresher: refresher,
		log:       log,
		now:       time.Now,
	}
}

// Hydrate loads a persisted session, if any.
func (s *Session) Hydrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var row models.LocalSession
	err := s.DB.Order("updated_at desc").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.current = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	s.current = &row
	s.log.Debug("Session hydrated", zap.String("user", row.Email), zap.Time("expiry", row.Expiry))
	return nil
}

// Begin stores the tokens returned by login, signup or refresh.
func (s *Session) Begin(resp *dtos.AuthResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.beginLocked(resp)
}

func (s *Session) beginLocked(resp *dtos.AuthResponse) error {
	if resp == nil || resp.AccessToken == "" {
		return errors.New("auth response has no access token")
	}

	claims := decodeClaims(resp.AccessToken)
	row := models.LocalSession{
		UserID:       claims.UserID,
		Email:        claims.Email,
		Name:         claims.Name,
		Role:         claims.Role,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    resp.TokenType,
		Expiry:       claims.expiresAt,
	}
	if row.TokenType == "" {
		row.TokenType = "Bearer"
	}
	if resp.ExpiresIn > 0 {
		row.Expiry = s.now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	if u := resp.User; u != nil {
		row.UserID = firstNonEmpty(u.ID, row.UserID)
		row.Email = firstNonEmpty(u.Email, row.Email)
		row.Name = firstNonEmpty(u.Name, row.Name)
		row.Role = firstNonEmpty(u.Role, row.Role)
	}
	// refresh responses may omit the refresh token when it is not rotated
	if row.RefreshToken == "" && s.current != nil {
		row.RefreshToken = s.current.RefreshToken
	}
	if row.UserID == "" {
		return errors.New("auth response does not identify the user")
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.LocalSession{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		if resp.User != nil && resp.User.OnboardingCompleted {
			return database.PutSetting(tx, database.OnboardingCompletedKey(row.UserID), "true")
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	s.current = &row
	return nil
}

// Clear forgets the session and the onboarding draft mirror of its user.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked()
}

func (s *Session) clearLocked() error {
	userID := ""
	if s.current != nil {
		userID = s.current.UserID
	}
	s.current = nil

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.LocalSession{}).Error; err != nil {
			return err
		}
		if userID != "" {
			return tx.Where("user_id = ?", userID).Delete(&models.OnboardingDraft{}).Error
		}
		return nil
	})
}

func (s *Session) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

// Identity returns the current user, or ErrNotLoggedIn.
func (s *Session) Identity() (Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Identity{}, ErrNotLoggedIn
	}
	return Identity{
		UserID: s.current.UserID,
		Email:  s.current.Email,
		Name:   s.current.Name,
		Role:   s.current.Role,
	}, nil
}

func (s *Session) IsAdmin() bool {
	id, err := s.Identity()
	return err == nil && id.Role == "admin"
}

// RefreshToken returns the stored refresh token, empty when logged out.
func (s *Session) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ""
	}
	return s.current.RefreshToken
}

// Token implements oauth2.TokenSource. Concurrent callers share one refresh.
func (s *Session) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, ErrNotLoggedIn
	}
	if !s.expiredLocked() {
		return s.tokenLocked(), nil
	}
	if s.current.RefreshToken == "" || s.refresher == nil {
		_ = s.clearLocked()
		return nil, fmt.Errorf("%w: session expired", ErrNotLoggedIn)
	}

	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	s.log.Debug("Refreshing access token", zap.String("user", s.current.Email))
	resp, err := s.refresher.Refresh(ctx, s.current.RefreshToken)
	if err != nil {
		if api.IsStatus(err, http.StatusUnauthorized) || api.IsStatus(err, http.StatusBadRequest) || api.IsStatus(err, http.StatusForbidden) {
			_ = s.clearLocked()
			return nil, fmt.Errorf("%w: %s", ErrNotLoggedIn, api.Message(err))
		}
		return nil, fmt.Errorf("failed to refresh session: %w", err)
	}
	if err := s.beginLocked(resp); err != nil {
		return nil, err
	}
	return s.tokenLocked(), nil
}

func (s *Session) expiredLocked() bool {
	if s.current.Expiry.IsZero() {
		return false
	}
	return !s.now().Add(expiryDelta).Before(s.current.Expiry)
}

func (s *Session) tokenLocked() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  s.current.AccessToken,
		TokenType:    s.current.TokenType,
		RefreshToken: s.current.RefreshToken,
		Expiry:       s.current.Expiry,
	}
}

type tokenClaims struct {
	Identity
	expiresAt time.Time
}

// decodeClaims reads identity and expiry out of a JWT access token without
// verifying it; the backend is the verifier. Opaque tokens yield empty claims.
func decodeClaims(accessToken string) tokenClaims {
	var out tokenClaims
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return out
	}
	if sub, err := claims.GetSubject(); err == nil {
		out.UserID = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.expiresAt = exp.Time
	}
	out.Email, _ = claims["email"].(string)
	out.Name, _ = claims["name"].(string)
	out.Role, _ = claims["role"].(string)
	if out.UserID == "" {
		out.UserID, _ = claims["userId"].(string)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
