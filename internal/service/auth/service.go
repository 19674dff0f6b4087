package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/patrickmn/go-cache"

	"github.com/liefhq/injury-api/config"
	"github.com/liefhq/injury-api/internal/model"
)

var ErrInvalidSession = errors.New("invalid session token")

const sessionCacheCleanup = 5 * time.Minute

// Service is the identity gate. Authentication itself lives with the external
// provider; this service only checks the session tokens the provider issues
// and answers "who is this, if anyone".
type Service struct {
	cfg      config.AuthConfig
	sessions *cache.Cache
}

func NewService(cfg config.AuthConfig) *Service {
	return &Service{
		cfg:      cfg,
		sessions: cache.New(cache.NoExpiration, sessionCacheCleanup),
	}
}

// ValidateSession verifies a provider-issued session token and returns the
// user it describes. Validated tokens are cached for their remaining
// lifetime so repeated requests skip signature checks.
func (s *Service) ValidateSession(ctx context.Context, token string) (*model.SessionUser, error) {
	if user, found := s.sessions.Get(token); found {
		return user.(*model.SessionUser), nil
	}

	claims := &model.SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.SessionSecret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	user := &model.SessionUser{
		Subject: claims.Subject,
		Name:    claims.Name,
		Email:   claims.Email,
		Picture: claims.Picture,
	}

	if claims.ExpiresAt != nil {
		if ttl := time.Until(claims.ExpiresAt.Time); ttl > 0 {
			s.sessions.Set(token, user, ttl)
		}
	}

	return user, nil
}

// LoginURL is the provider-hosted login endpoint; the service just redirects
// there.
func (s *Service) LoginURL() string {
	return s.providerURL("/authorize")
}

// LogoutURL is the provider-hosted logout endpoint.
func (s *Service) LogoutURL() string {
	return s.providerURL("/logout")
}

func (s *Service) providerURL(path string) string {
	u, err := url.Parse(s.cfg.ProviderBaseURL)
	if err != nil || s.cfg.ProviderBaseURL == "" {
		return path
	}
	u = u.JoinPath(path)
	q := u.Query()
	q.Set("returnTo", s.cfg.ReturnURL)
	u.RawQuery = q.Encode()
	return u.String()
}
