// Package auth issues and validates the bearer tokens that identify a
// principal.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"schedulerapi/internal/domain"
)

var (
	ErrMissingToken = errors.New("authentication token is missing")
	ErrInvalidToken = errors.New("invalid authentication token")
	ErrExpiredToken = errors.New("authentication token has expired")
)

type Config struct {
	Secret    string
	Issuer    string
	Audience  string
	TokenTTL  time.Duration
	ClockSkew time.Duration
}

type claims struct {
	Role string `json:"role,omitempty"`
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Service signs and checks HS256 tokens carrying a subject (user id) and a
// role claim.
type Service struct {
	key    []byte
	cfg    Config
	now    func() time.Time
	parser *jwt.Parser
}

type Option func(*Service)

// WithClock replaces time.Now for issuing and validating.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	if len(cfg.Secret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 characters")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	s := &Service{key: []byte(cfg.Secret), cfg: cfg, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	popts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.ClockSkew),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	}
	if cfg.Issuer != "" {
		popts = append(popts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		popts = append(popts, jwt.WithAudience(cfg.Audience))
	}
	s.parser = jwt.NewParser(popts...)
	return s, nil
}

// Issue signs a token for u. Used by tooling and tests; the API has no login
// endpoint.
func (s *Service) Issue(u domain.User) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.cfg.TokenTTL)
	c := claims{
		Role: string(u.Role),
		Name: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	if s.cfg.Audience != "" {
		c.Audience = jwt.ClaimStrings{s.cfg.Audience}
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Validate checks signature, issuer, audience and expiry and returns the
// principal the token was issued for.
func (s *Service) Validate(token string) (domain.Principal, error) {
	if token == "" {
		return domain.Principal{}, ErrMissingToken
	}
	var c claims
	_, err := s.parser.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) { return s.key, nil })
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.Principal{}, ErrExpiredToken
	case err != nil:
		return domain.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.Subject == "" {
		return domain.Principal{}, fmt.Errorf("%w: no subject", ErrInvalidToken)
	}
	role, err := domain.ParseRole(c.Role)
	if err != nil {
		// unknown roles get no privileges
		role = domain.RoleUser
	}
	return domain.Principal{ID: c.Subject, Name: c.Name, Role: role}, nil
}

type ctxKey struct{}

func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

func PrincipalFrom(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(domain.Principal)
	return p, ok
}
