package auth

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"recylink.org/internal/obs"
)

const (
	// devSecret is a clearly non-secret fallback key. It keeps local
	// development working without a .env file and must never reach
	// production; NewTokenService refuses it there.
	devSecret = "dev-secret-not-safe"

	defaultTokenTTL = 7 * 24 * time.Hour
)

// TokenService issues and verifies the HS256 bearer tokens used by every
// protected route. Safe for concurrent use; all fields are set at
// construction and never mutated.
type TokenService struct {
	secret      []byte
	ttl         time.Duration
	now         func() time.Time
	production  bool
	devFallback bool
}

// TokenOption configures TokenService behavior.
type TokenOption func(*TokenService)

// WithTTL overrides the token lifetime.
func WithTTL(ttl time.Duration) TokenOption {
	return func(s *TokenService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) TokenOption {
	return func(s *TokenService) {
		if fn != nil {
			s.now = fn
		}
	}
}

// InProduction enables production policy: a missing signing secret is a
// construction error instead of a logged fallback.
func InProduction() TokenOption {
	return func(s *TokenService) { s.production = true }
}

// NewTokenService builds a TokenService around the configured secret.
// An empty secret is fatal under production policy; in development the
// service falls back to the marked dev key and logs a warning.
func NewTokenService(secret string, opts ...TokenOption) (*TokenService, error) {
	s := &TokenService{
		ttl: defaultTokenTTL,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	secret = strings.TrimSpace(secret)
	if secret == "" {
		if s.production {
			return nil, ErrMissingSecret
		}
		s.devFallback = true
		secret = devSecret
		obs.LogRequest(map[string]any{
			"ts":    time.Now().UTC().Format(time.RFC3339Nano),
			"level": "warn",
			"msg":   "JWT_SECRET is not set; signing tokens with the development key",
		})
	}
	s.secret = []byte(secret)
	return s, nil
}

// UsesDevFallback reports whether the service runs on the development key.
func (s *TokenService) UsesDevFallback() bool { return s.devFallback }

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration { return s.ttl }

type tokenClaims struct {
	UserID string `json:"userId"`
	Role   string `json:"userRole"`
	Name   string `json:"userName,omitempty"`
	jwt.RegisteredClaims
}

// Issue signs a token for the principal. The claim set is normalized
// first: a missing role becomes "user", the display name may be empty.
// A principal without a user id cannot be issued a token.
func (s *TokenService) Issue(p Principal) (string, time.Time, error) {
	p = normalizePrincipal(p)
	if p.UserID == "" {
		return "", time.Time{}, fmt.Errorf("issue token: user id is required")
	}

	now := s.now().UTC()
	expiresAt := now.Add(s.ttl)
	claims := tokenClaims{
		UserID: p.UserID,
		Role:   p.Role,
		Name:   p.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature and expiry and returns the normalized Principal.
// It tolerates a leading "Bearer " prefix and surrounding whitespace, and
// accepts claim sets produced by older issuers that used alternate field
// names. Every failure collapses to ErrInvalidToken.
func (s *TokenService) Verify(token string) (Principal, error) {
	token = strings.TrimSpace(token)
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return Principal{}, ErrInvalidToken
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now().UTC() }))
	if err != nil || !parsed.Valid {
		return Principal{}, ErrInvalidToken
	}

	principal := ResolveIdentity(claims)
	if principal.UserID == "" {
		return Principal{}, ErrInvalidToken
	}
	return principal, nil
}

// ResolveIdentity maps a raw identity record onto a Principal. Records may
// originate from systems with inconsistent naming, so each attribute is
// resolved through a fixed fallback chain: the first non-empty value wins.
// This is the single normalization boundary; nothing else in the codebase
// inspects legacy field names.
func ResolveIdentity(record map[string]any) Principal {
	p := Principal{
		UserID: firstValue(record, "id_usuario", "id", "userId"),
		Role:   firstValue(record, "nivel_acesso", "role", "userRole"),
		Name:   firstValue(record, "nome", "name", "userName"),
	}
	return normalizePrincipal(p)
}

func normalizePrincipal(p Principal) Principal {
	p.UserID = strings.TrimSpace(p.UserID)
	p.Role = strings.TrimSpace(p.Role)
	p.Name = strings.TrimSpace(p.Name)
	if p.Role == "" {
		p.Role = "user"
	}
	return p
}

func firstValue(record map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := record[key]; ok {
			if s := stringValue(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// stringValue renders scalar record values the way they appear on the wire.
// Numeric ids arrive as float64 from JSON decoding and as integers from
// database scans.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case json.Number:
		return val.String()
	default:
		return ""
	}
}
