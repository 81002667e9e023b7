package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/product-service/internal/domain"
)

// DefaultTokenTTLMinutes applies when no positive TTL is configured.
const DefaultTokenTTLMinutes = 60

// Token verification failures. Callers reject all of them as unauthenticated;
// they differ only for diagnostics.
var (
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenMalformed        = errors.New("token malformed")
)

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// TokenOption customizes a TokenManager.
type TokenOption func(*TokenManager)

// WithClock replaces the wall clock used for issuing and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(tm *TokenManager) {
		if now != nil {
			tm.now = now
		}
	}
}

// NewTokenManager builds a new manager around a process-lifetime secret.
func NewTokenManager(secret string, ttlMinutes int, opts ...TokenOption) *TokenManager {
	if ttlMinutes <= 0 {
		ttlMinutes = DefaultTokenTTLMinutes
	}
	tm := &TokenManager{
		secret: []byte(secret),
		ttl:    time.Duration(ttlMinutes) * time.Minute,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(tm)
	}
	// No leeway: expiry is a hard boundary.
	tm.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(func() time.Time { return tm.now() }),
	)
	return tm
}

// Claims describes JWT payload.
type Claims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Identity returns the identity facts carried by the token.
func (c *Claims) Identity() domain.Identity {
	return domain.Identity{SubjectID: c.Subject, Name: c.Name, Email: c.Email}
}

// TTL returns the default token lifetime.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

// Issue builds and signs a JWT for the identity. A non-positive ttl uses the
// manager default. The returned time is the expiry encoded in the token.
func (tm *TokenManager) Issue(identity domain.Identity, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = tm.ttl
	}
	now := tm.now()
	expiresAt := jwt.NewNumericDate(now.Add(ttl))
	claims := &Claims{
		Name:  identity.Name,
		Email: identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.SubjectID,
			ExpiresAt: expiresAt,
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return tokenString, expiresAt.Time, nil
}

// Verify checks the signature and expiry of tokenStr and returns its claims.
//
// The HMAC is checked against the raw token text before anything is decoded,
// so altering any byte of a signed token reports ErrTokenSignatureInvalid.
func (tm *TokenManager) Verify(tokenStr string) (*Claims, error) {
	dot := strings.LastIndexByte(tokenStr, '.')
	if dot <= 0 {
		return nil, ErrTokenMalformed
	}

	sig, err := tm.parser.DecodeSegment(tokenStr[dot+1:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenSignatureInvalid, err)
	}
	if err := jwt.SigningMethodHS256.Verify(tokenStr[:dot], sig, tm.secret); err != nil {
		return nil, ErrTokenSignatureInvalid
	}

	claims := &Claims{}
	parsed, err := tm.parser.ParseWithClaims(tokenStr, claims, tm.keyFunc)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignatureInvalid
		default:
			return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
		}
	}
	if !parsed.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

func (tm *TokenManager) keyFunc(token *jwt.Token) (interface{}, error) {
	if token.Method != jwt.SigningMethodHS256 {
		return nil, errors.New("unexpected signing method")
	}
	return tm.secret, nil
}
