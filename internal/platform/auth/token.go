package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/clinicdesk/clinic/internal/platform/apperr"
)

// TokenTTL is how long an issued token stays valid.
const TokenTTL = 7 * 24 * time.Hour

// Directory resolves a token subject against live account state for one role.
// Admin subjects are usernames; doctor and patient subjects are emails. The
// lookup runs on every validation so deleting an account immediately
// invalidates its outstanding tokens.
type Directory interface {
	Exists(ctx context.Context, identifier string) (bool, error)
}

// DirectoryFunc adapts a function to the Directory interface.
type DirectoryFunc func(ctx context.Context, identifier string) (bool, error)

func (f DirectoryFunc) Exists(ctx context.Context, identifier string) (bool, error) {
	return f(ctx, identifier)
}

// TokenService issues and validates HMAC-signed identity tokens. The signing
// secret comes from configuration and is read-only after construction.
type TokenService struct {
	secret      []byte
	ttl         time.Duration
	directories map[Role]Directory
}

// NewTokenService builds a TokenService with one directory per role.
func NewTokenService(secret []byte, admins, doctors, patients Directory) *TokenService {
	return &TokenService{
		secret: secret,
		ttl:    TokenTTL,
		directories: map[Role]Directory{
			RoleAdmin:   admins,
			RoleDoctor:  doctors,
			RolePatient: patients,
		},
	}
}

// Issue produces a signed token with the given subject, valid for TokenTTL.
func (ts *TokenService) Issue(identifier string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   identifier,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ts.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ts.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ExtractSubject verifies the signature and expiry and returns the embedded
// subject. Any tampering with payload or expiry invalidates the signature.
func (ts *TokenService) ExtractSubject(tokenStr string) (string, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return ts.secret, nil
	})
	if err != nil || !token.Valid {
		return "", apperr.Wrap(apperr.KindUnauthorized, "invalid or expired token", err)
	}
	if claims.Subject == "" {
		return "", apperr.E(apperr.KindUnauthorized, "token has no subject")
	}
	return claims.Subject, nil
}

// Validate extracts the subject and re-resolves it against the directory
// bound to role. Both steps must succeed.
func (ts *TokenService) Validate(ctx context.Context, tokenStr string, role Role) (string, error) {
	subject, err := ts.ExtractSubject(tokenStr)
	if err != nil {
		return "", err
	}
	dir, ok := ts.directories[role]
	if !ok {
		return "", apperr.E(apperr.KindUnauthorized, "unknown role")
	}
	exists, err := dir.Exists(ctx, subject)
	if err != nil {
		return "", apperr.Internal(err)
	}
	if !exists {
		return "", apperr.E(apperr.KindUnauthorized, "account no longer exists")
	}
	return subject, nil
}
