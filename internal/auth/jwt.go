// Package auth handles token issuance and request authentication. Identity
// crosses the HTTP boundary once, here, and is then passed to services as an
// explicit actor value.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"adboard/internal/models"
	"adboard/internal/service"
	errs "adboard/pkg/errors"
)

const (
	useAccess  = "access"
	useRefresh = "refresh"
)

// Claims are the JWT payload. Subject holds the user OID.
type Claims struct {
	jwt.RegisteredClaims
	Role     string `json:"role"`
	TokenUse string `json:"use"`
}

// Manager signs and verifies HS256 token pairs.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

var _ service.TokenIssuer = (*Manager)(nil)

func NewManager(secret string, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Issue mints an access/refresh pair for an authenticated user.
func (m *Manager) Issue(user *models.User) (service.TokenPair, error) {
	const op = "auth.Manager.Issue"

	access, err := m.sign(user.OID, string(user.Role), useAccess, m.accessTTL)
	if err != nil {
		return service.TokenPair{}, errs.NewExternal(op, "jwt", "failed to sign access token", err)
	}
	refresh, err := m.sign(user.OID, string(user.Role), useRefresh, m.refreshTTL)
	if err != nil {
		return service.TokenPair{}, errs.NewExternal(op, "jwt", "failed to sign refresh token", err)
	}
	return service.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
	}, nil
}

func (m *Manager) sign(subject, role, use string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role:     role,
		TokenUse: use,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// VerifyAccess parses an access token and returns the actor it names.
// Refresh tokens are rejected here; they only ever hit the refresh endpoint.
func (m *Manager) VerifyAccess(tokenString string) (models.Actor, error) {
	claims, err := m.verify(tokenString, useAccess)
	if err != nil {
		return models.Actor{}, err
	}
	role, err := models.ParseRole(claims.Role)
	if err != nil {
		return models.Actor{}, errs.NewAccessDenied("auth.Manager.VerifyAccess", "token carries an unknown role")
	}
	return models.Actor{ID: claims.Subject, Role: role}, nil
}

// Refresh exchanges a valid refresh token for a fresh pair.
func (m *Manager) Refresh(refreshToken string) (service.TokenPair, error) {
	const op = "auth.Manager.Refresh"

	claims, err := m.verify(refreshToken, useRefresh)
	if err != nil {
		return service.TokenPair{}, err
	}

	access, err := m.sign(claims.Subject, claims.Role, useAccess, m.accessTTL)
	if err != nil {
		return service.TokenPair{}, errs.NewExternal(op, "jwt", "failed to sign access token", err)
	}
	refresh, err := m.sign(claims.Subject, claims.Role, useRefresh, m.refreshTTL)
	if err != nil {
		return service.TokenPair{}, errs.NewExternal(op, "jwt", "failed to sign refresh token", err)
	}
	return service.TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "Bearer"}, nil
}

func (m *Manager) verify(tokenString, expectedUse string) (*Claims, error) {
	const op = "auth.Manager.verify"

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errs.NewAccessDenied(op, "unexpected token signing method")
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, errs.NewAccessDenied(op, "invalid or expired token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errs.NewAccessDenied(op, "invalid token claims")
	}
	if claims.TokenUse != expectedUse {
		return nil, errs.NewAccessDenied(op, "token used in the wrong role")
	}
	return claims, nil
}
