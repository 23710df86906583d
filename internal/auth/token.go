// Package auth authenticates callers. Access and refresh tokens are HS256
// JWTs; a refresh token is single use because only the hash of its id is
// stored on the user and it is replaced on every refresh.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"productivity/internal/core"
)

const (
	tokenAccess  = "access"
	tokenRefresh = "refresh"
	issuer       = "productivity"
)

// Claims carried by both token types.
type Claims struct {
	Role      core.Role `json:"role"`
	TokenType string    `json:"typ"`
	jwt.RegisteredClaims
}

// TokenPair is returned by login, register and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// TokenIssuer signs and verifies tokens.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// Issue creates a new pair for u. refreshHash must be stored on the user;
// it is what Refresh checks the presented token against.
func (t *TokenIssuer) Issue(u core.User) (pair TokenPair, refreshHash string, err error) {
	now := t.now()

	access, err := t.sign(Claims{
		Role:      u.Role,
		TokenType: tokenAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.accessTTL)),
		},
	})
	if err != nil {
		return TokenPair{}, "", fmt.Errorf("sign access token: %w", err)
	}

	jti := uuid.NewString()
	refresh, err := t.sign(Claims{
		TokenType: tokenRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   u.ID,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.refreshTTL)),
		},
	})
	if err != nil {
		return TokenPair{}, "", fmt.Errorf("sign refresh token: %w", err)
	}

	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(t.accessTTL / time.Second),
	}, HashTokenID(jti), nil
}

// Authenticate verifies an access token and returns the caller's identity.
func (t *TokenIssuer) Authenticate(token string) (core.Identity, error) {
	c, err := t.parse(token, tokenAccess)
	if err != nil {
		return core.Identity{}, err
	}
	if !c.Role.Valid() {
		return core.Identity{}, core.NewAuthenticationError("Invalid token")
	}
	return core.Identity{UserID: c.Subject, Role: c.Role}, nil
}

// ParseRefresh verifies a refresh token and returns its subject and id hash.
func (t *TokenIssuer) ParseRefresh(token string) (userID, refreshHash string, err error) {
	c, err := t.parse(token, tokenRefresh)
	if err != nil {
		return "", "", err
	}
	if c.ID == "" {
		return "", "", core.NewAuthenticationError("Invalid refresh token")
	}
	return c.Subject, HashTokenID(c.ID), nil
}

func (t *TokenIssuer) sign(c Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
}

func (t *TokenIssuer) parse(token, typ string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(token), claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, &core.Error{Kind: core.KindAuthentication, Message: "Invalid or expired token", Err: err}
	}
	if claims.TokenType != typ || claims.Subject == "" {
		return nil, core.NewAuthenticationError("Invalid token")
	}
	return claims, nil
}

// HashTokenID is the stored form of a refresh token id.
func HashTokenID(id string) string {
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:])
}

// Authorize checks that id holds role. Admins satisfy every role.
func Authorize(id core.Identity, role core.Role) error {
	if id.UserID == "" {
		return core.NewAuthenticationError("Authentication required")
	}
	if id.Role == role || id.IsAdmin() {
		return nil
	}
	return core.NewAuthorizationError("Admin access required")
}
