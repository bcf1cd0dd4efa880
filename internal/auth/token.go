// Package auth issues and verifies bearer tokens and guards routes by capability.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"canteen-system/internal/apperror"
	"canteen-system/internal/models"
)

// Claims are the JWT claims of an access token
type Claims struct {
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	Capabilities []string `json:"capabilities"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 access tokens
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a token manager
func NewTokenManager(secret, issuer string, ttl time.Duration) (*TokenManager, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth secret must be at least 16 bytes")
	}
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue creates an access token for user
func (tm *TokenManager) Issue(user *models.User) (*models.TokenResponse, error) {
	now := tm.now()
	claims := Claims{
		Username:     user.Username,
		Email:        user.Email,
		Capabilities: user.Capabilities(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    tm.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &models.TokenResponse{
		Access:    signed,
		TokenType: "Bearer",
		ExpiresIn: int(tm.ttl.Seconds()),
	}, nil
}

// Verify parses an access token and returns the principal it names
func (tm *TokenManager) Verify(token string) (*models.Principal, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tm.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.Unauthorized("Token has expired")
		}
		return nil, apperror.Unauthorized("Invalid token")
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil, apperror.Unauthorized("Invalid token")
	}

	return &models.Principal{
		UserID:       userID,
		Username:     claims.Username,
		Email:        claims.Email,
		Capabilities: claims.Capabilities,
	}, nil
}
