package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrEmptySecret = errors.New("token secret is empty")

// TokenClaims - what a signed session id carries: the login session key and its owner.
type TokenClaims struct {
	SessionID string
	UserID    string
	ExpiresAt time.Time
}

type AuthService interface {
	GenerateToken(sessionID, userID string, issuedAt time.Time, ttl time.Duration) (string, error)
	ParseToken(token string) (*TokenClaims, error)
}

type authServiceImpl struct {
	secretKey []byte
	now       func() time.Time
}

// NewAuthService - HS256 tokens signed with secretKey.
func NewAuthService(secretKey string) (AuthService, error) {
	if secretKey == "" {
		return nil, ErrEmptySecret
	}

	return &authServiceImpl{
		secretKey: []byte(secretKey),
		now:       time.Now,
	}, nil
}

func (that *authServiceImpl) GenerateToken(sessionID, userID string, issuedAt time.Time, ttl time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        sessionID,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(that.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ParseToken - rejects other algorithms, bad signatures and expired or id-less tokens.
func (that *authServiceImpl) ParseToken(token string) (*TokenClaims, error) {
	var claims jwt.RegisteredClaims

	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return that.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(that.now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims.ID == "" || claims.Subject == "" {
		return nil, fmt.Errorf("failed to parse token: %w", jwt.ErrTokenInvalidClaims)
	}

	return &TokenClaims{
		SessionID: claims.ID,
		UserID:    claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
