// Package auth issues and parses the bearer tokens stored in sessions.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophdesk/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carries the account id in Subject and the issuance time in
// IssuedAt. ID is a random UUID so two logins in the same second still
// produce distinct tokens.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenIssuer signs session tokens with HS256.
type TokenIssuer struct {
	secretKey []byte
}

func NewTokenIssuer(secretKey string) *TokenIssuer {
	return &TokenIssuer{secretKey: []byte(secretKey)}
}

// Issue returns a signed token for accountID issued at issuedAt.
func (i *TokenIssuer) Issue(accountID string, issuedAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			Subject:  accountID,
			IssuedAt: jwt.NewNumericDate(issuedAt),
		},
	})

	tokenString, err := token.SignedString(i.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return tokenString, nil
}

// Parse verifies the signature of tokenString and returns its claims.
// Every failure wraps common.ErrInvalidToken.
func (i *TokenIssuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secretKey, nil
	}, jwt.WithIssuedAt())
	if err != nil {
		return nil, errors.Join(common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// AccountID returns the subject of a verified token.
func (i *TokenIssuer) AccountID(tokenString string) (string, error) {
	claims, err := i.Parse(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
