package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"libroteca/internal/entities"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the signed token payload: user identity plus role.
type Claims struct {
	UserID int64             `json:"id"`
	Role   entities.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// SignToken issues an HS256 token for the user with the given lifetime.
func SignToken(secret []byte, userID int64, role entities.UserRole, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseToken verifies the signature and expiry and returns the claims.
func ParseToken(secret []byte, tokenStr string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
