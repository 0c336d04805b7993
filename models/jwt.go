package models

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var JWT = struct {
	ACCESS_COOKIE_NAME string
	SCOPE              string
}{
	ACCESS_COOKIE_NAME: "access_token",
	SCOPE:              "moderation",
}

type JWTClaims struct {
	OperatorID string `json:"operatorId"`
	Email      string `json:"email"`
	Scope      string `json:"scope"`
	jwt.RegisteredClaims
}

// NewAccessToken signs an access token for op valid until expiry.
func NewAccessToken(op Operator, secret string, expiry time.Time) (string, error) {
	claims := JWTClaims{
		OperatorID: op.OperatorID,
		Email:      op.Email,
		Scope:      JWT.SCOPE,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiry),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ValidateJWTToken(tokenString string, secret string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})

	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || claims.Scope != JWT.SCOPE {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}
