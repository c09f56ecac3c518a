package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cppla/socialdash/models"
)

// Claims defines JWT claims carried by the session marker.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// JWTIssuer signs and verifies session markers with an HMAC secret.
type JWTIssuer struct {
	secret   []byte
	duration time.Duration
	now      func() time.Time
}

// NewJWTIssuer returns an issuer for tokens valid for duration.
func NewJWTIssuer(secret string, duration time.Duration) *JWTIssuer {
	return &JWTIssuer{secret: []byte(secret), duration: duration, now: time.Now}
}

// Issue implements store.TokenIssuer.
func (j *JWTIssuer) Issue(user models.User) (string, error) {
	return j.GenerateToken(user.ID, user.Email)
}

// Resolve implements store.TokenIssuer.
func (j *JWTIssuer) Resolve(token string) (string, error) {
	claims, err := j.ParseToken(token)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// GenerateToken issues a JWT for the specified user identity.
func (j *JWTIssuer) GenerateToken(userID, email string) (string, error) {
	now := j.now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.duration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret)
}

// ParseToken validates a JWT and returns its claims.
func (j *JWTIssuer) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return j.secret, nil
	}, jwt.WithTimeFunc(j.now))
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
