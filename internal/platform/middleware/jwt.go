package middleware

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	dErrors "lifeledger/pkg/domain-errors"
)

// JWTClaims is the JWT payload issued to portal sessions.
type JWTClaims struct {
	OrgID int64  `json:"org_id"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// JWTValidator validates HS256 portal tokens.
type JWTValidator struct {
	signingKey []byte
}

// NewJWTValidator creates a validator for the shared signing key.
func NewJWTValidator(signingKey string) *JWTValidator {
	return &JWTValidator{signingKey: []byte(signingKey)}
}

// ValidateToken parses and verifies a token, returning the portal claims.
func (v *JWTValidator) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token expired")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return &Claims{
		Subject: claims.Subject,
		OrgID:   claims.OrgID,
		Role:    claims.Role,
	}, nil
}
