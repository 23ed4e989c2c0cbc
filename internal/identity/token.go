// Package identity adapts signed identity assertions from the external
// identity provider into verified {user, role} claims. Credential issuance and
// the rest of the authentication flow live outside this service.
package identity

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"amparo/internal/platform/middleware"
	id "amparo/pkg/domain"
	dErrors "amparo/pkg/domain-errors"
)

type tokenClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Verifier validates identity assertions signed with a shared HMAC key.
type Verifier struct {
	signingKey []byte
}

func NewVerifier(signingKey string) *Verifier {
	return &Verifier{signingKey: []byte(signingKey)}
}

// ValidateToken implements middleware.TokenValidator.
func (v *Verifier) ValidateToken(tokenString string) (*middleware.Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	userID, err := id.ParseUserID(claims.UserID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid user claim")
	}
	role, err := id.ParseRole(claims.Role)
	if err != nil {
		return nil, err
	}

	return &middleware.Claims{UserID: userID, Role: role}, nil
}
