package auth

import (
	"net/http"
	"strings"

	apperrors "github.com/chainsafe/canton-backing/pkg/app/errors"
	apphttp "github.com/chainsafe/canton-backing/pkg/app/http"
)

// TokenValidator validates a bearer token and returns the caller's user id
// and, when present, their Canton party id.
type TokenValidator interface {
	Resolve(tokenString string) (userID, partyID string, err error)
}

// Resolve implements TokenValidator on the JWKS-backed validator.
func (v *JWTValidator) Resolve(tokenString string) (string, string, error) {
	claims, err := v.ValidateToken(tokenString)
	if err != nil {
		return "", "", err
	}
	userID, err := UserID(claims)
	if err != nil {
		return "", "", err
	}
	partyID, _ := claims["party_id"].(string)
	return userID, partyID, nil
}

// Middleware extracts the bearer token, validates it, and stores the
// resolved user id on the request context. Requests without a valid
// token are rejected with 401.
func Middleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				apphttp.DefaultErrorHandler(w, apperrors.UnAuthorizedError(nil, "missing bearer token"))
				return
			}

			userID, partyID, err := validator.Resolve(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				apphttp.DefaultErrorHandler(w, apperrors.UnAuthorizedError(err, "invalid token"))
				return
			}

			ctx := WithUserID(r.Context(), userID)
			if partyID != "" {
				ctx = WithPartyID(ctx, partyID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
