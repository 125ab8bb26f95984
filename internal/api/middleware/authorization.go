package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	internaljwt "support-chat-backend/internal/jwt"
)

type Authenticator interface {
	Authenticate(token string) (internaljwt.Staff, error)
}

type staffContextKey struct{}

// ValidateStaffJWT rejects requests without a valid staff bearer token and
// stores the staff identity on the request context.
func ValidateStaffJWT(authn Authenticator) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				unauthorized(w, "Unauthorized")
				return
			}

			staff, err := authn.Authenticate(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				unauthorized(w, "Unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), staffContextKey{}, staff)
			next(w, r.WithContext(ctx))
		}
	}
}

func StaffFromContext(ctx context.Context) (internaljwt.Staff, bool) {
	staff, ok := ctx.Value(staffContextKey{}).(internaljwt.Staff)
	return staff, ok
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": message, "code": "unauthorized"})
}
