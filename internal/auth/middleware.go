package auth

import (
	"context"
	"net/http"
)

type contextKey string

const operatorKey contextKey = "operator"

// AuthenticateMiddleware rejects requests without a valid session
// cookie and puts the operator name on the request context.
type AuthenticateMiddleware struct {
	Secret []byte
}

func (m *AuthenticateMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		operator, err := VerifyOperator(r, m.Secret)
		if err != nil {
			http.Error(w, "Not authenticated", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), operatorKey, operator)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetAuthenticatedOperator(r *http.Request) (string, bool) {
	operator, ok := r.Context().Value(operatorKey).(string)
	return operator, ok
}
