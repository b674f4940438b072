package backend

import (
	"context"
	"net/http"
	"strings"

	"github.com/alexanderramin/prdsmith/internal/contract"
)

// Authenticator maps a bearer token to the owner the request is scoped to.
type Authenticator interface {
	Owner(token string) (string, bool)
}

// TokenTable authenticates against a fixed token → owner table. An empty table
// accepts any non-empty token and uses the token itself as the owner.
type TokenTable map[string]string

func (t TokenTable) Owner(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	if len(t) == 0 {
		return token, true
	}
	owner, ok := t[token]
	return owner, ok
}

type ownerKey struct{}

func ownerFrom(ctx context.Context) string {
	owner, _ := ctx.Value(ownerKey{}).(string)
	return owner
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			respondError(w, http.StatusUnauthorized, contract.CodeUnauthorized, "missing bearer token")
			return
		}
		owner, ok := s.auth.Owner(strings.TrimSpace(token))
		if !ok {
			respondError(w, http.StatusUnauthorized, contract.CodeUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ownerKey{}, owner)))
	})
}
