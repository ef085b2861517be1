package auth

import (
	"net/http"
	"strings"

	"github.com/blagoySimandov/imagify/internal/logging"
	"github.com/rs/zerolog/log"
)

type Middleware struct {
	verifier *TokenIssuer
}

func NewMiddleware(verifier *TokenIssuer) *Middleware {
	return &Middleware{
		verifier: verifier,
	}
}

func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get(authorizationHeader)
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			writeJSONError(w, http.StatusUnauthorized, notAuthorizedMessage)
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
		if tokenString == "" {
			writeJSONError(w, http.StatusUnauthorized, notAuthorizedMessage)
			return
		}

		claims, err := m.verifier.Verify(tokenString)
		if err != nil {
			log.Debug().Err(err).Str("path", r.URL.Path).Msg("token verification failed")
			logging.EnrichError(r.Context(), err, "auth")
			writeJSONError(w, http.StatusUnauthorized, invalidTokenMessage)
			return
		}

		logging.EnrichUser(r.Context(), claims.ID)
		ctx := ContextWithUserID(r.Context(), claims.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
