package adapthttp

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"trackr/internal/app"
	"trackr/internal/domain"

	"github.com/coreos/go-oidc/v3/oidc"
)

type contextKey string

const userContextKey contextKey = "user"

// IDTokenVerifier verifies raw OIDC ID tokens. *oidc.IDTokenVerifier
// satisfies it.
type IDTokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*oidc.IDToken, error)
}

func userFrom(ctx context.Context) *domain.User {
	u, _ := ctx.Value(userContextKey).(*domain.User)
	return u
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// authMiddleware resolves the bearer token to a user: a session token first,
// then an OIDC ID token when a verifier is configured.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}

		user, err := s.auth.ValidateSession(r.Context(), token)
		if errors.Is(err, app.ErrSessionNotFound) && s.oidc != nil {
			user, err = s.userFromIDToken(r.Context(), token)
		}
		if err != nil {
			s.log.Debug().Err(err).Str("path", r.URL.Path).Msg("rejected bearer token")
			writeError(w, http.StatusUnauthorized, errors.New("unauthorized"))
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) userFromIDToken(ctx context.Context, raw string) (*domain.User, error) {
	idToken, err := s.oidc.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}
	var claims struct {
		Email string `json:"email"`
		Sub   string `json:"sub"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, err
	}
	username := claims.Email
	if username == "" {
		username = claims.Sub
	}
	return s.auth.ResolveIdentity(ctx, username)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs one line per request.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func withNoCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
