package httpx

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
)

const sessionHeader = "X-Session-Token"

type actorKey struct{}

// Sessions tracks tokens issued at login. In-process only, which matches
// the single active writer the tool assumes.
type Sessions struct {
	mu     sync.Mutex
	tokens map[string]string // token -> username
}

func NewSessions() *Sessions {
	return &Sessions{tokens: map[string]string{}}
}

// Issue mints a token for an authenticated user.
func (s *Sessions) Issue(username string) string {
	t := uuid.NewString()
	s.mu.Lock()
	s.tokens[t] = username
	s.mu.Unlock()
	return t
}

func (s *Sessions) user(token string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.tokens[token]
	return u, ok
}

// Middleware rejects requests without a live session and stamps the actor
// into the request context.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := s.user(r.Header.Get(sessionHeader))
		if !ok {
			writeErr(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey{}, u)))
	})
}

// actor returns the username the session middleware attached.
func actor(r *http.Request) string {
	u, _ := r.Context().Value(actorKey{}).(string)
	return u
}
