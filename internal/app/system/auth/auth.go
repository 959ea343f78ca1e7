package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/brooky/dazle/internal/app/system/authtoken"
	"github.com/brooky/dazle/internal/app/system/jsonutil"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is what we inject into r.Context() for an authenticated request.
type SessionUser struct {
	ID       string
	Name     string
	Email    string
	Position string
}

// UserFetcher loads fresh user data for a verified token, so that deleted
// accounts stop working immediately. It returns nil when the user is gone.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *SessionUser
}

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*authtoken.Claims, error)
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// Manager loads the bearer-token user into the request context.
type Manager struct {
	tokens  TokenVerifier
	fetcher UserFetcher
	log     *zap.Logger
}

// NewManager creates a Manager. fetcher may be nil, in which case the
// token claims alone populate the SessionUser.
func NewManager(tokens TokenVerifier, fetcher UserFetcher, logger *zap.Logger) *Manager {
	return &Manager{tokens: tokens, fetcher: fetcher, log: logger}
}

// LoadTokenUser injects the user into context when the request carries a
// valid "Authorization: Bearer <token>" header. Invalid tokens are ignored
// here; RequireSignedIn turns the missing user into a 401.
func (m *Manager) LoadTokenUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.tokens.Verify(token)
		if err != nil {
			m.log.Debug("bearer token rejected", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		var u *SessionUser
		if m.fetcher != nil {
			u = m.fetcher.FetchUser(r.Context(), claims.UserID)
		} else {
			u = &SessionUser{ID: claims.UserID, Email: claims.Email, Position: claims.Position}
		}
		if u != nil {
			r = withUser(r, u)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn ensures there is a user in context (set by LoadTokenUser).
// API callers get a JSON 401.
func (m *Manager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		jsonutil.Unauthorized(w, "Fail to authenticate")
	})
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// WithTestUser injects a user directly, bypassing token verification.
// Intended for handler tests.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}
