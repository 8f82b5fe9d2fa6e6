package middleware

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/mwells/saasdash/internal/domain"
	"github.com/mwells/saasdash/internal/service"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated request context: the resolved session, its
// owning user, and the user's full membership set.
type Identity struct {
	Session     *domain.Session
	User        *domain.User
	Memberships []*domain.Membership
}

// Session resolves the session cookie into an Identity for downstream
// handlers. Requests without a valid session proceed unauthenticated;
// handlers that need identity use RequireAuth.
func Session(sessions *service.SessionService, auth *service.AuthService, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := sessions.GetByToken(r.Context(), cookie.Value)
			if err != nil {
				// Unknown, expired and revoked tokens all land here.
				next.ServeHTTP(w, r)
				return
			}

			user, err := auth.GetUserByID(r.Context(), sess.UserID)
			if err != nil || user == nil {
				next.ServeHTTP(w, r)
				return
			}

			memberships, err := auth.ListMemberships(r.Context(), user.ID)
			if err != nil {
				log.Printf("ERROR [middleware.Session] failed to load memberships: %v", err)
				next.ServeHTTP(w, r)
				return
			}

			identity := &Identity{
				Session:     sess,
				User:        user,
				Memberships: memberships,
			}

			// Last-seen is advisory; update it off the request path so a
			// slow write never delays the response.
			sessionID := sess.ID
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := sessions.Touch(ctx, sessionID); err != nil {
					log.Printf("WARN [middleware.Session] failed to touch session: %v", err)
				}
			}()

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects requests that did not resolve to an authenticated
// user. Mounted after Session on every identity-dependent route.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := GetIdentity(r.Context())
		if !ok || identity.User == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"success":false,"error":"Unauthorized"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetIdentity(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*Identity)
	return identity, ok
}
