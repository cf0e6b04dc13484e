package middleware

import (
	"log/slog"
	"net/http"

	"github.com/ayush/vipauth/internal/auth"
)

// LoadSession resolves the session cookie and injects the session into the
// request context. A backend failure is logged and the request continues
// anonymously.
func LoadSession(sessions *auth.SessionStore, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := sessions.Load(r)
			if err != nil {
				log.Warn("session.load_failed", "path", r.URL.Path, "err", err)
			}
			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), sess)))
		})
	}
}

// IsLoggedIn lets the request through only when the session has a user;
// everyone else is sent to the login form.
func IsLoggedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.SessionFrom(r.Context()).Authenticated() {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IsLoggedOut is the inverse of IsLoggedIn: logged-in users go home.
func IsLoggedOut(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.SessionFrom(r.Context()).Authenticated() {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
