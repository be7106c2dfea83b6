package middleware

import (
	"github.com/Chakyiu/chakyiu-blog/internal/logger"
	"github.com/Chakyiu/chakyiu-blog/internal/session"
	"net/http"
	"strings"

	"github.com/casbin/casbin/v2"
)

// SessionSubjectKey is the session key holding the signed-in user's subject.
const SessionSubjectKey = "user_subject"

// Authorizer creates a new middleware for authorization.
// It resolves the user from the session, stores it in the request context and
// checks the route against the Casbin policies.
func Authorizer(e casbin.IEnforcer, sm session.Manager, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := sm.GetString(r.Context(), SessionSubjectKey)
			if subject == "" {
				subject = AnonymousSubject
			}

			userInfo := &UserInfo{Subject: subject}
			if subject != AnonymousSubject {
				roles, err := e.GetRolesForUser(subject)
				if err != nil {
					log.Error(err, "Failed to load roles")
				}
				userInfo.Roles = roles
			}
			r = r.WithContext(SetUserInfo(r.Context(), userInfo))

			allowed, err := e.Enforce(subject, r.URL.Path, r.Method)
			if err != nil {
				log.Error(err, "Authorization error")
				deny(w, r, http.StatusInternalServerError, "Authorization error")
				return
			}
			if allowed {
				next.ServeHTTP(w, r)
				return
			}

			if userInfo.IsAnonymous() {
				if !isAPI(r) && r.Method == http.MethodGet {
					http.Redirect(w, r, "/auth/login", http.StatusFound)
					return
				}
				deny(w, r, http.StatusUnauthorized, "You must be signed in")
				return
			}
			deny(w, r, http.StatusForbidden, "Forbidden")
		})
	}
}

func isAPI(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

func deny(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if isAPI(r) {
		WriteJSONError(w, status, msg)
		return
	}
	http.Error(w, msg, status)
}
