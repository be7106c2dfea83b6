package handler

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"github.com/Chakyiu/chakyiu-blog/internal/auth"
	"github.com/Chakyiu/chakyiu-blog/internal/logger"
	"github.com/Chakyiu/chakyiu-blog/internal/middleware"
	"github.com/Chakyiu/chakyiu-blog/internal/session"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// Authenticator is the OIDC flow used by the login handlers.
type Authenticator interface {
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	VerifyCode(ctx context.Context, code string) (*auth.Claims, error)
}

var _ Authenticator = (*auth.Authenticator)(nil)

// AuthHandler holds the dependencies for the authentication handlers.
type AuthHandler struct {
	auth    Authenticator
	session session.Manager
	users   UserServicer
	log     logger.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(a Authenticator, sm session.Manager, us UserServicer, log logger.Logger) *AuthHandler {
	return &AuthHandler{auth: a, session: sm, users: us, log: log}
}

// handleLogin redirects the user to the OIDC provider to log in.
// It uses a random 'state' string for CSRF protection.
func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		http.Error(w, "Sign in is not configured", http.StatusServiceUnavailable)
		return
	}
	state, err := randString(16)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	// Store the state in a short-lived cookie to verify on callback.
	http.SetCookie(w, &http.Cookie{
		Name:     "state",
		Value:    state,
		Path:     "/",
		MaxAge:   int(10 * time.Minute / time.Second),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.auth.AuthCodeURL(state), http.StatusFound)
}

// handleCallback completes the code exchange, records the account and
// stores its subject in the session.
func (h *AuthHandler) handleCallback(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		http.Error(w, "Sign in is not configured", http.StatusServiceUnavailable)
		return
	}
	stateCookie, err := r.Cookie("state")
	if err != nil {
		http.Error(w, "state cookie not found", http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("state") != stateCookie.Value {
		http.Error(w, "state did not match", http.StatusBadRequest)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "state", Value: "", Path: "/", MaxAge: -1})

	claims, err := h.auth.VerifyCode(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		h.log.Error(err, "Failed to verify login")
		http.Error(w, "Failed to verify login", http.StatusUnauthorized)
		return
	}

	user, err := h.users.SyncUser(r.Context(), claims.Subject, claims.Name, claims.Email)
	if err != nil {
		h.log.Error(err, "Failed to record login")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// A fresh token on privilege change prevents session fixation.
	if err := h.session.RenewToken(r.Context()); err != nil {
		h.log.Error(err, "Failed to renew session token")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.session.Put(r.Context(), middleware.SessionSubjectKey, user.ID)
	h.log.With(map[string]interface{}{"user_id": user.ID, "role": string(user.Role)}).Info("User signed in")

	http.Redirect(w, r, "/", http.StatusFound)
}

// handleLogout ends the session.
func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Destroy(r.Context()); err != nil {
		h.log.Error(err, "Failed to destroy session")
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// randString is a helper function to generate a random string for the 'state' parameter.
func randString(nByte int) (string, error) {
	b := make([]byte, nByte)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
