//go:build unit

package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/Chakyiu/chakyiu-blog/internal/auth"
	"github.com/Chakyiu/chakyiu-blog/internal/data"
	"github.com/Chakyiu/chakyiu-blog/internal/logger"
	"github.com/Chakyiu/chakyiu-blog/internal/service"
	"github.com/Chakyiu/chakyiu-blog/internal/view"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedSession always reports the same subject.
type fixedSession struct {
	subject string
}

func (s fixedSession) LoadAndSave(next http.Handler) http.Handler { return next }
func (s fixedSession) Put(ctx context.Context, key string, val interface{}) {}
func (s fixedSession) GetString(ctx context.Context, key string) string {
	if key == SessionSubjectKey {
		return s.subject
	}
	return ""
}
func (s fixedSession) PopString(ctx context.Context, key string) string { return "" }
func (s fixedSession) RenewToken(ctx context.Context) error              { return nil }
func (s fixedSession) Destroy(ctx context.Context) error                 { return nil }
func (s fixedSession) Remove(ctx context.Context, key string)            {}

func TestAuthorizer(t *testing.T) {
	e, err := auth.NewMemoryEnforcer()
	require.NoError(t, err)
	auth.SeedDefaultPolicies(e, logger.Nop())
	require.NoError(t, auth.NewRoleSync(e).SyncRole("root", data.RoleAdmin))
	require.NoError(t, auth.NewRoleSync(e).SyncRole("alice", data.RoleUser))

	var seen service.Actor
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ActorFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name     string
		subject  string
		method   string
		path     string
		wantCode int
		wantRole data.Role
	}{
		{"anonymous reads post", "", "GET", "/posts/hello", http.StatusNoContent, ""},
		{"anonymous api write", "", "POST", "/api/posts/p1/comments", http.StatusUnauthorized, ""},
		{"anonymous html redirect", "", "GET", "/notifications", http.StatusFound, ""},
		{"user writes", "alice", "POST", "/api/posts/p1/comments", http.StatusNoContent, data.RoleUser},
		{"user moderates", "alice", "POST", "/api/admin/comments/c1/hide", http.StatusForbidden, ""},
		{"admin moderates", "root", "POST", "/api/admin/comments/c1/hide", http.StatusNoContent, data.RoleAdmin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = service.Actor{}
			h := Authorizer(e, fixedSession{subject: tt.subject}, logger.Nop())(next)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.wantCode, rr.Code)
			if tt.wantCode == http.StatusNoContent {
				assert.Equal(t, tt.wantRole, seen.Role)
			}
			if tt.wantCode == http.StatusUnauthorized {
				var env Envelope
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
				assert.False(t, env.Success)
				assert.Equal(t, "You must be signed in", env.Error)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusFor(service.ValidationError("x")))
	assert.Equal(t, http.StatusNotFound, StatusFor(service.NotFoundError("x")))
	assert.Equal(t, http.StatusForbidden, StatusFor(service.PolicyViolation("x")))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(service.RenderFailure(errors.New("x"))))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("plain")))

	appErr := FromService(service.InternalError("db down", errors.New("boom")))
	assert.Equal(t, "Something went wrong. Please try again.", appErr.Message)
}

func TestSettingsMiddleware(t *testing.T) {
	var theme string
	h := SettingsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		theme = view.Theme(r.Context())
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/?theme=dark", nil))
	assert.Equal(t, "dark", theme)
	require.Len(t, rr.Result().Cookies(), 1)

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "theme", Value: "light"})
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "light", theme)

	req = httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "theme", Value: "<script>"})
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "", theme)
}
