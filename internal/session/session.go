package session

import (
	"context"
	"net/http"
	"time"

	"github.com/alexedwards/scs/mysqlstore"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/jmoiron/sqlx"
)

// Manager is an interface that abstracts the session management implementation.
// This allows for easier testing and dependency injection.
type Manager interface {
	LoadAndSave(next http.Handler) http.Handler
	Put(ctx context.Context, key string, val interface{})
	GetString(ctx context.Context, key string) string
	PopString(ctx context.Context, key string) string
	RenewToken(ctx context.Context) error
	Destroy(ctx context.Context) error
	Remove(ctx context.Context, key string)
}

var _ Manager = (*scs.SessionManager)(nil)

// Options configures the session cookie.
type Options struct {
	Lifetime time.Duration
	Secure   bool
}

// New creates a session manager whose store matches the database driver.
// MySQL and SQLite keep sessions in the sessions table; other drivers fall
// back to an in-process store.
func New(db *sqlx.DB, opts Options) *scs.SessionManager {
	sm := scs.New()
	switch db.DriverName() {
	case "mysql":
		sm.Store = mysqlstore.New(db.DB)
	case "sqlite3":
		sm.Store = sqlite3store.New(db.DB)
	default:
		sm.Store = memstore.New()
	}
	if opts.Lifetime > 0 {
		sm.Lifetime = opts.Lifetime
	}
	sm.Cookie.Name = "blog_session"
	sm.Cookie.Persist = true
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = opts.Secure
	return sm
}
