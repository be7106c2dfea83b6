package auth

import (
	"fmt"
	"github.com/Chakyiu/chakyiu-blog/internal/logger"

	"github.com/casbin/casbin/v2"
)

// DefaultPolicies is the baseline route table. Patterns use keyMatch2 syntax.
var DefaultPolicies = [][]string{
	// Anonymous visitors read posts and projects and can sign in.
	{RoleAnonymous, "/", "GET"},
	{RoleAnonymous, "/posts/:slug", "GET"},
	{RoleAnonymous, "/posts/by-id/:id", "GET"},
	{RoleAnonymous, "/api/posts/:postID/comments", "GET"},
	{RoleAnonymous, "/static/*", "GET"},
	{RoleAnonymous, "/robots.txt", "GET"},
	{RoleAnonymous, "/projects", "GET"},
	{RoleAnonymous, "/projects/:slug", "GET"},
	{RoleAnonymous, "/sitemap.xml", "GET"},
	{RoleAnonymous, "/feed.xml", "GET"},
	{RoleAnonymous, "/auth/login", "GET"},
	{RoleAnonymous, "/auth/callback", "GET"},
	{RoleAnonymous, "/auth/logout", "GET"},

	// Signed-in users comment, reply, preview and read their inbox.
	{RoleUser, "/api/posts/:postID/comments", "POST"},
	{RoleUser, "/api/comments/:commentID/replies", "POST"},
	{RoleUser, "/api/markdown/preview", "POST"},
	{RoleUser, "/notifications", "GET"},
	{RoleUser, "/api/notifications", "GET"},
	{RoleUser, "/api/notifications/unread-count", "GET"},
	{RoleUser, "/api/notifications/:id/read", "POST"},
	{RoleUser, "/api/notifications/read-all", "POST"},

	// Admins moderate comments and manage content and users.
	{RoleAdmin, "/api/admin/*", "GET"},
	{RoleAdmin, "/api/admin/*", "POST"},
	{RoleAdmin, "/api/admin/*", "PUT"},
	{RoleAdmin, "/api/admin/*", "DELETE"},
}

// SeedDefaultPolicies ensures that the application has a baseline set of authorization rules.
// It checks if each default policy exists before adding it, making the operation idempotent
// and safe to run on every application start.
func SeedDefaultPolicies(e casbin.IEnforcer, log logger.Logger) {
	log.Info("Seeding default authorization policies...")

	for _, p := range DefaultPolicies {
		if has, _ := e.HasPolicy(p); !has {
			if _, err := e.AddPolicy(p); err != nil {
				log.Error(err, fmt.Sprintf("Failed to add policy %v", p))
			}
		}
	}

	// user inherits anonymous, admin inherits user.
	for _, link := range [][2]string{{RoleUser, RoleAnonymous}, {RoleAdmin, RoleUser}} {
		if has, _ := e.HasRoleForUser(link[0], link[1]); !has {
			if _, err := e.AddRoleForUser(link[0], link[1]); err != nil {
				log.Error(err, fmt.Sprintf("Failed to add role '%s' -> '%s'", link[0], link[1]))
			}
		}
	}
	log.Info("Policy seeding complete.")
}
