//go:build unit

package service

import (
	"context"
	"errors"
	"fmt"
	"github.com/Chakyiu/chakyiu-blog/internal/cache"
	"github.com/Chakyiu/chakyiu-blog/internal/config"
	"github.com/Chakyiu/chakyiu-blog/internal/data"
	"github.com/Chakyiu/chakyiu-blog/internal/markdown"
	"sort"
	"testing"
	"time"
)

// newTestCache creates a new in-memory cache for testing.
func newTestCache(t *testing.T) cache.Store {
	t.Helper()
	c, err := cache.New(config.CacheConfig{Driver: "sqlite", FilePath: "file::memory:"})
	if err != nil {
		t.Fatalf("failed to create test cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func strPtr(s string) *string { return &s }

// mockCommentRepository keeps comments in memory.
type mockCommentRepository struct {
	comments    map[string]*data.Comment
	nextID      int
	clock       time.Time
	createCalls int
	hiddenCalls int
	errToReturn error
}

var _ CommentRepository = (*mockCommentRepository)(nil)

func newMockCommentRepository(seed ...*data.Comment) *mockCommentRepository {
	m := &mockCommentRepository{
		comments: map[string]*data.Comment{},
		clock:    time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	for _, c := range seed {
		cp := *c
		m.comments[c.ID] = &cp
	}
	return m
}

func (m *mockCommentRepository) CreateComment(ctx context.Context, c *data.Comment) error {
	m.createCalls++
	if m.errToReturn != nil {
		return m.errToReturn
	}
	m.nextID++
	m.clock = m.clock.Add(time.Minute)
	c.ID = fmt.Sprintf("c-new-%d", m.nextID)
	c.CreatedAt = m.clock
	cp := *c
	m.comments[c.ID] = &cp
	return nil
}

func (m *mockCommentRepository) GetCommentByID(ctx context.Context, id string) (*data.Comment, error) {
	c, ok := m.comments[id]
	if !ok {
		return nil, fmt.Errorf("comment %s: %w", id, data.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (m *mockCommentRepository) GetCommentsByPost(ctx context.Context, postID string) ([]*data.Comment, error) {
	if m.errToReturn != nil {
		return nil, m.errToReturn
	}
	out := []*data.Comment{}
	for _, c := range m.comments {
		if c.PostID == postID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *mockCommentRepository) GetAllComments(ctx context.Context, limit, offset int) ([]*data.AdminComment, error) {
	out := []*data.AdminComment{}
	for _, c := range m.comments {
		out = append(out, &data.AdminComment{Comment: *c})
	}
	return out, nil
}

func (m *mockCommentRepository) SetCommentHidden(ctx context.Context, id string, hidden bool) error {
	m.hiddenCalls++
	c, ok := m.comments[id]
	if !ok {
		return fmt.Errorf("comment %s: %w", id, data.ErrNotFound)
	}
	c.Hidden = hidden
	return nil
}

func (m *mockCommentRepository) DeleteCommentCascade(ctx context.Context, id string) (int64, error) {
	if _, ok := m.comments[id]; !ok {
		return 0, fmt.Errorf("comment %s: %w", id, data.ErrNotFound)
	}
	removed := int64(0)
	for cid, c := range m.comments {
		if c.ParentID != nil && *c.ParentID == id {
			delete(m.comments, cid)
			removed++
		}
	}
	delete(m.comments, id)
	return removed + 1, nil
}

// mockPostLookup resolves posts by ID.
type mockPostLookup struct {
	posts map[string]*data.Post
}

var _ PostLookup = (*mockPostLookup)(nil)

func (m *mockPostLookup) GetPostByID(ctx context.Context, id string) (*data.Post, error) {
	if p, ok := m.posts[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("post %s: %w", id, data.ErrNotFound)
}

// mockRenderer wraps the source in a paragraph and records the tier.
type mockRenderer struct {
	tiers       []markdown.Tier
	errToReturn error
}

var _ ContentRenderer = (*mockRenderer)(nil)

func (m *mockRenderer) Render(ctx context.Context, raw string, tier markdown.Tier) (string, error) {
	m.tiers = append(m.tiers, tier)
	if m.errToReturn != nil {
		return "", m.errToReturn
	}
	return "<p>" + raw + "</p>", nil
}

type notifyCall struct {
	UserID      string
	Type        data.NotificationType
	Message     string
	ReferenceID *string
}

// mockNotifier records every Notify call.
type mockNotifier struct {
	calls []notifyCall
}

var _ Notifier = (*mockNotifier)(nil)

func (m *mockNotifier) Notify(ctx context.Context, userID string, typ data.NotificationType, message string, referenceID *string) {
	m.calls = append(m.calls, notifyCall{UserID: userID, Type: typ, Message: message, ReferenceID: referenceID})
}

// mockNotificationRepository keeps notifications in memory. When failCreate
// is set CreateNotification always fails; when panicCreate is set it panics.
type mockNotificationRepository struct {
	notifications []*data.Notification
	failCreate    bool
	panicCreate   bool
	countCalls    int
}

var _ NotificationRepository = (*mockNotificationRepository)(nil)

func (m *mockNotificationRepository) CreateNotification(ctx context.Context, n *data.Notification) error {
	if m.panicCreate {
		panic("storage exploded")
	}
	if m.failCreate {
		return errors.New("database is locked")
	}
	n.ID = fmt.Sprintf("n-%d", len(m.notifications)+1)
	m.notifications = append(m.notifications, n)
	return nil
}

func (m *mockNotificationRepository) GetNotificationsByUser(ctx context.Context, userID string, limit int) ([]*data.Notification, error) {
	out := []*data.Notification{}
	for i := len(m.notifications) - 1; i >= 0 && len(out) < limit; i-- {
		if m.notifications[i].UserID == userID {
			out = append(out, m.notifications[i])
		}
	}
	return out, nil
}

func (m *mockNotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	m.countCalls++
	n := 0
	for _, x := range m.notifications {
		if x.UserID == userID && !x.Read {
			n++
		}
	}
	return n, nil
}

func (m *mockNotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	for _, x := range m.notifications {
		if x.ID == id && x.UserID == userID {
			x.Read = true
		}
	}
	return nil
}

func (m *mockNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	var n int64
	for _, x := range m.notifications {
		if x.UserID == userID && !x.Read {
			x.Read = true
			n++
		}
	}
	return n, nil
}

// mockUserRepository keeps users in memory.
type mockUserRepository struct {
	users map[string]*data.User
}

var _ UserRepository = (*mockUserRepository)(nil)

func newMockUserRepository(users ...*data.User) *mockUserRepository {
	m := &mockUserRepository{users: map[string]*data.User{}}
	for _, u := range users {
		cp := *u
		m.users[u.ID] = &cp
	}
	return m
}

func (m *mockUserRepository) GetUserByID(ctx context.Context, id string) (*data.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, data.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepository) GetAllUsers(ctx context.Context) ([]*data.User, error) {
	out := []*data.User{}
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockUserRepository) UpsertUser(ctx context.Context, u *data.User) (*data.User, error) {
	if existing, ok := m.users[u.ID]; ok {
		existing.Name = u.Name
		existing.Email = u.Email
		cp := *existing
		return &cp, nil
	}
	cp := *u
	m.users[u.ID] = &cp
	out := cp
	return &out, nil
}

func (m *mockUserRepository) UpdateUserRole(ctx context.Context, id string, role data.Role) error {
	if u, ok := m.users[id]; ok {
		u.Role = role
	}
	return nil
}

func (m *mockUserRepository) DeleteUser(ctx context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return fmt.Errorf("user %s: %w", id, data.ErrNotFound)
	}
	delete(m.users, id)
	return nil
}

// mockRoleSyncer records the roles pushed to the enforcer.
type mockRoleSyncer struct {
	roles       map[string]data.Role
	removed     []string
	errToReturn error
}

var _ RoleSyncer = (*mockRoleSyncer)(nil)

func (m *mockRoleSyncer) SyncRole(userID string, role data.Role) error {
	if m.errToReturn != nil {
		return m.errToReturn
	}
	if m.roles == nil {
		m.roles = map[string]data.Role{}
	}
	m.roles[userID] = role
	return nil
}

func (m *mockRoleSyncer) RemoveUser(userID string) error {
	m.removed = append(m.removed, userID)
	return m.errToReturn
}

// mockPostRepository keeps posts in memory.
type mockPostRepository struct {
	posts       map[string]*data.Post
	getBySlug   int
	createCalls int
	deleted     []string
}

var _ PostRepository = (*mockPostRepository)(nil)

func newMockPostRepository(posts ...*data.Post) *mockPostRepository {
	m := &mockPostRepository{posts: map[string]*data.Post{}}
	for _, p := range posts {
		cp := *p
		m.posts[p.ID] = &cp
	}
	return m
}

func (m *mockPostRepository) CreatePost(ctx context.Context, post *data.Post) error {
	m.createCalls++
	post.ID = fmt.Sprintf("p-%d", m.createCalls)
	cp := *post
	m.posts[post.ID] = &cp
	return nil
}

func (m *mockPostRepository) GetPostByID(ctx context.Context, id string) (*data.Post, error) {
	if p, ok := m.posts[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, fmt.Errorf("post %s: %w", id, data.ErrNotFound)
}

func (m *mockPostRepository) GetPostBySlug(ctx context.Context, slug string) (*data.Post, error) {
	m.getBySlug++
	for _, p := range m.posts {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("post %s: %w", slug, data.ErrNotFound)
}

func (m *mockPostRepository) UpdatePost(ctx context.Context, post *data.Post) error {
	cp := *post
	m.posts[post.ID] = &cp
	return nil
}

func (m *mockPostRepository) DeletePost(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.posts, id)
	return nil
}

func (m *mockPostRepository) GetPublishedPosts(ctx context.Context) ([]*data.Post, error) {
	out := []*data.Post{}
	for _, p := range m.posts {
		if p.Status == data.PostPublished {
			out = append(out, p)
		}
	}
	return out, nil
}

// mockProjectRepository keeps projects in memory.
type mockProjectRepository struct {
	projects    map[string]*data.Project
	createCalls int
	updateCalls int
}

var _ ProjectRepository = (*mockProjectRepository)(nil)

func newMockProjectRepository(projects ...*data.Project) *mockProjectRepository {
	m := &mockProjectRepository{projects: map[string]*data.Project{}}
	for _, p := range projects {
		cp := *p
		m.projects[p.ID] = &cp
	}
	return m
}

func (m *mockProjectRepository) CreateProject(ctx context.Context, p *data.Project) error {
	m.createCalls++
	p.ID = fmt.Sprintf("pr-%d", m.createCalls)
	cp := *p
	m.projects[p.ID] = &cp
	return nil
}

func (m *mockProjectRepository) GetProjectByID(ctx context.Context, id string) (*data.Project, error) {
	if p, ok := m.projects[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, fmt.Errorf("project %s: %w", id, data.ErrNotFound)
}

func (m *mockProjectRepository) GetProjectBySlug(ctx context.Context, slug string) (*data.Project, error) {
	for _, p := range m.projects {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("project %s: %w", slug, data.ErrNotFound)
}

func (m *mockProjectRepository) UpdateProject(ctx context.Context, p *data.Project) error {
	m.updateCalls++
	if _, ok := m.projects[p.ID]; !ok {
		return fmt.Errorf("project %s: %w", p.ID, data.ErrNotFound)
	}
	cp := *p
	m.projects[p.ID] = &cp
	return nil
}

func (m *mockProjectRepository) DeleteProject(ctx context.Context, id string) error {
	if _, ok := m.projects[id]; !ok {
		return fmt.Errorf("project %s: %w", id, data.ErrNotFound)
	}
	delete(m.projects, id)
	return nil
}

func (m *mockProjectRepository) ListProjects(ctx context.Context, status data.ProjectStatus) ([]*data.Project, error) {
	out := []*data.Project{}
	for _, p := range m.projects {
		if status == "" || p.Status == status {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// mockReadmeFetcher serves READMEs from a map keyed by repository URL.
type mockReadmeFetcher struct {
	readmes map[string]string
	err     error
	calls   []string
}

func (m *mockReadmeFetcher) FetchReadme(ctx context.Context, repoURL string) (string, error) {
	m.calls = append(m.calls, repoURL)
	if m.err != nil {
		return "", m.err
	}
	if r, ok := m.readmes[repoURL]; ok {
		return r, nil
	}
	return "", errors.New("unexpected repository " + repoURL)
}
