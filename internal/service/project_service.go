package service

import (
	"context"
	"errors"
	"github.com/Chakyiu/chakyiu-blog/internal/config"
	"github.com/Chakyiu/chakyiu-blog/internal/data"
	"github.com/Chakyiu/chakyiu-blog/internal/github"
	"github.com/Chakyiu/chakyiu-blog/internal/logger"
	"github.com/Chakyiu/chakyiu-blog/internal/markdown"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProjectRepository defines the interface for database operations on projects.
type ProjectRepository interface {
	CreateProject(ctx context.Context, p *data.Project) error
	GetProjectByID(ctx context.Context, id string) (*data.Project, error)
	GetProjectBySlug(ctx context.Context, slug string) (*data.Project, error)
	UpdateProject(ctx context.Context, p *data.Project) error
	DeleteProject(ctx context.Context, id string) error
	ListProjects(ctx context.Context, status data.ProjectStatus) ([]*data.Project, error)
}

// ReadmeFetcher downloads a repository README.
type ReadmeFetcher interface {
	FetchReadme(ctx context.Context, repoURL string) (string, error)
}

// ProjectInput is the editable part of a project. Readme is used when no
// GitHub URL is given or the README cannot be fetched.
type ProjectInput struct {
	Title       string             `json:"title" validate:"required,max=255"`
	Description string             `json:"description" validate:"omitempty,max=1000"`
	GithubURL   string             `json:"githubUrl" label:"GitHub URL" validate:"omitempty,url,startswith=https://github.com/"`
	ImageURL    string             `json:"imageUrl" label:"Image URL" validate:"omitempty,url"`
	ProductURL  string             `json:"productUrl" label:"Product URL" validate:"omitempty,url"`
	Readme      string             `json:"readme"`
	Status      data.ProjectStatus `json:"status" validate:"omitempty,oneof=draft published archived"`
}

// ProjectService manages projects. READMEs are author content and render at
// the trusted tier.
type ProjectService struct {
	repo          ProjectRepository
	renderer      ContentRenderer
	readmes       ReadmeFetcher
	maxLength     int
	excerptLength int
	now           func() time.Time
	log           logger.Logger
}

// NewProjectService creates a new ProjectService. readmes may be nil, in
// which case only typed-in READMEs are used.
func NewProjectService(repo ProjectRepository, renderer ContentRenderer, readmes ReadmeFetcher, cfg config.ContentConfig, log logger.Logger) *ProjectService {
	return &ProjectService{
		repo:          repo,
		renderer:      renderer,
		readmes:       readmes,
		maxLength:     cfg.MaxPostLength,
		excerptLength: cfg.ExcerptLength,
		now:           time.Now,
		log:           log,
	}
}

// CreateProject stores a new project, fetching its README when a GitHub URL
// is given.
func (s *ProjectService) CreateProject(ctx context.Context, actor Actor, in ProjectInput) (*data.Project, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := s.check(in); err != nil {
		return nil, err
	}
	slug, err := s.uniqueSlug(ctx, in.Title, "")
	if err != nil {
		return nil, err
	}

	p := &data.Project{Slug: slug}
	s.apply(p, in)
	authorID := actor.ID
	p.AuthorID = &authorID
	if err := s.resolveReadme(ctx, p, in, nil); err != nil {
		return nil, err
	}

	if err := s.repo.CreateProject(ctx, p); err != nil {
		return nil, InternalError("failed to create project", err)
	}
	return p, nil
}

// UpdateProject replaces a project's editable fields. The README is fetched
// again only when the GitHub URL changes.
func (s *ProjectService) UpdateProject(ctx context.Context, actor Actor, id string, in ProjectInput) (*data.Project, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := s.check(in); err != nil {
		return nil, err
	}
	existing, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p := *existing
	if strings.TrimSpace(in.Title) != existing.Title {
		if p.Slug, err = s.uniqueSlug(ctx, in.Title, existing.ID); err != nil {
			return nil, err
		}
	}
	s.apply(&p, in)
	if err := s.resolveReadme(ctx, &p, in, existing); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateProject(ctx, &p); err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return nil, NotFoundError("Project not found")
		}
		return nil, InternalError("failed to update project", err)
	}
	return &p, nil
}

// RefreshReadme fetches the README from GitHub again.
func (s *ProjectService) RefreshReadme(ctx context.Context, actor Actor, id string) (*data.Project, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	p, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.GithubURL == "" {
		return nil, ValidationError("No GitHub URL set for this project")
	}
	if s.readmes == nil {
		return nil, ValidationError("README fetching is not configured")
	}

	readme, err := s.readmes.FetchReadme(ctx, p.GithubURL)
	if err != nil {
		if errors.Is(err, github.ErrReadmeNotFound) || errors.Is(err, github.ErrInvalidURL) {
			return nil, ValidationError(err.Error())
		}
		return nil, InternalError("failed to fetch README", err)
	}
	fetched := s.now().UTC()
	p.Readme = readme
	p.ReadmeUpdatedAt = &fetched
	if err := s.renderReadme(ctx, p, ""); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateProject(ctx, p); err != nil {
		return nil, InternalError("failed to update project", err)
	}
	return p, nil
}

// DeleteProject removes a project.
func (s *ProjectService) DeleteProject(ctx context.Context, actor Actor, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.repo.DeleteProject(ctx, id); err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return NotFoundError("Project not found")
		}
		return InternalError("failed to delete project", err)
	}
	return nil
}

// GetProject returns a project by slug. Drafts are only visible to admins;
// archived projects stay reachable.
func (s *ProjectService) GetProject(ctx context.Context, viewer Actor, slug string) (*data.Project, error) {
	p, err := s.repo.GetProjectBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return nil, NotFoundError("Project not found")
		}
		return nil, InternalError("failed to load project", err)
	}
	if p.Status == data.ProjectDraft && !viewer.IsAdmin() {
		return nil, NotFoundError("Project not found")
	}
	return p, nil
}

// ListProjects returns published projects, or every project for admins.
func (s *ProjectService) ListProjects(ctx context.Context, viewer Actor) ([]*data.Project, error) {
	status := data.ProjectPublished
	if viewer.IsAdmin() {
		status = ""
	}
	projects, err := s.repo.ListProjects(ctx, status)
	if err != nil {
		return nil, InternalError("failed to load projects", err)
	}
	return projects, nil
}

func (s *ProjectService) check(in ProjectInput) error {
	if err := checkStruct(in); err != nil {
		return err
	}
	if in.Readme != "" && s.maxLength > 0 {
		return checkText("README", in.Readme, s.maxLength)
	}
	return nil
}

func (s *ProjectService) apply(p *data.Project, in ProjectInput) {
	p.Title = strings.TrimSpace(in.Title)
	p.Description = strings.TrimSpace(in.Description)
	p.GithubURL = strings.TrimSpace(in.GithubURL)
	p.ImageURL = strings.TrimSpace(in.ImageURL)
	p.ProductURL = strings.TrimSpace(in.ProductURL)
	p.Status = in.Status
	if p.Status == "" {
		p.Status = data.ProjectDraft
	}
}

// uniqueSlug derives a slug from title. A slug taken by another project gets
// a short random suffix.
func (s *ProjectService) uniqueSlug(ctx context.Context, title, excludeID string) (string, error) {
	base := Slugify(title)
	if base == "" {
		return "", ValidationError("Slug cannot be empty")
	}
	other, err := s.repo.GetProjectBySlug(ctx, base)
	switch {
	case errors.Is(err, data.ErrNotFound):
		return base, nil
	case err != nil:
		return "", InternalError("failed to check project slug", err)
	case other.ID == excludeID:
		return base, nil
	}
	return base + "-" + uuid.NewString()[:4], nil
}

// resolveReadme picks the README source: a fresh fetch when the GitHub URL
// is new, otherwise the typed-in text or the previously stored README.
func (s *ProjectService) resolveReadme(ctx context.Context, p *data.Project, in ProjectInput, previous *data.Project) error {
	p.Readme = in.Readme
	p.ReadmeUpdatedAt = nil
	if previous != nil && p.GithubURL != "" && p.GithubURL == previous.GithubURL {
		p.ReadmeUpdatedAt = previous.ReadmeUpdatedAt
		if p.Readme == "" {
			p.Readme = previous.Readme
		}
	}

	urlChanged := previous == nil || p.GithubURL != previous.GithubURL
	if p.GithubURL != "" && urlChanged && s.readmes != nil {
		readme, err := s.readmes.FetchReadme(ctx, p.GithubURL)
		if err != nil {
			s.log.With(map[string]interface{}{"github_url": p.GithubURL}).Error(err, "Failed to fetch project README")
		} else {
			fetched := s.now().UTC()
			p.Readme = readme
			p.ReadmeUpdatedAt = &fetched
		}
	}
	return s.renderReadme(ctx, p, in.Description)
}

// renderReadme renders the README and, when no description was given,
// derives one from the rendered text.
func (s *ProjectService) renderReadme(ctx context.Context, p *data.Project, description string) error {
	rendered, err := s.renderer.Render(ctx, p.Readme, markdown.Trusted)
	if err != nil {
		s.log.Error(err, "Failed to render project README")
		return RenderFailure(err)
	}
	p.RenderedReadme = rendered
	if strings.TrimSpace(description) == "" && p.Description == "" {
		p.Description = markdown.PlainText(rendered, s.excerptLength)
	}
	return nil
}

func (s *ProjectService) getByID(ctx context.Context, id string) (*data.Project, error) {
	p, err := s.repo.GetProjectByID(ctx, id)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return nil, NotFoundError("Project not found")
		}
		return nil, InternalError("failed to load project", err)
	}
	return p, nil
}
