package handler

import (
	"github.com/Chakyiu/chakyiu-blog/internal/logger"
	"github.com/Chakyiu/chakyiu-blog/internal/middleware"
	"github.com/Chakyiu/chakyiu-blog/internal/service"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ProjectHandler serves the project pages and the admin project API.
type ProjectHandler struct {
	projects ProjectServicer
	pages    *Pages
	log      logger.Logger
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(ps ProjectServicer, p *Pages, log logger.Logger) *ProjectHandler {
	return &ProjectHandler{projects: ps, pages: p, log: log}
}

func (h *ProjectHandler) index(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	projects, err := h.projects.ListProjects(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		return middleware.FromService(err)
	}
	return h.pages.render(w, r, "projects.html", map[string]interface{}{"Projects": projects})
}

func (h *ProjectHandler) show(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	project, err := h.projects.GetProject(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "slug"))
	if err != nil {
		return middleware.FromService(err)
	}
	return h.pages.render(w, r, "project.html", map[string]interface{}{"Project": project})
}

func (h *ProjectHandler) list(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.ListProjects(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) create(w http.ResponseWriter, r *http.Request) {
	var in service.ProjectInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, h.log, err)
		return
	}
	project, err := h.projects.CreateProject(r.Context(), middleware.ActorFromContext(r.Context()), in)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) update(w http.ResponseWriter, r *http.Request) {
	var in service.ProjectInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, h.log, err)
		return
	}
	project, err := h.projects.UpdateProject(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, project)
}

// refreshReadme pulls the README from GitHub again.
func (h *ProjectHandler) refreshReadme(w http.ResponseWriter, r *http.Request) {
	project, err := h.projects.RefreshReadme(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.projects.DeleteProject(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		respondError(w, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, nil)
}
