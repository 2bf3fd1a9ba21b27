// Package api exposes the admin write operations over HTTP. Routes mirror
// the admin UI's expectations: /blog, /playbook, and /upload-url, all behind
// the admin JWT middleware.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/botthef/content-admin/pkg/contentadmin"
	"github.com/botthef/content-admin/pkg/contentadmin/auth"
)

// Handler handles HTTP requests for the admin write API
type Handler struct {
	service   contentadmin.Service
	validator *auth.Validator
}

// NewHandler creates a new admin API handler
func NewHandler(service contentadmin.Service, validator *auth.Validator) *Handler {
	return &Handler{
		service:   service,
		validator: validator,
	}
}

// Routes returns the routes for the admin write API
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.requireAdmin)

	r.Route("/blog", func(r chi.Router) {
		r.Post("/", h.CreatePost)
		r.Put("/{slug}", h.UpdatePost)
		r.Delete("/{slug}", h.DeletePost)
	})

	r.Route("/playbook", func(r chi.Router) {
		r.Post("/", h.CreateModule)
		r.Put("/{slug}", h.UpdateModule)
		r.Delete("/{slug}", h.DeleteModule)
	})

	r.Post("/upload-url", h.IssueUploadURL)

	return r
}

// Blog routes

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req contentadmin.CreatePostRequest
	if !decode(w, r, &req) {
		return
	}

	post, err := h.service.CreatePost(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, post)
}

func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	var req contentadmin.UpdatePostRequest
	if !decode(w, r, &req) {
		return
	}

	post, err := h.service.UpdatePost(r.Context(), chi.URLParam(r, "slug"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, post)
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeletePost(r.Context(), chi.URLParam(r, "slug")); err != nil {
		writeError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// Playbook routes

func (h *Handler) CreateModule(w http.ResponseWriter, r *http.Request) {
	var req contentadmin.CreateModuleRequest
	if !decode(w, r, &req) {
		return
	}

	module, err := h.service.CreateModule(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, module)
}

func (h *Handler) UpdateModule(w http.ResponseWriter, r *http.Request) {
	var req contentadmin.UpdateModuleRequest
	if !decode(w, r, &req) {
		return
	}

	module, err := h.service.UpdateModule(r.Context(), chi.URLParam(r, "slug"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, module)
}

func (h *Handler) DeleteModule(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteModule(r.Context(), chi.URLParam(r, "slug")); err != nil {
		writeError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// Upload route

func (h *Handler) IssueUploadURL(w http.ResponseWriter, r *http.Request) {
	var req contentadmin.UploadURLRequest
	if !decode(w, r, &req) {
		return
	}

	uploadURL, err := h.service.IssueUploadURL(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, uploadURL)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, r, contentadmin.ErrInvalidPayload)
		return false
	}
	return true
}

// writeError maps service errors onto HTTP status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, contentadmin.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, contentadmin.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, contentadmin.ErrPostNotFound),
		errors.Is(err, contentadmin.ErrModuleNotFound),
		errors.Is(err, contentadmin.ErrProblemNotFound):
		status = http.StatusNotFound
	case errors.Is(err, contentadmin.ErrSlugExists):
		status = http.StatusConflict
	case errors.Is(err, contentadmin.ErrInvalidPayload),
		errors.Is(err, contentadmin.ErrInvalidContentType),
		errors.Is(err, contentadmin.ErrInvalidEntityType),
		errors.Is(err, contentadmin.ErrInvalidLocation):
		status = http.StatusBadRequest
	case errors.Is(err, contentadmin.ErrStoreUnavailable):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError || status == http.StatusBadGateway {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}

	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": err.Error()})
}
