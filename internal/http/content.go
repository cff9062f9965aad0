package httpserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Clark-Hu/content-ratings/internal/auth"
	"github.com/Clark-Hu/content-ratings/internal/domain"
	"github.com/Clark-Hu/content-ratings/internal/validation"
)

type contentCreateRequest struct {
	Title        string `json:"title" validate:"required,notblank,max=200"`
	Description  string `json:"description" validate:"max=5000"`
	Category     string `json:"category" validate:"required,max=50"`
	ThumbnailURL string `json:"thumbnail_url" validate:"max=2048"`
	ContentURL   string `json:"content_url" validate:"max=2048"`
}

type contentUpdateRequest struct {
	Title        *string `json:"title" validate:"omitempty,max=200"`
	Description  *string `json:"description" validate:"omitempty,max=5000"`
	Category     *string `json:"category" validate:"omitempty,max=50"`
	ThumbnailURL *string `json:"thumbnail_url" validate:"omitempty,max=2048"`
	ContentURL   *string `json:"content_url" validate:"omitempty,max=2048"`
}

type contentResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	ThumbnailURL string    `json:"thumbnail_url"`
	ContentURL   string    `json:"content_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type contentEnvelope struct {
	Message string          `json:"message"`
	Data    contentResponse `json:"data"`
}

type contentListEnvelope struct {
	Message string            `json:"message"`
	Data    []contentResponse `json:"data"`
}

func (s *Server) handleCreateContent(w http.ResponseWriter, r *http.Request) {
	var req contentCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		s.respondServiceError(w, r, err, "Failed to create content")
		return
	}

	content, err := s.catalog.CreateContent(r.Context(), auth.PrincipalFromContext(r.Context()), domain.ContentFields{
		Title:        req.Title,
		Description:  req.Description,
		Category:     domain.Category(req.Category),
		ThumbnailURL: req.ThumbnailURL,
		ContentURL:   req.ContentURL,
	})
	if err != nil {
		s.respondServiceError(w, r, err, "Failed to create content")
		return
	}
	s.respondJSON(w, http.StatusCreated, contentEnvelope{Message: "Content created", Data: toContentResponse(content)})
}

func (s *Server) handleListContent(w http.ResponseWriter, r *http.Request) {
	items, err := s.catalog.ListContent(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err, "Failed to list content")
		return
	}
	data := make([]contentResponse, 0, len(items))
	for _, c := range items {
		data = append(data, toContentResponse(c))
	}
	s.respondJSON(w, http.StatusOK, contentListEnvelope{Message: "All content", Data: data})
}

func (s *Server) handleGetContent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	content, err := s.catalog.GetContent(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, err, "Failed to load content")
		return
	}
	s.respondJSON(w, http.StatusOK, contentEnvelope{
		Message: fmt.Sprintf("Content with ID: %s", content.ID),
		Data:    toContentResponse(content),
	})
}

func (s *Server) handleUpdateContent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req contentUpdateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		s.respondServiceError(w, r, err, "Failed to update content")
		return
	}

	patch := domain.ContentPatch{
		Title:        req.Title,
		Description:  req.Description,
		ThumbnailURL: req.ThumbnailURL,
		ContentURL:   req.ContentURL,
	}
	if req.Category != nil {
		c := domain.Category(*req.Category)
		patch.Category = &c
	}

	content, err := s.catalog.UpdateContent(r.Context(), auth.PrincipalFromContext(r.Context()), id, patch)
	if err != nil {
		s.respondServiceError(w, r, err, "Failed to update content")
		return
	}
	s.respondJSON(w, http.StatusOK, contentEnvelope{
		Message: fmt.Sprintf("Content with ID: %s updated", content.ID),
		Data:    toContentResponse(content),
	})
}

func (s *Server) handleDeleteContent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.catalog.DeleteContent(r.Context(), auth.PrincipalFromContext(r.Context()), id); err != nil {
		s.respondServiceError(w, r, err, "Failed to delete content")
		return
	}
	s.respondJSON(w, http.StatusOK, messageResponse{Message: fmt.Sprintf("Content with ID: %s deleted", id)})
}

func toContentResponse(c domain.Content) contentResponse {
	return contentResponse{
		ID:           c.ID,
		Title:        c.Title,
		Description:  c.Description,
		Category:     string(c.Category),
		ThumbnailURL: c.ThumbnailURL,
		ContentURL:   c.ContentURL,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
