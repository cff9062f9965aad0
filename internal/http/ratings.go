package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Clark-Hu/content-ratings/internal/auth"
	"github.com/Clark-Hu/content-ratings/internal/domain"
	"github.com/Clark-Hu/content-ratings/internal/validation"
)

type rateRequest struct {
	Content string `json:"content" validate:"required,uuid"`
	Rating  *int   `json:"rating" validate:"required"`
}

type ratingResponse struct {
	ID           string    `json:"id"`
	User         string    `json:"user"`
	Content      string    `json:"content"`
	Rating       int       `json:"rating"`
	Username     *string   `json:"username,omitempty"`
	ContentTitle *string   `json:"content_title,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type rateEnvelope struct {
	Message string         `json:"message"`
	Rating  ratingResponse `json:"rating"`
}

type ratingListEnvelope struct {
	Message string           `json:"message"`
	Ratings []ratingResponse `json:"ratings"`
}

func (s *Server) handleRateContent(w http.ResponseWriter, r *http.Request) {
	var req rateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		s.respondServiceError(w, r, err, "Error processing rating")
		return
	}

	rating, disposition, err := s.ratings.Rate(r.Context(), auth.PrincipalFromContext(r.Context()), req.Content, *req.Rating)
	if err != nil {
		s.respondServiceError(w, r, err, "Error processing rating")
		return
	}

	status, message := http.StatusCreated, "Rating created successfully"
	if disposition == domain.DispositionUpdated {
		status, message = http.StatusOK, "Rating updated successfully"
	}
	s.respondJSON(w, status, rateEnvelope{Message: message, Rating: toRatingResponse(rating)})
}

func (s *Server) handleRatingsByContent(w http.ResponseWriter, r *http.Request) {
	items, err := s.ratings.ListRatingsForContent(r.Context(), chi.URLParam(r, "contentId"))
	if err != nil {
		s.respondServiceError(w, r, err, "Error retrieving ratings")
		return
	}
	out := make([]ratingResponse, 0, len(items))
	for _, item := range items {
		resp := toRatingResponse(item.Rating)
		username := item.Username
		resp.Username = &username
		out = append(out, resp)
	}
	s.respondJSON(w, http.StatusOK, ratingListEnvelope{Message: "Ratings retrieved successfully", Ratings: out})
}

func (s *Server) handleRatingsByUser(w http.ResponseWriter, r *http.Request) {
	items, err := s.ratings.ListRatingsForUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		s.respondServiceError(w, r, err, "Error retrieving ratings")
		return
	}
	out := make([]ratingResponse, 0, len(items))
	for _, item := range items {
		resp := toRatingResponse(item.Rating)
		title := item.ContentTitle
		resp.ContentTitle = &title
		out = append(out, resp)
	}
	s.respondJSON(w, http.StatusOK, ratingListEnvelope{Message: "Ratings retrieved successfully", Ratings: out})
}

func toRatingResponse(r domain.Rating) ratingResponse {
	return ratingResponse{
		ID:        r.ID,
		User:      r.UserID,
		Content:   r.ContentID,
		Rating:    r.Value,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
