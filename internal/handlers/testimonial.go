package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/carbnb/apiserver/internal/services"
	"github.com/carbnb/apiserver/types"
)

// TestimonialHandler serves the public testimonials wall.
type TestimonialHandler struct {
	testimonialService *services.TestimonialService
}

func NewTestimonialHandler(testimonialService *services.TestimonialService) *TestimonialHandler {
	return &TestimonialHandler{testimonialService: testimonialService}
}

// TestimonialRouter registers testimonial routes. Reading is public,
// posting requires authentication.
func TestimonialRouter(r chi.Router, testimonialService *services.TestimonialService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewTestimonialHandler(testimonialService)

	r.Get("/", handler.ListTestimonials)
	r.With(authMiddleware, RequireRole(types.RoleCustomer)).Post("/", handler.AddTestimonial)
}

type AddTestimonialRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
	Avatar   string `json:"avatar"`
}

// ListTestimonials returns every testimonial, newest first.
func (h *TestimonialHandler) ListTestimonials(w http.ResponseWriter, r *http.Request) {
	testimonials, err := h.testimonialService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list testimonials")
		return
	}
	writeJSON(w, http.StatusOK, testimonials)
}

// AddTestimonial records a testimonial for the authenticated user.
func (h *TestimonialHandler) AddTestimonial(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req AddTestimonialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	testimonial, err := h.testimonialService.Add(r.Context(), principal, types.Testimonial{
		Name:     strings.TrimSpace(req.Name),
		Location: strings.TrimSpace(req.Location),
		Rating:   req.Rating,
		Comment:  strings.TrimSpace(req.Comment),
		Avatar:   strings.TrimSpace(req.Avatar),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, testimonial)
}
