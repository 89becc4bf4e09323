package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/carbnb/apiserver/types"
)

// TestimonialRepository defines persistence operations for testimonials.
type TestimonialRepository interface {
	Create(ctx context.Context, t types.Testimonial) (types.Testimonial, error)
	List(ctx context.Context) ([]types.Testimonial, error)
}

// TestimonialService encapsulates customer reviews.
type TestimonialService struct {
	repo TestimonialRepository
}

func NewTestimonialService(repo TestimonialRepository) *TestimonialService {
	return &TestimonialService{repo: repo}
}

// Add records a review authored by the calling customer.
func (s *TestimonialService) Add(ctx context.Context, principal types.Principal, t types.Testimonial) (types.Testimonial, error) {
	switch {
	case strings.TrimSpace(t.Name) == "":
		return types.Testimonial{}, fmt.Errorf("%w: name is required", ErrValidation)
	case strings.TrimSpace(t.Location) == "":
		return types.Testimonial{}, fmt.Errorf("%w: location is required", ErrValidation)
	case t.Rating < 1 || t.Rating > 5:
		return types.Testimonial{}, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	case strings.TrimSpace(t.Comment) == "":
		return types.Testimonial{}, fmt.Errorf("%w: comment is required", ErrValidation)
	case strings.TrimSpace(t.Avatar) == "":
		return types.Testimonial{}, fmt.Errorf("%w: avatar is required", ErrValidation)
	}

	t.UserID = principal.UserID
	return s.repo.Create(ctx, t)
}

func (s *TestimonialService) List(ctx context.Context) ([]types.Testimonial, error) {
	return s.repo.List(ctx)
}
