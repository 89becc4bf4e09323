package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/carbnb/apiserver/types"
)

// TestimonialRepository handles persistence for testimonials.
type TestimonialRepository struct {
	db *sql.DB
}

func NewTestimonialRepository(db *sql.DB) *TestimonialRepository {
	return &TestimonialRepository{db: db}
}

func (r *TestimonialRepository) Create(ctx context.Context, t types.Testimonial) (types.Testimonial, error) {
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	const query = `
		INSERT INTO testimonials (name, location, rating, comment, avatar, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		t.Name,
		t.Location,
		t.Rating,
		t.Comment,
		t.Avatar,
		t.UserID,
		t.CreatedAt,
		t.UpdatedAt,
	).Scan(&t.ID); err != nil {
		return types.Testimonial{}, err
	}
	return t, nil
}

func (r *TestimonialRepository) List(ctx context.Context) ([]types.Testimonial, error) {
	const query = `
		SELECT t.id, t.name, t.location, t.rating, t.comment, t.avatar, t.user_id,
			t.created_at, t.updated_at, u.name, u.email
		FROM testimonials t
		JOIN users u ON u.id = t.user_id
		ORDER BY t.id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	testimonials := make([]types.Testimonial, 0)
	for rows.Next() {
		var t types.Testimonial
		if err := rows.Scan(
			&t.ID, &t.Name, &t.Location, &t.Rating, &t.Comment, &t.Avatar,
			&t.UserID, &t.CreatedAt, &t.UpdatedAt, &t.AuthorName, &t.AuthorEmail,
		); err != nil {
			return nil, err
		}
		testimonials = append(testimonials, t)
	}
	return testimonials, rows.Err()
}
