package types

import "time"

// Testimonial is a customer review displayed on the public site.
type Testimonial struct {
	ID       int    `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Location string `json:"location" db:"location"`
	Rating   int    `json:"rating" db:"rating"`
	Comment  string `json:"comment" db:"comment"`
	Avatar   string `json:"avatar" db:"avatar"`
	UserID   int    `json:"user_id" db:"user_id"`

	AuthorName  string `json:"author_name,omitempty" db:"-"`
	AuthorEmail string `json:"author_email,omitempty" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
