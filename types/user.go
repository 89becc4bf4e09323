package types

import "time"

// Role is the closed set of account roles.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleOwner    Role = "owner"
	RoleAdmin    Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleOwner, RoleAdmin:
		return true
	}
	return false
}

// UserStatus is the closed set of account statuses.
type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
	UserPending  UserStatus = "pending"
)

// User represents an account in the system.
// Only owners may hold the pending status; customers and admins are
// created active.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Name is the user's display or full name.
	Name string `json:"name" db:"name"`

	// Email is the user's email address. Unique across accounts.
	Email string `json:"email" db:"email"`

	// Phone is the user's contact number.
	Phone string `json:"phone" db:"phone"`

	// Role indicates the user's authorization level within the system.
	Role Role `json:"role" db:"role"`

	// Status is the account lifecycle state. Owners start pending and
	// become active once approved by an admin.
	Status UserStatus `json:"status" db:"status"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// JoinDate is the timestamp of registration.
	JoinDate time.Time `json:"join_date" db:"join_date"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
