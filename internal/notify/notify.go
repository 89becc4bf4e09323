package notify

import (
	"context"
	"time"

	"github.com/carbnb/apiserver/types"
)

// Channel is the MQ channel notifications are published on.
const Channel = "notifications"

// Kind discriminates notification payloads on the wire.
type Kind string

const (
	KindCarStatus           Kind = "car_status"
	KindBookingStatus       Kind = "booking_status"
	KindRegistrationPending Kind = "registration_pending"
	KindOwnerApproved       Kind = "owner_approved"
	KindUserDeclined        Kind = "user_declined"
)

// CarEvent names the listing transitions owners are notified about.
type CarEvent string

const (
	CarApproved    CarEvent = "approved"
	CarRejected    CarEvent = "rejected"
	CarResubmitted CarEvent = "resubmitted"
)

// CarStatusPayload informs an owner of a listing review decision.
type CarStatusPayload struct {
	To              string   `json:"to"`
	OwnerName       string   `json:"owner_name"`
	CarDetails      string   `json:"car_details"`
	Status          CarEvent `json:"status"`
	RejectionReason string   `json:"rejection_reason,omitempty"`
	Chauffeur       bool     `json:"chauffeur,omitempty"`
}

// BookingStatusPayload informs a customer or owner of a booking transition.
type BookingStatusPayload struct {
	To              string              `json:"to"`
	UserName        string              `json:"user_name"`
	CarDetails      string              `json:"car_details"`
	Status          types.BookingStatus `json:"status"`
	PickupLocation  string              `json:"pickup_location"`
	StartDate       time.Time           `json:"start_date"`
	RejectionReason string              `json:"rejection_reason,omitempty"`
}

// AccountPayload covers the registration-pending, owner-approved and
// user-declined families, which carry only a recipient and a name.
type AccountPayload struct {
	To       string `json:"to"`
	UserName string `json:"user_name"`
}

// Notifier dispatches typed notifications to users. Implementations are
// best-effort side channels: the state mutation that triggered the
// notification has already been persisted by the time any of these is
// called, and callers only log dispatch failures.
type Notifier interface {
	CarStatus(ctx context.Context, p CarStatusPayload) error
	BookingStatus(ctx context.Context, p BookingStatusPayload) error
	RegistrationPending(ctx context.Context, p AccountPayload) error
	OwnerApproved(ctx context.Context, p AccountPayload) error
	UserDeclined(ctx context.Context, p AccountPayload) error
}
