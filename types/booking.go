package types

import "time"

// BookingStatus is the lifecycle state of a reservation.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// PaymentMethod is the closed set of accepted payment methods.
type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "credit-card"
	PaymentPaypal     PaymentMethod = "paypal"
)

// Valid reports whether the payment method is one of the known values.
func (p PaymentMethod) Valid() bool {
	return p == PaymentCreditCard || p == PaymentPaypal
}

// Booking represents a reservation linking a customer and a car.
//
// OwnerID is copied from the car at creation time so that owner
// authorization checks need no join; it is never revalidated afterward.
// TotalAmount is computed once at creation and never recomputed.
type Booking struct {
	ID                 int           `json:"id" db:"id"`
	UserID             int           `json:"user_id" db:"user_id"`
	CarID              int           `json:"car_id" db:"car_id"`
	OwnerID            int           `json:"owner_id" db:"owner_id"`
	StartDate          time.Time     `json:"start_date" db:"start_date"`
	EndDate            time.Time     `json:"end_date" db:"end_date"`
	TotalAmount        float64       `json:"total_amount" db:"total_amount"`
	Status             BookingStatus `json:"status" db:"status"`
	PickupLocation     string        `json:"pickup_location" db:"pickup_location"`
	DropoffLocation    string        `json:"dropoff_location" db:"dropoff_location"`
	AdditionalServices []string      `json:"additional_services" db:"additional_services"`
	PaymentMethod      PaymentMethod `json:"payment_method" db:"payment_method"`
	RejectionReason    string        `json:"rejection_reason,omitempty" db:"rejection_reason"`

	// Joined display fields, populated on read paths that request them.
	CustomerName  string `json:"customer_name,omitempty" db:"-"`
	CustomerEmail string `json:"customer_email,omitempty" db:"-"`
	CarBrand      string `json:"car_brand,omitempty" db:"-"`
	CarModel      string `json:"car_model,omitempty" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
