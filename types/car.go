package types

import "time"

// CarStatus is the review state of a listing.
type CarStatus string

const (
	CarPending  CarStatus = "pending"
	CarApproved CarStatus = "approved"
	CarRejected CarStatus = "rejected"
)

// CarCategory is the closed set of listing categories.
type CarCategory string

const (
	CategoryEconomy CarCategory = "Economy"
	CategoryCompact CarCategory = "Compact"
	CategorySUV     CarCategory = "SUV"
	CategoryLuxury  CarCategory = "Luxury"
	CategorySports  CarCategory = "Sports"
)

// Valid reports whether the category is one of the known values.
func (c CarCategory) Valid() bool {
	switch c {
	case CategoryEconomy, CategoryCompact, CategorySUV, CategoryLuxury, CategorySports:
		return true
	}
	return false
}

// Transmission is the closed set of gearbox types.
type Transmission string

const (
	TransmissionManual    Transmission = "Manual"
	TransmissionAutomatic Transmission = "Automatic"
)

// Valid reports whether the transmission is one of the known values.
func (t Transmission) Valid() bool {
	return t == TransmissionManual || t == TransmissionAutomatic
}

// FuelType is the closed set of fuel types.
type FuelType string

const (
	FuelPetrol   FuelType = "Petrol"
	FuelDiesel   FuelType = "Diesel"
	FuelElectric FuelType = "Electric"
	FuelHybrid   FuelType = "Hybrid"
)

// Valid reports whether the fuel type is one of the known values.
func (f FuelType) Valid() bool {
	switch f {
	case FuelPetrol, FuelDiesel, FuelElectric, FuelHybrid:
		return true
	}
	return false
}

// Car represents a rentable listing submitted by an owner.
// A car is bookable only while it is approved and available; edits are
// permitted only while it is pending or rejected, and every edit returns
// it to pending review.
type Car struct {
	// ID is the unique identifier of the car.
	ID int `json:"id" db:"id"`

	// Brand is the manufacturer name.
	Brand string `json:"brand" db:"brand"`

	// Model is the manufacturer model name.
	Model string `json:"model" db:"model"`

	// Year is the model year.
	Year int `json:"year" db:"year"`

	// Price is the rental price per day.
	Price float64 `json:"price" db:"price"`

	// Image is the object-storage key of the listing photo.
	Image string `json:"image" db:"image"`

	// Category classifies the car into one of the closed categories.
	Category CarCategory `json:"category" db:"category"`

	// Transmission is the gearbox type.
	Transmission Transmission `json:"transmission" db:"transmission"`

	// Fuel is the fuel type.
	Fuel FuelType `json:"fuel" db:"fuel"`

	// Seats is the passenger seat count.
	Seats int `json:"seats" db:"seats"`

	// Available reports whether the car can currently be booked. Creating
	// a booking flips it to false; rejecting that booking flips it back.
	Available bool `json:"available" db:"available"`

	// Features are free-form labels describing the car's equipment,
	// preserved in submission order.
	Features []string `json:"features" db:"features"`

	// Wilaya and Commune locate the car within its region.
	Wilaya  string `json:"wilaya" db:"wilaya"`
	Commune string `json:"commune" db:"commune"`

	// Chauffeur reports whether the owner offers the car with a driver.
	Chauffeur bool `json:"chauffeur" db:"chauffeur"`

	// Rating is the aggregate customer rating, zero for new listings.
	Rating float64 `json:"rating" db:"rating"`

	// OwnerID references the owning user. Immutable after creation.
	OwnerID int `json:"owner_id" db:"owner_id"`

	// Status is the admin review state of the listing.
	Status CarStatus `json:"status" db:"status"`

	// RejectionReason explains a rejection, when the admin supplied one.
	RejectionReason string `json:"rejection_reason,omitempty" db:"rejection_reason"`

	// OwnerName and OwnerEmail are joined from the owning user for
	// display. Populated only on read paths that request them.
	OwnerName  string `json:"owner_name,omitempty" db:"-"`
	OwnerEmail string `json:"owner_email,omitempty" db:"-"`

	// CreatedAt is the timestamp at which the listing was submitted.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the listing.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
