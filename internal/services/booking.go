package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/carbnb/apiserver/internal/notify"
	"github.com/carbnb/apiserver/internal/store"
	"github.com/carbnb/apiserver/types"
)

// BookingRepository defines persistence operations for bookings.
type BookingRepository interface {
	Get(ctx context.Context, id int) (types.Booking, error)
	Create(ctx context.Context, booking types.Booking) (types.Booking, error)
	ListAll(ctx context.Context) ([]types.Booking, error)
	ListByUser(ctx context.Context, userID int) ([]types.Booking, error)
	ListPendingByOwner(ctx context.Context, ownerID int) ([]types.Booking, error)
	SetStatus(ctx context.Context, id int, status types.BookingStatus, reason *string) error
}

// servicePrices is the fixed per-day unit price of each additional
// service. Unknown service codes contribute nothing.
var servicePrices = map[string]float64{
	"gps":        10,
	"insurance":  25,
	"child-seat": 15,
	"driver":     20,
	"wifi":       8,
}

// BookingRequest carries the customer-supplied reservation fields.
type BookingRequest struct {
	CarID              int
	StartDate          time.Time
	EndDate            time.Time
	PickupLocation     string
	DropoffLocation    string
	AdditionalServices []string
	PaymentMethod      types.PaymentMethod
}

// Validate checks required fields. The date range itself is not
// validated: a zero or negative duration is a known gap carried over
// from the pricing rules.
func (r BookingRequest) Validate() error {
	switch {
	case r.CarID <= 0:
		return fmt.Errorf("%w: car id is required", ErrValidation)
	case r.StartDate.IsZero() || r.EndDate.IsZero():
		return fmt.Errorf("%w: start and end dates are required", ErrValidation)
	case r.PickupLocation == "":
		return fmt.Errorf("%w: pickup location is required", ErrValidation)
	case r.DropoffLocation == "":
		return fmt.Errorf("%w: dropoff location is required", ErrValidation)
	case !r.PaymentMethod.Valid():
		return fmt.Errorf("%w: invalid payment method %q", ErrValidation, r.PaymentMethod)
	}
	return nil
}

// RentalDays is the billed day count: the date span rounded up to whole
// days.
func RentalDays(start, end time.Time) int {
	return int(math.Ceil(end.Sub(start).Hours() / 24))
}

// Quote computes the total amount for a rental: the car's daily price
// times the day count, plus the per-day fees of the selected services
// over the same days.
func Quote(pricePerDay float64, days int, additionalServices []string) float64 {
	var perDayFee float64
	for _, service := range additionalServices {
		perDayFee += servicePrices[service]
	}
	return pricePerDay*float64(days) + perDayFee*float64(days)
}

// BookingService owns the reservation lifecycle: creation with pricing
// and the availability lock, and the owner's approve/reject decisions.
type BookingService struct {
	repo     BookingRepository
	cars     CarRepository
	users    UserRepository
	notifier notify.Notifier
}

func NewBookingService(repo BookingRepository, cars CarRepository, users UserRepository, notifier notify.Notifier) *BookingService {
	return &BookingService{repo: repo, cars: cars, users: users, notifier: notifier}
}

// Create reserves a car for a customer. The availability flag is
// flipped by a conditional update before the booking row is written, so
// two concurrent requests for the same car cannot both succeed. The
// car's owner is denormalized onto the booking and notified.
func (s *BookingService) Create(ctx context.Context, principal types.Principal, req BookingRequest) (types.Booking, error) {
	if principal.Role != types.RoleCustomer {
		return types.Booking{}, fmt.Errorf("%w: only customers may book cars", ErrForbidden)
	}
	if err := req.Validate(); err != nil {
		return types.Booking{}, err
	}

	car, err := s.cars.Get(ctx, req.CarID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Booking{}, fmt.Errorf("%w: car not available", ErrConflict)
		}
		return types.Booking{}, err
	}

	reserved, err := s.cars.Reserve(ctx, car.ID)
	if err != nil {
		return types.Booking{}, err
	}
	if !reserved {
		return types.Booking{}, fmt.Errorf("%w: car not available", ErrConflict)
	}

	days := RentalDays(req.StartDate, req.EndDate)
	booking := types.Booking{
		UserID:             principal.UserID,
		CarID:              car.ID,
		OwnerID:            car.OwnerID,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		TotalAmount:        Quote(car.Price, days, req.AdditionalServices),
		Status:             types.BookingPending,
		PickupLocation:     req.PickupLocation,
		DropoffLocation:    req.DropoffLocation,
		AdditionalServices: req.AdditionalServices,
		PaymentMethod:      req.PaymentMethod,
	}

	created, err := s.repo.Create(ctx, booking)
	if err != nil {
		if releaseErr := s.cars.Release(ctx, car.ID); releaseErr != nil {
			log.Printf("bookings: failed to release car %d after create failure: %v", car.ID, releaseErr)
		}
		return types.Booking{}, err
	}

	if owner, err := s.users.GetByID(ctx, car.OwnerID); err != nil {
		log.Printf("bookings: failed to load owner %d for request notification: %v", car.OwnerID, err)
	} else {
		s.notifyBooking(ctx, owner.Email, owner.Name, car.Brand+" "+car.Model, created, "")
	}
	return created, nil
}

// List returns every booking for admins and the caller's own bookings
// otherwise, with customer and car details joined.
func (s *BookingService) List(ctx context.Context, principal types.Principal) ([]types.Booking, error) {
	if principal.Role == types.RoleAdmin {
		return s.repo.ListAll(ctx)
	}
	return s.repo.ListByUser(ctx, principal.UserID)
}

// ListPendingForOwner returns the calling owner's bookings awaiting a
// decision.
func (s *BookingService) ListPendingForOwner(ctx context.Context, principal types.Principal) ([]types.Booking, error) {
	if principal.Role != types.RoleOwner {
		return nil, fmt.Errorf("%w: owner access required", ErrForbidden)
	}
	return s.repo.ListPendingByOwner(ctx, principal.UserID)
}

// Approve confirms a pending booking. Only the owner recorded on the
// booking may approve, and the car stays reserved.
func (s *BookingService) Approve(ctx context.Context, principal types.Principal, bookingID int) (types.Booking, error) {
	booking, err := s.authorizeDecision(ctx, principal, bookingID)
	if err != nil {
		return types.Booking{}, err
	}

	if err := s.repo.SetStatus(ctx, bookingID, types.BookingConfirmed, nil); err != nil {
		return types.Booking{}, err
	}
	booking.Status = types.BookingConfirmed

	s.notifyBooking(ctx, booking.CustomerEmail, booking.CustomerName, booking.CarBrand+" "+booking.CarModel, booking, "")
	return booking, nil
}

// Reject cancels a pending booking, releases the car back to available,
// and notifies the customer with the reason.
func (s *BookingService) Reject(ctx context.Context, principal types.Principal, bookingID int, reason string) (types.Booking, error) {
	booking, err := s.authorizeDecision(ctx, principal, bookingID)
	if err != nil {
		return types.Booking{}, err
	}

	if err := s.repo.SetStatus(ctx, bookingID, types.BookingCancelled, &reason); err != nil {
		return types.Booking{}, err
	}
	booking.Status = types.BookingCancelled
	booking.RejectionReason = reason

	if err := s.cars.Release(ctx, booking.CarID); err != nil {
		return types.Booking{}, fmt.Errorf("release car %d: %w", booking.CarID, err)
	}

	s.notifyBooking(ctx, booking.CustomerEmail, booking.CustomerName, booking.CarBrand+" "+booking.CarModel, booking, reason)
	return booking, nil
}

// authorizeDecision loads a booking and checks that the caller is the
// owner it was created against and that it is still pending. Confirmed
// and cancelled are terminal.
func (s *BookingService) authorizeDecision(ctx context.Context, principal types.Principal, bookingID int) (types.Booking, error) {
	booking, err := s.repo.Get(ctx, bookingID)
	if err != nil {
		return types.Booking{}, err
	}
	if principal.Role != types.RoleOwner || booking.OwnerID != principal.UserID {
		return types.Booking{}, fmt.Errorf("%w: not the owner of this booking", ErrForbidden)
	}
	if booking.Status != types.BookingPending {
		return types.Booking{}, fmt.Errorf("%w: booking is already %s", ErrConflict, booking.Status)
	}
	return booking, nil
}

func (s *BookingService) notifyBooking(ctx context.Context, to, name, carDetails string, booking types.Booking, reason string) {
	payload := notify.BookingStatusPayload{
		To:              to,
		UserName:        name,
		CarDetails:      carDetails,
		Status:          booking.Status,
		PickupLocation:  booking.PickupLocation,
		StartDate:       booking.StartDate,
		RejectionReason: reason,
	}
	if err := s.notifier.BookingStatus(ctx, payload); err != nil {
		log.Printf("bookings: failed to dispatch %s notification for booking %d: %v", booking.Status, booking.ID, err)
	}
}
