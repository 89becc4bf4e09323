package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbnb/apiserver/types"
)

func approvedCar(repo *fakeCarRepo, ownerID int, price float64) types.Car {
	car, _ := repo.Create(context.Background(), types.Car{
		Brand:     "Renault",
		Model:     "Clio",
		Price:     price,
		Available: true,
		OwnerID:   ownerID,
		Status:    types.CarApproved,
	})
	return car
}

func validBookingRequest(carID int) BookingRequest {
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	return BookingRequest{
		CarID:           carID,
		StartDate:       start,
		EndDate:         start.Add(72 * time.Hour),
		PickupLocation:  "Alger Centre",
		DropoffLocation: "Oran",
		PaymentMethod:   types.PaymentCreditCard,
	}
}

func newBookingFixture() (*BookingService, *fakeBookingRepo, *fakeCarRepo, *recordingNotifier) {
	bookings := newFakeBookingRepo()
	cars := newFakeCarRepo()
	users := newFakeUserRepo(
		types.User{ID: 1, Name: "Amine", Email: "amine@example.com", Role: types.RoleOwner},
		types.User{ID: 2, Name: "Sara", Email: "sara@example.com", Role: types.RoleCustomer},
	)
	notifier := newRecordingNotifier()
	return NewBookingService(bookings, cars, users, notifier), bookings, cars, notifier
}

func TestRentalDays(t *testing.T) {
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, 3, RentalDays(start, start.Add(72*time.Hour)))
	// Partial days round up.
	assert.Equal(t, 4, RentalDays(start, start.Add(73*time.Hour)))
	assert.Equal(t, 1, RentalDays(start, start.Add(time.Hour)))
	assert.Equal(t, 0, RentalDays(start, start))
}

func TestQuote(t *testing.T) {
	// 3 days at 45/day plus gps (10) and insurance (25) per day.
	assert.Equal(t, float64(3*45+3*35), Quote(45, 3, []string{"gps", "insurance"}))
	// Unknown services contribute nothing.
	assert.Equal(t, float64(90), Quote(45, 2, []string{"jetpack"}))
	assert.Equal(t, float64(45), Quote(45, 1, nil))
}

func TestCreateBookingReservesCar(t *testing.T) {
	svc, _, cars, notifier := newBookingFixture()
	car := approvedCar(cars, 1, 45)
	customer := types.Principal{UserID: 2, Role: types.RoleCustomer}

	booking, err := svc.Create(context.Background(), customer, validBookingRequest(car.ID))
	require.NoError(t, err)

	assert.Equal(t, types.BookingPending, booking.Status)
	assert.Equal(t, 1, booking.OwnerID)
	assert.Equal(t, float64(135), booking.TotalAmount)

	stored, err := cars.Get(context.Background(), car.ID)
	require.NoError(t, err)
	assert.False(t, stored.Available)

	// The owner gets a booking request notification.
	require.Len(t, notifier.bookingEvents, 1)
	assert.Equal(t, "amine@example.com", notifier.bookingEvents[0].To)
}

func TestCreateBookingPricesAdditionalServices(t *testing.T) {
	svc, _, cars, _ := newBookingFixture()
	car := approvedCar(cars, 1, 45)
	customer := types.Principal{UserID: 2, Role: types.RoleCustomer}

	req := validBookingRequest(car.ID)
	req.AdditionalServices = []string{"gps", "insurance", "driver"}

	booking, err := svc.Create(context.Background(), customer, req)
	require.NoError(t, err)
	assert.Equal(t, float64(3*45+3*(10+25+20)), booking.TotalAmount)
}

func TestCreateBookingRefusesNonCustomers(t *testing.T) {
	svc, _, cars, _ := newBookingFixture()
	car := approvedCar(cars, 1, 45)
	owner := types.Principal{UserID: 1, Role: types.RoleOwner}

	_, err := svc.Create(context.Background(), owner, validBookingRequest(car.ID))
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCreateBookingUnavailableCarConflicts(t *testing.T) {
	svc, _, cars, _ := newBookingFixture()
	car := approvedCar(cars, 1, 45)
	customer := types.Principal{UserID: 2, Role: types.RoleCustomer}

	_, err := svc.Create(context.Background(), customer, validBookingRequest(car.ID))
	require.NoError(t, err)

	// The car is locked while the first booking is pending.
	_, err = svc.Create(context.Background(), customer, validBookingRequest(car.ID))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateBookingMissingCarConflicts(t *testing.T) {
	svc, _, _, _ := newBookingFixture()
	customer := types.Principal{UserID: 2, Role: types.RoleCustomer}

	_, err := svc.Create(context.Background(), customer, validBookingRequest(404))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateBookingUnapprovedCarConflicts(t *testing.T) {
	svc, _, cars, _ := newBookingFixture()
	car, _ := cars.Create(context.Background(), types.Car{
		Brand: "Renault", Model: "Clio", Price: 45,
		Available: true, OwnerID: 1, Status: types.CarPending,
	})
	customer := types.Principal{UserID: 2, Role: types.RoleCustomer}

	_, err := svc.Create(context.Background(), customer, validBookingRequest(car.ID))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateBookingReleasesCarOnPersistFailure(t *testing.T) {
	svc, bookings, cars, _ := newBookingFixture()
	car := approvedCar(cars, 1, 45)
	bookings.createErr = errors.New("insert failed")
	customer := types.Principal{UserID: 2, Role: types.RoleCustomer}

	_, err := svc.Create(context.Background(), customer, validBookingRequest(car.ID))
	require.Error(t, err)

	stored, err := cars.Get(context.Background(), car.ID)
	require.NoError(t, err)
	assert.True(t, stored.Available)
}

func TestApproveBookingConfirms(t *testing.T) {
	svc, _, cars, notifier := newBookingFixture()
	car := approvedCar(cars, 1, 45)
	customer := types.Principal{UserID: 2, Role: types.RoleCustomer}
	owner := types.Principal{UserID: 1, Role: types.RoleOwner}

	booking, err := svc.Create(context.Background(), customer, validBookingRequest(car.ID))
	require.NoError(t, err)

	confirmed, err := svc.Approve(context.Background(), owner, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, types.BookingConfirmed, confirmed.Status)

	// The car stays reserved after confirmation.
	stored, err := cars.Get(context.Background(), car.ID)
	require.NoError(t, err)
	assert.False(t, stored.Available)

	require.Len(t, notifier.bookingEvents, 2)
	assert.Equal(t, types.BookingConfirmed, notifier.bookingEvents[1].Status)
}

func TestRejectBookingReleasesCar(t *testing.T) {
	svc, _, cars, notifier := newBookingFixture()
	car := approvedCar(cars, 1, 45)
	customer := types.Principal{UserID: 2, Role: types.RoleCustomer}
	owner := types.Principal{UserID: 1, Role: types.RoleOwner}

	booking, err := svc.Create(context.Background(), customer, validBookingRequest(car.ID))
	require.NoError(t, err)

	cancelled, err := svc.Reject(context.Background(), owner, booking.ID, "car in maintenance")
	require.NoError(t, err)
	assert.Equal(t, types.BookingCancelled, cancelled.Status)
	assert.Equal(t, "car in maintenance", cancelled.RejectionReason)

	stored, err := cars.Get(context.Background(), car.ID)
	require.NoError(t, err)
	assert.True(t, stored.Available)

	require.Len(t, notifier.bookingEvents, 2)
	assert.Equal(t, "car in maintenance", notifier.bookingEvents[1].RejectionReason)
}

func TestDecisionRequiresOwningOwner(t *testing.T) {
	svc, _, cars, _ := newBookingFixture()
	car := approvedCar(cars, 1, 45)
	customer := types.Principal{UserID: 2, Role: types.RoleCustomer}

	booking, err := svc.Create(context.Background(), customer, validBookingRequest(car.ID))
	require.NoError(t, err)

	stranger := types.Principal{UserID: 9, Role: types.RoleOwner}
	_, err = svc.Approve(context.Background(), stranger, booking.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Approve(context.Background(), customer, booking.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDecisionOnSettledBookingConflicts(t *testing.T) {
	svc, _, cars, _ := newBookingFixture()
	car := approvedCar(cars, 1, 45)
	customer := types.Principal{UserID: 2, Role: types.RoleCustomer}
	owner := types.Principal{UserID: 1, Role: types.RoleOwner}

	booking, err := svc.Create(context.Background(), customer, validBookingRequest(car.ID))
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), owner, booking.ID)
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), owner, booking.ID)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = svc.Reject(context.Background(), owner, booking.ID, "")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestListScopesByRole(t *testing.T) {
	svc, _, cars, _ := newBookingFixture()
	car := approvedCar(cars, 1, 45)
	otherCar := approvedCar(cars, 1, 50)
	customer := types.Principal{UserID: 2, Role: types.RoleCustomer}

	_, err := svc.Create(context.Background(), customer, validBookingRequest(car.ID))
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), customer, validBookingRequest(otherCar.ID))
	require.NoError(t, err)

	mine, err := svc.List(context.Background(), customer)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	other, err := svc.List(context.Background(), types.Principal{UserID: 8, Role: types.RoleCustomer})
	require.NoError(t, err)
	assert.Empty(t, other)

	all, err := svc.List(context.Background(), types.Principal{UserID: 3, Role: types.RoleAdmin})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListPendingForOwner(t *testing.T) {
	svc, _, cars, _ := newBookingFixture()
	car := approvedCar(cars, 1, 45)
	customer := types.Principal{UserID: 2, Role: types.RoleCustomer}
	owner := types.Principal{UserID: 1, Role: types.RoleOwner}

	booking, err := svc.Create(context.Background(), customer, validBookingRequest(car.ID))
	require.NoError(t, err)

	pending, err := svc.ListPendingForOwner(context.Background(), owner)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	_, err = svc.Approve(context.Background(), owner, booking.ID)
	require.NoError(t, err)

	pending, err = svc.ListPendingForOwner(context.Background(), owner)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = svc.ListPendingForOwner(context.Background(), customer)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestBookingRequestValidate(t *testing.T) {
	req := validBookingRequest(1)
	assert.NoError(t, req.Validate())

	bad := req
	bad.CarID = 0
	assert.ErrorIs(t, bad.Validate(), ErrValidation)

	bad = req
	bad.PickupLocation = ""
	assert.ErrorIs(t, bad.Validate(), ErrValidation)

	bad = req
	bad.PaymentMethod = "cash"
	assert.ErrorIs(t, bad.Validate(), ErrValidation)
}
