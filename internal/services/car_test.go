package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbnb/apiserver/internal/notify"
	"github.com/carbnb/apiserver/internal/store"
	"github.com/carbnb/apiserver/types"
)

func validDraft() CarDraft {
	return CarDraft{
		Brand:        "Renault",
		Model:        "Clio",
		Year:         2022,
		Price:        45,
		Category:     types.CategoryEconomy,
		Transmission: types.TransmissionManual,
		Fuel:         types.FuelPetrol,
		Seats:        5,
		Features:     []string{"bluetooth"},
		Wilaya:       "Alger",
		Commune:      "Bab El Oued",
	}
}

func testImage() ImageUpload {
	return ImageUpload{Filename: "clio.jpg", Data: []byte("jpeg-bytes")}
}

func newCarServiceFixture() (*CarService, *fakeCarRepo, *fakeUserRepo, *fakeBlobStore, *recordingNotifier) {
	cars := newFakeCarRepo()
	users := newFakeUserRepo(types.User{
		ID:     1,
		Name:   "Amine",
		Email:  "amine@example.com",
		Role:   types.RoleOwner,
		Status: types.UserActive,
	})
	blobs := newFakeBlobStore()
	notifier := newRecordingNotifier()
	return NewCarService(cars, users, blobs, notifier), cars, users, blobs, notifier
}

func TestSubmitCreatesPendingListing(t *testing.T) {
	svc, _, _, blobs, _ := newCarServiceFixture()
	owner := types.Principal{UserID: 1, Role: types.RoleOwner}

	car, err := svc.Submit(context.Background(), owner, validDraft(), testImage())
	require.NoError(t, err)

	assert.Equal(t, types.CarPending, car.Status)
	assert.True(t, car.Available)
	assert.Equal(t, 1, car.OwnerID)
	assert.Zero(t, car.Rating)
	assert.Contains(t, blobs.objects, car.Image)
}

func TestSubmitRejectsNonOwners(t *testing.T) {
	svc, _, _, _, _ := newCarServiceFixture()
	customer := types.Principal{UserID: 2, Role: types.RoleCustomer}

	_, err := svc.Submit(context.Background(), customer, validDraft(), testImage())
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSubmitRequiresImage(t *testing.T) {
	svc, _, _, _, _ := newCarServiceFixture()
	owner := types.Principal{UserID: 1, Role: types.RoleOwner}

	_, err := svc.Submit(context.Background(), owner, validDraft(), ImageUpload{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSubmitValidatesDraft(t *testing.T) {
	svc, _, _, _, _ := newCarServiceFixture()
	owner := types.Principal{UserID: 1, Role: types.RoleOwner}

	draft := validDraft()
	draft.Category = "Spaceship"
	_, err := svc.Submit(context.Background(), owner, draft, testImage())
	assert.ErrorIs(t, err, ErrValidation)

	draft = validDraft()
	draft.Price = -10
	_, err = svc.Submit(context.Background(), owner, draft, testImage())
	assert.ErrorIs(t, err, ErrValidation)
}

func TestApproveNotifiesOwner(t *testing.T) {
	svc, _, _, _, notifier := newCarServiceFixture()
	owner := types.Principal{UserID: 1, Role: types.RoleOwner}

	created, err := svc.Submit(context.Background(), owner, validDraft(), testImage())
	require.NoError(t, err)

	approved, err := svc.Approve(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, types.CarApproved, approved.Status)

	require.Len(t, notifier.carEvents, 1)
	event := notifier.carEvents[0]
	assert.Equal(t, "amine@example.com", event.To)
	assert.Equal(t, notify.CarApproved, event.Status)
	assert.Equal(t, "Renault Clio", event.CarDetails)
}

func TestRejectDefinitiveRecordsPermanentReason(t *testing.T) {
	svc, _, _, _, notifier := newCarServiceFixture()
	owner := types.Principal{UserID: 1, Role: types.RoleOwner}

	created, err := svc.Submit(context.Background(), owner, validDraft(), testImage())
	require.NoError(t, err)

	rejected, err := svc.Reject(context.Background(), created.ID, "", true)
	require.NoError(t, err)
	assert.Equal(t, types.CarRejected, rejected.Status)
	assert.Equal(t, notify.PermanentRejection, rejected.RejectionReason)

	require.Len(t, notifier.carEvents, 1)
	assert.Equal(t, notify.PermanentRejection, notifier.carEvents[0].RejectionReason)
}

func TestRejectKeepsExplicitReason(t *testing.T) {
	svc, _, _, _, _ := newCarServiceFixture()
	owner := types.Principal{UserID: 1, Role: types.RoleOwner}

	created, err := svc.Submit(context.Background(), owner, validDraft(), testImage())
	require.NoError(t, err)

	rejected, err := svc.Reject(context.Background(), created.ID, "blurry photos", true)
	require.NoError(t, err)
	assert.Equal(t, "blurry photos", rejected.RejectionReason)
}

func TestRejectMissingCar(t *testing.T) {
	svc, _, _, _, _ := newCarServiceFixture()

	_, err := svc.Reject(context.Background(), 99, "no", false)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEditResubmitsRejectedListing(t *testing.T) {
	svc, _, _, _, notifier := newCarServiceFixture()
	owner := types.Principal{UserID: 1, Role: types.RoleOwner}

	created, err := svc.Submit(context.Background(), owner, validDraft(), testImage())
	require.NoError(t, err)
	_, err = svc.Reject(context.Background(), created.ID, "blurry photos", false)
	require.NoError(t, err)

	draft := validDraft()
	draft.Price = 60
	edited, err := svc.Edit(context.Background(), owner, created.ID, draft, nil)
	require.NoError(t, err)

	assert.Equal(t, types.CarPending, edited.Status)
	assert.Empty(t, edited.RejectionReason)
	assert.Equal(t, float64(60), edited.Price)

	// One rejection event plus one resubmission event.
	require.Len(t, notifier.carEvents, 2)
	assert.Equal(t, notify.CarResubmitted, notifier.carEvents[1].Status)
}

func TestEditReplacesImage(t *testing.T) {
	svc, _, _, blobs, _ := newCarServiceFixture()
	owner := types.Principal{UserID: 1, Role: types.RoleOwner}

	created, err := svc.Submit(context.Background(), owner, validDraft(), testImage())
	require.NoError(t, err)
	oldKey := created.Image

	newImage := ImageUpload{Filename: "clio_v2.png", Data: []byte("png-bytes")}
	edited, err := svc.Edit(context.Background(), owner, created.ID, validDraft(), &newImage)
	require.NoError(t, err)

	assert.NotEqual(t, oldKey, edited.Image)
	assert.Contains(t, blobs.deleted, oldKey)
	assert.Contains(t, blobs.objects, edited.Image)
}

func TestEditRefusesOtherOwners(t *testing.T) {
	svc, _, _, _, _ := newCarServiceFixture()
	owner := types.Principal{UserID: 1, Role: types.RoleOwner}
	stranger := types.Principal{UserID: 7, Role: types.RoleOwner}

	created, err := svc.Submit(context.Background(), owner, validDraft(), testImage())
	require.NoError(t, err)

	_, err = svc.Edit(context.Background(), stranger, created.ID, validDraft(), nil)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestEditRefusesApprovedListing(t *testing.T) {
	svc, _, _, _, _ := newCarServiceFixture()
	owner := types.Principal{UserID: 1, Role: types.RoleOwner}

	created, err := svc.Submit(context.Background(), owner, validDraft(), testImage())
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), created.ID)
	require.NoError(t, err)

	_, err = svc.Edit(context.Background(), owner, created.ID, validDraft(), nil)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestDeleteByIDsRemovesListingsAndImages(t *testing.T) {
	svc, _, _, blobs, _ := newCarServiceFixture()
	owner := types.Principal{UserID: 1, Role: types.RoleOwner}

	first, err := svc.Submit(context.Background(), owner, validDraft(), testImage())
	require.NoError(t, err)
	second, err := svc.Submit(context.Background(), owner, validDraft(), testImage())
	require.NoError(t, err)

	result, err := svc.DeleteByIDs(context.Background(), []int{first.ID, second.ID, 99})
	require.NoError(t, err)

	assert.Equal(t, 2, result.DeletedCount)
	assert.ElementsMatch(t, []int{first.ID, second.ID}, result.DeletedIDs)
	assert.Contains(t, blobs.deleted, first.Image)
	assert.Contains(t, blobs.deleted, second.Image)
}

func TestDeleteByIDsNothingMatched(t *testing.T) {
	svc, _, _, _, _ := newCarServiceFixture()

	_, err := svc.DeleteByIDs(context.Background(), []int{41, 42})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestNotificationFailureDoesNotBlockApproval(t *testing.T) {
	cars := newFakeCarRepo()
	users := newFakeUserRepo(types.User{ID: 1, Email: "amine@example.com", Role: types.RoleOwner})
	notifier := newRecordingNotifier()
	notifier.err = context.DeadlineExceeded
	svc := NewCarService(cars, users, newFakeBlobStore(), notifier)
	owner := types.Principal{UserID: 1, Role: types.RoleOwner}

	created, err := svc.Submit(context.Background(), owner, validDraft(), testImage())
	require.NoError(t, err)

	approved, err := svc.Approve(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, types.CarApproved, approved.Status)
}
