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

func TestRegisterCustomerIsActive(t *testing.T) {
	repo := newFakeUserRepo()
	notifier := newRecordingNotifier()
	svc := NewUserService(repo, notifier)

	user, err := svc.Register(context.Background(), types.User{
		Name: "Sara", Email: "sara@example.com", Role: types.RoleCustomer,
	})
	require.NoError(t, err)

	assert.Equal(t, types.UserActive, user.Status)
	assert.Empty(t, notifier.accountEvents[notify.KindRegistrationPending])
}

func TestRegisterOwnerIsPendingAndNotified(t *testing.T) {
	repo := newFakeUserRepo()
	notifier := newRecordingNotifier()
	svc := NewUserService(repo, notifier)

	user, err := svc.Register(context.Background(), types.User{
		Name: "Amine", Email: "amine@example.com", Role: types.RoleOwner,
	})
	require.NoError(t, err)

	assert.Equal(t, types.UserPending, user.Status)
	events := notifier.accountEvents[notify.KindRegistrationPending]
	require.Len(t, events, 1)
	assert.Equal(t, "amine@example.com", events[0].To)
}

func TestApproveOwnerActivatesAccount(t *testing.T) {
	repo := newFakeUserRepo(types.User{
		ID: 1, Name: "Amine", Email: "amine@example.com",
		Role: types.RoleOwner, Status: types.UserPending,
	})
	notifier := newRecordingNotifier()
	svc := NewUserService(repo, notifier)

	user, err := svc.ApproveOwner(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, types.UserActive, user.Status)
	events := notifier.accountEvents[notify.KindOwnerApproved]
	require.Len(t, events, 1)
	assert.Equal(t, "amine@example.com", events[0].To)
}

func TestApproveOwnerRefusesNonOwners(t *testing.T) {
	repo := newFakeUserRepo(types.User{
		ID: 1, Email: "sara@example.com", Role: types.RoleCustomer, Status: types.UserActive,
	})
	svc := NewUserService(repo, newRecordingNotifier())

	_, err := svc.ApproveOwner(context.Background(), 1)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestApproveOwnerMissingUser(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), newRecordingNotifier())

	_, err := svc.ApproveOwner(context.Background(), 42)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeclineNotifiesThenDeletes(t *testing.T) {
	repo := newFakeUserRepo(types.User{
		ID: 1, Name: "Amine", Email: "amine@example.com",
		Role: types.RoleOwner, Status: types.UserPending,
	})
	notifier := newRecordingNotifier()
	svc := NewUserService(repo, notifier)

	require.NoError(t, svc.Decline(context.Background(), 1))

	assert.Equal(t, []int{1}, repo.deleted)
	events := notifier.accountEvents[notify.KindUserDeclined]
	require.Len(t, events, 1)
	assert.Equal(t, "amine@example.com", events[0].To)
}

func TestDeclineMissingUserSendsNothing(t *testing.T) {
	notifier := newRecordingNotifier()
	svc := NewUserService(newFakeUserRepo(), notifier)

	err := svc.Decline(context.Background(), 42)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, notifier.accountEvents[notify.KindUserDeclined])
}

func TestDeclineDeletesEvenWhenNotificationFails(t *testing.T) {
	repo := newFakeUserRepo(types.User{ID: 1, Email: "amine@example.com", Role: types.RoleOwner})
	notifier := newRecordingNotifier()
	notifier.err = context.DeadlineExceeded
	svc := NewUserService(repo, notifier)

	require.NoError(t, svc.Decline(context.Background(), 1))
	assert.Equal(t, []int{1}, repo.deleted)
}

func TestAddTestimonialValidates(t *testing.T) {
	repo := &fakeTestimonialRepo{}
	svc := NewTestimonialService(repo)
	customer := types.Principal{UserID: 2, Role: types.RoleCustomer}

	valid := types.Testimonial{
		Name: "Sara", Location: "Alger", Rating: 5,
		Comment: "Great service", Avatar: "https://example.com/a.png",
	}

	created, err := svc.Add(context.Background(), customer, valid)
	require.NoError(t, err)
	assert.Equal(t, 2, created.UserID)

	bad := valid
	bad.Rating = 6
	_, err = svc.Add(context.Background(), customer, bad)
	assert.ErrorIs(t, err, ErrValidation)

	bad = valid
	bad.Comment = "  "
	_, err = svc.Add(context.Background(), customer, bad)
	assert.ErrorIs(t, err, ErrValidation)
}

type fakeTestimonialRepo struct {
	testimonials []types.Testimonial
}

func (r *fakeTestimonialRepo) Create(ctx context.Context, t types.Testimonial) (types.Testimonial, error) {
	t.ID = len(r.testimonials) + 1
	r.testimonials = append(r.testimonials, t)
	return t, nil
}

func (r *fakeTestimonialRepo) List(ctx context.Context) ([]types.Testimonial, error) {
	return r.testimonials, nil
}
