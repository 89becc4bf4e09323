package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/carbnb/apiserver/internal/notify"
	"github.com/carbnb/apiserver/internal/store"
	"github.com/carbnb/apiserver/types"
)

// fakeCarRepo is an in-memory CarRepository.
type fakeCarRepo struct {
	cars   map[int]types.Car
	nextID int
}

func newFakeCarRepo() *fakeCarRepo {
	return &fakeCarRepo{cars: make(map[int]types.Car), nextID: 1}
}

func (r *fakeCarRepo) Get(ctx context.Context, id int) (types.Car, error) {
	car, ok := r.cars[id]
	if !ok {
		return types.Car{}, store.ErrNotFound
	}
	return car, nil
}

func (r *fakeCarRepo) ListByStatus(ctx context.Context, status types.CarStatus) ([]types.Car, error) {
	var out []types.Car
	for _, car := range r.cars {
		if car.Status == status {
			out = append(out, car)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeCarRepo) ListByOwner(ctx context.Context, ownerID int) ([]types.Car, error) {
	var out []types.Car
	for _, car := range r.cars {
		if car.OwnerID == ownerID {
			out = append(out, car)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeCarRepo) Create(ctx context.Context, car types.Car) (types.Car, error) {
	car.ID = r.nextID
	r.nextID++
	r.cars[car.ID] = car
	return car, nil
}

func (r *fakeCarRepo) Update(ctx context.Context, car types.Car) (types.Car, error) {
	if _, ok := r.cars[car.ID]; !ok {
		return types.Car{}, store.ErrNotFound
	}
	r.cars[car.ID] = car
	return car, nil
}

func (r *fakeCarRepo) SetStatus(ctx context.Context, id int, status types.CarStatus, reason *string) (types.Car, error) {
	car, ok := r.cars[id]
	if !ok {
		return types.Car{}, store.ErrNotFound
	}
	car.Status = status
	if reason != nil {
		car.RejectionReason = *reason
	}
	r.cars[id] = car
	return car, nil
}

func (r *fakeCarRepo) Reserve(ctx context.Context, id int) (bool, error) {
	car, ok := r.cars[id]
	if !ok || !car.Available || car.Status != types.CarApproved {
		return false, nil
	}
	car.Available = false
	r.cars[id] = car
	return true, nil
}

func (r *fakeCarRepo) Release(ctx context.Context, id int) error {
	car, ok := r.cars[id]
	if !ok {
		return store.ErrNotFound
	}
	car.Available = true
	r.cars[id] = car
	return nil
}

func (r *fakeCarRepo) GetByIDs(ctx context.Context, ids []int) ([]types.Car, error) {
	var out []types.Car
	for _, id := range ids {
		if car, ok := r.cars[id]; ok {
			out = append(out, car)
		}
	}
	return out, nil
}

func (r *fakeCarRepo) DeleteByIDs(ctx context.Context, ids []int) ([]int, error) {
	var deleted []int
	for _, id := range ids {
		if _, ok := r.cars[id]; ok {
			delete(r.cars, id)
			deleted = append(deleted, id)
		}
	}
	return deleted, nil
}

// fakeBookingRepo is an in-memory BookingRepository.
type fakeBookingRepo struct {
	bookings  map[int]types.Booking
	nextID    int
	createErr error
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[int]types.Booking), nextID: 1}
}

func (r *fakeBookingRepo) Get(ctx context.Context, id int) (types.Booking, error) {
	booking, ok := r.bookings[id]
	if !ok {
		return types.Booking{}, store.ErrNotFound
	}
	return booking, nil
}

func (r *fakeBookingRepo) Create(ctx context.Context, booking types.Booking) (types.Booking, error) {
	if r.createErr != nil {
		return types.Booking{}, r.createErr
	}
	booking.ID = r.nextID
	r.nextID++
	r.bookings[booking.ID] = booking
	return booking, nil
}

func (r *fakeBookingRepo) ListAll(ctx context.Context) ([]types.Booking, error) {
	var out []types.Booking
	for _, booking := range r.bookings {
		out = append(out, booking)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeBookingRepo) ListByUser(ctx context.Context, userID int) ([]types.Booking, error) {
	var out []types.Booking
	for _, booking := range r.bookings {
		if booking.UserID == userID {
			out = append(out, booking)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeBookingRepo) ListPendingByOwner(ctx context.Context, ownerID int) ([]types.Booking, error) {
	var out []types.Booking
	for _, booking := range r.bookings {
		if booking.OwnerID == ownerID && booking.Status == types.BookingPending {
			out = append(out, booking)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeBookingRepo) SetStatus(ctx context.Context, id int, status types.BookingStatus, reason *string) error {
	booking, ok := r.bookings[id]
	if !ok {
		return store.ErrNotFound
	}
	booking.Status = status
	if reason != nil {
		booking.RejectionReason = *reason
	}
	r.bookings[id] = booking
	return nil
}

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	users   map[int]types.User
	nextID  int
	deleted []int
}

func newFakeUserRepo(users ...types.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[int]types.User), nextID: 1}
	for _, user := range users {
		if user.ID >= repo.nextID {
			repo.nextID = user.ID + 1
		}
		repo.users[user.ID] = user
	}
	return repo
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) List(ctx context.Context) ([]types.User, error) {
	var out []types.User
	for _, user := range r.users {
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user
	return user, nil
}

func (r *fakeUserRepo) SetStatus(ctx context.Context, id int, status types.UserStatus) (types.User, error) {
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	user.Status = status
	r.users[id] = user
	return user, nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.users, id)
	r.deleted = append(r.deleted, id)
	return nil
}

// fakeBlobStore records puts and deletes in memory.
type fakeBlobStore struct {
	objects map[string][]byte
	deleted []string
	putErr  error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string][]byte)}
}

func (b *fakeBlobStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if b.putErr != nil {
		return b.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	b.objects[key] = data
	return nil
}

func (b *fakeBlobStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := b.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *fakeBlobStore) Delete(ctx context.Context, key string) error {
	delete(b.objects, key)
	b.deleted = append(b.deleted, key)
	return nil
}

// recordingNotifier captures dispatched notifications.
type recordingNotifier struct {
	carEvents     []notify.CarStatusPayload
	bookingEvents []notify.BookingStatusPayload
	accountEvents map[notify.Kind][]notify.AccountPayload
	err           error
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{accountEvents: make(map[notify.Kind][]notify.AccountPayload)}
}

func (n *recordingNotifier) CarStatus(ctx context.Context, p notify.CarStatusPayload) error {
	if n.err != nil {
		return n.err
	}
	n.carEvents = append(n.carEvents, p)
	return nil
}

func (n *recordingNotifier) BookingStatus(ctx context.Context, p notify.BookingStatusPayload) error {
	if n.err != nil {
		return n.err
	}
	n.bookingEvents = append(n.bookingEvents, p)
	return nil
}

func (n *recordingNotifier) RegistrationPending(ctx context.Context, p notify.AccountPayload) error {
	return n.record(notify.KindRegistrationPending, p)
}

func (n *recordingNotifier) OwnerApproved(ctx context.Context, p notify.AccountPayload) error {
	return n.record(notify.KindOwnerApproved, p)
}

func (n *recordingNotifier) UserDeclined(ctx context.Context, p notify.AccountPayload) error {
	return n.record(notify.KindUserDeclined, p)
}

func (n *recordingNotifier) record(kind notify.Kind, p notify.AccountPayload) error {
	if n.err != nil {
		return n.err
	}
	n.accountEvents[kind] = append(n.accountEvents[kind], p)
	return nil
}
