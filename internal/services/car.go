package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/carbnb/apiserver/internal/notify"
	"github.com/carbnb/apiserver/internal/storage"
	"github.com/carbnb/apiserver/internal/store"
	"github.com/carbnb/apiserver/types"
)

// CarRepository defines persistence operations for car listings.
type CarRepository interface {
	Get(ctx context.Context, id int) (types.Car, error)
	ListByStatus(ctx context.Context, status types.CarStatus) ([]types.Car, error)
	ListByOwner(ctx context.Context, ownerID int) ([]types.Car, error)
	Create(ctx context.Context, car types.Car) (types.Car, error)
	Update(ctx context.Context, car types.Car) (types.Car, error)
	SetStatus(ctx context.Context, id int, status types.CarStatus, reason *string) (types.Car, error)
	Reserve(ctx context.Context, id int) (bool, error)
	Release(ctx context.Context, id int) error
	GetByIDs(ctx context.Context, ids []int) ([]types.Car, error)
	DeleteByIDs(ctx context.Context, ids []int) ([]int, error)
}

// BlobStore defines the object-storage operations the services use.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// CarDraft carries the owner-supplied listing fields for submission
// and edit. Numeric fields are already coerced by the HTTP layer.
type CarDraft struct {
	Brand        string
	Model        string
	Year         int
	Price        float64
	Category     types.CarCategory
	Transmission types.Transmission
	Fuel         types.FuelType
	Seats        int
	Features     []string
	Wilaya       string
	Commune      string
	Chauffeur    bool
}

// Validate checks required fields and the closed enumerations.
func (d CarDraft) Validate() error {
	switch {
	case strings.TrimSpace(d.Brand) == "":
		return fmt.Errorf("%w: brand is required", ErrValidation)
	case strings.TrimSpace(d.Model) == "":
		return fmt.Errorf("%w: model is required", ErrValidation)
	case d.Year <= 0:
		return fmt.Errorf("%w: year must be a positive number", ErrValidation)
	case d.Price <= 0:
		return fmt.Errorf("%w: price must be a positive number", ErrValidation)
	case d.Seats <= 0:
		return fmt.Errorf("%w: seats must be a positive number", ErrValidation)
	case !d.Category.Valid():
		return fmt.Errorf("%w: invalid category %q", ErrValidation, d.Category)
	case !d.Transmission.Valid():
		return fmt.Errorf("%w: invalid transmission %q", ErrValidation, d.Transmission)
	case !d.Fuel.Valid():
		return fmt.Errorf("%w: invalid fuel type %q", ErrValidation, d.Fuel)
	case strings.TrimSpace(d.Wilaya) == "":
		return fmt.Errorf("%w: wilaya is required", ErrValidation)
	case strings.TrimSpace(d.Commune) == "":
		return fmt.Errorf("%w: commune is required", ErrValidation)
	}
	return nil
}

// ImageUpload is an uploaded listing photo.
type ImageUpload struct {
	Filename string
	Data     []byte
}

// DeleteResult reports the outcome of a bulk delete.
type DeleteResult struct {
	DeletedCount int   `json:"deleted_count"`
	DeletedIDs   []int `json:"deleted_ids"`
}

// CarService owns the listing lifecycle: submission, admin review,
// owner resubmission, and bulk deletion.
type CarService struct {
	repo     CarRepository
	users    UserRepository
	blobs    BlobStore
	notifier notify.Notifier
}

func NewCarService(repo CarRepository, users UserRepository, blobs BlobStore, notifier notify.Notifier) *CarService {
	return &CarService{repo: repo, users: users, blobs: blobs, notifier: notifier}
}

// Submit creates a new listing for review. The caller must be an owner
// and the image is required. The listing starts pending and available.
func (s *CarService) Submit(ctx context.Context, principal types.Principal, draft CarDraft, image ImageUpload) (types.Car, error) {
	if principal.Role != types.RoleOwner {
		return types.Car{}, fmt.Errorf("%w: only owners may list cars", ErrForbidden)
	}
	if err := draft.Validate(); err != nil {
		return types.Car{}, err
	}
	if len(image.Data) == 0 {
		return types.Car{}, fmt.Errorf("%w: image is required", ErrValidation)
	}

	key, contentType, err := storage.NewImageKey(image.Filename)
	if err != nil {
		return types.Car{}, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	if err := s.blobs.Put(ctx, key, bytes.NewReader(image.Data), int64(len(image.Data)), contentType); err != nil {
		return types.Car{}, fmt.Errorf("store image: %w", err)
	}

	car := types.Car{
		Brand:        draft.Brand,
		Model:        draft.Model,
		Year:         draft.Year,
		Price:        draft.Price,
		Image:        key,
		Category:     draft.Category,
		Transmission: draft.Transmission,
		Fuel:         draft.Fuel,
		Seats:        draft.Seats,
		Available:    true,
		Features:     draft.Features,
		Wilaya:       draft.Wilaya,
		Commune:      draft.Commune,
		Chauffeur:    draft.Chauffeur,
		Rating:       0,
		OwnerID:      principal.UserID,
		Status:       types.CarPending,
	}
	return s.repo.Create(ctx, car)
}

// ListApproved returns the public catalog with owner identity attached.
func (s *CarService) ListApproved(ctx context.Context) ([]types.Car, error) {
	return s.repo.ListByStatus(ctx, types.CarApproved)
}

// ListOwned returns every listing of the calling owner, any status.
func (s *CarService) ListOwned(ctx context.Context, principal types.Principal) ([]types.Car, error) {
	return s.repo.ListByOwner(ctx, principal.UserID)
}

// ListPending returns listings awaiting review, owner identity attached.
func (s *CarService) ListPending(ctx context.Context) ([]types.Car, error) {
	return s.repo.ListByStatus(ctx, types.CarPending)
}

// Approve moves a listing to the approved state and notifies the owner.
func (s *CarService) Approve(ctx context.Context, carID int) (types.Car, error) {
	car, err := s.repo.SetStatus(ctx, carID, types.CarApproved, nil)
	if err != nil {
		return types.Car{}, err
	}

	s.notifyOwner(ctx, car, notify.CarApproved, "")
	return car, nil
}

// Reject moves a listing to the rejected state. With no reason, a
// definitive rejection records "Permanently rejected"; the flag does
// not otherwise block a later resubmission.
func (s *CarService) Reject(ctx context.Context, carID int, reason string, definitive bool) (types.Car, error) {
	var stored *string
	if reason == "" && definitive {
		reason = notify.PermanentRejection
	}
	if reason != "" {
		stored = &reason
	}

	car, err := s.repo.SetStatus(ctx, carID, types.CarRejected, stored)
	if err != nil {
		return types.Car{}, err
	}

	s.notifyOwner(ctx, car, notify.CarRejected, reason)
	return car, nil
}

// Edit replaces the mutable fields of a pending or rejected listing and
// returns it to pending review. Only the owning user may edit. A new
// image replaces the stored one; the previous blob is deleted
// best-effort.
func (s *CarService) Edit(ctx context.Context, principal types.Principal, carID int, draft CarDraft, image *ImageUpload) (types.Car, error) {
	car, err := s.repo.Get(ctx, carID)
	if err != nil {
		return types.Car{}, err
	}
	if car.OwnerID != principal.UserID {
		return types.Car{}, fmt.Errorf("%w: not the owner of this car", ErrForbidden)
	}
	if car.Status != types.CarPending && car.Status != types.CarRejected {
		return types.Car{}, fmt.Errorf("%w: only pending or rejected cars can be edited", ErrConflict)
	}
	if err := draft.Validate(); err != nil {
		return types.Car{}, err
	}

	if image != nil && len(image.Data) > 0 {
		key, contentType, err := storage.NewImageKey(image.Filename)
		if err != nil {
			return types.Car{}, fmt.Errorf("%w: %s", ErrValidation, err)
		}
		if err := s.blobs.Put(ctx, key, bytes.NewReader(image.Data), int64(len(image.Data)), contentType); err != nil {
			return types.Car{}, fmt.Errorf("store image: %w", err)
		}
		if old := car.Image; old != "" {
			if err := s.blobs.Delete(ctx, old); err != nil {
				log.Printf("cars: failed to delete replaced image %s: %v", old, err)
			}
		}
		car.Image = key
	}

	car.Brand = draft.Brand
	car.Model = draft.Model
	car.Year = draft.Year
	car.Price = draft.Price
	car.Category = draft.Category
	car.Transmission = draft.Transmission
	car.Fuel = draft.Fuel
	car.Seats = draft.Seats
	car.Features = draft.Features
	car.Wilaya = draft.Wilaya
	car.Commune = draft.Commune
	car.Chauffeur = draft.Chauffeur
	car.Status = types.CarPending
	car.RejectionReason = ""

	updated, err := s.repo.Update(ctx, car)
	if err != nil {
		return types.Car{}, err
	}

	s.notifyOwner(ctx, updated, notify.CarResubmitted, "")
	return updated, nil
}

// DeleteByIDs removes the given listings and their stored images. Blob
// deletion is best-effort; missing ids are not an error unless nothing
// matched at all.
func (s *CarService) DeleteByIDs(ctx context.Context, ids []int) (DeleteResult, error) {
	cars, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return DeleteResult{}, err
	}
	for _, car := range cars {
		if car.Image == "" {
			continue
		}
		if err := s.blobs.Delete(ctx, car.Image); err != nil {
			log.Printf("cars: failed to delete image %s for car %d: %v", car.Image, car.ID, err)
		}
	}

	deleted, err := s.repo.DeleteByIDs(ctx, ids)
	if err != nil {
		return DeleteResult{}, err
	}
	if len(deleted) == 0 {
		return DeleteResult{}, fmt.Errorf("no cars matched: %w", store.ErrNotFound)
	}
	return DeleteResult{DeletedCount: len(deleted), DeletedIDs: deleted}, nil
}

// Image opens the stored listing photo for streaming.
func (s *CarService) Image(ctx context.Context, key string) (io.ReadCloser, string, error) {
	reader, err := s.blobs.Get(ctx, key)
	if err != nil {
		return nil, "", err
	}
	return reader, storage.ImageContentType(key), nil
}

func (s *CarService) notifyOwner(ctx context.Context, car types.Car, event notify.CarEvent, reason string) {
	owner, err := s.users.GetByID(ctx, car.OwnerID)
	if err != nil {
		log.Printf("cars: failed to load owner %d for %s notification: %v", car.OwnerID, event, err)
		return
	}
	payload := notify.CarStatusPayload{
		To:              owner.Email,
		OwnerName:       owner.Name,
		CarDetails:      car.Brand + " " + car.Model,
		Status:          event,
		RejectionReason: reason,
		Chauffeur:       car.Chauffeur,
	}
	if err := s.notifier.CarStatus(ctx, payload); err != nil {
		log.Printf("cars: failed to dispatch %s notification for car %d: %v", event, car.ID, err)
	}
}
