package services

import (
	"context"
	"fmt"
	"log"

	"github.com/carbnb/apiserver/internal/notify"
	"github.com/carbnb/apiserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	List(ctx context.Context) ([]types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	SetStatus(ctx context.Context, id int, status types.UserStatus) (types.User, error)
	Delete(ctx context.Context, id int) error
}

// UserService owns accounts and the owner activation lifecycle.
type UserService struct {
	repo     UserRepository
	notifier notify.Notifier
}

func NewUserService(repo UserRepository, notifier notify.Notifier) *UserService {
	return &UserService{repo: repo, notifier: notifier}
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *UserService) Create(ctx context.Context, user types.User) (types.User, error) {
	return s.repo.Create(ctx, user)
}

// Register creates an account applying the activation rule: owners
// start pending admin approval and are notified that their registration
// is under review; customers and admins are active immediately.
func (s *UserService) Register(ctx context.Context, user types.User) (types.User, error) {
	user.Status = types.UserActive
	if user.Role == types.RoleOwner {
		user.Status = types.UserPending
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return types.User{}, err
	}

	if created.Status == types.UserPending {
		payload := notify.AccountPayload{To: created.Email, UserName: created.Name}
		if err := s.notifier.RegistrationPending(ctx, payload); err != nil {
			log.Printf("users: failed to dispatch registration notification for user %d: %v", created.ID, err)
		}
	}
	return created, nil
}

// List returns all accounts. Password hashes are excluded from API
// responses by the entity's JSON encoding.
func (s *UserService) List(ctx context.Context) ([]types.User, error) {
	return s.repo.List(ctx)
}

// ApproveOwner activates a pending owner account and notifies the user.
// Fails when the target is not an owner.
func (s *UserService) ApproveOwner(ctx context.Context, userID int) (types.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return types.User{}, err
	}
	if user.Role != types.RoleOwner {
		return types.User{}, fmt.Errorf("%w: user is not an owner", ErrValidation)
	}

	user, err = s.repo.SetStatus(ctx, userID, types.UserActive)
	if err != nil {
		return types.User{}, err
	}

	if err := s.notifier.OwnerApproved(ctx, notify.AccountPayload{To: user.Email, UserName: user.Name}); err != nil {
		log.Printf("users: failed to dispatch approval notification for user %d: %v", user.ID, err)
	}
	return user, nil
}

// Decline notifies a user that their registration was refused and then
// permanently deletes the record. The notification is enqueued first but
// its failure does not block the deletion.
func (s *UserService) Decline(ctx context.Context, userID int) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.notifier.UserDeclined(ctx, notify.AccountPayload{To: user.Email, UserName: user.Name}); err != nil {
		log.Printf("users: failed to dispatch decline notification for user %d: %v", user.ID, err)
	}
	return s.repo.Delete(ctx, userID)
}
