package services

import (
	"context"
	"errors"

	"shelfwise/internal/adapters/persistence/models"
	"shelfwise/internal/adapters/persistence/repositories"
	"shelfwise/internal/core/domain"
	"shelfwise/internal/pkg/password"

	"gorm.io/gorm"
)

// User service errors
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidRole      = errors.New("invalid role")
	ErrSelfDelete       = errors.New("cannot delete your own account")
	ErrSelfDemotion     = errors.New("cannot change your own role")
	ErrWrongOldPassword = errors.New("old password is incorrect")
)

// UserService handles account administration
type UserService struct {
	userRepo  repositories.UserRepository
	tokenRepo repositories.RefreshTokenRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository, tokenRepo repositories.RefreshTokenRepository) *UserService {
	return &UserService{userRepo: userRepo, tokenRepo: tokenRepo}
}

// List retrieves users with pagination
func (s *UserService) List(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	return s.userRepo.List(ctx, offset, limit)
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateRole changes a user's role. Admins cannot change their own
// role, so the system can never lock out its last administrator.
func (s *UserService) UpdateRole(ctx context.Context, id uint, role string, actor *domain.Actor) (*models.User, error) {
	if !domain.ValidRole(role) {
		return nil, ErrInvalidRole
	}
	if actor != nil && actor.UserID == id {
		return nil, ErrSelfDemotion
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Role = role
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// SetActive enables or disables a user account. Deactivation revokes
// every refresh token so the account cannot mint new access tokens.
func (s *UserService) SetActive(ctx context.Context, id uint, active bool, actor *domain.Actor) (*models.User, error) {
	if actor != nil && actor.UserID == id && !active {
		return nil, ErrSelfDelete
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.IsActive = active
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if !active {
		if err := s.tokenRepo.RevokeAllByUserID(ctx, id); err != nil {
			return nil, err
		}
	}

	return user, nil
}

// ChangePassword verifies the old password before setting the new one
// and revokes all refresh tokens afterwards.
func (s *UserService) ChangePassword(ctx context.Context, id uint, oldPassword, newPassword string) error {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !password.Verify(oldPassword, user.Password) {
		return ErrWrongOldPassword
	}
	if !password.Validate(newPassword) {
		return ErrWeakPassword
	}

	hashed, err := password.Hash(newPassword)
	if err != nil {
		return err
	}

	user.Password = hashed
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	return s.tokenRepo.RevokeAllByUserID(ctx, id)
}

// Delete soft-deletes a user and revokes all their refresh tokens
func (s *UserService) Delete(ctx context.Context, id uint, actor *domain.Actor) error {
	if actor != nil && actor.UserID == id {
		return ErrSelfDelete
	}

	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.tokenRepo.RevokeAllByUserID(ctx, id); err != nil {
		return err
	}

	return s.userRepo.Delete(ctx, id)
}
