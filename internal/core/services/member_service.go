package services

import (
	"context"
	"errors"
	"time"

	"shelfwise/internal/adapters/persistence/models"
	"shelfwise/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Member service errors
var (
	ErrMemberNotFound       = errors.New("member not found")
	ErrDuplicateEmail       = errors.New("a member with this email already exists")
	ErrMemberHasActiveLoans = errors.New("member still has active loans")
)

// MemberService handles member registration and removal
type MemberService struct {
	memberRepo repositories.MemberRepository
	loanRepo   repositories.LoanRepository
}

// NewMemberService creates a new member service
func NewMemberService(memberRepo repositories.MemberRepository, loanRepo repositories.LoanRepository) *MemberService {
	return &MemberService{memberRepo: memberRepo, loanRepo: loanRepo}
}

// CreateMemberInput represents member registration input
type CreateMemberInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone"`
}

// Create registers a new member. MembershipDate is stamped at
// registration time, not left to the database.
func (s *MemberService) Create(ctx context.Context, input *CreateMemberInput) (*models.Member, error) {
	exists, err := s.memberRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	member := &models.Member{
		Name:           input.Name,
		Email:          input.Email,
		Phone:          input.Phone,
		MembershipDate: time.Now(),
	}

	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, err
	}

	return member, nil
}

// GetByID retrieves a member by ID
func (s *MemberService) GetByID(ctx context.Context, id uint) (*models.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return member, nil
}

// List retrieves members with pagination and optional name/email search
func (s *MemberService) List(ctx context.Context, offset, limit int, search string) ([]*models.Member, int64, error) {
	return s.memberRepo.List(ctx, offset, limit, search)
}

// Delete removes a member. A member holding active loans cannot be
// removed until every copy has come back.
func (s *MemberService) Delete(ctx context.Context, id uint) error {
	exists, err := s.memberRepo.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrMemberNotFound
	}

	active, err := s.loanRepo.CountActiveByMember(ctx, id)
	if err != nil {
		return err
	}
	if active > 0 {
		return ErrMemberHasActiveLoans
	}

	return s.memberRepo.Delete(ctx, id)
}
