package services

import (
	"context"
	"errors"
	"time"

	"shelfwise/internal/adapters/persistence/models"
	"shelfwise/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Loan service errors
var (
	ErrLoanNotFound        = errors.New("loan not found")
	ErrLoanMemberNotFound  = errors.New("member not found")
	ErrLoanBookNotFound    = errors.New("book not found")
	ErrDuplicateActiveLoan = errors.New("member already has an active loan for this book")
	ErrBookUnavailable     = errors.New("book is not available, no copies left")
	ErrLoanAlreadyReturned = errors.New("loan has already been returned")
)

// DefaultLoanDays is the lending period applied when the caller does
// not supply a due date.
const DefaultLoanDays = 14

// LoanService governs the borrow/return lifecycle. The loan row and
// the book's copy counter always move together inside one database
// transaction: a loan never exists without its inventory effect and
// an inventory effect never outlives a rolled-back loan.
type LoanService struct {
	db         *gorm.DB
	loanRepo   repositories.LoanRepository
	bookRepo   repositories.BookRepository
	memberRepo repositories.MemberRepository
}

// NewLoanService creates a new loan service
func NewLoanService(
	db *gorm.DB,
	loanRepo repositories.LoanRepository,
	bookRepo repositories.BookRepository,
	memberRepo repositories.MemberRepository,
) *LoanService {
	return &LoanService{
		db:         db,
		loanRepo:   loanRepo,
		bookRepo:   bookRepo,
		memberRepo: memberRepo,
	}
}

// BorrowInput represents borrow input. DueAt is trusted as supplied;
// when nil the due date defaults to borrow time + DefaultLoanDays.
type BorrowInput struct {
	MemberID uint       `json:"member_id" validate:"required"`
	BookID   uint       `json:"book_id" validate:"required"`
	DueAt    *time.Time `json:"due_at,omitempty"`
}

// Borrow creates a loan for a member on a book and decrements the
// book's available copies. Preconditions are checked in order: member
// exists, book exists, no active loan for the pair, copies left.
func (s *LoanService) Borrow(ctx context.Context, input *BorrowInput) (*models.Loan, error) {
	// 1. Validate member exists
	if _, err := s.memberRepo.GetByID(ctx, input.MemberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoanMemberNotFound
		}
		return nil, err
	}

	// 2. Validate book exists
	book, err := s.bookRepo.GetByID(ctx, input.BookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoanBookNotFound
		}
		return nil, err
	}

	var loan *models.Loan

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loans := s.loanRepo.WithTx(tx)
		books := s.bookRepo.WithTx(tx)

		// 3. Reject a second active loan for the same (member, book) pair.
		// This read gives the friendly error on the common path; the
		// uniq_active_loan index on the insert below is what enforces
		// the rule when two borrows race past it.
		active, err := loans.ExistsActive(ctx, input.MemberID, input.BookID)
		if err != nil {
			return err
		}
		if active {
			return ErrDuplicateActiveLoan
		}

		// 4. Availability check; the guarded decrement below re-checks
		// under the transaction, so racing borrowers cannot oversell.
		if book.CopiesAvailable <= 0 {
			return ErrBookUnavailable
		}

		now := time.Now()
		dueAt := now.AddDate(0, 0, DefaultLoanDays)
		if input.DueAt != nil {
			dueAt = *input.DueAt
		}

		activeFlag := true
		loan = &models.Loan{
			MemberID:   input.MemberID,
			BookID:     input.BookID,
			Active:     &activeFlag,
			BorrowedAt: now,
			DueAt:      dueAt,
		}

		if err := loans.Create(ctx, loan); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateActiveLoan
			}
			return err
		}

		if err := books.AdjustCopies(ctx, input.BookID, -1); err != nil {
			if errors.Is(err, repositories.ErrCopiesExhausted) {
				return ErrBookUnavailable
			}
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	// Reload with member/book for display fields
	return s.loanRepo.GetByID(ctx, loan.ID)
}

// ReturnInput represents return input. ReturnedAt defaults to now.
type ReturnInput struct {
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
}

// Return closes a loan: stamps the return date exactly once and
// increments the book's available copies in the same transaction.
func (s *LoanService) Return(ctx context.Context, loanID uint, input *ReturnInput) (*models.Loan, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loans := s.loanRepo.WithTx(tx)
		books := s.bookRepo.WithTx(tx)

		loan, err := loans.GetByID(ctx, loanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLoanNotFound
			}
			return err
		}

		if loan.ReturnedAt != nil {
			return ErrLoanAlreadyReturned
		}

		returnedAt := time.Now()
		if input != nil && input.ReturnedAt != nil {
			returnedAt = *input.ReturnedAt
		}
		loan.ReturnedAt = &returnedAt
		loan.Active = nil

		if err := loans.Update(ctx, loan); err != nil {
			return err
		}

		if err := books.AdjustCopies(ctx, loan.BookID, +1); err != nil {
			// The book may have been deleted while the loan was out;
			// the return still closes the loan, there is just no
			// inventory left to restore.
			if errors.Is(err, repositories.ErrCopiesExhausted) {
				return nil
			}
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.loanRepo.GetByID(ctx, loanID)
}

// ListOverdue lists active loans whose due date has passed
func (s *LoanService) ListOverdue(ctx context.Context) ([]*models.Loan, error) {
	return s.loanRepo.ListOverdue(ctx, time.Now())
}

// ListActive lists all loans with no return date
func (s *LoanService) ListActive(ctx context.Context) ([]*models.Loan, error) {
	return s.loanRepo.ListActive(ctx)
}

// MemberLoanHistory returns all loans for a member, active and returned
func (s *LoanService) MemberLoanHistory(ctx context.Context, memberID uint) ([]*models.Loan, error) {
	exists, err := s.memberRepo.ExistsByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrLoanMemberNotFound
	}

	return s.loanRepo.ListByMember(ctx, memberID)
}
