package repositories

import (
	"context"
	"time"

	"shelfwise/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// loanRepository implements LoanRepository
type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *loanRepository) WithTx(tx *gorm.DB) LoanRepository {
	return &loanRepository{db: tx}
}

// Create creates a new loan
func (r *loanRepository) Create(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Create(loan).Error
}

// GetByID gets a loan by ID with member and book loaded for display
func (r *loanRepository) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Preload("Member").
		Preload("Book").
		First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// Update updates a loan
func (r *loanRepository) Update(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Save(loan).Error
}

// ExistsActive checks for an active loan on the (member, book) pair
func (r *loanRepository) ExistsActive(ctx context.Context, memberID, bookID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("member_id = ? AND book_id = ? AND returned_at IS NULL", memberID, bookID).
		Count(&count).Error
	return count > 0, err
}

// ListActive lists all loans with no return date
func (r *loanRepository) ListActive(ctx context.Context) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.WithContext(ctx).
		Preload("Member").
		Preload("Book").
		Where("returned_at IS NULL").
		Order("borrowed_at DESC").
		Find(&loans).Error
	return loans, err
}

// ListOverdue lists active loans whose due date is strictly before asOf
func (r *loanRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.WithContext(ctx).
		Preload("Member").
		Preload("Book").
		Where("returned_at IS NULL AND due_at < ?", asOf).
		Order("due_at ASC").
		Find(&loans).Error
	return loans, err
}

// ListByMember lists all loans for a member, active and returned
func (r *loanRepository) ListByMember(ctx context.Context, memberID uint) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.WithContext(ctx).
		Preload("Member").
		Preload("Book").
		Where("member_id = ?", memberID).
		Order("borrowed_at DESC").
		Find(&loans).Error
	return loans, err
}

// ListRecent lists the most recently created loans
func (r *loanRepository) ListRecent(ctx context.Context, limit int) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.WithContext(ctx).
		Preload("Member").
		Preload("Book").
		Order("borrowed_at DESC").
		Limit(limit).
		Find(&loans).Error
	return loans, err
}

// CountActiveByMember counts a member's active loans
func (r *loanRepository) CountActiveByMember(ctx context.Context, memberID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("member_id = ? AND returned_at IS NULL", memberID).
		Count(&count).Error
	return count, err
}

// CountActive counts all active loans
func (r *loanRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("returned_at IS NULL").
		Count(&count).Error
	return count, err
}

// CountOverdue counts active loans past their due date
func (r *loanRepository) CountOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("returned_at IS NULL AND due_at < ?", asOf).
		Count(&count).Error
	return count, err
}

// CountCreatedSince counts loans borrowed at or after the given time
func (r *loanRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("borrowed_at >= ?", since).
		Count(&count).Error
	return count, err
}
