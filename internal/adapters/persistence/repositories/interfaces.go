package repositories

import (
	"context"
	"time"

	"shelfwise/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	CountByRole(ctx context.Context, role string) (int64, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// BookRepository is the catalog's copy-count contract. AdjustCopies is
// the only mutation the lending side performs on a book: a guarded
// single-statement update that never drives the counter negative.
type BookRepository interface {
	WithTx(tx *gorm.DB) BookRepository
	Create(ctx context.Context, book *models.Book) error
	GetByID(ctx context.Context, id uint) (*models.Book, error)
	List(ctx context.Context, offset, limit int) ([]*models.Book, int64, error)
	Update(ctx context.Context, book *models.Book) error
	Delete(ctx context.Context, id uint) error
	ExistsByISBN(ctx context.Context, isbn string) (bool, error)
	AdjustCopies(ctx context.Context, id uint, delta int) error
	CountBooks(ctx context.Context) (int64, error)
	SumCopies(ctx context.Context) (int64, error)
}

// MemberRepository defines member registry access
type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	GetByID(ctx context.Context, id uint) (*models.Member, error)
	List(ctx context.Context, offset, limit int, search string) ([]*models.Member, int64, error)
	Delete(ctx context.Context, id uint) error
	ExistsByID(ctx context.Context, id uint) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// LoanRepository defines loan data access
type LoanRepository interface {
	WithTx(tx *gorm.DB) LoanRepository
	Create(ctx context.Context, loan *models.Loan) error
	GetByID(ctx context.Context, id uint) (*models.Loan, error)
	Update(ctx context.Context, loan *models.Loan) error
	ExistsActive(ctx context.Context, memberID, bookID uint) (bool, error)
	ListActive(ctx context.Context) ([]*models.Loan, error)
	ListOverdue(ctx context.Context, asOf time.Time) ([]*models.Loan, error)
	ListByMember(ctx context.Context, memberID uint) ([]*models.Loan, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Loan, error)
	CountActiveByMember(ctx context.Context, memberID uint) (int64, error)
	CountActive(ctx context.Context) (int64, error)
	CountOverdue(ctx context.Context, asOf time.Time) (int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
}
