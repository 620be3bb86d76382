package repositories

import (
	"context"
	"errors"

	"shelfwise/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// ErrCopiesExhausted is returned by AdjustCopies when the guarded
// update matched no row: either the book is gone or the adjustment
// would drive copies_available below zero.
var ErrCopiesExhausted = errors.New("copy count adjustment rejected")

// bookRepository implements BookRepository
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository creates a new book repository
func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *bookRepository) WithTx(tx *gorm.DB) BookRepository {
	return &bookRepository{db: tx}
}

// Create creates a new book
func (r *bookRepository) Create(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

// GetByID gets a book by ID
func (r *bookRepository) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// List lists books with pagination
func (r *bookRepository) List(ctx context.Context, offset, limit int) ([]*models.Book, int64, error) {
	var books []*models.Book
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Book{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Order("title ASC").
		Offset(offset).
		Limit(limit).
		Find(&books).Error

	return books, total, err
}

// Update updates a book
func (r *bookRepository) Update(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Save(book).Error
}

// Delete deletes a book
func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Book{}, id).Error
}

// ExistsByISBN checks if a book with the given ISBN exists
func (r *bookRepository) ExistsByISBN(ctx context.Context, isbn string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("isbn = ?", isbn).
		Count(&count).Error
	return count > 0, err
}

// AdjustCopies applies copies_available += delta as one conditional
// UPDATE. The `copies_available + delta >= 0` guard makes concurrent
// decrements race safely on the counter itself: whichever statement
// runs last against a zero counter matches no row and returns
// ErrCopiesExhausted instead of going negative.
func (r *bookRepository) AdjustCopies(ctx context.Context, id uint, delta int) error {
	result := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ? AND copies_available + ? >= 0", id, delta).
		UpdateColumn("copies_available", gorm.Expr("copies_available + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCopiesExhausted
	}
	return nil
}

// CountBooks counts catalog titles
func (r *bookRepository) CountBooks(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Book{}).Count(&count).Error
	return count, err
}

// SumCopies sums available copies across the catalog
func (r *bookRepository) SumCopies(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Select("COALESCE(SUM(copies_available), 0)").
		Scan(&total).Error
	return total, err
}
