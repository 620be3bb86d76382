package services

import (
	"context"
	"errors"

	"shelfwise/internal/adapters/persistence/models"
	"shelfwise/internal/adapters/persistence/repositories"
	"shelfwise/internal/core/domain"

	"gorm.io/gorm"
)

// Book service errors
var (
	ErrBookNotFound  = errors.New("book not found")
	ErrDuplicateISBN = errors.New("a book with this ISBN already exists")
)

// BookService handles catalog management
type BookService struct {
	bookRepo repositories.BookRepository
}

// NewBookService creates a new book service
func NewBookService(bookRepo repositories.BookRepository) *BookService {
	return &BookService{bookRepo: bookRepo}
}

// CreateBookInput represents book creation input
type CreateBookInput struct {
	Title           string `json:"title" validate:"required"`
	Author          string `json:"author" validate:"required"`
	ISBN            string `json:"isbn" validate:"required"`
	Genre           string `json:"genre"`
	PublicationYear int    `json:"publication_year"`
	CopiesAvailable int    `json:"copies_available" validate:"min=0"`
}

// UpdateBookInput represents book update input. ISBN is immutable
// once a book is registered; the field is absent on purpose.
type UpdateBookInput struct {
	Title           string `json:"title" validate:"required"`
	Author          string `json:"author" validate:"required"`
	Genre           string `json:"genre"`
	PublicationYear int    `json:"publication_year"`
	CopiesAvailable int    `json:"copies_available" validate:"min=0"`
}

// Create registers a new book in the catalog
func (s *BookService) Create(ctx context.Context, input *CreateBookInput, actor *domain.Actor) (*models.Book, error) {
	exists, err := s.bookRepo.ExistsByISBN(ctx, input.ISBN)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateISBN
	}

	book := &models.Book{
		Title:           input.Title,
		Author:          input.Author,
		ISBN:            input.ISBN,
		Genre:           input.Genre,
		PublicationYear: input.PublicationYear,
		CopiesAvailable: input.CopiesAvailable,
		CreatedBy:       actor.Name(),
		UpdatedBy:       actor.Name(),
	}

	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, err
	}

	return book, nil
}

// GetByID retrieves a book by ID
func (s *BookService) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return book, nil
}

// List retrieves books with pagination
func (s *BookService) List(ctx context.Context, offset, limit int) ([]*models.Book, int64, error) {
	return s.bookRepo.List(ctx, offset, limit)
}

// Update replaces every mutable field of a book. Identity and ISBN
// are never touched.
func (s *BookService) Update(ctx context.Context, id uint, input *UpdateBookInput, actor *domain.Actor) (*models.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	book.Title = input.Title
	book.Author = input.Author
	book.Genre = input.Genre
	book.PublicationYear = input.PublicationYear
	book.CopiesAvailable = input.CopiesAvailable
	book.UpdatedBy = actor.Name()

	if err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, err
	}

	return book, nil
}

// Delete removes a book from the catalog
func (s *BookService) Delete(ctx context.Context, id uint) error {
	if _, err := s.bookRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotFound
		}
		return err
	}
	return s.bookRepo.Delete(ctx, id)
}

// ImportResult summarizes a bulk catalog import
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// Import registers many books at once, skipping entries whose ISBN
// already exists instead of failing the whole batch.
func (s *BookService) Import(ctx context.Context, inputs []*CreateBookInput, actor *domain.Actor) (*ImportResult, error) {
	result := &ImportResult{}

	for _, input := range inputs {
		if _, err := s.Create(ctx, input, actor); err != nil {
			if errors.Is(err, ErrDuplicateISBN) {
				result.Skipped++
				result.Errors = append(result.Errors, "skipped duplicate ISBN: "+input.ISBN)
				continue
			}
			return nil, err
		}
		result.Imported++
	}

	return result, nil
}
