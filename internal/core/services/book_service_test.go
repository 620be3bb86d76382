package services

import (
	"context"
	"testing"

	"shelfwise/internal/adapters/persistence/repositories"
	"shelfwise/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var librarian = &domain.Actor{UserID: 1, Username: "lib", Role: domain.RoleLibrarian}

func TestBookCreateAndAuditStamp(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookService(repositories.NewBookRepository(db))

	book, err := svc.Create(context.Background(), &CreateBookInput{
		Title:           "Clean Architecture",
		Author:          "Robert C. Martin",
		ISBN:            "978-0134494166",
		PublicationYear: 2017,
		CopiesAvailable: 4,
	}, librarian)
	require.NoError(t, err)

	assert.NotZero(t, book.ID)
	assert.Equal(t, "lib", book.CreatedBy)
	assert.Equal(t, "lib", book.UpdatedBy)
	assert.Equal(t, 4, book.CopiesAvailable)
}

func TestBookCreateRejectsDuplicateISBN(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookService(repositories.NewBookRepository(db))

	input := &CreateBookInput{
		Title:           "Clean Architecture",
		Author:          "Robert C. Martin",
		ISBN:            "978-0134494166",
		CopiesAvailable: 1,
	}
	_, err := svc.Create(context.Background(), input, librarian)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), input, librarian)
	assert.ErrorIs(t, err, ErrDuplicateISBN)
}

func TestBookUpdatePreservesISBN(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookService(repositories.NewBookRepository(db))

	book, err := svc.Create(context.Background(), &CreateBookInput{
		Title:           "Clean Architecture",
		Author:          "Robert C. Martin",
		ISBN:            "978-0134494166",
		CopiesAvailable: 1,
	}, librarian)
	require.NoError(t, err)

	admin := &domain.Actor{UserID: 2, Username: "root", Role: domain.RoleAdmin}
	updated, err := svc.Update(context.Background(), book.ID, &UpdateBookInput{
		Title:           "Clean Architecture (2nd printing)",
		Author:          "Robert C. Martin",
		PublicationYear: 2018,
		CopiesAvailable: 7,
	}, admin)
	require.NoError(t, err)

	assert.Equal(t, "978-0134494166", updated.ISBN)
	assert.Equal(t, "Clean Architecture (2nd printing)", updated.Title)
	assert.Equal(t, 7, updated.CopiesAvailable)
	assert.Equal(t, "lib", updated.CreatedBy)
	assert.Equal(t, "root", updated.UpdatedBy)
}

func TestBookGetAndDelete(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookService(repositories.NewBookRepository(db))

	_, err := svc.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrBookNotFound)

	book, err := svc.Create(context.Background(), &CreateBookInput{
		Title:           "Clean Architecture",
		Author:          "Robert C. Martin",
		ISBN:            "978-0134494166",
		CopiesAvailable: 1,
	}, librarian)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), book.ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), book.ID), ErrBookNotFound)
}

func TestBookListPagination(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookService(repositories.NewBookRepository(db))

	for _, b := range []*CreateBookInput{
		{Title: "The Go Programming Language", Author: "Donovan", ISBN: "978-0134190440", CopiesAvailable: 1},
		{Title: "Design Patterns", Author: "Gamma", ISBN: "978-0201633610", CopiesAvailable: 1},
	} {
		_, err := svc.Create(context.Background(), b, librarian)
		require.NoError(t, err)
	}

	books, total, err := svc.List(context.Background(), 0, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, books, 1)
	assert.Equal(t, "Design Patterns", books[0].Title) // title order

	books, _, err = svc.List(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "The Go Programming Language", books[0].Title)
}

func TestBookImportSkipsDuplicates(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookService(repositories.NewBookRepository(db))

	_, err := svc.Create(context.Background(), &CreateBookInput{
		Title: "Design Patterns", Author: "Gamma", ISBN: "978-0201633610", CopiesAvailable: 1,
	}, librarian)
	require.NoError(t, err)

	result, err := svc.Import(context.Background(), []*CreateBookInput{
		{Title: "The Go Programming Language", Author: "Donovan", ISBN: "978-0134190440", CopiesAvailable: 2},
		{Title: "Design Patterns", Author: "Gamma", ISBN: "978-0201633610", CopiesAvailable: 1},
	}, librarian)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	assert.Len(t, result.Errors, 1)
}
