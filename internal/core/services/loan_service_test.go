package services

import (
	"context"
	"testing"
	"time"

	"shelfwise/internal/adapters/persistence/models"
	"shelfwise/internal/adapters/persistence/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))

	return db
}

func newLoanService(db *gorm.DB) *LoanService {
	return NewLoanService(
		db,
		repositories.NewLoanRepository(db),
		repositories.NewBookRepository(db),
		repositories.NewMemberRepository(db),
	)
}

func seedMember(t *testing.T, db *gorm.DB, email string) *models.Member {
	t.Helper()

	member := &models.Member{
		Name:           "Alice Reader",
		Email:          email,
		MembershipDate: time.Now(),
	}
	require.NoError(t, db.Create(member).Error)
	return member
}

func seedBook(t *testing.T, db *gorm.DB, isbn string, copies int) *models.Book {
	t.Helper()

	book := &models.Book{
		Title:           "The Go Programming Language",
		Author:          "Donovan & Kernighan",
		ISBN:            isbn,
		PublicationYear: 2015,
		CopiesAvailable: copies,
	}
	require.NoError(t, db.Create(book).Error)
	return book
}

func bookCopies(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()

	var book models.Book
	require.NoError(t, db.First(&book, id).Error)
	return book.CopiesAvailable
}

func TestBorrowCreatesLoanAndDecrementsCopies(t *testing.T) {
	db := newTestDB(t)
	svc := newLoanService(db)
	member := seedMember(t, db, "alice@example.com")
	book := seedBook(t, db, "978-0134190440", 3)

	before := time.Now()
	loan, err := svc.Borrow(context.Background(), &BorrowInput{
		MemberID: member.ID,
		BookID:   book.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, member.ID, loan.MemberID)
	assert.Equal(t, book.ID, loan.BookID)
	assert.Nil(t, loan.ReturnedAt)
	assert.False(t, loan.BorrowedAt.Before(before.Add(-time.Second)))
	assert.Equal(t, 2, bookCopies(t, db, book.ID))

	// Default due date is borrow time + 14 days
	expectedDue := loan.BorrowedAt.AddDate(0, 0, DefaultLoanDays)
	assert.WithinDuration(t, expectedDue, loan.DueAt, time.Second)

	// Display fields come preloaded
	require.NotNil(t, loan.Member)
	require.NotNil(t, loan.Book)
	assert.Equal(t, "alice@example.com", loan.Member.Email)
}

func TestBorrowHonorsSuppliedDueDate(t *testing.T) {
	db := newTestDB(t)
	svc := newLoanService(db)
	member := seedMember(t, db, "alice@example.com")
	book := seedBook(t, db, "978-0134190440", 1)

	// A past due date is accepted as-is; the loan is immediately overdue
	dueAt := time.Now().AddDate(0, 0, -3)
	loan, err := svc.Borrow(context.Background(), &BorrowInput{
		MemberID: member.ID,
		BookID:   book.ID,
		DueAt:    &dueAt,
	})
	require.NoError(t, err)

	assert.WithinDuration(t, dueAt, loan.DueAt, time.Second)
	assert.True(t, loan.IsOverdue())
}

func TestBorrowUnknownMember(t *testing.T) {
	db := newTestDB(t)
	svc := newLoanService(db)
	book := seedBook(t, db, "978-0134190440", 1)

	_, err := svc.Borrow(context.Background(), &BorrowInput{MemberID: 99, BookID: book.ID})
	assert.ErrorIs(t, err, ErrLoanMemberNotFound)
	assert.Equal(t, 1, bookCopies(t, db, book.ID))
}

func TestBorrowUnknownBook(t *testing.T) {
	db := newTestDB(t)
	svc := newLoanService(db)
	member := seedMember(t, db, "alice@example.com")

	_, err := svc.Borrow(context.Background(), &BorrowInput{MemberID: member.ID, BookID: 99})
	assert.ErrorIs(t, err, ErrLoanBookNotFound)
}

func TestBorrowRejectsDuplicateActiveLoan(t *testing.T) {
	db := newTestDB(t)
	svc := newLoanService(db)
	member := seedMember(t, db, "alice@example.com")
	book := seedBook(t, db, "978-0134190440", 5)

	_, err := svc.Borrow(context.Background(), &BorrowInput{MemberID: member.ID, BookID: book.ID})
	require.NoError(t, err)

	_, err = svc.Borrow(context.Background(), &BorrowInput{MemberID: member.ID, BookID: book.ID})
	assert.ErrorIs(t, err, ErrDuplicateActiveLoan)

	// The failed attempt must not touch the counter
	assert.Equal(t, 4, bookCopies(t, db, book.ID))
}

func TestActiveLoanPairUniqueAtInsert(t *testing.T) {
	db := newTestDB(t)
	loanRepo := repositories.NewLoanRepository(db)
	member := seedMember(t, db, "alice@example.com")
	book := seedBook(t, db, "978-0134190440", 5)

	// Two open loans for the same pair written straight through the
	// repository, the way two racing transactions would: the database
	// itself must reject the second, independent of any prior read.
	active := true
	first := &models.Loan{
		MemberID:   member.ID,
		BookID:     book.ID,
		Active:     &active,
		BorrowedAt: time.Now(),
		DueAt:      time.Now().AddDate(0, 0, DefaultLoanDays),
	}
	require.NoError(t, loanRepo.Create(context.Background(), first))

	second := &models.Loan{
		MemberID:   member.ID,
		BookID:     book.ID,
		Active:     &active,
		BorrowedAt: time.Now(),
		DueAt:      time.Now().AddDate(0, 0, DefaultLoanDays),
	}
	err := loanRepo.Create(context.Background(), second)
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	var count int64
	require.NoError(t, db.Model(&models.Loan{}).
		Where("member_id = ? AND book_id = ? AND returned_at IS NULL", member.ID, book.ID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// Closing the first loan clears its marker, so the pair can be
	// borrowed again afterwards.
	now := time.Now()
	first.ReturnedAt = &now
	first.Active = nil
	require.NoError(t, loanRepo.Update(context.Background(), first))
	require.NoError(t, loanRepo.Create(context.Background(), second))
}

func TestBorrowLosingRaceGetsDuplicateError(t *testing.T) {
	db := newTestDB(t)
	svc := newLoanService(db)
	member := seedMember(t, db, "alice@example.com")
	book := seedBook(t, db, "978-0134190440", 5)

	loan, err := svc.Borrow(context.Background(), &BorrowInput{MemberID: member.ID, BookID: book.ID})
	require.NoError(t, err)
	require.Equal(t, 4, bookCopies(t, db, book.ID))

	// Open the race window: blank returned_at so the duplicate check
	// sees nothing, while the open-loan marker still holds the slot.
	// This is what a borrow sees when a competing transaction commits
	// between its check and its insert.
	require.NoError(t, db.Model(&models.Loan{}).
		Where("id = ?", loan.ID).
		UpdateColumn("returned_at", time.Now()).Error)

	_, err = svc.Borrow(context.Background(), &BorrowInput{MemberID: member.ID, BookID: book.ID})
	assert.ErrorIs(t, err, ErrDuplicateActiveLoan)

	// The losing borrow rolls back whole: no loan row, no decrement
	assert.Equal(t, 4, bookCopies(t, db, book.ID))
}

func TestBorrowRejectsExhaustedBook(t *testing.T) {
	db := newTestDB(t)
	svc := newLoanService(db)
	alice := seedMember(t, db, "alice@example.com")
	bob := seedMember(t, db, "bob@example.com")
	book := seedBook(t, db, "978-0134190440", 1)

	_, err := svc.Borrow(context.Background(), &BorrowInput{MemberID: alice.ID, BookID: book.ID})
	require.NoError(t, err)

	_, err = svc.Borrow(context.Background(), &BorrowInput{MemberID: bob.ID, BookID: book.ID})
	assert.ErrorIs(t, err, ErrBookUnavailable)
	assert.Equal(t, 0, bookCopies(t, db, book.ID))
}

func TestReturnClosesLoanAndIncrementsCopies(t *testing.T) {
	db := newTestDB(t)
	svc := newLoanService(db)
	member := seedMember(t, db, "alice@example.com")
	book := seedBook(t, db, "978-0134190440", 2)

	loan, err := svc.Borrow(context.Background(), &BorrowInput{MemberID: member.ID, BookID: book.ID})
	require.NoError(t, err)
	require.Equal(t, 1, bookCopies(t, db, book.ID))

	returned, err := svc.Return(context.Background(), loan.ID, nil)
	require.NoError(t, err)

	require.NotNil(t, returned.ReturnedAt)
	assert.WithinDuration(t, time.Now(), *returned.ReturnedAt, time.Second)
	assert.Equal(t, 2, bookCopies(t, db, book.ID))
}

func TestReturnIsIdempotentRejected(t *testing.T) {
	db := newTestDB(t)
	svc := newLoanService(db)
	member := seedMember(t, db, "alice@example.com")
	book := seedBook(t, db, "978-0134190440", 1)

	loan, err := svc.Borrow(context.Background(), &BorrowInput{MemberID: member.ID, BookID: book.ID})
	require.NoError(t, err)

	first, err := svc.Return(context.Background(), loan.ID, nil)
	require.NoError(t, err)

	_, err = svc.Return(context.Background(), loan.ID, nil)
	assert.ErrorIs(t, err, ErrLoanAlreadyReturned)

	// The second attempt must not increment again or move the timestamp
	assert.Equal(t, 1, bookCopies(t, db, book.ID))
	reloaded, err := svc.loanRepo.GetByID(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ReturnedAt.Unix(), reloaded.ReturnedAt.Unix())
}

func TestReturnSucceedsWhenBookWasDeleted(t *testing.T) {
	db := newTestDB(t)
	svc := newLoanService(db)
	member := seedMember(t, db, "alice@example.com")
	book := seedBook(t, db, "978-0134190440", 1)

	loan, err := svc.Borrow(context.Background(), &BorrowInput{MemberID: member.ID, BookID: book.ID})
	require.NoError(t, err)

	// The catalog loses the book while the copy is still out
	require.NoError(t, db.Delete(&models.Book{}, book.ID).Error)

	// The loan must still close; there is no inventory to restore
	returned, err := svc.Return(context.Background(), loan.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, returned.ReturnedAt)
	assert.Nil(t, returned.Book)

	_, err = svc.Return(context.Background(), loan.ID, nil)
	assert.ErrorIs(t, err, ErrLoanAlreadyReturned)
}

func TestReturnUnknownLoan(t *testing.T) {
	db := newTestDB(t)
	svc := newLoanService(db)

	_, err := svc.Return(context.Background(), 42, nil)
	assert.ErrorIs(t, err, ErrLoanNotFound)
}

func TestReborrowAfterReturn(t *testing.T) {
	db := newTestDB(t)
	svc := newLoanService(db)
	member := seedMember(t, db, "alice@example.com")
	book := seedBook(t, db, "978-0134190440", 1)

	loan, err := svc.Borrow(context.Background(), &BorrowInput{MemberID: member.ID, BookID: book.ID})
	require.NoError(t, err)

	_, err = svc.Return(context.Background(), loan.ID, nil)
	require.NoError(t, err)

	// Same pair again: allowed because the first loan is closed
	second, err := svc.Borrow(context.Background(), &BorrowInput{MemberID: member.ID, BookID: book.ID})
	require.NoError(t, err)
	assert.NotEqual(t, loan.ID, second.ID)
	assert.Equal(t, 0, bookCopies(t, db, book.ID))
}

func TestLastCopyContention(t *testing.T) {
	db := newTestDB(t)
	svc := newLoanService(db)
	alice := seedMember(t, db, "alice@example.com")
	bob := seedMember(t, db, "bob@example.com")
	book := seedBook(t, db, "978-0134190440", 1)

	// Alice takes the last copy
	aliceLoan, err := svc.Borrow(context.Background(), &BorrowInput{MemberID: alice.ID, BookID: book.ID})
	require.NoError(t, err)

	// Bob is turned away
	_, err = svc.Borrow(context.Background(), &BorrowInput{MemberID: bob.ID, BookID: book.ID})
	require.ErrorIs(t, err, ErrBookUnavailable)

	// Alice returns; Bob succeeds
	_, err = svc.Return(context.Background(), aliceLoan.ID, nil)
	require.NoError(t, err)

	_, err = svc.Borrow(context.Background(), &BorrowInput{MemberID: bob.ID, BookID: book.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, bookCopies(t, db, book.ID))
}

func TestOverdueIsDerivedNotStored(t *testing.T) {
	db := newTestDB(t)
	svc := newLoanService(db)
	member := seedMember(t, db, "alice@example.com")
	overdueBook := seedBook(t, db, "978-0134190440", 1)
	onTimeBook := seedBook(t, db, "978-0201633610", 1)

	pastDue := time.Now().AddDate(0, 0, -1)
	overdueLoan, err := svc.Borrow(context.Background(), &BorrowInput{
		MemberID: member.ID,
		BookID:   overdueBook.ID,
		DueAt:    &pastDue,
	})
	require.NoError(t, err)

	_, err = svc.Borrow(context.Background(), &BorrowInput{MemberID: member.ID, BookID: onTimeBook.ID})
	require.NoError(t, err)

	overdue, err := svc.ListOverdue(context.Background())
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, overdueLoan.ID, overdue[0].ID)
	assert.True(t, overdue[0].IsOverdue())

	// Returning the loan removes it without any overdue flag to clear
	_, err = svc.Return(context.Background(), overdueLoan.ID, nil)
	require.NoError(t, err)

	overdue, err = svc.ListOverdue(context.Background())
	require.NoError(t, err)
	assert.Empty(t, overdue)
}

func TestReturnedLoanIsNeverOverdue(t *testing.T) {
	pastDue := time.Now().AddDate(0, 0, -5)
	returnedAt := time.Now()
	loan := &models.Loan{
		BorrowedAt: time.Now().AddDate(0, 0, -10),
		DueAt:      pastDue,
		ReturnedAt: &returnedAt,
	}

	assert.False(t, loan.IsOverdue())
	assert.False(t, loan.IsActive())
}

func TestListActive(t *testing.T) {
	db := newTestDB(t)
	svc := newLoanService(db)
	member := seedMember(t, db, "alice@example.com")
	first := seedBook(t, db, "978-0134190440", 1)
	second := seedBook(t, db, "978-0201633610", 1)

	loan, err := svc.Borrow(context.Background(), &BorrowInput{MemberID: member.ID, BookID: first.ID})
	require.NoError(t, err)
	_, err = svc.Borrow(context.Background(), &BorrowInput{MemberID: member.ID, BookID: second.ID})
	require.NoError(t, err)

	_, err = svc.Return(context.Background(), loan.ID, nil)
	require.NoError(t, err)

	active, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, second.ID, active[0].BookID)
}

func TestMemberLoanHistory(t *testing.T) {
	db := newTestDB(t)
	svc := newLoanService(db)
	member := seedMember(t, db, "alice@example.com")
	first := seedBook(t, db, "978-0134190440", 1)
	second := seedBook(t, db, "978-0201633610", 1)

	loan, err := svc.Borrow(context.Background(), &BorrowInput{MemberID: member.ID, BookID: first.ID})
	require.NoError(t, err)
	_, err = svc.Return(context.Background(), loan.ID, nil)
	require.NoError(t, err)
	_, err = svc.Borrow(context.Background(), &BorrowInput{MemberID: member.ID, BookID: second.ID})
	require.NoError(t, err)

	// History carries both closed and active loans
	history, err := svc.MemberLoanHistory(context.Background(), member.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	_, err = svc.MemberLoanHistory(context.Background(), 99)
	assert.ErrorIs(t, err, ErrLoanMemberNotFound)
}

func TestAdjustCopiesGuardsAgainstNegative(t *testing.T) {
	db := newTestDB(t)
	bookRepo := repositories.NewBookRepository(db)
	book := seedBook(t, db, "978-0134190440", 1)

	require.NoError(t, bookRepo.AdjustCopies(context.Background(), book.ID, -1))

	err := bookRepo.AdjustCopies(context.Background(), book.ID, -1)
	assert.ErrorIs(t, err, repositories.ErrCopiesExhausted)
	assert.Equal(t, 0, bookCopies(t, db, book.ID))
}
