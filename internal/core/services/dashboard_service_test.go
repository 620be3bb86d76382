package services

import (
	"context"
	"testing"
	"time"

	"shelfwise/internal/adapters/persistence/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStats(t *testing.T) {
	db := newTestDB(t)
	loanSvc := newLoanService(db)
	svc := NewDashboardService(
		repositories.NewBookRepository(db),
		repositories.NewMemberRepository(db),
		repositories.NewLoanRepository(db),
	)

	alice := seedMember(t, db, "alice@example.com")
	bob := seedMember(t, db, "bob@example.com")
	first := seedBook(t, db, "978-0134190440", 3)
	second := seedBook(t, db, "978-0201633610", 2)

	pastDue := time.Now().AddDate(0, 0, -2)
	_, err := loanSvc.Borrow(context.Background(), &BorrowInput{
		MemberID: alice.ID,
		BookID:   first.ID,
		DueAt:    &pastDue,
	})
	require.NoError(t, err)
	_, err = loanSvc.Borrow(context.Background(), &BorrowInput{MemberID: bob.ID, BookID: second.ID})
	require.NoError(t, err)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 2, stats.TotalBooks)
	assert.EqualValues(t, 3, stats.TotalCopies) // 5 seeded, 2 out
	assert.EqualValues(t, 2, stats.TotalMembers)
	assert.EqualValues(t, 2, stats.ActiveLoans)
	assert.EqualValues(t, 1, stats.OverdueLoans)
	assert.EqualValues(t, 2, stats.LoansThisMonth)
	assert.Len(t, stats.RecentLoans, 2)
}
