package services

import (
	"context"
	"testing"
	"time"

	"shelfwise/internal/adapters/persistence/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newMemberService(db *gorm.DB) *MemberService {
	return NewMemberService(
		repositories.NewMemberRepository(db),
		repositories.NewLoanRepository(db),
	)
}

func TestMemberCreateStampsMembershipDate(t *testing.T) {
	db := newTestDB(t)
	svc := newMemberService(db)

	member, err := svc.Create(context.Background(), &CreateMemberInput{
		Name:  "Alice Reader",
		Email: "alice@example.com",
		Phone: "555-0100",
	})
	require.NoError(t, err)

	assert.NotZero(t, member.ID)
	assert.WithinDuration(t, time.Now(), member.MembershipDate, time.Second)
}

func TestMemberCreateRejectsDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := newMemberService(db)

	input := &CreateMemberInput{Name: "Alice Reader", Email: "alice@example.com"}
	_, err := svc.Create(context.Background(), input)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), &CreateMemberInput{Name: "Other Alice", Email: "alice@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestMemberDeleteBlockedByActiveLoans(t *testing.T) {
	db := newTestDB(t)
	memberSvc := newMemberService(db)
	loanSvc := newLoanService(db)

	member, err := memberSvc.Create(context.Background(), &CreateMemberInput{
		Name:  "Alice Reader",
		Email: "alice@example.com",
	})
	require.NoError(t, err)
	book := seedBook(t, db, "978-0134190440", 1)

	loan, err := loanSvc.Borrow(context.Background(), &BorrowInput{MemberID: member.ID, BookID: book.ID})
	require.NoError(t, err)

	// Cannot remove a member while a copy is out
	err = memberSvc.Delete(context.Background(), member.ID)
	assert.ErrorIs(t, err, ErrMemberHasActiveLoans)

	_, err = loanSvc.Return(context.Background(), loan.ID, nil)
	require.NoError(t, err)

	// Once everything is back the member can go
	require.NoError(t, memberSvc.Delete(context.Background(), member.ID))
	_, err = memberSvc.GetByID(context.Background(), member.ID)
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestMemberDeleteUnknown(t *testing.T) {
	db := newTestDB(t)
	svc := newMemberService(db)

	assert.ErrorIs(t, svc.Delete(context.Background(), 42), ErrMemberNotFound)
}

func TestMemberListSearch(t *testing.T) {
	db := newTestDB(t)
	svc := newMemberService(db)

	for _, m := range []*CreateMemberInput{
		{Name: "Alice Reader", Email: "alice@example.com"},
		{Name: "Bob Browser", Email: "bob@example.com"},
	} {
		_, err := svc.Create(context.Background(), m)
		require.NoError(t, err)
	}

	members, total, err := svc.List(context.Background(), 0, 20, "bob")
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, members, 1)
	assert.Equal(t, "Bob Browser", members[0].Name)
}
