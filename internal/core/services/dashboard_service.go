package services

import (
	"context"
	"time"

	"shelfwise/internal/adapters/persistence/models"
	"shelfwise/internal/adapters/persistence/repositories"
)

// DashboardStats aggregates catalog and lending counters for the
// admin overview screen.
type DashboardStats struct {
	TotalBooks     int64                  `json:"total_books"`
	TotalCopies    int64                  `json:"total_copies"`
	TotalMembers   int64                  `json:"total_members"`
	ActiveLoans    int64                  `json:"active_loans"`
	OverdueLoans   int64                  `json:"overdue_loans"`
	LoansThisMonth int64                  `json:"loans_this_month"`
	RecentLoans    []*models.LoanResponse `json:"recent_loans"`
	GeneratedAt    time.Time              `json:"generated_at"`
}

// DashboardService computes aggregate statistics
type DashboardService struct {
	bookRepo   repositories.BookRepository
	memberRepo repositories.MemberRepository
	loanRepo   repositories.LoanRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	bookRepo repositories.BookRepository,
	memberRepo repositories.MemberRepository,
	loanRepo repositories.LoanRepository,
) *DashboardService {
	return &DashboardService{
		bookRepo:   bookRepo,
		memberRepo: memberRepo,
		loanRepo:   loanRepo,
	}
}

// Stats gathers all dashboard counters in one pass
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	now := time.Now()
	stats := &DashboardStats{GeneratedAt: now}

	var err error
	if stats.TotalBooks, err = s.bookRepo.CountBooks(ctx); err != nil {
		return nil, err
	}
	if stats.TotalCopies, err = s.bookRepo.SumCopies(ctx); err != nil {
		return nil, err
	}
	if stats.TotalMembers, err = s.memberRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.ActiveLoans, err = s.loanRepo.CountActive(ctx); err != nil {
		return nil, err
	}
	if stats.OverdueLoans, err = s.loanRepo.CountOverdue(ctx, now); err != nil {
		return nil, err
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if stats.LoansThisMonth, err = s.loanRepo.CountCreatedSince(ctx, monthStart); err != nil {
		return nil, err
	}

	recent, err := s.loanRepo.ListRecent(ctx, 10)
	if err != nil {
		return nil, err
	}
	stats.RecentLoans = make([]*models.LoanResponse, 0, len(recent))
	for _, loan := range recent {
		stats.RecentLoans = append(stats.RecentLoans, loan.ToResponse())
	}

	return stats, nil
}
