package services

import (
	"context"
	"log"

	"shelfwise/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// MaintenanceService runs scheduled housekeeping jobs
type MaintenanceService struct {
	tokenRepo repositories.RefreshTokenRepository
	cron      *cron.Cron
}

// NewMaintenanceService creates a new maintenance service
func NewMaintenanceService(tokenRepo repositories.RefreshTokenRepository) *MaintenanceService {
	return &MaintenanceService{
		tokenRepo: tokenRepo,
		cron:      cron.New(),
	}
}

// Start registers and starts the scheduled jobs
func (s *MaintenanceService) Start() error {
	// Purge expired refresh tokens nightly at 03:30
	if _, err := s.cron.AddFunc("30 3 * * *", s.purgeExpiredTokens); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("⏰ Maintenance scheduler started")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *MaintenanceService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *MaintenanceService) purgeExpiredTokens() {
	deleted, err := s.tokenRepo.DeleteExpired(context.Background())
	if err != nil {
		log.Printf("❌ Failed to purge expired refresh tokens: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("🧹 Purged %d expired refresh tokens", deleted)
	}
}
