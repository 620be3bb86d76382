package config

import (
	"log"

	"shelfwise/internal/adapters/persistence/models"
	"shelfwise/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	if err := s.seedCatalog(); err != nil {
		log.Printf("⚠️ Catalog seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser seeds the default admin user
// This is for development/testing only
// In production, create admin through secure process
func (s *Seeder) seedAdminUser() error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", "ADMIN").Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.User{
		Username: "admin",
		Password: hashedPassword,
		Role:     "ADMIN",
		IsActive: true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Username)
	return nil
}

// seedCatalog seeds a handful of sample titles for development
func (s *Seeder) seedCatalog() error {
	var count int64
	s.db.Model(&models.Book{}).Count(&count)
	if count > 0 {
		return nil // Catalog already populated
	}

	books := []models.Book{
		{Title: "The Go Programming Language", Author: "Alan A. A. Donovan", ISBN: "9780134190440", Genre: "Technology", PublicationYear: 2015, CopiesAvailable: 3, CreatedBy: "seeder"},
		{Title: "Designing Data-Intensive Applications", Author: "Martin Kleppmann", ISBN: "9781449373320", Genre: "Technology", PublicationYear: 2017, CopiesAvailable: 2, CreatedBy: "seeder"},
		{Title: "The Name of the Wind", Author: "Patrick Rothfuss", ISBN: "9780756404741", Genre: "Fantasy", PublicationYear: 2007, CopiesAvailable: 4, CreatedBy: "seeder"},
		{Title: "Pride and Prejudice", Author: "Jane Austen", ISBN: "9780141439518", Genre: "Classics", PublicationYear: 1813, CopiesAvailable: 5, CreatedBy: "seeder"},
	}

	for i := range books {
		if err := s.db.Create(&books[i]).Error; err != nil {
			return err
		}
	}

	log.Printf("✅ Seeded %d catalog titles", len(books))
	return nil
}
