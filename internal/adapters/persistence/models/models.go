package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Auth tables
// ============================================================

// User represents an account that can call the API
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;default:'MEMBER'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Catalog tables
// ============================================================

// Book represents one title in the catalog. CopiesAvailable is the
// shared copy counter: catalog updates may overwrite it, but during
// normal operation only borrow/return adjust it.
type Book struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Title           string    `gorm:"size:200;not null" json:"title"`
	Author          string    `gorm:"size:200;not null" json:"author"`
	ISBN            string    `gorm:"column:isbn;size:20;uniqueIndex;not null" json:"isbn"`
	Genre           string    `gorm:"size:100" json:"genre"`
	PublicationYear int       `gorm:"not null" json:"publication_year"`
	CopiesAvailable int       `gorm:"not null" json:"copies_available"`
	CreatedBy       string    `gorm:"size:100" json:"created_by,omitempty"`
	UpdatedBy       string    `gorm:"size:100" json:"updated_by,omitempty"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Book) TableName() string {
	return "books"
}

// BookResponse DTO
type BookResponse struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            string    `json:"isbn"`
	Genre           string    `json:"genre"`
	PublicationYear int       `json:"publication_year"`
	CopiesAvailable int       `json:"copies_available"`
	CreatedBy       string    `json:"created_by,omitempty"`
	UpdatedBy       string    `json:"updated_by,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (b *Book) ToResponse() *BookResponse {
	return &BookResponse{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		ISBN:            b.ISBN,
		Genre:           b.Genre,
		PublicationYear: b.PublicationYear,
		CopiesAvailable: b.CopiesAvailable,
		CreatedBy:       b.CreatedBy,
		UpdatedBy:       b.UpdatedBy,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

// Member represents a library member who can borrow books
type Member struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:100;not null" json:"name"`
	Email          string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Phone          string    `gorm:"size:20;not null" json:"phone"`
	MembershipDate time.Time `gorm:"not null" json:"membership_date"`
}

func (Member) TableName() string {
	return "members"
}

// MemberResponse DTO
type MemberResponse struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	MembershipDate time.Time `json:"membership_date"`
}

func (m *Member) ToResponse() *MemberResponse {
	return &MemberResponse{
		ID:             m.ID,
		Name:           m.Name,
		Email:          m.Email,
		Phone:          m.Phone,
		MembershipDate: m.MembershipDate,
	}
}

// ============================================================
// Lending tables
// ============================================================

// Loan ties one member to one book for a lending period.
// ReturnedAt is null while the loan is active and is set exactly
// once on return; loans are never deleted.
//
// Active mirrors "not yet returned": true while the loan is open,
// NULL after return. The unique index over (member_id, book_id,
// active) is what holds the one-active-loan-per-pair rule under
// concurrent borrows — NULLs are distinct, so closed loans never
// collide, while two open loans for the same pair cannot both
// commit.
type Loan struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	MemberID   uint       `gorm:"not null;index:idx_loans_member_book;uniqueIndex:uniq_active_loan" json:"member_id"`
	BookID     uint       `gorm:"not null;index:idx_loans_member_book;uniqueIndex:uniq_active_loan" json:"book_id"`
	Active     *bool      `gorm:"uniqueIndex:uniq_active_loan" json:"-"`
	BorrowedAt time.Time  `gorm:"not null" json:"borrowed_at"`
	DueAt      time.Time  `gorm:"not null;index" json:"due_at"`
	ReturnedAt *time.Time `gorm:"index" json:"returned_at"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Member *Member `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	Book   *Book   `gorm:"foreignKey:BookID" json:"book,omitempty"`
}

func (Loan) TableName() string {
	return "loans"
}

// IsActive reports whether the loan has not been returned yet
func (l *Loan) IsActive() bool {
	return l.ReturnedAt == nil
}

// IsOverdue is derived at read time, never stored: an active loan
// whose due date has passed. A returned loan is never overdue.
func (l *Loan) IsOverdue() bool {
	return l.ReturnedAt == nil && time.Now().After(l.DueAt)
}

// LoanResponse DTO
type LoanResponse struct {
	ID         uint       `json:"id"`
	MemberID   uint       `json:"member_id"`
	MemberName string     `json:"member_name,omitempty"`
	BookID     uint       `json:"book_id"`
	BookTitle  string     `json:"book_title,omitempty"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	DueAt      time.Time  `json:"due_at"`
	ReturnedAt *time.Time `json:"returned_at"`
	IsOverdue  bool       `json:"is_overdue"`
}

func (l *Loan) ToResponse() *LoanResponse {
	resp := &LoanResponse{
		ID:         l.ID,
		MemberID:   l.MemberID,
		BookID:     l.BookID,
		BorrowedAt: l.BorrowedAt,
		DueAt:      l.DueAt,
		ReturnedAt: l.ReturnedAt,
		IsOverdue:  l.IsOverdue(),
	}

	if l.Member != nil {
		resp.MemberName = l.Member.Name
	}
	if l.Book != nil {
		resp.BookTitle = l.Book.Title
	}

	return resp
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Book{},
		&Member{},
		&Loan{},
	)
}
