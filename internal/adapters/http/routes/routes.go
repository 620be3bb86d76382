package routes

import (
	"time"

	"shelfwise/internal/adapters/http/handlers"
	"shelfwise/internal/adapters/http/middleware"
	"shelfwise/internal/adapters/persistence/repositories"
	"shelfwise/internal/config"
	"shelfwise/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	bookRepo := repositories.NewBookRepository(db)
	memberRepo := repositories.NewMemberRepository(db)
	loanRepo := repositories.NewLoanRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg.JWT)
	userService := services.NewUserService(userRepo, refreshTokenRepo)
	bookService := services.NewBookService(bookRepo)
	memberService := services.NewMemberService(memberRepo, loanRepo)
	loanService := services.NewLoanService(db, loanRepo, bookRepo, memberRepo)
	dashboardService := services.NewDashboardService(bookRepo, memberRepo, loanRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	bookHandler := handlers.NewBookHandler(bookService)
	memberHandler := handlers.NewMemberHandler(memberService, loanService)
	loanHandler := handlers.NewLoanHandler(loanService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	// Auth routes (public, rate limited)
	authRoutes := apiV1.Group("/auth")
	authRoutes.Use(middleware.NoCacheHeaders())
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Book routes: reads for any authenticated user, writes LIBRARIAN/ADMIN
	bookRoutes := apiV1.Group("/books")
	bookRoutes.Use(middleware.AuthMiddleware(cfg))
	setupBookRoutes(bookRoutes, bookHandler)

	// Member routes: LIBRARIAN/ADMIN, loan history also open to MEMBER
	memberRoutes := apiV1.Group("/members")
	memberRoutes.Use(middleware.AuthMiddleware(cfg))
	setupMemberRoutes(memberRoutes, memberHandler)

	// Loan routes (LIBRARIAN/ADMIN)
	loanRoutes := apiV1.Group("/loans")
	loanRoutes.Use(middleware.AuthMiddleware(cfg))
	loanRoutes.Use(middleware.LibrarianOrAdmin())
	setupLoanRoutes(loanRoutes, loanHandler)

	// User management routes (ADMIN only, except own password)
	userRoutes := apiV1.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	setupUserRoutes(userRoutes, userHandler)

	// Dashboard routes (LIBRARIAN/ADMIN)
	dashboardRoutes := apiV1.Group("/dashboard")
	dashboardRoutes.Use(middleware.AuthMiddleware(cfg))
	dashboardRoutes.Use(middleware.LibrarianOrAdmin())
	dashboardRoutes.Get("/stats", dashboardHandler.Stats)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes (registration sees the caller's role when a token
	// is present, so admins can create LIBRARIAN accounts)
	router.Post("/register", middleware.AuthRateLimiter(), middleware.OptionalAuth(cfg), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupBookRoutes configures catalog routes
func setupBookRoutes(router fiber.Router, handler *handlers.BookHandler) {
	// Reads, cached briefly
	router.Get("/", middleware.CacheControl(5*time.Minute), handler.List)
	router.Get("/:id", middleware.CacheControl(5*time.Minute), handler.Get)

	// Writes need LIBRARIAN/ADMIN
	writes := router.Group("", middleware.LibrarianOrAdmin())
	writes.Post("/", handler.Create)
	writes.Post("/import", handler.Import)
	writes.Put("/:id", handler.Update)
	writes.Delete("/:id", handler.Delete)
}

// setupMemberRoutes configures member registry routes
func setupMemberRoutes(router fiber.Router, handler *handlers.MemberHandler) {
	// Members may look up their own loan history
	router.Get("/:id/loans", handler.Loans)

	staff := router.Group("", middleware.LibrarianOrAdmin())
	staff.Post("/", handler.Create)
	staff.Get("/", handler.List)
	staff.Get("/:id", handler.Get)
	staff.Delete("/:id", handler.Delete)
}

// setupLoanRoutes configures lending routes
func setupLoanRoutes(router fiber.Router, handler *handlers.LoanHandler) {
	router.Post("/", handler.Borrow)
	router.Post("/:id/return", handler.Return)
	router.Get("/active", handler.ListActive)
	router.Get("/overdue", handler.ListOverdue)
}

// setupUserRoutes configures account administration routes
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	// Any authenticated user can change their own password
	router.Put("/me/password", handler.ChangePassword)

	// Everything else is ADMIN only
	admin := router.Group("", middleware.AdminOnly())
	admin.Get("/", handler.List)
	admin.Get("/:id", handler.Get)
	admin.Patch("/:id/role", handler.UpdateRole)
	admin.Patch("/:id/active", handler.SetActive)
	admin.Delete("/:id", handler.Delete)
}
