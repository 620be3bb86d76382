package handlers

import (
	"errors"
	"strconv"

	"shelfwise/internal/adapters/http/middleware"
	"shelfwise/internal/adapters/persistence/models"
	"shelfwise/internal/core/services"
	"shelfwise/internal/pkg/pagination"
	"shelfwise/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BookHandler handles catalog endpoints
type BookHandler struct {
	bookService *services.BookService
}

// NewBookHandler creates a new book handler
func NewBookHandler(bookService *services.BookService) *BookHandler {
	return &BookHandler{bookService: bookService}
}

// Create handles book creation
// @Summary Add a book
// @Description Register a new book in the catalog
// @Tags Books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateBookInput true "Book data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /books [post]
func (h *BookHandler) Create(c *fiber.Ctx) error {
	var input services.CreateBookInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if input.Title == "" || input.Author == "" || input.ISBN == "" {
		return response.BadRequest(c, "Title, author and ISBN are required")
	}
	if input.CopiesAvailable < 0 {
		return response.BadRequest(c, "Copies available cannot be negative")
	}

	book, err := h.bookService.Create(c.Context(), &input, middleware.ActorFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateISBN):
			return response.Conflict(c, "A book with this ISBN already exists")
		default:
			return response.InternalServerError(c, "Failed to create book")
		}
	}

	return response.Created(c, "Book created successfully", book.ToResponse())
}

// List handles book listing
// @Summary List books
// @Description List books with pagination
// @Tags Books
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /books [get]
func (h *BookHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	books, total, err := h.bookService.List(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list books")
	}

	responses := make([]*models.BookResponse, 0, len(books))
	for _, book := range books {
		responses = append(responses, book.ToResponse())
	}

	return response.Success(c, "Books retrieved successfully", pagination.NewResponse(responses, params, total))
}

// Get handles single book retrieval
// @Summary Get a book
// @Description Get a book by ID
// @Tags Books
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /books/{id} [get]
func (h *BookHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid book ID")
	}

	book, err := h.bookService.GetByID(c.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBookNotFound):
			return response.NotFound(c, "Book not found")
		default:
			return response.InternalServerError(c, "Failed to get book")
		}
	}

	return response.Success(c, "Book retrieved successfully", book.ToResponse())
}

// Update handles book update
// @Summary Update a book
// @Description Replace every mutable field of a book. ISBN cannot be changed.
// @Tags Books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Param body body services.UpdateBookInput true "Book data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /books/{id} [put]
func (h *BookHandler) Update(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid book ID")
	}

	var input services.UpdateBookInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if input.Title == "" || input.Author == "" {
		return response.BadRequest(c, "Title and author are required")
	}
	if input.CopiesAvailable < 0 {
		return response.BadRequest(c, "Copies available cannot be negative")
	}

	book, err := h.bookService.Update(c.Context(), id, &input, middleware.ActorFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBookNotFound):
			return response.NotFound(c, "Book not found")
		default:
			return response.InternalServerError(c, "Failed to update book")
		}
	}

	return response.Success(c, "Book updated successfully", book.ToResponse())
}

// Delete handles book removal
// @Summary Delete a book
// @Description Remove a book from the catalog
// @Tags Books
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /books/{id} [delete]
func (h *BookHandler) Delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid book ID")
	}

	if err := h.bookService.Delete(c.Context(), id); err != nil {
		switch {
		case errors.Is(err, services.ErrBookNotFound):
			return response.NotFound(c, "Book not found")
		default:
			return response.InternalServerError(c, "Failed to delete book")
		}
	}

	return response.Success(c, "Book deleted successfully", nil)
}

// Import handles bulk catalog import
// @Summary Import books
// @Description Register many books at once, skipping duplicate ISBNs
// @Tags Books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body []services.CreateBookInput true "Books to import"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /books/import [post]
func (h *BookHandler) Import(c *fiber.Ctx) error {
	var inputs []*services.CreateBookInput
	if err := c.BodyParser(&inputs); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if len(inputs) == 0 {
		return response.BadRequest(c, "No books to import")
	}

	for _, input := range inputs {
		if input.Title == "" || input.Author == "" || input.ISBN == "" {
			return response.BadRequest(c, "Every book needs a title, author and ISBN")
		}
		if input.CopiesAvailable < 0 {
			return response.BadRequest(c, "Copies available cannot be negative")
		}
	}

	result, err := h.bookService.Import(c.Context(), inputs, middleware.ActorFromContext(c))
	if err != nil {
		return response.InternalServerError(c, "Failed to import books")
	}

	return response.Success(c, "Import completed", result)
}

// parseIDParam parses the :id path parameter
func parseIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
