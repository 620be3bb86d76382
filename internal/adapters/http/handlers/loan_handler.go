package handlers

import (
	"errors"

	"shelfwise/internal/adapters/persistence/models"
	"shelfwise/internal/core/services"
	"shelfwise/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// LoanHandler handles lending endpoints
type LoanHandler struct {
	loanService *services.LoanService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService *services.LoanService) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

// Borrow handles borrowing a book
// @Summary Borrow a book
// @Description Create a loan and decrement the book's available copies
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.BorrowInput true "Borrow data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans [post]
func (h *LoanHandler) Borrow(c *fiber.Ctx) error {
	var input services.BorrowInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if input.MemberID == 0 {
		return response.BadRequest(c, "Member ID is required")
	}
	if input.BookID == 0 {
		return response.BadRequest(c, "Book ID is required")
	}

	loan, err := h.loanService.Borrow(c.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLoanMemberNotFound):
			return response.NotFound(c, "Member not found")
		case errors.Is(err, services.ErrLoanBookNotFound):
			return response.NotFound(c, "Book not found")
		case errors.Is(err, services.ErrDuplicateActiveLoan):
			return response.Conflict(c, "Member already has an active loan for this book")
		case errors.Is(err, services.ErrBookUnavailable):
			return response.BadRequest(c, "Book is not available, no copies left")
		default:
			return response.InternalServerError(c, "Failed to borrow book")
		}
	}

	return response.Created(c, "Book borrowed successfully", loan.ToResponse())
}

// Return handles returning a book
// @Summary Return a book
// @Description Close a loan and increment the book's available copies
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Param body body services.ReturnInput false "Return data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id}/return [post]
func (h *LoanHandler) Return(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	var input services.ReturnInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}

	loan, err := h.loanService.Return(c.Context(), id, &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLoanNotFound):
			return response.NotFound(c, "Loan not found")
		case errors.Is(err, services.ErrLoanAlreadyReturned):
			return response.BadRequest(c, "Loan has already been returned")
		default:
			return response.InternalServerError(c, "Failed to return book")
		}
	}

	return response.Success(c, "Book returned successfully", loan.ToResponse())
}

// ListActive handles listing active loans
// @Summary List active loans
// @Description List all loans that have not been returned yet
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /loans/active [get]
func (h *LoanHandler) ListActive(c *fiber.Ctx) error {
	loans, err := h.loanService.ListActive(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list active loans")
	}

	return response.Success(c, "Active loans retrieved successfully", toLoanResponses(loans))
}

// ListOverdue handles listing overdue loans
// @Summary List overdue loans
// @Description List active loans whose due date has passed
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /loans/overdue [get]
func (h *LoanHandler) ListOverdue(c *fiber.Ctx) error {
	loans, err := h.loanService.ListOverdue(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list overdue loans")
	}

	return response.Success(c, "Overdue loans retrieved successfully", toLoanResponses(loans))
}

func toLoanResponses(loans []*models.Loan) []*models.LoanResponse {
	responses := make([]*models.LoanResponse, 0, len(loans))
	for _, loan := range loans {
		responses = append(responses, loan.ToResponse())
	}
	return responses
}
