package handlers

import (
	"errors"
	"strings"

	"shelfwise/internal/adapters/persistence/models"
	"shelfwise/internal/core/services"
	"shelfwise/internal/pkg/pagination"
	"shelfwise/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MemberHandler handles member registry endpoints
type MemberHandler struct {
	memberService *services.MemberService
	loanService   *services.LoanService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(memberService *services.MemberService, loanService *services.LoanService) *MemberHandler {
	return &MemberHandler{
		memberService: memberService,
		loanService:   loanService,
	}
}

// Create handles member registration
// @Summary Register a member
// @Description Register a new library member
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateMemberInput true "Member data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /members [post]
func (h *MemberHandler) Create(c *fiber.Ctx) error {
	var input services.CreateMemberInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if input.Name == "" || input.Email == "" {
		return response.BadRequest(c, "Name and email are required")
	}

	member, err := h.memberService.Create(c.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateEmail):
			return response.Conflict(c, "A member with this email already exists")
		default:
			return response.InternalServerError(c, "Failed to register member")
		}
	}

	return response.Created(c, "Member registered successfully", member.ToResponse())
}

// List handles member listing
// @Summary List members
// @Description List members with pagination and optional name/email search
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param search query string false "Search in name and email"
// @Success 200 {object} response.Response
// @Router /members [get]
func (h *MemberHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	search := c.Query("search")

	members, total, err := h.memberService.List(c.Context(), params.Offset, params.Limit, search)
	if err != nil {
		return response.InternalServerError(c, "Failed to list members")
	}

	responses := make([]*models.MemberResponse, 0, len(members))
	for _, member := range members {
		responses = append(responses, member.ToResponse())
	}

	return response.Success(c, "Members retrieved successfully", pagination.NewResponse(responses, params, total))
}

// Get handles single member retrieval
// @Summary Get a member
// @Description Get a member by ID
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{id} [get]
func (h *MemberHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid member ID")
	}

	member, err := h.memberService.GetByID(c.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMemberNotFound):
			return response.NotFound(c, "Member not found")
		default:
			return response.InternalServerError(c, "Failed to get member")
		}
	}

	return response.Success(c, "Member retrieved successfully", member.ToResponse())
}

// Delete handles member removal
// @Summary Delete a member
// @Description Remove a member. Fails while the member holds active loans.
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{id} [delete]
func (h *MemberHandler) Delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid member ID")
	}

	if err := h.memberService.Delete(c.Context(), id); err != nil {
		switch {
		case errors.Is(err, services.ErrMemberNotFound):
			return response.NotFound(c, "Member not found")
		case errors.Is(err, services.ErrMemberHasActiveLoans):
			return response.BadRequest(c, "Member still has active loans")
		default:
			return response.InternalServerError(c, "Failed to delete member")
		}
	}

	return response.Success(c, "Member deleted successfully", nil)
}

// Loans handles a member's loan history
// @Summary Member loan history
// @Description List all loans for a member, active and returned
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{id}/loans [get]
func (h *MemberHandler) Loans(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid member ID")
	}

	loans, err := h.loanService.MemberLoanHistory(c.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLoanMemberNotFound):
			return response.NotFound(c, "Member not found")
		default:
			return response.InternalServerError(c, "Failed to get loan history")
		}
	}

	responses := make([]*models.LoanResponse, 0, len(loans))
	for _, loan := range loans {
		responses = append(responses, loan.ToResponse())
	}

	return response.Success(c, "Loan history retrieved successfully", responses)
}
