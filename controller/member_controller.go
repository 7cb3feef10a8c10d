package controller

import (
	"kodikas-backend/models"
	"kodikas-backend/services"
	"kodikas-backend/utils/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type MemberController struct {
	memberService services.MemberServiceInterface
	logger        logger.Logger
	validator     *validator.Validate
}

func NewMemberController(memberService services.MemberServiceInterface, logger logger.Logger) *MemberController {
	return &MemberController{
		memberService: memberService,
		logger:        logger,
		validator:     newValidator(),
	}
}

// GetMembers handles GET /api/v1/members/list
// @Summary List active members
// @Tags Members
// @Produce json
// @Success 200 {object} models.APIResponse "Members retrieved successfully"
// @Failure 500 {object} models.APIResponse "Internal Server Error - Failed to retrieve members"
// @Router /members/list [get]
func (h *MemberController) GetMembers(c *gin.Context) {
	members, err := h.memberService.GetMembers(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "Failed to get members", err)
		return
	}

	respondSuccess(c, http.StatusOK, "Members retrieved successfully", members)
}

// GetMember handles GET /api/v1/members/:id
// @Summary Get member by ID
// @Description Retrieve an active member with its project and application ids
// @Tags Members
// @Produce json
// @Param id path string true "Member ID"
// @Success 200 {object} models.APIResponse "Member retrieved successfully"
// @Failure 404 {object} models.APIResponse "Not Found - Member does not exist or is inactive"
// @Failure 500 {object} models.APIResponse "Internal Server Error"
// @Router /members/{id} [get]
func (h *MemberController) GetMember(c *gin.Context) {
	member, err := h.memberService.GetMemberByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "Failed to get member", err)
		return
	}

	respondSuccess(c, http.StatusOK, "Member retrieved successfully", member)
}

// CreateMember handles POST /api/v1/members/create
// @Summary Create a new member
// @Tags Members
// @Accept json
// @Produce json
// @Param request body models.CreateMemberRequest true "Create member request"
// @Success 201 {object} models.APIResponse "Member created successfully"
// @Failure 400 {object} models.APIResponse "Bad Request - Invalid member data"
// @Failure 404 {object} models.APIResponse "Not Found - Organization does not exist"
// @Failure 409 {object} models.APIResponse "Conflict - Name or email already exists"
// @Failure 500 {object} models.APIResponse "Internal Server Error - Member creation failed"
// @Router /members/create [post]
func (h *MemberController) CreateMember(c *gin.Context) {
	var req models.CreateMemberRequest
	if !bindRequest(c, h.validator, h.logger, &req) {
		return
	}

	member, err := h.memberService.CreateMember(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, "Failed to create member", err)
		return
	}

	respondSuccess(c, http.StatusCreated, "Member created successfully", member)
}

// UpdateMember handles PUT /api/v1/members/:id
// @Summary Update a member
// @Tags Members
// @Accept json
// @Produce json
// @Param id path string true "Member ID"
// @Param request body models.UpdateMemberRequest true "Update member request"
// @Success 200 {object} models.APIResponse "Member updated successfully"
// @Failure 400 {object} models.APIResponse "Bad Request - Invalid member data"
// @Failure 404 {object} models.APIResponse "Not Found - Member or organization does not exist"
// @Failure 409 {object} models.APIResponse "Conflict - Name or email already exists"
// @Failure 500 {object} models.APIResponse "Internal Server Error - Member update failed"
// @Router /members/{id} [put]
func (h *MemberController) UpdateMember(c *gin.Context) {
	var req models.UpdateMemberRequest
	if !bindRequest(c, h.validator, h.logger, &req) {
		return
	}

	member, err := h.memberService.UpdateMember(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, h.logger, "Failed to update member", err)
		return
	}

	respondSuccess(c, http.StatusOK, "Member updated successfully", member)
}

// DeactivateMember handles PUT /api/v1/members/delete/:id
// @Summary Deactivate a member
// @Tags Members
// @Produce json
// @Param id path string true "Member ID"
// @Success 200 {object} models.APIResponse "Member deactivated successfully"
// @Failure 404 {object} models.APIResponse "Not Found - Member does not exist"
// @Failure 500 {object} models.APIResponse "Internal Server Error - Member deactivation failed"
// @Router /members/delete/{id} [put]
func (h *MemberController) DeactivateMember(c *gin.Context) {
	member, err := h.memberService.DeactivateMember(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "Failed to deactivate member", err)
		return
	}

	respondSuccess(c, http.StatusOK, "Member deactivated successfully", member)
}
