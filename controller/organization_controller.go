package controller

import (
	"kodikas-backend/models"
	"kodikas-backend/services"
	"kodikas-backend/utils/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type OrganizationController struct {
	organizationService services.OrganizationServiceInterface
	logger              logger.Logger
	validator           *validator.Validate
}

func NewOrganizationController(organizationService services.OrganizationServiceInterface, logger logger.Logger) *OrganizationController {
	return &OrganizationController{
		organizationService: organizationService,
		logger:              logger,
		validator:           newValidator(),
	}
}

// GetOrganizations handles GET /api/v1/organizations/list
// @Summary List active organizations
// @Description Retrieve every active organization with its linked member and project ids
// @Tags Organizations
// @Produce json
// @Success 200 {object} models.APIResponse "Organizations retrieved successfully"
// @Failure 500 {object} models.APIResponse "Internal Server Error - Failed to retrieve organizations"
// @Router /organizations/list [get]
func (h *OrganizationController) GetOrganizations(c *gin.Context) {
	organizations, err := h.organizationService.GetOrganizations(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "Failed to get organizations", err)
		return
	}

	respondSuccess(c, http.StatusOK, "Organizations retrieved successfully", organizations)
}

// GetOrganization handles GET /api/v1/organizations/:id
// @Summary Get organization by ID
// @Description Retrieve an active organization. Inactive organizations are reported as not found.
// @Tags Organizations
// @Produce json
// @Param id path string true "Organization ID"
// @Success 200 {object} models.APIResponse "Organization retrieved successfully"
// @Failure 404 {object} models.APIResponse "Not Found - Organization does not exist or is inactive"
// @Failure 500 {object} models.APIResponse "Internal Server Error"
// @Router /organizations/{id} [get]
func (h *OrganizationController) GetOrganization(c *gin.Context) {
	organization, err := h.organizationService.GetOrganizationByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "Failed to get organization", err)
		return
	}

	respondSuccess(c, http.StatusOK, "Organization retrieved successfully", organization)
}

// CreateOrganization handles POST /api/v1/organizations/create
// @Summary Create a new organization
// @Description Create an active organization with no linked members or projects
// @Tags Organizations
// @Accept json
// @Produce json
// @Param request body models.CreateOrganizationRequest true "Create organization request"
// @Success 201 {object} models.APIResponse "Organization created successfully"
// @Failure 400 {object} models.APIResponse "Bad Request - Invalid organization data"
// @Failure 409 {object} models.APIResponse "Conflict - Organization name already exists"
// @Failure 500 {object} models.APIResponse "Internal Server Error - Organization creation failed"
// @Router /organizations/create [post]
func (h *OrganizationController) CreateOrganization(c *gin.Context) {
	var req models.CreateOrganizationRequest
	if !bindRequest(c, h.validator, h.logger, &req) {
		return
	}

	organization, err := h.organizationService.CreateOrganization(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, "Failed to create organization", err)
		return
	}

	respondSuccess(c, http.StatusCreated, "Organization created successfully", organization)
}

// UpdateOrganization handles PUT /api/v1/organizations/:id
// @Summary Update an organization
// @Description Apply a partial update. memberIds and projectIds are linked in addition to the existing links.
// @Tags Organizations
// @Accept json
// @Produce json
// @Param id path string true "Organization ID"
// @Param request body models.UpdateOrganizationRequest true "Update organization request"
// @Success 200 {object} models.APIResponse "Organization updated successfully"
// @Failure 400 {object} models.APIResponse "Bad Request - Invalid organization data"
// @Failure 404 {object} models.APIResponse "Not Found - Organization or a referenced member/project does not exist"
// @Failure 409 {object} models.APIResponse "Conflict - Organization is inactive or name already exists"
// @Failure 500 {object} models.APIResponse "Internal Server Error - Organization update failed"
// @Router /organizations/{id} [put]
func (h *OrganizationController) UpdateOrganization(c *gin.Context) {
	var req models.UpdateOrganizationRequest
	if !bindRequest(c, h.validator, h.logger, &req) {
		return
	}

	organization, err := h.organizationService.UpdateOrganization(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, h.logger, "Failed to update organization", err)
		return
	}

	respondSuccess(c, http.StatusOK, "Organization updated successfully", organization)
}

// DeactivateOrganization handles PUT /api/v1/organizations/delete/:id
// @Summary Deactivate an organization
// @Description Soft-delete an organization. Refused while members or projects are linked.
// @Tags Organizations
// @Produce json
// @Param id path string true "Organization ID"
// @Success 200 {object} models.APIResponse "Organization deactivated successfully"
// @Failure 404 {object} models.APIResponse "Not Found - Organization does not exist"
// @Failure 409 {object} models.APIResponse "Conflict - Organization is already inactive or still has links"
// @Failure 500 {object} models.APIResponse "Internal Server Error - Organization deactivation failed"
// @Router /organizations/delete/{id} [put]
func (h *OrganizationController) DeactivateOrganization(c *gin.Context) {
	organization, err := h.organizationService.DeactivateOrganization(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "Failed to deactivate organization", err)
		return
	}

	respondSuccess(c, http.StatusOK, "Organization deactivated successfully", organization)
}
