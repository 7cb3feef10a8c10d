package controller

import (
	"kodikas-backend/models"
	"kodikas-backend/services"
	"kodikas-backend/utils/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ApplicationController struct {
	applicationService services.ApplicationServiceInterface
	logger             logger.Logger
	validator          *validator.Validate
}

func NewApplicationController(applicationService services.ApplicationServiceInterface, logger logger.Logger) *ApplicationController {
	return &ApplicationController{
		applicationService: applicationService,
		logger:             logger,
		validator:          newValidator(),
	}
}

// GetApplications handles GET /api/v1/applications/list
// @Summary List active applications
// @Tags Applications
// @Produce json
// @Success 200 {object} models.APIResponse "Applications retrieved successfully"
// @Failure 500 {object} models.APIResponse "Internal Server Error - Failed to retrieve applications"
// @Router /applications/list [get]
func (h *ApplicationController) GetApplications(c *gin.Context) {
	applications, err := h.applicationService.GetApplications(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "Failed to get applications", err)
		return
	}

	respondSuccess(c, http.StatusOK, "Applications retrieved successfully", applications)
}

// GetApplication handles GET /api/v1/applications/:id
// @Summary Get application by ID
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} models.APIResponse "Application retrieved successfully"
// @Failure 404 {object} models.APIResponse "Not Found - Application does not exist or is inactive"
// @Failure 500 {object} models.APIResponse "Internal Server Error"
// @Router /applications/{id} [get]
func (h *ApplicationController) GetApplication(c *gin.Context) {
	application, err := h.applicationService.GetApplicationByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "Failed to get application", err)
		return
	}

	respondSuccess(c, http.StatusOK, "Application retrieved successfully", application)
}

// CreateApplication handles POST /api/v1/applications/create
// @Summary Create a new application
// @Description Status defaults to pending when omitted
// @Tags Applications
// @Accept json
// @Produce json
// @Param request body models.CreateApplicationRequest true "Create application request"
// @Success 201 {object} models.APIResponse "Application created successfully"
// @Failure 400 {object} models.APIResponse "Bad Request - Invalid application data"
// @Failure 404 {object} models.APIResponse "Not Found - Member or project does not exist"
// @Failure 500 {object} models.APIResponse "Internal Server Error - Application creation failed"
// @Router /applications/create [post]
func (h *ApplicationController) CreateApplication(c *gin.Context) {
	var req models.CreateApplicationRequest
	if !bindRequest(c, h.validator, h.logger, &req) {
		return
	}

	application, err := h.applicationService.CreateApplication(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, "Failed to create application", err)
		return
	}

	respondSuccess(c, http.StatusCreated, "Application created successfully", application)
}

// UpdateApplication handles PUT /api/v1/applications/:id
// @Summary Update an application
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param request body models.UpdateApplicationRequest true "Update application request"
// @Success 200 {object} models.APIResponse "Application updated successfully"
// @Failure 400 {object} models.APIResponse "Bad Request - Invalid application data"
// @Failure 404 {object} models.APIResponse "Not Found - Application, member or project does not exist"
// @Failure 409 {object} models.APIResponse "Conflict - Application is inactive"
// @Failure 500 {object} models.APIResponse "Internal Server Error - Application update failed"
// @Router /applications/{id} [put]
func (h *ApplicationController) UpdateApplication(c *gin.Context) {
	var req models.UpdateApplicationRequest
	if !bindRequest(c, h.validator, h.logger, &req) {
		return
	}

	application, err := h.applicationService.UpdateApplication(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, h.logger, "Failed to update application", err)
		return
	}

	respondSuccess(c, http.StatusOK, "Application updated successfully", application)
}

// DeactivateApplication handles PUT /api/v1/applications/delete/:id
// @Summary Deactivate an application
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} models.APIResponse "Application deactivated successfully"
// @Failure 404 {object} models.APIResponse "Not Found - Application does not exist"
// @Failure 500 {object} models.APIResponse "Internal Server Error - Application deactivation failed"
// @Router /applications/delete/{id} [put]
func (h *ApplicationController) DeactivateApplication(c *gin.Context) {
	application, err := h.applicationService.DeactivateApplication(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "Failed to deactivate application", err)
		return
	}

	respondSuccess(c, http.StatusOK, "Application deactivated successfully", application)
}
