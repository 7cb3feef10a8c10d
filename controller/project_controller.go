package controller

import (
	"kodikas-backend/models"
	"kodikas-backend/services"
	"kodikas-backend/utils/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ProjectController struct {
	projectService services.ProjectServiceInterface
	logger         logger.Logger
	validator      *validator.Validate
}

func NewProjectController(projectService services.ProjectServiceInterface, logger logger.Logger) *ProjectController {
	return &ProjectController{
		projectService: projectService,
		logger:         logger,
		validator:      newValidator(),
	}
}

// GetProjects handles GET /api/v1/projects/list
// @Summary List active projects
// @Tags Projects
// @Produce json
// @Success 200 {object} models.APIResponse "Projects retrieved successfully"
// @Failure 500 {object} models.APIResponse "Internal Server Error - Failed to retrieve projects"
// @Router /projects/list [get]
func (h *ProjectController) GetProjects(c *gin.Context) {
	projects, err := h.projectService.GetProjects(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "Failed to get projects", err)
		return
	}

	respondSuccess(c, http.StatusOK, "Projects retrieved successfully", projects)
}

// GetProject handles GET /api/v1/projects/:id
// @Summary Get project by ID
// @Description Retrieve an active project with its owner and organization names
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} models.APIResponse "Project retrieved successfully"
// @Failure 404 {object} models.APIResponse "Not Found - Project does not exist or is inactive"
// @Failure 500 {object} models.APIResponse "Internal Server Error"
// @Router /projects/{id} [get]
func (h *ProjectController) GetProject(c *gin.Context) {
	project, err := h.projectService.GetProjectByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "Failed to get project", err)
		return
	}

	respondSuccess(c, http.StatusOK, "Project retrieved successfully", project)
}

// CreateProject handles POST /api/v1/projects/create
// @Summary Create a new project
// @Tags Projects
// @Accept json
// @Produce json
// @Param request body models.CreateProjectRequest true "Create project request"
// @Success 201 {object} models.APIResponse "Project created successfully"
// @Failure 400 {object} models.APIResponse "Bad Request - Invalid project data"
// @Failure 404 {object} models.APIResponse "Not Found - Member or organization does not exist"
// @Failure 500 {object} models.APIResponse "Internal Server Error - Project creation failed"
// @Router /projects/create [post]
func (h *ProjectController) CreateProject(c *gin.Context) {
	var req models.CreateProjectRequest
	if !bindRequest(c, h.validator, h.logger, &req) {
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, "Failed to create project", err)
		return
	}

	respondSuccess(c, http.StatusCreated, "Project created successfully", project)
}

// UpdateProject handles PUT /api/v1/projects/:id
// @Summary Update a project
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body models.UpdateProjectRequest true "Update project request"
// @Success 200 {object} models.APIResponse "Project updated successfully"
// @Failure 400 {object} models.APIResponse "Bad Request - Invalid project data"
// @Failure 404 {object} models.APIResponse "Not Found - Project, member or organization does not exist"
// @Failure 409 {object} models.APIResponse "Conflict - Project is inactive"
// @Failure 500 {object} models.APIResponse "Internal Server Error - Project update failed"
// @Router /projects/{id} [put]
func (h *ProjectController) UpdateProject(c *gin.Context) {
	var req models.UpdateProjectRequest
	if !bindRequest(c, h.validator, h.logger, &req) {
		return
	}

	project, err := h.projectService.UpdateProject(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, h.logger, "Failed to update project", err)
		return
	}

	respondSuccess(c, http.StatusOK, "Project updated successfully", project)
}

// DeactivateProject handles PUT /api/v1/projects/delete/:id
// @Summary Deactivate a project
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} models.APIResponse "Project deactivated successfully"
// @Failure 404 {object} models.APIResponse "Not Found - Project does not exist"
// @Failure 500 {object} models.APIResponse "Internal Server Error - Project deactivation failed"
// @Router /projects/delete/{id} [put]
func (h *ProjectController) DeactivateProject(c *gin.Context) {
	project, err := h.projectService.DeactivateProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "Failed to deactivate project", err)
		return
	}

	respondSuccess(c, http.StatusOK, "Project deactivated successfully", project)
}
