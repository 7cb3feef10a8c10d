package controller

import (
	"kodikas-backend/models"
	"kodikas-backend/services"
	"kodikas-backend/utils/logger"
	"kodikas-backend/utils/swagger"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/swag"

	_ "kodikas-backend/docs"
)

type Controller struct {
	config       *models.Config
	Organization *OrganizationController
	Member       *MemberController
	Project      *ProjectController
	Application  *ApplicationController
}

func NewController(cfg *models.Config, svc services.ServiceContainerInterface, log logger.Logger) *Controller {
	return &Controller{
		config:       cfg,
		Organization: NewOrganizationController(svc.GetOrganizationService(), log),
		Member:       NewMemberController(svc.GetMemberService(), log),
		Project:      NewProjectController(svc.GetProjectService(), log),
		Application:  NewApplicationController(svc.GetApplicationService(), log),
	}
}

// RegisterRoutes mounts the API under basePath plus the metrics and swagger endpoints
func (c *Controller) RegisterRoutes(r *gin.Engine, basePath string) {
	v1 := r.Group(basePath)

	v1.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": c.config.AppVersion,
			"service": c.config.AppName,
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	swaggerConfig := swagger.SwaggerConfig{
		Title:         c.config.AppName + " API",
		SwaggerDocURL: "/swagger/doc.json",
	}
	r.GET("/swagger", swagger.ServeSwaggerUI(swaggerConfig))
	r.GET("/swagger/", swagger.ServeSwaggerUI(swaggerConfig))
	r.GET("/swagger/index.html", swagger.ServeSwaggerUI(swaggerConfig))
	r.GET("/swagger/doc.json", swagger.ServeDoc(swag.Name))

	organizations := v1.Group("/organizations")
	organizations.GET("/list", c.Organization.GetOrganizations)
	organizations.GET("/:id", c.Organization.GetOrganization)
	organizations.POST("/create", c.Organization.CreateOrganization)
	organizations.PUT("/:id", c.Organization.UpdateOrganization)
	organizations.PUT("/delete/:id", c.Organization.DeactivateOrganization)

	members := v1.Group("/members")
	members.GET("/list", c.Member.GetMembers)
	members.GET("/:id", c.Member.GetMember)
	members.POST("/create", c.Member.CreateMember)
	members.PUT("/:id", c.Member.UpdateMember)
	members.PUT("/delete/:id", c.Member.DeactivateMember)

	projects := v1.Group("/projects")
	projects.GET("/list", c.Project.GetProjects)
	projects.GET("/:id", c.Project.GetProject)
	projects.POST("/create", c.Project.CreateProject)
	projects.PUT("/:id", c.Project.UpdateProject)
	projects.PUT("/delete/:id", c.Project.DeactivateProject)

	applications := v1.Group("/applications")
	applications.GET("/list", c.Application.GetApplications)
	applications.GET("/:id", c.Application.GetApplication)
	applications.POST("/create", c.Application.CreateApplication)
	applications.PUT("/:id", c.Application.UpdateApplication)
	applications.PUT("/delete/:id", c.Application.DeactivateApplication)
}
