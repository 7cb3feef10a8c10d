package services

import (
	"context"
	"kodikas-backend/models"
)

// OrganizationServiceInterface defines the contract for organization service
type OrganizationServiceInterface interface {
	GetOrganizations(ctx context.Context) ([]*models.Organization, error)
	GetOrganizationByID(ctx context.Context, id string) (*models.Organization, error)
	CreateOrganization(ctx context.Context, req *models.CreateOrganizationRequest) (*models.Organization, error)
	UpdateOrganization(ctx context.Context, id string, req *models.UpdateOrganizationRequest) (*models.Organization, error)
	DeactivateOrganization(ctx context.Context, id string) (*models.Organization, error)
}

// MemberServiceInterface defines the contract for member service
type MemberServiceInterface interface {
	GetMembers(ctx context.Context) ([]*models.Member, error)
	GetMemberByID(ctx context.Context, id string) (*models.Member, error)
	CreateMember(ctx context.Context, req *models.CreateMemberRequest) (*models.Member, error)
	UpdateMember(ctx context.Context, id string, req *models.UpdateMemberRequest) (*models.Member, error)
	DeactivateMember(ctx context.Context, id string) (*models.Member, error)
}

// ProjectServiceInterface defines the contract for project service
type ProjectServiceInterface interface {
	GetProjects(ctx context.Context) ([]*models.ProjectDetails, error)
	GetProjectByID(ctx context.Context, id string) (*models.ProjectDetails, error)
	CreateProject(ctx context.Context, req *models.CreateProjectRequest) (*models.ProjectDetails, error)
	UpdateProject(ctx context.Context, id string, req *models.UpdateProjectRequest) (*models.ProjectDetails, error)
	DeactivateProject(ctx context.Context, id string) (*models.ProjectDetails, error)
}

// ApplicationServiceInterface defines the contract for application service
type ApplicationServiceInterface interface {
	GetApplications(ctx context.Context) ([]*models.ApplicationDetails, error)
	GetApplicationByID(ctx context.Context, id string) (*models.ApplicationDetails, error)
	CreateApplication(ctx context.Context, req *models.CreateApplicationRequest) (*models.ApplicationDetails, error)
	UpdateApplication(ctx context.Context, id string, req *models.UpdateApplicationRequest) (*models.ApplicationDetails, error)
	DeactivateApplication(ctx context.Context, id string) (*models.ApplicationDetails, error)
}

// ServiceContainerInterface defines the main service container contract
type ServiceContainerInterface interface {
	GetOrganizationService() OrganizationServiceInterface
	GetMemberService() MemberServiceInterface
	GetProjectService() ProjectServiceInterface
	GetApplicationService() ApplicationServiceInterface
}
