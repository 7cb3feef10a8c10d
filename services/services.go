package services

import (
	"kodikas-backend/models"
	"kodikas-backend/repository"
	"kodikas-backend/utils/logger"
)

// Service implements ServiceContainerInterface
type Service struct {
	organizationService OrganizationServiceInterface
	memberService       MemberServiceInterface
	projectService      ProjectServiceInterface
	applicationService  ApplicationServiceInterface
}

// NewService creates a new service container with all dependencies injected
func NewService(store repository.Store, logger logger.Logger, config *models.Config) ServiceContainerInterface {
	allowInactive := config.AllowInactiveReferences

	return &Service{
		organizationService: NewOrganizationService(store, NewAssociationReconciler(allowInactive), NewLifecycleGuard(), logger),
		memberService:       NewMemberService(store, allowInactive, logger),
		projectService:      NewProjectService(store, allowInactive, logger),
		applicationService:  NewApplicationService(store, allowInactive, logger),
	}
}

// GetOrganizationService returns the organization service interface
func (s *Service) GetOrganizationService() OrganizationServiceInterface {
	return s.organizationService
}

// GetMemberService returns the member service interface
func (s *Service) GetMemberService() MemberServiceInterface {
	return s.memberService
}

// GetProjectService returns the project service interface
func (s *Service) GetProjectService() ProjectServiceInterface {
	return s.projectService
}

// GetApplicationService returns the application service interface
func (s *Service) GetApplicationService() ApplicationServiceInterface {
	return s.applicationService
}
