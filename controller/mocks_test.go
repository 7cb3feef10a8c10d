package controller

import (
	"context"
	"kodikas-backend/models"
	"kodikas-backend/services"
	"kodikas-backend/utils/logger"

	"github.com/stretchr/testify/mock"
)

// MockOrganizationService implements OrganizationServiceInterface for testing
type MockOrganizationService struct {
	mock.Mock
}

func (m *MockOrganizationService) GetOrganizations(ctx context.Context) ([]*models.Organization, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Organization), args.Error(1)
}

func (m *MockOrganizationService) GetOrganizationByID(ctx context.Context, id string) (*models.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Organization), args.Error(1)
}

func (m *MockOrganizationService) CreateOrganization(ctx context.Context, req *models.CreateOrganizationRequest) (*models.Organization, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Organization), args.Error(1)
}

func (m *MockOrganizationService) UpdateOrganization(ctx context.Context, id string, req *models.UpdateOrganizationRequest) (*models.Organization, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Organization), args.Error(1)
}

func (m *MockOrganizationService) DeactivateOrganization(ctx context.Context, id string) (*models.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Organization), args.Error(1)
}

// MockMemberService implements MemberServiceInterface for testing
type MockMemberService struct {
	mock.Mock
}

func (m *MockMemberService) GetMembers(ctx context.Context) ([]*models.Member, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Member), args.Error(1)
}

func (m *MockMemberService) GetMemberByID(ctx context.Context, id string) (*models.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Member), args.Error(1)
}

func (m *MockMemberService) CreateMember(ctx context.Context, req *models.CreateMemberRequest) (*models.Member, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Member), args.Error(1)
}

func (m *MockMemberService) UpdateMember(ctx context.Context, id string, req *models.UpdateMemberRequest) (*models.Member, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Member), args.Error(1)
}

func (m *MockMemberService) DeactivateMember(ctx context.Context, id string) (*models.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Member), args.Error(1)
}

// MockProjectService implements ProjectServiceInterface for testing
type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) GetProjects(ctx context.Context) ([]*models.ProjectDetails, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ProjectDetails), args.Error(1)
}

func (m *MockProjectService) GetProjectByID(ctx context.Context, id string) (*models.ProjectDetails, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProjectDetails), args.Error(1)
}

func (m *MockProjectService) CreateProject(ctx context.Context, req *models.CreateProjectRequest) (*models.ProjectDetails, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProjectDetails), args.Error(1)
}

func (m *MockProjectService) UpdateProject(ctx context.Context, id string, req *models.UpdateProjectRequest) (*models.ProjectDetails, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProjectDetails), args.Error(1)
}

func (m *MockProjectService) DeactivateProject(ctx context.Context, id string) (*models.ProjectDetails, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProjectDetails), args.Error(1)
}

// MockApplicationService implements ApplicationServiceInterface for testing
type MockApplicationService struct {
	mock.Mock
}

func (m *MockApplicationService) GetApplications(ctx context.Context) ([]*models.ApplicationDetails, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ApplicationDetails), args.Error(1)
}

func (m *MockApplicationService) GetApplicationByID(ctx context.Context, id string) (*models.ApplicationDetails, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ApplicationDetails), args.Error(1)
}

func (m *MockApplicationService) CreateApplication(ctx context.Context, req *models.CreateApplicationRequest) (*models.ApplicationDetails, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ApplicationDetails), args.Error(1)
}

func (m *MockApplicationService) UpdateApplication(ctx context.Context, id string, req *models.UpdateApplicationRequest) (*models.ApplicationDetails, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ApplicationDetails), args.Error(1)
}

func (m *MockApplicationService) DeactivateApplication(ctx context.Context, id string) (*models.ApplicationDetails, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ApplicationDetails), args.Error(1)
}

// mockContainer serves the mocked services through ServiceContainerInterface
type mockContainer struct {
	organizations *MockOrganizationService
	members       *MockMemberService
	projects      *MockProjectService
	applications  *MockApplicationService
}

func newMockContainer() *mockContainer {
	return &mockContainer{
		organizations: &MockOrganizationService{},
		members:       &MockMemberService{},
		projects:      &MockProjectService{},
		applications:  &MockApplicationService{},
	}
}

func (m *mockContainer) GetOrganizationService() services.OrganizationServiceInterface {
	return m.organizations
}

func (m *mockContainer) GetMemberService() services.MemberServiceInterface {
	return m.members
}

func (m *mockContainer) GetProjectService() services.ProjectServiceInterface {
	return m.projects
}

func (m *mockContainer) GetApplicationService() services.ApplicationServiceInterface {
	return m.applications
}

// MockControllerLogger implements logger.Logger for testing
type MockControllerLogger struct {
	mock.Mock
}

func (m *MockControllerLogger) Debug(args ...interface{}) {
	m.Called(args...)
}

func (m *MockControllerLogger) Info(args ...interface{}) {
	m.Called(args...)
}

func (m *MockControllerLogger) Warn(args ...interface{}) {
	m.Called(args...)
}

func (m *MockControllerLogger) Error(args ...interface{}) {
	m.Called(args...)
}

func (m *MockControllerLogger) Debugf(format string, args ...interface{}) {
	m.Called(append([]interface{}{format}, args...)...)
}

func (m *MockControllerLogger) Infof(format string, args ...interface{}) {
	m.Called(append([]interface{}{format}, args...)...)
}

func (m *MockControllerLogger) Warnf(format string, args ...interface{}) {
	m.Called(append([]interface{}{format}, args...)...)
}

func (m *MockControllerLogger) Errorf(format string, args ...interface{}) {
	m.Called(append([]interface{}{format}, args...)...)
}

func (m *MockControllerLogger) Fatal(args ...interface{}) {
	m.Called(args...)
}

func (m *MockControllerLogger) Fatalf(format string, args ...interface{}) {
	m.Called(append([]interface{}{format}, args...)...)
}

func (m *MockControllerLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return m
}

func newMockControllerLogger() *MockControllerLogger {
	l := &MockControllerLogger{}
	for _, method := range []string{"Debug", "Info", "Warn", "Error"} {
		l.On(method, mock.Anything).Maybe()
		l.On(method, mock.Anything, mock.Anything).Maybe()
	}
	for _, method := range []string{"Debugf", "Infof", "Warnf", "Errorf"} {
		l.On(method, mock.Anything).Maybe()
		l.On(method, mock.Anything, mock.Anything).Maybe()
		l.On(method, mock.Anything, mock.Anything, mock.Anything).Maybe()
	}
	return l
}
