package controller

import (
	"kodikas-backend/models"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// ProjectControllerTestSuite contains the test suite for ProjectController and ApplicationController
type ProjectControllerTestSuite struct {
	suite.Suite
	services *mockContainer
	router   *gin.Engine
}

func (suite *ProjectControllerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.services = newMockContainer()
	suite.router = gin.New()
	NewController(&models.Config{}, suite.services, newMockControllerLogger()).RegisterRoutes(suite.router, "/api/v1")
}

func TestProjectControllerTestSuite(t *testing.T) {
	suite.Run(t, new(ProjectControllerTestSuite))
}

func (suite *ProjectControllerTestSuite) TestCreateProjectReturnsOwnerNames() {
	details := &models.ProjectDetails{
		Project:          models.Project{ID: "p-1", Name: "Apollo", MemberID: "m-1", OrganizationID: "org-1", IsActive: true},
		MemberName:       "Ana",
		OrganizationName: "Acme",
	}
	suite.services.projects.On("CreateProject", mock.Anything, mock.MatchedBy(func(req *models.CreateProjectRequest) bool {
		return req.MemberID == "m-1" && req.OrganizationID == "org-1"
	})).Return(details, nil)

	w, resp := performRequest(suite.router, http.MethodPost, "/api/v1/projects/create",
		`{"name":"Apollo","memberId":"m-1","organizationId":"org-1"}`)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(suite.T(), "Ana", data["memberName"])
	assert.Equal(suite.T(), "Acme", data["organizationName"])
}

func (suite *ProjectControllerTestSuite) TestCreateProjectRequiresMember() {
	w, resp := performRequest(suite.router, http.MethodPost, "/api/v1/projects/create", `{"name":"Apollo"}`)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "memberId", resp.Error.Field)
}

func (suite *ProjectControllerTestSuite) TestUpdateInactiveProject() {
	suite.services.projects.On("UpdateProject", mock.Anything, "p-1", mock.Anything).
		Return(nil, &models.InactiveTargetUpdateError{Entity: models.EntityProject, ID: "p-1"})

	w, resp := performRequest(suite.router, http.MethodPut, "/api/v1/projects/p-1", `{"name":"Apollo 2"}`)

	assert.Equal(suite.T(), http.StatusConflict, w.Code)
	assert.Equal(suite.T(), "InactiveTargetUpdate", resp.Error.Type)
}

func (suite *ProjectControllerTestSuite) TestListProjects() {
	suite.services.projects.On("GetProjects", mock.Anything).Return([]*models.ProjectDetails{}, nil)

	w, resp := performRequest(suite.router, http.MethodGet, "/api/v1/projects/list", "")

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), []interface{}{}, resp.Data)
}

func (suite *ProjectControllerTestSuite) TestCreateApplicationStatusValidation() {
	w, resp := performRequest(suite.router, http.MethodPost, "/api/v1/applications/create",
		`{"name":"Backend role","memberId":"m-1","status":"hired"}`)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Contains(suite.T(), resp.Error.Details, "status must be one of")
	suite.services.applications.AssertNotCalled(suite.T(), "CreateApplication", mock.Anything, mock.Anything)
}

func (suite *ProjectControllerTestSuite) TestUpdateApplicationStatus() {
	suite.services.applications.On("UpdateApplication", mock.Anything, "a-1", mock.MatchedBy(func(req *models.UpdateApplicationRequest) bool {
		return req.Status.Set && req.Status.Value == models.ApplicationStatusApproved
	})).Return(&models.ApplicationDetails{Application: models.Application{ID: "a-1", Status: models.ApplicationStatusApproved}}, nil)

	w, resp := performRequest(suite.router, http.MethodPut, "/api/v1/applications/a-1", `{"status":"approved"}`)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "approved", resp.Data.(map[string]interface{})["status"])

	w, _ = performRequest(suite.router, http.MethodPut, "/api/v1/applications/a-1", `{"status":"hired"}`)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *ProjectControllerTestSuite) TestApplicationNotFound() {
	suite.services.applications.On("GetApplicationByID", mock.Anything, "a-x").
		Return(nil, &models.NotFoundError{Entity: models.EntityApplication, ID: "a-x"})
	suite.services.applications.On("DeactivateApplication", mock.Anything, "a-x").
		Return(nil, &models.NotFoundError{Entity: models.EntityApplication, ID: "a-x"})

	w, _ := performRequest(suite.router, http.MethodGet, "/api/v1/applications/a-x", "")
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	w, _ = performRequest(suite.router, http.MethodPut, "/api/v1/applications/delete/a-x", "")
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *ProjectControllerTestSuite) TestServiceValidationErrorIsBadRequest() {
	suite.services.projects.On("UpdateProject", mock.Anything, "p-1", mock.Anything).
		Return(nil, &models.ValidationError{Field: "organizationId", Message: "must not be blank"})

	w, resp := performRequest(suite.router, http.MethodPut, "/api/v1/projects/p-1", `{"name":"Apollo 2"}`)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "ValidationError", resp.Error.Type)
	assert.Equal(suite.T(), "organizationId", resp.Error.Field)
}
