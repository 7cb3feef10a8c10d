package controller

import (
	"fmt"
	"io"
	"kodikas-backend/models"
	"kodikas-backend/repository"
	"kodikas-backend/services"
	"kodikas-backend/utils/logger"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ControllerTestSuite runs requests through the real services over the memory store
type ControllerTestSuite struct {
	suite.Suite
	config *models.Config
	router *gin.Engine
}

func (suite *ControllerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.config = &models.Config{
		AppName:    "kodikas-backend",
		AppVersion: "1.0.0",
		BasePath:   "/api/v1",
	}
	log := logger.NewLoggerWithOutput("error", "json", io.Discard)
	svc := services.NewService(repository.NewMemoryStore(), log, suite.config)

	suite.router = gin.New()
	NewController(suite.config, svc, log).RegisterRoutes(suite.router, suite.config.BasePath)
}

func TestControllerTestSuite(t *testing.T) {
	suite.Run(t, new(ControllerTestSuite))
}

func (suite *ControllerTestSuite) create(path, body string) string {
	w, resp := performRequest(suite.router, http.MethodPost, path, body)
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())
	return resp.Data.(map[string]interface{})["id"].(string)
}

func (suite *ControllerTestSuite) TestHealth() {
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Contains(suite.T(), w.Body.String(), `"status":"healthy"`)
	assert.Contains(suite.T(), w.Body.String(), `"service":"kodikas-backend"`)
}

func (suite *ControllerTestSuite) TestMetricsAndSwagger() {
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	suite.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Contains(suite.T(), w.Body.String(), "/organizations/delete/{id}")

	w = httptest.NewRecorder()
	suite.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Contains(suite.T(), w.Body.String(), "kodikas-backend API")
}

func (suite *ControllerTestSuite) TestOrganizationLifecycle() {
	orgID := suite.create("/api/v1/organizations/create", `{"name":"Acme"}`)
	memberID := suite.create("/api/v1/members/create",
		fmt.Sprintf(`{"name":"Ana","email":"ana@example.com","password":"secret1","organizationId":%q}`, orgID))

	w, resp := performRequest(suite.router, http.MethodGet, "/api/v1/organizations/"+orgID, "")
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), []interface{}{memberID}, resp.Data.(map[string]interface{})["memberIds"])

	w, resp = performRequest(suite.router, http.MethodPut, "/api/v1/organizations/delete/"+orgID, "")
	assert.Equal(suite.T(), http.StatusConflict, w.Code)
	assert.Equal(suite.T(), "HasActiveMembers", resp.Error.Type)

	w, _ = performRequest(suite.router, http.MethodGet, "/api/v1/organizations/"+orgID, "")
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func (suite *ControllerTestSuite) TestDeactivateEmptyOrganizationTwice() {
	orgID := suite.create("/api/v1/organizations/create", `{"name":"Empty"}`)

	w, _ := performRequest(suite.router, http.MethodPut, "/api/v1/organizations/delete/"+orgID, "")
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	w, resp := performRequest(suite.router, http.MethodPut, "/api/v1/organizations/delete/"+orgID, "")
	assert.Equal(suite.T(), http.StatusConflict, w.Code)
	assert.Equal(suite.T(), "AlreadyInactive", resp.Error.Type)

	w, _ = performRequest(suite.router, http.MethodGet, "/api/v1/organizations/"+orgID, "")
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *ControllerTestSuite) TestUpdateWithUnknownMemberPersistsNothing() {
	orgID := suite.create("/api/v1/organizations/create", `{"name":"Acme"}`)

	w, resp := performRequest(suite.router, http.MethodPut, "/api/v1/organizations/"+orgID,
		`{"description":"changed","memberIds":["ghost"]}`)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
	assert.Equal(suite.T(), "InvalidReference", resp.Error.Type)

	_, resp = performRequest(suite.router, http.MethodGet, "/api/v1/organizations/"+orgID, "")
	assert.Equal(suite.T(), "", resp.Data.(map[string]interface{})["description"])
}

func (suite *ControllerTestSuite) TestProjectAndApplicationFlow() {
	memberID := suite.create("/api/v1/members/create", `{"name":"Ana","email":"ana@example.com","password":"secret1"}`)
	projectID := suite.create("/api/v1/projects/create", fmt.Sprintf(`{"name":"Apollo","memberId":%q}`, memberID))
	appID := suite.create("/api/v1/applications/create",
		fmt.Sprintf(`{"name":"Backend role","memberId":%q,"projectId":%q}`, memberID, projectID))

	w, resp := performRequest(suite.router, http.MethodGet, "/api/v1/applications/"+appID, "")
	require.Equal(suite.T(), http.StatusOK, w.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(suite.T(), "pending", data["status"])
	assert.Equal(suite.T(), "Ana", data["memberName"])
	assert.Equal(suite.T(), "Apollo", data["projectName"])

	w, resp = performRequest(suite.router, http.MethodGet, "/api/v1/members/"+memberID, "")
	require.Equal(suite.T(), http.StatusOK, w.Code)
	member := resp.Data.(map[string]interface{})
	assert.Equal(suite.T(), []interface{}{projectID}, member["projectIds"])
	assert.Equal(suite.T(), []interface{}{appID}, member["applicationIds"])
}
