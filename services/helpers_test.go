package services

import (
	"context"
	"kodikas-backend/models"
	"kodikas-backend/repository"
	"kodikas-backend/utils/logger"

	"github.com/stretchr/testify/mock"
)

// MockLogger implements the Logger interface for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(args ...interface{}) { m.Called(args...) }
func (m *MockLogger) Info(args ...interface{})  { m.Called(args...) }
func (m *MockLogger) Warn(args ...interface{})  { m.Called(args...) }
func (m *MockLogger) Error(args ...interface{}) { m.Called(args...) }
func (m *MockLogger) Fatal(args ...interface{}) { m.Called(args...) }

func (m *MockLogger) Debugf(format string, args ...interface{}) {
	m.Called(append([]interface{}{format}, args...)...)
}

func (m *MockLogger) Infof(format string, args ...interface{}) {
	m.Called(append([]interface{}{format}, args...)...)
}

func (m *MockLogger) Warnf(format string, args ...interface{}) {
	m.Called(append([]interface{}{format}, args...)...)
}

func (m *MockLogger) Errorf(format string, args ...interface{}) {
	m.Called(append([]interface{}{format}, args...)...)
}

func (m *MockLogger) Fatalf(format string, args ...interface{}) {
	m.Called(append([]interface{}{format}, args...)...)
}

func (m *MockLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return m
}

func newMockLogger() *MockLogger {
	l := &MockLogger{}
	for _, method := range []string{"Debug", "Info", "Warn", "Error", "Debugf", "Infof", "Warnf", "Errorf"} {
		l.On(method, mock.Anything).Maybe()
		l.On(method, mock.Anything, mock.Anything).Maybe()
		l.On(method, mock.Anything, mock.Anything, mock.Anything).Maybe()
		l.On(method, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Maybe()
	}
	return l
}

// fixture seeds records straight into a store, bypassing the services
type fixture struct {
	ctx   context.Context
	store repository.Store
}

func (f *fixture) organization(name string, active bool) *models.Organization {
	org := &models.Organization{Name: name, IsActive: active, CreatedAt: now(), UpdatedAt: now()}
	f.must(f.store.WithinTx(f.ctx, func(tx repository.Tx) error { return tx.SaveOrganization(f.ctx, org) }))
	return org
}

func (f *fixture) member(name, orgID string, active bool) *models.Member {
	m := &models.Member{Name: name, Email: name + "@example.com", PasswordHash: "hash", IsActive: active, OrganizationID: orgID, CreatedAt: now(), UpdatedAt: now()}
	f.must(f.store.WithinTx(f.ctx, func(tx repository.Tx) error { return tx.SaveMember(f.ctx, m) }))
	return m
}

func (f *fixture) project(name, memberID, orgID string, active bool) *models.Project {
	p := &models.Project{Name: name, Description: "about " + name, MemberID: memberID, OrganizationID: orgID, IsActive: active, CreatedAt: now(), UpdatedAt: now()}
	f.must(f.store.WithinTx(f.ctx, func(tx repository.Tx) error { return tx.SaveProject(f.ctx, p) }))
	return p
}

func (f *fixture) application(name, memberID string, active bool) *models.Application {
	a := &models.Application{Name: name, Status: models.ApplicationStatusPending, MemberID: memberID, IsActive: active, AppliedAt: now(), UpdatedAt: now()}
	f.must(f.store.WithinTx(f.ctx, func(tx repository.Tx) error { return tx.SaveApplication(f.ctx, a) }))
	return a
}

func (f *fixture) must(err error) {
	if err != nil {
		panic(err)
	}
}
