package models

import "time"

// Project is owned by exactly one member and optionally by one organization
type Project struct {
	ID             string    `json:"id" dynamodbav:"id"`
	Name           string    `json:"name" dynamodbav:"name"`
	Description    string    `json:"description" dynamodbav:"description"`
	IsActive       bool      `json:"isActive" dynamodbav:"isActive"`
	CreatedAt      time.Time `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" dynamodbav:"updatedAt"`
	MemberID       string    `json:"memberId" dynamodbav:"memberId"`
	OrganizationID string    `json:"organizationId,omitempty" dynamodbav:"organizationId,omitempty"`
}

// ProjectDetails is the read view of a project with its owners' names
type ProjectDetails struct {
	Project
	MemberName       string `json:"memberName"`
	OrganizationName string `json:"organizationName,omitempty"`
}

type CreateProjectRequest struct {
	Name           string `json:"name" validate:"required,notblank,max=100"`
	Description    string `json:"description" validate:"omitempty,max=500"`
	MemberID       string `json:"memberId" validate:"required"`
	OrganizationID string `json:"organizationId" validate:"omitempty"`
}

type UpdateProjectRequest struct {
	Name           Optional[string] `json:"name" validate:"omitempty,notblank,max=100"`
	Description    Optional[string] `json:"description" validate:"omitempty,max=500"`
	MemberID       Optional[string] `json:"memberId" validate:"omitempty,notblank"`
	OrganizationID Optional[string] `json:"organizationId" validate:"omitempty,notblank"`
}
