package models

import "time"

// Member represents a user that may belong to one organization
type Member struct {
	ID             string    `json:"id" dynamodbav:"id"`
	Name           string    `json:"name" dynamodbav:"name"`
	Email          string    `json:"email" dynamodbav:"email"`
	PasswordHash   string    `json:"-" dynamodbav:"passwordHash"`
	CreatedAt      time.Time `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" dynamodbav:"updatedAt"`
	IsActive       bool      `json:"isActive" dynamodbav:"isActive"`
	OrganizationID string    `json:"organizationId,omitempty" dynamodbav:"organizationId,omitempty"`
	ProjectIDs     []string  `json:"projectIds" dynamodbav:"-"`
	ApplicationIDs []string  `json:"applicationIds" dynamodbav:"-"`
}

type CreateMemberRequest struct {
	Name           string `json:"name" validate:"required,notblank,max=100"`
	Email          string `json:"email" validate:"required,email,max=255"`
	Password       string `json:"password" validate:"required,min=6,max=72"`
	OrganizationID string `json:"organizationId" validate:"omitempty"`
}

type UpdateMemberRequest struct {
	Name           Optional[string] `json:"name" validate:"omitempty,notblank,max=100"`
	Email          Optional[string] `json:"email" validate:"omitempty,email,max=255"`
	Password       Optional[string] `json:"password" validate:"omitempty,min=6,max=72"`
	OrganizationID Optional[string] `json:"organizationId" validate:"omitempty,notblank"`
}
