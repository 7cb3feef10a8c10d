package models

import "time"

// ApplicationStatus is the review state of an application
type ApplicationStatus string

const (
	ApplicationStatusPending    ApplicationStatus = "pending"
	ApplicationStatusApproved   ApplicationStatus = "approved"
	ApplicationStatusRejected   ApplicationStatus = "rejected"
	ApplicationStatusCancelled  ApplicationStatus = "cancelled"
	ApplicationStatusInProgress ApplicationStatus = "in_progress"
)

// Valid reports whether s is one of the known statuses
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusApproved, ApplicationStatusRejected,
		ApplicationStatusCancelled, ApplicationStatusInProgress:
		return true
	}
	return false
}

// Application links a member to a role they applied for
type Application struct {
	ID          string            `json:"id" dynamodbav:"id"`
	Name        string            `json:"name" dynamodbav:"name"`
	Description string            `json:"description" dynamodbav:"description"`
	Status      ApplicationStatus `json:"status" dynamodbav:"status"`
	AppliedAt   time.Time         `json:"appliedAt" dynamodbav:"appliedAt"`
	UpdatedAt   time.Time         `json:"updatedAt" dynamodbav:"updatedAt"`
	IsActive    bool              `json:"isActive" dynamodbav:"isActive"`
	MemberID    string            `json:"memberId" dynamodbav:"memberId"`
	ProjectID   string            `json:"projectId,omitempty" dynamodbav:"projectId,omitempty"`
}

// ApplicationDetails is the read view of an application with its owner's name
type ApplicationDetails struct {
	Application
	MemberName  string `json:"memberName"`
	ProjectName string `json:"projectName,omitempty"`
}

type CreateApplicationRequest struct {
	Name        string            `json:"name" validate:"required,notblank,max=100"`
	Description string            `json:"description" validate:"omitempty,max=500"`
	Status      ApplicationStatus `json:"status" validate:"omitempty,oneof=pending approved rejected cancelled in_progress"`
	MemberID    string            `json:"memberId" validate:"required"`
	ProjectID   string            `json:"projectId" validate:"omitempty"`
}

type UpdateApplicationRequest struct {
	Name        Optional[string]            `json:"name" validate:"omitempty,notblank,max=100"`
	Description Optional[string]            `json:"description" validate:"omitempty,max=500"`
	Status      Optional[ApplicationStatus] `json:"status" validate:"omitempty,oneof=pending approved rejected cancelled in_progress"`
	MemberID    Optional[string]            `json:"memberId" validate:"omitempty,notblank"`
	ProjectID   Optional[string]            `json:"projectId" validate:"omitempty,notblank"`
}
