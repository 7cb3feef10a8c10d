package models

import "time"

// Organization represents a company that members and projects can be linked to.
// MemberIDs and ProjectIDs are derived from the member and project collections
// and are never persisted on the organization record itself.
type Organization struct {
	ID           string    `json:"id" dynamodbav:"id"`
	Name         string    `json:"name" dynamodbav:"name"`
	Description  string    `json:"description" dynamodbav:"description"`
	CreatedAt    time.Time `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" dynamodbav:"updatedAt"`
	IsActive     bool      `json:"isActive" dynamodbav:"isActive"`
	MemberIDs    []string  `json:"memberIds" dynamodbav:"-"`
	ProjectIDs   []string  `json:"projectIds" dynamodbav:"-"`
	MemberCount  int       `json:"-" dynamodbav:"memberCount"`
	ProjectCount int       `json:"-" dynamodbav:"projectCount"`
}

// HasMember reports whether the member id is already linked
func (o *Organization) HasMember(id string) bool {
	return containsID(o.MemberIDs, id)
}

// HasProject reports whether the project id is already linked
func (o *Organization) HasProject(id string) bool {
	return containsID(o.ProjectIDs, id)
}

type CreateOrganizationRequest struct {
	Name        string `json:"name" validate:"required,notblank,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

// UpdateOrganizationRequest carries a partial update. MemberIDs and ProjectIDs
// are reconciled as a union with the links that already exist.
type UpdateOrganizationRequest struct {
	Name        Optional[string] `json:"name" validate:"omitempty,notblank,max=100"`
	Description Optional[string] `json:"description" validate:"omitempty,max=500"`
	MemberIDs   []string         `json:"memberIds" validate:"omitempty,dive,required"`
	ProjectIDs  []string         `json:"projectIds" validate:"omitempty,dive,required"`
}

func containsID(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}
