package models

import (
	"errors"
	"fmt"
)

// EntityType names the kind of record an error refers to
type EntityType string

const (
	EntityOrganization EntityType = "organization"
	EntityMember       EntityType = "member"
	EntityProject      EntityType = "project"
	EntityApplication  EntityType = "application"
)

// NotFoundError is returned when a record does not exist or is hidden
type NotFoundError struct {
	Entity EntityType
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// AlreadyInactiveError is returned when deactivating an inactive organization
type AlreadyInactiveError struct {
	Entity EntityType
	ID     string
}

func (e *AlreadyInactiveError) Error() string {
	return fmt.Sprintf("%s is already inactive: %s", e.Entity, e.ID)
}

// HasActiveMembersError blocks deactivation of an organization with linked members
type HasActiveMembersError struct {
	OrganizationID string
}

func (e *HasActiveMembersError) Error() string {
	return fmt.Sprintf("organization %s still has linked members", e.OrganizationID)
}

// HasActiveProjectsError blocks deactivation of an organization with linked projects
type HasActiveProjectsError struct {
	OrganizationID string
}

func (e *HasActiveProjectsError) Error() string {
	return fmt.Sprintf("organization %s still has linked projects", e.OrganizationID)
}

// InvalidReferenceError is returned when a supplied foreign id does not resolve.
// It unwraps to the NotFoundError of the referenced entity.
type InvalidReferenceError struct {
	Field  string
	ID     string
	Entity EntityType
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("invalid reference %s: %s %s does not exist", e.Field, e.Entity, e.ID)
}

func (e *InvalidReferenceError) Unwrap() error {
	return &NotFoundError{Entity: e.Entity, ID: e.ID}
}

// ValidationError is returned when a request value is rejected by a service
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// InactiveTargetUpdateError is returned when updating a soft-deleted record
type InactiveTargetUpdateError struct {
	Entity EntityType
	ID     string
}

func (e *InactiveTargetUpdateError) Error() string {
	return fmt.Sprintf("cannot update inactive %s: %s", e.Entity, e.ID)
}

// DuplicateError is returned when a unique field is already taken
type DuplicateError struct {
	Entity EntityType
	Field  string
	Value  string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s with %s %q already exists", e.Entity, e.Field, e.Value)
}

// IsNotFound reports whether err is, or wraps, a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
