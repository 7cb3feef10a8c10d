package services

import (
	"context"
	"errors"
	"fmt"
	"kodikas-backend/models"
	"kodikas-backend/repository"
	"strings"
	"time"
)

// resolver looks up records referenced by id from request payloads
type resolver struct {
	allowInactive bool
}

func newResolver(allowInactive bool) *resolver {
	return &resolver{allowInactive: allowInactive}
}

func (r *resolver) usable(active bool) bool {
	return active || r.allowInactive
}

func (r *resolver) member(ctx context.Context, reader repository.Reader, field, id string) (*models.Member, error) {
	member, err := reader.FindMember(ctx, id)
	if err != nil {
		return nil, invalidReference(err, field, models.EntityMember, id)
	}
	if !r.usable(member.IsActive) {
		return nil, &models.InvalidReferenceError{Field: field, ID: id, Entity: models.EntityMember}
	}
	return member, nil
}

func (r *resolver) organization(ctx context.Context, reader repository.Reader, field, id string) (*models.Organization, error) {
	org, err := reader.FindOrganization(ctx, id)
	if err != nil {
		return nil, invalidReference(err, field, models.EntityOrganization, id)
	}
	if !r.usable(org.IsActive) {
		return nil, &models.InvalidReferenceError{Field: field, ID: id, Entity: models.EntityOrganization}
	}
	return org, nil
}

func (r *resolver) project(ctx context.Context, reader repository.Reader, field, id string) (*models.Project, error) {
	project, err := reader.FindProject(ctx, id)
	if err != nil {
		return nil, invalidReference(err, field, models.EntityProject, id)
	}
	if !r.usable(project.IsActive) {
		return nil, &models.InvalidReferenceError{Field: field, ID: id, Entity: models.EntityProject}
	}
	return project, nil
}

// requireReference rejects a reference id that is supplied but blank.
// Links are only ever re-pointed, never cleared.
func requireReference(field string, id models.Optional[string]) error {
	if v, ok := id.Get(); ok && strings.TrimSpace(v) == "" {
		return &models.ValidationError{Field: field, Message: "must not be blank"}
	}
	return nil
}

func invalidStatus(status models.ApplicationStatus) error {
	return &models.ValidationError{Field: "status", Message: fmt.Sprintf("unknown application status %q", status)}
}

func invalidReference(err error, field string, entity models.EntityType, id string) error {
	if errors.Is(err, repository.ErrRecordNotFound) {
		return &models.InvalidReferenceError{Field: field, ID: id, Entity: entity}
	}
	return err
}

// notFound converts a store miss into the typed error for entity
func notFound(err error, entity models.EntityType, id string) error {
	if errors.Is(err, repository.ErrRecordNotFound) {
		return &models.NotFoundError{Entity: entity, ID: id}
	}
	return err
}

func now() time.Time {
	return time.Now().UTC()
}
