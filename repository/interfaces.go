package repository

import (
	"context"
	"errors"
	"kodikas-backend/models"
)

var (
	// ErrRecordNotFound is returned by Find lookups for unknown ids
	ErrRecordNotFound = errors.New("record not found")
	// ErrConflict is returned when a commit-time precondition no longer holds
	ErrConflict = errors.New("transaction conflict")
)

// Reader is the read side of the entity store. Lists are returned in
// insertion order. Organization and member lookups fill in the derived
// link collections.
type Reader interface {
	FindOrganization(ctx context.Context, id string) (*models.Organization, error)
	FindOrganizationByName(ctx context.Context, name string) (*models.Organization, error)
	ListActiveOrganizations(ctx context.Context) ([]*models.Organization, error)

	FindMember(ctx context.Context, id string) (*models.Member, error)
	FindMemberByName(ctx context.Context, name string) (*models.Member, error)
	FindMemberByEmail(ctx context.Context, email string) (*models.Member, error)
	ListActiveMembers(ctx context.Context) ([]*models.Member, error)
	MembersByOrganization(ctx context.Context, organizationID string) ([]*models.Member, error)

	FindProject(ctx context.Context, id string) (*models.Project, error)
	ListActiveProjects(ctx context.Context) ([]*models.Project, error)
	ProjectsByOrganization(ctx context.Context, organizationID string) ([]*models.Project, error)
	ProjectsByMember(ctx context.Context, memberID string) ([]*models.Project, error)

	FindApplication(ctx context.Context, id string) (*models.Application, error)
	ListActiveApplications(ctx context.Context) ([]*models.Application, error)
	ApplicationsByMember(ctx context.Context, memberID string) ([]*models.Application, error)
}

// Tx is a unit of work. Save methods upsert and assign an id on first save.
type Tx interface {
	Reader

	SaveOrganization(ctx context.Context, organization *models.Organization) error
	SaveMember(ctx context.Context, member *models.Member) error
	SaveProject(ctx context.Context, project *models.Project) error
	SaveApplication(ctx context.Context, application *models.Application) error

	// DeactivateOrganization persists an inactive organization. The write
	// fails with ErrConflict unless the stored record is active and has no
	// linked members or projects at commit time.
	DeactivateOrganization(ctx context.Context, organization *models.Organization) error
}

// Store is the entity store with a transaction boundary
type Store interface {
	Reader
	// WithinTx runs fn in a transaction. Writes are committed only if fn
	// returns nil.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}
