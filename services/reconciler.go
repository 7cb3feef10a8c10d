package services

import (
	"context"
	"kodikas-backend/models"
	"kodikas-backend/repository"
)

// Reconciliation is the outcome of linking ids to an organization. Members
// and Projects hold only the records whose organization changed; the caller
// saves them together with Organization.
type Reconciliation struct {
	Organization *models.Organization
	Members      []*models.Member
	Projects     []*models.Project
}

// AssociationReconciler adds missing organization links as a union with the
// links that already exist. It never removes a link.
type AssociationReconciler struct {
	refs *resolver
}

// NewAssociationReconciler creates a reconciler. Inactive members and
// projects can be linked only when allowInactive is set.
func NewAssociationReconciler(allowInactive bool) *AssociationReconciler {
	return &AssociationReconciler{refs: newResolver(allowInactive)}
}

// Reconcile links every id in memberIDs and projectIDs that is not linked yet.
// Nothing is persisted.
func (r *AssociationReconciler) Reconcile(ctx context.Context, reader repository.Reader, org *models.Organization, memberIDs, projectIDs []string) (*Reconciliation, error) {
	result := &Reconciliation{Organization: org}

	for _, id := range memberIDs {
		if org.HasMember(id) {
			continue
		}
		member, err := r.refs.member(ctx, reader, "memberIds", id)
		if err != nil {
			return nil, err
		}
		member.OrganizationID = org.ID
		org.MemberIDs = append(org.MemberIDs, id)
		result.Members = append(result.Members, member)
	}

	for _, id := range projectIDs {
		if org.HasProject(id) {
			continue
		}
		project, err := r.refs.project(ctx, reader, "projectIds", id)
		if err != nil {
			return nil, err
		}
		project.OrganizationID = org.ID
		org.ProjectIDs = append(org.ProjectIDs, id)
		result.Projects = append(result.Projects, project)
	}

	return result, nil
}
