package services

import "kodikas-backend/models"

// LifecycleGuard decides whether an organization may be deactivated
type LifecycleGuard struct{}

func NewLifecycleGuard() *LifecycleGuard {
	return &LifecycleGuard{}
}

// Deactivate marks org inactive when it is active and has no linked members
// or projects
func (g *LifecycleGuard) Deactivate(org *models.Organization) (*models.Organization, error) {
	if err := g.Check(org); err != nil {
		guardRejections.WithLabelValues(rejectionReason(err)).Inc()
		return nil, err
	}
	org.IsActive = false
	return org, nil
}

// Check reports why org cannot be deactivated, or nil if it can
func (g *LifecycleGuard) Check(org *models.Organization) error {
	switch {
	case !org.IsActive:
		return &models.AlreadyInactiveError{Entity: models.EntityOrganization, ID: org.ID}
	case len(org.MemberIDs) > 0:
		return &models.HasActiveMembersError{OrganizationID: org.ID}
	case len(org.ProjectIDs) > 0:
		return &models.HasActiveProjectsError{OrganizationID: org.ID}
	}
	return nil
}
