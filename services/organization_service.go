package services

import (
	"context"
	"errors"
	"fmt"
	"kodikas-backend/models"
	"kodikas-backend/repository"
	"kodikas-backend/utils/logger"
)

type OrganizationService struct {
	store      repository.Store
	reconciler *AssociationReconciler
	guard      *LifecycleGuard
	logger     logger.Logger
}

func NewOrganizationService(store repository.Store, reconciler *AssociationReconciler, guard *LifecycleGuard, logger logger.Logger) *OrganizationService {
	return &OrganizationService{
		store:      store,
		reconciler: reconciler,
		guard:      guard,
		logger:     logger,
	}
}

func (s *OrganizationService) GetOrganizations(ctx context.Context) ([]*models.Organization, error) {
	return s.store.ListActiveOrganizations(ctx)
}

// GetOrganizationByID returns an active organization
func (s *OrganizationService) GetOrganizationByID(ctx context.Context, id string) (*models.Organization, error) {
	org, err := s.store.FindOrganization(ctx, id)
	if err != nil {
		return nil, notFound(err, models.EntityOrganization, id)
	}
	if !org.IsActive {
		return nil, &models.NotFoundError{Entity: models.EntityOrganization, ID: id}
	}
	return org, nil
}

func (s *OrganizationService) CreateOrganization(ctx context.Context, req *models.CreateOrganizationRequest) (*models.Organization, error) {
	if req == nil {
		return nil, errors.New("organization is required")
	}

	timestamp := now()
	org := &models.Organization{
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   timestamp,
		UpdatedAt:   timestamp,
		IsActive:    true,
		MemberIDs:   []string{},
		ProjectIDs:  []string{},
	}

	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		if err := s.ensureNameAvailable(ctx, tx, "", org.Name); err != nil {
			return err
		}
		return tx.SaveOrganization(ctx, org)
	})
	if err != nil {
		return nil, err
	}

	recordMutation(models.EntityOrganization, "create")
	s.logger.Infof("Organization created: %s (%s)", org.ID, org.Name)
	return org, nil
}

// UpdateOrganization applies a partial update and links the requested
// members and projects in one transaction
func (s *OrganizationService) UpdateOrganization(ctx context.Context, id string, req *models.UpdateOrganizationRequest) (*models.Organization, error) {
	if req == nil {
		return nil, errors.New("update request is required")
	}

	var updated *models.Organization
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		org, err := tx.FindOrganization(ctx, id)
		if err != nil {
			return notFound(err, models.EntityOrganization, id)
		}
		if !org.IsActive {
			return &models.InactiveTargetUpdateError{Entity: models.EntityOrganization, ID: id}
		}

		if req.Name.Set && req.Name.Value != org.Name {
			if err := s.ensureNameAvailable(ctx, tx, org.ID, req.Name.Value); err != nil {
				return err
			}
		}
		req.Name.ApplyTo(&org.Name)
		req.Description.ApplyTo(&org.Description)

		result, err := s.reconciler.Reconcile(ctx, tx, org, req.MemberIDs, req.ProjectIDs)
		if err != nil {
			return err
		}

		timestamp := now()
		for _, member := range result.Members {
			member.UpdatedAt = timestamp
			if err := tx.SaveMember(ctx, member); err != nil {
				return err
			}
		}
		for _, project := range result.Projects {
			project.UpdatedAt = timestamp
			if err := tx.SaveProject(ctx, project); err != nil {
				return err
			}
		}

		org.UpdatedAt = timestamp
		if err := tx.SaveOrganization(ctx, org); err != nil {
			return err
		}
		updated = result.Organization
		return nil
	})
	if err != nil {
		s.logRefusal("update", id, err)
		return nil, err
	}

	recordMutation(models.EntityOrganization, "update")
	s.logger.Infof("Organization updated: %s (%d members, %d projects)", id, len(updated.MemberIDs), len(updated.ProjectIDs))
	return updated, nil
}

// DeactivateOrganization soft-deletes an organization that has no linked
// members or projects
func (s *OrganizationService) DeactivateOrganization(ctx context.Context, id string) (*models.Organization, error) {
	var deactivated *models.Organization
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		org, err := tx.FindOrganization(ctx, id)
		if err != nil {
			return notFound(err, models.EntityOrganization, id)
		}
		if _, err := s.guard.Deactivate(org); err != nil {
			return err
		}
		org.UpdatedAt = now()
		if err := tx.DeactivateOrganization(ctx, org); err != nil {
			return err
		}
		deactivated = org
		return nil
	})

	if errors.Is(err, repository.ErrConflict) {
		err = s.explainConflict(ctx, id)
	}
	if err != nil {
		s.logRefusal("deactivate", id, err)
		return nil, err
	}

	recordMutation(models.EntityOrganization, "deactivate")
	s.logger.Infof("Organization deactivated: %s", id)
	return deactivated, nil
}

// explainConflict re-reads an organization whose deactivation lost a race
// and reports the guard error that now applies
func (s *OrganizationService) explainConflict(ctx context.Context, id string) error {
	org, err := s.store.FindOrganization(ctx, id)
	if err != nil {
		return notFound(err, models.EntityOrganization, id)
	}
	if err := s.guard.Check(org); err != nil {
		guardRejections.WithLabelValues(rejectionReason(err)).Inc()
		return err
	}
	return fmt.Errorf("organization %s: %w", id, repository.ErrConflict)
}

func (s *OrganizationService) ensureNameAvailable(ctx context.Context, reader repository.Reader, selfID, name string) error {
	existing, err := reader.FindOrganizationByName(ctx, name)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != selfID {
		return &models.DuplicateError{Entity: models.EntityOrganization, Field: "name", Value: name}
	}
	return nil
}

func (s *OrganizationService) logRefusal(operation, id string, err error) {
	s.logger.WithFields(map[string]interface{}{
		"organization_id": id,
		"operation":       operation,
	}).Warnf("Organization %s refused: %v", operation, err)
}
