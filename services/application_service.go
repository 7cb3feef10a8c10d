package services

import (
	"context"
	"errors"
	"kodikas-backend/models"
	"kodikas-backend/repository"
	"kodikas-backend/utils/logger"
)

type ApplicationService struct {
	store  repository.Store
	refs   *resolver
	logger logger.Logger
}

func NewApplicationService(store repository.Store, allowInactiveReferences bool, logger logger.Logger) *ApplicationService {
	return &ApplicationService{
		store:  store,
		refs:   newResolver(allowInactiveReferences),
		logger: logger,
	}
}

func (s *ApplicationService) GetApplications(ctx context.Context) ([]*models.ApplicationDetails, error) {
	applications, err := s.store.ListActiveApplications(ctx)
	if err != nil {
		return nil, err
	}

	details := make([]*models.ApplicationDetails, 0, len(applications))
	for _, application := range applications {
		d, err := applicationDetails(ctx, s.store, application)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, nil
}

func (s *ApplicationService) GetApplicationByID(ctx context.Context, id string) (*models.ApplicationDetails, error) {
	application, err := s.store.FindApplication(ctx, id)
	if err != nil {
		return nil, notFound(err, models.EntityApplication, id)
	}
	if !application.IsActive {
		return nil, &models.NotFoundError{Entity: models.EntityApplication, ID: id}
	}
	return applicationDetails(ctx, s.store, application)
}

func (s *ApplicationService) CreateApplication(ctx context.Context, req *models.CreateApplicationRequest) (*models.ApplicationDetails, error) {
	if req == nil {
		return nil, errors.New("application is required")
	}

	status := req.Status
	if status == "" {
		status = models.ApplicationStatusPending
	}
	if !status.Valid() {
		return nil, invalidStatus(status)
	}

	timestamp := now()
	application := &models.Application{
		Name:        req.Name,
		Description: req.Description,
		Status:      status,
		AppliedAt:   timestamp,
		UpdatedAt:   timestamp,
		IsActive:    true,
	}

	var details *models.ApplicationDetails
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		if err := s.setOwners(ctx, tx, application, req.MemberID, req.ProjectID); err != nil {
			return err
		}
		if err := tx.SaveApplication(ctx, application); err != nil {
			return err
		}
		var err error
		details, err = applicationDetails(ctx, tx, application)
		return err
	})
	if err != nil {
		s.logger.Warnf("Application creation refused: %v", err)
		return nil, err
	}

	recordMutation(models.EntityApplication, "create")
	s.logger.Infof("Application created: %s (%s)", application.ID, application.Name)
	return details, nil
}

func (s *ApplicationService) UpdateApplication(ctx context.Context, id string, req *models.UpdateApplicationRequest) (*models.ApplicationDetails, error) {
	if req == nil {
		return nil, errors.New("update request is required")
	}
	if status, ok := req.Status.Get(); ok && !status.Valid() {
		return nil, invalidStatus(status)
	}
	if err := requireReference("memberId", req.MemberID); err != nil {
		return nil, err
	}
	if err := requireReference("projectId", req.ProjectID); err != nil {
		return nil, err
	}

	var details *models.ApplicationDetails
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		application, err := tx.FindApplication(ctx, id)
		if err != nil {
			return notFound(err, models.EntityApplication, id)
		}
		if !application.IsActive {
			return &models.InactiveTargetUpdateError{Entity: models.EntityApplication, ID: id}
		}

		memberID, projectID := application.MemberID, application.ProjectID
		req.MemberID.ApplyTo(&memberID)
		req.ProjectID.ApplyTo(&projectID)
		if memberID != application.MemberID || projectID != application.ProjectID {
			if err := s.setOwners(ctx, tx, application, memberID, projectID); err != nil {
				return err
			}
		}
		req.Name.ApplyTo(&application.Name)
		req.Description.ApplyTo(&application.Description)
		req.Status.ApplyTo(&application.Status)

		application.UpdatedAt = now()
		if err := tx.SaveApplication(ctx, application); err != nil {
			return err
		}
		details, err = applicationDetails(ctx, tx, application)
		return err
	})
	if err != nil {
		s.logger.Warnf("Application update refused for %s: %v", id, err)
		return nil, err
	}

	recordMutation(models.EntityApplication, "update")
	s.logger.Infof("Application updated: %s", id)
	return details, nil
}

// DeactivateApplication soft-deletes an application. Deactivating an
// inactive application is a no-op.
func (s *ApplicationService) DeactivateApplication(ctx context.Context, id string) (*models.ApplicationDetails, error) {
	var details *models.ApplicationDetails
	changed := false
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		application, err := tx.FindApplication(ctx, id)
		if err != nil {
			return notFound(err, models.EntityApplication, id)
		}
		if application.IsActive {
			application.IsActive = false
			application.UpdatedAt = now()
			if err := tx.SaveApplication(ctx, application); err != nil {
				return err
			}
			changed = true
		}
		details, err = applicationDetails(ctx, tx, application)
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed {
		recordMutation(models.EntityApplication, "deactivate")
		s.logger.Infof("Application deactivated: %s", id)
	}
	return details, nil
}

// setOwners resolves the member and optional project ids that differ from
// the current ones and assigns them
func (s *ApplicationService) setOwners(ctx context.Context, reader repository.Reader, application *models.Application, memberID, projectID string) error {
	if memberID != application.MemberID || memberID == "" {
		member, err := s.refs.member(ctx, reader, "memberId", memberID)
		if err != nil {
			return err
		}
		application.MemberID = member.ID
	}

	if projectID != application.ProjectID {
		if projectID != "" {
			project, err := s.refs.project(ctx, reader, "projectId", projectID)
			if err != nil {
				return err
			}
			projectID = project.ID
		}
		application.ProjectID = projectID
	}
	return nil
}

func applicationDetails(ctx context.Context, reader repository.Reader, application *models.Application) (*models.ApplicationDetails, error) {
	details := &models.ApplicationDetails{Application: *application}

	member, err := reader.FindMember(ctx, application.MemberID)
	if err != nil && !errors.Is(err, repository.ErrRecordNotFound) {
		return nil, err
	}
	if member != nil {
		details.MemberName = member.Name
	}

	if application.ProjectID != "" {
		project, err := reader.FindProject(ctx, application.ProjectID)
		if err != nil && !errors.Is(err, repository.ErrRecordNotFound) {
			return nil, err
		}
		if project != nil {
			details.ProjectName = project.Name
		}
	}
	return details, nil
}
