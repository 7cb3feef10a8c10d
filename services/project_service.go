package services

import (
	"context"
	"errors"
	"kodikas-backend/models"
	"kodikas-backend/repository"
	"kodikas-backend/utils/logger"
)

type ProjectService struct {
	store  repository.Store
	refs   *resolver
	logger logger.Logger
}

func NewProjectService(store repository.Store, allowInactiveReferences bool, logger logger.Logger) *ProjectService {
	return &ProjectService{
		store:  store,
		refs:   newResolver(allowInactiveReferences),
		logger: logger,
	}
}

func (s *ProjectService) GetProjects(ctx context.Context) ([]*models.ProjectDetails, error) {
	projects, err := s.store.ListActiveProjects(ctx)
	if err != nil {
		return nil, err
	}

	details := make([]*models.ProjectDetails, 0, len(projects))
	for _, project := range projects {
		d, err := projectDetails(ctx, s.store, project)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, nil
}

func (s *ProjectService) GetProjectByID(ctx context.Context, id string) (*models.ProjectDetails, error) {
	project, err := s.store.FindProject(ctx, id)
	if err != nil {
		return nil, notFound(err, models.EntityProject, id)
	}
	if !project.IsActive {
		return nil, &models.NotFoundError{Entity: models.EntityProject, ID: id}
	}
	return projectDetails(ctx, s.store, project)
}

func (s *ProjectService) CreateProject(ctx context.Context, req *models.CreateProjectRequest) (*models.ProjectDetails, error) {
	if req == nil {
		return nil, errors.New("project is required")
	}

	timestamp := now()
	project := &models.Project{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
		CreatedAt:   timestamp,
		UpdatedAt:   timestamp,
	}

	var details *models.ProjectDetails
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		if err := s.setOwners(ctx, tx, project, req.MemberID, req.OrganizationID); err != nil {
			return err
		}
		if err := tx.SaveProject(ctx, project); err != nil {
			return err
		}
		var err error
		details, err = projectDetails(ctx, tx, project)
		return err
	})
	if err != nil {
		s.logger.Warnf("Project creation refused: %v", err)
		return nil, err
	}

	recordMutation(models.EntityProject, "create")
	s.logger.Infof("Project created: %s (%s)", project.ID, project.Name)
	return details, nil
}

// UpdateProject overwrites the fields present in req. Inactive projects are
// never modified.
func (s *ProjectService) UpdateProject(ctx context.Context, id string, req *models.UpdateProjectRequest) (*models.ProjectDetails, error) {
	if req == nil {
		return nil, errors.New("update request is required")
	}
	if err := requireReference("memberId", req.MemberID); err != nil {
		return nil, err
	}
	if err := requireReference("organizationId", req.OrganizationID); err != nil {
		return nil, err
	}

	var details *models.ProjectDetails
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		project, err := tx.FindProject(ctx, id)
		if err != nil {
			return notFound(err, models.EntityProject, id)
		}
		if !project.IsActive {
			return &models.InactiveTargetUpdateError{Entity: models.EntityProject, ID: id}
		}

		memberID, orgID := project.MemberID, project.OrganizationID
		req.MemberID.ApplyTo(&memberID)
		req.OrganizationID.ApplyTo(&orgID)
		if memberID != project.MemberID || orgID != project.OrganizationID {
			if err := s.setOwners(ctx, tx, project, memberID, orgID); err != nil {
				return err
			}
		}
		req.Name.ApplyTo(&project.Name)
		req.Description.ApplyTo(&project.Description)

		project.UpdatedAt = now()
		if err := tx.SaveProject(ctx, project); err != nil {
			return err
		}
		details, err = projectDetails(ctx, tx, project)
		return err
	})
	if err != nil {
		s.logger.Warnf("Project update refused for %s: %v", id, err)
		return nil, err
	}

	recordMutation(models.EntityProject, "update")
	s.logger.Infof("Project updated: %s", id)
	return details, nil
}

// DeactivateProject soft-deletes a project. Deactivating an inactive project
// is a no-op.
func (s *ProjectService) DeactivateProject(ctx context.Context, id string) (*models.ProjectDetails, error) {
	var details *models.ProjectDetails
	changed := false
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		project, err := tx.FindProject(ctx, id)
		if err != nil {
			return notFound(err, models.EntityProject, id)
		}
		if project.IsActive {
			project.IsActive = false
			project.UpdatedAt = now()
			if err := tx.SaveProject(ctx, project); err != nil {
				return err
			}
			changed = true
		}
		details, err = projectDetails(ctx, tx, project)
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed {
		recordMutation(models.EntityProject, "deactivate")
		s.logger.Infof("Project deactivated: %s", id)
	}
	return details, nil
}

// setOwners resolves the member and optional organization ids that differ
// from the current ones and assigns them
func (s *ProjectService) setOwners(ctx context.Context, reader repository.Reader, project *models.Project, memberID, orgID string) error {
	if memberID != project.MemberID || memberID == "" {
		member, err := s.refs.member(ctx, reader, "memberId", memberID)
		if err != nil {
			return err
		}
		project.MemberID = member.ID
	}

	if orgID != project.OrganizationID {
		if orgID != "" {
			org, err := s.refs.organization(ctx, reader, "organizationId", orgID)
			if err != nil {
				return err
			}
			orgID = org.ID
		}
		project.OrganizationID = orgID
	}
	return nil
}

func projectDetails(ctx context.Context, reader repository.Reader, project *models.Project) (*models.ProjectDetails, error) {
	details := &models.ProjectDetails{Project: *project}

	member, err := reader.FindMember(ctx, project.MemberID)
	if err != nil && !errors.Is(err, repository.ErrRecordNotFound) {
		return nil, err
	}
	if member != nil {
		details.MemberName = member.Name
	}

	if project.OrganizationID != "" {
		org, err := reader.FindOrganization(ctx, project.OrganizationID)
		if err != nil && !errors.Is(err, repository.ErrRecordNotFound) {
			return nil, err
		}
		if org != nil {
			details.OrganizationName = org.Name
		}
	}
	return details, nil
}
