package services

import (
	"context"
	"errors"
	"fmt"
	"kodikas-backend/models"
	"kodikas-backend/repository"
	"kodikas-backend/utils"
	"kodikas-backend/utils/logger"
)

type MemberService struct {
	store  repository.Store
	refs   *resolver
	logger logger.Logger
}

func NewMemberService(store repository.Store, allowInactiveReferences bool, logger logger.Logger) *MemberService {
	return &MemberService{
		store:  store,
		refs:   newResolver(allowInactiveReferences),
		logger: logger,
	}
}

func (s *MemberService) GetMembers(ctx context.Context) ([]*models.Member, error) {
	return s.store.ListActiveMembers(ctx)
}

// GetMemberByID returns an active member with its project and application ids
func (s *MemberService) GetMemberByID(ctx context.Context, id string) (*models.Member, error) {
	member, err := s.store.FindMember(ctx, id)
	if err != nil {
		return nil, notFound(err, models.EntityMember, id)
	}
	if !member.IsActive {
		return nil, &models.NotFoundError{Entity: models.EntityMember, ID: id}
	}
	return member, nil
}

func (s *MemberService) CreateMember(ctx context.Context, req *models.CreateMemberRequest) (*models.Member, error) {
	if req == nil {
		return nil, errors.New("member is required")
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	timestamp := now()
	member := &models.Member{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    timestamp,
		UpdatedAt:    timestamp,
		IsActive:     true,
	}

	var created *models.Member
	err = s.store.WithinTx(ctx, func(tx repository.Tx) error {
		if err := s.ensureAvailable(ctx, tx, "", member.Name, member.Email); err != nil {
			return err
		}
		if req.OrganizationID != "" {
			org, err := s.refs.organization(ctx, tx, "organizationId", req.OrganizationID)
			if err != nil {
				return err
			}
			member.OrganizationID = org.ID
		}
		if err := tx.SaveMember(ctx, member); err != nil {
			return err
		}
		found, err := tx.FindMember(ctx, member.ID)
		created = found
		return err
	})
	if err != nil {
		return nil, err
	}

	recordMutation(models.EntityMember, "create")
	s.logger.Infof("Member created: %s (%s)", created.ID, created.Name)
	return created, nil
}

// UpdateMember overwrites the fields present in req. A new organization must
// resolve before the member is moved to it.
func (s *MemberService) UpdateMember(ctx context.Context, id string, req *models.UpdateMemberRequest) (*models.Member, error) {
	if req == nil {
		return nil, errors.New("update request is required")
	}
	if err := requireReference("organizationId", req.OrganizationID); err != nil {
		return nil, err
	}

	var hash string
	if password, ok := req.Password.Get(); ok {
		var err error
		if hash, err = utils.HashPassword(password); err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
	}

	var updated *models.Member
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		member, err := tx.FindMember(ctx, id)
		if err != nil {
			return notFound(err, models.EntityMember, id)
		}

		name, email := member.Name, member.Email
		req.Name.ApplyTo(&name)
		req.Email.ApplyTo(&email)
		if name != member.Name || email != member.Email {
			if err := s.ensureAvailable(ctx, tx, member.ID, name, email); err != nil {
				return err
			}
		}
		member.Name, member.Email = name, email

		if orgID, ok := req.OrganizationID.Get(); ok && orgID != member.OrganizationID {
			org, err := s.refs.organization(ctx, tx, "organizationId", orgID)
			if err != nil {
				return err
			}
			member.OrganizationID = org.ID
		}
		if hash != "" {
			member.PasswordHash = hash
		}

		member.UpdatedAt = now()
		if err := tx.SaveMember(ctx, member); err != nil {
			return err
		}
		updated, err = tx.FindMember(ctx, member.ID)
		return err
	})
	if err != nil {
		s.logger.Warnf("Member update refused for %s: %v", id, err)
		return nil, err
	}

	recordMutation(models.EntityMember, "update")
	s.logger.Infof("Member updated: %s", id)
	return updated, nil
}

// DeactivateMember soft-deletes a member. Deactivating an inactive member is
// a no-op. Organization links are kept.
func (s *MemberService) DeactivateMember(ctx context.Context, id string) (*models.Member, error) {
	var result *models.Member
	changed := false
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		member, err := tx.FindMember(ctx, id)
		if err != nil {
			return notFound(err, models.EntityMember, id)
		}
		result = member
		if !member.IsActive {
			return nil
		}
		member.IsActive = false
		member.UpdatedAt = now()
		changed = true
		return tx.SaveMember(ctx, member)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		recordMutation(models.EntityMember, "deactivate")
		s.logger.Infof("Member deactivated: %s", id)
	}
	return result, nil
}

func (s *MemberService) ensureAvailable(ctx context.Context, reader repository.Reader, selfID, name, email string) error {
	byName, err := reader.FindMemberByName(ctx, name)
	switch {
	case err == nil && byName.ID != selfID:
		return &models.DuplicateError{Entity: models.EntityMember, Field: "name", Value: name}
	case err != nil && !errors.Is(err, repository.ErrRecordNotFound):
		return err
	}

	byEmail, err := reader.FindMemberByEmail(ctx, email)
	switch {
	case err == nil && byEmail.ID != selfID:
		return &models.DuplicateError{Entity: models.EntityMember, Field: "email", Value: email}
	case err != nil && !errors.Is(err, repository.ErrRecordNotFound):
		return err
	}
	return nil
}
