package service

import (
	"context"
	"fmt"
	"time"

	"acetrack-backend/internal/authz"
	"acetrack-backend/internal/domain"
	"acetrack-backend/internal/logger"
	"acetrack-backend/internal/repository"
)

type organizationService struct {
	orgRepo    repository.OrganizationRepository
	userRepo   repository.UserRepository
	memberRepo repository.MemberRepository
	tx         repository.Tx
}

func NewOrganizationService(orgRepo repository.OrganizationRepository, userRepo repository.UserRepository, memberRepo repository.MemberRepository, tx repository.Tx) OrganizationService {
	return &organizationService{
		orgRepo:    orgRepo,
		userRepo:   userRepo,
		memberRepo: memberRepo,
		tx:         tx,
	}
}

// CreateOrganization founds the organization, its pending subscription,
// the admin membership and the caller's role promotion in a single
// transaction, so a failed step leaves nothing behind.
func (s *organizationService) CreateOrganization(ctx context.Context, actor authz.Actor, in CreateOrganizationInput) (*domain.Organization, error) {
	if err := authz.CanCreateOrganization(actor); err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if _, ok := domain.ParseSubscriptionDuration(string(in.Duration)); !ok {
		return nil, fmt.Errorf("%w: invalid subscription duration %q", domain.ErrValidation, string(in.Duration))
	}

	existing, err := s.orgRepo.GetByName(ctx, in.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: organization name %q is already taken", domain.ErrConflict, in.Name)
	}
	owned, err := s.orgRepo.GetByAdminUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if owned != nil {
		return nil, fmt.Errorf("%w: user already owns an organization", domain.ErrConflict)
	}

	org := &domain.Organization{
		Name:        in.Name,
		Description: in.Description,
		AdminUserID: actor.UserID,
		Status:      domain.OrgStatusActive,
		Settings:    in.Settings,
	}

	err = s.tx.ExecTx(ctx, func(r repository.Repositories) error {
		if err := r.Orgs.Create(ctx, org); err != nil {
			return err
		}

		start := time.Now().UTC()
		end, err := in.Duration.EndDate(start)
		if err != nil {
			return err
		}
		sub := &domain.Subscription{
			OrgID:         org.ID,
			Duration:      in.Duration,
			StartDate:     start,
			EndDate:       end,
			Status:        domain.SubscriptionStatusPending,
			AmountCents:   in.AmountCents,
			PaymentMethod: in.PaymentMethod,
		}
		if err := r.Subscriptions.Create(ctx, sub); err != nil {
			return err
		}

		m := &domain.Member{
			OrgID:  org.ID,
			UserID: actor.UserID,
			Role:   domain.MemberRoleOrgAdmin,
			Status: domain.MemberStatusActive,
		}
		if err := r.Members.Create(ctx, m); err != nil {
			return err
		}

		// Admins keep their global role; plain members are promoted.
		if actor.Role == domain.RoleMember {
			if err := r.Users.UpdateRole(ctx, actor.UserID, domain.RoleOrgAdmin); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info("organization founded", "org_id", org.ID, "admin_user_id", actor.UserID)
	return org, nil
}

func (s *organizationService) GetOrganization(ctx context.Context, actor authz.Actor, id int32) (*domain.Organization, error) {
	org, err := s.orgRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	scope := authz.OrganizationReadScope(actor)
	if scope.Status != nil && org.Status != *scope.Status {
		return nil, fmt.Errorf("%w: organization %d", domain.ErrNotFound, id)
	}
	return org, nil
}

func (s *organizationService) ListOrganizations(ctx context.Context, actor authz.Actor) ([]domain.Organization, error) {
	return s.orgRepo.List(ctx, authz.OrganizationReadScope(actor))
}

func (s *organizationService) UpdateOrganization(ctx context.Context, actor authz.Actor, id int32, in UpdateOrganizationInput) (*domain.Organization, error) {
	org, err := s.orgRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.CanModifyOrganization(actor, org); err != nil {
		return nil, err
	}
	if in.Name != nil && *in.Name != org.Name {
		existing, err := s.orgRepo.GetByName(ctx, *in.Name)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != org.ID {
			return nil, fmt.Errorf("%w: organization name %q is already taken", domain.ErrConflict, *in.Name)
		}
		org.Name = *in.Name
	}
	if in.Description != nil {
		org.Description = *in.Description
	}
	if in.Settings != nil {
		org.Settings = *in.Settings
	}
	if err := s.orgRepo.Update(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

// DeleteOrganization is a soft delete: the org goes inactive and every
// membership with it. When the org's own admin deletes it (rather than
// a system admin) their global role reverts to member.
func (s *organizationService) DeleteOrganization(ctx context.Context, actor authz.Actor, id int32) error {
	org, err := s.orgRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.CanModifyOrganization(actor, org); err != nil {
		return err
	}
	return s.tx.ExecTx(ctx, func(r repository.Repositories) error {
		if err := r.Orgs.UpdateStatus(ctx, id, domain.OrgStatusInactive); err != nil {
			return err
		}
		if err := r.Members.DeactivateByOrg(ctx, id); err != nil {
			return err
		}
		if actor.UserID == org.AdminUserID && actor.Role == domain.RoleOrgAdmin {
			if err := r.Users.UpdateRole(ctx, org.AdminUserID, domain.RoleMember); err != nil {
				return err
			}
		}
		return nil
	})
}
