package service

import (
	"context"
	"fmt"

	"acetrack-backend/internal/authz"
	"acetrack-backend/internal/domain"
	"acetrack-backend/internal/logger"
	"acetrack-backend/internal/repository"
)

type memberService struct {
	memberRepo repository.MemberRepository
	orgRepo    repository.OrganizationRepository
	userRepo   repository.UserRepository
	emailSvc   EmailService
}

func NewMemberService(memberRepo repository.MemberRepository, orgRepo repository.OrganizationRepository, userRepo repository.UserRepository, emailSvc EmailService) MemberService {
	return &memberService{
		memberRepo: memberRepo,
		orgRepo:    orgRepo,
		userRepo:   userRepo,
		emailSvc:   emailSvc,
	}
}

func (s *memberService) checkCapacity(ctx context.Context, org *domain.Organization) error {
	if org.Settings.MaxMembers == nil {
		return nil
	}
	count, err := s.memberRepo.CountActiveByOrg(ctx, org.ID)
	if err != nil {
		return err
	}
	if count >= *org.Settings.MaxMembers {
		return fmt.Errorf("%w: organization is at its member limit", domain.ErrConflict)
	}
	return nil
}

// AddMember is the admin path: the membership is active immediately.
func (s *memberService) AddMember(ctx context.Context, actor authz.Actor, orgID, userID int32, role domain.MemberRole, notes string) (*domain.Member, error) {
	if err := authz.CanManageMembers(actor, orgID); err != nil {
		return nil, err
	}
	org, err := s.orgRepo.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	existing, err := s.memberRepo.GetByOrgAndUser(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: user %d is already a member of organization %d", domain.ErrConflict, userID, orgID)
	}
	if err := s.checkCapacity(ctx, org); err != nil {
		return nil, err
	}

	m := &domain.Member{
		OrgID:  orgID,
		UserID: userID,
		Role:   role,
		Status: domain.MemberStatusActive,
		Notes:  notes,
	}
	if err := s.memberRepo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// RequestToJoin is the self-service path. The organization's settings
// decide between an immediately active membership and a pending one.
func (s *memberService) RequestToJoin(ctx context.Context, actor authz.Actor, orgID int32, notes string) (*domain.Member, error) {
	if !actor.Authenticated {
		return nil, fmt.Errorf("%w: joining requires authentication", domain.ErrPermissionDenied)
	}
	org, err := s.orgRepo.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org.Status != domain.OrgStatusActive {
		return nil, fmt.Errorf("%w: organization %d", domain.ErrNotFound, orgID)
	}
	if !org.Settings.AllowPublicJoin {
		return nil, fmt.Errorf("%w: organization does not accept join requests", domain.ErrPermissionDenied)
	}
	existing, err := s.memberRepo.GetByOrgAndUser(ctx, orgID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: already a member of organization %d", domain.ErrConflict, orgID)
	}
	if err := s.checkCapacity(ctx, org); err != nil {
		return nil, err
	}

	status := domain.MemberStatusActive
	if org.Settings.RequireApproval {
		status = domain.MemberStatusPending
	}
	m := &domain.Member{
		OrgID:  orgID,
		UserID: actor.UserID,
		Role:   domain.MemberRoleMember,
		Status: status,
		Notes:  notes,
	}
	if err := s.memberRepo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *memberService) ApproveMember(ctx context.Context, actor authz.Actor, memberID int32) (*domain.Member, error) {
	m, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if err := authz.CanManageMembers(actor, m.OrgID); err != nil {
		return nil, err
	}
	if m.Status != domain.MemberStatusPending {
		return nil, fmt.Errorf("%w: membership %d is not pending", domain.ErrConflict, memberID)
	}
	m.Status = domain.MemberStatusActive
	if err := s.memberRepo.Update(ctx, m); err != nil {
		return nil, err
	}
	s.notifyDecision(ctx, m, true)
	return m, nil
}

// RejectMember deletes the pending record instead of keeping a
// rejected state around.
func (s *memberService) RejectMember(ctx context.Context, actor authz.Actor, memberID int32) error {
	m, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return err
	}
	if err := authz.CanManageMembers(actor, m.OrgID); err != nil {
		return err
	}
	if m.Status != domain.MemberStatusPending {
		return fmt.Errorf("%w: membership %d is not pending", domain.ErrConflict, memberID)
	}
	if err := s.memberRepo.Delete(ctx, memberID); err != nil {
		return err
	}
	s.notifyDecision(ctx, m, false)
	return nil
}

func (s *memberService) notifyDecision(ctx context.Context, m *domain.Member, approved bool) {
	user, err := s.userRepo.GetByID(ctx, m.UserID)
	if err != nil {
		logger.Warn("membership decision email skipped", "member_id", m.ID, "error", err)
		return
	}
	org, err := s.orgRepo.GetByID(ctx, m.OrgID)
	if err != nil {
		logger.Warn("membership decision email skipped", "member_id", m.ID, "error", err)
		return
	}
	if err := s.emailSvc.SendMembershipDecision(ctx, user.Email, user.Name, org.Name, approved); err != nil {
		logger.Warn("membership decision email failed", "member_id", m.ID, "error", err)
	}
}

func (s *memberService) UpdateMember(ctx context.Context, actor authz.Actor, memberID int32, role *domain.MemberRole, status *domain.MemberStatus, notes *string) (*domain.Member, error) {
	m, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if err := authz.CanManageMembers(actor, m.OrgID); err != nil {
		return nil, err
	}
	if role != nil {
		m.Role = *role
	}
	if status != nil {
		m.Status = *status
	}
	if notes != nil {
		m.Notes = *notes
	}
	if err := s.memberRepo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *memberService) RemoveMember(ctx context.Context, actor authz.Actor, memberID int32) error {
	m, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return err
	}
	if err := authz.CanManageMembers(actor, m.OrgID); err != nil {
		return err
	}
	org, err := s.orgRepo.GetByID(ctx, m.OrgID)
	if err != nil {
		return err
	}
	if m.UserID == org.AdminUserID {
		return fmt.Errorf("%w: the organization's admin cannot be removed", domain.ErrPermissionDenied)
	}
	return s.memberRepo.Delete(ctx, memberID)
}

func (s *memberService) ListMembers(ctx context.Context, actor authz.Actor) ([]domain.Member, error) {
	scope, err := authz.MemberReadScope(actor)
	if err != nil {
		return nil, err
	}
	return s.memberRepo.List(ctx, scope)
}

func (s *memberService) MyMemberships(ctx context.Context, actor authz.Actor) ([]domain.Member, error) {
	if !actor.Authenticated {
		return nil, fmt.Errorf("%w: authentication required", domain.ErrPermissionDenied)
	}
	return s.memberRepo.ListByUser(ctx, actor.UserID)
}
