package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"acetrack-backend/internal/authz"
	"acetrack-backend/internal/domain"
	"acetrack-backend/internal/logger"
	"acetrack-backend/internal/repository"
)

type subscriptionService struct {
	subRepo  repository.SubscriptionRepository
	orgRepo  repository.OrganizationRepository
	userRepo repository.UserRepository
	emailSvc EmailService
}

func NewSubscriptionService(subRepo repository.SubscriptionRepository, orgRepo repository.OrganizationRepository, userRepo repository.UserRepository, emailSvc EmailService) SubscriptionService {
	return &subscriptionService{
		subRepo:  subRepo,
		orgRepo:  orgRepo,
		userRepo: userRepo,
		emailSvc: emailSvc,
	}
}

func (s *subscriptionService) CreateSubscription(ctx context.Context, actor authz.Actor, in CreateSubscriptionInput) (*domain.Subscription, error) {
	if err := authz.CanCreateSubscription(actor, in.OrgID); err != nil {
		return nil, err
	}
	if _, err := s.orgRepo.GetByID(ctx, in.OrgID); err != nil {
		return nil, err
	}
	if _, ok := domain.ParseSubscriptionDuration(string(in.Duration)); !ok {
		return nil, fmt.Errorf("%w: invalid subscription duration %q", domain.ErrValidation, string(in.Duration))
	}

	start := time.Now().UTC()
	if in.StartDate != "" {
		var err error
		if start, err = parseDate(in.StartDate); err != nil {
			return nil, err
		}
	}
	end, err := in.Duration.EndDate(start)
	if err != nil {
		return nil, err
	}

	held, err := s.subRepo.HasActiveOrPending(ctx, in.OrgID)
	if err != nil {
		return nil, err
	}
	if held {
		return nil, fmt.Errorf("%w: organization already holds an active or pending subscription", domain.ErrConflict)
	}

	sub := &domain.Subscription{
		OrgID:         in.OrgID,
		Duration:      in.Duration,
		StartDate:     start,
		EndDate:       end,
		Status:        domain.SubscriptionStatusPending,
		AmountCents:   in.AmountCents,
		PaymentMethod: in.PaymentMethod,
		ReceiptRef:    uuid.NewString(),
		Notes:         in.Notes,
	}
	if err := s.subRepo.Create(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *subscriptionService) GetSubscription(ctx context.Context, actor authz.Actor, id int32) (*domain.Subscription, error) {
	sub, err := s.subRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	scope, err := authz.SubscriptionReadScope(actor, nil)
	if err != nil {
		return nil, err
	}
	if scope.None || (scope.OrgID != nil && sub.OrgID != *scope.OrgID) {
		return nil, fmt.Errorf("%w: subscription %d", domain.ErrNotFound, id)
	}
	return sub, nil
}

func (s *subscriptionService) ListSubscriptions(ctx context.Context, actor authz.Actor, orgFilter *int32) ([]domain.Subscription, error) {
	scope, err := authz.SubscriptionReadScope(actor, orgFilter)
	if err != nil {
		return nil, err
	}
	return s.subRepo.List(ctx, scope)
}

// VerifySubscription is the explicit admin action that takes a pending
// subscription to active, or to cancelled when the payment is refused.
func (s *subscriptionService) VerifySubscription(ctx context.Context, actor authz.Actor, id int32, approve bool, notes string) (*domain.Subscription, error) {
	if err := authz.CanVerifySubscription(actor); err != nil {
		return nil, err
	}
	sub, err := s.subRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.Status != domain.SubscriptionStatusPending {
		return nil, fmt.Errorf("%w: subscription %d is not pending", domain.ErrConflict, id)
	}

	now := time.Now().UTC()
	sub.VerifiedBy = &actor.UserID
	sub.VerifiedAt = &now
	if notes != "" {
		sub.Notes = notes
	}
	if approve {
		sub.Status = domain.SubscriptionStatusActive
	} else {
		sub.Status = domain.SubscriptionStatusCancelled
	}
	if err := s.subRepo.Update(ctx, sub); err != nil {
		return nil, err
	}

	if approve {
		s.sendReceipt(ctx, sub)
	}
	return sub, nil
}

func (s *subscriptionService) sendReceipt(ctx context.Context, sub *domain.Subscription) {
	org, err := s.orgRepo.GetByID(ctx, sub.OrgID)
	if err != nil {
		logger.Warn("subscription receipt skipped", "subscription_id", sub.ID, "error", err)
		return
	}
	admin, err := s.userRepo.GetByID(ctx, org.AdminUserID)
	if err != nil {
		logger.Warn("subscription receipt skipped", "subscription_id", sub.ID, "error", err)
		return
	}
	if err := s.emailSvc.SendSubscriptionReceipt(ctx, admin.Email, org.Name, sub); err != nil {
		logger.Warn("subscription receipt failed", "subscription_id", sub.ID, "error", err)
	}
}

func (s *subscriptionService) CancelSubscription(ctx context.Context, actor authz.Actor, id int32) (*domain.Subscription, error) {
	sub, err := s.subRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.CanCancelSubscription(actor, sub); err != nil {
		return nil, err
	}
	if sub.Status != domain.SubscriptionStatusPending && sub.Status != domain.SubscriptionStatusActive {
		return nil, fmt.Errorf("%w: subscription %d cannot be cancelled from %s", domain.ErrConflict, id, sub.Status)
	}
	sub.Status = domain.SubscriptionStatusCancelled
	if err := s.subRepo.Update(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *subscriptionService) UpdateSubscription(ctx context.Context, actor authz.Actor, id int32, patch authz.SubscriptionUpdate) (*domain.Subscription, error) {
	sub, err := s.subRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.CanUpdateSubscription(actor, sub, patch); err != nil {
		return nil, err
	}

	if patch.Duration != nil {
		if _, ok := domain.ParseSubscriptionDuration(string(*patch.Duration)); !ok {
			return nil, fmt.Errorf("%w: invalid subscription duration %q", domain.ErrValidation, string(*patch.Duration))
		}
		sub.Duration = *patch.Duration
	}
	if patch.StartDate != nil {
		sub.StartDate = *patch.StartDate
	}
	if patch.Duration != nil || patch.StartDate != nil {
		end, err := sub.Duration.EndDate(sub.StartDate)
		if err != nil {
			return nil, err
		}
		sub.EndDate = end
	}
	if patch.AmountCents != nil {
		sub.AmountCents = *patch.AmountCents
	}
	if patch.PaymentMethod != nil {
		sub.PaymentMethod = *patch.PaymentMethod
	}
	if patch.ReceiptRef != nil {
		sub.ReceiptRef = *patch.ReceiptRef
	}
	if patch.Notes != nil {
		sub.Notes = *patch.Notes
	}
	if err := s.subRepo.Update(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}
