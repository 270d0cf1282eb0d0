package service

import (
	"context"
	"fmt"
	"time"

	"acetrack-backend/internal/authz"
	"acetrack-backend/internal/domain"
	"acetrack-backend/internal/logger"
	"acetrack-backend/internal/repository"
	"acetrack-backend/internal/security"
)

type eventService struct {
	eventRepo       repository.EventRepository
	attRepo         repository.AttendanceRepository
	userRepo        repository.UserRepository
	tokenMgr        security.TokenManager
	pushSvc         PushService
	emailSvc        EmailService
	checkInTokenTTL time.Duration
}

func NewEventService(eventRepo repository.EventRepository, attRepo repository.AttendanceRepository, userRepo repository.UserRepository, tokenMgr security.TokenManager, pushSvc PushService, emailSvc EmailService, checkInTokenTTL time.Duration) EventService {
	return &eventService{
		eventRepo:       eventRepo,
		attRepo:         attRepo,
		userRepo:        userRepo,
		tokenMgr:        tokenMgr,
		pushSvc:         pushSvc,
		emailSvc:        emailSvc,
		checkInTokenTTL: checkInTokenTTL,
	}
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", domain.ErrValidation, s)
	}
	return d.UTC(), nil
}

func (s *eventService) CreateEvent(ctx context.Context, actor authz.Actor, in CreateEventInput) (*domain.Event, error) {
	if err := authz.CanCreateEvent(actor, in.OrgID); err != nil {
		return nil, err
	}
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	date, err := parseDate(in.EventDate)
	if err != nil {
		return nil, err
	}

	e := &domain.Event{
		OrgID:             in.OrgID,
		Title:             in.Title,
		Description:       in.Description,
		EventDate:         date,
		BannerURL:         in.BannerURL,
		StartTime:         in.StartTime,
		EndTime:           in.EndTime,
		CheckInStartTime:  in.CheckInStartTime,
		CheckInEndTime:    in.CheckInEndTime,
		CheckOutStartTime: in.CheckOutStartTime,
		CheckOutEndTime:   in.CheckOutEndTime,
		Location:          in.Location,
		Status:            domain.EventStatusDraft,
		Mandatory:         in.Mandatory,
		CreatedBy:         actor.UserID,
	}
	if err := e.ValidateSchedule(time.Now().UTC(), true); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// GetEvent applies the same visibility rules as listing: an event the
// actor cannot see reads as NotFound, never as a denial. Soft-deleted
// events surface only when explicitly requested, and the scope grants
// that to admins alone.
func (s *eventService) GetEvent(ctx context.Context, actor authz.Actor, id int32, includeDeleted bool) (*domain.Event, error) {
	scope := authz.EventReadScope(actor, includeDeleted)
	if scope.None {
		return nil, fmt.Errorf("%w: event %d", domain.ErrNotFound, id)
	}
	e, err := s.eventRepo.GetByID(ctx, id, scope.IncludeDeleted)
	if err != nil {
		return nil, err
	}
	if scope.OrgID != nil && e.OrgID != *scope.OrgID {
		return nil, fmt.Errorf("%w: event %d", domain.ErrNotFound, id)
	}
	if scope.Status != nil && e.Status != *scope.Status {
		return nil, fmt.Errorf("%w: event %d", domain.ErrNotFound, id)
	}
	return e, nil
}

func (s *eventService) ListEvents(ctx context.Context, actor authz.Actor, orgFilter *int32, includeDeleted bool) ([]domain.Event, error) {
	scope := authz.EventReadScope(actor, includeDeleted)
	return s.eventRepo.List(ctx, scope, orgFilter)
}

func (s *eventService) UpdateEvent(ctx context.Context, actor authz.Actor, id int32, in UpdateEventInput) (*domain.Event, error) {
	e, err := s.eventRepo.GetByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if err := authz.CanModifyEvent(actor, e); err != nil {
		return nil, err
	}

	scheduleTouched := in.EventDate != nil || in.StartTime != nil || in.EndTime != nil ||
		in.CheckInStartTime != nil || in.CheckInEndTime != nil ||
		in.CheckOutStartTime != nil || in.CheckOutEndTime != nil
	if scheduleTouched {
		if err := authz.CanEditSchedule(actor, e); err != nil {
			return nil, err
		}
	}

	if in.Title != nil {
		e.Title = *in.Title
	}
	if in.Description != nil {
		e.Description = *in.Description
	}
	if in.EventDate != nil {
		date, err := parseDate(*in.EventDate)
		if err != nil {
			return nil, err
		}
		e.EventDate = date
	}
	if in.BannerURL != nil {
		e.BannerURL = *in.BannerURL
	}
	if in.StartTime != nil {
		e.StartTime = *in.StartTime
	}
	if in.EndTime != nil {
		e.EndTime = *in.EndTime
	}
	if in.CheckInStartTime != nil {
		e.CheckInStartTime = *in.CheckInStartTime
	}
	if in.CheckInEndTime != nil {
		e.CheckInEndTime = *in.CheckInEndTime
	}
	if in.CheckOutStartTime != nil {
		e.CheckOutStartTime = *in.CheckOutStartTime
	}
	if in.CheckOutEndTime != nil {
		e.CheckOutEndTime = *in.CheckOutEndTime
	}
	if in.Location != nil {
		e.Location = *in.Location
	}
	if in.Mandatory != nil {
		e.Mandatory = *in.Mandatory
	}

	if scheduleTouched {
		if err := e.ValidateSchedule(time.Now().UTC(), false); err != nil {
			return nil, err
		}
	}
	if err := s.eventRepo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *eventService) Transition(ctx context.Context, actor authz.Actor, id int32, target domain.EventStatus) (*domain.Event, error) {
	e, err := s.eventRepo.GetByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if err := authz.CanTransitionEvent(actor, e); err != nil {
		return nil, err
	}
	if !e.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: cannot transition from %s to %s", domain.ErrInvalidTransition, e.Status, target)
	}
	if err := s.eventRepo.UpdateStatus(ctx, id, target); err != nil {
		return nil, err
	}
	e.Status = target

	// Push dispatch is best-effort; an unreachable FCM never fails the
	// transition itself.
	switch target {
	case domain.EventStatusPublished:
		if err := s.pushSvc.EventPublished(ctx, e); err != nil {
			logger.Warn("push for published event failed", "event_id", e.ID, "error", err)
		}
	case domain.EventStatusCancelled:
		if err := s.pushSvc.EventCancelled(ctx, e); err != nil {
			logger.Warn("push for cancelled event failed", "event_id", e.ID, "error", err)
		}
		s.notifyCancelled(ctx, e)
	}
	return e, nil
}

// notifyCancelled emails everyone who already checked in. Best-effort,
// same as the push path.
func (s *eventService) notifyCancelled(ctx context.Context, e *domain.Event) {
	records, err := s.attRepo.ListByEvent(ctx, e.ID)
	if err != nil {
		logger.Warn("cancellation notices skipped", "event_id", e.ID, "error", err)
		return
	}
	for i := range records {
		u, err := s.userRepo.GetByID(ctx, records[i].UserID)
		if err != nil {
			logger.Warn("cancellation notice skipped", "event_id", e.ID, "user_id", records[i].UserID, "error", err)
			continue
		}
		if err := s.emailSvc.SendEventCancelledNotice(ctx, u.Email, u.Name, e.Title, e.EventDate); err != nil {
			logger.Warn("cancellation notice failed", "event_id", e.ID, "user_id", u.ID, "error", err)
		}
	}
}

func (s *eventService) DeleteEvent(ctx context.Context, actor authz.Actor, id int32, permanently bool) error {
	if permanently {
		if err := authz.CanHardDeleteEvent(actor); err != nil {
			return err
		}
		e, err := s.eventRepo.GetByID(ctx, id, true)
		if err != nil {
			return err
		}
		if !e.Deleted() {
			return fmt.Errorf("%w: event must be soft-deleted before permanent deletion", domain.ErrConflict)
		}
		return s.eventRepo.HardDelete(ctx, id)
	}

	e, err := s.eventRepo.GetByID(ctx, id, false)
	if err != nil {
		return err
	}
	if err := authz.CanSoftDeleteEvent(actor, e); err != nil {
		return err
	}
	return s.eventRepo.SoftDelete(ctx, id, time.Now().UTC())
}

func (s *eventService) RestoreEvent(ctx context.Context, actor authz.Actor, id int32) (*domain.Event, error) {
	if err := authz.CanRestoreEvent(actor); err != nil {
		return nil, err
	}
	e, err := s.eventRepo.GetByID(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if !e.Deleted() {
		return nil, fmt.Errorf("%w: event %d is not deleted", domain.ErrConflict, id)
	}
	if err := s.eventRepo.Restore(ctx, id); err != nil {
		return nil, err
	}
	e.DeletedAt = nil
	return e, nil
}

func (s *eventService) CheckInToken(ctx context.Context, actor authz.Actor, eventID int32) (string, error) {
	e, err := s.eventRepo.GetByID(ctx, eventID, false)
	if err != nil {
		return "", err
	}
	if err := authz.CanModifyEvent(actor, e); err != nil {
		return "", err
	}
	if e.Status != domain.EventStatusPublished && e.Status != domain.EventStatusOngoing {
		return "", fmt.Errorf("%w: check-in tokens are only issued for published or ongoing events", domain.ErrValidation)
	}
	return s.tokenMgr.GenerateCheckInToken(eventID, s.checkInTokenTTL)
}
