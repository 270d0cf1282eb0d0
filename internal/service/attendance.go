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

type attendanceService struct {
	attRepo   repository.AttendanceRepository
	eventRepo repository.EventRepository
	tokenMgr  security.TokenManager
	pushSvc   PushService
}

func NewAttendanceService(attRepo repository.AttendanceRepository, eventRepo repository.EventRepository, tokenMgr security.TokenManager, pushSvc PushService) AttendanceService {
	return &attendanceService{
		attRepo:   attRepo,
		eventRepo: eventRepo,
		tokenMgr:  tokenMgr,
		pushSvc:   pushSvc,
	}
}

// clockOn anchors an "HH:mm" value on the event's date.
func clockOn(date time.Time, hhmm string) (time.Time, error) {
	mins, err := domain.MinutesOfDay(hhmm)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, mins/60, mins%60, 0, 0, time.UTC), nil
}

func (s *attendanceService) CheckIn(ctx context.Context, actor authz.Actor, in CheckInInput) (*domain.Attendance, error) {
	if !actor.Authenticated {
		return nil, fmt.Errorf("%w: check-in requires authentication", domain.ErrPermissionDenied)
	}

	eventID := in.EventID
	method := domain.CheckInMethodManual
	if in.QRToken != "" {
		id, err := s.tokenMgr.ValidateCheckInToken(in.QRToken)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid check-in token", domain.ErrValidation)
		}
		eventID = id
		method = domain.CheckInMethodQRCode
	}
	if eventID == 0 {
		return nil, fmt.Errorf("%w: event_id or qr_token is required", domain.ErrValidation)
	}

	e, err := s.eventRepo.GetByID(ctx, eventID, false)
	if err != nil {
		return nil, err
	}
	if e.Status != domain.EventStatusPublished && e.Status != domain.EventStatusOngoing {
		return nil, fmt.Errorf("%w: event is not open for check-in", domain.ErrValidation)
	}

	now := time.Now().UTC()
	if e.CheckInStartTime != "" {
		opens, err := clockOn(e.EventDate, e.CheckInStartTime)
		if err != nil {
			return nil, err
		}
		if now.Before(opens) {
			return nil, fmt.Errorf("%w: check-in has not opened yet", domain.ErrValidation)
		}
	}
	if e.CheckInEndTime != "" {
		closes, err := clockOn(e.EventDate, e.CheckInEndTime)
		if err != nil {
			return nil, err
		}
		if now.After(closes) {
			return nil, fmt.Errorf("%w: check-in has closed", domain.ErrValidation)
		}
	}

	existing, err := s.attRepo.GetByEventAndUser(ctx, eventID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: already checked in to event %d", domain.ErrConflict, eventID)
	}

	status := domain.AttendanceStatusPresent
	starts, err := clockOn(e.EventDate, e.StartTime)
	if err != nil {
		return nil, err
	}
	if now.After(starts) {
		status = domain.AttendanceStatusLate
	}

	a := &domain.Attendance{
		EventID:     eventID,
		UserID:      actor.UserID,
		CheckInTime: now,
		Status:      status,
		Method:      method,
		Notes:       in.Notes,
		UserAgent:   in.UserAgent,
		Location:    in.Location,
	}
	if err := s.attRepo.Create(ctx, a); err != nil {
		return nil, err
	}

	if err := s.pushSvc.CheckInConfirmed(ctx, a, e); err != nil {
		logger.Warn("check-in confirmation push failed", "attendance_id", a.ID, "error", err)
	}
	return a, nil
}

func (s *attendanceService) CheckOut(ctx context.Context, actor authz.Actor, eventID int32) (*domain.Attendance, error) {
	if !actor.Authenticated {
		return nil, fmt.Errorf("%w: check-out requires authentication", domain.ErrPermissionDenied)
	}
	a, err := s.attRepo.GetByEventAndUser(ctx, eventID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("%w: no check-in recorded for event %d", domain.ErrNotFound, eventID)
	}
	if a.CheckOutTime != nil {
		return nil, fmt.Errorf("%w: already checked out of event %d", domain.ErrConflict, eventID)
	}

	now := time.Now().UTC()
	if !now.After(a.CheckInTime) {
		return nil, fmt.Errorf("%w: check-out time must be after check-in time", domain.ErrValidation)
	}
	a.CheckOutTime = &now
	if err := s.attRepo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// ListByEvent is the reporting read: the same circle that may modify
// the event may inspect its attendance.
func (s *attendanceService) ListByEvent(ctx context.Context, actor authz.Actor, eventID int32) ([]domain.Attendance, *domain.AttendanceSummary, error) {
	e, err := s.eventRepo.GetByID(ctx, eventID, false)
	if err != nil {
		return nil, nil, err
	}
	if err := authz.CanModifyEvent(actor, e); err != nil {
		return nil, nil, err
	}
	records, err := s.attRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	summary, err := s.attRepo.SummaryByEvent(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	return records, summary, nil
}

func (s *attendanceService) MyAttendance(ctx context.Context, actor authz.Actor) ([]domain.Attendance, error) {
	if !actor.Authenticated {
		return nil, fmt.Errorf("%w: authentication required", domain.ErrPermissionDenied)
	}
	return s.attRepo.ListByUser(ctx, actor.UserID)
}
