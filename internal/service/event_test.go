package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"acetrack-backend/internal/authz"
	"acetrack-backend/internal/domain"
)

func adminActor() authz.Actor {
	return authz.Actor{UserID: 1, Role: domain.RoleAdmin, Authenticated: true}
}

func orgAdminActor(orgID int32) authz.Actor {
	return authz.Actor{UserID: 2, Role: domain.RoleOrgAdmin, OrgID: &orgID, Authenticated: true}
}

func memberActor() authz.Actor {
	return authz.Actor{UserID: 3, Role: domain.RoleMember, Authenticated: true}
}

func futureDate() string {
	return time.Now().UTC().AddDate(0, 1, 0).Format("2006-01-02")
}

func newEventService(eventRepo *MockEventRepo, push *MockPushService) EventService {
	return NewEventService(eventRepo, new(MockAttendanceRepo), new(MockUserRepo), new(MockTokenManager), push, new(MockEmailService), 30*time.Minute)
}

func TestEventService_CreateEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("org_admin creates draft in own org", func(t *testing.T) {
		eventRepo := new(MockEventRepo)
		svc := newEventService(eventRepo, new(MockPushService))
		eventRepo.On("Create", ctx, mock.AnythingOfType("*domain.Event")).Return(nil)

		e, err := svc.CreateEvent(ctx, orgAdminActor(5), CreateEventInput{
			OrgID:     5,
			Title:     "Chapter Meeting",
			EventDate: futureDate(),
			StartTime: "18:00",
			EndTime:   "20:00",
			Location:  "Room 101",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.EventStatusDraft, e.Status)
		assert.Equal(t, int32(2), e.CreatedBy)
		eventRepo.AssertExpectations(t)
	})

	t.Run("org_admin denied outside own org", func(t *testing.T) {
		svc := newEventService(new(MockEventRepo), new(MockPushService))
		_, err := svc.CreateEvent(ctx, orgAdminActor(5), CreateEventInput{OrgID: 9, Title: "x", EventDate: futureDate(), StartTime: "18:00", EndTime: "20:00"})
		assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	})

	t.Run("schedule validated before create", func(t *testing.T) {
		svc := newEventService(new(MockEventRepo), new(MockPushService))
		_, err := svc.CreateEvent(ctx, adminActor(), CreateEventInput{OrgID: 5, Title: "x", EventDate: futureDate(), StartTime: "20:00", EndTime: "18:00"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestEventService_GetEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("admin reads a soft-deleted event on request", func(t *testing.T) {
		eventRepo := new(MockEventRepo)
		svc := newEventService(eventRepo, new(MockPushService))

		deletedAt := time.Now().UTC()
		e := &domain.Event{ID: 10, OrgID: 5, Status: domain.EventStatusCancelled, DeletedAt: &deletedAt}
		eventRepo.On("GetByID", ctx, int32(10), true).Return(e, nil)

		got, err := svc.GetEvent(ctx, adminActor(), 10, true)
		require.NoError(t, err)
		assert.NotNil(t, got.DeletedAt)
		eventRepo.AssertExpectations(t)
	})

	t.Run("member cannot opt into deleted events", func(t *testing.T) {
		eventRepo := new(MockEventRepo)
		svc := newEventService(eventRepo, new(MockPushService))

		eventRepo.On("GetByID", ctx, int32(10), false).Return(nil, domain.ErrNotFound)

		_, err := svc.GetEvent(ctx, memberActor(), 10, true)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		eventRepo.AssertExpectations(t)
	})
}

func TestEventService_Transition(t *testing.T) {
	ctx := context.Background()

	t.Run("publish pushes a notification", func(t *testing.T) {
		eventRepo := new(MockEventRepo)
		push := new(MockPushService)
		svc := newEventService(eventRepo, push)

		e := &domain.Event{ID: 10, OrgID: 5, Status: domain.EventStatusDraft}
		eventRepo.On("GetByID", ctx, int32(10), false).Return(e, nil)
		eventRepo.On("UpdateStatus", ctx, int32(10), domain.EventStatusPublished).Return(nil)
		push.On("EventPublished", ctx, e).Return(nil)

		got, err := svc.Transition(ctx, orgAdminActor(5), 10, domain.EventStatusPublished)
		require.NoError(t, err)
		assert.Equal(t, domain.EventStatusPublished, got.Status)
		push.AssertExpectations(t)
	})

	t.Run("cancellation emails checked-in attendees", func(t *testing.T) {
		eventRepo := new(MockEventRepo)
		attRepo := new(MockAttendanceRepo)
		userRepo := new(MockUserRepo)
		push := new(MockPushService)
		emailSvc := new(MockEmailService)
		svc := NewEventService(eventRepo, attRepo, userRepo, new(MockTokenManager), push, emailSvc, 30*time.Minute)

		e := &domain.Event{ID: 10, OrgID: 5, Title: "Chapter Meeting", Status: domain.EventStatusPublished}
		eventRepo.On("GetByID", ctx, int32(10), false).Return(e, nil)
		eventRepo.On("UpdateStatus", ctx, int32(10), domain.EventStatusCancelled).Return(nil)
		push.On("EventCancelled", ctx, e).Return(assert.AnError)
		attRepo.On("ListByEvent", ctx, int32(10)).Return([]domain.Attendance{{ID: 1, EventID: 10, UserID: 9}}, nil)
		userRepo.On("GetByID", ctx, int32(9)).Return(&domain.User{ID: 9, Email: "u@example.com", Name: "U"}, nil)
		emailSvc.On("SendEventCancelledNotice", ctx, "u@example.com", "U", "Chapter Meeting", e.EventDate).Return(nil)

		_, err := svc.Transition(ctx, adminActor(), 10, domain.EventStatusCancelled)
		assert.NoError(t, err)
		emailSvc.AssertExpectations(t)
	})

	t.Run("illegal transition is a conflict", func(t *testing.T) {
		eventRepo := new(MockEventRepo)
		svc := newEventService(eventRepo, new(MockPushService))

		e := &domain.Event{ID: 10, OrgID: 5, Status: domain.EventStatusCompleted}
		eventRepo.On("GetByID", ctx, int32(10), false).Return(e, nil)

		_, err := svc.Transition(ctx, adminActor(), 10, domain.EventStatusPublished)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("cancelled returns to draft", func(t *testing.T) {
		eventRepo := new(MockEventRepo)
		svc := newEventService(eventRepo, new(MockPushService))

		e := &domain.Event{ID: 10, OrgID: 5, Status: domain.EventStatusCancelled}
		eventRepo.On("GetByID", ctx, int32(10), false).Return(e, nil)
		eventRepo.On("UpdateStatus", ctx, int32(10), domain.EventStatusDraft).Return(nil)

		got, err := svc.Transition(ctx, adminActor(), 10, domain.EventStatusDraft)
		require.NoError(t, err)
		assert.Equal(t, domain.EventStatusDraft, got.Status)
	})

	t.Run("creator may not transition", func(t *testing.T) {
		eventRepo := new(MockEventRepo)
		svc := newEventService(eventRepo, new(MockPushService))

		e := &domain.Event{ID: 10, OrgID: 5, Status: domain.EventStatusDraft, CreatedBy: 3}
		eventRepo.On("GetByID", ctx, int32(10), false).Return(e, nil)

		_, err := svc.Transition(ctx, memberActor(), 10, domain.EventStatusPublished)
		assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	})
}

func TestEventService_UpdateEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("schedule edit of ongoing event requires admin", func(t *testing.T) {
		eventRepo := new(MockEventRepo)
		svc := newEventService(eventRepo, new(MockPushService))

		e := &domain.Event{ID: 10, OrgID: 5, Status: domain.EventStatusOngoing, StartTime: "18:00", EndTime: "20:00", EventDate: time.Now().UTC()}
		eventRepo.On("GetByID", ctx, int32(10), false).Return(e, nil)

		start := "17:00"
		_, err := svc.UpdateEvent(ctx, orgAdminActor(5), 10, UpdateEventInput{StartTime: &start})
		assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	})

	t.Run("non-schedule edit of ongoing event allowed for org_admin", func(t *testing.T) {
		eventRepo := new(MockEventRepo)
		svc := newEventService(eventRepo, new(MockPushService))

		e := &domain.Event{ID: 10, OrgID: 5, Status: domain.EventStatusOngoing, StartTime: "18:00", EndTime: "20:00", EventDate: time.Now().UTC()}
		eventRepo.On("GetByID", ctx, int32(10), false).Return(e, nil)
		eventRepo.On("Update", ctx, e).Return(nil)

		title := "Renamed"
		got, err := svc.UpdateEvent(ctx, orgAdminActor(5), 10, UpdateEventInput{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Title)
	})

	t.Run("past date accepted on existing event", func(t *testing.T) {
		eventRepo := new(MockEventRepo)
		svc := newEventService(eventRepo, new(MockPushService))

		e := &domain.Event{ID: 10, OrgID: 5, Status: domain.EventStatusDraft, StartTime: "18:00", EndTime: "20:00", EventDate: time.Now().UTC()}
		eventRepo.On("GetByID", ctx, int32(10), false).Return(e, nil)
		eventRepo.On("Update", ctx, e).Return(nil)

		past := "2020-01-15"
		_, err := svc.UpdateEvent(ctx, adminActor(), 10, UpdateEventInput{EventDate: &past})
		assert.NoError(t, err)
	})
}

func TestEventService_DeleteEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("soft delete", func(t *testing.T) {
		eventRepo := new(MockEventRepo)
		svc := newEventService(eventRepo, new(MockPushService))

		e := &domain.Event{ID: 10, OrgID: 5, Status: domain.EventStatusDraft}
		eventRepo.On("GetByID", ctx, int32(10), false).Return(e, nil)
		eventRepo.On("SoftDelete", ctx, int32(10), mock.AnythingOfType("time.Time")).Return(nil)

		assert.NoError(t, svc.DeleteEvent(ctx, orgAdminActor(5), 10, false))
		eventRepo.AssertExpectations(t)
	})

	t.Run("permanent delete denied below admin", func(t *testing.T) {
		svc := newEventService(new(MockEventRepo), new(MockPushService))
		err := svc.DeleteEvent(ctx, orgAdminActor(5), 10, true)
		assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	})

	t.Run("permanent delete requires prior soft delete", func(t *testing.T) {
		eventRepo := new(MockEventRepo)
		svc := newEventService(eventRepo, new(MockPushService))

		e := &domain.Event{ID: 10, OrgID: 5, Status: domain.EventStatusDraft}
		eventRepo.On("GetByID", ctx, int32(10), true).Return(e, nil)

		err := svc.DeleteEvent(ctx, adminActor(), 10, true)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("permanent delete of soft-deleted event", func(t *testing.T) {
		eventRepo := new(MockEventRepo)
		svc := newEventService(eventRepo, new(MockPushService))

		deletedAt := time.Now().UTC()
		e := &domain.Event{ID: 10, OrgID: 5, DeletedAt: &deletedAt}
		eventRepo.On("GetByID", ctx, int32(10), true).Return(e, nil)
		eventRepo.On("HardDelete", ctx, int32(10)).Return(nil)

		assert.NoError(t, svc.DeleteEvent(ctx, adminActor(), 10, true))
		eventRepo.AssertExpectations(t)
	})
}

func TestEventService_CheckInToken(t *testing.T) {
	ctx := context.Background()

	t.Run("issued for published events", func(t *testing.T) {
		eventRepo := new(MockEventRepo)
		tokenMgr := new(MockTokenManager)
		svc := NewEventService(eventRepo, new(MockAttendanceRepo), new(MockUserRepo), tokenMgr, new(MockPushService), new(MockEmailService), 30*time.Minute)

		e := &domain.Event{ID: 10, OrgID: 5, Status: domain.EventStatusPublished}
		eventRepo.On("GetByID", ctx, int32(10), false).Return(e, nil)
		tokenMgr.On("GenerateCheckInToken", int32(10), 30*time.Minute).Return("signed-token", nil)

		token, err := svc.CheckInToken(ctx, orgAdminActor(5), 10)
		require.NoError(t, err)
		assert.Equal(t, "signed-token", token)
	})

	t.Run("refused for drafts", func(t *testing.T) {
		eventRepo := new(MockEventRepo)
		svc := newEventService(eventRepo, new(MockPushService))

		e := &domain.Event{ID: 10, OrgID: 5, Status: domain.EventStatusDraft}
		eventRepo.On("GetByID", ctx, int32(10), false).Return(e, nil)

		_, err := svc.CheckInToken(ctx, orgAdminActor(5), 10)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}
