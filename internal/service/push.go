package service

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"acetrack-backend/internal/domain"
)

// fcmPushService fans event and check-in notifications out over
// Firebase Cloud Messaging topics. Members subscribe to "org-<id>",
// each user additionally to "user-<id>".
type fcmPushService struct {
	client *messaging.Client
}

func NewPushService(ctx context.Context, credentialsFile string) (PushService, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize fcm client: %w", err)
	}
	return &fcmPushService{client: client}, nil
}

func (s *fcmPushService) EventPublished(ctx context.Context, e *domain.Event) error {
	_, err := s.client.Send(ctx, &messaging.Message{
		Topic: fmt.Sprintf("org-%d", e.OrgID),
		Notification: &messaging.Notification{
			Title: "New event: " + e.Title,
			Body:  fmt.Sprintf("%s at %s, %s", e.EventDate.Format("Jan 2"), e.StartTime, e.Location),
		},
		Data: map[string]string{
			"type":     "event_published",
			"event_id": fmt.Sprintf("%d", e.ID),
		},
	})
	return err
}

func (s *fcmPushService) EventCancelled(ctx context.Context, e *domain.Event) error {
	_, err := s.client.Send(ctx, &messaging.Message{
		Topic: fmt.Sprintf("org-%d", e.OrgID),
		Notification: &messaging.Notification{
			Title: "Event cancelled: " + e.Title,
			Body:  fmt.Sprintf("The event on %s has been cancelled", e.EventDate.Format("Jan 2")),
		},
		Data: map[string]string{
			"type":     "event_cancelled",
			"event_id": fmt.Sprintf("%d", e.ID),
		},
	})
	return err
}

func (s *fcmPushService) EventReminder(ctx context.Context, e *domain.Event) error {
	_, err := s.client.Send(ctx, &messaging.Message{
		Topic: fmt.Sprintf("org-%d", e.OrgID),
		Notification: &messaging.Notification{
			Title: "Today: " + e.Title,
			Body:  fmt.Sprintf("Starts at %s, %s", e.StartTime, e.Location),
		},
		Data: map[string]string{
			"type":     "event_reminder",
			"event_id": fmt.Sprintf("%d", e.ID),
		},
	})
	return err
}

func (s *fcmPushService) CheckInConfirmed(ctx context.Context, a *domain.Attendance, e *domain.Event) error {
	_, err := s.client.Send(ctx, &messaging.Message{
		Topic: fmt.Sprintf("user-%d", a.UserID),
		Notification: &messaging.Notification{
			Title: "Checked in",
			Body:  fmt.Sprintf("You are checked in to %s (%s)", e.Title, a.Status),
		},
		Data: map[string]string{
			"type":     "check_in_confirmed",
			"event_id": fmt.Sprintf("%d", a.EventID),
			"status":   string(a.Status),
		},
	})
	return err
}

// noopPushService stands in when no firebase credentials are
// configured, e.g. in development and tests.
type noopPushService struct{}

func NewNoopPushService() PushService {
	return noopPushService{}
}

func (noopPushService) EventPublished(context.Context, *domain.Event) error { return nil }
func (noopPushService) EventCancelled(context.Context, *domain.Event) error { return nil }
func (noopPushService) EventReminder(context.Context, *domain.Event) error  { return nil }
func (noopPushService) CheckInConfirmed(context.Context, *domain.Attendance, *domain.Event) error {
	return nil
}
