package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"acetrack-backend/internal/domain"
)

type emailService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &emailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *emailService) send(_ context.Context, to, toName, subject, plainText string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, to)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, "")

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

func (s *emailService) SendMembershipDecision(ctx context.Context, email, name, orgName string, approved bool) error {
	subject := fmt.Sprintf("Membership update - %s", orgName)
	var body string
	if approved {
		body = fmt.Sprintf("Hello %s,\n\nYour request to join %s has been approved. Welcome aboard!\n\nThe AceTrack Team", name, orgName)
	} else {
		body = fmt.Sprintf("Hello %s,\n\nYour request to join %s was not approved.\n\nThe AceTrack Team", name, orgName)
	}
	return s.send(ctx, email, name, subject, body)
}

func (s *emailService) SendSubscriptionReceipt(ctx context.Context, email, orgName string, sub *domain.Subscription) error {
	subject := fmt.Sprintf("Subscription activated - %s", orgName)
	body := fmt.Sprintf("Your %s subscription for %s is now active.\n\nReceipt: %s\nValid: %s through %s\nAmount: $%.2f\n\nThe AceTrack Team",
		sub.Duration, orgName, sub.ReceiptRef,
		sub.StartDate.Format("2006-01-02"), sub.EndDate.Format("2006-01-02"),
		float64(sub.AmountCents)/100)
	return s.send(ctx, email, orgName, subject, body)
}

func (s *emailService) SendSubscriptionExpiryReminder(ctx context.Context, email, orgName string, endDate time.Time) error {
	subject := fmt.Sprintf("Subscription expiring soon - %s", orgName)
	body := fmt.Sprintf("The subscription for %s expires on %s. Renew to keep attendance tracking available for your members.\n\nThe AceTrack Team",
		orgName, endDate.Format("2006-01-02"))
	return s.send(ctx, email, orgName, subject, body)
}

func (s *emailService) SendEventCancelledNotice(ctx context.Context, email, name, eventTitle string, eventDate time.Time) error {
	subject := fmt.Sprintf("Event cancelled: %s", eventTitle)
	body := fmt.Sprintf("Hello %s,\n\nThe event %q scheduled for %s has been cancelled.\n\nThe AceTrack Team",
		name, eventTitle, eventDate.Format("2006-01-02"))
	return s.send(ctx, email, name, subject, body)
}
