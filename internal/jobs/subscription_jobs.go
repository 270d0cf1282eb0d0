package jobs

import (
	"context"
	"time"

	"acetrack-backend/internal/logger"
)

// expiryReminderWindow is how far ahead of the end date the reminder
// email goes out.
const expiryReminderWindow = 7 * 24 * time.Hour

// MarkExpiredSubscriptions sweeps active subscriptions whose end date
// has passed and moves them to expired
func (jr *JobRunner) MarkExpiredSubscriptions() {
	jr.runWithRecovery("MarkExpiredSubscriptions", func() {
		ctx := context.Background()

		count, err := jr.store.MarkExpired(ctx, time.Now().UTC())
		if err != nil {
			logger.Error("Failed to mark expired subscriptions", "error", err)
			return
		}

		logger.Info("Marked expired subscriptions", "count", count)
	})
}

// SendExpiryReminders emails each organization's admin when their
// subscription ends within the reminder window
func (jr *JobRunner) SendExpiryReminders() {
	jr.runWithRecovery("SendExpiryReminders", func() {
		ctx := context.Background()
		now := time.Now().UTC()

		subs, err := jr.store.ListExpiringBetween(ctx, now, now.Add(expiryReminderWindow))
		if err != nil {
			logger.Error("Failed to list expiring subscriptions", "error", err)
			return
		}

		sent := 0
		for _, sub := range subs {
			org, err := jr.store.OrganizationRepository.GetByID(ctx, sub.OrgID)
			if err != nil {
				logger.Error("Failed to load organization for expiring subscription",
					"subscription_id", sub.ID,
					"org_id", sub.OrgID,
					"error", err)
				continue
			}
			admin, err := jr.store.UserRepository.GetByID(ctx, org.AdminUserID)
			if err != nil {
				logger.Error("Failed to load admin for expiring subscription",
					"subscription_id", sub.ID,
					"org_id", org.ID,
					"error", err)
				continue
			}

			if err := jr.services.Email.SendSubscriptionExpiryReminder(ctx, admin.Email, org.Name, sub.EndDate); err != nil {
				logger.Error("Failed to send expiry reminder",
					"subscription_id", sub.ID,
					"org_id", org.ID,
					"error", err)
				continue
			}
			sent++
		}

		logger.Info("Sent subscription expiry reminders", "expiring", len(subs), "sent", sent)
	})
}
