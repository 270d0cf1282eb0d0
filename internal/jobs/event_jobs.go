package jobs

import (
	"context"
	"time"

	"acetrack-backend/internal/logger"
)

// PurgeDeletedEvents permanently removes events that have been
// soft-deleted for longer than the retention window
func (jr *JobRunner) PurgeDeletedEvents() {
	jr.runWithRecovery("PurgeDeletedEvents", func() {
		ctx := context.Background()

		cutoff := time.Now().UTC().AddDate(0, 0, -jr.config.Retention.DeletedEventDays)
		count, err := jr.store.PurgeDeletedBefore(ctx, cutoff)
		if err != nil {
			logger.Error("Failed to purge deleted events", "error", err)
			return
		}

		logger.Info("Purged soft-deleted events", "count", count, "cutoff", cutoff)
	})
}

// SendEventReminders pushes a same-day reminder for every published
// event happening today
func (jr *JobRunner) SendEventReminders() {
	jr.runWithRecovery("SendEventReminders", func() {
		ctx := context.Background()

		events, err := jr.store.ListPublishedOn(ctx, time.Now().UTC())
		if err != nil {
			logger.Error("Failed to list today's events", "error", err)
			return
		}

		sent := 0
		for i := range events {
			if err := jr.services.Push.EventReminder(ctx, &events[i]); err != nil {
				logger.Error("Failed to send event reminder",
					"event_id", events[i].ID,
					"error", err)
				continue
			}
			sent++
		}

		logger.Info("Sent event reminders", "events", len(events), "sent", sent)
	})
}
