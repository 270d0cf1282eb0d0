package domain

import (
	"fmt"
	"time"
)

type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusOngoing   EventStatus = "ongoing"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

func ParseEventStatus(s string) (EventStatus, bool) {
	switch EventStatus(s) {
	case EventStatusDraft, EventStatusPublished, EventStatusOngoing, EventStatusCompleted, EventStatusCancelled:
		return EventStatus(s), true
	}
	return "", false
}

// eventTransitions is the full lifecycle table. Completed is terminal;
// a cancelled event can only be brought back to draft.
var eventTransitions = map[EventStatus][]EventStatus{
	EventStatusDraft:     {EventStatusPublished, EventStatusCancelled},
	EventStatusPublished: {EventStatusOngoing, EventStatusCancelled},
	EventStatusOngoing:   {EventStatusCompleted, EventStatusCancelled},
	EventStatusCompleted: {},
	EventStatusCancelled: {EventStatusDraft},
}

// CanTransitionTo reports whether target is reachable from s in one step.
func (s EventStatus) CanTransitionTo(target EventStatus) bool {
	for _, t := range eventTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the legal next statuses for s.
func AllowedTransitions(s EventStatus) []EventStatus {
	return eventTransitions[s]
}

type Event struct {
	ID                int32       `json:"id"`
	OrgID             int32       `json:"org_id"`
	Title             string      `json:"title"`
	Description       string      `json:"description"`
	EventDate         time.Time   `json:"event_date"` // date only, midnight UTC
	BannerURL         string      `json:"banner_url,omitempty"`
	StartTime         string      `json:"start_time"` // "HH:mm"
	EndTime           string      `json:"end_time"`
	CheckInStartTime  string      `json:"check_in_start_time,omitempty"`
	CheckInEndTime    string      `json:"check_in_end_time,omitempty"`
	CheckOutStartTime string      `json:"check_out_start_time,omitempty"`
	CheckOutEndTime   string      `json:"check_out_end_time,omitempty"`
	Location          string      `json:"location"`
	Status            EventStatus `json:"status"`
	Mandatory         bool        `json:"mandatory"`
	CreatedBy         int32       `json:"created_by"`
	DeletedAt         *time.Time  `json:"deleted_at,omitempty"`
	CreatedOn         time.Time   `json:"created_on"`
	UpdatedOn         time.Time   `json:"updated_on"`
}

func (e *Event) Deleted() bool {
	return e.DeletedAt != nil
}

// MinutesOfDay parses an "HH:mm" clock value into minutes since midnight.
func MinutesOfDay(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("%w: invalid time %q, expected HH:mm", ErrValidation, s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: invalid time %q, expected HH:mm", ErrValidation, s)
	}
	return h*60 + m, nil
}

// ValidateSchedule checks the time relationships of an event. Times are
// compared as minutes since midnight, so overnight events are not
// representable. The past-date rule applies only when isNew is set, with
// both dates truncated to midnight before comparing.
func (e *Event) ValidateSchedule(now time.Time, isNew bool) error {
	start, err := MinutesOfDay(e.StartTime)
	if err != nil {
		return err
	}
	end, err := MinutesOfDay(e.EndTime)
	if err != nil {
		return err
	}
	if end <= start {
		return fmt.Errorf("%w: end_time must be after start_time", ErrValidation)
	}

	var ciStart, ciEnd = -1, -1
	if e.CheckInStartTime != "" {
		if ciStart, err = MinutesOfDay(e.CheckInStartTime); err != nil {
			return err
		}
	}
	if e.CheckInEndTime != "" {
		if ciEnd, err = MinutesOfDay(e.CheckInEndTime); err != nil {
			return err
		}
	}
	if ciStart >= 0 && ciEnd >= 0 && ciEnd <= ciStart {
		return fmt.Errorf("%w: check_in_end_time must be after check_in_start_time", ErrValidation)
	}
	if ciStart >= 0 && ciStart > start {
		return fmt.Errorf("%w: check_in_start_time must not be after start_time", ErrValidation)
	}
	if ciEnd >= 0 && ciEnd < end {
		return fmt.Errorf("%w: check_in_end_time must not be before end_time", ErrValidation)
	}

	var coStart, coEnd = -1, -1
	if e.CheckOutStartTime != "" {
		if coStart, err = MinutesOfDay(e.CheckOutStartTime); err != nil {
			return err
		}
	}
	if e.CheckOutEndTime != "" {
		if coEnd, err = MinutesOfDay(e.CheckOutEndTime); err != nil {
			return err
		}
	}
	if coStart >= 0 && coEnd >= 0 && coEnd <= coStart {
		return fmt.Errorf("%w: check_out_end_time must be after check_out_start_time", ErrValidation)
	}
	if coStart >= 0 && coStart < start {
		return fmt.Errorf("%w: check_out_start_time must not be before start_time", ErrValidation)
	}
	if coEnd >= 0 && coEnd < end {
		return fmt.Errorf("%w: check_out_end_time must not be before end_time", ErrValidation)
	}

	if isNew {
		today := truncateToDay(now)
		if truncateToDay(e.EventDate).Before(today) {
			return fmt.Errorf("%w: event_date must not be in the past", ErrValidation)
		}
	}
	return nil
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
