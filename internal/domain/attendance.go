package domain

import "time"

type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
	AttendanceStatusLate    AttendanceStatus = "late"
)

type CheckInMethod string

const (
	CheckInMethodQRCode CheckInMethod = "qr_code"
	CheckInMethodManual CheckInMethod = "manual"
)

// Attendance records one user per event. Created on first check-in,
// amended with the check-out timestamp later.
type Attendance struct {
	ID           int32            `json:"id"`
	EventID      int32            `json:"event_id"`
	UserID       int32            `json:"user_id"`
	CheckInTime  time.Time        `json:"check_in_time"`
	CheckOutTime *time.Time       `json:"check_out_time,omitempty"`
	Status       AttendanceStatus `json:"status"`
	Method       CheckInMethod    `json:"method"`
	Notes        string           `json:"notes,omitempty"`
	UserAgent    string           `json:"user_agent,omitempty"`
	Location     string           `json:"location,omitempty"`
}

// AttendanceSummary aggregates per-event counts for reporting.
type AttendanceSummary struct {
	EventID int32 `json:"event_id"`
	Present int32 `json:"present"`
	Late    int32 `json:"late"`
	Absent  int32 `json:"absent"`
}
