package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"acetrack-backend/internal/domain"
	"acetrack-backend/internal/repository"
)

type attendanceRepository struct {
	db dbtx
}

func NewAttendanceRepository(db *sql.DB) repository.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `id, event_id, user_id, check_in_time, check_out_time, status, method,
	COALESCE(notes, ''), COALESCE(user_agent, ''), COALESCE(location, '')`

func scanAttendance(row interface{ Scan(...any) error }) (*domain.Attendance, error) {
	a := &domain.Attendance{}
	var checkOut sql.NullTime
	err := row.Scan(&a.ID, &a.EventID, &a.UserID, &a.CheckInTime, &checkOut, &a.Status, &a.Method,
		&a.Notes, &a.UserAgent, &a.Location)
	if err != nil {
		return nil, err
	}
	if checkOut.Valid {
		a.CheckOutTime = &checkOut.Time
	}
	return a, nil
}

func (r *attendanceRepository) Create(ctx context.Context, a *domain.Attendance) error {
	query := `INSERT INTO attendance (event_id, user_id, check_in_time, status, method, notes, user_agent, location)
	          VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, '')) RETURNING id`
	if a.CheckInTime.IsZero() {
		a.CheckInTime = time.Now().UTC()
	}
	err := r.db.QueryRowContext(ctx, query, a.EventID, a.UserID, a.CheckInTime, a.Status, a.Method,
		a.Notes, a.UserAgent, a.Location).Scan(&a.ID)
	return translateErr(err)
}

// GetByEventAndUser returns (nil, nil) when the user never checked in.
func (r *attendanceRepository) GetByEventAndUser(ctx context.Context, eventID, userID int32) (*domain.Attendance, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance WHERE event_id = $1 AND user_id = $2`
	a, err := scanAttendance(r.db.QueryRowContext(ctx, query, eventID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translateErr(err)
	}
	return a, nil
}

func (r *attendanceRepository) Update(ctx context.Context, a *domain.Attendance) error {
	query := `UPDATE attendance SET check_out_time=$1, status=$2, notes=NULLIF($3, '') WHERE id=$4`
	var checkOut any
	if a.CheckOutTime != nil {
		checkOut = *a.CheckOutTime
	}
	_, err := r.db.ExecContext(ctx, query, checkOut, a.Status, a.Notes, a.ID)
	return translateErr(err)
}

func (r *attendanceRepository) ListByEvent(ctx context.Context, eventID int32) ([]domain.Attendance, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance WHERE event_id = $1 ORDER BY check_in_time`
	return r.list(ctx, query, eventID)
}

func (r *attendanceRepository) ListByUser(ctx context.Context, userID int32) ([]domain.Attendance, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance WHERE user_id = $1 ORDER BY check_in_time DESC`
	return r.list(ctx, query, userID)
}

func (r *attendanceRepository) list(ctx context.Context, query string, arg any) ([]domain.Attendance, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()

	var records []domain.Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *a)
	}
	return records, rows.Err()
}

func (r *attendanceRepository) SummaryByEvent(ctx context.Context, eventID int32) (*domain.AttendanceSummary, error) {
	query := `SELECT
	              COUNT(*) FILTER (WHERE status = $2),
	              COUNT(*) FILTER (WHERE status = $3),
	              COUNT(*) FILTER (WHERE status = $4)
	          FROM attendance WHERE event_id = $1`
	s := &domain.AttendanceSummary{EventID: eventID}
	err := r.db.QueryRowContext(ctx, query, eventID,
		domain.AttendanceStatusPresent, domain.AttendanceStatusLate, domain.AttendanceStatusAbsent).
		Scan(&s.Present, &s.Late, &s.Absent)
	if err != nil {
		return nil, translateErr(err)
	}
	return s, nil
}
