package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"acetrack-backend/internal/authz"
	"acetrack-backend/internal/domain"
	"acetrack-backend/internal/repository"
)

type eventRepository struct {
	db dbtx
}

func NewEventRepository(db *sql.DB) repository.EventRepository {
	return &eventRepository{db: db}
}

const eventColumns = `id, org_id, title, COALESCE(description, ''), event_date, COALESCE(banner_url, ''),
	start_time, end_time,
	COALESCE(check_in_start_time, ''), COALESCE(check_in_end_time, ''),
	COALESCE(check_out_start_time, ''), COALESCE(check_out_end_time, ''),
	COALESCE(location, ''), status, mandatory, created_by, deleted_at, created_on, updated_on`

func scanEvent(row interface{ Scan(...any) error }) (*domain.Event, error) {
	e := &domain.Event{}
	var deletedAt sql.NullTime
	err := row.Scan(&e.ID, &e.OrgID, &e.Title, &e.Description, &e.EventDate, &e.BannerURL,
		&e.StartTime, &e.EndTime,
		&e.CheckInStartTime, &e.CheckInEndTime,
		&e.CheckOutStartTime, &e.CheckOutEndTime,
		&e.Location, &e.Status, &e.Mandatory, &e.CreatedBy, &deletedAt, &e.CreatedOn, &e.UpdatedOn)
	if err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		e.DeletedAt = &deletedAt.Time
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `INSERT INTO events (org_id, title, description, event_date, banner_url,
	              start_time, end_time, check_in_start_time, check_in_end_time,
	              check_out_start_time, check_out_end_time, location, status, mandatory,
	              created_by, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''), $12, $13, $14, $15, $16, $17)
	          RETURNING id`
	now := time.Now().UTC()
	e.CreatedOn = now
	e.UpdatedOn = now
	err := r.db.QueryRowContext(ctx, query, e.OrgID, e.Title, e.Description, e.EventDate, e.BannerURL,
		e.StartTime, e.EndTime, e.CheckInStartTime, e.CheckInEndTime,
		e.CheckOutStartTime, e.CheckOutEndTime, e.Location, e.Status, e.Mandatory,
		e.CreatedBy, e.CreatedOn, e.UpdatedOn).Scan(&e.ID)
	return translateErr(err)
}

func (r *eventRepository) GetByID(ctx context.Context, id int32, includeDeleted bool) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	e, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateErr(err)
	}
	return e, nil
}

// List applies the authorization scope first; the caller-supplied org
// filter is only consulted when the scope does not already pin an org.
func (r *eventRepository) List(ctx context.Context, scope authz.EventScope, orgFilter *int32) ([]domain.Event, error) {
	if scope.None {
		return nil, nil
	}
	query := `SELECT ` + eventColumns + ` FROM events`
	var conds []string
	var args []any
	if !scope.IncludeDeleted {
		conds = append(conds, "deleted_at IS NULL")
	}
	orgID := scope.OrgID
	if orgID == nil {
		orgID = orgFilter
	}
	if orgID != nil {
		args = append(args, *orgID)
		conds = append(conds, fmt.Sprintf("org_id = $%d", len(args)))
	}
	if scope.Status != nil {
		args = append(args, *scope.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += ` ORDER BY event_date, start_time`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `UPDATE events SET title=$1, description=$2, event_date=$3, banner_url=$4,
	              start_time=$5, end_time=$6,
	              check_in_start_time=NULLIF($7, ''), check_in_end_time=NULLIF($8, ''),
	              check_out_start_time=NULLIF($9, ''), check_out_end_time=NULLIF($10, ''),
	              location=$11, mandatory=$12, updated_on=$13
	          WHERE id=$14 AND deleted_at IS NULL`
	e.UpdatedOn = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, query, e.Title, e.Description, e.EventDate, e.BannerURL,
		e.StartTime, e.EndTime, e.CheckInStartTime, e.CheckInEndTime,
		e.CheckOutStartTime, e.CheckOutEndTime, e.Location, e.Mandatory, e.UpdatedOn, e.ID)
	if err != nil {
		return translateErr(err)
	}
	return requireRow(res)
}

func (r *eventRepository) UpdateStatus(ctx context.Context, id int32, status domain.EventStatus) error {
	query := `UPDATE events SET status=$1, updated_on=$2 WHERE id=$3 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return translateErr(err)
	}
	return requireRow(res)
}

func (r *eventRepository) SoftDelete(ctx context.Context, id int32, at time.Time) error {
	query := `UPDATE events SET deleted_at=$1, updated_on=$1 WHERE id=$2 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return translateErr(err)
	}
	return requireRow(res)
}

func (r *eventRepository) Restore(ctx context.Context, id int32) error {
	query := `UPDATE events SET deleted_at=NULL, updated_on=$1 WHERE id=$2 AND deleted_at IS NOT NULL`
	res, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return translateErr(err)
	}
	return requireRow(res)
}

// HardDelete only removes rows that were already soft-deleted.
func (r *eventRepository) HardDelete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1 AND deleted_at IS NOT NULL`, id)
	if err != nil {
		return translateErr(err)
	}
	return requireRow(res)
}

func (r *eventRepository) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE deleted_at IS NOT NULL AND deleted_at < $1`, cutoff)
	if err != nil {
		return 0, translateErr(err)
	}
	return res.RowsAffected()
}

func (r *eventRepository) ListPublishedOn(ctx context.Context, date time.Time) ([]domain.Event, error) {
	// Stored event dates are midnight UTC; accept any time of day.
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	query := `SELECT ` + eventColumns + ` FROM events
	          WHERE deleted_at IS NULL AND status = $1 AND event_date = $2
	          ORDER BY start_time`
	rows, err := r.db.QueryContext(ctx, query, domain.EventStatusPublished, day)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// requireRow turns a zero-row mutation into NotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
