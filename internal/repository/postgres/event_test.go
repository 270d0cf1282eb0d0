package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acetrack-backend/internal/authz"
	"acetrack-backend/internal/domain"
)

var eventCols = []string{
	"id", "org_id", "title", "description", "event_date", "banner_url",
	"start_time", "end_time", "check_in_start_time", "check_in_end_time",
	"check_out_start_time", "check_out_end_time", "location", "status",
	"mandatory", "created_by", "deleted_at", "created_on", "updated_on",
}

func eventRow(id int32, status domain.EventStatus) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(eventCols).AddRow(
		id, int32(5), "Chapter Meeting", "", now, "",
		"18:00", "20:00", "", "", "", "", "Room 101", string(status),
		false, int32(2), nil, now, now,
	)
}

func TestEventRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewEventRepository(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM events WHERE id = \$1 AND deleted_at IS NULL`).
			WithArgs(int32(10)).
			WillReturnRows(eventRow(10, domain.EventStatusPublished))

		e, err := repo.GetByID(ctx, 10, false)
		require.NoError(t, err)
		assert.Equal(t, int32(10), e.ID)
		assert.Equal(t, domain.EventStatusPublished, e.Status)
		assert.Nil(t, e.DeletedAt)
	})

	t.Run("missing row reads as not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM events WHERE id = \$1 AND deleted_at IS NULL`).
			WithArgs(int32(99)).
			WillReturnRows(sqlmock.NewRows(eventCols))

		_, err := repo.GetByID(ctx, 99, false)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("include deleted drops the filter", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM events WHERE id = \$1$`).
			WithArgs(int32(10)).
			WillReturnRows(eventRow(10, domain.EventStatusDraft))

		_, err := repo.GetByID(ctx, 10, true)
		assert.NoError(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewEventRepository(db)

	mock.ExpectQuery(`INSERT INTO events`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int32(42)))

	e := &domain.Event{
		OrgID:     5,
		Title:     "Chapter Meeting",
		EventDate: time.Now().UTC(),
		StartTime: "18:00",
		EndTime:   "20:00",
		Status:    domain.EventStatusDraft,
		CreatedBy: 2,
	}
	require.NoError(t, repo.Create(context.Background(), e))
	assert.Equal(t, int32(42), e.ID)
	assert.False(t, e.CreatedOn.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_List(t *testing.T) {
	ctx := context.Background()

	t.Run("scope pins org and status", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewEventRepository(db)

		orgID := int32(5)
		published := domain.EventStatusPublished
		mock.ExpectQuery(`SELECT (.+) FROM events WHERE deleted_at IS NULL AND org_id = \$1 AND status = \$2 ORDER BY event_date, start_time`).
			WithArgs(orgID, published).
			WillReturnRows(eventRow(10, domain.EventStatusPublished))

		events, err := repo.List(ctx, authz.EventScope{OrgID: &orgID, Status: &published}, nil)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, int32(10), events[0].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("caller org filter cannot widen a pinned scope", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewEventRepository(db)

		scopeOrg := int32(5)
		foreignOrg := int32(9)
		mock.ExpectQuery(`SELECT (.+) FROM events WHERE deleted_at IS NULL AND org_id = \$1 ORDER BY event_date, start_time`).
			WithArgs(scopeOrg).
			WillReturnRows(eventRow(10, domain.EventStatusPublished))

		_, err = repo.List(ctx, authz.EventScope{OrgID: &scopeOrg}, &foreignOrg)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unpinned scope honors the caller org filter", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewEventRepository(db)

		orgFilter := int32(9)
		mock.ExpectQuery(`SELECT (.+) FROM events WHERE deleted_at IS NULL AND org_id = \$1 ORDER BY event_date, start_time`).
			WithArgs(orgFilter).
			WillReturnRows(eventRow(10, domain.EventStatusPublished))

		_, err = repo.List(ctx, authz.EventScope{}, &orgFilter)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("denied scope never touches the database", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewEventRepository(db)

		events, err := repo.List(ctx, authz.EventScope{None: true}, nil)
		require.NoError(t, err)
		assert.Empty(t, events)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_ListPublishedOn(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewEventRepository(db)

	// Event dates are stored at midnight UTC; a mid-morning clock must
	// still match the day's rows.
	at := time.Date(2026, 8, 31, 8, 0, 0, 0, time.UTC)
	midnight := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT (.+) FROM events WHERE deleted_at IS NULL AND status = \$1 AND event_date = \$2 ORDER BY start_time`).
		WithArgs(domain.EventStatusPublished, midnight).
		WillReturnRows(eventRow(10, domain.EventStatusPublished))

	events, err := repo.ListPublishedOn(context.Background(), at)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, int32(10), events[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_Mutations(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewEventRepository(db)
	ctx := context.Background()

	t.Run("status update of a missing event is not found", func(t *testing.T) {
		mock.ExpectExec(`UPDATE events SET status=\$1, updated_on=\$2 WHERE id=\$3 AND deleted_at IS NULL`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateStatus(ctx, 99, domain.EventStatusPublished)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("soft delete stamps deleted_at", func(t *testing.T) {
		at := time.Now().UTC()
		mock.ExpectExec(`UPDATE events SET deleted_at=\$1, updated_on=\$1 WHERE id=\$2 AND deleted_at IS NULL`).
			WithArgs(at, int32(10)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.SoftDelete(ctx, 10, at))
	})

	t.Run("hard delete only reaches soft-deleted rows", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM events WHERE id = \$1 AND deleted_at IS NOT NULL`).
			WithArgs(int32(10)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.HardDelete(ctx, 10)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("purge reports the row count", func(t *testing.T) {
		cutoff := time.Now().UTC().AddDate(0, 0, -90)
		mock.ExpectExec(`DELETE FROM events WHERE deleted_at IS NOT NULL AND deleted_at < \$1`).
			WithArgs(cutoff).
			WillReturnResult(sqlmock.NewResult(0, 3))

		n, err := repo.PurgeDeletedBefore(ctx, cutoff)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
