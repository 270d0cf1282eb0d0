package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"acetrack-backend/internal/domain"
	"acetrack-backend/internal/repository"

	"github.com/lib/pq"
)

// dbtx abstracts *sql.DB and *sql.Tx so every repository can run inside
// ExecTx unchanged.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.OrganizationRepository
	repository.MemberRepository
	repository.EventRepository
	repository.SubscriptionRepository
	repository.AttendanceRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		UserRepository:         NewUserRepository(db),
		OrganizationRepository: NewOrganizationRepository(db),
		MemberRepository:       NewMemberRepository(db),
		EventRepository:        NewEventRepository(db),
		SubscriptionRepository: NewSubscriptionRepository(db),
		AttendanceRepository:   NewAttendanceRepository(db),
	}
}

// ExecTx runs fn against repositories bound to a single transaction.
// Used for the organization founding flow, which writes four entities.
func (s *Store) ExecTx(ctx context.Context, fn func(repository.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	repos := repository.Repositories{
		Users:         &userRepository{db: tx},
		Orgs:          &organizationRepository{db: tx},
		Members:       &memberRepository{db: tx},
		Events:        &eventRepository{db: tx},
		Subscriptions: &subscriptionRepository{db: tx},
		Attendance:    &attendanceRepository{db: tx},
	}
	if err := fn(repos); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx error: %v, rollback error: %v", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

// translateErr folds driver errors into the domain taxonomy: missing
// rows become NotFound, unique-index violations become Conflict.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%w: %s", domain.ErrConflict, pqErr.Constraint)
	}
	return err
}
