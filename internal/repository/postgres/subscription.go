package postgres

import (
	"context"
	"database/sql"
	"time"

	"acetrack-backend/internal/authz"
	"acetrack-backend/internal/domain"
	"acetrack-backend/internal/repository"
)

type subscriptionRepository struct {
	db dbtx
}

func NewSubscriptionRepository(db *sql.DB) repository.SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

const subscriptionColumns = `id, org_id, duration, start_date, end_date, status, amount_cents,
	COALESCE(payment_method, ''), COALESCE(receipt_ref, ''), verified_by, verified_at,
	COALESCE(notes, ''), created_on, updated_on`

func scanSubscription(row interface{ Scan(...any) error }) (*domain.Subscription, error) {
	s := &domain.Subscription{}
	var verifiedBy sql.NullInt32
	var verifiedAt sql.NullTime
	err := row.Scan(&s.ID, &s.OrgID, &s.Duration, &s.StartDate, &s.EndDate, &s.Status, &s.AmountCents,
		&s.PaymentMethod, &s.ReceiptRef, &verifiedBy, &verifiedAt, &s.Notes, &s.CreatedOn, &s.UpdatedOn)
	if err != nil {
		return nil, err
	}
	if verifiedBy.Valid {
		s.VerifiedBy = &verifiedBy.Int32
	}
	if verifiedAt.Valid {
		s.VerifiedAt = &verifiedAt.Time
	}
	return s, nil
}

func (r *subscriptionRepository) Create(ctx context.Context, s *domain.Subscription) error {
	query := `INSERT INTO subscriptions (org_id, duration, start_date, end_date, status, amount_cents, payment_method, receipt_ref, notes, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), $10, $11) RETURNING id`
	now := time.Now().UTC()
	s.CreatedOn = now
	s.UpdatedOn = now
	err := r.db.QueryRowContext(ctx, query, s.OrgID, s.Duration, s.StartDate, s.EndDate, s.Status,
		s.AmountCents, s.PaymentMethod, s.ReceiptRef, s.Notes, s.CreatedOn, s.UpdatedOn).Scan(&s.ID)
	return translateErr(err)
}

func (r *subscriptionRepository) GetByID(ctx context.Context, id int32) (*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`
	s, err := scanSubscription(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateErr(err)
	}
	return s, nil
}

func (r *subscriptionRepository) List(ctx context.Context, scope authz.SubscriptionScope) ([]domain.Subscription, error) {
	if scope.None {
		return nil, nil
	}
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions`
	var args []any
	if scope.OrgID != nil {
		query += ` WHERE org_id = $1`
		args = append(args, *scope.OrgID)
	}
	query += ` ORDER BY start_date DESC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()

	var subs []domain.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *s)
	}
	return subs, rows.Err()
}

func (r *subscriptionRepository) Update(ctx context.Context, s *domain.Subscription) error {
	query := `UPDATE subscriptions SET duration=$1, start_date=$2, end_date=$3, status=$4, amount_cents=$5,
	              payment_method=NULLIF($6, ''), receipt_ref=NULLIF($7, ''), verified_by=$8, verified_at=$9,
	              notes=$10, updated_on=$11
	          WHERE id=$12`
	s.UpdatedOn = time.Now().UTC()
	var verifiedBy any
	if s.VerifiedBy != nil {
		verifiedBy = *s.VerifiedBy
	}
	var verifiedAt any
	if s.VerifiedAt != nil {
		verifiedAt = *s.VerifiedAt
	}
	_, err := r.db.ExecContext(ctx, query, s.Duration, s.StartDate, s.EndDate, s.Status, s.AmountCents,
		s.PaymentMethod, s.ReceiptRef, verifiedBy, verifiedAt, s.Notes, s.UpdatedOn, s.ID)
	return translateErr(err)
}

func (r *subscriptionRepository) HasActiveOrPending(ctx context.Context, orgID int32) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM subscriptions WHERE org_id = $1 AND status IN ($2, $3))`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, orgID, domain.SubscriptionStatusActive, domain.SubscriptionStatusPending).Scan(&exists)
	if err != nil {
		return false, translateErr(err)
	}
	return exists, nil
}

// MarkExpired is the nightly sweep that flips active subscriptions past
// their end date to expired.
func (r *subscriptionRepository) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `UPDATE subscriptions SET status=$1, updated_on=$2 WHERE status=$3 AND end_date <= $2`
	res, err := r.db.ExecContext(ctx, query, domain.SubscriptionStatusExpired, now, domain.SubscriptionStatusActive)
	if err != nil {
		return 0, translateErr(err)
	}
	return res.RowsAffected()
}

func (r *subscriptionRepository) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
	          WHERE status = $1 AND end_date > $2 AND end_date <= $3
	          ORDER BY end_date`
	rows, err := r.db.QueryContext(ctx, query, domain.SubscriptionStatusActive, from, to)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()

	var subs []domain.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *s)
	}
	return subs, rows.Err()
}
