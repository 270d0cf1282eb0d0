package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"acetrack-backend/internal/authz"
	"acetrack-backend/internal/domain"
	"acetrack-backend/internal/repository"
)

type memberRepository struct {
	db dbtx
}

func NewMemberRepository(db *sql.DB) repository.MemberRepository {
	return &memberRepository{db: db}
}

const memberColumns = `id, org_id, user_id, role, status, joined_on, COALESCE(notes, '')`

func (r *memberRepository) Create(ctx context.Context, m *domain.Member) error {
	query := `INSERT INTO org_members (org_id, user_id, role, status, joined_on, notes)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if m.JoinedOn.IsZero() {
		m.JoinedOn = time.Now().UTC()
	}
	err := r.db.QueryRowContext(ctx, query, m.OrgID, m.UserID, m.Role, m.Status, m.JoinedOn, m.Notes).Scan(&m.ID)
	return translateErr(err)
}

func (r *memberRepository) GetByID(ctx context.Context, id int32) (*domain.Member, error) {
	m := &domain.Member{}
	query := `SELECT ` + memberColumns + ` FROM org_members WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&m.ID, &m.OrgID, &m.UserID, &m.Role, &m.Status, &m.JoinedOn, &m.Notes)
	if err != nil {
		return nil, translateErr(err)
	}
	return m, nil
}

// GetByOrgAndUser returns (nil, nil) when the pair has no record.
func (r *memberRepository) GetByOrgAndUser(ctx context.Context, orgID, userID int32) (*domain.Member, error) {
	m := &domain.Member{}
	query := `SELECT ` + memberColumns + ` FROM org_members WHERE org_id = $1 AND user_id = $2`
	err := r.db.QueryRowContext(ctx, query, orgID, userID).Scan(&m.ID, &m.OrgID, &m.UserID, &m.Role, &m.Status, &m.JoinedOn, &m.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translateErr(err)
	}
	return m, nil
}

func (r *memberRepository) List(ctx context.Context, scope authz.MemberScope) ([]domain.Member, error) {
	if scope.None {
		return nil, nil
	}
	query := `SELECT ` + memberColumns + ` FROM org_members`
	var args []any
	if scope.OrgID != nil {
		query += ` WHERE org_id = $1`
		args = append(args, *scope.OrgID)
	}
	query += ` ORDER BY joined_on`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(&m.ID, &m.OrgID, &m.UserID, &m.Role, &m.Status, &m.JoinedOn, &m.Notes); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *memberRepository) ListByUser(ctx context.Context, userID int32) ([]domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM org_members WHERE user_id = $1 ORDER BY joined_on`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(&m.ID, &m.OrgID, &m.UserID, &m.Role, &m.Status, &m.JoinedOn, &m.Notes); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *memberRepository) Update(ctx context.Context, m *domain.Member) error {
	query := `UPDATE org_members SET role=$1, status=$2, notes=$3 WHERE id=$4`
	_, err := r.db.ExecContext(ctx, query, m.Role, m.Status, m.Notes, m.ID)
	return translateErr(err)
}

func (r *memberRepository) Delete(ctx context.Context, id int32) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM org_members WHERE id = $1`, id)
	return translateErr(err)
}

func (r *memberRepository) CountActiveByOrg(ctx context.Context, orgID int32) (int32, error) {
	query := `SELECT COUNT(*) FROM org_members WHERE org_id = $1 AND status = $2`
	var count int32
	err := r.db.QueryRowContext(ctx, query, orgID, domain.MemberStatusActive).Scan(&count)
	if err != nil {
		return 0, translateErr(err)
	}
	return count, nil
}

// DeactivateByOrg is the cascade step of an organization soft delete.
func (r *memberRepository) DeactivateByOrg(ctx context.Context, orgID int32) error {
	query := `UPDATE org_members SET status=$1 WHERE org_id=$2`
	_, err := r.db.ExecContext(ctx, query, domain.MemberStatusInactive, orgID)
	return translateErr(err)
}
