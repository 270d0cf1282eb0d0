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

type organizationRepository struct {
	db dbtx
}

func NewOrganizationRepository(db *sql.DB) repository.OrganizationRepository {
	return &organizationRepository{db: db}
}

const orgColumns = `id, name, COALESCE(description, ''), admin_user_id, status,
	allow_public_join, require_approval, max_members, created_on, updated_on`

func scanOrg(row interface{ Scan(...any) error }) (*domain.Organization, error) {
	o := &domain.Organization{}
	var maxMembers sql.NullInt32
	err := row.Scan(&o.ID, &o.Name, &o.Description, &o.AdminUserID, &o.Status,
		&o.Settings.AllowPublicJoin, &o.Settings.RequireApproval, &maxMembers, &o.CreatedOn, &o.UpdatedOn)
	if err != nil {
		return nil, err
	}
	if maxMembers.Valid {
		o.Settings.MaxMembers = &maxMembers.Int32
	}
	return o, nil
}

func (r *organizationRepository) Create(ctx context.Context, o *domain.Organization) error {
	query := `INSERT INTO orgs (name, description, admin_user_id, status, allow_public_join, require_approval, max_members, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	now := time.Now().UTC()
	o.CreatedOn = now
	o.UpdatedOn = now
	err := r.db.QueryRowContext(ctx, query, o.Name, o.Description, o.AdminUserID, o.Status,
		o.Settings.AllowPublicJoin, o.Settings.RequireApproval, o.Settings.MaxMembers, o.CreatedOn, o.UpdatedOn).Scan(&o.ID)
	return translateErr(err)
}

func (r *organizationRepository) GetByID(ctx context.Context, id int32) (*domain.Organization, error) {
	query := `SELECT ` + orgColumns + ` FROM orgs WHERE id = $1`
	o, err := scanOrg(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateErr(err)
	}
	return o, nil
}

// GetByName matches case-insensitively and returns (nil, nil) on no match.
func (r *organizationRepository) GetByName(ctx context.Context, name string) (*domain.Organization, error) {
	query := `SELECT ` + orgColumns + ` FROM orgs WHERE LOWER(name) = LOWER($1)`
	o, err := scanOrg(r.db.QueryRowContext(ctx, query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translateErr(err)
	}
	return o, nil
}

// GetByAdminUserID returns (nil, nil) when the user administers nothing.
func (r *organizationRepository) GetByAdminUserID(ctx context.Context, userID int32) (*domain.Organization, error) {
	query := `SELECT ` + orgColumns + ` FROM orgs WHERE admin_user_id = $1`
	o, err := scanOrg(r.db.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translateErr(err)
	}
	return o, nil
}

func (r *organizationRepository) List(ctx context.Context, scope authz.OrganizationScope) ([]domain.Organization, error) {
	query := `SELECT ` + orgColumns + ` FROM orgs`
	var args []any
	if scope.Status != nil {
		query += ` WHERE status = $1`
		args = append(args, *scope.Status)
	}
	query += ` ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()

	var orgs []domain.Organization
	for rows.Next() {
		o, err := scanOrg(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, *o)
	}
	return orgs, rows.Err()
}

func (r *organizationRepository) Update(ctx context.Context, o *domain.Organization) error {
	query := `UPDATE orgs SET name=$1, description=$2, status=$3, allow_public_join=$4, require_approval=$5, max_members=$6, updated_on=$7 WHERE id=$8`
	o.UpdatedOn = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, query, o.Name, o.Description, o.Status,
		o.Settings.AllowPublicJoin, o.Settings.RequireApproval, o.Settings.MaxMembers, o.UpdatedOn, o.ID)
	return translateErr(err)
}

func (r *organizationRepository) UpdateStatus(ctx context.Context, orgID int32, status domain.OrgStatus) error {
	query := `UPDATE orgs SET status=$1, updated_on=$2 WHERE id=$3`
	_, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), orgID)
	return translateErr(err)
}
