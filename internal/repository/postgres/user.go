package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"acetrack-backend/internal/domain"
	"acetrack-backend/internal/repository"
)

type userRepository struct {
	db dbtx
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, email, password_hash, role, status, created_on, updated_on`

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (name, email, password_hash, role, status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	now := time.Now().UTC()
	u.CreatedOn = now
	u.UpdatedOn = now
	err := r.db.QueryRowContext(ctx, query, u.Name, u.Email, u.PasswordHash, u.Role, u.Status, u.CreatedOn, u.UpdatedOn).Scan(&u.ID)
	return translateErr(err)
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	u := &domain.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Status, &u.CreatedOn, &u.UpdatedOn)
	if err != nil {
		return nil, translateErr(err)
	}
	return u, nil
}

// GetByEmail returns (nil, nil) when no user carries the email.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u := &domain.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	err := r.db.QueryRowContext(ctx, query, email).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Status, &u.CreatedOn, &u.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translateErr(err)
	}
	return u, nil
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	query := `UPDATE users SET name=$1, email=$2, role=$3, status=$4, updated_on=$5 WHERE id=$6`
	u.UpdatedOn = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, query, u.Name, u.Email, u.Role, u.Status, u.UpdatedOn, u.ID)
	return translateErr(err)
}

func (r *userRepository) UpdateRole(ctx context.Context, userID int32, role domain.Role) error {
	query := `UPDATE users SET role=$1, updated_on=$2 WHERE id=$3`
	_, err := r.db.ExecContext(ctx, query, role, time.Now().UTC(), userID)
	return translateErr(err)
}
