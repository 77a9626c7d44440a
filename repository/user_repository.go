package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lostluggage/models"
	"lostluggage/utils"
)

type UserRepository struct {
	db *utils.DB
}

func NewUserRepository(db *utils.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user and returns it with its generated ID. A second account
// with the same email fails with ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if u.Role == "" {
		u.Role = models.RolePassenger
	}
	stmt := r.db.Rebind(`INSERT INTO users (name, email, password_hash, role) VALUES (?, ?, ?, ?) RETURNING id`)
	var id int64
	err := r.db.QueryRowContext(ctx, stmt, u.Name, u.Email, u.PasswordHash, string(u.Role)).Scan(&id)
	if err != nil {
		if utils.IsUniqueViolation(err) {
			return nil, fmt.Errorf("user %s: %w", u.Email, ErrDuplicate)
		}
		return nil, err
	}
	out := *u
	out.ID = id
	return &out, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, `SELECT id, name, email, password_hash, role FROM users WHERE id = ?`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT id, name, email, password_hash, role FROM users WHERE email = ?`, email)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var (
		u    models.User
		role string
	)
	err := r.db.QueryRowContext(ctx, r.db.Rebind(query), arg).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.Role = models.Role(role)
	return &u, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
