package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type UserRepository interface {
	CreateUser(ctx context.Context, u *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
}

const (
	insertFirstUser = `
		INSERT INTO users (email, name, password_hash, role, created_at)
		VALUES ($1, $2, $3,
			CASE WHEN EXISTS (SELECT 1 FROM users) THEN 'customer' ELSE 'admin' END,
			$4)
		RETURNING id, role`
	insertCustomer = `
		INSERT INTO users (email, name, password_hash, role, created_at)
		VALUES ($1, $2, $3, 'customer', $4)
		RETURNING id, role`
)

// errAdminTaken means a concurrent signup claimed the administrator role
// first; users_single_admin allows one admin row.
var errAdminTaken = errors.New("administrator already assigned")

// CreateUser inserts u. The very first user becomes the administrator, every
// later one a customer; the assigned role is written back to u.
func (r *Repository) CreateUser(ctx context.Context, u *domain.User) error {
	err := r.insertUser(ctx, u, insertFirstUser)
	if errors.Is(err, errAdminTaken) {
		err = r.insertUser(ctx, u, insertCustomer)
	}
	return err
}

func (r *Repository) insertUser(ctx context.Context, u *domain.User, query string) error {
	now := time.Now().UTC()
	return r.withTx(ctx, func(tx *sql.Tx) error {
		var role string
		err := tx.QueryRowContext(ctx, query, u.Email, u.Name, u.PasswordHash, now).Scan(&u.ID, &role)
		if err != nil {
			if isAdminViolation(err) {
				return errAdminTaken
			}
			if isUniqueViolation(err) {
				return fmt.Errorf("user %s: %w", u.Email, domain.ErrDuplicateUser)
			}
			return fmt.Errorf("could not create user: %w", err)
		}
		u.Role = domain.Role(role)
		u.CreatedAt = now
		return nil
	})
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, email, name, password_hash, role, created_at
		FROM users
		WHERE email = $1`
	return r.getUser(ctx, query, email)
}

func (r *Repository) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `
		SELECT id, email, name, password_hash, role, created_at
		FROM users
		WHERE id = $1`
	return r.getUser(ctx, query, id)
}

func (r *Repository) getUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	u := &domain.User{}
	var role string
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.PasswordHash,
		&role,
		&u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %v: %w", arg, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("could not get user: %w", err)
	}
	u.Role = domain.Role(role)
	return u, nil
}
