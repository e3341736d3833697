package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"kevdhev/personal-finance-api/internal/api/models"

	"github.com/jmoiron/sqlx"
)

// ErrDuplicateUser indicates a username or email that is already registered.
var ErrDuplicateUser = errors.New("user already exists")

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, username, email, passwordHash string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

type sqliteUserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new SQLite-based UserRepository.
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &sqliteUserRepository{db: db}
}

// Create inserts a new user and returns the stored row. The password must
// already be hashed by the caller.
func (r *sqliteUserRepository) Create(ctx context.Context, username, email, passwordHash string) (*models.User, error) {
	query := `INSERT INTO users (username, email, password_hash, created_at) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, username, email, passwordHash, time.Now().UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read new user id: %w", err)
	}

	var user models.User
	if err := r.db.GetContext(ctx, &user,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("failed to load created user: %w", err)
	}
	return &user, nil
}

// GetByUsername retrieves a user by username. A missing user returns
// (nil, nil), not an error.
func (r *sqliteUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	query := `SELECT id, username, email, password_hash, created_at FROM users WHERE username = ?`
	err := r.db.GetContext(ctx, &user, query, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return &user, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
