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

// ErrConstraint indicates an insert or update rejected by a database
// constraint (positive amount, type enum, owner foreign key).
var ErrConstraint = errors.New("constraint violation")

// ListFilter narrows a movement listing. Start is an inclusive lower bound,
// End an exclusive upper bound; both are precomputed by the service layer.
type ListFilter struct {
	Start *time.Time
	End   *time.Time
	Type  *models.MovementType
	Skip  int
	Limit int
}

// MovementRepository defines the interface for movement data operations.
// Every read and write is scoped by owner id, so a row belonging to another
// user is indistinguishable from a missing one.
type MovementRepository interface {
	Create(ctx context.Context, m *models.Movement) (*models.Movement, error)
	GetByID(ctx context.Context, id, ownerID int64) (*models.Movement, error)
	List(ctx context.Context, ownerID int64, filter ListFilter) ([]models.Movement, error)
	Update(ctx context.Context, m *models.Movement) (bool, error)
	Delete(ctx context.Context, id, ownerID int64) (bool, error)
	Summarize(ctx context.Context, ownerID int64, start, end *time.Time) (income, expense float64, err error)
}

type sqliteMovementRepository struct {
	db *sqlx.DB
}

// NewMovementRepository creates a new SQLite-based MovementRepository.
func NewMovementRepository(db *sqlx.DB) MovementRepository {
	return &sqliteMovementRepository{db: db}
}

// Create inserts a new movement and returns it with its assigned id.
func (r *sqliteMovementRepository) Create(ctx context.Context, m *models.Movement) (*models.Movement, error) {
	query := `INSERT INTO movements (amount, type, description, date, user_id) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, m.Amount, m.Type, m.Description, m.Date.UTC(), m.UserID)
	if err != nil {
		if isConstraintViolation(err) {
			return nil, ErrConstraint
		}
		return nil, fmt.Errorf("failed to create movement: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read new movement id: %w", err)
	}

	return r.GetByID(ctx, id, m.UserID)
}

// GetByID retrieves a movement owned by ownerID. A missing or unowned row
// returns (nil, nil).
func (r *sqliteMovementRepository) GetByID(ctx context.Context, id, ownerID int64) (*models.Movement, error) {
	var m models.Movement
	query := `SELECT id, amount, type, description, date, user_id FROM movements WHERE id = ? AND user_id = ?`
	err := r.db.GetContext(ctx, &m, query, id, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get movement: %w", err)
	}
	return &m, nil
}

// List returns the owner's movements matching the filter, ordered by date
// then id so offset pagination yields stable, disjoint pages.
func (r *sqliteMovementRepository) List(ctx context.Context, ownerID int64, filter ListFilter) ([]models.Movement, error) {
	query := `SELECT id, amount, type, description, date, user_id FROM movements WHERE user_id = ?`
	args := []any{ownerID}
	query, args = appendDateWindow(query, args, filter.Start, filter.End)
	if filter.Type != nil {
		query += ` AND type = ?`
		args = append(args, *filter.Type)
	}
	query += ` ORDER BY date ASC, id ASC LIMIT ? OFFSET ?`
	args = append(args, filter.Limit, filter.Skip)

	movements := []models.Movement{}
	if err := r.db.SelectContext(ctx, &movements, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}
	return movements, nil
}

// Update rewrites the full row, scoped by owner. Reports whether a row
// matched. Last write wins on concurrent updates.
func (r *sqliteMovementRepository) Update(ctx context.Context, m *models.Movement) (bool, error) {
	query := `UPDATE movements SET amount = ?, type = ?, description = ?, date = ? WHERE id = ? AND user_id = ?`
	res, err := r.db.ExecContext(ctx, query, m.Amount, m.Type, m.Description, m.Date.UTC(), m.ID, m.UserID)
	if err != nil {
		if isConstraintViolation(err) {
			return false, ErrConstraint
		}
		return false, fmt.Errorf("failed to update movement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read update result: %w", err)
	}
	return n > 0, nil
}

// Delete removes a movement owned by ownerID and reports whether a row
// existed.
func (r *sqliteMovementRepository) Delete(ctx context.Context, id, ownerID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM movements WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("failed to delete movement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}
	return n > 0, nil
}

// Summarize sums amounts grouped by type within the optional date window.
// Missing groups sum to 0.
func (r *sqliteMovementRepository) Summarize(ctx context.Context, ownerID int64, start, end *time.Time) (float64, float64, error) {
	query := `SELECT
		COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE 0 END), 0) AS total_income,
		COALESCE(SUM(CASE WHEN type = 'expense' THEN amount ELSE 0 END), 0) AS total_expense
	FROM movements WHERE user_id = ?`
	args := []any{ownerID}
	query, args = appendDateWindow(query, args, start, end)

	var totals struct {
		TotalIncome  float64 `db:"total_income"`
		TotalExpense float64 `db:"total_expense"`
	}
	if err := r.db.GetContext(ctx, &totals, query, args...); err != nil {
		return 0, 0, fmt.Errorf("failed to summarize movements: %w", err)
	}
	return totals.TotalIncome, totals.TotalExpense, nil
}

func appendDateWindow(query string, args []any, start, end *time.Time) (string, []any) {
	if start != nil {
		query += ` AND date >= ?`
		args = append(args, start.UTC())
	}
	if end != nil {
		query += ` AND date < ?`
		args = append(args, end.UTC())
	}
	return query, args
}

func isConstraintViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}
