package service

import (
	"context"
	"math"
	"time"

	"kevdhev/personal-finance-api/internal/api/models"
	"kevdhev/personal-finance-api/internal/api/repository"
)

const defaultListLimit = 100

// MovementService defines the business logic over the movement ledger. Every
// operation takes the acting owner's id; ownership is enforced uniformly by
// the repository's owner-scoped queries.
type MovementService interface {
	Create(ctx context.Context, ownerID int64, req *models.CreateMovementRequest) (*models.Movement, error)
	Get(ctx context.Context, ownerID, id int64) (*models.Movement, error)
	List(ctx context.Context, ownerID int64, q *models.ListQuery) ([]models.Movement, error)
	Update(ctx context.Context, ownerID, id int64, req *models.UpdateMovementRequest) (*models.Movement, error)
	Delete(ctx context.Context, ownerID, id int64) error
	Summarize(ctx context.Context, ownerID int64, window *models.DateRange) (*models.BalanceSummary, error)
}

type movementService struct {
	movementRepo repository.MovementRepository
}

// NewMovementService creates a new MovementService.
func NewMovementService(movementRepo repository.MovementRepository) MovementService {
	return &movementService{movementRepo: movementRepo}
}

// Create stores a new movement for the owner. The date defaults to now when
// omitted. Amount positivity and the type enum are enforced at the binding
// layer and backed by database CHECK constraints.
func (s *movementService) Create(ctx context.Context, ownerID int64, req *models.CreateMovementRequest) (*models.Movement, error) {
	date := time.Now().UTC()
	if req.Date != nil {
		date = req.Date.UTC()
	}

	return s.movementRepo.Create(ctx, &models.Movement{
		Amount:      req.Amount,
		Type:        req.Type,
		Description: req.Description,
		Date:        date,
		UserID:      ownerID,
	})
}

// Get returns the owner's movement or ErrMovementNotFound.
func (s *movementService) Get(ctx context.Context, ownerID, id int64) (*models.Movement, error) {
	m, err := s.movementRepo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMovementNotFound
	}
	return m, nil
}

// List returns the owner's movements matching the query, ordered by date then
// id. skip defaults to 0 and limit to 100.
func (s *movementService) List(ctx context.Context, ownerID int64, q *models.ListQuery) ([]models.Movement, error) {
	if err := validateWindow(&q.DateRange); err != nil {
		return nil, err
	}

	filter := repository.ListFilter{
		Start: q.Start,
		End:   exclusiveEnd(q.End),
		Type:  q.Type,
		Skip:  q.Skip,
		Limit: q.Limit,
	}
	if filter.Skip < 0 {
		filter.Skip = 0
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}

	return s.movementRepo.List(ctx, ownerID, filter)
}

// Update applies the supplied fields to the owner's movement and returns the
// updated row. Unsupplied fields keep their stored values.
func (s *movementService) Update(ctx context.Context, ownerID, id int64, req *models.UpdateMovementRequest) (*models.Movement, error) {
	m, err := s.movementRepo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMovementNotFound
	}

	if req.Amount != nil {
		m.Amount = *req.Amount
	}
	if req.Type != nil {
		m.Type = *req.Type
	}
	if req.Description != nil {
		m.Description = req.Description
	}
	if req.Date != nil {
		m.Date = req.Date.UTC()
	}

	updated, err := s.movementRepo.Update(ctx, m)
	if err != nil {
		return nil, err
	}
	if !updated {
		// Deleted between the read and the write.
		return nil, ErrMovementNotFound
	}
	return m, nil
}

// Delete removes the owner's movement or returns ErrMovementNotFound.
func (s *movementService) Delete(ctx context.Context, ownerID, id int64) error {
	deleted, err := s.movementRepo.Delete(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrMovementNotFound
	}
	return nil
}

// Summarize returns per-type totals and the balance within the optional date
// window, rounded half-up to two decimal places.
func (s *movementService) Summarize(ctx context.Context, ownerID int64, window *models.DateRange) (*models.BalanceSummary, error) {
	if err := validateWindow(window); err != nil {
		return nil, err
	}

	income, expense, err := s.movementRepo.Summarize(ctx, ownerID, window.Start, exclusiveEnd(window.End))
	if err != nil {
		return nil, err
	}

	income = round2(income)
	expense = round2(expense)
	return &models.BalanceSummary{
		TotalIncome:  income,
		TotalExpense: expense,
		Balance:      round2(income - expense),
	}, nil
}

func validateWindow(w *models.DateRange) error {
	if w.Start != nil && w.End != nil && w.Start.After(*w.End) {
		return ErrInvalidDateRange
	}
	return nil
}

// exclusiveEnd converts a day-granular inclusive end date into the exclusive
// bound used in queries, covering the entire named day.
func exclusiveEnd(end *time.Time) *time.Time {
	if end == nil {
		return nil
	}
	e := end.UTC().Add(24 * time.Hour)
	return &e
}

// round2 rounds half-up to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
