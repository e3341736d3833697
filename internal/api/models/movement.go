package models

import "time"

// MovementType discriminates income from expense entries.
type MovementType string

const (
	MovementIncome  MovementType = "income"
	MovementExpense MovementType = "expense"
)

// Movement represents a single income or expense ledger entry owned by a user.
type Movement struct {
	ID          int64        `db:"id" json:"id"`
	Amount      float64      `db:"amount" json:"amount"`
	Type        MovementType `db:"type" json:"type"`
	Description *string      `db:"description" json:"description"`
	Date        time.Time    `db:"date" json:"date"`
	UserID      int64        `db:"user_id" json:"user_id"`
}

// CreateMovementRequest defines the structure for creating a movement.
// Date is optional and defaults to the time of creation.
type CreateMovementRequest struct {
	Amount      float64      `json:"amount" binding:"required,gt=0"`
	Type        MovementType `json:"type" binding:"required,oneof=income expense"`
	Description *string      `json:"description" binding:"omitempty,max=255"`
	Date        *time.Time   `json:"date"`
}

// UpdateMovementRequest defines a partial update. Only non-nil fields are
// applied to the stored movement.
type UpdateMovementRequest struct {
	Amount      *float64      `json:"amount" binding:"omitempty,gt=0"`
	Type        *MovementType `json:"type" binding:"omitempty,oneof=income expense"`
	Description *string       `json:"description" binding:"omitempty,max=255"`
	Date        *time.Time    `json:"date"`
}

// DateRange is an optional inclusive window over movement dates.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// ListQuery carries the filters and pagination for listing movements.
// Filters are conjunctive.
type ListQuery struct {
	DateRange
	Type  *MovementType
	Skip  int
	Limit int
}

// BalanceSummary holds per-type totals and the resulting balance for a date
// window. All values are rounded to two decimal places.
type BalanceSummary struct {
	TotalIncome  float64 `json:"total_income"`
	TotalExpense float64 `json:"total_expense"`
	Balance      float64 `json:"balance"`
}
