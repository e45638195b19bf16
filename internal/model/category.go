package model

import "time"

// CategoryType indicates whether a category is for income, expense, or system use.
type CategoryType string

const (
	// CategoryTypeIncome represents categories for income transactions.
	CategoryTypeIncome CategoryType = "income"
	// CategoryTypeExpense represents categories for expense transactions.
	CategoryTypeExpense CategoryType = "expense"
	// CategoryTypeSystem represents system-managed categories (e.g., transfers).
	CategoryTypeSystem CategoryType = "system"
)

// Category is a spending or income category owned by the category store.
// The engine only ever refers to categories by ID.
type Category struct {
	CreatedAt   time.Time
	ID          string
	Name        string
	Description string
	Type        CategoryType
	IsActive    bool
}
