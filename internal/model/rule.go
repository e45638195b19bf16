package model

import "time"

// Rule maps a case-insensitive regular expression to a category.
// Rules are evaluated in Position order; the earliest registered rule wins.
type Rule struct {
	CreatedAt  time.Time `json:"created_at"`
	ID         string    `json:"id"`
	Pattern    string    `json:"pattern"`
	CategoryID string    `json:"category_id"`
	Position   int       `json:"position"`
	IsActive   bool      `json:"is_active"`
}
