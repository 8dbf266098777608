package models

// Budget is a monthly spending limit, optionally scoped to a category.
// An empty CategoryID means the overall budget for the month.
type Budget struct {
	ID         string  `json:"id"`
	UserID     string  `json:"-"`
	CategoryID string  `json:"categoryId"`
	Amount     float64 `json:"amount"`
	Year       int     `json:"year"`
	Month      int     `json:"month"`
}

// BudgetUsage reports how much of a budget is consumed.
type BudgetUsage struct {
	Budget     float64 `json:"budget"`
	Spent      float64 `json:"spent"`
	Over       bool    `json:"over"`
	OverAmount float64 `json:"overAmount"`
	Rate       float64 `json:"rate"`
}
