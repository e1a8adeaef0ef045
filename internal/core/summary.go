package core

import "time"

const (
	UncategorizedName    = "Uncategorized"
	DefaultCategoryColor = "#6b7280"
)

// CategoryTotal is one row of a per-category sum. CategoryID is nil for
// transactions recorded without a category.
type CategoryTotal struct {
	CategoryID *int64
	Amount     Money
}

// CategorySummary is a CategoryTotal with its display values resolved.
type CategorySummary struct {
	CategoryID *int64 `json:"category_id"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	Amount     Money  `json:"amount"`
}

// Summary is the dashboard view for a period.
type Summary struct {
	From               time.Time         `json:"from"`
	To                 time.Time         `json:"to"`
	TotalIncome        Money             `json:"total_income"`
	TotalExpense       Money             `json:"total_expense"`
	Balance            Money             `json:"balance"`
	ExpensesByCategory []CategorySummary `json:"expenses_by_category"`
	IncomeByCategory   []CategorySummary `json:"income_by_category"`
}

// FallbackCategory is what unknown or deleted categories display as.
func FallbackCategory() Category {
	return Category{Name: UncategorizedName, Color: DefaultCategoryColor}
}
