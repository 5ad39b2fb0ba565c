package models

import "github.com/shopspring/decimal"

type CategorySpending struct {
	Category string          `json:"category"`
	Spending decimal.Decimal `json:"spending"`
}

// SpendingOverview aggregates approved spending across the windows the
// dashboard renders: today, current vs last week, current vs last month.
type SpendingOverview struct {
	DailySpending decimal.Decimal    `json:"daily_spending"`
	CurrentWeek   decimal.Decimal    `json:"current_week"`
	LastWeek      decimal.Decimal    `json:"last_week"`
	CurrentMonth  decimal.Decimal    `json:"current_month"`
	LastMonth     decimal.Decimal    `json:"last_month"`
	AvgMonthly    decimal.Decimal    `json:"avg_monthly"`
	Categories    []CategorySpending `json:"categories"`
}
