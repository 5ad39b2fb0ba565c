package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sfc-gh-echristensen/cortex-data-analysis-with-postgres/models"
)

// InsightsService computes the dashboard spending aggregates. Only approved
// transactions count as spend; pending and declined rows are excluded.
type InsightsService struct {
	db      *sql.DB
	timeout time.Duration
}

func NewInsightsService(db *sql.DB) *InsightsService {
	return &InsightsService{db: db, timeout: 10 * time.Second}
}

func (s *InsightsService) SpendingOverview(ctx context.Context) (*models.SpendingOverview, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var overview models.SpendingOverview

	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(ABS(amount)), 0) AS daily_spending
		FROM transactions
		WHERE DATE(date) = CURRENT_DATE
		  AND status = 'approved'
	`).Scan(&overview.DailySpending)
	if err != nil {
		return nil, classifyStoreErr(err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE
				WHEN date >= DATE_TRUNC('week', CURRENT_DATE)
				THEN ABS(amount) ELSE 0 END), 0) AS current_week,
			COALESCE(SUM(CASE
				WHEN date >= DATE_TRUNC('week', CURRENT_DATE) - INTERVAL '1 week'
				     AND date < DATE_TRUNC('week', CURRENT_DATE)
				THEN ABS(amount) ELSE 0 END), 0) AS last_week
		FROM transactions
		WHERE date >= DATE_TRUNC('week', CURRENT_DATE) - INTERVAL '1 week'
		  AND status = 'approved'
	`).Scan(&overview.CurrentWeek, &overview.LastWeek)
	if err != nil {
		return nil, classifyStoreErr(err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE
				WHEN date >= DATE_TRUNC('month', CURRENT_DATE)
				THEN ABS(amount) ELSE 0 END), 0) AS current_month,
			COALESCE(SUM(CASE
				WHEN date >= DATE_TRUNC('month', CURRENT_DATE) - INTERVAL '1 month'
				     AND date < DATE_TRUNC('month', CURRENT_DATE)
				THEN ABS(amount) ELSE 0 END), 0) AS last_month,
			COALESCE(AVG(CASE
				WHEN date >= DATE_TRUNC('month', CURRENT_DATE) - INTERVAL '3 month'
				     AND date < DATE_TRUNC('month', CURRENT_DATE)
				THEN ABS(amount) END), 0) AS avg_monthly
		FROM transactions
		WHERE date >= DATE_TRUNC('month', CURRENT_DATE) - INTERVAL '3 month'
		  AND status = 'approved'
	`).Scan(&overview.CurrentMonth, &overview.LastMonth, &overview.AvgMonthly)
	if err != nil {
		return nil, classifyStoreErr(err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category, SUM(ABS(amount)) AS spending
		FROM transactions
		WHERE date >= DATE_TRUNC('month', CURRENT_DATE)
		  AND status = 'approved'
		GROUP BY category
		ORDER BY spending DESC
		LIMIT 6
	`)
	if err != nil {
		return nil, classifyStoreErr(err)
	}
	defer rows.Close()

	overview.Categories = []models.CategorySpending{}
	for rows.Next() {
		var cat models.CategorySpending
		if err := rows.Scan(&cat.Category, &cat.Spending); err != nil {
			return nil, fmt.Errorf("failed to scan category spending: %w", err)
		}
		overview.Categories = append(overview.Categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyStoreErr(err)
	}

	return &overview, nil
}
