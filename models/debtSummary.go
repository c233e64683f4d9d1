package models

import (
	"context"
	"fmt"

	"github.com/opencantine/pantry_backend/config"
	"github.com/opencantine/pantry_backend/utils"
)

// DebtSummaryRow aggregates one user's debt rows for a single status.
type DebtSummaryRow struct {
	UserId      int     `json:"user_id"`
	UserName    string  `json:"user_name"`
	UserEmail   *string `json:"user_email"`
	MonthsCount int     `json:"months_count"`
	TotalCents  int64   `json:"total_cents"`
}

// LiveDebtSummaryRow mixes billed (closed, invoiced) debt with the still
// accruing spend of the open month, so an admin sees full exposure rather than
// billed exposure only.
type LiveDebtSummaryRow struct {
	UserId            int     `json:"user_id"`
	UserName          string  `json:"user_name"`
	UserEmail         *string `json:"user_email"`
	UnpaidClosedCents int64   `json:"unpaid_closed_cents"`
	OpenMonthCents    int64   `json:"open_month_cents"`
	TotalCents        int64   `json:"total_cents"`
}

// DebtSummary groups debt rows of the requested status by user.
// Ordered by summed amount descending, user name ascending as tie-break.
func DebtSummary(ctx context.Context, status DebtStatus) ([]DebtSummaryRow, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: status must be invoiced or paid", utils.ErrorInvalidInput)
	}

	db := config.GetDB()
	rows := []DebtSummaryRow{}
	if err := db.WithContext(ctx).Raw(`
		SELECT
		  md.user_id,
		  u.name AS user_name,
		  u.email AS user_email,
		  COUNT(*) AS months_count,
		  COALESCE(SUM(md.amount_cents), 0) AS total_cents
		FROM monthly_debts md
		JOIN users u ON u.id = md.user_id
		WHERE md.status = ?
		GROUP BY md.user_id, u.name, u.email
		ORDER BY total_cents DESC, u.name ASC
	`, status).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// LiveDebtSummary computes, for every active user, the sum of their invoiced
// debt rows (all months) plus their committed orders of the open month. The
// month key is resolved at call time, never cached, so the view rolls over
// cleanly at a month boundary.
func LiveDebtSummary(ctx context.Context) (string, []LiveDebtSummaryRow, error) {
	monthKey := utils.CurrentMonthKey()

	db := config.GetDB()
	rows := []LiveDebtSummaryRow{}
	if err := db.WithContext(ctx).Raw(`
		SELECT
		  u.id AS user_id,
		  u.name AS user_name,
		  u.email AS user_email,
		  COALESCE((
		    SELECT SUM(md.amount_cents)
		    FROM monthly_debts md
		    WHERE md.user_id = u.id
		      AND md.status = 'invoiced'
		  ), 0) AS unpaid_closed_cents,
		  COALESCE((
		    SELECT SUM(o.total_cents)
		    FROM orders o
		    WHERE o.user_id = u.id
		      AND o.status = 'committed'
		      AND o.month_key = ?
		  ), 0) AS open_month_cents
		FROM users u
		WHERE u.is_active = 1
		ORDER BY (unpaid_closed_cents + open_month_cents) DESC, u.name ASC
	`, monthKey).Scan(&rows).Error; err != nil {
		return "", nil, err
	}

	for i := range rows {
		rows[i].TotalCents = rows[i].UnpaidClosedCents + rows[i].OpenMonthCents
	}
	return monthKey, rows, nil
}
