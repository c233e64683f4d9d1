package models

import (
	"context"
	"fmt"
	"time"

	"github.com/opencantine/pantry_backend/config"
	"github.com/opencantine/pantry_backend/utils"
)

// MonthlyDebt is one closed month's billed amount for one user. Rows are
// written once by the monthly close job; this service reads them for
// aggregation and flips their payment status. At most one row exists per
// (month_key, user_id), and amount_cents never changes after generation.
type MonthlyDebt struct {
	MonthKey    string     `gorm:"primaryKey;size:7" json:"month_key"`
	UserId      int        `gorm:"primaryKey" json:"user_id"`
	User        User       `gorm:"foreignKey:UserId" json:"-"`
	AmountCents int64      `gorm:"not null" json:"amount_cents"`
	Status      DebtStatus `gorm:"type:enum('invoiced','paid');default:'invoiced';not null" json:"status"`
	GeneratedAt time.Time  `gorm:"autoCreateTime" json:"generated_at"`
	PaidAt      *time.Time `json:"paid_at"`
}

// DebtRow is a debt joined with its user, as served by the listing view.
type DebtRow struct {
	MonthKey    string     `json:"month_key"`
	UserId      int        `json:"user_id"`
	UserName    string     `json:"user_name"`
	UserEmail   *string    `json:"user_email"`
	AmountCents int64      `json:"amount_cents"`
	Status      DebtStatus `json:"status"`
	GeneratedAt time.Time  `json:"generated_at"`
	PaidAt      *time.Time `json:"paid_at"`
}

// DebtFilter narrows ListDebts. Nil fields match everything.
type DebtFilter struct {
	Status   *DebtStatus
	MonthKey *string
	UserId   *int
}

func (f DebtFilter) validate() error {
	if f.Status != nil && !f.Status.IsValid() {
		return fmt.Errorf("%w: status must be invoiced or paid", utils.ErrorInvalidInput)
	}
	if f.MonthKey != nil && !utils.IsValidMonthKey(*f.MonthKey) {
		return fmt.Errorf("%w: month_key must match YYYY-MM", utils.ErrorInvalidInput)
	}
	if f.UserId != nil && *f.UserId <= 0 {
		return fmt.Errorf("%w: user_id must be positive", utils.ErrorInvalidInput)
	}
	return nil
}

func ListDebts(ctx context.Context, filter DebtFilter) ([]DebtRow, error) {
	if err := filter.validate(); err != nil {
		return nil, err
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).
		Table("monthly_debts AS md").
		Select("md.month_key, md.user_id, u.name AS user_name, u.email AS user_email, md.amount_cents, md.status, md.generated_at, md.paid_at").
		Joins("JOIN users u ON u.id = md.user_id")

	if filter.Status != nil {
		dbCtx = dbCtx.Where("md.status = ?", *filter.Status)
	}
	if filter.MonthKey != nil {
		dbCtx = dbCtx.Where("md.month_key = ?", *filter.MonthKey)
	}
	if filter.UserId != nil {
		dbCtx = dbCtx.Where("md.user_id = ?", *filter.UserId)
	}

	debts := []DebtRow{}
	if err := dbCtx.Order("md.month_key DESC, u.name ASC").Scan(&debts).Error; err != nil {
		return nil, err
	}
	return debts, nil
}

// GetUserDebts returns the user and their debt rows, newest month first.
func GetUserDebts(ctx context.Context, userId int, status *DebtStatus) (*User, []MonthlyDebt, error) {
	if status != nil && !status.IsValid() {
		return nil, nil, fmt.Errorf("%w: status must be invoiced or paid", utils.ErrorInvalidInput)
	}

	user, err := GetUser(ctx, userId)
	if err != nil {
		return nil, nil, err
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("user_id = ?", userId)
	if status != nil {
		dbCtx = dbCtx.Where("status = ?", *status)
	}

	debts := []MonthlyDebt{}
	if err := dbCtx.Order("month_key DESC").Find(&debts).Error; err != nil {
		return nil, nil, err
	}
	return user, debts, nil
}

// PayDebt flips an invoiced debt to paid and stamps paid_at. The status check
// happens inside the UPDATE itself so two concurrent pays cannot both take
// effect; the losing caller observes the conflict.
func PayDebt(ctx context.Context, monthKey string, userId int) error {
	if !utils.IsValidMonthKey(monthKey) {
		return fmt.Errorf("%w: month_key must match YYYY-MM", utils.ErrorInvalidInput)
	}
	if userId <= 0 {
		return fmt.Errorf("%w: user_id must be positive", utils.ErrorInvalidInput)
	}

	db := config.GetDB()
	now := time.Now().UTC()
	result := db.WithContext(ctx).Model(&MonthlyDebt{}).
		Where("month_key = ? AND user_id = ? AND status = ?", monthKey, userId, DebtStatusInvoiced).
		Updates(map[string]interface{}{
			"status":  DebtStatusPaid,
			"paid_at": &now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return classifyDebtTransitionFailure(ctx, monthKey, userId, "already paid")
	}
	return nil
}

// UnpayDebt reverts a paid debt to invoiced and clears paid_at. The amount is
// left untouched, so pay followed by unpay restores the original row.
func UnpayDebt(ctx context.Context, monthKey string, userId int) error {
	if !utils.IsValidMonthKey(monthKey) {
		return fmt.Errorf("%w: month_key must match YYYY-MM", utils.ErrorInvalidInput)
	}
	if userId <= 0 {
		return fmt.Errorf("%w: user_id must be positive", utils.ErrorInvalidInput)
	}

	db := config.GetDB()
	result := db.WithContext(ctx).Model(&MonthlyDebt{}).
		Where("month_key = ? AND user_id = ? AND status = ?", monthKey, userId, DebtStatusPaid).
		Updates(map[string]interface{}{
			"status":  DebtStatusInvoiced,
			"paid_at": nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return classifyDebtTransitionFailure(ctx, monthKey, userId, "already unpaid")
	}
	return nil
}

// classifyDebtTransitionFailure distinguishes "no such debt" from "debt exists
// but in the other state" after a conditional update affected zero rows.
func classifyDebtTransitionFailure(ctx context.Context, monthKey string, userId int, conflictMsg string) error {
	db := config.GetDB()
	var count int64
	if err := db.WithContext(ctx).Model(&MonthlyDebt{}).
		Where("month_key = ? AND user_id = ?", monthKey, userId).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: debt %s/%d", utils.ErrorRecordNotFound, monthKey, userId)
	}
	return fmt.Errorf("%w: %s", utils.ErrorConflict, conflictMsg)
}
