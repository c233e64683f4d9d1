package models

import "time"

// Order is a finalized purchase captured upstream. The ledger only ever reads
// committed orders of the open month; rows are immutable from this service's
// point of view.
type Order struct {
	ID         int         `gorm:"primary_key" json:"id"`
	UserId     int         `gorm:"index;not null" json:"user_id"`
	User       User        `gorm:"foreignKey:UserId" json:"-"`
	MonthKey   string      `gorm:"size:7;index;not null" json:"month_key"`
	TotalCents int64       `gorm:"not null" json:"total_cents"`
	Status     OrderStatus `gorm:"type:enum('committed','cancelled');default:'committed';not null" json:"status"`
	CreatedAt  time.Time   `gorm:"autoCreateTime" json:"created_at"`
}
