package models

import (
	"log"

	"github.com/opencantine/pantry_backend/config"
)

type DebtStatus string

const (
	DebtStatusInvoiced DebtStatus = "invoiced"
	DebtStatusPaid     DebtStatus = "paid"
)

func (s DebtStatus) IsValid() bool {
	return s == DebtStatusInvoiced || s == DebtStatusPaid
}

type OrderStatus string

const (
	// OrderStatusCommitted is the only status the debt ledger reads; other
	// statuses exist for the order-capture path and are ignored here.
	OrderStatusCommitted OrderStatus = "committed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&User{},
		&Product{},
		&Order{},
		&MonthlyDebt{},
		&RestockMovement{}, &RestockMovementDetail{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
