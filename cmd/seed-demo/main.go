// seed-demo fills an empty database with a few users, products, orders and
// monthly debts so the admin API has something to serve during development.
//
// Usage:
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-demo
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/opencantine/pantry_backend/config"
	"github.com/opencantine/pantry_backend/models"
	"github.com/opencantine/pantry_backend/utils"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	models.MigrateTable()

	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to count users: %v\n", err)
		os.Exit(1)
	}
	if count > 0 {
		fmt.Println("database already has users; nothing to do")
		return
	}

	alice := "alice@pantry.local"
	bruno := "bruno@pantry.local"
	users := []models.User{
		{Name: "Alice", Email: &alice, IsActive: utils.NewTrue()},
		{Name: "Bruno", Email: &bruno, IsActive: utils.NewTrue()},
		{Name: "Chloe", IsActive: utils.NewFalse()},
	}
	if err := db.WithContext(ctx).Create(&users).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed users: %v\n", err)
		os.Exit(1)
	}

	products := []models.Product{
		{Name: "Sparkling water", Qty: 24},
		{Name: "Dark chocolate", Qty: 10},
		{Name: "Coffee beans 1kg", Qty: 3},
	}
	if err := db.WithContext(ctx).Create(&products).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed products: %v\n", err)
		os.Exit(1)
	}

	currentMonth := utils.CurrentMonthKey()
	lastMonth := utils.MonthKey(time.Now().AddDate(0, -1, 0), config.ReferenceLocation())

	orders := []models.Order{
		{UserId: users[0].ID, MonthKey: currentMonth, TotalCents: 450, Status: models.OrderStatusCommitted},
		{UserId: users[1].ID, MonthKey: currentMonth, TotalCents: 1200, Status: models.OrderStatusCommitted},
	}
	if err := db.WithContext(ctx).Create(&orders).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed orders: %v\n", err)
		os.Exit(1)
	}

	debts := []models.MonthlyDebt{
		{MonthKey: lastMonth, UserId: users[0].ID, AmountCents: 2300, Status: models.DebtStatusInvoiced},
		{MonthKey: lastMonth, UserId: users[1].ID, AmountCents: 800, Status: models.DebtStatusInvoiced},
	}
	if err := db.WithContext(ctx).Create(&debts).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed debts: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("seeded %d users, %d products, %d orders, %d debts\n",
		len(users), len(products), len(orders), len(debts))
}
