package models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/opencantine/pantry_backend/config"
	"github.com/opencantine/pantry_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RestockMovement records one accepted batch of stock adjustments.
// Append-only: rows are never updated or deleted.
type RestockMovement struct {
	ID        string                  `gorm:"primaryKey;size:36" json:"id"`
	Comment   string                  `gorm:"type:text" json:"comment"`
	Details   []RestockMovementDetail `gorm:"foreignKey:MovementId" json:"details"`
	CreatedAt time.Time               `gorm:"autoCreateTime" json:"created_at"`
}

type RestockMovementDetail struct {
	ID         int    `gorm:"primary_key" json:"id"`
	MovementId string `gorm:"index;size:36;not null" json:"movement_id"`
	ProductId  int    `gorm:"index;not null" json:"product_id"`
	QtyDelta   int    `gorm:"not null" json:"qty_delta"`
}

type NewRestockLine struct {
	ProductId int `json:"product_id"`
	Qty       int `json:"qty"`
}

type NewRestockMovement struct {
	Items   []NewRestockLine `json:"items"`
	Comment string           `json:"comment"`
}

// filterRestockLines drops incomplete form rows: a line without a chosen
// product or with a zero delta is ignored, not rejected.
func filterRestockLines(items []NewRestockLine) []NewRestockLine {
	var lines []NewRestockLine
	for _, item := range items {
		if item.ProductId <= 0 || item.Qty == 0 {
			continue
		}
		lines = append(lines, item)
	}
	return lines
}

// CreateRestockMovement validates and applies a batch of stock deltas as one
// atomic unit. Stock is re-read under a row lock inside the transaction; the
// cached product snapshot is display-only and never consulted here. Every
// delta is applied through a conditional write that re-checks non-negativity
// at write time, so an external decrement racing this batch fails the whole
// batch (Conflict, retryable) instead of corrupting part of it.
func CreateRestockMovement(ctx context.Context, input *NewRestockMovement) (*RestockMovement, error) {
	lines := filterRestockLines(input.Items)
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: restock requires at least one valid line", utils.ErrorInvalidInput)
	}

	productIds := make([]int, 0, len(lines))
	for _, line := range lines {
		productIds = append(productIds, line.ProductId)
	}
	productIds = utils.UniqueSlice(productIds)

	db := config.GetDB()
	tx := db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	// Fresh stock, locked for the duration of the batch.
	var products []Product
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", productIds).
		Find(&products).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	stockById := make(map[int]int, len(products))
	for _, p := range products {
		stockById[p.ID] = p.Qty
	}

	// Validate against a running balance per product, so a batch that names the
	// same product more than once is checked the way the writes below will land:
	// line by line, in order. A batch that drains past zero on its own is a
	// deterministic rejection, not a write-time conflict.
	runningById := make(map[int]int, len(stockById))
	for id, qty := range stockById {
		runningById[id] = qty
	}
	for _, line := range lines {
		current, ok := runningById[line.ProductId]
		if !ok {
			tx.Rollback()
			return nil, fmt.Errorf("%w: unknown product %d", utils.ErrorInvalidInput, line.ProductId)
		}
		if current+line.Qty < 0 {
			tx.Rollback()
			return nil, fmt.Errorf("%w: insufficient stock for product %d: current %d, requested removal %d",
				utils.ErrorInvalidInput, line.ProductId, current, -line.Qty)
		}
		runningById[line.ProductId] = current + line.Qty
	}

	details := make([]RestockMovementDetail, 0, len(lines))
	for _, line := range lines {
		result := tx.WithContext(ctx).Model(&Product{}).
			Where("id = ? AND qty + ? >= 0", line.ProductId, line.Qty).
			UpdateColumn("qty", gorm.Expr("qty + ?", line.Qty))
		if result.Error != nil {
			tx.Rollback()
			return nil, result.Error
		}
		if result.RowsAffected != 1 {
			// Stock moved under us between validate and apply.
			tx.Rollback()
			return nil, fmt.Errorf("%w: stock for product %d changed concurrently, retry the restock",
				utils.ErrorConflict, line.ProductId)
		}
		details = append(details, RestockMovementDetail{
			ProductId: line.ProductId,
			QtyDelta:  line.Qty,
		})
	}

	movement := RestockMovement{
		ID:      uuid.NewString(),
		Comment: input.Comment,
		Details: details,
	}
	if err := tx.WithContext(ctx).Create(&movement).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	invalidateProductListCache()

	return &movement, nil
}
