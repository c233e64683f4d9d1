package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/opencantine/pantry_backend/config"
	"github.com/opencantine/pantry_backend/utils"
	"gorm.io/gorm"
)

// User is a pantry member. Accounts are managed elsewhere; this service only
// reads them for billing views.
type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     *string   `gorm:"size:100;unique" json:"email"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func GetUser(ctx context.Context, id int) (*User, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: user id must be positive", utils.ErrorInvalidInput)
	}

	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", utils.ErrorRecordNotFound, id)
		}
		return nil, err
	}
	return &user, nil
}
