package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InventoryItem struct {
	ID           string     `json:"id" gorm:"primaryKey;size:36"`
	BranchID     string     `json:"branch_id" gorm:"size:36;not null;index"`
	Name         string     `json:"name" gorm:"not null;index"`
	Category     string     `json:"category" gorm:"size:64"`
	BatchNo      string     `json:"batch_no" gorm:"size:64;index"`
	Quantity     int        `json:"quantity" gorm:"not null"`
	ReorderLevel int        `json:"reorder_level"`
	UnitCost     float64    `json:"unit_cost" gorm:"type:numeric(12,2)"`
	ExpiryDate   *time.Time `json:"expiry_date" gorm:"index"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (i *InventoryItem) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return
}
