package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Patient struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	BranchID  string    `json:"branch_id" gorm:"size:36;not null;index"`
	Name      string    `json:"name" gorm:"not null"`
	Phone     string    `json:"phone" gorm:"size:20;index"`
	Email     string    `json:"email"`
	Gender    string    `json:"gender" gorm:"size:10"`
	DOB       time.Time `json:"dob"`
	Address   string    `json:"address"`
	AbhaID    string    `json:"abha_id" gorm:"size:64;index"` // national health id, optional
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Patient) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return
}
