package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type User struct {
	ID               string     `json:"id" gorm:"primaryKey;size:36"`
	Name             string     `json:"name" gorm:"not null"`
	Email            string     `json:"email" gorm:"unique;not null"`
	Password         []byte     `json:"-" gorm:"not null"`
	Role             string     `json:"role" gorm:"size:32;not null"` // admin | doctor | receptionist | pharmacist
	BranchID         string     `json:"branch_id" gorm:"size:36;not null;index"`
	Active           bool       `json:"active" gorm:"default:true"`
	ResetToken       *string    `json:"-" gorm:"size:128"`
	ResetTokenExpiry *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	return
}

func (user *User) SetPassword(password string) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(password), 12)
	user.Password = hashedPassword
}

func (user *User) ComparePassword(password string) error {
	return bcrypt.CompareHashAndPassword(user.Password, []byte(password))
}
