package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Prescription struct {
	ID            string         `json:"id" gorm:"primaryKey;size:36"`
	BranchID      string         `json:"branch_id" gorm:"size:36;not null;index"`
	PatientID     string         `json:"patient_id" gorm:"size:36;not null;index"`
	Patient       Patient        `json:"-" gorm:"foreignKey:PatientID;references:ID"`
	DoctorID      string         `json:"doctor_id" gorm:"size:36;not null;index"`
	AppointmentID *string        `json:"appointment_id" gorm:"size:36"`
	Items         datatypes.JSON `json:"items" gorm:"type:jsonb"` // drug lines: [{drug, dosage, frequency, duration}]
	Notes         string         `json:"notes"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (p *Prescription) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return
}
