package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AppointmentScheduled = "scheduled"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"
	AppointmentNoShow    = "no_show"
)

type Appointment struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	BranchID  string    `json:"branch_id" gorm:"size:36;not null;index:idx_appointments_branch_date,priority:1"`
	PatientID string    `json:"patient_id" gorm:"size:36;not null;index"`
	Patient   Patient   `json:"-" gorm:"foreignKey:PatientID;references:ID"`
	DoctorID  string    `json:"doctor_id" gorm:"size:36;not null;index"`
	RoomID    *string   `json:"room_id" gorm:"size:36"`
	Date      time.Time `json:"date" gorm:"not null;index:idx_appointments_branch_date,priority:2"`
	Slot      string    `json:"slot" gorm:"size:16;not null"` // e.g. "09:30"
	VisitType string    `json:"visit_type" gorm:"size:32"`
	Status    string    `json:"status" gorm:"size:16;not null;default:scheduled"`
	Notes     string    `json:"notes"`
	Source    string    `json:"source" gorm:"size:32"` // walk_in | phone | online
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return
}
