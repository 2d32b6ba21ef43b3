package controllers

import (
	"time"

	"praxis-backend/database"
	"praxis-backend/middlewares"
	"praxis-backend/models"
	"praxis-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type createAppointmentDTO struct {
	PatientID string  `json:"patient_id" validate:"required"`
	DoctorID  string  `json:"doctor_id" validate:"required"`
	RoomID    *string `json:"room_id"`
	Date      string  `json:"date" validate:"required,datetime=2006-01-02"`
	Slot      string  `json:"slot" validate:"required"`
	VisitType string  `json:"visit_type"`
	Notes     string  `json:"notes"`
	Source    string  `json:"source" validate:"omitempty,oneof=walk_in phone online"`
}

func CreateAppointment(c *fiber.Ctx) error {
	var data createAppointmentDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}
	utils.NormalizeDTO(&data)

	date, _ := time.Parse("2006-01-02", data.Date)
	if date.Before(time.Now().Truncate(24 * time.Hour)) {
		return fiber.NewError(fiber.StatusBadRequest, "appointment date is in the past")
	}

	branchID := c.Locals("branchID").(string)

	// One slot per doctor per day.
	clash, err := database.NewStore[models.Appointment]().Count(c.UserContext(), func(q *gorm.DB) *gorm.DB {
		return q.Where("branch_id = ? AND doctor_id = ? AND date = ? AND slot = ? AND status = ?",
			branchID, data.DoctorID, date, data.Slot, models.AppointmentScheduled)
	})
	if err != nil {
		return err
	}
	if clash > 0 {
		return fiber.NewError(fiber.StatusConflict, "slot already booked for this doctor")
	}

	appointment := models.Appointment{
		BranchID:  branchID,
		PatientID: data.PatientID,
		DoctorID:  data.DoctorID,
		RoomID:    data.RoomID,
		Date:      date,
		Slot:      data.Slot,
		VisitType: data.VisitType,
		Status:    models.AppointmentScheduled,
		Notes:     data.Notes,
		Source:    data.Source,
	}

	if err := database.NewStore[models.Appointment]().Create(c.UserContext(), &appointment); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create appointment")
	}
	return c.Status(fiber.StatusCreated).JSON(appointment)
}

func GetAppointments(c *fiber.Ctx) error {
	branchID := c.Locals("branchID").(string)

	var day *time.Time
	if d := c.Query("date"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid date")
		}
		day = &parsed
	}

	appointments, err := database.NewStore[models.Appointment]().Find(c.UserContext(), func(q *gorm.DB) *gorm.DB {
		q = q.Where("branch_id = ?", branchID)
		if day != nil {
			q = q.Where("date = ?", *day)
		}
		if doctor := c.Query("doctor_id"); doctor != "" {
			q = q.Where("doctor_id = ?", doctor)
		}
		if status := c.Query("status"); status != "" {
			q = q.Where("status = ?", status)
		}
		return q.Order("date, slot")
	})
	if err != nil {
		return err
	}
	return c.JSON(appointments)
}

type updateAppointmentDTO struct {
	RoomID    *string `json:"room_id"`
	Date      *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Slot      *string `json:"slot"`
	VisitType *string `json:"visit_type"`
	Status    *string `json:"status" validate:"omitempty,oneof=scheduled completed cancelled no_show"`
	Notes     *string `json:"notes"`
}

func UpdateAppointment(c *fiber.Ctx) error {
	var data updateAppointmentDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&data)

	updates := utils.UpdatesFromPtrDTO(&data, nil)
	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}
	if d, ok := updates["date"].(string); ok {
		day, err := time.Parse("2006-01-02", d)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid date")
		}
		updates["date"] = day
	}

	appointment, err := database.NewStore[models.Appointment]().Update(c.UserContext(), c.Params("id"), updates)
	if err != nil {
		return err
	}
	return c.JSON(appointment)
}

type bulkStatusDTO struct {
	AppointmentIDs []string `json:"appointment_ids" validate:"required,min=1,dive,required"`
	Status         string   `json:"status" validate:"required,oneof=scheduled completed cancelled no_show"`
}

// BulkUpdateAppointments moves a set of appointments to a new status in one
// shot, e.g. marking a finished day's remainder as no_show.
func BulkUpdateAppointments(c *fiber.Ctx) error {
	var data bulkStatusDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}

	branchID := c.Locals("branchID").(string)
	updated, err := database.NewStore[models.Appointment]().UpdateMany(
		c.UserContext(),
		map[string]any{"status": data.Status},
		"id IN ? AND branch_id = ?", data.AppointmentIDs, branchID,
	)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"updated": updated})
}

func DeleteAppointment(c *fiber.Ctx) error {
	appointment, err := database.NewStore[models.Appointment]().Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(appointment)
}
