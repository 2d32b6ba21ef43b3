package controllers

import (
	"encoding/json"

	"praxis-backend/database"
	"praxis-backend/middlewares"
	"praxis-backend/models"
	"praxis-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type prescriptionItemDTO struct {
	Drug      string `json:"drug" validate:"required"`
	Dosage    string `json:"dosage" validate:"required"`
	Frequency string `json:"frequency"`
	Duration  string `json:"duration"`
}

type createPrescriptionDTO struct {
	PatientID     string                `json:"patient_id" validate:"required"`
	AppointmentID *string               `json:"appointment_id"`
	Items         []prescriptionItemDTO `json:"items" validate:"required,min=1,dive"`
	Notes         string                `json:"notes"`
}

func CreatePrescription(c *fiber.Ctx) error {
	var data createPrescriptionDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}

	items, err := json.Marshal(data.Items)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid prescription items")
	}

	prescription := models.Prescription{
		BranchID:      c.Locals("branchID").(string),
		PatientID:     data.PatientID,
		DoctorID:      c.Locals("userID").(string),
		AppointmentID: data.AppointmentID,
		Items:         datatypes.JSON(items),
		Notes:         data.Notes,
	}

	if err := database.NewStore[models.Prescription]().Create(c.UserContext(), &prescription); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create prescription")
	}
	return c.Status(fiber.StatusCreated).JSON(prescription)
}

func GetPrescriptions(c *fiber.Ctx) error {
	branchID := c.Locals("branchID").(string)
	page := utils.ParseIntDefault(c.Query("page"), 1)
	limit := utils.ParseIntDefault(c.Query("limit"), 20)
	if limit > 100 {
		limit = 100
	}

	prescriptions, err := database.NewStore[models.Prescription]().Find(c.UserContext(), func(q *gorm.DB) *gorm.DB {
		q = q.Where("branch_id = ?", branchID)
		if p := c.Query("patient_id"); p != "" {
			q = q.Where("patient_id = ?", p)
		}
		if d := c.Query("doctor_id"); d != "" {
			q = q.Where("doctor_id = ?", d)
		}
		return q.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit)
	})
	if err != nil {
		return err
	}
	return c.JSON(prescriptions)
}

type updatePrescriptionDTO struct {
	Items []prescriptionItemDTO `json:"items" validate:"omitempty,min=1,dive"`
	Notes *string               `json:"notes"`
}

func UpdatePrescription(c *fiber.Ctx) error {
	var data updatePrescriptionDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}

	updates := map[string]any{}
	if data.Items != nil {
		items, err := json.Marshal(data.Items)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid prescription items")
		}
		updates["items"] = datatypes.JSON(items)
	}
	if data.Notes != nil {
		updates["notes"] = *data.Notes
	}
	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}

	prescription, err := database.NewStore[models.Prescription]().Update(c.UserContext(), c.Params("id"), updates)
	if err != nil {
		return err
	}
	return c.JSON(prescription)
}

func DeletePrescription(c *fiber.Ctx) error {
	prescription, err := database.NewStore[models.Prescription]().Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(prescription)
}
