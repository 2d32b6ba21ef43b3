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

type createPatientDTO struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
	Gender  string `json:"gender" validate:"omitempty,oneof=male female other"`
	DOB     string `json:"dob" validate:"required,datetime=2006-01-02"`
	Address string `json:"address"`
	AbhaID  string `json:"abha_id"`
}

func CreatePatient(c *fiber.Ctx) error {
	var data createPatientDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}
	utils.NormalizeDTO(&data)

	dob, _ := time.Parse("2006-01-02", data.DOB)
	patient := models.Patient{
		BranchID: c.Locals("branchID").(string),
		Name:     data.Name,
		Phone:    data.Phone,
		Email:    data.Email,
		Gender:   data.Gender,
		DOB:      dob,
		Address:  data.Address,
		AbhaID:   data.AbhaID,
	}

	if err := database.NewStore[models.Patient]().Create(c.UserContext(), &patient); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create patient")
	}
	return c.Status(fiber.StatusCreated).JSON(patient)
}

func GetPatients(c *fiber.Ctx) error {
	branchID := c.Locals("branchID").(string)
	page := utils.ParseIntDefault(c.Query("page"), 1)
	limit := utils.ParseIntDefault(c.Query("limit"), 20)
	if limit > 100 {
		limit = 100
	}

	filter := func(q *gorm.DB) *gorm.DB {
		q = q.Where("branch_id = ?", branchID)
		if g := c.Query("gender"); g != "" {
			q = q.Where("gender = ?", g)
		}
		if s := c.Query("search"); s != "" {
			like := "%" + s + "%"
			q = q.Where("name ILIKE ? OR phone LIKE ? OR abha_id LIKE ?", like, like, like)
		}
		return q
	}
	paginate := func(q *gorm.DB) *gorm.DB {
		return q.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit)
	}

	store := database.NewStore[models.Patient]()
	total, err := store.Count(c.UserContext(), filter)
	if err != nil {
		return err
	}
	patients, err := store.Find(c.UserContext(), filter, paginate)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": patients,
		"meta": fiber.Map{"page": page, "limit": limit, "total": total},
	})
}

func GetPatient(c *fiber.Ctx) error {
	patient, err := database.NewStore[models.Patient]().FindByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	// Recent activity for the detail view.
	appointments, _ := database.NewStore[models.Appointment]().Find(c.UserContext(), func(q *gorm.DB) *gorm.DB {
		return q.Where("patient_id = ?", patient.ID).Order("date DESC").Limit(5)
	})
	prescriptions, _ := database.NewStore[models.Prescription]().Find(c.UserContext(), func(q *gorm.DB) *gorm.DB {
		return q.Where("patient_id = ?", patient.ID).Order("created_at DESC").Limit(5)
	})

	return c.JSON(fiber.Map{
		"patient":       patient,
		"appointments":  appointments,
		"prescriptions": prescriptions,
	})
}

type updatePatientDTO struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Gender  *string `json:"gender" validate:"omitempty,oneof=male female other"`
	Address *string `json:"address"`
	AbhaID  *string `json:"abha_id"`
}

func UpdatePatient(c *fiber.Ctx) error {
	var data updatePatientDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&data)

	updates := utils.UpdatesFromPtrDTO(&data, nil)
	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}

	patient, err := database.NewStore[models.Patient]().Update(c.UserContext(), c.Params("id"), updates)
	if err != nil {
		return err
	}
	return c.JSON(patient)
}

func DeletePatient(c *fiber.Ctx) error {
	patient, err := database.NewStore[models.Patient]().Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(patient)
}
