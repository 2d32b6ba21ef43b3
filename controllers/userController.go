package controllers

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"praxis-backend/database"
	"praxis-backend/middlewares"
	"praxis-backend/models"
	"praxis-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type createUserDTO struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin doctor receptionist pharmacist"`
	BranchID string `json:"branch_id" validate:"required"`
}

func CreateUser(c *fiber.Ctx) error {
	var data createUserDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}
	utils.NormalizeDTO(&data)

	user := models.User{
		Name:     data.Name,
		Email:    data.Email,
		Role:     data.Role,
		BranchID: data.BranchID,
		Active:   true,
	}
	user.SetPassword(data.Password)

	if err := database.NewStore[models.User]().Create(c.UserContext(), &user); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create user")
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

func GetUsers(c *fiber.Ctx) error {
	branchID := c.Locals("branchID").(string)

	users, err := database.NewStore[models.User]().Find(c.UserContext(), func(q *gorm.DB) *gorm.DB {
		return q.Where("branch_id = ?", branchID).Order("name")
	})
	if err != nil {
		return err
	}
	return c.JSON(users)
}

type updateUserDTO struct {
	Name  *string `json:"name"`
	Email *string `json:"email" validate:"omitempty,email"`
	Role  *string `json:"role" validate:"omitempty,oneof=admin doctor receptionist pharmacist"`
}

func UpdateUser(c *fiber.Ctx) error {
	var data updateUserDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&data)

	updates := utils.UpdatesFromPtrDTO(&data, nil)
	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}

	user, err := database.NewStore[models.User]().Update(c.UserContext(), c.Params("id"), updates)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// IssueResetToken generates a password-reset token for a user. The token is
// returned once to the caller (an admin handing it to the user out of band);
// in the audit trail it only ever appears as the redaction sentinel.
func IssueResetToken(c *fiber.Ctx) error {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not generate token")
	}
	token := hex.EncodeToString(buf)
	expiry := time.Now().UTC().Add(2 * time.Hour)

	_, err := database.NewStore[models.User]().Update(c.UserContext(), c.Params("id"), map[string]any{
		"reset_token":        token,
		"reset_token_expiry": expiry,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"reset_token": token, "expires_at": expiry})
}

// DeactivateUser soft-disables the account so its history stays intact.
func DeactivateUser(c *fiber.Ctx) error {
	user, err := database.NewStore[models.User]().Update(c.UserContext(), c.Params("id"), map[string]any{"active": false})
	if err != nil {
		return err
	}
	return c.JSON(user)
}
