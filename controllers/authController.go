package controllers

import (
	"praxis-backend/database"
	"praxis-backend/middlewares"
	"praxis-backend/models"
	"praxis-backend/utils"

	"github.com/gofiber/fiber/v2"
)

type registerDTO struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
	Role            string `json:"role" validate:"required,oneof=admin doctor receptionist pharmacist"`
	BranchID        string `json:"branch_id" validate:"required"`
}

func Register(c *fiber.Ctx) error {
	var data registerDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}
	utils.NormalizeDTO(&data)

	if data.Password != data.PasswordConfirm {
		return fiber.NewError(fiber.StatusBadRequest, "passwords do not match")
	}

	if _, err := database.NewStore[models.User]().FindOne(c.UserContext(), "email = ?", data.Email); err == nil {
		return fiber.NewError(fiber.StatusBadRequest, "email already exists")
	}

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

type loginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func Login(c *fiber.Ctx) error {
	var data loginDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}

	user, err := database.NewStore[models.User]().FindOne(c.UserContext(), "email = ? AND active = ?", data.Email, true)
	if err != nil || user.ComparePassword(data.Password) != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	token, err := middlewares.GenerateJWT(user.ID, user.BranchID, user.Role)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not issue token")
	}
	return c.JSON(fiber.Map{"token": token, "user": user})
}

func Logout(c *fiber.Ctx) error {
	// Bearer tokens are stateless; the client just drops the token.
	return c.JSON(fiber.Map{"message": "logged out"})
}
