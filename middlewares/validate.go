package middlewares

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// BindAndValidate parses the request body into dst and validates it.
// Returns fiber.ErrBadRequest for parse errors and a validator.ValidationErrors for validation issues.
func BindAndValidate(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return validate.Struct(dst)
}

// BindAndValidateSlice parses the request body into dst, which must point to
// a slice of DTOs, and validates every element. An empty slice is rejected;
// batch endpoints have nothing to do with one.
func BindAndValidateSlice[T any](c *fiber.Ctx, dst *[]T) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if len(*dst) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "empty batch")
	}
	for i := range *dst {
		if err := ValidateStruct(&(*dst)[i]); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStruct validates any struct value using the shared validator instance.
func ValidateStruct(v interface{}) error {
	return validate.Struct(v)
}
