package middlewares_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"praxis-backend/middlewares"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type batchItemDTO struct {
	Name     string `json:"name" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

func postSlice(t *testing.T, body string) (int, error) {
	t.Helper()
	var bindErr error
	app := fiber.New()
	app.Post("/batch", func(c *fiber.Ctx) error {
		var items []batchItemDTO
		if err := middlewares.BindAndValidateSlice(c, &items); err != nil {
			bindErr = err
			if fe, ok := err.(*fiber.Error); ok {
				return c.SendStatus(fe.Code)
			}
			return c.SendStatus(fiber.StatusUnprocessableEntity)
		}
		return c.SendStatus(fiber.StatusCreated)
	})

	req := httptest.NewRequest("POST", "/batch", strings.NewReader(body))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode, bindErr
}

func TestBindAndValidateSliceAccepts(t *testing.T) {
	status, err := postSlice(t, `[{"name":"Gauze","quantity":5},{"name":"Saline","quantity":0}]`)
	assert.Equal(t, fiber.StatusCreated, status)
	assert.NoError(t, err)
}

func TestBindAndValidateSliceRejectsEmptyBatch(t *testing.T) {
	status, _ := postSlice(t, `[]`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestBindAndValidateSliceRejectsMalformedBody(t *testing.T) {
	status, _ := postSlice(t, `{not json`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestBindAndValidateSliceValidatesEveryElement(t *testing.T) {
	// Second element is invalid; the whole batch is rejected.
	status, err := postSlice(t, `[{"name":"Gauze","quantity":5},{"name":"","quantity":-1}]`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.NotEmpty(t, verrs)
}
