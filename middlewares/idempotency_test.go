package middlewares_test

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"praxis-backend/middlewares"
	"praxis-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type completion struct {
	rec    *models.IdempotencyRecord
	status int
	body   []byte
}

type fakeIdemStore struct {
	existing    *models.IdempotencyRecord
	reserveErr  error
	completeErr error

	reserved  []*models.IdempotencyRecord
	completed []completion
}

func (s *fakeIdemStore) Reserve(ctx context.Context, rec *models.IdempotencyRecord) (*models.IdempotencyRecord, bool, error) {
	if s.reserveErr != nil {
		return nil, false, s.reserveErr
	}
	s.reserved = append(s.reserved, rec)
	if s.existing != nil {
		return s.existing, false, nil
	}
	return rec, true, nil
}

func (s *fakeIdemStore) Complete(ctx context.Context, rec *models.IdempotencyRecord, status int, body []byte) error {
	if s.completeErr != nil {
		return s.completeErr
	}
	s.completed = append(s.completed, completion{rec: rec, status: status, body: body})
	return nil
}

// newApp returns a fiber app with an authenticated caller, the idempotency
// middleware over the fake store, and counting POST/PATCH/GET handlers.
func newApp(store middlewares.IdempotencyStore, handlerCalls *int) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", "u1")
		return c.Next()
	})
	app.Use(middlewares.IdempotencyWithStore(store))
	app.Post("/api/appointments", func(c *fiber.Ctx) error {
		*handlerCalls++
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": "apt-1"})
	})
	app.Patch("/api/patients/:id", func(c *fiber.Ctx) error {
		*handlerCalls++
		return c.JSON(fiber.Map{"id": c.Params("id")})
	})
	app.Get("/api/patients", func(c *fiber.Ctx) error {
		*handlerCalls++
		return c.JSON([]string{})
	})
	return app
}

func TestSafeMethodPassesThrough(t *testing.T) {
	store := &fakeIdemStore{}
	calls := 0
	app := newApp(store, &calls)

	req := httptest.NewRequest("GET", "/api/patients", nil)
	req.Header.Set("Idempotency-Key", "K1")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, calls)
	assert.Empty(t, store.reserved, "GET must never consult the store")
}

func TestMissingKeyPassesThrough(t *testing.T) {
	store := &fakeIdemStore{}
	calls := 0
	app := newApp(store, &calls)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/appointments", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, 1, calls)
	assert.Empty(t, store.reserved)
	assert.Empty(t, store.completed)
}

func TestOversizedKeyRejected(t *testing.T) {
	store := &fakeIdemStore{}
	calls := 0
	app := newApp(store, &calls)

	req := httptest.NewRequest("POST", "/api/appointments", nil)
	req.Header.Set("Idempotency-Key", strings.Repeat("x", 129))
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, calls)
}

func TestMissExecutesAndStoresResponse(t *testing.T) {
	store := &fakeIdemStore{}
	calls := 0
	app := newApp(store, &calls)

	req := httptest.NewRequest("POST", "/api/appointments", nil)
	req.Header.Set("Idempotency-Key", "K1")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, 1, calls)

	require.Len(t, store.completed, 1)
	assert.Equal(t, fiber.StatusCreated, store.completed[0].status)
	assert.JSONEq(t, `{"id":"apt-1"}`, string(store.completed[0].body))
}

func TestHitReplaysWithoutRunningHandler(t *testing.T) {
	stored := []byte(`{"id":"apt-1"}`)
	store := &fakeIdemStore{existing: &models.IdempotencyRecord{
		StatusCode:   fiber.StatusCreated,
		ResponseBody: stored,
	}}
	calls := 0
	app := newApp(store, &calls)

	req := httptest.NewRequest("POST", "/api/appointments", nil)
	req.Header.Set("Idempotency-Key", "K1")
	resp, err := app.Test(req)
	require.NoError(t, err)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, stored, body, "replay must be byte-identical")
	assert.Zero(t, calls, "handler must not run on a completed duplicate")
	assert.Empty(t, store.completed)
}

func TestUnreadableStoredBodyFallsThrough(t *testing.T) {
	store := &fakeIdemStore{existing: &models.IdempotencyRecord{
		StatusCode:   fiber.StatusCreated,
		ResponseBody: []byte(`{not json`),
	}}
	calls := 0
	app := newApp(store, &calls)

	req := httptest.NewRequest("POST", "/api/appointments", nil)
	req.Header.Set("Idempotency-Key", "K1")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, 1, calls, "corrupt cache entry re-executes the handler")
	assert.Len(t, store.completed, 1)
}

func TestPendingReservationRunsHandler(t *testing.T) {
	// StatusCode 0: a concurrent request reserved the tuple but has not
	// completed; this request proceeds rather than blocking.
	store := &fakeIdemStore{existing: &models.IdempotencyRecord{StatusCode: 0}}
	calls := 0
	app := newApp(store, &calls)

	req := httptest.NewRequest("POST", "/api/appointments", nil)
	req.Header.Set("Idempotency-Key", "K1")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, 1, calls)
}

func TestReserveFailureFailsOpen(t *testing.T) {
	store := &fakeIdemStore{reserveErr: errors.New("db down")}
	calls := 0
	app := newApp(store, &calls)

	req := httptest.NewRequest("POST", "/api/appointments", nil)
	req.Header.Set("Idempotency-Key", "K1")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, 1, calls, "store outage must not block the request")
	assert.Empty(t, store.completed)
}

func TestCompleteFailureStillResponds(t *testing.T) {
	store := &fakeIdemStore{completeErr: errors.New("db down")}
	calls := 0
	app := newApp(store, &calls)

	req := httptest.NewRequest("POST", "/api/appointments", nil)
	req.Header.Set("Idempotency-Key", "K1")
	resp, err := app.Test(req)
	require.NoError(t, err)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, `{"id":"apt-1"}`, string(body), "broken store must not eat the response")
	assert.Equal(t, 1, calls)
	assert.Empty(t, store.completed)
}

func TestHitReplaysBodylessResponse(t *testing.T) {
	store := &fakeIdemStore{existing: &models.IdempotencyRecord{
		StatusCode: fiber.StatusNoContent,
	}}
	calls := 0
	app := newApp(store, &calls)

	req := httptest.NewRequest("POST", "/api/appointments", nil)
	req.Header.Set("Idempotency-Key", "K1")
	resp, err := app.Test(req)
	require.NoError(t, err)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Empty(t, body)
	assert.Zero(t, calls, "completed body-less duplicate must not re-execute")
}

func TestAnonymousCallerUsesEmptyUserID(t *testing.T) {
	// No auth middleware: mirrors the public register/login routes, where the
	// key tuple carries an empty user id.
	store := &fakeIdemStore{}
	calls := 0
	app := fiber.New()
	app.Use(middlewares.IdempotencyWithStore(store))
	app.Post("/api/auth/register", func(c *fiber.Ctx) error {
		calls++
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": "u-1"})
	})

	req := httptest.NewRequest("POST", "/api/auth/register", nil)
	req.Header.Set("Idempotency-Key", "K1")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, 1, calls)
	require.Len(t, store.reserved, 1)
	assert.Empty(t, store.reserved[0].UserID)
	assert.Equal(t, "auth", store.reserved[0].ResourceType)
	assert.Equal(t, "register", store.reserved[0].ResourceID)
}

func TestKeyTupleDerivation(t *testing.T) {
	store := &fakeIdemStore{}
	calls := 0
	app := newApp(store, &calls)

	req := httptest.NewRequest("PATCH", "/api/patients/p9", strings.NewReader("{}"))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	req.Header.Set("Idempotency-Key", " K1 ")
	_, err := app.Test(req)
	require.NoError(t, err)

	require.Len(t, store.reserved, 1)
	rec := store.reserved[0]
	assert.Equal(t, "K1", rec.Key, "key is trimmed")
	assert.Equal(t, "u1", rec.UserID)
	assert.Equal(t, "patients", rec.ResourceType)
	assert.Equal(t, "p9", rec.ResourceID)
	assert.Equal(t, "PATCH", rec.Method)
}

func TestCollectionTupleUsesDashSentinel(t *testing.T) {
	store := &fakeIdemStore{}
	calls := 0
	app := newApp(store, &calls)

	req := httptest.NewRequest("POST", "/api/appointments", nil)
	req.Header.Set("Idempotency-Key", "K1")
	_, err := app.Test(req)
	require.NoError(t, err)

	require.Len(t, store.reserved, 1)
	assert.Equal(t, "appointments", store.reserved[0].ResourceType)
	assert.Equal(t, "-", store.reserved[0].ResourceID)
}
