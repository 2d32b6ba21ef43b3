package middlewares

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"praxis-backend/database"
	"praxis-backend/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IdempotencyStore persists idempotency records. Reserve atomically inserts a
// pending record for the key tuple or, on a unique-index collision, returns
// the row that won the race (created=false).
type IdempotencyStore interface {
	Reserve(ctx context.Context, rec *models.IdempotencyRecord) (existing *models.IdempotencyRecord, created bool, err error)
	Complete(ctx context.Context, rec *models.IdempotencyRecord, status int, body []byte) error
}

// Idempotency processes the Idempotency-Key header for mutating HTTP methods:
// a duplicate submission of a completed request is answered with the stored
// status and body, without running the handler again.
//
// Every storage failure in here fails open - the worst outcome of a broken
// idempotency table is a request that executes normally without retry
// protection, never a blocked request.
func Idempotency() fiber.Handler {
	return IdempotencyWithStore(gormIdempotencyStore{})
}

// IdempotencyWithStore is Idempotency with an explicit store, for tests.
func IdempotencyWithStore(store IdempotencyStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		method := strings.ToUpper(c.Method())
		if method != fiber.MethodPost && method != fiber.MethodPut && method != fiber.MethodPatch && method != fiber.MethodDelete {
			return c.Next()
		}

		key := strings.TrimSpace(c.Get("Idempotency-Key"))
		if key == "" {
			return c.Next()
		}
		if len(key) > 128 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Idempotency-Key too long"})
		}

		userID, _ := c.Locals("userID").(string) // empty for anonymous callers
		resourceType, resourceID := resourceFromPath(c)

		rec := &models.IdempotencyRecord{
			Key:          key,
			UserID:       userID,
			ResourceType: resourceType,
			ResourceID:   resourceID,
			Method:       method,
		}

		existing, created, err := store.Reserve(c.UserContext(), rec)
		if err != nil {
			// Treat as a miss; run the handler without retry protection.
			zap.L().Warn("idempotency reserve failed", zap.Error(err))
			return c.Next()
		}

		if !created && existing != nil && existing.StatusCode != 0 {
			if len(existing.ResponseBody) == 0 {
				// Completed body-less response (204 and friends) replays too.
				c.Status(existing.StatusCode)
				return nil
			}
			if json.Valid(existing.ResponseBody) {
				// Completed duplicate: replay the stored response verbatim.
				c.Status(existing.StatusCode)
				c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
				return c.Send(existing.ResponseBody)
			}
			// Unreadable stored body: fall through and re-execute.
		}

		if err := c.Next(); err != nil {
			return err
		}

		status := c.Response().StatusCode()
		if status == 0 {
			if method == fiber.MethodPost {
				status = fiber.StatusCreated
			} else {
				status = fiber.StatusOK
			}
		}
		resp := c.Response().Body()
		blob := make([]byte, len(resp))
		copy(blob, resp)

		if err := store.Complete(c.UserContext(), rec, status, blob); err != nil {
			// The client still gets its response; only the next duplicate
			// will miss the cache.
			zap.L().Warn("idempotency store failed", zap.String("key", key), zap.Error(err))
		}
		return nil
	}
}

// resourceFromPath derives (resourceType, resourceID) from the request path:
// first segment after the /api prefix, and the :id route param falling back
// to the second segment, then a "-" sentinel.
func resourceFromPath(c *fiber.Ctx) (string, string) {
	segments := []string{}
	for _, s := range strings.Split(c.Path(), "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) > 0 && segments[0] == "api" {
		segments = segments[1:]
	}

	resourceType := "unknown"
	if len(segments) > 0 {
		resourceType = segments[0]
	}
	resourceID := c.Params("id")
	if resourceID == "" && len(segments) > 1 {
		resourceID = segments[1]
	}
	if resourceID == "" {
		resourceID = "-"
	}
	return resourceType, resourceID
}

// gormIdempotencyStore runs against the shared connection. Writes bypass the
// audited store on purpose: caching plumbing is not a business mutation.
type gormIdempotencyStore struct{}

func (gormIdempotencyStore) Reserve(ctx context.Context, rec *models.IdempotencyRecord) (*models.IdempotencyRecord, bool, error) {
	var existing models.IdempotencyRecord
	created := false
	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where(tupleConds(rec)).First(&existing).Error
		if err == nil {
			return nil
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := tx.Create(rec).Error; err != nil {
			// Unique race: a concurrent duplicate inserted first; read it.
			if e2 := tx.Where(tupleConds(rec)).First(&existing).Error; e2 != nil {
				return err
			}
			return nil
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if created {
		return rec, true, nil
	}
	return &existing, false, nil
}

func (gormIdempotencyStore) Complete(ctx context.Context, rec *models.IdempotencyRecord, status int, body []byte) error {
	now := time.Now().UTC()
	return database.DB.WithContext(ctx).Model(&models.IdempotencyRecord{}).
		Where(tupleConds(rec)).
		Updates(map[string]any{
			"status_code":   status,
			"response_body": body,
			"completed_at":  &now,
		}).Error
}

func tupleConds(rec *models.IdempotencyRecord) map[string]any {
	return map[string]any{
		"key":           rec.Key,
		"user_id":       rec.UserID,
		"resource_type": rec.ResourceType,
		"resource_id":   rec.ResourceID,
		"method":        rec.Method,
	}
}
