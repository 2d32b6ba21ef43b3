package controllers

import (
	"encoding/csv"
	"strings"
	"time"

	"praxis-backend/database"
	"praxis-backend/models"
	"praxis-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// auditLogFilter turns the request's query params into a reusable scope so
// list, count and aggregate queries all see the same conditions on a fresh
// statement.
func auditLogFilter(c *fiber.Ctx) database.Scope {
	return func(q *gorm.DB) *gorm.DB {
		if e := c.Query("entity"); e != "" {
			q = q.Where("entity = ?", e)
		}
		if id := c.Query("entity_id"); id != "" {
			q = q.Where("entity_id = ?", id)
		}
		if a := c.Query("action"); a != "" {
			q = q.Where("action = ?", a)
		}
		if u := c.Query("user_id"); u != "" {
			q = q.Where("user_id = ?", u)
		}
		if from := c.Query("start_date"); from != "" {
			if t, err := time.Parse("2006-01-02", from); err == nil {
				q = q.Where("timestamp >= ?", t)
			}
		}
		if to := c.Query("end_date"); to != "" {
			if t, err := time.Parse("2006-01-02", to); err == nil {
				q = q.Where("timestamp <= ?", t.Add(24*time.Hour))
			}
		}
		if s := c.Query("search"); s != "" {
			like := "%" + s + "%"
			q = q.Where("entity ILIKE ? OR entity_id ILIKE ? OR action ILIKE ?", like, like, like)
		}
		return q
	}
}

func GetAuditLogs(c *fiber.Ctx) error {
	page := utils.ParseIntDefault(c.Query("page"), 1)
	limit := utils.ParseIntDefault(c.Query("limit"), 50)
	if limit > 100 {
		limit = 100
	}

	store := database.NewStore[models.AuditLog]()
	total, err := store.Count(c.UserContext(), auditLogFilter(c))
	if err != nil {
		return err
	}
	logs, err := store.Find(c.UserContext(), auditLogFilter(c), func(q *gorm.DB) *gorm.DB {
		return q.Order("timestamp DESC").Offset((page - 1) * limit).Limit(limit)
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": logs,
		"meta": fiber.Map{"page": page, "limit": limit, "total": total},
	})
}

func GetAuditLog(c *fiber.Ctx) error {
	log, err := database.NewStore[models.AuditLog]().FindByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(log)
}

// GetEntityHistory returns the full mutation history of one row, newest first.
func GetEntityHistory(c *fiber.Ctx) error {
	logs, err := database.NewStore[models.AuditLog]().Find(c.UserContext(), func(q *gorm.DB) *gorm.DB {
		return q.Where("entity = ? AND entity_id = ?", c.Params("entity"), c.Params("id")).
			Order("timestamp DESC")
	})
	if err != nil {
		return err
	}
	return c.JSON(logs)
}

type auditCount struct {
	Key   string `json:"key" gorm:"column:key"`
	Count int64  `json:"count"`
}

func GetAuditStatistics(c *fiber.Ctx) error {
	total, err := database.NewStore[models.AuditLog]().Count(c.UserContext(), auditLogFilter(c))
	if err != nil {
		return err
	}

	// Grouped aggregates scan into a projection, which the store's typed
	// read surface cannot express; each runs on a fresh statement.
	agg := func() *gorm.DB {
		return database.DB.WithContext(c.UserContext()).
			Model(&models.AuditLog{}).Scopes(auditLogFilter(c))
	}

	var byAction, byEntity, byUser []auditCount
	agg().Select("action AS key, COUNT(*) AS count").
		Group("action").Order("count DESC").Scan(&byAction)
	agg().Select("entity AS key, COUNT(*) AS count").
		Group("entity").Order("count DESC").Limit(10).Scan(&byEntity)
	agg().Where("user_id IS NOT NULL").
		Select("user_id AS key, COUNT(*) AS count").
		Group("user_id").Order("count DESC").Limit(10).Scan(&byUser)

	return c.JSON(fiber.Map{
		"total":            total,
		"action_breakdown": byAction,
		"entity_breakdown": byEntity,
		"top_users":        byUser,
	})
}

// ExportAuditLogs streams the filtered logs as CSV (snapshots excluded; they
// can hold large payloads and the replay views fetch them individually).
func ExportAuditLogs(c *fiber.Ctx) error {
	logs, err := database.NewStore[models.AuditLog]().Find(c.UserContext(), auditLogFilter(c), func(q *gorm.DB) *gorm.DB {
		return q.Order("timestamp DESC").Limit(10000)
	})
	if err != nil {
		return err
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	_ = w.Write([]string{"id", "timestamp", "user_id", "action", "entity", "entity_id", "ip_address", "user_agent"})
	for _, log := range logs {
		_ = w.Write([]string{
			log.ID,
			log.Timestamp.UTC().Format(time.RFC3339),
			deref(log.UserID),
			log.Action,
			log.Entity,
			log.EntityID,
			deref(log.IPAddress),
			deref(log.UserAgent),
		})
	}
	w.Flush()

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="audit-logs.csv"`)
	return c.SendString(sb.String())
}

// PurgeAuditLogs removes records older than the retention window. It goes
// through the audited store, whose skip-self rule keeps the purge itself out
// of the trail.
func PurgeAuditLogs(c *fiber.Ctx) error {
	days := utils.ParseIntDefault(c.Query("days"), 90)
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	deleted, err := database.NewStore[models.AuditLog]().DeleteMany(c.UserContext(), "timestamp < ?", cutoff)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"deleted": deleted, "cutoff": cutoff})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
