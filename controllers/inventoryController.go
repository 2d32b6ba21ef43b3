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

type inventoryItemDTO struct {
	ID           string  `json:"id"` // set on upsert, empty on create
	Name         string  `json:"name" validate:"required"`
	Category     string  `json:"category"`
	BatchNo      string  `json:"batch_no"`
	Quantity     int     `json:"quantity" validate:"gte=0"`
	ReorderLevel int     `json:"reorder_level" validate:"gte=0"`
	UnitCost     float64 `json:"unit_cost" validate:"gte=0"`
	ExpiryDate   *string `json:"expiry_date" validate:"omitempty,datetime=2006-01-02"`
}

func (d *inventoryItemDTO) toModel(branchID string) models.InventoryItem {
	item := models.InventoryItem{
		ID:           d.ID,
		BranchID:     branchID,
		Name:         d.Name,
		Category:     d.Category,
		BatchNo:      d.BatchNo,
		Quantity:     d.Quantity,
		ReorderLevel: d.ReorderLevel,
		UnitCost:     utils.Round2(d.UnitCost),
	}
	if d.ExpiryDate != nil {
		if exp, err := time.Parse("2006-01-02", *d.ExpiryDate); err == nil {
			item.ExpiryDate = &exp
		}
	}
	return item
}

func CreateInventoryItem(c *fiber.Ctx) error {
	var data inventoryItemDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}
	utils.NormalizeDTO(&data)

	item := data.toModel(c.Locals("branchID").(string))
	if err := database.NewStore[models.InventoryItem]().Create(c.UserContext(), &item); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create inventory item")
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// CreateInventoryBatch inserts a delivery of items in one batch.
func CreateInventoryBatch(c *fiber.Ctx) error {
	var data []inventoryItemDTO
	if err := middlewares.BindAndValidateSlice(c, &data); err != nil {
		return err
	}

	branchID := c.Locals("branchID").(string)
	items := make([]models.InventoryItem, 0, len(data))
	for i := range data {
		utils.NormalizeDTO(&data[i])
		items = append(items, data[i].toModel(branchID))
	}

	created, err := database.NewStore[models.InventoryItem]().CreateMany(c.UserContext(), items)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create inventory batch")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"created": created, "items": items})
}

// UpsertInventoryItem creates the item or replaces an existing one when the
// payload carries a known id (stock-count corrections re-submit full rows).
func UpsertInventoryItem(c *fiber.Ctx) error {
	var data inventoryItemDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}
	utils.NormalizeDTO(&data)

	item := data.toModel(c.Locals("branchID").(string))
	if err := database.NewStore[models.InventoryItem]().Upsert(c.UserContext(), &item); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not upsert inventory item")
	}
	return c.JSON(item)
}

func GetInventory(c *fiber.Ctx) error {
	branchID := c.Locals("branchID").(string)

	items, err := database.NewStore[models.InventoryItem]().Find(c.UserContext(), func(q *gorm.DB) *gorm.DB {
		q = q.Where("branch_id = ?", branchID)
		if c.QueryBool("low_stock") {
			q = q.Where("quantity <= reorder_level")
		}
		if cat := c.Query("category"); cat != "" {
			q = q.Where("category = ?", cat)
		}
		return q.Order("name")
	})
	if err != nil {
		return err
	}
	return c.JSON(items)
}

type updateInventoryDTO struct {
	Name         *string  `json:"name"`
	Category     *string  `json:"category"`
	Quantity     *int     `json:"quantity" validate:"omitempty,gte=0"`
	ReorderLevel *int     `json:"reorder_level" validate:"omitempty,gte=0"`
	UnitCost     *float64 `json:"unit_cost" validate:"omitempty,gte=0"`
}

func UpdateInventoryItem(c *fiber.Ctx) error {
	var data updateInventoryDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&data)

	updates := utils.UpdatesFromPtrDTO(&data, nil)
	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}

	item, err := database.NewStore[models.InventoryItem]().Update(c.UserContext(), c.Params("id"), updates)
	if err != nil {
		return err
	}
	return c.JSON(item)
}

// DeleteExpiredInventory drops every batch past its expiry date for the branch.
func DeleteExpiredInventory(c *fiber.Ctx) error {
	branchID := c.Locals("branchID").(string)
	deleted, err := database.NewStore[models.InventoryItem]().DeleteMany(
		c.UserContext(),
		"branch_id = ? AND expiry_date IS NOT NULL AND expiry_date < ?", branchID, time.Now(),
	)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"deleted": deleted})
}

func DeleteInventoryItem(c *fiber.Ctx) error {
	item, err := database.NewStore[models.InventoryItem]().Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(item)
}
