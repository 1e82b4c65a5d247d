package controllers

import (
	"meilenstein-backend/database"
	"meilenstein-backend/middlewares"
	"meilenstein-backend/models"
	"meilenstein-backend/utils"

	"github.com/gofiber/fiber/v2"
)

type InvoiceStateDTO struct {
	State string `json:"state" validate:"required,oneof=posted paid cancel"`
}

// Milestone invoicing creates draft invoices; this controller only exposes
// them and moves them through their own lifecycle.

// GET /api/invoices
func GetInvoices(c *fiber.Ctx) error {
	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	limit := utils.ParseIntDefault(c.Query("limit"), 100)
	offset := utils.ParseIntDefault(c.Query("offset"), 0)

	q := db.Preload("Party").Order("id").Limit(limit).Offset(offset)
	if projectID := c.Query("project_id"); projectID != "" {
		q = q.Where("project_id = ?", projectID)
	}
	if state := c.Query("state"); state != "" {
		q = q.Where("state = ?", state)
	}

	var invoices []models.Invoice
	if err := q.Find(&invoices).Error; err != nil {
		return err
	}
	return c.JSON(invoices)
}

// GET /api/invoice/:id
func GetInvoice(c *fiber.Ctx) error {
	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	var invoice models.Invoice
	err = db.Preload("Party").Preload("Lines").First(&invoice, "id = ?", c.Params("id")).Error
	if err != nil {
		return err
	}
	return c.JSON(invoice)
}

var invoiceTransitions = map[models.InvoiceState][]models.InvoiceState{
	models.InvoiceDraft:  {models.InvoicePosted, models.InvoiceCancel},
	models.InvoicePosted: {models.InvoicePaid, models.InvoiceCancel},
}

// PUT /api/invoice/:id/state
// Cancelling an advancement invoice reopens its amount in the project's
// pending-to-compensate balance.
func UpdateInvoiceState(c *fiber.Ctx) error {
	var in InvoiceStateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	var invoice models.Invoice
	if err := db.First(&invoice, "id = ?", c.Params("id")).Error; err != nil {
		return err
	}

	target := models.InvoiceState(in.State)
	allowed := false
	for _, next := range invoiceTransitions[invoice.State] {
		if next == target {
			allowed = true
			break
		}
	}
	if !allowed {
		return fiber.NewError(fiber.StatusUnprocessableEntity,
			"invoice cannot move from "+string(invoice.State)+" to "+string(target))
	}

	invoice.State = target
	if err := db.Omit("Party", "Project", "Lines").Save(&invoice).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not update invoice")
	}
	return c.JSON(invoice)
}
