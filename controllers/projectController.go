package controllers

import (
	"strings"

	"meilenstein-backend/billing"
	"meilenstein-backend/database"
	"meilenstein-backend/middlewares"
	"meilenstein-backend/models"
	"meilenstein-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProjectCreateDTO struct {
	Name          string           `json:"name" validate:"required,min=1"`
	Type          string           `json:"type" validate:"omitempty,oneof=project task"`
	ParentID      *uint            `json:"parent_id" validate:"omitempty"`
	PartyID       *uint            `json:"party_id" validate:"omitempty"`
	ProductID     *string          `json:"product_id" validate:"omitempty,uuid4"`
	Quantity      *decimal.Decimal `json:"quantity" validate:"omitempty"`
	ListPrice     *decimal.Decimal `json:"list_price" validate:"omitempty"`
	InvoiceMethod string           `json:"invoice_method" validate:"omitempty,oneof=manual milestone progress"`
	GroupInvoice  bool             `json:"group_invoice"`
}

type ProjectUpdateDTO struct {
	Name      *string          `json:"name" validate:"omitempty,min=1"`
	State     *string          `json:"state" validate:"omitempty,oneof=opened done"`
	PartyID   *uint            `json:"party_id" validate:"omitempty"`
	ProductID *string          `json:"product_id" validate:"omitempty,uuid4"`
	Quantity  *decimal.Decimal `json:"quantity" validate:"omitempty"`
	ListPrice *decimal.Decimal `json:"list_price" validate:"omitempty"`
	Progress  *decimal.Decimal `json:"progress" validate:"omitempty"`
}

// POST /api/project
func CreateProject(c *fiber.Ctx) error {
	var in ProjectCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	project := models.Project{
		Name:          strings.TrimSpace(in.Name),
		Type:          models.TypeProject,
		State:         models.ProjectOpened,
		ParentID:      in.ParentID,
		PartyID:       in.PartyID,
		ProductID:     in.ProductID,
		InvoiceMethod: models.ProjectInvoiceManual,
		GroupInvoice:  in.GroupInvoice,
	}
	if in.Type != "" {
		project.Type = models.ProjectType(in.Type)
	}
	if in.InvoiceMethod != "" {
		project.InvoiceMethod = models.ProjectInvoiceMethod(in.InvoiceMethod)
	}
	if in.Quantity != nil {
		project.Quantity = *in.Quantity
	}
	if in.ListPrice != nil {
		project.ListPrice = *in.ListPrice
	}

	if err := db.Create(&project).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create project")
	}
	return c.JSON(project)
}

// GET /api/projects
func GetProjects(c *fiber.Ctx) error {
	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	var projects []models.Project
	q := db.Preload("Party").Order("id")
	if state := c.Query("state"); state != "" {
		q = q.Where("state = ?", state)
	}
	if err := q.Find(&projects).Error; err != nil {
		return err
	}
	return c.JSON(projects)
}

// GET /api/project/:id
func GetProject(c *fiber.Ctx) error {
	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	var project models.Project
	err = db.Preload("Party").Preload("Product").Preload("Children").
		Preload("Milestones", func(q *gorm.DB) *gorm.DB { return q.Order("milestones.id") }).
		Preload("Milestones.Invoice").
		First(&project, "id = ?", c.Params("id")).Error
	if err != nil {
		return err
	}
	return c.JSON(project)
}

// PUT /api/project/:id
func UpdateProject(c *fiber.Ctx) error {
	var in ProjectUpdateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	var project models.Project
	if err := db.First(&project, "id = ?", c.Params("id")).Error; err != nil {
		return err
	}
	if in.Progress != nil && (in.Progress.IsNegative() || in.Progress.GreaterThan(decimal.NewFromInt(1))) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "progress must be between 0 and 1")
	}

	if in.Name != nil {
		project.Name = strings.TrimSpace(*in.Name)
	}
	if in.State != nil {
		project.State = models.ProjectState(*in.State)
	}
	if in.PartyID != nil {
		project.PartyID = in.PartyID
	}
	if in.ProductID != nil {
		project.ProductID = in.ProductID
	}
	if in.Quantity != nil {
		project.Quantity = *in.Quantity
	}
	if in.ListPrice != nil {
		project.ListPrice = *in.ListPrice
	}
	if in.Progress != nil {
		project.Progress = *in.Progress
	}

	if err := db.Omit("Party", "Product", "Children", "Milestones", "InvoicedProgress").Save(&project).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not update project")
	}
	return c.JSON(project)
}

// GET /api/project/:id/pending-to-compensate
func GetProjectPendingToCompensate(c *fiber.Ctx) error {
	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	var project models.Project
	err = db.Preload("Milestones.Invoice.Lines").First(&project, "id = ?", c.Params("id")).Error
	if err != nil {
		return err
	}

	rates, err := billing.LoadRates(db)
	if err != nil {
		return err
	}
	config, err := models.GetConfiguration(db)
	if err != nil {
		return err
	}

	digits := 2
	var currency models.Currency
	if err := db.First(&currency, "code = ?", config.CurrencyCode).Error; err == nil {
		digits = currency.Digits
	}

	return c.JSON(fiber.Map{
		"pending_to_compensate": utils.RoundAmount(project.PendingToCompensateAdvancedAmount(), digits),
		"invoiced_amount":       utils.RoundAmount(project.InvoicedAmountMilestone(config.CurrencyCode, rates.Convert), digits),
		"currency":              config.CurrencyCode,
	})
}
