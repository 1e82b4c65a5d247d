package controllers

import (
	"time"

	"meilenstein-backend/billing"
	"meilenstein-backend/database"
	"meilenstein-backend/middlewares"
	"meilenstein-backend/models"
	"meilenstein-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MilestoneFieldsDTO is the shared payload for milestone and template writes.
type MilestoneFieldsDTO struct {
	Kind            string           `json:"kind" validate:"omitempty,oneof=manual system"`
	Trigger         string           `json:"trigger" validate:"omitempty,oneof=on_start on_progress on_finish"`
	TriggerProgress *decimal.Decimal `json:"trigger_progress" validate:"omitempty"`

	InvoiceMethod string `json:"invoice_method" validate:"required,oneof=fixed percent progress remainder"`

	AdvancementProductID  *string          `json:"advancement_product_id" validate:"omitempty,uuid4"`
	AdvancementAmount     *decimal.Decimal `json:"advancement_amount" validate:"omitempty"`
	Currency              string           `json:"currency" validate:"omitempty,len=3"`
	InvoicePercent        *decimal.Decimal `json:"invoice_percent" validate:"omitempty"`
	CompensationProductID *string          `json:"compensation_product_id" validate:"omitempty,uuid4"`

	Months  int  `json:"months"`
	Weeks   int  `json:"weeks"`
	Days    int  `json:"days"`
	Month   *int `json:"month" validate:"omitempty,min=1,max=12"`
	Weekday *int `json:"weekday" validate:"omitempty,min=0,max=6"`
	Day     *int `json:"day" validate:"omitempty,min=1,max=31"`

	Description string `json:"description"`
}

func (d *MilestoneFieldsDTO) toFields() models.MilestoneFields {
	fields := models.MilestoneFields{
		Kind:                  models.KindManual,
		Trigger:               models.MilestoneTrigger(d.Trigger),
		TriggerProgress:       d.TriggerProgress,
		InvoiceMethod:         models.InvoiceMethod(d.InvoiceMethod),
		AdvancementProductID:  d.AdvancementProductID,
		AdvancementAmount:     d.AdvancementAmount,
		CurrencyCode:          d.Currency,
		InvoicePercent:        d.InvoicePercent,
		CompensationProductID: d.CompensationProductID,
		Months:                d.Months,
		Weeks:                 d.Weeks,
		Days:                  d.Days,
		Month:                 d.Month,
		Weekday:               d.Weekday,
		Day:                   d.Day,
		Description:           d.Description,
	}
	if d.Kind != "" {
		fields.Kind = models.MilestoneKind(d.Kind)
	}
	return fields
}

type MilestoneCreateDTO struct {
	ProjectID          uint       `json:"project_id" validate:"required,min=1"`
	PlannedInvoiceDate *time.Time `json:"planned_invoice_date" validate:"omitempty"`
	MilestoneFieldsDTO
}

type MilestoneBatchDTO struct {
	IDs []uint `json:"ids" validate:"required,min=1,dive,min=1"`
}

type MilestoneCreditDTO struct {
	InvoiceID uint `json:"invoice_id" validate:"required,min=1"`
}

// POST /api/milestone
func CreateMilestone(c *fiber.Ctx) error {
	var in MilestoneCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	var project models.Project
	if err := db.First(&project, in.ProjectID).Error; err != nil {
		return err
	}

	milestone := models.Milestone{
		ProjectID:          project.ID,
		MilestoneFields:    in.toFields(),
		PlannedInvoiceDate: in.PlannedInvoiceDate,
		State:              models.StateDraft,
	}
	if err := milestone.CheckFields(); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}

	if err := db.Omit("Project", "Invoice", "AdvancementProduct", "CompensationProduct").Create(&milestone).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create milestone")
	}
	return c.JSON(milestone)
}

// GET /api/milestones
func GetMilestones(c *fiber.Ctx) error {
	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	limit := utils.ParseIntDefault(c.Query("limit"), 100)
	offset := utils.ParseIntDefault(c.Query("offset"), 0)

	q := db.Preload("Invoice").Order("id").Limit(limit).Offset(offset)
	if projectID := c.Query("project_id"); projectID != "" {
		q = q.Where("project_id = ?", projectID)
	}
	if state := c.Query("state"); state != "" {
		q = q.Where("state = ?", state)
	}

	var milestones []models.Milestone
	if err := q.Find(&milestones).Error; err != nil {
		return err
	}
	return c.JSON(milestones)
}

// GET /api/milestone/:id
func GetMilestone(c *fiber.Ctx) error {
	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	var milestone models.Milestone
	err = db.Preload("Project.Party").Preload("Invoice.Lines").
		Preload("AdvancementProduct").Preload("CompensationProduct").
		First(&milestone, "id = ?", c.Params("id")).Error
	if err != nil {
		return err
	}
	return c.JSON(milestone)
}

// PUT /api/milestone/:id
// Milestone attributes are writable in draft only; later states are frozen.
func UpdateMilestone(c *fiber.Ctx) error {
	var in MilestoneFieldsDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	var milestone models.Milestone
	if err := db.First(&milestone, "id = ?", c.Params("id")).Error; err != nil {
		return err
	}
	if milestone.State != models.StateDraft {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "only draft milestones can be edited")
	}

	milestone.MilestoneFields = in.toFields()
	if err := milestone.CheckFields(); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}

	if err := db.Omit("Project", "Invoice", "AdvancementProduct", "CompensationProduct").Save(&milestone).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not update milestone")
	}
	return c.JSON(milestone)
}

// POST /api/milestone/:id/duplicate
// The copy re-enters draft without number, invoice or invoice date.
func DuplicateMilestone(c *fiber.Ctx) error {
	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	var milestone models.Milestone
	if err := db.First(&milestone, "id = ?", c.Params("id")).Error; err != nil {
		return err
	}

	dup := milestone.Duplicate()
	if err := db.Omit("Project", "Invoice", "AdvancementProduct", "CompensationProduct").Create(dup).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not duplicate milestone")
	}
	return c.JSON(dup)
}

func loadBatch(c *fiber.Ctx) (*gorm.DB, []*models.Milestone, error) {
	var in MilestoneBatchDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return nil, nil, err
	}
	db, err := database.GetTenantDB(c)
	if err != nil {
		return nil, nil, fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}
	milestones, err := billing.FindMilestones(db, in.IDs)
	if err != nil {
		return nil, nil, err
	}
	return db, milestones, nil
}

// POST /api/milestones/confirm
func ConfirmMilestones(c *fiber.Ctx) error {
	db, milestones, err := loadBatch(c)
	if err != nil {
		return err
	}
	config, err := models.GetConfiguration(db)
	if err != nil {
		return err
	}
	numbers, err := billing.SequenceSource(db, config)
	if err != nil {
		return err
	}
	if err := billing.Confirm(billing.NewStore(db), numbers, milestones); err != nil {
		return err
	}
	return c.JSON(milestones)
}

// POST /api/milestones/draft
func ResetMilestones(c *fiber.Ctx) error {
	db, milestones, err := loadBatch(c)
	if err != nil {
		return err
	}
	if err := billing.Reset(billing.NewStore(db), milestones); err != nil {
		return err
	}
	return c.JSON(milestones)
}

// POST /api/milestones/cancel
func CancelMilestones(c *fiber.Ctx) error {
	db, milestones, err := loadBatch(c)
	if err != nil {
		return err
	}
	if err := billing.Cancel(billing.NewStore(db), milestones); err != nil {
		return err
	}
	return c.JSON(milestones)
}

// POST /api/milestones/check-trigger
func CheckTriggerMilestones(c *fiber.Ctx) error {
	db, milestones, err := loadBatch(c)
	if err != nil {
		return err
	}
	config, err := models.GetConfiguration(db)
	if err != nil {
		return err
	}
	deps := billing.Deps{Store: billing.NewStore(db), Clock: billing.SystemClock(), Config: config}
	if err := billing.CheckTrigger(deps, milestones); err != nil {
		return err
	}
	return c.JSON(milestones)
}

// POST /api/milestones/invoice
func InvoiceMilestones(c *fiber.Ctx) error {
	db, milestones, err := loadBatch(c)
	if err != nil {
		return err
	}
	// Already invoiced milestones pass through so a re-run stays a no-op.
	for _, m := range milestones {
		if m.State != models.StateConfirmed && m.State != models.StateInvoiced {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "only confirmed milestones can be invoiced")
		}
	}
	config, err := models.GetConfiguration(db)
	if err != nil {
		return err
	}
	deps := billing.Deps{Store: billing.NewStore(db), Clock: billing.SystemClock(), Config: config}
	if err := billing.DoInvoice(deps, milestones); err != nil {
		return err
	}
	return c.JSON(milestones)
}

// POST /api/milestone/:id/credit
// Builds the reversal milestone bound to an existing credit invoice.
func CreditMilestone(c *fiber.Ctx) error {
	var in MilestoneCreditDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	var milestone models.Milestone
	err = db.Preload("Project").Preload("Invoice.Lines").
		Preload("AdvancementProduct").Preload("CompensationProduct").
		First(&milestone, "id = ?", c.Params("id")).Error
	if err != nil {
		return err
	}

	var creditInvoice models.Invoice
	if err := db.First(&creditInvoice, in.InvoiceID).Error; err != nil {
		return err
	}

	config, err := models.GetConfiguration(db)
	if err != nil {
		return err
	}

	credit, err := billing.Credit(&milestone, &creditInvoice, config, billing.SystemClock())
	if err != nil {
		return err
	}
	if err := db.Omit("Project", "Invoice", "AdvancementProduct", "CompensationProduct").Create(credit).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create credit milestone")
	}
	return c.JSON(credit)
}
