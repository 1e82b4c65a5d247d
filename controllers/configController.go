package controllers

import (
	"strings"

	"meilenstein-backend/database"
	"meilenstein-backend/middlewares"
	"meilenstein-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type ConfigurationUpdateDTO struct {
	MilestoneSequenceID   *uint            `json:"milestone_sequence_id" validate:"omitempty,min=1"`
	AdvancementProductID  *string          `json:"advancement_product_id" validate:"omitempty,uuid4"`
	CompensationProductID *string          `json:"compensation_product_id" validate:"omitempty,uuid4"`
	Currency              *string          `json:"currency" validate:"omitempty,len=3"`
	TaxRate               *decimal.Decimal `json:"tax_rate" validate:"omitempty"`
}

type SequenceCreateDTO struct {
	Code    string `json:"code" validate:"required,min=1,max=64"`
	Prefix  string `json:"prefix" validate:"omitempty,max=16"`
	Padding int    `json:"padding" validate:"omitempty,min=1,max=12"`
}

type CurrencyUpsertDTO struct {
	Code   string          `json:"code" validate:"required,len=3"`
	Digits *int            `json:"digits" validate:"omitempty,min=0,max=8"`
	Rate   decimal.Decimal `json:"rate" validate:"required"`
}

// GET /api/configuration
func GetTenantConfiguration(c *fiber.Ctx) error {
	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	config, err := models.GetConfiguration(db)
	if err != nil {
		return err
	}
	return c.JSON(config)
}

// PUT /api/configuration
func UpdateTenantConfiguration(c *fiber.Ctx) error {
	var in ConfigurationUpdateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	config, err := models.GetConfiguration(db)
	if err != nil {
		return err
	}

	if in.MilestoneSequenceID != nil {
		var seq models.Sequence
		if err := db.First(&seq, *in.MilestoneSequenceID).Error; err != nil {
			return err
		}
		config.MilestoneSequenceID = in.MilestoneSequenceID
		config.MilestoneSequence = &seq
	}
	if in.AdvancementProductID != nil {
		config.AdvancementProductID = in.AdvancementProductID
	}
	if in.CompensationProductID != nil {
		config.CompensationProductID = in.CompensationProductID
	}
	if in.Currency != nil {
		config.CurrencyCode = strings.ToUpper(strings.TrimSpace(*in.Currency))
	}
	if in.TaxRate != nil {
		if in.TaxRate.IsNegative() || in.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "tax rate must be between 0 and 1")
		}
		config.TaxRate = *in.TaxRate
	}

	if err := db.Omit("MilestoneSequence", "AdvancementProduct", "CompensationProduct").Save(config).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not update configuration")
	}
	return c.JSON(config)
}

// POST /api/sequence
func CreateSequence(c *fiber.Ctx) error {
	var in SequenceCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	seq := models.Sequence{
		Code:    strings.TrimSpace(in.Code),
		Prefix:  strings.TrimSpace(in.Prefix),
		Padding: 4,
		Next:    1,
	}
	if in.Padding > 0 {
		seq.Padding = in.Padding
	}

	if err := db.Create(&seq).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create sequence")
	}
	return c.JSON(seq)
}

// GET /api/sequences
func GetSequences(c *fiber.Ctx) error {
	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	var sequences []models.Sequence
	if err := db.Order("code").Find(&sequences).Error; err != nil {
		return err
	}
	return c.JSON(sequences)
}

// PUT /api/currency
// Creates or updates one conversion rate into the company currency.
func UpsertCurrency(c *fiber.Ctx) error {
	var in CurrencyUpsertDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	if !in.Rate.IsPositive() {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "rate must be positive")
	}

	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	currency := models.Currency{
		Code:   strings.ToUpper(strings.TrimSpace(in.Code)),
		Digits: 2,
		Rate:   in.Rate,
	}
	if in.Digits != nil {
		currency.Digits = *in.Digits
	}

	if err := db.Save(&currency).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not save currency")
	}
	return c.JSON(currency)
}

// GET /api/currencies
func GetCurrencies(c *fiber.Ctx) error {
	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	var currencies []models.Currency
	if err := db.Order("code").Find(&currencies).Error; err != nil {
		return err
	}
	return c.JSON(currencies)
}
