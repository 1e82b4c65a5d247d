package controllers

import (
	"strings"

	"meilenstein-backend/database"
	"meilenstein-backend/middlewares"
	"meilenstein-backend/models"
	"meilenstein-backend/utils"

	"github.com/gofiber/fiber/v2"
)

type PartyCreateDTO struct {
	Name    string `json:"name" validate:"required,min=1"`
	Address string `json:"address" validate:"omitempty"`
	City    string `json:"city" validate:"omitempty"`
	Country string `json:"country" validate:"omitempty"`
	Zip     string `json:"zip" validate:"omitempty"`
	Email   string `json:"email" validate:"omitempty,email"`
}

type PartyUpdateDTO struct {
	Name    *string `json:"name" validate:"omitempty,min=1"`
	Address *string `json:"address" validate:"omitempty"`
	City    *string `json:"city" validate:"omitempty"`
	Country *string `json:"country" validate:"omitempty"`
	Zip     *string `json:"zip" validate:"omitempty"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Active  *bool   `json:"active" validate:"omitempty"`
}

// POST /api/party
func CreateParty(c *fiber.Ctx) error {
	var in PartyCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	party := models.Party{
		Name:    strings.TrimSpace(in.Name),
		Address: strings.TrimSpace(in.Address),
		City:    strings.TrimSpace(in.City),
		Country: strings.TrimSpace(in.Country),
		Zip:     strings.TrimSpace(in.Zip),
		Email:   strings.TrimSpace(in.Email),
		Active:  true,
	}

	if err := db.Create(&party).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create party")
	}
	return c.JSON(party)
}

// GET /api/parties
func GetParties(c *fiber.Ctx) error {
	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	var parties []models.Party
	if err := db.Where("active = ?", true).Order("name").Find(&parties).Error; err != nil {
		return err
	}
	return c.JSON(parties)
}

// PUT /api/party/:id
func UpdateParty(c *fiber.Ctx) error {
	var in PartyUpdateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	var party models.Party
	if err := db.First(&party, "id = ?", c.Params("id")).Error; err != nil {
		return err
	}

	utils.NormalizePtrDTO(&in)
	updates := utils.UpdatesFromPtrDTO(&in, nil)
	if len(updates) == 0 {
		return c.JSON(party)
	}

	if err := db.Model(&party).Updates(updates).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not update party")
	}
	return c.JSON(party)
}
