package controllers

import (
	"meilenstein-backend/database"
	"meilenstein-backend/middlewares"
	"meilenstein-backend/models"
	"meilenstein-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductCreateDTO struct {
	Name        string           `json:"name" validate:"required,min=1"`
	Description string           `json:"description"`
	DefaultUnit string           `json:"default_unit" validate:"omitempty,min=1,max=16"`
	ListPrice   *decimal.Decimal `json:"list_price" validate:"omitempty"`
}

type ProductUpdateDTO struct {
	Name        *string          `json:"name" validate:"omitempty,min=1"`
	Description *string          `json:"description" validate:"omitempty"`
	DefaultUnit *string          `json:"default_unit" validate:"omitempty,min=1,max=16"`
	ListPrice   *decimal.Decimal `json:"list_price" validate:"omitempty"`
	Active      *bool            `json:"active" validate:"omitempty"`
}

// POST /api/products (accepts a batch)
func CreateProducts(c *fiber.Ctx) error {
	var inputs []ProductCreateDTO
	if err := c.BodyParser(&inputs); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if len(inputs) == 0 {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "empty product batch")
	}
	for i := range inputs {
		utils.NormalizeDTO(&inputs[i])
		if err := middlewares.ValidateStruct(inputs[i]); err != nil {
			return err
		}
	}

	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	created := make([]models.Product, 0, len(inputs))
	err = db.Transaction(func(tx *gorm.DB) error {
		for _, in := range inputs {
			product := models.Product{
				Name:        in.Name,
				Description: in.Description,
				DefaultUnit: "unit",
				Active:      true,
			}
			if in.DefaultUnit != "" {
				product.DefaultUnit = in.DefaultUnit
			}
			if in.ListPrice != nil {
				product.ListPrice = *in.ListPrice
			}
			if err := tx.Create(&product).Error; err != nil {
				return err
			}
			created = append(created, product)
		}
		return nil
	})
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create products")
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// GET /api/products
func GetProducts(c *fiber.Ctx) error {
	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	var products []models.Product
	if err := db.Where("active = ?", true).Order("name").Find(&products).Error; err != nil {
		return err
	}
	return c.JSON(products)
}

// PUT /api/product/:id
func UpdateProduct(c *fiber.Ctx) error {
	var in ProductUpdateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	var product models.Product
	if err := db.First(&product, "id = ?", c.Params("id")).Error; err != nil {
		return err
	}

	utils.NormalizePtrDTO(&in)
	updates := utils.UpdatesFromPtrDTO(&in, nil)
	if len(updates) == 0 {
		return c.JSON(product)
	}

	if err := db.Model(&product).Updates(updates).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not update product")
	}
	return c.JSON(product)
}
