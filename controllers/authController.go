package controllers

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"meilenstein-backend/database"
	"meilenstein-backend/middlewares"
	"meilenstein-backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type RegisterDTO struct {
	FirstName       string `json:"first_name" validate:"required,min=1"`
	LastName        string `json:"last_name" validate:"required,min=1"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	CompanyName     string `json:"company_name" validate:"required,min=1"`
	Address         string `json:"address" validate:"omitempty"`
	City            string `json:"city" validate:"omitempty"`
	Country         string `json:"country" validate:"omitempty"`
	Zip             string `json:"zip" validate:"omitempty"`
	UID             string `json:"uid" validate:"omitempty"`
	PhoneNumber     string `json:"phone_number" validate:"omitempty"`
	Currency        string `json:"currency" validate:"omitempty,len=3"`
}

type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// POST /api/registration
func Register(c *fiber.Ctx) error {
	var in RegisterDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	var existing models.User
	err := database.DB.Where("email = ?", in.Email).First(&existing).Error
	if err == nil {
		return fiber.NewError(fiber.StatusBadRequest, "email already exists")
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	schemaName, err := createSchema(in.CompanyName)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid company name for tenant schema")
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "EUR"
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		user := models.User{
			FirstName:  strings.TrimSpace(in.FirstName),
			LastName:   strings.TrimSpace(in.LastName),
			Email:      strings.TrimSpace(in.Email),
			SchemaName: schemaName,
		}
		if err := user.SetPassword(in.Password); err != nil {
			return err
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		company := models.Company{
			CompanyName:      strings.TrimSpace(in.CompanyName),
			Address:          strings.TrimSpace(in.Address),
			City:             strings.TrimSpace(in.City),
			Country:          strings.TrimSpace(in.Country),
			Zip:              strings.TrimSpace(in.Zip),
			UID:              strings.TrimSpace(in.UID),
			ContactFirstName: user.FirstName,
			ContactLastName:  user.LastName,
			PhoneNumber:      strings.TrimSpace(in.PhoneNumber),
			CurrencyCode:     currency,
			UserId:           user.Id,
			SchemaName:       schemaName,
		}
		return tx.Create(&company).Error
	})
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "registration failed")
	}

	if err := database.MigrateTenantSchema(schemaName); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not migrate tenant schema")
	}

	var company models.Company
	if err := database.DB.Preload("User").Where("schema_name = ?", schemaName).First(&company).Error; err != nil {
		return err
	}
	return c.JSON(company)
}

// createSchema sanitizes the company name into a Postgres schema and creates it.
func createSchema(company string) (string, error) {
	safeName := strings.ToLower(strings.TrimSpace(company))
	safeName = strings.ReplaceAll(safeName, " ", "_")
	valid := regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
	if !valid.MatchString(safeName) {
		return "", fmt.Errorf("invalid schema name after sanitization: %s", safeName)
	}
	if err := database.DB.Exec("CREATE SCHEMA IF NOT EXISTS " + safeName).Error; err != nil {
		return "", err
	}
	return safeName, nil
}

// POST /api/login
func Login(c *fiber.Ctx) error {
	var in LoginDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	var user models.User
	err := database.DB.Table("public.users").Where("email = ?", in.Email).First(&user).Error
	if err != nil || user.ComparePassword(in.Password) != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	token, err := middlewares.GenerateJWT(user.Id, user.SchemaName)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not issue token")
	}

	// Catch up tenant migrations on login, so older tenants pick up new tables.
	if err := database.MigrateTenantSchema(user.SchemaName); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not migrate tenant schema")
	}

	return c.JSON(fiber.Map{
		"token":  token,
		"schema": user.SchemaName,
		"user": fiber.Map{
			"id":    user.Id,
			"name":  user.FirstName + " " + user.LastName,
			"email": user.Email,
		},
	})
}

// POST /api/logout
func Logout(c *fiber.Ctx) error {
	cookie := fiber.Cookie{
		Name:     "jwt",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	}
	c.Cookie(&cookie)
	return c.JSON(fiber.Map{"message": "success"})
}
