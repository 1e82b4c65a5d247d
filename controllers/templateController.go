package controllers

import (
	"strings"

	"meilenstein-backend/database"
	"meilenstein-backend/middlewares"
	"meilenstein-backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type TemplateLineDTO struct {
	Sequence *int `json:"sequence" validate:"omitempty,min=0"`
	MilestoneFieldsDTO
}

type TemplateGroupCreateDTO struct {
	Name        string            `json:"name" validate:"required,min=1"`
	Active      *bool             `json:"active" validate:"omitempty"`
	Description string            `json:"description"`
	Lines       []TemplateLineDTO `json:"lines" validate:"omitempty,dive"`
}

type TemplateGroupUpdateDTO struct {
	Name        *string            `json:"name" validate:"omitempty,min=1"`
	Active      *bool              `json:"active" validate:"omitempty"`
	Description *string            `json:"description" validate:"omitempty"`
	Lines       *[]TemplateLineDTO `json:"lines" validate:"omitempty,dive"`
}

type GenerateMilestonesDTO struct {
	ProjectID uint `json:"project_id" validate:"required,min=1"`
}

func buildTemplateLines(dtos []TemplateLineDTO) ([]models.MilestoneTemplate, error) {
	lines := make([]models.MilestoneTemplate, 0, len(dtos))
	for _, d := range dtos {
		line := models.MilestoneTemplate{
			Sequence:        d.Sequence,
			MilestoneFields: d.toFields(),
		}
		if err := line.CheckFields(); err != nil {
			return nil, fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// POST /api/template-group
func CreateTemplateGroup(c *fiber.Ctx) error {
	var in TemplateGroupCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	lines, err := buildTemplateLines(in.Lines)
	if err != nil {
		return err
	}

	group := models.TemplateGroup{
		Name:        strings.TrimSpace(in.Name),
		Active:      true,
		Description: in.Description,
		Lines:       lines,
	}
	if in.Active != nil {
		group.Active = *in.Active
	}

	if err := db.Create(&group).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create template group")
	}
	return c.JSON(group)
}

// GET /api/template-groups
func GetTemplateGroups(c *fiber.Ctx) error {
	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	q := db.Preload("Lines").Order("id")
	if c.Query("active") == "true" {
		q = q.Where("active = ?", true)
	}

	var groups []models.TemplateGroup
	if err := q.Find(&groups).Error; err != nil {
		return err
	}
	return c.JSON(groups)
}

// GET /api/template-group/:id
func GetTemplateGroup(c *fiber.Ctx) error {
	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	var group models.TemplateGroup
	if err := db.Preload("Lines").First(&group, "id = ?", c.Params("id")).Error; err != nil {
		return err
	}
	return c.JSON(group)
}

// PUT /api/template-group/:id
// Passing lines replaces the whole line set.
func UpdateTemplateGroup(c *fiber.Ctx) error {
	var in TemplateGroupUpdateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	var group models.TemplateGroup
	if err := db.Preload("Lines").First(&group, "id = ?", c.Params("id")).Error; err != nil {
		return err
	}

	if in.Name != nil {
		group.Name = strings.TrimSpace(*in.Name)
	}
	if in.Active != nil {
		group.Active = *in.Active
	}
	if in.Description != nil {
		group.Description = *in.Description
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if in.Lines != nil {
			lines, err := buildTemplateLines(*in.Lines)
			if err != nil {
				return err
			}
			if err := tx.Where("group_id = ?", group.ID).Delete(&models.MilestoneTemplate{}).Error; err != nil {
				return err
			}
			group.Lines = lines
		}
		return tx.Save(&group).Error
	})
	if err != nil {
		return err
	}
	return c.JSON(group)
}

// POST /api/template-group/:id/generate
// Instantiates the group's templates as draft milestones on a project.
func GenerateMilestones(c *fiber.Ctx) error {
	var in GenerateMilestonesDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	var group models.TemplateGroup
	if err := db.Preload("Lines").First(&group, "id = ?", c.Params("id")).Error; err != nil {
		return err
	}
	if !group.Active {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "template group is inactive")
	}

	var project models.Project
	if err := db.First(&project, in.ProjectID).Error; err != nil {
		return err
	}

	milestones := group.Compute(&project)
	err = db.Transaction(func(tx *gorm.DB) error {
		for _, m := range milestones {
			if err := tx.Omit("Project", "Invoice", "AdvancementProduct", "CompensationProduct").Create(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not generate milestones")
	}
	return c.JSON(milestones)
}
