package routes

import (
	"github.com/gofiber/fiber/v2"

	"meilenstein-backend/controllers"
	"meilenstein-backend/middlewares"
)

// Register wires all HTTP routes.
func Register(app *fiber.App) {
	api := app.Group("/api")

	// Public auth endpoints
	api.Post("/registration", controllers.Register)
	api.Post("/login", controllers.Login)
	api.Post("/logout", controllers.Logout)

	// Protected endpoints (JWT auth)
	protected := api.Group("")
	protected.Use(middlewares.IsAuthenticatedHeader())

	// Idempotency guard FIRST (not tied to request TX)
	protected.Use(middlewares.Idempotency())

	// Then per-request tenant transaction (pins search_path and commits/rolls back)
	protected.Use(middlewares.TenantTx())

	// Master data
	protected.Post("/party", controllers.CreateParty)
	protected.Get("/parties", controllers.GetParties)
	protected.Put("/party/:id", controllers.UpdateParty)

	protected.Post("/products", controllers.CreateProducts) // batch create
	protected.Get("/products", controllers.GetProducts)
	protected.Put("/product/:id", controllers.UpdateProduct)

	// Tenant configuration, sequences and currency rates
	protected.Get("/configuration", controllers.GetTenantConfiguration)
	protected.Put("/configuration", controllers.UpdateTenantConfiguration)
	protected.Post("/sequence", controllers.CreateSequence)
	protected.Get("/sequences", controllers.GetSequences)
	protected.Put("/currency", controllers.UpsertCurrency)
	protected.Get("/currencies", controllers.GetCurrencies)

	// Projects
	protected.Post("/project", controllers.CreateProject)
	protected.Get("/projects", controllers.GetProjects)
	protected.Get("/project/:id", controllers.GetProject)
	protected.Put("/project/:id", controllers.UpdateProject)
	protected.Get("/project/:id/pending-to-compensate", controllers.GetProjectPendingToCompensate)

	// Milestone templates
	protected.Post("/template-group", controllers.CreateTemplateGroup)
	protected.Get("/template-groups", controllers.GetTemplateGroups)
	protected.Get("/template-group/:id", controllers.GetTemplateGroup)
	protected.Put("/template-group/:id", controllers.UpdateTemplateGroup)
	protected.Post("/template-group/:id/generate", controllers.GenerateMilestones)

	// Milestones and their workflow
	protected.Post("/milestone", controllers.CreateMilestone)
	protected.Get("/milestones", controllers.GetMilestones)
	protected.Get("/milestone/:id", controllers.GetMilestone)
	protected.Put("/milestone/:id", controllers.UpdateMilestone)
	protected.Post("/milestone/:id/duplicate", controllers.DuplicateMilestone)
	protected.Post("/milestone/:id/credit", controllers.CreditMilestone)
	protected.Post("/milestones/confirm", controllers.ConfirmMilestones)
	protected.Post("/milestones/draft", controllers.ResetMilestones)
	protected.Post("/milestones/cancel", controllers.CancelMilestones)
	protected.Post("/milestones/check-trigger", controllers.CheckTriggerMilestones)
	protected.Post("/milestones/invoice", controllers.InvoiceMilestones)

	// Invoices produced by milestones
	protected.Get("/invoices", controllers.GetInvoices)
	protected.Get("/invoice/:id", controllers.GetInvoice)
	protected.Put("/invoice/:id/state", controllers.UpdateInvoiceState)
}
