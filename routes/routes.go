package routes

import (
	"github.com/gofiber/fiber/v2"

	"praxis-backend/controllers"
	"praxis-backend/middlewares"
)

// Register wires all HTTP routes.
func Register(app *fiber.App) {
	api := app.Group("/api")

	// Capture ip/user-agent for public routes too (registration is audited).
	api.Use(middlewares.RequestContext())

	// Public auth endpoints. The idempotency guard runs here too; the key
	// tuple carries an empty user id for anonymous callers.
	api.Post("/auth/register", middlewares.Idempotency(), controllers.Register)
	api.Post("/auth/login", middlewares.Idempotency(), controllers.Login)
	api.Post("/auth/logout", middlewares.Idempotency(), controllers.Logout)

	// Protected endpoints (JWT auth)
	protected := api.Group("")
	protected.Use(middlewares.IsAuthenticatedHeader())

	// Re-install the request context now that identity locals exist.
	protected.Use(middlewares.RequestContext())

	// Idempotency guard runs after identity is known (the key tuple includes
	// the caller) and before any handler side effects.
	protected.Use(middlewares.Idempotency())

	// Patients
	protected.Post("/patients", controllers.CreatePatient)
	protected.Get("/patients", controllers.GetPatients)
	protected.Get("/patients/:id", controllers.GetPatient)
	protected.Patch("/patients/:id", controllers.UpdatePatient)
	protected.Delete("/patients/:id", controllers.DeletePatient)

	// Appointments (bulk route registered before :id so it wins the match)
	protected.Post("/appointments", controllers.CreateAppointment)
	protected.Get("/appointments", controllers.GetAppointments)
	protected.Patch("/appointments/bulk-status", controllers.BulkUpdateAppointments)
	protected.Patch("/appointments/:id", controllers.UpdateAppointment)
	protected.Delete("/appointments/:id", controllers.DeleteAppointment)

	// Inventory
	protected.Post("/inventory", controllers.CreateInventoryItem)
	protected.Post("/inventory/batch", controllers.CreateInventoryBatch)
	protected.Put("/inventory", controllers.UpsertInventoryItem)
	protected.Get("/inventory", controllers.GetInventory)
	protected.Patch("/inventory/:id", controllers.UpdateInventoryItem)
	protected.Delete("/inventory/expired", controllers.DeleteExpiredInventory)
	protected.Delete("/inventory/:id", controllers.DeleteInventoryItem)

	// Prescriptions
	protected.Post("/prescriptions", controllers.CreatePrescription)
	protected.Get("/prescriptions", controllers.GetPrescriptions)
	protected.Patch("/prescriptions/:id", controllers.UpdatePrescription)
	protected.Delete("/prescriptions/:id", controllers.DeletePrescription)

	// Users
	protected.Post("/users", controllers.CreateUser)
	protected.Get("/users", controllers.GetUsers)
	protected.Patch("/users/:id", controllers.UpdateUser)
	protected.Post("/users/:id/reset-token", controllers.IssueResetToken)
	protected.Delete("/users/:id", controllers.DeactivateUser)

	// Audit trail (read-only plus retention purge)
	protected.Get("/audit-logs", controllers.GetAuditLogs)
	protected.Get("/audit-logs/statistics", controllers.GetAuditStatistics)
	protected.Get("/audit-logs/export", controllers.ExportAuditLogs)
	protected.Get("/audit-logs/entity/:entity/:id", controllers.GetEntityHistory)
	protected.Get("/audit-logs/:id", controllers.GetAuditLog)
	protected.Delete("/audit-logs/purge", controllers.PurgeAuditLogs)
}
