package handlers

import (
	"bounty-board-system/middleware"
	"bounty-board-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupBountyRoutes(app *fiber.App, coordinator *services.Coordinator, serviceToken string) {
	api := app.Group("/api")

	// 🔓 Public discovery and review routes
	api.Get("/bounties", coordinator.ListBounties)
	api.Get("/my-bounties/:creatorAddress", coordinator.GetMyBounties)
	api.Get("/bounty/:id", coordinator.GetBounty)
	api.Get("/bounty/:id/submissions", coordinator.ListSubmissions)

	// 🔓 Agents submit results directly
	api.Post("/bounty/:id/submit", coordinator.CreateSubmission)

	// 🔐 Registration and reconciliation — callers must have confirmed the
	// corresponding on-chain transaction first
	secured := api.Group("/", middleware.ServiceAuthMiddleware(serviceToken))
	secured.Post("/bounty", coordinator.CreateBounty)
	secured.Patch("/bounty/:id/status", coordinator.UpdateBountyStatus)
	secured.Post("/bounty/:id/attachments", coordinator.UploadAttachments)
}
