package http

import (
	"github.com/gofiber/fiber/v2"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Movements movementService
	Queries   stockReader
	// JWTSecret vacío deja las rutas sin autenticación (modo desarrollo); el actor queda vacío.
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	protected := api
	if deps.JWTSecret != "" {
		protected = api.Group("/", AuthMiddleware(deps.JWTSecret))
	}

	// Inventario (protegido)
	invGroup := protected.Group("/inventory")
	h := NewInventoryHandler(deps.Movements, deps.Queries)
	invGroup.Post("/movements", h.RegisterMovement)
	invGroup.Get("/movements", h.ListMovements)
	invGroup.Get("/movements/totals", h.MovementTotals)
	invGroup.Get("/movements/:id", h.GetMovement)
	invGroup.Post("/transfers", h.Transfer)
	invGroup.Get("/transfers/:id", h.GetTransfer)
	invGroup.Get("/locations", h.ListLocations)
	invGroup.Get("/stock/:product_id", h.GetStock)
	invGroup.Get("/summary", h.Summary)
	invGroup.Get("/least-moved", h.LeastMoved)
}
