package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/compras-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Purchases *PurchaseHandler
	Stock     *StockHandler
	JWTSecret string
}

// Router registra las rutas de la API. Todo /api requiere Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	anyEmployee := RequireRole(entity.RoleAdmin, entity.RoleEmpleado)
	adminOnly := RequireRole(entity.RoleAdmin)

	compras := api.Group("/compras")
	compras.Get("/", deps.Purchases.List)
	compras.Get("/:id", deps.Purchases.GetByRef)
	compras.Get("/:id/pdf", deps.Purchases.Receipt)
	compras.Post("/", anyEmployee, deps.Purchases.Create)
	compras.Patch("/:id", anyEmployee, deps.Purchases.Update)
	compras.Delete("/:id", anyEmployee, deps.Purchases.Void)

	stock := api.Group("/stock")
	stock.Get("/:producto/:bodega", deps.Stock.Get)
	stock.Post("/", anyEmployee, deps.Stock.Create)
	stock.Put("/", adminOnly, deps.Stock.SetQuantity)
	stock.Post("/ajustes", adminOnly, deps.Stock.Adjust)
}
