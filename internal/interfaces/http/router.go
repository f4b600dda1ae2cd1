package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/demo-data-assistant/internal/application/usecase"
	"github.com/jhoicas/demo-data-assistant/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	DemoData  *usecase.DemoDataUseCase
	JWTSecret string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	runs := NewRunHandler(deps.DemoData)
	demo := api.Group("/demo-data")
	anyRole := RequireRole(jwt.RoleAdmin, jwt.RoleOperator)

	demo.Get("/modules", anyRole, runs.Modules)
	demo.Post("/runs", RequireRole(jwt.RoleAdmin), runs.Create)
	demo.Get("/runs", anyRole, runs.List)
	demo.Get("/runs/:id", anyRole, runs.GetByID)
	demo.Get("/runs/:id/report", anyRole, runs.Report)
}
