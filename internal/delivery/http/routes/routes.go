package routes

import (
	"locum-match/internal/delivery/http/handler"
	"locum-match/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type Registry struct {
	health *handler.HealthHandler
	runs   *handler.RunHandler
	outbox *handler.OutboxHandler
	report *handler.ReportHandler
	wsh    *ws.Handler
}

func NewRegistry(health *handler.HealthHandler, runs *handler.RunHandler, outbox *handler.OutboxHandler, report *handler.ReportHandler, wsh *ws.Handler) *Registry {
	return &Registry{health: health, runs: runs, outbox: outbox, report: report, wsh: wsh}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.health.RegisterRoutes(app)

	api := app.Group("/api")
	v1 := api.Group("/v1")
	r.runs.RegisterRoutes(v1)
	r.report.RegisterRoutes(v1)
	r.outbox.RegisterRoutes(v1)

	if r.wsh != nil {
		app.Get("/ws/runs", r.wsh.HandleRunsWS)
	}
}
