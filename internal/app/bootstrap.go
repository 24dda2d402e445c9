package app

import (
	"fmt"
	"strings"

	"locum-match/internal/config"
	"locum-match/internal/delivery/http/handler"
	"locum-match/internal/delivery/http/middleware"
	"locum-match/internal/delivery/http/routes"
	"locum-match/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

// Bootstrap wires the container, the hub and the HTTP surface. The returned
// cleanup closes the pool.
func Bootstrap(cfg config.Config, c *Container) (*App, func() error, error) {
	f := fiber.New(fiber.Config{
		AppName: cfg.App.AppName,
	})

	errMw := middleware.NewErrorMiddleware()
	accessMw := middleware.NewAccessLogMiddleware(c.Logger)
	f.Use(errMw.Middleware())
	f.Use(accessMw.Middleware())

	go c.Hub.Run()

	registry := routes.NewRegistry(
		handler.NewHealthHandler(c.DB, c.Cache),
		handler.NewRunHandler(c.ShortTerm, c.Digest, c.Queries),
		handler.NewOutboxHandler(c.Queries),
		handler.NewReportHandler(c.Reports),
		ws.NewHandler(c.Hub, c.Logger),
	)
	registry.Register(f)

	return &App{Fiber: f, Container: c}, c.Close, nil
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
