package app

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"talent-ledger/internal/delivery/http/handler"
	"talent-ledger/internal/delivery/http/middleware"
	"talent-ledger/internal/delivery/http/routes"
	wspkg "talent-ledger/internal/ws"
)

type App struct {
	Fiber *fiber.App
}

func Bootstrap(c *Container) (*App, error) {
	f := fiber.New(fiber.Config{
		AppName: c.Config.App.AppName,
	})

	f.Use(middleware.NewAccessLogMiddleware(c.Logger).Middleware())
	f.Use(middleware.NewErrorMiddleware(c.Logger).Middleware())

	registry := &routes.Registry{
		Health:     handler.NewHealthHandler(c.DB, c.Cache),
		Auth:       handler.NewAuthHandler(c.Auth),
		Credential: handler.NewCredentialHandler(c.Credentials),
		Pool:       handler.NewPoolHandler(c.Pools),
		Platform:   handler.NewPlatformHandler(c.Platform),
		WS:         wspkg.NewHandler(c.Hub, c.Logger),
		AuthMw:     middleware.NewAuthMiddleware(c.JWT),
	}
	registry.Register(f)

	f.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	if err := c.Sweeper.Start(); err != nil {
		return nil, err
	}

	return &App{Fiber: f}, nil
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
