package routes

import (
	"github.com/gofiber/fiber/v3"

	"talent-ledger/internal/delivery/http/handler"
	"talent-ledger/internal/delivery/http/middleware"
	"talent-ledger/internal/ws"
)

type Registry struct {
	Health     *handler.HealthHandler
	Auth       *handler.AuthHandler
	Credential *handler.CredentialHandler
	Pool       *handler.PoolHandler
	Platform   *handler.PlatformHandler
	WS         *ws.Handler

	AuthMw *middleware.AuthMiddleware
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.Health.RegisterRoutes(app)

	api := app.Group("/api")
	r.registerV1(api.Group("/v1"))
}

func (r *Registry) registerV1(v1 fiber.Router) {
	authGroup := v1.Group("/auth")
	r.Auth.RegisterRoutes(authGroup)

	// Pool reads and the event stream are public; everything that moves
	// funds or mutates state requires a token.
	v1.Get("/pools", r.Pool.List)
	v1.Get("/pools/:id", r.Pool.Get)
	if r.WS != nil {
		v1.Get("/events/ws", r.WS.HandleEventsWS)
	}

	protected := v1.Group("", r.AuthMw.Middleware())

	credGroup := protected.Group("/credentials")
	r.Credential.RegisterRoutes(credGroup)

	poolGroup := protected.Group("/pools")
	r.Pool.RegisterRoutes(poolGroup)

	platformGroup := protected.Group("/platform")
	r.Platform.RegisterRoutes(platformGroup)
}
