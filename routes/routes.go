package routes

import (
	config "github.com/anjiri1684/stay_booking/configs"
	"github.com/anjiri1684/stay_booking/handlers"
	"github.com/anjiri1684/stay_booking/middleware"
	"github.com/anjiri1684/stay_booking/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Deps carries what the route groups need beyond the handler itself.
type Deps struct {
	Config  *config.Config
	Handler *handlers.Handler
	Users   middleware.UserLookup
	Hub     *websocket.Hub
	Log     *zap.Logger
}

func Setup(app *fiber.App, d Deps) {
	api := app.Group("/api/v1")
	auth := []fiber.Handler{middleware.Protected(d.Config.JWTSecret), middleware.LoadPrincipal(d.Users)}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	AuthRoutes(api, d.Handler, middleware.RateLimit(d.Config.AuthRequestsPerMinute, d.Log))
	PublicRoutes(api, d.Handler)
	ProfileRoutes(api, d.Handler, auth)
	UploadRoutes(api, d.Handler, auth)
	BookingRoutes(api, d.Handler, auth)
	PaymentRoutes(api, d.Handler, auth)
	HostRoutes(api, d.Handler, auth)
	AdminRoutes(api, d.Handler, auth)
	RealtimeRoutes(app, d)
}

func withAuth(auth []fiber.Handler, handler fiber.Handler) []fiber.Handler {
	chain := make([]fiber.Handler, 0, len(auth)+1)
	chain = append(chain, auth...)
	return append(chain, handler)
}

func RealtimeRoutes(app *fiber.App, d Deps) {
	app.Get("/ws",
		middleware.ProtectedSocket(d.Config.JWTSecret),
		middleware.LoadPrincipal(d.Users),
		websocket.Upgrade(func(c *fiber.Ctx) (uuid.UUID, bool) {
			p, ok := middleware.PrincipalFrom(c)
			return p.UserID, ok
		}),
		d.Hub.Handler(),
	)
}
