package routes

import (
	"github.com/anjiri1684/stay_booking/handlers"
	"github.com/gofiber/fiber/v2"
)

func AuthRoutes(api fiber.Router, h *handlers.Handler, limiter fiber.Handler) {
	auth := api.Group("/auth", limiter)
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
}
