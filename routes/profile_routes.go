package routes

import (
	"github.com/anjiri1684/stay_booking/handlers"
	"github.com/gofiber/fiber/v2"
)

func ProfileRoutes(api fiber.Router, h *handlers.Handler, auth []fiber.Handler) {
	profile := api.Group("/profile", auth...)
	profile.Get("/me", h.GetProfile)
	profile.Put("/me", h.UpdateProfile)
}
