package routes

import (
	"github.com/anjiri1684/stay_booking/handlers"
	"github.com/gofiber/fiber/v2"
)

func UploadRoutes(api fiber.Router, h *handlers.Handler, auth []fiber.Handler) {
	api.Group("/uploads", auth...).Get("/signature", h.GenerateUploadSignature)
}
