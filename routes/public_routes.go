package routes

import (
	"github.com/anjiri1684/stay_booking/handlers"
	"github.com/gofiber/fiber/v2"
)

func PublicRoutes(api fiber.Router, h *handlers.Handler) {
	listings := api.Group("/listings")
	listings.Get("", h.ListListings)
	listings.Get("/:listingId", h.GetListing)
}
