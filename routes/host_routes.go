package routes

import (
	"github.com/anjiri1684/stay_booking/handlers"
	"github.com/anjiri1684/stay_booking/middleware"
	"github.com/gofiber/fiber/v2"
)

func HostRoutes(api fiber.Router, h *handlers.Handler, auth []fiber.Handler) {
	host := api.Group("/host", withAuth(auth, middleware.HostRequired())...)

	host.Post("/listings", h.CreateListing)
	host.Get("/listings", h.ListMyListings)
	host.Put("/listings/:listingId", h.UpdateListing)

	host.Get("/bookings", h.HostBookings)
	host.Post("/bookings/confirm", h.ConfirmBooking)

	host.Get("/wallet", h.GetWallet)
	host.Get("/transactions", h.ListTransactions)
	host.Post("/payouts/request", h.RequestPayout)
	host.Get("/payouts/requests", h.ListMyPayouts)
	host.Get("/analytics", h.HostAnalytics)
}
