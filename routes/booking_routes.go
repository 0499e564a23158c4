package routes

import (
	"github.com/anjiri1684/stay_booking/handlers"
	"github.com/gofiber/fiber/v2"
)

func BookingRoutes(api fiber.Router, h *handlers.Handler, auth []fiber.Handler) {
	bookings := api.Group("/bookings", auth...)
	bookings.Post("", h.CreateBooking)
	bookings.Get("/me", h.GetMyBookings)
	bookings.Post("/:bookingId/cancel", h.CancelBooking)
	bookings.Post("/:bookingId/review", h.CreateReview)
	bookings.Post("/:bookingId/payment-intent", h.CreatePaymentIntent)
}
