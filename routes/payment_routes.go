package routes

import (
	"github.com/anjiri1684/stay_booking/handlers"
	"github.com/gofiber/fiber/v2"
)

// PaymentRoutes attaches auth per route: the provider webhook shares the
// prefix and authenticates by signature instead. Authorization for manual
// settlement is decided by the settlement service.
func PaymentRoutes(api fiber.Router, h *handlers.Handler, auth []fiber.Handler) {
	payments := api.Group("/payments")
	payments.Post("/webhook/stripe", h.StripeWebhook)
	payments.Post("/process-booking", withAuth(auth, h.ProcessBookingPayment)...)
}
