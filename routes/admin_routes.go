package routes

import (
	"github.com/anjiri1684/stay_booking/handlers"
	"github.com/anjiri1684/stay_booking/middleware"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(api fiber.Router, h *handlers.Handler, auth []fiber.Handler) {
	admin := api.Group("/admin", withAuth(auth, middleware.AdminRequired())...)

	admin.Get("/listings/pending", h.ListPendingListings)
	admin.Put("/listings/:listingId", h.ModerateListing)
	admin.Get("/dashboard-analytics", h.GetDashboardAnalytics)

	reports := admin.Group("/reports")
	reports.Get("/transactions", h.GenerateTransactionReport)

	users := admin.Group("/users")
	users.Get("", h.GetAllUsers)
	users.Put("/:userId/role", h.ChangeUserRole)
	users.Put("/:userId/status", h.ToggleUserStatus)

	admin.Get("/payout-requests", h.ListPayoutRequests)
	admin.Post("/payout-requests/:requestId/process", h.ProcessPayoutRequest)

	admin.Get("/bookings", h.AdminGetAllBookings)
	admin.Get("/payments", h.AdminGetPayments)
	admin.Post("/reconcile", h.RunReconciliation)

	reviews := admin.Group("/reviews")
	reviews.Get("", h.AdminGetReviews)
	reviews.Delete("/:reviewId", h.AdminDeleteReview)
}
