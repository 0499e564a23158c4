package handlers

import (
	"time"

	"github.com/anjiri1684/stay_booking/apperrors"
	"github.com/anjiri1684/stay_booking/database"
	"github.com/anjiri1684/stay_booking/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ConfirmBookingRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid"`
}

type PayoutRequestBody struct {
	Amount decimal.Decimal `json:"amount"`
}

type MonthlyEarnings struct {
	Month    time.Time       `json:"month"`
	Earnings decimal.Decimal `json:"earnings"`
	Bookings int64           `json:"bookings"`
}

func (h *Handler) HostBookings(c *fiber.Ctx) error {
	page, limit, offset := pagination(c)
	hostID := currentPrincipal(c).UserID

	query := h.db.WithContext(c.UserContext()).Model(&models.Booking{}).
		Joins("JOIN listings ON listings.id = bookings.listing_id").
		Where("listings.host_id = ?", hostID)
	if status := c.Query("status"); status != "" {
		query = query.Where("bookings.status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return h.respondError(c, apperrors.Upstream("failed to count bookings", err))
	}

	var bookings []models.Booking
	err := query.Order("bookings.check_in asc").
		Offset(offset).Limit(limit).
		Preload("Guest").Preload("Listing").
		Find(&bookings).Error
	if err != nil {
		return h.respondError(c, apperrors.Upstream("failed to load bookings", err))
	}

	return c.JSON(fiber.Map{"data": bookings, "meta": pageMeta(total, page, limit)})
}

// ConfirmBooking is the host accepting a pending booking request.
func (h *Handler) ConfirmBooking(c *fiber.Ctx) error {
	var req ConfirmBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, "booking_id is required")
	}

	if _, err := h.bookings.Confirm(c.UserContext(), currentPrincipal(c), uuid.MustParse(req.BookingID)); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Booking confirmed"})
}

func (h *Handler) GetWallet(c *fiber.Ctx) error {
	wallet, err := h.store.GetWallet(c.UserContext(), currentPrincipal(c).UserID)
	if err != nil {
		if apperrors.Is(err, database.ErrWalletNotFound) {
			return h.respondError(c, apperrors.NotFound("host wallet not found"))
		}
		return h.respondError(c, apperrors.Upstream("failed to load wallet", err))
	}
	return c.JSON(wallet)
}

func (h *Handler) ListTransactions(c *fiber.Ctx) error {
	page, limit, offset := pagination(c)

	query := h.db.WithContext(c.UserContext()).Model(&models.Transaction{}).
		Where("user_id = ?", currentPrincipal(c).UserID)
	if txType := c.Query("type"); txType != "" {
		query = query.Where("type = ?", txType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return h.respondError(c, apperrors.Upstream("failed to count transactions", err))
	}
	var transactions []models.Transaction
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&transactions).Error; err != nil {
		return h.respondError(c, apperrors.Upstream("failed to load transactions", err))
	}

	return c.JSON(fiber.Map{"data": transactions, "meta": pageMeta(total, page, limit)})
}

func (h *Handler) RequestPayout(c *fiber.Ctx) error {
	var req PayoutRequestBody
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}

	payout, err := h.payouts.Request(c.UserContext(), currentPrincipal(c), req.Amount)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "payout": payout})
}

func (h *Handler) ListMyPayouts(c *fiber.Ctx) error {
	var payouts []models.PayoutRequest
	err := h.db.WithContext(c.UserContext()).
		Where("host_id = ?", currentPrincipal(c).UserID).
		Order("requested_at desc").
		Find(&payouts).Error
	if err != nil {
		return h.respondError(c, apperrors.Upstream("failed to load payout requests", err))
	}
	return c.JSON(payouts)
}

// HostAnalytics reports host earnings per month over the last year, taken
// from the ledger.
func (h *Handler) HostAnalytics(c *fiber.Ctx) error {
	hostID := currentPrincipal(c).UserID
	since := time.Now().AddDate(-1, 0, 0)
	db := h.db.WithContext(c.UserContext())

	var monthly []MonthlyEarnings
	err := db.Model(&models.Transaction{}).
		Select("date_trunc('month', created_at) AS month, COALESCE(SUM(amount), 0) AS earnings, COUNT(*) AS bookings").
		Where("user_id = ? AND type = ? AND created_at >= ?", hostID, string(models.TxHostEarning), since).
		Group("month").
		Order("month").
		Scan(&monthly).Error
	if err != nil {
		return h.respondError(c, apperrors.Upstream("failed to load analytics", err))
	}

	var upcoming int64
	db.Model(&models.Booking{}).
		Joins("JOIN listings ON listings.id = bookings.listing_id").
		Where("listings.host_id = ? AND bookings.status = ? AND bookings.check_in >= ?", hostID, string(models.BookingConfirmed), time.Now()).
		Count(&upcoming)

	var pending int64
	db.Model(&models.Booking{}).
		Joins("JOIN listings ON listings.id = bookings.listing_id").
		Where("listings.host_id = ? AND bookings.status = ?", hostID, string(models.BookingPending)).
		Count(&pending)

	return c.JSON(fiber.Map{
		"monthly_earnings": monthly,
		"upcoming_stays":   upcoming,
		"pending_requests": pending,
	})
}
