package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/anjiri1684/stay_booking/apperrors"
	"github.com/anjiri1684/stay_booking/models"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ModerateListingRequest struct {
	Status         string           `json:"status" validate:"required,oneof=approved rejected"`
	CommissionRate *decimal.Decimal `json:"commission_rate,omitempty"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

type ProcessPayoutRequest struct {
	Decision   string  `json:"decision" validate:"required,oneof=complete reject"`
	AdminNotes *string `json:"admin_notes"`
}

type DashboardAnalyticsResponse struct {
	TotalGuests        int64            `json:"total_guests"`
	TotalHosts         int64            `json:"total_hosts"`
	ActiveListings     int64            `json:"active_listings"`
	PendingListings    int64            `json:"pending_listings"`
	TotalRevenue       decimal.Decimal  `json:"total_revenue"`
	PlatformCommission decimal.Decimal  `json:"platform_commission"`
	BookingsLast30Days int64            `json:"bookings_last_30_days"`
	UnreconciledCount  int64            `json:"unreconciled_payments"`
	RecentBookings     []models.Booking `json:"recent_bookings"`
}

func (h *Handler) ListPendingListings(c *fiber.Ctx) error {
	var listings []models.Listing
	err := h.db.WithContext(c.UserContext()).
		Where("status = ?", string(models.ListingPending)).
		Preload("Host").
		Order("created_at asc").
		Find(&listings).Error
	if err != nil {
		return h.respondError(c, apperrors.Upstream("failed to load listings", err))
	}
	return c.JSON(listings)
}

func (h *Handler) ModerateListing(c *fiber.Ctx) error {
	listingID, err := paramUUID(c, "listingId")
	if err != nil {
		return h.respondError(c, err)
	}

	var req ModerateListingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	updates := map[string]interface{}{"status": req.Status}
	if req.CommissionRate != nil {
		if req.CommissionRate.IsNegative() || req.CommissionRate.GreaterThan(decimal.NewFromInt(100)) {
			return badRequest(c, "commission_rate must be between 0 and 100")
		}
		updates["commission_rate"] = req.CommissionRate.Round(2)
	}

	res := h.db.WithContext(c.UserContext()).Model(&models.Listing{}).
		Where("id = ?", listingID).
		Updates(updates)
	if res.Error != nil {
		return h.respondError(c, apperrors.Upstream("failed to update listing", res.Error))
	}
	if res.RowsAffected == 0 {
		return h.respondError(c, apperrors.NotFound("listing not found"))
	}

	h.log.Info("listing moderated",
		zap.String("listing_id", listingID.String()),
		zap.String("status", req.Status),
		zap.String("admin_id", currentPrincipal(c).UserID.String()))
	return c.JSON(fiber.Map{"success": true, "message": "Listing " + req.Status})
}

func (h *Handler) GetAllUsers(c *fiber.Ctx) error {
	page, limit, offset := pagination(c)
	query := h.db.WithContext(c.UserContext()).Model(&models.User{})

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		term := "%" + search + "%"
		query = query.Where("full_name ILIKE ? OR email ILIKE ?", term, term)
	}
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return h.respondError(c, apperrors.Upstream("failed to count users", err))
	}
	var users []models.User
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return h.respondError(c, apperrors.Upstream("failed to load users", err))
	}

	return c.JSON(fiber.Map{"data": users, "meta": pageMeta(total, page, limit)})
}

// ChangeUserRole moves a user within the closed role set. Promotion to host
// provisions the wallet settlements will credit.
func (h *Handler) ChangeUserRole(c *fiber.Ctx) error {
	userID, err := paramUUID(c, "userId")
	if err != nil {
		return h.respondError(c, err)
	}

	var req ChangeRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}
	role, ok := models.ParseRole(req.Role)
	if !ok {
		return badRequest(c, "role must be one of guest, host, admin")
	}
	if userID == currentPrincipal(c).UserID {
		return h.respondError(c, apperrors.Forbidden("you cannot change your own role"))
	}

	res := h.db.WithContext(c.UserContext()).Model(&models.User{}).
		Where("id = ?", userID).
		Update("role", string(role))
	if res.Error != nil {
		return h.respondError(c, apperrors.Upstream("failed to update role", res.Error))
	}
	if res.RowsAffected == 0 {
		return h.respondError(c, apperrors.NotFound("user not found"))
	}

	if role == models.RoleHost {
		if err := h.store.EnsureWallet(c.UserContext(), userID); err != nil {
			return h.respondError(c, apperrors.Upstream("failed to provision host wallet", err))
		}
	}

	return c.JSON(fiber.Map{"success": true, "message": "User role updated", "role": role})
}

func (h *Handler) ToggleUserStatus(c *fiber.Ctx) error {
	userID, err := paramUUID(c, "userId")
	if err != nil {
		return h.respondError(c, err)
	}

	var req struct {
		IsActive bool `json:"is_active"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}
	if userID == currentPrincipal(c).UserID && !req.IsActive {
		return h.respondError(c, apperrors.Forbidden("you cannot deactivate your own account"))
	}

	res := h.db.WithContext(c.UserContext()).Model(&models.User{}).
		Where("id = ?", userID).
		Update("is_active", req.IsActive)
	if res.Error != nil {
		return h.respondError(c, apperrors.Upstream("failed to update user", res.Error))
	}
	if res.RowsAffected == 0 {
		return h.respondError(c, apperrors.NotFound("user not found"))
	}
	return c.JSON(fiber.Map{"success": true, "message": "User status updated"})
}

func (h *Handler) AdminGetAllBookings(c *fiber.Ctx) error {
	page, limit, offset := pagination(c)
	query := h.db.WithContext(c.UserContext()).Model(&models.Booking{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if paymentStatus := c.Query("payment_status"); paymentStatus != "" {
		query = query.Where("payment_status = ?", paymentStatus)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return h.respondError(c, apperrors.Upstream("failed to count bookings", err))
	}
	var bookings []models.Booking
	err := query.Order("created_at desc").Offset(offset).Limit(limit).
		Preload("Guest").Preload("Listing").
		Find(&bookings).Error
	if err != nil {
		return h.respondError(c, apperrors.Upstream("failed to load bookings", err))
	}

	return c.JSON(fiber.Map{"data": bookings, "meta": pageMeta(total, page, limit)})
}

func (h *Handler) AdminGetPayments(c *fiber.Ctx) error {
	page, limit, offset := pagination(c)
	query := h.db.WithContext(c.UserContext()).Model(&models.BookingPayment{})

	if method := c.Query("method"); method != "" {
		query = query.Where("payment_method = ?", method)
	}
	if c.Query("unreconciled") == "true" {
		query = query.Where("wallet_credited = ? OR ledger_posted = ?", false, false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return h.respondError(c, apperrors.Upstream("failed to count payments", err))
	}
	var payments []models.BookingPayment
	err := query.Order("created_at desc").Offset(offset).Limit(limit).
		Preload("Booking.Guest").Preload("Booking.Listing").
		Find(&payments).Error
	if err != nil {
		return h.respondError(c, apperrors.Upstream("failed to load payments", err))
	}

	return c.JSON(fiber.Map{"data": payments, "meta": pageMeta(total, page, limit)})
}

func (h *Handler) GetDashboardAnalytics(c *fiber.Ctx) error {
	db := h.db.WithContext(c.UserContext())
	var resp DashboardAnalyticsResponse

	db.Model(&models.User{}).Where("role = ?", string(models.RoleGuest)).Count(&resp.TotalGuests)
	db.Model(&models.User{}).Where("role = ?", string(models.RoleHost)).Count(&resp.TotalHosts)
	db.Model(&models.Listing{}).Where("status = ?", string(models.ListingApproved)).Count(&resp.ActiveListings)
	db.Model(&models.Listing{}).Where("status = ?", string(models.ListingPending)).Count(&resp.PendingListings)

	var totals struct {
		Revenue    decimal.Decimal
		Commission decimal.Decimal
	}
	db.Model(&models.BookingPayment{}).
		Select("COALESCE(SUM(amount), 0) AS revenue, COALESCE(SUM(commission_amount), 0) AS commission").
		Scan(&totals)
	resp.TotalRevenue = totals.Revenue
	resp.PlatformCommission = totals.Commission

	db.Model(&models.Booking{}).Where("created_at > ?", time.Now().AddDate(0, 0, -30)).Count(&resp.BookingsLast30Days)
	db.Model(&models.BookingPayment{}).Where("wallet_credited = ? OR ledger_posted = ?", false, false).Count(&resp.UnreconciledCount)
	db.Order("created_at desc").Limit(5).Preload("Guest").Preload("Listing").Find(&resp.RecentBookings)

	return c.JSON(resp)
}

func (h *Handler) GenerateTransactionReport(c *fiber.Ctx) error {
	startDate, err := time.Parse(dateLayout, c.Query("start_date", time.Now().AddDate(0, -1, 0).Format(dateLayout)))
	if err != nil {
		return badRequest(c, "Invalid start_date format. Use YYYY-MM-DD.")
	}
	endDate, err := time.Parse(dateLayout, c.Query("end_date", time.Now().Format(dateLayout)))
	if err != nil {
		return badRequest(c, "Invalid end_date format. Use YYYY-MM-DD.")
	}
	endOfDay := endDate.Add(24*time.Hour - time.Second)

	var payments []models.BookingPayment
	err = h.db.WithContext(c.UserContext()).
		Preload("Booking.Guest").
		Preload("Booking.Listing").
		Where("paid_at BETWEEN ? AND ?", startDate, endOfDay).
		Order("paid_at desc").
		Find(&payments).Error
	if err != nil {
		return h.respondError(c, apperrors.Upstream("failed to load payments", err))
	}

	b := new(bytes.Buffer)
	w := csv.NewWriter(b)

	headers := []string{"Reference", "Date", "Guest", "Listing", "Amount", "Commission Rate", "Commission", "Host Earnings", "Method", "Booking ID"}
	if err := w.Write(headers); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Failed to write CSV header"})
	}

	for _, p := range payments {
		row := []string{
			p.TransactionReference,
			p.PaidAt.Format("2006-01-02 15:04"),
			p.Booking.Guest.FullName,
			p.Booking.Listing.Title,
			p.Amount.StringFixed(2),
			p.CommissionRate.String(),
			p.CommissionAmount.StringFixed(2),
			p.HostEarnings.StringFixed(2),
			p.PaymentMethod,
			p.BookingID.String(),
		}
		if err := w.Write(row); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Failed to write CSV row"})
		}
	}
	w.Flush()

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s_to_%s.csv\"", startDate.Format(dateLayout), endDate.Format(dateLayout)))
	return c.Send(b.Bytes())
}

func (h *Handler) ListPayoutRequests(c *fiber.Ctx) error {
	query := h.db.WithContext(c.UserContext()).Preload("Host").Order("requested_at asc")
	if status := c.Query("status", string(models.PayoutPending)); status != "all" {
		query = query.Where("status = ?", status)
	}

	var payouts []models.PayoutRequest
	if err := query.Find(&payouts).Error; err != nil {
		return h.respondError(c, apperrors.Upstream("failed to load payout requests", err))
	}
	return c.JSON(payouts)
}

func (h *Handler) ProcessPayoutRequest(c *fiber.Ctx) error {
	payoutID, err := paramUUID(c, "requestId")
	if err != nil {
		return h.respondError(c, err)
	}

	var req ProcessPayoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	payout, err := h.payouts.Resolve(c.UserContext(), currentPrincipal(c), payoutID, req.Decision, req.AdminNotes)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Payout request processed.", "payout": payout})
}

func (h *Handler) AdminGetReviews(c *fiber.Ctx) error {
	var reviews []models.Review
	err := h.db.WithContext(c.UserContext()).
		Order("created_at desc").
		Preload("Guest").
		Find(&reviews).Error
	if err != nil {
		return h.respondError(c, apperrors.Upstream("failed to load reviews", err))
	}
	return c.JSON(reviews)
}

func (h *Handler) AdminDeleteReview(c *fiber.Ctx) error {
	reviewID, err := paramUUID(c, "reviewId")
	if err != nil {
		return h.respondError(c, err)
	}

	err = h.db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.First(&review, "id = ?", reviewID).Error; err != nil {
			return dbError(err, "review not found")
		}
		if err := tx.Delete(&review).Error; err != nil {
			return err
		}
		return refreshListingRating(tx, review.ListingID)
	})
	if err != nil {
		return h.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RunReconciliation triggers a reconciliation pass outside the schedule.
func (h *Handler) RunReconciliation(c *fiber.Ctx) error {
	result, err := h.settlement.Reconcile(c.UserContext(), time.Now().Add(-h.cfg.ReconcileGrace), 500)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "result": result})
}
