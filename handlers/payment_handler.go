package handlers

import (
	"errors"

	"github.com/anjiri1684/stay_booking/apperrors"
	"github.com/anjiri1684/stay_booking/models"
	"github.com/anjiri1684/stay_booking/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProcessBookingPaymentRequest struct {
	BookingID            string `json:"bookingId" validate:"required,uuid"`
	PaymentMethod        string `json:"paymentMethod" validate:"required,max=50"`
	TransactionReference string `json:"transactionReference,omitempty" validate:"max=255"`
}

// ProcessBookingPayment settles a host-confirmed booking: it records the
// payment, splits the commission and credits the host.
func (h *Handler) ProcessBookingPayment(c *fiber.Ctx) error {
	var req ProcessBookingPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, "bookingId and paymentMethod are required")
	}

	payment, err := h.settlement.Settle(c.UserContext(), currentPrincipal(c), services.SettleInput{
		BookingID:            uuid.MustParse(req.BookingID),
		PaymentMethod:        req.PaymentMethod,
		TransactionReference: req.TransactionReference,
	})
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "payment": payment})
}

// StripeWebhook settles bookings paid by card. Redeliveries of an already
// settled booking, and charges for bookings that can no longer be settled,
// are acknowledged so the provider stops retrying.
func (h *Handler) StripeWebhook(c *fiber.Ctx) error {
	in, err := h.payments.SettlementFromEvent(c.Body(), c.Get("Stripe-Signature"))
	if errors.Is(err, services.ErrIgnoredEvent) {
		return c.JSON(fiber.Map{"received": true})
	}
	if err != nil {
		return h.respondError(c, err)
	}

	payment, err := h.settlement.Settle(c.UserContext(), models.SystemPrincipal, in)
	switch {
	case apperrors.HasCode(err, apperrors.CodeConflict):
		h.log.Info("webhook for settled booking acknowledged", zap.String("booking_id", in.BookingID.String()))
		return c.JSON(fiber.Map{"received": true, "duplicate": true})
	case apperrors.HasCode(err, apperrors.CodeInvalidState):
		// Funds were captured for a booking that can no longer be settled,
		// typically one cancelled before the charge went through.
		h.log.Error("card payment received for unsettleable booking, refund required",
			zap.String("booking_id", in.BookingID.String()),
			zap.String("reference", in.TransactionReference),
			zap.Error(err))
		return c.JSON(fiber.Map{"received": true, "requires_refund": true})
	case err != nil:
		h.log.Warn("webhook settlement failed",
			zap.String("booking_id", in.BookingID.String()),
			zap.String("reference", in.TransactionReference),
			zap.Error(err))
		return h.respondError(c, err)
	}

	return c.JSON(fiber.Map{"received": true, "payment_id": payment.ID})
}
