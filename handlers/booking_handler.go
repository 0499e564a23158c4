package handlers

import (
	"errors"
	"time"

	"github.com/anjiri1684/stay_booking/apperrors"
	"github.com/anjiri1684/stay_booking/models"
	"github.com/anjiri1684/stay_booking/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type CreateBookingRequest struct {
	ListingID    string `json:"listing_id" validate:"required,uuid"`
	CheckIn      string `json:"check_in" validate:"required"`
	CheckOut     string `json:"check_out" validate:"required"`
	Guests       int    `json:"guests" validate:"required,gt=0"`
	SpecialNotes string `json:"special_notes" validate:"max=1000"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

func (h *Handler) CreateBooking(c *fiber.Ctx) error {
	var req CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	checkIn, err := time.Parse(dateLayout, req.CheckIn)
	if err != nil {
		return badRequest(c, "Invalid check_in format. Use YYYY-MM-DD.")
	}
	checkOut, err := time.Parse(dateLayout, req.CheckOut)
	if err != nil {
		return badRequest(c, "Invalid check_out format. Use YYYY-MM-DD.")
	}

	booking, err := h.bookings.Create(c.UserContext(), currentPrincipal(c), services.CreateBookingInput{
		ListingID:    uuid.MustParse(req.ListingID),
		CheckIn:      checkIn,
		CheckOut:     checkOut,
		Guests:       req.Guests,
		SpecialNotes: req.SpecialNotes,
	})
	if err != nil {
		return h.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Booking request sent. The host will confirm it shortly.",
		"booking": booking,
	})
}

func (h *Handler) GetMyBookings(c *fiber.Ctx) error {
	query := h.db.WithContext(c.UserContext()).
		Where("guest_id = ?", currentPrincipal(c).UserID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var bookings []models.Booking
	if err := query.Order("check_in desc").Preload("Listing").Find(&bookings).Error; err != nil {
		return h.respondError(c, apperrors.Upstream("failed to load bookings", err))
	}
	return c.JSON(bookings)
}

func (h *Handler) CancelBooking(c *fiber.Ctx) error {
	bookingID, err := paramUUID(c, "bookingId")
	if err != nil {
		return h.respondError(c, err)
	}

	booking, err := h.bookings.Cancel(c.UserContext(), currentPrincipal(c), bookingID)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Booking cancelled", "booking": booking})
}

// CreateReview is open to the guest of a completed stay, once per booking.
func (h *Handler) CreateReview(c *fiber.Ctx) error {
	bookingID, err := paramUUID(c, "bookingId")
	if err != nil {
		return h.respondError(c, err)
	}

	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	guestID := currentPrincipal(c).UserID
	var review models.Review
	err = h.db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.First(&booking, "id = ?", bookingID).Error; err != nil {
			return dbError(err, "booking not found")
		}
		if booking.GuestID != guestID {
			return apperrors.Forbidden("you can only review your own stays")
		}
		if booking.Status != models.BookingCompleted {
			return apperrors.InvalidState("you can only review completed stays")
		}

		review = models.Review{
			BookingID: booking.ID,
			GuestID:   guestID,
			ListingID: booking.ListingID,
			Rating:    req.Rating,
			Comment:   req.Comment,
		}
		if err := tx.Omit("Booking", "Guest").Create(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Conflict("you have already reviewed this stay")
			}
			return err
		}
		return refreshListingRating(tx, booking.ListingID)
	})
	if err != nil {
		return h.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(review)
}

func refreshListingRating(tx *gorm.DB, listingID uuid.UUID) error {
	var result struct{ Avg float64 }
	if err := tx.Model(&models.Review{}).
		Where("listing_id = ?", listingID).
		Select("COALESCE(AVG(rating), 0) as avg").
		Scan(&result).Error; err != nil {
		return err
	}
	return tx.Model(&models.Listing{}).Where("id = ?", listingID).Update("avg_rating", result.Avg).Error
}

// CreatePaymentIntent starts a card payment for a confirmed, unpaid booking.
// The booking is settled by the provider webhook once the charge succeeds.
func (h *Handler) CreatePaymentIntent(c *fiber.Ctx) error {
	bookingID, err := paramUUID(c, "bookingId")
	if err != nil {
		return h.respondError(c, err)
	}

	booking, err := h.store.GetBooking(c.UserContext(), bookingID)
	if err != nil {
		return h.respondError(c, dbError(err, "booking not found"))
	}
	if booking.GuestID != currentPrincipal(c).UserID {
		return h.respondError(c, apperrors.Forbidden("you can only pay for your own bookings"))
	}
	if !booking.Status.Settleable() {
		return h.respondError(c, apperrors.InvalidState("booking must be confirmed by host first"))
	}
	if booking.PaymentStatus == models.PaymentPaid {
		return h.respondError(c, apperrors.Conflict("booking payment already processed"))
	}

	intent, err := h.payments.CreateBookingIntent(c.UserContext(), booking)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"client_secret": intent.ClientSecret,
		"intent_id":     intent.ID,
		"amount":        booking.TotalAmount.StringFixed(2),
		"currency":      booking.Currency,
	})
}
