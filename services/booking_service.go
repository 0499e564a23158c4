package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anjiri1684/stay_booking/apperrors"
	"github.com/anjiri1684/stay_booking/database"
	"github.com/anjiri1684/stay_booking/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type BookingListener interface {
	BookingConfirmed(booking models.Booking)
}

type CreateBookingInput struct {
	ListingID    uuid.UUID
	CheckIn      time.Time
	CheckOut     time.Time
	Guests       int
	SpecialNotes string
}

type BookingService struct {
	store     BookingStore
	log       *zap.Logger
	listeners []BookingListener
	now       func() time.Time
}

func NewBookingService(store BookingStore, log *zap.Logger) *BookingService {
	return &BookingService{
		store: store,
		log:   log.Named("booking"),
		now:   time.Now,
	}
}

func (s *BookingService) AddListener(l BookingListener) {
	s.listeners = append(s.listeners, l)
}

func (s *BookingService) loadBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	booking, err := s.store.GetBooking(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("booking not found")
		}
		return nil, apperrors.Upstream("failed to load booking", err)
	}
	return booking, nil
}

func (s *BookingService) Create(ctx context.Context, principal models.Principal, in CreateBookingInput) (*models.Booking, error) {
	if !principal.CanBook() {
		return nil, apperrors.Unauthenticated("authentication required")
	}

	listing, err := s.store.GetListing(ctx, in.ListingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("listing not found")
		}
		return nil, apperrors.Upstream("failed to load listing", err)
	}
	if listing.Status != models.ListingApproved {
		return nil, apperrors.InvalidState("listing is not open for bookings")
	}
	if listing.HostID == principal.UserID {
		return nil, apperrors.Forbidden("hosts cannot book their own listing")
	}

	nights := models.NightsBetween(in.CheckIn, in.CheckOut)
	if nights < 1 {
		return nil, apperrors.Validation("check_out must be at least one night after check_in")
	}
	today := s.now().UTC().Truncate(24 * time.Hour)
	if in.CheckIn.UTC().Before(today) {
		return nil, apperrors.Validation("check_in cannot be in the past")
	}
	if in.Guests < 1 || in.Guests > listing.MaxGuests {
		return nil, apperrors.Validation("number of guests exceeds the listing capacity")
	}

	booking := &models.Booking{
		GuestID:       principal.UserID,
		ListingID:     listing.ID,
		CheckIn:       in.CheckIn,
		CheckOut:      in.CheckOut,
		Guests:        in.Guests,
		TotalAmount:   listing.PricePerNight.Mul(decimal.NewFromInt(int64(nights))).Round(2),
		Currency:      listing.Currency,
		Status:        models.BookingPending,
		PaymentStatus: models.PaymentPending,
	}
	if notes := strings.TrimSpace(in.SpecialNotes); notes != "" {
		booking.SpecialNotes = &notes
	}

	if err := s.store.CreateBooking(ctx, booking); err != nil {
		if errors.Is(err, database.ErrDatesUnavailable) {
			return nil, apperrors.Conflict(err.Error())
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("listing not found")
		}
		return nil, apperrors.Upstream("failed to create booking", err)
	}
	booking.Listing = *listing

	s.log.Info("booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("listing_id", listing.ID.String()),
		zap.Int("nights", nights))
	return booking, nil
}

// Confirm is the host's acceptance of a pending booking. It is independent of
// payment and only the host owning the listing may perform it.
func (s *BookingService) Confirm(ctx context.Context, principal models.Principal, bookingID uuid.UUID) (*models.Booking, error) {
	if principal.UserID == uuid.Nil {
		return nil, apperrors.Unauthenticated("authentication required")
	}

	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !principal.CanConfirmBooking(booking.Listing.HostID) {
		return nil, apperrors.Forbidden("only the listing's host can confirm this booking")
	}

	switch booking.Status {
	case models.BookingConfirmed, models.BookingCompleted:
		return nil, apperrors.Conflict("booking already confirmed")
	case models.BookingCancelled:
		return nil, apperrors.InvalidState("cancelled bookings cannot be confirmed")
	}

	at := s.now()
	if err := s.store.ConfirmBooking(ctx, booking.ID, at); err != nil {
		if errors.Is(err, database.ErrStateChanged) {
			return nil, apperrors.Conflict("booking already confirmed")
		}
		return nil, apperrors.Upstream("failed to confirm booking", err)
	}
	booking.Status = models.BookingConfirmed
	booking.ConfirmedAt = &at

	s.log.Info("booking confirmed", zap.String("booking_id", booking.ID.String()))
	for _, l := range s.listeners {
		go l.BookingConfirmed(*booking)
	}
	return booking, nil
}

// Cancel is allowed for the guest (or an admin) while the booking is unpaid.
func (s *BookingService) Cancel(ctx context.Context, principal models.Principal, bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.GuestID != principal.UserID && !principal.IsAdmin() {
		return nil, apperrors.Forbidden("you can only cancel your own bookings")
	}
	if booking.PaymentStatus == models.PaymentPaid {
		return nil, apperrors.InvalidState("paid bookings cannot be cancelled")
	}
	if booking.Status != models.BookingPending && booking.Status != models.BookingConfirmed {
		return nil, apperrors.InvalidState("booking can no longer be cancelled")
	}

	at := s.now()
	if err := s.store.CancelBooking(ctx, booking.ID, at); err != nil {
		if errors.Is(err, database.ErrStateChanged) {
			return nil, apperrors.Conflict("booking changed, please refresh and try again")
		}
		return nil, apperrors.Upstream("failed to cancel booking", err)
	}
	booking.Status = models.BookingCancelled
	booking.CancelledAt = &at
	return booking, nil
}

// CompleteFinishedStays marks paid stays whose check-out has passed as completed.
func (s *BookingService) CompleteFinishedStays(ctx context.Context) (int64, error) {
	n, err := s.store.CompleteFinishedStays(ctx, s.now())
	if err != nil {
		return 0, apperrors.Upstream("failed to complete finished stays", err)
	}
	return n, nil
}
