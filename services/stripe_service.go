package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/anjiri1684/stay_booking/apperrors"
	"github.com/anjiri1684/stay_booking/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

const bookingIDMetadataKey = "booking_id"

// ErrIgnoredEvent marks webhook events that carry nothing to settle.
var ErrIgnoredEvent = errors.New("event ignored")

type StripeService struct {
	webhookSecret string
	log           *zap.Logger
}

func NewStripeService(secretKey, webhookSecret string, log *zap.Logger) *StripeService {
	stripe.Key = secretKey
	return &StripeService{webhookSecret: webhookSecret, log: log.Named("stripe")}
}

func (s *StripeService) Enabled() bool {
	return stripe.Key != ""
}

// CreateBookingIntent opens a PaymentIntent for the booking total. The booking
// id travels in metadata so the webhook can settle it.
func (s *StripeService) CreateBookingIntent(ctx context.Context, booking *models.Booking) (*stripe.PaymentIntent, error) {
	if !s.Enabled() {
		return nil, apperrors.InvalidState("card payments are not configured")
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(toMinorUnits(booking.TotalAmount)),
		Currency: stripe.String(strings.ToLower(booking.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata(bookingIDMetadataKey, booking.ID.String())
	params.AddMetadata("guest_id", booking.GuestID.String())

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, apperrors.Upstream("failed to create payment intent", err)
	}

	s.log.Info("payment intent created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("intent_id", intent.ID))
	return intent, nil
}

// SettlementFromEvent verifies the webhook signature and, for a succeeded
// PaymentIntent carrying a booking id, returns the settlement to apply.
func (s *StripeService) SettlementFromEvent(payload []byte, signature string) (SettleInput, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return SettleInput{}, apperrors.Validation("webhook signature verification failed")
	}

	s.log.Info("webhook event received",
		zap.String("type", string(event.Type)),
		zap.String("id", event.ID))

	if event.Type != stripe.EventTypePaymentIntentSucceeded {
		return SettleInput{}, ErrIgnoredEvent
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return SettleInput{}, apperrors.Validation("malformed payment intent payload")
	}

	bookingID, err := uuid.Parse(intent.Metadata[bookingIDMetadataKey])
	if err != nil {
		s.log.Warn("payment intent without booking id", zap.String("intent_id", intent.ID))
		return SettleInput{}, ErrIgnoredEvent
	}

	return SettleInput{
		BookingID:            bookingID,
		PaymentMethod:        "stripe",
		TransactionReference: intent.ID,
	}, nil
}

func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
