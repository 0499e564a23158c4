package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anjiri1684/stay_booking/apperrors"
	"github.com/anjiri1684/stay_booking/database"
	"github.com/anjiri1684/stay_booking/models"
	"github.com/anjiri1684/stay_booking/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SettlementListener is notified after a payment has been committed. It runs
// on its own goroutine and cannot affect the settlement outcome.
type SettlementListener interface {
	PaymentSettled(booking models.Booking, payment models.BookingPayment)
}

type SettleInput struct {
	BookingID            uuid.UUID
	PaymentMethod        string
	TransactionReference string
}

type ReconcileResult struct {
	Scanned  int `json:"scanned"`
	Repaired int `json:"repaired"`
	Pending  int `json:"pending"`
}

type SettlementService struct {
	store       SettlementStore
	locker      Locker
	log         *zap.Logger
	defaultRate decimal.Decimal
	lockTTL     time.Duration
	listeners   []SettlementListener

	now          func() time.Time
	newReference func(time.Time) string
}

func NewSettlementService(store SettlementStore, locker Locker, log *zap.Logger, defaultRate decimal.Decimal, lockTTL time.Duration) *SettlementService {
	if locker == nil {
		locker = NopLocker{}
	}
	if lockTTL <= 0 {
		lockTTL = 30 * time.Second
	}
	return &SettlementService{
		store:        store,
		locker:       locker,
		log:          log.Named("settlement"),
		defaultRate:  defaultRate,
		lockTTL:      lockTTL,
		now:          time.Now,
		newReference: utils.GenerateTransactionReference,
	}
}

func (s *SettlementService) AddListener(l SettlementListener) {
	s.listeners = append(s.listeners, l)
}

// Settle records payment for a host-confirmed booking and distributes the
// funds between the platform and the host. Only the first successful call for
// a booking creates a payment; every later or concurrent call gets a conflict.
func (s *SettlementService) Settle(ctx context.Context, principal models.Principal, in SettleInput) (*models.BookingPayment, error) {
	if in.BookingID == uuid.Nil || in.PaymentMethod == "" {
		return nil, apperrors.Validation("bookingId and paymentMethod are required")
	}

	booking, err := s.store.GetBooking(ctx, in.BookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("booking not found")
		}
		return nil, apperrors.Upstream("failed to load booking", err)
	}

	if !booking.Status.Settleable() {
		return nil, apperrors.InvalidState("booking must be confirmed by host first")
	}
	if !principal.CanSettleBooking(booking.Listing.HostID) {
		return nil, apperrors.Forbidden("you are not allowed to process payment for this booking")
	}
	if booking.PaymentStatus == models.PaymentPaid {
		return nil, apperrors.Conflict("booking payment already processed")
	}

	release, err := s.locker.Acquire(ctx, "settlement:"+booking.ID.String(), s.lockTTL)
	switch {
	case errors.Is(err, ErrLockHeld):
		return nil, apperrors.Conflict("settlement already in progress")
	case err != nil:
		s.log.Warn("settlement lock unavailable, relying on database guard",
			zap.String("booking_id", booking.ID.String()), zap.Error(err))
	default:
		defer release()
	}

	rate := ResolveCommissionRate(booking.Listing.CommissionRate, s.defaultRate)
	split, err := SplitCommission(booking.TotalAmount, rate)
	if err != nil {
		return nil, apperrors.InvalidState(err.Error())
	}

	paidAt := s.now()
	reference := in.TransactionReference
	if reference == "" {
		reference = s.newReference(paidAt)
	}

	payment := &models.BookingPayment{
		ID:                   uuid.New(),
		BookingID:            booking.ID,
		GuestID:              booking.GuestID,
		HostID:               booking.Listing.HostID,
		Amount:               split.Gross,
		Currency:             booking.Currency,
		CommissionRate:       split.Rate,
		CommissionAmount:     split.Commission,
		HostEarnings:         split.HostEarnings,
		PaymentMethod:        in.PaymentMethod,
		TransactionReference: reference,
		Status:               models.PaymentRecordCompleted,
		PaidAt:               paidAt,
	}

	if err := s.store.RecordPayment(ctx, payment); err != nil {
		if errors.Is(err, database.ErrAlreadySettled) {
			return nil, apperrors.Conflict("booking payment already processed")
		}
		return nil, apperrors.Upstream("failed to record payment", err)
	}
	booking.PaymentStatus = models.PaymentPaid

	s.log.Info("booking settled",
		zap.String("booking_id", booking.ID.String()),
		zap.String("payment_id", payment.ID.String()),
		zap.String("reference", payment.TransactionReference),
		zap.String("amount", payment.Amount.StringFixed(2)),
		zap.String("commission", payment.CommissionAmount.StringFixed(2)))

	// The payment is committed; wallet and ledger are derived from it and must
	// not be abandoned if the caller goes away.
	s.distribute(context.WithoutCancel(ctx), payment)

	for _, l := range s.listeners {
		go l.PaymentSettled(*booking, *payment)
	}

	return payment, nil
}

// distribute applies the wallet credit and ledger rows for a committed
// payment. Failures are logged and left for Reconcile. It reports whether the
// payment is fully reconciled afterwards.
func (s *SettlementService) distribute(ctx context.Context, payment *models.BookingPayment) bool {
	fields := []zap.Field{
		zap.String("payment_id", payment.ID.String()),
		zap.String("booking_id", payment.BookingID.String()),
		zap.String("host_id", payment.HostID.String()),
	}

	if !payment.WalletCredited {
		err := s.store.CreditHostWallet(ctx, payment)
		switch {
		case errors.Is(err, database.ErrWalletNotFound):
			s.log.Warn("host wallet missing, earnings not credited", fields...)
		case err != nil:
			s.log.Warn("failed to credit host wallet", append(fields, zap.Error(err))...)
		default:
			payment.WalletCredited = true
		}
	}

	if !payment.LedgerPosted {
		if err := s.store.PostLedger(ctx, payment, LedgerEntries(payment)); err != nil {
			s.log.Warn("failed to post ledger transactions", append(fields, zap.Error(err))...)
		} else {
			payment.LedgerPosted = true
		}
	}

	return payment.Reconciled()
}

// LedgerEntries are the three movements of a settled booking: the guest's
// payment, the host's gross earning and the platform's commission.
func LedgerEntries(payment *models.BookingPayment) []models.Transaction {
	bookingID := payment.BookingID
	reference := payment.BookingID.String()
	short := reference[:8]

	return []models.Transaction{
		{
			UserID:      payment.GuestID,
			BookingID:   &bookingID,
			Type:        models.TxBookingPayment,
			Amount:      payment.Amount.Neg(),
			Currency:    payment.Currency,
			ReferenceID: reference,
			Description: fmt.Sprintf("Payment for booking %s", short),
		},
		{
			UserID:      payment.HostID,
			BookingID:   &bookingID,
			Type:        models.TxHostEarning,
			Amount:      payment.HostEarnings,
			Currency:    payment.Currency,
			ReferenceID: reference,
			Description: fmt.Sprintf("Earnings from booking %s", short),
		},
		{
			UserID:      payment.HostID,
			BookingID:   &bookingID,
			Type:        models.TxCommission,
			Amount:      payment.CommissionAmount.Neg(),
			Currency:    payment.Currency,
			ReferenceID: reference,
			Description: fmt.Sprintf("Platform commission (%s%%) for booking %s", payment.CommissionRate.String(), short),
		},
	}
}

// Reconcile re-drives wallet credits and ledger rows for payments committed
// before the cut-off that are still missing either.
func (s *SettlementService) Reconcile(ctx context.Context, before time.Time, limit int) (ReconcileResult, error) {
	var result ReconcileResult

	payments, err := s.store.ListUnreconciledPayments(ctx, before, limit)
	if err != nil {
		return result, apperrors.Upstream("failed to list unreconciled payments", err)
	}

	for i := range payments {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Scanned++
		if s.distribute(ctx, &payments[i]) {
			result.Repaired++
		} else {
			result.Pending++
		}
	}

	if result.Scanned > 0 {
		s.log.Info("reconciliation pass finished",
			zap.Int("scanned", result.Scanned),
			zap.Int("repaired", result.Repaired),
			zap.Int("pending", result.Pending))
	}
	return result, nil
}
