package database

import (
	"context"
	"errors"
	"time"

	"github.com/anjiri1684/stay_booking/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the Postgres-backed store behind the booking, settlement
// and payout services.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetListing(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.WithContext(ctx).First(&listing, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *Repository) GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Preload("Listing").
		Preload("Guest").
		First(&booking, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// CreateBooking locks the listing row so overlapping requests for the same
// dates are serialized.
func (r *Repository) CreateBooking(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var listing models.Listing
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&listing, "id = ?", booking.ListingID).Error; err != nil {
			return err
		}

		var overlapping int64
		err := tx.Model(&models.Booking{}).
			Where("listing_id = ? AND status <> ? AND check_in < ? AND check_out > ?",
				booking.ListingID, string(models.BookingCancelled), booking.CheckOut, booking.CheckIn).
			Count(&overlapping).Error
		if err != nil {
			return err
		}
		if overlapping > 0 {
			return ErrDatesUnavailable
		}

		return tx.Omit(clause.Associations).Create(booking).Error
	})
}

func (r *Repository) ConfirmBooking(ctx context.Context, id uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND status = ?", id, string(models.BookingPending)).
		Updates(map[string]interface{}{
			"status":       string(models.BookingConfirmed),
			"confirmed_at": at,
			"updated_at":   at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStateChanged
	}
	return nil
}

func (r *Repository) CancelBooking(ctx context.Context, id uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND status IN ? AND payment_status = ?", id,
			[]string{string(models.BookingPending), string(models.BookingConfirmed)},
			string(models.PaymentPending)).
		Updates(map[string]interface{}{
			"status":       string(models.BookingCancelled),
			"cancelled_at": at,
			"updated_at":   at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStateChanged
	}
	return nil
}

func (r *Repository) CompleteFinishedStays(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("status = ? AND payment_status = ? AND check_out < ?",
			string(models.BookingConfirmed), string(models.PaymentPaid), now).
		Updates(map[string]interface{}{
			"status":       string(models.BookingCompleted),
			"completed_at": now,
			"updated_at":   now,
		})
	return res.RowsAffected, res.Error
}

// RecordPayment is the settlement commit point: the booking's payment_status
// moves pending -> paid and the payment row is inserted in one transaction.
// Losing a race on either the CAS or the unique booking_id index yields
// ErrAlreadySettled. Transaction references are not unique.
func (r *Repository) RecordPayment(ctx context.Context, payment *models.BookingPayment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Booking{}).
			Where("id = ? AND payment_status = ? AND status IN ?", payment.BookingID,
				string(models.PaymentPending),
				[]string{string(models.BookingConfirmed), string(models.BookingCompleted)}).
			Updates(map[string]interface{}{
				"payment_status": string(models.PaymentPaid),
				"updated_at":     payment.PaidAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadySettled
		}
		return tx.Omit(clause.Associations).Create(payment).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadySettled
	}
	return err
}

func (r *Repository) CreditHostWallet(ctx context.Context, payment *models.BookingPayment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.BookingPayment{}).
			Where("id = ? AND wallet_credited = ?", payment.ID, false).
			Update("wallet_credited", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		res = tx.Model(&models.HostWallet{}).
			Where("host_id = ?", payment.HostID).
			Updates(map[string]interface{}{
				"available_balance":     gorm.Expr("available_balance + ?", payment.HostEarnings),
				"total_earnings":        gorm.Expr("total_earnings + ?", payment.HostEarnings),
				"total_commission_paid": gorm.Expr("total_commission_paid + ?", payment.CommissionAmount),
				"updated_at":            time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrWalletNotFound
		}
		return nil
	})
}

func (r *Repository) PostLedger(ctx context.Context, payment *models.BookingPayment, entries []models.Transaction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(entries) > 0 {
			err := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Omit(clause.Associations).
				Create(&entries).Error
			if err != nil {
				return err
			}
		}
		return tx.Model(&models.BookingPayment{}).
			Where("id = ?", payment.ID).
			Update("ledger_posted", true).Error
	})
}

// ListUnreconciledPayments returns payments still missing their ledger rows,
// or their wallet credit when the host has a wallet to credit. Payments of
// hosts without a wallet are picked up once one is provisioned.
func (r *Repository) ListUnreconciledPayments(ctx context.Context, createdBefore time.Time, limit int) ([]models.BookingPayment, error) {
	var payments []models.BookingPayment
	err := r.db.WithContext(ctx).
		Where("booking_payments.created_at < ?", createdBefore).
		Where("booking_payments.ledger_posted = ? OR (booking_payments.wallet_credited = ? AND EXISTS (SELECT 1 FROM host_wallets WHERE host_wallets.host_id = booking_payments.host_id))", false, false).
		Order("booking_payments.created_at asc").
		Limit(limit).
		Find(&payments).Error
	return payments, err
}

func (r *Repository) SetReceiptURL(ctx context.Context, paymentID uuid.UUID, url string) error {
	return r.db.WithContext(ctx).Model(&models.BookingPayment{}).
		Where("id = ?", paymentID).
		Update("receipt_url", url).Error
}
