package database

import (
	"context"
	"errors"
	"time"

	"github.com/anjiri1684/stay_booking/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EnsureWallet provisions an empty wallet for a host; existing wallets are left untouched.
func (r *Repository) EnsureWallet(ctx context.Context, hostID uuid.UUID) error {
	wallet := models.HostWallet{
		HostID:              hostID,
		AvailableBalance:    decimal.Zero,
		TotalEarnings:       decimal.Zero,
		TotalCommissionPaid: decimal.Zero,
		TotalWithdrawn:      decimal.Zero,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "host_id"}}, DoNothing: true}).
		Create(&wallet).Error
}

func (r *Repository) GetWallet(ctx context.Context, hostID uuid.UUID) (*models.HostWallet, error) {
	var wallet models.HostWallet
	if err := r.db.WithContext(ctx).First(&wallet, "host_id = ?", hostID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return &wallet, nil
}

// CreatePayout reserves the amount with a conditional decrement so two
// concurrent requests can never overdraw the wallet.
func (r *Repository) CreatePayout(ctx context.Context, hostID uuid.UUID, amount decimal.Decimal, at time.Time) (*models.PayoutRequest, error) {
	var payout models.PayoutRequest
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.HostWallet{}).
			Where("host_id = ? AND available_balance >= ?", hostID, amount).
			Updates(map[string]interface{}{
				"available_balance": gorm.Expr("available_balance - ?", amount),
				"updated_at":        at,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.HostWallet{}).Where("host_id = ?", hostID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrWalletNotFound
			}
			return ErrInsufficientFund
		}

		payout = models.PayoutRequest{
			HostID:      hostID,
			Amount:      amount,
			Status:      models.PayoutPending,
			RequestedAt: at,
		}
		if err := tx.Omit(clause.Associations).Create(&payout).Error; err != nil {
			return err
		}

		return tx.Create(&models.Transaction{
			UserID:      hostID,
			Type:        models.TxPayout,
			Amount:      amount.Neg(),
			ReferenceID: payout.ID.String(),
			Description: "Payout requested",
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &payout, nil
}

func (r *Repository) GetPayout(ctx context.Context, id uuid.UUID) (*models.PayoutRequest, error) {
	var payout models.PayoutRequest
	if err := r.db.WithContext(ctx).Preload("Host").First(&payout, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payout, nil
}

// ResolvePayout moves a pending payout to completed or rejected. A rejection
// returns the reserved amount to the wallet.
func (r *Repository) ResolvePayout(ctx context.Context, payout *models.PayoutRequest, status models.PayoutStatus, notes *string, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PayoutRequest{}).
			Where("id = ? AND status = ?", payout.ID, string(models.PayoutPending)).
			Updates(map[string]interface{}{
				"status":       string(status),
				"admin_notes":  notes,
				"processed_at": at,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStateChanged
		}

		if status == models.PayoutCompleted {
			return tx.Model(&models.HostWallet{}).
				Where("host_id = ?", payout.HostID).
				Updates(map[string]interface{}{
					"total_withdrawn": gorm.Expr("total_withdrawn + ?", payout.Amount),
					"updated_at":      at,
				}).Error
		}

		if err := tx.Model(&models.HostWallet{}).
			Where("host_id = ?", payout.HostID).
			Updates(map[string]interface{}{
				"available_balance": gorm.Expr("available_balance + ?", payout.Amount),
				"updated_at":        at,
			}).Error; err != nil {
			return err
		}

		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.Transaction{
			UserID:      payout.HostID,
			Type:        models.TxPayoutReversal,
			Amount:      payout.Amount,
			ReferenceID: payout.ID.String(),
			Description: "Payout rejected, funds returned",
		}).Error
	})
}
