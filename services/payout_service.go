package services

import (
	"context"
	"errors"
	"time"

	"github.com/anjiri1684/stay_booking/apperrors"
	"github.com/anjiri1684/stay_booking/database"
	"github.com/anjiri1684/stay_booking/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PayoutStore interface {
	GetWallet(ctx context.Context, hostID uuid.UUID) (*models.HostWallet, error)
	CreatePayout(ctx context.Context, hostID uuid.UUID, amount decimal.Decimal, at time.Time) (*models.PayoutRequest, error)
	GetPayout(ctx context.Context, id uuid.UUID) (*models.PayoutRequest, error)
	ResolvePayout(ctx context.Context, payout *models.PayoutRequest, status models.PayoutStatus, notes *string, at time.Time) error
}

type PayoutListener interface {
	PayoutProcessed(payout models.PayoutRequest)
}

type PayoutService struct {
	store     PayoutStore
	log       *zap.Logger
	listeners []PayoutListener
	now       func() time.Time
}

func NewPayoutService(store PayoutStore, log *zap.Logger) *PayoutService {
	return &PayoutService{store: store, log: log.Named("payout"), now: time.Now}
}

func (s *PayoutService) AddListener(l PayoutListener) {
	s.listeners = append(s.listeners, l)
}

// Request reserves amount from the host's available balance.
func (s *PayoutService) Request(ctx context.Context, principal models.Principal, amount decimal.Decimal) (*models.PayoutRequest, error) {
	if principal.Role != models.RoleHost {
		return nil, apperrors.Forbidden("only hosts can request payouts")
	}
	if !amount.IsPositive() || !amount.Equal(amount.Round(2)) {
		return nil, apperrors.Validation("amount must be a positive value with at most two decimals")
	}

	payout, err := s.store.CreatePayout(ctx, principal.UserID, amount, s.now())
	switch {
	case errors.Is(err, database.ErrWalletNotFound):
		return nil, apperrors.NotFound("host wallet not found")
	case errors.Is(err, database.ErrInsufficientFund):
		return nil, apperrors.Validation("insufficient wallet balance")
	case err != nil:
		return nil, apperrors.Upstream("failed to create payout request", err)
	}

	s.log.Info("payout requested",
		zap.String("payout_id", payout.ID.String()),
		zap.String("host_id", principal.UserID.String()),
		zap.String("amount", amount.StringFixed(2)))
	return payout, nil
}

// Resolve completes or rejects a pending payout. decision is "complete" or "reject".
func (s *PayoutService) Resolve(ctx context.Context, principal models.Principal, payoutID uuid.UUID, decision string, notes *string) (*models.PayoutRequest, error) {
	if !principal.IsAdmin() {
		return nil, apperrors.Forbidden("only admins can process payouts")
	}

	var status models.PayoutStatus
	switch decision {
	case "complete":
		status = models.PayoutCompleted
	case "reject":
		status = models.PayoutRejected
	default:
		return nil, apperrors.Validation("action must be 'complete' or 'reject'")
	}

	payout, err := s.store.GetPayout(ctx, payoutID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("payout request not found")
		}
		return nil, apperrors.Upstream("failed to load payout request", err)
	}
	if payout.Status != models.PayoutPending {
		return nil, apperrors.Conflict("payout request already processed")
	}

	at := s.now()
	if err := s.store.ResolvePayout(ctx, payout, status, notes, at); err != nil {
		if errors.Is(err, database.ErrStateChanged) {
			return nil, apperrors.Conflict("payout request already processed")
		}
		return nil, apperrors.Upstream("failed to process payout request", err)
	}
	payout.Status = status
	payout.AdminNotes = notes
	payout.ProcessedAt = &at

	s.log.Info("payout processed",
		zap.String("payout_id", payout.ID.String()),
		zap.String("status", string(status)))
	for _, l := range s.listeners {
		go l.PayoutProcessed(*payout)
	}
	return payout, nil
}
