package database_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/anjiri1684/stay_booking/database"
	"github.com/anjiri1684/stay_booking/models"
	"github.com/anjiri1684/stay_booking/services"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

const uuidDefault = `lower(hex(randomblob(4)) || '-' || hex(randomblob(2)) || '-' || hex(randomblob(2)) || '-' || hex(randomblob(2)) || '-' || hex(randomblob(6)))`

// schema reproduces the columns and constraints of the migrated Postgres
// tables the repository writes to.
var schema = []string{
	`CREATE TABLE bookings (
		id TEXT PRIMARY KEY,
		guest_id TEXT NOT NULL,
		listing_id TEXT NOT NULL,
		check_in DATETIME NOT NULL,
		check_out DATETIME NOT NULL,
		guests INTEGER NOT NULL DEFAULT 1,
		total_amount NUMERIC NOT NULL,
		currency TEXT NOT NULL DEFAULT 'USD',
		status TEXT NOT NULL DEFAULT 'pending',
		payment_status TEXT NOT NULL DEFAULT 'pending',
		special_notes TEXT,
		confirmed_at DATETIME,
		completed_at DATETIME,
		cancelled_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE booking_payments (
		id TEXT PRIMARY KEY,
		booking_id TEXT NOT NULL UNIQUE,
		guest_id TEXT NOT NULL,
		host_id TEXT NOT NULL,
		amount NUMERIC NOT NULL,
		currency TEXT NOT NULL DEFAULT 'USD',
		commission_rate NUMERIC NOT NULL,
		commission_amount NUMERIC NOT NULL,
		host_earnings NUMERIC NOT NULL,
		payment_method TEXT NOT NULL,
		transaction_reference TEXT NOT NULL,
		status TEXT NOT NULL,
		paid_at DATETIME NOT NULL,
		wallet_credited BOOLEAN NOT NULL DEFAULT false,
		ledger_posted BOOLEAN NOT NULL DEFAULT false,
		receipt_url TEXT,
		created_at DATETIME
	)`,
	`CREATE INDEX idx_booking_payments_transaction_reference ON booking_payments (transaction_reference)`,
	`CREATE TABLE host_wallets (
		id TEXT PRIMARY KEY DEFAULT (` + uuidDefault + `),
		host_id TEXT NOT NULL UNIQUE,
		available_balance NUMERIC NOT NULL DEFAULT 0,
		total_earnings NUMERIC NOT NULL DEFAULT 0,
		total_commission_paid NUMERIC NOT NULL DEFAULT 0,
		total_withdrawn NUMERIC NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE transactions (
		id TEXT PRIMARY KEY DEFAULT (` + uuidDefault + `),
		user_id TEXT NOT NULL,
		booking_id TEXT,
		type TEXT NOT NULL,
		amount NUMERIC NOT NULL,
		currency TEXT NOT NULL DEFAULT 'USD',
		reference_id TEXT NOT NULL,
		description TEXT,
		created_at DATETIME,
		UNIQUE (reference_id, type)
	)`,
	`CREATE TABLE payout_requests (
		id TEXT PRIMARY KEY DEFAULT (` + uuidDefault + `),
		host_id TEXT NOT NULL,
		amount NUMERIC NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		admin_notes TEXT,
		requested_at DATETIME NOT NULL,
		processed_at DATETIME
	)`,
}

func newTestRepository(t *testing.T) (*database.Repository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "stay.db")), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	for _, stmt := range schema {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return database.NewRepository(db), db
}

func seedBooking(t *testing.T, db *gorm.DB, status models.BookingStatus) *models.Booking {
	t.Helper()
	booking := &models.Booking{
		ID:            uuid.New(),
		GuestID:       uuid.New(),
		ListingID:     uuid.New(),
		CheckIn:       time.Now().Add(24 * time.Hour),
		CheckOut:      time.Now().Add(72 * time.Hour),
		Guests:        2,
		TotalAmount:   decimal.NewFromInt(100),
		Currency:      "USD",
		Status:        status,
		PaymentStatus: models.PaymentPending,
	}
	require.NoError(t, db.Omit(clause.Associations).Create(booking).Error)
	return booking
}

func paymentFor(booking *models.Booking, hostID uuid.UUID, reference string) *models.BookingPayment {
	return &models.BookingPayment{
		ID:                   uuid.New(),
		BookingID:            booking.ID,
		GuestID:              booking.GuestID,
		HostID:               hostID,
		Amount:               decimal.NewFromInt(100),
		Currency:             "USD",
		CommissionRate:       decimal.NewFromInt(10),
		CommissionAmount:     decimal.NewFromInt(10),
		HostEarnings:         decimal.NewFromInt(90),
		PaymentMethod:        "cash",
		TransactionReference: reference,
		Status:               models.PaymentRecordCompleted,
		PaidAt:               time.Now(),
	}
}

func reloadBooking(t *testing.T, db *gorm.DB, id uuid.UUID) models.Booking {
	t.Helper()
	var b models.Booking
	require.NoError(t, db.First(&b, "id = ?", id).Error)
	return b
}

func reloadPayment(t *testing.T, db *gorm.DB, id uuid.UUID) models.BookingPayment {
	t.Helper()
	var p models.BookingPayment
	require.NoError(t, db.First(&p, "id = ?", id).Error)
	return p
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

func TestRecordPayment_SettlesOnce(t *testing.T) {
	repo, db := newTestRepository(t)
	ctx := context.Background()
	booking := seedBooking(t, db, models.BookingConfirmed)
	hostID := uuid.New()

	require.NoError(t, repo.RecordPayment(ctx, paymentFor(booking, hostID, "REF-1")))
	assert.Equal(t, models.PaymentPaid, reloadBooking(t, db, booking.ID).PaymentStatus)

	err := repo.RecordPayment(ctx, paymentFor(booking, hostID, "REF-2"))
	assert.ErrorIs(t, err, database.ErrAlreadySettled)
	assert.EqualValues(t, 1, countRows(t, db, &models.BookingPayment{}, "booking_id = ?", booking.ID))
}

func TestRecordPayment_RequiresHostConfirmation(t *testing.T) {
	repo, db := newTestRepository(t)
	booking := seedBooking(t, db, models.BookingPending)

	err := repo.RecordPayment(context.Background(), paymentFor(booking, uuid.New(), "REF-1"))
	assert.ErrorIs(t, err, database.ErrAlreadySettled)
	assert.Equal(t, models.PaymentPending, reloadBooking(t, db, booking.ID).PaymentStatus)
	assert.Zero(t, countRows(t, db, &models.BookingPayment{}, "booking_id = ?", booking.ID))
}

func TestRecordPayment_ExistingPaymentRowRollsBack(t *testing.T) {
	repo, db := newTestRepository(t)
	booking := seedBooking(t, db, models.BookingConfirmed)
	hostID := uuid.New()
	require.NoError(t, db.Omit(clause.Associations).Create(paymentFor(booking, hostID, "REF-1")).Error)

	err := repo.RecordPayment(context.Background(), paymentFor(booking, hostID, "REF-2"))
	assert.ErrorIs(t, err, database.ErrAlreadySettled)
	assert.Equal(t, models.PaymentPending, reloadBooking(t, db, booking.ID).PaymentStatus)
	assert.EqualValues(t, 1, countRows(t, db, &models.BookingPayment{}, "booking_id = ?", booking.ID))
}

func TestRecordPayment_ReferenceReusedByAnotherBooking(t *testing.T) {
	repo, db := newTestRepository(t)
	ctx := context.Background()
	hostID := uuid.New()
	first := seedBooking(t, db, models.BookingConfirmed)
	second := seedBooking(t, db, models.BookingCompleted)

	require.NoError(t, repo.RecordPayment(ctx, paymentFor(first, hostID, "RECEIPT-1")))
	require.NoError(t, repo.RecordPayment(ctx, paymentFor(second, hostID, "RECEIPT-1")))

	assert.Equal(t, models.PaymentPaid, reloadBooking(t, db, second.ID).PaymentStatus)
	assert.EqualValues(t, 2, countRows(t, db, &models.BookingPayment{}, "transaction_reference = ?", "RECEIPT-1"))
}

func TestCreditHostWallet_AppliesOnce(t *testing.T) {
	repo, db := newTestRepository(t)
	ctx := context.Background()
	hostID := uuid.New()
	require.NoError(t, repo.EnsureWallet(ctx, hostID))
	require.NoError(t, repo.EnsureWallet(ctx, hostID))

	payment := paymentFor(seedBooking(t, db, models.BookingConfirmed), hostID, "REF-1")
	require.NoError(t, repo.RecordPayment(ctx, payment))

	require.NoError(t, repo.CreditHostWallet(ctx, payment))
	require.NoError(t, repo.CreditHostWallet(ctx, payment))

	wallet, err := repo.GetWallet(ctx, hostID)
	require.NoError(t, err)
	assert.True(t, wallet.AvailableBalance.Equal(decimal.NewFromInt(90)), wallet.AvailableBalance.String())
	assert.True(t, wallet.TotalEarnings.Equal(decimal.NewFromInt(90)))
	assert.True(t, wallet.TotalCommissionPaid.Equal(decimal.NewFromInt(10)))
	assert.True(t, reloadPayment(t, db, payment.ID).WalletCredited)
	assert.EqualValues(t, 1, countRows(t, db, &models.HostWallet{}, "host_id = ?", hostID))
}

func TestCreditHostWallet_MissingWalletLeavesPaymentUncredited(t *testing.T) {
	repo, db := newTestRepository(t)
	ctx := context.Background()
	hostID := uuid.New()
	payment := paymentFor(seedBooking(t, db, models.BookingConfirmed), hostID, "REF-1")
	require.NoError(t, repo.RecordPayment(ctx, payment))

	err := repo.CreditHostWallet(ctx, payment)
	assert.ErrorIs(t, err, database.ErrWalletNotFound)
	assert.False(t, reloadPayment(t, db, payment.ID).WalletCredited)

	require.NoError(t, repo.EnsureWallet(ctx, hostID))
	require.NoError(t, repo.CreditHostWallet(ctx, payment))
	wallet, err := repo.GetWallet(ctx, hostID)
	require.NoError(t, err)
	assert.True(t, wallet.AvailableBalance.Equal(decimal.NewFromInt(90)))
}

func TestPostLedger_ReplayKeepsThreeRows(t *testing.T) {
	repo, db := newTestRepository(t)
	ctx := context.Background()
	payment := paymentFor(seedBooking(t, db, models.BookingConfirmed), uuid.New(), "REF-1")
	require.NoError(t, repo.RecordPayment(ctx, payment))

	require.NoError(t, repo.PostLedger(ctx, payment, services.LedgerEntries(payment)))
	require.NoError(t, repo.PostLedger(ctx, payment, services.LedgerEntries(payment)))

	assert.EqualValues(t, 3, countRows(t, db, &models.Transaction{}, "reference_id = ?", payment.BookingID.String()))
	assert.True(t, reloadPayment(t, db, payment.ID).LedgerPosted)
}

func TestListUnreconciledPayments_SkipsHostsWithoutWallet(t *testing.T) {
	repo, db := newTestRepository(t)
	ctx := context.Background()

	walletless := uuid.New()
	stranded := paymentFor(seedBooking(t, db, models.BookingConfirmed), walletless, "REF-1")
	require.NoError(t, repo.RecordPayment(ctx, stranded))
	require.NoError(t, repo.PostLedger(ctx, stranded, services.LedgerEntries(stranded)))

	unposted := paymentFor(seedBooking(t, db, models.BookingConfirmed), walletless, "REF-2")
	require.NoError(t, repo.RecordPayment(ctx, unposted))

	hostID := uuid.New()
	require.NoError(t, repo.EnsureWallet(ctx, hostID))
	uncredited := paymentFor(seedBooking(t, db, models.BookingConfirmed), hostID, "REF-3")
	require.NoError(t, repo.RecordPayment(ctx, uncredited))
	require.NoError(t, repo.PostLedger(ctx, uncredited, services.LedgerEntries(uncredited)))

	before := time.Now().Add(time.Hour)
	due, err := repo.ListUnreconciledPayments(ctx, before, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{unposted.ID, uncredited.ID}, paymentIDs(due))

	require.NoError(t, repo.EnsureWallet(ctx, walletless))
	due, err = repo.ListUnreconciledPayments(ctx, before, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{stranded.ID, unposted.ID, uncredited.ID}, paymentIDs(due))
}

func paymentIDs(payments []models.BookingPayment) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(payments))
	for _, p := range payments {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestPayouts_ReserveAndReject(t *testing.T) {
	repo, db := newTestRepository(t)
	ctx := context.Background()
	hostID := uuid.New()
	require.NoError(t, repo.EnsureWallet(ctx, hostID))
	require.NoError(t, db.Model(&models.HostWallet{}).Where("host_id = ?", hostID).
		Update("available_balance", decimal.NewFromInt(90)).Error)

	_, err := repo.CreatePayout(ctx, hostID, decimal.NewFromInt(100), time.Now())
	assert.ErrorIs(t, err, database.ErrInsufficientFund)
	_, err = repo.CreatePayout(ctx, uuid.New(), decimal.NewFromInt(10), time.Now())
	assert.ErrorIs(t, err, database.ErrWalletNotFound)

	payout, err := repo.CreatePayout(ctx, hostID, decimal.NewFromInt(60), time.Now())
	require.NoError(t, err)
	wallet, err := repo.GetWallet(ctx, hostID)
	require.NoError(t, err)
	assert.True(t, wallet.AvailableBalance.Equal(decimal.NewFromInt(30)))

	require.NoError(t, repo.ResolvePayout(ctx, payout, models.PayoutRejected, nil, time.Now()))
	wallet, err = repo.GetWallet(ctx, hostID)
	require.NoError(t, err)
	assert.True(t, wallet.AvailableBalance.Equal(decimal.NewFromInt(90)))
	assert.EqualValues(t, 2, countRows(t, db, &models.Transaction{}, "reference_id = ?", payout.ID.String()))

	err = repo.ResolvePayout(ctx, payout, models.PayoutCompleted, nil, time.Now())
	assert.ErrorIs(t, err, database.ErrStateChanged)
}
