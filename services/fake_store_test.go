package services

import (
	"context"
	"sync"
	"time"

	"github.com/anjiri1684/stay_booking/database"
	"github.com/anjiri1684/stay_booking/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// fakeStore keeps rows in memory and applies the same compare-and-set rules
// as the Postgres repository.
type fakeStore struct {
	mu sync.Mutex

	listings map[uuid.UUID]*models.Listing
	bookings map[uuid.UUID]*models.Booking
	payments map[uuid.UUID]*models.BookingPayment
	wallets  map[uuid.UUID]*models.HostWallet
	ledger   []models.Transaction

	creditErr error
	ledgerErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		listings: map[uuid.UUID]*models.Listing{},
		bookings: map[uuid.UUID]*models.Booking{},
		payments: map[uuid.UUID]*models.BookingPayment{},
		wallets:  map[uuid.UUID]*models.HostWallet{},
	}
}

func (f *fakeStore) addListing(l models.Listing) *models.Listing {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	f.listings[l.ID] = &l
	return &l
}

func (f *fakeStore) addBooking(b models.Booking) *models.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	f.bookings[b.ID] = &b
	return &b
}

func (f *fakeStore) addWallet(hostID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wallets[hostID] = &models.HostWallet{ID: uuid.New(), HostID: hostID}
}

func (f *fakeStore) wallet(hostID uuid.UUID) models.HostWallet {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.wallets[hostID]
}

func (f *fakeStore) booking(id uuid.UUID) models.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.bookings[id]
}

func (f *fakeStore) paymentsFor(bookingID uuid.UUID) []models.BookingPayment {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.BookingPayment
	for _, p := range f.payments {
		if p.BookingID == bookingID {
			out = append(out, *p)
		}
	}
	return out
}

func (f *fakeStore) ledgerRows() []models.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Transaction(nil), f.ledger...)
}

func (f *fakeStore) setFailures(creditErr, ledgerErr error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creditErr = creditErr
	f.ledgerErr = ledgerErr
}

func (f *fakeStore) GetListing(_ context.Context, id uuid.UUID) (*models.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.listings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *fakeStore) GetBooking(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *b
	if l, ok := f.listings[b.ListingID]; ok {
		cp.Listing = *l
	}
	return &cp, nil
}

func (f *fakeStore) CreateBooking(_ context.Context, booking *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.listings[booking.ListingID]; !ok {
		return gorm.ErrRecordNotFound
	}
	for _, b := range f.bookings {
		if b.ListingID != booking.ListingID || b.Status == models.BookingCancelled {
			continue
		}
		if b.CheckIn.Before(booking.CheckOut) && b.CheckOut.After(booking.CheckIn) {
			return database.ErrDatesUnavailable
		}
	}
	booking.ID = uuid.New()
	cp := *booking
	f.bookings[booking.ID] = &cp
	return nil
}

func (f *fakeStore) ConfirmBooking(_ context.Context, id uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok || b.Status != models.BookingPending {
		return database.ErrStateChanged
	}
	b.Status = models.BookingConfirmed
	b.ConfirmedAt = &at
	return nil
}

func (f *fakeStore) CancelBooking(_ context.Context, id uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok || b.PaymentStatus != models.PaymentPending ||
		(b.Status != models.BookingPending && b.Status != models.BookingConfirmed) {
		return database.ErrStateChanged
	}
	b.Status = models.BookingCancelled
	b.CancelledAt = &at
	return nil
}

func (f *fakeStore) CompleteFinishedStays(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, b := range f.bookings {
		if b.Status == models.BookingConfirmed && b.PaymentStatus == models.PaymentPaid && b.CheckOut.Before(now) {
			b.Status = models.BookingCompleted
			b.CompletedAt = &now
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) RecordPayment(_ context.Context, payment *models.BookingPayment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[payment.BookingID]
	if !ok || b.PaymentStatus != models.PaymentPending || !b.Status.Settleable() {
		return database.ErrAlreadySettled
	}
	for _, p := range f.payments {
		if p.BookingID == payment.BookingID {
			return database.ErrAlreadySettled
		}
	}
	b.PaymentStatus = models.PaymentPaid
	payment.CreatedAt = payment.PaidAt
	cp := *payment
	f.payments[payment.ID] = &cp
	return nil
}

func (f *fakeStore) CreditHostWallet(_ context.Context, payment *models.BookingPayment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.creditErr != nil {
		return f.creditErr
	}
	p := f.payments[payment.ID]
	if p.WalletCredited {
		return nil
	}
	w, ok := f.wallets[p.HostID]
	if !ok {
		return database.ErrWalletNotFound
	}
	w.AvailableBalance = w.AvailableBalance.Add(p.HostEarnings)
	w.TotalEarnings = w.TotalEarnings.Add(p.HostEarnings)
	w.TotalCommissionPaid = w.TotalCommissionPaid.Add(p.CommissionAmount)
	p.WalletCredited = true
	return nil
}

func (f *fakeStore) PostLedger(_ context.Context, payment *models.BookingPayment, entries []models.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ledgerErr != nil {
		return f.ledgerErr
	}
	for _, e := range entries {
		duplicate := false
		for _, existing := range f.ledger {
			if existing.ReferenceID == e.ReferenceID && existing.Type == e.Type {
				duplicate = true
				break
			}
		}
		if !duplicate {
			f.ledger = append(f.ledger, e)
		}
	}
	f.payments[payment.ID].LedgerPosted = true
	return nil
}

func (f *fakeStore) ListUnreconciledPayments(_ context.Context, createdBefore time.Time, limit int) ([]models.BookingPayment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.BookingPayment
	for _, p := range f.payments {
		_, hasWallet := f.wallets[p.HostID]
		due := !p.LedgerPosted || (!p.WalletCredited && hasWallet)
		if due && p.CreatedAt.Before(createdBefore) {
			out = append(out, *p)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
