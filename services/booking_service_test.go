package services

import (
	"context"
	"testing"
	"time"

	"github.com/anjiri1684/stay_booking/apperrors"
	"github.com/anjiri1684/stay_booking/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newBookingFixture(t *testing.T) (*fakeStore, *BookingService, *models.Listing) {
	t.Helper()
	store := newFakeStore()
	listing := store.addListing(models.Listing{
		HostID:        uuid.New(),
		Title:         "City loft",
		PricePerNight: decimal.RequireFromString("75.50"),
		Currency:      "USD",
		MaxGuests:     3,
		Status:        models.ListingApproved,
	})
	svc := NewBookingService(store, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return store, svc, listing
}

func TestBookingService_Create(t *testing.T) {
	ctx := context.Background()
	guest := models.Principal{UserID: uuid.New(), Role: models.RoleGuest}

	t.Run("prices the stay by nights", func(t *testing.T) {
		_, svc, listing := newBookingFixture(t)

		booking, err := svc.Create(ctx, guest, CreateBookingInput{
			ListingID: listing.ID,
			CheckIn:   fixedNow.AddDate(0, 0, 2),
			CheckOut:  fixedNow.AddDate(0, 0, 5),
			Guests:    2,
		})
		require.NoError(t, err)
		assert.Equal(t, "226.50", booking.TotalAmount.StringFixed(2))
		assert.Equal(t, models.BookingPending, booking.Status)
		assert.Equal(t, models.PaymentPending, booking.PaymentStatus)
		assert.Equal(t, guest.UserID, booking.GuestID)
	})

	t.Run("overlapping dates conflict", func(t *testing.T) {
		_, svc, listing := newBookingFixture(t)
		in := CreateBookingInput{
			ListingID: listing.ID,
			CheckIn:   fixedNow.AddDate(0, 0, 2),
			CheckOut:  fixedNow.AddDate(0, 0, 5),
			Guests:    1,
		}
		_, err := svc.Create(ctx, guest, in)
		require.NoError(t, err)

		in.CheckIn = fixedNow.AddDate(0, 0, 4)
		in.CheckOut = fixedNow.AddDate(0, 0, 6)
		_, err = svc.Create(ctx, models.Principal{UserID: uuid.New(), Role: models.RoleGuest}, in)
		assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))

		in.CheckIn = fixedNow.AddDate(0, 0, 5)
		in.CheckOut = fixedNow.AddDate(0, 0, 7)
		_, err = svc.Create(ctx, guest, in)
		assert.NoError(t, err, "back-to-back stays are allowed")
	})

	t.Run("rejects invalid requests", func(t *testing.T) {
		store, svc, listing := newBookingFixture(t)
		draft := store.addListing(models.Listing{HostID: uuid.New(), MaxGuests: 2, Status: models.ListingPending})

		cases := []struct {
			name string
			who  models.Principal
			in   CreateBookingInput
			code string
		}{
			{"zero nights", guest, CreateBookingInput{ListingID: listing.ID, CheckIn: fixedNow.AddDate(0, 0, 2), CheckOut: fixedNow.AddDate(0, 0, 2), Guests: 1}, apperrors.CodeValidation},
			{"past check-in", guest, CreateBookingInput{ListingID: listing.ID, CheckIn: fixedNow.AddDate(0, 0, -2), CheckOut: fixedNow.AddDate(0, 0, 1), Guests: 1}, apperrors.CodeValidation},
			{"too many guests", guest, CreateBookingInput{ListingID: listing.ID, CheckIn: fixedNow.AddDate(0, 0, 2), CheckOut: fixedNow.AddDate(0, 0, 3), Guests: 4}, apperrors.CodeValidation},
			{"unknown listing", guest, CreateBookingInput{ListingID: uuid.New(), CheckIn: fixedNow.AddDate(0, 0, 2), CheckOut: fixedNow.AddDate(0, 0, 3), Guests: 1}, apperrors.CodeNotFound},
			{"unapproved listing", guest, CreateBookingInput{ListingID: draft.ID, CheckIn: fixedNow.AddDate(0, 0, 2), CheckOut: fixedNow.AddDate(0, 0, 3), Guests: 1}, apperrors.CodeInvalidState},
			{"own listing", models.Principal{UserID: listing.HostID, Role: models.RoleHost}, CreateBookingInput{ListingID: listing.ID, CheckIn: fixedNow.AddDate(0, 0, 2), CheckOut: fixedNow.AddDate(0, 0, 3), Guests: 1}, apperrors.CodeForbidden},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := svc.Create(ctx, tc.who, tc.in)
				assert.Equal(t, tc.code, apperrors.CodeOf(err))
			})
		}
	})
}

type confirmRecorder struct {
	confirmed chan models.Booking
}

func (r *confirmRecorder) BookingConfirmed(b models.Booking) { r.confirmed <- b }

func TestBookingService_Confirm(t *testing.T) {
	ctx := context.Background()

	t.Run("owning host confirms", func(t *testing.T) {
		store, svc, listing := newBookingFixture(t)
		rec := &confirmRecorder{confirmed: make(chan models.Booking, 1)}
		svc.AddListener(rec)
		b := store.addBooking(models.Booking{ListingID: listing.ID, GuestID: uuid.New(), Status: models.BookingPending, PaymentStatus: models.PaymentPending})

		got, err := svc.Confirm(ctx, models.Principal{UserID: listing.HostID, Role: models.RoleHost}, b.ID)
		require.NoError(t, err)
		assert.Equal(t, models.BookingConfirmed, got.Status)
		assert.Equal(t, models.BookingConfirmed, store.booking(b.ID).Status)
		assert.Equal(t, models.PaymentPending, store.booking(b.ID).PaymentStatus)

		select {
		case notified := <-rec.confirmed:
			assert.Equal(t, b.ID, notified.ID)
		case <-time.After(2 * time.Second):
			t.Fatal("listener was not notified")
		}
	})

	t.Run("non-owning host is forbidden", func(t *testing.T) {
		store, svc, listing := newBookingFixture(t)
		b := store.addBooking(models.Booking{ListingID: listing.ID, Status: models.BookingPending})

		_, err := svc.Confirm(ctx, models.Principal{UserID: uuid.New(), Role: models.RoleHost}, b.ID)
		assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))
		assert.Equal(t, models.BookingPending, store.booking(b.ID).Status)
	})

	t.Run("admin cannot confirm for the host", func(t *testing.T) {
		store, svc, listing := newBookingFixture(t)
		b := store.addBooking(models.Booking{ListingID: listing.ID, Status: models.BookingPending})

		_, err := svc.Confirm(ctx, models.Principal{UserID: uuid.New(), Role: models.RoleAdmin}, b.ID)
		assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))
	})

	t.Run("already confirmed", func(t *testing.T) {
		store, svc, listing := newBookingFixture(t)
		b := store.addBooking(models.Booking{ListingID: listing.ID, Status: models.BookingConfirmed})

		_, err := svc.Confirm(ctx, models.Principal{UserID: listing.HostID, Role: models.RoleHost}, b.ID)
		assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))
	})

	t.Run("cancelled booking", func(t *testing.T) {
		store, svc, listing := newBookingFixture(t)
		b := store.addBooking(models.Booking{ListingID: listing.ID, Status: models.BookingCancelled})

		_, err := svc.Confirm(ctx, models.Principal{UserID: listing.HostID, Role: models.RoleHost}, b.ID)
		assert.Equal(t, apperrors.CodeInvalidState, apperrors.CodeOf(err))
	})

	t.Run("unknown booking", func(t *testing.T) {
		_, svc, listing := newBookingFixture(t)
		_, err := svc.Confirm(ctx, models.Principal{UserID: listing.HostID, Role: models.RoleHost}, uuid.New())
		assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
	})

	t.Run("unauthenticated", func(t *testing.T) {
		_, svc, _ := newBookingFixture(t)
		_, err := svc.Confirm(ctx, models.Principal{}, uuid.New())
		assert.Equal(t, apperrors.CodeUnauthenticated, apperrors.CodeOf(err))
	})
}

func TestBookingService_Cancel(t *testing.T) {
	ctx := context.Background()
	guestID := uuid.New()
	guest := models.Principal{UserID: guestID, Role: models.RoleGuest}

	t.Run("guest cancels unpaid booking", func(t *testing.T) {
		store, svc, listing := newBookingFixture(t)
		b := store.addBooking(models.Booking{ListingID: listing.ID, GuestID: guestID, Status: models.BookingConfirmed, PaymentStatus: models.PaymentPending})

		got, err := svc.Cancel(ctx, guest, b.ID)
		require.NoError(t, err)
		assert.Equal(t, models.BookingCancelled, got.Status)
		assert.Equal(t, models.BookingCancelled, store.booking(b.ID).Status)
	})

	t.Run("paid booking cannot be cancelled", func(t *testing.T) {
		store, svc, listing := newBookingFixture(t)
		b := store.addBooking(models.Booking{ListingID: listing.ID, GuestID: guestID, Status: models.BookingConfirmed, PaymentStatus: models.PaymentPaid})

		_, err := svc.Cancel(ctx, guest, b.ID)
		assert.Equal(t, apperrors.CodeInvalidState, apperrors.CodeOf(err))
	})

	t.Run("other guest is forbidden", func(t *testing.T) {
		store, svc, listing := newBookingFixture(t)
		b := store.addBooking(models.Booking{ListingID: listing.ID, GuestID: guestID, Status: models.BookingPending, PaymentStatus: models.PaymentPending})

		_, err := svc.Cancel(ctx, models.Principal{UserID: uuid.New(), Role: models.RoleGuest}, b.ID)
		assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))
	})
}

func TestBookingService_CompleteFinishedStays(t *testing.T) {
	store, svc, listing := newBookingFixture(t)
	done := store.addBooking(models.Booking{ListingID: listing.ID, CheckOut: fixedNow.Add(-time.Hour), Status: models.BookingConfirmed, PaymentStatus: models.PaymentPaid})
	unpaid := store.addBooking(models.Booking{ListingID: listing.ID, CheckOut: fixedNow.Add(-time.Hour), Status: models.BookingConfirmed, PaymentStatus: models.PaymentPending})
	upcoming := store.addBooking(models.Booking{ListingID: listing.ID, CheckOut: fixedNow.Add(time.Hour), Status: models.BookingConfirmed, PaymentStatus: models.PaymentPaid})

	n, err := svc.CompleteFinishedStays(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, models.BookingCompleted, store.booking(done.ID).Status)
	assert.Equal(t, models.BookingConfirmed, store.booking(unpaid.ID).Status)
	assert.Equal(t, models.BookingConfirmed, store.booking(upcoming.ID).Status)
}
