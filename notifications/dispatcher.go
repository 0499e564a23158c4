package notifications

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/anjiri1684/stay_booking/models"
	"github.com/anjiri1684/stay_booking/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserDirectory interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type Publisher interface {
	Publish(userID uuid.UUID, event websocket.Event)
}

// Dispatcher turns booking, settlement and payout events into emails and
// websocket pushes. Every method is safe to run on its own goroutine.
type Dispatcher struct {
	mailer Mailer
	users  UserDirectory
	hub    Publisher
	log    *zap.Logger
}

func NewDispatcher(mailer Mailer, users UserDirectory, hub Publisher, log *zap.Logger) *Dispatcher {
	return &Dispatcher{mailer: mailer, users: users, hub: hub, log: log.Named("notify")}
}

func (d *Dispatcher) BookingConfirmed(booking models.Booking) {
	d.publish(booking.GuestID, "booking.confirmed", payload{
		"booking_id": booking.ID,
		"listing_id": booking.ListingID,
		"status":     booking.Status,
	})
	d.email(booking.GuestID, "Your booking is confirmed",
		fmt.Sprintf("<h1>Booking confirmed</h1><p>Your stay at %s from %s to %s has been confirmed by the host. You can now complete payment.</p>",
			html.EscapeString(booking.Listing.Title), booking.CheckIn.Format("Jan 2, 2006"), booking.CheckOut.Format("Jan 2, 2006")))
}

func (d *Dispatcher) PaymentSettled(booking models.Booking, payment models.BookingPayment) {
	d.publish(payment.GuestID, "payment.settled", payload{
		"booking_id": payment.BookingID,
		"payment_id": payment.ID,
		"amount":     payment.Amount.StringFixed(2),
	})
	d.publish(payment.HostID, "payment.settled", payload{
		"booking_id":    payment.BookingID,
		"payment_id":    payment.ID,
		"host_earnings": payment.HostEarnings.StringFixed(2),
	})

	d.email(payment.GuestID, "Payment received",
		fmt.Sprintf("<h1>Payment received</h1><p>We received %s %s for your stay at %s. Reference: %s.</p>",
			payment.Currency, payment.Amount.StringFixed(2), html.EscapeString(booking.Listing.Title), html.EscapeString(payment.TransactionReference)))
	d.email(payment.HostID, "You have new earnings",
		fmt.Sprintf("<h1>Booking paid</h1><p>%s %s has been added to your wallet for %s (commission %s).</p>",
			payment.Currency, payment.HostEarnings.StringFixed(2), html.EscapeString(booking.Listing.Title), payment.CommissionAmount.StringFixed(2)))
}

func (d *Dispatcher) PayoutProcessed(payout models.PayoutRequest) {
	d.publish(payout.HostID, "payout."+string(payout.Status), payload{
		"payout_id": payout.ID,
		"amount":    payout.Amount.StringFixed(2),
	})

	subject := "Your payout has been sent"
	body := fmt.Sprintf("<h1>Payout completed</h1><p>Your payout of %s has been processed.</p>", payout.Amount.StringFixed(2))
	if payout.Status == models.PayoutRejected {
		subject = "Your payout request was rejected"
		body = fmt.Sprintf("<h1>Payout rejected</h1><p>Your payout of %s was rejected and the funds returned to your wallet.</p>", payout.Amount.StringFixed(2))
	}
	d.email(payout.HostID, subject, body)
}

type payload = map[string]interface{}

func (d *Dispatcher) publish(userID uuid.UUID, eventType string, data payload) {
	if d.hub == nil {
		return
	}
	d.hub.Publish(userID, websocket.Event{Type: eventType, Data: data})
}

func (d *Dispatcher) email(userID uuid.UUID, subject, body string) {
	if d.mailer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	user, err := d.users.GetUser(ctx, userID)
	if err != nil {
		d.log.Warn("cannot email user", zap.String("user_id", userID.String()), zap.Error(err))
		return
	}
	if err := d.mailer.Send(ctx, user.FullName, user.Email, subject, body); err != nil {
		d.log.Warn("failed to send email", zap.String("to", user.Email), zap.Error(err))
	}
}
