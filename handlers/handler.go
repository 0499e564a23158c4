package handlers

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/anjiri1684/stay_booking/apperrors"
	config "github.com/anjiri1684/stay_booking/configs"
	"github.com/anjiri1684/stay_booking/middleware"
	"github.com/anjiri1684/stay_booking/models"
	"github.com/anjiri1684/stay_booking/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var validate = validator.New()

type Settler interface {
	Settle(ctx context.Context, principal models.Principal, in services.SettleInput) (*models.BookingPayment, error)
	Reconcile(ctx context.Context, before time.Time, limit int) (services.ReconcileResult, error)
}

type BookingManager interface {
	Create(ctx context.Context, principal models.Principal, in services.CreateBookingInput) (*models.Booking, error)
	Confirm(ctx context.Context, principal models.Principal, bookingID uuid.UUID) (*models.Booking, error)
	Cancel(ctx context.Context, principal models.Principal, bookingID uuid.UUID) (*models.Booking, error)
}

type PayoutManager interface {
	Request(ctx context.Context, principal models.Principal, amount decimal.Decimal) (*models.PayoutRequest, error)
	Resolve(ctx context.Context, principal models.Principal, payoutID uuid.UUID, decision string, notes *string) (*models.PayoutRequest, error)
}

type PaymentProvider interface {
	CreateBookingIntent(ctx context.Context, booking *models.Booking) (*stripe.PaymentIntent, error)
	SettlementFromEvent(payload []byte, signature string) (services.SettleInput, error)
}

type WalletStore interface {
	EnsureWallet(ctx context.Context, hostID uuid.UUID) error
	GetWallet(ctx context.Context, hostID uuid.UUID) (*models.HostWallet, error)
	GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error)
}

type Deps struct {
	Config     *config.Config
	DB         *gorm.DB
	Store      WalletStore
	Settlement Settler
	Bookings   BookingManager
	Payouts    PayoutManager
	Payments   PaymentProvider
	Log        *zap.Logger
}

// Handler serves the HTTP API. Business operations go through the services;
// plain listing and reporting queries read the database directly.
type Handler struct {
	cfg        *config.Config
	db         *gorm.DB
	store      WalletStore
	settlement Settler
	bookings   BookingManager
	payouts    PayoutManager
	payments   PaymentProvider
	log        *zap.Logger
}

func New(d Deps) *Handler {
	return &Handler{
		cfg:        d.Config,
		db:         d.DB,
		store:      d.Store,
		settlement: d.Settlement,
		bookings:   d.Bookings,
		payouts:    d.Payouts,
		payments:   d.Payments,
		log:        d.Log.Named("http"),
	}
}

// respondError writes err as {success:false, error:msg}. Only the public
// message of an AppError reaches the client.
func (h *Handler) respondError(c *fiber.Ctx, err error) error {
	status := apperrors.HTTPStatus(apperrors.CodeOf(err))
	if status >= fiber.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"success": false, "error": apperrors.PublicMessage(err)})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": msg})
}

func currentPrincipal(c *fiber.Ctx) models.Principal {
	p, _ := middleware.PrincipalFrom(c)
	return p
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperrors.Validation("invalid " + name)
	}
	return id, nil
}

func pagination(c *fiber.Ctx) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.Query("page", "1"))
	limit, _ = strconv.Atoi(c.Query("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit, (page - 1) * limit
}

func pageMeta(total int64, page, limit int) fiber.Map {
	return fiber.Map{
		"total":     total,
		"page":      page,
		"last_page": int(math.Ceil(float64(total) / float64(limit))),
	}
}

func dbError(err error, notFound string) error {
	if apperrors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(notFound)
	}
	return apperrors.Upstream("database error", err)
}
