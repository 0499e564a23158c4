package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anjiri1684/stay_booking/apperrors"
	config "github.com/anjiri1684/stay_booking/configs"
	"github.com/anjiri1684/stay_booking/database"
	"github.com/anjiri1684/stay_booking/handlers"
	"github.com/anjiri1684/stay_booking/jobs"
	applogger "github.com/anjiri1684/stay_booking/logger"
	"github.com/anjiri1684/stay_booking/notifications"
	"github.com/anjiri1684/stay_booking/routes"
	"github.com/anjiri1684/stay_booking/services"
	"github.com/anjiri1684/stay_booking/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zlog := applogger.New(cfg.LogLevel, cfg.LogFormat)
	defer zlog.Sync()

	db, err := database.Connect(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zlog.Fatal("failed to migrate database", zap.Error(err))
	}
	if err := database.SeedAdmin(db, cfg, zlog); err != nil {
		zlog.Fatal("failed to seed admin", zap.Error(err))
	}

	var locker services.Locker = services.NopLocker{}
	redisClient, err := database.ConnectRedis(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to connect to redis", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
		locker = services.NewRedisLocker(redisClient, zlog)
	}

	repo := database.NewRepository(db)

	settlement := services.NewSettlementService(repo, locker, zlog, cfg.CommissionRate(), cfg.SettlementLockTTL)
	bookings := services.NewBookingService(repo, zlog)
	payouts := services.NewPayoutService(repo, zlog)
	stripeSvc := services.NewStripeService(cfg.StripeSecretKey, cfg.StripeWebhookSecret, zlog)

	hub := websocket.NewHub(zlog)
	go hub.Run()

	var mailer notifications.Mailer
	if brevo := notifications.NewBrevoService(cfg.BrevoAPIKey, cfg.EmailSender, cfg.EmailSenderName, zlog); brevo != nil {
		mailer = brevo
	}
	dispatcher := notifications.NewDispatcher(mailer, repo, hub, zlog)
	settlement.AddListener(dispatcher)
	bookings.AddListener(dispatcher)
	payouts.AddListener(dispatcher)

	if cfg.ReceiptsEnabled && cfg.CloudinaryURL != "" {
		receipts, err := services.NewReceiptService(cfg.AppName, cfg.CloudinaryURL, repo, zlog)
		if err != nil {
			zlog.Fatal("failed to initialise receipt service", zap.Error(err))
		}
		settlement.AddListener(receipts)
	}

	scheduler, err := jobs.NewScheduler(zlog,
		jobs.Job{Name: "reconcile-payments", Schedule: cfg.ReconcileSchedule, Run: jobs.ReconcilePayments(settlement, cfg.ReconcileGrace, zlog)},
		jobs.Job{Name: "complete-stays", Schedule: cfg.CompletionSchedule, Run: jobs.CompleteFinishedStays(bookings, zlog)},
	)
	if err != nil {
		zlog.Fatal("failed to schedule jobs", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	app := fiber.New(fiber.Config{
		AppName:       cfg.AppName,
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			} else if apperrors.CodeOf(err) != apperrors.CodeUpstream {
				code = apperrors.HTTPStatus(apperrors.CodeOf(err))
			}

			if code >= fiber.StatusInternalServerError {
				zlog.Error("unhandled request error",
					zap.String("path", c.Path()),
					zap.String("method", c.Method()),
					zap.Error(err))
			}
			msg := apperrors.PublicMessage(err)
			if fe != nil {
				msg = fe.Message
			}
			return c.Status(code).JSON(fiber.Map{"success": false, "error": msg})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Stripe-Signature, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Content-Disposition",
		MaxAge:        86400,
	}))
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	routes.Setup(app, routes.Deps{
		Config: cfg,
		Handler: handlers.New(handlers.Deps{
			Config:     cfg,
			DB:         db,
			Store:      repo,
			Settlement: settlement,
			Bookings:   bookings,
			Payouts:    payouts,
			Payments:   stripeSvc,
			Log:        zlog,
		}),
		Users: repo,
		Hub:   hub,
		Log:   zlog,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		zlog.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			zlog.Error("shutdown failed", zap.Error(err))
		}
	}()

	zlog.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zlog.Fatal("server failed to start", zap.Error(err))
	}
}
