package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-booking/internal/config"
	"github.com/iliyamo/hotel-booking/internal/database"
	"github.com/iliyamo/hotel-booking/internal/handler"
	"github.com/iliyamo/hotel-booking/internal/logging"
	"github.com/iliyamo/hotel-booking/internal/mail"
	"github.com/iliyamo/hotel-booking/internal/middleware"
	"github.com/iliyamo/hotel-booking/internal/queue"
	"github.com/iliyamo/hotel-booking/internal/repository"
	"github.com/iliyamo/hotel-booking/internal/router"
	"github.com/iliyamo/hotel-booking/internal/service"
)

func main() {
	// a missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile, Service: "hotel-booking"})
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DBMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatal("schema migration failed", zap.Error(err))
		}
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	otps := repository.NewOTPRepo(db)
	resets := repository.NewPasswordResetRepo(db)
	hotels := repository.NewHotelRepo(db)
	categories := repository.NewCategoryRepo(db)
	rooms := repository.NewRoomRepo(db)
	bookings := repository.NewBookingRepo(db)
	reviews := repository.NewReviewRepo(db)
	reports := repository.NewFinanceReportRepo(db)

	publisher := queue.NewPublisher(cfg.RabbitURL, log.Named("publisher"))
	sender := mail.NewSender(mail.Config{
		Host: cfg.SMTPHost, Port: cfg.SMTPPort, User: cfg.SMTPUser, Pass: cfg.SMTPPass, From: cfg.MailFrom,
	})
	consumer := queue.NewConsumer(cfg.RabbitURL, sender, log.Named("consumer"))
	go consumer.Run(ctx)

	accounts := &service.AccountService{
		Users: users, OTPs: otps, Resets: resets, Notifier: publisher, Log: log.Named("accounts"),
		BcryptCost: cfg.BcryptCost, SiteDomain: cfg.SiteDomain,
	}
	if err := accounts.EnsureSystemAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal("bootstrap admin failed", zap.Error(err))
	}
	bookingSvc := service.NewBookingService(bookings, hotels, publisher, log.Named("bookings"))
	bookingSvc.Retries = cfg.BookingLockRetries
	hotelSvc := &service.HotelService{
		Hotels: hotels, Categories: categories, Rooms: rooms, Users: users,
		Notifier: publisher, Log: log.Named("hotels"),
	}
	reviewSvc := &service.ReviewService{Reviews: reviews, Hotels: hotels, Log: log.Named("reviews")}
	financeSvc := &service.FinanceService{Reports: reports, Hotels: hotels, Bookings: bookings, Log: log.Named("finance")}

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Warn("redis unavailable; rate limiting and response cache disabled")
	} else {
		defer rdb.Close()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(middleware.Identify(cfg.JWTSecret))
	e.Use(middleware.RequestLogger(log.Named("http")))
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log.Named("ratelimit")))

	router.Register(e, router.Handlers{
		Auth:      handler.NewAuthHandler(cfg, accounts, tokens),
		Hotels:    handler.NewHotelHandler(hotelSvc),
		Bookings:  handler.NewBookingHandler(bookingSvc),
		Reviews:   handler.NewReviewHandler(reviewSvc),
		Finance:   handler.NewFinanceHandler(financeSvc),
		DB:        db,
		JWTSecret: cfg.JWTSecret,
		Cache:     middleware.NewRedisCache(config.LoadCacheConfig(), rdb, log.Named("cache")),
	})

	go func() {
		log.Info("listening", zap.String("addr", cfg.Addr()), zap.String("env", cfg.Env))
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
