package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"canteen-system/internal/auth"
	"canteen-system/internal/config"
	"canteen-system/internal/database"
	"canteen-system/internal/logger"
	"canteen-system/internal/messaging"
	"canteen-system/internal/models"
	"canteen-system/internal/server"
	"canteen-system/internal/services/booking"
	"canteen-system/internal/services/cart"
	"canteen-system/internal/services/menu"
	"canteen-system/internal/services/notification"
	"canteen-system/internal/services/order"
	"canteen-system/internal/services/timing"
	"canteen-system/internal/services/tracking"
	"canteen-system/internal/services/user"
)

func main() {
	var (
		mode       = flag.String("mode", "", "Service mode (api, notification-subscriber, migrate, create-user)")
		configPath = flag.String("config", "config.yaml", "Path to the YAML config file")
		port       = flag.Int("port", 0, "HTTP port (overrides server.port)")
		prefetch   = flag.Int("prefetch", 10, "RabbitMQ prefetch count")
		username   = flag.String("username", "", "Username (create-user mode)")
		email      = flag.String("email", "", "Email (create-user mode)")
		password   = flag.String("password", "", "Password (create-user mode)")
		staff      = flag.Bool("staff", false, "Grant the admin capability (create-user mode)")
	)
	flag.Parse()

	if *mode == "" {
		fmt.Fprintf(os.Stderr, "Error: --mode flag is required\n")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	log := logger.New(*mode)
	requestID := logger.GenerateRequestID()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "api":
		err = runAPI(ctx, cfg, log)
	case "notification-subscriber":
		err = runNotificationSubscriber(ctx, cfg, log, *prefetch)
	case "migrate":
		err = runMigrate(ctx, cfg, log)
	case "create-user":
		err = runCreateUser(ctx, cfg, log, &models.CreateUserRequest{
			Username: *username,
			Email:    *email,
			Password: *password,
			IsStaff:  *staff,
		})
	default:
		err = fmt.Errorf("unknown mode: %s", *mode)
	}

	if err != nil {
		log.Error("service_failed", fmt.Sprintf("%s failed", *mode), requestID, err, nil)
		os.Exit(1)
	}
	log.Info("service_stopped", "Service stopped gracefully", requestID, nil)
}

// runAPI serves the HTTP API
func runAPI(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	if cfg.Auth.Secret == "" {
		return errors.New("auth.secret (AUTH_SECRET) is required in api mode")
	}
	tokens, err := auth.NewTokenManager(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.TokenTTL())
	if err != nil {
		return err
	}

	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("invalid canteen timezone: %w", err)
	}
	defaults, err := defaultTiming(cfg)
	if err != nil {
		return err
	}

	db, err := database.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Notifications are best effort; the API runs without a broker.
	var notifier order.Notifier
	conn, err := messaging.New(cfg, log)
	if err != nil {
		log.Warn("rabbitmq_unavailable", "Starting without order notifications", "", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		defer conn.Close()
		notifier = notification.NewNotifier(messaging.NewPublisher(conn, log))
	}

	menuService := menu.NewService(menu.NewPostgresRepository(db), log)
	timingService := timing.NewService(timing.NewPostgresRepository(db), defaults, log)
	orderStore := order.NewPostgresStore(db)

	handlers := server.Handlers{
		User:     user.NewHandler(user.NewService(user.NewPostgresRepository(db), tokens, log), log),
		Menu:     menu.NewHandler(menuService, log),
		Cart:     cart.NewHandler(cart.NewService(cart.NewPostgresRepository(db), menuService, log), log),
		Order:    order.NewHandler(order.NewService(orderStore, notifier, log, loc), log),
		Tracking: tracking.NewHandler(tracking.NewService(orderStore, log), log),
		Booking:  booking.NewHandler(booking.NewService(booking.NewPostgresRepository(db), menuService, timingService, loc, log), log),
		Timing:   timing.NewHandler(timingService, log),
	}

	srv := server.New(handlers, tokens, db, log, cfg.RequestTimeout())
	return srv.Run(ctx, cfg.Server.Port)
}

// runNotificationSubscriber delivers order notifications until interrupted
func runNotificationSubscriber(ctx context.Context, cfg *config.Config, log *logger.Logger, prefetch int) error {
	conn, err := messaging.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}
	defer conn.Close()

	sender, err := notification.NewSender(cfg.SMTP, log)
	if err != nil {
		return err
	}

	consumer := messaging.NewConsumer(conn, log, messaging.NotificationsQueue, "notification-subscriber", prefetch)
	defer consumer.Close()

	return notification.NewSubscriber(consumer, sender, log).Start(ctx)
}

// runMigrate applies pending migrations and exits
func runMigrate(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	db, err := database.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	return db.RunMigrations(ctx)
}

// runCreateUser creates an account, the way staff accounts are provisioned
func runCreateUser(ctx context.Context, cfg *config.Config, log *logger.Logger, req *models.CreateUserRequest) error {
	db, err := database.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	u, err := user.NewService(user.NewPostgresRepository(db), nil, log).CreateUser(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("created user %q (id %d, staff=%t)\n", u.Username, u.ID, u.IsStaff)
	return nil
}

func defaultTiming(cfg *config.Config) (models.CanteenTiming, error) {
	opening, err := models.ParseClockTime(cfg.Canteen.OpeningTime)
	if err != nil {
		return models.CanteenTiming{}, fmt.Errorf("canteen.opening_time: %w", err)
	}
	closing, err := models.ParseClockTime(cfg.Canteen.ClosingTime)
	if err != nil {
		return models.CanteenTiming{}, fmt.Errorf("canteen.closing_time: %w", err)
	}
	hours := models.CanteenTiming{OpeningTime: opening, ClosingTime: closing}
	if err := hours.Validate(); err != nil {
		return models.CanteenTiming{}, fmt.Errorf("canteen hours: %w", err)
	}
	return hours, nil
}
