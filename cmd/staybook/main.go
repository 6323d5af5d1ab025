package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"staybook/internal/app/commands"
	bookingapp "staybook/internal/app/handlers/booking"
	calendarapp "staybook/internal/app/handlers/calendar"
	pricingapp "staybook/internal/app/handlers/pricing"
	"staybook/internal/app/middleware"
	appoutbox "staybook/internal/app/outbox"
	"staybook/internal/app/policies"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainproperty "staybook/internal/domain/property"
	"staybook/internal/domain/shared/money"
	"staybook/internal/infra/broker/kafka"
	"staybook/internal/infra/config"
	mongodb "staybook/internal/infra/db/mongo"
	ginserver "staybook/internal/infra/http/gin"
	"staybook/internal/infra/obs"
	infraoutbox "staybook/internal/infra/outbox"
	"staybook/internal/infra/schedule"
	"staybook/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	app, err := buildApplication(cfg, logger)
	if err != nil {
		logger.Error("application wiring failed", "error", err)
		os.Exit(1)
	}
	defer app.close(logger)

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	if app.properties != nil {
		path := getenv("PROPERTY_FIXTURES", "")
		if path != "" {
			if err := loadPropertyFixtures(ctx, app.properties, path); err != nil {
				logger.Warn("property fixtures load failed", "error", err, "path", path)
			}
		}
	}

	for _, runner := range app.runners {
		run := runner
		go func() {
			if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("background worker stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "env", cfg.Env)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers   ginserver.Handlers
	runners    []func(context.Context) error
	closers    []func() error
	ready      func() error
	properties domainproperty.Repository
}

func (a application) close(logger *slog.Logger) {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			logger.Warn("resource close failed", "error", err)
		}
	}
}

func buildApplication(cfg config.Config, logger *slog.Logger) (application, error) {
	if cfg.MongoURI != "" {
		return buildMongoApplication(cfg, logger)
	}
	return buildMemoryApplication(cfg, logger)
}

func buildMemoryApplication(cfg config.Config, logger *slog.Logger) (application, error) {
	propertyRepo := memory.NewPropertyRepository()
	calendarRepo := memory.NewCalendarRepository()
	bookingRepo := memory.NewBookingRepository()
	outboxStore := memory.NewOutbox()
	idStore := memory.NewIdempotencyStore()

	factory := memory.Factory{
		PropertyRepo: propertyRepo,
		CalendarRepo: calendarRepo,
		BookingRepo:  bookingRepo,
	}

	app := assembleApplication(cfg, factory, outboxStore, idStore, calendarRepo, logger)
	app.properties = propertyRepo
	app.ready = func() error { return nil }
	logger.Info("storage configured", "backend", "memory")
	return app, nil
}

func buildMongoApplication(cfg config.Config, logger *slog.Logger) (application, error) {
	client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return application{}, fmt.Errorf("mongo connect: %w", err)
	}
	propertyRepo := mongodb.NewPropertyRepository(client.DB)
	calendarRepo := mongodb.NewCalendarRepository(client.DB)
	bookingRepo := mongodb.NewBookingRepository(client.DB)
	outboxStore := infraoutbox.NewStore(client.DB)
	idStore := mongodb.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL)

	factory := mongodb.Factory{
		DB:           client.DB,
		PropertyRepo: propertyRepo,
		CalendarRepo: calendarRepo,
		BookingRepo:  bookingRepo,
	}

	app := assembleApplication(cfg, factory, outboxStore, idStore, calendarRepo, logger)
	app.ready = func() error {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return client.Ping(pingCtx)
	}
	app.closers = append(app.closers, func() error {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return client.DB.Client().Disconnect(closeCtx)
	})

	producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
	if err != nil {
		return application{}, fmt.Errorf("kafka connect: %w", err)
	}
	app.closers = append(app.closers, producer.Close)

	worker := &infraoutbox.Worker{
		Store:       outboxStore,
		Producer:    producer,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		Source:      "app://staybook",
		Backoff:     cfg.RetryBackoff,
	}
	app.runners = append(app.runners, worker.Run)

	logger.Info("storage configured", "backend", "mongo", "database", cfg.MongoDB)
	return app, nil
}

func assembleApplication(
	cfg config.Config,
	factory uow.UoWFactory,
	outboxStore appoutbox.Outbox,
	idStore middleware.IdempotencyStore,
	ledgers schedule.LedgerLister,
	logger *slog.Logger,
) application {
	encoder := appoutbox.JSONEventEncoder{}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.CreateBookingCommand{}.Key(), &bookingapp.CreateBookingHandler{
		UoWFactory: factory, Outbox: outboxStore, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, bookingapp.ConfirmPaymentCommand{}.Key(), &bookingapp.ConfirmPaymentHandler{
		UoWFactory: factory, Outbox: outboxStore, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, bookingapp.CancelBookingCommand{}.Key(), &bookingapp.CancelBookingHandler{
		UoWFactory: factory, Payments: policies.NoopPayments{}, Outbox: outboxStore, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, bookingapp.CompleteBookingCommand{}.Key(), &bookingapp.CompleteBookingHandler{
		UoWFactory: factory, Outbox: outboxStore, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, bookingapp.LifecycleSweepCommand{}.Key(), &bookingapp.LifecycleSweepHandler{
		UoWFactory: factory, Outbox: outboxStore, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, calendarapp.CleanupCommand{}.Key(), &calendarapp.CleanupHandler{
		UoWFactory: factory, Outbox: outboxStore, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, pricingapp.UpdatePricingCommand{}.Key(), &pricingapp.UpdatePricingHandler{
		UoWFactory: factory, Outbox: outboxStore, Encoder: encoder,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, bookingapp.GetBookingQuery{}.Key(), &bookingapp.GetBookingHandler{UoWFactory: factory})
	queries.RegisterHandler(queryBus, calendarapp.GetSummaryQuery{}.Key(), &calendarapp.GetSummaryHandler{UoWFactory: factory})
	queries.RegisterHandler(queryBus, calendarapp.GetMonthQuery{}.Key(), &calendarapp.GetMonthHandler{UoWFactory: factory})
	queries.RegisterHandler(queryBus, calendarapp.GetBlockedQuery{}.Key(), &calendarapp.GetBlockedHandler{UoWFactory: factory})
	queries.RegisterHandler(queryBus, pricingapp.GetQuoteQuery{}.Key(), &pricingapp.GetQuoteHandler{UoWFactory: factory})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Idempotency(idStore, nil),
		middleware.Transaction(factory, nil),
		middleware.OutboxFlush(outboxStore),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	sweeper := &schedule.Sweeper{
		Commands:        commandBusWithMiddleware,
		Ledgers:         ledgers,
		Logger:          logger,
		SweepInterval:   cfg.SweepInterval,
		CleanupInterval: cfg.CleanupInterval,
	}

	return application{
		handlers: ginserver.Handlers{
			Booking:  ginserver.BookingHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware},
			Calendar: ginserver.CalendarHandler{Queries: queryBusWithMiddleware},
			Pricing:  ginserver.PricingHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware},
		},
		runners: []func(context.Context) error{sweeper.Run},
	}
}

type propertyFixture struct {
	ID        string `json:"id"`
	HostID    string `json:"host_id"`
	Title     string `json:"title"`
	BasePrice int64  `json:"base_price"`
	Currency  string `json:"currency"`
}

func loadPropertyFixtures(ctx context.Context, repo domainproperty.Repository, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read fixtures: %w", err)
	}
	var fixtures []propertyFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}
	now := time.Now().UTC()
	for _, fx := range fixtures {
		prop, err := domainproperty.New(
			domainproperty.PropertyID(fx.ID),
			fx.HostID,
			fx.Title,
			money.Money{Amount: fx.BasePrice, Currency: fx.Currency},
			now,
		)
		if err != nil {
			return fmt.Errorf("fixture %q: %w", fx.ID, err)
		}
		prop.Activate(now)
		prop.ClearEvents()
		if err := repo.Save(ctx, prop); err != nil {
			return fmt.Errorf("save fixture %q: %w", fx.ID, err)
		}
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
