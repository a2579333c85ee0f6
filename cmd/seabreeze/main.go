package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"

	"seabreeze/internal/app/commands"
	availabilityapp "seabreeze/internal/app/handlers/availability"
	bookingapp "seabreeze/internal/app/handlers/booking"
	rebookingapp "seabreeze/internal/app/handlers/rebooking"
	"seabreeze/internal/app/middleware"
	appoutbox "seabreeze/internal/app/outbox"
	"seabreeze/internal/app/queries"
	"seabreeze/internal/app/uow"
	"seabreeze/internal/domain/availability"
	domainbooking "seabreeze/internal/domain/booking"
	domaincatalog "seabreeze/internal/domain/catalog"
	domainrebooking "seabreeze/internal/domain/rebooking"
	"seabreeze/internal/infra/broker/kafka"
	rediscache "seabreeze/internal/infra/cache/redis"
	"seabreeze/internal/infra/config"
	mongodb "seabreeze/internal/infra/db/mongo"
	ginserver "seabreeze/internal/infra/http/gin"
	"seabreeze/internal/infra/obs"
	infraoutbox "seabreeze/internal/infra/outbox"
	"seabreeze/internal/infra/storage/memory"
)

func main() {
	_ = godotenv.Load()

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

	if err := app.loadCatalogFixtures(ctx, cfg.FixturesPath, cfg.Currency, logger); err != nil {
		logger.Warn("catalog fixtures load failed", "error", err, "path", cfg.FixturesPath)
	}

	if app.worker != nil {
		go func() {
			if err := app.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	app.close()
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	catalog  domaincatalog.Repository
	worker   *infraoutbox.Worker
	ready    func() error
	closers  []func() error
}

func buildApplication(cfg config.Config, logger *slog.Logger) (application, error) {
	var (
		app           application
		uowFactory    uow.Factory
		catalogRepo   domaincatalog.Repository
		bookingRepo   domainbooking.Repository
		rebookingRepo domainrebooking.Repository
		outboxStore   appoutbox.Outbox
		claimStore    infraoutbox.Store
		idStore       middleware.IdempotencyStore
	)

	switch cfg.StorageMode {
	case "mongo":
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, err
		}
		catalogRepo = mongodb.NewCatalogRepository(client.DB)
		bookingRepo = mongodb.NewBookingRepository(client.DB)
		rebookingRepo = mongodb.NewRebookingRepository(client.DB)
		store := infraoutbox.NewMongoStore(client.DB)
		outboxStore, claimStore = store, store
		idStore = mongodb.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL)
		uowFactory = mongodb.Factory{
			DB:            client.DB,
			CatalogRepo:   catalogRepo,
			BookingRepo:   bookingRepo,
			RebookingRepo: rebookingRepo,
		}
		app.ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}
		app.closers = append(app.closers, func() error {
			closeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Close(closeCtx)
		})
	default:
		catalogRepo = memory.NewCatalogRepository()
		bookingRepo = memory.NewBookingRepository()
		rebookingRepo = memory.NewRebookingRepository()
		box := memory.NewOutbox()
		outboxStore, claimStore = box, box
		idStore = memory.NewIdempotencyStore()
		uowFactory = memory.Factory{
			CatalogRepo:   catalogRepo,
			BookingRepo:   bookingRepo,
			RebookingRepo: rebookingRepo,
		}
		app.ready = func() error { return nil }
	}
	app.catalog = catalogRepo

	checker := &availability.Checker{Catalog: catalogRepo, Bookings: bookingRepo, Rebookings: rebookingRepo}
	var strategy availability.CalendarStrategy = &availability.Scanner{Catalog: catalogRepo, Checker: checker}
	if cfg.RedisAddr != "" {
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		strategy = &rediscache.CalendarCache{Inner: strategy, Client: client, TTL: cfg.CalendarCacheTTL, Logger: logger}
		app.closers = append(app.closers, client.Close)
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return application{}, err
		}
		app.worker = &infraoutbox.Worker{
			Store:       claimStore,
			Producer:    producer,
			Logger:      logger,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Source:      "app://seabreeze",
			Backoff:     cfg.RetryBackoff,
		}
		app.closers = append(app.closers, producer.Close)
	}

	encoder := appoutbox.JSONEventEncoder{}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.QuoteAndBookCommand{}.Key(),
		&bookingapp.QuoteAndBookHandler{UoWFactory: uowFactory, Outbox: outboxStore, Encoder: encoder, Currency: cfg.Currency})
	commands.RegisterHandler(commandBus, bookingapp.UpdateBookingCommand{}.Key(),
		&bookingapp.UpdateBookingHandler{UoWFactory: uowFactory, Outbox: outboxStore, Encoder: encoder, Currency: cfg.Currency})
	commands.RegisterHandler(commandBus, bookingapp.ConfirmBookingCommand{}.Key(),
		&bookingapp.ConfirmBookingHandler{UoWFactory: uowFactory, Outbox: outboxStore, Encoder: encoder})
	commands.RegisterHandler(commandBus, bookingapp.CancelBookingCommand{}.Key(),
		&bookingapp.CancelBookingHandler{UoWFactory: uowFactory, Outbox: outboxStore, Encoder: encoder})
	commands.RegisterHandler(commandBus, bookingapp.CheckInCommand{}.Key(),
		&bookingapp.CheckInHandler{UoWFactory: uowFactory, Outbox: outboxStore, Encoder: encoder})
	commands.RegisterHandler(commandBus, bookingapp.CheckOutCommand{}.Key(),
		&bookingapp.CheckOutHandler{UoWFactory: uowFactory, Outbox: outboxStore, Encoder: encoder})
	commands.RegisterHandler(commandBus, bookingapp.RecordPaymentCommand{}.Key(),
		&bookingapp.RecordPaymentHandler{UoWFactory: uowFactory, Outbox: outboxStore, Encoder: encoder, Currency: cfg.Currency})
	commands.RegisterHandler(commandBus, rebookingapp.CreateRebookingCommand{}.Key(),
		&rebookingapp.CreateRebookingHandler{UoWFactory: uowFactory, Outbox: outboxStore, Encoder: encoder, Currency: cfg.Currency})
	commands.RegisterHandler(commandBus, rebookingapp.UpdateRebookingCommand{}.Key(),
		&rebookingapp.UpdateRebookingHandler{UoWFactory: uowFactory, Outbox: outboxStore, Encoder: encoder, Currency: cfg.Currency})
	commands.RegisterHandler(commandBus, rebookingapp.ApproveRebookingCommand{}.Key(),
		&rebookingapp.ApproveRebookingHandler{UoWFactory: uowFactory, Outbox: outboxStore, Encoder: encoder, Currency: cfg.Currency})
	commands.RegisterHandler(commandBus, rebookingapp.RejectRebookingCommand{}.Key(),
		&rebookingapp.RejectRebookingHandler{UoWFactory: uowFactory, Outbox: outboxStore, Encoder: encoder})
	commands.RegisterHandler(commandBus, rebookingapp.CancelRebookingCommand{}.Key(),
		&rebookingapp.CancelRebookingHandler{UoWFactory: uowFactory, Outbox: outboxStore, Encoder: encoder})
	commands.RegisterHandler(commandBus, rebookingapp.CompleteRebookingCommand{}.Key(),
		&rebookingapp.CompleteRebookingHandler{UoWFactory: uowFactory, Outbox: outboxStore, Encoder: encoder})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, bookingapp.ListBookingsQuery{}.Key(),
		&bookingapp.ListBookingsHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, bookingapp.GetBookingQuery{}.Key(),
		&bookingapp.GetBookingHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, availabilityapp.CheckAvailabilityQuery{}.Key(),
		&availabilityapp.CheckAvailabilityHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, availabilityapp.MonthOverviewQuery{}.Key(),
		&availabilityapp.MonthOverviewHandler{Strategy: strategy})
	queries.RegisterHandler(queryBus, availabilityapp.DayViewQuery{}.Key(),
		&availabilityapp.DayViewHandler{Strategy: strategy})
	queries.RegisterHandler(queryBus, rebookingapp.GetRebookingQuery{}.Key(),
		&rebookingapp.GetRebookingHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, rebookingapp.OutstandingRebookingQuery{}.Key(),
		&rebookingapp.OutstandingRebookingHandler{UoWFactory: uowFactory})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Idempotency(idStore),
		middleware.Transaction(uowFactory),
		middleware.OutboxFlush(outboxStore),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	app.handlers = ginserver.Handlers{
		Booking: ginserver.BookingHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
		},
		Availability: ginserver.AvailabilityHandler{
			Queries: queryBusWithMiddleware,
		},
		Rebooking: ginserver.RebookingHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
		},
	}
	return app, nil
}

func (a application) close() {
	for _, closeFn := range a.closers {
		_ = closeFn()
	}
}
