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
	"path/filepath"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"flatbook/internal/app/commands"
	apartmentsapp "flatbook/internal/app/handlers/apartments"
	bookingapp "flatbook/internal/app/handlers/booking"
	meapp "flatbook/internal/app/handlers/me"
	"flatbook/internal/app/middleware"
	appoutbox "flatbook/internal/app/outbox"
	"flatbook/internal/app/queries"
	"flatbook/internal/app/uow"
	domainapartment "flatbook/internal/domain/apartment"
	"flatbook/internal/domain/shared/money"
	"flatbook/internal/infra/broker/kafka"
	"flatbook/internal/infra/config"
	mongodb "flatbook/internal/infra/db/mongo"
	ginserver "flatbook/internal/infra/http/gin"
	"flatbook/internal/infra/obs"
	infraoutbox "flatbook/internal/infra/outbox"
	"flatbook/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Checks: app.healthChecks,
	}, app.handlers)

	fixturesPath := cfg.FixturesPath
	if fixturesPath == "" {
		fixturesPath = defaultFixturesPath()
	}
	if err := loadApartmentFixtures(ctx, fixturesPath, app.apartments, logger); err != nil {
		logger.Warn("apartment fixtures load failed", "error", err, "path", fixturesPath)
	}

	if len(cfg.KafkaBrokers) > 0 {
		if err := app.startPublishing(ctx, cfg, logger); err != nil {
			logger.Error("event publishing setup failed", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Info("kafka not configured, events stay in the outbox")
	}

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
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers     ginserver.Handlers
	healthChecks map[string]obs.ReadinessCheck
	apartments   domainapartment.Repository
	outboxStore  infraoutbox.Store
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	var (
		apartmentRepo domainapartment.Repository
		uowFactory    uow.Factory
		box           appoutbox.Outbox
		outboxStore   infraoutbox.Store
		idStore       middleware.IdempotencyStore
		checks        = map[string]obs.ReadinessCheck{}
	)

	switch cfg.StorageMode {
	case "mongo":
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("mongo connect: %w", err)
		}
		if err := client.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		locks := mongodb.NewLockManager(client.DB, cfg.LockTTL)
		apartmentRepo = mongodb.NewApartmentRepository(client.DB)
		bookingRepo := mongodb.NewBookingRepository(client.DB, locks)
		uowFactory = mongodb.Factory{ApartmentRepo: apartmentRepo, BookingRepo: bookingRepo}
		box = mongodb.NewOutbox(client.DB)
		outboxStore = mongodb.NewOutboxStore(client.DB)
		idStore = mongodb.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL)
		checks["mongo"] = client.Ping
	default:
		apartmentRepo = memory.NewApartmentRepository()
		bookingRepo := memory.NewBookingRepository()
		uowFactory = memory.Factory{ApartmentRepo: apartmentRepo, BookingRepo: bookingRepo}
		sink := memory.NewOutboxStore()
		box = memory.NewOutbox(sink)
		outboxStore = sink
		idStore = memory.NewIdempotencyStore(cfg.IdempotencyTTL)
	}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.RequestBookingCommand{}.Key(), &bookingapp.RequestBookingHandler{
		Factory:  uowFactory,
		Outbox:   box,
		Encoder:  appoutbox.JSONEventEncoder{},
		Attempts: cfg.AdmissionAttempts,
	})
	commands.RegisterHandler(commandBus, bookingapp.RescheduleBookingCommand{}.Key(), &bookingapp.RescheduleBookingHandler{
		Factory:  uowFactory,
		Outbox:   box,
		Encoder:  appoutbox.JSONEventEncoder{},
		Attempts: cfg.AdmissionAttempts,
	})
	commands.RegisterHandler(commandBus, bookingapp.CancelBookingCommand{}.Key(), &bookingapp.CancelBookingHandler{
		Factory: uowFactory,
		Outbox:  box,
		Encoder: appoutbox.JSONEventEncoder{},
	})
	commands.RegisterHandler(commandBus, apartmentsapp.CreateApartmentCommand{}.Key(), &apartmentsapp.CreateApartmentHandler{
		Factory: uowFactory,
		Outbox:  box,
		Encoder: appoutbox.JSONEventEncoder{},
	})
	commands.RegisterHandler(commandBus, apartmentsapp.UpdateApartmentCommand{}.Key(), &apartmentsapp.UpdateApartmentHandler{
		Factory: uowFactory,
		Outbox:  box,
		Encoder: appoutbox.JSONEventEncoder{},
	})
	commands.RegisterHandler(commandBus, apartmentsapp.SetOpenForBookingCommand{}.Key(), &apartmentsapp.SetOpenForBookingHandler{
		Factory: uowFactory,
		Outbox:  box,
		Encoder: appoutbox.JSONEventEncoder{},
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, bookingapp.GetBookingQuery{}.Key(), &bookingapp.GetBookingHandler{Factory: uowFactory})
	queries.RegisterHandler(queryBus, meapp.ListGuestBookingsQuery{}.Key(), &meapp.ListGuestBookingsHandler{Factory: uowFactory})
	queries.RegisterHandler(queryBus, meapp.ListHostBookingsQuery{}.Key(), &meapp.ListHostBookingsHandler{Factory: uowFactory})
	queries.RegisterHandler(queryBus, apartmentsapp.ListApartmentsQuery{}.Key(), &apartmentsapp.ListApartmentsHandler{Factory: uowFactory})
	queries.RegisterHandler(queryBus, apartmentsapp.ListHostApartmentsQuery{}.Key(), &apartmentsapp.ListHostApartmentsHandler{Factory: uowFactory})
	queries.RegisterHandler(queryBus, apartmentsapp.GetApartmentQuery{}.Key(), &apartmentsapp.GetApartmentHandler{Factory: uowFactory})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.CommandLogging(logger),
		middleware.Idempotency(idStore, nil),
		middleware.Transaction(uowFactory, nil),
		middleware.OutboxFlush(box),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	authMW := ginserver.HeaderAuthMiddleware{}
	return &application{
		handlers: ginserver.Handlers{
			Booking: ginserver.BookingHandler{
				Commands: commandBusWithMiddleware,
				Queries:  queryBusWithMiddleware,
				Logger:   logger,
			},
			Apartment: ginserver.ApartmentHandler{
				Queries: queryBusWithMiddleware,
				Logger:  logger,
			},
			Host: ginserver.HostHandler{
				Commands: commandBusWithMiddleware,
				Queries:  queryBusWithMiddleware,
				Logger:   logger,
			},
			Me: ginserver.MeHandler{
				Queries: queryBusWithMiddleware,
				Logger:  logger,
			},
			AuthMiddleware: authMW.Handle,
		},
		healthChecks: checks,
		apartments:   apartmentRepo,
		outboxStore:  outboxStore,
	}, nil
}

func (a *application) startPublishing(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
	if err != nil {
		return fmt.Errorf("kafka producer: %w", err)
	}
	worker := &infraoutbox.Worker{
		Store:       a.outboxStore,
		Producer:    producer,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		ID:          uuid.NewString(),
	}
	go func() {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("outbox worker stopped", "error", err)
		}
		_ = producer.Close()
	}()

	if group := os.Getenv("KAFKA_CONSUMER_GROUP"); group != "" {
		consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, group, nil, eventLogHandler{logger: logger})
		if err != nil {
			return fmt.Errorf("kafka consumer: %w", err)
		}
		topics := []string{
			cfg.KafkaTopicPrefix + "booking.events.v1",
			cfg.KafkaTopicPrefix + "apartment.events.v1",
		}
		go func() {
			if err := consumer.Run(ctx, topics); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("event consumer stopped", "error", err)
			}
			_ = consumer.Close()
		}()
	}
	return nil
}

// eventLogHandler mirrors published events into the application log, which
// doubles as a smoke check that the outbox pipeline is moving.
type eventLogHandler struct {
	logger *slog.Logger
}

func (h eventLogHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	h.logger.Info("event observed", "topic", msg.Topic, "key", string(msg.Key), "offset", msg.Offset)
	return nil
}

func loadApartmentFixtures(ctx context.Context, path string, repo domainapartment.Repository, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("apartment fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	if len(data) == 0 {
		logger.Warn("apartment fixtures file empty", "path", path)
		return nil
	}

	var fixtures []apartmentFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	now := time.Now()
	for _, fx := range fixtures {
		rate, err := money.New(fx.RateAmount, fx.RateCurrency)
		if err != nil {
			logger.Error("fixture invalid", "apartment_id", fx.ID, "error", err)
			continue
		}
		apt, err := domainapartment.New(domainapartment.CreateParams{
			ID:           domainapartment.ApartmentID(fx.ID),
			Host:         domainapartment.HostID(fx.Host),
			Title:        fx.Title,
			Description:  fx.Description,
			Address:      fx.Address,
			City:         fx.City,
			Country:      fx.Country,
			Bedrooms:     fx.Bedrooms,
			Bathrooms:    fx.Bathrooms,
			MaxOccupancy: fx.MaxOccupancy,
			NightlyRate:  rate,
			Now:          now,
		})
		if err != nil {
			logger.Error("fixture invalid", "apartment_id", fx.ID, "error", err)
			continue
		}
		apt.ClearEvents()
		if err := repo.Save(ctx, apt); err != nil {
			logger.Error("cannot store fixture apartment", "apartment_id", fx.ID, "error", err)
			continue
		}
		logger.Info("apartment fixture imported", "apartment_id", apt.ID)
	}
	return nil
}

type apartmentFixture struct {
	ID           string `json:"id"`
	Host         string `json:"host"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Address      string `json:"address"`
	City         string `json:"city"`
	Country      string `json:"country"`
	Bedrooms     int    `json:"bedrooms"`
	Bathrooms    int    `json:"bathrooms"`
	MaxOccupancy int    `json:"max_occupancy"`
	RateAmount   int64  `json:"rate_amount"`
	RateCurrency string `json:"rate_currency"`
}

func defaultFixturesPath() string {
	candidates := []string{
		filepath.Join("data", "apartments.json"),
		filepath.Join("..", "data", "apartments.json"),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return candidates[0]
}
