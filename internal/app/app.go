package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jaspindersingh83/s30mocks-backend/internal/blob"
	"github.com/jaspindersingh83/s30mocks-backend/internal/config"
	"github.com/jaspindersingh83/s30mocks-backend/internal/model"
	"github.com/jaspindersingh83/s30mocks-backend/internal/notify"
	"github.com/jaspindersingh83/s30mocks-backend/internal/reminder"
	"github.com/jaspindersingh83/s30mocks-backend/internal/repository"
	"github.com/jaspindersingh83/s30mocks-backend/internal/service"
	"github.com/jaspindersingh83/s30mocks-backend/migrations"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// App holds the wired services and the background workers
type App struct {
	Config *config.Config
	Logger *zap.Logger
	Pool   *pgxpool.Pool

	Users    *service.UserService
	Prices   *service.PriceService
	Slots    *service.SlotService
	Payments *service.PaymentService
	Booking  *service.BookingService

	dispatcher *notify.Dispatcher
	sweeper    *reminder.Sweeper
	queue      *reminder.Queue
	redis      *redis.Client
	closers    []func() error
}

// New connects to Postgres and the optional backends and wires the services
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	pool, err := pgxpool.New(ctx, cfg.GetDBDSN())
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	a := &App{Config: cfg, Logger: logger, Pool: pool}

	if err := a.wire(ctx); err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

func (a *App) wire(ctx context.Context) error {
	cfg, logger := a.Config, a.Logger

	txManager := repository.NewTxManager(a.Pool)
	slotRepo := repository.NewSlotRepository(a.Pool)
	interviewRepo := repository.NewInterviewRepository(a.Pool)
	paymentRepo := repository.NewPaymentRepository(a.Pool)
	priceRepo := repository.NewPriceRepository(a.Pool)
	userRepo := repository.NewUserRepository(a.Pool)

	var cache service.PriceCache
	if cfg.RedisAddr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisCacheDB,
		})
		a.closers = append(a.closers, a.redis.Close)

		if err := a.redis.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis unavailable, prices are read from Postgres", zap.Error(err))
		} else {
			cache = repository.NewPriceCache(a.redis, cfg.PriceCacheTTL)
		}
	}

	var blobs service.BlobStore
	if cfg.CloudinaryCloudName != "" {
		store, err := blob.NewCloudinaryStore(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, logger)
		if err != nil {
			return err
		}
		blobs = store
	}

	senders, err := a.senders()
	if err != nil {
		return err
	}
	// the users table is missing until the first migration
	adminUsers, err := userRepo.GetByRole(ctx, model.RoleAdmin)
	if err != nil {
		logger.Warn("Failed to load admin users, notifying configured admins only", zap.Error(err))
	}
	a.dispatcher = notify.NewDispatcher(logger, cfg.NotifyQueueSize, cfg.NotifyWorkers, adminRecipients(cfg, adminUsers), senders...)

	var reminders service.ReminderScheduler
	switch cfg.ReminderBackend {
	case config.ReminderBackendRedis:
		a.queue = reminder.NewQueue(a.queueRedisOpt(), logger)
		a.closers = append(a.closers, a.queue.Close)
		reminders = a.queue
	default:
		a.sweeper = reminder.NewSweeper(repository.NewReminderRepository(a.Pool, logger), cfg.ReminderSweepInterval, logger)
		reminders = a.sweeper
	}

	a.Users = service.NewUserService(userRepo, logger)
	a.Prices = service.NewPriceService(priceRepo, cache, logger)
	a.Payments = service.NewPaymentService(paymentRepo, blobs, logger)
	a.Slots = service.NewSlotService(txManager, slotRepo, userRepo, a.Prices, logger)
	a.Booking = service.NewBookingService(
		txManager, a.Slots, interviewRepo, userRepo,
		a.Payments, a.Prices, reminders, a.dispatcher,
		service.BookingSettings{
			MeetingBaseURL: cfg.MeetingBaseURL,
			ReminderLead:   cfg.ReminderLead,
		},
		logger,
	)

	if a.sweeper != nil {
		a.sweeper.SetFireFunc(a.Booking.FireReminder)
	}

	return nil
}

func (a *App) senders() ([]notify.Sender, error) {
	cfg := a.Config
	var senders []notify.Sender

	if cfg.TelegramToken != "" {
		b, err := notify.NewTelegramBot(cfg.TelegramToken)
		if err != nil {
			return nil, fmt.Errorf("create telegram bot: %w", err)
		}
		senders = append(senders, notify.NewTelegramSender(b, a.Logger))
	}

	if cfg.SMTPHost != "" {
		senders = append(senders, notify.NewEmailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom))
	}

	if cfg.AMQPURL != "" {
		publisher, err := notify.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return nil, fmt.Errorf("connect amqp: %w", err)
		}
		a.closers = append(a.closers, publisher.Close)
		senders = append(senders, publisher)
	}

	if len(senders) == 0 {
		a.Logger.Warn("No notification channels configured")
	}

	return senders, nil
}

// adminRecipients merges admin users from the database with the admins listed in config
func adminRecipients(cfg *config.Config, users []*model.User) []notify.Recipient {
	seen := make(map[string]bool)
	var admins []notify.Recipient

	for _, u := range users {
		r := notify.Recipient{Name: u.Name, Email: u.Email, Role: model.RoleAdmin}
		if u.TelegramID != nil {
			r.TelegramID = *u.TelegramID
		}
		seen[strings.ToLower(u.Email)] = true
		if r.TelegramID != 0 {
			seen["tg:"+strconv.FormatInt(r.TelegramID, 10)] = true
		}
		admins = append(admins, r)
	}

	for _, email := range cfg.AdminEmails {
		if seen[strings.ToLower(email)] {
			continue
		}
		seen[strings.ToLower(email)] = true
		admins = append(admins, notify.Recipient{Name: "Admin", Email: email, Role: model.RoleAdmin})
	}

	for _, id := range cfg.AdminTelegramIDs {
		key := "tg:" + strconv.FormatInt(id, 10)
		if seen[key] {
			continue
		}
		seen[key] = true
		admins = append(admins, notify.Recipient{Name: "Admin", TelegramID: id, Role: model.RoleAdmin})
	}

	return admins
}

func (a *App) queueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     a.Config.RedisAddr,
		Password: a.Config.RedisPassword,
		DB:       a.Config.RedisQueueDB,
	}
}

// Migrator returns a migrator over the embedded migrations,
// or over MIGRATIONS_DIR when it is set
func (a *App) Migrator() (*Migrator, error) {
	if a.Config.MigrationsDir != "" {
		return NewMigrator(a.Pool, nil, a.Config.MigrationsDir, a.Logger)
	}
	return NewMigrator(a.Pool, migrations.FS, "", a.Logger)
}

// Run starts the notification dispatcher and the reminder backend and
// blocks until ctx is cancelled
func (a *App) Run(ctx context.Context) error {
	a.dispatcher.Start(ctx)
	defer a.dispatcher.Close()

	g, ctx := errgroup.WithContext(ctx)

	if a.sweeper != nil {
		g.Go(func() error {
			a.sweeper.Start(ctx)
			<-ctx.Done()
			return nil
		})
	}

	if a.queue != nil {
		worker := reminder.NewWorker(a.queueRedisOpt(), a.Config.ReminderWorkers, a.Booking.FireReminder, a.Logger)
		g.Go(func() error {
			return worker.Run(ctx)
		})
	}

	a.Logger.Info("s30mocks is running",
		zap.String("environment", a.Config.Environment),
		zap.String("reminder_backend", a.Config.ReminderBackend))

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close releases connections opened by New
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Warn("Failed to close resource", zap.Error(err))
		}
	}
	a.Pool.Close()
}
