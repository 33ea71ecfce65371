package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"pitchbot/internal/bot"
	"pitchbot/internal/config"
	"pitchbot/internal/database"
	"pitchbot/internal/domain"
	"pitchbot/internal/events"
	"pitchbot/internal/logging"
	"pitchbot/internal/models"
	"pitchbot/internal/notifier"
	"pitchbot/internal/pdf"
	"pitchbot/internal/repository"
	"pitchbot/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, logCloser, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if logCloser != nil {
		defer logCloser.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer db.Close()

	stateRepo := buildStateRepository(ctx, cfg, logger)
	stateService := service.NewStateService(stateRepo, cfg.Bot.RateLimitMessages, cfg.Bot.RateLimitWindow(), logger)

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		return fmt.Errorf("init telegram api: %w", err)
	}
	api.Debug = cfg.Telegram.Debug
	logger.Info().Str("username", api.Self.UserName).Msg("авторизован в Telegram")

	tgService := service.NewTelegramService(api)

	eventBus := events.NewEventBus()
	subscribeEventLogging(eventBus, logger)

	renderer := pdf.NewRenderer()
	pitchService := service.NewPitchService(
		db, tgService, renderer, eventBus,
		cfg.Admins, cfg.Pitching.PDFDir, logger)

	metrics := bot.NewMetrics()
	tgBot, err := bot.NewBot(tgService, cfg, stateService, pitchService, db, eventBus, metrics, logger)
	if err != nil {
		return fmt.Errorf("init bot: %w", err)
	}

	n := notifier.New(db, tgService, eventBus,
		cfg.Admins, time.Duration(cfg.Notifier.IntervalSeconds)*time.Second, logger)

	if cfg.Monitoring.PrometheusEnabled {
		go serveMetrics(cfg.Monitoring.PrometheusPort, logger)
	}

	go n.Run(ctx)
	tgBot.Start(ctx)

	tgService.StopReceivingUpdates()
	logger.Info().Msg("бот остановлен")
	return nil
}

// buildStateRepository assembles the wizard state storage: redis behind a
// memory failover when enabled, plain memory otherwise.
func buildStateRepository(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) domain.StateRepository {
	memory := repository.NewMemoryStateRepository(models.DefaultRedisTTL)
	if !cfg.Redis.Enabled {
		return memory
	}

	client := repository.NewRedisClient(cfg.Redis)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := repository.Ping(pingCtx, client); err != nil {
		logger.Warn().Err(err).Msg("redis недоступен, состояние мастера держим в памяти")
	}

	primary := repository.NewRedisStateRepository(client, models.DefaultRedisTTL)
	return repository.NewFailoverStateRepository(primary, memory, logger)
}

func subscribeEventLogging(bus *events.EventBus, logger *zerolog.Logger) {
	l := logger.With().Str("component", "events").Logger()
	for _, eventType := range []string{
		events.EventPitchCreated,
		events.EventPitchStatusChanged,
		events.EventPitchDeleted,
		events.EventBookingConfirmed,
		events.EventBookingCanceled,
		events.EventBookingPassed,
	} {
		et := eventType
		bus.Subscribe(et, func(e *events.Event) error {
			l.Info().Str("event", et).RawJSON("payload", e.Payload).Msg("событие")
			return nil
		})
	}
}

func serveMetrics(port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info().Str("addr", addr).Msg("metrics endpoint запущен")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("metrics endpoint завершился с ошибкой")
	}
}
