package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/robfig/cron/v3"

	"github.com/ignatzorin/fluxion-bot/internal/backend"
	"github.com/ignatzorin/fluxion-bot/internal/bot"
	"github.com/ignatzorin/fluxion-bot/internal/config"
	"github.com/ignatzorin/fluxion-bot/internal/db"
	"github.com/ignatzorin/fluxion-bot/internal/eligibility"
	"github.com/ignatzorin/fluxion-bot/internal/goroutine"
	httpHandlers "github.com/ignatzorin/fluxion-bot/internal/http/handlers"
	httpRouter "github.com/ignatzorin/fluxion-bot/internal/http/router"
	"github.com/ignatzorin/fluxion-bot/internal/logger"
	"github.com/ignatzorin/fluxion-bot/internal/repository"
	"github.com/ignatzorin/fluxion-bot/internal/service"
	"github.com/ignatzorin/fluxion-bot/internal/session"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	logLevel := "info"
	if cfg.Env == "development" {
		logLevel = "debug"
		logger.Init(logLevel)
		logger.SetTextFormatter()
	} else {
		logger.Init(logLevel)
	}

	// Подключение к базе подписчиков и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Клиент бэкенда фаучета и доменные сервисы.
	backendClient := backend.NewClient(cfg.APIBaseURL, cfg.RequestTimeout)
	sessions := session.NewStore()
	gate := eligibility.NewGate(backendClient)
	subscriberRepo := repository.NewSubscriberRepository(dbConn)
	tokenManager := service.NewServiceTokenManager(cfg.NotifSecret, 24*time.Hour)

	// Телеграм-бот. Sender нужен сервисам, поэтому сперва транспорт,
	// потом сервисы, потом обработчики.
	withdrawService := service.NewWithdrawService(backendClient, gate, sessions)
	verifyService := service.NewVerificationService(backendClient, sessions)

	tgBot, err := bot.New(cfg.BotToken)
	if err != nil {
		log.Fatalf("main: не удалось инициализировать бота: %v", err)
	}
	sender := bot.NewSender(tgBot.Telegram())

	confirmService := service.NewConfirmationService(backendClient, sender)
	grantService := service.NewGrantService(backendClient, sessions, sender)
	broadcastService := service.NewBroadcastService(subscriberRepo, sender)

	handler := bot.NewHandler(
		cfg.AdminID,
		cfg.MiniAppURL,
		backendClient,
		withdrawService,
		confirmService,
		grantService,
		verifyService,
		sessions,
		subscriberRepo,
	)
	tgBot.Attach(handler)

	// HTTP API: health check и приём push-уведомлений от бэкенда.
	notifyHandler := httpHandlers.NewNotifyHandler(sender)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)
	engine := httpRouter.SetupRouter(cfg, notifyHandler, healthHandler, tokenManager)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	go func() {
		log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("main: HTTP сервер завершился с ошибкой: %v", err)
		}
	}()

	// Расписание промо-рассылок.
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("main: неизвестная таймзона %q: %v", cfg.Timezone, err)
	}
	scheduler := cron.New(cron.WithLocation(loc))
	if _, err := scheduler.AddFunc(cfg.BroadcastCron, func() {
		goroutine.SafeGoWithContext(ctx, broadcastService.Run)
	}); err != nil {
		log.Fatalf("main: невалидное cron-выражение %q: %v", cfg.BroadcastCron, err)
	}
	scheduler.Start()

	// Завершаем всё при получении сигнала.
	go func() {
		<-ctx.Done()
		scheduler.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
		if err := tgBot.Stop(); err != nil {
			log.Printf("main: ошибка остановки бота: %v", err)
		}
	}()

	// Блокируемся на поллинге Telegram до остановки.
	if err := tgBot.StartPolling(); err != nil {
		log.Fatalf("main: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
