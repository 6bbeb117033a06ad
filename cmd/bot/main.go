package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"team_attendance_bot/internal/app"
	"team_attendance_bot/internal/domain/attendance"
	"team_attendance_bot/internal/infra/config"
	idb "team_attendance_bot/internal/infra/database"
	"team_attendance_bot/internal/infra/drafts"
	"team_attendance_bot/internal/infra/logger"
	"team_attendance_bot/internal/infra/scheduler"
	"team_attendance_bot/internal/infra/telegram"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"admin_id":    cfg.AdminTelegramID,
		"coaches":     len(cfg.CoachTelegramIDs),
	}).Info("Team attendance bot starting...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize Database Connection
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		mainLogger.Fatalf("Could not connect to database: %v", err)
	}
	defer db.Close()
	mainLogger.Info("Database connection established successfully.")

	applied, err := idb.ApplyMigrations(ctx, db, cfg.MigrationsDir)
	if err != nil {
		mainLogger.Fatalf("Could not apply migrations: %v", err)
	}
	mainLogger.Infof("Applied %d migrations from %s.", len(applied), cfg.MigrationsDir)

	// Initialize Repositories
	athleteRepo := idb.NewPostgresAthleteRepository(db)
	attendanceRepo := idb.NewPostgresAttendanceRepository(db)
	sessionRepo := idb.NewPostgresSessionRepository(db)
	meetRepo := idb.NewPostgresMeetRepository(db)
	backend := idb.NewBackend(db)

	// Open sheets live in Redis when configured, in memory otherwise
	var draftStore attendance.DraftStore
	if cfg.RedisURL != "" {
		client, err := drafts.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			mainLogger.Fatalf("Could not connect to Redis: %v", err)
		}
		redisStore := drafts.NewRedisStore(client)
		defer redisStore.Close()
		draftStore = redisStore
		mainLogger.Info("Attendance drafts stored in Redis.")
	} else {
		draftStore = drafts.NewMemoryStore()
		mainLogger.Warn("REDIS_URL not set, attendance drafts are kept in memory and lost on restart.")
	}

	// Initialize Telegram Bot
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) { // Global error handler
			entry := logger.Component("telebot").WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				entry = entry.WithFields(logrus.Fields{"sender_id": c.Sender().ID, "chat_id": c.Chat().ID})
			}
			entry.Error("Unhandled bot error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		mainLogger.Fatalf("Could not create Telegram bot: %v", err)
	}
	telegramClient := telegram.NewTelebotAdapter(bot)

	// Initialize Services
	attendanceService := app.NewAttendanceService(sessionRepo, backend, logger.Component("attendance"), cfg.FetchTimeout, cfg.SaveTimeout)
	sessionService := app.NewSessionService(sessionRepo, cfg, logger.Component("sessions"))
	athleteService := app.NewAthleteService(athleteRepo, cfg.AdminTelegramID, logger.Component("athletes"))
	statsService := app.NewStatsService(attendanceRepo, logger.Component("stats"))
	dashboardService := app.NewDashboardService(sessionRepo, meetRepo, cfg, logger.Component("dashboard"))
	reminderService := app.NewReminderServiceImpl(sessionRepo, telegramClient, cfg.Recipients(), logger.Component("reminders"))

	// Register Handlers
	handlerLogger := logger.Component("telegram")
	telegram.RegisterBotCommands(bot, cfg, handlerLogger)
	telegram.RegisterDashboardHandlers(ctx, bot, dashboardService, cfg, handlerLogger)
	telegram.RegisterSessionHandlers(ctx, bot, sessionService, cfg, handlerLogger)
	telegram.RegisterAttendanceHandlers(ctx, bot, attendanceService, draftStore, cfg, cfg.DraftTTL, handlerLogger)
	telegram.RegisterReportHandlers(ctx, bot, statsService, athleteService, cfg, handlerLogger)
	telegram.RegisterAdminHandlers(ctx, bot, athleteService, cfg.AdminTelegramID, handlerLogger)
	mainLogger.Info("Bot handlers registered.")

	reminderScheduler := scheduler.NewReminderScheduler(reminderService, logger.Component("scheduler"), cfg.CronSpecReminder)
	if err := reminderScheduler.Start(); err != nil {
		mainLogger.Fatalf("Could not start reminder scheduler: %v", err)
	}

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			mainLogger.Infof("Serving metrics on %s/metrics", cfg.MetricsAddr)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				mainLogger.WithError(err).Error("Metrics server failed")
			}
		}()
	}

	// Start bot in a goroutine so it doesn't block graceful shutdown handling
	go bot.Start()
	mainLogger.Info("Application setup complete. Bot and scheduler are running.")

	<-ctx.Done() // Block until a signal is received

	mainLogger.Info("Shutting down application...")
	bot.Stop()
	reminderScheduler.Stop()
	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			mainLogger.WithError(err).Warn("Metrics server did not shut down cleanly")
		}
	}
	mainLogger.Info("Application shut down gracefully.")
}
