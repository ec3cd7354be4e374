package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vhvplatform/go-crm-automation-service/internal/consumer"
	"github.com/vhvplatform/go-crm-automation-service/internal/datasource"
	"github.com/vhvplatform/go-crm-automation-service/internal/dlq"
	"github.com/vhvplatform/go-crm-automation-service/internal/handler"
	"github.com/vhvplatform/go-crm-automation-service/internal/middleware"
	"github.com/vhvplatform/go-crm-automation-service/internal/repository"
	"github.com/vhvplatform/go-crm-automation-service/internal/scheduler"
	"github.com/vhvplatform/go-crm-automation-service/internal/service"
	"github.com/vhvplatform/go-crm-automation-service/internal/shared/config"
	"github.com/vhvplatform/go-crm-automation-service/internal/shared/logger"
	"github.com/vhvplatform/go-crm-automation-service/internal/shared/mongodb"
	"github.com/vhvplatform/go-crm-automation-service/internal/shared/rabbitmq"
	"github.com/vhvplatform/go-crm-automation-service/internal/smtp"
	"github.com/vhvplatform/go-crm-automation-service/internal/webhook"
)

func main() {
	// Initialize logger
	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting CRM Automation Service...")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration", "error", err)
	}

	// Initialize MongoDB
	mongoClient, err := mongodb.NewMongoClient(cfg.MongoDB.URI, cfg.MongoDB.Database)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}
	defer mongoClient.Disconnect(context.Background())

	// Initialize repositories
	configRepo := repository.NewConfigRepository(mongoClient)
	suppressionRepo := repository.NewSuppressionRepository(mongoClient)
	reminderRepo := repository.NewReminderRepository(mongoClient)
	dispatchRepo := repository.NewDispatchRepository(mongoClient)
	templateRepo := repository.NewTemplateRepository(mongoClient)
	preferencesRepo := repository.NewPreferencesRepository(mongoClient)
	bounceRepo := repository.NewBounceRepository(mongoClient)
	outboxRepo := repository.NewOutboxRepository(mongoClient)
	failedDispatchRepo := repository.NewFailedDispatchRepository(mongoClient)
	crmRepo := repository.NewCRMRepository(mongoClient)

	ensureIndexes(log,
		configRepo, suppressionRepo, reminderRepo, dispatchRepo,
		templateRepo, preferencesRepo, bounceRepo, outboxRepo, failedDispatchRepo)

	// CRM data source: fixtures in demo mode, live collections otherwise
	var source datasource.Source
	if cfg.DemoMode {
		log.Info("Demo mode enabled, using fixture CRM data")
		source = datasource.NewFixtureSource(time.Now())
	} else {
		source = datasource.NewMongoSource(crmRepo)
	}

	// Initialize delivery channels
	smtpPool := smtp.NewPool(smtp.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		UseTLS:   cfg.SMTP.Port == 465,
	}, cfg.SMTP.PoolSize)
	defer smtpPool.Close()

	bounceChecker := service.NewBounceChecker(bounceRepo)
	emailService := service.NewEmailService(cfg.SMTP, smtpPool, templateRepo, bounceChecker, log)
	whatsappService := service.NewWhatsAppService(cfg.WhatsApp, log)
	if !whatsappService.Configured() {
		log.Warn("WhatsApp credentials not configured, channel disabled")
	}

	// Initialize services
	deadLetterQueue := dlq.NewDeadLetterQueue(failedDispatchRepo, log)
	dispatcher := service.NewDispatcher(
		cfg.Scheduler.DispatchWorkers,
		dispatchRepo, reminderRepo, preferencesRepo,
		emailService, whatsappService, deadLetterQueue, log)
	dispatcher.Start()
	defer dispatcher.Stop()

	alertService := service.NewAlertService(source, configRepo, suppressionRepo, outboxRepo, log)
	reminderService := service.NewReminderService(reminderRepo, crmRepo, outboxRepo, log)

	// Initialize scheduler
	sched := scheduler.NewScheduler(reminderRepo, outboxRepo, dispatcher, alertService, cfg.Scheduler.SweepInterval, log)
	if err := sched.Start(); err != nil {
		log.Error("Failed to start scheduler", "error", err)
	}
	defer sched.Stop()

	// Initialize RabbitMQ consumer; the service still runs without a broker,
	// alerts just refresh on the cron cadence instead of CRM events
	stopConsumer := make(chan struct{})
	rabbitMQClient, err := rabbitmq.NewRabbitMQClient(cfg.RabbitMQ.URL)
	if err != nil {
		log.Warn("RabbitMQ unavailable, CRM event consumption disabled", "error", err)
	} else {
		defer rabbitMQClient.Close()
		eventConsumer := consumer.NewEventConsumer(rabbitMQClient, alertService, log)
		go eventConsumer.StartWithRetry(stopConsumer)
	}

	// Initialize HTTP handlers
	alertHandler := handler.NewAlertHandler(alertService, log)
	reminderHandler := handler.NewReminderHandler(reminderService, log)
	feedHandler := handler.NewFeedHandler(dispatchRepo, log)
	preferencesHandler := handler.NewPreferencesHandler(preferencesRepo, log)
	templateHandler := handler.NewTemplateHandler(templateRepo, log)
	dlqHandler := handler.NewDLQHandler(deadLetterQueue, dispatcher, log)
	statsHandler := handler.NewStatsHandler(alertService, dispatchRepo, log)
	bounceHandler := webhook.NewBounceHandler(bounceRepo, log)

	// Initialize rate limiter
	rateLimiter := middleware.NewUserRateLimiter(cfg.RateLimit.PerUser, cfg.RateLimit.Burst)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	// Health check endpoints
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := mongoClient.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	// Metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes with identity and rate limiting
	v1 := router.Group("/api/v1")
	v1.Use(middleware.RateLimitMiddleware(rateLimiter))
	v1.Use(middleware.ActorMiddleware())
	{
		// Automation alerts
		alerts := v1.Group("/alerts")
		{
			alerts.GET("", alertHandler.ListAlerts)
			alerts.GET("/stats", alertHandler.GetAlertStats)
			alerts.POST("/refresh", alertHandler.RefreshAlerts)
			alerts.POST("/:id/dismiss", alertHandler.DismissAlert)
			alerts.POST("/:id/snooze", alertHandler.SnoozeAlert)
		}

		// Threshold configs
		configs := v1.Group("/configs")
		{
			configs.GET("", alertHandler.ListConfigs)
			configs.GET("/:type", alertHandler.GetConfig)
			configs.PUT("/:type", alertHandler.UpsertConfig)
		}

		// Reminders
		reminders := v1.Group("/reminders")
		{
			reminders.POST("", reminderHandler.CreateReminder)
			reminders.GET("", reminderHandler.ListReminders)
			reminders.GET("/upcoming", reminderHandler.UpcomingReminders)
			reminders.GET("/:id", reminderHandler.GetReminder)
			reminders.PUT("/:id", reminderHandler.UpdateReminder)
			reminders.PATCH("/:id", reminderHandler.UpdateReminder)
			reminders.POST("/:id/snooze", reminderHandler.SnoozeReminder)
			reminders.POST("/:id/complete", reminderHandler.CompleteReminder)
			reminders.POST("/:id/dismiss", reminderHandler.DismissReminder)
			reminders.DELETE("/:id", reminderHandler.ArchiveReminder)
		}

		// Notification feed (dispatch log)
		notifications := v1.Group("/notifications")
		{
			notifications.GET("", feedHandler.ListNotifications)
			notifications.GET("/stats", feedHandler.GetDispatchStats)
			notifications.POST("/:id/read", feedHandler.MarkNotificationRead)
			notifications.DELETE("/:id", feedHandler.DeleteNotification)
		}

		// Preferences
		preferences := v1.Group("/preferences")
		{
			preferences.GET("", preferencesHandler.GetPreferences)
			preferences.PUT("", preferencesHandler.UpdatePreferences)
			preferences.GET("/:user_id", preferencesHandler.GetPreferences)
			preferences.PUT("/:user_id", preferencesHandler.UpdatePreferences)
		}

		// Message templates
		templates := v1.Group("/templates")
		{
			templates.GET("", templateHandler.ListTemplates)
			templates.GET("/:name", templateHandler.GetTemplate)
			templates.POST("", templateHandler.CreateTemplate)
			templates.PUT("/:id", templateHandler.UpdateTemplate)
			templates.DELETE("/:id", templateHandler.DeleteTemplate)
		}

		// Dashboard summary
		v1.GET("/stats", statsHandler.GetStats)

		// Dead Letter Queue
		dlqRoutes := v1.Group("/dlq")
		{
			dlqRoutes.GET("", dlqHandler.GetFailedDispatches)
			dlqRoutes.POST("/:id/retry", dlqHandler.RetryDispatch)
		}
	}

	// Webhooks (no rate limiting for external providers)
	webhooks := router.Group("/webhooks")
	{
		webhooks.POST("/ses", bounceHandler.HandleSESWebhook)
		webhooks.POST("/sendgrid", bounceHandler.HandleSendGridWebhook)
	}

	// Start HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Info("CRM Automation Service started", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down CRM Automation Service...")
	close(stopConsumer)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("CRM Automation Service stopped")
}

// indexEnsurer is implemented by every repository that maintains indexes
type indexEnsurer interface {
	EnsureIndexes(ctx context.Context) error
}

func ensureIndexes(log *logger.Logger, repos ...indexEnsurer) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, repo := range repos {
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Error("Failed to ensure indexes", "error", err, "repository", fmt.Sprintf("%T", repo))
		}
	}
}
