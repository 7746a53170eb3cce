package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/quickskil/launchpad-portal/internal/auth"
	"github.com/quickskil/launchpad-portal/internal/billing"
	"github.com/quickskil/launchpad-portal/internal/catalog"
	"github.com/quickskil/launchpad-portal/internal/config"
	"github.com/quickskil/launchpad-portal/internal/notifications"
	"github.com/quickskil/launchpad-portal/internal/onboarding"
	"github.com/quickskil/launchpad-portal/pkg/mailer"
	"github.com/quickskil/launchpad-portal/pkg/payments"
	"github.com/quickskil/launchpad-portal/pkg/uploads"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.GetDatabaseURL()), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := db.AutoMigrate(
		&onboarding.Project{},
		&onboarding.OutboxEvent{},
		&billing.PaymentRequest{},
	); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	ctx := context.Background()
	launchCatalog := catalog.Default()
	processor := payments.New(cfg.Stripe.SecretKey, logger)
	mail := mailer.New(ctx, mailer.Config{
		Region:      cfg.Email.Region,
		FromAddress: cfg.Email.FromAddress,
	}, logger)
	assetStore := uploads.New(ctx, uploads.Config{
		Region: cfg.Uploads.Region,
		Bucket: cfg.Uploads.Bucket,
	}, logger)

	billingRepo := billing.NewRepository(db)
	billingService := billing.NewService(billingRepo, processor, mail, logger)
	billingHandler := billing.NewHandler(billingService, logger)

	onboardingRepo := onboarding.NewRepository(db)
	onboardingService := onboarding.NewService(onboardingRepo, launchCatalog, assetStore, billingService, logger)
	onboardingHandler := onboarding.NewHandler(onboardingService, logger)

	authHandler := auth.NewHandler(
		[]byte(cfg.Security.JWTSecret),
		cfg.Security.StaffEmail,
		cfg.Security.StaffPasswordHash,
		logger,
	)

	hub := notifications.NewHub(logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(auth.Middleware([]byte(cfg.Security.JWTSecret)))

	api := router.Group("/api/v1")
	{
		authHandler.RegisterRoutes(api)
		onboardingHandler.RegisterRoutes(api)
		billingHandler.RegisterRoutes(api)
		api.GET("/events/ws", auth.RequireRole(auth.RoleStaff), hub.ServeWS)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	drainCron := startOutboxDrain(cfg, onboardingRepo, hub, logger)

	srv := &http.Server{
		Addr:    cfg.Server.GetServerAddr(),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.Int("port", cfg.Server.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	if drainCron != nil {
		drainCron.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}

// startOutboxDrain schedules the workflow-event drain: every run pulls
// pending outbox events, broadcasts them to staff dashboards, optionally
// POSTs them to the automation webhook, and acks what was delivered.
func startOutboxDrain(cfg *config.Config, repo onboarding.Repository, hub *notifications.Hub, logger *zap.Logger) *cron.Cron {
	if cfg.Outbox.DrainSchedule == "" {
		logger.Warn("outbox drain disabled by config")
		return nil
	}

	dispatchers := []onboarding.Dispatch{
		func(ctx context.Context, ev onboarding.OutboxEvent) error {
			hub.Broadcast(notifications.Event{
				ProjectID: ev.ProjectID.String(),
				Tag:       ev.Tag,
				At:        ev.CreatedAt,
			})
			return nil
		},
	}
	if cfg.Outbox.WebhookURL != "" {
		dispatchers = append(dispatchers, webhookDispatch(cfg.Outbox.WebhookURL))
	}

	drainer := onboarding.NewDrainer(repo, logger, dispatchers...)

	c := cron.New()
	_, err := c.AddFunc(cfg.Outbox.DrainSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if n, err := drainer.DrainOnce(ctx); err != nil {
			logger.Error("outbox drain failed", zap.Error(err))
		} else if n > 0 {
			logger.Info("outbox drained", zap.Int("events", n))
		}
	})
	if err != nil {
		logger.Fatal("invalid outbox drain schedule", zap.Error(err))
	}
	c.Start()
	return c
}

func webhookDispatch(url string) onboarding.Dispatch {
	client := &http.Client{Timeout: 10 * time.Second}
	return func(ctx context.Context, ev onboarding.OutboxEvent) error {
		payload, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			return fmt.Errorf("webhook returned %d", resp.StatusCode)
		}
		return nil
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept, Origin, Cache-Control")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
