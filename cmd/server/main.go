// Package main runs the invoicing API server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/illustrious-cloud/backend/config"
	"github.com/illustrious-cloud/backend/internal/auth"
	"github.com/illustrious-cloud/backend/internal/invoices"
	"github.com/illustrious-cloud/backend/internal/middleware"
	"github.com/illustrious-cloud/backend/internal/orgs"
	"github.com/illustrious-cloud/backend/internal/permissions"
	"github.com/illustrious-cloud/backend/internal/reports"
	"github.com/illustrious-cloud/backend/internal/users"
	"github.com/illustrious-cloud/backend/pkg/database"
	"github.com/illustrious-cloud/backend/pkg/redis"
	"github.com/illustrious-cloud/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	denylist := auth.NewRedisDenylist(rdb.Client)
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours, denylist)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Permission derivation
	deriver := permissions.NewDeriver(permissions.NewPgStore(pool))

	// Resource modules
	orgHandler := orgs.NewHandler(orgs.NewRepository(pool))
	invoiceHandler := invoices.NewHandler(invoices.NewRepository(pool))
	reportHandler := reports.NewHandler(reports.NewRepository(pool))
	userHandler := users.NewHandler(users.NewRepository(pool))

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, "ok", nil) })

	// Auth (public except signout)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/signout", authHandler.Signout)
	}

	// Permission snapshots are derived once per request by kind-specific
	// middleware; handlers only compare the assembled snapshot.
	userArea := permissions.Require(jwtService, deriver, permissions.KindUser)
	orgArea := permissions.Require(jwtService, deriver, permissions.KindOrg)
	invoiceArea := permissions.Require(jwtService, deriver, permissions.KindInvoice)
	reportArea := permissions.Require(jwtService, deriver, permissions.KindReport)

	// Users
	router.GET("/me", userArea, userHandler.Me)
	router.GET("/user/:user", userArea, userHandler.Fetch)
	router.PUT("/user/:user", userArea, userHandler.Update)
	router.DELETE("/user/:user", userArea, userHandler.Delete)

	// Organizations
	router.POST("/org", orgArea, orgHandler.Create)
	router.GET("/org/:org", orgArea, orgHandler.FetchOne)
	router.GET("/org/:org/res/:resource", orgArea, orgHandler.FetchResources)
	router.PUT("/org/:org", orgArea, orgHandler.Update)
	router.DELETE("/org/:org", orgArea, orgHandler.Delete)

	// Invoices
	router.POST("/invoice", invoiceArea, invoiceHandler.Create)
	router.GET("/invoice/:invoice", invoiceArea, invoiceHandler.FetchOne)
	router.PUT("/invoice", invoiceArea, invoiceHandler.Update)
	router.DELETE("/invoice/:invoice", invoiceArea, invoiceHandler.Delete)

	// Reports
	router.POST("/report", reportArea, reportHandler.Create)
	router.GET("/report/:report", reportArea, reportHandler.FetchOne)
	router.PUT("/report", reportArea, reportHandler.Update)
	router.DELETE("/report/:report", reportArea, reportHandler.Delete)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
