package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"biztime-service/internal/handler"
	"biztime-service/internal/middleware"
	"biztime-service/internal/model"
	"biztime-service/pkg/apperror"
	"biztime-service/pkg/config"
	"biztime-service/pkg/database"
	"biztime-service/pkg/logger"
	"biztime-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load("biztime-service")
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting biztime service...", cfg.LogConfig()...)

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized")

	// Open the database connection. The handle is owned here: opened
	// once at startup, closed once at shutdown.
	db, err := database.Open(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.Migrate(db,
		&model.Company{},
		&model.Industry{},
		&model.CompanyIndustry{},
		&model.Invoice{},
	); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}
	log.Info("Database connection established and migrations completed",
		zap.String("db_host", cfg.DB.Host),
		zap.String("db_name", cfg.DB.DBName))

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = apperror.HTTPErrorHandler(log)

	// Middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(middleware.MetricsMiddleware)

	// Request logging middleware
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			log := logger.FromContext(c)
			log.Info("HTTP Request",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", c.RealIP()),
			)

			return err
		}
	})

	// Handlers with the injected database handle
	companyHandler := handler.NewCompanyHandler(db)
	industryHandler := handler.NewIndustryHandler(db)
	invoiceHandler := handler.NewInvoiceHandler(db)

	// Routes
	e.GET("/", handler.HealthCheck)
	e.GET("/health", handler.HealthCheck)

	// Prometheus metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	companies := e.Group("/companies")
	companies.GET("", companyHandler.ListCompanies)
	companies.POST("", companyHandler.CreateCompany)
	companies.GET("/industries", industryHandler.ListIndustries)
	companies.POST("/industries", industryHandler.CreateIndustry)
	companies.POST("/industries/:industry_code/companies/:company_code", industryHandler.AssociateCompany)
	companies.GET("/:code", companyHandler.GetCompany)
	companies.PUT("/:code", companyHandler.UpdateCompany)
	companies.DELETE("/:code", companyHandler.DeleteCompany)

	invoices := e.Group("/invoices")
	invoices.GET("", invoiceHandler.ListInvoices)
	invoices.POST("", invoiceHandler.CreateInvoice)
	invoices.GET("/:id", invoiceHandler.GetInvoice)
	invoices.PUT("/:id", invoiceHandler.UpdateInvoice)
	invoices.DELETE("/:id", invoiceHandler.DeleteInvoice)

	// Start server
	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt, then drain in-flight requests and close the
	// database handle.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
	if err := database.Close(db); err != nil {
		log.Error("Failed to close database connection", zap.Error(err))
	}
	log.Info("Server stopped")
}
