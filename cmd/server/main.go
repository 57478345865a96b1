// Package main is the entry point for the SwiftPOS API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"swiftpos/internal/domain"
	"swiftpos/internal/domain/auth"
	"swiftpos/internal/domain/catalogs/category"
	"swiftpos/internal/domain/catalogs/customer"
	"swiftpos/internal/domain/catalogs/product"
	"swiftpos/internal/domain/catalogs/supplier"
	"swiftpos/internal/domain/catalogs/unit"
	"swiftpos/internal/domain/overhead"
	"swiftpos/internal/domain/pool"
	"swiftpos/internal/domain/reports"
	"swiftpos/internal/domain/sales"
	"swiftpos/internal/domain/stock"
	"swiftpos/internal/domain/writeoff"
	v1 "swiftpos/internal/infrastructure/http/v1"
	"swiftpos/internal/infrastructure/mailer"
	"swiftpos/internal/infrastructure/numerator"
	"swiftpos/internal/infrastructure/receipt"
	"swiftpos/internal/infrastructure/storage/postgres"
	"swiftpos/internal/infrastructure/storage/postgres/auth_repo"
	"swiftpos/internal/infrastructure/storage/postgres/catalog_repo"
	"swiftpos/internal/infrastructure/storage/postgres/overhead_repo"
	"swiftpos/internal/infrastructure/storage/postgres/pool_repo"
	"swiftpos/internal/infrastructure/storage/postgres/report_repo"
	"swiftpos/internal/infrastructure/storage/postgres/sales_repo"
	"swiftpos/internal/infrastructure/storage/postgres/stock_repo"
	"swiftpos/internal/infrastructure/storage/postgres/writeoff_repo"
	"swiftpos/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting swiftpos server")

	// --- Database ---
	dbPool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(mustEnv("DATABASE_URL")))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer dbPool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(dbPool)
	events := postgres.NewEventPublisher(txManager)

	// --- Repositories ---
	userRepo := auth_repo.NewUserRepo(txManager)
	productRepo := catalog_repo.NewProductRepo(txManager)
	categoryRepo := catalog_repo.NewCategoryRepo(txManager)
	unitRepo := catalog_repo.NewUnitRepo(txManager)
	customerRepo := catalog_repo.NewCustomerRepo(txManager)
	supplierRepo := catalog_repo.NewSupplierRepo(txManager)
	stockRepo := stock_repo.NewStockRepo(txManager)
	poolRepo := pool_repo.NewPoolRepo(txManager)
	salesRepo := sales_repo.NewSalesRepo(txManager)
	writeOffRepo := writeoff_repo.NewWriteOffRepo(txManager)
	overheadRepo := overhead_repo.NewOverheadRepo(txManager)
	reportRepo := report_repo.NewReportRepo(txManager)

	// --- Auth ---
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(mustEnv("JWT_SECRET")))

	var sender auth.ResetCodeSender
	if host := getEnv("SMTP_HOST", ""); host != "" {
		sender = mailer.NewSMTPSender(mailer.Config{
			Host:     host,
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "no-reply@swiftpos.local"),
		})
	} else {
		log.Warn("SMTP_HOST not set, reset codes will be logged instead of mailed")
		sender = &mailer.LogSender{}
	}

	authService := auth.NewService(userRepo, jwtService, sender, txManager, auth.DefaultServiceConfig())

	// --- Domain services ---
	stockService := stock.NewService(stockRepo, productRepo, writeOffRepo, txManager)
	supplierService := supplier.NewService(supplierRepo, txManager)
	productService := product.NewService(productRepo, unitRepo, stockService, supplierService, txManager)
	customerService := customer.NewService(customerRepo, txManager)

	categoryService := domain.NewCatalogService(domain.CatalogServiceConfig[*category.Category]{
		Repo:       categoryRepo,
		TxManager:  txManager,
		EntityName: "category",
	})
	unitService := domain.NewCatalogService(domain.CatalogServiceConfig[*unit.Unit]{
		Repo:       unitRepo,
		TxManager:  txManager,
		EntityName: "unit",
	})

	poolService := pool.NewService(poolRepo, productRepo, events, txManager)

	renderer := receipt.NewPDFRenderer(receipt.StoreInfo{
		Name:    getEnv("STORE_NAME", "SwiftPOS Store"),
		Address: getEnv("STORE_ADDRESS", ""),
		Phone:   getEnv("STORE_PHONE", ""),
	})
	files := receipt.NewDiskStore(
		getEnv("RECEIPT_DIR", "./data"),
		getEnv("PUBLIC_BASE_URL", "http://localhost:"+getEnv("APP_PORT", "8080")),
	)
	receiptNums := numerator.New(dbPool)

	salesService := sales.NewService(
		salesRepo,
		productRepo,
		poolRepo,
		poolService,
		stockService,
		customerRepo,
		renderer,
		files,
		events,
		receiptNums,
		txManager,
	)

	writeOffService := writeoff.NewService(writeOffRepo)
	overheadService := overhead.NewService(overheadRepo, txManager)
	reportsService := reports.NewService(reportRepo, overheadService)

	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:            dbPool,
		Logger:          log,
		Audit:           auditService,
		AuthService:     authService,
		ProductService:  productService,
		CategoryService: categoryService,
		UnitService:     unitService,
		CustomerService: customerService,
		SupplierService: supplierService,
		StockService:    stockService,
		PoolService:     poolService,
		SalesService:    salesService,
		WriteOffService: writeOffService,
		OverheadService: overheadService,
		ReportsService:  reportsService,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
