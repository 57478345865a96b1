// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

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
	"swiftpos/internal/infrastructure/http/v1/handlers"
	"swiftpos/internal/infrastructure/http/v1/middleware"
	"swiftpos/internal/infrastructure/storage/postgres"
	"swiftpos/pkg/logger"
)

// RouterConfig holds everything the HTTP layer depends on.
type RouterConfig struct {
	Pool   *postgres.Pool
	Logger *logger.Logger
	Audit  *postgres.AuditService

	AuthService     *auth.Service
	ProductService  *product.Service
	CategoryService *domain.CatalogService[*category.Category]
	UnitService     *domain.CatalogService[*unit.Unit]
	CustomerService *customer.Service
	SupplierService *supplier.Service
	StockService    *stock.Service
	PoolService     *pool.Service
	SalesService    *sales.Service
	WriteOffService *writeoff.Service
	OverheadService *overhead.Service
	ReportsService  *reports.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler()

	authHandler := handlers.NewAuthHandler(base, cfg.AuthService)
	productHandler := handlers.NewProductHandler(base, cfg.ProductService)
	categoryHandler := handlers.NewCategoryHandler(base, cfg.CategoryService)
	unitHandler := handlers.NewUnitHandler(base, cfg.UnitService)
	customerHandler := handlers.NewCustomerHandler(base, cfg.CustomerService)
	supplierHandler := handlers.NewSupplierHandler(base, cfg.SupplierService)
	stockHandler := handlers.NewStockHandler(base, cfg.StockService)
	poolHandler := handlers.NewPoolHandler(base, cfg.PoolService)
	salesHandler := handlers.NewSalesHandler(base, cfg.SalesService)
	writeOffHandler := handlers.NewWriteOffHandler(base, cfg.WriteOffService)
	overheadHandler := handlers.NewOverheadHandler(base, cfg.OverheadService)
	reportsHandler := handlers.NewReportsHandler(base, cfg.ReportsService)
	auditHandler := handlers.NewAuditHandler(base, cfg.Audit)

	apiV1 := router.Group("/api/v1")
	{
		// Public auth routes
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/password/forgot", authHandler.SendResetCode)
			authGroup.POST("/password/verify-code", authHandler.VerifyResetCode)
			authGroup.POST("/password/reset", authHandler.ResetPassword)
		}

		protected := apiV1.Group("")
		protected.Use(middleware.Auth(cfg.AuthService))

		// Account routes for any signed-in user
		me := protected.Group("/auth")
		{
			me.GET("/me", authHandler.Me)
			me.POST("/password/confirm", authHandler.ConfirmPassword)
			me.POST("/password/change", authHandler.ChangePassword)
		}

		// User administration is manager territory
		users := protected.Group("/auth/users")
		users.Use(middleware.RequireRole(string(auth.RoleManager)))
		{
			users.GET("", authHandler.ListUsers)
			users.POST("/:id/approve", authHandler.Approve)
		}

		inventoryRoles := middleware.RequireRole(string(auth.RoleInventory), string(auth.RoleManager))
		cashierRoles := middleware.RequireRole(string(auth.RoleCashier), string(auth.RoleManager))
		analystRoles := middleware.RequireRole(string(auth.RoleAnalyst), string(auth.RoleManager))
		managerOnly := middleware.RequireRole(string(auth.RoleManager))

		products := protected.Group("/products")
		{
			// The cashier screen reads the catalog
			products.GET("", productHandler.List)
			products.GET("/low-stock", inventoryRoles, productHandler.LowStock)
			products.GET("/code/:code", productHandler.GetByCode)
			products.GET("/:id", productHandler.Get)

			products.POST("", inventoryRoles, productHandler.Intake)
			products.PUT("/:id", inventoryRoles, productHandler.Update)
			products.DELETE("/:id", inventoryRoles, productHandler.Delete)
		}

		categories := protected.Group("/categories", inventoryRoles)
		{
			categories.GET("", categoryHandler.List)
			categories.GET("/:id", categoryHandler.Get)
			categories.POST("", categoryHandler.Create)
			categories.PUT("/:id", categoryHandler.Update)
			categories.DELETE("/:id", categoryHandler.Delete)
		}

		units := protected.Group("/units", inventoryRoles)
		{
			units.GET("", unitHandler.List)
			units.GET("/:id", unitHandler.Get)
			units.POST("", unitHandler.Create)
			units.PUT("/:id", unitHandler.Update)
			units.DELETE("/:id", unitHandler.Delete)
		}

		customers := protected.Group("/customers")
		{
			// Cashiers attach customers to sales
			customers.GET("", customerHandler.List)
			customers.GET("/:id", customerHandler.Get)
			customers.POST("", customerHandler.Create)
			customers.PUT("/:id", customerHandler.Update)
			customers.DELETE("/:id", managerOnly, customerHandler.Delete)
		}

		suppliers := protected.Group("/suppliers", inventoryRoles)
		{
			suppliers.GET("", supplierHandler.List)
			suppliers.GET("/:id", supplierHandler.Get)
			suppliers.GET("/:id/supplies", supplierHandler.ListSupplies)
			suppliers.POST("", supplierHandler.Create)
			suppliers.POST("/:id/supplies", supplierHandler.RecordSupply)
			suppliers.PUT("/:id", supplierHandler.Update)
			suppliers.DELETE("/:id", supplierHandler.Delete)
		}

		stockGroup := protected.Group("/stock", inventoryRoles)
		{
			stockGroup.POST("/adjust", stockHandler.Adjust)
			stockGroup.GET("/history", stockHandler.ListHistory)
			stockGroup.GET("/batches", stockHandler.ListBatches)
			stockGroup.GET("/batches/:id", stockHandler.GetBatch)
			stockGroup.POST("/batches", stockHandler.CreateBatch)
			stockGroup.PUT("/batches/:id", stockHandler.UpdateBatch)
			stockGroup.DELETE("/batches/:id", stockHandler.DeleteBatch)
		}

		pools := protected.Group("/pools")
		{
			pools.GET("/:kind", poolHandler.List)
			pools.GET("/:kind/:id", poolHandler.Get)
			pools.POST("/:kind", inventoryRoles, poolHandler.Slash)
			pools.POST("/:kind/:id/approve", managerOnly, poolHandler.Approve)
		}

		salesGroup := protected.Group("/sales", cashierRoles)
		{
			salesGroup.POST("/preview", salesHandler.Preview)
			salesGroup.POST("", salesHandler.Commit)
			salesGroup.GET("", salesHandler.List)
			salesGroup.GET("/summary", salesHandler.CashierSummary)
			salesGroup.GET("/receipts/today", salesHandler.TodaysReceipts)
			salesGroup.GET("/:id", salesHandler.Get)
		}

		writeOffs := protected.Group("/write-offs", inventoryRoles)
		{
			writeOffs.GET("", writeOffHandler.List)
			writeOffs.GET("/:id", writeOffHandler.Get)
		}

		overheads := protected.Group("/overheads", managerOnly)
		{
			overheads.GET("", overheadHandler.List)
			overheads.GET("/totals", overheadHandler.Totals)
			overheads.GET("/:id", overheadHandler.Get)
			overheads.POST("", overheadHandler.Create)
			overheads.PUT("/:id", overheadHandler.Update)
		}

		reportsGroup := protected.Group("/reports", analystRoles)
		{
			reportsGroup.GET("/dashboard", reportsHandler.Dashboard)
			reportsGroup.GET("/inventory", reportsHandler.Inventory)
		}

		audit := protected.Group("/audit", managerOnly)
		{
			audit.GET("/:entityType/:id", auditHandler.History)
		}
	}

	return router
}
