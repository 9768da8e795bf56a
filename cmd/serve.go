package cmd

import (
	"context"
	"errors"
	"time"

	"go-inventory-stock/internal/catalog"
	"go-inventory-stock/internal/entry"
	"go-inventory-stock/internal/handler"
	"go-inventory-stock/internal/middleware"
	"go-inventory-stock/internal/model"
	"go-inventory-stock/internal/repository"
	"go-inventory-stock/internal/service"
	"go-inventory-stock/internal/telemetry"
	"go-inventory-stock/internal/variant"
	"go-inventory-stock/internal/viewstate"
	"go-inventory-stock/internal/ws"
	"go-inventory-stock/pkg/database"
	"go-inventory-stock/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func serve(ctx context.Context) error {
	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	tp, shutdownTracer, err := telemetry.InitTracer(ctx, cfg.OTLPEndpoint, cfg.ServiceName)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(sctx); err != nil {
			log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	jwt.SetSecret(cfg.JWTSecret)
	if cfg.UsesDefaultSecret() {
		log.Warn("JWT_SECRET not set, using the built-in development secret")
	}

	// Auto Migrate (Hati-hati di production, sebaiknya pakai tools migrasi terpisah)
	if err := migrate(db); err != nil {
		return err
	}
	seed(ctx, db, log)

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	// WebSocket Hub
	wsHub := ws.NewHub(log)
	go wsHub.Run(runCtx)

	// Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	stockRepo := repository.NewStockRepo(db)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	viewStateRepo := repository.NewViewStateRepo(db)

	cache := catalog.New(productRepo, database.NewSessionRefresher(db, log), log, catalog.Options{
		PageSize:             cfg.CachePageSize,
		TTL:                  cfg.CacheTTL,
		InvalidationInterval: cfg.InvalidationInterval,
	})
	events, unsubscribe := wsHub.Subscribe(256)
	defer unsubscribe()
	go cache.Watch(runCtx, events)

	stockService := service.NewStockService(stockRepo, cache, wsHub, tp.Tracer("go-inventory-stock/stock"), log)
	invService := service.NewInventoryService(productRepo, txRepo, stockRepo, cache, wsHub, log)
	dashService := service.NewDashboardService(txRepo)
	authService := service.NewAuthService(userRepo, log)
	reconcileService := service.NewReconcileService(productRepo, txRepo, log)
	sheetService := service.NewSpreadsheetService(productRepo, invService, log)
	flow := entry.NewFlow(cache, productRepo, variant.NewResolver(productRepo), stockService, log)

	invHandler := handler.NewInventoryHandler(invService)
	stockHandler := handler.NewStockHandler(flow)
	dashHandler := handler.NewDashboardHandler(dashService)
	authHandler := handler.NewAuthHandler(authService)
	roleHandler := handler.NewRoleHandler(roleRepo, privilegeRepo)
	reportHandler := handler.NewReportHandler(reconcileService)
	sheetHandler := handler.NewSpreadsheetHandler(sheetService)
	viewHandler := handler.NewViewStateHandler(viewstate.NewService(viewStateRepo, log), cache)
	wsHandler := handler.NewWSHandler(wsHub)

	app := fiber.New(fiber.Config{
		AppName:   "Inventory Stock v1.0",
		BodyLimit: 10 * 1024 * 1024,
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/heartbeat", middleware.RequireAuth(userRepo), authHandler.Heartbeat)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))
	can := middleware.RequirePrivilege

	protected.Get("/dashboard/stats", can(model.PrivDashboardView), dashHandler.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", can(model.PrivDashboardView), dashHandler.GetStockMovement)

	// Product Routes
	protected.Get("/products", can(model.PrivProductView), invHandler.GetProducts)
	protected.Get("/products/rows", can(model.PrivProductView), viewHandler.Products)
	protected.Get("/products/search", can(model.PrivProductView), stockHandler.Search)
	protected.Get("/products/scan/:sku", can(model.PrivProductView), stockHandler.Scan)
	protected.Get("/products/:id/resolve", can(model.PrivProductView), stockHandler.Resolve)
	protected.Get("/products/:id", can(model.PrivProductView), invHandler.GetProduct)
	protected.Post("/products", can(model.PrivProductCreate), invHandler.CreateProduct)
	protected.Put("/products/:id", can(model.PrivProductUpdate), invHandler.UpdateProduct)
	protected.Delete("/products/:id", can(model.PrivProductDelete), invHandler.DeleteProduct)

	// Stock movements
	protected.Post("/stock/adjustments", can(model.PrivTransactionCreate), stockHandler.Adjust)
	protected.Get("/transactions", middleware.RequireAnyPrivilege(model.PrivTransactionView, model.PrivReportView), invHandler.GetTransactions)
	protected.Get("/transactions/:id", can(model.PrivTransactionView), invHandler.GetTransaction)

	protected.Get("/reports/reconciliation", can(model.PrivReportView), reportHandler.Reconciliation)
	protected.Get("/export/products.xlsx", can(model.PrivExportRun), sheetHandler.ExportProducts)
	protected.Post("/import/products", can(model.PrivImportRun), sheetHandler.ImportProducts)

	protected.Get("/view-state/:view", viewHandler.Get)
	protected.Put("/view-state/:view", viewHandler.Put)

	protected.Get("/roles", roleHandler.GetRoles)
	protected.Get("/privileges", roleHandler.GetPrivileges)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "ws_clients": wsHub.ClientCount()})
	})

	// WebSocket Route
	app.Use("/ws", wsHandler.Upgrade)
	app.Get("/ws", wsHandler.Serve())

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("port", cfg.Port))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	log.Info("server exited")
	return nil
}
