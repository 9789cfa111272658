package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/compras-api/internal/application/inventory"
	"github.com/jhoicas/compras-api/internal/application/purchase"
	"github.com/jhoicas/compras-api/internal/domain/repository"
	infracache "github.com/jhoicas/compras-api/internal/infrastructure/cache"
	infrapdf "github.com/jhoicas/compras-api/internal/infrastructure/pdf"
	"github.com/jhoicas/compras-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/compras-api/internal/interfaces/http"
	"github.com/jhoicas/compras-api/pkg/config"
	"github.com/jhoicas/compras-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("numeracion", cfg.Purchase.Numbering).
		Str("aislamiento", cfg.Purchase.TxIsolation).
		Msg("iniciando aplicación")

	ctx := context.Background()

	if cfg.DB.MigrateOnStart {
		migrateDB(cfg.DB, log)
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	var catalog repository.CatalogRepository = postgres.NewCatalogRepository(pool)
	if cfg.Cache.Enabled() {
		client, err := infracache.NewRedisClient(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err != nil {
			// Sin Redis el servicio sigue leyendo nombres de la base.
			log.Warn().Err(err).Str("addr", cfg.Cache.RedisAddr).Msg("caché de catálogos deshabilitada")
		} else {
			defer client.Close()
			catalog = infracache.NewCatalogCache(catalog, infracache.NewRedisNameStore(client), cfg.Cache.TTL, log)
			log.Info().Str("addr", cfg.Cache.RedisAddr).Dur("ttl", cfg.Cache.TTL).Msg("caché de catálogos en Redis")
		}
	}

	var sequence repository.DocumentSequence = postgres.NewCounterSequence(pool)
	if cfg.Purchase.Numbering == config.NumberingLegacy {
		sequence = postgres.NewLegacySequence(pool)
	}

	txRunner := postgres.NewTxRunner(pool, postgres.IsolationLevel(cfg.Purchase.TxIsolation), log)
	purchaseRepo := postgres.NewPurchaseRepository(pool)
	ledger := inventory.NewStockLedger(postgres.NewStockRepository(pool), catalog, log)

	purchaseUC := purchase.NewUseCase(
		txRunner,
		purchaseRepo,
		catalog,
		postgres.NewInvoiceLineRepository(pool),
		ledger,
		purchase.NewNumberer(cfg.Purchase.DocPrefix, sequence),
		purchase.NewLotIDs(),
		log,
	)
	queries := purchase.NewQueryService(purchaseRepo, catalog, log)
	receipts := purchase.NewReceiptService(queries, infrapdf.NewReceiptGenerator())

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "Compras API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Purchases: httpRouter.NewPurchaseHandler(purchaseUC, queries, receipts, log),
		Stock:     httpRouter.NewStockHandler(ledger, log),
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func migrateDB(cfg config.DBConfig, log *logger.Logger) {
	m, err := postgres.NewMigrator(cfg.ConnectionString(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn().Err(err).Msg("cerrar migrador")
		}
	}()
	if err := m.Up(); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
}
