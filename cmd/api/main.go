package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/retail-backoffice-api/internal/application/alerts"
	"github.com/jhoicas/retail-backoffice-api/internal/application/credits"
	"github.com/jhoicas/retail-backoffice-api/internal/application/inventory"
	"github.com/jhoicas/retail-backoffice-api/internal/application/notifications"
	"github.com/jhoicas/retail-backoffice-api/internal/application/ports"
	"github.com/jhoicas/retail-backoffice-api/internal/application/purchasing"
	"github.com/jhoicas/retail-backoffice-api/internal/application/sales"
	infraai "github.com/jhoicas/retail-backoffice-api/internal/infrastructure/ai"
	"github.com/jhoicas/retail-backoffice-api/internal/infrastructure/cache"
	"github.com/jhoicas/retail-backoffice-api/internal/infrastructure/jobs"
	infrapdf "github.com/jhoicas/retail-backoffice-api/internal/infrastructure/pdf"
	"github.com/jhoicas/retail-backoffice-api/internal/infrastructure/postgres"
	"github.com/jhoicas/retail-backoffice-api/internal/infrastructure/whatsapp"
	httpRouter "github.com/jhoicas/retail-backoffice-api/internal/interfaces/http"
	"github.com/jhoicas/retail-backoffice-api/internal/observability"
	"github.com/jhoicas/retail-backoffice-api/pkg/config"
	"github.com/jhoicas/retail-backoffice-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: "api",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	metrics := observability.NewMetrics(nil)
	clock := ports.SystemClock{}
	txRunner := postgres.NewTxRunner(pool)
	repos := postgres.NewSet(pool)
	mutator := inventory.NewStockMutator(clock)

	// Redis es opcional: sin él no hay idempotencia y las notificaciones se envían en línea.
	var (
		idem  *cache.IdempotencyStore
		queue ports.NotificationQueue
	)
	if cfg.Redis.Enabled() {
		rdb, err := cache.New(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		idem = cache.NewIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL)

		jobClient := jobs.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer jobClient.Close()
		queue = jobClient
	} else {
		log.Warn().Msg("REDIS_ADDR vacío: sin Idempotency-Key ni cola de notificaciones")
	}

	sender := whatsapp.NewMetaSender(cfg.WhatsApp.Token, cfg.WhatsApp.PhoneNumberID, cfg.WhatsApp.APIVersion)
	drafter := infraai.NewDrafter(cfg.AI)
	if drafter == nil {
		log.Info().Msg("sin proveedor de IA: los recordatorios usan la plantilla")
	}

	purchaseUC := purchasing.NewUseCase(txRunner, repos, mutator, clock, metrics)
	saleUC := sales.NewUseCase(txRunner, repos, mutator, clock, metrics).
		WithReceipts(infrapdf.NewReceiptGenerator())
	inventoryUC := inventory.NewUseCase(txRunner, repos, mutator, clock, metrics)
	replenishmentUC := inventory.NewReplenishmentUseCase(repos.Stock)
	creditUC := credits.NewUseCase(repos.Sales, repos.Purchases, clock)
	notificationUC := notifications.NewUseCase(
		repos, sender, drafter, queue, clock, metrics,
		log.Component("notificaciones"),
		notifications.Options{Currency: cfg.WhatsApp.Currency, Locale: cfg.WhatsApp.Locale},
	)
	alertUC := alerts.NewUseCase(txRunner, repos, clock, log.Component("alertas"))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http"), metrics))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Retail Backoffice API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		pingCtx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "db": "down"})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		PurchaseUC:      purchaseUC,
		SaleUC:          saleUC,
		InventoryUC:     inventoryUC,
		ReplenishmentUC: replenishmentUC,
		CreditUC:        creditUC,
		NotificationUC:  notificationUC,
		AlertUC:         alertUC,
		Idempotency:     idem,
		JWTSecret:       cfg.JWT.Secret,
		JWTIssuer:       cfg.JWT.Issuer,
		Log:             log.Component("http"),
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
