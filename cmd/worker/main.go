package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/retail-backoffice-api/internal/application/alerts"
	"github.com/jhoicas/retail-backoffice-api/internal/application/notifications"
	"github.com/jhoicas/retail-backoffice-api/internal/application/ports"
	infraai "github.com/jhoicas/retail-backoffice-api/internal/infrastructure/ai"
	"github.com/jhoicas/retail-backoffice-api/internal/infrastructure/jobs"
	"github.com/jhoicas/retail-backoffice-api/internal/infrastructure/postgres"
	"github.com/jhoicas/retail-backoffice-api/internal/infrastructure/whatsapp"
	"github.com/jhoicas/retail-backoffice-api/internal/observability"
	"github.com/jhoicas/retail-backoffice-api/pkg/config"
	"github.com/jhoicas/retail-backoffice-api/pkg/logger"
)

// Worker de tareas asíncronas: entrega de WhatsApp y escaneo periódico de alertas.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: "worker",
	})
	if !cfg.Redis.Enabled() {
		log.Fatal().Msg("REDIS_ADDR es requerido para el worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	metrics := observability.NewMetrics(nil)
	clock := ports.SystemClock{}
	repos := postgres.NewSet(pool)

	sender := whatsapp.NewMetaSender(cfg.WhatsApp.Token, cfg.WhatsApp.PhoneNumberID, cfg.WhatsApp.APIVersion)
	// Sin cola: el worker entrega en línea lo que recibe.
	notificationUC := notifications.NewUseCase(
		repos, sender, infraai.NewDrafter(cfg.AI), nil, clock, metrics,
		log.Component("notificaciones"),
		notifications.Options{Currency: cfg.WhatsApp.Currency, Locale: cfg.WhatsApp.Locale},
	)
	alertUC := alerts.NewUseCase(postgres.NewTxRunner(pool), repos, clock, log.Component("alertas"))

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		Concurrency:   cfg.Jobs.Concurrency,
		AlertScanCron: cfg.Jobs.AlertScanCron,
		Handlers:      jobs.NewHandlers(notificationUC, alertUC, metrics, log.Component("jobs")),
		Log:           log.Component("worker"),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("configurar worker")
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("worker finalizado con error")
	}
	log.Info().Msg("worker detenido")
}
