package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Worker servidor asynq con el programador de tareas periódicas.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
	log       zerolog.Logger
}

// WorkerConfig dependencias del worker.
type WorkerConfig struct {
	RedisOpts     asynq.RedisClientOpt
	Concurrency   int
	AlertScanCron string // vacío = sin escaneo programado
	Handlers      *Handlers
	Log           zerolog.Logger
}

// NewWorker registra los procesadores y, si hay cron, el escaneo periódico de alertas.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.Handlers == nil {
		return nil, errors.New("jobs: handlers requeridos")
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 5
	}
	log := cfg.Log
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{QueueDefault: 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Error().Err(err).Str("task", task.Type()).Msg("tarea fallida")
		}),
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskDeliverWhatsApp, cfg.Handlers.HandleDeliver)
	mux.HandleFunc(TaskScanAlerts, cfg.Handlers.HandleScan)

	var scheduler *asynq.Scheduler
	if cfg.AlertScanCron != "" {
		task, err := NewScanTask(ScanPayload{})
		if err != nil {
			return nil, err
		}
		scheduler = asynq.NewScheduler(cfg.RedisOpts, &asynq.SchedulerOpts{Location: time.UTC})
		if _, err := scheduler.Register(cfg.AlertScanCron, task, asynq.Queue(QueueDefault), asynq.MaxRetry(3)); err != nil {
			return nil, err
		}
	}

	return &Worker{server: srv, mux: mux, scheduler: scheduler, log: log}, nil
}

// Run procesa tareas hasta que se cancele ctx.
func (w *Worker) Run(ctx context.Context) error {
	if w.scheduler != nil {
		if err := w.scheduler.Start(); err != nil {
			return err
		}
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()
	w.log.Info().Msg("worker iniciado")

	select {
	case <-ctx.Done():
		if w.scheduler != nil {
			w.scheduler.Shutdown()
		}
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		if w.scheduler != nil {
			w.scheduler.Shutdown()
		}
		return err
	}
}
