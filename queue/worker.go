package queue

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"clipstudio/errs"
	"clipstudio/jobs"
	"clipstudio/types"
)

// Renderer produces an output file for a render request. *render.Engine
// satisfies it.
type Renderer interface {
	Render(ctx context.Context, req types.RenderRequest) (string, error)
}

// Publisher moves a rendered file to durable storage and returns its URL.
type Publisher interface {
	Publish(ctx context.Context, jobID, path string) (string, error)
}

// Worker consumes render jobs, renders them, and records the outcome in the
// job store.
type Worker struct {
	renderer  Renderer
	publisher Publisher
	store     jobs.Store
	logger    *zap.Logger
}

// NewWorker creates a render worker.
func NewWorker(renderer Renderer, publisher Publisher, store jobs.Store, logger *zap.Logger) *Worker {
	return &Worker{renderer: renderer, publisher: publisher, store: store, logger: logger}
}

// Handler returns the message handler consuming types.RenderJob payloads.
// A render failure is recorded as a failed job and the message is marked:
// a bad timeline fails the same way on every redelivery. Store failures are
// returned so the message is retried.
func (w *Worker) Handler() MessageHandler {
	return &TypedMessageHandler[types.RenderJob]{
		Logger: w.logger,
		Validate: func(job *types.RenderJob) bool {
			if job.ID == "" {
				w.logger.Warn("render job missing id, skipping")
				return false
			}
			if len(job.Request.VideoURLs) == 0 {
				w.logger.Warn("render job has no clips, skipping",
					zap.String("job", job.ID))
				return false
			}
			return true
		},
		Process:    w.process,
		AlwaysMark: true,
	}
}

func (w *Worker) process(ctx context.Context, job *types.RenderJob) error {
	w.logger.Info("processing render job", zap.String("job", job.ID))

	if err := w.store.SetStatus(ctx, job.ID, types.JobRendering, "", ""); err != nil {
		if err == jobs.ErrNotFound {
			// Job was enqueued without a store record (direct produce);
			// create one so its outcome is observable.
			record := *job
			record.Status = types.JobRendering
			if err := w.store.Put(ctx, record); err != nil {
				return err
			}
		} else {
			return err
		}
	}

	outputPath, err := w.renderer.Render(ctx, job.Request)
	if err != nil {
		w.logger.Error("render failed",
			zap.String("job", job.ID), zap.Error(err))
		return w.store.SetStatus(ctx, job.ID, types.JobFailed, errs.MessageOf(err), "")
	}
	defer os.Remove(outputPath)

	url, err := w.publisher.Publish(ctx, job.ID, outputPath)
	if err != nil {
		w.logger.Error("publish failed",
			zap.String("job", job.ID), zap.Error(err))
		return w.store.SetStatus(ctx, job.ID, types.JobFailed, errs.MessageOf(err), "")
	}

	w.logger.Info("render job done",
		zap.String("job", job.ID), zap.String("url", url))
	return w.store.SetStatus(ctx, job.ID, types.JobDone, "", url)
}

// RunConfig configures RunWithGracefulShutdown.
type RunConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// RunWithGracefulShutdown consumes until SIGINT/SIGTERM.
func (w *Worker) RunWithGracefulShutdown(cfg RunConfig) error {
	consumer, err := NewConsumer(ConsumerConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
		GroupID: cfg.GroupID,
		Handler: w.Handler(),
		Logger:  w.logger,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := consumer.Start(ctx); err != nil {
		return err
	}

	sigterm := make(chan os.Signal, 1)
	signal.Notify(sigterm, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigterm:
		w.logger.Info("received termination signal")
	case <-ctx.Done():
		w.logger.Info("context canceled")
	}

	return consumer.Close()
}
