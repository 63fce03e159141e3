package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"clipstudio/api"
	"clipstudio/config"
	"clipstudio/ingest"
	"clipstudio/jobs"
	"clipstudio/media"
	"clipstudio/queue"
	"clipstudio/render"
	"clipstudio/session"
	"clipstudio/storage"
	"clipstudio/youtube"
)

func main() {
	workerMode := flag.Bool("worker", false, "consume render jobs from Kafka instead of serving HTTP")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *workerMode {
		if err := runWorker(cfg, logger); err != nil {
			logger.Fatal("worker exited", zap.Error(err))
		}
		return
	}

	if err := runServer(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

// buildStorage wires object storage behind the uploader and publisher used
// by both serving modes.
func buildStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storage.Uploader, *storage.Publisher, error) {
	s3, err := storage.NewS3(ctx, storage.S3Config{
		Region:       cfg.Storage.Region,
		Endpoint:     cfg.Storage.Endpoint,
		UsePathStyle: cfg.Storage.UsePathStyle,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("storage init: %w", err)
	}
	uploader := storage.NewUploader(s3, cfg.Storage.Bucket, logger)
	return uploader, storage.NewPublisher(uploader), nil
}

// buildRunner picks the render path: an external backend when configured,
// the local ffmpeg engine otherwise.
func buildRunner(cfg *config.Config, publisher *storage.Publisher, logger *zap.Logger) render.Runner {
	if cfg.Render.BackendURL != "" {
		logger.Info("rendering via backend", zap.String("url", cfg.Render.BackendURL))
		return &render.BackendRunner{
			Dispatcher: render.NewDispatcher(cfg.Render.BackendURL, logger),
			Publisher:  publisher,
			WorkDir:    cfg.Render.WorkDir,
		}
	}
	logger.Info("rendering locally with ffmpeg")
	return &render.EngineRunner{
		Engine:    render.NewEngine(cfg.Render.WorkDir, logger),
		Publisher: publisher,
	}
}

func runServer(cfg *config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	uploader, publisher, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}

	store, err := jobs.NewRedisStore(ctx, jobs.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return fmt.Errorf("job store init: %w", err)
	}

	// The interface must stay nil when no connector is configured, so never
	// assign a nil *youtube.Connector into it.
	var connector api.Connector
	if err := cfg.RequireYouTube(); err == nil {
		connector = youtube.NewConnector(cfg.Google.ClientID, cfg.Google.ClientSecret, logger)
	} else {
		logger.Warn("youtube connector disabled", zap.Error(err))
	}

	extractor := media.NewFFmpegExtractor(cfg.Render.ProbeTimeout, cfg.Render.WorkDir, logger)
	pipeline := ingest.NewPipeline(extractor, uploader, logger, ingest.DefaultConcurrency)

	server := api.NewServer(api.ServerConfig{
		Sessions:  session.NewManager(),
		Pipeline:  pipeline,
		Renders:   api.NewRenderService(store, buildRunner(cfg, publisher, logger), logger),
		Store:     store,
		Objects:   uploader,
		Connector: connector,
		StageDir:  cfg.Render.WorkDir,
		MaxUpload: cfg.Server.MaxUploadSize,
		Logger:    logger,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("starting api server", zap.String("addr", addr))
	return server.Router().Run(addr)
}

func runWorker(cfg *config.Config, logger *zap.Logger) error {
	if err := cfg.RequireWorker(); err != nil {
		return err
	}

	ctx := context.Background()

	_, publisher, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}

	store, err := jobs.NewRedisStore(ctx, jobs.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return fmt.Errorf("job store init: %w", err)
	}

	engine := render.NewEngine(cfg.Render.WorkDir, logger)
	worker := queue.NewWorker(engine, publisher, store, logger)

	logger.Info("starting render worker",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.Topic),
		zap.String("group", cfg.Kafka.GroupID))

	return worker.RunWithGracefulShutdown(queue.RunConfig{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	})
}
