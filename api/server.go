// Package api exposes the editing and render pipeline over HTTP.
package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	youtubeapi "google.golang.org/api/youtube/v3"

	"clipstudio/ingest"
	"clipstudio/jobs"
	"clipstudio/session"
	"clipstudio/youtube"
)

// Connector brokers connected YouTube accounts. *youtube.Connector satisfies
// it; tests substitute fakes.
type Connector interface {
	RefreshToken(ctx context.Context, refreshToken string) (*youtube.TokenResponse, error)
	Channel(ctx context.Context, accessToken string) (*youtubeapi.Channel, error)
	Publish(ctx context.Context, accessToken, path string, metadata youtube.VideoMetadata) (string, error)
}

// ObjectRemover releases stored asset objects. *storage.Uploader satisfies it.
type ObjectRemover interface {
	Delete(ctx context.Context, key string) error
}

// Server wires the pipeline components behind the HTTP surface.
type Server struct {
	sessions  *session.Manager
	pipeline  *ingest.Pipeline
	renders   *RenderService
	store     jobs.Store
	objects   ObjectRemover
	connector Connector
	stageDir  string
	maxUpload int64
	logger    *zap.Logger
}

// ServerConfig collects the server's dependencies.
type ServerConfig struct {
	Sessions  *session.Manager
	Pipeline  *ingest.Pipeline
	Renders   *RenderService
	Store     jobs.Store
	Objects   ObjectRemover
	Connector Connector
	StageDir  string
	MaxUpload int64
	Logger    *zap.Logger
}

// NewServer creates the server.
func NewServer(cfg ServerConfig) *Server {
	return &Server{
		sessions:  cfg.Sessions,
		pipeline:  cfg.Pipeline,
		renders:   cfg.Renders,
		store:     cfg.Store,
		objects:   cfg.Objects,
		connector: cfg.Connector,
		stageDir:  cfg.StageDir,
		maxUpload: cfg.MaxUpload,
		logger:    cfg.Logger,
	}
}

// Router constructs a Gin engine with registered routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())
	r.MaxMultipartMemory = 32 << 20

	r.GET("/health", s.handleHealth)

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/assets", s.handleUploadAssets)
		apiGroup.DELETE("/sessions/:id/assets/:assetID", s.handleRemoveAsset)
		apiGroup.GET("/sessions/:id/timeline", s.handleTimeline)
		apiGroup.POST("/render", s.handleRender)
		apiGroup.GET("/jobs/:id", s.handleJobStatus)

		apiGroup.POST("/youtube/token/refresh", s.handleTokenRefresh)
		apiGroup.GET("/youtube/channel", s.handleChannel)
		apiGroup.POST("/youtube/publish", s.handlePublish)
	}

	return r
}

// requestLogger logs each request with latency and status.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
