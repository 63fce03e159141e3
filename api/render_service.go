package api

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"clipstudio/errs"
	"clipstudio/jobs"
	"clipstudio/render"
	"clipstudio/session"
	"clipstudio/types"
)

// RenderService starts render jobs and records their outcome. One render per
// session runs at a time; the job store makes progress observable so the
// user can navigate away and poll later.
type RenderService struct {
	store  jobs.Store
	runner render.Runner
	logger *zap.Logger
}

// NewRenderService creates the service.
func NewRenderService(store jobs.Store, runner render.Runner, logger *zap.Logger) *RenderService {
	return &RenderService{store: store, runner: runner, logger: logger}
}

// ErrRenderInFlight rejects duplicate submissions for a session.
var ErrRenderInFlight = errs.New(errs.KindValidation, "a render is already in flight for this session")

// StartJob claims the session's render slot and runs the render
// asynchronously. The slot is released on completion regardless of outcome,
// so a failed render can be retried without re-uploading.
func (s *RenderService) StartJob(sess *session.Session, req types.RenderRequest) (*types.RenderJob, error) {
	if !sess.TryBeginRender() {
		return nil, ErrRenderInFlight
	}

	job := types.RenderJob{
		ID:        uuid.NewString(),
		SessionID: sess.ID,
		Status:    types.JobQueued,
		Request:   req,
	}
	if err := s.store.Put(context.Background(), job); err != nil {
		sess.EndRender()
		return nil, err
	}

	go s.run(sess, job)

	return &job, nil
}

func (s *RenderService) run(sess *session.Session, job types.RenderJob) {
	defer sess.EndRender()

	// Rendering outlives the submitting HTTP request on purpose.
	ctx := context.Background()

	if err := s.store.SetStatus(ctx, job.ID, types.JobRendering, "", ""); err != nil {
		s.logger.Error("cannot mark job rendering",
			zap.String("job", job.ID), zap.Error(err))
	}

	url, err := s.runner.Run(ctx, job.Request)
	if err != nil {
		s.logger.Error("render failed",
			zap.String("job", job.ID), zap.Error(err))
		if serr := s.store.SetStatus(ctx, job.ID, types.JobFailed, errs.MessageOf(err), ""); serr != nil {
			s.logger.Error("cannot record job failure",
				zap.String("job", job.ID), zap.Error(serr))
		}
		return
	}

	s.logger.Info("render complete",
		zap.String("job", job.ID), zap.String("url", url))
	if serr := s.store.SetStatus(ctx, job.ID, types.JobDone, "", url); serr != nil {
		s.logger.Error("cannot record job completion",
			zap.String("job", job.ID), zap.Error(serr))
	}
}
