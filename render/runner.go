package render

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"clipstudio/errs"
	"clipstudio/types"
)

// Publisher moves a rendered file into durable storage and returns its
// public URL.
type Publisher interface {
	Publish(ctx context.Context, name, path string) (string, error)
}

// Runner executes one render end to end and returns the output's public URL.
type Runner interface {
	Run(ctx context.Context, req types.RenderRequest) (string, error)
}

// EngineRunner renders locally with the ffmpeg engine, then publishes.
type EngineRunner struct {
	Engine    *Engine
	Publisher Publisher
}

func (r *EngineRunner) Run(ctx context.Context, req types.RenderRequest) (string, error) {
	path, err := r.Engine.Render(ctx, req)
	if err != nil {
		return "", err
	}
	defer os.Remove(path)
	return r.Publisher.Publish(ctx, filepath.Base(path), path)
}

// BackendRunner delegates rendering to the external render backend, stages
// the returned stream, then publishes it.
type BackendRunner struct {
	Dispatcher *Dispatcher
	Publisher  Publisher
	WorkDir    string
}

func (r *BackendRunner) Run(ctx context.Context, req types.RenderRequest) (string, error) {
	body, err := r.Dispatcher.Dispatch(ctx, req)
	if err != nil {
		return "", err
	}
	defer body.Close()

	staged, err := os.CreateTemp(r.WorkDir, "render_*.mp4")
	if err != nil {
		return "", errs.Wrap(errs.KindRender, "cannot stage rendered video", err)
	}
	defer os.Remove(staged.Name())

	if _, err := io.Copy(staged, body); err != nil {
		staged.Close()
		return "", errs.Wrap(errs.KindRender, "rendered stream truncated", err)
	}
	if err := staged.Close(); err != nil {
		return "", fmt.Errorf("closing staged render: %w", err)
	}

	return r.Publisher.Publish(ctx, filepath.Base(staged.Name()), staged.Name())
}
