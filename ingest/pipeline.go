// Package ingest runs the per-batch measure-then-upload pipeline.
package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"clipstudio/errs"
	"clipstudio/media"
	"clipstudio/session"
	"clipstudio/types"
)

// DefaultConcurrency bounds how many assets are probed/uploaded at once.
const DefaultConcurrency = 3

// FileInput is one staged upload: the file has already been written to a
// local path by the transport layer.
type FileInput struct {
	Path        string
	Filename    string
	ContentType string
	Size        int64
}

// Result is the settled outcome for one input, in input order. Exactly one
// of Asset/Err is meaningful; a failed asset is excluded from the session
// and never reaches the timeline.
type Result struct {
	Asset *types.MediaAsset
	Err   error
}

// Uploader persists one asset and returns its object key and public URL.
type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (key, url string, err error)
}

// Pipeline measures and uploads batches of files into an editing session.
type Pipeline struct {
	extractor   media.Extractor
	uploader    Uploader
	logger      *zap.Logger
	concurrency int
}

// NewPipeline creates a pipeline. concurrency <= 0 selects the default.
func NewPipeline(extractor media.Extractor, uploader Uploader, logger *zap.Logger, concurrency int) *Pipeline {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Pipeline{
		extractor:   extractor,
		uploader:    uploader,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Process runs the batch. Assets are probed and uploaded concurrently; every
// input settles to a success or a per-asset error and one failure never
// cancels sibling work. Staged files are removed on all paths. The caller
// must not assemble a timeline until Process returns.
func (p *Pipeline) Process(ctx context.Context, sess *session.Session, inputs []FileInput) []Result {
	results := make([]Result, len(inputs))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, p.concurrency)

	for i, in := range inputs {
		wg.Add(1)

		go func(idx int, in FileInput) {
			defer wg.Done()
			defer os.Remove(in.Path)

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			results[idx] = p.processOne(ctx, sess, in)
		}(i, in)
	}

	wg.Wait()
	return results
}

func (p *Pipeline) processOne(ctx context.Context, sess *session.Session, in FileInput) Result {
	asset := types.MediaAsset{
		ID:          uuid.NewString(),
		Filename:    in.Filename,
		ContentType: in.ContentType,
		Size:        in.Size,
	}
	sess.Add(asset)

	meta, err := p.extractor.Extract(ctx, in.Path, in.ContentType)
	if err != nil {
		sess.Remove(asset.ID)
		p.logger.Warn("asset rejected",
			zap.String("filename", in.Filename), zap.Error(err))
		return Result{Err: err}
	}

	if !sess.SetMetadata(asset.ID, meta.Duration, meta.Thumbnail) {
		// User removed the asset while we were measuring it.
		return Result{Err: errs.New(errs.KindValidation, "asset removed during processing")}
	}

	file, err := os.Open(in.Path)
	if err != nil {
		sess.Remove(asset.ID)
		return Result{Err: errs.Wrap(errs.KindUpload,
			fmt.Sprintf("cannot read staged file for %q", in.Filename), err)}
	}
	defer file.Close()

	key, url, err := p.uploader.Upload(ctx, in.Filename, in.ContentType, file)
	if err != nil {
		sess.Remove(asset.ID)
		return Result{Err: err}
	}

	if !sess.AttachUpload(asset.ID, key, url) {
		return Result{Err: errs.New(errs.KindValidation, "asset removed during upload")}
	}

	asset.Duration = meta.Duration
	asset.Thumbnail = meta.Thumbnail
	asset.Key = key
	asset.URL = url
	return Result{Asset: &asset}
}
