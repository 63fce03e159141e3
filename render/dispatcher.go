// Package render submits assembled timelines for rendering and implements
// the ffmpeg render engine itself.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"clipstudio/errs"
	"clipstudio/timeline"
	"clipstudio/types"
)

// BuildRequest converts an assembled timeline plus caption metadata into the
// render backend's wire payload. Preview and render share the timeline, so
// the durations here are exactly what the player shows.
func BuildRequest(tl *timeline.Timeline, audioURL string, captions []types.Caption, styleType string, segmentIndex int) types.RenderRequest {
	urls := make([]string, len(tl.Clips))
	for i, c := range tl.Clips {
		urls[i] = c.Src
	}
	return types.RenderRequest{
		VideoURLs:    urls,
		AudioURL:     audioURL,
		Subtitles:    captions,
		StyleType:    styleType,
		SegmentIndex: segmentIndex,
		Duration:     tl.TotalSeconds(),
	}
}

// Dispatcher submits render requests to the render backend over HTTP.
type Dispatcher struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewDispatcher creates a dispatcher for the backend at baseURL. Rendering
// is long-running, so the client carries no overall timeout; cancellation
// comes from the request context.
func NewDispatcher(baseURL string, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{},
		logger:  logger,
	}
}

// Dispatch submits one render and returns the binary video stream on
// success. The caller must close the stream. Backend failures surface the
// backend's message verbatim as a render error; the in-memory timeline is
// untouched either way, so a retry needs no re-upload.
func (d *Dispatcher) Dispatch(ctx context.Context, req types.RenderRequest) (io.ReadCloser, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errs.Wrap(errs.KindRender, "cannot encode render request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		d.baseURL+"/render", bytes.NewReader(body))
	if err != nil {
		return nil, errs.Wrap(errs.KindRender, "cannot build render request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	d.logger.Info("dispatching render",
		zap.Int("clips", len(req.VideoURLs)),
		zap.Float64("duration", req.Duration),
	)

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return nil, errs.Wrap(errs.KindRender, "render backend unreachable", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, errs.New(errs.KindRender, extractBackendMessage(resp))
	}

	return resp.Body, nil
}

// extractBackendMessage pulls the human-readable message out of an error
// response body, falling back to the raw body and then the status line.
func extractBackendMessage(resp *http.Response) string {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil && len(raw) > 0 {
		var payload struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &payload) == nil && payload.Message != "" {
			return payload.Message
		}
		return strings.TrimSpace(string(raw))
	}
	return fmt.Sprintf("render backend returned %s", resp.Status)
}
