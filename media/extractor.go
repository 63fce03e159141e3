// Package media measures uploaded files before they may enter a timeline.
package media

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"

	"clipstudio/errs"
)

// Metadata is the result of probing one media file.
type Metadata struct {
	Duration  float64 // seconds, finite and positive
	Thumbnail []byte  // JPEG still, video assets only
}

// Extractor determines a file's playable duration and, for video, a
// representative thumbnail frame.
type Extractor interface {
	Extract(ctx context.Context, path, contentType string) (*Metadata, error)
}

// FFmpegExtractor probes files with ffprobe and captures thumbnails with
// ffmpeg. Probing runs under an explicit timeout so a corrupt file cannot
// stall a batch indefinitely.
type FFmpegExtractor struct {
	timeout time.Duration
	workDir string
	logger  *zap.Logger
}

// NewFFmpegExtractor creates an extractor. workDir holds transient thumbnail
// files; they are removed on every exit path.
func NewFFmpegExtractor(timeout time.Duration, workDir string, logger *zap.Logger) *FFmpegExtractor {
	return &FFmpegExtractor{timeout: timeout, workDir: workDir, logger: logger}
}

// Extract probes the file at path. Unsupported or corrupt files are reported
// as metadata errors and must be excluded from the timeline by the caller.
func (e *FFmpegExtractor) Extract(ctx context.Context, path, contentType string) (*Metadata, error) {
	raw, err := ffmpeg.ProbeWithTimeout(path, e.timeout, ffmpeg.KwArgs{})
	if err != nil {
		return nil, errs.Wrap(errs.KindMetadata, "invalid file", err)
	}

	duration, err := parseDuration(raw)
	if err != nil {
		return nil, err
	}

	meta := &Metadata{Duration: duration}

	if strings.HasPrefix(contentType, "video/") {
		thumb, err := e.captureThumbnail(path, duration)
		if err != nil {
			// A missing thumbnail does not gate timeline entry; the
			// duration does. Report and continue.
			e.logger.Warn("thumbnail capture failed",
				zap.String("path", path), zap.Error(err))
		} else {
			meta.Thumbnail = thumb
		}
	}

	return meta, nil
}

// captureThumbnail seeks to min(1s, duration/2) and extracts a single frame.
func (e *FFmpegExtractor) captureThumbnail(path string, duration float64) ([]byte, error) {
	offset := math.Min(1.0, duration/2)

	thumbPath := filepath.Join(e.workDir, fmt.Sprintf("thumb_%d.jpg", time.Now().UnixNano()))
	defer os.Remove(thumbPath)

	err := ffmpeg.Input(path, ffmpeg.KwArgs{"ss": fmt.Sprintf("%.3f", offset)}).
		Output(thumbPath, ffmpeg.KwArgs{
			"vframes": 1,
			"format":  "image2",
			"vcodec":  "mjpeg",
		}).
		OverWriteOutput().
		Silent(true).
		Run()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg thumbnail failed: %w", err)
	}

	return os.ReadFile(thumbPath)
}

type probeFormat struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// parseDuration extracts the container duration from raw ffprobe JSON. A
// missing, zero, or non-finite duration rejects the asset outright rather
// than letting a garbage value reach the assembler.
func parseDuration(raw string) (float64, error) {
	var probe probeFormat
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return 0, errs.Wrap(errs.KindMetadata, "unreadable probe output", err)
	}

	if probe.Format.Duration == "" {
		return 0, errs.New(errs.KindMetadata, "file reports no duration")
	}

	duration, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil {
		return 0, errs.Wrap(errs.KindMetadata, "unparseable duration", err)
	}
	if duration <= 0 || math.IsInf(duration, 0) || math.IsNaN(duration) {
		return 0, errs.New(errs.KindMetadata,
			fmt.Sprintf("unusable duration %v", duration))
	}

	return duration, nil
}
