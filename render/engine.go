package render

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"

	"clipstudio/errs"
	"clipstudio/types"
)

// Engine renders a timeline to an MP4 with ffmpeg: clips are staged locally,
// concatenated, overlaid with the audio track trimmed to the timeline, and
// burned with styled captions.
type Engine struct {
	workDir string
	logger  *zap.Logger
}

// NewEngine creates an engine staging files under workDir.
func NewEngine(workDir string, logger *zap.Logger) *Engine {
	return &Engine{workDir: workDir, logger: logger}
}

// Render produces the output file for req and returns its path. The caller
// owns the output file; all staging files are removed before returning, on
// success and failure alike.
func (e *Engine) Render(ctx context.Context, req types.RenderRequest) (string, error) {
	if len(req.VideoURLs) == 0 {
		return "", errs.New(errs.KindValidation, "nothing to render")
	}

	id := uuid.NewString()
	stageDir := filepath.Join(e.workDir, "render_"+id)
	if err := os.MkdirAll(stageDir, 0o755); err != nil {
		return "", errs.Wrap(errs.KindRender, "cannot create staging directory", err)
	}
	defer os.RemoveAll(stageDir)

	clipPaths := make([]string, len(req.VideoURLs))
	for i, url := range req.VideoURLs {
		path := filepath.Join(stageDir, fmt.Sprintf("clip_%03d.mp4", i))
		if err := downloadFile(ctx, url, path); err != nil {
			return "", errs.Wrap(errs.KindRender,
				fmt.Sprintf("failed to stage clip %d", i), err)
		}
		clipPaths[i] = path
	}

	listPath := filepath.Join(stageDir, "concat.txt")
	if err := writeConcatList(clipPaths, listPath); err != nil {
		return "", errs.Wrap(errs.KindRender, "failed to write concat list", err)
	}

	video := ffmpeg.Input(listPath, ffmpeg.KwArgs{"f": "concat", "safe": "0"})

	scaled := ffmpeg.Filter(
		[]*ffmpeg.Stream{video},
		"scale",
		ffmpeg.Args{fmt.Sprintf("%d:%d", VideoWidth, VideoHeight)},
	)

	videoOut := scaled
	if len(req.Subtitles) > 0 {
		assPath := filepath.Join(stageDir, "captions.ass")
		if err := writeASSFile(req.Subtitles, assPath); err != nil {
			return "", errs.Wrap(errs.KindRender, "failed to write captions", err)
		}
		videoOut = ffmpeg.Filter(
			[]*ffmpeg.Stream{scaled},
			"ass",
			ffmpeg.Args{escapeFilterPath(assPath)},
		)
	}

	outputPath := filepath.Join(e.workDir, fmt.Sprintf("out_%s.mp4", id))

	outKwargs := ffmpeg.KwArgs{
		"c:v":    VideoCodec,
		"c:a":    AudioCodec,
		"b:a":    AudioBitrate,
		"preset": VideoPreset,
		"t":      fmt.Sprintf("%.3f", req.Duration),
	}

	outStreams := []*ffmpeg.Stream{videoOut}
	if req.AudioURL != "" {
		audioPath := filepath.Join(stageDir, "audio")
		if err := downloadFile(ctx, req.AudioURL, audioPath); err != nil {
			return "", errs.Wrap(errs.KindRender, "failed to stage audio", err)
		}
		outStreams = append(outStreams, ffmpeg.Input(audioPath))
	}

	e.logger.Info("rendering timeline",
		zap.Int("clips", len(clipPaths)),
		zap.Bool("audio", req.AudioURL != ""),
		zap.Int("captions", len(req.Subtitles)),
		zap.Float64("duration", req.Duration),
	)

	err := ffmpeg.Output(outStreams, outputPath, outKwargs).
		OverWriteOutput().
		Silent(true).
		Run()
	if err != nil {
		os.Remove(outputPath)
		return "", errs.Wrap(errs.KindRender, "ffmpeg failure", err)
	}

	return outputPath, nil
}

// writeConcatList emits the concat demuxer's file list.
func writeConcatList(paths []string, listPath string) error {
	file, err := os.Create(listPath)
	if err != nil {
		return err
	}
	defer file.Close()

	for _, p := range paths {
		if _, err := fmt.Fprintf(file, "file '%s'\n", filepath.ToSlash(p)); err != nil {
			return err
		}
	}
	return nil
}

// escapeFilterPath makes a path safe inside an ffmpeg filter argument.
func escapeFilterPath(path string) string {
	return strings.ReplaceAll(filepath.ToSlash(path), ":", "\\:")
}

func downloadFile(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download: status %d", resp.StatusCode)
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}
