package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"clipstudio/errs"
	"clipstudio/ingest"
	"clipstudio/jobs"
	"clipstudio/render"
	"clipstudio/session"
	"clipstudio/timeline"
	"clipstudio/types"
	"clipstudio/youtube"
)

// assetResult is the settled outcome for one uploaded file.
type assetResult struct {
	Asset *types.MediaAsset `json:"asset,omitempty"`
	Error string            `json:"error,omitempty"`
	Kind  string            `json:"kind,omitempty"`
}

type uploadResponse struct {
	SessionID string        `json:"session_id"`
	Results   []assetResult `json:"results"`
}

// handleUploadAssets ingests a multipart batch: each file is staged, probed,
// and uploaded. Failures settle per file; successes are usable regardless of
// sibling outcomes.
func (s *Server) handleUploadAssets(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)

	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid multipart payload")
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		respondError(c, http.StatusBadRequest, "no files provided")
		return
	}

	sess := s.sessions.GetOrCreate(c.PostForm("session_id"))

	inputs, err := stageUploads(s.stageDir, files)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "cannot stage upload")
		return
	}

	results := s.pipeline.Process(c.Request.Context(), sess, inputs)

	resp := uploadResponse{SessionID: sess.ID}
	for _, r := range results {
		if r.Err != nil {
			resp.Results = append(resp.Results, assetResult{
				Error: errs.MessageOf(r.Err),
				Kind:  string(errs.KindOf(r.Err)),
			})
			continue
		}
		resp.Results = append(resp.Results, assetResult{Asset: r.Asset})
	}

	c.JSON(http.StatusOK, resp)
}

// stageUploads copies each part to a local staging file. On failure the files
// staged so far are removed; the pipeline only ever sees a complete batch.
func stageUploads(stageDir string, files []*multipart.FileHeader) ([]ingest.FileInput, error) {
	inputs := make([]ingest.FileInput, 0, len(files))
	for _, fh := range files {
		staged := filepath.Join(stageDir, fmt.Sprintf("stage_%s", uuid.NewString()))
		if err := saveUploadedFile(fh, staged); err != nil {
			for _, in := range inputs {
				os.Remove(in.Path)
			}
			os.Remove(staged)
			return nil, err
		}
		inputs = append(inputs, ingest.FileInput{
			Path:        staged,
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
		})
	}
	return inputs, nil
}

func saveUploadedFile(fh *multipart.FileHeader, dst string) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}

// handleRemoveAsset drops the asset from the session and releases its stored
// object. Object deletion is best effort; the asset leaves the timeline
// either way.
func (s *Server) handleRemoveAsset(c *gin.Context) {
	sess := s.sessions.Get(c.Param("id"))
	if sess == nil {
		respondError(c, http.StatusNotFound, "unknown session")
		return
	}

	asset, ok := sess.Remove(c.Param("assetID"))
	if !ok {
		respondError(c, http.StatusNotFound, "unknown asset")
		return
	}

	if asset.Key != "" && s.objects != nil {
		if err := s.objects.Delete(c.Request.Context(), asset.Key); err != nil {
			s.logger.Warn("stored object not released",
				zap.String("key", asset.Key), zap.Error(err))
		}
	}

	c.Status(http.StatusNoContent)
}

// handleTimeline returns the assembled timeline for preview playback. The
// same assembly backs render submission, so what the player shows is what
// gets rendered.
func (s *Server) handleTimeline(c *gin.Context) {
	sess := s.sessions.Get(c.Param("id"))
	if sess == nil {
		respondError(c, http.StatusNotFound, "unknown session")
		return
	}

	tl, err := assembleSession(sess)
	if err != nil {
		respondWithTaxonomy(c, err)
		return
	}
	c.JSON(http.StatusOK, tl)
}

type renderRequestBody struct {
	SessionID    string          `json:"session_id" binding:"required"`
	Subtitles    []types.Caption `json:"subtitles"`
	StyleType    string          `json:"styleType"`
	SegmentIndex int             `json:"segmentIndex"`
}

// handleRender assembles the session timeline and starts a render job.
func (s *Server) handleRender(c *gin.Context) {
	var body renderRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "invalid render request")
		return
	}

	sess := s.sessions.Get(body.SessionID)
	if sess == nil {
		respondError(c, http.StatusNotFound, "unknown session")
		return
	}

	tl, err := assembleSession(sess)
	if err != nil {
		respondWithTaxonomy(c, err)
		return
	}

	audioURL := ""
	if audio := sess.AudioTrack(); audio != nil {
		audioURL = audio.URL
	}

	req := render.BuildRequest(tl, audioURL, body.Subtitles, body.StyleType, body.SegmentIndex)

	job, err := s.renders.StartJob(sess, req)
	if err != nil {
		if errors.Is(err, ErrRenderInFlight) {
			respondError(c, http.StatusConflict, errs.MessageOf(err))
			return
		}
		respondError(c, http.StatusInternalServerError, "cannot start render")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"job_id": job.ID,
		"status": job.Status,
	})
}

func (s *Server) handleJobStatus(c *gin.Context) {
	job, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			respondError(c, http.StatusNotFound, "unknown job")
			return
		}
		respondError(c, http.StatusInternalServerError, "job store unavailable")
		return
	}
	c.JSON(http.StatusOK, job)
}

type tokenRefreshBody struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (s *Server) handleTokenRefresh(c *gin.Context) {
	if s.connector == nil {
		respondError(c, http.StatusServiceUnavailable, "youtube connector not configured")
		return
	}

	var body tokenRefreshBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "refresh_token is required")
		return
	}

	token, err := s.connector.RefreshToken(c.Request.Context(), body.RefreshToken)
	if err != nil {
		respondWithTaxonomy(c, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

func (s *Server) handleChannel(c *gin.Context) {
	if s.connector == nil {
		respondError(c, http.StatusServiceUnavailable, "youtube connector not configured")
		return
	}

	accessToken := bearerToken(c)
	if accessToken == "" {
		respondError(c, http.StatusUnauthorized, "missing bearer token")
		return
	}

	channel, err := s.connector.Channel(c.Request.Context(), accessToken)
	if err != nil {
		respondWithTaxonomy(c, err)
		return
	}
	c.JSON(http.StatusOK, channel)
}

type publishRequestBody struct {
	JobID       string   `json:"job_id" binding:"required"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Privacy     string   `json:"privacy"`
}

// handlePublish uploads a finished render to the caller's connected YouTube
// channel. The rendered file is fetched from storage into a staged copy,
// published, and the copy removed.
func (s *Server) handlePublish(c *gin.Context) {
	if s.connector == nil {
		respondError(c, http.StatusServiceUnavailable, "youtube connector not configured")
		return
	}

	accessToken := bearerToken(c)
	if accessToken == "" {
		respondError(c, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var body publishRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "job_id is required")
		return
	}

	job, err := s.store.Get(c.Request.Context(), body.JobID)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			respondError(c, http.StatusNotFound, "unknown job")
			return
		}
		respondError(c, http.StatusInternalServerError, "job store unavailable")
		return
	}

	if job.Status != types.JobDone || job.OutputURL == "" {
		respondError(c, http.StatusUnprocessableEntity, "render is not finished")
		return
	}

	staged := filepath.Join(s.stageDir, fmt.Sprintf("publish_%s.mp4", uuid.NewString()))
	if err := fetchToFile(c.Request.Context(), job.OutputURL, staged); err != nil {
		s.logger.Error("cannot fetch rendered output",
			zap.String("job", job.ID), zap.Error(err))
		respondError(c, http.StatusBadGateway, "cannot fetch rendered output")
		return
	}
	defer os.Remove(staged)

	videoID, err := s.connector.Publish(c.Request.Context(), accessToken, staged, youtube.VideoMetadata{
		Title:       body.Title,
		Description: body.Description,
		Tags:        body.Tags,
		Privacy:     body.Privacy,
	})
	if err != nil {
		respondWithTaxonomy(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"video_id": videoID})
}

// fetchToFile downloads url into path.
func fetchToFile(ctx context.Context, url, path string) error {
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
		return fmt.Errorf("fetch failed: status %d", resp.StatusCode)
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// assembleSession builds the timeline from the session's uploaded clips.
func assembleSession(sess *session.Session) (*timeline.Timeline, error) {
	clips := sess.VideoClips()
	inputs := make([]timeline.ClipInput, len(clips))
	for i, clip := range clips {
		inputs[i] = timeline.ClipInput{Src: clip.URL, Duration: clip.Duration}
	}

	var audio *timeline.AudioInput
	if track := sess.AudioTrack(); track != nil {
		audio = &timeline.AudioInput{Src: track.URL, Duration: track.Duration}
	}

	return timeline.Assemble(inputs, audio)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// respondWithTaxonomy maps kinded errors to transport statuses.
func respondWithTaxonomy(c *gin.Context, err error) {
	switch errs.KindOf(err) {
	case errs.KindValidation, errs.KindMetadata:
		respondError(c, http.StatusUnprocessableEntity, errs.MessageOf(err))
	case errs.KindUpload:
		respondError(c, http.StatusBadGateway, errs.MessageOf(err))
	case errs.KindRender:
		respondError(c, http.StatusBadGateway, errs.MessageOf(err))
	case errs.KindAuth:
		c.JSON(http.StatusUnauthorized, gin.H{
			"message":   errs.MessageOf(err),
			"reconnect": true,
		})
	default:
		respondError(c, http.StatusInternalServerError, errs.MessageOf(err))
	}
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}
