package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// StudioClient is a thin HTTP client for the clipstudio API
type StudioClient struct {
	baseURL string
	client  *http.Client
}

// NewStudioClient creates a new API client
func NewStudioClient(baseURL string) *StudioClient {
	return &StudioClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

// AssetView mirrors one uploaded asset in API responses
type AssetView struct {
	ID          string  `json:"id"`
	Filename    string  `json:"filename"`
	ContentType string  `json:"content_type"`
	Duration    float64 `json:"duration"`
	URL         string  `json:"url"`
}

// UploadResult is the settled outcome for one file in an upload batch
type UploadResult struct {
	Asset *AssetView `json:"asset,omitempty"`
	Error string     `json:"error,omitempty"`
	Kind  string     `json:"kind,omitempty"`
}

// UploadResponse is the JSON response from POST /api/assets
type UploadResponse struct {
	SessionID string         `json:"session_id"`
	Results   []UploadResult `json:"results"`
}

// ClipView mirrors one timeline clip
type ClipView struct {
	Src              string `json:"src"`
	StartFrame       int    `json:"startFrame"`
	DurationInFrames int    `json:"durationInFrames"`
}

// TimelineView is the JSON response from GET /api/sessions/:id/timeline
type TimelineView struct {
	Clips                 []ClipView `json:"clips"`
	FPS                   int        `json:"fps"`
	TotalDurationInFrames int        `json:"totalDurationInFrames"`
}

// JobView is the JSON response from GET /api/jobs/:id
type JobView struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	OutputURL string `json:"output_url,omitempty"`
}

// UploadAssets posts a batch of local files as one multipart request
func (c *StudioClient) UploadAssets(sessionID string, paths []string) (*UploadResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if sessionID != "" {
		if err := mw.WriteField("session_id", sessionID); err != nil {
			return nil, err
		}
	}
	for _, path := range paths {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		part, err := mw.CreateFormFile("files", filepath.Base(path))
		if err != nil {
			file.Close()
			return nil, err
		}
		if _, err := io.Copy(part, file); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		file.Close()
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	resp, err := c.client.Post(c.baseURL+"/api/assets", mw.FormDataContentType(), &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var out UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}

// Timeline fetches the assembled timeline for a session
func (c *StudioClient) Timeline(sessionID string) (*TimelineView, error) {
	resp, err := c.client.Get(c.baseURL + "/api/sessions/" + sessionID + "/timeline")
	if err != nil {
		return nil, fmt.Errorf("failed to get timeline: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var out TimelineView
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}

// StartRender submits the session for rendering and returns the job ID
func (c *StudioClient) StartRender(sessionID string) (string, error) {
	body, _ := json.Marshal(map[string]string{"session_id": sessionID})
	resp, err := c.client.Post(c.baseURL+"/api/render", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to start render: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return "", apiError(resp)
	}

	var out struct {
		JobID string `json:"job_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return out.JobID, nil
}

// JobStatus fetches the current state of a render job
func (c *StudioClient) JobStatus(jobID string) (*JobView, error) {
	resp, err := c.client.Get(c.baseURL + "/api/jobs/" + jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to get job status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var out JobView
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}

func apiError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Message != "" {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, body.Message)
	}
	return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(data))
}
