package types

// MediaAsset represents one uploaded file owned by an editing session.
// Duration and Thumbnail are populated by the metadata extractor; URL is
// attached after the storage upload succeeds.
type MediaAsset struct {
	ID          string  `json:"id"`
	Filename    string  `json:"filename"`
	ContentType string  `json:"content_type"`
	Size        int64   `json:"size"`
	Duration    float64 `json:"duration"`
	Thumbnail   []byte  `json:"thumbnail,omitempty"`
	Key         string  `json:"-"` // object store key, internal
	URL         string  `json:"url,omitempty"`
}

// IsVideo reports whether the asset should be placed on the video track.
func (a *MediaAsset) IsVideo() bool {
	return len(a.ContentType) >= 6 && a.ContentType[:6] == "video/"
}

// IsAudio reports whether the asset is an audio track candidate.
func (a *MediaAsset) IsAudio() bool {
	return len(a.ContentType) >= 6 && a.ContentType[:6] == "audio/"
}

// Caption is a styled text overlay with second-offset timing. The renderer
// converts offsets to frames at the shared frame rate.
type Caption struct {
	Text      string  `json:"text"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
	Position  string  `json:"position,omitempty"` // "top" or "bottom"
}

// RenderRequest is the outbound payload submitted to the render backend.
type RenderRequest struct {
	VideoURLs    []string  `json:"videoUrls"`
	AudioURL     string    `json:"audioUrl"`
	Subtitles    []Caption `json:"subtitles"`
	StyleType    string    `json:"styleType"`
	SegmentIndex int       `json:"segmentIndex"`
	Duration     float64   `json:"duration"`
}

// RenderJob tracks one render through the job store.
type RenderJob struct {
	ID        string        `json:"id"`
	SessionID string        `json:"session_id"`
	Status    JobStatus     `json:"status"`
	Message   string        `json:"message,omitempty"`
	OutputURL string        `json:"output_url,omitempty"`
	Request   RenderRequest `json:"request"`
}

// JobStatus is the lifecycle state of a render job.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRendering JobStatus = "rendering"
	JobDone      JobStatus = "done"
	JobFailed    JobStatus = "failed"
)
