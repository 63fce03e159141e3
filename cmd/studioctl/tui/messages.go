package tui

import "time"

// Messages for the tea program (polling-based render tracking)

// UploadCompleteMsg is sent when the upload batch settles
type UploadCompleteMsg struct {
	Response *UploadResponse
	Err      error
}

// TimelineMsg is sent when the assembled timeline arrives
type TimelineMsg struct {
	Timeline *TimelineView
	Err      error
}

// RenderStartedMsg is sent when a render job is accepted
type RenderStartedMsg struct {
	JobID string
	Err   error
}

// JobStatusMsg is sent on each job status poll
type JobStatusMsg struct {
	Job *JobView
	Err error
}

// TickMsg is sent periodically to trigger job polling
type TickMsg struct {
	Time time.Time
}
