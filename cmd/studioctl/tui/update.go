package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model interface
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case UploadCompleteMsg:
		return m.handleUploadComplete(msg)
	case TimelineMsg:
		return m.handleTimeline(msg)
	case RenderStartedMsg:
		return m.handleRenderStarted(msg)
	case JobStatusMsg:
		return m.handleJobStatus(msg)
	case TickMsg:
		return m.handleTick()
	}
	return m, nil
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "u", "U":
		if m.State == StateIdle && len(m.Paths) > 0 {
			m.State = StateUploading
			m = m.AddLog(fmt.Sprintf("Uploading %d file(s)...", len(m.Paths)))
			return m, uploadAssets(m.Client, m.SessionID, m.Paths)
		}
	case "t", "T":
		if m.SessionID != "" && m.State != StateRendering {
			m = m.AddLog("Fetching timeline...")
			return m, fetchTimeline(m.Client, m.SessionID)
		}
	case "r", "R":
		if m.State == StateReady {
			m.State = StateRendering
			m = m.AddLog("Submitting render...")
			return m, startRender(m.Client, m.SessionID)
		}
	}
	return m, nil
}

// handleUploadComplete processes the settled upload batch
func (m Model) handleUploadComplete(msg UploadCompleteMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.State = StateError
		m.Err = msg.Err
		return m, nil
	}
	m.SessionID = msg.Response.SessionID
	m.Assets = msg.Response.Results

	succeeded, failed := 0, 0
	for _, r := range msg.Response.Results {
		if r.Error != "" {
			failed++
		} else {
			succeeded++
		}
	}
	m = m.AddLog(fmt.Sprintf("Upload settled: %d succeeded, %d failed", succeeded, failed))

	// Failed siblings do not block the timeline
	return m, fetchTimeline(m.Client, m.SessionID)
}

// handleTimeline processes the assembled timeline
func (m Model) handleTimeline(msg TimelineMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.State = StateError
		m.Err = msg.Err
		return m, nil
	}
	m.Timeline = msg.Timeline
	m.State = StateReady
	m = m.AddLog(fmt.Sprintf("Timeline assembled: %d clips, %d frames",
		len(msg.Timeline.Clips), msg.Timeline.TotalDurationInFrames))
	return m, nil
}

// handleRenderStarted processes render job acceptance
func (m Model) handleRenderStarted(msg RenderStartedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.State = StateError
		m.Err = msg.Err
		return m, nil
	}
	m.JobID = msg.JobID
	m = m.AddLog(fmt.Sprintf("Render accepted with job ID: %s", msg.JobID))
	return m, pollJob(m.Client, m.JobID)
}

// handleJobStatus processes a job status poll
func (m Model) handleJobStatus(msg JobStatusMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.State = StateError
		m.Err = msg.Err
		return m, nil
	}
	m.Job = msg.Job

	switch msg.Job.Status {
	case "done":
		m.State = StateComplete
		m = m.AddLog("Render complete!")
	case "failed":
		m.State = StateError
		m.Err = fmt.Errorf("render failed: %s", msg.Job.Message)
	}
	return m, nil
}

// handleTick drives job polling while a render is in flight
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.State == StateRendering && m.JobID != "" {
		return m, tea.Batch(pollJob(m.Client, m.JobID), tickCmd())
	}
	return m, tickCmd()
}
