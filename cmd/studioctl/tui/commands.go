package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// uploadAssets creates a command to upload the staged files
func uploadAssets(client *StudioClient, sessionID string, paths []string) tea.Cmd {
	return func() tea.Msg {
		resp, err := client.UploadAssets(sessionID, paths)
		return UploadCompleteMsg{Response: resp, Err: err}
	}
}

// fetchTimeline creates a command to fetch the assembled timeline
func fetchTimeline(client *StudioClient, sessionID string) tea.Cmd {
	return func() tea.Msg {
		tl, err := client.Timeline(sessionID)
		return TimelineMsg{Timeline: tl, Err: err}
	}
}

// startRender creates a command to submit the session for rendering
func startRender(client *StudioClient, sessionID string) tea.Cmd {
	return func() tea.Msg {
		jobID, err := client.StartRender(sessionID)
		return RenderStartedMsg{JobID: jobID, Err: err}
	}
}

// pollJob creates a command to fetch the job's current status
func pollJob(client *StudioClient, jobID string) tea.Cmd {
	return func() tea.Msg {
		job, err := client.JobStatus(jobID)
		return JobStatusMsg{Job: job, Err: err}
	}
}

// tickCmd creates a command that ticks every second for job polling
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}
