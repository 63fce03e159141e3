package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// State represents the application state machine
type State string

const (
	StateIdle      State = "idle"
	StateUploading State = "uploading"
	StateReady     State = "ready"
	StateRendering State = "rendering"
	StateComplete  State = "complete"
	StateError     State = "error"
)

// Model represents the TUI client state (thin client)
type Model struct {
	Client *StudioClient

	// Files queued for upload, given on the command line
	Paths []string

	State     State
	SessionID string
	Assets    []UploadResult
	Timeline  *TimelineView
	JobID     string
	Job       *JobView
	Err       error

	Logs []string
}

// NewModel creates a new TUI model
func NewModel(serverURL, sessionID string, paths []string) Model {
	return Model{
		Client:    NewStudioClient(serverURL),
		State:     StateIdle,
		SessionID: sessionID,
		Paths:     paths,
		Logs:      make([]string, 0),
	}
}

// Init implements tea.Model interface
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// AddLog appends a timestamped log line, keeping the last ten
func (m Model) AddLog(message string) Model {
	m.Logs = append(m.Logs, fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), message))
	if len(m.Logs) > 10 {
		m.Logs = m.Logs[len(m.Logs)-10:]
	}
	return m
}

// getStateText returns the appropriate state message
func (m Model) getStateText() string {
	switch m.State {
	case StateIdle:
		if len(m.Paths) > 0 {
			return badgeStyle.Render("👋 Ready to upload!") + "\n\n" +
				dimStyle.Render(fmt.Sprintf("Press 'u' to upload %d file(s)", len(m.Paths)))
		}
		return badgeStyle.Render("👋 No files queued") + "\n\n" +
			dimStyle.Render("Pass file paths on the command line, or press 't' to view an existing session")
	case StateUploading:
		return stateStyle.Render("📤 Uploading assets...")
	case StateReady:
		return stateStyle.Render("🎞️  Timeline ready. Press 'r' to render")
	case StateRendering:
		return stateStyle.Render(fmt.Sprintf("⏳ Rendering (job %s)...", m.JobID))
	case StateComplete:
		return badgeStyle.Render("✅ COMPLETE")
	case StateError:
		errMsg := "Unknown error"
		if m.Err != nil {
			errMsg = m.Err.Error()
		}
		return errorStyle.Render(fmt.Sprintf("❌ Error: %v", errMsg))
	default:
		return ""
	}
}
