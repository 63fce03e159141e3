package tui

import (
	"fmt"
	"strings"
)

// View implements tea.Model interface
func (m Model) View() string {
	var b strings.Builder

	// Title
	b.WriteString(titleStyle.Render("🎬 ClipStudio"))
	b.WriteString("\n\n")

	// Current state
	b.WriteString(m.getStateText())
	b.WriteString("\n\n")

	// Session info
	if m.SessionID != "" {
		b.WriteString(dimStyle.Render(fmt.Sprintf("📁 Session: %s", m.SessionID)))
		b.WriteString("\n")
	}

	// Upload results
	if len(m.Assets) > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("📊 Assets: %d", len(m.Assets))))
		b.WriteString("\n")
		for _, r := range m.Assets {
			if r.Error != "" {
				b.WriteString(errorStyle.Render(fmt.Sprintf("   ✗ %s (%s)", r.Error, r.Kind)))
			} else {
				b.WriteString(dimStyle.Render(fmt.Sprintf("   ✓ %s (%.1fs)", r.Asset.Filename, r.Asset.Duration)))
			}
			b.WriteString("\n")
		}
	}

	// Timeline
	if m.Timeline != nil {
		b.WriteString("\n")
		b.WriteString(panelStyle.Render(m.formatTimeline()))
		b.WriteString("\n")
	}

	// Logs
	if len(m.Logs) > 0 {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("📝 Recent Activity:"))
		b.WriteString("\n")
		for _, logMsg := range m.Logs {
			b.WriteString(dimStyle.Render("   " + logMsg))
			b.WriteString("\n")
		}
	}

	// Result
	if m.State == StateComplete && m.Job != nil {
		b.WriteString("\n")
		b.WriteString(badgeStyle.Render("Output: " + m.Job.OutputURL))
		b.WriteString("\n")
	}

	// Help text
	b.WriteString("\n")
	switch m.State {
	case StateIdle:
		b.WriteString(dimStyle.Render("Press 'u' to upload | Press 'q' or Ctrl+C to quit"))
	case StateReady:
		b.WriteString(dimStyle.Render("Press 'r' to render | Press 't' to refresh timeline | Press 'q' to quit"))
	default:
		b.WriteString(dimStyle.Render("Press 'q' or Ctrl+C to quit"))
	}

	return b.String()
}

// formatTimeline formats the assembled timeline for display
func (m Model) formatTimeline() string {
	tl := m.Timeline
	var b strings.Builder

	b.WriteString(badgeStyle.Render("Timeline"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("FPS: %d | Total: %d frames (%.2fs)\n\n",
		tl.FPS, tl.TotalDurationInFrames, float64(tl.TotalDurationInFrames)/float64(tl.FPS)))

	for i, clip := range tl.Clips {
		b.WriteString(fmt.Sprintf("  %d. frames %d-%d  %s\n",
			i+1, clip.StartFrame, clip.StartFrame+clip.DurationInFrames, clipLabel(clip.Src)))
	}

	return b.String()
}

// clipLabel trims a URL down to its final path segment
func clipLabel(src string) string {
	if idx := strings.LastIndex(src, "/"); idx >= 0 && idx < len(src)-1 {
		return src[idx+1:]
	}
	return src
}
