package tui

import (
	"strings"
	"testing"
)

func TestView_IdleWithQueuedFiles(t *testing.T) {
	m := NewModel("http://localhost:8080", "", []string{"a.mp4", "b.mp4"})

	out := m.View()
	if !strings.Contains(out, "ClipStudio") {
		t.Fatalf("missing title:\n%s", out)
	}
	if !strings.Contains(out, "Press 'u' to upload 2 file(s)") {
		t.Fatalf("missing upload hint:\n%s", out)
	}
}

func TestView_RenderingShowsJob(t *testing.T) {
	m := NewModel("http://localhost:8080", "edit-1", nil)
	m.State = StateRendering
	m.JobID = "job-7"

	out := m.View()
	if !strings.Contains(out, "Rendering (job job-7)") {
		t.Fatalf("missing rendering state:\n%s", out)
	}
	if !strings.Contains(out, "Session: edit-1") {
		t.Fatalf("missing session line:\n%s", out)
	}
}

func TestView_CompleteShowsOutput(t *testing.T) {
	m := NewModel("http://localhost:8080", "edit-1", nil)
	m.State = StateComplete
	m.Job = &JobView{ID: "job-7", Status: "done", OutputURL: "https://cdn.test/out.mp4"}

	out := m.View()
	if !strings.Contains(out, "Output: https://cdn.test/out.mp4") {
		t.Fatalf("missing output line:\n%s", out)
	}
}

func TestFormatTimeline(t *testing.T) {
	m := NewModel("http://localhost:8080", "edit-1", nil)
	m.Timeline = &TimelineView{
		FPS:                   30,
		TotalDurationInFrames: 165,
		Clips: []ClipView{
			{Src: "https://cdn.test/a.mp4", StartFrame: 0, DurationInFrames: 60},
			{Src: "https://cdn.test/b.mp4", StartFrame: 60, DurationInFrames: 105},
		},
	}

	out := m.formatTimeline()
	if !strings.Contains(out, "Total: 165 frames (5.50s)") {
		t.Fatalf("missing total line:\n%s", out)
	}
	if !strings.Contains(out, "2. frames 60-165  b.mp4") {
		t.Fatalf("missing second clip line:\n%s", out)
	}
}

func TestClipLabel(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"https://cdn.test/clips/a.mp4", "a.mp4"},
		{"a.mp4", "a.mp4"},
		{"https://cdn.test/clips/", "https://cdn.test/clips/"},
	}
	for _, tc := range cases {
		if got := clipLabel(tc.src); got != tc.want {
			t.Errorf("clipLabel(%q) = %q, want %q", tc.src, got, tc.want)
		}
	}
}
