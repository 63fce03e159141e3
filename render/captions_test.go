package render

import (
	"strings"
	"testing"

	"clipstudio/types"
)

func TestWriteASS(t *testing.T) {
	var b strings.Builder
	err := writeASS(&b, []types.Caption{
		{Text: "hello there", StartTime: 0, EndTime: 1.5},
		{Text: "up top", StartTime: 1.5, EndTime: 3.25, Position: "top"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	script := b.String()

	if !strings.Contains(script, "Dialogue: 0,0:00:00.00,0:00:01.50,Bottom,,0,0,0,,hello there") {
		t.Fatalf("missing bottom caption event:\n%s", script)
	}
	if !strings.Contains(script, "Dialogue: 0,0:00:01.50,0:00:03.25,Top,,0,0,0,,up top") {
		t.Fatalf("missing top caption event:\n%s", script)
	}
	if !strings.Contains(script, "PlayResX: 1080") || !strings.Contains(script, "PlayResY: 1920") {
		t.Fatalf("missing play resolution:\n%s", script)
	}
}

func TestFormatASSTimestamp(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{seconds: 0, want: "0:00:00.00"},
		{seconds: 1.5, want: "0:00:01.50"},
		{seconds: 61.25, want: "0:01:01.25"},
		{seconds: 3661.0, want: "1:01:01.00"},
	}
	for _, tc := range cases {
		if got := formatASSTimestamp(tc.seconds); got != tc.want {
			t.Fatalf("formatASSTimestamp(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestEscapeFilterPath(t *testing.T) {
	if got := escapeFilterPath("/tmp/job:1/captions.ass"); got != `/tmp/job\:1/captions.ass` {
		t.Fatalf("escapeFilterPath = %q", got)
	}
}
