package render

import (
	"fmt"
	"io"
	"os"

	"clipstudio/types"
)

// writeASSFile renders captions to an ASS subtitle file at outputPath.
func writeASSFile(captions []types.Caption, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer file.Close()
	return writeASS(file, captions)
}

// writeASS emits an ASS script with a Top and a Bottom style. Caption timing
// stays in seconds here; ffmpeg burns them at the same rate the timeline
// uses, so preview and render agree.
func writeASS(w io.Writer, captions []types.Caption) error {
	fmt.Fprintln(w, "[Script Info]")
	fmt.Fprintln(w, "Title: clipstudio captions")
	fmt.Fprintln(w, "ScriptType: v4.00+")
	fmt.Fprintf(w, "PlayResX: %d\n", VideoWidth)
	fmt.Fprintf(w, "PlayResY: %d\n", VideoHeight)
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "[V4+ Styles]")
	fmt.Fprintln(w, "Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding")

	// Alignment 2 = bottom center, 8 = top center
	fmt.Fprintf(w, "Style: Bottom,Impact,%d,&H00FFFFFF,&H00FFFFFF,&H00000000,&H00000000,-1,0,0,0,100,100,0,0,1,3,0,2,40,40,120,1\n", CaptionFontSize)
	fmt.Fprintf(w, "Style: Top,Impact,%d,&H00FFFFFF,&H00FFFFFF,&H00000000,&H00000000,-1,0,0,0,100,100,0,0,1,3,0,8,40,40,120,1\n", CaptionFontSize)

	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "[Events]")
	fmt.Fprintln(w, "Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text")

	for _, c := range captions {
		style := "Bottom"
		if c.Position == PositionTop {
			style = "Top"
		}
		if _, err := fmt.Fprintf(w, "Dialogue: 0,%s,%s,%s,,0,0,0,,%s\n",
			formatASSTimestamp(c.StartTime),
			formatASSTimestamp(c.EndTime),
			style,
			c.Text,
		); err != nil {
			return err
		}
	}
	return nil
}

// formatASSTimestamp converts seconds to ASS timestamp format (h:mm:ss.cc).
func formatASSTimestamp(seconds float64) string {
	hours := int(seconds / 3600)
	minutes := int((seconds - float64(hours*3600)) / 60)
	secs := int(seconds) % 60
	centisecs := int((seconds - float64(int(seconds))) * 100)

	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, secs, centisecs)
}
