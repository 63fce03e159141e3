// Package timeline converts measured clip durations into frame-accurate
// placement. The same computation backs preview playback and the final
// render submission.
package timeline

import (
	"fmt"
	"math"

	"clipstudio/errs"
)

// FPS is the fixed frame rate shared by preview and render. Changing it on
// one side only desynchronizes playback.
const FPS = 30

// ClipInput is an uploaded video asset with a measured duration.
type ClipInput struct {
	Src      string
	Duration float64 // seconds
}

// AudioInput is the optional audio track.
type AudioInput struct {
	Src      string
	Duration float64 // seconds
}

// Clip is a video asset placed on the timeline.
type Clip struct {
	Src              string `json:"src"`
	StartFrame       int    `json:"startFrame"`
	DurationInFrames int    `json:"durationInFrames"`
}

// Audio is the scheduled audio track, always starting at frame 0 and never
// extending past the video timeline.
type Audio struct {
	Src              string `json:"src"`
	StartFrom        int    `json:"startFrom"`
	DurationInFrames int    `json:"durationInFrames"`
}

// Timeline is the assembled, frame-accurate arrangement.
type Timeline struct {
	Clips                 []Clip `json:"clips"`
	Audio                 *Audio `json:"audio,omitempty"`
	FPS                   int    `json:"fps"`
	TotalDurationInFrames int    `json:"totalDurationInFrames"`
}

// TotalSeconds returns the timeline length in seconds at the fixed rate.
func (t *Timeline) TotalSeconds() float64 {
	return float64(t.TotalDurationInFrames) / float64(t.FPS)
}

// ErrNothingToRender is returned for an empty clip list. Callers must not
// submit a degenerate render request.
var ErrNothingToRender = errs.New(errs.KindValidation, "nothing to render")

// Assemble lays clips out back-to-back from frame 0. Each clip occupies
// ceil(duration*FPS) frames; rounding up guarantees no clip loses its final
// partial frame. Assemble is a pure function of its input.
func Assemble(clips []ClipInput, audio *AudioInput) (*Timeline, error) {
	if len(clips) == 0 {
		return nil, ErrNothingToRender
	}

	out := &Timeline{
		Clips: make([]Clip, 0, len(clips)),
		FPS:   FPS,
	}

	cursor := 0
	for i, c := range clips {
		if c.Duration <= 0 || math.IsInf(c.Duration, 0) || math.IsNaN(c.Duration) {
			return nil, errs.New(errs.KindValidation,
				fmt.Sprintf("clip %d has unusable duration %v", i, c.Duration))
		}
		frames := SecondsToFrames(c.Duration)
		out.Clips = append(out.Clips, Clip{
			Src:              c.Src,
			StartFrame:       cursor,
			DurationInFrames: frames,
		})
		cursor += frames
	}
	out.TotalDurationInFrames = cursor

	if audio != nil && audio.Src != "" {
		frames := SecondsToFrames(audio.Duration)
		if frames > cursor {
			frames = cursor
		}
		out.Audio = &Audio{
			Src:              audio.Src,
			StartFrom:        0,
			DurationInFrames: frames,
		}
	}

	return out, nil
}

// SecondsToFrames converts a second offset to frames, rounding up.
func SecondsToFrames(seconds float64) int {
	return int(math.Ceil(seconds * FPS))
}
