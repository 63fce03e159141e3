package render

const (
	// Output encoding
	VideoWidth   = 1080
	VideoHeight  = 1920
	VideoCodec   = "libx264"
	AudioCodec   = "aac"
	AudioBitrate = "192k"
	VideoPreset  = "fast"

	// Caption styling
	CaptionFontSize = 64

	// Caption positions accepted on the wire
	PositionTop    = "top"
	PositionBottom = "bottom"
)
