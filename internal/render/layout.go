package render

// Fixed layout of the thumbnail canvas, in pixels.
const (
	CanvasWidth  = 800
	CanvasHeight = 1000

	AvatarSize = 300
	AvatarTop  = 50

	TitleY      = 400
	DetailsY    = 480
	PercentageY = 650
	SynopsisY   = 750

	BarWidth  = 400
	BarHeight = 20
	BarTop    = 690
	BarStroke = 2

	SynopsisWrapWidth = 40
	BrandingMargin    = 20

	// lineGap is the extra space between lines of a multi-line block.
	lineGap = 4
)

// Font sizes in points, one per text element.
const (
	TitleSize      = 40
	DetailsSize    = 18
	PercentageSize = 36
	SynopsisSize   = 16
	BrandingSize   = 20
)

// BarLeft is the x coordinate of the progress bar's left edge.
const BarLeft = CanvasWidth/2 - BarWidth/2

// ProgressFill returns the filled width of the progress bar for a percentage,
// truncated to whole pixels and clamped to [0, BarWidth].
func ProgressFill(percentage int) int {
	if percentage <= 0 {
		return 0
	}
	if percentage >= 100 {
		return BarWidth
	}
	return BarWidth * percentage / 100
}
