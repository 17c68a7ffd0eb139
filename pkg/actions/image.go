package actions

import "github.com/adgenius/adgen/pkg/canvas"

const (
	// DefaultImageWidth is the rendered width of a new image when the
	// request names none.
	DefaultImageWidth = 200.0

	// MaxImageFraction caps a new image at this share of the canvas width.
	MaxImageFraction = 0.8

	PlaceholderSize   = 150.0
	PlaceholderFill   = "#f0f0f0"
	PlaceholderStroke = "#cccccc"
)

// ImageRequest is an image load scheduled by an AddImage action. It moves
// from pending to resolved (ImageElement) or failed (Placeholder); both are
// terminal.
type ImageRequest struct {
	URL          string  `json:"url"`
	Left         float64 `json:"left"`
	Top          float64 `json:"top"`
	ScaleToWidth float64 `json:"scaleToWidth,omitempty"`
}

// ImageElement builds the element for a resolved image of the given
// intrinsic size, scaled uniformly to the requested width.
func ImageElement(req ImageRequest, width, height, canvasWidth int) canvas.Element {
	target := req.ScaleToWidth
	if target <= 0 {
		target = DefaultImageWidth
	}
	target = min(target, float64(canvasWidth)*MaxImageFraction)

	scale := 1.0
	if width > 0 {
		scale = target / float64(width)
	}

	return canvas.Element{
		Kind: canvas.KindImage,
		Src:  req.URL,
		Geometry: canvas.Geometry{
			Left:   req.Left,
			Top:    req.Top,
			Width:  float64(width),
			Height: float64(height),
			ScaleX: scale,
			ScaleY: scale,
		},
	}
}

// Placeholder builds the neutral grey box substituted for an image that
// failed to load.
func Placeholder(req ImageRequest) canvas.Element {
	return canvas.Element{
		Kind: canvas.KindRect,
		Geometry: canvas.Geometry{
			Left:   req.Left,
			Top:    req.Top,
			Width:  PlaceholderSize,
			Height: PlaceholderSize,
		},
		Style: canvas.Style{
			Fill:        PlaceholderFill,
			Stroke:      PlaceholderStroke,
			StrokeWidth: 2,
		},
	}
}
