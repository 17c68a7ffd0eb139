// Package canvas holds the ad-creative document model: an ordered list of
// elements painted bottom to top, a background, a colour palette and the
// canvas size in pixels.
package canvas

import "slices"

// Kind is the closed set of element kinds a document can hold.
type Kind string

const (
	KindLogo     Kind = "logo"
	KindHeadline Kind = "headline"
	KindSubtext  Kind = "subtext"
	KindCta      Kind = "cta"
	KindPackshot Kind = "packshot"
	KindImage    Kind = "image"
	KindRect     Kind = "rect"
	KindCircle   Kind = "circle"
	KindTriangle Kind = "triangle"
	KindLine     Kind = "line"
	KindText     Kind = "text"
	KindGroup    Kind = "group"
	KindOther    Kind = "other"
)

// IsShape reports whether k is one of the basic vector shapes.
func (k Kind) IsShape() bool {
	switch k {
	case KindRect, KindCircle, KindTriangle, KindLine:
		return true
	}
	return false
}

// IsImage reports whether k is a raster image.
func (k Kind) IsImage() bool {
	return k == KindImage
}

// IsText reports whether k renders text.
func (k Kind) IsText() bool {
	switch k {
	case KindText, KindHeadline, KindSubtext:
		return true
	}
	return false
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindLogo, KindHeadline, KindSubtext, KindCta, KindPackshot, KindImage,
		KindRect, KindCircle, KindTriangle, KindLine, KindText, KindGroup, KindOther:
		return true
	}
	return false
}

// GeometryMode selects how a Geometry is interpreted.
type GeometryMode string

const (
	// Absolute geometry is in canvas pixels. The zero value is absolute.
	Absolute GeometryMode = "absolute"

	// Relative geometry holds fractions (0.0-1.0) of the canvas size.
	Relative GeometryMode = "relative"
)

const (
	// DefaultWidth and DefaultHeight stand in for unset element dimensions.
	DefaultWidth  = 100.0
	DefaultHeight = 50.0
)

// Geometry positions an element on the canvas. Boxed elements use
// Left/Top/Width/Height/ScaleX/ScaleY (absolute) or X/Y/W/H (relative).
// Lines carry their endpoints instead.
type Geometry struct {
	Mode GeometryMode `json:"mode,omitempty"`

	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	ScaleX float64 `json:"scaleX,omitempty"`
	ScaleY float64 `json:"scaleY,omitempty"`
	Angle  float64 `json:"angle,omitempty"`
	FlipX  bool    `json:"flipX,omitempty"`
	FlipY  bool    `json:"flipY,omitempty"`

	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`
	W float64 `json:"w,omitempty"`
	H float64 `json:"h,omitempty"`

	X1 float64 `json:"x1,omitempty"`
	Y1 float64 `json:"y1,omitempty"`
	X2 float64 `json:"x2,omitempty"`
	Y2 float64 `json:"y2,omitempty"`
}

// IsRelative reports whether the geometry is expressed in canvas fractions.
func (g Geometry) IsRelative() bool {
	return g.Mode == Relative
}

// Scale returns the effective horizontal and vertical scale factors.
func (g Geometry) Scale() (float64, float64) {
	sx, sy := g.ScaleX, g.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	return sx, sy
}

// ScaledWidth is the rendered width in pixels.
func (g Geometry) ScaledWidth() float64 {
	w := g.Width
	if w <= 0 {
		w = DefaultWidth
	}
	sx, _ := g.Scale()
	return w * sx
}

// ScaledHeight is the rendered height in pixels.
func (g Geometry) ScaledHeight() float64 {
	h := g.Height
	if h <= 0 {
		h = DefaultHeight
	}
	_, sy := g.Scale()
	return h * sy
}

// Style carries the paint and interaction attributes of an element.
type Style struct {
	Fill        string  `json:"fill,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	FontFamily  string  `json:"fontFamily,omitempty"`
	FontSize    float64 `json:"fontSize,omitempty"`
	FontWeight  string  `json:"fontWeight,omitempty"`
	TextAlign   string  `json:"textAlign,omitempty"`

	// Opacity is a fraction in [0, 1]; nil means fully opaque.
	Opacity *float64 `json:"opacity,omitempty"`

	Hidden bool `json:"hidden,omitempty"`

	LockMovementX bool `json:"lockMovementX,omitempty"`
	LockMovementY bool `json:"lockMovementY,omitempty"`
	LockRotation  bool `json:"lockRotation,omitempty"`
	LockScalingX  bool `json:"lockScalingX,omitempty"`
	LockScalingY  bool `json:"lockScalingY,omitempty"`
}

// OpacityFraction returns the opacity in [0, 1].
func (s Style) OpacityFraction() float64 {
	if s.Opacity == nil {
		return 1
	}
	return *s.Opacity
}

// OpacityPercent returns the opacity as an integer percentage.
func (s Style) OpacityPercent() int {
	return int(s.OpacityFraction()*100 + 0.5)
}

// SetOpacityPercent stores a 0-100 percentage as a fraction, clamping out of
// range values.
func (s *Style) SetOpacityPercent(percent int) {
	percent = max(0, min(100, percent))
	f := float64(percent) / 100
	s.Opacity = &f
}

// Lock freezes movement, rotation and scaling together.
func (s *Style) Lock() {
	s.setLocks(true)
}

// Unlock releases every lock flag.
func (s *Style) Unlock() {
	s.setLocks(false)
}

func (s *Style) setLocks(v bool) {
	s.LockMovementX = v
	s.LockMovementY = v
	s.LockRotation = v
	s.LockScalingX = v
	s.LockScalingY = v
}

// Locked reports whether the element cannot be moved.
func (s Style) Locked() bool {
	return s.LockMovementX && s.LockMovementY
}

// Element is one drawable item. Key is assigned by the owning Document and
// is unique within it; ID is the optional semantic id used as a
// classification hint and as an action target.
type Element struct {
	Key      string    `json:"key"`
	ID       string    `json:"id,omitempty"`
	Kind     Kind      `json:"kind"`
	Text     string    `json:"text,omitempty"`
	Src      string    `json:"src,omitempty"`
	Geometry Geometry  `json:"geometry"`
	Style    Style     `json:"style"`
	Children []Element `json:"children,omitempty"`
}

// Clone returns a deep copy of the element.
func (e Element) Clone() Element {
	out := e
	if e.Style.Opacity != nil {
		o := *e.Style.Opacity
		out.Style.Opacity = &o
	}
	if e.Children != nil {
		out.Children = make([]Element, len(e.Children))
		for i, c := range e.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// Translate moves the element, its line endpoints and its children by
// (dx, dy) pixels.
func (e *Element) Translate(dx, dy float64) {
	e.Geometry.Left += dx
	e.Geometry.Top += dy
	if e.Kind == KindLine {
		e.Geometry.X1 += dx
		e.Geometry.X2 += dx
		e.Geometry.Y1 += dy
		e.Geometry.Y2 += dy
	}
	for i := range e.Children {
		e.Children[i].Translate(dx, dy)
	}
}

// Visible reports whether the element is painted.
func (e Element) Visible() bool {
	return !e.Style.Hidden
}

// LayerName is the human label for an element in the layer list: its id,
// falling back to its text and then its kind.
func (e Element) LayerName() string {
	switch {
	case e.ID != "":
		return e.ID
	case e.Text != "":
		r := []rune(e.Text)
		if len(r) > 24 {
			return string(r[:24]) + "…"
		}
		return e.Text
	default:
		return string(e.Kind)
	}
}

func cloneElements(in []Element) []Element {
	if in == nil {
		return nil
	}
	out := make([]Element, len(in))
	for i, e := range in {
		out[i] = e.Clone()
	}
	return out
}

func indexOf(elements []Element, key string) int {
	return slices.IndexFunc(elements, func(e Element) bool { return e.Key == key })
}
