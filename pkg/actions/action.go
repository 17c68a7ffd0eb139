// Package actions defines the typed edits that user tools and the AI chat
// collaborator issue against a document, how they are decoded from their
// JSON wire form, and how they are applied.
package actions

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Type names an action variant on the wire.
type Type string

const (
	TypeLayout   Type = "layout"
	TypeColor    Type = "color"
	TypeCopy     Type = "copy"
	TypeAddText  Type = "addText"
	TypeAddImage Type = "addImage"
)

// Action is one of Layout, Color, Copy, AddText or AddImage.
type Action interface {
	Type() Type
	Validate() error
}

// ErrInvalidAction wraps every validation failure.
var ErrInvalidAction = errors.New("invalid action")

func invalid(t Type, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidAction, t, fmt.Sprintf(format, args...))
}

// LayoutChanges is a geometry and visibility patch. Nil fields are left
// alone. X and Y place the element's centre as a fraction of the canvas;
// Left, Top, Width and Height are pixels; Scale multiplies the current
// scale; Opacity is a 0-100 percentage.
type LayoutChanges struct {
	X       *float64 `json:"x,omitempty"`
	Y       *float64 `json:"y,omitempty"`
	Left    *float64 `json:"left,omitempty"`
	Top     *float64 `json:"top,omitempty"`
	Width   *float64 `json:"width,omitempty"`
	Height  *float64 `json:"height,omitempty"`
	Scale   *float64 `json:"scale,omitempty"`
	Visible *bool    `json:"visible,omitempty"`
	Opacity *float64 `json:"opacity,omitempty"`
	Locked  *bool    `json:"locked,omitempty"`
}

func (c LayoutChanges) empty() bool {
	return c == LayoutChanges{}
}

// Layout patches the geometry of the element matching Target.
type Layout struct {
	Target  string        `json:"target"`
	Changes LayoutChanges `json:"changes"`
}

func (Layout) Type() Type { return TypeLayout }

func (a Layout) Validate() error {
	if strings.TrimSpace(a.Target) == "" {
		return invalid(TypeLayout, "missing target")
	}
	c := a.Changes
	if c.empty() {
		return invalid(TypeLayout, "no changes")
	}
	for name, v := range map[string]*float64{
		"x": c.X, "y": c.Y, "left": c.Left, "top": c.Top,
		"width": c.Width, "height": c.Height, "scale": c.Scale, "opacity": c.Opacity,
	} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return invalid(TypeLayout, "%s is not a finite number", name)
		}
	}
	if c.X != nil && (*c.X < 0 || *c.X > 1) {
		return invalid(TypeLayout, "x must be within [0, 1]")
	}
	if c.Y != nil && (*c.Y < 0 || *c.Y > 1) {
		return invalid(TypeLayout, "y must be within [0, 1]")
	}
	if c.Scale != nil && *c.Scale <= 0 {
		return invalid(TypeLayout, "scale must be positive")
	}
	if c.Width != nil && *c.Width <= 0 {
		return invalid(TypeLayout, "width must be positive")
	}
	if c.Height != nil && *c.Height <= 0 {
		return invalid(TypeLayout, "height must be positive")
	}
	if c.Opacity != nil && (*c.Opacity < 0 || *c.Opacity > 100) {
		return invalid(TypeLayout, "opacity must be within [0, 100]")
	}
	return nil
}

// Palette keys a Color action may set.
const (
	ColorBackground = "background"
	ColorPrimary    = "primary"
	ColorSecondary  = "secondary"
	ColorText       = "text"
)

func paletteKey(k string) bool {
	switch k {
	case ColorBackground, ColorPrimary, ColorSecondary, ColorText:
		return true
	}
	return false
}

// Color patches the document palette. Unknown keys are ignored.
type Color struct {
	Changes map[string]string `json:"changes"`
}

func (Color) Type() Type { return TypeColor }

func (a Color) Validate() error {
	known := 0
	for k, v := range a.Changes {
		if !paletteKey(k) {
			continue
		}
		known++
		if !ValidColor(v) {
			return invalid(TypeColor, "%s: %q is not a colour", k, v)
		}
	}
	if known == 0 {
		return invalid(TypeColor, "no palette changes")
	}
	return nil
}

// Copy replaces the text of the element matching Target.
type Copy struct {
	Target string `json:"target"`
	Text   string `json:"text"`
}

func (Copy) Type() Type { return TypeCopy }

func (a Copy) Validate() error {
	if strings.TrimSpace(a.Target) == "" {
		return invalid(TypeCopy, "missing target")
	}
	if a.Text == "" {
		return invalid(TypeCopy, "missing text")
	}
	return nil
}

// TextOptions style a new text element. Zero values take defaults.
type TextOptions struct {
	Left       *float64 `json:"left,omitempty"`
	Top        *float64 `json:"top,omitempty"`
	FontSize   float64  `json:"fontSize,omitempty"`
	Fill       string   `json:"fill,omitempty"`
	FontFamily string   `json:"fontFamily,omitempty"`
	FontWeight string   `json:"fontWeight,omitempty"`
}

// AddText appends a new text element.
type AddText struct {
	Text    string      `json:"text"`
	Options TextOptions `json:"options"`
}

func (AddText) Type() Type { return TypeAddText }

func (a AddText) Validate() error {
	if strings.TrimSpace(a.Text) == "" {
		return invalid(TypeAddText, "missing text")
	}
	if a.Options.FontSize < 0 {
		return invalid(TypeAddText, "font size must not be negative")
	}
	if a.Options.Fill != "" && !ValidColor(a.Options.Fill) {
		return invalid(TypeAddText, "fill %q is not a colour", a.Options.Fill)
	}
	return nil
}

// ImageOptions place a new image element. ScaleToWidth is the requested
// rendered width in pixels.
type ImageOptions struct {
	Left         *float64 `json:"left,omitempty"`
	Top          *float64 `json:"top,omitempty"`
	ScaleToWidth float64  `json:"scaleToWidth,omitempty"`
}

// AddImage asynchronously appends an image loaded from URL.
type AddImage struct {
	URL     string       `json:"url"`
	Options ImageOptions `json:"options"`
}

func (AddImage) Type() Type { return TypeAddImage }

func (a AddImage) Validate() error {
	if strings.TrimSpace(a.URL) == "" {
		return invalid(TypeAddImage, "missing url")
	}
	if a.Options.ScaleToWidth < 0 {
		return invalid(TypeAddImage, "scaleToWidth must not be negative")
	}
	return nil
}

var (
	hexColor   = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	funcColor  = regexp.MustCompile(`^(rgb|rgba|hsl|hsla)\([0-9.,%\s]+\)$`)
	namedColor = regexp.MustCompile(`^[a-zA-Z]{3,20}$`)
)

// ValidColor accepts hex, rgb()/hsl() and named CSS colours.
func ValidColor(s string) bool {
	s = strings.TrimSpace(s)
	return hexColor.MatchString(s) || funcColor.MatchString(s) || namedColor.MatchString(s)
}
