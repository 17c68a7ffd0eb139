// Package layout re-flows a document onto a new canvas size by snapping each
// element into the zone that matches its classified role.
package layout

import "github.com/adgenius/adgen/pkg/classify"

// AspectClass buckets a canvas by width/height ratio.
type AspectClass string

const (
	Portrait  AspectClass = "portrait"
	Landscape AspectClass = "landscape"
	Square    AspectClass = "square"
)

const (
	portraitBelow  = 0.9
	landscapeAbove = 1.2
)

// ClassifyAspect returns the aspect class of a width x height canvas.
func ClassifyAspect(width, height int) AspectClass {
	ratio := float64(width) / float64(height)
	switch {
	case ratio < portraitBelow:
		return Portrait
	case ratio > landscapeAbove:
		return Landscape
	default:
		return Square
	}
}

// ZoneName identifies a horizontal band of the canvas.
type ZoneName string

const (
	Header     ZoneName = "header"
	Hero       ZoneName = "hero"
	Content    ZoneName = "content"
	CTA        ZoneName = "cta"
	Background ZoneName = "background"
)

// Zone is a horizontal band in canvas pixels.
type Zone struct {
	Top     float64 `json:"top"`
	Height  float64 `json:"height"`
	CenterY float64 `json:"centerY"`
}

type band struct{ top, height, center float64 }

var zoneTables = map[AspectClass]map[ZoneName]band{
	Portrait: {
		Header:  {0, 0.12, 0.06},
		Hero:    {0.12, 0.40, 0.32},
		Content: {0.52, 0.28, 0.66},
		CTA:     {0.80, 0.18, 0.89},
	},
	Landscape: {
		Header:  {0, 0.18, 0.09},
		Hero:    {0.15, 0.50, 0.40},
		Content: {0.45, 0.30, 0.60},
		CTA:     {0.75, 0.22, 0.86},
	},
	Square: {
		Header:  {0, 0.15, 0.075},
		Hero:    {0.15, 0.40, 0.35},
		Content: {0.55, 0.25, 0.675},
		CTA:     {0.80, 0.18, 0.89},
	},
}

var backgroundBand = band{0, 1, 0.5}

// Zones returns the zone map for an aspect class at the given canvas height.
func Zones(class AspectClass, height int) map[ZoneName]Zone {
	h := float64(height)
	table, ok := zoneTables[class]
	if !ok {
		table = zoneTables[Square]
	}
	out := make(map[ZoneName]Zone, len(table)+1)
	for name, b := range table {
		out[name] = Zone{Top: b.top * h, Height: b.height * h, CenterY: b.center * h}
	}
	out[Background] = Zone{Top: backgroundBand.top * h, Height: backgroundBand.height * h, CenterY: backgroundBand.center * h}
	return out
}

// ZoneFor maps a role to the zone it is laid out in.
func ZoneFor(r classify.Role) ZoneName {
	switch r {
	case classify.Logo:
		return Header
	case classify.Cta:
		return CTA
	case classify.Packshot, classify.Image:
		return Hero
	case classify.Shape:
		return Background
	default:
		return Content
	}
}
