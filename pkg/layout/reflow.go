package layout

import (
	"fmt"

	"github.com/adgenius/adgen/pkg/canvas"
	"github.com/adgenius/adgen/pkg/classify"
)

const (
	// HorizontalMargin and VerticalMargin bound where an element may land.
	HorizontalMargin = 10.0
	VerticalMargin   = 5.0

	// HeadlineOffset is the gap between the content zone top and a headline.
	HeadlineOffset = 15.0

	// Hero images wider than OversizeFraction of the new width are
	// downscaled to TargetFraction of it.
	OversizeFraction = 0.8
	TargetFraction   = 0.7
)

// Reflow lays doc out on a newWidth x newHeight canvas and returns the result.
// doc is never modified. Reflowing onto the current size returns a copy.
func Reflow(doc *canvas.Document, newWidth, newHeight int) (*canvas.Document, error) {
	if newWidth <= 0 || newHeight <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", canvas.ErrInvalidSize, newWidth, newHeight)
	}
	if doc.Width == newWidth && doc.Height == newHeight {
		return doc.Clone(), nil
	}

	src := doc.Clone()
	src.Materialize()

	out, err := src.WithSize(newWidth, newHeight)
	if err != nil {
		return nil, err
	}

	r := reflower{
		oldW:  float64(doc.Width),
		oldH:  float64(doc.Height),
		newW:  float64(newWidth),
		newH:  float64(newHeight),
		zones: Zones(ClassifyAspect(newWidth, newHeight), newHeight),
	}
	for i := range out.Elements {
		r.place(&out.Elements[i])
	}
	return out, nil
}

type reflower struct {
	oldW, oldH float64
	newW, newH float64
	zones      map[ZoneName]Zone
}

func (r reflower) place(e *canvas.Element) {
	if e.Kind == canvas.KindLine {
		r.scaleLine(e)
		return
	}

	role := classify.Classify(*e)
	g := &e.Geometry
	oldLeft, oldTop := g.Left, g.Top
	oldWidth := g.ScaledWidth()

	fx, fy := 1.0, 1.0
	switch {
	case (role == classify.Packshot || role == classify.Image) && oldWidth > OversizeFraction*r.newW:
		f := (TargetFraction * r.newW) / oldWidth
		fx, fy = f, f
	case (role == classify.Shape || role == classify.Other) && e.Kind != canvas.KindGroup:
		fx, fy = r.newW/r.oldW, r.newH/r.oldH
	}
	scaleBy(g, fx, fy)

	// Anything still larger than the area inside the margins shrinks to fit.
	if fit := r.fit(g.ScaledWidth(), g.ScaledHeight()); fit < 1 {
		scaleBy(g, fit, fit)
		fx, fy = fx*fit, fy*fit
	}
	w, h := g.ScaledWidth(), g.ScaledHeight()

	var left float64
	if role == classify.Shape {
		left = oldLeft * (r.newW / r.oldW)
	} else {
		relX := (oldLeft + oldWidth/2) / r.oldW
		left = relX*r.newW - w/2
	}

	zone := r.zones[ZoneFor(role)]
	var top float64
	switch role {
	case classify.Logo, classify.Cta, classify.Packshot, classify.Image:
		top = zone.CenterY - h/2
	case classify.Headline:
		top = zone.Top + HeadlineOffset
	case classify.Subtext:
		top = zone.CenterY
	default:
		top = oldTop * (r.newH / r.oldH)
	}

	g.Left = clamp(left, HorizontalMargin, r.newW-w-HorizontalMargin)
	g.Top = clamp(top, VerticalMargin, r.newH-h-VerticalMargin)

	if len(e.Children) > 0 {
		carryChildren(e.Children, oldLeft, oldTop, g.Left, g.Top, fx, fy)
	}
}

// fit returns the uniform factor that brings a w x h box inside the margins,
// or 1 when it already fits.
func (r reflower) fit(w, h float64) float64 {
	availW, availH := r.newW-2*HorizontalMargin, r.newH-2*VerticalMargin
	f := 1.0
	if availW > 0 && w > availW {
		f = availW / w
	}
	if availH > 0 && h*f > availH {
		f = availH / h
	}
	return f
}

func scaleBy(g *canvas.Geometry, fx, fy float64) {
	if fx == 1 && fy == 1 {
		return
	}
	sx, sy := g.Scale()
	g.ScaleX, g.ScaleY = sx*fx, sy*fy
}

func (r reflower) scaleLine(e *canvas.Element) {
	sx, sy := r.newW/r.oldW, r.newH/r.oldH
	g := &e.Geometry
	g.X1 *= sx
	g.X2 *= sx
	g.Y1 *= sy
	g.Y2 *= sy
	g.Left *= sx
	g.Top *= sy
}

// carryChildren keeps group members at the same offset from the group
// origin, scaled by the group's rescale factors.
func carryChildren(children []canvas.Element, oldLeft, oldTop, newLeft, newTop, fx, fy float64) {
	for i := range children {
		c := &children[i]
		if c.Kind == canvas.KindLine {
			c.Geometry.X1 = newLeft + (c.Geometry.X1-oldLeft)*fx
			c.Geometry.X2 = newLeft + (c.Geometry.X2-oldLeft)*fx
			c.Geometry.Y1 = newTop + (c.Geometry.Y1-oldTop)*fy
			c.Geometry.Y2 = newTop + (c.Geometry.Y2-oldTop)*fy
		}
		childLeft, childTop := c.Geometry.Left, c.Geometry.Top
		c.Geometry.Left = newLeft + (childLeft-oldLeft)*fx
		c.Geometry.Top = newTop + (childTop-oldTop)*fy
		scaleBy(&c.Geometry, fx, fy)
		if len(c.Children) > 0 {
			carryChildren(c.Children, oldLeft, oldTop, newLeft, newTop, fx, fy)
		}
	}
}

// clamp returns v bounded below by lo and above by hi. When the range is
// empty lo wins.
func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}
