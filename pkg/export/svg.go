package export

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/adgenius/adgen/pkg/canvas"
)

// SVG renders doc as a standalone SVG document. Relative geometry is
// resolved against the canvas size and hidden elements are skipped.
func SVG(doc *canvas.Document) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("document is nil")
	}

	d := doc.Clone()
	d.Materialize()

	w, h := formatFloat(float64(d.Width)), formatFloat(float64(d.Height))

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="%s" height="%s" viewBox="0 0 %s %s">`,
		w, h, w, h)
	b.WriteString("\n")
	fmt.Fprintf(&b, `  <rect width="100%%" height="100%%" fill="%s"/>`, attr(d.Background))
	b.WriteString("\n")

	for _, e := range d.Elements {
		renderElement(&b, e, 1)
	}

	b.WriteString(`</svg>`)
	return b.String(), nil
}

func renderElement(b *strings.Builder, e canvas.Element, depth int) {
	if !e.Visible() {
		return
	}

	indent := strings.Repeat("  ", depth)
	g := e.Geometry

	var shape string
	switch {
	case e.Kind == canvas.KindGroup:
		fmt.Fprintf(b, "%s<g%s%s>\n", indent, rotation(e), opacity(e.Style))
		for _, c := range e.Children {
			renderElement(b, c, depth+1)
		}
		fmt.Fprintf(b, "%s</g>\n", indent)
		return

	case e.Kind == canvas.KindLine:
		st := e.Style
		if st.Stroke == "" {
			st.Stroke = "#000000"
		}
		shape = fmt.Sprintf(`<line x1="%s" y1="%s" x2="%s" y2="%s"%s/>`,
			formatFloat(g.X1), formatFloat(g.Y1), formatFloat(g.X2), formatFloat(g.Y2), paint(st, ""))

	case e.Kind == canvas.KindCircle:
		rx, ry := g.ScaledWidth()/2, g.ScaledHeight()/2
		shape = fmt.Sprintf(`<ellipse cx="%s" cy="%s" rx="%s" ry="%s"%s/>`,
			formatFloat(g.Left+rx), formatFloat(g.Top+ry), formatFloat(rx), formatFloat(ry), paint(e.Style, "#000000"))

	case e.Kind == canvas.KindTriangle:
		w, h := g.ScaledWidth(), g.ScaledHeight()
		shape = fmt.Sprintf(`<polygon points="%s,%s %s,%s %s,%s"%s/>`,
			formatFloat(g.Left+w/2), formatFloat(g.Top),
			formatFloat(g.Left+w), formatFloat(g.Top+h),
			formatFloat(g.Left), formatFloat(g.Top+h),
			paint(e.Style, "#000000"))

	case e.Kind.IsImage() || e.Src != "":
		shape = fmt.Sprintf(`<image x="%s" y="%s" width="%s" height="%s" xlink:href="%s" preserveAspectRatio="none"/>`,
			formatFloat(g.Left), formatFloat(g.Top), formatFloat(g.ScaledWidth()), formatFloat(g.ScaledHeight()), attr(e.Src))

	case e.Kind.IsText() || e.Text != "":
		shape = textElement(e)

	default:
		shape = fmt.Sprintf(`<rect x="%s" y="%s" width="%s" height="%s"%s/>`,
			formatFloat(g.Left), formatFloat(g.Top), formatFloat(g.ScaledWidth()), formatFloat(g.ScaledHeight()),
			paint(e.Style, "#000000"))
	}

	fmt.Fprintf(b, "%s<g%s%s>%s</g>\n", indent, rotation(e), opacity(e.Style), shape)
}

func textElement(e canvas.Element) string {
	g := e.Geometry
	size := e.Style.FontSize
	if size <= 0 {
		size = 20
	}
	fill := e.Style.Fill
	if fill == "" {
		fill = canvas.DefaultTextColor
	}

	x, anchor := g.Left, "start"
	switch e.Style.TextAlign {
	case "center":
		x, anchor = g.Left+g.ScaledWidth()/2, "middle"
	case "right":
		x, anchor = g.Left+g.ScaledWidth(), "end"
	}

	var attrs strings.Builder
	fmt.Fprintf(&attrs, ` x="%s" y="%s" font-size="%s" fill="%s" dominant-baseline="hanging" text-anchor="%s"`,
		formatFloat(x), formatFloat(g.Top), formatFloat(size), attr(fill), anchor)
	if e.Style.FontFamily != "" {
		fmt.Fprintf(&attrs, ` font-family="%s"`, attr(e.Style.FontFamily))
	}
	if e.Style.FontWeight != "" {
		fmt.Fprintf(&attrs, ` font-weight="%s"`, attr(e.Style.FontWeight))
	}

	var text strings.Builder
	_ = xml.EscapeText(&text, []byte(e.Text))
	return "<text" + attrs.String() + ">" + text.String() + "</text>"
}

func paint(s canvas.Style, defaultFill string) string {
	var b strings.Builder
	fill := s.Fill
	if fill == "" {
		fill = defaultFill
	}
	if fill == "" {
		fill = "none"
	}
	fmt.Fprintf(&b, ` fill="%s"`, attr(fill))
	if s.Stroke != "" {
		fmt.Fprintf(&b, ` stroke="%s"`, attr(s.Stroke))
		width := s.StrokeWidth
		if width <= 0 {
			width = 1
		}
		fmt.Fprintf(&b, ` stroke-width="%s"`, formatFloat(width))
	}
	return b.String()
}

func opacity(s canvas.Style) string {
	if s.Opacity == nil {
		return ""
	}
	return fmt.Sprintf(` opacity="%s"`, formatFloat(s.OpacityFraction()))
}

// rotation rotates about the element's centre.
func rotation(e canvas.Element) string {
	g := e.Geometry
	if g.Angle == 0 {
		return ""
	}
	cx := g.Left + g.ScaledWidth()/2
	cy := g.Top + g.ScaledHeight()/2
	return fmt.Sprintf(` transform="rotate(%s %s %s)"`, formatFloat(g.Angle), formatFloat(cx), formatFloat(cy))
}

func attr(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func formatFloat(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}
