package actions

import (
	"log/slog"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/adgenius/adgen/pkg/canvas"
	"github.com/adgenius/adgen/pkg/classify"
)

const (
	// DefaultTextLeft and DefaultTextTop place new text and images when the
	// action gives no position.
	DefaultTextLeft = 100.0
	DefaultTextTop  = 100.0

	DefaultFontSize   = 24.0
	DefaultFontFamily = "Arial"
)

// Result reports what Apply did.
type Result struct {
	Applied int `json:"applied"`
	Ignored int `json:"ignored"`

	// Added holds the keys of elements appended synchronously.
	Added []string `json:"added,omitempty"`

	// Pending holds image loads the caller must schedule.
	Pending []ImageRequest `json:"pending,omitempty"`
}

// Changed reports whether the document was modified.
func (r Result) Changed() bool {
	return r.Applied > 0
}

// Applicator applies actions to documents.
type Applicator struct {
	logger *slog.Logger
}

// NewApplicator returns an Applicator logging to logger.
func NewApplicator(logger *slog.Logger) *Applicator {
	return &Applicator{logger: logger}
}

// Apply runs acts against a copy of doc in order and returns the copy.
// Actions whose target matches nothing are ignored. AddImage actions do
// not touch the document; they are returned in Result.Pending.
func (a *Applicator) Apply(doc *canvas.Document, acts []Action) (*canvas.Document, Result) {
	out := doc.Clone()
	var res Result

	for _, act := range acts {
		switch v := act.(type) {
		case Layout:
			key, ok := Resolve(out, v.Target)
			if !ok {
				a.ignored(&res, act, v.Target)
				continue
			}
			out.MaterializeElement(key)
			out.Update(key, func(e *canvas.Element) {
				applyLayout(e, v.Changes, out.Width, out.Height)
			})
			res.Applied++

		case Color:
			applyColor(out, v.Changes)
			res.Applied++

		case Copy:
			key, ok := Resolve(out, v.Target)
			if !ok {
				a.ignored(&res, act, v.Target)
				continue
			}
			out.Update(key, func(e *canvas.Element) { e.Text = v.Text })
			res.Applied++

		case AddText:
			key := out.Add(textElement(v, out.Palette))
			out.Select(key)
			res.Added = append(res.Added, key)
			res.Applied++

		case AddImage:
			res.Pending = append(res.Pending, ImageRequest{
				URL:          v.URL,
				Left:         valueOr(v.Options.Left, DefaultTextLeft),
				Top:          valueOr(v.Options.Top, DefaultTextTop),
				ScaleToWidth: v.Options.ScaleToWidth,
			})

		default:
			a.ignored(&res, act, "")
		}
	}

	return out, res
}

func (a *Applicator) ignored(res *Result, act Action, target string) {
	res.Ignored++
	a.logger.Debug("action matched nothing", "type", act.Type(), "target", target)
}

// Resolve finds the element an action target refers to: the first element
// whose id equals target, else the first whose role is named by target,
// else the first whose kind is named by target. Document order decides
// between several candidates.
func Resolve(doc *canvas.Document, target string) (string, bool) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", false
	}

	for _, e := range doc.Elements {
		if strings.EqualFold(e.ID, target) {
			return e.Key, true
		}
	}

	if role, ok := classify.ParseRole(target); ok {
		for _, e := range doc.Elements {
			if classify.Classify(e) == role {
				return e.Key, true
			}
		}
	}

	kind := canvas.Kind(strings.ToLower(target))
	for _, e := range doc.Elements {
		if e.Kind == kind {
			return e.Key, true
		}
	}
	return "", false
}

func applyLayout(e *canvas.Element, c LayoutChanges, canvasW, canvasH int) {
	g := &e.Geometry

	if c.Scale != nil {
		sx, sy := g.Scale()
		g.ScaleX, g.ScaleY = sx*(*c.Scale), sy*(*c.Scale)
	}
	if c.Width != nil {
		g.Width = *c.Width
		g.ScaleX = 1
	}
	if c.Height != nil {
		g.Height = *c.Height
		g.ScaleY = 1
	}

	left, top := g.Left, g.Top
	if c.X != nil {
		left = *c.X*float64(canvasW) - g.ScaledWidth()/2
	}
	if c.Y != nil {
		top = *c.Y*float64(canvasH) - g.ScaledHeight()/2
	}
	if c.Left != nil {
		left = *c.Left
	}
	if c.Top != nil {
		top = *c.Top
	}
	if left != g.Left || top != g.Top {
		e.Translate(left-g.Left, top-g.Top)
	}

	if c.Visible != nil {
		e.Style.Hidden = !*c.Visible
	}
	if c.Opacity != nil {
		e.Style.SetOpacityPercent(int(math.Round(*c.Opacity)))
	}
	if c.Locked != nil {
		if *c.Locked {
			e.Style.Lock()
		} else {
			e.Style.Unlock()
		}
	}
}

func applyColor(doc *canvas.Document, changes map[string]string) {
	for k, v := range changes {
		switch k {
		case ColorBackground:
			doc.Background = v
		case ColorPrimary:
			doc.Palette.Primary = v
		case ColorSecondary:
			doc.Palette.Secondary = v
		case ColorText:
			doc.Palette.Text = v
		}
	}
}

func textElement(a AddText, p canvas.Palette) canvas.Element {
	size := a.Options.FontSize
	if size == 0 {
		size = DefaultFontSize
	}
	fill := a.Options.Fill
	if fill == "" {
		fill = p.Text
	}
	if fill == "" {
		fill = canvas.DefaultTextColor
	}
	family := a.Options.FontFamily
	if family == "" {
		family = DefaultFontFamily
	}

	return canvas.Element{
		Kind: canvas.KindText,
		Text: a.Text,
		Geometry: canvas.Geometry{
			Left:   valueOr(a.Options.Left, DefaultTextLeft),
			Top:    valueOr(a.Options.Top, DefaultTextTop),
			Width:  EstimateTextWidth(a.Text, size),
			Height: size * lineHeight,
		},
		Style: canvas.Style{
			Fill:       fill,
			FontFamily: family,
			FontSize:   size,
			FontWeight: a.Options.FontWeight,
		},
	}
}

const (
	lineHeight   = 1.16
	averageGlyph = 0.55
)

// EstimateTextWidth approximates the rendered width of a single line.
func EstimateTextWidth(text string, fontSize float64) float64 {
	return float64(utf8.RuneCountInString(text)) * fontSize * averageGlyph
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
