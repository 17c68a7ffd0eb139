package editor

import (
	"fmt"
	"slices"

	"github.com/adgenius/adgen/pkg/canvas"
	"github.com/adgenius/adgen/pkg/classify"
)

// PasteOffset shifts pasted and duplicated elements so they don't cover the
// original.
const PasteOffset = 20.0

// Shape defaults of the toolbar.
const (
	shapeLeft      = 100.0
	shapeTop       = 100.0
	rectWidth      = 100.0
	rectHeight     = 80.0
	circleDiameter = 100.0
	triangleSize   = 100.0
	lineStroke     = 3.0
)

// ElementPatch is a partial update of an element's user-editable
// attributes. Nil fields are left untouched.
type ElementPatch struct {
	Text        *string  `json:"text,omitempty"`
	Left        *float64 `json:"left,omitempty"`
	Top         *float64 `json:"top,omitempty"`
	Width       *float64 `json:"width,omitempty"`
	Height      *float64 `json:"height,omitempty"`
	Angle       *float64 `json:"angle,omitempty"`
	Fill        *string  `json:"fill,omitempty"`
	Stroke      *string  `json:"stroke,omitempty"`
	StrokeWidth *float64 `json:"strokeWidth,omitempty"`
	FontFamily  *string  `json:"fontFamily,omitempty"`
	FontSize    *float64 `json:"fontSize,omitempty"`
	FontWeight  *string  `json:"fontWeight,omitempty"`
	TextAlign   *string  `json:"textAlign,omitempty"`
}

// Layer is one row of the layer list, top-most first.
type Layer struct {
	Key      string        `json:"key"`
	Name     string        `json:"name"`
	Kind     canvas.Kind   `json:"kind"`
	Role     classify.Role `json:"role"`
	Visible  bool          `json:"visible"`
	Locked   bool          `json:"locked"`
	Selected bool          `json:"selected"`
}

// Layers lists the document's elements top-most first.
func (s *Session) Layers() ([]Layer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return nil, canvas.ErrDisposed
	}

	out := make([]Layer, 0, s.doc.Len())
	for i := len(s.doc.Elements) - 1; i >= 0; i-- {
		e := s.doc.Elements[i]
		out = append(out, Layer{
			Key:      e.Key,
			Name:     e.LayerName(),
			Kind:     e.Kind,
			Role:     classify.Classify(e),
			Visible:  e.Visible(),
			Locked:   e.Style.Locked(),
			Selected: slices.Contains(s.doc.Selection, e.Key),
		})
	}
	return out, nil
}

// AddShape adds a basic shape with the toolbar defaults, coloured from the
// palette, and selects it.
func (s *Session) AddShape(kind canvas.Kind) (string, error) {
	if !kind.IsShape() {
		return "", fmt.Errorf("not a shape: %q", kind)
	}

	var key string
	_, err := s.mutate("add_shape", func(doc *canvas.Document) bool {
		key = doc.Add(newShape(kind, doc.Palette))
		doc.Select(key)
		return true
	})
	return key, err
}

func newShape(kind canvas.Kind, p canvas.Palette) canvas.Element {
	e := canvas.Element{
		Kind: kind,
		Geometry: canvas.Geometry{
			Left: shapeLeft,
			Top:  shapeTop,
		},
	}

	switch kind {
	case canvas.KindRect:
		e.Geometry.Width, e.Geometry.Height = rectWidth, rectHeight
		e.Style.Fill = p.Primary
	case canvas.KindCircle:
		e.Geometry.Width, e.Geometry.Height = circleDiameter, circleDiameter
		e.Style.Fill = p.Secondary
	case canvas.KindTriangle:
		e.Geometry.Width, e.Geometry.Height = triangleSize, triangleSize
		e.Style.Fill = p.Primary
	case canvas.KindLine:
		e.Geometry = canvas.Geometry{Left: 50, Top: 100, X1: 50, Y1: 100, X2: 200, Y2: 100}
		e.Style.Stroke = p.Text
		e.Style.StrokeWidth = lineStroke
	}
	return e
}

// SetBackground sets the canvas background colour.
func (s *Session) SetBackground(color string) error {
	_, err := s.mutate("set_background", func(doc *canvas.Document) bool {
		if doc.Background == color {
			return false
		}
		doc.Background = color
		return true
	})
	return err
}

// Update applies a patch to one element.
func (s *Session) Update(key string, patch ElementPatch) (bool, error) {
	return s.mutate("update", func(doc *canvas.Document) bool {
		return doc.Update(key, func(e *canvas.Element) { patch.apply(e) })
	})
}

func (p ElementPatch) apply(e *canvas.Element) {
	set(&e.Text, p.Text)
	set(&e.Geometry.Width, p.Width)
	set(&e.Geometry.Height, p.Height)
	set(&e.Geometry.Angle, p.Angle)
	set(&e.Style.Fill, p.Fill)
	set(&e.Style.Stroke, p.Stroke)
	set(&e.Style.StrokeWidth, p.StrokeWidth)
	set(&e.Style.FontFamily, p.FontFamily)
	set(&e.Style.FontSize, p.FontSize)
	set(&e.Style.FontWeight, p.FontWeight)
	set(&e.Style.TextAlign, p.TextAlign)

	if p.Left != nil || p.Top != nil {
		left, top := e.Geometry.Left, e.Geometry.Top
		set(&left, p.Left)
		set(&top, p.Top)
		e.Translate(left-e.Geometry.Left, top-e.Geometry.Top)
	}
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Move drags an element to a new position. Locked elements don't move.
func (s *Session) Move(key string, left, top float64) (bool, error) {
	return s.mutate("move", func(doc *canvas.Document) bool {
		e, ok := doc.Element(key)
		if !ok || e.Style.Locked() {
			return false
		}
		return doc.Update(key, func(e *canvas.Element) {
			e.Translate(left-e.Geometry.Left, top-e.Geometry.Top)
		})
	})
}

// Select replaces the selection.
func (s *Session) Select(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return canvas.ErrDisposed
	}
	s.doc.Select(keys...)
	return nil
}

// SelectAll selects every element.
func (s *Session) SelectAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return canvas.ErrDisposed
	}
	s.doc.SelectAll()
	return nil
}

// ClearSelection empties the selection.
func (s *Session) ClearSelection() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return canvas.ErrDisposed
	}
	s.doc.ClearSelection()
	return nil
}

// DeleteSelected removes every selected element.
func (s *Session) DeleteSelected() (bool, error) {
	return s.mutate("delete", func(doc *canvas.Document) bool {
		sel := slices.Clone(doc.Selection)
		removed := false
		for _, key := range sel {
			removed = doc.Remove(key) || removed
		}
		return removed
	})
}

// Copy puts the top-most selected element on the clipboard.
func (s *Session) Copy() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return false, canvas.ErrDisposed
	}
	return s.copySelected(), nil
}

// copySelected must be called with s.mu held.
func (s *Session) copySelected() bool {
	sel := s.doc.Selected()
	if len(sel) == 0 {
		return false
	}
	e := sel[len(sel)-1]
	s.clipboard = &e
	return true
}

// Cut copies the top-most selected element and removes it.
func (s *Session) Cut() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return false, canvas.ErrDisposed
	}
	if !s.copySelected() {
		return false, nil
	}

	out := s.doc.Clone()
	out.Remove(s.clipboard.Key)
	return true, s.commit("cut", out)
}

// Paste inserts the clipboard element offset from its source and selects
// it. Repeated pastes cascade.
func (s *Session) Paste() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return "", canvas.ErrDisposed
	}
	if s.clipboard == nil {
		return "", nil
	}

	e := s.clipboard.Clone()
	e.Key = ""
	e.Translate(PasteOffset, PasteOffset)
	s.clipboard.Translate(PasteOffset, PasteOffset)

	out := s.doc.Clone()
	key := out.Add(e)
	out.Select(key)
	return key, s.commit("paste", out)
}

// Duplicate copies the top-most selected element in place without touching
// the clipboard.
func (s *Session) Duplicate() (string, error) {
	var key string
	_, err := s.mutate("duplicate", func(doc *canvas.Document) bool {
		sel := doc.Selected()
		if len(sel) == 0 {
			return false
		}
		e := sel[len(sel)-1]
		e.Key = ""
		e.Translate(PasteOffset, PasteOffset)
		key = doc.Add(e)
		doc.Select(key)
		return true
	})
	return key, err
}

// BringToFront moves an element to the top layer.
func (s *Session) BringToFront(key string) (bool, error) {
	return s.reorder("bring_to_front", key, (*canvas.Document).BringToFront)
}

// SendToBack moves an element to the bottom layer.
func (s *Session) SendToBack(key string) (bool, error) {
	return s.reorder("send_to_back", key, (*canvas.Document).SendToBack)
}

// BringForward moves an element one layer up.
func (s *Session) BringForward(key string) (bool, error) {
	return s.reorder("bring_forward", key, (*canvas.Document).BringForward)
}

// SendBackward moves an element one layer down.
func (s *Session) SendBackward(key string) (bool, error) {
	return s.reorder("send_backward", key, (*canvas.Document).SendBackward)
}

func (s *Session) reorder(op, key string, move func(*canvas.Document, string) bool) (bool, error) {
	return s.mutate(op, func(doc *canvas.Document) bool {
		before := doc.IndexOf(key)
		return move(doc, key) && doc.IndexOf(key) != before
	})
}

// ToggleVisibility shows or hides an element.
func (s *Session) ToggleVisibility(key string) (bool, error) {
	return s.mutate("toggle_visibility", func(doc *canvas.Document) bool {
		return doc.Update(key, func(e *canvas.Element) { e.Style.Hidden = !e.Style.Hidden })
	})
}

// ToggleLock locks or unlocks movement, rotation and scaling together.
func (s *Session) ToggleLock(key string) (bool, error) {
	return s.mutate("toggle_lock", func(doc *canvas.Document) bool {
		return doc.Update(key, func(e *canvas.Element) {
			if e.Style.Locked() {
				e.Style.Unlock()
			} else {
				e.Style.Lock()
			}
		})
	})
}

// SetOpacity sets an element's opacity as a 0-100 percentage.
func (s *Session) SetOpacity(key string, percent int) (bool, error) {
	return s.mutate("set_opacity", func(doc *canvas.Document) bool {
		return doc.Update(key, func(e *canvas.Element) { e.Style.SetOpacityPercent(percent) })
	})
}

// Clear removes every element. It is undoable; image loads still in
// flight are dropped.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return canvas.ErrDisposed
	}

	out := s.doc.Clone()
	out.Clear()
	s.generation++
	return s.commit("clear", out)
}
