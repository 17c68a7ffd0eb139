package canvas

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

const (
	// DefaultBackground is the background of a fresh document.
	DefaultBackground = "#ffffff"

	// DefaultTextColor is used for text when the palette has none.
	DefaultTextColor = "#333333"
)

// Palette is the document's named colour set. The background colour lives on
// the Document itself.
type Palette struct {
	Primary   string `json:"primary,omitempty"`
	Secondary string `json:"secondary,omitempty"`
	Text      string `json:"text,omitempty"`
}

// DefaultPalette returns the starter palette of a fresh document.
func DefaultPalette() Palette {
	return Palette{
		Primary:   "#E41C2A",
		Secondary: "#00539F",
		Text:      DefaultTextColor,
	}
}

// Document is the canvas state: Elements are in paint order, index 0 is the
// bottom-most layer. Width and Height are always positive.
type Document struct {
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Background string    `json:"background"`
	Palette    Palette   `json:"palette"`
	Elements   []Element `json:"elements"`
	Selection  []string  `json:"selection,omitempty"`

	disposed bool
}

// Snapshot is the opaque structural serialization of a Document.
type Snapshot []byte

// New returns an empty document of the given size.
func New(width, height int) (*Document, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	return &Document{
		Width:      width,
		Height:     height,
		Background: DefaultBackground,
		Palette:    DefaultPalette(),
		Elements:   []Element{},
	}, nil
}

// Clone returns a deep copy. Disposal is not carried over.
func (d *Document) Clone() *Document {
	out := &Document{
		Width:      d.Width,
		Height:     d.Height,
		Background: d.Background,
		Palette:    d.Palette,
		Elements:   cloneElements(d.Elements),
		Selection:  slices.Clone(d.Selection),
	}
	if out.Elements == nil {
		out.Elements = []Element{}
	}
	return out
}

// WithSize returns a copy of the document with a new canvas size. Element
// geometry is left untouched.
func (d *Document) WithSize(width, height int) (*Document, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	out := d.Clone()
	out.Width = width
	out.Height = height
	return out, nil
}

// Dispose tears the document down. Any later use by an editing session is a
// programming error reported as ErrDisposed.
func (d *Document) Dispose() {
	d.disposed = true
}

// Disposed reports whether Dispose was called.
func (d *Document) Disposed() bool {
	return d.disposed
}

// Len returns the number of top-level elements.
func (d *Document) Len() int {
	return len(d.Elements)
}

// Add appends e on top of every other layer and returns its key. A missing
// or colliding key is replaced with a fresh one.
func (d *Document) Add(e Element) string {
	return d.InsertAt(len(d.Elements), e)
}

// InsertAt inserts e at layer index i (clamped to the valid range).
func (d *Document) InsertAt(i int, e Element) string {
	if e.Key == "" || indexOf(d.Elements, e.Key) >= 0 {
		e.Key = uuid.NewString()
	}
	i = max(0, min(len(d.Elements), i))
	d.Elements = slices.Insert(d.Elements, i, e)
	return e.Key
}

// IndexOf returns the layer index of key, or -1.
func (d *Document) IndexOf(key string) int {
	return indexOf(d.Elements, key)
}

// Element returns a copy of the element with the given key.
func (d *Document) Element(key string) (Element, bool) {
	i := d.IndexOf(key)
	if i < 0 {
		return Element{}, false
	}
	return d.Elements[i].Clone(), true
}

// Update applies fn to the element with the given key in place.
func (d *Document) Update(key string, fn func(*Element)) bool {
	i := d.IndexOf(key)
	if i < 0 {
		return false
	}
	fn(&d.Elements[i])
	d.Elements[i].Key = key
	return true
}

// Remove deletes the element with the given key and drops it from the
// selection.
func (d *Document) Remove(key string) bool {
	i := d.IndexOf(key)
	if i < 0 {
		return false
	}
	d.Elements = slices.Delete(d.Elements, i, i+1)
	d.Selection = slices.DeleteFunc(d.Selection, func(k string) bool { return k == key })
	return true
}

// Clear removes every element and resets the background.
func (d *Document) Clear() {
	d.Elements = []Element{}
	d.Selection = nil
	d.Background = DefaultBackground
}

// BringToFront moves key to the top layer.
func (d *Document) BringToFront(key string) bool {
	return d.moveTo(key, func(int) int { return len(d.Elements) - 1 })
}

// SendToBack moves key to the bottom layer.
func (d *Document) SendToBack(key string) bool {
	return d.moveTo(key, func(int) int { return 0 })
}

// BringForward moves key one layer up.
func (d *Document) BringForward(key string) bool {
	return d.moveTo(key, func(i int) int { return i + 1 })
}

// SendBackward moves key one layer down.
func (d *Document) SendBackward(key string) bool {
	return d.moveTo(key, func(i int) int { return i - 1 })
}

func (d *Document) moveTo(key string, target func(int) int) bool {
	i := d.IndexOf(key)
	if i < 0 {
		return false
	}
	j := max(0, min(len(d.Elements)-1, target(i)))
	if i == j {
		return true
	}
	e := d.Elements[i]
	d.Elements = slices.Delete(d.Elements, i, i+1)
	d.Elements = slices.Insert(d.Elements, j, e)
	return true
}

// Select replaces the selection with the given keys, dropping unknown ones.
func (d *Document) Select(keys ...string) {
	sel := make([]string, 0, len(keys))
	for _, k := range keys {
		if d.IndexOf(k) >= 0 && !slices.Contains(sel, k) {
			sel = append(sel, k)
		}
	}
	d.Selection = sel
}

// SelectAll selects every element.
func (d *Document) SelectAll() {
	d.Selection = make([]string, 0, len(d.Elements))
	for _, e := range d.Elements {
		d.Selection = append(d.Selection, e.Key)
	}
}

// ClearSelection empties the selection.
func (d *Document) ClearSelection() {
	d.Selection = nil
}

// Selected returns copies of the selected elements in layer order.
func (d *Document) Selected() []Element {
	var out []Element
	for _, e := range d.Elements {
		if slices.Contains(d.Selection, e.Key) {
			out = append(out, e.Clone())
		}
	}
	return out
}

// Materialize converts every relative geometry to absolute pixels against
// the current canvas size.
func (d *Document) Materialize() {
	for i := range d.Elements {
		materialize(&d.Elements[i], float64(d.Width), float64(d.Height))
	}
}

// MaterializeElement converts the geometry of a single element.
func (d *Document) MaterializeElement(key string) bool {
	return d.Update(key, func(e *Element) {
		materialize(e, float64(d.Width), float64(d.Height))
	})
}

func materialize(e *Element, w, h float64) {
	if e.Geometry.IsRelative() {
		g := &e.Geometry
		g.Left = g.X * w
		g.Top = g.Y * h
		g.Width = g.W * w
		g.Height = g.H * h
		g.ScaleX, g.ScaleY = 1, 1
		g.X, g.Y, g.W, g.H = 0, 0, 0, 0
		g.Mode = Absolute
	}
	for i := range e.Children {
		materialize(&e.Children[i], w, h)
	}
}

// Marshal serializes the document.
func (d *Document) Marshal() (Snapshot, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshaling document: %w", err)
	}
	return b, nil
}

// Unmarshal restores a document from a snapshot.
func Unmarshal(s Snapshot) (*Document, error) {
	d := &Document{}
	if err := json.Unmarshal(s, d); err != nil {
		return nil, fmt.Errorf("unmarshaling document: %w", err)
	}
	if d.Width <= 0 || d.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, d.Width, d.Height)
	}
	if d.Elements == nil {
		d.Elements = []Element{}
	}
	for i := range d.Elements {
		if d.Elements[i].Key == "" {
			d.Elements[i].Key = uuid.NewString()
		}
	}
	return d, nil
}
