// Package classify assigns a semantic Role to canvas elements from their id
// hints, text content, kind and font size. It is the single classifier used
// by layout, actions, compliance and the AI document summary.
package classify

import (
	"strings"

	"github.com/adgenius/adgen/pkg/canvas"
)

// Role is the semantic function of an element in an ad.
type Role int

const (
	Other Role = iota
	Logo
	Headline
	Subtext
	Cta
	Packshot
	Image
	Shape
)

var roleNames = map[Role]string{
	Other:    "other",
	Logo:     "logo",
	Headline: "headline",
	Subtext:  "subtext",
	Cta:      "cta",
	Packshot: "packshot",
	Image:    "image",
	Shape:    "shape",
}

func (r Role) String() string {
	if n, ok := roleNames[r]; ok {
		return n
	}
	return "other"
}

// MarshalText renders the role by name.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText parses a role name. Unknown names decode as Other.
func (r *Role) UnmarshalText(b []byte) error {
	*r, _ = ParseRole(string(b))
	return nil
}

// ParseRole maps a role name back to a Role.
func ParseRole(s string) (Role, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for r, n := range roleNames {
		if n == s {
			return r, true
		}
	}
	return Other, false
}

// HeadlineFontSize is the font size at or above which plain text is treated
// as a headline. It is also the default when no font size is set.
const HeadlineFontSize = 20.0

const (
	storeEmoji = "\U0001F3EA"
	boxEmoji   = "\U0001F4E6"
)

var ctaWords = []string{"shop", "buy", "order", "get", "learn"}

// Classify returns the role of e. First matching rule wins.
func Classify(e canvas.Element) Role {
	hint := strings.ToLower(e.ID)
	if hint == "" {
		hint = string(e.Kind)
	}
	text := strings.ToLower(e.Text)

	fontSize := e.Style.FontSize
	if fontSize == 0 {
		fontSize = HeadlineFontSize
	}
	plainText := e.Kind == canvas.KindText

	switch {
	case strings.Contains(hint, "logo") || strings.Contains(text, "logo") || strings.Contains(text, storeEmoji):
		return Logo
	case strings.Contains(hint, "cta") || containsAny(text, ctaWords):
		return Cta
	case strings.Contains(hint, "headline") || strings.Contains(hint, "title") ||
		e.Kind == canvas.KindHeadline || (plainText && fontSize >= HeadlineFontSize):
		return Headline
	case strings.Contains(hint, "packshot") || strings.Contains(hint, "product") ||
		strings.Contains(text, "product") || strings.Contains(text, boxEmoji):
		return Packshot
	case e.Kind.IsImage():
		return Image
	case strings.Contains(hint, "subtext") ||
		e.Kind == canvas.KindSubtext || (plainText && fontSize < HeadlineFontSize):
		return Subtext
	case e.Kind.IsShape():
		return Shape
	}
	return Other
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
