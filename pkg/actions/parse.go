package actions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Wire is the JSON form of an action. Chat replies put most arguments under
// "changes"; HTTP callers may also use the top-level text, url and options
// fields.
type Wire struct {
	Type    Type            `json:"type"`
	Target  string          `json:"target,omitempty"`
	Text    string          `json:"text,omitempty"`
	URL     string          `json:"url,omitempty"`
	Changes json.RawMessage `json:"changes,omitempty"`
	Options json.RawMessage `json:"options,omitempty"`
}

// Decode converts the wire form into a validated Action.
func (w Wire) Decode() (Action, error) {
	var a Action
	switch w.Type {
	case TypeLayout:
		l := Layout{Target: w.Target}
		if err := unmarshalOptional(w.Changes, &l.Changes); err != nil {
			return nil, invalid(TypeLayout, "changes: %v", err)
		}
		a = l

	case TypeColor:
		raw := map[string]any{}
		if err := unmarshalOptional(w.Changes, &raw); err != nil {
			return nil, invalid(TypeColor, "changes: %v", err)
		}
		c := Color{Changes: make(map[string]string, len(raw))}
		for k, v := range raw {
			k = strings.ToLower(k)
			s, ok := v.(string)
			if !ok {
				if paletteKey(k) {
					return nil, invalid(TypeColor, "%s must be a string", k)
				}
				continue
			}
			c.Changes[k] = s
		}
		a = c

	case TypeCopy:
		var changes struct {
			Text string `json:"text"`
		}
		if err := unmarshalOptional(w.Changes, &changes); err != nil {
			return nil, invalid(TypeCopy, "changes: %v", err)
		}
		a = Copy{Target: w.Target, Text: firstNonEmpty(w.Text, changes.Text)}

	case TypeAddText:
		var changes struct {
			Text string `json:"text"`
			TextOptions
		}
		if err := unmarshalOptional(w.Changes, &changes); err != nil {
			return nil, invalid(TypeAddText, "changes: %v", err)
		}
		opts := changes.TextOptions
		if err := unmarshalOptional(w.Options, &opts); err != nil {
			return nil, invalid(TypeAddText, "options: %v", err)
		}
		a = AddText{Text: firstNonEmpty(w.Text, changes.Text), Options: opts}

	case TypeAddImage:
		var changes struct {
			URL string `json:"url"`
			ImageOptions
		}
		if err := unmarshalOptional(w.Changes, &changes); err != nil {
			return nil, invalid(TypeAddImage, "changes: %v", err)
		}
		opts := changes.ImageOptions
		if err := unmarshalOptional(w.Options, &opts); err != nil {
			return nil, invalid(TypeAddImage, "options: %v", err)
		}
		a = AddImage{URL: firstNonEmpty(w.URL, changes.URL), Options: opts}

	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidAction, w.Type)
	}

	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Encode converts an Action to its wire form.
func Encode(a Action) (Wire, error) {
	w := Wire{Type: a.Type()}
	var changes, options any
	switch v := a.(type) {
	case Layout:
		w.Target = v.Target
		changes = v.Changes
	case Color:
		changes = v.Changes
	case Copy:
		w.Target = v.Target
		w.Text = v.Text
	case AddText:
		w.Text = v.Text
		options = v.Options
	case AddImage:
		w.URL = v.URL
		options = v.Options
	default:
		return Wire{}, fmt.Errorf("%w: unknown action %T", ErrInvalidAction, a)
	}

	var err error
	if changes != nil {
		if w.Changes, err = json.Marshal(changes); err != nil {
			return Wire{}, fmt.Errorf("encoding changes: %w", err)
		}
	}
	if options != nil {
		if w.Options, err = json.Marshal(options); err != nil {
			return Wire{}, fmt.Errorf("encoding options: %w", err)
		}
	}
	return w, nil
}

// EncodeAll encodes a list of actions, skipping none.
func EncodeAll(acts []Action) ([]Wire, error) {
	out := make([]Wire, 0, len(acts))
	for _, a := range acts {
		w, err := Encode(a)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

// Parse decodes an action list given either as a JSON array or as an
// {"actions": [...]} envelope. Each entry is decoded and validated on its
// own: malformed entries are dropped and reported in the returned errors
// while the rest are kept in order.
func Parse(raw []byte) ([]Action, []error) {
	items, err := splitList(raw)
	if err != nil {
		return nil, []error{err}
	}
	return decodeAll(items)
}

var actionsBlock = regexp.MustCompile(`(?s)\[ACTIONS\](.*?)\[/ACTIONS\]`)

// ExtractFromReply removes every [ACTIONS]...[/ACTIONS] block from an AI
// reply and parses the first one. A block that is not valid JSON gets one
// repair pass for the mistakes language models commonly make.
func ExtractFromReply(reply string) (string, []Action, []error) {
	clean := strings.TrimSpace(actionsBlock.ReplaceAllString(reply, ""))

	m := actionsBlock.FindStringSubmatch(reply)
	if m == nil {
		return clean, nil, nil
	}
	body := strings.TrimSpace(m[1])
	if body == "" {
		return clean, nil, nil
	}

	items, err := splitList([]byte(body))
	if err != nil {
		items, err = splitList([]byte(RepairJSON(body)))
		if err != nil {
			return clean, nil, []error{fmt.Errorf("parsing actions block: %w", err)}
		}
	}

	acts, errs := decodeAll(items)
	return clean, acts, errs
}

var bareKey = regexp.MustCompile(`([{,])\s*([A-Za-z_]\w*)\s*:`)

// RepairJSON fixes tripled closing brackets and unquoted object keys.
func RepairJSON(s string) string {
	s = strings.ReplaceAll(s, "}}}", "}}")
	s = strings.ReplaceAll(s, "]]]", "]]")
	return bareKey.ReplaceAllString(s, `$1"$2":`)
}

func splitList(raw []byte) ([]json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}

	var items []json.RawMessage
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decoding action list: %w", err)
		}
	case '{':
		var env struct {
			Actions []json.RawMessage `json:"actions"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("decoding action envelope: %w", err)
		}
		items = env.Actions
	default:
		return nil, fmt.Errorf("decoding action list: unexpected %q", raw[0])
	}
	return items, nil
}

func decodeAll(items []json.RawMessage) ([]Action, []error) {
	var (
		acts []Action
		errs []error
	)
	for i, item := range items {
		var w Wire
		if err := json.Unmarshal(item, &w); err != nil {
			errs = append(errs, fmt.Errorf("action %d: %w: %v", i, ErrInvalidAction, err))
			continue
		}
		a, err := w.Decode()
		if err != nil {
			errs = append(errs, fmt.Errorf("action %d: %w", i, err))
			continue
		}
		acts = append(acts, a)
	}
	return acts, errs
}

func unmarshalOptional(raw json.RawMessage, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
