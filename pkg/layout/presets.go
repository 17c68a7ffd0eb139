package layout

import "strings"

// Preset is a named canvas size offered by the editor.
type Preset struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Platform string `json:"platform"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// DefaultPresetID is the preset a new session starts with.
const DefaultPresetID = "1:1"

// Presets is the fixed aspect-ratio table, in display order.
var Presets = []Preset{
	{ID: "1:1", Label: "Square", Platform: "Instagram Post", Width: 400, Height: 400},
	{ID: "4:5", Label: "Portrait", Platform: "Instagram Feed", Width: 400, Height: 500},
	{ID: "9:16", Label: "Story", Platform: "Instagram/TikTok", Width: 360, Height: 640},
	{ID: "16:9", Label: "Landscape", Platform: "YouTube/Twitter", Width: 480, Height: 270},
	{ID: "1.91:1", Label: "Wide", Platform: "Facebook/LinkedIn", Width: 500, Height: 262},
	{ID: "A4", Label: "A4 Poster", Platform: "Print (210×297mm)", Width: 420, Height: 594},
	{ID: "Letter", Label: "US Letter", Platform: "Print (8.5×11in)", Width: 408, Height: 528},
	{ID: "A3", Label: "A3 Poster", Platform: "Large Print", Width: 400, Height: 566},
	{ID: "fb-cover", Label: "Cover Photo", Platform: "Facebook Cover", Width: 500, Height: 185},
	{ID: "twitter-header", Label: "Header", Platform: "Twitter/X", Width: 500, Height: 167},
	{ID: "linkedin-banner", Label: "Banner", Platform: "LinkedIn", Width: 500, Height: 128},
	{ID: "pinterest", Label: "Pin", Platform: "Pinterest", Width: 400, Height: 600},
}

// LookupPreset finds a preset by id, case-insensitively.
func LookupPreset(id string) (Preset, bool) {
	for _, p := range Presets {
		if strings.EqualFold(p.ID, id) {
			return p, true
		}
	}
	return Preset{}, false
}

// PresetFor returns the preset matching an exact size, if any.
func PresetFor(width, height int) (Preset, bool) {
	for _, p := range Presets {
		if p.Width == width && p.Height == height {
			return p, true
		}
	}
	return Preset{}, false
}
