// Package export produces platform-specific deliverables of a design:
// Cloudinary transformation URLs and a vector SVG rendering.
package export

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ErrUnknownPlatform is returned for platform ids not in Platforms.
var ErrUnknownPlatform = errors.New("unknown platform")

// Platform is an export target.
type Platform struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Format      string `json:"format"`
	Quality     string `json:"quality"`
	MaxFileSize int    `json:"max_file_size"`
}

// Dimensions formats the size as "WxH".
func (p Platform) Dimensions() string {
	return fmt.Sprintf("%dx%d", p.Width, p.Height)
}

// Platforms are the supported export targets keyed by id.
var Platforms = map[string]Platform{
	"facebook_feed": {
		ID: "facebook_feed", Name: "Facebook Feed",
		Width: 1200, Height: 628, Format: "jpg", Quality: "auto:good", MaxFileSize: 500_000,
	},
	"instagram_story": {
		ID: "instagram_story", Name: "Instagram Story",
		Width: 1080, Height: 1920, Format: "jpg", Quality: "auto:good", MaxFileSize: 500_000,
	},
	"instagram_feed": {
		ID: "instagram_feed", Name: "Instagram Feed",
		Width: 1080, Height: 1080, Format: "jpg", Quality: "auto:good", MaxFileSize: 500_000,
	},
	"retail_display": {
		ID: "retail_display", Name: "Retail Display",
		Width: 800, Height: 600, Format: "png", Quality: "auto:best", MaxFileSize: 500_000,
	},
	"retail_poster": {
		ID: "retail_poster", Name: "Retail Poster",
		Width: 1200, Height: 1600, Format: "png", Quality: "auto:best", MaxFileSize: 500_000,
	},
}

// PlatformIDs returns every platform id in sorted order.
func PlatformIDs() []string {
	return slices.Sorted(maps.Keys(Platforms))
}

// Export is one platform's deliverable.
type Export struct {
	Platform     string `json:"platform"`
	Name         string `json:"name"`
	Dimensions   string `json:"dimensions"`
	Format       string `json:"format,omitempty"`
	URL          string `json:"url"`
	IsCloudinary bool   `json:"is_cloudinary"`
	MaxFileSize  string `json:"max_file_size,omitempty"`
	Error        string `json:"error,omitempty"`
}

const uploadSegment = "/upload/"

// CloudinaryURL inserts the platform's resize and optimisation
// transformation into a Cloudinary delivery URL. URLs without a single
// "/upload/" segment are returned unchanged with IsCloudinary false.
func CloudinaryURL(baseURL, platformID string) (Export, error) {
	p, ok := Platforms[platformID]
	if !ok {
		return Export{}, fmt.Errorf("%w: %s", ErrUnknownPlatform, platformID)
	}

	out := Export{
		Platform:   p.ID,
		Name:       p.Name,
		Dimensions: p.Dimensions(),
		URL:        baseURL,
	}

	parts := strings.Split(baseURL, uploadSegment)
	if len(parts) != 2 {
		return out, nil
	}

	transform := strings.Join([]string{
		fmt.Sprintf("w_%d", p.Width),
		fmt.Sprintf("h_%d", p.Height),
		"c_fill",
		"g_auto",
		"f_auto",
		"q_" + p.Quality,
	}, ",")

	out.URL = parts[0] + uploadSegment + transform + "/" + parts[1]
	out.Format = p.Format
	out.IsCloudinary = true
	out.MaxFileSize = fmt.Sprintf("%dKB", p.MaxFileSize/1000)
	return out, nil
}

// All builds exports for the given platforms, or every platform when none
// are named. Unknown platforms are reported in the entry's Error.
func All(baseURL string, platformIDs ...string) map[string]Export {
	if len(platformIDs) == 0 {
		platformIDs = PlatformIDs()
	}

	out := make(map[string]Export, len(platformIDs))
	for _, id := range platformIDs {
		e, err := CloudinaryURL(baseURL, id)
		if err != nil {
			out[id] = Export{Platform: id, URL: baseURL, Error: err.Error()}
			continue
		}
		out[id] = e
	}
	return out
}
