package compliance

import (
	"fmt"
	"strings"
	"unicode"
)

// MaxExclamations is the most exclamation marks a piece of copy may carry.
const MaxExclamations = 1

// CopyResult is the outcome of ValidateCopy.
type CopyResult struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues"`
}

// ValidateCopy checks text against the brand's voice: phrases the brand
// avoids, all-caps copy and excessive exclamation marks.
func ValidateCopy(text, brandName string) CopyResult {
	brand := LookupBrand(brandName)
	res := CopyResult{Issues: []string{}}

	lower := strings.ToLower(text)
	for _, phrase := range brand.Avoid {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			res.Issues = append(res.Issues, fmt.Sprintf("Contains avoided element: %q", phrase))
		}
	}

	if len([]rune(text)) > 3 && shouting(text) {
		res.Issues = append(res.Issues, "Avoid using all caps")
	}

	if strings.Count(text, "!") > MaxExclamations {
		res.Issues = append(res.Issues, "Reduce exclamation marks")
	}

	res.Valid = len(res.Issues) == 0
	return res
}

// shouting reports whether text has letters and none of them are lower case.
func shouting(text string) bool {
	letters := false
	for _, r := range text {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			letters = true
		}
	}
	return letters
}
