package compliance

import (
	"maps"
	"slices"
	"strings"
)

// Brand is a retailer's guideline set used by the quick check.
type Brand struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Colors []string `json:"colors"`

	// Avoid lists phrases the brand voice steers clear of.
	Avoid []string `json:"avoid,omitempty"`
}

// GenericBrand is used for unknown brand names. It carries no colour
// constraint.
const GenericBrand = "generic"

var brands = map[string]Brand{
	"tesco": {
		ID:     "tesco",
		Name:   "Tesco",
		Colors: []string{"#E41C2A", "#FFFFFF", "#00539F"},
		Avoid:  []string{"Aggressive sales language", "Complex jargon", "Elitist messaging"},
	},
	"sainsburys": {
		ID:     "sainsburys",
		Name:   "Sainsbury's",
		Colors: []string{"#F06C00", "#FFFFFF", "#4A4A4A", "#1E1E1E"},
		Avoid:  []string{"Discount-heavy messaging", "Budget language", "Rushed urgency"},
	},
	"asda": {
		ID:     "asda",
		Name:   "ASDA",
		Colors: []string{"#78BE20", "#FDB813", "#FFFFFF", "#333333"},
		Avoid:  []string{"Pretentious language", "Premium positioning", "Complex messaging"},
	},
	"morrisons": {
		ID:     "morrisons",
		Name:   "Morrisons",
		Colors: []string{"#FFD100", "#006F44", "#FFFFFF", "#1C1C1C"},
		Avoid:  []string{"Industrial language", "Processed messaging", "Corporate speak"},
	},
	"aldi": {
		ID:     "aldi",
		Name:   "Aldi",
		Colors: []string{"#00205B", "#EF7D00", "#FFFFFF", "#1A1A1A"},
		Avoid:  []string{"Pretentious claims", "Excessive marketing speak", "Apologies for price"},
	},
	GenericBrand: {
		ID:    GenericBrand,
		Name:  "Generic",
		Avoid: []string{"Excessive punctuation", "ALL CAPS", "Clickbait"},
	},
}

// LookupBrand normalises name ("Sainsbury's" -> "sainsburys") and returns its
// guidelines, falling back to the generic set.
func LookupBrand(name string) Brand {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	if brand, ok := brands[b.String()]; ok {
		return brand
	}
	return brands[GenericBrand]
}

// Brands returns every known brand ordered by id.
func Brands() []Brand {
	out := make([]Brand, 0, len(brands))
	for _, id := range slices.Sorted(maps.Keys(brands)) {
		out = append(out, brands[id])
	}
	return out
}
