// Package compliance runs the rule-based brand quick check over a document
// summary. It never modifies the document.
package compliance

import (
	"fmt"
	"slices"
	"strings"

	"github.com/adgenius/adgen/pkg/classify"
)

// Status is the overall verdict of a check.
type Status string

const (
	StatusPass    Status = "PASS"
	StatusWarning Status = "WARNING"
	StatusFail    Status = "FAIL"
)

const (
	// PenaltyPerIssue is subtracted from 100 for every failed rule.
	PenaltyPerIssue = 15

	PassScore    = 80
	WarningScore = 60

	// LogoTopFraction is how far down the canvas a logo may start.
	LogoTopFraction = 0.2
)

// Rule names reported in Passed and Issues.
const (
	RuleLogo     = "Logo Visibility"
	RuleColors   = "Color Palette"
	RuleCta      = "Call-to-Action"
	RuleHeadline = "Headline"
	RuleCopy     = "Brand Voice"
)

// Issue is a failed rule with the reason.
type Issue struct {
	Rule  string `json:"rule"`
	Issue string `json:"issue"`
}

// Result is the outcome of Check.
type Result struct {
	Brand   string   `json:"brand"`
	Score   int      `json:"score"`
	Status  Status   `json:"status"`
	Passed  []string `json:"passed"`
	Issues  []Issue  `json:"issues"`
	Message string   `json:"message"`
}

// Check scores summary against brand's guidelines.
func Check(summary classify.Summary, brandName string) Result {
	brand := LookupBrand(brandName)
	res := Result{
		Brand:  brand.Name,
		Passed: []string{},
		Issues: []Issue{},
	}

	fail := func(rule, issue string) {
		res.Issues = append(res.Issues, Issue{Rule: rule, Issue: issue})
	}

	switch logo, ok := summary.Find(classify.Logo); {
	case !ok:
		fail(RuleLogo, "Logo element not found in design")
	case logo.Y > LogoTopFraction:
		fail(RuleLogo, "Logo should be in top 20% of canvas")
	default:
		res.Passed = append(res.Passed, RuleLogo)
	}

	if len(brand.Colors) > 0 {
		if off := offBrandColors(summary, brand); len(off) > 0 {
			fail(RuleColors, "Some colors may not match brand guidelines: "+strings.Join(off, ", "))
		} else {
			res.Passed = append(res.Passed, RuleColors)
		}
	}

	if _, ok := summary.Find(classify.Cta); ok {
		res.Passed = append(res.Passed, RuleCta)
	} else {
		fail(RuleCta, "No call-to-action found")
	}

	if _, ok := summary.Find(classify.Headline); ok {
		res.Passed = append(res.Passed, RuleHeadline)
	} else {
		fail(RuleHeadline, "No headline found")
	}

	// Copy is only judged when the design has any.
	if texts := copyOf(summary); len(texts) > 0 {
		if issues := copyIssues(texts, brand.ID); len(issues) > 0 {
			fail(RuleCopy, strings.Join(issues, "; "))
		} else {
			res.Passed = append(res.Passed, RuleCopy)
		}
	}

	res.Score = max(0, 100-PenaltyPerIssue*len(res.Issues))
	res.Status = statusFor(res.Score)
	if len(res.Issues) == 0 {
		res.Message = "All quick checks passed!"
	} else {
		res.Message = fmt.Sprintf("%d issue(s) detected", len(res.Issues))
	}
	return res
}

func copyOf(summary classify.Summary) []string {
	var texts []string
	for _, e := range summary.Elements {
		if t := strings.TrimSpace(e.Text); t != "" {
			texts = append(texts, t)
		}
	}
	return texts
}

// copyIssues validates each text and prefixes its issues with the text.
func copyIssues(texts []string, brandID string) []string {
	var issues []string
	for _, t := range texts {
		for _, issue := range ValidateCopy(t, brandID).Issues {
			issues = append(issues, fmt.Sprintf("%q: %s", t, issue))
		}
	}
	return issues
}

// offBrandColors returns the palette colours missing from the brand set.
func offBrandColors(summary classify.Summary, brand Brand) []string {
	var off []string
	for _, c := range []string{summary.Palette.Primary, summary.Palette.Secondary, summary.Palette.Text} {
		if c == "" {
			continue
		}
		if !slices.ContainsFunc(brand.Colors, func(bc string) bool { return strings.EqualFold(bc, c) }) {
			off = append(off, c)
		}
	}
	return off
}

func statusFor(score int) Status {
	switch {
	case score >= PassScore:
		return StatusPass
	case score >= WarningScore:
		return StatusWarning
	default:
		return StatusFail
	}
}
