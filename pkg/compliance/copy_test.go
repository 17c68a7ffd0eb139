package compliance_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/adgenius/adgen/pkg/classify"
	"github.com/adgenius/adgen/pkg/compliance"
)

var _ = Describe("ValidateCopy", func() {
	DescribeTable("judges copy against the brand voice",
		func(text, brand string, issues []string) {
			res := compliance.ValidateCopy(text, brand)
			Expect(res.Issues).To(ConsistOf(issues))
			Expect(res.Valid).To(Equal(len(issues) == 0))
		},
		Entry("plain copy", "Prices that take you further", "tesco", []string{}),
		Entry("avoided phrase ignores case", "No complex jargon here", "Tesco",
			[]string{`Contains avoided element: "Complex jargon"`}),
		Entry("avoided phrase of another brand", "Budget language only", "tesco", []string{}),
		Entry("all caps", "MEGA DEAL", "aldi", []string{"Avoid using all caps"}),
		Entry("short caps are fine", "NEW", "aldi", []string{}),
		Entry("digits and symbols are not shouting", "50% - 70%", "aldi", []string{}),
		Entry("one exclamation mark", "Fresh today!", "asda", []string{}),
		Entry("two exclamation marks", "Fresh today!!", "asda", []string{"Reduce exclamation marks"}),
		Entry("generic brand avoids clickbait", "Pure clickbait", "unknown", []string{`Contains avoided element: "Clickbait"`}),
	)
})

var _ = Describe("Check copy rule", func() {
	It("skips the rule when the design has no copy", func() {
		res := compliance.Check(summaryOf(tescoPalette,
			classify.ElementSummary{Role: classify.Logo},
			classify.ElementSummary{Role: classify.Headline},
			classify.ElementSummary{Role: classify.Cta},
		), "tesco")
		Expect(res.Passed).NotTo(ContainElement(compliance.RuleCopy))
	})

	It("passes on-voice copy", func() {
		res := compliance.Check(summaryOf(tescoPalette,
			classify.ElementSummary{Role: classify.Logo},
			classify.ElementSummary{Role: classify.Headline, Text: "Every little helps"},
			classify.ElementSummary{Role: classify.Cta, Text: "Shop now"},
		), "tesco")
		Expect(res.Passed).To(ContainElement(compliance.RuleCopy))
		Expect(res.Score).To(Equal(100))
	})

	It("reports every off-voice text under one issue", func() {
		res := compliance.Check(summaryOf(tescoPalette,
			classify.ElementSummary{Role: classify.Logo},
			classify.ElementSummary{Role: classify.Headline, Text: "FLASH SALE!"},
			classify.ElementSummary{Role: classify.Cta, Text: "Buy now!!"},
		), "tesco")

		Expect(res.Issues).To(HaveLen(1))
		Expect(res.Issues[0].Rule).To(Equal(compliance.RuleCopy))
		Expect(res.Issues[0].Issue).To(ContainSubstring(`"FLASH SALE!": Avoid using all caps`))
		Expect(res.Issues[0].Issue).To(ContainSubstring(`"Buy now!!": Reduce exclamation marks`))
		Expect(res.Score).To(Equal(85))
	})
})
