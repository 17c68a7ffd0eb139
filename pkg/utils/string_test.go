package utils

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Truncate", func() {
	DescribeTable("shortening",
		func(in string, maxLen int, want string) {
			Expect(Truncate(in, maxLen)).To(Equal(want))
		},
		Entry("within the limit", "short", 10, "short"),
		Entry("exactly at the limit", "12345", 5, "12345"),
		Entry("over the limit", "this is a long string", 10, "this is a ..."),
		Entry("non-positive limit", "anything", 0, ""),
		Entry("multi-byte text", "Fresh 🍓🍓🍓 deals", 7, "Fresh 🍓..."),
	)
})
