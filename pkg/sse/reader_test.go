package sse_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/adgenius/adgen/pkg/sse"
)

func readAll(stream string) []sse.Event {
	r := sse.NewReader(strings.NewReader(stream))
	var out []sse.Event
	for {
		ev, err := r.Next()
		Expect(err).NotTo(HaveOccurred())
		if ev == nil {
			return out
		}
		out = append(out, *ev)
	}
}

var _ = Describe("Reader", func() {
	Context("with standard events", func() {
		It("parses a single event", func() {
			Expect(readAll("data: hello world\n\n")).To(Equal([]sse.Event{{Data: "hello world"}}))
		})

		It("parses multiple events", func() {
			evs := readAll("data: first\n\ndata: second\n\n")
			Expect(evs).To(HaveLen(2))
			Expect(evs[1].Data).To(Equal("second"))
		})

		It("parses the type and id", func() {
			evs := readAll("id: evt_1\nevent: adgen.document.changed\ndata: {\"operation\":\"reflow\"}\n\n")
			Expect(evs).To(Equal([]sse.Event{{
				ID:   "evt_1",
				Type: "adgen.document.changed",
				Data: `{"operation":"reflow"}`,
			}}))
		})

		It("joins multiple data lines with a newline", func() {
			evs := readAll("data: line one\ndata: line two\ndata: line three\n\n")
			Expect(evs[0].Data).To(Equal("line one\nline two\nline three"))
		})
	})

	Context("with comments", func() {
		It("skips keep-alive comments", func() {
			evs := readAll(": connected\n\n: ping\n\ndata: real\n\n")
			Expect(evs).To(Equal([]sse.Event{{Data: "real"}}))
		})
	})

	Context("with data field variations", func() {
		It("handles no space after the colon", func() {
			Expect(readAll("data:compact\n\n")[0].Data).To(Equal("compact"))
		})

		It("keeps an empty data field as an event", func() {
			evs := readAll("data:\n\n")
			Expect(evs).To(HaveLen(1))
			Expect(evs[0].Data).To(BeEmpty())
		})

		It("strips only one leading space", func() {
			Expect(readAll("data:  indented\n\n")[0].Data).To(Equal(" indented"))
		})
	})

	Context("edge cases", func() {
		It("returns nil on empty input", func() {
			Expect(readAll("")).To(BeEmpty())
		})

		It("returns nil on input with only blank lines", func() {
			Expect(readAll("\n\n\n")).To(BeEmpty())
		})

		It("yields an event when the stream ends without a blank line", func() {
			Expect(readAll("data: trailing")).To(Equal([]sse.Event{{Data: "trailing"}}))
		})

		It("ignores unknown fields", func() {
			Expect(readAll("retry: 3000\nfoo: bar\ndata: kept\n\n")).To(Equal([]sse.Event{{Data: "kept"}}))
		})

		It("treats a line with no colon as a field with no value", func() {
			Expect(readAll("data\n\n")).To(Equal([]sse.Event{{}}))
		})
	})
})
