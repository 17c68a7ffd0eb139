package nop_test

import (
	"bytes"
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/adgenius/adgen/pkg/eventstream"
	"github.com/adgenius/adgen/pkg/eventstream/nop"
	"github.com/adgenius/adgen/pkg/logger"
)

var _ = Describe("Publisher", func() {
	It("returns ErrNilEvent for nil events", func() {
		p := nop.NewPublisher(nil)
		Expect(p.Publish(context.Background(), nil)).To(MatchError(eventstream.ErrNilEvent))
		Expect(p.Discarded()).To(BeZero())
	})

	It("counts the events it drops", func() {
		p := nop.NewPublisher(nil)
		ev := eventstream.NewDocumentEvent(eventstream.EventTypeDocumentChanged, "s1", "apply")

		Expect(p.Publish(context.Background(), ev)).To(Succeed())
		Expect(p.Publish(context.Background(), ev)).To(Succeed())
		Expect(p.Discarded()).To(BeNumerically("==", 2))
	})

	It("logs dropped events at debug level", func() {
		var buf bytes.Buffer
		p := nop.NewPublisher(logger.New(logger.WithWriter(&buf), logger.WithDebug(true)))
		ev := eventstream.NewDocumentEvent(eventstream.EventTypeDocumentChanged, "s1", "reflow")

		Expect(p.Publish(context.Background(), ev)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("document event discarded"))
		Expect(buf.String()).To(ContainSubstring("operation=reflow"))
	})

	It("closes successfully", func() {
		Expect(nop.NewPublisher(nil).Close()).To(Succeed())
	})
})
