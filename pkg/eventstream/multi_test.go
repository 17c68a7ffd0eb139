package eventstream_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/adgenius/adgen/pkg/eventstream"
)

type recordingPublisher struct {
	events []*eventstream.DocumentEvent
	err    error
	closed bool
}

func (p *recordingPublisher) Publish(_ context.Context, ev *eventstream.DocumentEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Close() error {
	p.closed = true
	return p.err
}

var _ = Describe("Multi", func() {
	It("publishes to every publisher even when one fails", func() {
		failing := &recordingPublisher{err: errors.New("broker down")}
		ok := &recordingPublisher{}
		m := eventstream.Multi(failing, ok)

		ev := eventstream.NewDocumentEvent(eventstream.EventTypeDocumentChanged, "s", "apply")
		Expect(m.Publish(context.Background(), ev)).To(MatchError(ContainSubstring("broker down")))
		Expect(failing.events).To(HaveLen(1))
		Expect(ok.events).To(ConsistOf(ev))
	})

	It("rejects nil events", func() {
		Expect(eventstream.Multi(&recordingPublisher{}).Publish(context.Background(), nil)).To(MatchError(eventstream.ErrNilEvent))
	})

	It("closes every publisher", func() {
		a, b := &recordingPublisher{}, &recordingPublisher{}
		Expect(eventstream.Multi(a, b).Close()).To(Succeed())
		Expect(a.closed).To(BeTrue())
		Expect(b.closed).To(BeTrue())
	})
})
