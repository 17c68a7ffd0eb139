package broker_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/adgenius/adgen/pkg/eventstream"
	"github.com/adgenius/adgen/pkg/eventstream/broker"
)

var _ = Describe("Broker", func() {
	var (
		b   *broker.Broker
		ctx context.Context
	)

	event := func(sessionID, op string) *eventstream.DocumentEvent {
		return eventstream.NewDocumentEvent(eventstream.EventTypeDocumentChanged, sessionID, op)
	}

	BeforeEach(func() {
		b = broker.New(nil)
		ctx = context.Background()
	})

	It("satisfies eventstream.Publisher", func() {
		var _ eventstream.Publisher = b
	})

	It("delivers events only to subscribers of the session", func() {
		a, cancelA := b.Subscribe("a")
		defer cancelA()
		other, cancelOther := b.Subscribe("b")
		defer cancelOther()

		Expect(b.Publish(ctx, event("a", "reflow"))).To(Succeed())

		var got *eventstream.DocumentEvent
		Eventually(a).Should(Receive(&got))
		Expect(got.Operation).To(Equal("reflow"))
		Consistently(other).ShouldNot(Receive())
	})

	It("fans out to every subscriber", func() {
		first, cancel1 := b.Subscribe("a")
		defer cancel1()
		second, cancel2 := b.Subscribe("a")
		defer cancel2()
		Expect(b.Subscribers("a")).To(Equal(2))

		Expect(b.Publish(ctx, event("a", "undo"))).To(Succeed())
		Eventually(first).Should(Receive())
		Eventually(second).Should(Receive())
	})

	It("rejects nil events", func() {
		Expect(b.Publish(ctx, nil)).To(MatchError(eventstream.ErrNilEvent))
	})

	It("drops events for a subscriber that falls behind", func() {
		ch, cancel := b.Subscribe("a")
		defer cancel()

		for range broker.BufferSize + 5 {
			Expect(b.Publish(ctx, event("a", "apply"))).To(Succeed())
		}
		Expect(ch).To(HaveLen(broker.BufferSize))
	})

	It("closes the channel on cancel, once", func() {
		ch, cancel := b.Subscribe("a")
		cancel()
		cancel()
		Eventually(ch).Should(BeClosed())
		Expect(b.Subscribers("a")).To(BeZero())
	})

	It("delivers buffered events before CloseSession ends the stream", func() {
		ch, cancel := b.Subscribe("a")
		defer cancel()

		Expect(b.Publish(ctx, event("a", "apply"))).To(Succeed())
		b.CloseSession("a")

		Expect(ch).To(Receive())
		Expect(ch).To(BeClosed())
	})

	It("closes everything on Close and refuses later subscribers", func() {
		ch, cancel := b.Subscribe("a")
		Expect(b.Close()).To(Succeed())
		Expect(ch).To(BeClosed())
		cancel()

		late, _ := b.Subscribe("b")
		Expect(late).To(BeClosed())
		Expect(b.Publish(ctx, event("b", "apply"))).To(Succeed())
	})
})
