package eventstream_test

import (
	"encoding/json"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/adgenius/adgen/pkg/eventstream"
)

var _ = Describe("Event", func() {
	It("marshals DocumentEvent with expected top-level keys", func() {
		now := time.Unix(1735689600, 0).UTC()
		event := eventstream.DocumentEvent{
			SchemaVersion: eventstream.SchemaVersionV1,
			EventType:     eventstream.EventTypeDocumentChanged,
			EventID:       "evt_123",
			EmittedAt:     now,
			SessionID:     "sess-1",
			Operation:     "reflow",
			Width:         1080,
			Height:        1920,
			ElementCount:  5,
			UndoDepth:     2,
		}

		payload, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var got map[string]any
		Expect(json.Unmarshal(payload, &got)).To(Succeed())

		Expect(got).To(HaveKey("schema_version"))
		Expect(got).To(HaveKey("event_type"))
		Expect(got).To(HaveKey("event_id"))
		Expect(got).To(HaveKey("emitted_at"))
		Expect(got).To(HaveKeyWithValue("session_id", "sess-1"))
		Expect(got).To(HaveKeyWithValue("operation", "reflow"))
		Expect(got).To(HaveKeyWithValue("element_count", BeNumerically("==", 5)))
		Expect(got).NotTo(HaveKey("project_id"))
	})

	It("stamps new events with an id and time", func() {
		ev := eventstream.NewDocumentEvent(eventstream.EventTypeProjectSaved, "sess-2", "save")
		Expect(ev.SchemaVersion).To(Equal(eventstream.SchemaVersionV1))
		Expect(strings.HasPrefix(ev.EventID, "evt_")).To(BeTrue())
		Expect(ev.EmittedAt).NotTo(BeZero())
		Expect(ev.SessionID).To(Equal("sess-2"))
	})

	It("defines stable event constants", func() {
		Expect(eventstream.SchemaVersionV1).To(BeNumerically(">", 0))
		Expect(eventstream.EventTypeDocumentChanged).To(Equal("adgen.document.changed"))
		Expect(eventstream.EventTypeProjectSaved).To(Equal("adgen.project.saved"))
	})

	It("provides ErrNilEvent for nil payload validation", func() {
		Expect(eventstream.ErrNilEvent).To(MatchError("nil document event"))
	})
})
