package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/adgenius/adgen/pkg/classify"
	"github.com/adgenius/adgen/pkg/compliance"
	"github.com/adgenius/adgen/pkg/editor"
	adgenlogger "github.com/adgenius/adgen/pkg/logger"
)

func resultText(r *mcp.CallToolResult) string {
	Expect(r.Content).To(HaveLen(1))
	text, ok := r.Content[0].(*mcp.TextContent)
	Expect(ok).To(BeTrue())
	return text.Text
}

var _ = Describe("Editing tools", func() {
	var (
		server   *Server
		registry *editor.Registry
		sess     *editor.Session
		ctx      context.Context
	)

	BeforeEach(func() {
		logger := adgenlogger.Nop()
		registry = editor.NewRegistry(editor.RegistryConfig{Logger: logger})
		DeferCleanup(registry.Close)

		var err error
		server, err = NewServer(Config{Registry: registry, Brand: "Tesco", Logger: logger})
		Expect(err).NotTo(HaveOccurred())

		sess, err = registry.Create(nil)
		Expect(err).NotTo(HaveOccurred())
		ctx = context.Background()
	})

	Describe("get_document", func() {
		It("describes the session's design", func() {
			result, out, err := server.handleGetDocument(ctx, nil, SessionInput{SessionID: sess.ID()})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeFalse())
			Expect(out.SessionID).To(Equal(sess.ID()))
			Expect(out.Summary.Width).To(Equal(400))

			_, ok := out.Summary.Find(classify.Headline)
			Expect(ok).To(BeTrue())
			Expect(resultText(result)).To(ContainSubstring(`"session_id"`))
		})

		It("reports unknown sessions as tool errors", func() {
			result, _, err := server.handleGetDocument(ctx, nil, SessionInput{SessionID: "missing"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
			Expect(resultText(result)).To(ContainSubstring("not found"))
		})

		It("requires a session id", func() {
			result, _, err := server.handleGetDocument(ctx, nil, SessionInput{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
		})
	})

	Describe("apply_actions", func() {
		It("applies valid actions and reports discarded ones", func() {
			result, out, err := server.handleApplyActions(ctx, nil, ApplyActionsInput{
				SessionID: sess.ID(),
				Actions: []map[string]any{
					{"type": "copy", "target": "headline", "changes": map[string]any{"text": "Summer Sale"}},
					{"type": "teleport"},
				},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeFalse())
			Expect(out.Applied).To(Equal(1))
			Expect(out.Discarded).To(HaveLen(1))

			summary, err := sess.Summary()
			Expect(err).NotTo(HaveOccurred())
			headline, _ := summary.Find(classify.Headline)
			Expect(headline.Text).To(Equal("Summer Sale"))
		})

		It("counts actions whose target matches nothing as ignored", func() {
			_, out, err := server.handleApplyActions(ctx, nil, ApplyActionsInput{
				SessionID: sess.ID(),
				Actions: []map[string]any{
					{"type": "copy", "target": "nonexistent", "changes": map[string]any{"text": "x"}},
				},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Applied).To(Equal(0))
			Expect(out.Ignored).To(Equal(1))
		})
	})

	Describe("reflow", func() {
		It("resizes to a preset", func() {
			result, out, err := server.handleReflow(ctx, nil, ReflowInput{SessionID: sess.ID(), Preset: "9:16"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeFalse())
			Expect(out.Summary.Width).To(Equal(360))
			Expect(out.Summary.Height).To(Equal(640))
		})

		It("resizes to explicit dimensions", func() {
			_, out, err := server.handleReflow(ctx, nil, ReflowInput{SessionID: sess.ID(), Width: 800, Height: 200})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Summary.Width).To(Equal(800))
		})

		It("rejects an unknown preset", func() {
			result, _, err := server.handleReflow(ctx, nil, ReflowInput{SessionID: sess.ID(), Preset: "7:3"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
		})

		It("rejects a non-positive size", func() {
			result, _, err := server.handleReflow(ctx, nil, ReflowInput{SessionID: sess.ID(), Width: 0, Height: 100})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
		})
	})

	Describe("undo and redo", func() {
		It("walks the history", func() {
			_, _, err := server.handleReflow(ctx, nil, ReflowInput{SessionID: sess.ID(), Preset: "16:9"})
			Expect(err).NotTo(HaveOccurred())

			_, out, err := server.handleUndo(ctx, nil, SessionInput{SessionID: sess.ID()})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Changed).To(BeTrue())
			Expect(out.History.CanRedo).To(BeTrue())

			doc, err := sess.Document()
			Expect(err).NotTo(HaveOccurred())
			Expect(doc.Width).To(Equal(400))

			_, out, err = server.handleRedo(ctx, nil, SessionInput{SessionID: sess.ID()})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Changed).To(BeTrue())
			Expect(out.History.CanRedo).To(BeFalse())
		})

		It("reports nothing to undo on a fresh session", func() {
			result, out, err := server.handleUndo(ctx, nil, SessionInput{SessionID: sess.ID()})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeFalse())
			Expect(out.Changed).To(BeFalse())
		})
	})

	Describe("check_compliance", func() {
		It("uses the configured brand by default", func() {
			_, out, err := server.handleCheckCompliance(ctx, nil, ComplianceInput{SessionID: sess.ID()})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Brand).To(Equal("Tesco"))
			Expect(out.Score).To(BeNumerically("<=", 100))
			Expect(out.Status).To(BeElementOf(compliance.StatusPass, compliance.StatusWarning, compliance.StatusFail))
		})

		It("reports disposed sessions as tool errors", func() {
			Expect(registry.Remove(sess.ID())).To(Succeed())
			result, _, err := server.handleCheckCompliance(ctx, nil, ComplianceInput{SessionID: sess.ID()})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
		})
	})
})
