package chat_test

import (
	"context"
	"errors"
	"fmt"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/adgenius/adgen/pkg/actions"
	"github.com/adgenius/adgen/pkg/canvas"
	"github.com/adgenius/adgen/pkg/chat"
	"github.com/adgenius/adgen/pkg/classify"
	"github.com/adgenius/adgen/pkg/logger"
)

var _ = Describe("Service", func() {
	var (
		prompt  string
		reply   string
		callErr error
		svc     *chat.Service
		summary classify.Summary
	)

	BeforeEach(func() {
		prompt, reply, callErr = "", "", nil
		svc = chat.NewService(func(_ context.Context, p string) (string, error) {
			prompt = p
			return reply, callErr
		}, logger.Nop())

		summary = classify.Summary{
			Width:      1080,
			Height:     1080,
			Background: "#ffffff",
			Elements: []classify.ElementSummary{
				{Key: "a", ID: "headline", Kind: canvas.KindText, Role: classify.Headline, Text: "Big Savings", Visible: true},
			},
		}
	})

	It("splits text and actions", func() {
		reply = `Done! Bigger logo coming up.
[ACTIONS]{"actions":[{"type":"layout","target":"logo","changes":{"scale":1.5}}]}[/ACTIONS]`

		out, err := svc.Chat(context.Background(), chat.Request{Message: "make the logo bigger", Summary: summary})
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Text).To(Equal("Done! Bigger logo coming up."))
		Expect(out.Actions).To(HaveLen(1))
		Expect(out.Actions[0].Type()).To(Equal(actions.TypeLayout))
		Expect(out.Discarded).To(BeEmpty())
	})

	It("repairs unquoted keys in the actions block", func() {
		reply = `Sure. [ACTIONS]{actions:[{type:"color",target:"palette",changes:{background:"#FFB6C1"}}]}[/ACTIONS]`

		out, err := svc.Chat(context.Background(), chat.Request{Message: "pink background", Summary: summary})
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Text).To(Equal("Sure."))
		Expect(out.Actions).To(HaveLen(1))
		Expect(out.Actions[0].Type()).To(Equal(actions.TypeColor))
	})

	It("keeps valid actions and reports the rest", func() {
		reply = `[ACTIONS]{"actions":[{"type":"copy","target":"headline","changes":{"text":"New"}},{"type":"explode"}]}[/ACTIONS]`

		out, err := svc.Chat(context.Background(), chat.Request{Message: "new headline", Summary: summary})
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Text).To(BeEmpty())
		Expect(out.Actions).To(HaveLen(1))
		Expect(out.Discarded).To(HaveLen(1))
	})

	It("returns plain replies with no actions", func() {
		reply = "Try a warmer palette."

		out, err := svc.Chat(context.Background(), chat.Request{Message: "ideas?", Summary: summary})
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Text).To(Equal("Try a warmer palette."))
		Expect(out.Actions).To(BeEmpty())
	})

	It("wraps caller failures", func() {
		callErr = errors.New("boom")

		_, err := svc.Chat(context.Background(), chat.Request{Message: "hi", Summary: summary})
		Expect(err).To(MatchError(ContainSubstring("boom")))
	})

	It("rejects empty messages without calling the model", func() {
		_, err := svc.Chat(context.Background(), chat.Request{Message: "  "})
		Expect(err).To(HaveOccurred())
		Expect(prompt).To(BeEmpty())
	})

	It("puts the design and context into the prompt", func() {
		reply = "ok"
		_, err := svc.Chat(context.Background(), chat.Request{
			Message:  "make it pop",
			Summary:  summary,
			Brand:    "Aldi",
			Platform: "Facebook",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(prompt).To(ContainSubstring("CONTEXT: Aldi ad for Facebook."))
		Expect(prompt).To(ContainSubstring(`text="Big Savings"`))
		Expect(prompt).To(ContainSubstring("User: make it pop"))
		Expect(prompt).To(ContainSubstring("[ACTIONS]"))
	})
})

var _ = Describe("BuildPrompt", func() {
	It("defaults brand and platform", func() {
		p := chat.BuildPrompt(chat.Request{Message: "hi"})
		Expect(p).To(ContainSubstring("CONTEXT: Tesco ad for Instagram."))
		Expect(p).NotTo(ContainSubstring("Previous:"))
	})

	It("replays only the most recent turns", func() {
		var history []chat.Turn
		for i := range 14 {
			role := chat.RoleUser
			if i%2 == 1 {
				role = chat.RoleAssistant
			}
			history = append(history, chat.Turn{Role: role, Content: fmt.Sprintf("turn-%02d", i)})
		}

		p := chat.BuildPrompt(chat.Request{Message: "hi", History: history})
		Expect(p).NotTo(ContainSubstring("turn-03"))
		Expect(p).To(ContainSubstring("User: turn-04"))
		Expect(p).To(ContainSubstring("AdGenius: turn-13"))
		Expect(strings.Count(p, "turn-")).To(Equal(chat.MaxHistoryTurns))
	})
})
