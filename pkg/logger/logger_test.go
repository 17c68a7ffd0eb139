package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/adgenius/adgen/pkg/logger"
)

func decodeLine(buf *bytes.Buffer) map[string]any {
	var parsed map[string]any
	ExpectWithOffset(1, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &parsed)).To(Succeed())
	return parsed
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("disk full") }

var _ = Describe("Logger", func() {
	Describe("New", func() {
		It("writes text at Info by default", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf))
			l.Info("session created", "session_id", "abc")
			l.Debug("hidden")

			Expect(buf.String()).To(ContainSubstring("session created"))
			Expect(buf.String()).To(ContainSubstring("session_id=abc"))
			Expect(buf.String()).NotTo(ContainSubstring("hidden"))
		})

		It("lets debug records through with WithDebug", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithDebug(true))
			l.Debug("document changed")

			Expect(buf.String()).To(ContainSubstring("document changed"))
		})

		It("drops records under WithLevel", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithLevel(slog.LevelWarn))
			l.Info("quiet")
			l.Warn("image failed to load")

			Expect(buf.String()).NotTo(ContainSubstring("quiet"))
			Expect(buf.String()).To(ContainSubstring("image failed to load"))
		})

		It("writes JSON records", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithFormat(logger.FormatJSON))
			l.Info("reflowed", "width", 1080)

			parsed := decodeLine(&buf)
			Expect(parsed["msg"]).To(Equal("reflowed"))
			Expect(parsed["width"]).To(BeNumerically("==", 1080))
		})

		It("writes pretty output", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithFormat(logger.FormatPretty))
			l.Info("listening")

			Expect(buf.String()).To(ContainSubstring("listening"))
		})

		It("honours the level in pretty output", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithFormat(logger.FormatPretty))
			l.Debug("hidden")

			Expect(buf.String()).To(BeEmpty())
		})

		It("tags records with the component", func() {
			var buf bytes.Buffer
			l := logger.New(
				logger.WithWriter(&buf),
				logger.WithFormat(logger.FormatJSON),
				logger.WithComponent("autosave"),
			)
			l.Info("saved")

			Expect(decodeLine(&buf)["component"]).To(Equal("autosave"))
		})

		It("writes to every writer", func() {
			var a, b bytes.Buffer
			l := logger.New(logger.WithWriter(&a, &b))
			l.Info("both")

			Expect(a.String()).To(ContainSubstring("both"))
			Expect(b.String()).To(ContainSubstring("both"))
		})
	})

	Describe("ParseFormat", func() {
		DescribeTable("known formats",
			func(in string, want logger.Format) {
				f, err := logger.ParseFormat(in)
				Expect(err).NotTo(HaveOccurred())
				Expect(f).To(Equal(want))
				if in != "" {
					Expect(f.String()).To(Equal(strings.ToLower(strings.TrimSpace(in))))
				}
			},
			Entry("empty", "", logger.FormatText),
			Entry("text", "text", logger.FormatText),
			Entry("json", "JSON", logger.FormatJSON),
			Entry("pretty", " pretty ", logger.FormatPretty),
		)

		It("rejects anything else", func() {
			_, err := logger.ParseFormat("xml")
			Expect(err).To(MatchError(ContainSubstring(`unknown log format "xml"`)))
		})
	})

	Describe("Nop", func() {
		It("is never enabled", func() {
			l := logger.Nop()
			Expect(l.Handler().Enabled(context.Background(), slog.LevelError)).To(BeFalse())
			Expect(func() { l.With("k", "v").WithGroup("g").Error("msg") }).NotTo(Panic())
		})
	})

	Describe("Multi", func() {
		It("dispatches to all loggers", func() {
			var a, b bytes.Buffer
			multi := logger.Multi(
				logger.New(logger.WithWriter(&a)),
				logger.New(logger.WithWriter(&b), logger.WithFormat(logger.FormatJSON)),
			)
			multi.Info("broadcast", "key", "val")

			Expect(a.String()).To(ContainSubstring("broadcast"))
			Expect(decodeLine(&b)["key"]).To(Equal("val"))
		})

		It("respects each logger's level", func() {
			var console, file bytes.Buffer
			multi := logger.Multi(
				logger.New(logger.WithWriter(&console)),
				logger.New(logger.WithWriter(&file), logger.WithDebug(true)),
			)
			multi.Debug("only in the file")

			Expect(console.String()).To(BeEmpty())
			Expect(file.String()).To(ContainSubstring("only in the file"))
		})

		It("skips nil loggers and flattens nested fan-outs", func() {
			var a, b bytes.Buffer
			inner := logger.Multi(logger.New(logger.WithWriter(&a)), nil)
			multi := logger.Multi(inner, logger.New(logger.WithWriter(&b)))
			multi.Info("flat")

			Expect(a.String()).To(ContainSubstring("flat"))
			Expect(b.String()).To(ContainSubstring("flat"))
		})

		It("carries With and WithGroup to every handler", func() {
			var buf bytes.Buffer
			multi := logger.Multi(logger.New(logger.WithWriter(&buf), logger.WithFormat(logger.FormatJSON)))
			multi.With("session_id", "abc").WithGroup("request").Info("processed", "method", "GET")

			parsed := decodeLine(&buf)
			Expect(parsed["session_id"]).To(Equal("abc"))
			group, ok := parsed["request"].(map[string]any)
			Expect(ok).To(BeTrue())
			Expect(group["method"]).To(Equal("GET"))
		})

		It("keeps writing after one handler fails", func() {
			var buf bytes.Buffer
			good := logger.New(logger.WithWriter(&buf))
			bad := slog.New(failingHandler{Handler: slog.NewTextHandler(&bytes.Buffer{}, nil)})

			h := logger.Multi(bad, good).Handler()
			r := slog.NewRecord(time.Now(), slog.LevelInfo, "still here", 0)
			Expect(h.Handle(context.Background(), r)).To(MatchError("disk full"))
			Expect(buf.String()).To(ContainSubstring("still here"))
		})
	})
})
