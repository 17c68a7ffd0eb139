package editor_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/adgenius/adgen/pkg/canvas"
	"github.com/adgenius/adgen/pkg/editor"
	"github.com/adgenius/adgen/pkg/logger"
	"github.com/adgenius/adgen/pkg/storage"
	"github.com/adgenius/adgen/pkg/storage/inmemory"
)

var _ = Describe("Registry", func() {
	var r *editor.Registry

	BeforeEach(func() {
		r = editor.NewRegistry(editor.RegistryConfig{Logger: logger.Nop()})
	})

	It("creates and finds sessions", func() {
		s, err := r.Create(oneElementDoc())
		Expect(err).NotTo(HaveOccurred())

		got, err := r.Get(s.ID())
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(BeIdenticalTo(s))
		Expect(r.Len()).To(Equal(1))
	})

	It("returns ErrSessionNotFound for unknown ids", func() {
		_, err := r.Get("nope")
		Expect(err).To(MatchError(editor.ErrSessionNotFound))
		Expect(r.Remove("nope")).To(MatchError(editor.ErrSessionNotFound))
	})

	It("disposes removed sessions", func() {
		s, _ := r.Create(nil)
		Expect(r.Remove(s.ID())).To(Succeed())

		Expect(s.Disposed()).To(BeTrue())
		_, err := r.Get(s.ID())
		Expect(err).To(MatchError(editor.ErrSessionNotFound))
	})

	It("disposes every session on Close", func() {
		a, _ := r.Create(nil)
		b, _ := r.Create(nil)
		r.Close()

		Expect(a.Disposed()).To(BeTrue())
		Expect(b.Disposed()).To(BeTrue())
		Expect(r.Sessions()).To(BeEmpty())
	})
})

var _ = Describe("Autosaver", func() {
	var (
		r      *editor.Registry
		driver *inmemory.Driver
		a      *editor.Autosaver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		r = editor.NewRegistry(editor.RegistryConfig{})
		driver = inmemory.NewDriver()
		a = editor.NewAutosaver(r, driver, time.Hour, logger.Nop())
	})

	It("saves each session once until it changes", func() {
		s, _ := r.Create(oneElementDoc())

		Expect(a.SaveAll(ctx)).To(Equal(1))
		Expect(a.SaveAll(ctx)).To(Equal(0))

		Expect(s.SetBackground("#abcdef")).To(Succeed())
		Expect(a.SaveAll(ctx)).To(Equal(1))

		data, err := driver.LoadAutosave(ctx, s.ID())
		Expect(err).NotTo(HaveOccurred())
		doc, err := canvas.Unmarshal(data)
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Background).To(Equal("#abcdef"))
	})

	It("skips disposed sessions", func() {
		s, _ := r.Create(nil)
		s.Dispose()
		Expect(a.SaveAll(ctx)).To(Equal(0))
	})

	It("flushes once more when stopped", func() {
		s, _ := r.Create(nil)

		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			a.Run(runCtx)
		}()
		cancel()
		Eventually(done).Should(BeClosed())

		_, err := driver.LoadAutosave(ctx, s.ID())
		Expect(err).NotTo(HaveOccurred())
	})
})

var _ = Describe("Projects", func() {
	var (
		s      *editor.Session
		driver *inmemory.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = inmemory.NewDriver()
		s = newSession(oneElementDoc(), nil)
	})

	It("saves, clears redo and reuses the project id", func() {
		Expect(s.SetBackground("#010101")).To(Succeed())
		_, _ = s.Undo()

		p, err := s.Save(ctx, driver, "Summer")
		Expect(err).NotTo(HaveOccurred())
		Expect(p.ID).NotTo(BeEmpty())
		Expect(s.ProjectID()).To(Equal(p.ID))

		ok, _ := s.Redo()
		Expect(ok).To(BeFalse())

		again, err := s.Save(ctx, driver, "Summer v2")
		Expect(err).NotTo(HaveOccurred())
		Expect(again.ID).To(Equal(p.ID))

		ps, _ := driver.ListProjects(ctx)
		Expect(ps).To(HaveLen(1))
		Expect(ps[0].Name).To(Equal("Summer v2"))
	})

	It("names unnamed projects", func() {
		p, err := s.Save(ctx, driver, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Name).To(Equal("Untitled"))
	})

	It("opens a stored project into another session", func() {
		p, err := s.Save(ctx, driver, "Reuse")
		Expect(err).NotTo(HaveOccurred())

		other := newSession(nil, nil)
		Expect(other.Open(ctx, driver, p.ID)).To(Succeed())

		doc := mustDoc(other)
		Expect(doc.Width).To(Equal(400))
		Expect(doc.Elements[0].Text).To(Equal("Big Sale"))
		Expect(other.ProjectID()).To(Equal(p.ID))
	})

	It("reports unknown projects", func() {
		err := s.Open(ctx, driver, "missing")
		Expect(storage.IsNotFound(err)).To(BeTrue())
	})
})
