package api

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/adgenius/adgen/pkg/editor"
	adgenlogger "github.com/adgenius/adgen/pkg/logger"
	"github.com/adgenius/adgen/pkg/storage"
	"github.com/adgenius/adgen/pkg/storage/inmemory"
)

var _ = Describe("Project endpoints", func() {
	var (
		server *Server
		id     string
	)

	BeforeEach(func() {
		registry := editor.NewRegistry(editor.RegistryConfig{})
		DeferCleanup(registry.Close)

		var err error
		server, err = NewServer(Config{ListenAddr: ":0"}, registry, inmemory.NewDriver(), adgenlogger.Nop())
		Expect(err).NotTo(HaveOccurred())

		resp := do(server, http.MethodPost, "/sessions", nil)
		Expect(resp.StatusCode).To(Equal(fiber.StatusCreated))
		id = decode[SessionResponse](resp).ID
	})

	save := func(name string) ProjectInfo {
		resp := do(server, http.MethodPost, "/sessions/"+id+"/save", SaveRequest{Name: name})
		Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
		return decode[ProjectInfo](resp)
	}

	It("creates a project on first save and updates it afterwards", func() {
		first := save("Summer")
		Expect(first.ID).NotTo(BeEmpty())
		Expect(first.Name).To(Equal("Summer"))
		Expect(first.AspectRatio).To(Equal("1:1"))

		second := save("Summer v2")
		Expect(second.ID).To(Equal(first.ID))

		resp := do(server, http.MethodGet, "/projects", nil)
		body := decode[map[string]any](resp)
		Expect(body["count"]).To(BeNumerically("==", 1))
	})

	It("names unnamed projects Untitled", func() {
		Expect(save("").Name).To(Equal("Untitled"))
	})

	It("returns a project with its document", func() {
		pid := save("Summer").ID
		resp := do(server, http.MethodGet, "/projects/"+pid, nil)
		Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

		p := decode[storage.Project](resp)
		Expect(p.Data).NotTo(BeEmpty())
	})

	It("clears the redo stack on save", func() {
		do(server, http.MethodPost, "/sessions/"+id+"/reflow", ReflowRequest{Preset: "4:5"})
		do(server, http.MethodPost, "/sessions/"+id+"/undo", nil)
		save("Summer")

		resp := do(server, http.MethodGet, "/sessions/"+id, nil)
		Expect(decode[SessionResponse](resp).History.CanRedo).To(BeFalse())
	})

	It("opens a project into another session with a fresh history", func() {
		do(server, http.MethodPost, "/sessions/"+id+"/reflow", ReflowRequest{Preset: "9:16"})
		pid := save("Story").ID

		resp := do(server, http.MethodPost, "/sessions", nil)
		other := decode[SessionResponse](resp).ID

		resp = do(server, http.MethodPost, "/sessions/"+other+"/open/"+pid, nil)
		Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

		sess := decode[SessionResponse](resp)
		Expect(sess.ProjectID).To(Equal(pid))
		Expect(sess.Document.Width).To(Equal(360))
		Expect(sess.History.CanUndo).To(BeFalse())
	})

	It("returns 404 for unknown projects", func() {
		Expect(do(server, http.MethodGet, "/projects/missing", nil).StatusCode).To(Equal(fiber.StatusNotFound))
		Expect(do(server, http.MethodPost, "/sessions/"+id+"/open/missing", nil).StatusCode).To(Equal(fiber.StatusNotFound))
		Expect(do(server, http.MethodDelete, "/projects/missing", nil).StatusCode).To(Equal(fiber.StatusNotFound))
	})

	It("deletes a project", func() {
		pid := save("Gone").ID
		Expect(do(server, http.MethodDelete, "/projects/"+pid, nil).StatusCode).To(Equal(fiber.StatusNoContent))
		Expect(do(server, http.MethodGet, "/projects/"+pid, nil).StatusCode).To(Equal(fiber.StatusNotFound))
	})
})
