package mcp_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/adgenius/adgen/api/mcp"
	"github.com/adgenius/adgen/pkg/editor"
	adgenlogger "github.com/adgenius/adgen/pkg/logger"
)

var _ = Describe("MCP Server", func() {
	var (
		server   *mcp.Server
		registry *editor.Registry
	)

	BeforeEach(func() {
		logger := adgenlogger.Nop()
		registry = editor.NewRegistry(editor.RegistryConfig{Logger: logger})
		DeferCleanup(registry.Close)

		var err error
		server, err = mcp.NewServer(mcp.Config{
			Registry: registry,
			Logger:   logger,
		})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewServer", func() {
		It("returns an error when the registry is nil", func() {
			_, err := mcp.NewServer(mcp.Config{Logger: adgenlogger.Nop()})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("session registry is required"))
		})

		It("returns an error when logger is nil", func() {
			_, err := mcp.NewServer(mcp.Config{Registry: registry})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("logger is required"))
		})

		It("creates a noop server without dependencies", func() {
			noop, err := mcp.NewServer(mcp.Config{Noop: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(noop.Handler()).NotTo(BeNil())
		})

		It("creates a server with valid config", func() {
			Expect(server).NotTo(BeNil())
		})

		It("returns an HTTP handler", func() {
			handler := server.Handler()
			Expect(handler).NotTo(BeNil())
		})
	})
})
