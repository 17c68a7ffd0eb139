package dotdir_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/adgenius/adgen/pkg/dotdir"
)

var _ = Describe("dotdir", func() {
	var tmpDir string
	var m *dotdir.Manager

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "dotdir-test-*")
		Expect(err).NotTo(HaveOccurred())

		// Resolve symlinks so paths match filepath.Abs results
		// (e.g. on macOS /var -> /private/var).
		tmpDir, err = filepath.EvalSymlinks(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		m = dotdir.NewManager()
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("Target", func() {
		It("creates the directory if it doesn't exist", func() {
			dir := filepath.Join(tmpDir, "newdir")
			result, err := m.Target(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(dir))

			info, err := os.Stat(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.IsDir()).To(BeTrue())
		})

		It("returns the override dir even when a local .adgen dir exists", func() {
			Expect(os.Mkdir(filepath.Join(tmpDir, ".adgen"), 0o755)).To(Succeed())

			origDir, err := os.Getwd()
			Expect(err).NotTo(HaveOccurred())
			Expect(os.Chdir(tmpDir)).To(Succeed())
			DeferCleanup(func() { os.Chdir(origDir) })

			overrideDir := filepath.Join(tmpDir, "override")
			result, err := m.Target(overrideDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(overrideDir))
		})

		It("returns the local .adgen dir when it exists and no override is provided", func() {
			local := filepath.Join(tmpDir, ".adgen")
			Expect(os.Mkdir(local, 0o755)).To(Succeed())

			origDir, err := os.Getwd()
			Expect(err).NotTo(HaveOccurred())
			Expect(os.Chdir(tmpDir)).To(Succeed())
			DeferCleanup(func() { os.Chdir(origDir) })

			result, err := m.Target("")
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(local))
		})

		It("falls back to ~/.adgen when there is no local dir", func() {
			emptyDir := filepath.Join(tmpDir, "empty")
			Expect(os.Mkdir(emptyDir, 0o755)).To(Succeed())

			origDir, err := os.Getwd()
			Expect(err).NotTo(HaveOccurred())
			Expect(os.Chdir(emptyDir)).To(Succeed())
			DeferCleanup(func() { os.Chdir(origDir) })

			origHome := os.Getenv("HOME")
			Expect(os.Setenv("HOME", tmpDir)).To(Succeed())
			DeferCleanup(func() { os.Setenv("HOME", origHome) })

			result, err := m.Target("")
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(filepath.Join(tmpDir, ".adgen")))
		})
	})

	Describe("chat state", func() {
		It("returns nil when no chat state exists", func() {
			state, err := m.LoadChatState(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(state).To(BeNil())
		})

		It("round-trips through chat.json", func() {
			in := &dotdir.ChatState{
				SessionID: "sess-1",
				APITarget: "http://localhost:8081",
				Brand:     "tesco",
				Messages: []dotdir.ChatMessage{
					{Role: "user", Content: "make the logo bigger"},
					{Role: "assistant", Content: "Done!"},
				},
			}
			Expect(m.SaveChatState(in, tmpDir)).To(Succeed())

			out, err := m.LoadChatState(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal(in))
		})

		It("reports a corrupt chat state", func() {
			Expect(os.WriteFile(filepath.Join(tmpDir, "chat.json"), []byte("{"), 0o600)).To(Succeed())

			_, err := m.LoadChatState(tmpDir)
			Expect(err).To(MatchError(ContainSubstring("parsing chat state")))
		})

		It("refuses to save nil", func() {
			Expect(m.SaveChatState(nil, tmpDir)).NotTo(Succeed())
		})

		It("clears the state and tolerates clearing twice", func() {
			Expect(m.SaveChatState(&dotdir.ChatState{SessionID: "x"}, tmpDir)).To(Succeed())
			Expect(m.ClearChatState(tmpDir)).To(Succeed())
			Expect(m.ClearChatState(tmpDir)).To(Succeed())

			state, err := m.LoadChatState(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(state).To(BeNil())
		})
	})
})
