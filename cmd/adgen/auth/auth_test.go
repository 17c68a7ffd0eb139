package authcmder_test

import (
	"bytes"
	"strings"

	"github.com/spf13/cobra"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	authcmder "github.com/adgenius/adgen/cmd/adgen/auth"
	"github.com/adgenius/adgen/pkg/credentials"
)

var _ = Describe("auth command", func() {
	var (
		dir string
		out *bytes.Buffer
	)

	execute := func(stdin string, args ...string) error {
		root := &cobra.Command{Use: "adgen", SilenceUsage: true, SilenceErrors: true}
		root.PersistentFlags().String("config-dir", "", "")
		root.AddCommand(authcmder.NewAuthCmd())

		out = &bytes.Buffer{}
		root.SetIn(strings.NewReader(stdin))
		root.SetOut(out)
		root.SetErr(out)
		root.SetArgs(append(append([]string{"auth"}, args...), "--config-dir", dir))
		return root.Execute()
	}

	storedKey := func(provider string) string {
		mgr, err := credentials.NewManager(dir)
		Expect(err).NotTo(HaveOccurred())
		key, err := mgr.GetKey(provider)
		Expect(err).NotTo(HaveOccurred())
		return key
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		GinkgoT().Setenv("ANTHROPIC_API_KEY", "")
		GinkgoT().Setenv("OPENAI_API_KEY", "")
	})

	It("stores a piped key", func() {
		Expect(execute("  sk-ant-123  \n", "anthropic")).To(Succeed())
		Expect(storedKey("anthropic")).To(Equal("sk-ant-123"))
		Expect(out.String()).To(ContainSubstring("Stored"))
	})

	It("normalizes the provider name", func() {
		Expect(execute("sk-1\n", "OpenAI")).To(Succeed())
		Expect(storedKey("openai")).To(Equal("sk-1"))
	})

	It("rejects unsupported providers", func() {
		Expect(execute("key\n", "ollama")).To(MatchError(ContainSubstring("unsupported provider")))
	})

	It("rejects empty keys", func() {
		Expect(execute("\n", "openai")).To(MatchError(ContainSubstring("cannot be empty")))
		Expect(execute("", "openai")).To(MatchError(ContainSubstring("no input")))
	})

	It("requires a provider", func() {
		Expect(execute("")).To(MatchError(ContainSubstring("provider argument required")))
	})

	It("lists and removes stored keys", func() {
		Expect(execute("", "--list")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("No stored keys"))

		Expect(execute("sk-1\n", "openai")).To(Succeed())
		Expect(execute("", "--list")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("openai"))

		GinkgoT().Setenv("OPENAI_API_KEY", "env-key")
		Expect(execute("", "--list")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("overridden by OPENAI_API_KEY"))

		Expect(execute("", "--remove", "openai")).To(Succeed())
		Expect(storedKey("openai")).To(BeEmpty())
	})
})
