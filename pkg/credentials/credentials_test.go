package credentials_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/adgenius/adgen/pkg/credentials"
)

var _ = Describe("Manager", func() {
	var (
		dir string
		mgr *credentials.Manager
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()

		var err error
		mgr, err = credentials.NewManager(dir)
		Expect(err).NotTo(HaveOccurred())
	})

	It("targets credentials.toml in the override directory", func() {
		Expect(mgr.GetTarget()).To(Equal(filepath.Join(dir, "credentials.toml")))
	})

	Describe("Load", func() {
		It("returns empty credentials when no file exists", func() {
			creds, err := mgr.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(creds.Providers).To(BeEmpty())
		})

		It("loads existing credentials", func() {
			data := "version = 0\n\n[providers.anthropic]\napi_key = \"sk-ant-test\"\n"
			Expect(os.WriteFile(mgr.GetTarget(), []byte(data), 0o600)).To(Succeed())

			Expect(mgr.GetKey("anthropic")).To(Equal("sk-ant-test"))
		})

		It("returns an error for malformed TOML", func() {
			Expect(os.WriteFile(mgr.GetTarget(), []byte("not [valid"), 0o600)).To(Succeed())
			_, err := mgr.Load()
			Expect(err).To(MatchError(ContainSubstring("parsing credentials")))
		})
	})

	Describe("Save", func() {
		It("writes the file readable only by the owner", func() {
			Expect(mgr.SetKey("openai", "sk-test")).To(Succeed())

			info, err := os.Stat(mgr.GetTarget())
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o600)))
		})

		It("refuses nil credentials", func() {
			Expect(mgr.Save(nil)).To(HaveOccurred())
		})
	})

	Describe("SetKey and RemoveKey", func() {
		It("overwrites and removes keys without touching other providers", func() {
			Expect(mgr.SetKey("openai", "first")).To(Succeed())
			Expect(mgr.SetKey("anthropic", "ant")).To(Succeed())
			Expect(mgr.SetKey("openai", "second")).To(Succeed())
			Expect(mgr.GetKey("openai")).To(Equal("second"))

			Expect(mgr.RemoveKey("openai")).To(Succeed())
			Expect(mgr.GetKey("openai")).To(BeEmpty())
			Expect(mgr.GetKey("anthropic")).To(Equal("ant"))
		})

		It("treats removing an unknown provider as a no-op", func() {
			Expect(mgr.RemoveKey("ollama")).To(Succeed())
		})
	})

	Describe("ListProviders", func() {
		It("returns stored providers in sorted order", func() {
			Expect(mgr.ListProviders()).To(BeEmpty())
			Expect(mgr.SetKey("openai", "a")).To(Succeed())
			Expect(mgr.SetKey("anthropic", "b")).To(Succeed())
			Expect(mgr.ListProviders()).To(Equal([]string{"anthropic", "openai"}))
		})
	})

	Describe("Lookup", func() {
		It("prefers the environment variable", func() {
			GinkgoT().Setenv("ANTHROPIC_API_KEY", "from-env")
			Expect(mgr.SetKey("anthropic", "from-file")).To(Succeed())

			key, source, err := mgr.Lookup("anthropic")
			Expect(err).NotTo(HaveOccurred())
			Expect(key).To(Equal("from-env"))
			Expect(source).To(Equal(credentials.SourceEnv))
		})

		It("falls back to the stored key", func() {
			GinkgoT().Setenv("OPENAI_API_KEY", "")
			Expect(mgr.SetKey("openai", "from-file")).To(Succeed())

			key, source, err := mgr.Lookup("openai")
			Expect(err).NotTo(HaveOccurred())
			Expect(key).To(Equal("from-file"))
			Expect(source).To(Equal(credentials.SourceFile))
		})

		It("reports nothing for providers without a key", func() {
			key, source, err := mgr.Lookup("ollama")
			Expect(err).NotTo(HaveOccurred())
			Expect(key).To(BeEmpty())
			Expect(source).To(BeEmpty())
		})
	})
})

var _ = Describe("providers", func() {
	It("maps providers to their environment variables", func() {
		Expect(credentials.EnvVarForProvider("openai")).To(Equal("OPENAI_API_KEY"))
		Expect(credentials.EnvVarForProvider("anthropic")).To(Equal("ANTHROPIC_API_KEY"))
		Expect(credentials.EnvVarForProvider("ollama")).To(BeEmpty())
	})

	It("knows which providers take a key", func() {
		Expect(credentials.SupportedProviders()).To(ConsistOf("openai", "anthropic"))
		Expect(credentials.IsSupportedProvider("anthropic")).To(BeTrue())
		Expect(credentials.IsSupportedProvider("ollama")).To(BeFalse())
	})
})
