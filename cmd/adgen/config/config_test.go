package configcmder_test

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	configcmder "github.com/adgenius/adgen/cmd/adgen/config"
	"github.com/adgenius/adgen/pkg/config"
)

var _ = Describe("NewConfigCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := configcmder.NewConfigCmd()
		Expect(cmd.Use).To(Equal("config"))
	})

	It("has set, get, and list subcommands", func() {
		cmd := configcmder.NewConfigCmd()
		subcommands := make([]string, 0, len(cmd.Commands()))
		for _, sub := range cmd.Commands() {
			subcommands = append(subcommands, sub.Name())
		}
		Expect(subcommands).To(ContainElements("set", "get", "list"))
	})
})

var _ = Describe("Config command execution", func() {
	var (
		dir string
		out *bytes.Buffer
	)

	// execute runs the config command the way the root command would,
	// with --config-dir inherited from a parent.
	execute := func(args ...string) error {
		root := &cobra.Command{Use: "adgen", SilenceUsage: true, SilenceErrors: true}
		root.PersistentFlags().String("config-dir", "", "")
		root.AddCommand(configcmder.NewConfigCmd())

		out = &bytes.Buffer{}
		root.SetOut(out)
		root.SetErr(out)
		root.SetArgs(append(append([]string{"config"}, args...), "--config-dir", dir))
		return root.Execute()
	}

	BeforeEach(func() {
		dir = filepath.Join(GinkgoT().TempDir(), ".adgen")
	})

	Describe("set subcommand", func() {
		It("writes the value to config.toml", func() {
			Expect(execute("set", "llm.provider", "anthropic")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("Set"))

			_, err := os.Stat(filepath.Join(dir, "config.toml"))
			Expect(err).NotTo(HaveOccurred())

			cfger, err := config.NewConfiger(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfger.GetConfigValue("llm.provider")).To(Equal("anthropic"))
		})

		It("rejects unknown keys", func() {
			Expect(execute("set", "proxy.provider", "anthropic")).To(MatchError(ContainSubstring("unknown config key")))
		})

		It("requires exactly two arguments", func() {
			Expect(execute("set", "llm.provider")).NotTo(Succeed())
			Expect(execute("set")).NotTo(Succeed())
		})

		It("rejects values of the wrong type", func() {
			Expect(execute("set", "editor.history_capacity", "lots")).NotTo(Succeed())
			Expect(execute("set", "editor.autosave_interval", "soon")).NotTo(Succeed())
			Expect(execute("set", "editor.gesture_coalescing", "maybe")).NotTo(Succeed())
		})
	})

	Describe("get subcommand", func() {
		It("prints a previously set value", func() {
			Expect(execute("set", "editor.autosave_interval", "45s")).To(Succeed())
			Expect(execute("get", "editor.autosave_interval")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("45s"))
		})

		It("marks unset keys", func() {
			Expect(execute("get", "llm.model")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("<not set>"))
		})

		It("rejects unknown keys", func() {
			Expect(execute("get", "invalid_key")).NotTo(Succeed())
		})

		It("requires exactly one argument", func() {
			Expect(execute("get")).NotTo(Succeed())
		})
	})

	Describe("list subcommand", func() {
		It("lists every key", func() {
			Expect(execute("list")).To(Succeed())
			for _, key := range config.ValidConfigKeys() {
				Expect(out.String()).To(ContainSubstring(key))
			}
		})

		It("shows values that were set", func() {
			Expect(execute("set", "eventstream.topic", "ad-events")).To(Succeed())
			Expect(execute("list")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("ad-events"))
		})

		It("rejects any arguments", func() {
			Expect(execute("list", "extra")).NotTo(Succeed())
		})
	})
})
