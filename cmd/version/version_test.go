package versioncmder_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	versioncmder "github.com/adgenius/adgen/cmd/version"
	"github.com/adgenius/adgen/pkg/utils"
)

var _ = Describe("NewVersionCmd", func() {
	run := func(args ...string) string {
		cmd := versioncmder.NewVersionCmd()
		out := &bytes.Buffer{}
		cmd.SetOut(out)
		cmd.SetArgs(args)
		Expect(cmd.Execute()).To(Succeed())
		return out.String()
	}

	It("prints the build details", func() {
		out := run()
		Expect(out).To(ContainSubstring(utils.Version))
		Expect(out).To(ContainSubstring(utils.Sha))
		Expect(out).To(ContainSubstring("Go:"))
	})

	It("prints only the version with --short", func() {
		Expect(run("--short")).To(Equal(utils.Version + "\n"))
	})
})
