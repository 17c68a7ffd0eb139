package presetscmder_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	presetscmder "github.com/adgenius/adgen/cmd/adgen/presets"
	"github.com/adgenius/adgen/pkg/layout"
)

var _ = Describe("presets command", func() {
	It("lists every preset", func() {
		cmd := presetscmder.NewPresetsCmd()
		out := &bytes.Buffer{}
		cmd.SetOut(out)
		cmd.SetArgs(nil)
		Expect(cmd.Execute()).To(Succeed())

		for _, p := range layout.Presets {
			Expect(out.String()).To(ContainSubstring(p.ID))
		}
		Expect(out.String()).To(ContainSubstring("360×640"))
		Expect(out.String()).To(ContainSubstring(string(layout.ClassifyAspect(360, 640))))
	})
})
