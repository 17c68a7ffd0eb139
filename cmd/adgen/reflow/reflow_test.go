package reflowcmder_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	reflowcmder "github.com/adgenius/adgen/cmd/adgen/reflow"
	"github.com/adgenius/adgen/pkg/canvas"
	"github.com/adgenius/adgen/pkg/layout"
)

func writeStarter(dir string) string {
	doc, err := layout.Instantiate(layout.Starter(400, 400), 400, 400)
	Expect(err).NotTo(HaveOccurred())

	data, err := reflowcmder.EncodeDocument(doc)
	Expect(err).NotTo(HaveOccurred())

	path := filepath.Join(dir, "ad.json")
	Expect(os.WriteFile(path, data, 0o644)).To(Succeed())
	return path
}

var _ = Describe("reflow command", func() {
	var (
		dir  string
		path string
		out  *bytes.Buffer
	)

	execute := func(args ...string) error {
		cmd := reflowcmder.NewReflowCmd()
		out = &bytes.Buffer{}
		cmd.SetOut(out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)
		return cmd.Execute()
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		path = writeStarter(dir)
	})

	It("resizes to a preset and writes to stdout", func() {
		Expect(execute(path, "--preset", "9:16")).To(Succeed())

		doc, err := canvas.Unmarshal(canvas.Snapshot(out.Bytes()))
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Width).To(Equal(360))
		Expect(doc.Height).To(Equal(640))
		Expect(doc.Len()).To(BeNumerically(">", 0))
	})

	It("resizes to an explicit size and writes to a file", func() {
		target := filepath.Join(dir, "wide.json")
		Expect(execute(path, "--width", "500", "--height", "262", "-o", target)).To(Succeed())
		Expect(out.Len()).To(BeZero())

		doc, err := reflowcmder.ReadDocument(target)
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Width).To(Equal(500))
		Expect(doc.Height).To(Equal(262))
	})

	It("requires a target size", func() {
		Expect(execute(path)).To(MatchError(ContainSubstring("--preset")))
	})

	It("rejects unknown presets", func() {
		Expect(execute(path, "--preset", "3:2")).To(MatchError(ContainSubstring("unknown preset")))
	})

	It("rejects a preset combined with a size", func() {
		Expect(execute(path, "--preset", "1:1", "--width", "100")).NotTo(Succeed())
	})

	It("rejects a size the canvas cannot take", func() {
		Expect(execute(path, "--width", "-5", "--height", "100")).NotTo(Succeed())
	})

	It("reports unreadable documents", func() {
		bad := filepath.Join(dir, "bad.json")
		Expect(os.WriteFile(bad, []byte("{not json"), 0o644)).To(Succeed())
		Expect(execute(bad, "--preset", "1:1")).To(MatchError(ContainSubstring("parsing")))
		Expect(execute(filepath.Join(dir, "missing.json"), "--preset", "1:1")).To(MatchError(ContainSubstring("reading document")))
	})
})
