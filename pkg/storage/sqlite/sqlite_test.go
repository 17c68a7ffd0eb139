package sqlite_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/adgenius/adgen/pkg/storage"
	"github.com/adgenius/adgen/pkg/storage/sqlite"
	"github.com/adgenius/adgen/pkg/storage/storagetest"
)

var _ = storagetest.DescribeDriver("sqlite", func() storage.Driver {
	d, err := sqlite.NewSQLiteDriver(":memory:")
	Expect(err).NotTo(HaveOccurred())
	return d
})

var _ = Describe("SQLiteDriver", func() {
	Describe("NewSQLiteDriver", func() {
		It("creates a driver with file database", func() {
			tmpDir := GinkgoT().TempDir()
			dbPath := filepath.Join(tmpDir, "test.db")

			s, err := sqlite.NewSQLiteDriver(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer s.Close()

			// Verify file was created
			_, err = os.Stat(dbPath)
			Expect(err).NotTo(HaveOccurred())
		})

		It("persists projects across reopen", func() {
			ctx := context.Background()
			dbPath := filepath.Join(GinkgoT().TempDir(), "projects.db")

			s, err := sqlite.NewSQLiteDriver(dbPath)
			Expect(err).NotTo(HaveOccurred())
			p := &storage.Project{Name: "kept", Data: json.RawMessage(`{"width":800}`)}
			Expect(s.SaveProject(ctx, p)).To(Succeed())
			Expect(s.Close()).To(Succeed())

			s, err = sqlite.NewSQLiteDriver(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer s.Close()

			got, err := s.GetProject(ctx, p.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Name).To(Equal("kept"))
		})
	})
})
