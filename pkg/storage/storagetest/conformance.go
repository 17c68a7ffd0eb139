// Package storagetest holds the behavioural tests every storage.Driver must
// pass. Driver packages call DescribeDriver from their own suites.
package storagetest

import (
	"context"
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/adgenius/adgen/pkg/storage"
)

// DescribeDriver registers the conformance specs. newDriver is called before
// each spec; the returned driver is closed after it.
func DescribeDriver(name string, newDriver func() storage.Driver) bool {
	return Describe(name+" conformance", func() {
		var (
			driver storage.Driver
			ctx    context.Context
		)

		BeforeEach(func() {
			ctx = context.Background()
			driver = newDriver()
		})

		AfterEach(func() {
			if driver != nil {
				Expect(driver.Close()).To(Succeed())
			}
		})

		Describe("SaveProject", func() {
			It("assigns an id and timestamps", func() {
				p := &storage.Project{Name: "Summer sale", Data: json.RawMessage(`{"width":1080}`)}
				Expect(driver.SaveProject(ctx, p)).To(Succeed())

				Expect(p.ID).NotTo(BeEmpty())
				Expect(p.CreatedAt).NotTo(BeZero())
				Expect(p.UpdatedAt).NotTo(BeZero())
			})

			It("round-trips the payload", func() {
				p := &storage.Project{
					Name:        "Promo",
					AspectRatio: "9:16",
					Data:        json.RawMessage(`{"width":1080,"height":1920}`),
				}
				Expect(driver.SaveProject(ctx, p)).To(Succeed())

				got, err := driver.GetProject(ctx, p.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(got.Name).To(Equal("Promo"))
				Expect(got.AspectRatio).To(Equal("9:16"))
				Expect(got.Data).To(MatchJSON(`{"width":1080,"height":1920}`))
			})

			It("keeps the creation time on update", func() {
				p := &storage.Project{Name: "v1", Data: json.RawMessage(`{}`)}
				Expect(driver.SaveProject(ctx, p)).To(Succeed())
				created := p.CreatedAt

				p.Name = "v2"
				Expect(driver.SaveProject(ctx, p)).To(Succeed())

				got, err := driver.GetProject(ctx, p.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(got.Name).To(Equal("v2"))
				Expect(got.CreatedAt.Equal(created)).To(BeTrue())
				Expect(got.UpdatedAt.Before(created)).To(BeFalse())
			})

			It("rejects nil projects", func() {
				Expect(driver.SaveProject(ctx, nil)).NotTo(Succeed())
			})
		})

		Describe("GetProject", func() {
			It("returns NotFoundError for unknown ids", func() {
				_, err := driver.GetProject(ctx, "missing")
				Expect(storage.IsNotFound(err)).To(BeTrue())
			})
		})

		Describe("ListProjects", func() {
			It("returns an empty list for an empty store", func() {
				ps, err := driver.ListProjects(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(ps).To(BeEmpty())
			})

			It("lists the most recently updated first", func() {
				a := &storage.Project{Name: "a", Data: json.RawMessage(`{}`)}
				b := &storage.Project{Name: "b", Data: json.RawMessage(`{}`)}
				Expect(driver.SaveProject(ctx, a)).To(Succeed())
				Expect(driver.SaveProject(ctx, b)).To(Succeed())
				Expect(driver.SaveProject(ctx, a)).To(Succeed())

				ps, err := driver.ListProjects(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(ps).To(HaveLen(2))
				Expect(ps[0].Name).To(Equal("a"))
				Expect(ps[1].Name).To(Equal("b"))
			})
		})

		Describe("DeleteProject", func() {
			It("removes the project", func() {
				p := &storage.Project{Name: "gone", Data: json.RawMessage(`{}`)}
				Expect(driver.SaveProject(ctx, p)).To(Succeed())
				Expect(driver.DeleteProject(ctx, p.ID)).To(Succeed())

				_, err := driver.GetProject(ctx, p.ID)
				Expect(storage.IsNotFound(err)).To(BeTrue())
			})

			It("returns NotFoundError for unknown ids", func() {
				Expect(storage.IsNotFound(driver.DeleteProject(ctx, "missing"))).To(BeTrue())
			})
		})

		Describe("Autosave", func() {
			It("overwrites the slot per session", func() {
				Expect(driver.SaveAutosave(ctx, "s1", []byte(`{"v":1}`))).To(Succeed())
				Expect(driver.SaveAutosave(ctx, "s1", []byte(`{"v":2}`))).To(Succeed())
				Expect(driver.SaveAutosave(ctx, "s2", []byte(`{"v":3}`))).To(Succeed())

				data, err := driver.LoadAutosave(ctx, "s1")
				Expect(err).NotTo(HaveOccurred())
				Expect(data).To(MatchJSON(`{"v":2}`))
			})

			It("returns NotFoundError for sessions without an autosave", func() {
				_, err := driver.LoadAutosave(ctx, "none")
				Expect(storage.IsNotFound(err)).To(BeTrue())
			})
		})
	})
}
