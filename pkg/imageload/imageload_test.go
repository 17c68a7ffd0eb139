package imageload_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/adgenius/adgen/pkg/imageload"
	"github.com/adgenius/adgen/pkg/logger"
)

func pngBytes(w, h int) []byte {
	var buf bytes.Buffer
	Expect(png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)))).To(Succeed())
	return buf.Bytes()
}

// stubLoader answers from a fixed table and fails for everything else.
type stubLoader struct {
	mu    sync.Mutex
	sizes map[string]imageload.Image
	calls int
}

func (s *stubLoader) Load(_ context.Context, url string) (imageload.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	img, ok := s.sizes[url]
	if !ok {
		return imageload.Image{}, errors.New("not found")
	}
	return img, nil
}

var _ = Describe("HTTPLoader", func() {
	var (
		loader *imageload.HTTPLoader
		ctx    context.Context
	)

	BeforeEach(func() {
		loader = imageload.NewHTTPLoader(5 * time.Second)
		ctx = context.Background()
	})

	It("reports the size of an image served over http", func() {
		body := pngBytes(640, 480)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(body)
		}))
		DeferCleanup(srv.Close)

		img, err := loader.Load(ctx, srv.URL+"/product.png")
		Expect(err).NotTo(HaveOccurred())
		Expect(img.Width).To(Equal(640))
		Expect(img.Height).To(Equal(480))
		Expect(img.Format).To(Equal("png"))
	})

	It("fails on a non-200 response", func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		DeferCleanup(srv.Close)

		_, err := loader.Load(ctx, srv.URL+"/missing.png")
		Expect(err).To(MatchError(ContainSubstring("status 404")))
	})

	It("fails when the body is not an image", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html>nope</html>"))
		}))
		DeferCleanup(srv.Close)

		_, err := loader.Load(ctx, srv.URL)
		Expect(err).To(MatchError(ContainSubstring("decoding image")))
	})

	It("decodes base64 data urls", func() {
		url := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(12, 34))

		img, err := loader.Load(ctx, url)
		Expect(err).NotTo(HaveOccurred())
		Expect(img.Width).To(Equal(12))
		Expect(img.Height).To(Equal(34))
	})

	It("rejects unsupported schemes", func() {
		_, err := loader.Load(ctx, "bad://url")
		Expect(errors.Is(err, imageload.ErrUnsupportedScheme)).To(BeTrue())
	})

	It("honours context cancellation", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		DeferCleanup(srv.Close)

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := loader.Load(cctx, srv.URL)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Pool", func() {
	var (
		stub *stubLoader
		pool *imageload.Pool
	)

	BeforeEach(func() {
		stub = &stubLoader{sizes: map[string]imageload.Image{
			"https://cdn.test/a.png": {URL: "https://cdn.test/a.png", Width: 400, Height: 200},
		}}

		var err error
		pool, err = imageload.NewPool(&imageload.Config{
			Loader: stub,
			Logger: logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
	})

	It("requires a loader", func() {
		_, err := imageload.NewPool(&imageload.Config{})
		Expect(err).To(HaveOccurred())
	})

	It("delivers a resolved image to the job callback", func() {
		results := make(chan imageload.Result, 1)
		Expect(pool.Enqueue(imageload.Job{
			URL:      "https://cdn.test/a.png",
			Complete: func(r imageload.Result) { results <- r },
		})).To(BeTrue())

		var r imageload.Result
		Eventually(results).Should(Receive(&r))
		Expect(r.Err).NotTo(HaveOccurred())
		Expect(r.Image.Width).To(Equal(400))
		pool.Close()
	})

	It("delivers failures to the job callback", func() {
		results := make(chan imageload.Result, 1)
		pool.Enqueue(imageload.Job{
			URL:      "bad://url",
			Complete: func(r imageload.Result) { results <- r },
		})

		var r imageload.Result
		Eventually(results).Should(Receive(&r))
		Expect(r.Err).To(HaveOccurred())
		pool.Close()
	})

	It("drains queued jobs on Close", func() {
		var (
			mu   sync.Mutex
			done int
		)
		for range 10 {
			pool.Enqueue(imageload.Job{
				URL: "https://cdn.test/a.png",
				Complete: func(imageload.Result) {
					mu.Lock()
					done++
					mu.Unlock()
				},
			})
		}
		pool.Close()

		mu.Lock()
		defer mu.Unlock()
		Expect(done).To(Equal(10))
		Expect(stub.calls).To(Equal(10))
	})

	It("rejects jobs after Close", func() {
		pool.Close()

		results := make(chan imageload.Result, 1)
		ok := pool.Enqueue(imageload.Job{
			URL:      "https://cdn.test/a.png",
			Complete: func(r imageload.Result) { results <- r },
		})
		Expect(ok).To(BeFalse())

		var r imageload.Result
		Eventually(results).Should(Receive(&r))
		Expect(r.Err).To(MatchError(imageload.ErrPoolClosed))
	})

	It("tolerates a second Close", func() {
		pool.Close()
		Expect(pool.Close).NotTo(Panic())
	})
})
