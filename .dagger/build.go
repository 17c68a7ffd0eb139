package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dagger/adgen/internal/dagger"
)

// Build and return directory of go binaries
func (a *Adgen) Build(
	ctx context.Context,

	// Linker flags for go build
	// +optional
	// +default="-s -w"
	ldflags string,
) *dagger.Directory {
	// define build matrix. Cross compiled binaries are built without CGO, so
	// they ship the memory and postgres storage drivers only; use BuildNative
	// for a binary with sqlite.
	gooses := []string{"linux", "darwin"}
	goarches := []string{"amd64", "arm64"}

	// create empty directory to put build artifacts
	outputs := dag.Directory()

	golang := dag.Container().
		From("golang:1.25-alpine").
		WithEnvVariable("CGO_ENABLED", "0").
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build")).
		WithDirectory("/src", a.Source).
		WithWorkdir("/src")

	for _, goos := range gooses {
		for _, goarch := range goarches {
			// create directory for each OS and architecture
			path := fmt.Sprintf("%s/%s/", goos, goarch)

			// build artifact
			build := golang.
				WithEnvVariable("GOOS", goos).
				WithEnvVariable("GOARCH", goarch).
				WithExec([]string{"go", "build", "-ldflags", ldflags, "-o", path, "./cli/adgen"})

			// add build to outputs
			outputs = outputs.WithDirectory(path, build.Directory(path))
		}
	}

	// return build directory
	return outputs
}

// BuildRelease compiles versioned release binaries with embedded version info
func (a *Adgen) BuildRelease(
	ctx context.Context,

	// Version string of build
	version string,

	// Git commit SHA of build
	commit string,
) *dagger.Directory {
	buildtime := time.Now()

	ldflags := []string{
		"-s",
		"-w",
		fmt.Sprintf("-X 'github.com/adgenius/adgen/pkg/utils.Version=%s'", version),
		fmt.Sprintf("-X 'github.com/adgenius/adgen/pkg/utils.Sha=%s'", commit),
		fmt.Sprintf("-X 'github.com/adgenius/adgen/pkg/utils.Buildtime=%s'", buildtime),
	}

	return a.Build(ctx, strings.Join(ldflags, " "))
}

// BuildNative compiles adgen for the container's own platform with CGO
// enabled, which the sqlite storage driver needs.
func (a *Adgen) BuildNative(
	// Linker flags for go build
	// +optional
	// +default="-s -w"
	ldflags string,
) *dagger.File {
	return a.goContainer().
		WithExec([]string{"go", "build", "-ldflags", ldflags, "-o", "/out/adgen", "./cli/adgen"}).
		File("/out/adgen")
}
