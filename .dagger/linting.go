package main

import (
	"context"
	"fmt"

	"dagger/adgen/internal/dagger"
)

const golangciLintVersion = "v2.8.0"

// lintContainer layers golangci-lint on top of goContainer() so the sqlite
// dev headers, CGO, and Go caches are already in place.
func (a *Adgen) lintContainer() *dagger.Container {
	return a.goContainer().
		WithExec([]string{
			"go", "install",
			fmt.Sprintf("github.com/golangci/golangci-lint/v2/cmd/golangci-lint@%s", golangciLintVersion),
		}).
		WithMountedCache("/root/.cache/golangci-lint", dag.CacheVolume("golangci-lint"))
}

// CheckLint runs golangci-lint with the repository's .golangci.yml.
//
// +check
func (a *Adgen) CheckLint(ctx context.Context) (string, error) {
	return a.lintContainer().
		WithExec([]string{"golangci-lint", "run", "./..."}).
		Stdout(ctx)
}

// FixLint runs golangci-lint with --fix and returns the fixed source directory.
func (a *Adgen) FixLint(ctx context.Context) *dagger.Directory {
	return a.lintContainer().
		WithExec([]string{"golangci-lint", "run", "--fix", "./..."}, dagger.ContainerWithExecOpts{Expect: dagger.ReturnTypeAny}).
		Directory("/src")
}
