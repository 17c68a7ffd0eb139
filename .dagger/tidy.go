package main

import (
	"context"
	"errors"
	"fmt"

	"dagger/adgen/internal/dagger"
)

// CheckGoModTidy fails when "go mod tidy" would change go.mod or go.sum.
//
// +check
func (a *Adgen) CheckGoModTidy(ctx context.Context) (string, error) {
	_, err := a.goContainer().
		WithExec([]string{"cp", "go.mod", "/tmp/go.mod"}).
		WithExec([]string{"cp", "go.sum", "/tmp/go.sum"}).
		WithExec([]string{"go", "mod", "tidy"}).
		WithExec([]string{"sh", "-c", "diff -u /tmp/go.mod go.mod && diff -u /tmp/go.sum go.sum"}).
		Sync(ctx)

	var execErr *dagger.ExecError
	switch {
	case errors.As(err, &execErr):
		return "", fmt.Errorf("go.mod or go.sum need tidying, run 'go mod tidy':\n\n%s", execErr.Stdout)
	case err != nil:
		return "", fmt.Errorf("running go mod tidy: %w", err)
	}
	return "go.mod and go.sum are tidy", nil
}

// CheckVet runs "go vet" over the module.
//
// +check
func (a *Adgen) CheckVet(ctx context.Context) (string, error) {
	return a.goContainer().
		WithExec([]string{"go", "vet", "./..."}).
		Stdout(ctx)
}
