package main

import (
	"context"
	"fmt"
	"path"

	"dagger/adgen/internal/dagger"
)

// bucket holds the S3-compatible destination for release artifacts.
type bucket struct {
	endpoint        *dagger.Secret
	name            *dagger.Secret
	accessKeyId     *dagger.Secret
	secretAccessKey *dagger.Secret
}

// sync uploads artifacts under prefix in the bucket.
func (b *bucket) sync(ctx context.Context, artifacts *dagger.Directory, prefix string) error {
	name, err := b.name.Plaintext(ctx)
	if err != nil {
		return fmt.Errorf("failed to get bucket name: %w", err)
	}
	endpoint, err := b.endpoint.Plaintext(ctx)
	if err != nil {
		return fmt.Errorf("failed to get endpoint: %w", err)
	}

	_, err = dag.Container().
		From("amazon/aws-cli:latest").
		WithSecretVariable("AWS_ACCESS_KEY_ID", b.accessKeyId).
		WithSecretVariable("AWS_SECRET_ACCESS_KEY", b.secretAccessKey).
		WithEnvVariable("AWS_DEFAULT_REGION", "auto").
		WithDirectory("/artifacts", artifacts).
		WithWorkdir("/artifacts").
		WithExec([]string{
			"aws", "s3", "sync", ".",
			fmt.Sprintf("s3://%s", path.Join(name, prefix)),
			"--endpoint-url", endpoint,
		}).
		Sync(ctx)
	if err != nil {
		return fmt.Errorf("failed to upload artifacts to %q: %w", prefix, err)
	}
	return nil
}

// withChecksums adds a SHA256SUMS file covering every binary in artifacts.
func withChecksums(artifacts *dagger.Directory) *dagger.Directory {
	return dag.Container().
		From("alpine:3").
		WithDirectory("/artifacts", artifacts).
		WithWorkdir("/artifacts").
		WithExec([]string{"sh", "-c", "find . -type f -name adgen | sort | xargs sha256sum > SHA256SUMS"}).
		Directory("/artifacts")
}

// ReleaseLatest builds versioned release binaries and uploads them under
// both the version and "latest".
func (a *Adgen) ReleaseLatest(
	ctx context.Context,

	// Version string (e.g., "v1.0.0")
	version string,

	// Git commit SHA
	commit string,

	// Bucket endpoint URL
	endpoint *dagger.Secret,

	// Bucket name
	bucketName *dagger.Secret,

	// Bucket access key ID
	accessKeyId *dagger.Secret,

	// Bucket secret access key
	secretAccessKey *dagger.Secret,
) (*dagger.Directory, error) {
	artifacts := withChecksums(a.BuildRelease(ctx, version, commit))
	b := &bucket{endpoint: endpoint, name: bucketName, accessKeyId: accessKeyId, secretAccessKey: secretAccessKey}

	for _, prefix := range []string{version, "latest"} {
		if err := b.sync(ctx, artifacts, prefix); err != nil {
			return artifacts, err
		}
	}
	return artifacts, nil
}

// Nightly builds and uploads nightly artifacts
func (a *Adgen) Nightly(
	ctx context.Context,

	// Git commit SHA
	commit string,

	// Bucket endpoint URL
	endpoint *dagger.Secret,

	// Bucket name
	bucketName *dagger.Secret,

	// Bucket access key ID
	accessKeyId *dagger.Secret,

	// Bucket secret access key
	secretAccessKey *dagger.Secret,
) (*dagger.Directory, error) {
	artifacts := withChecksums(a.BuildRelease(ctx, "nightly", commit))
	b := &bucket{endpoint: endpoint, name: bucketName, accessKeyId: accessKeyId, secretAccessKey: secretAccessKey}
	return artifacts, b.sync(ctx, artifacts, "nightly")
}
