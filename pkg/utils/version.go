// Package utils holds the build metadata stamped in by the release pipeline
// and the odd helper too small for a package of its own.
package utils

// Set with -ldflags "-X github.com/adgenius/adgen/pkg/utils.Version=..." by
// the release build.
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)
