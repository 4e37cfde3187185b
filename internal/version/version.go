// Package version is stamped at build time:
//
//	go build -ldflags "-X eshop-api/internal/version.Version=1.0.0 -X eshop-api/internal/version.Commit=$(git rev-parse --short HEAD)"
package version

var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)
