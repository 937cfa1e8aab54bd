package version

// Build information set by ldflags
var (
	Version = "dev"     // Set by goreleaser: -X github.com/plugman-sh/plugman/internal/version.Version={{.Version}}
	Commit  = "unknown" // Set by goreleaser: -X github.com/plugman-sh/plugman/internal/version.Commit={{.Commit}}
	Date    = "unknown" // Set by goreleaser: -X github.com/plugman-sh/plugman/internal/version.Date={{.Date}}
)
