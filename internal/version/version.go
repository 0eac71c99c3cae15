package version

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/dotmirror/dotmirror/internal/version.Version={{.Version}}
	Commit  = "unknown" // -X github.com/dotmirror/dotmirror/internal/version.Commit={{.Commit}}
	Date    = "unknown" // -X github.com/dotmirror/dotmirror/internal/version.Date={{.Date}}
)
