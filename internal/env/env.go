package env

// Set at build time through -ldflags "-X github.com/ostafen/partview/internal/env.Version=...".
var (
	Version    = "dev"
	CommitHash = "none"
	BuildTime  = "unknown"
)

const AppName = "partview"
