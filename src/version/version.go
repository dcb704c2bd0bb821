package version

// Version is the release version. Overridden at build time via
// -ldflags "-X github.com/Hedius/clickhouse-backup/src/version.Version=...".
var Version = "dev"
