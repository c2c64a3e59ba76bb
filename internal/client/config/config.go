package config

import "time"

const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config holds runtime settings for the logbook CLI.
//
// Units: IdleLockTimeout and ReencryptGraceDelay are time.Duration values.
// An empty S3Bucket and an empty SnapshotDir both disable pre-migration
// snapshots; when both are set S3 wins.
type Config struct {
	Backend     string
	DatabaseDSN string
	PostgresDSN string
	UserID      string

	IdleLockTimeout     time.Duration
	ReencryptGraceDelay time.Duration

	SnapshotDir    string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	S3AccessKey    string
	S3SecretKey    string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.Backend = BackendSQLite
	c.DatabaseDSN = "file:logbook.db"
	c.UserID = "local"
	c.IdleLockTimeout = 3 * time.Minute
	c.ReencryptGraceDelay = time.Second
	c.S3Region = "us-east-1"
}

// SnapshotsEnabled reports whether any snapshot target is configured.
func (c *Config) SnapshotsEnabled() bool {
	return c.S3Bucket != "" || c.SnapshotDir != ""
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
