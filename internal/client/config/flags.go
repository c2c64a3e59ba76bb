package config

import (
	"flag"
	"os"
	"time"

	"github.com/sh3xu/logbook/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
// Only the flags listed here are considered; os.Args is filtered with
// flagx.FilterArgs so the JSON loader's -c/-config flags do not interfere.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-b", "-d", "-p", "-u", "-i", "-snapshot-dir", "-s3-bucket"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.Backend, "b", cfg.Backend, "storage backend (sqlite|postgres)")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "SQLite DSN")
	fs.StringVar(&cfg.PostgresDSN, "p", cfg.PostgresDSN, "Postgres DSN")
	fs.StringVar(&cfg.UserID, "u", cfg.UserID, "journal owner id")
	fs.StringVar(&cfg.SnapshotDir, "snapshot-dir", cfg.SnapshotDir, "directory for pre-migration snapshots")
	fs.StringVar(&cfg.S3Bucket, "s3-bucket", cfg.S3Bucket, "S3 bucket for pre-migration snapshots")
	idle := fs.Int("i", int(cfg.IdleLockTimeout.Seconds()), "idle lock timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.IdleLockTimeout = time.Duration(*idle) * time.Second
}
