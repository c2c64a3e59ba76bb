// Package config loads runtime configuration for the logbook CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-b string          storage backend: sqlite or postgres
//	-d string          SQLite DSN
//	-p string          Postgres DSN
//	-u string          journal owner id
//	-i int             idle lock timeout (seconds)
//	-snapshot-dir path directory for pre-migration snapshots
//	-s3-bucket string  bucket for pre-migration snapshots
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "3m" or
// integer nanoseconds. Missing keys keep their earlier value.
//
//	{
//	  "backend": "postgres",
//	  "postgres_dsn": "postgres://logbook@localhost/logbook",
//	  "user_id": "alice",
//	  "idle_lock_timeout": "3m",
//	  "reencrypt_grace_delay": "1s",
//	  "s3_bucket": "logbook-snapshots",
//	  "s3_region": "eu-central-1",
//	  "s3_base_endpoint": "http://localhost:9000"
//	}
package config
