package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "postgres backend", args: []string{"cmd", "-b", "postgres", "-p", "postgres://x", "-u", "alice", "-i", "60"},
			expected: &Config{Backend: "postgres", PostgresDSN: "postgres://x", UserID: "alice", IdleLockTimeout: time.Minute}},
		{name: "snapshot targets", args: []string{"cmd", "-snapshot-dir", "/tmp/snap", "-s3-bucket", "bkt", "-i", "180"},
			expected: &Config{SnapshotDir: "/tmp/snap", S3Bucket: "bkt", IdleLockTimeout: 3 * time.Minute}},
		{name: "unknown flags ignored", args: []string{"cmd", "-c", "cfg.json", "-i", "5"},
			expected: &Config{IdleLockTimeout: 5 * time.Second}},
		{name: "incorrect idle timeout", args: []string{"cmd", "-i", "abc"}, expectPanic: true, expected: &Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
