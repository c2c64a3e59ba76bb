package config

import (
	"encoding/json"
	"os"

	"github.com/sh3xu/logbook/internal/flagx"
	"github.com/sh3xu/logbook/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields distinguish "absent" from "empty" so a partial file only
// overrides what it names.
type JsonConfig struct {
	Backend     *string `json:"backend"`
	DatabaseDSN *string `json:"database_dsn"`
	PostgresDSN *string `json:"postgres_dsn"`
	UserID      *string `json:"user_id"`

	IdleLockTimeout     *timex.Duration `json:"idle_lock_timeout"`
	ReencryptGraceDelay *timex.Duration `json:"reencrypt_grace_delay"`

	SnapshotDir    *string `json:"snapshot_dir"`
	S3Bucket       *string `json:"s3_bucket"`
	S3Region       *string `json:"s3_region"`
	S3BaseEndpoint *string `json:"s3_base_endpoint"`
	S3AccessKey    *string `json:"s3_access_key"`
	S3SecretKey    *string `json:"s3_secret_key"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Without either flag it does nothing. Read and unmarshal
// errors panic; the caller may recover.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	jc.apply(cfg)
}

func (jc *JsonConfig) apply(cfg *Config) {
	setString(&cfg.Backend, jc.Backend)
	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setString(&cfg.PostgresDSN, jc.PostgresDSN)
	setString(&cfg.UserID, jc.UserID)
	setString(&cfg.SnapshotDir, jc.SnapshotDir)
	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	setString(&cfg.S3AccessKey, jc.S3AccessKey)
	setString(&cfg.S3SecretKey, jc.S3SecretKey)

	if jc.IdleLockTimeout != nil {
		cfg.IdleLockTimeout = jc.IdleLockTimeout.Duration
	}
	if jc.ReencryptGraceDelay != nil {
		cfg.ReencryptGraceDelay = jc.ReencryptGraceDelay.Duration
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
