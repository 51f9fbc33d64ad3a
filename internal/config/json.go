package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/todoauth/internal/flagx"
	"github.com/dmitrijs2005/todoauth/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields distinguish "absent" from zero values, so a partial file only
// overrides what it names.
type JsonConfig struct {
	StoreDriver *string `json:"store_driver"`
	StoreDSN    *string `json:"store_dsn"`
	DataDir     *string `json:"data_dir"`

	S3Bucket       *string `json:"s3_bucket"`
	S3Region       *string `json:"s3_region"`
	S3BaseEndpoint *string `json:"s3_base_endpoint"`
	S3AccessKey    *string `json:"s3_access_key"`
	S3SecretKey    *string `json:"s3_secret_key"`
	S3Prefix       *string `json:"s3_prefix"`

	SecretKey            *string         `json:"secret_key"`
	ResetTokenTTL        *timex.Duration `json:"reset_token_ttl"`
	VerificationTokenTTL *timex.Duration `json:"verification_token_ttl"`
	SimulateLatency      *bool           `json:"simulate_latency"`
	LogLevel             *string         `json:"log_level"`
}

// parseJson overlays cfg with values loaded from the JSON file named by
// -c/-config. Without the flag nothing happens. Read or unmarshal errors
// panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
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

	setString(&cfg.StoreDriver, jc.StoreDriver)
	setString(&cfg.StoreDSN, jc.StoreDSN)
	setString(&cfg.DataDir, jc.DataDir)
	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	setString(&cfg.S3AccessKey, jc.S3AccessKey)
	setString(&cfg.S3SecretKey, jc.S3SecretKey)
	setString(&cfg.S3Prefix, jc.S3Prefix)
	setString(&cfg.SecretKey, jc.SecretKey)
	setString(&cfg.LogLevel, jc.LogLevel)

	if jc.ResetTokenTTL != nil {
		cfg.ResetTokenTTL = jc.ResetTokenTTL.Duration
	}
	if jc.VerificationTokenTTL != nil {
		cfg.VerificationTokenTTL = jc.VerificationTokenTTL.Duration
	}
	if jc.SimulateLatency != nil {
		cfg.SimulateLatency = *jc.SimulateLatency
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
