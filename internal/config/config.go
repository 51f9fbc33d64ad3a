package config

import "time"

// Supported key-value store backends.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
	DriverS3       = "s3"
)

// Config holds runtime settings for the todoauth client.
//
// Fields:
//   - StoreDriver / StoreDSN / DataDir: where the key-value entries live.
//   - S3*: object storage settings used when StoreDriver is "s3".
//   - SecretKey: HMAC secret for email verification links (HS256).
//   - ResetTokenTTL / VerificationTokenTTL: link lifetimes.
//   - SimulateLatency: add the artificial per-operation delays.
//   - LogLevel: minimum level written to the log.
type Config struct {
	StoreDriver string `env:"TODOAUTH_STORE_DRIVER"`
	StoreDSN    string `env:"TODOAUTH_STORE_DSN"`
	DataDir     string `env:"TODOAUTH_DATA_DIR"`

	S3Bucket       string `env:"TODOAUTH_S3_BUCKET"`
	S3Region       string `env:"TODOAUTH_S3_REGION"`
	S3BaseEndpoint string `env:"TODOAUTH_S3_BASE_ENDPOINT"`
	S3AccessKey    string `env:"TODOAUTH_S3_ACCESS_KEY"`
	S3SecretKey    string `env:"TODOAUTH_S3_SECRET_KEY"`
	S3Prefix       string `env:"TODOAUTH_S3_PREFIX"`

	SecretKey            string        `env:"TODOAUTH_SECRET_KEY"`
	ResetTokenTTL        time.Duration `env:"TODOAUTH_RESET_TOKEN_TTL"`
	VerificationTokenTTL time.Duration `env:"TODOAUTH_VERIFICATION_TOKEN_TTL"`
	SimulateLatency      bool          `env:"TODOAUTH_SIMULATE_LATENCY"`
	LogLevel             string        `env:"TODOAUTH_LOG_LEVEL"`
}

// LoadDefaults populates c with development defaults.
// NOTE: SecretKey must be overridden outside local use.
func (c *Config) LoadDefaults() {
	c.StoreDriver = DriverSQLite
	c.StoreDSN = "todoauth.db"
	c.DataDir = "data"
	c.S3Bucket = "todoauth"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.S3AccessKey = "admin"
	c.S3SecretKey = "secretpassword"
	c.S3Prefix = "kv"
	c.SecretKey = "secretKey"
	c.ResetTokenTTL = time.Hour
	c.VerificationTokenTTL = 24 * time.Hour
	c.SimulateLatency = true
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
