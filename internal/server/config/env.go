package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays configuration from environment variables. A .env file
// in the working directory is loaded first if present; real environment
// variables win over it, which is godotenv's default behavior.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("FINSYNC_HTTP_ADDR"); v != "" {
		config.EndpointAddrHTTP = v
	}
	if v := os.Getenv("FINSYNC_DATABASE_DSN"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("FINSYNC_SECRET_KEY"); v != "" {
		config.SecretKey = v
	}
	if v := os.Getenv("FINSYNC_ACCESS_TOKEN_VALIDITY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.AccessTokenValidity = d
		}
	}
	if v := os.Getenv("FINSYNC_REFRESH_TOKEN_VALIDITY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.RefreshTokenValidity = d
		}
	}
	if v := os.Getenv("FINSYNC_REVOKE_SESSIONS_ON_RESET"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.RevokeSessionsOnReset = b
		}
	}
	if v := os.Getenv("FINSYNC_S3_ROOT_USER"); v != "" {
		config.S3RootUser = v
	}
	if v := os.Getenv("FINSYNC_S3_ROOT_PASSWORD"); v != "" {
		config.S3RootPassword = v
	}
	if v := os.Getenv("FINSYNC_S3_BUCKET"); v != "" {
		config.S3Bucket = v
	}
	if v := os.Getenv("FINSYNC_S3_REGION"); v != "" {
		config.S3Region = v
	}
	if v := os.Getenv("FINSYNC_S3_BASE_ENDPOINT"); v != "" {
		config.S3BaseEndpoint = v
	}
}
