package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/avoropay/finsync/internal/flagx"
	"github.com/avoropay/finsync/internal/timex"
)

// JsonConfig is an intermediate DTO for reading JSON configuration files.
// It uses timex.Duration for token lifetimes, accepting both "30m" strings
// and integer nanoseconds. After unmarshalling, its fields are copied into
// the runtime Config.
type JsonConfig struct {
	EndpointAddrHTTP      string         `json:"endpoint_addr_http"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	AccessTokenValidity   timex.Duration `json:"access_token_validity"`
	RefreshTokenValidity  timex.Duration `json:"refresh_token_validity"`
	RevokeSessionsOnReset bool           `json:"revoke_sessions_on_reset"`
	S3RootUser            string         `json:"s3_root_user"`
	S3RootPassword        string         `json:"s3_root_password"`
	S3Bucket              string         `json:"s3_bucket"`
	S3Region              string         `json:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags into the provided Config. If no flag is given, nothing
// is loaded. An unreadable or invalid file panics: a broken config file
// should stop startup.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.AccessTokenValidity = time.Duration(c.AccessTokenValidity.Duration)
	config.RefreshTokenValidity = time.Duration(c.RefreshTokenValidity.Duration)
	config.RevokeSessionsOnReset = c.RevokeSessionsOnReset
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
}
