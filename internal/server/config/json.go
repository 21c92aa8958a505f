package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/bluelink/internal/flagx"
	"github.com/dmitrijs2005/bluelink/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "30s" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddr     string         `json:"endpoint_addr"`
	DatabaseDSN      string         `json:"database_dsn"`
	PublicBaseURL    string         `json:"public_base_url"`
	APIKey           string         `json:"api_key"`
	TestAPIKey       string         `json:"test_api_key"`
	BoundUsername    string         `json:"bound_username"`
	LoginAccount     string         `json:"login_account"`
	TestLoginAccount string         `json:"test_login_account"`
	IdentityPolicy   string         `json:"identity_policy"`
	TokenTTL         timex.Duration `json:"token_ttl"`
	MaxAttempts      int            `json:"max_attempts"`
	LockoutWindow    timex.Duration `json:"lockout_window"`
	AllowedOrigins   []string       `json:"allowed_origins"`
	EnforceHTTPS     *bool          `json:"enforce_https"`
	SessionSecret    string         `json:"session_secret"`
	SessionValidity  timex.Duration `json:"session_validity"`
	RedirectTarget   string         `json:"redirect_target"`
	SiteRootURL      string         `json:"site_root_url"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The lookup order for the JSON file path is:
//
//	The -c or -config command-line flags.
//	If it is not set, no JSON file is loaded.
//
// If the file path is found, parseJson attempts to read and unmarshal it
// into a JsonConfig. The resulting values are copied into the target Config.
// If the file cannot be read or contains invalid JSON, the function panics.
//
// The caller is expected to merge these values with defaults and
// command-line flags as part of the full configuration process.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddr = c.EndpointAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.PublicBaseURL = c.PublicBaseURL
	config.APIKey = c.APIKey
	config.TestAPIKey = c.TestAPIKey
	config.BoundUsername = c.BoundUsername
	config.LoginAccount = c.LoginAccount
	config.TestLoginAccount = c.TestLoginAccount
	config.IdentityPolicy = c.IdentityPolicy
	config.TokenTTL = time.Duration(c.TokenTTL.Duration)
	config.MaxAttempts = c.MaxAttempts
	config.LockoutWindow = time.Duration(c.LockoutWindow.Duration)
	config.AllowedOrigins = c.AllowedOrigins
	if c.EnforceHTTPS != nil {
		config.EnforceHTTPS = *c.EnforceHTTPS
	}
	config.SessionSecret = c.SessionSecret
	config.SessionValidity = time.Duration(c.SessionValidity.Duration)
	config.RedirectTarget = c.RedirectTarget
	config.SiteRootURL = c.SiteRootURL
}
