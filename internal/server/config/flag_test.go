package config

import (
	"flag"
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
		{name: "Test1 OK", args: []string{"cmd",
			"-a", "127.0.0.1:9090", "-d", "db", "-b", "https://login.example.com",
			"-k", "primarykey", "-e", "testkey", "-u", "apiuser", "-n", "account",
			"-p", "owner", "-t", "60", "-m", "3", "-l", "5",
			"-w", "10.0.0.1,10.0.0.2", "-s", "secret", "-r", "/dashboard",
		}, expectPanic: false,
			expected: &Config{
				EndpointAddr:   "127.0.0.1:9090",
				DatabaseDSN:    "db",
				PublicBaseURL:  "https://login.example.com",
				APIKey:         "primarykey",
				TestAPIKey:     "testkey",
				BoundUsername:  "apiuser",
				LoginAccount:   "account",
				IdentityPolicy: "owner",
				TokenTTL:       60 * time.Second,
				MaxAttempts:    3,
				LockoutWindow:  5 * time.Minute,
				AllowedOrigins: []string{"10.0.0.1", "10.0.0.2"},
				SessionSecret:  "secret",
				RedirectTarget: "/dashboard",
			}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)

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

func TestParseFlags_EmptyAllowListStaysNil(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"cmd"}
	config := &Config{}
	parseFlags(config)

	assert.Nil(t, config.AllowedOrigins)
}
