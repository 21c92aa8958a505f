package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/bluelink/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-b string   public base URL used in redemption links
//	-k string   primary API key
//	-e string   secondary (test) API key
//	-u string   required username for issuance ("" disables the check)
//	-n string   login account name
//	-p string   identity policy: "fixed" or "owner"
//	-t int      token TTL, seconds (one of 30/60/120/180/240/300)
//	-m int      max failed attempts per origin
//	-l int      lockout window, minutes
//	-w string   comma-separated origin allow-list
//	-s string   session JWT secret
//	-r string   redirect target after redemption
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes
//     using flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers (seconds or minutes) and then
//     converted to time.Duration values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-d", "-b", "-k", "-e", "-u", "-n", "-p", "-t", "-m", "-l", "-w", "-s", "-r",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.PublicBaseURL, "b", config.PublicBaseURL, "public base URL")
	fs.StringVar(&config.APIKey, "k", config.APIKey, "primary API key")
	fs.StringVar(&config.TestAPIKey, "e", config.TestAPIKey, "secondary (test) API key")
	fs.StringVar(&config.BoundUsername, "u", config.BoundUsername, "required username for issuance")
	fs.StringVar(&config.LoginAccount, "n", config.LoginAccount, "login account name")
	fs.StringVar(&config.IdentityPolicy, "p", config.IdentityPolicy, "identity policy (fixed|owner)")

	tokenTTL := fs.Int("t", int(config.TokenTTL.Seconds()), "token_ttl (in seconds)")
	maxAttempts := fs.Int("m", config.MaxAttempts, "max failed attempts per origin")
	lockoutWindow := fs.Int("l", int(config.LockoutWindow.Minutes()), "lockout_window (in minutes)")

	allowedOrigins := fs.String("w", strings.Join(config.AllowedOrigins, ","), "comma-separated origin allow-list")
	fs.StringVar(&config.SessionSecret, "s", config.SessionSecret, "session secret key")
	fs.StringVar(&config.RedirectTarget, "r", config.RedirectTarget, "redirect target after redemption")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenTTL = time.Duration(*tokenTTL) * time.Second
	config.MaxAttempts = *maxAttempts
	config.LockoutWindow = time.Duration(*lockoutWindow) * time.Minute

	if *allowedOrigins == "" {
		config.AllowedOrigins = nil
	} else {
		config.AllowedOrigins = strings.Split(*allowedOrigins, ",")
	}
}
