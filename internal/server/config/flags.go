package config

import (
	"flag"
	"os"
	"time"

	"github.com/thriveos/thriveremote/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-t int      session validity, hours
//	-u string   demo (anonymous fallback) user id
//	-n          disable the anonymous fallback
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. The session
// validity flag is accepted as an integer in hours and converted to a
// time.Duration.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-t", "-u", "-n"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")

	sessionValidity := fs.Int("t", int(config.SessionValidityDuration.Hours()), "session_validity_duration (in hours)")

	fs.StringVar(&config.DemoUserID, "u", config.DemoUserID, "demo user id")
	noFallback := fs.Bool("n", !config.AnonymousFallback, "disable anonymous fallback")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionValidityDuration = time.Duration(*sessionValidity) * time.Hour
	config.AnonymousFallback = !*noFallback
}
