// Package config holds the server runtime configuration and the loader for
// the JSON devices file.
package config

import (
	"github.com/paularlott/cli"
)

// Config holds the server runtime configuration.
type Config struct {
	ListenAddr     string // address the HTTP server binds to
	DevicesFile    string // path to the JSON devices configuration
	BearerToken    string // MCP bearer token, empty disables authentication
	DataDir        string // audit database directory, empty disables auditing
	HealthInterval string // cron spec for the connectivity sweep, empty disables it
	TestOnStart    bool   // probe all devices once at startup
}

// ServerName and ServerVersion identify this server to MCP clients and in
// the get_server_info tool.
const (
	ServerName    = "fortimcp"
	ServerVersion = "1.0.0"
)

// GetFlags returns the flags for the server command. Every flag can also be
// supplied through its FORTIMCP_* environment variable.
func GetFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:         "listen-addr",
			Usage:        "Address for the HTTP server",
			DefaultValue: ":8814",
			EnvVars:      []string{"FORTIMCP_LISTEN_ADDR"},
		},
		&cli.StringFlag{
			Name:         "devices",
			Usage:        "Path to the JSON devices configuration file",
			DefaultValue: "devices.json",
			EnvVars:      []string{"FORTIMCP_DEVICES"},
		},
		&cli.StringFlag{
			Name:    "bearer-token",
			Usage:   "Bearer token required on the MCP endpoint (empty disables auth)",
			EnvVars: []string{"FORTIMCP_BEARER_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "data-dir",
			Usage:   "Directory for the tool-call audit database (empty disables auditing)",
			EnvVars: []string{"FORTIMCP_DATA_DIR"},
		},
		&cli.StringFlag{
			Name:    "health-interval",
			Usage:   "Cron spec for the periodic connectivity sweep (empty disables it)",
			EnvVars: []string{"FORTIMCP_HEALTH_INTERVAL"},
		},
		&cli.BoolFlag{
			Name:    "test-on-start",
			Usage:   "Probe all configured devices once at startup",
			EnvVars: []string{"FORTIMCP_TEST_ON_START"},
		},
	}
}

// Load reads the server configuration from the command's flags.
func Load(cmd *cli.Command) *Config {
	return &Config{
		ListenAddr:     cmd.GetString("listen-addr"),
		DevicesFile:    cmd.GetString("devices"),
		BearerToken:    cmd.GetString("bearer-token"),
		DataDir:        cmd.GetString("data-dir"),
		HealthInterval: cmd.GetString("health-interval"),
		TestOnStart:    cmd.GetBool("test-on-start"),
	}
}

// IsAuthEnabled reports whether the MCP endpoint requires a bearer token.
func (c *Config) IsAuthEnabled() bool {
	return c.BearerToken != ""
}

// IsAuditEnabled reports whether tool invocations are recorded.
func (c *Config) IsAuditEnabled() bool {
	return c.DataDir != ""
}
