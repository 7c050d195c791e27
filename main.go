package main

import (
	"context"
	"os"

	"github.com/martinsuchenak/fortimcp/cmd/auditcmd"
	"github.com/martinsuchenak/fortimcp/cmd/configcmd"
	"github.com/martinsuchenak/fortimcp/cmd/devices"
	"github.com/martinsuchenak/fortimcp/cmd/server"
	"github.com/martinsuchenak/fortimcp/internal/config"
	"github.com/martinsuchenak/fortimcp/internal/log"
	"github.com/paularlott/cli"
	"github.com/paularlott/cli/env"
)

func main() {
	// Load .env file if it exists
	env.Load()

	// Initialize structured logging
	log.Configure("info", "console")

	rootCmd := &cli.Command{
		Name:        config.ServerName,
		Version:     config.ServerVersion,
		Usage:       "FortiGate MCP gateway",
		Description: "A request-routing gateway exposing FortiGate management tools over MCP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:         "log-level",
				Usage:        "Log level (trace, debug, info, warn, error)",
				DefaultValue: "info",
				EnvVars:      []string{"FORTIMCP_LOG_LEVEL"},
				Global:       true,
			},
			&cli.StringFlag{
				Name:         "log-format",
				Usage:        "Log format (console, json)",
				DefaultValue: "console",
				EnvVars:      []string{"FORTIMCP_LOG_FORMAT"},
				Global:       true,
			},
		},
		PreRun: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logLevel := cmd.GetString("log-level")
			logFormat := cmd.GetString("log-format")
			log.Configure(logLevel, logFormat)
			return ctx, nil
		},
		Commands: []*cli.Command{
			server.Command(),
			devices.Command(),
			configcmd.Command(),
			auditcmd.Command(),
		},
	}

	if err := rootCmd.Execute(context.Background()); err != nil {
		log.Error("Command execution failed", "error", err)
		os.Exit(1)
	}
}
