package configcmd

import (
	"context"
	"fmt"
	"os"

	"github.com/martinsuchenak/fortimcp/internal/config"
	"github.com/paularlott/cli"
)

// Command returns the config command tree.
func Command() *cli.Command {
	return &cli.Command{
		Name:        "config",
		Usage:       "Manage the gateway configuration",
		Description: "Create and inspect the devices configuration file",
		Commands: []*cli.Command{
			initCommand(),
		},
	}
}

func initCommand() *cli.Command {
	return &cli.Command{
		Name:        "init",
		Usage:       "Write an example devices configuration file",
		Description: "Write a starter devices file with one password device and one token device",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:         "devices",
				Usage:        "Path to write the devices configuration file to",
				DefaultValue: "devices.json",
				EnvVars:      []string{"FORTIMCP_DEVICES"},
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing file",
			},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.GetString("devices")
			if !cmd.GetBool("force") {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists, use --force to overwrite", path)
				}
			}
			if err := config.WriteExample(path); err != nil {
				return err
			}
			fmt.Printf("Example configuration written to %s\n", path)
			fmt.Println("Edit the file with your device addresses and credentials before starting the server.")
			return nil
		},
	}
}
