package auditcmd

import (
	"context"
	"fmt"
	"time"

	"github.com/martinsuchenak/fortimcp/internal/audit"
	"github.com/paularlott/cli"
)

// Command returns the audit command tree.
func Command() *cli.Command {
	return &cli.Command{
		Name:        "audit",
		Usage:       "Inspect the tool-call audit trail",
		Description: "Query the SQLite audit database written by the server",
		Commands: []*cli.Command{
			recentCommand(),
		},
	}
}

func recentCommand() *cli.Command {
	return &cli.Command{
		Name:        "recent",
		Usage:       "Show recent tool calls",
		Description: "Show the most recent tool calls, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "data-dir",
				Usage:   "Directory holding the audit database",
				EnvVars: []string{"FORTIMCP_DATA_DIR"},
			},
			&cli.IntFlag{
				Name:         "limit",
				Usage:        "Maximum number of entries to show",
				DefaultValue: 20,
			},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			dataDir := cmd.GetString("data-dir")
			if dataDir == "" {
				return fmt.Errorf("--data-dir is required (or set FORTIMCP_DATA_DIR)")
			}

			store, err := audit.Open(dataDir)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(cmd.GetInt("limit"))
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No tool calls recorded")
				return nil
			}

			for _, e := range entries {
				outcome := "ok"
				if !e.Success {
					outcome = "failed"
				}
				fmt.Printf("%s\t%s\t%s\t%s\t%dms", e.CreatedAt.Format(time.RFC3339), e.Tool, e.DeviceID, outcome, e.DurationMs)
				if e.Error != "" {
					fmt.Printf("\t%s", e.Error)
				}
				fmt.Println()
			}
			return nil
		},
	}
}
