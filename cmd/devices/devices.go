package devices

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/martinsuchenak/fortimcp/internal/config"
	"github.com/martinsuchenak/fortimcp/internal/fortigate"
	"github.com/paularlott/cli"
	"golang.org/x/term"
)

func devicesFileFlag() cli.Flag {
	return &cli.StringFlag{
		Name:         "devices",
		Usage:        "Path to the JSON devices configuration file",
		DefaultValue: "devices.json",
		EnvVars:      []string{"FORTIMCP_DEVICES"},
	}
}

// Command returns the devices command tree for offline management of the
// devices file.
func Command() *cli.Command {
	return &cli.Command{
		Name:        "devices",
		Usage:       "Manage the configured FortiGate devices",
		Description: "Inspect, test and edit the JSON devices configuration file",
		Commands: []*cli.Command{
			listCommand(),
			testCommand(),
			addCommand(),
			removeCommand(),
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:        "list",
		Usage:       "List configured devices",
		Description: "List all devices in the configuration file",
		Flags:       []cli.Flag{devicesFileFlag()},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			devices, err := config.LoadDevices(cmd.GetString("devices"))
			if err != nil {
				return err
			}
			for _, id := range sortedIDs(devices) {
				d := devices[id]
				auth := "basic"
				if d.APIToken != "" {
					auth = "token"
				}
				fmt.Printf("%s\thost=%s:%d\tvdom=%s\tauth=%s\n", id, d.Host, d.Port, d.VDOM, auth)
			}
			return nil
		},
	}
}

func testCommand() *cli.Command {
	return &cli.Command{
		Name:        "test",
		Usage:       "Test connectivity to all configured devices",
		Description: "Probe every device in the configuration file and report reachability",
		Flags:       []cli.Flag{devicesFileFlag()},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			devices, err := config.LoadDevices(cmd.GetString("devices"))
			if err != nil {
				return err
			}

			registry := fortigate.NewRegistry()
			for _, id := range sortedIDs(devices) {
				if _, err := registry.Add(id, devices[id]); err != nil {
					return err
				}
			}

			failed := 0
			results := registry.TestAll(ctx)
			for _, id := range registry.List() {
				if results[id] {
					fmt.Printf("%s\tOK\n", id)
				} else {
					fmt.Printf("%s\tFAILED\n", id)
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d devices unreachable", failed, len(results))
			}
			return nil
		},
	}
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:        "add",
		Usage:       "Add a device to the configuration file",
		Description: "Add a new FortiGate device. With --username and no --password the password is prompted for.",
		Flags: []cli.Flag{
			devicesFileFlag(),
			&cli.StringFlag{Name: "host", Usage: "Hostname or IP address", Required: true},
			&cli.IntFlag{Name: "port", Usage: "HTTPS port", DefaultValue: fortigate.DefaultPort},
			&cli.StringFlag{Name: "api-token", Usage: "REST API token (preferred)"},
			&cli.StringFlag{Name: "username", Usage: "Username for basic authentication"},
			&cli.StringFlag{Name: "password", Usage: "Password (omit to be prompted)"},
			&cli.StringFlag{Name: "vdom", Usage: "Default virtual domain", DefaultValue: fortigate.DefaultVDOM},
			&cli.BoolFlag{Name: "verify-ssl", Usage: "Verify the device TLS certificate"},
			&cli.IntFlag{Name: "timeout", Usage: "Request timeout in seconds", DefaultValue: fortigate.DefaultTimeout},
		},
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id", Required: true},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.GetStringArg("id")

			password := cmd.GetString("password")
			if cmd.GetString("username") != "" && password == "" && cmd.GetString("api-token") == "" {
				fmt.Fprintf(os.Stderr, "Password for %s: ", cmd.GetString("username"))
				raw, err := term.ReadPassword(int(os.Stdin.Fd()))
				fmt.Fprintln(os.Stderr)
				if err != nil {
					return fmt.Errorf("reading password: %w", err)
				}
				password = string(raw)
			}

			device := fortigate.DeviceConfig{
				Host:      cmd.GetString("host"),
				Port:      cmd.GetInt("port"),
				Username:  cmd.GetString("username"),
				Password:  password,
				APIToken:  cmd.GetString("api-token"),
				VDOM:      cmd.GetString("vdom"),
				VerifySSL: cmd.GetBool("verify-ssl"),
				Timeout:   cmd.GetInt("timeout"),
			}
			device.ApplyDefaults()
			if err := device.Validate(id); err != nil {
				return err
			}

			path := cmd.GetString("devices")
			devices, err := loadForEdit(path)
			if err != nil {
				return err
			}
			if _, exists := devices[id]; exists {
				return fmt.Errorf("device '%s' already exists in %s", id, path)
			}

			devices[id] = device
			if err := config.SaveDevices(path, devices); err != nil {
				return err
			}
			fmt.Printf("Device '%s' added to %s\n", id, path)
			return nil
		},
	}
}

func removeCommand() *cli.Command {
	return &cli.Command{
		Name:        "remove",
		Usage:       "Remove a device from the configuration file",
		Description: "Remove a FortiGate device from the configuration file",
		Flags:       []cli.Flag{devicesFileFlag()},
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id", Required: true},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.GetStringArg("id")

			path := cmd.GetString("devices")
			devices, err := config.LoadDevices(path)
			if err != nil {
				return err
			}
			if _, exists := devices[id]; !exists {
				return fmt.Errorf("device '%s' not found in %s", id, path)
			}

			delete(devices, id)
			if err := config.SaveDevices(path, devices); err != nil {
				return err
			}
			fmt.Printf("Device '%s' removed from %s\n", id, path)
			return nil
		},
	}
}

// loadForEdit reads the devices file for modification. A missing file or one
// with an empty device mapping starts a fresh map instead of failing.
func loadForEdit(path string) (map[string]fortigate.DeviceConfig, error) {
	devices, err := config.LoadDevices(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) && !errors.Is(err, config.ErrNoDevices) {
			return nil, err
		}
		devices = make(map[string]fortigate.DeviceConfig)
	}
	return devices, nil
}

func sortedIDs(devices map[string]fortigate.DeviceConfig) []string {
	ids := make([]string, 0, len(devices))
	for id := range devices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
