package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/martinsuchenak/fortimcp/internal/audit"
	"github.com/martinsuchenak/fortimcp/internal/config"
	"github.com/martinsuchenak/fortimcp/internal/fortigate"
	"github.com/martinsuchenak/fortimcp/internal/log"
	"github.com/martinsuchenak/fortimcp/internal/mcp"
	"github.com/martinsuchenak/fortimcp/internal/worker"
	"github.com/paularlott/cli"
)

// buildRegistry loads the devices file and registers every device in a
// stable order.
func buildRegistry(path string) (*fortigate.Registry, error) {
	devices, err := config.LoadDevices(path)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(devices))
	for id := range devices {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	registry := fortigate.NewRegistry()
	for _, id := range ids {
		client, err := registry.Add(id, devices[id])
		if err != nil {
			return nil, err
		}
		log.Info("Device registered", "device_id", id, "host", client.Config().Host, "auth", string(client.AuthMethod()))
	}
	return registry, nil
}

// RunServer starts the gateway with the given configuration.
func RunServer(cfg *config.Config) error {
	registry, err := buildRegistry(cfg.DevicesFile)
	if err != nil {
		log.Error("Failed to load devices", "file", cfg.DevicesFile, "error", err)
		return err
	}
	log.Info("Device registry initialized", "devices", registry.Len())

	monitor := worker.NewMonitor(registry)

	// Optional connectivity probe before accepting requests.
	if cfg.TestOnStart {
		log.Info("Testing device connectivity before startup")
		for id, ok := range monitor.RunProbe(context.Background()) {
			if ok {
				log.Info("Device reachable", "device_id", id)
			} else {
				log.Warn("Device unreachable", "device_id", id)
			}
		}
	}

	if cfg.HealthInterval != "" {
		if err := monitor.Start(cfg.HealthInterval); err != nil {
			log.Error("Failed to start health monitor", "schedule", cfg.HealthInterval, "error", err)
			return err
		}
		defer monitor.Stop()
		log.Info("Health monitor started", "schedule", cfg.HealthInterval)
	}

	var auditStore *audit.Store
	if cfg.IsAuditEnabled() {
		auditStore, err = audit.Open(cfg.DataDir)
		if err != nil {
			log.Error("Failed to open audit store", "data_dir", cfg.DataDir, "error", err)
			return err
		}
		defer auditStore.Close()
		log.Info("Audit trail enabled", "data_dir", cfg.DataDir)
	}

	mcpServer := mcp.NewServer(registry, monitor, auditStore, cfg.BearerToken, cfg.ListenAddr)

	mux := http.NewServeMux()
	mux.HandleFunc("/mcp", mcpServer.GetHTTPHandler())

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: mux,
	}

	// Handle shutdown gracefully
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Info("Shutting down server...")
		server.Close()
	}()

	log.Info("Starting FortiGate MCP gateway", "addr", cfg.ListenAddr)
	log.Info("MCP available", "url", "http://localhost"+cfg.ListenAddr+"/mcp")
	mcpServer.LogStartup()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("Server error", "error", err)
		return err
	}

	log.Info("Server stopped")
	return nil
}

func Command() *cli.Command {
	return &cli.Command{
		Name:        "server",
		Usage:       "Start the FortiGate MCP gateway",
		Description: "Start the HTTP server exposing FortiGate management tools over MCP",
		Flags:       config.GetFlags(),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg := config.Load(cmd)

			log.Info("Configuration loaded", "listen_addr", cfg.ListenAddr, "devices_file", cfg.DevicesFile)

			return RunServer(cfg)
		},
	}
}
