/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvberg/serialgw/internal/config"
	"github.com/mvberg/serialgw/internal/filterlist"
	"github.com/mvberg/serialgw/internal/gateway"
	"github.com/mvberg/serialgw/internal/gwlog"
	"github.com/mvberg/serialgw/internal/transport"
)

// rootCmd is the serialgw entry point: four positional arguments name
// the config file, the allowlist file, the denylist file, and the log
// path (spec § 6). Missing arguments fall through to Cobra's own
// usage-error formatting and exit 1.
var rootCmd = &cobra.Command{
	Use:   "serialgw <config_file> <allowlist_file> <denylist_file> <log_path>",
	Short: "Discover, admit, and bridge line-protocol serial devices",
	Long: `serialgw discovers serial-line devices attached to the host,
identifies each by an application-level ID obtained through a
handshake, maintains a live registry keyed by that ID, continuously
ingests line-delimited messages from every device, and offers a
symmetric send path so an operator can address any registered device
by ID through the interactive command surface.`,
	Args: cobra.ExactArgs(4),
	RunE: runGateway,
}

// Execute runs the root command. Called by main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runGateway(cmd *cobra.Command, args []string) error {
	configPath, allowlistPath, denylistPath, logPath := args[0], args[1], args[2], args[3]

	cfg, err := config.Load(configPath)
	if err != nil {
		return fatalf("config", err)
	}

	logFile, err := gwlog.OpenLogFile(logPath)
	if err != nil {
		return fatalf("log file", err)
	}
	defer logFile.Close()

	log := gwlog.New(logFile, cfg.LoggingActive)

	allow, err := filterlist.LoadAllowlist(allowlistPath)
	if err != nil {
		return fatalf("allowlist", err)
	}

	deny, err := filterlist.LoadDenylistOrEmpty(denylistPath, log)
	if err != nil {
		return fatalf("denylist", err)
	}

	gw := gateway.New(cfg, allow, deny, transport.OS, log, gateway.Hooks{
		DeviceAdded: func(id, port string) {
			log.Device(id, port).Info("device added")
		},
		DeviceRemoved: func(id, port string) {
			log.Device(id, port).Info("device removed")
		},
		MessageReceived: func(id string, timestampMs int64, msgType, content string) {
			log.Device(id, "").Info("message received", "type", msgType, "content", content, "ts", timestampMs)
		},
	})

	gw.Start()
	runREPL(gw)
	return nil
}

func fatalf(kind string, err error) error {
	return fmt.Errorf("%s error: %w", kind, err)
}
