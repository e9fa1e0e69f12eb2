package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/seqops/virsam/internal/config"
	"github.com/seqops/virsam/internal/paths"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or initialize the configuration",
	Long: `Show the resolved configuration and where it came from.

With --init, write a configuration file with the defaults to the config
directory. Credentials are read from the file or from the
VIRSAM_ACCOUNT and VIRSAM_PASSWORD environment variables; the password
is never echoed back.`,
	Example: `  virsam config
  virsam config --init
  virsam config --init --force`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

var (
	configInit  bool
	configForce bool
)

func init() {
	configCmd.Flags().BoolVar(&configInit, "init", false, "Write a default configuration file")
	configCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing configuration file")
}

func runConfig(cmd *cobra.Command, args []string) error {
	if configInit {
		return runConfigInit()
	}
	return runConfigShow()
}

func runConfigShow() error {
	configPath := config.GetConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	printInfo("Configuration")
	fmt.Printf("%s %s\n", colorize(colorBold, "Config file:"), configPath)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Println(colorize(colorYellow, "  (using defaults, no config file found)"))
	}
	fmt.Println()

	account := cfg.Credentials.Account
	if account == "" {
		account = "(not set)"
	}
	fmt.Printf("%s\n", colorize(colorBold, "Credentials:"))
	fmt.Printf("  account:      %s\n", account)
	fmt.Printf("  password:     %s\n", credentialStatus(cfg.Credentials.Password))

	fmt.Println()
	fmt.Printf("%s\n", colorize(colorBold, "Endpoints:"))
	fmt.Printf("  browser:      %s\n", cfg.Endpoints.Browser)
	fmt.Printf("  submit:       %s\n", cfg.Endpoints.Submit)
	fmt.Printf("  test_submit:  %s\n", cfg.Endpoints.TestSubmit)
	fmt.Printf("  timeout:      %ds\n", cfg.Endpoints.TimeoutSeconds)

	centerName := cfg.Defaults.CenterName
	if centerName == "" {
		centerName = "(not set)"
	}
	fmt.Println()
	fmt.Printf("%s\n", colorize(colorBold, "Defaults:"))
	fmt.Printf("  checklist:    %s\n", cfg.Defaults.Checklist)
	fmt.Printf("  center_name:  %s\n", centerName)

	fmt.Println()
	fmt.Printf("%s\n", colorize(colorBold, "Journal:"))
	fmt.Printf("  path:         %s\n", cfg.Journal.Path)

	return nil
}

func runConfigInit() error {
	configPath := filepath.Join(paths.GetPaths().ConfigDir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil && !configForce {
		printWarning("Configuration already exists at %s", configPath)
		fmt.Println("Use --force to overwrite")
		return nil
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	printSuccess("Configuration created at %s", configPath)
	printInfo("Set credentials via VIRSAM_ACCOUNT and VIRSAM_PASSWORD, or edit the file")
	return nil
}
