package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/niveshq/backtest/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate run configuration files",
	Long: `Manage configuration files for backtest report runs.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  fnobt config init --output run.yaml
  fnobt config validate --file run.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	RunE:  runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	RunE:  runConfigValidate,
}

var (
	configInitOutput   string
	configValidatePath string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "run.yaml", "output config file path")
	configValidateCmd.Flags().StringVarP(&configValidatePath, "file", "f", "", "path to config file (required)")
	configValidateCmd.MarkFlagRequired("file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if err := cfg.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("created default configuration: %s\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(configValidatePath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Printf("configuration valid: %s\n", configValidatePath)
	fmt.Printf("  run: %s\n", cfg.Run.Name())
	fmt.Printf("  timeframe: %s  options: %v  mtm: %v\n",
		cfg.Report.TimeFrame, cfg.Report.OptionsMarket, cfg.Report.MarkToMarket)
	fmt.Printf("  journal: %s\n", cfg.Journal.Type)
	return nil
}
