package cli

import (
	"fmt"

	"github.com/javanhut/ivaldi-history/internal/colors"
	"github.com/javanhut/ivaldi-history/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get and set configuration options",
	Long: `Get and set ivh configuration options.

Configuration can be set at two levels:
- Global (~/.ivhconfig.yaml) - applies everywhere
- Project (./.ivh.yaml) - applies in the current directory, wins over global

Command line flags override both.

Examples:
  ivh config history.max_entries 200
  ivh config --global history.debounce_delay 500ms
  ivh config --list
  ivh config color.ui`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

var (
	configGlobal bool
	configList   bool
)

func init() {
	configCmd.Flags().BoolVar(&configGlobal, "global", false, "Use global config file")
	configCmd.Flags().BoolVar(&configList, "list", false, "List all configuration")
}

func runConfig(cmd *cobra.Command, args []string) error {
	// Handle --list flag
	if configList {
		return listConfig(cmd)
	}

	switch len(args) {
	case 1:
		return getConfigValue(cmd, args[0])
	case 2:
		return setConfigValue(cmd, args[0], args[1], configGlobal)
	}

	return fmt.Errorf("invalid usage. See: ivh config --help")
}

func listConfig(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, colors.SectionHeader("Configuration:"))
	for _, key := range config.Keys {
		value, err := cfg.Get(key)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  %s = %s\n", key, colors.InfoText(value))
	}
	return nil
}

func getConfigValue(cmd *cobra.Command, key string) error {
	value, err := config.GetValue(key)
	if err != nil {
		return err
	}

	if value == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s is %s\n", key, colors.Gray("(not set)"))
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), value)
	}
	return nil
}

func setConfigValue(cmd *cobra.Command, key, value string, global bool) error {
	if err := config.SetValue(config.DefaultPaths(), key, value, global); err != nil {
		return err
	}

	scope := "project"
	if global {
		scope = "global"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s (%s)\n", colors.SuccessText("Set"), key, value, scope)
	return nil
}
