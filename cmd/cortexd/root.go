package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mattepiu/cortex/pkg/config"
)

// Version is set during build.
var Version = "dev"

var configPath string

// rootCmd is a thin harness over internal/engine: cortexd itself owns no
// transport or business logic, just enough cobra plumbing to construct
// an Engine from resolved configuration and run it. Grounded on the
// teacher's cmd/mycelicmemory/root.go (persistent --config/--log_level
// flags feeding config.Load, a Run func that falls back to --help).
var rootCmd = &cobra.Command{
	Use:     "cortexd",
	Short:   "Memory engine for coding agents",
	Version: Version,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// Execute runs the root command, exiting non-zero on error like the
// teacher's Execute.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().String("log_level", "", "override observability.log_level")
	rootCmd.PersistentFlags().String("db_path", "", "override database.path")
}

// loadConfig resolves configuration with the 4-layer precedence
// pkg/config.Load implements, binding this command's persistent flags so
// --log_level/--db_path take precedence over file and env values.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := pflag.NewFlagSet("cortexd", pflag.ContinueOnError)
	if v := cmd.Flags().Lookup("log_level"); v != nil && v.Changed {
		flags.String("observability.log_level", v.Value.String(), "")
	}
	if v := cmd.Flags().Lookup("db_path"); v != nil && v.Changed {
		flags.String("database.path", v.Value.String(), "")
	}
	return config.Load(flags)
}
