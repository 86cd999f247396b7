// Package cli provides the oddsgrid command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/oddsgrid/internal/config"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

type configKey struct{}

// skipConfig lists commands that run without a loaded config.
var skipConfig = map[string]bool{
	"help": true, "completion": true, "__complete": true, "version": true, "tables": true,
}

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "oddsgrid",
		Short: "Load odds tables and filter them from the terminal",
		Long: `oddsgrid fetches paginated odds tables from a REST backend, caches them,
and applies the same set, range and bankroll filters the web grid offers.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if skipConfig[cmd.Name()] {
				return nil
			}
			flags := cmd.Root().PersistentFlags()
			cfgFile, _ := flags.GetString("config")
			cfg, err := config.Load(cfgFile, flags)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	config.BindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(NewShowCommand())
	rootCmd.AddCommand(NewTablesCommand())
	rootCmd.AddCommand(NewVersionCommand())
	return rootCmd
}

func configFrom(ctx context.Context) *config.Config {
	cfg, _ := ctx.Value(configKey{}).(*config.Config)
	return cfg
}

// Execute runs the root command.
func Execute() error {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
