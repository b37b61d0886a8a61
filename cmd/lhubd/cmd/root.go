package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"cosmossdk.io/log"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/paw-chain/lhub/app"
)

// NewRootCmd creates the lhubd root command. Config is loaded before any
// subcommand runs and shared with all of them.
func NewRootCmd() *cobra.Command {
	app.SetConfig()

	cfg := &Config{}
	rootCmd := &cobra.Command{
		Use:   "lhubd",
		Short: "Liquidity hub simulator",
		Long: `lhubd runs the liquidity hub modules (pool manager, vault manager,
incentive manager and bonding manager) in process. Scenarios seed the app
from a file and drive it message by message; simulate and payback query
the resulting state.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SetOut(cmd.OutOrStdout())
			cmd.SetErr(cmd.ErrOrStderr())

			home, err := cmd.Flags().GetString(FlagHome)
			if err != nil {
				return err
			}
			configFile, err := cmd.Flags().GetString(FlagConfig)
			if err != nil {
				return err
			}
			v, err := NewViper(home, configFile, cmd.Flags())
			if err != nil {
				return err
			}
			loaded, err := LoadConfig(v)
			if err != nil {
				return err
			}
			*cfg = loaded
			return nil
		},
	}

	rootCmd.PersistentFlags().String(FlagHome, DefaultHome, "directory for config")
	rootCmd.PersistentFlags().String(FlagConfig, "", "config file (default <home>/config/lhubd.{toml,yaml,json})")
	rootCmd.PersistentFlags().String(FlagLogLevel, "info", "log level (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().String(FlagLogFormat, "plain", "log format (plain|json)")

	rootCmd.AddCommand(
		ScenarioCmd(cfg),
		SimulateCmd(cfg),
		PaybackCmd(cfg),
		MessagesCmd(),
		AddressCmd(),
	)
	return rootCmd
}

// NewLogger builds the logger cfg asks for.
func NewLogger(cfg Config, w io.Writer) (log.Logger, error) {
	level, err := zerolog.ParseLevel(withDefault(cfg.LogLevel, "info"))
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	opts := []log.Option{log.LevelOption(level)}
	switch cfg.LogFormat {
	case "", "plain":
	case "json":
		opts = append(opts, log.OutputJSONOption())
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.LogFormat)
	}
	return log.NewLogger(w, opts...), nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// MessagesCmd lists the messages scenarios can send.
func MessagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "messages",
		Short: "List the messages a scenario step can send",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range MessageNames() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

// AddressCmd prints the address scenarios use for an account name.
func AddressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "address [name]...",
		Short: "Print the addresses of scenario account names",
		Long: `Print the addresses of scenario account names. Module accounts are
named @module:<module>, e.g. @module:poolmanager.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := &Runner{accounts: make(map[string]sdk.AccAddress)}
			for _, name := range args {
				addr, err := r.address(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", name, addr)
			}
			return nil
		},
	}
}
