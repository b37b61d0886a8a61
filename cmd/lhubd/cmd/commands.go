package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/spf13/cobra"

	"github.com/paw-chain/lhub/app/telemetry"
	pooltypes "github.com/paw-chain/lhub/x/poolmanager/types"
)

const (
	flagScenario      = "scenario"
	flagServe         = "serve"
	flagSkipInvariant = "skip-invariants"
	flagPool          = "pool"
	flagOffer         = "offer"
	flagOfferDenom    = "offer-denom"
	flagAsk           = "ask"
	flagAskDenom      = "ask-denom"
	flagVault         = "vault"
	flagAmount        = "amount"
)

// runScenario builds a runner for the scenario at path and runs all of it.
func runScenario(ctx context.Context, cmd *cobra.Command, cfg *Config, path string, checkInvariants bool) (*Runner, *Report, error) {
	logger, err := NewLogger(*cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	sc, err := LoadScenario(path)
	if err != nil {
		return nil, nil, err
	}
	r, err := NewRunner(logger, cfg.AppOptions(), sc)
	if err != nil {
		return nil, nil, err
	}
	r.CheckInvariants = checkInvariants
	report, err := r.Run(ctx, sc.Steps)
	return r, report, err
}

// ScenarioCmd groups the scenario commands.
func ScenarioCmd(cfg *Config) *cobra.Command {
	scenarioCmd := &cobra.Command{
		Use:   "scenario",
		Short: "Run scenario files against an in-process liquidity hub",
	}
	scenarioCmd.AddCommand(scenarioRunCmd(cfg))
	return scenarioCmd
}

func scenarioRunCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Run a scenario and print its report",
		Long: `Run a scenario and print its report as JSON. Amounts in message
bodies are strings, and "@name" strings are replaced with the address of
the named account. With --serve the final state stays up behind the
metrics and health servers until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			provider, err := telemetry.NewProvider(cfg.Tracing)
			if err != nil {
				return err
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = provider.Shutdown(shutdownCtx)
			}()

			skip, err := cmd.Flags().GetBool(flagSkipInvariant)
			if err != nil {
				return err
			}
			r, report, runErr := runScenario(ctx, cmd, cfg, args[0], !skip)
			if report != nil {
				if err := printJSON(cmd, report); err != nil {
					return err
				}
			}
			if runErr != nil {
				return runErr
			}

			serve, err := cmd.Flags().GetBool(flagServe)
			if err != nil || !serve {
				return err
			}
			return serveState(ctx, cmd, cfg, r)
		},
	}
	cmd.Flags().Bool(flagServe, false, "serve metrics and health for the final state until interrupted")
	cmd.Flags().Bool(flagSkipInvariant, false, "do not assert invariants after every message")
	return cmd
}

func serveState(ctx context.Context, cmd *cobra.Command, cfg *Config, r *Runner) error {
	metrics := StartPrometheusServer(cfg.MetricsPort)
	health := StartHealthCheckServer(cfg.HealthPort, NewStateChecker(r))
	fmt.Fprintf(cmd.ErrOrStderr(), "serving metrics on :%d and health on :%d\n", cfg.MetricsPort, cfg.HealthPort)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return errors.Join(metrics.Shutdown(shutdownCtx), health.Shutdown(shutdownCtx))
}

// SimulateCmd groups the swap simulation queries.
func SimulateCmd(cfg *Config) *cobra.Command {
	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Price swaps against the state a scenario leaves behind",
	}
	simulateCmd.AddCommand(
		simulateSwapCmd(cfg),
		simulateReverseCmd(cfg),
		simulateRouteCmd(cfg),
	)
	return simulateCmd
}

// queryCmd runs the scenario named by --scenario and hands the runner to
// query.
func queryCmd(cfg *Config, use, short string, query func(cmd *cobra.Command, r *Runner) (any, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := cmd.Flags().GetString(flagScenario)
			if err != nil {
				return err
			}
			r, _, err := runScenario(cmd.Context(), cmd, cfg, path, false)
			if err != nil {
				return err
			}
			out, err := query(cmd, r)
			if err != nil {
				return err
			}
			return printJSON(cmd, out)
		},
	}
	cmd.Flags().String(flagScenario, "", "scenario file that seeds the state")
	_ = cmd.MarkFlagRequired(flagScenario)
	return cmd
}

func coinFlag(cmd *cobra.Command, name string) (sdk.Coin, error) {
	raw, err := cmd.Flags().GetString(name)
	if err != nil {
		return sdk.Coin{}, err
	}
	coin, err := sdk.ParseCoinNormalized(raw)
	if err != nil {
		return sdk.Coin{}, fmt.Errorf("--%s: %w", name, err)
	}
	return coin, nil
}

func simulateSwapCmd(cfg *Config) *cobra.Command {
	cmd := queryCmd(cfg, "swap", "Simulate a swap of --offer into --ask-denom",
		func(cmd *cobra.Command, r *Runner) (any, error) {
			pool, _ := cmd.Flags().GetString(flagPool)
			askDenom, _ := cmd.Flags().GetString(flagAskDenom)
			offer, err := coinFlag(cmd, flagOffer)
			if err != nil {
				return nil, err
			}
			return r.App.PoolManager.SimulateSwap(r.Context(), pool, offer, askDenom)
		})
	cmd.Flags().String(flagPool, "", "pool identifier")
	cmd.Flags().String(flagOffer, "", "offered coin, e.g. 1000uwhale")
	cmd.Flags().String(flagAskDenom, "", "denom to receive")
	return cmd
}

func simulateReverseCmd(cfg *Config) *cobra.Command {
	cmd := queryCmd(cfg, "reverse", "Compute the --offer-denom amount needed to receive --ask",
		func(cmd *cobra.Command, r *Runner) (any, error) {
			pool, _ := cmd.Flags().GetString(flagPool)
			offerDenom, _ := cmd.Flags().GetString(flagOfferDenom)
			ask, err := coinFlag(cmd, flagAsk)
			if err != nil {
				return nil, err
			}
			return r.App.PoolManager.ReverseSimulateSwap(r.Context(), pool, offerDenom, ask)
		})
	cmd.Flags().String(flagPool, "", "pool identifier")
	cmd.Flags().String(flagOfferDenom, "", "denom to offer")
	cmd.Flags().String(flagAsk, "", "coin to receive, e.g. 1000uluna")
	return cmd
}

// routeSimulation is the result of pricing a stored swap route.
type routeSimulation struct {
	Operations   []pooltypes.SwapOperation `json:"operations"`
	ReturnAmount math.Int                 `json:"return_amount"`
}

func simulateRouteCmd(cfg *Config) *cobra.Command {
	cmd := queryCmd(cfg, "route", "Price --offer along the stored route to --ask-denom",
		func(cmd *cobra.Command, r *Runner) (any, error) {
			askDenom, _ := cmd.Flags().GetString(flagAskDenom)
			offer, err := coinFlag(cmd, flagOffer)
			if err != nil {
				return nil, err
			}
			route, err := r.App.PoolManager.GetSwapRoute(r.Context(), offer.Denom, askDenom)
			if err != nil {
				return nil, err
			}
			amount, err := r.App.PoolManager.SimulateSwapOperations(r.Context(), offer.Amount, route.Operations)
			if err != nil {
				return nil, err
			}
			return routeSimulation{Operations: route.Operations, ReturnAmount: amount}, nil
		})
	cmd.Flags().String(flagOffer, "", "offered coin, e.g. 1000uwhale")
	cmd.Flags().String(flagAskDenom, "", "denom to receive")
	return cmd
}

// PaybackCmd prices a flash loan from a vault.
func PaybackCmd(cfg *Config) *cobra.Command {
	cmd := queryCmd(cfg, "payback", "Compute what a flash loan of --amount from --vault must pay back",
		func(cmd *cobra.Command, r *Runner) (any, error) {
			vault, _ := cmd.Flags().GetString(flagVault)
			raw, _ := cmd.Flags().GetString(flagAmount)
			amount, ok := math.NewIntFromString(raw)
			if !ok || !amount.IsPositive() {
				return nil, fmt.Errorf("--%s: invalid amount %q", flagAmount, raw)
			}
			return r.App.VaultManager.QueryPayback(r.Context(), vault, amount)
		})
	cmd.Flags().String(flagVault, "", "vault identifier")
	cmd.Flags().String(flagAmount, "", "amount to borrow")
	return cmd
}
