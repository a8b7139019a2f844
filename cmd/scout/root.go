package scout

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/elasticchain/scout"
	"github.com/elasticchain/scout/types"
)

// BuildScoutCmd assembles the root command. The tool is a single-shot
// scanner: it probes the configured endpoints, writes the snapshot and
// prints a report. Unreachable endpoints degrade the snapshot instead of
// failing the run; the exit code is non-zero only when the snapshot cannot
// be written.
func BuildScoutCmd() *cobra.Command {
	var (
		network        string
		l1URL          string
		l2URL          string
		l3URL          string
		outputPath     string
		versioned      bool
		timeout        time.Duration
		retries        uint64
		retryBaseDelay time.Duration
		verbose        bool
	)

	cmd := &cobra.Command{
		Use:   "scout",
		Short: "Scan an elastic chain deployment and snapshot its on-chain state",
		Long: `Probes the L1, gateway and L3 sequencer endpoints, discovers the chains
registered with each layer's bridgehub, inspects their state transition
contracts, verifies priority queue merkle roots and writes the whole
picture to a JSON snapshot.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := buildLogger(verbose)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			cfg := scout.DefaultConfig(types.Network(network))
			cfg.Endpoints = []scout.EndpointConfig{
				{Layer: types.LayerL1, Label: "L1", URL: l1URL},
				{Layer: types.LayerL2, Label: "Gateway", URL: l2URL},
				{Layer: types.LayerL3, Label: "L3", URL: l3URL},
			}
			cfg.Timeout = timeout
			cfg.Retries = retries
			cfg.RetryBaseDelay = retryBaseDelay

			scanner, err := scout.NewScanner(cfg, log.Sugar())
			if err != nil {
				return err
			}

			snap, err := scanner.Scan(cmd.Context())
			if err != nil {
				return err
			}

			written, err := scout.WriteSnapshot(snap, outputPath, versioned)
			if err != nil {
				return err
			}

			scout.RenderReport(cmd.OutOrStdout(), snap)
			fmt.Fprintf(cmd.OutOrStdout(), "snapshot written to %s\n", written)

			return nil
		},
	}

	// A .env file may override the endpoint defaults; flags win over both.
	godotenv.Load(".env") //nolint:errcheck

	cmd.Flags().StringVar(&network, "network", envOr("SCOUT_NETWORK", string(types.NetworkLocal)), "Deployment flavor (local, mainnet, testnet, stage)")
	cmd.Flags().StringVar(&l1URL, "l1", envOr("SCOUT_L1_URL", scout.DefaultL1URL), "L1 RPC endpoint")
	cmd.Flags().StringVar(&l2URL, "l2", envOr("SCOUT_L2_URL", scout.DefaultL2URL), "Gateway RPC endpoint")
	cmd.Flags().StringVar(&l3URL, "l3", envOr("SCOUT_L3_URL", scout.DefaultL3URL), "L3 RPC endpoint")
	cmd.Flags().StringVar(&outputPath, "output", envOr("SCOUT_OUTPUT", scout.DefaultOutputPath), "Snapshot output path")
	cmd.Flags().BoolVar(&versioned, "versioned-output", false, "Write to a timestamped copy of the output path instead of overwriting it")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Per-RPC-call timeout")
	cmd.Flags().Uint64Var(&retries, "retries", 0, "Additional attempts per failed RPC read")
	cmd.Flags().DurationVar(&retryBaseDelay, "retry-base-delay", 200*time.Millisecond, "Base backoff delay between retries")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Debug-level logging")

	return cmd
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)

	return cfg.Build()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
