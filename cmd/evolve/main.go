package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evolvekit/evolve/cmd/evolve/commands"
	"github.com/evolvekit/evolve/config"
	"github.com/evolvekit/evolve/logger"
)

var jsonLogs bool

var rootCmd = &cobra.Command{
	Use:   "evolve",
	Short: "evolve - capability invocation and provenance ledger",
	Long: `evolve - capability invocation and provenance-ledger substrate.

Every operator call flows through one engine that enforces the invocation
contract and records the outcome in a hash-chained append-only ledger.

Available commands:
  invoke   - Invoke a capability through the engine
  registry - Inspect the capability registry
  ledger   - Inspect, verify, and index the provenance ledger
  config   - Show resolved configuration
  version  - Show version information

Examples:
  evolve invoke demo.echo --inputs '{"value": 1}' --subsystem cli
  evolve registry check --require evolve.ledger.append
  evolve ledger verify`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		return logger.Initialize(jsonLogs || cfg.Log.JSON)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Emit logs as JSON")

	rootCmd.AddCommand(commands.InvokeCmd)
	rootCmd.AddCommand(commands.RegistryCmd)
	rootCmd.AddCommand(commands.LedgerCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
