package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/evolvekit/evolve/db"
	"github.com/evolvekit/evolve/ledger"
	"github.com/evolvekit/evolve/logger"
	"github.com/evolvekit/evolve/sym"
)

// LedgerCmd groups provenance ledger subcommands.
var LedgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: sym.Ledger + " Inspect the provenance ledger",
	Long: sym.Ledger + ` ledger — Inspect, verify, and index the provenance ledger

The JSONL chain is authoritative; the SQLite index is derived from it and
can be rebuilt at any time.

Examples:
  evolve ledger ls --run 7f3c...        # Records for one run
  evolve ledger verify                  # Recompute and check the full chain
  evolve ledger index                   # Mirror new records into SQLite
  evolve ledger stats                   # Totals from the index`,
}

var ledgerLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List ledger records",
	RunE:  runLedgerLs,
}

var ledgerVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the hash chain end-to-end",
	RunE:  runLedgerVerify,
}

var ledgerIndexCmd = &cobra.Command{
	Use:   "index",
	Short: "Mirror the chain into the SQLite index",
	RunE:  runLedgerIndex,
}

var ledgerStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show chain statistics from the index",
	RunE:  runLedgerStats,
}

var ledgerRunFlag string

func init() {
	LedgerCmd.AddCommand(ledgerLsCmd)
	LedgerCmd.AddCommand(ledgerVerifyCmd)
	LedgerCmd.AddCommand(ledgerIndexCmd)
	LedgerCmd.AddCommand(ledgerStatsCmd)
	ledgerLsCmd.Flags().StringVar(&ledgerRunFlag, "run", "", "Only show records for this run id")
}

func runLedgerLs(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime()
	if err != nil {
		return err
	}

	records, err := rt.ledger.List(ledgerRunFlag)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Printf("%s Ledger %s is empty\n", sym.Ledger, rt.ledger.Path())
		return nil
	}

	fmt.Printf("%s Ledger %s (%d records)\n\n", sym.Ledger, rt.ledger.Path(), len(records))
	for _, rec := range records {
		fmt.Printf("  %s %-30s run=%s step=%.12s prev=%.12s %s\n",
			sym.ForStatus(string(rec.Status)), rec.Capability,
			rec.Context.RunID, rec.StepHash, rec.PrevHash, rec.Timestamp)
	}
	return nil
}

func runLedgerVerify(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime()
	if err != nil {
		return err
	}

	if err := rt.ledger.Verify(); err != nil {
		pterm.Error.Printf("Chain verification failed: %v\n", err)
		return err
	}

	records, err := rt.ledger.List("")
	if err != nil {
		return err
	}
	pterm.Success.Printf("Chain intact: %d records, genesis to head\n", len(records))
	return nil
}

func runLedgerIndex(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime()
	if err != nil {
		return err
	}

	database, err := db.Open(rt.cfg.Ledger.IndexPath, logger.Logger)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.Migrate(database, logger.Logger); err != nil {
		return err
	}

	inserted, err := ledger.NewIndex(database).Sync(rt.ledger)
	if err != nil {
		return err
	}
	pterm.Success.Printf("Indexed %d new records into %s\n", inserted, rt.cfg.Ledger.IndexPath)
	return nil
}

func runLedgerStats(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime()
	if err != nil {
		return err
	}

	database, err := db.Open(rt.cfg.Ledger.IndexPath, logger.Logger)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.Migrate(database, logger.Logger); err != nil {
		return err
	}

	stats, err := ledger.NewIndex(database).Stats()
	if err != nil {
		return err
	}

	fmt.Printf("%s Ledger Statistics\n", sym.DB)
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")
	fmt.Printf("Chain Path:    %s\n", rt.cfg.Ledger.Path)
	fmt.Printf("Index Path:    %s\n", rt.cfg.Ledger.IndexPath)
	fmt.Printf("Total Records: %d\n", stats.Total)
	fmt.Printf("Runs:          %d\n", stats.Runs)
	fmt.Printf("Capabilities:  %d\n", stats.Capabilities)
	fmt.Println()
	for _, status := range []ledger.Status{ledger.StatusOK, ledger.StatusStubBlocked, ledger.StatusFailed} {
		fmt.Printf("  %s %-13s %d\n", sym.ForStatus(string(status)), status, stats.ByStatus[status])
	}
	return nil
}
