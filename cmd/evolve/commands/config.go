package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evolvekit/evolve/config"
	"github.com/evolvekit/evolve/sym"
)

// ConfigCmd shows the resolved configuration.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: sym.Config + " Manage evolve configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show resolved configuration",
	RunE:  runConfigShow,
}

func init() {
	ConfigCmd.AddCommand(configShowCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("%s Configuration\n\n", sym.Config)
	fmt.Printf("registry.path        = %s\n", cfg.Registry.Path)
	fmt.Printf("registry.schema_root = %s\n", cfg.Registry.SchemaRoot)
	fmt.Printf("ledger.path          = %s\n", cfg.Ledger.Path)
	fmt.Printf("ledger.index_path    = %s\n", cfg.Ledger.IndexPath)
	fmt.Printf("execution.strict     = %t\n", cfg.Execution.Strict)
	fmt.Printf("log.json             = %t\n", cfg.Log.JSON)
	return nil
}
