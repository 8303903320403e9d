package commands

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/evolvekit/evolve/errors"
	"github.com/evolvekit/evolve/sym"
)

// RegistryCmd groups registry inspection subcommands.
var RegistryCmd = &cobra.Command{
	Use:   "registry",
	Short: sym.Registry + " Inspect the capability registry",
	Long: sym.Registry + ` registry — Inspect capability and rune bindings

Examples:
  evolve registry ls                                # All bindings
  evolve registry ls --prefix evolve.              # Bindings under a prefix
  evolve registry check --require evolve.ledger.append`,
}

var registryLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List capability bindings",
	RunE:  runRegistryLs,
}

var registryCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Sanity-check the registry for duplicates and missing capabilities",
	RunE:  runRegistryCheck,
}

var (
	registryPrefixFlag  string
	registryRequireFlag []string
)

func init() {
	RegistryCmd.AddCommand(registryLsCmd)
	RegistryCmd.AddCommand(registryCheckCmd)
	registryLsCmd.Flags().StringVar(&registryPrefixFlag, "prefix", "", "Only list capabilities under this prefix")
	registryCheckCmd.Flags().StringSliceVar(&registryRequireFlag, "require", nil, "Capability ids that must have a binding")
}

func runRegistryLs(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime()
	if err != nil {
		return err
	}

	bindings := rt.reg.ListByPrefix(registryPrefixFlag)
	if len(bindings) == 0 {
		fmt.Printf("%s No bindings match prefix %q\n", sym.Registry, registryPrefixFlag)
		return nil
	}

	fmt.Printf("%s Registry %s (%d bindings)\n\n", sym.Registry, rt.cfg.Registry.Path, len(bindings))
	for _, b := range bindings {
		form := "contract"
		if b.Legacy {
			form = "rune:" + b.RuneID
		}
		schemas := ""
		if b.InputSchema != "" || b.OutputSchema != "" {
			schemas = " [schema-bound]"
		}
		fmt.Printf("  %-36s v%-8s %-14s -> %s%s\n",
			b.CapabilityID, b.Version, form, b.OperatorReference, schemas)
	}
	return nil
}

func runRegistryCheck(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime()
	if err != nil {
		return err
	}

	report := rt.reg.SanityCheck(registryRequireFlag)
	if report.Clean() {
		pterm.Success.Printf("Registry sane: %d bindings, no duplicates, all required capabilities bound\n", len(rt.reg.All()))
		return nil
	}

	if len(report.DuplicateRuneIDs) > 0 {
		pterm.Warning.Printf("Duplicate rune ids: %s\n", strings.Join(report.DuplicateRuneIDs, ", "))
	}
	if len(report.MissingCapabilities) > 0 {
		pterm.Error.Printf("Missing capabilities: %s\n", strings.Join(report.MissingCapabilities, ", "))
	}
	return errors.New("registry sanity check failed")
}
