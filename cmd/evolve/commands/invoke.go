package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evolvekit/evolve/canonical"
	"github.com/evolvekit/evolve/errors"
	"github.com/evolvekit/evolve/invoke"
	"github.com/evolvekit/evolve/sym"
)

// InvokeCmd invokes a capability through the engine.
var InvokeCmd = &cobra.Command{
	Use:   "invoke <capability-id>",
	Short: sym.Engine + " Invoke a capability",
	Long: sym.Engine + ` invoke — Run one capability through the invocation engine

The outcome (ok, stub_blocked, or failed) is recorded in the provenance
ledger regardless of whether the call succeeds.

Examples:
  evolve invoke demo.echo --inputs '{"value": 1}' --subsystem cli
  evolve invoke dmx.score --inputs '{"signal": "x"}' --subsystem forecast --no-strict`,
	Args: cobra.ExactArgs(1),
	RunE: runInvoke,
}

var (
	invokeInputsFlag    string
	invokeSubsystemFlag string
	invokeRevisionFlag  string
	invokeRunFlag       string
	invokeNoStrictFlag  bool
)

func init() {
	InvokeCmd.Flags().StringVar(&invokeInputsFlag, "inputs", "{}", "Named inputs as a JSON object")
	InvokeCmd.Flags().StringVar(&invokeSubsystemFlag, "subsystem", "cli", "Subsystem id for the invocation context")
	InvokeCmd.Flags().StringVar(&invokeRevisionFlag, "revision", "", "Revision id for the invocation context (defaults to build commit)")
	InvokeCmd.Flags().StringVar(&invokeRunFlag, "run", "", "Run id (defaults to a fresh UUID)")
	InvokeCmd.Flags().BoolVar(&invokeNoStrictFlag, "no-strict", false, "Allow stub operators to return neutral results")
}

func runInvoke(cmd *cobra.Command, args []string) error {
	capabilityID := args[0]

	rt, err := buildRuntime()
	if err != nil {
		return err
	}

	// Decode with numeric fidelity so integral inputs survive hashing
	// under the strict canonical profile.
	decoded, err := canonical.Decode([]byte(invokeInputsFlag))
	if err != nil {
		return errors.Wrap(err, "parse --inputs")
	}
	inputs, ok := decoded.(map[string]any)
	if !ok {
		return errors.New("--inputs must be a JSON object")
	}

	revision := invokeRevisionFlag
	if revision == "" {
		revision = rt.cfg.RevisionID()
	}

	ictx := invoke.NewContext(invokeSubsystemFlag, revision)
	if invokeRunFlag != "" {
		ictx.RunID = invokeRunFlag
	}

	strict := rt.cfg.Execution.Strict && !invokeNoStrictFlag

	outputs, err := rt.engine.Invoke(cmd.Context(), capabilityID, inputs, ictx, strict, rt.ledger)
	if err != nil {
		return err
	}

	rendered, err := json.MarshalIndent(outputs, "", "  ")
	if err != nil {
		return errors.Wrap(err, "render outputs")
	}
	fmt.Printf("%s %s run=%s\n%s\n", sym.OK, capabilityID, ictx.RunID, rendered)
	return nil
}
