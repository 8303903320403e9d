package commands

import (
	"github.com/evolvekit/evolve/config"
	"github.com/evolvekit/evolve/errors"
	"github.com/evolvekit/evolve/invoke"
	"github.com/evolvekit/evolve/ledger"
	"github.com/evolvekit/evolve/logger"
	"github.com/evolvekit/evolve/operator"
	"github.com/evolvekit/evolve/operators"
	"github.com/evolvekit/evolve/registry"
	"github.com/evolvekit/evolve/schema"
)

// runtime bundles the wired substrate for one command execution.
type runtime struct {
	cfg    *config.Config
	reg    *registry.Registry
	engine *invoke.Engine
	ledger *ledger.Ledger
}

// buildRuntime loads configuration, the registry snapshot, and the built-in
// operator table, and wires the engine. The ledger handle is constructed
// here and passed down; commands own its lifecycle for their run.
func buildRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}

	reg, err := registry.Load(cfg.Registry.Path)
	if err != nil {
		return nil, errors.Wrap(err, "load capability registry")
	}

	table := operator.NewTable()
	if err := operators.Register(table); err != nil {
		return nil, errors.Wrap(err, "register built-in operators")
	}

	eng := invoke.NewEngine(reg, table, schema.NewValidator(cfg.Registry.SchemaRoot), logger.Logger)

	return &runtime{
		cfg:    cfg,
		reg:    reg,
		engine: eng,
		ledger: ledger.Open(cfg.Ledger.Path),
	}, nil
}
