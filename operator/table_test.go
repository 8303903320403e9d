package operator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evolvekit/evolve/errors"
)

func noop(_ context.Context, inputs map[string]any, _ bool) (map[string]any, error) {
	return inputs, nil
}

func TestRegisterAndResolve(t *testing.T) {
	table := NewTable()
	require.NoError(t, table.Register("operators.echo", noop))

	op, err := table.Resolve("operators.echo")
	require.NoError(t, err)
	out, err := op(context.Background(), map[string]any{"value": 1}, false)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"value": 1}, out)
}

func TestRegisterDuplicateFails(t *testing.T) {
	table := NewTable()
	require.NoError(t, table.Register("operators.echo", noop))
	err := table.Register("operators.echo", noop)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegisterRejectsEmptyAndNil(t *testing.T) {
	table := NewTable()
	assert.Error(t, table.Register("", noop))
	assert.Error(t, table.Register("operators.nil", nil))
}

func TestResolveMissingIsConfigurationError(t *testing.T) {
	table := NewTable()
	_, err := table.Resolve("operators.ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrOperatorResolution))
	assert.False(t, errors.IsNotImplemented(err))
}

func TestListSorted(t *testing.T) {
	table := NewTable()
	table.MustRegister("operators.b", noop)
	table.MustRegister("operators.a", noop)
	assert.Equal(t, []string{"operators.a", "operators.b"}, table.List())
}

func TestNotImplementedSignal(t *testing.T) {
	err := NotImplemented("dmx scoring pending")
	assert.True(t, errors.IsNotImplemented(err))
	assert.Contains(t, err.Error(), "dmx scoring pending")
}
