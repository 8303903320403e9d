package operators

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evolvekit/evolve/canonical"
	"github.com/evolvekit/evolve/errors"
	"github.com/evolvekit/evolve/operator"
)

func TestRegisterBindsAllBuiltins(t *testing.T) {
	table := operator.NewTable()
	require.NoError(t, Register(table))
	assert.Equal(t, []string{
		"operators.csp_signal",
		"operators.digest",
		"operators.dmx_score",
		"operators.echo",
	}, table.List())
}

func TestEcho(t *testing.T) {
	out, err := Echo(context.Background(), map[string]any{"value": 7, "tag": "x"}, true)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"value": 7, "tag": "x"}, out)
}

func TestDigestMatchesCanonicalHash(t *testing.T) {
	inputs := map[string]any{"series": []any{1, 2, 3}}
	out, err := Digest(context.Background(), inputs, true)
	require.NoError(t, err)

	expected, err := canonical.Hash(inputs, canonical.ProfileStrict)
	require.NoError(t, err)
	assert.Equal(t, expected, out["digest"])
}

func TestDigestRejectsFloats(t *testing.T) {
	_, err := Digest(context.Background(), map[string]any{"ratio": 0.5}, true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, canonical.ErrFloatForbidden))
}

func TestStubsHonorStrictFlag(t *testing.T) {
	for _, op := range []operator.Operator{DMXScore, CSPSignal} {
		_, err := op(context.Background(), nil, true)
		require.Error(t, err)
		assert.True(t, errors.IsNotImplemented(err))

		out, err := op(context.Background(), nil, false)
		require.NoError(t, err)
		assert.Empty(t, out)
	}
}
