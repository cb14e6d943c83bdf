package print

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/weftworks/weft/internal/registry"
)

func TestOnRunPrint(t *testing.T) {
	t.Run("nil input prints placeholder", func(t *testing.T) {
		out, err := OnRunPrint(context.Background(), &Input{})
		require.NoError(t, err)
		assert.Equal(t, cty.EmptyObjectVal, out)
	})

	t.Run("populated input succeeds", func(t *testing.T) {
		out, err := OnRunPrint(context.Background(), &Input{
			Value: map[string]string{"b": "2", "a": "1"},
		})
		require.NoError(t, err)
		assert.Equal(t, cty.EmptyObjectVal, out)
	})
}

func TestRegister(t *testing.T) {
	r := registry.New()
	(&Module{}).Register(r)

	rc, ok := r.Handlers["OnRunPrint"]
	require.True(t, ok)
	assert.NotNil(t, rc.Fn)
	assert.IsType(t, &Input{}, rc.NewInput())
}
