package env_vars

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/weftworks/weft/internal/registry"
)

func TestOnRunEnvVars(t *testing.T) {
	t.Setenv("WEFT_TEST_SENTINEL", "present")

	out, err := OnRunEnvVars(context.Background(), nil)
	require.NoError(t, err)

	require.True(t, out.Type().IsObjectType())
	all := out.GetAttr("all")
	require.True(t, all.Type().IsMapType())
	assert.Equal(t, cty.StringVal("present"), all.Index(cty.StringVal("WEFT_TEST_SENTINEL")))
}

func TestRegister(t *testing.T) {
	r := registry.New()
	(&Module{}).Register(r)

	rc, ok := r.Handlers["OnRunEnvVars"]
	require.True(t, ok)
	assert.NotNil(t, rc.Fn)
	assert.Nil(t, rc.NewInput)
}
