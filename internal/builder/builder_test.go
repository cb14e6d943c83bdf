package builder

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	hcllib "github.com/hashicorp/hcl/v2"

	"github.com/weftworks/weft/internal/channel"
	"github.com/weftworks/weft/internal/foreach"
	weftcl "github.com/weftworks/weft/internal/hcl"
	"github.com/weftworks/weft/internal/registry"
)

const defsSrc = `
component_def "emit" {
  lifecycle {
    on_run = "OnRunEmit"
  }
  output "items" {
    type = list(string)
  }
}

component_def "echo" {
  lifecycle {
    on_run = "OnRunEcho"
  }
  input "text" {
    type = string
  }
  output "result" {
    type = string
  }
}

component_def "collect" {
  lifecycle {
    on_run = "OnRunCollect"
  }
  input "items" {
    type = list(string)
  }
}

component_def "pair" {
  lifecycle {
    on_run = "OnRunPair"
  }
  output "lefts" {
    type = list(string)
  }
  output "rights" {
    type = list(number)
  }
}
`

// buildSrc runs the definition pass over the given pipeline source.
func buildSrc(t *testing.T, src string) (*Result, hcllib.Diagnostics) {
	t.Helper()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "pipeline.hcl")
	require.NoError(t, os.WriteFile(path, []byte(defsSrc+src), 0o644))

	model, err := weftcl.NewLoader().Load(ctx, path)
	require.NoError(t, err)

	reg := registry.New()
	reg.PopulateFromModel(model)
	return Build(ctx, model, reg)
}

func diagSummaries(diags hcllib.Diagnostics) []string {
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Summary)
	}
	return out
}

func TestBuild_PlainComponents(t *testing.T) {
	res, diags := buildSrc(t, `
component "emit" "src" {
}

component "echo" "sink" {
  arguments {
    text = "hello"
  }
  depends_on = ["emit.src"]
}
`)
	require.False(t, diags.HasErrors(), diags.Error())
	require.Len(t, res.Nodes, 2)

	src, ok := res.Nodes["component.emit.src"]
	require.True(t, ok)
	require.Contains(t, src.Outputs, "items")

	sink := res.Nodes["component.echo.sink"]
	require.NotNil(t, sink)
	assert.Equal(t, []string{"emit.src"}, sink.DependsOn)
	assert.Empty(t, res.ScopeOf, "no for_each blocks, no scopes")
}

func TestBuild_UnknownComponentType(t *testing.T) {
	_, diags := buildSrc(t, `
component "nope" "x" {
}
`)
	require.True(t, diags.HasErrors())
	assert.Contains(t, diagSummaries(diags), "Unknown component type")
}

func TestBuild_DuplicateComponent(t *testing.T) {
	_, diags := buildSrc(t, `
component "emit" "src" {
}

component "emit" "src" {
}
`)
	require.True(t, diags.HasErrors())
	assert.Contains(t, diagSummaries(diags), "Duplicate component")
}

func TestBuild_ImplicitDependencyBinding(t *testing.T) {
	res, diags := buildSrc(t, `
component "emit" "src" {
}

component "collect" "sink" {
  arguments {
    items = component.emit.src.items
  }
}
`)
	require.False(t, diags.HasErrors(), diags.Error())

	sink := res.Nodes["component.collect.sink"]
	require.NotNil(t, sink)

	bound, ok := sink.Inputs["items"].(*channel.Output)
	require.True(t, ok, "upstream output reference binds the output channel")
	assert.Equal(t, "component.emit.src", bound.Source())
}

func TestBuild_BindingTypeMismatch(t *testing.T) {
	_, diags := buildSrc(t, `
component "emit" "src" {
}

component "echo" "sink" {
  arguments {
    text = component.emit.src.items
  }
}
`)
	require.True(t, diags.HasErrors())
	assert.Contains(t, diagSummaries(diags), "Type mismatch")
}

func TestBuild_ForEachOverLiteral(t *testing.T) {
	res, diags := buildSrc(t, `
for_each {
  in = ["a", "b"]
  component "echo" "worker" {
    arguments {
      text = each.value
    }
  }
}
`)
	require.False(t, diags.HasErrors(), diags.Error())

	worker := res.Nodes["component.echo.worker"]
	require.NotNil(t, worker)

	s := res.ScopeOf[worker]
	require.NotNil(t, s, "node declared in a for_each block carries its scope")
	require.NotNil(t, res.LoopVarOf[worker])

	iter, ok := worker.Inputs["text"].(*foreach.IterationChannel)
	require.True(t, ok, "loop variable argument binds the iteration channel")
	assert.Same(t, s, iter.Scope())
}

func TestBuild_ForEachOverUpstreamOutput(t *testing.T) {
	res, diags := buildSrc(t, `
component "emit" "src" {
}

for_each {
  in = component.emit.src.items
  component "echo" "worker" {
    arguments {
      text = each.value
    }
  }
}
`)
	require.False(t, diags.HasErrors(), diags.Error())

	worker := res.Nodes["component.echo.worker"]
	require.NotNil(t, worker)

	iter, ok := worker.Inputs["text"].(*foreach.IterationChannel)
	require.True(t, ok)
	assert.Equal(t, "component.emit.src", iter.Source())
}

func TestBuild_NestedForEachRejected(t *testing.T) {
	_, diags := buildSrc(t, `
for_each {
  in = ["a"]
  for_each {
    in = ["b"]
    component "echo" "deep" {
      arguments {
        text = each.value
      }
    }
  }
}
`)
	require.True(t, diags.HasErrors())
	found := false
	for _, d := range diags {
		if d.Summary == "Invalid for_each block" {
			found = true
			assert.Contains(t, d.Detail, "nested for_each")
		}
	}
	assert.True(t, found, "expected a nested for_each diagnostic, got: %s", diags.Error())
}

func TestBuild_MultipleComponentsInForEachRejected(t *testing.T) {
	_, diags := buildSrc(t, `
for_each {
  in = ["a"]
  component "echo" "one" {
    arguments {
      text = each.value
    }
  }
  component "echo" "two" {
    arguments {
      text = each.value
    }
  }
}
`)
	require.True(t, diags.HasErrors())
	found := false
	for _, d := range diags {
		if d.Summary == "Invalid for_each block" {
			found = true
			assert.Contains(t, d.Detail, "more than one component")
		}
	}
	assert.True(t, found, "expected a multiple-components diagnostic, got: %s", diags.Error())
}

func TestBuild_EachOutsideForEachRejected(t *testing.T) {
	_, diags := buildSrc(t, `
component "echo" "solo" {
  arguments {
    text = each.value
  }
}
`)
	require.True(t, diags.HasErrors())
	assert.Contains(t, diags.Error(), "each")
}

func TestBuild_MissingRequiredArgument(t *testing.T) {
	_, diags := buildSrc(t, `
component "echo" "sink" {
}
`)
	require.True(t, diags.HasErrors())
	assert.Contains(t, diags.Error(), "text")
}

func TestBuild_UnknownArgument(t *testing.T) {
	_, diags := buildSrc(t, `
component "echo" "sink" {
  arguments {
    text   = "hello"
    bogus  = 1
  }
}
`)
	require.True(t, diags.HasErrors())
	assert.Contains(t, diags.Error(), "bogus")
}

func TestBuild_UndeclaredComponentReference(t *testing.T) {
	_, diags := buildSrc(t, `
component "echo" "sink" {
  arguments {
    text = component.emit.ghost.items
  }
}
`)
	require.True(t, diags.HasErrors())
	assert.Contains(t, diags.Error(), "ghost")
}

func TestBuild_ForEachOverChannelMap(t *testing.T) {
	res, diags := buildSrc(t, `
component "pair" "src" {
}

for_each {
  in = {
    left  = component.pair.src.lefts
    right = component.pair.src.rights
  }
  component "echo" "worker" {
    arguments {
      text = each.value.left
    }
  }
}
`)
	require.False(t, diags.HasErrors(), diags.Error())

	worker := res.Nodes["component.echo.worker"]
	require.NotNil(t, worker)

	// The loop variable is a map of iteration handles, one per member.
	handles, isMap := res.LoopVarOf[worker].(map[string]channel.Channel)
	require.True(t, isMap)
	assert.Len(t, handles, 2)

	iter, bound := worker.Inputs["text"].(*foreach.IterationChannel)
	require.True(t, bound, "each.value.left binds the member's iteration channel")
	assert.Equal(t, "component.pair.src", iter.Source())
}

func TestChannelForTraversal_EmptyTraversal(t *testing.T) {
	// hclsyntax never yields a rootless traversal, but a synthesized one
	// must produce a diagnostic rather than a panic.
	b := &build{result: &Result{}}
	ch := b.channelForTraversal(hcllib.Traversal{}, hcllib.Range{})

	assert.Nil(t, ch)
	require.True(t, b.diags.HasErrors())
	assert.Contains(t, b.diags.Error(), "must name a component output")
}
