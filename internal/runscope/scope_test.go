package runscope

import (
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// evalExpr parses and evaluates a single HCL expression in the scope.
func evalExpr(t *testing.T, s *Scope, src string) (cty.Value, hcl.Diagnostics) {
	t.Helper()
	expr, diags := hclsyntax.ParseExpression([]byte(src), "test.hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors(), diags.Error())
	return expr.Value(s.EvalContext())
}

func TestNew(t *testing.T) {
	t.Run("bindings become named variables", func(t *testing.T) {
		s, err := New(nil, map[string]any{
			"region":   "eu-west-1",
			"replicas": 3,
			"deploy":   map[string]any{"canary": true},
		})
		require.NoError(t, err)

		v, diags := evalExpr(t, s, `region`)
		require.False(t, diags.HasErrors())
		assert.Equal(t, cty.StringVal("eu-west-1"), v)

		v, diags = evalExpr(t, s, `deploy.canary`)
		require.False(t, diags.HasErrors())
		assert.Equal(t, cty.True, v)
	})

	t.Run("unbound names are not visible", func(t *testing.T) {
		s, err := New(nil, map[string]any{"present": 1})
		require.NoError(t, err)

		_, diags := evalExpr(t, s, `absent`)
		assert.True(t, diags.HasErrors())
	})

	t.Run("sibling scopes do not share variables", func(t *testing.T) {
		first, err := New(nil, map[string]any{"who": "first"})
		require.NoError(t, err)
		second, err := New(nil, map[string]any{"other": true})
		require.NoError(t, err)

		_, diags := evalExpr(t, second, `who`)
		assert.True(t, diags.HasErrors())

		v, diags := evalExpr(t, first, `who`)
		require.False(t, diags.HasErrors())
		assert.Equal(t, cty.StringVal("first"), v)
	})

	t.Run("bindings are copied, not aliased", func(t *testing.T) {
		shared := map[string]any{"env": map[string]any{"region": "eu"}}
		s, err := New(nil, map[string]any{"cfg": shared["env"]})
		require.NoError(t, err)

		// Caller keeps mutating its own tree after scope creation.
		shared["env"].(map[string]any)["region"] = "us"

		v, diags := evalExpr(t, s, `cfg.region`)
		require.False(t, diags.HasErrors())
		assert.Equal(t, cty.StringVal("eu"), v)
	})

	t.Run("parent functions are inherited, parent variables are not", func(t *testing.T) {
		parent := &hcl.EvalContext{
			Variables: map[string]cty.Value{"hidden": cty.True},
			Functions: map[string]function.Function{},
		}
		s, err := New(parent, map[string]any{"own": 1})
		require.NoError(t, err)

		v, diags := evalExpr(t, s, `own`)
		require.False(t, diags.HasErrors())
		assert.Equal(t, cty.NumberIntVal(1), v)

		_, ok := s.Variable("hidden")
		assert.False(t, ok)
	})

	t.Run("unconvertible binding values fail with the binding name", func(t *testing.T) {
		_, err := New(nil, map[string]any{"bad": make(chan int)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"bad"`)
	})
}

func TestSetVariable(t *testing.T) {
	s, err := New(nil, nil)
	require.NoError(t, err)

	s.SetVariable("step", cty.ObjectVal(map[string]cty.Value{"count": cty.NumberIntVal(2)}))

	v, diags := evalExpr(t, s, `step.count`)
	require.False(t, diags.HasErrors())
	assert.Equal(t, cty.NumberIntVal(2), v)
}
