package hcl

import (
	"context"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/mz/nerfnavgo/internal/config"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// parseExpr is a helper that parses a single HCL expression string.
func parseExpr(t *testing.T, src string) hcl.Expression {
	t.Helper()
	expr, diags := hclsyntax.ParseExpression([]byte(src), "test.hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors(), diags.Error())
	return expr
}

func TestDecodeBody_PrimitivesAndDefaults(t *testing.T) {
	t.Parallel()

	type input struct {
		Name    string  `nng:"name"`
		Rate    float64 `nng:"rate"`
		Samples int     `nng:"samples"`
		Enabled bool    `nng:"enabled"`
	}

	defaultRate := cty.NumberFloatVal(0.0005)
	defs := map[string]*config.InputDefinition{
		"name":    {Name: "name", Type: cty.String},
		"rate":    {Name: "rate", Type: cty.Number, Default: &defaultRate, Optional: true},
		"samples": {Name: "samples", Type: cty.Number},
		"enabled": {Name: "enabled", Type: cty.Bool},
	}
	args := map[string]hcl.Expression{
		"name":    parseExpr(t, `"lego"`),
		"samples": parseExpr(t, `64`),
		"enabled": parseExpr(t, `true`),
	}

	var got input
	c := NewConverter()
	err := c.DecodeBody(context.Background(), &got, args, defs, nil)
	require.NoError(t, err)
	require.Equal(t, "lego", got.Name)
	require.Equal(t, 0.0005, got.Rate)
	require.Equal(t, 64, got.Samples)
	require.True(t, got.Enabled)
}

func TestDecodeBody_MissingRequired(t *testing.T) {
	t.Parallel()

	type input struct {
		Name string `nng:"name"`
	}
	defs := map[string]*config.InputDefinition{
		"name": {Name: "name", Type: cty.String},
	}

	var got input
	c := NewConverter()
	err := c.DecodeBody(context.Background(), &got, nil, defs, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), `missing required argument "name"`)
}

func TestDecodeBody_Collections(t *testing.T) {
	t.Parallel()

	type input struct {
		Tags   []string       `nng:"tags"`
		Extras map[string]any `nng:"extras"`
	}
	defs := map[string]*config.InputDefinition{
		"tags":   {Name: "tags", Type: cty.List(cty.String)},
		"extras": {Name: "extras", Type: cty.DynamicPseudoType},
	}
	args := map[string]hcl.Expression{
		"tags":   parseExpr(t, `["a", "b"]`),
		"extras": parseExpr(t, `{ iters = 200000, half_res = true }`),
	}

	var got input
	c := NewConverter()
	err := c.DecodeBody(context.Background(), &got, args, defs, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, got.Tags)
	require.Equal(t, float64(200000), got.Extras["iters"])
	require.Equal(t, true, got.Extras["half_res"])
}

func TestTypeExprToCtyType(t *testing.T) {
	t.Parallel()

	cases := []struct {
		src  string
		want cty.Type
	}{
		{"string", cty.String},
		{"number", cty.Number},
		{"bool", cty.Bool},
		{"any", cty.DynamicPseudoType},
		{"list(string)", cty.List(cty.String)},
		{"map(number)", cty.Map(cty.Number)},
		{"set(bool)", cty.Set(cty.Bool)},
		{"object({ x = number, name = string })", cty.Object(map[string]cty.Type{"x": cty.Number, "name": cty.String})},
	}

	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			t.Parallel()
			got, err := typeExprToCtyType(context.Background(), parseExpr(t, tc.src))
			require.NoError(t, err)
			require.True(t, tc.want.Equals(got), "want %s, got %s", tc.want.FriendlyName(), got.FriendlyName())
		})
	}
}

func TestTypeExprToCtyType_Errors(t *testing.T) {
	t.Parallel()

	for _, src := range []string{"widget", "list(any)", "tuple(string)"} {
		_, err := typeExprToCtyType(context.Background(), parseExpr(t, src))
		require.Error(t, err, src)
	}
}

func TestToCtyValue(t *testing.T) {
	t.Parallel()

	c := NewConverter()
	val, err := c.ToCtyValue(map[string]any{"loss": 0.03, "step": 1000})
	require.NoError(t, err)
	require.True(t, val.Type().IsObjectType())

	val, err = c.ToCtyValue(nil)
	require.NoError(t, err)
	require.Equal(t, cty.NilVal, val)
}
