package nerfconf

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestParse_TypicalTrainerConfig(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	src := `
expname = stonehenge
basedir = ./logs
datadir = ./data/nerf_synthetic/stonehenge
dataset_type = blender

no_batching = True
use_viewdirs = True
white_bkgd = False
lrate_decay = 500

N_samples = 64
N_importance = 128
N_rand = 1024

precrop_iters = 500
precrop_frac = 0.5
lrate = 5e-4

half_res
`

	// --- Act ---
	rec, err := Parse(strings.NewReader(src), "stonehenge.txt")

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, 15, rec.Len())

	val, ok := rec.Get("expname")
	require.True(t, ok)
	require.Equal(t, cty.StringVal("stonehenge"), val)

	val, _ = rec.Get("no_batching")
	require.Equal(t, cty.True, val)

	val, _ = rec.Get("white_bkgd")
	require.Equal(t, cty.False, val)

	val, _ = rec.Get("N_samples")
	require.True(t, val.RawEquals(cty.NumberIntVal(64)))

	val, _ = rec.Get("precrop_frac")
	require.True(t, val.RawEquals(cty.MustParseNumberVal("0.5")))

	// Bare flag line means True.
	val, _ = rec.Get("half_res")
	require.Equal(t, cty.True, val)

	// Scientific notation survives typing.
	val, _ = rec.Get("lrate")
	require.True(t, val.RawEquals(cty.MustParseNumberVal("5e-4")))
}

func TestParse_OrderAndDuplicatesAreLastWriteWins(t *testing.T) {
	t.Parallel()

	src := "a = 1\nb = 2\na = 3\n"
	rec, err := Parse(strings.NewReader(src), "dup.txt")
	require.NoError(t, err)

	if diff := cmp.Diff([]string{"a", "b"}, rec.Keys()); diff != "" {
		t.Errorf("Key order mismatch (-want +got):\n%s", diff)
	}
	val, _ := rec.Get("a")
	require.True(t, val.RawEquals(cty.NumberIntVal(3)))
}

func TestParse_RejectsMalformedLines(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		src  string
		line int
	}{
		{name: "garbage line", src: "expname = ok\n!!!\n", line: 2},
		{name: "key with spaces", src: "my key = 1\n", line: 1},
		{name: "missing key", src: "= 5\n", line: 1},
		{name: "leading dash", src: "--lrate = 5e-4\n", line: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(strings.NewReader(tc.src), "bad.txt")
			require.Error(t, err)

			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			require.Equal(t, tc.line, parseErr.Line)
			require.Equal(t, "bad.txt", parseErr.Name)
		})
	}
}

func TestParse_NumericLookingStringsStayStrings(t *testing.T) {
	t.Parallel()

	rec, err := Parse(strings.NewReader("dataset_type = 7scenes\n"), "t.txt")
	require.NoError(t, err)

	val, _ := rec.Get("dataset_type")
	require.Equal(t, cty.StringVal("7scenes"), val)
}

func TestRender_RoundTripsCanonicalForm(t *testing.T) {
	t.Parallel()

	src := "expname = lego\nlrate = 5e-4\nhalf_res\nN_samples = 64\n"
	rec, err := Parse(strings.NewReader(src), "lego.txt")
	require.NoError(t, err)

	rendered := rec.String()
	want := "expname = lego\nlrate = 5e-4\nhalf_res = True\nN_samples = 64\n"
	require.Equal(t, want, rendered)

	// A second parse/render cycle is a fixed point.
	rec2, err := Parse(strings.NewReader(rendered), "lego.txt")
	require.NoError(t, err)
	require.Equal(t, rendered, rec2.String())
}
