package nerfconf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func mustParse(t *testing.T, name, src string) *Record {
	t.Helper()
	rec, err := Parse(strings.NewReader(src), name)
	require.NoError(t, err)
	return rec
}

func TestMerge_OverlayWinsBaseOrderKept(t *testing.T) {
	t.Parallel()

	base := mustParse(t, "base.txt", "expname = lego\nN_samples = 64\nlrate = 5e-4\n")
	overlay := mustParse(t, "overlay.txt", "N_samples = 128\nhalf_res = True\n")

	merged := Merge(base, overlay)

	require.Equal(t, []string{"expname", "N_samples", "lrate", "half_res"}, merged.Keys())

	val, _ := merged.Get("N_samples")
	require.True(t, val.RawEquals(cty.NumberIntVal(128)))

	val, _ = merged.Get("expname")
	require.Equal(t, cty.StringVal("lego"), val)

	// Inputs are untouched.
	val, _ = base.Get("N_samples")
	require.True(t, val.RawEquals(cty.NumberIntVal(64)))
}

func TestDiff_ClassifiesChanges(t *testing.T) {
	t.Parallel()

	a := mustParse(t, "a.txt", "expname = lego\nN_samples = 64\nhalf_res = True\n")
	b := mustParse(t, "b.txt", "expname = lego\nN_samples = 128\nwhite_bkgd = True\n")

	changes := Diff(a, b)
	require.Len(t, changes, 3)

	require.Equal(t, Changed, changes[0].Kind)
	require.Equal(t, "N_samples", changes[0].Key)
	require.True(t, changes[0].A.RawEquals(cty.NumberIntVal(64)))
	require.True(t, changes[0].B.RawEquals(cty.NumberIntVal(128)))

	require.Equal(t, OnlyInA, changes[1].Kind)
	require.Equal(t, "half_res", changes[1].Key)

	require.Equal(t, OnlyInB, changes[2].Kind)
	require.Equal(t, "white_bkgd", changes[2].Key)
}

func TestDiff_IdenticalRecordsAreEmpty(t *testing.T) {
	t.Parallel()

	a := mustParse(t, "a.txt", "expname = lego\nN_samples = 64\n")
	b := mustParse(t, "b.txt", "expname = lego\nN_samples = 64\n")

	require.Empty(t, Diff(a, b))
}
