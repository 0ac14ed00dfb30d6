package trace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTrace(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "core_0.data")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestParse_ParsesAllThreeKinds(t *testing.T) {
	path := writeTrace(t, "0 0x1000\n1 0x2000\n2 0xA\n")
	instrs, err := Parse(path)
	require.NoError(t, err)
	require.Equal(t, []Instruction{
		{Kind: Load, Value: 0x1000},
		{Kind: Store, Value: 0x2000},
		{Kind: Compute, Value: 0xA},
	}, instrs)
}

func TestParse_AcceptsHexWithoutPrefix(t *testing.T) {
	path := writeTrace(t, "0 1000\n")
	instrs, err := Parse(path)
	require.NoError(t, err)
	require.Equal(t, []Instruction{{Kind: Load, Value: 0x1000}}, instrs)
}

func TestParse_SkipsBlankAndCommentLines(t *testing.T) {
	path := writeTrace(t, "\n// a comment\n0 0x1\n   \n1 0x2\n")
	instrs, err := Parse(path)
	require.NoError(t, err)
	require.Equal(t, []Instruction{
		{Kind: Load, Value: 0x1},
		{Kind: Store, Value: 0x2},
	}, instrs)
}

func TestParse_SkipsMalformedLinesWithoutAborting(t *testing.T) {
	path := writeTrace(t, "garbage line\n3 0x1\n0 notHex\n0 0x5\n")
	instrs, err := Parse(path)
	require.NoError(t, err)
	require.Equal(t, []Instruction{{Kind: Load, Value: 0x5}},
		instrs, "every malformed line is skipped and only the well-formed one survives")
}

func TestParse_MissingFileReturnsNotExist(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "does_not_exist.data"))
	require.Error(t, err)
	require.True(t, os.IsNotExist(err))
}

func TestKind_String(t *testing.T) {
	require.Equal(t, "Load", Load.String())
	require.Equal(t, "Store", Store.String())
	require.Equal(t, "Compute", Compute.String())
	require.Equal(t, "Kind(?)", Kind(99).String())
}
