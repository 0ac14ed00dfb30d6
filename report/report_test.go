package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coherence-sim/cachesim/sim"
)

func buildProfiler(t *testing.T) *sim.Profiler {
	t.Helper()
	p := sim.NewProfiler(2)
	p.Cores[0] = sim.CoreStats{Cycles: 120, IdleCycles: 100, ComputeCycles: 20, Loads: 5, Stores: 3, Hits: 6, Misses: 2}
	p.Cores[1] = sim.CoreStats{Cycles: 80, IdleCycles: 70, ComputeCycles: 10, Loads: 4, Stores: 1, Hits: 3, Misses: 2}
	return p
}

func TestBuild_AggregatesAcrossCores(t *testing.T) {
	p := buildProfiler(t)
	r := Build("run-1", "MESI", p, 512, 4)

	require.Equal(t, "run-1", r.RunID)
	require.Equal(t, "MESI", r.Protocol)
	require.Len(t, r.Cores, 2)
	require.EqualValues(t, 120, r.MaxCycles)
	require.EqualValues(t, 170, r.TotalIdleCycles)
	require.EqualValues(t, 9, r.TotalHits)
	require.EqualValues(t, 4, r.TotalMisses)
	require.EqualValues(t, 512, r.TrafficBytes)
	require.EqualValues(t, 4, r.InvalidationsOrUps)
	// 9/13 = 69.23...%, truncated to one decimal via thousandths: 692/10 = 69.2
	require.InDelta(t, 69.2, r.HitRatePercent, 0.001)
	require.InDelta(t, 30.8, r.MissRatePercent, 0.001)
}

func TestBuild_ZeroAccessesLeavesRatesAtZero(t *testing.T) {
	p := sim.NewProfiler(1)
	r := Build("run-2", "Dragon", p, 0, 0)
	require.Zero(t, r.HitRatePercent)
	require.Zero(t, r.PrivateAccessPct)
}

func TestPercentTenth_TruncatesNotRounds(t *testing.T) {
	// 2/3 = 66.666...%; thousandths truncates to 666, i.e. 66.6, not 66.7.
	require.InDelta(t, 66.6, percentTenth(2, 3), 0.0001)
}

func TestWriteText_RendersPerCoreAndGlobalBlocks(t *testing.T) {
	p := buildProfiler(t)
	r := Build("run-1", "MESI", p, 512, 4)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, r))
	out := buf.String()

	require.Contains(t, out, "[Core 0]")
	require.Contains(t, out, "[Core 1]")
	require.Contains(t, out, "[Global]")
	require.Contains(t, out, "Overall cycles (maximum among cores): 120")
	require.Contains(t, out, "Total bus traffic (bytes): 512")
	require.Contains(t, out, "Total bus invalidations / updates: 4")
}

func TestWriteJSON_RoundTrips(t *testing.T) {
	p := buildProfiler(t)
	r := Build("run-1", "MESI", p, 512, 4)

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, WriteJSON(path, r))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, r.RunID, decoded.RunID)
	require.Equal(t, r.TrafficBytes, decoded.TrafficBytes)
	require.Len(t, decoded.Cores, 2)
}
