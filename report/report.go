// Package report formats a finished run's counters for human and machine
// consumption (spec §6.4): a collaborator of the core, not part of it.
// Grounded on original_source/src/profiler.cpp's print_stats, re-expressed
// idiomatically (io.Writer instead of std::cout, jsoniter for the
// optional structured form instead of a second hand-rolled printer).
package report

import (
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/coherence-sim/cachesim/sim"
)

// CoreReport mirrors one core's block of the text report (spec §6.4).
type CoreReport struct {
	Core          int   `json:"core"`
	Cycles        int64 `json:"cycles"`
	IdleCycles    int64 `json:"idle_cycles"`
	ComputeCycles int64 `json:"compute_cycles"`
	Loads         int64 `json:"loads"`
	Stores        int64 `json:"stores"`
	Hits          int64 `json:"cache_hits"`
	Misses        int64 `json:"cache_misses"`
}

// Report is the full set of counters a run produces, in the shape both
// the text and JSON renderings draw from.
type Report struct {
	RunID    string       `json:"run_id"`
	Protocol string       `json:"protocol"`
	Cores    []CoreReport `json:"cores"`

	MaxCycles           int64   `json:"max_cycles"`
	TotalIdleCycles     int64   `json:"total_idle_cycles"`
	HitRatePercent      float64 `json:"hit_rate_percent"`
	MissRatePercent     float64 `json:"miss_rate_percent"`
	TotalHits           int64   `json:"total_hits"`
	TotalMisses         int64   `json:"total_misses"`
	TrafficBytes        int64   `json:"traffic_bytes"`
	InvalidationsOrUps  int64   `json:"invalidations_or_updates"`
	PrivateAccessPct    float64 `json:"private_access_percent"`
	SharedAccessPct     float64 `json:"shared_access_percent"`
}

// Build assembles a Report from a finished run's profiler and bus
// counters. runID and protocol are carried into the Report, where
// WriteJSON renders them; WriteText does not print them.
func Build(runID, protocol string, p *sim.Profiler, trafficBytes, invalidationsOrUps int64) *Report {
	r := &Report{
		RunID:              runID,
		Protocol:           protocol,
		Cores:              make([]CoreReport, len(p.Cores)),
		MaxCycles:          p.MaxCycles(),
		TrafficBytes:       trafficBytes,
		InvalidationsOrUps: invalidationsOrUps,
	}

	var totalIdle, totalHits, totalMisses int64
	for i, c := range p.Cores {
		r.Cores[i] = CoreReport{
			Core: i, Cycles: c.Cycles, IdleCycles: c.IdleCycles,
			ComputeCycles: c.ComputeCycles, Loads: c.Loads, Stores: c.Stores,
			Hits: c.Hits, Misses: c.Misses,
		}
		totalIdle += c.IdleCycles
		totalHits += c.Hits
		totalMisses += c.Misses
	}
	r.TotalIdleCycles = totalIdle
	r.TotalHits = totalHits
	r.TotalMisses = totalMisses
	if total := totalHits + totalMisses; total > 0 {
		r.HitRatePercent = percentTenth(totalHits, total)
		r.MissRatePercent = 100 - r.HitRatePercent
	}

	private, shared := p.PrivateAccesses(), p.SharedAccesses()
	if total := private + shared; total > 0 {
		r.PrivateAccessPct = percentTenth(private, total)
		r.SharedAccessPct = 100 - r.PrivateAccessPct
	}
	return r
}

// percentTenth truncates num/denom*100 to one decimal place, matching
// profiler.cpp's integer thousandth-then-truncate arithmetic
// (hit_rate_thousandth / 10 . hit_rate_thousandth % 10).
func percentTenth(num, denom int64) float64 {
	thousandths := float64(num) / float64(denom) * 1000
	tenths := int64(thousandths)
	return float64(tenths) / 10
}

// WriteText renders the human-readable per-core and global blocks (spec
// §6.4) to w.
func WriteText(w io.Writer, r *Report) error {
	for _, c := range r.Cores {
		if _, err := fmt.Fprintf(w, "[Core %d]\n", c.Core); err != nil {
			return err
		}
		fmt.Fprintf(w, "Cycles: %d\n", c.Cycles)
		fmt.Fprintf(w, "Idle cycles: %d\n", c.IdleCycles)
		fmt.Fprintf(w, "Compute cycles: %d\n", c.ComputeCycles)
		fmt.Fprintf(w, "Loads: %d\n", c.Loads)
		fmt.Fprintf(w, "Stores: %d\n", c.Stores)
		fmt.Fprintf(w, "Cache hits: %d\n", c.Hits)
		fmt.Fprintf(w, "Cache misses: %d\n", c.Misses)
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "[Global]")
	fmt.Fprintf(w, "Overall cycles (maximum among cores): %d\n", r.MaxCycles)
	fmt.Fprintf(w, "Total idle cycles: %d\n", r.TotalIdleCycles)
	fmt.Fprintf(w, "Cache hit rate (%%): %.1f (%d)\n", r.HitRatePercent, r.TotalHits)
	fmt.Fprintf(w, "Cache miss rate (%%): %.1f (%d)\n", r.MissRatePercent, r.TotalMisses)
	fmt.Fprintf(w, "Total bus traffic (bytes): %d\n", r.TrafficBytes)
	fmt.Fprintf(w, "Total bus invalidations / updates: %d\n", r.InvalidationsOrUps)
	fmt.Fprintf(w, "Private data access (%%): %.1f\n", r.PrivateAccessPct)
	_, err := fmt.Fprintf(w, "Shared data access (%%): %.1f\n", r.SharedAccessPct)
	return err
}

// WriteJSON marshals r to path via jsoniter, for the CLI's --json flag.
func WriteJSON(path string, r *Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
