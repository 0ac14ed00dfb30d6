package sim

import (
	"github.com/coherence-sim/cachesim/protocol"
	"golang.org/x/sync/errgroup"
)

// RunParallel executes every core's trace independently, one goroutine
// per core (spec §5's parallel mode). Cores never wait on each other
// directly; the bus's single mutex (held for the full duration of a
// broadcast, including nested snoop-triggered flush accounting) and each
// coherence.LRUSet's own mutex are what serialize the shared state a
// Load/Store touches. errgroup.Group joins the goroutines; step reports no
// errors, so every goroutine returns nil and RunParallel always returns
// nil.
func RunParallel[S protocol.State](d *Driver[S]) error {
	g := new(errgroup.Group)
	for core := 0; core < d.NumCores(); core++ {
		core := core
		tr := d.traces[core]
		g.Go(func() error {
			for _, instr := range tr {
				d.step(core, instr)
			}
			return nil
		})
	}
	return g.Wait()
}
