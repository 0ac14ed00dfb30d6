package sim

import "github.com/coherence-sim/cachesim/protocol"

// RunSerial executes every core's trace under the reference serial
// schedule (spec §5): at each step, every core that still has
// instructions advances by exactly one, in fixed core-index order, with
// no suspension points. Bus transactions are fully serialized by this
// iteration order alone; the bus and set mutexes are still taken, but are
// never contended.
func RunSerial[S protocol.State](d *Driver[S]) {
	cursors := make([]int, d.NumCores())
	for {
		advanced := false
		for core := 0; core < d.NumCores(); core++ {
			if cursors[core] >= len(d.traces[core]) {
				continue
			}
			d.step(core, d.traces[core][cursors[core]])
			cursors[core]++
			advanced = true
		}
		if !advanced {
			break
		}
	}
}
