package protocol

// Names lists the protocols the simulator knows how to run, in the order
// the CLI should print them in usage/help text. Generic dispatch onto a
// concrete Rules[S] still happens at the call site (cmd/cachesim, sim),
// since a single process-wide type parameter can't be chosen from a
// runtime string — this registry only tracks what names are valid, the
// same role xreg's keyed registry plays for naming xaction kinds before
// the concrete type is resolved.
var Names = []string{"MESI", "Dragon"}

// Known reports whether name is a protocol this package implements.
func Known(name string) bool {
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}
