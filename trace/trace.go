// Package trace loads per-core instruction traces (spec §6.2): a
// collaborator of the coherence engine, not part of it. Grounded on
// original_source/src/trace.cpp's read_data — line-oriented, tolerant of
// malformed lines — re-expressed with bufio.Scanner and the ambient
// stack's logging instead of iostream.
package trace

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/coherence-sim/cachesim/3rdparty/glog"
)

// Kind distinguishes the three instruction shapes a trace line can carry
// (spec §3).
type Kind int

const (
	Load Kind = iota
	Store
	Compute
)

func (k Kind) String() string {
	switch k {
	case Load:
		return "Load"
	case Store:
		return "Store"
	case Compute:
		return "Compute"
	default:
		return "Kind(?)"
	}
}

// Instruction is one line of a trace: a Load/Store carries a 32-bit
// address in Value; a Compute carries a non-negative cycle count.
type Instruction struct {
	Kind  Kind
	Value uint32
}

// Parse reads path line by line into a sequence of Instructions (spec
// §6.2). Blank lines and lines beginning with "//" are ignored; a
// malformed line emits a warning via glog and is skipped rather than
// aborting the read, mirroring trace.cpp's skip-and-continue behavior
// line for line.
func Parse(path string) ([]Instruction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []Instruction
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			glog.Warningf("trace %s:%d: expected '<type> <hex_value>', got %q, skipping", path, lineNo, line)
			continue
		}

		typeInt, err := strconv.Atoi(fields[0])
		if err != nil {
			glog.Warningf("trace %s:%d: invalid instruction type %q, skipping", path, lineNo, fields[0])
			continue
		}
		var kind Kind
		switch typeInt {
		case 0:
			kind = Load
		case 1:
			kind = Store
		case 2:
			kind = Compute
		default:
			glog.Warningf("trace %s:%d: unknown instruction type %d, skipping", path, lineNo, typeInt)
			continue
		}

		raw := fields[1]
		raw = strings.TrimPrefix(raw, "0x")
		raw = strings.TrimPrefix(raw, "0X")
		value, err := strconv.ParseUint(raw, 16, 32)
		if err != nil {
			glog.Warningf("trace %s:%d: invalid or out-of-range hex value %q, skipping", path, lineNo, fields[1])
			continue
		}
		out = append(out, Instruction{Kind: kind, Value: uint32(value)})
	}
	if err := scanner.Err(); err != nil {
		return out, fmt.Errorf("trace %s: %w", path, err)
	}
	return out, nil
}
