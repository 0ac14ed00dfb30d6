// Command cachesim is the simulator's CLI entry point (spec §6.1):
// `cachesim <protocol> <trace_prefix> <cache_size_bytes> <associativity>
// <block_size_bytes>`, plus flags layered on top of those five positional
// arguments. Built on github.com/urfave/cli the way cmd/cli/cli builds its
// own argument parsing, rather than hand-rolled os.Args indexing.
package main

import (
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli"

	"github.com/coherence-sim/cachesim/3rdparty/glog"
	"github.com/coherence-sim/cachesim/cmn"
	"github.com/coherence-sim/cachesim/protocol"
	"github.com/coherence-sim/cachesim/report"
	"github.com/coherence-sim/cachesim/sim"
	"github.com/coherence-sim/cachesim/trace"
)

var (
	coresMaxFlag = cli.IntFlag{Name: "cores-max", Value: cmn.MaxCores, Usage: "hard cap on cores to discover traces for"}
	metricsFlag  = cli.StringFlag{Name: "metrics-addr", Usage: "if set, serve Prometheus metrics on this address"}
	jsonFlag     = cli.StringFlag{Name: "json", Usage: "if set, also write a machine-readable report to this path"}
	serialFlag   = cli.BoolFlag{Name: "serial", Usage: "force the single-threaded reference schedule (default: parallel)"}
)

func main() {
	app := cli.NewApp()
	app.Name = "cachesim"
	app.Usage = "trace-driven multi-core cache-coherence simulator"
	app.UsageText = "cachesim [options] <protocol> <trace_prefix> <cache_size_bytes> <associativity> <block_size_bytes>"
	app.Flags = []cli.Flag{coresMaxFlag, metricsFlag, jsonFlag, serialFlag}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		var cfgErr *cmn.ConfigError
		var traceErr *cmn.TraceError
		switch {
		case errors.As(err, &cfgErr):
			glog.Errorf("%v", err)
			os.Exit(2)
		case errors.As(err, &traceErr):
			glog.Errorf("%v", err)
			os.Exit(3)
		default:
			glog.Errorf("%v", err)
			os.Exit(1)
		}
	}
}

func run(c *cli.Context) error {
	if c.NArg() < 5 {
		return cmn.NewConfigError("expected 5 positional arguments: protocol trace_prefix cache_size_bytes associativity block_size_bytes, got %d", c.NArg())
	}

	proto := cmn.Protocol(c.Args().Get(0))
	if proto != cmn.MESI && proto != cmn.Dragon {
		// Case-sensitive selection defaulting to MESI (spec §6.1).
		proto = cmn.MESI
	}
	tracePrefix := c.Args().Get(1)

	cacheSize, err := strconv.Atoi(c.Args().Get(2))
	if err != nil {
		return cmn.WrapConfigError(err, "cache_size_bytes %q is not a valid integer", c.Args().Get(2))
	}
	associativity, err := strconv.Atoi(c.Args().Get(3))
	if err != nil {
		return cmn.WrapConfigError(err, "associativity %q is not a valid integer", c.Args().Get(3))
	}
	blockSize, err := strconv.Atoi(c.Args().Get(4))
	if err != nil {
		return cmn.WrapConfigError(err, "block_size_bytes %q is not a valid integer", c.Args().Get(4))
	}

	cfg := cmn.NewConfig(proto, tracePrefix, cacheSize, associativity, blockSize)
	if err := cfg.Validate(); err != nil {
		return err
	}

	coresMax := c.Int(coresMaxFlag.Name)
	traces, err := discoverTraces(tracePrefix, coresMax)
	if err != nil {
		return err
	}

	if addr := c.String(metricsFlag.Name); addr != "" {
		go serveMetrics(addr)
	}

	var rep *report.Report
	switch proto {
	case cmn.Dragon:
		rep, err = runProtocol(c, cfg, protocol.DragonRules{}, traces)
	default:
		rep, err = runProtocol(c, cfg, protocol.MESIRules{}, traces)
	}
	if err != nil {
		return err
	}

	if err := report.WriteText(os.Stdout, rep); err != nil {
		return err
	}
	if path := c.String(jsonFlag.Name); path != "" {
		if err := report.WriteJSON(path, rep); err != nil {
			return err
		}
	}
	return nil
}

// runProtocol builds and drives one run for a concrete protocol.Rules[S],
// the point where the CLI's runtime protocol string resolves to a static
// type parameter (spec §9's "statically forbid mixing Dragon states into
// a MESI cache" — runProtocol is instantiated once per protocol, never
// both at once, so that guarantee holds all the way out to main).
func runProtocol[S protocol.State](c *cli.Context, cfg *cmn.Config, rules protocol.Rules[S], traces [][]trace.Instruction) (*report.Report, error) {
	d := sim.NewDriver(cfg, rules, traces)
	glog.Infof("run %s: protocol=%s cores=%d geometry=%d/%d/%d", d.RunID, rules.Name(), len(traces), cfg.CacheSize, cfg.Associativity, cfg.BlockSize)

	if c.Bool(serialFlag.Name) {
		sim.RunSerial(d)
	} else if err := sim.RunParallel(d); err != nil {
		return nil, err
	}

	return report.Build(d.RunID.String(), rules.Name(), d.Profiler(), d.Bus().TrafficBytes(), d.Bus().InvalidationsOrUpdates()), nil
}

// discoverTraces reads `<prefix>_<i>.data` for i = 0, 1, ... up to max
// cores, stopping at the first missing file (spec §6.1). A missing file
// at index 0 is fatal; a missing file at index >= 1 stops discovery and
// proceeds with the cores found so far.
func discoverTraces(prefix string, max int) ([][]trace.Instruction, error) {
	var traces [][]trace.Instruction
	for i := 0; i < max; i++ {
		path := fmt.Sprintf("%s_%d.data", prefix, i)
		instrs, err := trace.Parse(path)
		if err != nil {
			if os.IsNotExist(err) {
				if i == 0 {
					return nil, cmn.NewTraceError(i, err)
				}
				break
			}
			return nil, cmn.NewTraceError(i, err)
		}
		traces = append(traces, instrs)
	}
	return traces, nil
}

func serveMetrics(addr string) {
	glog.Infof("serving metrics on %s", addr)
	http.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, nil); err != nil {
		glog.Warningf("metrics server stopped: %v", err)
	}
}
