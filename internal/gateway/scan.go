package gateway

import (
	"context"
	"time"
)

// scanLoop is the gateway's periodic port sweep, launched once by
// Start (spec § 4.7). Each iteration enumerates system ports and
// attempts admission on every one with logs suppressed; if
// scan_interval_ms == 0 it performs exactly one pass and returns.
// Otherwise it sleeps for scan_interval_ms between passes, using a
// timer inside a select on ctx.Done() so Stop can interrupt a pending
// sleep immediately instead of waiting out the remainder of the
// interval.
func (g *Gateway) scanLoop(ctx context.Context) {
	g.sweepNewPorts(true)

	if g.cfg.ScanIntervalMs == 0 {
		return
	}

	interval := time.Duration(g.cfg.ScanIntervalMs) * time.Millisecond
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			g.sweepNewPorts(true)
			timer.Reset(interval)
		}
	}
}

// sweepNewPorts enumerates system ports and calls AddSerialDevice on
// each, returning the count that were newly admitted. It underlies
// both the periodic scanLoop and AddNewSerialPorts, the explicit
// one-shot sweep the interactive surface's "add all new" verb drives
// (present in the source's public API as addNewSerialPorts but not
// named among spec.md's core operations).
func (g *Gateway) sweepNewPorts(suppressLogs bool) int {
	ports, err := g.transport.ListPorts()
	if err != nil {
		g.log.Warn("list ports failed during scan", "error", err)
		return 0
	}

	admitted := 0
	for _, p := range ports {
		if g.AddSerialDevice(p.Port, suppressLogs) {
			admitted++
		}
	}
	return admitted
}

// AddNewSerialPorts enumerates system ports and attempts admission on
// each newly-seen one, returning the count of devices actually
// admitted. Distinct from the periodic scan loop: this is an explicit,
// caller-triggered sweep (spec § 4.10 supplement).
func (g *Gateway) AddNewSerialPorts(suppressLogs bool) int {
	return g.sweepNewPorts(suppressLogs)
}
