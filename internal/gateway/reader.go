package gateway

import (
	"github.com/mvberg/serialgw/internal/protocol"
)

// startReader marks the reader for id as started and launches its
// loop in its own goroutine (spec § 4.5 step 10, § 4.6).
func (g *Gateway) startReader(id string) {
	g.reg.SetStarted(id, true)
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		g.readLoop(id)
	}()
}

// readLoop is the per-device reader task (spec § 4.6). It marks
// exited = false on entry, then repeats while IsStarted(id) holds:
// read a line, dispatch non-empty lines to processMessage on their own
// goroutine so the reader never blocks on a slow callback, and on
// transport failure delete the device, which breaks the loop via
// IsStarted returning false. It marks exited = true on exit.
func (g *Gateway) readLoop(id string) {
	g.reg.SetExited(id, false)
	defer func() {
		g.reg.SetExited(id, true)
		g.log.Device(id, g.portOf(id)).Info("reader exited")
	}()

	for g.reg.IsStarted(id) {
		rec := g.reg.Get(id)
		if rec == nil {
			// Deleted out from under us between the IsStarted check and
			// here; the next IsStarted check will observe false.
			continue
		}

		line, err := rec.Session.ReadLine()
		if err != nil {
			g.log.Device(id, rec.Port).Error("reader transport failure", "error", classifyTransportErr(err))
			g.DeleteDevice(id)
			continue
		}

		if line == "" {
			// Bare read timeout, not an error (spec § 4.1); keep polling.
			continue
		}

		go g.processMessage(id, line)
	}
}

// processMessage parses line and invokes the MessageReceived hook on
// its own goroutine, so a slow consumer cannot back-pressure the
// reader (spec § 4.6).
func (g *Gateway) processMessage(id, line string) {
	msgType, content := protocol.Parse(line, g.cfg.MessageDelimiter)
	if g.hooks.MessageReceived != nil {
		g.hooks.MessageReceived(id, nowMillis(), msgType, content)
	}
}

// portOf returns the port for id if still registered, or "" once the
// record has already been removed (used only for the reader-exit log
// line, which may fire after deletion).
func (g *Gateway) portOf(id string) string {
	if rec := g.reg.Get(id); rec != nil {
		return rec.Port
	}
	return ""
}
