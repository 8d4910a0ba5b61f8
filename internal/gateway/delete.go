package gateway

// DeleteDevice signals the reader to stop, removes the registry entry,
// flushes and closes its session, and schedules the DeviceRemoved hook
// asynchronously (spec § 4.9). It returns true if a record was
// actually removed.
func (g *Gateway) DeleteDevice(id string) bool {
	g.reg.SetStarted(id, false)

	rec := g.reg.Remove(id)
	if rec == nil {
		return false
	}

	if err := rec.Session.Flush(); err != nil {
		g.log.Device(id, rec.Port).Warn("flush on delete failed", "error", classifyTransportErr(err))
	}
	if err := rec.Session.Close(); err != nil {
		g.log.Device(id, rec.Port).Warn("close on delete failed", "error", classifyTransportErr(err))
	}

	if g.hooks.DeviceRemoved != nil {
		go g.hooks.DeviceRemoved(id, rec.Port)
	}

	return true
}

// DeleteAll calls DeleteDevice on a snapshot of every currently
// registered ID, returning the number actually removed.
func (g *Gateway) DeleteAll() int {
	count := 0
	for _, id := range g.reg.IDs() {
		if g.DeleteDevice(id) {
			count++
		}
	}
	return count
}
