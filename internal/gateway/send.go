package gateway

// SendToDevice schedules an asynchronous write of message + "\n" to
// the device registered under id (spec § 4.8). If id is not
// registered, it logs at info and returns without spawning anything.
// On a transport failure the device is deleted.
func (g *Gateway) SendToDevice(id, message string) {
	rec := g.reg.Get(id)
	if rec == nil {
		g.log.Info("send to unknown device", "id", id)
		return
	}

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()

		payload := []byte(message + "\n")
		n, err := rec.Session.Write(payload)
		if err != nil {
			g.log.Device(id, rec.Port).Error("send failed", "error", classifyTransportErr(err))
			g.DeleteDevice(id)
			return
		}
		if n != len(payload) {
			g.log.Device(id, rec.Port).Warn("short write", "wrote", n, "want", len(payload))
			return
		}
		g.log.Device(id, rec.Port).Info("send ok", "bytes", n)
	}()
}

// Broadcast snapshots the current device IDs and fans out one
// SendToDevice call per ID (spec § 4.8).
func (g *Gateway) Broadcast(message string) {
	for _, id := range g.reg.IDs() {
		g.SendToDevice(id, message)
	}
}
