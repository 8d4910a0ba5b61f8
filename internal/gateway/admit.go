package gateway

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mvberg/serialgw/internal/device"
	"github.com/mvberg/serialgw/internal/protocol"
	"github.com/mvberg/serialgw/internal/transport"
)

// AddSerialDevice runs the ten-step admission pipeline against port
// (spec § 4.5). Every failure step returns false without mutating the
// registry; admission errors never propagate out of this function.
// Failures are logged as warnings unless suppressLogs, except an ID
// collision, which is always logged as an error.
func (g *Gateway) AddSerialDevice(port string, suppressLogs bool) bool {
	warn := func(msg string, args ...any) {
		if !suppressLogs {
			g.log.Port(port).Warn(msg, args...)
		}
	}

	// 1. Existence.
	if _, err := os.Stat(port); err != nil {
		warn("port does not exist", "error", err)
		return false
	}

	// 2. Denylist.
	if g.denylist.Contains(port) {
		warn("port is denylisted")
		return false
	}

	// 3. Duplicate port.
	if g.reg.FindByPort(port) != nil {
		warn("port already has a registered device")
		return false
	}

	// 4. Allowlist check, only when the allowlist is enforced.
	if !g.allowlist.Empty() {
		hwid, err := g.lookupHardwareID(port)
		if err != nil {
			warn("hardware ID unreadable", "error", err)
			return false
		}
		if !g.allowlist.Contains(hwid) {
			warn("hardware ID not in allowlist", "hardware_id", hwid)
			return false
		}
	}

	// 5. Open.
	settings := device.DefaultSettings(int(g.cfg.BaudRate), device.HandshakeTimeout)
	session, err := g.transport.Open(port, settings)
	if err != nil {
		warn("open failed", "error", err)
		return false
	}

	id, ok := g.handshake(port, session, warn)
	if !ok {
		session.Close()
		return false
	}

	rec := &device.Record{
		Port:     port,
		Settings: settings,
		ID:       id,
		Session:  session,
	}

	// 9. Collision.
	if !g.reg.InsertIfAbsent(id, rec) {
		session.Close()
		if existing := g.reg.Get(id); existing != nil {
			g.log.Error("id collision", "id", id, "existing_port", existing.Port, "new_port", port)
		} else {
			g.log.Error("id collision", "id", id, "new_port", port)
		}
		return false
	}

	// 10. Success.
	g.log.Device(id, port).Info("device admitted")
	if g.hooks.DeviceAdded != nil {
		go g.hooks.DeviceAdded(id, port)
	}
	g.startReader(id)
	return true
}

// handshake runs steps 6-8: settle, write the ID-query command, read
// one line, parse it, and require the response's type to match
// MessageTypeForIDs with non-empty content. Any transport failure is
// caught and logged with its specific kind (spec § 4.5's "any
// transport failure in steps 5-8 ... returns false").
func (g *Gateway) handshake(port string, session device.Session, warn func(string, ...any)) (string, bool) {
	// 6. Settle.
	time.Sleep(time.Duration(g.cfg.WaitBeforeCommunicationMs) * time.Millisecond)

	// 7. ID handshake.
	if err := session.Flush(); err != nil {
		warn("pre-handshake flush failed", "error", classifyTransportErr(err))
		return "", false
	}

	command := g.cfg.CommandToGetDeviceID + "\n"
	if _, err := session.Write([]byte(command)); err != nil {
		warn("handshake write failed", "error", classifyTransportErr(err))
		return "", false
	}

	line, err := session.ReadLine()
	if err != nil {
		warn("handshake read failed", "error", classifyTransportErr(err))
		return "", false
	}

	msgType, content := protocol.Parse(line, g.cfg.MessageDelimiter)
	if msgType != g.cfg.MessageTypeForIDs || content == "" {
		warn("handshake response did not yield an id", "line", line)
		return "", false
	}

	// 8. Flush to discard any stray bytes.
	if err := session.Flush(); err != nil {
		warn("post-handshake flush failed", "error", classifyTransportErr(err))
		return "", false
	}

	return content, true
}

// lookupHardwareID implements spec § 4.5 step 4: enumerate system
// ports, find the one whose path equals port, and extract its
// VID:PID value from the opaque descriptor.
func (g *Gateway) lookupHardwareID(port string) (string, error) {
	ports, err := g.transport.ListPorts()
	if err != nil {
		return "", fmt.Errorf("list ports: %w", err)
	}

	for _, p := range ports {
		if p.Port != port {
			continue
		}
		hwid, ok := transport.ExtractHardwareID(p.Descriptor)
		if !ok {
			return "", fmt.Errorf("no VID:PID in descriptor %q", p.Descriptor)
		}
		return hwid, nil
	}

	return "", fmt.Errorf("port %s not found by ListPorts", port)
}

// classifyTransportErr names the transport failure kind spec § 7
// wants alongside the log line (io / protocol / not_open), keeping the
// full error text too since the kind alone loses the syscall detail.
func classifyTransportErr(err error) string {
	kind := "unknown"
	switch {
	case errors.Is(err, transport.ErrIO):
		kind = "io"
	case errors.Is(err, transport.ErrProtocol):
		kind = "protocol"
	case errors.Is(err, transport.ErrNotOpen):
		kind = "not_open"
	}
	return fmt.Sprintf("%s: %v", kind, err)
}
