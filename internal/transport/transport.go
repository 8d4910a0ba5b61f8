// Package transport is the gateway's sole boundary to the operating
// system: enumerating serial ports, opening and configuring a line,
// and reading/writing it. It is the only package that performs serial
// I/O or port enumeration (spec § 4.1); everything above it goes through
// the Transport
// interface so the admission pipeline and reader supervisor can be
// tested against a fake.
package transport

import "github.com/mvberg/serialgw/internal/device"

// Transport is the façade the gateway depends on. The real
// implementation is OS; tests substitute a fake.
type Transport interface {
	ListPorts() ([]PortInfo, error)
	Open(path string, settings device.Settings) (Session, error)
}

type osTransport struct{}

// OS is the production Transport, backed by termios over
// golang.org/x/sys/unix and a /sys-walking port enumerator.
var OS Transport = osTransport{}

func (osTransport) ListPorts() ([]PortInfo, error) {
	return ListPorts()
}

func (osTransport) Open(path string, settings device.Settings) (Session, error) {
	return Open(path, settings)
}
