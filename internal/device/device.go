// Package device defines the data model for a single serial device
// record: the static settings it was opened with, and (once admission
// has run) the application-level ID that names it in the registry.
package device

import "time"

// ByteSize is the number of data bits per character.
type ByteSize int

const (
	ByteSize8 ByteSize = iota
	ByteSize7
	ByteSize6
	ByteSize5
)

// Parity selects the parity bit mode.
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
	ParityMark
	ParitySpace
)

// StopBits selects the number of stop bits.
type StopBits int

const (
	StopBitsOne StopBits = iota
	StopBitsTwo
	StopBitsOnePointFive
)

// FlowControl selects the flow control mode.
type FlowControl int

const (
	FlowControlNone FlowControl = iota
	FlowControlSoftware
	FlowControlHardware
)

// HandshakeTimeout is the fixed read timeout a device's session is
// opened with. It governs every read for the device's entire life, not
// just the handshake — the source constructs its serial instance with
// this timeout exactly once and never widens it afterward. Hard-coded
// (see Open Question (b)): not exposed in config. The transport applies
// it in whole tenths of a second, so reads time out after 200 ms.
const HandshakeTimeout = 250 * time.Millisecond

// Settings describes how a serial line is configured. It is immutable
// once a Record has been opened.
type Settings struct {
	Baud        int
	Timeout     time.Duration
	ByteSize    ByteSize
	Parity      Parity
	StopBits    StopBits
	FlowControl FlowControl
}

// DefaultSettings returns the settings used for the operational
// session of an admitted device, given the configured baud rate.
func DefaultSettings(baud int, timeout time.Duration) Settings {
	return Settings{
		Baud:        baud,
		Timeout:     timeout,
		ByteSize:    ByteSize8,
		Parity:      ParityNone,
		StopBits:    StopBitsOne,
		FlowControl: FlowControlNone,
	}
}

// Session is the minimal transport surface a Record needs once open.
// Defined here (rather than imported from the transport package) to
// keep device free of a dependency on the transport package; the
// transport package's Session type satisfies it.
type Session interface {
	ReadLine() (string, error)
	Write(p []byte) (int, error)
	Flush() error
	Close() error
}

// Record is a device's entry once admission has opened a transport
// session for it. Port and Settings never change after construction;
// ID is set exactly once, during admission, before the record is
// inserted into the registry — by the time a Record is visible through
// the registry, ID is always non-empty and Session is always open.
type Record struct {
	Port     string
	Settings Settings
	ID       string
	Session  Session
}
