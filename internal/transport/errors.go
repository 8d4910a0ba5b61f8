package transport

import "errors"

// The three failure categories the transport adapter exposes to the
// rest of the gateway (spec § 4.1, § 7). Errors returned from Session
// methods are always wrapped with contextual information via
// fmt.Errorf("...: %w", ...), so callers match them with errors.Is
// against these sentinels.
var (
	// ErrIO marks a low-level I/O failure talking to the OS (read,
	// write, open, or close failed at the syscall level).
	ErrIO = errors.New("transport: io error")

	// ErrProtocol marks a failure in the line protocol itself. The
	// session returned by Open never reports it: ReadLine keeps any
	// unterminated bytes buffered for the next call instead.
	ErrProtocol = errors.New("transport: protocol error")

	// ErrNotOpen is returned by any operation on a session that has
	// already been closed.
	ErrNotOpen = errors.New("transport: port not open")
)
