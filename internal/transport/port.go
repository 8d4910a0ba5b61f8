package transport

import (
	"bytes"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/mvberg/serialgw/internal/device"
)

// Session is an open serial line. It satisfies device.Session.
type Session interface {
	ReadLine() (string, error)
	Write(p []byte) (int, error)
	Flush() error
	Close() error
}

// session.mu guards only closed/fd/leftover bookkeeping, never the
// blocking read/write syscalls themselves — Close must be able to run
// concurrently with an in-flight ReadLine so it can unblock it by
// closing the fd out from under the pending kernel read.
type session struct {
	mu       sync.Mutex
	fd       int
	path     string
	closed   bool
	leftover bytes.Buffer
}

var _ Session = (*session)(nil)

// Open opens the serial device at path and configures the line per
// settings. The returned session owns fd until Close.
func Open(path string, settings device.Settings) (Session, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %v", path, ErrIO, err)
	}

	if err := configureTermios(fd, settings); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("configure %s: %w: %v", path, ErrIO, err)
	}

	return &session{fd: fd, path: path}, nil
}

func configureTermios(fd int, settings device.Settings) error {
	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("get termios: %v", err)
	}

	termios.Iflag = 0
	termios.Oflag = 0
	termios.Lflag = 0
	termios.Cflag = unix.CREAD | unix.CLOCAL

	switch settings.ByteSize {
	case device.ByteSize5:
		termios.Cflag |= unix.CS5
	case device.ByteSize6:
		termios.Cflag |= unix.CS6
	case device.ByteSize7:
		termios.Cflag |= unix.CS7
	default:
		termios.Cflag |= unix.CS8
	}

	switch settings.StopBits {
	case device.StopBitsTwo, device.StopBitsOnePointFive:
		termios.Cflag |= unix.CSTOPB
	}

	switch settings.Parity {
	case device.ParityOdd:
		termios.Cflag |= unix.PARENB | unix.PARODD
	case device.ParityEven:
		termios.Cflag |= unix.PARENB
	}

	if settings.FlowControl == device.FlowControlHardware {
		termios.Cflag |= unix.CRTSCTS
	}
	if settings.FlowControl == device.FlowControlSoftware {
		termios.Iflag |= unix.IXON | unix.IXOFF
	}

	baud, err := baudRateConstant(settings.Baud)
	if err != nil {
		return err
	}
	termios.Cflag = (termios.Cflag &^ unix.CBAUD) | baud
	termios.Ispeed = baud
	termios.Ospeed = baud

	// VMIN=0, VTIME in deciseconds: a read blocks until at least one
	// byte arrives or the timeout elapses, whichever first, and
	// returns immediately with whatever is available — this is the
	// building block ReadLine uses to implement the line-level
	// "block up to timeout, empty string on timeout" contract.
	// settings.Timeout is truncated to whole tenths of a second and
	// clamped to 0.1-25.5 s, so the 250 ms device.HandshakeTimeout
	// becomes a 200 ms VTIME.
	tenths := settings.Timeout.Milliseconds() / 100
	if tenths < 1 {
		tenths = 1
	}
	if tenths > 255 {
		tenths = 255
	}
	termios.Cc[unix.VMIN] = 0
	termios.Cc[unix.VTIME] = uint8(tenths)

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		return fmt.Errorf("set termios: %v", err)
	}

	// Drop O_NONBLOCK now that the line is configured with its own
	// VMIN/VTIME read timeout; blocking reads are what VTIME governs.
	flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFL, 0)
	if err != nil {
		return fmt.Errorf("get flags: %v", err)
	}
	if _, err := unix.FcntlInt(uintptr(fd), unix.F_SETFL, flags&^unix.O_NONBLOCK); err != nil {
		return fmt.Errorf("clear nonblock: %v", err)
	}

	return nil
}

func baudRateConstant(rate int) (uint32, error) {
	switch rate {
	case 1200:
		return unix.B1200, nil
	case 2400:
		return unix.B2400, nil
	case 4800:
		return unix.B4800, nil
	case 9600:
		return unix.B9600, nil
	case 19200:
		return unix.B19200, nil
	case 38400:
		return unix.B38400, nil
	case 57600:
		return unix.B57600, nil
	case 115200:
		return unix.B115200, nil
	case 230400:
		return unix.B230400, nil
	case 460800:
		return unix.B460800, nil
	case 921600:
		return unix.B921600, nil
	default:
		return 0, fmt.Errorf("unsupported baud rate %d", rate)
	}
}

// ReadLine blocks up to the session's configured timeout for a
// complete "\n"-terminated line. It returns the empty string, nil on
// a bare timeout (no error) — any bytes read without reaching a
// terminator are retained for the next call.
func (s *session) ReadLine() (string, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", fmt.Errorf("readline %s: %w", s.path, ErrNotOpen)
	}
	if line, ok := s.takeLineLocked(); ok {
		s.mu.Unlock()
		return line, nil
	}
	fd := s.fd
	s.mu.Unlock()

	buf := make([]byte, 256)
	n, err := unix.Read(fd, buf)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		if s.closed {
			return "", fmt.Errorf("readline %s: %w", s.path, ErrNotOpen)
		}
		return "", fmt.Errorf("readline %s: %w: %v", s.path, ErrIO, err)
	}

	if n > 0 {
		s.leftover.Write(buf[:n])
	}

	if line, ok := s.takeLineLocked(); ok {
		return line, nil
	}

	// Either n == 0 (VTIME elapsed with nothing pending) or the bytes
	// that did arrive don't yet form a complete line; either way this
	// call times out without a line, per the read_line contract.
	return "", nil
}

func (s *session) takeLineLocked() (string, bool) {
	data := s.leftover.Bytes()
	idx := bytes.IndexByte(data, '\n')
	if idx < 0 {
		return "", false
	}

	line := string(data[:idx+1])
	s.leftover.Next(idx + 1)
	return line, true
}

func (s *session) Write(p []byte) (int, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, fmt.Errorf("write %s: %w", s.path, ErrNotOpen)
	}
	fd := s.fd
	s.mu.Unlock()

	written := 0
	for written < len(p) {
		n, err := unix.Write(fd, p[written:])
		if err != nil {
			return written, fmt.Errorf("write %s: %w: %v", s.path, ErrIO, err)
		}
		if n <= 0 {
			return written, fmt.Errorf("write %s: %w: short write", s.path, ErrIO)
		}
		written += n
	}
	return written, nil
}

func (s *session) Flush() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("flush %s: %w", s.path, ErrNotOpen)
	}
	fd := s.fd
	s.mu.Unlock()

	if err := unix.IoctlSetInt(fd, unix.TCFLSH, unix.TCIOFLUSH); err != nil {
		return fmt.Errorf("flush %s: %w: %v", s.path, ErrIO, err)
	}
	return nil
}

// Close closes the underlying file descriptor without waiting on any
// in-flight ReadLine: it only needs the quick bookkeeping lock, then
// closes fd on its own. A concurrent ReadLine's blocked kernel read on
// the same fd is unblocked by the close; if that read returns an error,
// ReadLine reports ErrNotOpen once it re-acquires the lock and observes
// closed == true, per spec § 5's
// requirement that close must not wait out an outstanding read.
func (s *session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("close %s: %w", s.path, ErrNotOpen)
	}
	s.closed = true
	fd := s.fd
	s.mu.Unlock()

	if err := unix.Close(fd); err != nil {
		return fmt.Errorf("close %s: %w: %v", s.path, ErrIO, err)
	}
	return nil
}
