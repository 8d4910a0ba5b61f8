package gateway

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mvberg/serialgw/internal/config"
	"github.com/mvberg/serialgw/internal/device"
	"github.com/mvberg/serialgw/internal/filterlist"
	"github.com/mvberg/serialgw/internal/gwlog"
	"github.com/mvberg/serialgw/internal/transport"
)

// fakeSession is an in-memory device.Session double. ReadLine returns
// handshakeLine on its first call; thereafter it returns a bare
// timeout ("", nil), or a transport error once failReads is set and
// at least one line has already been delivered.
type fakeSession struct {
	mu            sync.Mutex
	handshakeLine string
	readCount     int
	failReads     bool
	closed        bool
	writes        [][]byte
}

func (f *fakeSession) ReadLine() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return "", fmt.Errorf("readline: %w", transport.ErrNotOpen)
	}
	if f.failReads && f.readCount > 0 {
		return "", fmt.Errorf("readline: %w: simulated failure", transport.ErrIO)
	}
	f.readCount++
	if f.readCount == 1 {
		return f.handshakeLine, nil
	}
	time.Sleep(time.Millisecond)
	return "", nil
}

func (f *fakeSession) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return 0, fmt.Errorf("write: %w", transport.ErrNotOpen)
	}
	f.writes = append(f.writes, append([]byte(nil), p...))
	return len(p), nil
}

func (f *fakeSession) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return fmt.Errorf("flush: %w", transport.ErrNotOpen)
	}
	return nil
}

func (f *fakeSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

var _ device.Session = (*fakeSession)(nil)

// fakeTransport lets tests script what ListPorts reports and what
// session (or error) Open returns for a given port path.
type fakeTransport struct {
	mu       sync.Mutex
	ports    []transport.PortInfo
	sessions map[string]*fakeSession
	openErrs map[string]error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{sessions: map[string]*fakeSession{}, openErrs: map[string]error{}}
}

func (f *fakeTransport) ListPorts() ([]transport.PortInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]transport.PortInfo(nil), f.ports...), nil
}

func (f *fakeTransport) Open(path string, settings device.Settings) (transport.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.openErrs[path]; ok {
		return nil, err
	}
	sess, ok := f.sessions[path]
	if !ok {
		return nil, errors.New("fakeTransport: no session scripted for " + path)
	}
	return sess, nil
}

func (f *fakeTransport) addPort(port, descriptor string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ports = append(f.ports, transport.PortInfo{Port: port, Descriptor: descriptor})
}

func (f *fakeTransport) scriptSession(port string, sess *fakeSession) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[port] = sess
}

var _ transport.Transport = (*fakeTransport)(nil)

func testConfig() config.Snapshot {
	return config.Snapshot{
		LoggingActive:             false,
		ScanIntervalMs:            0,
		WaitBeforeCommunicationMs: 0,
		BaudRate:                  9600,
		MessageDelimiter:          ",",
		CommandToGetDeviceID:      "?id",
		MessageTypeForIDs:         "ID",
	}
}

func newTestGateway(tp transport.Transport, allow, deny filterlist.Set) *Gateway {
	return New(testConfig(), allow, deny, tp, gwlog.Discard(), Hooks{})
}

// realPortPath is a path AddSerialDevice's step-1 existence check
// will always find, since /dev/null always exists on the test runner.
const realPortPath = "/dev/null"
