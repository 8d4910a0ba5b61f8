package gateway

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mvberg/serialgw/internal/filterlist"
	"github.com/mvberg/serialgw/internal/gwlog"
)

func writeListFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "list.txt")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write list file: %v", err)
	}
	return path
}

// Scenario 1: handshake success.
func TestAddSerialDeviceHandshakeSuccess(t *testing.T) {
	tp := newFakeTransport()
	tp.scriptSession(realPortPath, &fakeSession{handshakeLine: "ID,abc123\n"})

	gw := newTestGateway(tp, filterlist.Set{}, filterlist.Set{})

	if !gw.AddSerialDevice(realPortPath, true) {
		t.Fatal("expected admission to succeed")
	}
	rec := gw.reg.Get("abc123")
	if rec == nil || rec.Port != realPortPath {
		t.Fatalf("registry state after admission: %+v", rec)
	}
	gw.DeleteDevice("abc123")
}

// Scenario 2: handshake wrong type.
func TestAddSerialDeviceHandshakeWrongType(t *testing.T) {
	tp := newFakeTransport()
	tp.scriptSession(realPortPath, &fakeSession{handshakeLine: "DATA,abc123\n"})

	gw := newTestGateway(tp, filterlist.Set{}, filterlist.Set{})

	if gw.AddSerialDevice(realPortPath, true) {
		t.Fatal("expected admission to fail for wrong message type")
	}
	if len(gw.reg.IDs()) != 0 {
		t.Error("registry should be unchanged after a failed handshake")
	}
}

// Scenario 3: ID collision.
func TestAddSerialDeviceCollision(t *testing.T) {
	// /dev/null and /dev/zero both exist on any Linux test runner, so
	// step 1's existence check passes for both while they remain two
	// genuinely distinct ports — letting this test exercise the ID
	// collision check (step 9) rather than the duplicate-port check
	// (step 3).
	const portA, portB = "/dev/null", "/dev/zero"

	tp := newFakeTransport()
	tp.scriptSession(portA, &fakeSession{handshakeLine: "ID,same\n"})
	tp.scriptSession(portB, &fakeSession{handshakeLine: "ID,same\n"})

	gw := newTestGateway(tp, filterlist.Set{}, filterlist.Set{})

	if !gw.AddSerialDevice(portA, true) {
		t.Fatal("first admission should succeed")
	}
	if gw.AddSerialDevice(portB, true) {
		t.Fatal("second admission under the same id should fail")
	}

	rec := gw.reg.Get("same")
	if rec == nil || rec.Port != portA {
		t.Fatalf("expected the registry to keep the first admitted port, got %+v", rec)
	}
}

// Scenario 4: denylist hit.
func TestAddSerialDeviceDenylisted(t *testing.T) {
	tp := newFakeTransport()
	deny, err := filterlist.Load(writeListFile(t, "/dev/ttyUSB9\n"))
	if err != nil {
		t.Fatalf("load denylist: %v", err)
	}

	gw := newTestGateway(tp, filterlist.Set{}, deny)
	if gw.AddSerialDevice("/dev/ttyUSB9", true) {
		t.Fatal("expected denylisted port to be rejected")
	}
}

func TestAddSerialDeviceDuplicatePort(t *testing.T) {
	tp := newFakeTransport()
	tp.scriptSession(realPortPath, &fakeSession{handshakeLine: "ID,abc123\n"})

	gw := newTestGateway(tp, filterlist.Set{}, filterlist.Set{})
	if !gw.AddSerialDevice(realPortPath, true) {
		t.Fatal("first admission should succeed")
	}

	// A second attempt on the same port must be rejected by the
	// duplicate-port check (step 3) before it ever opens a session.
	if gw.AddSerialDevice(realPortPath, true) {
		t.Fatal("expected duplicate-port admission to fail")
	}
}

// Scenario 5: allowlist miss.
func TestAddSerialDeviceAllowlistMiss(t *testing.T) {
	tp := newFakeTransport()
	tp.addPort(realPortPath, "USB VID:PID=0403:6001 ")

	allow, err := filterlist.Load(writeListFile(t, "1a86:7523\n"))
	if err != nil {
		t.Fatalf("load allowlist: %v", err)
	}

	gw := newTestGateway(tp, allow, filterlist.Set{})
	if gw.AddSerialDevice(realPortPath, true) {
		t.Fatal("expected allowlist miss to reject the port")
	}
}

func TestAddSerialDeviceAllowlistHit(t *testing.T) {
	tp := newFakeTransport()
	tp.addPort(realPortPath, "USB VID:PID=1a86:7523 ")
	tp.scriptSession(realPortPath, &fakeSession{handshakeLine: "ID,abc123\n"})

	allow, err := filterlist.Load(writeListFile(t, "1a86:7523\n"))
	if err != nil {
		t.Fatalf("load allowlist: %v", err)
	}

	gw := newTestGateway(tp, allow, filterlist.Set{})
	if !gw.AddSerialDevice(realPortPath, true) {
		t.Fatal("expected allowlisted hardware id to be admitted")
	}
}

// Scenario 6: reader I/O failure.
func TestReaderIOFailureRemovesDevice(t *testing.T) {
	tp := newFakeTransport()
	sess := &fakeSession{handshakeLine: "ID,abc123\n", failReads: true}
	tp.scriptSession(realPortPath, sess)

	var mu sync.Mutex
	removed := 0
	gw := New(testConfig(), filterlist.Set{}, filterlist.Set{}, tp, gwlog.Discard(), Hooks{
		DeviceRemoved: func(id, port string) {
			mu.Lock()
			removed++
			mu.Unlock()
		},
	})

	if !gw.AddSerialDevice(realPortPath, true) {
		t.Fatal("expected admission to succeed before the simulated failure")
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if gw.reg.Get("abc123") == nil {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if gw.reg.Get("abc123") != nil {
		t.Fatal("expected device to be removed after a reader I/O failure")
	}

	deadline = time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := removed
		mu.Unlock()
		if n == 1 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("expected DeviceRemoved hook to fire exactly once")
}
