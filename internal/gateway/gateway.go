// Package gateway is the device-lifecycle and I/O supervisor: the
// periodic port-scan loop, the admission handshake, the per-device
// reader, the registry binding IDs to open ports, and the send/
// broadcast pathway.
package gateway

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mvberg/serialgw/internal/config"
	"github.com/mvberg/serialgw/internal/filterlist"
	"github.com/mvberg/serialgw/internal/gwlog"
	"github.com/mvberg/serialgw/internal/registry"
	"github.com/mvberg/serialgw/internal/transport"
)

// Hooks are the gateway's three callback points (spec § 2, § 4.10).
// Any nil hook is simply not invoked. Each is called from its own
// goroutine so a slow consumer never back-pressures the reader, the
// admission pipeline, or the deletion path (spec § 4.6, § 5).
type Hooks struct {
	DeviceAdded     func(id, port string)
	DeviceRemoved   func(id, port string)
	MessageReceived func(id string, timestampMs int64, msgType, content string)
}

// Gateway ties the registry, filter sets, config snapshot, transport,
// logger, and callback hooks together and drives the scan loop and
// per-device readers.
type Gateway struct {
	cfg       config.Snapshot
	allowlist filterlist.Set
	denylist  filterlist.Set
	transport transport.Transport
	log       *gwlog.Logger
	hooks     Hooks

	reg *registry.Registry

	started atomic.Bool

	cancelScan context.CancelFunc
	scanDone   chan struct{}

	wg sync.WaitGroup
}

// New constructs a Gateway. tp and log must be non-nil; allow and deny
// may be empty sets (the zero Set). A zero BaudRate or an empty
// MessageDelimiter in cfg is a programming error the caller should
// have already rejected during config.Load. New panics on any of these
// (spec § 7: invariant-violation is raised at construction).
func New(cfg config.Snapshot, allow, deny filterlist.Set, tp transport.Transport, log *gwlog.Logger, hooks Hooks) *Gateway {
	if tp == nil {
		panic("gateway: nil transport")
	}
	if log == nil {
		panic("gateway: nil logger")
	}
	if cfg.BaudRate == 0 {
		panic("gateway: baud rate must be positive")
	}
	if cfg.MessageDelimiter == "" {
		panic("gateway: message delimiter must be non-empty")
	}

	return &Gateway{
		cfg:       cfg,
		allowlist: allow,
		denylist:  deny,
		transport: tp,
		log:       log,
		hooks:     hooks,
		reg:       registry.New(),
	}
}

// Start is idempotent: if the gateway is already started, it warns and
// returns without effect; otherwise it marks the gateway started and
// launches the scan loop (spec § 4.10).
func (g *Gateway) Start() {
	if !g.started.CompareAndSwap(false, true) {
		g.log.Warn("gateway already started")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	g.cancelScan = cancel
	g.scanDone = make(chan struct{})

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer close(g.scanDone)
		g.scanLoop(ctx)
	}()
}

// Stop is idempotent: it sets started = false, cancels the scan loop,
// and deletes every registered device (spec § 4.10). The caller is
// expected to poll AllReadersExited before tearing the process down;
// Stop itself does not block on reader shutdown.
func (g *Gateway) Stop() {
	if !g.started.CompareAndSwap(true, false) {
		return
	}
	if g.cancelScan != nil {
		g.cancelScan()
	}
	g.DeleteAll()
}

// AllReadersExited reports whether every reader this gateway has ever
// started has observed exited = true.
func (g *Gateway) AllReadersExited() bool {
	return g.reg.AllExited()
}

// Wait blocks until the scan loop, every reader, and every in-flight
// send goroutine this gateway has launched has returned. Callers
// typically poll AllReadersExited first (it converges faster, since
// it doesn't wait on the scan loop's current sleep) and call Wait only
// once that holds, to additionally drain transient send goroutines
// before the process exits.
func (g *Gateway) Wait() {
	g.wg.Wait()
}

// IsStarted reports whether the gateway is currently started.
func (g *Gateway) IsStarted() bool {
	return g.started.Load()
}

// ListDeviceIDs returns a snapshot of every currently-registered
// device ID.
func (g *Gateway) ListDeviceIDs() []string {
	return g.reg.IDs()
}

// ListSystemPorts enumerates the ports the transport currently
// reports, for the interactive surface's "list system ports" verb.
func (g *Gateway) ListSystemPorts() ([]transport.PortInfo, error) {
	return g.transport.ListPorts()
}

// ListMappings returns a snapshot of id -> port for every registered
// device.
func (g *Gateway) ListMappings() map[string]string {
	return g.reg.Mappings()
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
