// File: nic/runtime.go
// Author: momentics <momentics@gmail.com>
//
// Runtime is the process-wide handle over the capability layer: one-time
// initialization, the deferred pool-release queue, and ordered teardown
// of every port, queue and pool created by Setup.

package nic

import (
	"errors"
	"fmt"
	"sync"

	"github.com/eapache/queue"
	"github.com/momentics/hioload-nic/api"
	"github.com/momentics/hioload-nic/logging"
)

// Runtime owns the capability layer's lifecycle. Create one per process
// with Open; queue/port setup may succeed at most once per Runtime.
type Runtime struct {
	capa api.Capability

	setupMu   sync.Mutex
	setupDone bool

	// Sizing knobs, fixed defaults unless overridden via Options.
	poolConf api.PoolConfig
	rxDesc   uint16
	txDesc   uint16
	promisc  bool

	gcMu sync.Mutex
	gc   *queue.Queue // of *gcEntry

	// Resources created by Setup, released in order by Close.
	ports []*Port
	rxqs  []*RxQueue
	txqs  []*TxQueue

	closed bool
}

type gcEntry struct {
	name  string
	retry func() bool
}

// Option adjusts Runtime sizing defaults.
type Option func(*Runtime)

// WithPoolConfig overrides the per-RX-queue pool sizing.
func WithPoolConfig(conf api.PoolConfig) Option {
	return func(r *Runtime) { r.poolConf = conf }
}

// WithDescriptors overrides the RX/TX descriptor ring sizes.
func WithDescriptors(rx, tx uint16) Option {
	return func(r *Runtime) { r.rxDesc, r.txDesc = rx, tx }
}

// WithPromiscuous overrides the promiscuous-mode default.
func WithPromiscuous(on bool) Option {
	return func(r *Runtime) { r.promisc = on }
}

// Open performs one-time capability-layer initialization, consuming a
// prefix of args and returning the unconsumed remainder. Driver modules
// are linked into the capability implementation itself, so nothing here
// touches them beyond Init.
func Open(capa api.Capability, args []string, opts ...Option) (*Runtime, []string, error) {
	consumed, err := capa.Init(args)
	if err != nil {
		var ae *api.Error
		if errors.As(err, &ae) {
			return nil, args, ae
		}
		return nil, args, api.NewError(api.ErrCodeInitFailed, "capability init failed").
			WithContext("cause", err.Error())
	}
	if consumed > len(args) {
		consumed = len(args)
	}
	r := &Runtime{
		capa:     capa,
		poolConf: api.DefaultPoolConfig(),
		rxDesc:   api.DefaultRxDescriptors,
		txDesc:   api.DefaultTxDescriptors,
		promisc:  true,
		gc:       queue.New(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, args[consumed:], nil
}

// Cores lists the enabled logical cores.
func (r *Runtime) Cores() []api.CoreID { return r.capa.Cores() }

// SocketOf reports the NUMA node a core belongs to.
func (r *Runtime) SocketOf(core api.CoreID) api.SocketID {
	return r.capa.CoreSocket(core)
}

// Sockets groups the enabled cores by NUMA node, in enumeration order.
func (r *Runtime) Sockets() map[api.SocketID][]api.CoreID {
	return GroupBySocket(r.capa.Cores(), r.capa.CoreSocket)
}

// Capability exposes the underlying boundary, for diagnostics only.
func (r *Runtime) Capability() api.Capability { return r.capa }

// Ports lists the ports configured by Setup, for stats export.
func (r *Runtime) Ports() []*Port { return r.ports }

// DeferRelease registers release work that could not complete because
// buffers are still outstanding. Pending work is retried opportunistically
// on every registration and force-completed at Close.
func (r *Runtime) DeferRelease(name string, retry func() bool) {
	r.gcMu.Lock()
	r.gc.Add(&gcEntry{name: name, retry: retry})
	r.gcMu.Unlock()
	logging.Debugf("nic: deferred release of pool %q", name)
	r.sweep(false)
}

// sweep retries every pending release once. With force set, an entry that
// still cannot be released panics: by teardown time no packet can
// legitimately be alive.
func (r *Runtime) sweep(force bool) {
	r.gcMu.Lock()
	defer r.gcMu.Unlock()
	for n := r.gc.Length(); n > 0; n-- {
		e := r.gc.Remove().(*gcEntry)
		if e.retry() {
			logging.Debugf("nic: deferred release of pool %q completed", e.name)
			continue
		}
		if force {
			panic(fmt.Sprintf("nic: pool %q still has outstanding buffers at teardown", e.name))
		}
		r.gc.Add(e)
	}
}

// Close stops every queue, releases every pool and port created by Setup,
// force-completes deferred releases, then tears the capability layer
// down. Idempotent.
func (r *Runtime) Close() error {
	r.setupMu.Lock()
	defer r.setupMu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true

	for _, q := range r.rxqs {
		q.close()
	}
	for _, q := range r.txqs {
		q.close()
	}
	for _, p := range r.ports {
		p.close()
	}
	r.sweep(true)

	if err := r.capa.Cleanup(); err != nil {
		if errors.Is(err, api.ErrNotSupported) {
			// Some driver configurations never support cleanup.
			logging.Warnf("nic: capability cleanup not supported, skipping")
			return nil
		}
		return err
	}
	return nil
}
