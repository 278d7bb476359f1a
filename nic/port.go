// File: nic/port.go
// Author: momentics <momentics@gmail.com>
//
// Port wraps one configured hardware port: ownership, lifecycle and
// statistics. When the driver cannot reset counters in place, deltas are
// emulated against a software baseline.

package nic

import (
	"errors"
	"sync"

	"github.com/momentics/hioload-nic/api"
	"github.com/momentics/hioload-nic/logging"
)

// Port represents one configured network interface. Shared by every
// queue bound to it; stopped and closed by Runtime.Close.
type Port struct {
	capa   api.Capability
	id     uint16
	socket api.SocketID
	mac    [6]byte

	// hwReset records whether the driver supports in-place counter reset.
	// When false, stats are deltas against baseline.
	hwReset  bool
	statMu   sync.Mutex
	baseline api.PortStats

	closed bool
}

func newPort(capa api.Capability, id uint16, socket api.SocketID) *Port {
	p := &Port{capa: capa, id: id, socket: socket}
	mac, err := capa.PortMAC(id)
	if err != nil {
		logging.Warnf("nic: port %d: MAC address unavailable: %v", id, err)
	} else {
		p.mac = mac
	}
	return p
}

// ID returns the numeric port identifier assigned by the capability layer.
func (p *Port) ID() uint16 { return p.id }

// Socket returns the NUMA node the port's device sits on.
func (p *Port) Socket() api.SocketID { return p.socket }

// MACAddr returns the port's hardware address.
func (p *Port) MACAddr() [6]byte { return p.mac }

// initStats performs the initial counter reset after port start. An
// unsupported reset switches the port to software-emulated deltas; it is
// expected driver variance, never a setup failure.
func (p *Port) initStats() {
	if err := p.capa.StatsReset(p.id); err != nil {
		if !errors.Is(err, api.ErrNotSupported) {
			logging.Warnf("nic: port %d: stats reset failed: %v", p.id, err)
		} else {
			logging.Warnf("nic: port %d: hardware stats reset unsupported, emulating in software", p.id)
		}
		p.hwReset = false
		p.snapshotBaseline()
		return
	}
	p.hwReset = true
}

func (p *Port) snapshotBaseline() {
	raw, err := p.capa.StatsGet(p.id)
	if err != nil {
		logging.Warnf("nic: port %d: stats snapshot failed: %v", p.id, err)
		raw = api.PortStats{}
	}
	p.statMu.Lock()
	p.baseline = raw
	p.statMu.Unlock()
}

// GetStats returns counters since the last reset, real or emulated.
func (p *Port) GetStats() (api.PortStats, error) {
	raw, err := p.capa.StatsGet(p.id)
	if err != nil {
		return api.PortStats{}, err
	}
	if p.hwReset {
		return raw, nil
	}
	p.statMu.Lock()
	defer p.statMu.Unlock()
	return raw.Sub(p.baseline), nil
}

// ResetStats zeroes the counters: in hardware when supported, otherwise
// by moving the software baseline forward.
func (p *Port) ResetStats() error {
	if p.hwReset {
		return p.capa.StatsReset(p.id)
	}
	p.snapshotBaseline()
	return nil
}

// close stops the hardware, closes the device and releases ownership.
func (p *Port) close() {
	if p.closed {
		return
	}
	p.closed = true
	if err := p.capa.StopPort(p.id); err != nil {
		logging.Warnf("nic: port %d: stop failed: %v", p.id, err)
	}
	if err := p.capa.ClosePort(p.id); err != nil {
		logging.Warnf("nic: port %d: close failed: %v", p.id, err)
	}
	if err := p.capa.ReleaseOwnership(p.id); err != nil {
		logging.Warnf("nic: port %d: ownership release failed: %v", p.id, err)
	}
}
