// File: nic/setup.go
// Author: momentics <momentics@gmail.com>
//
// Setup orchestration: plans core/queue affinity for every valid port,
// configures the hardware, creates one dedicated pool per RX queue and
// returns the per-core queue mapping. One-shot per Runtime.

package nic

import (
	"fmt"
	"os"

	"github.com/momentics/hioload-nic/api"
	"github.com/momentics/hioload-nic/logging"
	"github.com/momentics/hioload-nic/pool"
)

// CoreQueues holds the receive and transmit queues assigned to one core.
type CoreQueues struct {
	Rx []*RxQueue
	Tx []*TxQueue
}

// Setup assigns every port's RX and TX queues to cores under the given
// policies and brings the ports up. Every enabled core appears in the
// returned map, possibly with empty queue sets.
//
// Setup is not reentrant and not concurrent; a second call on the same
// Runtime fails with ErrCodeAlreadyInitialized and performs no hardware
// configuration. On a native failure mid-way, the error is returned and
// resources created so far are released by Runtime.Close.
func (r *Runtime) Setup(rxPolicy, txPolicy api.AffinityPolicy) (map[api.CoreID]*CoreQueues, error) {
	r.setupMu.Lock()
	defer r.setupMu.Unlock()
	if r.setupDone {
		return nil, api.NewError(api.ErrCodeAlreadyInitialized, "setup already performed")
	}

	cores := r.capa.Cores()
	groups := GroupBySocket(cores, r.capa.CoreSocket)

	out := make(map[api.CoreID]*CoreQueues, len(cores))
	for _, c := range cores {
		out[c] = &CoreQueues{}
	}

	owner := fmt.Sprintf("hioload-nic-%d", os.Getpid())
	for _, portID := range r.capa.Ports() {
		if err := r.setupPort(portID, owner, rxPolicy, txPolicy, cores, groups, out); err != nil {
			return nil, err
		}
	}

	r.setupDone = true
	return out, nil
}

func (r *Runtime) setupPort(portID uint16, owner string, rxPolicy, txPolicy api.AffinityPolicy,
	cores []api.CoreID, groups map[api.SocketID][]api.CoreID, out map[api.CoreID]*CoreQueues) error {

	if err := r.capa.TakeOwnership(portID, owner); err != nil {
		return err
	}

	psock := r.capa.PortSocket(portID)
	// Register the port before any further native call so that a failure
	// from here on still releases ownership through Runtime.Close.
	port := newPort(r.capa, portID, psock)
	r.ports = append(r.ports, port)

	rxCores := CandidateCores(rxPolicy, cores, groups, psock)
	txCores := CandidateCores(txPolicy, cores, groups, psock)

	info, err := r.capa.PortInfo(portID)
	if err != nil {
		return err
	}
	r.validateLimits(portID, info, len(rxCores), len(txCores))

	conf := api.PortConfig{
		NumRxQueues: uint16(len(rxCores)),
		NumTxQueues: uint16(len(txCores)),
		RSSIPv4:     len(rxCores) > 1,
		// Checksum offloads are best-effort: enable whatever the driver
		// advertises, nothing more.
		RxOffloads: info.RxOffloads & (api.OffloadRxIPv4Cksum | api.OffloadRxTCPCksum | api.OffloadRxUDPCksum),
		TxOffloads: info.TxOffloads & (api.OffloadTxIPv4Cksum | api.OffloadTxTCPCksum | api.OffloadTxUDPCksum),
	}
	if err := r.capa.ConfigurePort(portID, conf); err != nil {
		return err
	}

	for i, core := range rxCores {
		name := fmt.Sprintf("rx-p%d-q%d", portID, i)
		pl, err := pool.NewPool(r.capa, r, name, r.poolConf, psock)
		if err != nil {
			return err
		}
		if err := r.capa.SetupRxQueue(portID, uint16(i), r.rxDesc, psock, pl.Handle()); err != nil {
			pl.Close()
			return err
		}
		q := &RxQueue{capa: r.capa, port: port, index: uint16(i), pool: pl}
		r.rxqs = append(r.rxqs, q)
		out[core].Rx = append(out[core].Rx, q)
	}

	for i, core := range txCores {
		if err := r.capa.SetupTxQueue(portID, uint16(i), r.txDesc, psock); err != nil {
			return err
		}
		q := &TxQueue{capa: r.capa, port: port, index: uint16(i)}
		r.txqs = append(r.txqs, q)
		out[core].Tx = append(out[core].Tx, q)
	}

	if r.promisc {
		if err := r.capa.EnablePromiscuous(portID); err != nil {
			return err
		}
	}
	if err := r.capa.StartPort(portID); err != nil {
		return err
	}
	port.initStats()

	logging.WithFields(map[string]any{
		"port": portID, "socket": psock, "rx": len(rxCores), "tx": len(txCores),
	}).Infof("port configured and started")
	return nil
}

// validateLimits checks queue counts and descriptor ring sizes against
// the driver's advertised limits. A violation is a deployment mismatch
// the caller must fix ahead of time, so it panics instead of returning.
func (r *Runtime) validateLimits(portID uint16, info api.DeviceInfo, numRx, numTx int) {
	if numRx > int(info.MaxRxQueues) {
		panic(fmt.Sprintf("nic: port %d: %d RX queues exceeds hardware limit %d",
			portID, numRx, info.MaxRxQueues))
	}
	if numTx > int(info.MaxTxQueues) {
		panic(fmt.Sprintf("nic: port %d: %d TX queues exceeds hardware limit %d",
			portID, numTx, info.MaxTxQueues))
	}
	checkDesc(portID, "RX", r.rxDesc, info.MinRxDescriptors, info.MaxRxDescriptors, info.RxDescAlign)
	checkDesc(portID, "TX", r.txDesc, info.MinTxDescriptors, info.MaxTxDescriptors, info.TxDescAlign)
}

func checkDesc(portID uint16, dir string, n, min, max, align uint16) {
	if min != 0 && n < min || max != 0 && n > max {
		panic(fmt.Sprintf("nic: port %d: %d %s descriptors outside [%d, %d]",
			portID, n, dir, min, max))
	}
	if align > 1 && n%align != 0 {
		panic(fmt.Sprintf("nic: port %d: %d %s descriptors not aligned to %d",
			portID, n, dir, align))
	}
}
