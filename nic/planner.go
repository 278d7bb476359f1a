// File: nic/planner.go
// Author: momentics <momentics@gmail.com>
//
// Pure affinity planning: grouping enabled cores by NUMA socket and
// selecting the candidate cores for one port and direction under a
// policy. No capability calls happen here, which keeps the planner
// trivially testable.

package nic

import "github.com/momentics/hioload-nic/api"

// GroupBySocket partitions cores by NUMA node, preserving enumeration
// order inside each group.
func GroupBySocket(cores []api.CoreID, socketOf func(api.CoreID) api.SocketID) map[api.SocketID][]api.CoreID {
	groups := make(map[api.SocketID][]api.CoreID)
	for _, c := range cores {
		s := socketOf(c)
		groups[s] = append(groups[s], c)
	}
	return groups
}

// CandidateCores returns the cores eligible to host one port's queues in
// one direction. PolicyFull yields every enabled core; PolicyNumaLocal
// yields only the port's own NUMA group. The result preserves core
// enumeration order, which makes queue-index assignment stable: the Nth
// returned core receives queue index N.
//
// An empty result under PolicyNumaLocal is legitimate (the port's node
// may simply have no enabled cores) and means no queues for that
// direction, not an error.
func CandidateCores(policy api.AffinityPolicy, cores []api.CoreID, groups map[api.SocketID][]api.CoreID, portSocket api.SocketID) []api.CoreID {
	switch policy {
	case api.PolicyNumaLocal:
		return groups[portSocket]
	default:
		return cores
	}
}
