// File: nic/planner_test.go
// Author: momentics <momentics@gmail.com>

package nic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/momentics/hioload-nic/api"
	"github.com/momentics/hioload-nic/nic"
)

func socketByParity(c api.CoreID) api.SocketID {
	return api.SocketID(c % 2)
}

func TestGroupBySocketPreservesOrder(t *testing.T) {
	cores := []api.CoreID{0, 1, 2, 3, 4, 5}
	groups := nic.GroupBySocket(cores, socketByParity)
	assert.Equal(t, []api.CoreID{0, 2, 4}, groups[0])
	assert.Equal(t, []api.CoreID{1, 3, 5}, groups[1])
}

func TestCandidateCoresFullIsUnion(t *testing.T) {
	cores := []api.CoreID{0, 1, 2, 3}
	groups := nic.GroupBySocket(cores, socketByParity)
	got := nic.CandidateCores(api.PolicyFull, cores, groups, 1)
	assert.Equal(t, cores, got)
}

func TestCandidateCoresNumaLocal(t *testing.T) {
	cores := []api.CoreID{0, 1, 2, 3}
	groups := nic.GroupBySocket(cores, socketByParity)
	assert.Equal(t, []api.CoreID{1, 3}, nic.CandidateCores(api.PolicyNumaLocal, cores, groups, 1))
	assert.Equal(t, []api.CoreID{0, 2}, nic.CandidateCores(api.PolicyNumaLocal, cores, groups, 0))
}

func TestCandidateCoresNumaLocalEmptyGroup(t *testing.T) {
	cores := []api.CoreID{0, 2}
	groups := nic.GroupBySocket(cores, func(api.CoreID) api.SocketID { return 0 })
	got := nic.CandidateCores(api.PolicyNumaLocal, cores, groups, 3)
	assert.Empty(t, got, "a socket without cores legitimately yields no candidates")
}
