package dnet

import (
	"sync"

	"github.com/pkg/errors"
)

// IAllgatherer is the collective exchange used by distributed bin
// construction. Every rank contributes the byte range
// input[starts[rank] : starts[rank]+lens[rank]] and receives the full
// concatenation in output. The call blocks until every rank of the group
// has reached it.
type IAllgatherer interface {
	Rank() int
	NumMachines() int
	Allgather(input []byte, starts []int, lens []int, output []byte) error
}

type localGroup struct {
	mu         sync.Mutex
	cond       *sync.Cond
	size       int
	arrived    int
	draining   int
	generation int
	shared     []byte
}

type localMember struct {
	group *localGroup
	rank  int
}

// NewLocalGroup builds an in-process allgather group of the given size,
// one member per rank. Members must be driven by distinct goroutines.
func NewLocalGroup(numMachines int) []IAllgatherer {
	g := &localGroup{size: numMachines}
	g.cond = sync.NewCond(&g.mu)
	members := make([]IAllgatherer, numMachines)
	for i := range members {
		members[i] = &localMember{group: g, rank: i}
	}
	return members
}

func (m *localMember) Rank() int {
	return m.rank
}

func (m *localMember) NumMachines() int {
	return m.group.size
}

func (m *localMember) Allgather(input []byte, starts []int, lens []int, output []byte) (err error) {
	if len(starts) != m.group.size || len(lens) != m.group.size {
		err = errors.Errorf("allgather range count %v/%v does not match group size %v",
			len(starts), len(lens), m.group.size)
		return
	}
	if len(input) != len(output) {
		err = errors.Errorf("allgather input size %v does not match output size %v",
			len(input), len(output))
		return
	}
	g := m.group
	g.mu.Lock()
	// a previous round may still be draining its results
	for g.draining > 0 {
		g.cond.Wait()
	}
	if g.shared == nil || len(g.shared) < len(output) {
		g.shared = make([]byte, len(output))
	}
	lo := starts[m.rank]
	hi := lo + lens[m.rank]
	copy(g.shared[lo:hi], input[lo:hi])
	g.arrived++
	if g.arrived == g.size {
		g.arrived = 0
		g.draining = g.size
		g.generation++
		g.cond.Broadcast()
	} else {
		gen := g.generation
		for gen == g.generation {
			g.cond.Wait()
		}
	}
	copy(output, g.shared[:len(output)])
	g.draining--
	if g.draining == 0 {
		g.cond.Broadcast()
	}
	g.mu.Unlock()
	return
}
