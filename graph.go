package loom

import (
	"github.com/quarrystack/loom/internal/bitset"
	"github.com/quarrystack/loom/internal/jobs"
)

// systemAccess is the derived read/write footprint of one system, computed
// once per Runner from the views it declared at registration (spec.md
// §4.6). An exclusive system's reads are folded into its writes: it must
// serialize against everything it merely reads too, not just what it
// writes.
type systemAccess struct {
	read  bitset.Mask
	write bitset.Mask
}

func deriveSystemAccess(def *Definition, sys *systemMeta) systemAccess {
	var acc systemAccess
	for _, vid := range sys.Views {
		v := def.view(vid)
		if v == nil {
			continue
		}
		acc.read = acc.read.Union(v.readMask)
		acc.write = acc.write.Union(v.writeMask)
	}
	if sys.Exclusive {
		acc.write = acc.write.Union(acc.read)
	}
	return acc
}

func accessConflicts(a, b systemAccess) bool {
	if !a.write.ContainsNone(b.write) {
		return true
	}
	if !a.write.ContainsNone(b.read) {
		return true
	}
	if !a.read.ContainsNone(b.write) {
		return true
	}
	return false
}

// buildGraph derives a jobs.Graph from def's logical system order: systems
// run concurrently by default, except where two systems (in logical order)
// touch overlapping components in a way that could race, in which case the
// later system gets a dependency edge on the earlier one (spec.md
// §4.6/§4.7). A redundant edge implied by an intermediate dependency is
// dropped, a light transitive reduction rather than a full one.
func buildGraph(def *Definition, world *World, buffers []*CommandBuffer) *jobs.Graph {
	order := def.systemOrder
	n := len(order)

	access := make([]systemAccess, n)
	for p, sid := range order {
		access[p] = deriveSystemAccess(def, &def.systems[sid-1])
	}

	conflicts := make([][]bool, n)
	for p := range conflicts {
		conflicts[p] = make([]bool, n)
	}
	for q := 1; q < n; q++ {
		for p := 0; p < q; p++ {
			conflicts[p][q] = accessConflicts(access[p], access[q])
		}
	}

	nodes := make([]jobs.Node, n)
	for q := 0; q < n; q++ {
		var deps []int
		for p := 0; p < q; p++ {
			if !conflicts[p][q] {
				continue
			}
			redundant := false
			for r := p + 1; r < q; r++ {
				if conflicts[p][r] && conflicts[r][q] {
					redundant = true
					break
				}
			}
			if !redundant {
				deps = append(deps, p)
			}
		}

		sid := order[q]
		sys := &def.systems[sid-1]
		nodes[q] = jobs.Node{
			Run:       makeSystemTask(world, buffers, sid, sys.Run),
			Deps:      deps,
			Exclusive: sys.Exclusive,
		}
	}

	return &jobs.Graph{Nodes: nodes}
}

func makeSystemTask(world *World, buffers []*CommandBuffer, sid SystemID, fn SystemFunc) jobs.Task {
	return func(workerID int) {
		handle := &WorldHandle{
			world:    world,
			commands: buffers[workerID],
			system:   sid,
			worker:   workerID,
		}
		fn(handle)
	}
}
