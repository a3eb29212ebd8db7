// Package dag implements the dependency graph: task identifiers wired by
// directed edges, leveled topological ordering, and reachability closures.
package dag

import (
	"fmt"
	"sort"

	"github.com/dagflow-sched/dagflow/contracts"
)

type idSet map[contracts.TaskID]struct{}

// Graph holds runnable tasks and the directed dependency edges between them.
// It is built once by the caller (nodes first, then edges) and must not be
// mutated during a run.
type Graph struct {
	nodes map[contracts.TaskID]contracts.Runnable

	// deps maps downstream id -> set of its direct upstream ids.
	deps map[contracts.TaskID]idSet

	// rdeps is the derived reverse mapping, upstream id -> direct downstreams.
	rdeps map[contracts.TaskID]idSet
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[contracts.TaskID]contracts.Runnable),
		deps:  make(map[contracts.TaskID]idSet),
		rdeps: make(map[contracts.TaskID]idSet),
	}
}

// AddNode registers a runnable under its id. Re-adding an existing id is
// permitted and silently replaces the prior runnable (last write wins).
// Returns true when an existing node was replaced.
func (g *Graph) AddNode(task contracts.Runnable) bool {
	_, replaced := g.nodes[task.ID()]
	g.nodes[task.ID()] = task
	return replaced
}

// AddEdge records that downstream depends on upstream. Both ids must already
// exist as nodes; a missing endpoint is a configuration error.
func (g *Graph) AddEdge(upstream, downstream contracts.TaskID) error {
	if _, ok := g.nodes[upstream]; !ok {
		return fmt.Errorf("upstream task %s: %w", upstream, contracts.ErrUnknownNode)
	}
	if _, ok := g.nodes[downstream]; !ok {
		return fmt.Errorf("downstream task %s: %w", downstream, contracts.ErrUnknownNode)
	}

	if g.deps[downstream] == nil {
		g.deps[downstream] = make(idSet)
	}
	g.deps[downstream][upstream] = struct{}{}

	if g.rdeps[upstream] == nil {
		g.rdeps[upstream] = make(idSet)
	}
	g.rdeps[upstream][downstream] = struct{}{}
	return nil
}

// Contains reports whether id is a node of the graph.
func (g *Graph) Contains(id contracts.TaskID) bool {
	_, ok := g.nodes[id]
	return ok
}

// Task returns the runnable registered under id, or nil.
func (g *Graph) Task(id contracts.TaskID) contracts.Runnable {
	return g.nodes[id]
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// TaskIDs returns all node ids in lexicographic order.
func (g *Graph) TaskIDs() []contracts.TaskID {
	ids := make([]contracts.TaskID, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids
}

// DirectUpstream returns the direct dependencies of id, sorted.
func (g *Graph) DirectUpstream(id contracts.TaskID) []contracts.TaskID {
	return sortedMembers(g.deps[id])
}

// Levels partitions the node ids into ordered topological waves using Kahn's
// algorithm: every wave holds tasks whose dependencies were all placed in
// earlier waves, so no edge exists within a wave. Ids within a wave are
// sorted for stable scheduling and logging.
//
// Returns ErrCycle when the edge relation is not acyclic. Cycle members are
// not identified; placing fewer nodes than the graph holds is the signal.
func (g *Graph) Levels() ([][]contracts.TaskID, error) {
	inDegree := make(map[contracts.TaskID]int, len(g.nodes))
	for id := range g.nodes {
		inDegree[id] = len(g.deps[id])
	}

	var queue []contracts.TaskID
	for id, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, id)
		}
	}

	var levels [][]contracts.TaskID
	placed := 0
	for len(queue) > 0 {
		level := queue
		queue = nil
		sortIDs(level)
		levels = append(levels, level)
		placed += len(level)

		for _, id := range level {
			for downstream := range g.rdeps[id] {
				inDegree[downstream]--
				if inDegree[downstream] == 0 {
					queue = append(queue, downstream)
				}
			}
		}
	}

	if placed != len(g.nodes) {
		return nil, fmt.Errorf("placed %d of %d tasks: %w", placed, len(g.nodes), contracts.ErrCycle)
	}
	return levels, nil
}

// DownstreamClosure returns all transitive descendants of id, excluding id
// itself. An unknown id is a configuration error.
func (g *Graph) DownstreamClosure(id contracts.TaskID) (map[contracts.TaskID]struct{}, error) {
	return g.closure(id, g.rdeps)
}

// UpstreamClosure returns all transitive ancestors of id, excluding id itself.
func (g *Graph) UpstreamClosure(id contracts.TaskID) (map[contracts.TaskID]struct{}, error) {
	return g.closure(id, g.deps)
}

// closure runs a breadth-first traversal over the given edge relation.
func (g *Graph) closure(id contracts.TaskID, edges map[contracts.TaskID]idSet) (map[contracts.TaskID]struct{}, error) {
	if _, ok := g.nodes[id]; !ok {
		return nil, fmt.Errorf("task %s: %w", id, contracts.ErrUnknownNode)
	}

	result := make(map[contracts.TaskID]struct{})
	queue := []contracts.TaskID{id}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for next := range edges[current] {
			if _, seen := result[next]; seen {
				continue
			}
			result[next] = struct{}{}
			queue = append(queue, next)
		}
	}
	return result, nil
}

func sortIDs(ids []contracts.TaskID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

func sortedMembers(set idSet) []contracts.TaskID {
	ids := make([]contracts.TaskID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids
}
