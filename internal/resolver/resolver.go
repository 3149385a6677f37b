// Package resolver computes a deterministic mod load order from a dependency graph.
//
// The order is a topological sort in which every mod loads after the mods it depends on.
// Among mods that are ready at the same time, the one discovered first wins, so the same
// input always yields the same order.
package resolver

import (
	"container/heap"
	"slices"

	"github.com/leefowlercu/modorder/internal/modmeta"
	"github.com/leefowlercu/modorder/internal/registry"
)

// MissingDependency records a dependency on a mod that is not installed.
type MissingDependency struct {
	Mod        string `json:"mod"`
	Dependency string `json:"dependency"`
	// Name is the dependency name as declared by Mod.
	Name string `json:"name,omitempty"`
}

// VersionMismatch records an installed dependency older than the declared minimum.
type VersionMismatch struct {
	Mod        string          `json:"mod"`
	Dependency string          `json:"dependency"`
	Required   modmeta.Version `json:"required"`
	Installed  modmeta.Version `json:"installed"`
}

// Result is a computed load order and the warnings found while computing it.
type Result struct {
	Order    []string            `json:"order"`
	Missing  []MissingDependency `json:"missing,omitempty"`
	Outdated []VersionMismatch   `json:"outdated,omitempty"`
}

// Warnings returns the number of diagnostics attached to the result.
func (r *Result) Warnings() int {
	return len(r.Missing) + len(r.Outdated)
}

type options struct {
	builtins map[string]bool
}

// Option configures Resolve.
type Option func(*options)

// WithBuiltins names modules that are always present, such as the base game. Dependencies
// on them are satisfied without a registered node and produce no warning.
func WithBuiltins(uuids ...string) Option {
	return func(o *options) {
		for _, id := range uuids {
			o.builtins[id] = true
		}
	}
}

// Resolve orders every node of g so that each mod follows its dependencies. Ties are
// broken by position in registrationOrder; nodes absent from it follow in graph order.
//
// Dependencies on unknown mods are dropped and reported in Result.Missing. If any mods
// cannot be placed because of a cycle, Resolve returns a *CycleError and no order.
func Resolve(g *registry.Graph, registrationOrder []string, opts ...Option) (*Result, error) {
	o := options{builtins: make(map[string]bool)}
	for _, opt := range opts {
		opt(&o)
	}

	nodes, rank := rankNodes(g, registrationOrder)
	res := &Result{Order: make([]string, 0, len(nodes))}

	pending := make(map[string]int, len(nodes))
	dependents := make(map[string][]string, len(nodes))
	requires := make(map[string][]string, len(nodes))

	for _, id := range nodes {
		seen := make(map[string]bool)
		for _, e := range g.Edges(id) {
			if !g.Has(e.To) {
				if !o.builtins[e.To] && !seen[e.To] {
					res.Missing = append(res.Missing, MissingDependency{Mod: id, Dependency: e.To, Name: e.Name})
				}
				seen[e.To] = true
				continue
			}

			if seen[e.To] {
				continue
			}
			seen[e.To] = true

			if e.MinVersion != nil {
				target, _ := g.Node(e.To)
				if target.Version.Compare(*e.MinVersion) < 0 {
					res.Outdated = append(res.Outdated, VersionMismatch{
						Mod:        id,
						Dependency: e.To,
						Required:   *e.MinVersion,
						Installed:  target.Version,
					})
				}
			}

			pending[id]++
			dependents[e.To] = append(dependents[e.To], id)
			requires[id] = append(requires[id], e.To)
		}
	}

	ready := &rankHeap{rank: rank}
	for _, id := range nodes {
		if pending[id] == 0 {
			heap.Push(ready, id)
		}
	}

	for ready.Len() > 0 {
		id := heap.Pop(ready).(string)
		res.Order = append(res.Order, id)
		for _, d := range dependents[id] {
			pending[d]--
			if pending[d] == 0 {
				heap.Push(ready, d)
			}
		}
	}

	if len(res.Order) < len(nodes) {
		return nil, cycleError(nodes, pending, requires)
	}
	return res, nil
}

// rankNodes returns the nodes of g in tie-break order along with each node's rank.
func rankNodes(g *registry.Graph, registrationOrder []string) ([]string, map[string]int) {
	nodes := make([]string, 0, g.Len())
	rank := make(map[string]int, g.Len())

	add := func(id string) {
		if _, ok := rank[id]; ok || !g.Has(id) {
			return
		}
		rank[id] = len(nodes)
		nodes = append(nodes, id)
	}
	for _, id := range registrationOrder {
		add(id)
	}
	for _, id := range g.Nodes() {
		add(id)
	}
	return nodes, rank
}

// cycleError splits the unplaced nodes into cycle members and nodes that are merely
// downstream of a cycle, using Tarjan's strongly connected components.
func cycleError(nodes []string, pending map[string]int, requires map[string][]string) *CycleError {
	var left []string
	for _, id := range nodes {
		if pending[id] > 0 {
			left = append(left, id)
		}
	}
	onCycle := cycleMembers(left, pending, requires)

	err := &CycleError{}
	for _, id := range left {
		if onCycle[id] {
			err.Cycle = append(err.Cycle, id)
		} else {
			err.Blocked = append(err.Blocked, id)
		}
	}
	return err
}

func cycleMembers(left []string, pending map[string]int, requires map[string][]string) map[string]bool {
	var (
		index   = make(map[string]int, len(left))
		lowlink = make(map[string]int, len(left))
		onStack = make(map[string]bool, len(left))
		stack   []string
		next    int
		members = make(map[string]bool)
	)

	var connect func(v string)
	connect = func(v string) {
		index[v] = next
		lowlink[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range requires[v] {
			if pending[w] == 0 {
				continue
			}
			if _, visited := index[w]; !visited {
				connect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], index[w])
			}
		}

		if lowlink[v] != index[v] {
			return
		}

		var component []string
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false
			component = append(component, w)
			if w == v {
				break
			}
		}
		if len(component) > 1 || slices.Contains(requires[v], v) {
			for _, w := range component {
				members[w] = true
			}
		}
	}

	for _, v := range left {
		if _, visited := index[v]; !visited {
			connect(v)
		}
	}
	return members
}

// rankHeap is a min-heap of node ids ordered by rank.
type rankHeap struct {
	ids  []string
	rank map[string]int
}

func (h *rankHeap) Len() int           { return len(h.ids) }
func (h *rankHeap) Less(i, j int) bool { return h.rank[h.ids[i]] < h.rank[h.ids[j]] }
func (h *rankHeap) Swap(i, j int)      { h.ids[i], h.ids[j] = h.ids[j], h.ids[i] }
func (h *rankHeap) Push(x any)         { h.ids = append(h.ids, x.(string)) }

func (h *rankHeap) Pop() any {
	n := len(h.ids)
	id := h.ids[n-1]
	h.ids = h.ids[:n-1]
	return id
}
