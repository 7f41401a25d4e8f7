// Package privilege implements the directed privilege graph (spec §4.D):
// named levels linked by parent edges, with shortest-path navigation between
// any two reachable levels. Only parent edges are stored; child edges are
// derived on demand since a platform has at most a handful of levels.
package privilege

import (
	"fmt"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Step is one edge to traverse: either an escalation (Up=true, moving to a
// child) or a deescalation (Up=false, moving to the parent).
type Step struct {
	From, To string
	Up       bool
}

// Node is one privilege level as seen by the graph: its name and its parent,
// if any.
type Node struct {
	Name   string
	Parent string
	HasParent bool
}

// Graph is a directed graph of privilege levels built from a platform's
// level table. It is immutable after construction and safe for concurrent
// read access from multiple Drivers, since distinct PlatformDefinitions are
// shared immutable data (spec §5).
type Graph struct {
	nodes map[string]Node
	cache *ttlcache.Cache[string, []Step]
}

// pathCacheTTL bounds how long a memoized path() result is trusted. It is
// short relative to a process lifetime: long enough to amortize repeated
// acquire_privilege calls against the same hot edges, short enough that a
// custom PlatformDefinition rebuilt at runtime isn't pinned to a stale path
// forever.
const pathCacheTTL = 10 * time.Minute

// New builds a Graph from nodes. It returns an error if the graph induced by
// parent links is cyclic, or if any parent name is not itself a node.
func New(nodes []Node) (*Graph, error) {
	index := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		index[n.Name] = n
	}
	for _, n := range nodes {
		if n.HasParent {
			if _, ok := index[n.Parent]; !ok {
				return nil, fmt.Errorf("netcli/privilege: level %q has unknown parent %q", n.Name, n.Parent)
			}
		}
	}
	if err := checkAcyclic(index); err != nil {
		return nil, err
	}
	return &Graph{
		nodes: index,
		cache: ttlcache.New[string, []Step](ttlcache.WithTTL[string, []Step](pathCacheTTL)),
	}, nil
}

func checkAcyclic(nodes map[string]Node) error {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(nodes))
	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("netcli/privilege: cyclic privilege graph at %q", name)
		}
		state[name] = visiting
		if n, ok := nodes[name]; ok && n.HasParent {
			if err := visit(n.Parent); err != nil {
				return err
			}
		}
		state[name] = done
		return nil
	}
	for name := range nodes {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}

func (g *Graph) depth(name string) int {
	d := 0
	for {
		n, ok := g.nodes[name]
		if !ok || !n.HasParent {
			return d
		}
		d++
		name = n.Parent
	}
}

func (g *Graph) ancestors(name string) []string {
	var chain []string
	for {
		chain = append(chain, name)
		n, ok := g.nodes[name]
		if !ok || !n.HasParent {
			return chain
		}
		name = n.Parent
	}
}

// Has reports whether name is a level in the graph.
func (g *Graph) Has(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

// Path returns the ordered steps to walk from `from` to `to`: up the tree to
// their lowest common ancestor, then down. Length equals
// depth(from)+depth(to)-2*depth(lca). Returns an empty, non-nil slice (no
// error) if from == to.
func (g *Graph) Path(from, to string) ([]Step, error) {
	if !g.Has(from) {
		return nil, fmt.Errorf("netcli/privilege: unknown privilege %q", from)
	}
	if !g.Has(to) {
		return nil, fmt.Errorf("netcli/privilege: unknown privilege %q", to)
	}
	if from == to {
		return []Step{}, nil
	}

	key := from + "\x00" + to
	if item := g.cache.Get(key); item != nil {
		return item.Value(), nil
	}

	fromChain := g.ancestors(from)
	toChain := g.ancestors(to)

	toIndex := make(map[string]int, len(toChain))
	for i, name := range toChain {
		toIndex[name] = i
	}

	lcaFromIdx := -1
	lcaToIdx := -1
	for i, name := range fromChain {
		if j, ok := toIndex[name]; ok {
			lcaFromIdx, lcaToIdx = i, j
			break
		}
	}
	if lcaFromIdx == -1 {
		return nil, fmt.Errorf("netcli/privilege: no path from %q to %q", from, to)
	}

	var steps []Step
	cur := from
	for i := 0; i < lcaFromIdx; i++ {
		next := fromChain[i+1]
		steps = append(steps, Step{From: cur, To: next, Up: false})
		cur = next
	}
	for i := lcaToIdx - 1; i >= 0; i-- {
		next := toChain[i]
		steps = append(steps, Step{From: cur, To: next, Up: true})
		cur = next
	}

	g.cache.Set(key, steps, ttlcache.DefaultTTL)
	return steps, nil
}
