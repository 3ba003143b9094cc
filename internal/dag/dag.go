// Package dag provides directed acyclic graph operations over the fact
// dependency graph. It supports cycle detection with exact path reporting,
// topological sorting, and execution-level grouping for parallel evaluation.
package dag

import (
	"fmt"
	"sort"

	"github.com/factstack-labs/factgraph/pkg/formula"
)

// Graph is a directed graph of fact keys. An edge from parent to child
// means the child's formula depends on the parent.
type Graph struct {
	nodes   map[formula.FactKey]struct{}
	edges   map[formula.FactKey][]formula.FactKey // parent -> children (dependents)
	parents map[formula.FactKey][]formula.FactKey // child -> parents (dependencies)
}

// New creates a new empty graph.
func New() *Graph {
	return &Graph{
		nodes:   make(map[formula.FactKey]struct{}),
		edges:   make(map[formula.FactKey][]formula.FactKey),
		parents: make(map[formula.FactKey][]formula.FactKey),
	}
}

// AddNode adds a fact key to the graph. Adding an existing key is a no-op.
func (g *Graph) AddNode(key formula.FactKey) {
	if _, exists := g.nodes[key]; exists {
		return
	}
	g.nodes[key] = struct{}{}
	g.edges[key] = nil
	g.parents[key] = nil
}

// AddEdge records that child's formula depends on parent.
func (g *Graph) AddEdge(parent, child formula.FactKey) error {
	if _, exists := g.nodes[parent]; !exists {
		return fmt.Errorf("node %s does not exist", parent)
	}
	if _, exists := g.nodes[child]; !exists {
		return fmt.Errorf("node %s does not exist", child)
	}
	if parent == child {
		return fmt.Errorf("self-dependency: %s references itself", parent)
	}

	if !contains(g.edges[parent], child) {
		g.edges[parent] = append(g.edges[parent], child)
	}
	if !contains(g.parents[child], parent) {
		g.parents[child] = append(g.parents[child], parent)
	}
	return nil
}

// HasNode reports whether the key is in the graph.
func (g *Graph) HasNode(key formula.FactKey) bool {
	_, ok := g.nodes[key]
	return ok
}

// Parents returns the dependencies of a node.
func (g *Graph) Parents(key formula.FactKey) []formula.FactKey {
	return g.parents[key]
}

// Children returns the dependents of a node.
func (g *Graph) Children(key formula.FactKey) []formula.FactKey {
	return g.edges[key]
}

// Keys returns all node keys in sorted order.
func (g *Graph) Keys() []formula.FactKey {
	keys := make([]formula.FactKey, 0, len(g.nodes))
	for key := range g.nodes {
		keys = append(keys, key)
	}
	sortKeys(keys)
	return keys
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, children := range g.edges {
		count += len(children)
	}
	return count
}

// HasCycle reports whether the graph contains a cycle, along with one
// reconstructed cycle path (first and last element are the same key).
func (g *Graph) HasCycle() (bool, []formula.FactKey) {
	visited := make(map[formula.FactKey]bool)
	recStack := make(map[formula.FactKey]bool)
	cameFrom := make(map[formula.FactKey]formula.FactKey)

	var cyclePath []formula.FactKey

	var dfs func(key formula.FactKey) bool
	dfs = func(key formula.FactKey) bool {
		visited[key] = true
		recStack[key] = true

		for _, child := range g.edges[key] {
			if !visited[child] {
				cameFrom[child] = key
				if dfs(child) {
					return true
				}
			} else if recStack[child] {
				// Found a back edge; reconstruct the cycle.
				cyclePath = []formula.FactKey{child}
				for curr := key; curr != child; curr = cameFrom[curr] {
					cyclePath = append([]formula.FactKey{curr}, cyclePath...)
				}
				cyclePath = append([]formula.FactKey{child}, cyclePath...)
				return true
			}
		}

		recStack[key] = false
		return false
	}

	// Iterate in sorted order so the reported cycle is deterministic.
	for _, key := range g.Keys() {
		if !visited[key] {
			if dfs(key) {
				return true, cyclePath
			}
		}
	}
	return false, nil
}

// TopologicalSort returns keys in dependency order (dependencies before
// dependents). Returns an error if the graph contains a cycle.
func (g *Graph) TopologicalSort() ([]formula.FactKey, error) {
	if hasCycle, cyclePath := g.HasCycle(); hasCycle {
		return nil, fmt.Errorf("cycle detected: %v", cyclePath)
	}

	visited := make(map[formula.FactKey]bool)
	var result []formula.FactKey

	var visit func(key formula.FactKey)
	visit = func(key formula.FactKey) {
		if visited[key] {
			return
		}
		visited[key] = true
		for _, parent := range sorted(g.parents[key]) {
			visit(parent)
		}
		result = append(result, key)
	}

	for _, key := range g.Keys() {
		visit(key)
	}
	return result, nil
}

// ExecutionLevels returns keys grouped by evaluation level. Keys at level N
// depend only on keys at levels below N, so each level may be evaluated in
// parallel once the previous one completes. Level 0 holds keys with no
// dependencies.
func (g *Graph) ExecutionLevels() ([][]formula.FactKey, error) {
	if hasCycle, cyclePath := g.HasCycle(); hasCycle {
		return nil, fmt.Errorf("cycle detected: %v", cyclePath)
	}

	assigned := make(map[formula.FactKey]int)

	var levelOf func(key formula.FactKey) int
	levelOf = func(key formula.FactKey) int {
		if level, ok := assigned[key]; ok {
			return level
		}

		parents := g.parents[key]
		if len(parents) == 0 {
			assigned[key] = 0
			return 0
		}

		maxParent := 0
		for _, parent := range parents {
			if l := levelOf(parent); l > maxParent {
				maxParent = l
			}
		}
		assigned[key] = maxParent + 1
		return maxParent + 1
	}

	maxLevel := 0
	for key := range g.nodes {
		if l := levelOf(key); l > maxLevel {
			maxLevel = l
		}
	}

	levels := make([][]formula.FactKey, maxLevel+1)
	for key, level := range assigned {
		levels[level] = append(levels[level], key)
	}
	for i := range levels {
		sortKeys(levels[i])
	}
	return levels, nil
}

// Roots returns keys with no dependencies, sorted.
func (g *Graph) Roots() []formula.FactKey {
	var roots []formula.FactKey
	for key := range g.nodes {
		if len(g.parents[key]) == 0 {
			roots = append(roots, key)
		}
	}
	sortKeys(roots)
	return roots
}

func contains(keys []formula.FactKey, key formula.FactKey) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

func sortKeys(keys []formula.FactKey) {
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
}

func sorted(keys []formula.FactKey) []formula.FactKey {
	out := make([]formula.FactKey, len(keys))
	copy(out, keys)
	sortKeys(out)
	return out
}
