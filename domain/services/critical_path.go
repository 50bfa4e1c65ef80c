package services

import (
	"flowengine/domain/core/entities"
)

// CriticalPath is the heaviest chain through the dependency/sequence subgraph
type CriticalPath struct {
	Path              []string        `json:"path"`
	Duration          float64         `json:"duration"`
	Nodes             []entities.Node `json:"nodes"`
	CycleEdgesSkipped int             `json:"cycleEdgesSkipped"`
}

// NodeWeight is the duration a node contributes to a path: its time estimate,
// else its story points, else 1. Zero values fall through to the next source.
func NodeWeight(node entities.Node) float64 {
	if est, ok := node.EstimatedTime(); ok && est > 0 {
		return est
	}
	if sp, ok := node.StoryPoints(); ok && sp > 0 {
		return sp
	}
	return 1
}

// pathSolver holds the per-call state of one critical path computation
type pathSolver struct {
	index     map[string]entities.Node
	adjacency map[string][]string
	memo      map[string]float64
	next      map[string]string
	onPath    map[string]bool
	skipped   int
}

// FindCriticalPath computes the longest weighted path over dependency and
// sequence edges.
//
// The search is a memoized DFS that skips any child already on the current
// path, so cycle edges are ignored rather than reported. On acyclic input the
// answer is exact. On cyclic input it is an approximation whose result depends
// on node order, because lengths memoized under one path are reused by others.
func FindCriticalPath(nodes []entities.Node, conns []entities.Connection) CriticalPath {
	result := CriticalPath{Path: []string{}, Nodes: []entities.Node{}}
	if len(nodes) == 0 {
		return result
	}

	s := &pathSolver{
		index:     entities.IndexNodes(nodes),
		adjacency: make(map[string][]string),
		memo:      make(map[string]float64),
		next:      make(map[string]string),
		onPath:    make(map[string]bool),
	}

	for _, conn := range conns {
		if !IsOrderingEdge(conn) {
			continue
		}
		if _, ok := s.index[conn.SourceNodeID]; !ok {
			continue
		}
		if _, ok := s.index[conn.TargetNodeID]; !ok {
			continue
		}
		s.adjacency[conn.SourceNodeID] = append(s.adjacency[conn.SourceNodeID], conn.TargetNodeID)
	}

	var root string
	best := -1.0
	for _, node := range nodes {
		if _, visited := s.memo[node.ID]; visited {
			continue
		}
		if length := s.longest(node.ID); length > best {
			best = length
			root = node.ID
		}
	}

	result.CycleEdgesSkipped = s.skipped
	s.reconstruct(root, &result)
	return result
}

// longest returns the weight of the heaviest path starting at id
func (s *pathSolver) longest(id string) float64 {
	if length, ok := s.memo[id]; ok {
		return length
	}

	s.onPath[id] = true
	tail := 0.0
	for _, child := range s.adjacency[id] {
		if s.onPath[child] {
			s.skipped++
			continue
		}
		if length := s.longest(child); length > tail {
			tail = length
			s.next[id] = child
		}
	}
	delete(s.onPath, id)

	length := NodeWeight(s.index[id]) + tail
	s.memo[id] = length
	return length
}

// reconstruct follows the child each node's length was computed through.
// A child is always memoized before its parent, so the chain cannot loop and
// the duration equals the root's memoized length.
func (s *pathSolver) reconstruct(root string, result *CriticalPath) {
	visited := make(map[string]bool)
	for current := root; current != "" && !visited[current]; current = s.next[current] {
		visited[current] = true
		node := s.index[current]
		result.Path = append(result.Path, current)
		result.Nodes = append(result.Nodes, node)
		result.Duration += NodeWeight(node)
	}
}
