package entities

import (
	"encoding/json"

	"flowengine/domain/core/valueobjects"
)

// Node is one unit of work or content in the task graph snapshot.
// The engine only reads nodes; it never mutates caller state.
type Node struct {
	ID           string                  `json:"id" validate:"required"`
	Type         valueobjects.NodeType   `json:"type"`
	Status       valueobjects.NodeStatus `json:"status,omitempty"`
	Title        string                  `json:"title,omitempty"`
	Complexity   *Complexity             `json:"complexity,omitempty"`
	Content      *Content                `json:"content,omitempty"`
	TimeEstimate *TimeEstimate           `json:"timeEstimate,omitempty"`
}

// Complexity carries the caller's own sizing of a node
type Complexity struct {
	StoryPoints *float64 `json:"storyPoints,omitempty" validate:"omitempty,gte=0,lte=1e12"`
}

// Content holds the node's attached items. Only their counts matter to the
// engine, so elements are kept undecoded.
type Content struct {
	Todos        []json.RawMessage `json:"todos,omitempty"`
	CodeSnippets []json.RawMessage `json:"codeSnippets,omitempty"`
	References   []json.RawMessage `json:"references,omitempty"`
}

// TimeEstimate is the caller's duration estimate for a node
type TimeEstimate struct {
	Estimated *float64 `json:"estimated,omitempty" validate:"omitempty,gte=0,lte=1e12"`
	Actual    *float64 `json:"actual,omitempty" validate:"omitempty,gte=0,lte=1e12"`
}

// StoryPoints returns the node's story points and whether they were set
func (n Node) StoryPoints() (float64, bool) {
	if n.Complexity == nil || n.Complexity.StoryPoints == nil {
		return 0, false
	}
	return *n.Complexity.StoryPoints, true
}

// StoryPointsOr returns the node's story points, or def when unset
func (n Node) StoryPointsOr(def float64) float64 {
	if sp, ok := n.StoryPoints(); ok {
		return sp
	}
	return def
}

// EstimatedTime returns the node's estimated duration and whether it was set
func (n Node) EstimatedTime() (float64, bool) {
	if n.TimeEstimate == nil || n.TimeEstimate.Estimated == nil {
		return 0, false
	}
	return *n.TimeEstimate.Estimated, true
}

// TodoCount returns the number of todos attached to the node
func (n Node) TodoCount() int {
	if n.Content == nil {
		return 0
	}
	return len(n.Content.Todos)
}

// CodeSnippetCount returns the number of code snippets attached to the node
func (n Node) CodeSnippetCount() int {
	if n.Content == nil {
		return 0
	}
	return len(n.Content.CodeSnippets)
}

// ReferenceCount returns the number of references attached to the node
func (n Node) ReferenceCount() int {
	if n.Content == nil {
		return 0
	}
	return len(n.Content.References)
}

// IsBlocked reports whether the node's status is blocked
func (n Node) IsBlocked() bool {
	return n.Status.IsBlocked()
}

// IsCompleted reports whether the node's status is completed
func (n Node) IsCompleted() bool {
	return n.Status.IsCompleted()
}

// IndexNodes maps node ids to nodes. Later duplicates win.
func IndexNodes(nodes []Node) map[string]Node {
	index := make(map[string]Node, len(nodes))
	for _, node := range nodes {
		index[node.ID] = node
	}
	return index
}
