package fixtures

import (
	"encoding/json"
	"fmt"
	"time"

	"flowengine/domain/core/entities"
	"flowengine/domain/core/valueobjects"
)

// NodeBuilder helps create test nodes with default values
type NodeBuilder struct {
	node entities.Node
}

func NewNodeBuilder(id string) *NodeBuilder {
	return &NodeBuilder{
		node: entities.Node{
			ID:     id,
			Type:   valueobjects.NodeTypeTask,
			Status: valueobjects.NodeStatusIdle,
			Title:  fmt.Sprintf("Node %s", id),
		},
	}
}

func (b *NodeBuilder) WithType(nodeType valueobjects.NodeType) *NodeBuilder {
	b.node.Type = nodeType
	return b
}

func (b *NodeBuilder) WithStatus(status valueobjects.NodeStatus) *NodeBuilder {
	b.node.Status = status
	return b
}

func (b *NodeBuilder) WithStoryPoints(points float64) *NodeBuilder {
	b.node.Complexity = &entities.Complexity{StoryPoints: &points}
	return b
}

func (b *NodeBuilder) WithEstimate(estimated float64) *NodeBuilder {
	b.node.TimeEstimate = &entities.TimeEstimate{Estimated: &estimated}
	return b
}

func (b *NodeBuilder) WithContent(todos, snippets, references int) *NodeBuilder {
	b.node.Content = &entities.Content{
		Todos:        rawItems(todos),
		CodeSnippets: rawItems(snippets),
		References:   rawItems(references),
	}
	return b
}

func (b *NodeBuilder) Build() entities.Node {
	return b.node
}

func rawItems(n int) []json.RawMessage {
	if n == 0 {
		return nil
	}
	items := make([]json.RawMessage, n)
	for i := range items {
		items[i] = json.RawMessage(fmt.Sprintf(`{"id":"item-%d"}`, i))
	}
	return items
}

// Tasks builds plain task nodes with the given ids
func Tasks(ids ...string) []entities.Node {
	nodes := make([]entities.Node, 0, len(ids))
	for _, id := range ids {
		nodes = append(nodes, NewNodeBuilder(id).Build())
	}
	return nodes
}

// Connect builds a connection of the given type
func Connect(source, target string, connType valueobjects.ConnectionType) entities.Connection {
	return entities.Connection{
		ID:           fmt.Sprintf("%s->%s", source, target),
		SourceNodeID: source,
		TargetNodeID: target,
		Type:         connType,
	}
}

// Dependency builds a dependency connection
func Dependency(source, target string) entities.Connection {
	return Connect(source, target, valueobjects.ConnectionTypeDependency)
}

// FanIn builds count connections from generated sources into target
func FanIn(target string, count int, connType valueobjects.ConnectionType) []entities.Connection {
	conns := make([]entities.Connection, 0, count)
	for i := 0; i < count; i++ {
		conns = append(conns, Connect(fmt.Sprintf("%s-in-%d", target, i), target, connType))
	}
	return conns
}

// FanOut builds count connections from source to generated targets
func FanOut(source string, count int, connType valueobjects.ConnectionType) []entities.Connection {
	conns := make([]entities.Connection, 0, count)
	for i := 0; i < count; i++ {
		conns = append(conns, Connect(source, fmt.Sprintf("%s-out-%d", source, i), connType))
	}
	return conns
}

// Completed builds a node_completed event at ts
func Completed(nodeID string, ts time.Time) entities.TimelineEvent {
	return entities.TimelineEvent{
		Type:      entities.EventNodeCompleted,
		NodeID:    nodeID,
		Timestamp: ts.UnixMilli(),
	}
}

// FixedNow is the reference instant used by time-dependent tests
var FixedNow = time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC)

// FixedClock returns FixedNow
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time {
	if c.At.IsZero() {
		return FixedNow
	}
	return c.At
}
