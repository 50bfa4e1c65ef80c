package valueobjects

// NodeType is the kind of work or content a node represents.
// Values outside the known set are kept as-is and scored with the default weight.
type NodeType string

const (
	NodeTypeTask      NodeType = "task"
	NodeTypeCode      NodeType = "code"
	NodeTypeComponent NodeType = "component"
	NodeTypeFile      NodeType = "file"
	NodeTypeFolder    NodeType = "folder"
	NodeTypeReference NodeType = "reference"
	NodeTypeComment   NodeType = "comment"
)

// defaultNodeTypeWeight applies to types missing from nodeTypeWeights
const defaultNodeTypeWeight = 1.0

var nodeTypeWeights = map[NodeType]float64{
	NodeTypeTask:      2,
	NodeTypeCode:      4,
	NodeTypeComponent: 3,
	NodeTypeFile:      1,
	NodeTypeFolder:    1,
	NodeTypeReference: 1,
	NodeTypeComment:   1,
}

// Weight returns the complexity contribution of the node type
func (t NodeType) Weight() float64 {
	if w, ok := nodeTypeWeights[t]; ok {
		return w
	}
	return defaultNodeTypeWeight
}

// IsKnown reports whether the type is one of the recognized node types
func (t NodeType) IsKnown() bool {
	_, ok := nodeTypeWeights[t]
	return ok
}

// NodeStatus is the workflow state of a node
type NodeStatus string

const (
	NodeStatusIdle      NodeStatus = "idle"
	NodeStatusActive    NodeStatus = "active"
	NodeStatusBlocked   NodeStatus = "blocked"
	NodeStatusCompleted NodeStatus = "completed"
)

// IsBlocked reports whether the node cannot make progress
func (s NodeStatus) IsBlocked() bool {
	return s == NodeStatusBlocked
}

// IsCompleted reports whether the node's work is done
func (s NodeStatus) IsCompleted() bool {
	return s == NodeStatusCompleted
}
