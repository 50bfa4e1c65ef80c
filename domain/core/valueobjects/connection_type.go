package valueobjects

// ConnectionType is the relationship a directed edge expresses
type ConnectionType string

const (
	ConnectionTypeDependency ConnectionType = "dependency"
	ConnectionTypeSequence   ConnectionType = "sequence"
	ConnectionTypeReference  ConnectionType = "reference"
	ConnectionTypeBlocks     ConnectionType = "blocks"
	ConnectionTypeDataflow   ConnectionType = "dataflow"
	ConnectionTypeNavigation ConnectionType = "navigation"
	ConnectionTypeAPI        ConnectionType = "api"
	ConnectionTypeImport     ConnectionType = "import"
)

const defaultConnectionWeight = 1.0

var connectionWeights = map[ConnectionType]float64{
	ConnectionTypeDependency: 3,
	ConnectionTypeSequence:   2,
	ConnectionTypeReference:  1,
	ConnectionTypeBlocks:     4,
	ConnectionTypeDataflow:   3,
	ConnectionTypeNavigation: 2,
	ConnectionTypeAPI:        3,
	ConnectionTypeImport:     2,
}

// Weight returns the complexity weight of the connection type.
// Unknown types weigh 1.
func (t ConnectionType) Weight() float64 {
	if w, ok := connectionWeights[t]; ok {
		return w
	}
	return defaultConnectionWeight
}

// IsOrdering reports whether edges of this type constrain execution order
// and therefore take part in critical path computation.
func (t ConnectionType) IsOrdering() bool {
	return t == ConnectionTypeDependency || t == ConnectionTypeSequence
}
