package osmparser

import (
	"github.com/paulmach/osm"
)

// parsedWay is a way accepted by the tag filter during the way pass.
type parsedWay struct {
	id    osm.WayID
	nodes []osm.NodeID
	tags  osm.Tags
}

func newParsedWay(way *osm.Way) parsedWay {
	nodes := make([]osm.NodeID, len(way.Nodes))
	for i, n := range way.Nodes {
		nodes[i] = n.ID
	}
	return parsedWay{
		id:    way.ID,
		nodes: nodes,
		tags:  way.Tags,
	}
}

// LoadStats summarises a finished extract load.
type LoadStats struct {
	Files                int `json:"files"`
	Ways                 int `json:"ways"`
	Edges                int `json:"edges"`
	Nodes                int `json:"nodes"`
	NodesWithCoordinates int `json:"nodes_with_coordinates"`
}
