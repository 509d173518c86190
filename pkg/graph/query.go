package graph

import "sort"

// Find returns the node with the given id.
func (g *Graph) Find(id string) (NodeData, bool) {
	for _, n := range g.Nodes {
		if n.Data.ID == id {
			return n.Data, true
		}
	}
	return NodeData{}, false
}

// Types maps every node id to its type.
func (g *Graph) Types() map[string]NodeType {
	types := make(map[string]NodeType, len(g.Nodes))
	for _, n := range g.Nodes {
		types[n.Data.ID] = n.Data.NodeType
	}
	return types
}

// IDs returns the ids of nodes of type t in graph order.
func (g *Graph) IDs(t NodeType) []string {
	var ids []string
	for _, n := range g.Nodes {
		if n.Data.NodeType == t {
			ids = append(ids, n.Data.ID)
		}
	}
	return ids
}

// SortedIDs returns the ids of nodes of type t in lexicographic order.
func (g *Graph) SortedIDs(t NodeType) []string {
	ids := g.IDs(t)
	sort.Strings(ids)
	return ids
}

// EdgesWith returns the edges carrying relation, in graph order.
func (g *Graph) EdgesWith(relation string) []EdgeData {
	var out []EdgeData
	for _, e := range g.Edges {
		if e.Data.Relation == relation {
			out = append(out, e.Data)
		}
	}
	return out
}

// Capability is a hasFeature edge resolved to its bot and feature ends.
type Capability struct {
	Bot, Feature string
	Edge         EdgeData
}

// Capabilities returns every hasFeature edge joining a bot and a feature,
// whichever way round it was written, in graph order.
func (g *Graph) Capabilities() []Capability {
	types := g.Types()
	var out []Capability
	for _, e := range g.Edges {
		d := e.Data
		if d.Relation != RelHasFeature {
			continue
		}
		switch {
		case types[d.Source] == NodeBot && types[d.Target] == NodeFeature:
			out = append(out, Capability{Bot: d.Source, Feature: d.Target, Edge: d})
		case types[d.Target] == NodeBot && types[d.Source] == NodeFeature:
			out = append(out, Capability{Bot: d.Target, Feature: d.Source, Edge: d})
		}
	}
	return out
}

// BotDomains maps each bot to its domain. A bot with several partOf edges to
// domains keeps the last one seen.
func (g *Graph) BotDomains() map[string]string {
	types := g.Types()
	domains := make(map[string]string)
	for _, e := range g.Edges {
		d := e.Data
		if d.Relation == RelPartOf && types[d.Source] == NodeBot && types[d.Target] == NodeDomain {
			domains[d.Source] = d.Target
		}
	}
	return domains
}

// Stats summarises node and edge counts.
type Stats struct {
	Nodes       int              `json:"nodes"`
	Edges       int              `json:"edges"`
	ByType      map[NodeType]int `json:"byType"`
	ByRelation  map[string]int   `json:"byRelation"`
	Screenshots int              `json:"screenshots"`
}

// Stats counts nodes by type, edges by relation and attached screenshots.
func (g *Graph) Stats() Stats {
	s := Stats{
		Nodes:      len(g.Nodes),
		Edges:      len(g.Edges),
		ByType:     make(map[NodeType]int),
		ByRelation: make(map[string]int),
	}
	for _, n := range g.Nodes {
		s.ByType[n.Data.NodeType]++
		for _, paths := range n.Data.Screenshots {
			s.Screenshots += len(paths)
		}
	}
	for _, e := range g.Edges {
		s.ByRelation[e.Data.Relation]++
	}
	return s
}
