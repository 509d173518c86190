package graph

// Builder accumulates nodes and edges for a single build. It is not safe for
// concurrent use; create one per build.
type Builder struct {
	nodes      []Node
	index      map[string]int
	edges      []Edge
	hasFeature map[pairKey]int
}

type pairKey struct {
	bot, feature string
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		index:      make(map[string]int),
		hasFeature: make(map[pairKey]int),
	}
}

// AddNode appends a node unless one with the same id exists. The first
// occurrence wins; it reports whether the node was added.
func (b *Builder) AddNode(n NodeData) bool {
	if _, ok := b.index[n.ID]; ok {
		return false
	}
	b.index[n.ID] = len(b.nodes)
	b.nodes = append(b.nodes, Node{Data: n})
	return true
}

// HasNode reports whether a node id has been added.
func (b *Builder) HasNode(id string) bool {
	_, ok := b.index[id]
	return ok
}

// NodeType returns the type of a node already added.
func (b *Builder) NodeType(id string) (NodeType, bool) {
	i, ok := b.index[id]
	if !ok {
		return "", false
	}
	return b.nodes[i].Data.NodeType, true
}

// AddEdge appends an edge. Duplicates are permitted; hasFeature edges must go
// through AddHasFeature.
func (b *Builder) AddEdge(source, target, relation, label string) {
	b.edges = append(b.edges, Edge{Data: EdgeData{
		ID:       EdgeID(source, target, relation),
		Source:   source,
		Target:   target,
		Relation: relation,
		Label:    label,
	}})
}

// AddHasFeature creates the base bot→feature edge with both capability flags
// false. A second call for the same pair is a no-op; it reports whether an
// edge was created.
func (b *Builder) AddHasFeature(bot, feature string) bool {
	key := pairKey{bot, feature}
	if _, ok := b.hasFeature[key]; ok {
		return false
	}
	botCan, userCan := false, false
	b.hasFeature[key] = len(b.edges)
	b.edges = append(b.edges, Edge{Data: EdgeData{
		ID:          EdgeID(bot, feature, RelHasFeature),
		Source:      bot,
		Target:      feature,
		Relation:    RelHasFeature,
		Label:       RelHasFeature,
		BotCanSend:  &botCan,
		UserCanSend: &userCan,
	}})
	return true
}

// UpgradeHasFeature annotates the existing edge for (bot, feature) with its
// directionality. It never creates an edge: it reports false when the pair
// has no base edge, and leaves the edge untouched when neither flag is set.
func (b *Builder) UpgradeHasFeature(bot, feature string, botCanSend, userCanSend bool) bool {
	i, ok := b.hasFeature[pairKey{bot, feature}]
	if !ok {
		return false
	}
	label := CapabilityLabel(botCanSend, userCanSend)
	if label == "" {
		return true
	}
	d := &b.edges[i].Data
	d.BotCanSend = &botCanSend
	d.UserCanSend = &userCanSend
	d.Label = label
	return true
}

// CapabilityLabel names the direction of a hasFeature edge, or returns ""
// when neither side can send.
func CapabilityLabel(botCanSend, userCanSend bool) string {
	switch {
	case botCanSend && userCanSend:
		return LabelExchange
	case botCanSend:
		return LabelBotOutput
	case userCanSend:
		return LabelUserInput
	}
	return ""
}

// AttachScreenshots appends screenshot paths for bot to a feature node. It
// reports false when the feature is unknown.
func (b *Builder) AttachScreenshots(feature, bot string, paths ...string) bool {
	i, ok := b.index[feature]
	if !ok || b.nodes[i].Data.NodeType != NodeFeature {
		return false
	}
	if len(paths) == 0 {
		return true
	}
	d := &b.nodes[i].Data
	if d.Screenshots == nil {
		d.Screenshots = make(map[string][]string)
	}
	d.Screenshots[bot] = append(d.Screenshots[bot], paths...)
	return true
}

// Graph returns a snapshot of the accumulated graph. The builder may keep
// being used afterwards without affecting the returned value.
func (b *Builder) Graph() *Graph {
	g := &Graph{
		Nodes: make([]Node, len(b.nodes)),
		Edges: make([]Edge, len(b.edges)),
	}
	for i, n := range b.nodes {
		g.Nodes[i] = Node{Data: n.Data.clone()}
	}
	for i, e := range b.edges {
		g.Edges[i] = Edge{Data: e.Data.clone()}
	}
	return g
}

func (d NodeData) clone() NodeData {
	if d.Screenshots != nil {
		shots := make(map[string][]string, len(d.Screenshots))
		for k, v := range d.Screenshots {
			shots[k] = append([]string(nil), v...)
		}
		d.Screenshots = shots
	}
	return d
}

func (d EdgeData) clone() EdgeData {
	if d.BotCanSend != nil {
		v := *d.BotCanSend
		d.BotCanSend = &v
	}
	if d.UserCanSend != nil {
		v := *d.UserCanSend
		d.UserCanSend = &v
	}
	return d
}
