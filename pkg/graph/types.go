// Package graph holds the typed bot/feature/domain graph and the builder that
// assembles it. The JSON shape ({"nodes":[{"data":{...}}],"edges":[...]}) is
// what the visualization frontend consumes, so field names are part of the
// contract.
package graph

// NodeType discriminates node variants.
type NodeType string

const (
	NodeBot          NodeType = "bot"
	NodeFeature      NodeType = "feature"
	NodeDomain       NodeType = "domain"
	NodeFeatureGroup NodeType = "feature_group"
	NodeUser         NodeType = "user"
)

// Valid reports whether t is one of the known node variants.
func (t NodeType) Valid() bool {
	switch t {
	case NodeBot, NodeFeature, NodeDomain, NodeFeatureGroup, NodeUser:
		return true
	}
	return false
}

// Relations with fixed meaning. Any other relation string is a semantic
// feature-to-feature relation taken verbatim from the annotations.
const (
	RelPartOf     = "partOf"
	RelHasFeature = "hasFeature"
)

// Capability labels written on upgraded hasFeature edges.
const (
	LabelExchange  = "exchange"
	LabelBotOutput = "bot output"
	LabelUserInput = "user input"
)

// The synthetic node representing the human side of a conversation.
const (
	UserNodeID    = "user"
	UserNodeLabel = "User"
)

// NodeData is the payload of a node.
type NodeData struct {
	ID          string              `json:"id"`
	NodeType    NodeType            `json:"nodeType"`
	Label       string              `json:"label"`
	Description string              `json:"description,omitempty"`
	Class       string              `json:"class,omitempty"`
	GroupID     string              `json:"groupId,omitempty"`
	Screenshots map[string][]string `json:"screenshots,omitempty"`
}

// Node wraps NodeData the way the frontend expects.
type Node struct {
	Data NodeData `json:"data"`
}

// EdgeData is the payload of an edge. The capability flags are only set on
// hasFeature edges.
type EdgeData struct {
	ID          string `json:"id"`
	Source      string `json:"source"`
	Target      string `json:"target"`
	Relation    string `json:"relation"`
	Label       string `json:"label"`
	BotCanSend  *bool  `json:"bot_can_send,omitempty"`
	UserCanSend *bool  `json:"user_can_send,omitempty"`
}

// Edge wraps EdgeData the way the frontend expects.
type Edge struct {
	Data EdgeData `json:"data"`
}

// BotSends reports the bot_can_send flag, false when absent.
func (e EdgeData) BotSends() bool {
	return e.BotCanSend != nil && *e.BotCanSend
}

// UserSends reports the user_can_send flag, false when absent.
func (e EdgeData) UserSends() bool {
	return e.UserCanSend != nil && *e.UserCanSend
}

// EdgeID is the deterministic edge identifier.
func EdgeID(source, target, relation string) string {
	return source + "_" + target + "_" + relation
}

// Graph is the persisted artifact: nodes in first-seen order and edges in
// insertion order.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}
