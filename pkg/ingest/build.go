// Package ingest fuses the annotation spreadsheets (bot descriptions, feature
// definitions, presence and permission matrices, screenshots) into a graph.
package ingest

import (
	"context"
	"path/filepath"

	"github.com/dd0wney/cluso-botgraph/pkg/graph"
	"github.com/dd0wney/cluso-botgraph/pkg/identity"
	"github.com/dd0wney/cluso-botgraph/pkg/logging"
)

// Logical source names, used in errors, logs and skip counters.
const (
	SourceBots        = "bots"
	SourceFeatures    = "features"
	SourcePresence    = "presence"
	SourcePermissions = "permissions"
	SourceScreenshots = "screenshots"
)

// Default file names inside the data directory.
const (
	DefaultBotsFile        = "final_annotation_bot_description.csv"
	DefaultFeaturesFile    = "final_annotation_features.csv"
	DefaultPermissionsFile = "final_annotation_messages.csv"
	DefaultScreenshotsFile = "screenshots.csv"
)

// Sources lists the CSV files to read. Presence is optional: when empty, a
// bot has a feature whenever either of its permission columns is marked.
type Sources struct {
	Bots        string `yaml:"bots" validate:"required"`
	Features    string `yaml:"features" validate:"required"`
	Presence    string `yaml:"presence"`
	Permissions string `yaml:"permissions" validate:"required"`
	Screenshots string `yaml:"screenshots" validate:"required"`
}

// DefaultSources returns the standard file layout below dir.
func DefaultSources(dir string) Sources {
	return Sources{
		Bots:        filepath.Join(dir, DefaultBotsFile),
		Features:    filepath.Join(dir, DefaultFeaturesFile),
		Permissions: filepath.Join(dir, DefaultPermissionsFile),
		Screenshots: filepath.Join(dir, DefaultScreenshotsFile),
	}
}

// Report summarises a build: rows read and rows skipped per source.
type Report struct {
	Rows    map[string]int `json:"rows"`
	Skipped map[string]int `json:"skipped"`
	Stats   graph.Stats    `json:"stats"`
}

func newReport() *Report {
	return &Report{Rows: map[string]int{}, Skipped: map[string]int{}}
}

// builder carries the state of one build.
type builder struct {
	g        *graph.Builder
	logger   logging.Logger
	report   *Report
	bots     []string // first-seen order
	features map[string]featureRow
	order    []string // feature ids, first-seen order
}

type featureRow struct {
	relation string
	target   string
}

// Build reads every configured source and returns the fused graph. Any
// missing or unreadable source aborts the build without partial output; rows
// that reference unknown bots or features are skipped and counted.
func Build(ctx context.Context, src Sources, logger logging.Logger) (*graph.Graph, *Report, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.With(logging.Component("ingest"))

	tables, err := loadTables(ctx, src)
	if err != nil {
		return nil, nil, err
	}

	b := &builder{
		g:        graph.NewBuilder(),
		logger:   logger,
		report:   newReport(),
		features: make(map[string]featureRow),
	}
	b.g.AddNode(graph.NodeData{ID: graph.UserNodeID, NodeType: graph.NodeUser, Label: graph.UserNodeLabel})

	b.addBots(tables[SourceBots])
	b.addFeatures(tables[SourceFeatures])
	b.addRelations()
	b.addScreenshots(tables[SourceScreenshots])
	if p, ok := tables[SourcePresence]; ok {
		b.addPresence(p)
		b.applyPermissions(tables[SourcePermissions], false)
	} else {
		b.applyPermissions(tables[SourcePermissions], true)
	}

	g := b.g.Graph()
	b.report.Stats = g.Stats()
	logger.Info("graph built",
		logging.Int("nodes", len(g.Nodes)),
		logging.Int("edges", len(g.Edges)),
		logging.Bots(len(b.bots)),
		logging.Features(len(b.order)))
	return g, b.report, nil
}

type tableSpec struct {
	name, path string
	required   []string
}

func loadTables(ctx context.Context, src Sources) (map[string]*table, error) {
	specs := []tableSpec{
		{SourceBots, src.Bots, []string{"bot"}},
		{SourceFeatures, src.Features, []string{"class"}},
		{SourcePermissions, src.Permissions, []string{"class"}},
		{SourceScreenshots, src.Screenshots, []string{"class", "bot", "screenshot"}},
	}
	if src.Presence != "" {
		specs = append(specs, tableSpec{SourcePresence, src.Presence, []string{"class"}})
	}

	tables := make(map[string]*table, len(specs))
	for _, s := range specs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, err := readTable(s.name, s.path, s.required...)
		if err != nil {
			return nil, err
		}
		tables[s.name] = t
	}
	return tables, nil
}

func (b *builder) skip(source string, row int, reason string, fields ...logging.Field) {
	b.report.Skipped[source]++
	b.logger.Debug("row skipped", append(fields, logging.Source(source), logging.Row(row), logging.String("reason", reason))...)
}

func (b *builder) isBot(id string) bool {
	t, ok := b.g.NodeType(id)
	return ok && t == graph.NodeBot
}

func (b *builder) addBots(t *table) {
	for i, rec := range t.rows {
		b.report.Rows[SourceBots]++
		label := t.get(rec, "bot")
		botID := identity.Normalize(label)
		if botID == "" {
			b.skip(SourceBots, i+2, "empty bot name")
			continue
		}
		if b.g.AddNode(graph.NodeData{
			ID:          botID,
			NodeType:    graph.NodeBot,
			Label:       label,
			Description: t.get(rec, "description"),
		}) {
			b.bots = append(b.bots, botID)
		} else if !b.isBot(botID) {
			b.skip(SourceBots, i+2, "id already used by another node", logging.NodeID(botID))
			continue
		}

		domain := t.get(rec, "domain")
		if domain == "" {
			continue
		}
		domainID := identity.Normalize(domain)
		b.g.AddNode(graph.NodeData{ID: domainID, NodeType: graph.NodeDomain, Label: domain})
		if typ, _ := b.g.NodeType(domainID); typ != graph.NodeDomain {
			b.skip(SourceBots, i+2, "domain id already used by another node", logging.NodeID(domainID))
			continue
		}
		b.g.AddEdge(botID, domainID, graph.RelPartOf, graph.RelPartOf)
	}
}

func (b *builder) addFeatures(t *table) {
	for i, rec := range t.rows {
		b.report.Rows[SourceFeatures]++
		class := t.get(rec, "class")
		featureID := identity.Normalize(class)
		if featureID == "" {
			b.skip(SourceFeatures, i+2, "empty class")
			continue
		}

		groupLabel := t.get(rec, "feature_group")
		groupID := identity.Normalize(groupLabel)
		if groupID != "" {
			b.g.AddNode(graph.NodeData{ID: groupID, NodeType: graph.NodeFeatureGroup, Label: groupLabel})
		}

		label := t.get(rec, "feature")
		if label == "" {
			label = class
		}
		added := b.g.AddNode(graph.NodeData{
			ID:          featureID,
			NodeType:    graph.NodeFeature,
			Label:       label,
			Description: t.get(rec, "description"),
			Class:       class,
			GroupID:     groupID,
		})
		if typ, _ := b.g.NodeType(featureID); typ != graph.NodeFeature {
			b.skip(SourceFeatures, i+2, "id already used by another node", logging.NodeID(featureID))
			continue
		}
		if added {
			b.order = append(b.order, featureID)
		}
		// A repeated class keeps its first node but the last row's relation.
		b.features[featureID] = featureRow{
			relation: t.get(rec, "relation"),
			target:   t.get(rec, "relation_target"),
		}

		if groupID != "" {
			if typ, _ := b.g.NodeType(groupID); typ == graph.NodeFeatureGroup {
				b.g.AddEdge(featureID, groupID, graph.RelPartOf, graph.RelPartOf)
			}
		}
	}
}

// addRelations runs after every feature row is known so relations may point
// forward in the file.
func (b *builder) addRelations() {
	for _, featureID := range b.order {
		row := b.features[featureID]
		if row.relation == "" || row.target == "" {
			continue
		}
		if row.relation == graph.RelHasFeature {
			b.skip(SourceFeatures, 0, "reserved relation between features", logging.NodeID(featureID))
			continue
		}
		targetID := identity.Normalize(row.target)
		if _, ok := b.features[targetID]; !ok {
			b.skip(SourceFeatures, 0, "relation target is not a feature", logging.NodeID(featureID), logging.String("target", targetID))
			continue
		}
		b.g.AddEdge(featureID, targetID, row.relation, row.relation)
	}
}

func (b *builder) addScreenshots(t *table) {
	for i, rec := range t.rows {
		b.report.Rows[SourceScreenshots]++
		featureID := identity.Normalize(t.get(rec, "class"))
		botID := identity.Normalize(t.get(rec, "bot"))
		paths := splitPaths(t.raw(rec, "screenshot"))

		if _, ok := b.features[featureID]; !ok {
			b.skip(SourceScreenshots, i+2, "unknown feature", logging.NodeID(featureID))
			continue
		}
		if !b.isBot(botID) {
			b.skip(SourceScreenshots, i+2, "unknown bot", logging.NodeID(botID))
			continue
		}
		if len(paths) == 0 {
			b.skip(SourceScreenshots, i+2, "empty screenshot cell")
			continue
		}
		b.g.AttachScreenshots(featureID, botID, paths...)
	}
}

// addPresence is the base pass: a marked cell under a bot column creates the
// hasFeature edge. Presence is the only existence criterion.
func (b *builder) addPresence(t *table) {
	for i, rec := range t.rows {
		b.report.Rows[SourcePresence]++
		featureID := identity.Normalize(t.get(rec, "class"))
		if _, ok := b.features[featureID]; !ok {
			b.skip(SourcePresence, i+2, "unknown feature", logging.NodeID(featureID))
			continue
		}
		for _, botID := range b.bots {
			if marked(t.get(rec, botID)) {
				b.g.AddHasFeature(botID, featureID)
			}
		}
	}
}

// applyPermissions is the upgrade pass over <bot>_bot / <bot>_user columns.
// With createMissing set (no presence source) a marked pair also creates its
// base edge; otherwise marks on absent pairs are skipped.
func (b *builder) applyPermissions(t *table, createMissing bool) {
	for i, rec := range t.rows {
		b.report.Rows[SourcePermissions]++
		featureID := identity.Normalize(t.get(rec, "class"))
		if _, ok := b.features[featureID]; !ok {
			b.skip(SourcePermissions, i+2, "unknown feature", logging.NodeID(featureID))
			continue
		}
		for _, botID := range b.bots {
			botCan := marked(t.get(rec, botID+"_bot"))
			userCan := marked(t.get(rec, botID+"_user"))
			if createMissing && (botCan || userCan) {
				b.g.AddHasFeature(botID, featureID)
			}
			if !b.g.UpgradeHasFeature(botID, featureID, botCan, userCan) && (botCan || userCan) {
				b.skip(SourcePermissions, i+2, "permission without presence", logging.NodeID(botID), logging.String("feature", featureID))
			}
		}
	}
}
