// Package matrix derives the bot×feature incidence matrix and the bot→domain
// lookup from a graph.
package matrix

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/dd0wney/cluso-botgraph/pkg/graph"
)

// Incidence is a dense binary matrix with one row per bot and one column per
// feature, both in lexicographic id order. It is read-only once built.
type Incidence struct {
	Bots     []string
	Features []string
	// Domains maps bot id to domain id; bots without a domain are absent.
	Domains map[string]string
	// DomainIDs lists every domain node id in sorted order.
	DomainIDs []string

	data    *mat.Dense
	botIdx  map[string]int
	featIdx map[string]int
}

// Build derives the incidence matrix from g. hasFeature edges count whichever
// way round they were written.
func Build(g *graph.Graph) *Incidence {
	inc := &Incidence{
		Bots:      g.SortedIDs(graph.NodeBot),
		Features:  g.SortedIDs(graph.NodeFeature),
		Domains:   g.BotDomains(),
		DomainIDs: g.SortedIDs(graph.NodeDomain),
	}
	inc.index()

	if len(inc.Bots) > 0 && len(inc.Features) > 0 {
		inc.data = mat.NewDense(len(inc.Bots), len(inc.Features), nil)
		for _, c := range g.Capabilities() {
			inc.data.Set(inc.botIdx[c.Bot], inc.featIdx[c.Feature], 1)
		}
	}
	return inc
}

// FromSets builds an incidence matrix directly from bot feature sets. Bots
// and features are sorted; domains may be nil.
func FromSets(sets map[string][]string, domains map[string]string) *Incidence {
	featSet := map[string]bool{}
	inc := &Incidence{Domains: map[string]string{}}
	for bot, feats := range sets {
		inc.Bots = append(inc.Bots, bot)
		for _, f := range feats {
			featSet[f] = true
		}
	}
	for f := range featSet {
		inc.Features = append(inc.Features, f)
	}
	domainSet := map[string]bool{}
	for bot, d := range domains {
		if d == "" {
			continue
		}
		inc.Domains[bot] = d
		domainSet[d] = true
	}
	for d := range domainSet {
		inc.DomainIDs = append(inc.DomainIDs, d)
	}
	sort.Strings(inc.Bots)
	sort.Strings(inc.Features)
	sort.Strings(inc.DomainIDs)
	inc.index()

	if len(inc.Bots) > 0 && len(inc.Features) > 0 {
		inc.data = mat.NewDense(len(inc.Bots), len(inc.Features), nil)
		for bot, feats := range sets {
			for _, f := range feats {
				inc.data.Set(inc.botIdx[bot], inc.featIdx[f], 1)
			}
		}
	}
	return inc
}

func (m *Incidence) index() {
	m.botIdx = make(map[string]int, len(m.Bots))
	for i, b := range m.Bots {
		m.botIdx[b] = i
	}
	m.featIdx = make(map[string]int, len(m.Features))
	for j, f := range m.Features {
		m.featIdx[f] = j
	}
}

// Dims returns the number of bots and features.
func (m *Incidence) Dims() (bots, features int) {
	return len(m.Bots), len(m.Features)
}

// At returns the cell for bot row i and feature column j.
func (m *Incidence) At(i, j int) float64 {
	if m.data == nil {
		return 0
	}
	return m.data.At(i, j)
}

// Has reports whether bot has feature.
func (m *Incidence) Has(bot, feature string) bool {
	i, ok := m.botIdx[bot]
	if !ok {
		return false
	}
	j, ok := m.featIdx[feature]
	if !ok {
		return false
	}
	return m.At(i, j) == 1
}

// BotIndex returns the row of a bot.
func (m *Incidence) BotIndex(bot string) (int, bool) {
	i, ok := m.botIdx[bot]
	return i, ok
}

// Row returns a copy of bot row i.
func (m *Incidence) Row(i int) []float64 {
	row := make([]float64, len(m.Features))
	if m.data != nil {
		mat.Row(row, i, m.data)
	}
	return row
}

// Column returns a copy of feature column j.
func (m *Incidence) Column(j int) []float64 {
	col := make([]float64, len(m.Bots))
	if m.data != nil {
		mat.Col(col, j, m.data)
	}
	return col
}

// Dense returns a copy of the matrix, or nil when it has no cells.
func (m *Incidence) Dense() *mat.Dense {
	if m.data == nil {
		return nil
	}
	return mat.DenseCopyOf(m.data)
}

// Sets returns, per row, the set of column indices that are 1.
func (m *Incidence) Sets() []map[int]bool {
	if m.data == nil {
		return rowSets(nil, len(m.Bots))
	}
	return rowSets(m.data, len(m.Bots))
}

// FeatureSets returns, per column, the set of bot rows that are 1.
func (m *Incidence) FeatureSets() []map[int]bool {
	if m.data == nil {
		return rowSets(nil, len(m.Features))
	}
	return rowSets(m.data.T(), len(m.Features))
}

// FeaturesOf lists the features a bot has, sorted.
func (m *Incidence) FeaturesOf(bot string) []string {
	i, ok := m.botIdx[bot]
	if !ok {
		return nil
	}
	var out []string
	for j, f := range m.Features {
		if m.At(i, j) == 1 {
			out = append(out, f)
		}
	}
	return out
}

// Domain returns the domain of a bot and whether it has one.
func (m *Incidence) Domain(bot string) (string, bool) {
	d, ok := m.Domains[bot]
	return d, ok
}

func rowSets(a mat.Matrix, n int) []map[int]bool {
	sets := make([]map[int]bool, n)
	for i := range sets {
		sets[i] = map[int]bool{}
	}
	if a == nil {
		return sets
	}
	r, c := a.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if a.At(i, j) != 0 {
				sets[i][j] = true
			}
		}
	}
	return sets
}
