package clustering

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/dd0wney/cluso-botgraph/pkg/algorithms"
	"github.com/dd0wney/cluso-botgraph/pkg/graph"
	"github.com/dd0wney/cluso-botgraph/pkg/matrix"
)

func affinity(inc *matrix.Incidence) *mat.SymDense {
	if x := inc.Dense(); x != nil {
		return algorithms.CosineSimilarities(x)
	}
	// Bots without any feature are mutually unrelated.
	return mat.NewSymDense(len(inc.Bots), nil)
}

type vote struct {
	bot   string
	label int
}

// majority picks the most frequent label. Votes are ordered by bot id and a
// tie goes to the label that appears first in that order.
func majority(votes []vote) (int, bool) {
	if len(votes) == 0 {
		return 0, false
	}
	sort.SliceStable(votes, func(i, j int) bool { return votes[i].bot < votes[j].bot })

	counts := make(map[int]int)
	var order []int
	for _, v := range votes {
		if counts[v.label] == 0 {
			order = append(order, v.label)
		}
		counts[v.label]++
	}
	best := order[0]
	for _, l := range order[1:] {
		if counts[l] > counts[best] {
			best = l
		}
	}
	return best, true
}

// propagateFeatures labels each feature with the majority label of the
// eligible bots that have it.
func propagateFeatures(g *graph.Graph, labels Assignment, eligible func(bot string) bool) {
	votes := make(map[string][]vote)
	var features []string
	for _, c := range g.Capabilities() {
		l, ok := labels[c.Bot]
		if !ok || (eligible != nil && !eligible(c.Bot)) {
			continue
		}
		if _, seen := votes[c.Feature]; !seen {
			features = append(features, c.Feature)
		}
		votes[c.Feature] = append(votes[c.Feature], vote{c.Bot, l})
	}
	for _, f := range features {
		if l, ok := majority(votes[f]); ok {
			labels[f] = l
		}
	}
}

// propagateDomains labels each domain with the majority label of its bots.
// A bot votes once per domain however many partOf edges repeat the link.
func propagateDomains(g *graph.Graph, labels Assignment) {
	types := g.Types()
	votes := make(map[string][]vote)
	seen := make(map[[2]string]bool)
	var domains []string
	for _, e := range g.EdgesWith(graph.RelPartOf) {
		if types[e.Source] != graph.NodeBot || types[e.Target] != graph.NodeDomain {
			continue
		}
		l, ok := labels[e.Source]
		key := [2]string{e.Source, e.Target}
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		if _, known := votes[e.Target]; !known {
			domains = append(domains, e.Target)
		}
		votes[e.Target] = append(votes[e.Target], vote{e.Source, l})
	}
	for _, d := range domains {
		if l, ok := majority(votes[d]); ok {
			labels[d] = l
		}
	}
}

func propagateMajority(g *graph.Graph, labels Assignment) {
	propagateFeatures(g, labels, nil)
	propagateDomains(g, labels)
}

// propagateLastWriter copies each bot's label to its features and domains.
// Links are applied in (bot, target) order, so a target shared by bots in
// different clusters takes the label of the greatest bot id.
func propagateLastWriter(g *graph.Graph, labels Assignment) {
	type link struct{ bot, target string }
	var links []link
	for _, c := range g.Capabilities() {
		links = append(links, link{c.Bot, c.Feature})
	}
	types := g.Types()
	for _, e := range g.EdgesWith(graph.RelPartOf) {
		if types[e.Source] == graph.NodeBot && types[e.Target] == graph.NodeDomain {
			links = append(links, link{e.Source, e.Target})
		}
	}
	sort.SliceStable(links, func(i, j int) bool {
		if links[i].bot != links[j].bot {
			return links[i].bot < links[j].bot
		}
		return links[i].target < links[j].target
	})
	for _, l := range links {
		if v, ok := labels[l.bot]; ok {
			labels[l.target] = v
		}
	}
}
