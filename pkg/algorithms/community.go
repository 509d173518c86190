package algorithms

import "sort"

// Community represents a detected community
type Community struct {
	ID    int
	Nodes []string
	Size  int
}

// CommunityDetectionResult contains detected communities
type CommunityDetectionResult struct {
	Communities   []*Community
	Modularity    float64        // Quality measure of the partitioning
	NodeCommunity map[string]int // Node ID -> Community ID
}

// UndirectedGraph is a simple graph: relations and directions are dropped,
// parallel edges collapse and self-loops are ignored.
type UndirectedGraph struct {
	nodes []string
	index map[string]int
	adj   []map[int]bool
	edges int
}

// NewUndirectedGraph creates a graph over nodes, kept in the given order.
func NewUndirectedGraph(nodes []string) *UndirectedGraph {
	g := &UndirectedGraph{
		nodes: append([]string(nil), nodes...),
		index: make(map[string]int, len(nodes)),
		adj:   make([]map[int]bool, len(nodes)),
	}
	for i, id := range nodes {
		g.index[id] = i
		g.adj[i] = make(map[int]bool)
	}
	return g
}

// AddEdge joins two known nodes. It reports false for unknown nodes and
// self-loops.
func (g *UndirectedGraph) AddEdge(a, b string) bool {
	i, ok := g.index[a]
	if !ok {
		return false
	}
	j, ok := g.index[b]
	if !ok || i == j {
		return false
	}
	if !g.adj[i][j] {
		g.adj[i][j] = true
		g.adj[j][i] = true
		g.edges++
	}
	return true
}

// Nodes returns the node ids in insertion order.
func (g *UndirectedGraph) Nodes() []string {
	return g.nodes
}

// EdgeCount returns the number of distinct undirected edges.
func (g *UndirectedGraph) EdgeCount() int {
	return g.edges
}

// Modularity computes Newman's modularity of a partition.
func Modularity(g *UndirectedGraph, nodeCommunity map[string]int) float64 {
	if g.edges == 0 {
		return 0
	}
	m := float64(g.edges)
	internal := make(map[int]float64)
	degree := make(map[int]float64)
	for i, id := range g.nodes {
		ci := nodeCommunity[id]
		degree[ci] += float64(len(g.adj[i]))
		for j := range g.adj[i] {
			if j > i && nodeCommunity[g.nodes[j]] == ci {
				internal[ci]++
			}
		}
	}
	var q float64
	for c, d := range degree {
		q += internal[c]/m - (d/(2*m))*(d/(2*m))
	}
	return q
}

// GreedyModularity runs Clauset-Newman-Moore agglomeration: starting from
// singletons, repeatedly merge the pair of connected communities with the
// largest modularity gain while that gain is non-negative. Ties go to the
// pair with the smallest community ids. Communities are returned largest
// first, equal sizes ordered by their earliest node.
func GreedyModularity(g *UndirectedGraph) *CommunityDetectionResult {
	n := len(g.nodes)
	m := float64(g.edges)

	members := make(map[int][]int, n)
	a := make(map[int]float64, n)
	e := make(map[int]map[int]float64, n)
	for i := 0; i < n; i++ {
		members[i] = []int{i}
		e[i] = make(map[int]float64)
		if m > 0 {
			a[i] = float64(len(g.adj[i])) / (2 * m)
			for j := range g.adj[i] {
				e[i][j] = 1
			}
		}
	}

	for m > 0 {
		bi, bj, best := -1, -1, 0.0
		for _, i := range sortedKeys(e) {
			for _, j := range sortedKeys(e[i]) {
				if j <= i {
					continue
				}
				dq := e[i][j]/m - 2*a[i]*a[j]
				if bi < 0 || dq > best {
					bi, bj, best = i, j, dq
				}
			}
		}
		if bi < 0 || best < 0 {
			break
		}

		// Merge bj into bi.
		members[bi] = append(members[bi], members[bj]...)
		delete(members, bj)
		for k, w := range e[bj] {
			if k == bi {
				continue
			}
			e[bi][k] += w
			e[k][bi] += w
			delete(e[k], bj)
		}
		delete(e[bi], bj)
		delete(e, bj)
		a[bi] += a[bj]
		delete(a, bj)
	}

	groups := make([][]int, 0, len(members))
	for _, ms := range members {
		sort.Ints(ms)
		groups = append(groups, ms)
	}
	sort.Slice(groups, func(x, y int) bool {
		if len(groups[x]) != len(groups[y]) {
			return len(groups[x]) > len(groups[y])
		}
		return groups[x][0] < groups[y][0]
	})

	res := &CommunityDetectionResult{NodeCommunity: make(map[string]int, n)}
	for cid, ms := range groups {
		c := &Community{ID: cid, Size: len(ms)}
		for _, idx := range ms {
			c.Nodes = append(c.Nodes, g.nodes[idx])
			res.NodeCommunity[g.nodes[idx]] = cid
		}
		res.Communities = append(res.Communities, c)
	}
	res.Modularity = Modularity(g, res.NodeCommunity)
	return res
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
