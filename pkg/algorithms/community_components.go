package algorithms

import "container/list"

// ConnectedComponents finds the connected components of g by breadth-first
// search. Components are numbered in the order of their first node and list
// their nodes in visit order. Isolated nodes form components of their own.
func ConnectedComponents(g *UndirectedGraph) *CommunityDetectionResult {
	visited := make([]bool, len(g.nodes))
	res := &CommunityDetectionResult{NodeCommunity: make(map[string]int, len(g.nodes))}

	for start := range g.nodes {
		if visited[start] {
			continue
		}

		component := &Community{ID: len(res.Communities)}
		queue := list.New()
		queue.PushBack(start)
		visited[start] = true

		for queue.Len() > 0 {
			i, ok := queue.Remove(queue.Front()).(int)
			if !ok {
				continue
			}
			component.Nodes = append(component.Nodes, g.nodes[i])
			res.NodeCommunity[g.nodes[i]] = component.ID

			for _, j := range sortedKeys(g.adj[i]) {
				if !visited[j] {
					visited[j] = true
					queue.PushBack(j)
				}
			}
		}

		component.Size = len(component.Nodes)
		res.Communities = append(res.Communities, component)
	}

	res.Modularity = Modularity(g, res.NodeCommunity)
	return res
}
