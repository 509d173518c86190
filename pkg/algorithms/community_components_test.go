package algorithms

import "testing"

func TestConnectedComponents(t *testing.T) {
	g := NewUndirectedGraph([]string{"a", "b", "c", "d", "e", "lonely"})
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("d", "e")

	res := ConnectedComponents(g)
	if len(res.Communities) != 3 {
		t.Fatalf("Expected 3 components, got %d", len(res.Communities))
	}

	wantSizes := []int{3, 2, 1}
	for i, c := range res.Communities {
		if c.ID != i {
			t.Errorf("Component %d has ID %d", i, c.ID)
		}
		if c.Size != wantSizes[i] {
			t.Errorf("Component %d size = %d, want %d", i, c.Size, wantSizes[i])
		}
	}

	if res.NodeCommunity["a"] != res.NodeCommunity["c"] {
		t.Error("a and c should share a component")
	}
	if res.NodeCommunity["a"] == res.NodeCommunity["d"] {
		t.Error("a and d should be in different components")
	}
	if res.NodeCommunity["lonely"] != 2 {
		t.Errorf("Isolated node component = %d, want 2", res.NodeCommunity["lonely"])
	}
	if got := res.Communities[0].Nodes; got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("Unexpected visit order %v", got)
	}
}

func TestConnectedComponentsEmpty(t *testing.T) {
	res := ConnectedComponents(NewUndirectedGraph(nil))
	if len(res.Communities) != 0 {
		t.Errorf("Expected no components, got %d", len(res.Communities))
	}
	if res.Modularity != 0 {
		t.Errorf("Expected modularity 0, got %f", res.Modularity)
	}
}
