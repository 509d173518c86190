package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dd0wney/cluso-botgraph/pkg/algorithms"
)

// DendrogramNode is one node of a dendrogram rendered as a tree. Leaves carry
// the observation name; inner nodes carry the merge distance.
type DendrogramNode struct {
	Name     string            `json:"name,omitempty"`
	Distance float64           `json:"distance"`
	Size     int               `json:"size"`
	Children []*DendrogramNode `json:"children,omitempty"`
}

// DendrogramTree converts the merge history into a nested tree. names
// labels the observations and must have one entry per observation.
func DendrogramTree(dg *algorithms.Dendrogram, names []string) (*DendrogramNode, error) {
	if dg == nil || dg.N == 0 {
		return nil, fmt.Errorf("%w: empty dendrogram", algorithms.ErrInsufficientData)
	}
	if len(names) != dg.N {
		return nil, fmt.Errorf("dendrogram has %d observations but %d names", dg.N, len(names))
	}

	var build func(id int) *DendrogramNode
	build = func(id int) *DendrogramNode {
		if id < dg.N {
			return &DendrogramNode{Name: names[id], Size: 1}
		}
		m := dg.Merges[id-dg.N]
		return &DendrogramNode{
			Distance: m.Distance,
			Size:     m.Size,
			Children: []*DendrogramNode{build(m.A), build(m.B)},
		}
	}
	if len(dg.Merges) == 0 {
		return build(0), nil
	}
	return build(dg.N + len(dg.Merges) - 1), nil
}

// WriteDendrogram writes the dendrogram tree as indented JSON.
func WriteDendrogram(w io.Writer, dg *algorithms.Dendrogram, names []string) error {
	tree, err := DendrogramTree(dg, names)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(tree)
}
