package algorithms

import (
	"fmt"
	"sort"
	"strings"
)

// DecisionTree is a CART classifier over binary features. Each internal node
// tests one feature against 0.5: absent goes left, present goes right.
type DecisionTree struct {
	Root     *TreeNode
	Features []string
	MaxDepth int
}

// TreeNode is a node of a DecisionTree. Leaves have Feature == -1.
type TreeNode struct {
	Feature  int
	Left     *TreeNode
	Right    *TreeNode
	Class    int
	Samples  int
	Counts   map[int]int
	Impurity float64
}

// IsLeaf reports whether the node has no split.
func (n *TreeNode) IsLeaf() bool {
	return n.Feature < 0
}

// FitDecisionTree grows a Gini tree on rows x with class labels y, at most
// maxDepth levels deep. The best split maximises the impurity decrease; ties
// go to the lowest feature column. Leaves predict the majority class, ties to
// the smallest label.
func FitDecisionTree(x [][]float64, y []int, features []string, maxDepth int) (*DecisionTree, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("%w: no samples", ErrInsufficientData)
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("decision tree: %d rows but %d labels", len(x), len(y))
	}
	for i, row := range x {
		if len(row) != len(features) {
			return nil, fmt.Errorf("decision tree: row %d has %d columns, want %d", i, len(row), len(features))
		}
	}
	if maxDepth < 1 {
		maxDepth = 1
	}

	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	t := &DecisionTree{Features: features, MaxDepth: maxDepth}
	t.Root = grow(x, y, idx, len(features), 0, maxDepth)
	return t, nil
}

func grow(x [][]float64, y []int, idx []int, nFeatures, depth, maxDepth int) *TreeNode {
	counts := make(map[int]int)
	for _, i := range idx {
		counts[y[i]]++
	}
	node := &TreeNode{
		Feature:  -1,
		Class:    majority(counts),
		Samples:  len(idx),
		Counts:   counts,
		Impurity: gini(counts, len(idx)),
	}
	if depth >= maxDepth || node.Impurity == 0 || len(idx) < 2 {
		return node
	}

	bestFeature, bestScore := -1, 0.0
	var bestLeft, bestRight []int
	for f := 0; f < nFeatures; f++ {
		var left, right []int
		lc, rc := map[int]int{}, map[int]int{}
		for _, i := range idx {
			if x[i][f] <= 0.5 {
				left = append(left, i)
				lc[y[i]]++
			} else {
				right = append(right, i)
				rc[y[i]]++
			}
		}
		if len(left) == 0 || len(right) == 0 {
			continue
		}
		w := float64(len(idx))
		child := float64(len(left))/w*gini(lc, len(left)) + float64(len(right))/w*gini(rc, len(right))
		decrease := node.Impurity - child
		if bestFeature < 0 || decrease > bestScore+1e-12 {
			bestFeature, bestScore = f, decrease
			bestLeft, bestRight = left, right
		}
	}
	if bestFeature < 0 {
		return node
	}

	node.Feature = bestFeature
	node.Left = grow(x, y, bestLeft, nFeatures, depth+1, maxDepth)
	node.Right = grow(x, y, bestRight, nFeatures, depth+1, maxDepth)
	return node
}

func gini(counts map[int]int, total int) float64 {
	if total == 0 {
		return 0
	}
	g := 1.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		g -= p * p
	}
	if g < 1e-15 {
		return 0
	}
	return g
}

func majority(counts map[int]int) int {
	best, bestCount := 0, -1
	labels := make([]int, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	sort.Ints(labels)
	for _, l := range labels {
		if counts[l] > bestCount {
			best, bestCount = l, counts[l]
		}
	}
	return best
}

// Predict returns the class of a row.
func (t *DecisionTree) Predict(row []float64) int {
	n := t.Root
	for !n.IsLeaf() {
		if row[n.Feature] <= 0.5 {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Class
}

// Depth returns the depth of the deepest leaf.
func (t *DecisionTree) Depth() int {
	var walk func(*TreeNode) int
	walk = func(n *TreeNode) int {
		if n.IsLeaf() {
			return 0
		}
		return 1 + max(walk(n.Left), walk(n.Right))
	}
	return walk(t.Root)
}

// Condition is one test on the path to a leaf.
type Condition struct {
	Feature string `json:"feature"`
	Present bool   `json:"present"`
}

// Rule is the path from the root to one leaf.
type Rule struct {
	Conditions []Condition `json:"conditions"`
	Class      int         `json:"class"`
	Samples    int         `json:"samples"`
	Purity     float64     `json:"purity"`
}

// String renders the rule as a readable sentence.
func (r Rule) String() string {
	parts := make([]string, len(r.Conditions))
	for i, c := range r.Conditions {
		state := "absent"
		if c.Present {
			state = "present"
		}
		parts[i] = c.Feature + " " + state
	}
	cond := "always"
	if len(parts) > 0 {
		cond = "IF " + strings.Join(parts, " AND ")
	}
	return fmt.Sprintf("%s THEN cluster %d (%d samples, %.0f%% pure)", cond, r.Class, r.Samples, r.Purity*100)
}

// Rules lists one rule per leaf, left to right.
func (t *DecisionTree) Rules() []Rule {
	var rules []Rule
	var walk func(*TreeNode, []Condition)
	walk = func(n *TreeNode, path []Condition) {
		if n.IsLeaf() {
			purity := 0.0
			if n.Samples > 0 {
				purity = float64(n.Counts[n.Class]) / float64(n.Samples)
			}
			rules = append(rules, Rule{
				Conditions: append([]Condition(nil), path...),
				Class:      n.Class,
				Samples:    n.Samples,
				Purity:     purity,
			})
			return
		}
		name := t.Features[n.Feature]
		walk(n.Left, append(path, Condition{Feature: name, Present: false}))
		walk(n.Right, append(path, Condition{Feature: name, Present: true}))
	}
	walk(t.Root, nil)
	return rules
}

// Text renders the tree in the indented "|---" layout of scikit-learn's
// export_text.
func (t *DecisionTree) Text() string {
	var sb strings.Builder
	var walk func(*TreeNode, int)
	walk = func(n *TreeNode, depth int) {
		indent := strings.Repeat("|   ", depth) + "|--- "
		if n.IsLeaf() {
			fmt.Fprintf(&sb, "%sclass: %d\n", indent, n.Class)
			return
		}
		name := t.Features[n.Feature]
		fmt.Fprintf(&sb, "%s%s <= 0.50\n", indent, name)
		walk(n.Left, depth+1)
		fmt.Fprintf(&sb, "%s%s >  0.50\n", indent, name)
		walk(n.Right, depth+1)
	}
	walk(t.Root, 0)
	return sb.String()
}
