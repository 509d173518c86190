package algorithms

import (
	"errors"
	"strings"
	"testing"
)

func TestDecisionTreeSingleSplit(t *testing.T) {
	x := [][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	y := []int{0, 0, 1, 1}
	tree, err := FitDecisionTree(x, y, []string{"carousel", "button"}, 4)
	if err != nil {
		t.Fatalf("FitDecisionTree: %v", err)
	}

	want := "|--- carousel <= 0.50\n" +
		"|   |--- class: 0\n" +
		"|--- carousel >  0.50\n" +
		"|   |--- class: 1\n"
	if got := tree.Text(); got != want {
		t.Errorf("Text() =\n%s\nwant\n%s", got, want)
	}

	rules := tree.Rules()
	if len(rules) != 2 {
		t.Fatalf("rules = %+v", rules)
	}
	if got := rules[0].String(); got != "IF carousel absent THEN cluster 0 (2 samples, 100% pure)" {
		t.Errorf("rule = %q", got)
	}
	if !rules[1].Conditions[0].Present || rules[1].Class != 1 {
		t.Errorf("rule 1 = %+v", rules[1])
	}
}

func TestDecisionTreeDepthLimit(t *testing.T) {
	x := [][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	y := []int{0, 1, 1, 0}

	shallow, err := FitDecisionTree(x, y, []string{"a", "b"}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if shallow.Depth() != 1 {
		t.Errorf("depth = %d, want 1", shallow.Depth())
	}

	deep, err := FitDecisionTree(x, y, []string{"a", "b"}, 4)
	if err != nil {
		t.Fatal(err)
	}
	for i, row := range x {
		if got := deep.Predict(row); got != y[i] {
			t.Errorf("Predict(%v) = %d, want %d", row, got, y[i])
		}
	}
	if deep.Depth() > 4 {
		t.Errorf("depth %d exceeds limit", deep.Depth())
	}
}

func TestDecisionTreePureRoot(t *testing.T) {
	tree, err := FitDecisionTree([][]float64{{1}, {0}}, []int{3, 3}, []string{"f"}, 4)
	if err != nil {
		t.Fatal(err)
	}
	if !tree.Root.IsLeaf() || tree.Root.Class != 3 {
		t.Errorf("pure data should give a single leaf: %+v", tree.Root)
	}
	if rules := tree.Rules(); len(rules) != 1 || !strings.HasPrefix(rules[0].String(), "always THEN cluster 3") {
		t.Errorf("rules = %v", rules)
	}
}

func TestDecisionTreeErrors(t *testing.T) {
	if _, err := FitDecisionTree(nil, nil, nil, 4); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
	if _, err := FitDecisionTree([][]float64{{1}}, []int{1, 2}, []string{"f"}, 4); err == nil {
		t.Error("label count mismatch should fail")
	}
	if _, err := FitDecisionTree([][]float64{{1, 0}}, []int{1}, []string{"f"}, 4); err == nil {
		t.Error("column count mismatch should fail")
	}
}
