package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/dd0wney/cluso-botgraph/pkg/algorithms"
	"github.com/dd0wney/cluso-botgraph/pkg/characterize"
	"github.com/dd0wney/cluso-botgraph/pkg/matrix"
	"github.com/dd0wney/cluso-botgraph/pkg/stats"
)

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	return rows
}

func testProfile(t *testing.T) *characterize.ClusterProfile {
	t.Helper()
	inc := matrix.FromSets(map[string][]string{
		"a": {"x", "y"},
		"b": {"x", "y"},
		"c": {"z"},
		"d": {"z", "y"},
	}, nil)
	p, err := characterize.Profile(inc, map[string]int{"a": 0, "b": 0, "c": 1, "d": 1})
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	return p
}

func TestWriteFeatureMetrics(t *testing.T) {
	records := []stats.FeatureStats{
		{Feature: "greeting", Ubiquity: 1, Occurrences: 3, Entropy: 0, TopDomain: "d1", Concentration: 1},
		{Feature: "menu, buttons", Ubiquity: 1.0 / 3, Occurrences: 1, Entropy: 0.91829583, TopDomain: "d2", Concentration: 2.0 / 3},
	}

	var buf bytes.Buffer
	if err := WriteFeatureMetrics(&buf, records); err != nil {
		t.Fatalf("WriteFeatureMetrics() error = %v", err)
	}

	want := [][]string{
		{"Feature", "Ubiquity", "Occurrences", "Entropy", "Top_Domain", "Domain_Concentration"},
		{"greeting", "1.000", "3", "0.000", "d1", "1.000"},
		{"menu, buttons", "0.333", "1", "0.918", "d2", "0.667"},
	}
	got := readCSV(t, buf.Bytes())
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d", len(got), len(want))
	}
	for i := range want {
		if strings.Join(got[i], "|") != strings.Join(want[i], "|") {
			t.Errorf("row %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestWriteClusterProfile(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteClusterProfile(&buf, testProfile(t)); err != nil {
		t.Fatalf("WriteClusterProfile() error = %v", err)
	}

	want := [][]string{
		{"Cluster", "Feature", "Cluster_Presence", "Global_Presence", "Diff_From_Global"},
		{"0", "x", "1.000", "0.500", "0.500"},
		{"0", "y", "1.000", "0.750", "0.250"},
		{"0", "z", "0.000", "0.500", "-0.500"},
		{"1", "x", "0.000", "0.500", "-0.500"},
		{"1", "y", "0.500", "0.750", "-0.250"},
		{"1", "z", "1.000", "0.500", "0.500"},
	}
	got := readCSV(t, buf.Bytes())
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d", len(got), len(want))
	}
	for i := range want {
		if strings.Join(got[i], "|") != strings.Join(want[i], "|") {
			t.Errorf("row %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRound3NoNegativeZero(t *testing.T) {
	if got := round3(-0.0001); got != "0.000" {
		t.Errorf("round3(-0.0001) = %q", got)
	}
	if got := round3(-0.25); got != "-0.250" {
		t.Errorf("round3(-0.25) = %q", got)
	}
}

func TestWriteDendrogram(t *testing.T) {
	dg := &algorithms.Dendrogram{
		N: 3,
		Merges: []algorithms.Merge{
			{A: 0, B: 1, Distance: 0.2, Size: 2},
			{A: 2, B: 3, Distance: 0.8, Size: 3},
		},
	}

	var buf bytes.Buffer
	if err := WriteDendrogram(&buf, dg, []string{"a", "b", "c"}); err != nil {
		t.Fatalf("WriteDendrogram() error = %v", err)
	}

	var root DendrogramNode
	if err := json.Unmarshal(buf.Bytes(), &root); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if root.Size != 3 || root.Distance != 0.8 || len(root.Children) != 2 {
		t.Fatalf("root = %+v", root)
	}
	if root.Children[0].Name != "c" {
		t.Errorf("first child = %+v, want leaf c", root.Children[0])
	}
	inner := root.Children[1]
	if inner.Distance != 0.2 || len(inner.Children) != 2 || inner.Children[0].Name != "a" || inner.Children[1].Name != "b" {
		t.Errorf("inner = %+v", inner)
	}
}

func TestDendrogramTreeErrors(t *testing.T) {
	if _, err := DendrogramTree(nil, nil); err == nil {
		t.Error("expected error for nil dendrogram")
	}
	dg := &algorithms.Dendrogram{N: 2, Merges: []algorithms.Merge{{A: 0, B: 1, Distance: 1, Size: 2}}}
	if _, err := DendrogramTree(dg, []string{"only-one"}); err == nil {
		t.Error("expected error for name count mismatch")
	}
}

func TestSingleObservationDendrogram(t *testing.T) {
	tree, err := DendrogramTree(&algorithms.Dendrogram{N: 1}, []string{"solo"})
	if err != nil {
		t.Fatalf("DendrogramTree() error = %v", err)
	}
	if tree.Name != "solo" || len(tree.Children) != 0 {
		t.Errorf("tree = %+v", tree)
	}
}

func TestFeatureSummary(t *testing.T) {
	records := []stats.FeatureStats{
		{Feature: "everywhere", Ubiquity: 1, Occurrences: 4, Entropy: 1.5, TopDomain: "d1", Concentration: 0.5},
		{Feature: "banking_only", Ubiquity: 0.25, Occurrences: 1, Entropy: 0, TopDomain: "d2", Concentration: 1},
	}
	out := FeatureSummary(records)
	for _, want := range []string{"Top Universal Features", "everywhere", "Top Domain Specific Features", "banking_only"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestClusterSummary(t *testing.T) {
	out := ClusterSummary(testProfile(t))
	for _, want := range []string{"Cluster 0 [2]", "Cluster 1 [2]", "a, b", "c, d", "Top distinguishing features", "Most common features"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestExplanationSummary(t *testing.T) {
	inc := matrix.FromSets(map[string][]string{
		"a": {"x"},
		"b": {"x"},
		"c": {"z"},
	}, nil)
	e, err := characterize.Explain(inc, map[string]int{"a": 0, "b": 0, "c": 1}, 0)
	if err != nil {
		t.Fatalf("Explain() error = %v", err)
	}
	out := ExplanationSummary(e)
	for _, want := range []string{"Decision Tree", "x <= 0.50", "IF x present THEN cluster 0"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
