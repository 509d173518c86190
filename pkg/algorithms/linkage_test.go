package algorithms

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func twoPairs() *mat.SymDense {
	return mat.NewSymDense(4, []float64{
		0, 0.1, 0.9, 0.9,
		0.1, 0, 0.9, 0.9,
		0.9, 0.9, 0, 0.2,
		0.9, 0.9, 0.2, 0,
	})
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAverageLinkageMerges(t *testing.T) {
	dg, err := AverageLinkage(twoPairs())
	if err != nil {
		t.Fatalf("AverageLinkage: %v", err)
	}
	want := []Merge{
		{A: 0, B: 1, Distance: 0.1, Size: 2},
		{A: 2, B: 3, Distance: 0.2, Size: 2},
		{A: 4, B: 5, Distance: 0.9, Size: 4},
	}
	if len(dg.Merges) != len(want) {
		t.Fatalf("merges = %+v", dg.Merges)
	}
	for i := range want {
		got := dg.Merges[i]
		if got.A != want[i].A || got.B != want[i].B || got.Size != want[i].Size || math.Abs(got.Distance-want[i].Distance) > 1e-12 {
			t.Errorf("merge %d = %+v, want %+v", i, got, want[i])
		}
	}
	if !equalInts(dg.Leaves(), []int{0, 1, 2, 3}) {
		t.Errorf("leaves = %v", dg.Leaves())
	}
	if math.Abs(dg.Height()-0.9) > 1e-12 {
		t.Errorf("height = %v", dg.Height())
	}
}

func TestAverageLinkageUsesMeanDistance(t *testing.T) {
	d := mat.NewSymDense(3, []float64{
		0, 1, 4,
		1, 0, 2,
		4, 2, 0,
	})
	dg, err := AverageLinkage(d)
	if err != nil {
		t.Fatal(err)
	}
	if got := dg.Merges[1].Distance; math.Abs(got-3) > 1e-12 {
		t.Errorf("UPGMA distance = %v, want (4+2)/2", got)
	}
}

func TestCuts(t *testing.T) {
	dg, err := AverageLinkage(twoPairs())
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		cut  func(int) ([]int, error)
		k    int
		want []int
	}{
		{"maxclust 1", dg.CutMaxClusters, 1, []int{0, 0, 0, 0}},
		{"maxclust 2", dg.CutMaxClusters, 2, []int{0, 0, 1, 1}},
		{"maxclust 3", dg.CutMaxClusters, 3, []int{0, 0, 1, 2}},
		{"maxclust above n", dg.CutMaxClusters, 9, []int{0, 1, 2, 3}},
		{"exact 3", dg.CutClusters, 3, []int{0, 0, 1, 2}},
		{"exact 4", dg.CutClusters, 4, []int{0, 1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cut(tt.k)
			if err != nil {
				t.Fatal(err)
			}
			if !equalInts(got, tt.want) {
				t.Errorf("labels = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := dg.CutClusters(5); !errors.Is(err, ErrInvalidClusters) {
		t.Errorf("expected ErrInvalidClusters, got %v", err)
	}
	if _, err := dg.CutMaxClusters(0); !errors.Is(err, ErrInvalidClusters) {
		t.Errorf("expected ErrInvalidClusters, got %v", err)
	}
}

func TestCutMaxClustersTiedHeights(t *testing.T) {
	d := mat.NewSymDense(3, []float64{
		0, 0.5, 0.5,
		0.5, 0, 0.5,
		0.5, 0.5, 0,
	})
	dg, err := AverageLinkage(d)
	if err != nil {
		t.Fatal(err)
	}
	got, _ := dg.CutMaxClusters(2)
	if CountClusters(got) != 1 {
		t.Errorf("merges tied at the cut height must apply together, got %v", got)
	}
	exact, _ := dg.CutClusters(2)
	if !equalInts(exact, []int{0, 0, 1}) {
		t.Errorf("exact cut = %v", exact)
	}
}

func TestAverageLinkageErrors(t *testing.T) {
	if _, err := AverageLinkage(nil); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
	d := mat.NewSymDense(2, []float64{0, math.NaN(), math.NaN(), 0})
	if _, err := AverageLinkage(d); !errors.Is(err, ErrNotFinite) {
		t.Errorf("expected ErrNotFinite, got %v", err)
	}
}

func TestSingleObservation(t *testing.T) {
	dg, err := AverageLinkage(mat.NewSymDense(1, []float64{0}))
	if err != nil {
		t.Fatal(err)
	}
	labels, _ := dg.CutMaxClusters(2)
	if !equalInts(labels, []int{0}) {
		t.Errorf("labels = %v", labels)
	}
	if !equalInts(dg.Leaves(), []int{0}) {
		t.Errorf("leaves = %v", dg.Leaves())
	}
}

func TestSilhouette(t *testing.T) {
	got, err := Silhouette(twoPairs(), []int{0, 0, 1, 1})
	if err != nil {
		t.Fatal(err)
	}
	want := (2*(0.8/0.9) + 2*(0.7/0.9)) / 4
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("silhouette = %v, want %v", got, want)
	}

	worse, err := Silhouette(twoPairs(), []int{0, 1, 0, 1})
	if err != nil {
		t.Fatal(err)
	}
	if worse >= got {
		t.Errorf("mixed partition scored %v >= %v", worse, got)
	}

	if _, err := Silhouette(twoPairs(), []int{0, 0, 0, 0}); !errors.Is(err, ErrInvalidClusters) {
		t.Errorf("single cluster: expected ErrInvalidClusters, got %v", err)
	}
	if _, err := Silhouette(twoPairs(), []int{0, 1, 2, 3}); !errors.Is(err, ErrInvalidClusters) {
		t.Errorf("all singletons: expected ErrInvalidClusters, got %v", err)
	}
}
