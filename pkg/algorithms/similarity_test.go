package algorithms

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func set(ids ...int) map[int]bool {
	s := make(map[int]bool, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

func TestSimilarity(t *testing.T) {
	a, b := set(1, 2, 3), set(2, 3, 4, 5)
	tests := []struct {
		metric SimilarityMetric
		want   float64
	}{
		{SimilarityJaccard, 2.0 / 5.0},
		{SimilarityOverlap, 2.0 / 3.0},
		{SimilarityCosine, 2.0 / math.Sqrt(12)},
	}
	for _, tt := range tests {
		if got := Similarity(a, b, tt.metric); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("metric %d: got %v, want %v", tt.metric, got, tt.want)
		}
	}
	if Similarity(set(), b, SimilarityJaccard) != 0 {
		t.Error("empty set similarity should be 0")
	}
}

func TestJaccardDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b map[int]bool
		want float64
	}{
		{"both empty", set(), set(), 0},
		{"one empty", set(), set(1), 1},
		{"identical", set(1, 2), set(1, 2), 0},
		{"disjoint", set(1), set(2), 1},
		{"half", set(1, 2), set(2), 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JaccardDistance(tt.a, tt.b); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJaccardDistancesMatrix(t *testing.T) {
	d := JaccardDistances([]map[int]bool{set(0), set(0, 1), set()})
	if d.At(0, 0) != 0 || d.At(1, 1) != 0 {
		t.Error("diagonal must be zero")
	}
	if d.At(0, 1) != 0.5 || d.At(1, 0) != 0.5 {
		t.Errorf("d(0,1) = %v", d.At(0, 1))
	}
	if d.At(0, 2) != 1 {
		t.Errorf("d(0,2) = %v", d.At(0, 2))
	}
	if JaccardDistances(nil) != nil {
		t.Error("no sets should give nil matrix")
	}
}

func TestCosineSimilarities(t *testing.T) {
	x := mat.NewDense(3, 3, []float64{
		1, 1, 0,
		1, 0, 0,
		0, 0, 0,
	})
	s := CosineSimilarities(x)
	if math.Abs(s.At(0, 1)-1/math.Sqrt2) > 1e-12 {
		t.Errorf("s(0,1) = %v", s.At(0, 1))
	}
	if math.Abs(s.At(0, 0)-1) > 1e-12 {
		t.Errorf("s(0,0) = %v", s.At(0, 0))
	}
	if s.At(2, 2) != 0 || s.At(0, 2) != 0 {
		t.Error("zero rows must have similarity 0")
	}
}
