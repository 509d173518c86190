package characterize

import (
	"fmt"

	"github.com/dd0wney/cluso-botgraph/pkg/algorithms"
	"github.com/dd0wney/cluso-botgraph/pkg/matrix"
)

// DefaultTreeDepth bounds the explanation tree.
const DefaultTreeDepth = 4

// Explanation is a decision tree that approximates a clustering from the
// feature columns alone.
type Explanation struct {
	Tree  *algorithms.DecisionTree `json:"-"`
	Rules []algorithms.Rule        `json:"rules"`
	Text  string                   `json:"text"`
	// Accuracy is the share of labelled bots the tree classifies correctly.
	Accuracy float64 `json:"accuracy"`
}

// Explain fits a CART tree predicting each labelled bot's cluster from its
// features. maxDepth <= 0 selects DefaultTreeDepth.
func Explain(inc *matrix.Incidence, labels map[string]int, maxDepth int) (*Explanation, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultTreeDepth
	}
	var (
		x [][]float64
		y []int
	)
	for i, b := range inc.Bots {
		l, ok := labels[b]
		if !ok {
			continue
		}
		x = append(x, inc.Row(i))
		y = append(y, l)
	}
	if len(x) == 0 {
		return nil, ErrNoLabels
	}

	tree, err := algorithms.FitDecisionTree(x, y, inc.Features, maxDepth)
	if err != nil {
		return nil, fmt.Errorf("explain clustering: %w", err)
	}
	correct := 0
	for i, row := range x {
		if tree.Predict(row) == y[i] {
			correct++
		}
	}
	return &Explanation{
		Tree:     tree,
		Rules:    tree.Rules(),
		Text:     tree.Text(),
		Accuracy: float64(correct) / float64(len(x)),
	}, nil
}
