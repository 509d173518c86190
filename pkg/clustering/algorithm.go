// Package clustering groups bots into families with one of a closed set of
// strategies and spreads the bot labels to the features and domains they
// touch.
package clustering

import (
	"errors"
	"fmt"
	"strings"
)

// Algorithm enumerates the clustering strategies.
type Algorithm int

const (
	Spectral Algorithm = iota
	Agglomerative
	Hierarchical
	GreedyModularity
	DomainBaseline
)

var algorithmNames = [...]string{
	Spectral:         "spectral",
	Agglomerative:    "agglomerative",
	Hierarchical:     "hierarchical",
	GreedyModularity: "greedy_modularity",
	DomainBaseline:   "domain",
}

var algorithmTitles = [...]string{
	Spectral:         "Spectral",
	Agglomerative:    "Agglomerative",
	Hierarchical:     "Hierarchical",
	GreedyModularity: "Greedy modularity",
	DomainBaseline:   "Domain clustering",
}

// Algorithms lists every strategy in declaration order.
func Algorithms() []Algorithm {
	return []Algorithm{Spectral, Agglomerative, Hierarchical, GreedyModularity, DomainBaseline}
}

// Names lists the wire names of every strategy.
func Names() []string {
	out := make([]string, len(algorithmNames))
	copy(out, algorithmNames[:])
	return out
}

// String returns the wire name used in query strings and config files.
func (a Algorithm) String() string {
	if a < 0 || int(a) >= len(algorithmNames) {
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
	return algorithmNames[a]
}

// Title is the human-readable name used in error messages.
func (a Algorithm) Title() string {
	if a < 0 || int(a) >= len(algorithmTitles) {
		return a.String()
	}
	return algorithmTitles[a]
}

// ParseAlgorithm resolves a wire name. Matching ignores case and surrounding
// whitespace.
func ParseAlgorithm(name string) (Algorithm, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, n := range algorithmNames {
		if n == key {
			return Algorithm(i), nil
		}
	}
	return 0, &UnknownAlgorithmError{Name: name}
}

// MarshalText implements encoding.TextMarshaler.
func (a Algorithm) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Algorithm) UnmarshalText(text []byte) error {
	parsed, err := ParseAlgorithm(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ErrUnknownAlgorithm matches any UnknownAlgorithmError with errors.Is.
var ErrUnknownAlgorithm = errors.New("unknown algorithm")

// UnknownAlgorithmError reports a strategy name outside the enumeration.
type UnknownAlgorithmError struct {
	Name string
}

func (e *UnknownAlgorithmError) Error() string {
	return "Unknown algorithm: " + e.Name
}

func (e *UnknownAlgorithmError) Is(target error) bool {
	return target == ErrUnknownAlgorithm
}

// Error is a failure inside a strategy. No partial labels accompany it.
type Error struct {
	Algorithm Algorithm
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error: %v", e.Algorithm.Title(), e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
