package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dd0wney/cluso-botgraph/pkg/algorithms"
	"github.com/dd0wney/cluso-botgraph/pkg/characterize"
	"github.com/dd0wney/cluso-botgraph/pkg/clustering"
	"github.com/dd0wney/cluso-botgraph/pkg/logging"
	"github.com/dd0wney/cluso-botgraph/pkg/matrix"
	"github.com/dd0wney/cluso-botgraph/pkg/stats"
	"github.com/dd0wney/cluso-botgraph/pkg/validation"
)

// DefaultTopFeatures is how many features /profile lists per cluster.
const DefaultTopFeatures = 10

// errBadRequest marks query parameter failures answered with 400.
var errBadRequest = errors.New("bad request")

// ClusterSummary describes one cluster in a profile response.
type ClusterSummary struct {
	Label             int                            `json:"label"`
	Size              int                            `json:"size"`
	Members           []string                       `json:"members"`
	TopDistinguishing []characterize.FeaturePresence `json:"topDistinguishing"`
	MostCommon        []characterize.FeaturePresence `json:"mostCommon"`
}

// ProfileResponse is the body of GET /profile.
type ProfileResponse struct {
	Algorithm string            `json:"algorithm"`
	K         int               `json:"k"`
	Clusters  []ClusterSummary  `json:"clusters"`
	Rules     []algorithms.Rule `json:"rules"`
	Tree      string            `json:"tree"`
	Accuracy  float64           `json:"accuracy"`
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	data, err := s.store.Raw(r.Context())
	if err != nil {
		s.logger.Warn("graph snapshot unavailable", logging.Path(s.store.Location()), logging.Error(err))
		writeError(w, http.StatusOK, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleCluster runs one strategy on the current snapshot and returns the
// node id to label mapping. Strategy and snapshot failures are reported as
// {"error": ...} with status 200; a malformed k is a 400.
func (s *Server) handleCluster(w http.ResponseWriter, r *http.Request) {
	req, err := parseClusterRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	alg, err := s.algorithm(req.Algorithm)
	if err != nil {
		writeError(w, http.StatusOK, err)
		return
	}

	g, err := s.loadGraph(r.Context())
	if err != nil {
		writeError(w, http.StatusOK, err)
		return
	}

	res, err := s.cluster(g, alg, req.K)
	if err != nil {
		writeError(w, http.StatusOK, err)
		return
	}
	writeJSON(w, http.StatusOK, res.Labels)
}

func (s *Server) handleFeatures(w http.ResponseWriter, r *http.Request) {
	g, err := s.loadGraph(r.Context())
	if err != nil {
		writeError(w, http.StatusOK, err)
		return
	}
	records := stats.SortForReport(stats.Compute(matrix.Build(g)))
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	req, err := parseClusterRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	top := DefaultTopFeatures
	if v := r.URL.Query().Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("%w: top must be a positive integer", errBadRequest))
			return
		}
		top = n
	}

	alg, err := s.algorithm(req.Algorithm)
	if err != nil {
		writeError(w, http.StatusOK, err)
		return
	}
	g, err := s.loadGraph(r.Context())
	if err != nil {
		writeError(w, http.StatusOK, err)
		return
	}
	res, err := s.cluster(g, alg, req.K)
	if err != nil {
		writeError(w, http.StatusOK, err)
		return
	}

	inc := matrix.Build(g)
	labels := res.BotLabels()
	profile, err := characterize.Profile(inc, labels)
	if err != nil {
		writeError(w, http.StatusOK, err)
		return
	}
	explanation, err := characterize.Explain(inc, labels, s.cfg.Clustering.TreeDepth)
	if err != nil {
		writeError(w, http.StatusOK, err)
		return
	}

	resp := ProfileResponse{
		Algorithm: alg.String(),
		K:         res.Clusters(),
		Clusters:  make([]ClusterSummary, len(profile.Clusters)),
		Rules:     explanation.Rules,
		Tree:      explanation.Text,
		Accuracy:  explanation.Accuracy,
	}
	for i, c := range profile.Clusters {
		resp.Clusters[i] = ClusterSummary{
			Label:             c.Label,
			Size:              c.Size,
			Members:           c.Members,
			TopDistinguishing: profile.TopDistinguishing(c.Label, top),
			MostCommon:        profile.MostCommon(c.Label, top),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// algorithm resolves a requested strategy name, falling back to the
// configured default.
func (s *Server) algorithm(name string) (clustering.Algorithm, error) {
	if name == "" {
		return s.defaultAlg, nil
	}
	return clustering.ParseAlgorithm(name)
}

func parseClusterRequest(r *http.Request) (*validation.ClusterRequest, error) {
	q := r.URL.Query()
	req := &validation.ClusterRequest{Algorithm: q.Get("algorithm")}
	if v := q.Get("k"); v != "" {
		k, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: k must be an integer", errBadRequest)
		}
		if k == 0 {
			// zero would read as unset
			return nil, fmt.Errorf("%w: k must be between %d and %d", errBadRequest, validation.MinClusters, validation.MaxClusters)
		}
		req.K = k
	}
	if err := validation.ValidateClusterRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return req, nil
}
