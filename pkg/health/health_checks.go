package health

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/dd0wney/cluso-botgraph/pkg/graph"
)

// SimpleCheck creates a check that always reports healthy
func SimpleCheck(name string) CheckFunc {
	return func(context.Context) Check {
		return Check{Name: name, Status: StatusHealthy, LastChecked: time.Now()}
	}
}

// SnapshotCheck loads the graph snapshot. It is unhealthy when the snapshot
// cannot be loaded and degraded when it holds no bots.
func SnapshotCheck(location string, load func(ctx context.Context) (*graph.Graph, error)) CheckFunc {
	return func(ctx context.Context) Check {
		check := Check{
			Name:    "snapshot",
			Details: map[string]any{"location": location},
		}

		g, err := load(ctx)
		if err != nil {
			check.Status = StatusUnhealthy
			check.Message = err.Error()
			return check
		}

		stats := g.Stats()
		bots := stats.ByType[graph.NodeBot]
		check.Details["nodes"] = stats.Nodes
		check.Details["edges"] = stats.Edges
		check.Details["bots"] = bots
		check.Details["features"] = stats.ByType[graph.NodeFeature]

		if bots == 0 {
			check.Status = StatusDegraded
			check.Message = "Snapshot has no bots"
		} else {
			check.Status = StatusHealthy
			check.Message = fmt.Sprintf("%d bots loaded", bots)
		}
		return check
	}
}

// MemoryCheck reports degraded when allocated heap exceeds 90% of the
// memory obtained from the OS.
func MemoryCheck() CheckFunc {
	return memoryCheck(func() (alloc, sys uint64) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		return m.Alloc, m.Sys
	})
}

func memoryCheck(getUsage func() (alloc, sys uint64)) CheckFunc {
	return func(context.Context) Check {
		check := Check{
			Name:    "memory",
			Details: make(map[string]any),
		}

		alloc, sys := getUsage()
		check.Details["alloc_bytes"] = alloc
		check.Details["sys_bytes"] = sys

		if sys > 0 && float64(alloc)/float64(sys) > 0.9 {
			check.Status = StatusDegraded
			check.Message = "High memory usage"
		} else {
			check.Status = StatusHealthy
			check.Message = "Memory usage normal"
		}
		return check
	}
}
