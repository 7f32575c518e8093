package gates

import (
	"fmt"

	"github.com/abdidvp/kraftgate/internal/domain"
)

// Graph maps each gate to the gates it depends on.
type Graph map[domain.GateID][]domain.GateID

// DefaultGraph is the static dependency graph of the six gates.
func DefaultGraph() Graph {
	return Graph{
		domain.GatePatternCompliance:      nil,
		domain.GateConstraintVerification: {domain.GatePatternCompliance},
		domain.GateSecurityBoundaries:     {domain.GatePatternCompliance},
		domain.GateTestCoverage:           nil,
		domain.GateErrorHandling:          nil,
		domain.GateRegression:             nil,
	}
}

// Order returns the execution order of g using Kahn's algorithm. Ready
// gates are taken in AllGates declaration order so the result is
// deterministic. A cycle or a dependency on an undeclared gate is a
// configuration error.
func (g Graph) Order() ([]domain.GateID, error) {
	inDegree := make(map[domain.GateID]int, len(g))
	dependents := make(map[domain.GateID][]domain.GateID, len(g))
	for id, deps := range g {
		if !id.Valid() {
			return nil, &domain.ConfigError{Op: "gate graph", Err: fmt.Errorf("%w: %q", domain.ErrUnknownGate, id)}
		}
		for _, dep := range deps {
			if _, ok := g[dep]; !ok {
				return nil, &domain.ConfigError{
					Op:  "gate graph",
					Err: fmt.Errorf("%s depends on undeclared gate %q", id, dep),
				}
			}
			inDegree[id]++
			dependents[dep] = append(dependents[dep], id)
		}
	}

	order := make([]domain.GateID, 0, len(g))
	done := make(map[domain.GateID]bool, len(g))
	for len(order) < len(g) {
		progressed := false
		for _, id := range AllGatesIn(g) {
			if done[id] || inDegree[id] > 0 {
				continue
			}
			done[id] = true
			order = append(order, id)
			for _, d := range dependents[id] {
				inDegree[d]--
			}
			progressed = true
			break
		}
		if !progressed {
			var stuck []domain.GateID
			for _, id := range AllGatesIn(g) {
				if !done[id] {
					stuck = append(stuck, id)
				}
			}
			return nil, &domain.ConfigError{
				Op:  "gate graph",
				Err: fmt.Errorf("%w among %v", domain.ErrCyclicDependency, stuck),
			}
		}
	}
	return order, nil
}

// AllGatesIn returns the gates declared in g in static declaration order.
func AllGatesIn(g Graph) []domain.GateID {
	var out []domain.GateID
	for _, id := range domain.AllGates {
		if _, ok := g[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
