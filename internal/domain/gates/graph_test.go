package gates_test

import (
	"testing"

	"github.com/abdidvp/kraftgate/internal/domain"
	"github.com/abdidvp/kraftgate/internal/domain/gates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultGraph_Order(t *testing.T) {
	order, err := gates.DefaultGraph().Order()
	require.NoError(t, err)
	assert.Equal(t, domain.AllGates, order)
}

func TestOrder_DeterministicTieBreak(t *testing.T) {
	g := gates.Graph{
		domain.GateRegression:        nil,
		domain.GatePatternCompliance: {domain.GateRegression},
		domain.GateTestCoverage:      nil,
	}
	for i := 0; i < 20; i++ {
		order, err := g.Order()
		require.NoError(t, err)
		assert.Equal(t, []domain.GateID{domain.GateTestCoverage, domain.GateRegression, domain.GatePatternCompliance}, order)
	}
}

func TestOrder_CycleIsConfigError(t *testing.T) {
	g := gates.Graph{
		domain.GatePatternCompliance:      {domain.GateSecurityBoundaries},
		domain.GateSecurityBoundaries:     {domain.GateConstraintVerification},
		domain.GateConstraintVerification: {domain.GatePatternCompliance},
		domain.GateTestCoverage:           nil,
	}
	_, err := g.Order()
	require.Error(t, err)
	assert.True(t, domain.IsConfigError(err))
	assert.ErrorIs(t, err, domain.ErrCyclicDependency)
}

func TestOrder_UndeclaredDependency(t *testing.T) {
	g := gates.Graph{domain.GateSecurityBoundaries: {domain.GatePatternCompliance}}
	_, err := g.Order()
	assert.True(t, domain.IsConfigError(err))
}
