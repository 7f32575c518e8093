package policy_test

import (
	"testing"

	"github.com/abdidvp/kraftgate/internal/domain"
	"github.com/abdidvp/kraftgate/internal/domain/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresets_Valid(t *testing.T) {
	for _, name := range []string{domain.PresetStrict, domain.PresetStandard, domain.PresetLenient} {
		p, err := policy.Preset(name)
		require.NoError(t, err)
		assert.NoError(t, p.Validate(), name)
		assert.Equal(t, name, p.Name)
	}
}

func TestPresets_CarryOnlyFieldsTheirModeReads(t *testing.T) {
	lenient := policy.Lenient()
	assert.Equal(t, domain.ModeAnyMustPass, lenient.Mode)
	assert.Zero(t, lenient.Threshold)

	strict := policy.Strict()
	assert.Equal(t, domain.ModeAllMustPass, strict.Mode)
	assert.False(t, strict.FailOnWarn)
}

func TestPreset_Unknown(t *testing.T) {
	_, err := policy.Preset("paranoid")
	assert.True(t, domain.IsConfigError(err))
	assert.ErrorIs(t, err, domain.ErrInvalidPolicy)
}

func TestFromConfig_PresetWithOverrides(t *testing.T) {
	threshold := 85.0
	p, err := policy.FromConfig(domain.PolicyConfig{
		Preset:        domain.PresetStandard,
		Threshold:     &threshold,
		RequiredGates: []string{"security-boundaries"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ModeWeighted, p.Mode)
	assert.Equal(t, 85.0, p.Threshold)
	assert.Equal(t, []domain.GateID{domain.GateSecurityBoundaries}, p.RequiredGates)
}

func TestFromConfig_Custom(t *testing.T) {
	p, err := policy.FromConfig(domain.PolicyConfig{
		Mode:    domain.ModeWeighted,
		Weights: map[string]float64{"pattern-compliance": 2, "test-coverage": 1},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PresetCustom, p.Name)
	assert.Equal(t, 2.0, p.Weights[domain.GatePatternCompliance])
}

func TestFromConfig_Malformed(t *testing.T) {
	tests := []struct {
		name string
		cfg  domain.PolicyConfig
	}{
		{"custom without mode", domain.PolicyConfig{Preset: domain.PresetCustom}},
		{"weighted without weights", domain.PolicyConfig{Mode: domain.ModeWeighted}},
		{"unknown gate", domain.PolicyConfig{Mode: domain.ModeAllMustPass, RequiredGates: []string{"lint"}}},
		{"unknown metric", domain.PolicyConfig{Mode: domain.ModeThreshold, ThresholdMetric: "p95"}},
		{"unknown mode", domain.PolicyConfig{Mode: "majority"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := policy.FromConfig(tt.cfg)
			require.Error(t, err)
			assert.True(t, domain.IsConfigError(err))
		})
	}
}
