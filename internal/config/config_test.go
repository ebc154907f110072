package config

import (
	"testing"

	"github.com/derajoxford/stratagem-server-sub002/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	for _, at := range game.AttackTypes {
		min, max, ok := cfg.War.RollDomain(at)
		require.True(t, ok, "attack type %q has no brackets", at)
		assert.Equal(t, 1, min, "attack type %q", at)
		assert.Equal(t, 200, max, "attack type %q", at)
	}
}

func TestParse_RoundTripsDefault(t *testing.T) {
	payload, err := Default().Marshal()
	require.NoError(t, err)

	cfg, err := Parse(payload)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_EmptyPayload(t *testing.T) {
	_, err := Parse(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestParse_MalformedPayload(t *testing.T) {
	_, err := Parse([]byte("{not json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse game config")
}

func TestParse_PartialConfigMergesOverDefaults(t *testing.T) {
	payload := []byte(`{"economy_settings":{"base_income_per_turn":50000}}`)
	cfg, err := Parse(payload)
	require.NoError(t, err)

	assert.Equal(t, int64(50000), cfg.Economy.BaseIncomePerTurn)
	// Untouched sections keep their defaults.
	assert.Equal(t, 30, cfg.Economy.BlockadePenaltyPercent)
	assert.Equal(t, 12, cfg.War.MaxTacticalPoints)
	assert.Len(t, cfg.War.SuccessLevels[game.AttackNuclearStrike], 4)
}

func TestValidate_BracketGap(t *testing.T) {
	cfg := Default()
	cfg.War.SuccessLevels[game.AttackGroundAssault] = []SuccessLevel{
		{Name: "Low", MinRoll: 1, MaxRoll: 100, Multiplier: 0},
		{Name: "High", MinRoll: 102, MaxRoll: 200, Multiplier: 1},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gap or overlap")
}

func TestValidate_BracketOverlap(t *testing.T) {
	cfg := Default()
	cfg.War.SuccessLevels[game.AttackGroundAssault] = []SuccessLevel{
		{Name: "Low", MinRoll: 1, MaxRoll: 100, Multiplier: 0},
		{Name: "High", MinRoll: 90, MaxRoll: 200, Multiplier: 1},
	}
	require.Error(t, cfg.Validate())
}

func TestValidate_MissingActionPointCost(t *testing.T) {
	cfg := Default()
	delete(cfg.War.ActionPointCosts, game.AttackNuclearStrike)
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "action_point_costs")
}

func TestValidate_MissingRatioModifier(t *testing.T) {
	cfg := Default()
	delete(cfg.War.PowerRatioModifiers, RatioEvenMatch)
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "power_ratio_modifiers")
}

func TestValidate_StartExceedsMax(t *testing.T) {
	cfg := Default()
	cfg.War.TacticalPointsOnWarStart = cfg.War.MaxTacticalPoints + 1
	require.Error(t, cfg.Validate())
}

func TestValidate_BlockadePenaltyBounds(t *testing.T) {
	cfg := Default()
	cfg.Economy.BlockadePenaltyPercent = 101
	require.Error(t, cfg.Validate())
}
