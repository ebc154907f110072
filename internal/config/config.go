package config

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/derajoxford/stratagem-server-sub002/internal/game"
)

// Power-ratio category keys used in war_settings.power_ratio_modifiers.
const (
	RatioSeverelyOutgunned      = "severely_outgunned"
	RatioSignificantlyOutgunned = "significantly_outgunned"
	RatioSlightlyOutgunned      = "slightly_outgunned"
	RatioEvenMatch              = "even_match"
	RatioSlightAdvantage        = "slight_advantage"
	RatioSignificantAdvantage   = "significant_advantage"
	RatioOverwhelmingAdvantage  = "overwhelming_advantage"
)

// RatioCategories lists every power-ratio category key.
var RatioCategories = []string{
	RatioSeverelyOutgunned,
	RatioSignificantlyOutgunned,
	RatioSlightlyOutgunned,
	RatioEvenMatch,
	RatioSlightAdvantage,
	RatioSignificantAdvantage,
	RatioOverwhelmingAdvantage,
}

// SuccessLevel is one outcome bracket for an attack type. Brackets are
// matched against the modifier-adjusted roll; MinRoll and MaxRoll are both
// inclusive.
type SuccessLevel struct {
	Name       string  `json:"name"`
	MinRoll    int     `json:"min_roll"`
	MaxRoll    int     `json:"max_roll"`
	Multiplier float64 `json:"multiplier"`
}

// WarSettings holds every tunable the war state machine and combat resolver
// read. All maps are keyed by attack type except PowerRatioModifiers and
// UnitCombatStrengths.
type WarSettings struct {
	TacticalPointsPerTurn    int `json:"tactical_points_per_turn"`
	TacticalPointsOnWarStart int `json:"tactical_points_on_war_start"`
	MaxTacticalPoints        int `json:"max_tactical_points"`
	ResistanceDecayPerTurn   int `json:"resistance_decay_per_turn"`
	StartingResistance       int `json:"starting_resistance"`

	ActionPointCosts     map[game.AttackType]int            `json:"action_point_costs"`
	UnitCombatStrengths  map[string]float64                 `json:"unit_combat_strengths"`
	PowerRatioModifiers  map[string]int                     `json:"power_ratio_modifiers"`
	SuccessLevels        map[game.AttackType][]SuccessLevel `json:"success_levels"`
	BaseResistanceDamage map[game.AttackType]int            `json:"base_resistance_damage"`

	MaxResistanceDamagePerAttack map[game.AttackType]int `json:"max_resistance_damage_per_attack"`
	FinalResistanceDamageCaps    map[game.AttackType]int `json:"final_resistance_damage_caps"`
}

// EconomySettings drives the per-turn treasury update. The model is
// intentionally simple: a flat income with a percentage penalty while
// blockaded.
type EconomySettings struct {
	BaseIncomePerTurn      int64 `json:"base_income_per_turn"`
	BlockadePenaltyPercent int   `json:"blockade_penalty_percent"`
}

// GameConfig is the full rule set, persisted as a single JSON blob in the
// game_configs table. Missing or malformed payloads are fatal to a tick.
type GameConfig struct {
	War     WarSettings     `json:"war_settings"`
	Economy EconomySettings `json:"economy_settings"`
}

// RollDomain returns the inclusive roll bounds covered by the attack type's
// brackets. ok is false when the attack type has no brackets configured.
func (w *WarSettings) RollDomain(at game.AttackType) (min, max int, ok bool) {
	levels := w.SuccessLevels[at]
	if len(levels) == 0 {
		return 0, 0, false
	}
	return levels[0].MinRoll, levels[len(levels)-1].MaxRoll, true
}

// Parse decodes and validates a serialized GameConfig payload. Optional
// fields receive explicit defaults before validation so a partial config
// stays usable while missing-field behavior remains testable.
func Parse(payload []byte) (*GameConfig, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("game config payload is empty")
	}
	cfg := Default()
	if err := json.Unmarshal(payload, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse game config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field consistency. Success-level brackets must be
// ascending, non-overlapping and gap-free so bracket selection is total over
// the domain.
func (c *GameConfig) Validate() error {
	w := &c.War
	if w.MaxTacticalPoints <= 0 {
		return fmt.Errorf("war_settings: max_tactical_points must be positive")
	}
	if w.TacticalPointsPerTurn < 0 || w.TacticalPointsOnWarStart < 0 {
		return fmt.Errorf("war_settings: tactical point amounts must not be negative")
	}
	if w.TacticalPointsOnWarStart > w.MaxTacticalPoints {
		return fmt.Errorf("war_settings: tactical_points_on_war_start exceeds max_tactical_points")
	}
	if w.ResistanceDecayPerTurn < 0 {
		return fmt.Errorf("war_settings: resistance_decay_per_turn must not be negative")
	}
	if w.StartingResistance <= 0 {
		return fmt.Errorf("war_settings: starting_resistance must be positive")
	}
	for _, at := range game.AttackTypes {
		cost, ok := w.ActionPointCosts[at]
		if !ok {
			return fmt.Errorf("war_settings: missing action_point_costs entry for %q", at)
		}
		if cost <= 0 {
			return fmt.Errorf("war_settings: action point cost for %q must be positive", at)
		}
		if w.BaseResistanceDamage[at] <= 0 {
			return fmt.Errorf("war_settings: missing base_resistance_damage entry for %q", at)
		}
		levels := w.SuccessLevels[at]
		if len(levels) == 0 {
			return fmt.Errorf("war_settings: missing success_levels entry for %q", at)
		}
		sorted := sort.SliceIsSorted(levels, func(i, j int) bool { return levels[i].MinRoll < levels[j].MinRoll })
		if !sorted {
			return fmt.Errorf("war_settings: success_levels for %q are not in ascending roll order", at)
		}
		for i, lvl := range levels {
			if lvl.Name == "" {
				return fmt.Errorf("war_settings: success_levels[%d] for %q has no name", i, at)
			}
			if lvl.MinRoll > lvl.MaxRoll {
				return fmt.Errorf("war_settings: success_levels[%d] for %q has min_roll > max_roll", i, at)
			}
			if lvl.Multiplier < 0 {
				return fmt.Errorf("war_settings: success_levels[%d] for %q has a negative multiplier", i, at)
			}
			if i > 0 && lvl.MinRoll != levels[i-1].MaxRoll+1 {
				return fmt.Errorf("war_settings: success_levels for %q leave a gap or overlap at roll %d", at, lvl.MinRoll)
			}
		}
	}
	for _, cat := range RatioCategories {
		if _, ok := w.PowerRatioModifiers[cat]; !ok {
			return fmt.Errorf("war_settings: missing power_ratio_modifiers entry for %q", cat)
		}
	}
	if c.Economy.BlockadePenaltyPercent < 0 || c.Economy.BlockadePenaltyPercent > 100 {
		return fmt.Errorf("economy_settings: blockade_penalty_percent must be within [0,100]")
	}
	return nil
}

// standardLevels is the default four-bracket outcome table shared by the
// conventional attack types. Rolls run 1..200.
func standardLevels() []SuccessLevel {
	return []SuccessLevel{
		{Name: "Utter Failure", MinRoll: 1, MaxRoll: 60, Multiplier: 0},
		{Name: "Pyrrhic Victory", MinRoll: 61, MaxRoll: 110, Multiplier: 0.5},
		{Name: "Moderate Success", MinRoll: 111, MaxRoll: 160, Multiplier: 1.0},
		{Name: "Immense Triumph", MinRoll: 161, MaxRoll: 200, Multiplier: 1.5},
	}
}

// Default returns the built-in rule set. It is used to seed the database on
// first run and as the base layer under partial operator configs.
func Default() *GameConfig {
	return &GameConfig{
		War: WarSettings{
			TacticalPointsPerTurn:    2,
			TacticalPointsOnWarStart: 4,
			MaxTacticalPoints:        12,
			ResistanceDecayPerTurn:   2,
			StartingResistance:       100,
			ActionPointCosts: map[game.AttackType]int{
				game.AttackGroundAssault:    1,
				game.AttackStrategicBombing: 2,
				game.AttackNavalStrike:      2,
				game.AttackAirSuperiority:   2,
				game.AttackNavalBlockade:    3,
				game.AttackNuclearStrike:    5,
			},
			UnitCombatStrengths: map[string]float64{
				"soldiers": 1,
				"tanks":    10,
				"aircraft": 15,
				"ships":    20,
				"missiles": 30,
			},
			PowerRatioModifiers: map[string]int{
				RatioSeverelyOutgunned:      -40,
				RatioSignificantlyOutgunned: -25,
				RatioSlightlyOutgunned:      -10,
				RatioEvenMatch:              0,
				RatioSlightAdvantage:        10,
				RatioSignificantAdvantage:   25,
				RatioOverwhelmingAdvantage:  40,
			},
			SuccessLevels: map[game.AttackType][]SuccessLevel{
				game.AttackGroundAssault:    standardLevels(),
				game.AttackStrategicBombing: standardLevels(),
				game.AttackNavalStrike:      standardLevels(),
				game.AttackAirSuperiority:   standardLevels(),
				game.AttackNavalBlockade: {
					{Name: "Broken Blockade", MinRoll: 1, MaxRoll: 80, Multiplier: 0},
					{Name: "Contested Waters", MinRoll: 81, MaxRoll: 140, Multiplier: 0.5},
					{Name: "Sealed Harbors", MinRoll: 141, MaxRoll: 200, Multiplier: 1.0},
				},
				game.AttackNuclearStrike: {
					{Name: "Fizzle", MinRoll: 1, MaxRoll: 60, Multiplier: 0},
					{Name: "Partial Yield", MinRoll: 61, MaxRoll: 120, Multiplier: 1.0},
					{Name: "Direct Hit", MinRoll: 121, MaxRoll: 159, Multiplier: 2.5},
					{Name: "Apocalyptic Detonation", MinRoll: 160, MaxRoll: 200, Multiplier: 5.0},
				},
			},
			BaseResistanceDamage: map[game.AttackType]int{
				game.AttackGroundAssault:    10,
				game.AttackStrategicBombing: 8,
				game.AttackNavalStrike:      8,
				game.AttackAirSuperiority:   6,
				game.AttackNavalBlockade:    4,
				game.AttackNuclearStrike:    40,
			},
			MaxResistanceDamagePerAttack: map[game.AttackType]int{
				game.AttackGroundAssault:    12,
				game.AttackStrategicBombing: 10,
				game.AttackNavalStrike:      10,
				game.AttackAirSuperiority:   10,
				game.AttackNavalBlockade:    6,
				game.AttackNuclearStrike:    200,
			},
			FinalResistanceDamageCaps: map[game.AttackType]int{
				game.AttackGroundAssault:    10,
				game.AttackStrategicBombing: 10,
				game.AttackNavalStrike:      10,
				game.AttackAirSuperiority:   10,
				game.AttackNavalBlockade:    6,
				game.AttackNuclearStrike:    75,
			},
		},
		Economy: EconomySettings{
			BaseIncomePerTurn:      25000,
			BlockadePenaltyPercent: 30,
		},
	}
}

// Marshal serializes the config for storage as a game_configs payload.
func (c *GameConfig) Marshal() ([]byte, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize game config: %w", err)
	}
	return b, nil
}
