package engine

import (
	"errors"
	"math"

	"github.com/derajoxford/stratagem-server-sub002/internal/config"
	"github.com/derajoxford/stratagem-server-sub002/internal/game"
)

var (
	// ErrInvalidAttackType is returned when the attack type has no
	// configured outcome table.
	ErrInvalidAttackType = errors.New("invalid attack type")
	// ErrInvalidRoll is returned when the caller-supplied roll lies outside
	// the attack type's configured bracket domain. Out-of-domain rolls are
	// never silently clamped.
	ErrInvalidRoll = errors.New("roll outside configured bracket domain")
)

// Outcome is the result of resolving one attack. FinalDamage is the value
// the war state machine subtracts from the defending side's resistance.
type Outcome struct {
	OutcomeName   string  `json:"outcome_name"`
	RatioCategory string  `json:"ratio_category"`
	AdjustedRoll  int     `json:"adjusted_roll"`
	Multiplier    float64 `json:"multiplier"`
	RawDamage     int     `json:"raw_damage"`
	FinalDamage   int     `json:"final_damage"`
}

// RatioCategory buckets the attacker/defender power ratio. A defender with
// zero power is an overwhelming advantage so the ratio is never computed
// against zero.
func RatioCategory(attackerPower, defenderPower float64) string {
	if defenderPower <= 0 {
		return config.RatioOverwhelmingAdvantage
	}
	r := attackerPower / defenderPower
	switch {
	case r < 0.25:
		return config.RatioSeverelyOutgunned
	case r < 0.5:
		return config.RatioSignificantlyOutgunned
	case r < 0.9:
		return config.RatioSlightlyOutgunned
	case r <= 1.1:
		return config.RatioEvenMatch
	case r <= 2.0:
		return config.RatioSlightAdvantage
	case r <= 4.0:
		return config.RatioSignificantAdvantage
	default:
		return config.RatioOverwhelmingAdvantage
	}
}

// Resolve maps an attack to an outcome bracket and a capped damage amount.
// It is a pure function: the same (attackType, attackerPower, defenderPower,
// roll) tuple against the same settings always yields the same outcome,
// which keeps battle logs replayable and tests free of randomness.
func Resolve(w *config.WarSettings, at game.AttackType, attackerPower, defenderPower float64, roll int) (*Outcome, error) {
	levels, ok := w.SuccessLevels[at]
	if !ok || len(levels) == 0 {
		return nil, ErrInvalidAttackType
	}
	domainMin, domainMax, _ := w.RollDomain(at)
	if roll < domainMin || roll > domainMax {
		return nil, ErrInvalidRoll
	}

	category := RatioCategory(attackerPower, defenderPower)
	adjusted := roll + w.PowerRatioModifiers[category]
	// Modifiers may push a valid roll past the domain edges; clamp back in
	// so bracket selection stays total.
	if adjusted < domainMin {
		adjusted = domainMin
	}
	if adjusted > domainMax {
		adjusted = domainMax
	}

	var level *config.SuccessLevel
	for i := range levels {
		if adjusted >= levels[i].MinRoll && adjusted <= levels[i].MaxRoll {
			level = &levels[i]
			break
		}
	}
	if level == nil {
		// Brackets are validated gap-free at config load, so an adjusted
		// roll inside the domain always lands in one.
		return nil, ErrInvalidRoll
	}

	raw := int(math.Round(float64(w.BaseResistanceDamage[at]) * level.Multiplier))
	if limit, ok := w.MaxResistanceDamagePerAttack[at]; ok && raw > limit {
		raw = limit
	}
	final := raw
	if limit, ok := w.FinalResistanceDamageCaps[at]; ok && final > limit {
		final = limit
	}

	return &Outcome{
		OutcomeName:   level.Name,
		RatioCategory: category,
		AdjustedRoll:  adjusted,
		Multiplier:    level.Multiplier,
		RawDamage:     raw,
		FinalDamage:   final,
	}, nil
}

// Power converts a set of unit counts into a single combat power figure
// using the configured per-unit strengths.
func Power(m *game.Military, strengths map[string]float64) float64 {
	if m == nil {
		return 0
	}
	return float64(m.Soldiers)*strengths["soldiers"] +
		float64(m.Tanks)*strengths["tanks"] +
		float64(m.Aircraft)*strengths["aircraft"] +
		float64(m.Ships)*strengths["ships"] +
		float64(m.Missiles)*strengths["missiles"]
}

// EstimateLosses derives deterministic unit losses for a battle log entry.
// Better outcomes cost the attacker less and the defender more; the attacker
// always loses at least one committed unit when any units were committed.
func EstimateLosses(committedUnits int, multiplier float64) (attackerLosses, defenderLosses int) {
	if committedUnits <= 0 {
		return 0, 0
	}
	attackerRate := 0.20 - 0.04*multiplier
	if attackerRate < 0.02 {
		attackerRate = 0.02
	}
	defenderRate := 0.05 + 0.06*multiplier
	attackerLosses = int(math.Ceil(float64(committedUnits) * attackerRate))
	defenderLosses = int(math.Floor(float64(committedUnits) * defenderRate))
	return attackerLosses, defenderLosses
}
