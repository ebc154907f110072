package service

import (
	"github.com/derajoxford/stratagem-server-sub002/internal/config"
	"github.com/derajoxford/stratagem-server-sub002/internal/game"
)

// AdvanceWarTurn applies one turn of tactical-point regeneration and
// resistance decay to a war. Regeneration adds exactly
// tactical_points_per_turn to each side, capped at max_tactical_points;
// decay subtracts exactly resistance_decay_per_turn from each side, floored
// at zero. Decay models attrition independent of battles, so a war whose
// resistance runs out this way still transitions to the matching victory.
func AdvanceWarTurn(w *game.War, settings *config.WarSettings) error {
	if w.Status != game.WarStatusActive {
		return ErrWarNotActive
	}

	w.AttackerTacticalPoints += settings.TacticalPointsPerTurn
	if w.AttackerTacticalPoints > settings.MaxTacticalPoints {
		w.AttackerTacticalPoints = settings.MaxTacticalPoints
	}
	w.DefenderTacticalPoints += settings.TacticalPointsPerTurn
	if w.DefenderTacticalPoints > settings.MaxTacticalPoints {
		w.DefenderTacticalPoints = settings.MaxTacticalPoints
	}

	w.AttackerResistance -= settings.ResistanceDecayPerTurn
	if w.AttackerResistance < 0 {
		w.AttackerResistance = 0
	}
	w.DefenderResistance -= settings.ResistanceDecayPerTurn
	if w.DefenderResistance < 0 {
		w.DefenderResistance = 0
	}

	if w.DefenderResistance == 0 {
		w.Status = game.WarStatusAttackerVictory
	} else if w.AttackerResistance == 0 {
		w.Status = game.WarStatusDefenderVictory
	}
	return nil
}
