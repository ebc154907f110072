package service

import (
	"errors"
	"testing"

	"github.com/derajoxford/stratagem-server-sub002/internal/config"
	"github.com/derajoxford/stratagem-server-sub002/internal/game"
)

func TestAdvanceWarTurn_ExactAmounts(t *testing.T) {
	settings := &config.Default().War
	w := activeWar()
	w.AttackerTacticalPoints = 4
	w.DefenderTacticalPoints = 0

	if err := AdvanceWarTurn(w, settings); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.AttackerTacticalPoints != 6 || w.DefenderTacticalPoints != 2 {
		t.Fatalf("expected exactly %d points regenerated, got %d/%d",
			settings.TacticalPointsPerTurn, w.AttackerTacticalPoints, w.DefenderTacticalPoints)
	}
	if w.AttackerResistance != 98 || w.DefenderResistance != 98 {
		t.Fatalf("expected exactly %d resistance decayed, got %d/%d",
			settings.ResistanceDecayPerTurn, w.AttackerResistance, w.DefenderResistance)
	}
	if w.Status != game.WarStatusActive {
		t.Fatalf("war must stay active, got %q", w.Status)
	}
}

func TestAdvanceWarTurn_CapsAtMaxTacticalPoints(t *testing.T) {
	settings := &config.Default().War
	w := activeWar()
	w.AttackerTacticalPoints = settings.MaxTacticalPoints - 1
	w.DefenderTacticalPoints = settings.MaxTacticalPoints

	if err := AdvanceWarTurn(w, settings); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.AttackerTacticalPoints != settings.MaxTacticalPoints {
		t.Fatalf("expected cap at %d, got %d", settings.MaxTacticalPoints, w.AttackerTacticalPoints)
	}
	if w.DefenderTacticalPoints != settings.MaxTacticalPoints {
		t.Fatalf("points at the cap must stay there, got %d", w.DefenderTacticalPoints)
	}
}

func TestAdvanceWarTurn_DecayVictory(t *testing.T) {
	settings := &config.Default().War

	w := activeWar()
	w.DefenderResistance = 1
	if err := AdvanceWarTurn(w, settings); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.DefenderResistance != 0 {
		t.Fatalf("resistance must floor at zero, got %d", w.DefenderResistance)
	}
	if w.Status != game.WarStatusAttackerVictory {
		t.Fatalf("decay to zero defender resistance must end the war, got %q", w.Status)
	}

	w = activeWar()
	w.AttackerResistance = 2
	if err := AdvanceWarTurn(w, settings); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Status != game.WarStatusDefenderVictory {
		t.Fatalf("decay to zero attacker resistance must end the war, got %q", w.Status)
	}
}

func TestAdvanceWarTurn_TerminalWarRejected(t *testing.T) {
	settings := &config.Default().War
	for _, status := range []game.WarStatus{game.WarStatusCeasefire, game.WarStatusAttackerVictory, game.WarStatusDefenderVictory} {
		w := activeWar()
		w.Status = status
		before := *w
		if err := AdvanceWarTurn(w, settings); !errors.Is(err, ErrWarNotActive) {
			t.Fatalf("status %q: expected ErrWarNotActive, got %v", status, err)
		}
		if *w != before {
			t.Fatalf("status %q: terminal war mutated: %+v", status, w)
		}
	}
}
