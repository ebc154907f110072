package service

import (
	"errors"
	"time"

	"github.com/derajoxford/stratagem-server-sub002/internal/config"
	"github.com/derajoxford/stratagem-server-sub002/internal/engine"
	"github.com/derajoxford/stratagem-server-sub002/internal/game"
	"github.com/derajoxford/stratagem-server-sub002/internal/storage"
	"gorm.io/gorm"
)

var (
	ErrWarNotFound                = errors.New("war not found")
	ErrWarNotActive               = errors.New("war is not active")
	ErrNotBelligerent             = errors.New("nation is not a belligerent in this war")
	ErrInsufficientTacticalPoints = errors.New("insufficient tactical points")
	// ErrStaleWarState surfaces a lost optimistic-concurrency race: the war
	// changed between the caller's read and the commit.
	ErrStaleWarState = storage.ErrStaleWar
)

// WarRepo is the storage subset the battle path needs. Keeping it narrow
// lets tests supply small hand-written mocks.
type WarRepo interface {
	GetWarByID(id uint) (*game.War, error)
	GetMilitaryByNationID(nationID uint) (*game.Military, error)
	CommitBattle(update storage.WarUpdate, log *game.BattleLog, blockade *storage.BlockadeChange) error
}

// BattleRequest describes one attack submitted against an active war. Roll
// is supplied by the caller (the API layer rolls 1..200) so the whole
// resolution stays deterministic and replayable from the request.
type BattleRequest struct {
	WarID          uint
	ActingNationID uint
	AttackType     game.AttackType
	CommittedUnits int
	Roll           int
}

// BattleResult reports a resolved attack: the updated war, the resolver
// outcome and the appended battle log.
type BattleResult struct {
	War     *game.War
	Outcome *engine.Outcome
	Log     *game.BattleLog
}

// ApplyBattle validates and resolves one attack. Validation happens before
// any mutation; the tactical-point deduction, resistance reduction, counters
// and log append then commit as a single transaction, version-checked
// against the war as loaded.
func ApplyBattle(repo WarRepo, settings *config.WarSettings, req BattleRequest, now time.Time) (*BattleResult, error) {
	w, err := repo.GetWarByID(req.WarID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWarNotFound
		}
		return nil, err
	}
	if w.Status != game.WarStatusActive {
		return nil, ErrWarNotActive
	}
	if !w.Belligerent(req.ActingNationID) {
		return nil, ErrNotBelligerent
	}
	attackerSide := req.ActingNationID == w.AttackerNationID
	opposingNationID := w.DefenderNationID
	if !attackerSide {
		opposingNationID = w.AttackerNationID
	}

	cost, ok := settings.ActionPointCosts[req.AttackType]
	if !ok {
		return nil, engine.ErrInvalidAttackType
	}
	if w.TacticalPoints(attackerSide) < cost {
		return nil, ErrInsufficientTacticalPoints
	}

	actingPower := nationPower(repo, req.ActingNationID, settings)
	opposingPower := nationPower(repo, opposingNationID, settings)

	outcome, err := engine.Resolve(settings, req.AttackType, actingPower, opposingPower, req.Roll)
	if err != nil {
		return nil, err
	}

	loadedVersion := w.Version
	if attackerSide {
		w.AttackerTacticalPoints -= cost
		w.DefenderResistance -= outcome.FinalDamage
		if w.DefenderResistance < 0 {
			w.DefenderResistance = 0
		}
	} else {
		w.DefenderTacticalPoints -= cost
		w.AttackerResistance -= outcome.FinalDamage
		if w.AttackerResistance < 0 {
			w.AttackerResistance = 0
		}
	}

	actingLosses, opposingLosses := engine.EstimateLosses(req.CommittedUnits, outcome.Multiplier)
	if attackerSide {
		w.AttackerCasualties += actingLosses
		w.DefenderCasualties += opposingLosses
	} else {
		w.DefenderCasualties += actingLosses
		w.AttackerCasualties += opposingLosses
	}

	w.TotalBattles++

	// A successful blockade run seals the opposing nation's ports.
	var blockade *storage.BlockadeChange
	if req.AttackType == game.AttackNavalBlockade && outcome.Multiplier > 0 {
		acting := req.ActingNationID
		w.BlockadeActive = true
		w.BlockadeNationID = &acting
		blockade = &storage.BlockadeChange{NationID: opposingNationID, BlockadingNationID: acting}
	}

	if w.DefenderResistance == 0 {
		w.Status = game.WarStatusAttackerVictory
	} else if w.AttackerResistance == 0 {
		w.Status = game.WarStatusDefenderVictory
	}

	var attackerLosses, defenderLosses int
	if attackerSide {
		attackerLosses, defenderLosses = actingLosses, opposingLosses
	} else {
		attackerLosses, defenderLosses = opposingLosses, actingLosses
	}
	log := &game.BattleLog{
		WarID:            w.ID,
		BattleNumber:     w.TotalBattles,
		ActingNationID:   req.ActingNationID,
		AttackType:       req.AttackType,
		OutcomeName:      outcome.OutcomeName,
		ResistanceDamage: outcome.FinalDamage,
		AttackerLosses:   attackerLosses,
		DefenderLosses:   defenderLosses,
		FoughtAt:         now,
	}

	if err := repo.CommitBattle(storage.WarUpdate{War: w, LoadedVersion: loadedVersion}, log, blockade); err != nil {
		return nil, err
	}
	return &BattleResult{War: w, Outcome: outcome, Log: log}, nil
}

// nationPower reads a nation's military and converts it to combat power.
// A nation with no military record simply fights at zero power.
func nationPower(repo WarRepo, nationID uint, settings *config.WarSettings) float64 {
	m, err := repo.GetMilitaryByNationID(nationID)
	if err != nil {
		return 0
	}
	return engine.Power(m, settings.UnitCombatStrengths)
}
