package service

import (
	"errors"
	"testing"
	"time"

	"github.com/derajoxford/stratagem-server-sub002/internal/config"
	"github.com/derajoxford/stratagem-server-sub002/internal/game"
	"github.com/derajoxford/stratagem-server-sub002/internal/storage"
	"gorm.io/gorm"
)

type mockWarRepo struct {
	war        *game.War
	militaries map[uint]*game.Military
	commitErr  error

	commits   int
	committed *storage.WarUpdate
	log       *game.BattleLog
	blockade  *storage.BlockadeChange
}

func (m *mockWarRepo) GetWarByID(id uint) (*game.War, error) {
	if m.war == nil || m.war.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return m.war, nil
}

func (m *mockWarRepo) GetMilitaryByNationID(nationID uint) (*game.Military, error) {
	if mil, ok := m.militaries[nationID]; ok {
		return mil, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWarRepo) CommitBattle(update storage.WarUpdate, log *game.BattleLog, blockade *storage.BlockadeChange) error {
	if m.commitErr != nil {
		return m.commitErr
	}
	m.commits++
	m.committed = &update
	m.log = log
	m.blockade = blockade
	return nil
}

func activeWar() *game.War {
	w := &game.War{
		AttackerNationID:       1,
		DefenderNationID:       2,
		Status:                 game.WarStatusActive,
		AttackerTacticalPoints: 4,
		DefenderTacticalPoints: 4,
		AttackerResistance:     100,
		DefenderResistance:     100,
		StartingResistance:     100,
	}
	w.ID = 7
	return w
}

func TestApplyBattle_TacticalPointExhaustion(t *testing.T) {
	settings := &config.Default().War
	repo := &mockWarRepo{war: activeWar()}
	repo.war.AttackerTacticalPoints = 3

	req := BattleRequest{WarID: 7, ActingNationID: 1, AttackType: game.AttackGroundAssault, Roll: 30}
	for i := 0; i < 3; i++ {
		if _, err := ApplyBattle(repo, settings, req, time.Now()); err != nil {
			t.Fatalf("battle %d: unexpected error: %v", i+1, err)
		}
	}
	if repo.war.AttackerTacticalPoints != 0 {
		t.Fatalf("expected tactical points spent down to 0, got %d", repo.war.AttackerTacticalPoints)
	}
	if repo.war.TotalBattles != 3 {
		t.Fatalf("expected 3 battles recorded, got %d", repo.war.TotalBattles)
	}
	if _, err := ApplyBattle(repo, settings, req, time.Now()); !errors.Is(err, ErrInsufficientTacticalPoints) {
		t.Fatalf("expected ErrInsufficientTacticalPoints, got %v", err)
	}
	if repo.commits != 3 {
		t.Fatalf("a rejected battle must not commit, got %d commits", repo.commits)
	}
}

func TestApplyBattle_CostCheckedBeforeDeduction(t *testing.T) {
	settings := &config.Default().War
	repo := &mockWarRepo{war: activeWar()}
	// Nuclear strike costs 5; the attacker only has 4.
	req := BattleRequest{WarID: 7, ActingNationID: 1, AttackType: game.AttackNuclearStrike, Roll: 100}
	if _, err := ApplyBattle(repo, settings, req, time.Now()); !errors.Is(err, ErrInsufficientTacticalPoints) {
		t.Fatalf("expected ErrInsufficientTacticalPoints, got %v", err)
	}
	if repo.war.AttackerTacticalPoints != 4 {
		t.Fatalf("rejected battle must not deduct points, got %d", repo.war.AttackerTacticalPoints)
	}
}

func TestApplyBattle_WarNotFound(t *testing.T) {
	settings := &config.Default().War
	repo := &mockWarRepo{}
	req := BattleRequest{WarID: 99, ActingNationID: 1, AttackType: game.AttackGroundAssault, Roll: 100}
	if _, err := ApplyBattle(repo, settings, req, time.Now()); !errors.Is(err, ErrWarNotFound) {
		t.Fatalf("expected ErrWarNotFound, got %v", err)
	}
}

func TestApplyBattle_WarNotActiveLeavesWarUnchanged(t *testing.T) {
	settings := &config.Default().War
	repo := &mockWarRepo{war: activeWar()}
	repo.war.Status = game.WarStatusCeasefire
	before := *repo.war

	req := BattleRequest{WarID: 7, ActingNationID: 1, AttackType: game.AttackGroundAssault, Roll: 100}
	if _, err := ApplyBattle(repo, settings, req, time.Now()); !errors.Is(err, ErrWarNotActive) {
		t.Fatalf("expected ErrWarNotActive, got %v", err)
	}
	if *repo.war != before {
		t.Fatalf("war mutated by a rejected battle: %+v", repo.war)
	}
	if repo.commits != 0 {
		t.Fatalf("rejected battle must not commit")
	}
}

func TestApplyBattle_NotBelligerent(t *testing.T) {
	settings := &config.Default().War
	repo := &mockWarRepo{war: activeWar()}
	req := BattleRequest{WarID: 7, ActingNationID: 42, AttackType: game.AttackGroundAssault, Roll: 100}
	if _, err := ApplyBattle(repo, settings, req, time.Now()); !errors.Is(err, ErrNotBelligerent) {
		t.Fatalf("expected ErrNotBelligerent, got %v", err)
	}
}

func TestApplyBattle_DefenderActsAgainstAttacker(t *testing.T) {
	settings := &config.Default().War
	repo := &mockWarRepo{war: activeWar()}
	req := BattleRequest{WarID: 7, ActingNationID: 2, AttackType: game.AttackGroundAssault, Roll: 150}
	res, err := ApplyBattle(repo, settings, req, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.war.DefenderTacticalPoints != 3 {
		t.Fatalf("expected defender points deducted, got %d", repo.war.DefenderTacticalPoints)
	}
	if repo.war.AttackerResistance >= 100 {
		t.Fatalf("expected attacker resistance reduced, got %d", repo.war.AttackerResistance)
	}
	if repo.war.DefenderResistance != 100 {
		t.Fatalf("defender resistance must be untouched, got %d", repo.war.DefenderResistance)
	}
	if res.Log.ActingNationID != 2 {
		t.Fatalf("log must record the acting nation, got %d", res.Log.ActingNationID)
	}
}

func TestApplyBattle_SuccessfulBlockadeSealsPorts(t *testing.T) {
	settings := &config.Default().War
	repo := &mockWarRepo{war: activeWar()}
	req := BattleRequest{WarID: 7, ActingNationID: 1, AttackType: game.AttackNavalBlockade, Roll: 150}
	res, err := ApplyBattle(repo, settings, req, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome.Multiplier <= 0 {
		t.Fatalf("test setup: expected a successful blockade outcome, got %+v", res.Outcome)
	}
	if !repo.war.BlockadeActive || repo.war.BlockadeNationID == nil || *repo.war.BlockadeNationID != 1 {
		t.Fatalf("expected blockade by nation 1 on the war, got %+v", repo.war)
	}
	if repo.blockade == nil || repo.blockade.NationID != 2 || repo.blockade.BlockadingNationID != 1 {
		t.Fatalf("expected defender 2 blockaded by 1, got %+v", repo.blockade)
	}
}

func TestApplyBattle_FailedBlockadeChangesNothing(t *testing.T) {
	settings := &config.Default().War
	repo := &mockWarRepo{war: activeWar()}
	// Give the defender crushing naval superiority so the adjusted roll
	// lands in the zero-multiplier bracket.
	repo.militaries = map[uint]*game.Military{2: {NationID: 2, Ships: 100}}
	req := BattleRequest{WarID: 7, ActingNationID: 1, AttackType: game.AttackNavalBlockade, Roll: 60}
	res, err := ApplyBattle(repo, settings, req, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome.Multiplier != 0 {
		t.Fatalf("test setup: expected a failed blockade outcome, got %+v", res.Outcome)
	}
	if repo.war.BlockadeActive || repo.blockade != nil {
		t.Fatalf("failed blockade must not seal ports: war=%+v change=%+v", repo.war, repo.blockade)
	}
}

func TestApplyBattle_ZeroResistanceEndsWar(t *testing.T) {
	settings := &config.Default().War
	repo := &mockWarRepo{war: activeWar()}
	repo.war.DefenderResistance = 3

	req := BattleRequest{WarID: 7, ActingNationID: 1, AttackType: game.AttackGroundAssault, Roll: 150}
	res, err := ApplyBattle(repo, settings, req, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.war.DefenderResistance != 0 {
		t.Fatalf("resistance must floor at zero, got %d", repo.war.DefenderResistance)
	}
	if repo.war.Status != game.WarStatusAttackerVictory {
		t.Fatalf("expected attacker victory, got %q", repo.war.Status)
	}
	if res.Log.ResistanceDamage <= 0 {
		t.Fatalf("log must carry the damage dealt, got %d", res.Log.ResistanceDamage)
	}
}

func TestApplyBattle_StaleCommitSurfaces(t *testing.T) {
	settings := &config.Default().War
	repo := &mockWarRepo{war: activeWar(), commitErr: storage.ErrStaleWar}
	req := BattleRequest{WarID: 7, ActingNationID: 1, AttackType: game.AttackGroundAssault, Roll: 100}
	if _, err := ApplyBattle(repo, settings, req, time.Now()); !errors.Is(err, ErrStaleWarState) {
		t.Fatalf("expected ErrStaleWarState, got %v", err)
	}
}

func TestApplyBattle_CommitCarriesLoadedVersion(t *testing.T) {
	settings := &config.Default().War
	repo := &mockWarRepo{war: activeWar()}
	repo.war.Version = 9
	req := BattleRequest{WarID: 7, ActingNationID: 1, AttackType: game.AttackGroundAssault, Roll: 100}
	if _, err := ApplyBattle(repo, settings, req, time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.committed.LoadedVersion != 9 {
		t.Fatalf("commit must carry the version as loaded, got %d", repo.committed.LoadedVersion)
	}
}
