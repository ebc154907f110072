package storage

import (
	"errors"
	"time"

	"github.com/derajoxford/stratagem-server-sub002/internal/game"
)

// ErrStaleWar is returned when a version-checked war update finds the row
// changed underneath the caller. Callers reload and retry or surface the
// conflict; the update itself never partially applies.
var ErrStaleWar = errors.New("war record was modified concurrently")

// TreasuryUpdate is one nation's share of an atomic batch commit: the new
// balance plus the ledger entry recording the delta.
type TreasuryUpdate struct {
	NationID   uint
	NewBalance int64
	Entry      game.TreasuryEntry
}

// WarUpdate pairs a mutated war with the version it was loaded at so batch
// commits can be version-checked per row.
type WarUpdate struct {
	War           *game.War
	LoadedVersion int64
}

// BlockadeChange marks a nation as blockaded by another as part of a battle
// commit.
type BlockadeChange struct {
	NationID           uint
	BlockadingNationID uint
}

// Repository is the persistence gateway for the turn engine and war state
// machine. Every method is atomic per call; the multi-record methods commit
// all of their writes in a single transaction or none of them.
type Repository interface {
	// GetOrCreateGameState returns the singleton turn-accounting row,
	// creating it at turn 1 when absent.
	GetOrCreateGameState() (*game.GameState, error)
	// TryBeginProcessing atomically flips is_processing from false to true
	// and stamps the claiming token. It returns false without error when
	// another tick already holds the lock.
	TryBeginProcessing(token string) (bool, error)
	// ReleaseProcessing force-clears is_processing without advancing the
	// turn counter. Used by the failure path; releasing an already-released
	// lock is not an error.
	ReleaseProcessing() error
	// CommitTurnAdvance atomically advances the turn counter, releases the
	// lock and stamps the processing time.
	CommitTurnAdvance(newTurn int64, processedAt time.Time) error

	// GetLatestConfigPayload returns the most recent game config blob.
	GetLatestConfigPayload() ([]byte, error)
	SaveConfigPayload(payload []byte) error

	ListActiveNations() ([]game.Nation, error)
	ListBlockadedNations() ([]game.Nation, error)
	GetNationByID(id uint) (*game.Nation, error)
	// ApplyTreasuryBatch commits one batch of nation treasury updates and
	// their ledger entries as a single transaction.
	ApplyTreasuryBatch(updates []TreasuryUpdate) error
	// ClearBlockade resets a nation's blockade fields.
	ClearBlockade(nationID uint) error

	GetMilitaryByNationID(nationID uint) (*game.Military, error)

	GetWarByID(id uint) (*game.War, error)
	ListWars() ([]game.War, error)
	ListActiveWars() ([]game.War, error)
	// UpdateWarsBatch version-checks and writes every war in one
	// transaction; any stale row aborts the whole batch with ErrStaleWar.
	UpdateWarsBatch(updates []WarUpdate) error
	// CommitBattle writes the war mutation, the battle log append and the
	// optional blockade flag flip as one transaction.
	CommitBattle(update WarUpdate, log *game.BattleLog, blockade *BlockadeChange) error
	// CommitCeasefire writes the proposal resolution, the war transition
	// and any blockade lifts as one transaction. liftNationIDs lists the
	// nations whose blockade fields must be cleared.
	CommitCeasefire(update WarUpdate, proposal *game.CeasefireProposal, liftNationIDs []uint) error

	ListBattleLogs(warID uint, limit int) ([]game.BattleLog, error)

	CreateProposal(p *game.CeasefireProposal) error
	GetProposalByID(id uint) (*game.CeasefireProposal, error)
	HasPendingProposal(warID uint) (bool, error)
	// ResolveProposal persists a proposal's terminal status without
	// touching the war (the rejection path).
	ResolveProposal(p *game.CeasefireProposal) error
}
