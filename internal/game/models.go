package game

import (
	"time"

	"gorm.io/gorm"
)

// WarStatus is a string alias for a war's lifecycle state. Using a dedicated
// type instead of plain string makes code safer and self-documenting.
type WarStatus string

const (
	WarStatusActive          WarStatus = "active"
	WarStatusCeasefire       WarStatus = "ceasefire"
	WarStatusAttackerVictory WarStatus = "attacker_victory"
	WarStatusDefenderVictory WarStatus = "defender_victory"
)

// Terminal reports whether the status is one of the immutable end states.
func (s WarStatus) Terminal() bool {
	return s == WarStatusCeasefire || s == WarStatusAttackerVictory || s == WarStatusDefenderVictory
}

// AttackType identifies one of the fixed battle action kinds.
type AttackType string

const (
	AttackGroundAssault    AttackType = "ground_assault"
	AttackStrategicBombing AttackType = "strategic_bombing"
	AttackNavalStrike      AttackType = "naval_strike"
	AttackAirSuperiority   AttackType = "air_superiority"
	AttackNavalBlockade    AttackType = "naval_blockade"
	AttackNuclearStrike    AttackType = "nuclear_strike"
)

// AttackTypes lists every valid attack type. Order is stable so config
// validation and API responses are reproducible.
var AttackTypes = []AttackType{
	AttackGroundAssault,
	AttackStrategicBombing,
	AttackNavalStrike,
	AttackAirSuperiority,
	AttackNavalBlockade,
	AttackNuclearStrike,
}

// ProposalStatus tracks the lifecycle of a ceasefire proposal. A proposal
// transitions once from pending to a terminal state and never changes again.
type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "pending"
	ProposalAccepted ProposalStatus = "accepted"
	ProposalRejected ProposalStatus = "rejected"
)

// GameStateID is the fixed primary key of the singleton GameState row.
const GameStateID uint = 1

// GameState is the process-wide turn accounting singleton. It is created
// lazily on the first tick and mutated only by the turn scheduler. The
// IsProcessing column doubles as the cross-replica tick lock, so it must be
// false whenever no tick is in flight, including after a failed tick.
type GameState struct {
	gorm.Model
	CurrentTurnNumber   int64     `json:"current_turn_number"`
	IsProcessing        bool      `json:"is_processing"`
	ProcessingToken     string    `json:"processing_token"`
	LastTurnProcessedAt time.Time `json:"last_turn_processed_at"`
}

func (GameState) TableName() string { return "game_state" }

// GameConfigRecord stores the serialized game configuration blob. The tick
// always reads the most recent row; rules live in the payload, not in
// columns, so operators can push a new config without a schema change.
type GameConfigRecord struct {
	gorm.Model
	Payload []byte `json:"-" gorm:"column:payload;type:blob"`
}

func (GameConfigRecord) TableName() string { return "game_configs" }

// Nation is a player-owned country. Military aggregates live in a separate
// Military row; display and city data are owned by the CRUD layer and are
// intentionally absent here.
type Nation struct {
	gorm.Model
	Name               string `json:"name" gorm:"size:64"`
	LeaderName         string `json:"leader_name" gorm:"size:64"`
	Treasury           int64  `json:"treasury"`
	Active             bool   `json:"active" gorm:"index"`
	AllianceID         *uint  `json:"alliance_id"`
	IsBlockaded        bool   `json:"is_blockaded"`
	BlockadingNationID *uint  `json:"blockading_nation_id"`
}

// Military holds a nation's unit counts. The blockade auditor reads Ships;
// battle power computations read the whole row.
type Military struct {
	gorm.Model
	NationID uint `json:"nation_id" gorm:"uniqueIndex"`
	Soldiers int  `json:"soldiers"`
	Tanks    int  `json:"tanks"`
	Aircraft int  `json:"aircraft"`
	Ships    int  `json:"ships"`
	Missiles int  `json:"missiles"`
}

func (Military) TableName() string { return "nation_militaries" }

// War is a single active or concluded conflict between two nations.
// Tactical points stay within [0, max_tactical_points] and resistance within
// [0, StartingResistance] at all times. Version implements optimistic
// concurrency: every mutation must carry the version it loaded and fails as
// stale when the row changed underneath it.
type War struct {
	gorm.Model
	AttackerNationID uint      `json:"attacker_nation_id" gorm:"index"`
	DefenderNationID uint      `json:"defender_nation_id" gorm:"index"`
	Status           WarStatus `json:"status" gorm:"index"`
	Reason           string    `json:"reason" gorm:"size:256"`

	AttackerTacticalPoints int `json:"attacker_tactical_points"`
	DefenderTacticalPoints int `json:"defender_tactical_points"`
	AttackerResistance     int `json:"attacker_resistance"`
	DefenderResistance     int `json:"defender_resistance"`
	StartingResistance     int `json:"starting_resistance"`

	TotalBattles       int `json:"total_battles"`
	AttackerCasualties int `json:"attacker_casualties"`
	DefenderCasualties int `json:"defender_casualties"`

	BlockadeActive   bool  `json:"blockade_active"`
	BlockadeNationID *uint `json:"blockade_nation_id"`

	Version int64 `json:"version"`
}

// Belligerent reports whether the nation is one of the two sides.
func (w *War) Belligerent(nationID uint) bool {
	return nationID == w.AttackerNationID || nationID == w.DefenderNationID
}

// TacticalPoints returns the given side's current tactical points.
func (w *War) TacticalPoints(attackerSide bool) int {
	if attackerSide {
		return w.AttackerTacticalPoints
	}
	return w.DefenderTacticalPoints
}

// BattleLog is an append-only record of one resolved attack. Battle numbers
// increase per war; the core never mutates or deletes rows.
type BattleLog struct {
	gorm.Model
	WarID            uint       `json:"war_id" gorm:"index"`
	BattleNumber     int        `json:"battle_number"`
	ActingNationID   uint       `json:"acting_nation_id"`
	AttackType       AttackType `json:"attack_type"`
	OutcomeName      string     `json:"outcome_name"`
	ResistanceDamage int        `json:"resistance_damage"`
	AttackerLosses   int        `json:"attacker_losses"`
	DefenderLosses   int        `json:"defender_losses"`
	FoughtAt         time.Time  `json:"fought_at"`
}

func (BattleLog) TableName() string { return "battle_logs" }

// CeasefireProposal is a pending request to end a war without a victor.
type CeasefireProposal struct {
	gorm.Model
	WarID             uint           `json:"war_id" gorm:"index"`
	ProposerNationID  uint           `json:"proposer_nation_id"`
	RecipientNationID uint           `json:"recipient_nation_id"`
	Message           string         `json:"message" gorm:"size:256"`
	Status            ProposalStatus `json:"status"`
	RespondedAt       *time.Time     `json:"responded_at"`
}

func (CeasefireProposal) TableName() string { return "ceasefire_proposals" }

// TreasuryEntry is one ledger row written alongside a nation's per-turn
// treasury update so economic history stays auditable.
type TreasuryEntry struct {
	gorm.Model
	NationID   uint   `json:"nation_id" gorm:"index"`
	TurnNumber int64  `json:"turn_number"`
	Amount     int64  `json:"amount"`
	Balance    int64  `json:"balance"`
	Memo       string `json:"memo" gorm:"size:128"`
}

func (TreasuryEntry) TableName() string { return "treasury_ledger" }
