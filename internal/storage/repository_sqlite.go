package storage

import (
	"errors"
	"time"

	"github.com/derajoxford/stratagem-server-sub002/internal/game"
	"gorm.io/gorm"
)

type sqliteRepository struct {
	db *gorm.DB
}

// NewSQLiteRepository wraps an opened gorm handle in the Repository
// interface.
func NewSQLiteRepository(db *gorm.DB) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) GetOrCreateGameState() (*game.GameState, error) {
	var gs game.GameState
	err := r.db.First(&gs, game.GameStateID).Error
	if err == nil {
		return &gs, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	gs = game.GameState{CurrentTurnNumber: 1}
	gs.ID = game.GameStateID
	if err := r.db.Create(&gs).Error; err != nil {
		// Another replica may have created the row between the read and
		// the insert; fall back to reading it.
		var again game.GameState
		if rerr := r.db.First(&again, game.GameStateID).Error; rerr == nil {
			return &again, nil
		}
		return nil, err
	}
	return &gs, nil
}

func (r *sqliteRepository) TryBeginProcessing(token string) (bool, error) {
	// Single guarded UPDATE so the check and the set cannot race: two
	// callers both observing is_processing=false would otherwise both
	// believe they acquired the lock.
	res := r.db.Model(&game.GameState{}).
		Where("id = ? AND is_processing = ?", game.GameStateID, false).
		Updates(map[string]interface{}{
			"is_processing":    true,
			"processing_token": token,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *sqliteRepository) ReleaseProcessing() error {
	return r.db.Model(&game.GameState{}).
		Where("id = ?", game.GameStateID).
		Updates(map[string]interface{}{
			"is_processing":    false,
			"processing_token": "",
		}).Error
}

func (r *sqliteRepository) CommitTurnAdvance(newTurn int64, processedAt time.Time) error {
	return r.db.Model(&game.GameState{}).
		Where("id = ?", game.GameStateID).
		Updates(map[string]interface{}{
			"current_turn_number":    newTurn,
			"is_processing":          false,
			"processing_token":       "",
			"last_turn_processed_at": processedAt,
		}).Error
}

func (r *sqliteRepository) GetLatestConfigPayload() ([]byte, error) {
	var rec game.GameConfigRecord
	if err := r.db.Order("id desc").First(&rec).Error; err != nil {
		return nil, err
	}
	return rec.Payload, nil
}

func (r *sqliteRepository) SaveConfigPayload(payload []byte) error {
	return r.db.Create(&game.GameConfigRecord{Payload: payload}).Error
}

func (r *sqliteRepository) ListActiveNations() ([]game.Nation, error) {
	var nations []game.Nation
	if err := r.db.Where("active = ?", true).Order("id asc").Find(&nations).Error; err != nil {
		return nil, err
	}
	return nations, nil
}

func (r *sqliteRepository) ListBlockadedNations() ([]game.Nation, error) {
	var nations []game.Nation
	if err := r.db.Where("is_blockaded = ?", true).Order("id asc").Find(&nations).Error; err != nil {
		return nil, err
	}
	return nations, nil
}

func (r *sqliteRepository) GetNationByID(id uint) (*game.Nation, error) {
	var n game.Nation
	if err := r.db.First(&n, id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *sqliteRepository) ApplyTreasuryBatch(updates []TreasuryUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	tx := r.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	for i := range updates {
		u := &updates[i]
		if err := tx.Model(&game.Nation{}).Where("id = ?", u.NationID).
			Update("treasury", u.NewBalance).Error; err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Create(&u.Entry).Error; err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit().Error
}

func (r *sqliteRepository) ClearBlockade(nationID uint) error {
	return r.db.Model(&game.Nation{}).Where("id = ?", nationID).
		Updates(map[string]interface{}{
			"is_blockaded":         false,
			"blockading_nation_id": nil,
		}).Error
}

func (r *sqliteRepository) GetMilitaryByNationID(nationID uint) (*game.Military, error) {
	var m game.Military
	if err := r.db.Where("nation_id = ?", nationID).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *sqliteRepository) GetWarByID(id uint) (*game.War, error) {
	var w game.War
	if err := r.db.First(&w, id).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *sqliteRepository) ListWars() ([]game.War, error) {
	var wars []game.War
	if err := r.db.Order("id asc").Find(&wars).Error; err != nil {
		return nil, err
	}
	return wars, nil
}

func (r *sqliteRepository) ListActiveWars() ([]game.War, error) {
	var wars []game.War
	if err := r.db.Where("status = ?", game.WarStatusActive).Order("id asc").Find(&wars).Error; err != nil {
		return nil, err
	}
	return wars, nil
}

// warColumns builds the explicit column set for a version-checked war
// update. An explicit map keeps zero values (points spent down to 0, cleared
// blockades) from being skipped the way a struct update would.
func warColumns(w *game.War, newVersion int64) map[string]interface{} {
	var blockadeNationID interface{}
	if w.BlockadeNationID != nil {
		blockadeNationID = *w.BlockadeNationID
	}
	return map[string]interface{}{
		"status":                   w.Status,
		"attacker_tactical_points": w.AttackerTacticalPoints,
		"defender_tactical_points": w.DefenderTacticalPoints,
		"attacker_resistance":      w.AttackerResistance,
		"defender_resistance":      w.DefenderResistance,
		"total_battles":            w.TotalBattles,
		"attacker_casualties":      w.AttackerCasualties,
		"defender_casualties":      w.DefenderCasualties,
		"blockade_active":          w.BlockadeActive,
		"blockade_nation_id":       blockadeNationID,
		"version":                  newVersion,
	}
}

// casUpdateWar applies a version-checked war update inside tx. Zero rows
// affected means the loaded version is stale.
func casUpdateWar(tx *gorm.DB, update WarUpdate) error {
	newVersion := update.LoadedVersion + 1
	res := tx.Model(&game.War{}).
		Where("id = ? AND version = ?", update.War.ID, update.LoadedVersion).
		Updates(warColumns(update.War, newVersion))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleWar
	}
	update.War.Version = newVersion
	return nil
}

func (r *sqliteRepository) UpdateWarsBatch(updates []WarUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	tx := r.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	for _, u := range updates {
		if err := casUpdateWar(tx, u); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit().Error
}

func (r *sqliteRepository) CommitBattle(update WarUpdate, log *game.BattleLog, blockade *BlockadeChange) error {
	tx := r.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := casUpdateWar(tx, update); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Create(log).Error; err != nil {
		tx.Rollback()
		return err
	}
	if blockade != nil {
		if err := tx.Model(&game.Nation{}).Where("id = ?", blockade.NationID).
			Updates(map[string]interface{}{
				"is_blockaded":         true,
				"blockading_nation_id": blockade.BlockadingNationID,
			}).Error; err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit().Error
}

func (r *sqliteRepository) CommitCeasefire(update WarUpdate, proposal *game.CeasefireProposal, liftNationIDs []uint) error {
	tx := r.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := tx.Model(&game.CeasefireProposal{}).Where("id = ?", proposal.ID).
		Updates(map[string]interface{}{
			"status":       proposal.Status,
			"responded_at": proposal.RespondedAt,
		}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := casUpdateWar(tx, update); err != nil {
		tx.Rollback()
		return err
	}
	for _, id := range liftNationIDs {
		if err := tx.Model(&game.Nation{}).Where("id = ?", id).
			Updates(map[string]interface{}{
				"is_blockaded":         false,
				"blockading_nation_id": nil,
			}).Error; err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit().Error
}

func (r *sqliteRepository) ListBattleLogs(warID uint, limit int) ([]game.BattleLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []game.BattleLog
	if err := r.db.Where("war_id = ?", warID).Order("battle_number desc").Limit(limit).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *sqliteRepository) CreateProposal(p *game.CeasefireProposal) error {
	return r.db.Create(p).Error
}

func (r *sqliteRepository) GetProposalByID(id uint) (*game.CeasefireProposal, error) {
	var p game.CeasefireProposal
	if err := r.db.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *sqliteRepository) ResolveProposal(p *game.CeasefireProposal) error {
	return r.db.Model(&game.CeasefireProposal{}).Where("id = ?", p.ID).
		Updates(map[string]interface{}{
			"status":       p.Status,
			"responded_at": p.RespondedAt,
		}).Error
}

func (r *sqliteRepository) HasPendingProposal(warID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&game.CeasefireProposal{}).
		Where("war_id = ? AND status = ?", warID, game.ProposalPending).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
