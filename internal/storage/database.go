package storage

import (
	"github.com/derajoxford/stratagem-server-sub002/internal/game"
	"github.com/derajoxford/stratagem-server-sub002/internal/logging"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// OpenAndMigrate opens the sqlite database, migrates the schema and seeds
// the default game config when no config row exists yet. The default
// payload is passed in so the storage package stays independent of the
// config package.
func OpenAndMigrate(dataSourceName string, defaultConfigPayload []byte) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dataSourceName), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&game.GameState{},
		&game.GameConfigRecord{},
		&game.Nation{},
		&game.Military{},
		&game.War{},
		&game.BattleLog{},
		&game.CeasefireProposal{},
		&game.TreasuryEntry{},
	)
	if err != nil {
		return nil, err
	}

	seedDefaultConfig(db, defaultConfigPayload)
	return db, nil
}

// seedDefaultConfig inserts the built-in rule set on first run so the very
// first tick has a config to load. Existing rows always win.
func seedDefaultConfig(db *gorm.DB, payload []byte) {
	if len(payload) == 0 {
		return
	}
	var count int64
	db.Model(&game.GameConfigRecord{}).Count(&count)
	if count > 0 {
		return
	}
	if err := db.Create(&game.GameConfigRecord{Payload: payload}).Error; err != nil {
		logging.Error("failed to seed default game config", err, nil)
		return
	}
	logging.Info("seeded default game config", nil)
}
