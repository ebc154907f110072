package tick

import (
	"errors"

	"github.com/derajoxford/stratagem-server-sub002/internal/logging"
	"github.com/derajoxford/stratagem-server-sub002/internal/storage"
	"gorm.io/gorm"
)

// auditBlockades lifts blockades whose blockading nation no longer has
// naval capacity (or no longer exists). Each nation's audit is independent
// and best-effort: a failed check is logged and the sweep continues, so one
// bad row never aborts the tick. Returns the number of blockades lifted.
func (e *Engine) auditBlockades() int {
	nations, err := e.repo.ListBlockadedNations()
	if err != nil {
		logging.Error("blockade audit failed to list nations", err, nil)
		return 0
	}

	lifted := 0
	liftedNations := make(map[uint]bool)
	for i := range nations {
		n := &nations[i]

		lift := false
		if n.BlockadingNationID == nil {
			// Flag without a blockader is inconsistent; repair it.
			lift = true
		} else {
			m, err := e.repo.GetMilitaryByNationID(*n.BlockadingNationID)
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				lift = true
			case err != nil:
				logging.Error("blockade audit check failed", err, logging.Fields{"nation_id": n.ID})
				continue
			case m.Ships == 0:
				lift = true
			}
		}

		if !lift {
			continue
		}
		if err := e.repo.ClearBlockade(n.ID); err != nil {
			logging.Error("blockade audit failed to clear blockade", err, logging.Fields{"nation_id": n.ID})
			continue
		}
		lifted++
		liftedNations[n.ID] = true
		logging.Info("blockade lifted", logging.Fields{"nation_id": n.ID})
	}
	if lifted > 0 {
		e.syncWarBlockades(liftedNations)
	}
	return lifted
}

// syncWarBlockades clears the blockade fields on active wars whose blockaded
// belligerent was just lifted, so war state and nation state agree after the
// sweep. Best-effort like the rest of the audit.
func (e *Engine) syncWarBlockades(liftedNations map[uint]bool) {
	wars, err := e.repo.ListActiveWars()
	if err != nil {
		logging.Error("blockade audit failed to list wars", err, nil)
		return
	}

	var updates []storage.WarUpdate
	for i := range wars {
		w := &wars[i]
		if !w.BlockadeActive || w.BlockadeNationID == nil {
			continue
		}
		// The blockaded side is the belligerent opposite the blockader.
		victim := w.DefenderNationID
		if *w.BlockadeNationID == w.DefenderNationID {
			victim = w.AttackerNationID
		}
		if !liftedNations[victim] {
			continue
		}
		loaded := w.Version
		w.BlockadeActive = false
		w.BlockadeNationID = nil
		updates = append(updates, storage.WarUpdate{War: w, LoadedVersion: loaded})
	}
	if len(updates) == 0 {
		return
	}
	if err := e.repo.UpdateWarsBatch(updates); err != nil {
		logging.Error("blockade audit failed to sync wars", err, logging.Fields{"wars": len(updates)})
	}
}
