package tick

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/derajoxford/stratagem-server-sub002/internal/config"
	"github.com/derajoxford/stratagem-server-sub002/internal/game"
	"github.com/derajoxford/stratagem-server-sub002/internal/logging"
	"github.com/derajoxford/stratagem-server-sub002/internal/retry"
	"github.com/derajoxford/stratagem-server-sub002/internal/service"
	"github.com/derajoxford/stratagem-server-sub002/internal/storage"
	"github.com/google/uuid"
)

// DefaultBatchSize bounds how many nations share one atomic treasury write.
const DefaultBatchSize = 10

// Repo is the storage subset the turn scheduler needs.
type Repo interface {
	GetOrCreateGameState() (*game.GameState, error)
	TryBeginProcessing(token string) (bool, error)
	ReleaseProcessing() error
	CommitTurnAdvance(newTurn int64, processedAt time.Time) error
	GetLatestConfigPayload() ([]byte, error)
	ListActiveNations() ([]game.Nation, error)
	ListBlockadedNations() ([]game.Nation, error)
	ApplyTreasuryBatch(updates []storage.TreasuryUpdate) error
	ClearBlockade(nationID uint) error
	GetMilitaryByNationID(nationID uint) (*game.Military, error)
	ListActiveWars() ([]game.War, error)
	UpdateWarsBatch(updates []storage.WarUpdate) error
}

// Result is the structured outcome of one tick invocation. AlreadyRunning
// is a normal concurrency outcome, not a failure: another invocation holds
// the processing lock.
type Result struct {
	Success          bool   `json:"success"`
	AlreadyRunning   bool   `json:"already_running"`
	Message          string `json:"message"`
	TurnNumber       int64  `json:"turn_number"`
	NationsProcessed int    `json:"nations_processed"`
	WarsProcessed    int    `json:"wars_processed"`
	BlockadesLifted  int    `json:"blockades_lifted"`
	Error            string `json:"error,omitempty"`
}

// Options tunes a tick engine. Zero values select the defaults; Pause and
// Now are injectable so tests run instantly and deterministically.
type Options struct {
	BatchSize int
	// Pacing is the base inter-batch delay. The actual pause is jittered
	// up to 2x. Load shedding only, not a correctness mechanism.
	Pacing time.Duration
	Retry  retry.Policy
	Pause  func(time.Duration)
	Now    func() time.Time
}

// Engine advances the whole game world by one turn per Run call, with the
// persisted is_processing flag as a cross-replica mutual-exclusion lock.
type Engine struct {
	repo      Repo
	batchSize int
	pacing    time.Duration
	retry     retry.Policy
	pause     func(time.Duration)
	now       func() time.Time
	workerID  string
}

func New(repo Repo, opts Options) *Engine {
	e := &Engine{
		repo:      repo,
		batchSize: opts.BatchSize,
		pacing:    opts.Pacing,
		retry:     opts.Retry,
		pause:     opts.Pause,
		now:       opts.Now,
		workerID:  uuid.NewString(),
	}
	if e.batchSize <= 0 {
		e.batchSize = DefaultBatchSize
	}
	if e.pacing < 0 {
		e.pacing = 0
	}
	if e.retry.Attempts == 0 {
		e.retry = retry.Default()
	}
	if e.pause == nil {
		e.pause = time.Sleep
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Run performs one tick: acquire the lock, apply nation economics in
// batches, advance every active war, audit blockades, then advance the turn
// counter and release the lock in one atomic update. Any failure after the
// lock acquire triggers a best-effort unlock so a failed tick never blocks
// future ticks, and never counts as having run.
func (e *Engine) Run() Result {
	var gs *game.GameState
	err := e.retry.Do("load game state", func() error {
		var lerr error
		gs, lerr = e.repo.GetOrCreateGameState()
		return lerr
	})
	if err != nil {
		return Result{Message: "failed to load game state", Error: truncate(err.Error())}
	}

	token := e.workerID + ":" + uuid.NewString()
	acquired, err := e.repo.TryBeginProcessing(token)
	if err != nil {
		return Result{Message: "failed to acquire processing lock", Error: truncate(err.Error())}
	}
	if !acquired {
		return Result{
			AlreadyRunning: true,
			Message:        "turn processing already in progress",
			TurnNumber:     gs.CurrentTurnNumber,
		}
	}

	// The pre-lock snapshot may predate a tick another replica finished
	// between the read and the acquire. Re-read under the lock so the turn
	// counter this tick commits is current.
	err = e.retry.Do("reload game state", func() error {
		var lerr error
		gs, lerr = e.repo.GetOrCreateGameState()
		return lerr
	})
	if err != nil {
		e.unlockBestEffort()
		return Result{Message: "failed to reload game state", Error: truncate(err.Error())}
	}

	logging.Info("tick started", logging.Fields{"turn": gs.CurrentTurnNumber, "token": token})
	res := e.runLocked(gs)
	if !res.Success {
		e.unlockBestEffort()
		logging.Error("tick failed", nil, logging.Fields{"turn": gs.CurrentTurnNumber, "error": res.Error})
	} else {
		logging.Info("tick completed", logging.Fields{
			"turn":    res.TurnNumber,
			"nations": res.NationsProcessed,
			"wars":    res.WarsProcessed,
		})
	}
	return res
}

// runLocked executes steps 3..8 of the tick protocol while the lock is
// held. It never touches the lock itself; the caller owns release.
func (e *Engine) runLocked(gs *game.GameState) (res Result) {
	res.TurnNumber = gs.CurrentTurnNumber

	defer func() {
		if r := recover(); r != nil {
			res = Result{
				TurnNumber: gs.CurrentTurnNumber,
				Message:    "tick aborted by unexpected panic",
				Error:      truncate(fmt.Sprint(r)),
			}
		}
	}()

	// Missing or malformed config aborts before any nation or war mutation.
	var payload []byte
	err := e.retry.Do("load game config", func() error {
		var lerr error
		payload, lerr = e.repo.GetLatestConfigPayload()
		return lerr
	})
	if err != nil {
		res.Message = "game config missing"
		res.Error = truncate(err.Error())
		return res
	}
	cfg, err := config.Parse(payload)
	if err != nil {
		res.Message = "game config invalid"
		res.Error = truncate(err.Error())
		return res
	}

	var nations []game.Nation
	err = e.retry.Do("list active nations", func() error {
		var lerr error
		nations, lerr = e.repo.ListActiveNations()
		return lerr
	})
	if err != nil {
		res.Message = "failed to list active nations"
		res.Error = truncate(err.Error())
		return res
	}

	processed, err := e.applyEconomics(nations, cfg, gs.CurrentTurnNumber)
	res.NationsProcessed = processed
	if err != nil {
		res.Message = "nation batch commit failed"
		res.Error = truncate(err.Error())
		return res
	}

	warsProcessed, err := e.advanceWars(cfg)
	res.WarsProcessed = warsProcessed
	if err != nil {
		res.Message = "war advancement failed"
		res.Error = truncate(err.Error())
		return res
	}

	res.BlockadesLifted = e.auditBlockades()

	newTurn := gs.CurrentTurnNumber + 1
	err = e.retry.Do("commit turn advance", func() error {
		return e.repo.CommitTurnAdvance(newTurn, e.now())
	})
	if err != nil {
		res.Message = "failed to commit turn advance"
		res.Error = truncate(err.Error())
		return res
	}

	res.Success = true
	res.TurnNumber = newTurn
	res.Message = fmt.Sprintf("advanced to turn %d", newTurn)
	return res
}

// applyEconomics commits per-nation treasury updates in fixed-size batches,
// strictly sequentially, with a jittered pause between batches to shed
// storage load. Committed batches stay durable even when a later batch
// fails.
func (e *Engine) applyEconomics(nations []game.Nation, cfg *config.GameConfig, turn int64) (int, error) {
	processed := 0
	for start := 0; start < len(nations); start += e.batchSize {
		end := start + e.batchSize
		if end > len(nations) {
			end = len(nations)
		}
		batch := nations[start:end]

		updates := make([]storage.TreasuryUpdate, 0, len(batch))
		for i := range batch {
			n := &batch[i]
			income := nationIncome(n, &cfg.Economy)
			balance := n.Treasury + income
			updates = append(updates, storage.TreasuryUpdate{
				NationID:   n.ID,
				NewBalance: balance,
				Entry: game.TreasuryEntry{
					NationID:   n.ID,
					TurnNumber: turn,
					Amount:     income,
					Balance:    balance,
					Memo:       "turn income",
				},
			})
		}

		err := e.retry.Do("apply treasury batch", func() error {
			return e.repo.ApplyTreasuryBatch(updates)
		})
		if err != nil {
			return processed, err
		}
		processed += len(batch)

		if end < len(nations) && e.pacing > 0 {
			e.pause(e.pacing + time.Duration(rand.Int63n(int64(e.pacing)+1)))
		}
	}
	return processed, nil
}

// nationIncome computes one nation's treasury delta for the turn. The model
// is flat income with a percentage penalty while blockaded.
func nationIncome(n *game.Nation, eco *config.EconomySettings) int64 {
	income := eco.BaseIncomePerTurn
	if n.IsBlockaded && eco.BlockadePenaltyPercent > 0 {
		income -= income * int64(eco.BlockadePenaltyPercent) / 100
	}
	return income
}

// advanceWars regenerates tactical points and applies resistance decay for
// every active war, committing all updates as one version-checked batch.
func (e *Engine) advanceWars(cfg *config.GameConfig) (int, error) {
	var wars []game.War
	err := e.retry.Do("list active wars", func() error {
		var lerr error
		wars, lerr = e.repo.ListActiveWars()
		return lerr
	})
	if err != nil {
		return 0, err
	}
	if len(wars) == 0 {
		return 0, nil
	}

	updates := make([]storage.WarUpdate, 0, len(wars))
	for i := range wars {
		w := &wars[i]
		loaded := w.Version
		if err := service.AdvanceWarTurn(w, &cfg.War); err != nil {
			// Wars are loaded as active; a terminal status here means the
			// listing raced a battle. Skip it rather than fail the tick.
			continue
		}
		updates = append(updates, storage.WarUpdate{War: w, LoadedVersion: loaded})
	}

	err = e.retry.Do("commit war advances", func() error {
		return e.repo.UpdateWarsBatch(updates)
	})
	if err != nil {
		return 0, err
	}
	return len(updates), nil
}

// unlockBestEffort force-releases the processing lock after a failed tick.
// A failure to unlock is logged as critical but never propagated: the next
// tick must be able to run, and the failure path must not throw.
func (e *Engine) unlockBestEffort() {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("panic while releasing processing lock", nil, logging.Fields{"panic": fmt.Sprint(r)})
		}
	}()
	err := e.retry.Do("release processing lock", func() error {
		return e.repo.ReleaseProcessing()
	})
	if err != nil {
		logging.Error("CRITICAL: failed to release processing lock", err, nil)
	}
}

// truncate bounds error context so tick results stay loggable.
func truncate(s string) string {
	const max = 512
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
