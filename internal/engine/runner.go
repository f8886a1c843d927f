package engine

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"swapPool/internal/model"
	"swapPool/internal/notify"
	"swapPool/internal/pool"
	"swapPool/internal/storage"
	"swapPool/internal/storage/postgres"
)

// RunConfig holds runtime settings for the replay engine.
type RunConfig struct {
	OpsPath           string
	BatchSize         int
	CheckpointPath    string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
}

// Runner replays an operations file against the pool and persists the
// resulting events.
type Runner struct {
	cfg        RunConfig
	pool       *pool.Pool
	recorder   *notify.Recorder
	storage    storage.Storage
	store      *postgres.Store
	failures   *JsonlWriter
	logger     *zap.Logger
	checkpoint *CheckpointStore
	seen       map[uint64]struct{}
}

// NewRunner builds a Runner with its dependencies. The Postgres store and
// the failures writer are optional.
func NewRunner(cfg RunConfig, p *pool.Pool, recorder *notify.Recorder, eventSink storage.Storage, store *postgres.Store, failures *JsonlWriter, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:        cfg,
		pool:       p,
		recorder:   recorder,
		storage:    eventSink,
		store:      store,
		failures:   failures,
		logger:     logger,
		checkpoint: NewCheckpointStore(cfg.CheckpointPath, cfg.CheckpointEnabled),
		seen:       make(map[uint64]struct{}),
	}
}

// Run executes the replay loop.
func (r *Runner) Run(ctx context.Context) error {
	if r.pool == nil {
		return fmt.Errorf("pool is nil")
	}
	if r.recorder == nil {
		return fmt.Errorf("recorder is nil")
	}
	if r.storage == nil {
		return fmt.Errorf("storage is nil")
	}
	if r.cfg.BatchSize <= 0 {
		return fmt.Errorf("batch size must be greater than zero")
	}

	var resumeSeq uint64
	if r.checkpoint != nil {
		cp, ok, err := r.checkpoint.Load()
		if err != nil {
			return err
		}
		if ok {
			resumeSeq = cp.LastAppliedSeq
			r.logger.Info("resume from checkpoint", zap.Uint64("last_applied_seq", resumeSeq))
		}
	}

	file, err := os.Open(r.cfg.OpsPath)
	if err != nil {
		return fmt.Errorf("open ops: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var total, applied, failed, skipped int
	var lastSeq uint64
	pending := 0

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		total++

		var record model.OperationRecord
		if err := json.Unmarshal(line, &record); err != nil {
			failed++
			r.writeFailure(model.OpFailure{Error: err.Error()})
			continue
		}

		if record.Seq <= resumeSeq {
			// Already persisted in a previous run. Re-apply to rebuild
			// the in-memory pool and ledger state, then discard the
			// re-emitted events so the sinks see each event once. The
			// discarded emissions keep the recorder's event sequence in
			// step with a single full replay.
			skipped++
			r.recorder.SetOperation(record.Seq, record.Timestamp)
			if err := r.applyOp(record); err != nil {
				r.logger.Debug("operation rejected during resume",
					zap.Uint64("seq", record.Seq),
					zap.String("op", record.Op),
					zap.Error(err),
				)
			}
			r.recorder.Drain()
			continue
		}
		if r.isDuplicate(record.Seq) {
			skipped++
			continue
		}

		r.recorder.SetOperation(record.Seq, record.Timestamp)
		if err := r.applyOp(record); err != nil {
			failed++
			r.writeFailure(model.OpFailure{
				Seq:    record.Seq,
				Op:     record.Op,
				Caller: record.Caller,
				Error:  err.Error(),
			})
			r.logger.Debug("operation rejected",
				zap.Uint64("seq", record.Seq),
				zap.String("op", record.Op),
				zap.Error(err),
			)
			continue
		}

		applied++
		pending++
		lastSeq = record.Seq

		if pending >= r.cfg.BatchSize {
			if err := r.flush(ctx, lastSeq); err != nil {
				return err
			}
			pending = 0
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan ops: %w", err)
	}

	if pending > 0 {
		if err := r.flush(ctx, lastSeq); err != nil {
			return err
		}
	}

	if err := r.failures.Flush(); err != nil {
		return fmt.Errorf("flush failures: %w", err)
	}

	tokenReserve, currencyReserve := r.pool.Reserves()
	r.logger.Info("replay complete",
		zap.Int("total", total),
		zap.Int("applied", applied),
		zap.Int("failed", failed),
		zap.Int("skipped", skipped),
		zap.Uint64("token_reserve", tokenReserve),
		zap.Uint64("currency_reserve", currencyReserve),
	)

	return nil
}

func (r *Runner) applyOp(record model.OperationRecord) error {
	caller, err := ParseAddress(record.Caller)
	if err != nil {
		return err
	}

	switch record.Op {
	case model.OpInitialize:
		return r.pool.Initialize(caller, record.TokenAmount, record.CurrencyAmount)
	case model.OpAddLiquidity:
		return r.pool.AddLiquidity(caller, record.TokenAmount, record.CurrencyAmount)
	case model.OpRemoveLiquidity:
		return r.pool.RemoveLiquidity(caller, record.TokenAmount, record.CurrencyAmount)
	case model.OpSwapCurrencyForToken:
		_, err := r.pool.SwapCurrencyForToken(caller, record.AmountIn)
		return err
	case model.OpSwapTokenForCurrency:
		_, err := r.pool.SwapTokenForCurrency(caller, record.AmountIn)
		return err
	default:
		return fmt.Errorf("unknown operation: %s", record.Op)
	}
}

// flush drains recorded events to the sinks and advances the checkpoint.
func (r *Runner) flush(ctx context.Context, lastSeq uint64) error {
	events := r.recorder.Drain()

	if err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(context.Context) error {
		if err := r.storage.PutEventBatch(events); err != nil {
			r.logger.Warn("store events failed", zap.Error(err), zap.Int("events", len(events)))
			return err
		}
		return nil
	}); err != nil {
		return fmt.Errorf("store events: %w", err)
	}

	if r.store != nil {
		tokenReserve, currencyReserve := r.pool.Reserves()
		state := model.PoolState{
			Administrator:   r.pool.Administrator().Hex(),
			PoolAddress:     r.pool.Address().Hex(),
			TokenReserve:    tokenReserve,
			CurrencyReserve: currencyReserve,
			Initialized:     tokenReserve > 0,
			LastOpSeq:       lastSeq,
		}
		if err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
			if err := r.store.InsertEvents(ctx, state.PoolAddress, events); err != nil {
				return err
			}
			return r.store.UpsertPoolState(ctx, state)
		}); err != nil {
			return fmt.Errorf("persist to postgres: %w", err)
		}
	}

	if r.checkpoint != nil {
		if err := r.checkpoint.Save(lastSeq); err != nil {
			return err
		}
	}

	r.logger.Info("batch complete", zap.Int("events", len(events)), zap.Uint64("last_seq", lastSeq))
	return nil
}

func (r *Runner) isDuplicate(seq uint64) bool {
	if _, ok := r.seen[seq]; ok {
		return true
	}
	r.seen[seq] = struct{}{}
	return false
}

func (r *Runner) writeFailure(failure model.OpFailure) {
	if r.failures == nil {
		return
	}
	if err := r.failures.Write(failure); err != nil {
		r.logger.Warn("write failure record failed",
			zap.Uint64("seq", failure.Seq),
			zap.String("op", failure.Op),
			zap.Error(err),
		)
	}
}
