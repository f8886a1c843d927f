package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"swapPool/internal/model"
)

// Store provides Postgres persistence for pool events and metrics.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InsertEvents inserts pool events, skipping sequence numbers already
// present so replays stay idempotent.
func (s *Store) InsertEvents(ctx context.Context, poolAddress string, events []model.Event) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, event := range events {
		decoded, err := json.Marshal(event.Decoded)
		if err != nil {
			return fmt.Errorf("marshal event payload: %w", err)
		}
		batch.Queue(`
			INSERT INTO pool_events (
				pool_address, seq, op_seq, event_name, ts, decoded, emitted_at, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, now())
			ON CONFLICT (pool_address, seq) DO NOTHING
		`,
			poolAddress,
			int64(event.Seq),
			int64(event.OpSeq),
			event.EventName,
			int64(event.Timestamp),
			decoded,
			event.EmittedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// UpsertPoolState stores the latest reserve snapshot for a pool.
func (s *Store) UpsertPoolState(ctx context.Context, state model.PoolState) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO pool_state (
			pool_address, administrator, token_reserve, currency_reserve, initialized, last_op_seq, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (pool_address) DO UPDATE SET
			administrator = EXCLUDED.administrator,
			token_reserve = EXCLUDED.token_reserve,
			currency_reserve = EXCLUDED.currency_reserve,
			initialized = EXCLUDED.initialized,
			last_op_seq = EXCLUDED.last_op_seq,
			updated_at = now()
	`,
		state.PoolAddress,
		state.Administrator,
		int64(state.TokenReserve),
		int64(state.CurrencyReserve),
		state.Initialized,
		int64(state.LastOpSeq),
	)
	return err
}

// UpsertWindowMetrics inserts or updates swap window metrics.
func (s *Store) UpsertWindowMetrics(ctx context.Context, metrics []model.SwapWindowMetrics) error {
	if len(metrics) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, m := range metrics {
		batch.Queue(`
			INSERT INTO swap_window_metrics (
				pool_address, window_size_seconds, window_start_ts, window_end_ts,
				swap_count, volume_currency, volume_token, fee_currency, fee_token,
				liquidity_ops, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,now(),now())
			ON CONFLICT (pool_address, window_size_seconds, window_start_ts)
			DO UPDATE SET
				window_end_ts = EXCLUDED.window_end_ts,
				swap_count = EXCLUDED.swap_count,
				volume_currency = EXCLUDED.volume_currency,
				volume_token = EXCLUDED.volume_token,
				fee_currency = EXCLUDED.fee_currency,
				fee_token = EXCLUDED.fee_token,
				liquidity_ops = EXCLUDED.liquidity_ops,
				updated_at = now()
		`,
			m.PoolAddress,
			m.WindowSizeSecs,
			m.WindowStart,
			m.WindowEnd,
			int64(m.SwapCount),
			m.VolumeCurrency,
			m.VolumeToken,
			m.FeeCurrency,
			m.FeeToken,
			int64(m.LiquidityOps),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range metrics {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadState returns last_processed for a name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var last uint64
	row := s.pool.QueryRow(ctx, `SELECT last_processed FROM engine_state WHERE name=$1`, name)
	if err := row.Scan(&last); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return last, true, nil
}

// SaveState upserts last_processed for a name.
func (s *Store) SaveState(ctx context.Context, name string, last uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO engine_state (name, last_processed, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed = EXCLUDED.last_processed, updated_at = now()
	`, name, last)
	return err
}
