package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"swapPool/internal/config"
	"swapPool/internal/engine"
	"swapPool/internal/ledger"
	"swapPool/internal/notify"
	"swapPool/internal/pool"
	"swapPool/internal/storage"
	"swapPool/internal/storage/postgres"
)

func main() {
	root := &cobra.Command{
		Use:          "pool",
		Short:        "Constant-product swap pool engine",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Replay an operations file against the pool",
		RunE:  runPool,
	}

	runCmd.Flags().String("ops", "", "input operations JSONL")
	runCmd.Flags().String("genesis", "", "genesis balances JSON")
	runCmd.Flags().String("admin", "", "administrator address")
	runCmd.Flags().String("pool-address", "", "pool account address")
	runCmd.Flags().String("out", "./data/events.jsonl", "output events JSONL path")
	runCmd.Flags().String("failures", "./data/failures.jsonl", "rejected operations JSONL path")
	runCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	runCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	runCmd.Flags().Int("batch-size", 500, "operations per storage flush")
	runCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for event and state mirroring")
	runCmd.Flags().Int("max-retries", 5, "maximum retry attempts for storage writes")
	runCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a swap against given reserves",
		RunE:  runQuote,
	}

	quoteCmd.Flags().Uint64("amount-in", 0, "input amount")
	quoteCmd.Flags().Uint64("reserve-in", 0, "input-side reserve")
	quoteCmd.Flags().Uint64("reserve-out", 0, "output-side reserve")

	root.AddCommand(quoteCmd)

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Aggregate pool events into swap window metrics",
		RunE:  runStats,
	}

	statsCmd.Flags().String("in", "", "input pool events JSONL")
	statsCmd.Flags().String("pool-address", "", "pool account address")
	statsCmd.Flags().String("window", "5m", "aggregation window (e.g. 1m, 5m, 1h)")
	statsCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	statsCmd.Flags().Int("batch-size", 1000, "batch size for DB writes")
	statsCmd.Flags().String("state-file", "", "optional local state file for progress tracking")
	statsCmd.Flags().String("recompute-from", "", "recompute from timestamp (unix seconds or RFC3339)")
	statsCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(statsCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runPool(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.OpsPath == "" {
		return fmt.Errorf("ops path is required")
	}
	if cfg.GenesisPath == "" {
		return fmt.Errorf("genesis path is required")
	}

	admin, err := engine.ParseAddress(cfg.Administrator)
	if err != nil {
		return fmt.Errorf("admin: %w", err)
	}
	poolAddr, err := engine.ParseAddress(cfg.PoolAddress)
	if err != nil {
		return fmt.Errorf("pool address: %w", err)
	}

	genesis, err := engine.LoadGenesis(cfg.GenesisPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tokens := ledger.NewTokenLedger()
	custody := ledger.NewCustody(poolAddr)
	if err := engine.Seed(genesis, tokens, custody); err != nil {
		return fmt.Errorf("seed genesis: %w", err)
	}

	recorder := notify.NewRecorder()
	notifier := notify.Multi{recorder, notify.NewLogNotifier(logger)}

	p := pool.New(pool.Config{
		Administrator: admin,
		Address:       poolAddr,
	}, tokens, custody, ledger.SingleAdmin{Administrator: admin}, notifier)

	var store *postgres.Store
	if cfg.PGDSN != "" {
		store, err = postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
	}

	var failures *engine.JsonlWriter
	if cfg.Failures != "" {
		failures, err = engine.NewJsonlWriter(cfg.Failures)
		if err != nil {
			return fmt.Errorf("open failures file: %w", err)
		}
		defer failures.Close()
	}

	runner := engine.NewRunner(engine.RunConfig{
		OpsPath:           cfg.OpsPath,
		BatchSize:         cfg.BatchSize,
		CheckpointPath:    cfg.Checkpoint,
		CheckpointEnabled: cfg.CheckpointEnabled,
		MaxRetries:        cfg.MaxRetries,
		RetryBackoff:      cfg.RetryBackoff,
	}, p, recorder, storage.NewJsonlStorage(cfg.Out), store, failures, logger)

	logger.Info("pool start",
		zap.String("ops", cfg.OpsPath),
		zap.String("genesis", cfg.GenesisPath),
		zap.String("admin", admin.Hex()),
		zap.String("pool_address", poolAddr.Hex()),
		zap.String("out", cfg.Out),
		zap.Int("batch_size", cfg.BatchSize),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
		zap.String("checkpoint", cfg.Checkpoint),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
	)

	return runner.Run(ctx)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
