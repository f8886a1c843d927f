package engine

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"swapPool/internal/ledger"
	"swapPool/internal/model"
	"swapPool/internal/notify"
	"swapPool/internal/pool"
	"swapPool/internal/storage"
)

const (
	adminHex  = "0xAAAA000000000000000000000000000000000001"
	traderHex = "0xBBBB000000000000000000000000000000000002"
	poolHex   = "0xCCCC000000000000000000000000000000000003"
)

func writeOps(t *testing.T, path string, ops []model.OperationRecord) {
	t.Helper()
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create ops file: %v", err)
	}
	defer file.Close()

	for _, op := range ops {
		line, err := json.Marshal(op)
		if err != nil {
			t.Fatalf("marshal op: %v", err)
		}
		if _, err := file.Write(append(line, '\n')); err != nil {
			t.Fatalf("write op: %v", err)
		}
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("open %s: %v", path, err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if len(scanner.Bytes()) > 0 {
			lines = append(lines, scanner.Text())
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan %s: %v", path, err)
	}
	return lines
}

func newTestRunner(t *testing.T, dir string) (*Runner, *pool.Pool) {
	t.Helper()

	tokens := ledger.NewTokenLedger()
	custody := ledger.NewCustody(common.HexToAddress(poolHex))
	genesis := model.Genesis{Accounts: []model.GenesisAccount{
		{Address: adminHex, TokenBalance: 100000, CurrencyBalance: 100000},
		{Address: traderHex, TokenBalance: 10000, CurrencyBalance: 10000},
	}}
	if err := Seed(genesis, tokens, custody); err != nil {
		t.Fatalf("seed genesis: %v", err)
	}

	recorder := notify.NewRecorder()
	p := pool.New(pool.Config{
		Administrator: common.HexToAddress(adminHex),
		Address:       common.HexToAddress(poolHex),
	}, tokens, custody, ledger.SingleAdmin{Administrator: common.HexToAddress(adminHex)}, recorder)

	failures, err := NewJsonlWriter(filepath.Join(dir, "failures.jsonl"))
	if err != nil {
		t.Fatalf("open failures: %v", err)
	}
	t.Cleanup(func() { failures.Close() })

	runner := NewRunner(RunConfig{
		OpsPath:           filepath.Join(dir, "ops.jsonl"),
		BatchSize:         2,
		CheckpointPath:    filepath.Join(dir, "checkpoint.json"),
		CheckpointEnabled: true,
		MaxRetries:        1,
	}, p, recorder, storage.NewJsonlStorage(filepath.Join(dir, "events.jsonl")), nil, failures, nil)

	return runner, p
}

func TestRunnerReplay(t *testing.T) {
	dir := t.TempDir()

	writeOps(t, filepath.Join(dir, "ops.jsonl"), []model.OperationRecord{
		{Seq: 1, Op: model.OpInitialize, Caller: adminHex, TokenAmount: 1000, CurrencyAmount: 1000, Timestamp: 100},
		{Seq: 2, Op: model.OpSwapCurrencyForToken, Caller: traderHex, AmountIn: 100, Timestamp: 110},
		{Seq: 3, Op: model.OpRemoveLiquidity, Caller: traderHex, TokenAmount: 10, CurrencyAmount: 10, Timestamp: 120},
		{Seq: 4, Op: model.OpSwapTokenForCurrency, Caller: traderHex, AmountIn: 90, Timestamp: 130},
	})

	runner, p := newTestRunner(t, dir)
	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	// Seq 3 is rejected (trader is not the administrator); the rest apply.
	tokenReserve, currencyReserve := p.Reserves()
	if tokenReserve == 0 || currencyReserve == 0 {
		t.Fatalf("pool not initialized after replay: %d/%d", tokenReserve, currencyReserve)
	}

	events := readLines(t, filepath.Join(dir, "events.jsonl"))
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d: %v", len(events), events)
	}

	var last model.EventRecord
	if err := json.Unmarshal([]byte(events[len(events)-1]), &last); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if last.EventName != model.EventTokensSwapped || last.OpSeq != 4 || last.Timestamp != 130 {
		t.Fatalf("last event mismatch: %+v", last)
	}

	failures := readLines(t, filepath.Join(dir, "failures.jsonl"))
	if len(failures) != 1 {
		t.Fatalf("expected 1 failure, got %d: %v", len(failures), failures)
	}
	var failure model.OpFailure
	if err := json.Unmarshal([]byte(failures[0]), &failure); err != nil {
		t.Fatalf("decode failure: %v", err)
	}
	if failure.Seq != 3 || failure.Op != model.OpRemoveLiquidity {
		t.Fatalf("failure mismatch: %+v", failure)
	}

	cp, ok, err := NewCheckpointStore(filepath.Join(dir, "checkpoint.json"), true).Load()
	if err != nil || !ok {
		t.Fatalf("load checkpoint: ok=%v err=%v", ok, err)
	}
	if cp.LastAppliedSeq != 4 {
		t.Fatalf("checkpoint seq: got %d, want 4", cp.LastAppliedSeq)
	}
}

func TestRunnerResumeRebuildsState(t *testing.T) {
	dir := t.TempDir()

	writeOps(t, filepath.Join(dir, "ops.jsonl"), []model.OperationRecord{
		{Seq: 1, Op: model.OpInitialize, Caller: adminHex, TokenAmount: 1000, CurrencyAmount: 1000, Timestamp: 100},
		{Seq: 2, Op: model.OpSwapCurrencyForToken, Caller: traderHex, AmountIn: 100, Timestamp: 110},
	})

	runner, _ := newTestRunner(t, dir)
	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	eventsAfterFirst := readLines(t, filepath.Join(dir, "events.jsonl"))

	// A rerun over the same file emits nothing new but must rebuild the
	// in-memory pool so the engine can keep serving the ops log.
	rerun, p := newTestRunner(t, dir)
	if err := rerun.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	eventsAfterSecond := readLines(t, filepath.Join(dir, "events.jsonl"))
	if len(eventsAfterSecond) != len(eventsAfterFirst) {
		t.Fatalf("rerun appended events: %d != %d", len(eventsAfterSecond), len(eventsAfterFirst))
	}
	tokenReserve, currencyReserve := p.Reserves()
	if tokenReserve != 910 || currencyReserve != 1100 {
		t.Fatalf("rebuilt reserves: got %d/%d, want 910/1100", tokenReserve, currencyReserve)
	}
}

func TestRunnerResumeAppliesAppendedOps(t *testing.T) {
	dir := t.TempDir()

	ops := []model.OperationRecord{
		{Seq: 1, Op: model.OpInitialize, Caller: adminHex, TokenAmount: 1000, CurrencyAmount: 1000, Timestamp: 100},
		{Seq: 2, Op: model.OpSwapCurrencyForToken, Caller: traderHex, AmountIn: 100, Timestamp: 110},
	}
	writeOps(t, filepath.Join(dir, "ops.jsonl"), ops)

	runner, _ := newTestRunner(t, dir)
	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// The ops log grows; the rerun must apply the new swap against the
	// rebuilt reserves (910/1100), not an empty pool.
	ops = append(ops, model.OperationRecord{Seq: 3, Op: model.OpSwapCurrencyForToken, Caller: traderHex, AmountIn: 100, Timestamp: 120})
	writeOps(t, filepath.Join(dir, "ops.jsonl"), ops)

	rerun, p := newTestRunner(t, dir)
	if err := rerun.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	// 100*997*910 / (1100*1000 + 100*997) = 75 tokens out.
	tokenReserve, currencyReserve := p.Reserves()
	if tokenReserve != 835 || currencyReserve != 1200 {
		t.Fatalf("reserves after resume: got %d/%d, want 835/1200", tokenReserve, currencyReserve)
	}

	if failures := readLines(t, filepath.Join(dir, "failures.jsonl")); len(failures) != 0 {
		t.Fatalf("valid appended op recorded as failure: %v", failures)
	}

	events := readLines(t, filepath.Join(dir, "events.jsonl"))
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d: %v", len(events), events)
	}
	var last model.EventRecord
	if err := json.Unmarshal([]byte(events[len(events)-1]), &last); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	// Event numbering continues across the restart.
	if last.Seq != 3 || last.OpSeq != 3 {
		t.Fatalf("resumed event numbering: got seq=%d op_seq=%d, want 3/3", last.Seq, last.OpSeq)
	}
}

func TestWriteFailureLogsSinkErrors(t *testing.T) {
	dir := t.TempDir()

	failures, err := NewJsonlWriter(filepath.Join(dir, "failures.jsonl"))
	if err != nil {
		t.Fatalf("open failures: %v", err)
	}
	// Close the underlying file so buffered writes eventually fail.
	if err := failures.file.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}

	core, logs := observer.New(zap.WarnLevel)
	runner := &Runner{failures: failures, logger: zap.New(core)}

	for i := 0; i < 200; i++ {
		runner.writeFailure(model.OpFailure{
			Seq:   uint64(i + 1),
			Op:    model.OpSwapCurrencyForToken,
			Error: "insufficient pool reserve",
		})
	}

	if logs.FilterMessage("write failure record failed").Len() == 0 {
		t.Fatal("sink write error was not logged")
	}
}

func TestRunnerMalformedLine(t *testing.T) {
	dir := t.TempDir()

	opsPath := filepath.Join(dir, "ops.jsonl")
	if err := os.WriteFile(opsPath, []byte("{not json}\n"), 0o644); err != nil {
		t.Fatalf("write ops: %v", err)
	}

	runner, _ := newTestRunner(t, dir)
	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	failures := readLines(t, filepath.Join(dir, "failures.jsonl"))
	if len(failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(failures))
	}
}
