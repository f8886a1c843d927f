package ledger

import (
	"errors"
	"math"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

var (
	alice = common.HexToAddress("0x1111111111111111111111111111111111111111")
	bob   = common.HexToAddress("0x2222222222222222222222222222222222222222")
	vault = common.HexToAddress("0x9999999999999999999999999999999999999999")
)

func TestTokenLedgerTransfer(t *testing.T) {
	l := NewTokenLedger()
	if err := l.Credit(alice, 1000); err != nil {
		t.Fatalf("credit: %v", err)
	}

	if err := l.Transfer(alice, bob, 400); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if got := l.BalanceOf(alice); got != 600 {
		t.Fatalf("alice balance: got %d, want 600", got)
	}
	if got := l.BalanceOf(bob); got != 400 {
		t.Fatalf("bob balance: got %d, want 400", got)
	}
}

func TestTokenLedgerInsufficientBalance(t *testing.T) {
	l := NewTokenLedger()
	if err := l.Credit(alice, 100); err != nil {
		t.Fatalf("credit: %v", err)
	}

	err := l.Transfer(alice, bob, 101)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if got := l.BalanceOf(alice); got != 100 {
		t.Fatalf("failed transfer changed balance: %d", got)
	}
	if got := l.BalanceOf(bob); got != 0 {
		t.Fatalf("failed transfer credited destination: %d", got)
	}
}

func TestTokenLedgerOverflow(t *testing.T) {
	l := NewTokenLedger()
	if err := l.Credit(alice, 10); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := l.Credit(bob, math.MaxUint64); err != nil {
		t.Fatalf("credit: %v", err)
	}

	err := l.Transfer(alice, bob, 1)
	if !errors.Is(err, ErrBalanceOverflow) {
		t.Fatalf("expected ErrBalanceOverflow, got %v", err)
	}
	if got := l.BalanceOf(alice); got != 10 {
		t.Fatalf("failed transfer changed balance: %d", got)
	}
}

func TestCustodyReceiveAndPay(t *testing.T) {
	c := NewCustody(vault)
	if err := c.Credit(alice, 500); err != nil {
		t.Fatalf("credit: %v", err)
	}

	if err := c.Receive(alice, 300); err != nil {
		t.Fatalf("receive: %v", err)
	}
	if got := c.BalanceOf(vault); got != 300 {
		t.Fatalf("vault balance: got %d, want 300", got)
	}

	if err := c.Pay(bob, 120); err != nil {
		t.Fatalf("pay: %v", err)
	}
	if got := c.BalanceOf(bob); got != 120 {
		t.Fatalf("bob balance: got %d, want 120", got)
	}
	if got := c.BalanceOf(vault); got != 180 {
		t.Fatalf("vault balance: got %d, want 180", got)
	}
}

func TestCustodyFailures(t *testing.T) {
	c := NewCustody(vault)
	if err := c.Credit(alice, 50); err != nil {
		t.Fatalf("credit: %v", err)
	}

	if err := c.Receive(alice, 51); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if err := c.Pay(bob, 1); !errors.Is(err, ErrTransferFailed) {
		t.Fatalf("expected ErrTransferFailed, got %v", err)
	}
	if got := c.BalanceOf(alice); got != 50 {
		t.Fatalf("failed ops changed balance: %d", got)
	}
}

func TestSingleAdmin(t *testing.T) {
	auth := SingleAdmin{Administrator: alice}
	if !auth.IsAdministrator(alice) {
		t.Fatalf("administrator not recognized")
	}
	if auth.IsAdministrator(bob) {
		t.Fatalf("non-administrator recognized")
	}
}
