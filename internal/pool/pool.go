package pool

import (
	"fmt"
	"sync"

	smath "github.com/ava-labs/avalanchego/utils/math"
	"github.com/ethereum/go-ethereum/common"

	"swapPool/internal/model"
	"swapPool/internal/pricing"
)

// Config holds the immutable identities of a pool.
type Config struct {
	Administrator common.Address
	// Address is the pool's own account in the ledger and custody.
	Address common.Address
}

// Pool is a two-asset constant-product market maker. It tracks a token
// reserve and a native-currency reserve; the reserves mirror the pool
// account's balances in the Ledger and Custody collaborators.
//
// All mutating operations are serialized behind a single mutex and apply
// all-or-nothing: a failed operation leaves reserves and collaborator
// balances exactly as they were.
type Pool struct {
	mu  sync.Mutex
	cfg Config

	tokenReserve    uint64
	currencyReserve uint64

	ledger   Ledger
	custody  Custody
	auth     Authorizer
	notifier Notifier
}

// New builds a pool with its collaborators. A nil notifier is replaced
// with NopNotifier.
func New(cfg Config, ledger Ledger, custody Custody, auth Authorizer, notifier Notifier) *Pool {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Pool{
		cfg:      cfg,
		ledger:   ledger,
		custody:  custody,
		auth:     auth,
		notifier: notifier,
	}
}

// Reserves returns a snapshot of the current reserves. The snapshot must
// not be used to precompute a swap that is applied later; swap pricing is
// always re-evaluated under the lock.
func (p *Pool) Reserves() (tokenReserve, currencyReserve uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tokenReserve, p.currencyReserve
}

// Initialized reports whether the pool has been seeded. The flag is
// derived from the token reserve; a pool drained back to zero by
// RemoveLiquidity becomes eligible for Initialize again.
func (p *Pool) Initialized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tokenReserve > 0
}

// Address returns the pool's own account address.
func (p *Pool) Address() common.Address {
	return p.cfg.Address
}

// Administrator returns the administrator address.
func (p *Pool) Administrator() common.Address {
	return p.cfg.Administrator
}

// Initialize seeds an empty pool with both reserves. Administrator only;
// fails if the pool already holds token reserve.
func (p *Pool) Initialize(caller common.Address, tokenAmount, currencyAmount uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.auth.IsAdministrator(caller) {
		return ErrUnauthorized
	}
	if p.tokenReserve != 0 {
		return ErrAlreadyInitialized
	}
	if tokenAmount == 0 || currencyAmount == 0 {
		return ErrInvalidAmount
	}

	if err := p.pullLiquidity(caller, tokenAmount, currencyAmount); err != nil {
		return err
	}

	p.tokenReserve = tokenAmount
	p.currencyReserve = currencyAmount

	p.notifier.Emit(model.EventLiquidityAdded, model.LiquidityAddedData{
		Provider:       caller.Hex(),
		TokenAmount:    tokenAmount,
		CurrencyAmount: currencyAmount,
	})
	return nil
}

// AddLiquidity adds to both reserves. Administrator only. The added
// amounts need not preserve the current price ratio; the administrator is
// trusted not to create arbitrage against itself.
func (p *Pool) AddLiquidity(caller common.Address, tokenAmount, currencyAmount uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.auth.IsAdministrator(caller) {
		return ErrUnauthorized
	}
	if tokenAmount == 0 || currencyAmount == 0 {
		return ErrInvalidAmount
	}

	newToken, err := smath.Add(p.tokenReserve, tokenAmount)
	if err != nil {
		return fmt.Errorf("token reserve: %w", ErrOverflow)
	}
	newCurrency, err := smath.Add(p.currencyReserve, currencyAmount)
	if err != nil {
		return fmt.Errorf("currency reserve: %w", ErrOverflow)
	}

	if err := p.pullLiquidity(caller, tokenAmount, currencyAmount); err != nil {
		return err
	}

	p.tokenReserve = newToken
	p.currencyReserve = newCurrency

	p.notifier.Emit(model.EventLiquidityAdded, model.LiquidityAddedData{
		Provider:       caller.Hex(),
		TokenAmount:    tokenAmount,
		CurrencyAmount: currencyAmount,
	})
	return nil
}

// RemoveLiquidity pays out both assets from the reserves to the
// administrator. Administrator only.
func (p *Pool) RemoveLiquidity(caller common.Address, tokenAmount, currencyAmount uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.auth.IsAdministrator(caller) {
		return ErrUnauthorized
	}
	if tokenAmount > p.tokenReserve || currencyAmount > p.currencyReserve {
		return ErrInsufficientReserve
	}

	if err := p.ledger.Transfer(p.cfg.Address, caller, tokenAmount); err != nil {
		return fmt.Errorf("pay out token: %w", err)
	}
	if err := p.custody.Pay(caller, currencyAmount); err != nil {
		// Undo the token payout so the failed operation leaves
		// balances untouched.
		if rbErr := p.ledger.Transfer(caller, p.cfg.Address, tokenAmount); rbErr != nil {
			return fmt.Errorf("pay out currency: %w (token rollback also failed: %v)", err, rbErr)
		}
		return fmt.Errorf("pay out currency: %w", err)
	}

	p.tokenReserve -= tokenAmount
	p.currencyReserve -= currencyAmount

	p.notifier.Emit(model.EventLiquidityRemoved, model.LiquidityRemovedData{
		Provider:       caller.Hex(),
		TokenAmount:    tokenAmount,
		CurrencyAmount: currencyAmount,
	})
	return nil
}

// SwapCurrencyForToken sells currencyIn native currency to the pool for
// tokens at the constant-product price. Open to any caller. Returns the
// token amount paid out.
func (p *Pool) SwapCurrencyForToken(caller common.Address, currencyIn uint64) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if currencyIn == 0 {
		return 0, ErrInvalidAmount
	}
	if p.tokenReserve == 0 || p.currencyReserve == 0 {
		return 0, fmt.Errorf("pool is empty: %w", ErrInsufficientReserve)
	}

	newCurrency, err := smath.Add(p.currencyReserve, currencyIn)
	if err != nil {
		return 0, fmt.Errorf("currency reserve: %w", ErrOverflow)
	}

	tokenOut, err := pricing.Quote(currencyIn, p.currencyReserve, p.tokenReserve)
	if err != nil {
		return 0, err
	}
	// Quote is strictly below the token reserve for a non-empty pool, so
	// this subtraction cannot underflow.
	newToken, err := smath.Sub(p.tokenReserve, tokenOut)
	if err != nil {
		return 0, fmt.Errorf("token reserve: %w", ErrInsufficientReserve)
	}

	if err := p.custody.Receive(caller, currencyIn); err != nil {
		return 0, fmt.Errorf("collect currency: %w", err)
	}
	if err := p.ledger.Transfer(p.cfg.Address, caller, tokenOut); err != nil {
		if rbErr := p.custody.Pay(caller, currencyIn); rbErr != nil {
			return 0, fmt.Errorf("pay out token: %w (currency rollback also failed: %v)", err, rbErr)
		}
		return 0, fmt.Errorf("pay out token: %w", err)
	}

	p.currencyReserve = newCurrency
	p.tokenReserve = newToken

	p.notifier.Emit(model.EventTokensSwapped, model.TokensSwappedData{
		Swapper:        caller.Hex(),
		CurrencyAmount: currencyIn,
		TokenAmount:    tokenOut,
		Direction:      model.DirectionCurrencyIn,
	})
	return tokenOut, nil
}

// SwapTokenForCurrency sells tokenIn tokens to the pool for native
// currency at the constant-product price. Open to any caller. Returns the
// currency amount paid out.
func (p *Pool) SwapTokenForCurrency(caller common.Address, tokenIn uint64) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if tokenIn == 0 {
		return 0, ErrInvalidAmount
	}
	if p.tokenReserve == 0 || p.currencyReserve == 0 {
		return 0, fmt.Errorf("pool is empty: %w", ErrInsufficientReserve)
	}

	newToken, err := smath.Add(p.tokenReserve, tokenIn)
	if err != nil {
		return 0, fmt.Errorf("token reserve: %w", ErrOverflow)
	}

	currencyOut, err := pricing.Quote(tokenIn, p.tokenReserve, p.currencyReserve)
	if err != nil {
		return 0, err
	}
	newCurrency, err := smath.Sub(p.currencyReserve, currencyOut)
	if err != nil {
		return 0, fmt.Errorf("currency reserve: %w", ErrInsufficientReserve)
	}

	if err := p.ledger.Transfer(caller, p.cfg.Address, tokenIn); err != nil {
		return 0, fmt.Errorf("collect token: %w", err)
	}
	if err := p.custody.Pay(caller, currencyOut); err != nil {
		if rbErr := p.ledger.Transfer(p.cfg.Address, caller, tokenIn); rbErr != nil {
			return 0, fmt.Errorf("pay out currency: %w (token rollback also failed: %v)", err, rbErr)
		}
		return 0, fmt.Errorf("pay out currency: %w", err)
	}

	p.tokenReserve = newToken
	p.currencyReserve = newCurrency

	p.notifier.Emit(model.EventTokensSwapped, model.TokensSwappedData{
		Swapper:        caller.Hex(),
		CurrencyAmount: currencyOut,
		TokenAmount:    tokenIn,
		Direction:      model.DirectionTokenIn,
	})
	return currencyOut, nil
}

// pullLiquidity collects both assets from the provider, refunding the
// token transfer if the currency leg fails.
func (p *Pool) pullLiquidity(provider common.Address, tokenAmount, currencyAmount uint64) error {
	if err := p.ledger.Transfer(provider, p.cfg.Address, tokenAmount); err != nil {
		return fmt.Errorf("collect token: %w", err)
	}
	if err := p.custody.Receive(provider, currencyAmount); err != nil {
		if rbErr := p.ledger.Transfer(p.cfg.Address, provider, tokenAmount); rbErr != nil {
			return fmt.Errorf("collect currency: %w (token rollback also failed: %v)", err, rbErr)
		}
		return fmt.Errorf("collect currency: %w", err)
	}
	return nil
}
