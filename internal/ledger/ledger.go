package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	interfaces "github.com/sheikh-saqib/gold-token-ledger/internal/interfaces"
	"github.com/sheikh-saqib/gold-token-ledger/internal/metrics"
	"github.com/sheikh-saqib/gold-token-ledger/internal/models"
	"github.com/sheikh-saqib/gold-token-ledger/internal/models/events"
)

const (
	TokenName   = "Gold Token"
	TokenSymbol = "GLD"

	DefaultEventTopic = "gold_token_events"
)

var (
	ErrUnauthorized        = errors.New("caller is not the owner")
	ErrInsufficientBalance = errors.New("burn amount exceeds balance")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrZeroAddress         = errors.New("zero address")
)

// Ledger is the Gold Token balance sheet. A single owner may mint, burn,
// maintain the whitelist and hand over ownership; everyone may read.
type Ledger struct {
	store     interfaces.LedgerStore    // owner, entries and whitelist live here, any storage implementation
	publisher interfaces.EventPublisher // receives an envelope per accepted mutation, may be nil
	topic     string                    // topic every envelope is published to
	logger    *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time // clock for entry and event timestamps

	// mu serializes every mutating operation, so the owner check, balance
	// check and write of one operation never interleave with another.
	mu     sync.Mutex
	supply decimal.Decimal // running total supply, guarded by mu
}

type Option func(*Ledger)

// WithPublisher sets where ledger events are sent. Without it events are dropped.
func WithPublisher(publisher interfaces.EventPublisher) Option {
	return func(l *Ledger) { l.publisher = publisher }
}

func WithEventTopic(topic string) Option {
	return func(l *Ledger) { l.topic = topic }
}

func WithLogger(logger *zap.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Ledger) { l.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// NewLedger deploys the ledger on store with initialOwner as owner. If the
// store already records an owner, that owner is kept.
func NewLedger(ctx context.Context, store interfaces.LedgerStore, initialOwner string, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		store:  store,
		topic:  DefaultEventTopic,
		logger: zap.NewNop(),
		now:    time.Now,
		supply: decimal.Zero,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.metrics == nil {
		l.metrics = metrics.New(nil)
	}

	owner, err := models.NormalizeAddress(initialOwner)
	if err != nil {
		return nil, fmt.Errorf("deploy: owner: %w", err)
	}
	if models.IsZeroAddress(owner) {
		return nil, fmt.Errorf("deploy: owner: %w", ErrZeroAddress)
	}

	owner, err = store.InitOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("deploy: %w", err)
	}

	entries, err := store.GetLedgerEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("deploy: %w", err)
	}
	l.supply = models.SumEntries(entries)
	l.updateSupplyGauge()

	l.logger.Info("ledger deployed",
		zap.String("name", TokenName),
		zap.String("symbol", TokenSymbol),
		zap.String("owner", owner),
		zap.String("total_supply", l.supply.String()),
	)
	return l, nil
}

func (l *Ledger) Name() string {
	return TokenName
}

func (l *Ledger) Symbol() string {
	return TokenSymbol
}

func (l *Ledger) Decimals() int32 {
	return models.Decimals
}

func (l *Ledger) Owner(ctx context.Context) (string, error) {
	return l.store.GetOwner(ctx)
}

// BalanceOf returns the balance of address in base units.
func (l *Ledger) BalanceOf(ctx context.Context, address string) (decimal.Decimal, error) {
	account, err := models.NormalizeAddress(address)
	if err != nil {
		return decimal.Zero, err
	}
	entries, err := l.store.GetEntriesByAccount(ctx, account)
	if err != nil {
		return decimal.Zero, err
	}
	return models.SumEntries(entries), nil
}

// TotalSupply returns everything minted minus everything burned.
func (l *Ledger) TotalSupply(ctx context.Context) (decimal.Decimal, error) {
	entries, err := l.store.GetLedgerEntries(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return models.SumEntries(entries), nil
}

func (l *Ledger) Entries(ctx context.Context) ([]models.LedgerEntry, error) {
	entries, err := l.store.GetLedgerEntries(ctx)
	if err != nil {
		return []models.LedgerEntry{}, err
	}
	return entries, nil
}

// WhitelistedAddresses reports whether address carries the whitelist flag.
func (l *Ledger) WhitelistedAddresses(ctx context.Context, address string) (bool, error) {
	account, err := models.NormalizeAddress(address)
	if err != nil {
		return false, err
	}
	return l.store.IsWhitelisted(ctx, account)
}

// Whitelist returns every whitelisted address in ascending order.
func (l *Ledger) Whitelist(ctx context.Context) ([]string, error) {
	return l.store.GetWhitelistedAddresses(ctx)
}

// Mint credits amount base units to to.
func (l *Ledger) Mint(ctx context.Context, caller, to string, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	err := l.mint(ctx, caller, to, amount)
	l.observe("mint", err)
	if err != nil {
		return fmt.Errorf("mint: %w", err)
	}
	return nil
}

func (l *Ledger) mint(ctx context.Context, caller, to string, amount decimal.Decimal) error {
	owner, err := l.onlyOwner(ctx, caller)
	if err != nil {
		return err
	}
	account, err := recipient(to)
	if err != nil {
		return err
	}
	if err := validateAmount(amount); err != nil {
		return err
	}
	// the supply bounds every balance, so capping it caps them all
	if l.supply.Add(amount).GreaterThan(models.MaxAmount) {
		return fmt.Errorf("%w: total supply would exceed %s", ErrInvalidAmount, models.MaxAmount)
	}

	// Create the credit entry (tokens entering the recipient's account)
	entry := models.LedgerEntry{
		ID:        uuid.New().String(),
		Account:   account,
		Kind:      models.EntryMint,
		Amount:    amount,
		Caller:    owner,
		CreatedAt: l.now(),
	}
	// Save the entry; if saving fails nothing else has changed
	if err := l.store.SaveEntry(ctx, entry); err != nil {
		return err
	}
	l.supply = l.supply.Add(amount) // only after the entry is stored
	l.updateSupplyGauge()

	l.logger.Info("tokens minted",
		zap.String("to", account),
		zap.String("amount", amount.String()),
		zap.String("entry_id", entry.ID),
	)
	l.publish(ctx, events.TokenMinted{To: account, Amount: amount})
	return nil
}

// Burn debits amount base units from from. The balance of from must cover it.
func (l *Ledger) Burn(ctx context.Context, caller, from string, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	err := l.burn(ctx, caller, from, amount)
	l.observe("burn", err)
	if err != nil {
		return fmt.Errorf("burn: %w", err)
	}
	return nil
}

func (l *Ledger) burn(ctx context.Context, caller, from string, amount decimal.Decimal) error {
	owner, err := l.onlyOwner(ctx, caller)
	if err != nil {
		return err
	}
	account, err := recipient(from)
	if err != nil {
		return err
	}
	if err := validateAmount(amount); err != nil {
		return err
	}

	// Balance is the sum of every entry for the account
	entries, err := l.store.GetEntriesByAccount(ctx, account)
	if err != nil {
		return err
	}
	balance := models.SumEntries(entries)
	if balance.LessThan(amount) {
		return fmt.Errorf("%w: balance %s, amount %s", ErrInsufficientBalance, balance, amount)
	}

	// Create the debit entry (negative, tokens leaving the account)
	entry := models.LedgerEntry{
		ID:        uuid.New().String(),
		Account:   account,
		Kind:      models.EntryBurn,
		Amount:    amount.Neg(),
		Caller:    owner,
		CreatedAt: l.now(),
	}
	// Save the entry; if saving fails nothing else has changed
	if err := l.store.SaveEntry(ctx, entry); err != nil {
		return err
	}
	l.supply = l.supply.Sub(amount) // only after the entry is stored
	l.updateSupplyGauge()

	l.logger.Info("tokens burned",
		zap.String("from", account),
		zap.String("amount", amount.String()),
		zap.String("entry_id", entry.ID),
	)
	l.publish(ctx, events.TokenBurned{From: account, Amount: amount})
	return nil
}

func (l *Ledger) WhitelistAddress(ctx context.Context, caller, address string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	err := l.setWhitelisted(ctx, caller, address, true)
	l.observe("whitelist_address", err)
	if err != nil {
		return fmt.Errorf("whitelist address: %w", err)
	}
	return nil
}

func (l *Ledger) RemoveWhitelistedAddress(ctx context.Context, caller, address string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	err := l.setWhitelisted(ctx, caller, address, false)
	l.observe("remove_whitelisted_address", err)
	if err != nil {
		return fmt.Errorf("remove whitelisted address: %w", err)
	}
	return nil
}

func (l *Ledger) setWhitelisted(ctx context.Context, caller, address string, whitelisted bool) error {
	if _, err := l.onlyOwner(ctx, caller); err != nil {
		return err
	}
	account, err := models.NormalizeAddress(address)
	if err != nil {
		return err
	}
	if err := l.store.SetWhitelisted(ctx, account, whitelisted); err != nil {
		return err
	}

	if whitelisted {
		l.logger.Info("address whitelisted", zap.String("address", account))
		l.publish(ctx, events.AddressWhitelisted{Address: account})
	} else {
		l.logger.Info("address removed from whitelist", zap.String("address", account))
		l.publish(ctx, events.AddressRemovedFromWhitelist{Address: account})
	}
	return nil
}

// TransferOwnership hands every privileged operation over to newOwner.
func (l *Ledger) TransferOwnership(ctx context.Context, caller, newOwner string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	err := l.transferOwnership(ctx, caller, newOwner)
	l.observe("transfer_ownership", err)
	if err != nil {
		return fmt.Errorf("transfer ownership: %w", err)
	}
	return nil
}

func (l *Ledger) transferOwnership(ctx context.Context, caller, newOwner string) error {
	previous, err := l.onlyOwner(ctx, caller)
	if err != nil {
		return err
	}
	next, err := recipient(newOwner)
	if err != nil {
		return err
	}
	if err := l.store.SetOwner(ctx, next); err != nil {
		return err
	}

	l.logger.Info("ownership transferred",
		zap.String("previous_owner", previous),
		zap.String("new_owner", next),
	)
	l.publish(ctx, events.OwnershipTransferred{PreviousOwner: previous, NewOwner: next})
	return nil
}

// onlyOwner returns the stored owner if caller is it. Addresses are compared
// as parsed values, so the caller's casing does not matter.
func (l *Ledger) onlyOwner(ctx context.Context, caller string) (string, error) {
	owner, err := l.store.GetOwner(ctx)
	if err != nil {
		return "", err
	}
	callerAddr, err := models.ParseAddress(caller)
	if err != nil || callerAddr != common.HexToAddress(owner) {
		return "", fmt.Errorf("%w: %s", ErrUnauthorized, caller)
	}
	return owner, nil
}

// recipient normalizes an address that is about to hold tokens or ownership.
func recipient(address string) (string, error) {
	account, err := models.NormalizeAddress(address)
	if err != nil {
		return "", err
	}
	if models.IsZeroAddress(account) {
		return "", ErrZeroAddress
	}
	return account, nil
}

func validateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: %s is negative", ErrInvalidAmount, amount)
	}
	if !amount.IsInteger() {
		return fmt.Errorf("%w: %s is not a whole number of base units", ErrInvalidAmount, amount)
	}
	if amount.GreaterThan(models.MaxAmount) {
		return fmt.Errorf("%w: %s exceeds %s", ErrInvalidAmount, amount, models.MaxAmount)
	}
	return nil
}

// publish delivers event after its state change is stored. A failed delivery
// is logged and counted; the committed change stands.
func (l *Ledger) publish(ctx context.Context, event events.Event) {
	if l.publisher == nil {
		return
	}
	envelope := events.NewEnvelope(event, l.now())
	if err := l.publisher.Publish(ctx, l.topic, envelope); err != nil {
		l.metrics.PublishFailures.Inc()
		l.logger.Error("failed to publish ledger event",
			zap.String("event_id", envelope.ID),
			zap.String("event_type", envelope.Type),
			zap.Error(err),
		)
	}
}

func (l *Ledger) observe(operation string, err error) {
	outcome := metrics.OutcomeSuccess
	switch {
	case err == nil:
	case errors.Is(err, ErrUnauthorized):
		outcome = metrics.OutcomeUnauthorized
	case errors.Is(err, ErrInsufficientBalance), errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrZeroAddress), errors.Is(err, models.ErrInvalidAddress):
		outcome = metrics.OutcomeRejected
	default:
		outcome = metrics.OutcomeError
	}
	l.metrics.ObserveOperation(operation, outcome)

	if err != nil {
		l.logger.Warn("ledger operation rejected", zap.String("operation", operation), zap.Error(err))
	}
}

func (l *Ledger) updateSupplyGauge() {
	l.metrics.TotalSupply.Set(l.supply.Shift(-models.Decimals).InexactFloat64())
}
