package market

import (
	"sync"

	"go.uber.org/zap"

	"github.com/LeJamon/marketd/internal/core/bank"
	"github.com/LeJamon/marketd/internal/core/ledger"
	"github.com/LeJamon/marketd/internal/core/ledger/keylet"
	"github.com/LeJamon/marketd/internal/core/registry"
	"github.com/LeJamon/marketd/internal/crypto"
)

// Journal persists an audit trail of operations and settlements outside the
// ledger store. A nil journal disables journaling.
type Journal interface {
	RecordOperation(op string, result Result, asset crypto.AccountID, tokenID uint64, caller crypto.AccountID, amount uint64) error
	RecordSettlement(payee crypto.AccountID, totalPrice, marketplaceShare, collectionShare, payeeShare uint64, marketplaceFeeBps, collectionFeeBps uint32) error
}

// Config carries the identities and defaults the engine runs with.
type Config struct {
	// Operator is the marketplace operator: fee recipient, settlement
	// authorization signer and the only identity allowed to change fees
	Operator crypto.AccountID

	// MarketID is the marketplace's own ledger identity. Tokens must be
	// approved to it before listing, and it holds escrowed value
	MarketID crypto.AccountID

	// FeeBps is the marketplace fee the ledger is bootstrapped with when
	// no fee entry exists yet
	FeeBps uint32
}

// Engine executes marketplace operations against the persistent store.
//
// Every state-mutating call runs inside a fresh state table over the base
// view, committed only on Success. The mutex is a reentrancy guard, not an
// ordering device: a call arriving while another is in flight fails with
// ReentrancyRejected instead of queueing.
type Engine struct {
	mu sync.Mutex

	base      ledger.View
	registry  registry.TokenRegistry
	book      bank.Book
	sink      bank.Sink
	publisher EventPublisher
	journal   Journal
	log       *zap.Logger

	operator crypto.AccountID
	marketID crypto.AccountID
}

// Option configures optional engine collaborators.
type Option func(*Engine)

// WithSink replaces the payout capability used by settlement and refunds.
func WithSink(sink bank.Sink) Option {
	return func(e *Engine) { e.sink = sink }
}

// WithPublisher sets the event publisher.
func WithPublisher(p EventPublisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithJournal sets the audit journal.
func WithJournal(j Journal) Option {
	return func(e *Engine) { e.journal = j }
}

// WithLogger sets the engine logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// NewEngine creates an engine over the base view and bootstraps the
// marketplace fee entry if the store does not hold one yet.
func NewEngine(base ledger.View, reg registry.TokenRegistry, cfg Config, opts ...Option) (*Engine, error) {
	e := &Engine{
		base:      base,
		registry:  reg,
		publisher: NopPublisher{},
		log:       zap.NewNop(),
		operator:  cfg.Operator,
		marketID:  cfg.MarketID,
	}
	e.sink = e.book
	for _, opt := range opts {
		opt(e)
	}

	if err := e.bootstrap(cfg.FeeBps); err != nil {
		return nil, err
	}
	return e, nil
}

// Operator returns the marketplace operator identity.
func (e *Engine) Operator() crypto.AccountID { return e.operator }

// MarketID returns the marketplace's own ledger identity.
func (e *Engine) MarketID() crypto.AccountID { return e.marketID }

func (e *Engine) bootstrap(feeBps uint32) error {
	table := ledger.NewStateTable(e.base)
	exists, err := table.Exists(keylet.Fees())
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	data, err := (&FeeSettings{FeeBps: feeBps}).Encode()
	if err != nil {
		return err
	}
	if err := table.Insert(keylet.Fees(), data); err != nil {
		return err
	}
	if _, err := table.Apply(); err != nil {
		return err
	}
	e.log.Info("bootstrapped marketplace fee entry", zap.Uint32("fee_bps", feeBps))
	return nil
}

// run is the single entry path for state-mutating operations. It acquires
// the reentrancy guard without blocking, runs fn in a sandboxed state
// table and commits only on Success. Events collected by fn are published
// after the commit.
func (e *Engine) run(op string, asset crypto.AccountID, tokenID uint64, caller crypto.AccountID, amount uint64, fn func(view ledger.View, events *[]Event) Result) Result {
	if !e.mu.TryLock() {
		e.log.Warn("rejected reentrant call", zap.String("op", op))
		return ReentrancyRejected
	}
	defer e.mu.Unlock()

	table := ledger.NewStateTable(e.base)
	var events []Event
	result := fn(table, &events)

	if result.IsSuccess() {
		if _, err := table.Apply(); err != nil {
			e.log.Error("failed to apply state table", zap.String("op", op), zap.Error(err))
			result = Internal
		}
	}

	if e.journal != nil {
		if err := e.journal.RecordOperation(op, result, asset, tokenID, caller, amount); err != nil {
			e.log.Error("failed to journal operation", zap.String("op", op), zap.Error(err))
		}
	}

	if !result.IsSuccess() {
		e.log.Debug("operation failed",
			zap.String("op", op),
			zap.String("result", result.String()),
			zap.String("caller", caller.String()))
		return result
	}

	for _, ev := range events {
		if pt, ok := ev.(ProceedsTransferred); ok && e.journal != nil {
			m, c, p := computeShares(pt.TotalPrice, pt.MarketplaceFeeBps, pt.CollectionFeeBps)
			if err := e.journal.RecordSettlement(pt.Payee, pt.TotalPrice, m, c, p, pt.MarketplaceFeeBps, pt.CollectionFeeBps); err != nil {
				e.log.Error("failed to journal settlement", zap.Error(err))
			}
		}
		e.publisher.Publish(ev)
	}
	e.log.Info("operation applied",
		zap.String("op", op),
		zap.String("caller", caller.String()),
		zap.Uint64("token_id", tokenID))
	return result
}

// readListing returns the listing entry for (asset, tokenID), or nil when
// the token is not listed.
func readListing(view ledger.View, asset crypto.AccountID, tokenID uint64) (*Listing, error) {
	data, err := view.Read(keylet.Listing(asset, tokenID))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	return ParseListing(data)
}

// readOffer returns the offer entry for (asset, tokenID, offerer), or nil
// when no entry exists. A zeroed entry is returned as-is; callers test
// Active.
func readOffer(view ledger.View, asset crypto.AccountID, tokenID uint64, offerer crypto.AccountID) (*Offer, error) {
	data, err := view.Read(keylet.Offer(asset, tokenID, offerer))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	return ParseOffer(data)
}

func readFeeSettings(view ledger.View) (*FeeSettings, error) {
	data, err := view.Read(keylet.Fees())
	if err != nil {
		return nil, err
	}
	if data == nil {
		return &FeeSettings{}, nil
	}
	return ParseFeeSettings(data)
}
