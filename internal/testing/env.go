// Package testing provides a shared end-to-end environment for exercising
// the full marketplace stack: persistent store, engine, registry, journal
// and signed settlement authorizations.
package testing

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/LeJamon/marketd/internal/core/market"
	"github.com/LeJamon/marketd/internal/core/registry"
	"github.com/LeJamon/marketd/internal/crypto"
	"github.com/LeJamon/marketd/internal/storage/database"
	"github.com/LeJamon/marketd/internal/storage/journal"
	"github.com/LeJamon/marketd/internal/storage/store"
)

// TestEnv manages a marketplace test environment. It provides named funded
// accounts, token minting and settlement authorization signing on top of a
// real store and journal.
type TestEnv struct {
	t *testing.T

	Engine   *market.Engine
	Store    *store.Store
	Registry registry.Ledger
	Journal  *journal.Journal
	Operator *crypto.Keypair
	MarketID crypto.AccountID

	accounts map[string]crypto.AccountID
	nextSeed byte
}

// NewTestEnv creates an environment over an in-memory store and a sqlite
// journal in a temp directory.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	st, err := store.New(database.NewMemoryDB(), store.DefaultConfig())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	jrnl, err := journal.New(journal.DefaultConfig(filepath.Join(t.TempDir(), "journal.db")))
	if err != nil {
		t.Fatalf("failed to create journal: %v", err)
	}
	if err := jrnl.Open(context.Background()); err != nil {
		t.Fatalf("failed to open journal: %v", err)
	}
	t.Cleanup(func() { jrnl.Close() })

	operator, err := crypto.GenerateKeypair()
	if err != nil {
		t.Fatalf("failed to generate operator keypair: %v", err)
	}

	var marketID crypto.AccountID
	marketID[0] = 0xEE

	engine, err := market.NewEngine(st, registry.Ledger{}, market.Config{
		Operator: operator.AccountID,
		MarketID: marketID,
		FeeBps:   200,
	}, market.WithJournal(jrnl))
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	return &TestEnv{
		t:        t,
		Engine:   engine,
		Store:    st,
		Journal:  jrnl,
		Operator: operator,
		MarketID: marketID,
		accounts: make(map[string]crypto.AccountID),
		nextSeed: 1,
	}
}

// Account returns a stable account ID for a name, creating it on first
// use.
func (env *TestEnv) Account(name string) crypto.AccountID {
	if id, ok := env.accounts[name]; ok {
		return id
	}
	var id crypto.AccountID
	id[0] = env.nextSeed
	id[1] = 0x42
	env.nextSeed++
	env.accounts[name] = id
	return id
}

// Fund credits an account's ledger balance.
func (env *TestEnv) Fund(name string, amount uint64) {
	env.t.Helper()
	if result := env.Engine.Deposit(env.Account(name), amount); !result.IsSuccess() {
		env.t.Fatalf("failed to fund %s: %s", name, result)
	}
}

// Mint creates a token owned by the named account and approves it to the
// marketplace.
func (env *TestEnv) Mint(asset crypto.AccountID, tokenID uint64, owner string) {
	env.t.Helper()
	ownerID := env.Account(owner)
	if err := env.Registry.Mint(env.Store, asset, tokenID, ownerID); err != nil {
		env.t.Fatalf("failed to mint token %d: %v", tokenID, err)
	}
	if err := env.Registry.Approve(env.Store, asset, tokenID, env.MarketID, ownerID); err != nil {
		env.t.Fatalf("failed to approve token %d: %v", tokenID, err)
	}
}

// Authorize signs a settlement authorization with the operator key.
func (env *TestEnv) Authorize(collectionOwner crypto.AccountID, collectionFeeBps uint32, counterpart string) string {
	env.t.Helper()
	sig, err := crypto.Sign(
		market.AuthorizationMessage(collectionOwner, collectionFeeBps, env.Account(counterpart)),
		env.Operator.PrivateKey)
	if err != nil {
		env.t.Fatalf("failed to sign authorization: %v", err)
	}
	return sig
}

// Balance returns the ledger balance of a named account.
func (env *TestEnv) Balance(name string) uint64 {
	env.t.Helper()
	balance, err := env.Engine.Balance(env.Account(name))
	if err != nil {
		env.t.Fatalf("failed to read balance of %s: %v", name, err)
	}
	return balance
}

// RequireResult fails the test unless the result matches.
func (env *TestEnv) RequireResult(want, got market.Result) {
	env.t.Helper()
	if want != got {
		env.t.Fatalf("expected result %s, got %s", want, got)
	}
}
