package market

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LeJamon/marketd/internal/core/bank"
	"github.com/LeJamon/marketd/internal/core/ledger"
	"github.com/LeJamon/marketd/internal/core/registry"
	"github.com/LeJamon/marketd/internal/crypto"
	"github.com/LeJamon/marketd/internal/storage/database"
	"github.com/LeJamon/marketd/internal/storage/store"
)

func acct(seed byte) crypto.AccountID {
	var id crypto.AccountID
	id[0] = seed
	return id
}

// capturePublisher records published events in order.
type capturePublisher struct {
	events []Event
}

func (p *capturePublisher) Publish(ev Event) { p.events = append(p.events, ev) }

// failSink delegates to the balance book but fails every transfer to one
// recipient, exercising the typed transfer failure paths.
type failSink struct {
	book   bank.Book
	failTo crypto.AccountID
}

func (s failSink) Transfer(view ledger.View, from, to crypto.AccountID, amount uint64) bool {
	if to == s.failTo && amount > 0 {
		return false
	}
	return s.book.Transfer(view, from, to, amount)
}

type testEnv struct {
	t        *testing.T
	engine   *Engine
	store    *store.Store
	reg      registry.Ledger
	pub      *capturePublisher
	operator *crypto.Keypair

	asset  crypto.AccountID
	seller crypto.AccountID
	buyer  crypto.AccountID
	royal  crypto.AccountID
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	db := database.NewMemoryDB()
	st, err := store.New(db, store.DefaultConfig())
	require.NoError(t, err)

	operator, err := crypto.GenerateKeypair()
	require.NoError(t, err)

	pub := &capturePublisher{}
	opts = append([]Option{WithPublisher(pub)}, opts...)

	eng, err := NewEngine(st, registry.Ledger{}, Config{
		Operator: operator.AccountID,
		MarketID: acct(0xEE),
		FeeBps:   200,
	}, opts...)
	require.NoError(t, err)

	return &testEnv{
		t:        t,
		engine:   eng,
		store:    st,
		pub:      pub,
		operator: operator,
		asset:    acct(0xAA),
		seller:   acct(1),
		buyer:    acct(2),
		royal:    acct(3),
	}
}

// mint creates a token owned by the seller and approves it to the
// marketplace.
func (env *testEnv) mint(tokenID uint64) {
	require.NoError(env.t, env.reg.Mint(env.store, env.asset, tokenID, env.seller))
	require.NoError(env.t, env.reg.Approve(env.store, env.asset, tokenID, env.engine.MarketID(), env.seller))
}

func (env *testEnv) fund(id crypto.AccountID, amount uint64) {
	require.Equal(env.t, Success, env.engine.Deposit(id, amount))
}

func (env *testEnv) balance(id crypto.AccountID) uint64 {
	bal, err := env.engine.Balance(id)
	require.NoError(env.t, err)
	return bal
}

// authorize signs a settlement authorization with the operator key.
func (env *testEnv) authorize(collectionOwner crypto.AccountID, collectionFeeBps uint32, counterpart crypto.AccountID) string {
	sig, err := crypto.Sign(AuthorizationMessage(collectionOwner, collectionFeeBps, counterpart), env.operator.PrivateKey)
	require.NoError(env.t, err)
	return sig
}

func TestListItem(t *testing.T) {
	env := newTestEnv(t)
	env.mint(1)

	require.Equal(t, Success, env.engine.ListItem(env.asset, 1, 1000, env.seller))

	listing, err := env.engine.GetListing(env.asset, 1)
	require.NoError(t, err)
	require.NotNil(t, listing)
	require.Equal(t, uint64(1000), listing.Price)
	require.Equal(t, env.seller, listing.Seller)

	require.Equal(t, AlreadyListed, env.engine.ListItem(env.asset, 1, 2000, env.seller))
	require.Len(t, env.pub.events, 1)
	require.Equal(t, ItemListed{Asset: env.asset, TokenID: 1, Seller: env.seller, Price: 1000}, env.pub.events[0])
}

func TestListItemPreconditions(t *testing.T) {
	env := newTestEnv(t)
	env.mint(1)

	require.Equal(t, NotOwner, env.engine.ListItem(env.asset, 1, 1000, env.buyer))
	require.Equal(t, NotOwner, env.engine.ListItem(env.asset, 99, 1000, env.seller))
	require.Equal(t, PriceMustBeAboveZero, env.engine.ListItem(env.asset, 1, 0, env.seller))

	// Token 2 is minted but never approved to the marketplace.
	require.NoError(t, env.reg.Mint(env.store, env.asset, 2, env.seller))
	require.Equal(t, NotApprovedForMarketplace, env.engine.ListItem(env.asset, 2, 1000, env.seller))

	listing, err := env.engine.GetListing(env.asset, 1)
	require.NoError(t, err)
	require.Nil(t, listing)
	require.Empty(t, env.pub.events)
}

func TestUpdateListing(t *testing.T) {
	env := newTestEnv(t)
	env.mint(1)

	require.Equal(t, NotListed, env.engine.UpdateListing(env.asset, 1, 500, env.seller))

	require.Equal(t, Success, env.engine.ListItem(env.asset, 1, 1000, env.seller))
	require.Equal(t, NotOwner, env.engine.UpdateListing(env.asset, 1, 500, env.buyer))
	require.Equal(t, Success, env.engine.UpdateListing(env.asset, 1, 500, env.seller))

	listing, err := env.engine.GetListing(env.asset, 1)
	require.NoError(t, err)
	require.Equal(t, uint64(500), listing.Price)

	// The updated price is written as given, zero included.
	require.Equal(t, Success, env.engine.UpdateListing(env.asset, 1, 0, env.seller))
	listing, err = env.engine.GetListing(env.asset, 1)
	require.NoError(t, err)
	require.Equal(t, uint64(0), listing.Price)
}

func TestCancelListing(t *testing.T) {
	env := newTestEnv(t)
	env.mint(1)

	require.Equal(t, NotListed, env.engine.CancelListing(env.asset, 1, env.seller))

	require.Equal(t, Success, env.engine.ListItem(env.asset, 1, 1000, env.seller))
	require.Equal(t, NotOwner, env.engine.CancelListing(env.asset, 1, env.buyer))
	require.Equal(t, Success, env.engine.CancelListing(env.asset, 1, env.seller))

	listing, err := env.engine.GetListing(env.asset, 1)
	require.NoError(t, err)
	require.Nil(t, listing)

	// Token can be listed again after cancellation.
	require.Equal(t, Success, env.engine.ListItem(env.asset, 1, 2000, env.seller))
}

func TestBuyItem(t *testing.T) {
	env := newTestEnv(t)
	env.mint(1)
	env.fund(env.buyer, 10_000)

	require.Equal(t, Success, env.engine.ListItem(env.asset, 1, 10_000, env.seller))

	auth := env.authorize(env.royal, 500, env.buyer)
	require.Equal(t, Success, env.engine.BuyItem(env.asset, 1, 10_000, auth, env.royal, 500, env.buyer))

	// 2% marketplace fee, 5% collection fee, seller takes the remainder.
	require.Equal(t, uint64(200), env.balance(env.operator.AccountID))
	require.Equal(t, uint64(500), env.balance(env.royal))
	require.Equal(t, uint64(9300), env.balance(env.seller))
	require.Equal(t, uint64(0), env.balance(env.buyer))

	owner, err := env.reg.OwnerOf(env.store, env.asset, 1)
	require.NoError(t, err)
	require.Equal(t, env.buyer, owner)

	listing, err := env.engine.GetListing(env.asset, 1)
	require.NoError(t, err)
	require.Nil(t, listing)
}

func TestBuyItemPriceNotMet(t *testing.T) {
	env := newTestEnv(t)
	env.mint(1)
	env.fund(env.buyer, 10_000)

	require.Equal(t, Success, env.engine.ListItem(env.asset, 1, 10_000, env.seller))

	auth := env.authorize(env.royal, 0, env.buyer)
	require.Equal(t, PriceNotMet, env.engine.BuyItem(env.asset, 1, 9_999, auth, env.royal, 0, env.buyer))
	require.Equal(t, NotListed, env.engine.BuyItem(env.asset, 99, 1, auth, env.royal, 0, env.buyer))
	require.Equal(t, uint64(10_000), env.balance(env.buyer))
}

func TestBuyItemZeroRepricedListing(t *testing.T) {
	env := newTestEnv(t)
	env.mint(1)
	env.fund(env.buyer, 10_000)

	require.Equal(t, Success, env.engine.ListItem(env.asset, 1, 1_000, env.seller))
	require.Equal(t, Success, env.engine.UpdateListing(env.asset, 1, 0, env.seller))

	// A zero price is the not-listed sentinel. The entry survives the
	// reprice but cannot be bought, free or otherwise.
	auth := env.authorize(env.royal, 500, env.buyer)
	require.Equal(t, NotListed, env.engine.BuyItem(env.asset, 1, 0, auth, env.royal, 500, env.buyer))
	require.Equal(t, NotListed, env.engine.BuyItem(env.asset, 1, 1_000, auth, env.royal, 500, env.buyer))

	owner, err := env.reg.OwnerOf(env.store, env.asset, 1)
	require.NoError(t, err)
	require.Equal(t, env.seller, owner)
	require.Equal(t, uint64(10_000), env.balance(env.buyer))

	// Repricing back above zero makes the entry buyable again.
	require.Equal(t, Success, env.engine.UpdateListing(env.asset, 1, 1_000, env.seller))
	require.Equal(t, Success, env.engine.BuyItem(env.asset, 1, 1_000, auth, env.royal, 500, env.buyer))
}

func TestBuyItemInsufficientFunds(t *testing.T) {
	env := newTestEnv(t)
	env.mint(1)
	env.fund(env.buyer, 5_000)

	require.Equal(t, Success, env.engine.ListItem(env.asset, 1, 10_000, env.seller))

	auth := env.authorize(env.royal, 0, env.buyer)
	require.Equal(t, InsufficientFunds, env.engine.BuyItem(env.asset, 1, 10_000, auth, env.royal, 0, env.buyer))

	listing, err := env.engine.GetListing(env.asset, 1)
	require.NoError(t, err)
	require.NotNil(t, listing)
}

func TestBuyItemOverpaymentNotRefunded(t *testing.T) {
	env := newTestEnv(t)
	env.mint(1)
	env.fund(env.buyer, 15_000)

	require.Equal(t, Success, env.engine.ListItem(env.asset, 1, 10_000, env.seller))

	auth := env.authorize(env.royal, 500, env.buyer)
	require.Equal(t, Success, env.engine.BuyItem(env.asset, 1, 12_000, auth, env.royal, 500, env.buyer))

	// Only the asking price is settled; the 2000 surplus remains with the
	// marketplace.
	require.Equal(t, uint64(3_000), env.balance(env.buyer))
	require.Equal(t, uint64(9_300), env.balance(env.seller))
	require.Equal(t, uint64(2_000), env.balance(env.engine.MarketID()))
}

func TestBuyItemRejectsBadAuthorization(t *testing.T) {
	env := newTestEnv(t)
	env.mint(1)
	env.fund(env.buyer, 10_000)

	require.Equal(t, Success, env.engine.ListItem(env.asset, 1, 10_000, env.seller))

	// Signed by a key that is not the operator's.
	rogue, err := crypto.GenerateKeypair()
	require.NoError(t, err)
	sig, err := crypto.Sign(AuthorizationMessage(env.royal, 500, env.buyer), rogue.PrivateKey)
	require.NoError(t, err)
	require.Equal(t, NotSignedByMarketplaceOwner, env.engine.BuyItem(env.asset, 1, 10_000, sig, env.royal, 500, env.buyer))

	// Operator signature bound to a different counterpart.
	auth := env.authorize(env.royal, 500, env.seller)
	require.Equal(t, NotSignedByMarketplaceOwner, env.engine.BuyItem(env.asset, 1, 10_000, auth, env.royal, 500, env.buyer))

	// Operator signature for a different collection fee.
	auth = env.authorize(env.royal, 100, env.buyer)
	require.Equal(t, NotSignedByMarketplaceOwner, env.engine.BuyItem(env.asset, 1, 10_000, auth, env.royal, 500, env.buyer))

	// The failed purchase left everything untouched.
	listing, err := env.engine.GetListing(env.asset, 1)
	require.NoError(t, err)
	require.NotNil(t, listing)
	require.Equal(t, uint64(10_000), env.balance(env.buyer))
	owner, err := env.reg.OwnerOf(env.store, env.asset, 1)
	require.NoError(t, err)
	require.Equal(t, env.seller, owner)
}

func TestBuyItemFeesExceedLimit(t *testing.T) {
	env := newTestEnv(t)
	env.mint(1)
	env.fund(env.buyer, 10_000)

	require.Equal(t, Success, env.engine.ListItem(env.asset, 1, 10_000, env.seller))

	auth := env.authorize(env.royal, 9_900, env.buyer)
	require.Equal(t, FeesExceedLimit, env.engine.BuyItem(env.asset, 1, 10_000, auth, env.royal, 9_900, env.buyer))
	require.Equal(t, uint64(10_000), env.balance(env.buyer))
}

func TestBuyItemTransferFailureRollsBack(t *testing.T) {
	cases := []struct {
		name   string
		failTo func(env *testEnv) crypto.AccountID
		want   Result
	}{
		{"marketplace share", func(env *testEnv) crypto.AccountID { return env.operator.AccountID }, MarketplaceProceedsTransferFailed},
		{"collection share", func(env *testEnv) crypto.AccountID { return env.royal }, CollectionOwnerProceedsTransferFailed},
		{"seller share", func(env *testEnv) crypto.AccountID { return env.seller }, SellerProceedsTransferFailed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.engine.sink = failSink{failTo: tc.failTo(env)}
			env.mint(1)
			env.fund(env.buyer, 10_000)

			require.Equal(t, Success, env.engine.ListItem(env.asset, 1, 10_000, env.seller))

			auth := env.authorize(env.royal, 500, env.buyer)
			require.Equal(t, tc.want, env.engine.BuyItem(env.asset, 1, 10_000, auth, env.royal, 500, env.buyer))

			// Everything rolled back: listing present, token unmoved,
			// buyer funds intact.
			listing, err := env.engine.GetListing(env.asset, 1)
			require.NoError(t, err)
			require.NotNil(t, listing)
			owner, err := env.reg.OwnerOf(env.store, env.asset, 1)
			require.NoError(t, err)
			require.Equal(t, env.seller, owner)
			require.Equal(t, uint64(10_000), env.balance(env.buyer))
			require.Equal(t, uint64(0), env.balance(env.engine.MarketID()))
		})
	}
}

func TestProceedsSumExactly(t *testing.T) {
	// Remainder assignment keeps the three shares summing to the price for
	// awkward divisions, including prices whose product with the fee would
	// wrap 64 bits.
	for _, price := range []uint64{1, 3, 9_999, 10_001, 123_457, 10_000_000_000_000_000_000, math.MaxUint64} {
		m, c, p := computeShares(price, 250, 333)
		require.Equal(t, price, m+c+p, "price %d", price)
	}

	// A 100% marketplace fee on a huge price routes everything to the
	// marketplace share.
	m, c, p := computeShares(10_000_000_000_000_000, 10_000, 0)
	require.Equal(t, uint64(10_000_000_000_000_000), m)
	require.Zero(t, c)
	require.Zero(t, p)

	env := newTestEnv(t)
	env.mint(1)
	env.fund(env.buyer, 9_999)

	require.Equal(t, Success, env.engine.ListItem(env.asset, 1, 9_999, env.seller))

	auth := env.authorize(env.royal, 333, env.buyer)
	require.Equal(t, Success, env.engine.BuyItem(env.asset, 1, 9_999, auth, env.royal, 333, env.buyer))

	total := env.balance(env.operator.AccountID) + env.balance(env.royal) + env.balance(env.seller)
	require.Equal(t, uint64(9_999), total)
	require.Equal(t, uint64(0), env.balance(env.engine.MarketID()))
}

func TestMakeOffer(t *testing.T) {
	env := newTestEnv(t)
	env.mint(1)
	env.fund(env.buyer, 10_000)

	require.Equal(t, CanNotBeOwner, env.engine.MakeOffer(env.asset, 1, 1_000, 1_000, env.seller))
	require.Equal(t, OfferPriceNotMet, env.engine.MakeOffer(env.asset, 1, 1_000, 999, env.buyer))
	require.Equal(t, PriceMustBeAboveZero, env.engine.MakeOffer(env.asset, 1, 0, 0, env.buyer))
	require.Equal(t, InsufficientFunds, env.engine.MakeOffer(env.asset, 1, 20_000, 20_000, env.buyer))

	require.Equal(t, Success, env.engine.MakeOffer(env.asset, 1, 1_000, 1_000, env.buyer))
	require.Equal(t, AlreadyOffered, env.engine.MakeOffer(env.asset, 1, 2_000, 2_000, env.buyer))

	amount, err := env.engine.GetOffer(env.asset, 1, env.buyer)
	require.NoError(t, err)
	require.Equal(t, uint64(1_000), amount)
	require.Equal(t, uint64(9_000), env.balance(env.buyer))
	require.Equal(t, uint64(1_000), env.balance(env.engine.MarketID()))
}

func TestCancelOfferRefundsRecordedAmountOnly(t *testing.T) {
	env := newTestEnv(t)
	env.mint(1)
	env.fund(env.buyer, 10_000)

	require.Equal(t, NoOffered, env.engine.CancelOffer(env.asset, 1, env.buyer))

	// Stake 1500 behind a 1000 offer. Cancel refunds the recorded 1000;
	// the 500 surplus stays escrowed with the marketplace.
	require.Equal(t, Success, env.engine.MakeOffer(env.asset, 1, 1_000, 1_500, env.buyer))
	require.Equal(t, Success, env.engine.CancelOffer(env.asset, 1, env.buyer))

	amount, err := env.engine.GetOffer(env.asset, 1, env.buyer)
	require.NoError(t, err)
	require.Equal(t, uint64(0), amount)
	require.Equal(t, uint64(9_500), env.balance(env.buyer))
	require.Equal(t, uint64(500), env.balance(env.engine.MarketID()))

	// A fresh offer is allowed after cancellation.
	require.Equal(t, Success, env.engine.MakeOffer(env.asset, 1, 2_000, 2_000, env.buyer))
}

func TestCancelOfferRefundFailureAbortsAll(t *testing.T) {
	env := newTestEnv(t)
	env.mint(1)
	env.fund(env.buyer, 10_000)

	require.Equal(t, Success, env.engine.MakeOffer(env.asset, 1, 1_000, 1_000, env.buyer))

	env.engine.sink = failSink{failTo: env.buyer}
	require.Equal(t, CancelOfferProceedsTransferFailed, env.engine.CancelOffer(env.asset, 1, env.buyer))

	// The offer survives a failed refund.
	amount, err := env.engine.GetOffer(env.asset, 1, env.buyer)
	require.NoError(t, err)
	require.Equal(t, uint64(1_000), amount)
}

func TestAcceptOffer(t *testing.T) {
	env := newTestEnv(t)
	env.mint(1)
	env.fund(env.buyer, 10_000)

	auth := env.authorize(env.royal, 500, env.seller)
	require.Equal(t, NoOffered, env.engine.AcceptOffer(env.asset, 1, auth, env.royal, 500, env.buyer, env.seller))

	require.Equal(t, Success, env.engine.MakeOffer(env.asset, 1, 10_000, 10_000, env.buyer))
	require.Equal(t, NotOwner, env.engine.AcceptOffer(env.asset, 1, auth, env.royal, 500, env.buyer, env.royal))

	require.Equal(t, Success, env.engine.AcceptOffer(env.asset, 1, auth, env.royal, 500, env.buyer, env.seller))

	owner, err := env.reg.OwnerOf(env.store, env.asset, 1)
	require.NoError(t, err)
	require.Equal(t, env.buyer, owner)

	amount, err := env.engine.GetOffer(env.asset, 1, env.buyer)
	require.NoError(t, err)
	require.Equal(t, uint64(0), amount)

	require.Equal(t, uint64(200), env.balance(env.operator.AccountID))
	require.Equal(t, uint64(500), env.balance(env.royal))
	require.Equal(t, uint64(9_300), env.balance(env.seller))

	// The seller no longer owns the token, and the new owner finds the
	// offer consumed.
	require.Equal(t, NotOwner, env.engine.AcceptOffer(env.asset, 1, auth, env.royal, 500, env.buyer, env.seller))
	require.Equal(t, NoOffered, env.engine.AcceptOffer(env.asset, 1, auth, env.royal, 500, env.buyer, env.buyer))
}

func TestAcceptOfferSettlementFailureRestoresOffer(t *testing.T) {
	env := newTestEnv(t)
	env.engine.sink = failSink{failTo: env.royal}
	env.mint(1)
	env.fund(env.buyer, 10_000)

	require.Equal(t, Success, env.engine.MakeOffer(env.asset, 1, 10_000, 10_000, env.buyer))

	auth := env.authorize(env.royal, 500, env.seller)
	require.Equal(t, CollectionOwnerProceedsTransferFailed,
		env.engine.AcceptOffer(env.asset, 1, auth, env.royal, 500, env.buyer, env.seller))

	// The zeroed offer and the token transfer both rolled back.
	amount, err := env.engine.GetOffer(env.asset, 1, env.buyer)
	require.NoError(t, err)
	require.Equal(t, uint64(10_000), amount)
	owner, err := env.reg.OwnerOf(env.store, env.asset, 1)
	require.NoError(t, err)
	require.Equal(t, env.seller, owner)
}

func TestSetMarketplaceFee(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, NotMarketplaceOwner, env.engine.SetMarketplaceFee(300, env.buyer))
	require.Equal(t, FeeOutOfRange, env.engine.SetMarketplaceFee(10_001, env.operator.AccountID))
	require.Equal(t, Success, env.engine.SetMarketplaceFee(300, env.operator.AccountID))

	fee, err := env.engine.MarketplaceFee()
	require.NoError(t, err)
	require.Equal(t, uint32(300), fee)
	require.Contains(t, env.pub.events, Event(MarketplaceFeeUpdated{FeeBps: 300}))
}

func TestWithdraw(t *testing.T) {
	env := newTestEnv(t)

	_, result := env.engine.Withdraw(env.seller)
	require.Equal(t, NoProceeds, result)

	env.fund(env.seller, 4_200)
	amount, result := env.engine.Withdraw(env.seller)
	require.Equal(t, Success, result)
	require.Equal(t, uint64(4_200), amount)
	require.Equal(t, uint64(0), env.balance(env.seller))

	_, result = env.engine.Withdraw(env.seller)
	require.Equal(t, NoProceeds, result)
}

// reentrantPublisher calls back into the engine from inside event
// delivery, standing in for an untrusted payee regaining control.
type reentrantPublisher struct {
	engine *Engine
	asset  crypto.AccountID
	caller crypto.AccountID
	result Result
	fired  bool
}

func (p *reentrantPublisher) Publish(Event) {
	if p.fired {
		return
	}
	p.fired = true
	p.result = p.engine.CancelListing(p.asset, 1, p.caller)
}

func TestReentrantCallRejected(t *testing.T) {
	env := newTestEnv(t)
	env.mint(1)

	pub := &reentrantPublisher{asset: env.asset, caller: env.seller}
	env.engine.publisher = pub
	pub.engine = env.engine

	require.Equal(t, Success, env.engine.ListItem(env.asset, 1, 1_000, env.seller))
	require.True(t, pub.fired)
	require.Equal(t, ReentrancyRejected, pub.result)

	// The listing was committed; only the reentrant call was refused.
	listing, err := env.engine.GetListing(env.asset, 1)
	require.NoError(t, err)
	require.NotNil(t, listing)
}

func TestEventsOnlyOnCommit(t *testing.T) {
	env := newTestEnv(t)
	env.mint(1)
	env.fund(env.buyer, 10_000)

	require.Equal(t, Success, env.engine.ListItem(env.asset, 1, 10_000, env.seller))
	env.pub.events = nil

	auth := env.authorize(env.royal, 500, env.buyer)
	require.Equal(t, PriceNotMet, env.engine.BuyItem(env.asset, 1, 1, auth, env.royal, 500, env.buyer))
	require.Empty(t, env.pub.events)

	require.Equal(t, Success, env.engine.BuyItem(env.asset, 1, 10_000, auth, env.royal, 500, env.buyer))
	require.Equal(t, []Event{
		ProceedsTransferred{Payee: env.seller, TotalPrice: 10_000, MarketplaceFeeBps: 200, CollectionFeeBps: 500},
		ItemBought{Asset: env.asset, TokenID: 1, Buyer: env.buyer, Seller: env.seller, Price: 10_000},
	}, env.pub.events)
}
