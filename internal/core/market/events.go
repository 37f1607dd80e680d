package market

import "github.com/LeJamon/marketd/internal/crypto"

// Event is a record emitted by a committed operation for external
// observers. Events are never consumed internally and carry no authority;
// a failed call emits nothing.
type Event interface {
	// Name returns the stream name the event is published under
	Name() string
}

// EventPublisher receives events from committed operations. Publishing
// happens after the state table has been applied, so observers only ever
// see events for state that is durable.
type EventPublisher interface {
	Publish(event Event)
}

// NopPublisher discards all events.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}

// ItemListed is emitted when a listing is created or its price updated.
// Both carry the current ask, so the record is shared.
type ItemListed struct {
	Asset   crypto.AccountID `json:"asset"`
	TokenID uint64           `json:"token_id"`
	Seller  crypto.AccountID `json:"seller"`
	Price   uint64           `json:"price"`
}

func (ItemListed) Name() string { return "itemListed" }

// ItemCanceled is emitted when a listing is withdrawn by its seller.
type ItemCanceled struct {
	Asset   crypto.AccountID `json:"asset"`
	TokenID uint64           `json:"token_id"`
	Seller  crypto.AccountID `json:"seller"`
}

func (ItemCanceled) Name() string { return "itemCanceled" }

// ItemBought is emitted when a listing purchase settles.
type ItemBought struct {
	Asset   crypto.AccountID `json:"asset"`
	TokenID uint64           `json:"token_id"`
	Buyer   crypto.AccountID `json:"buyer"`
	Seller  crypto.AccountID `json:"seller"`
	Price   uint64           `json:"price"`
}

func (ItemBought) Name() string { return "itemBought" }

// ProceedsTransferred is emitted once per settlement after all three
// shares have been paid.
type ProceedsTransferred struct {
	Payee             crypto.AccountID `json:"payee"`
	TotalPrice        uint64           `json:"total_price"`
	MarketplaceFeeBps uint32           `json:"marketplace_fee_bps"`
	CollectionFeeBps  uint32           `json:"collection_fee_bps"`
}

func (ProceedsTransferred) Name() string { return "proceedsTransferred" }

// ItemOffered is emitted when an offer is recorded.
type ItemOffered struct {
	Asset   crypto.AccountID `json:"asset"`
	TokenID uint64           `json:"token_id"`
	Offerer crypto.AccountID `json:"offerer"`
	Amount  uint64           `json:"amount"`
}

func (ItemOffered) Name() string { return "itemOffered" }

// ItemOfferCanceled is emitted when an offer is withdrawn and refunded.
type ItemOfferCanceled struct {
	Asset   crypto.AccountID `json:"asset"`
	TokenID uint64           `json:"token_id"`
	Offerer crypto.AccountID `json:"offerer"`
}

func (ItemOfferCanceled) Name() string { return "itemOfferCanceled" }

// ItemOfferAccepted is emitted when the token owner accepts an offer.
type ItemOfferAccepted struct {
	Asset   crypto.AccountID `json:"asset"`
	TokenID uint64           `json:"token_id"`
	Offerer crypto.AccountID `json:"offerer"`
	Seller  crypto.AccountID `json:"seller"`
	Amount  uint64           `json:"amount"`
}

func (ItemOfferAccepted) Name() string { return "itemOfferAccepted" }

// MarketplaceFeeUpdated is emitted when the operator changes the
// marketplace fee.
type MarketplaceFeeUpdated struct {
	FeeBps uint32 `json:"fee_bps"`
}

func (MarketplaceFeeUpdated) Name() string { return "marketplaceFeeUpdated" }
