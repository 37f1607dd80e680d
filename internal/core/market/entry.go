// Package market implements the marketplace state machine: the listing
// ledger, the offer ledger and the settlement engine. Every operation runs
// against a sandboxed state table and commits atomically; a non-success
// result leaves the ledger exactly as the call found it.
package market

import (
	"fmt"

	"github.com/ugorji/go/codec"

	"github.com/LeJamon/marketd/internal/crypto"
)

var cborHandle codec.CborHandle

// Listing is an active sale record for one token. At most one exists per
// (asset, tokenID) and its presence is the listed/unlisted state.
type Listing struct {
	Price  uint64           `codec:"price"`
	Seller crypto.AccountID `codec:"seller"`
}

// Active reports whether the listing can be bought. A zero price is the
// not-listed sentinel, so an entry repriced to zero reads as inactive.
func (l *Listing) Active() bool {
	return l != nil && l.Price > 0
}

// Encode serializes the listing entry.
func (l *Listing) Encode() ([]byte, error) {
	var b []byte
	if err := codec.NewEncoderBytes(&b, &cborHandle).Encode(l); err != nil {
		return nil, fmt.Errorf("failed to encode listing: %w", err)
	}
	return b, nil
}

// ParseListing deserializes a listing entry.
func ParseListing(data []byte) (*Listing, error) {
	var l Listing
	if err := codec.NewDecoderBytes(data, &cborHandle).Decode(&l); err != nil {
		return nil, fmt.Errorf("failed to decode listing: %w", err)
	}
	return &l, nil
}

// Offer is the staked bid of one account on one token. An entry with a zero
// amount counts as no offer; the entry is zeroed rather than erased so the
// activity check and the stake release stay separate steps.
type Offer struct {
	Amount uint64 `codec:"amount"`
}

// Active reports whether the offer carries a live bid.
func (o *Offer) Active() bool {
	return o != nil && o.Amount > 0
}

// Encode serializes the offer entry.
func (o *Offer) Encode() ([]byte, error) {
	var b []byte
	if err := codec.NewEncoderBytes(&b, &cborHandle).Encode(o); err != nil {
		return nil, fmt.Errorf("failed to encode offer: %w", err)
	}
	return b, nil
}

// ParseOffer deserializes an offer entry.
func ParseOffer(data []byte) (*Offer, error) {
	var o Offer
	if err := codec.NewDecoderBytes(data, &cborHandle).Decode(&o); err != nil {
		return nil, fmt.Errorf("failed to decode offer: %w", err)
	}
	return &o, nil
}

// FeeSettings is the singleton marketplace fee entry.
type FeeSettings struct {
	FeeBps uint32 `codec:"feeBps"`
}

// Encode serializes the fee entry.
func (f *FeeSettings) Encode() ([]byte, error) {
	var b []byte
	if err := codec.NewEncoderBytes(&b, &cborHandle).Encode(f); err != nil {
		return nil, fmt.Errorf("failed to encode fee settings: %w", err)
	}
	return b, nil
}

// ParseFeeSettings deserializes the fee entry.
func ParseFeeSettings(data []byte) (*FeeSettings, error) {
	var f FeeSettings
	if err := codec.NewDecoderBytes(data, &cborHandle).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode fee settings: %w", err)
	}
	return &f, nil
}
