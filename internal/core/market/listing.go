package market

import (
	"errors"

	"github.com/LeJamon/marketd/internal/core/ledger"
	"github.com/LeJamon/marketd/internal/core/ledger/keylet"
	"github.com/LeJamon/marketd/internal/core/registry"
	"github.com/LeJamon/marketd/internal/crypto"
)

// ListItem creates a fixed price listing for a token the caller owns and
// has approved to the marketplace.
func (e *Engine) ListItem(asset crypto.AccountID, tokenID uint64, price uint64, caller crypto.AccountID) Result {
	return e.run("listItem", asset, tokenID, caller, price, func(view ledger.View, events *[]Event) Result {
		listing, err := readListing(view, asset, tokenID)
		if err != nil {
			return Internal
		}
		if listing != nil {
			return AlreadyListed
		}

		owner, err := e.registry.OwnerOf(view, asset, tokenID)
		if err != nil {
			if errors.Is(err, registry.ErrTokenNotFound) {
				return NotOwner
			}
			return Internal
		}
		if owner != caller {
			return NotOwner
		}

		if price == 0 {
			return PriceMustBeAboveZero
		}

		approved, err := e.registry.GetApproved(view, asset, tokenID)
		if err != nil {
			return Internal
		}
		if approved != e.marketID {
			return NotApprovedForMarketplace
		}

		data, err := (&Listing{Price: price, Seller: caller}).Encode()
		if err != nil {
			return Internal
		}
		if err := view.Insert(keylet.Listing(asset, tokenID), data); err != nil {
			return Internal
		}

		*events = append(*events, ItemListed{Asset: asset, TokenID: tokenID, Seller: caller, Price: price})
		return Success
	})
}

// UpdateListing overwrites the asking price of an existing listing. The new
// price is written as given; a zero price turns the entry into a listing
// nothing can buy rather than failing here.
func (e *Engine) UpdateListing(asset crypto.AccountID, tokenID uint64, newPrice uint64, caller crypto.AccountID) Result {
	return e.run("updateListing", asset, tokenID, caller, newPrice, func(view ledger.View, events *[]Event) Result {
		listing, err := readListing(view, asset, tokenID)
		if err != nil {
			return Internal
		}
		if listing == nil {
			return NotListed
		}

		owner, err := e.registry.OwnerOf(view, asset, tokenID)
		if err != nil {
			return Internal
		}
		if owner != caller {
			return NotOwner
		}

		listing.Price = newPrice
		data, err := listing.Encode()
		if err != nil {
			return Internal
		}
		if err := view.Update(keylet.Listing(asset, tokenID), data); err != nil {
			return Internal
		}

		*events = append(*events, ItemListed{Asset: asset, TokenID: tokenID, Seller: caller, Price: newPrice})
		return Success
	})
}

// CancelListing withdraws a listing.
func (e *Engine) CancelListing(asset crypto.AccountID, tokenID uint64, caller crypto.AccountID) Result {
	return e.run("cancelListing", asset, tokenID, caller, 0, func(view ledger.View, events *[]Event) Result {
		listing, err := readListing(view, asset, tokenID)
		if err != nil {
			return Internal
		}
		if listing == nil {
			return NotListed
		}

		owner, err := e.registry.OwnerOf(view, asset, tokenID)
		if err != nil {
			return Internal
		}
		if owner != caller {
			return NotOwner
		}

		if err := view.Erase(keylet.Listing(asset, tokenID)); err != nil {
			return Internal
		}

		*events = append(*events, ItemCanceled{Asset: asset, TokenID: tokenID, Seller: caller})
		return Success
	})
}

// BuyItem purchases a listed token. The paid amount moves into marketplace
// escrow, the listing is erased before the token and value move, and the
// listing price is settled three ways. Paying above the asking price leaves
// the surplus with the marketplace; it is not refunded here.
func (e *Engine) BuyItem(asset crypto.AccountID, tokenID uint64, paidAmount uint64, authorization string, collectionOwner crypto.AccountID, collectionFeeBps uint32, caller crypto.AccountID) Result {
	return e.run("buyItem", asset, tokenID, caller, paidAmount, func(view ledger.View, events *[]Event) Result {
		listing, err := readListing(view, asset, tokenID)
		if err != nil {
			return Internal
		}
		if !listing.Active() {
			return NotListed
		}
		if paidAmount < listing.Price {
			return PriceNotMet
		}

		if err := e.book.Debit(view, caller, paidAmount); err != nil {
			return InsufficientFunds
		}
		if err := e.book.Credit(view, e.marketID, paidAmount); err != nil {
			return Internal
		}

		// Erase the listing before the token or any value moves.
		if err := view.Erase(keylet.Listing(asset, tokenID)); err != nil {
			return Internal
		}

		if err := e.registry.SafeTransferFrom(view, listing.Seller, caller, asset, tokenID); err != nil {
			return TokenTransferFailed
		}

		if result := e.settle(view, events, listing.Price, authorization, collectionOwner, collectionFeeBps, listing.Seller, caller); !result.IsSuccess() {
			return result
		}

		*events = append(*events, ItemBought{Asset: asset, TokenID: tokenID, Buyer: caller, Seller: listing.Seller, Price: listing.Price})
		return Success
	})
}
