package market

import (
	"github.com/LeJamon/marketd/internal/core/ledger"
	"github.com/LeJamon/marketd/internal/core/ledger/keylet"
	"github.com/LeJamon/marketd/internal/crypto"
)

// MakeOffer records a standing offer on a token and escrows the staked
// value with the marketplace. The recorded offer is the offer price; any
// stake above it stays escrowed and is not returned by a later cancel,
// which refunds the recorded amount only.
func (e *Engine) MakeOffer(asset crypto.AccountID, tokenID uint64, offerPrice uint64, stakedAmount uint64, caller crypto.AccountID) Result {
	return e.run("makeOffer", asset, tokenID, caller, stakedAmount, func(view ledger.View, events *[]Event) Result {
		owner, err := e.registry.OwnerOf(view, asset, tokenID)
		if err != nil {
			return Internal
		}
		if owner == caller {
			return CanNotBeOwner
		}

		offer, err := readOffer(view, asset, tokenID, caller)
		if err != nil {
			return Internal
		}
		if offer.Active() {
			return AlreadyOffered
		}

		if stakedAmount < offerPrice {
			return OfferPriceNotMet
		}
		if offerPrice == 0 {
			return PriceMustBeAboveZero
		}

		if err := e.book.Debit(view, caller, stakedAmount); err != nil {
			return InsufficientFunds
		}
		if err := e.book.Credit(view, e.marketID, stakedAmount); err != nil {
			return Internal
		}

		data, err := (&Offer{Amount: offerPrice}).Encode()
		if err != nil {
			return Internal
		}
		k := keylet.Offer(asset, tokenID, caller)
		if offer == nil {
			err = view.Insert(k, data)
		} else {
			err = view.Update(k, data)
		}
		if err != nil {
			return Internal
		}

		*events = append(*events, ItemOffered{Asset: asset, TokenID: tokenID, Offerer: caller, Amount: offerPrice})
		return Success
	})
}

// CancelOffer withdraws the caller's offer and refunds the recorded
// amount. The refund runs before the offer is zeroed; a refund failure
// aborts the call with nothing changed.
func (e *Engine) CancelOffer(asset crypto.AccountID, tokenID uint64, caller crypto.AccountID) Result {
	return e.run("cancelOffer", asset, tokenID, caller, 0, func(view ledger.View, events *[]Event) Result {
		offer, err := readOffer(view, asset, tokenID, caller)
		if err != nil {
			return Internal
		}
		if !offer.Active() {
			return NoOffered
		}

		owner, err := e.registry.OwnerOf(view, asset, tokenID)
		if err != nil {
			return Internal
		}
		if owner == caller {
			return CanNotBeOwner
		}

		if !e.sink.Transfer(view, e.marketID, caller, offer.Amount) {
			return CancelOfferProceedsTransferFailed
		}

		data, err := (&Offer{}).Encode()
		if err != nil {
			return Internal
		}
		if err := view.Update(keylet.Offer(asset, tokenID, caller), data); err != nil {
			return Internal
		}

		*events = append(*events, ItemOfferCanceled{Asset: asset, TokenID: tokenID, Offerer: caller})
		return Success
	})
}

// AcceptOffer lets the token owner take a standing offer. The offer is
// zeroed before the token moves, then the offer amount is settled three
// ways with the accepting owner as payee.
func (e *Engine) AcceptOffer(asset crypto.AccountID, tokenID uint64, authorization string, collectionOwner crypto.AccountID, collectionFeeBps uint32, offerer crypto.AccountID, caller crypto.AccountID) Result {
	return e.run("acceptOffer", asset, tokenID, caller, 0, func(view ledger.View, events *[]Event) Result {
		owner, err := e.registry.OwnerOf(view, asset, tokenID)
		if err != nil {
			return Internal
		}
		if owner != caller {
			return NotOwner
		}

		offer, err := readOffer(view, asset, tokenID, offerer)
		if err != nil {
			return Internal
		}
		if !offer.Active() {
			return NoOffered
		}

		// Zero the offer before the token or any value moves.
		data, err := (&Offer{}).Encode()
		if err != nil {
			return Internal
		}
		if err := view.Update(keylet.Offer(asset, tokenID, offerer), data); err != nil {
			return Internal
		}

		if err := e.registry.SafeTransferFrom(view, caller, offerer, asset, tokenID); err != nil {
			return TokenTransferFailed
		}

		if result := e.settle(view, events, offer.Amount, authorization, collectionOwner, collectionFeeBps, caller, caller); !result.IsSuccess() {
			return result
		}

		*events = append(*events, ItemOfferAccepted{Asset: asset, TokenID: tokenID, Offerer: offerer, Seller: caller, Amount: offer.Amount})
		return Success
	})
}
