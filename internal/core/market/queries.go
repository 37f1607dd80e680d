package market

import (
	"github.com/LeJamon/marketd/internal/core/ledger"
	"github.com/LeJamon/marketd/internal/core/ledger/keylet"
	"github.com/LeJamon/marketd/internal/crypto"
)

// GetListing returns the listing for (asset, tokenID), or nil when the
// token is not listed.
func (e *Engine) GetListing(asset crypto.AccountID, tokenID uint64) (*Listing, error) {
	return readListing(e.base, asset, tokenID)
}

// GetOffer returns the recorded offer amount of offerer on (asset,
// tokenID). Zero means no active offer.
func (e *Engine) GetOffer(asset crypto.AccountID, tokenID uint64, offerer crypto.AccountID) (uint64, error) {
	offer, err := readOffer(e.base, asset, tokenID, offerer)
	if err != nil {
		return 0, err
	}
	if offer == nil {
		return 0, nil
	}
	return offer.Amount, nil
}

// MarketplaceFee returns the current marketplace fee in basis points.
func (e *Engine) MarketplaceFee() (uint32, error) {
	fees, err := readFeeSettings(e.base)
	if err != nil {
		return 0, err
	}
	return fees.FeeBps, nil
}

// Balance returns the ledger balance of an account.
func (e *Engine) Balance(id crypto.AccountID) (uint64, error) {
	return e.book.Balance(e.base, id)
}

// SetMarketplaceFee changes the marketplace fee. Operator only; the fee
// cannot exceed 10000 bps.
func (e *Engine) SetMarketplaceFee(feeBps uint32, caller crypto.AccountID) Result {
	return e.run("setMarketplaceFee", crypto.AccountID{}, 0, caller, uint64(feeBps), func(view ledger.View, events *[]Event) Result {
		if caller != e.operator {
			return NotMarketplaceOwner
		}
		if feeBps > 10000 {
			return FeeOutOfRange
		}

		data, err := (&FeeSettings{FeeBps: feeBps}).Encode()
		if err != nil {
			return Internal
		}
		if err := view.Update(keylet.Fees(), data); err != nil {
			return Internal
		}

		*events = append(*events, MarketplaceFeeUpdated{FeeBps: feeBps})
		return Success
	})
}

// Deposit credits value to an account, funding it for purchases and
// offers.
func (e *Engine) Deposit(id crypto.AccountID, amount uint64) Result {
	return e.run("deposit", crypto.AccountID{}, 0, id, amount, func(view ledger.View, events *[]Event) Result {
		if err := e.book.Credit(view, id, amount); err != nil {
			return Internal
		}
		return Success
	})
}

// Withdraw drains the caller's full balance off the ledger and returns the
// amount withdrawn. Fails with NoProceeds when the balance is zero.
func (e *Engine) Withdraw(caller crypto.AccountID) (uint64, Result) {
	var amount uint64
	result := e.run("withdraw", crypto.AccountID{}, 0, caller, 0, func(view ledger.View, events *[]Event) Result {
		balance, err := e.book.Balance(view, caller)
		if err != nil {
			return Internal
		}
		if balance == 0 {
			return NoProceeds
		}
		if err := e.book.Debit(view, caller, balance); err != nil {
			return Internal
		}
		amount = balance
		return Success
	})
	if !result.IsSuccess() {
		return 0, result
	}
	return amount, result
}
