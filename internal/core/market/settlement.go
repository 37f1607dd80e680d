package market

import (
	"encoding/binary"
	"math/bits"

	"github.com/LeJamon/marketd/internal/core/ledger"
	"github.com/LeJamon/marketd/internal/crypto"
)

// authPrefix domain-separates settlement authorizations from any other
// message the operator key might sign.
var authPrefix = []byte("marketd/settlement/v1")

// AuthorizationMessage builds the message a settlement authorization must
// sign: the collection owner, the collection fee and the counterpart
// invoking the purchase or accept. Binding the counterpart prevents a
// captured authorization from being replayed by a different actor.
func AuthorizationMessage(collectionOwner crypto.AccountID, collectionFeeBps uint32, counterpart crypto.AccountID) []byte {
	buf := make([]byte, 0, len(authPrefix)+len(collectionOwner)+4+len(counterpart))
	buf = append(buf, authPrefix...)
	buf = append(buf, collectionOwner[:]...)
	buf = binary.BigEndian.AppendUint32(buf, collectionFeeBps)
	buf = append(buf, counterpart[:]...)
	return buf
}

// computeShares splits a settled price three ways. The marketplace and
// collection shares are floored basis point cuts; the payee takes the
// remainder, so the three always sum to exactly totalPrice. The caller
// guarantees the combined fees do not exceed 10000 bps.
func computeShares(totalPrice uint64, marketplaceFeeBps, collectionFeeBps uint32) (marketplaceShare, collectionShare, payeeShare uint64) {
	marketplaceShare = bpsShare(totalPrice, marketplaceFeeBps)
	collectionShare = bpsShare(totalPrice, collectionFeeBps)
	payeeShare = totalPrice - marketplaceShare - collectionShare
	return
}

// bpsShare computes total * bps / 10000 through a 128-bit intermediate so
// the product cannot wrap for large prices. bps never exceeds 10000, which
// keeps the high word below the divisor as Div64 requires.
func bpsShare(total uint64, bps uint32) uint64 {
	hi, lo := bits.Mul64(total, uint64(bps))
	q, _ := bits.Div64(hi, lo, 10000)
	return q
}

// settle verifies the operator's authorization over the fee split and pays
// out totalPrice from marketplace escrow to the operator, the collection
// owner and the payee. Runs on the caller's state table, so a failed
// transfer unwinds everything the enclosing operation already did.
func (e *Engine) settle(view ledger.View, events *[]Event, totalPrice uint64, authorization string, collectionOwner crypto.AccountID, collectionFeeBps uint32, payee, counterpart crypto.AccountID) Result {
	msg := AuthorizationMessage(collectionOwner, collectionFeeBps, counterpart)
	signer, err := crypto.RecoverSigner(msg, authorization)
	if err != nil || signer != e.operator {
		return NotSignedByMarketplaceOwner
	}

	fees, err := readFeeSettings(view)
	if err != nil {
		return Internal
	}
	if uint64(fees.FeeBps)+uint64(collectionFeeBps) > 10000 {
		return FeesExceedLimit
	}

	marketplaceShare, collectionShare, payeeShare := computeShares(totalPrice, fees.FeeBps, collectionFeeBps)

	if !e.sink.Transfer(view, e.marketID, e.operator, marketplaceShare) {
		return MarketplaceProceedsTransferFailed
	}
	if !e.sink.Transfer(view, e.marketID, collectionOwner, collectionShare) {
		return CollectionOwnerProceedsTransferFailed
	}
	if !e.sink.Transfer(view, e.marketID, payee, payeeShare) {
		return SellerProceedsTransferFailed
	}

	*events = append(*events, ProceedsTransferred{
		Payee:             payee,
		TotalPrice:        totalPrice,
		MarketplaceFeeBps: fees.FeeBps,
		CollectionFeeBps:  collectionFeeBps,
	})
	return Success
}
