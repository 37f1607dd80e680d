package market

import "fmt"

// Result represents a marketplace operation result code
type Result int

// Marketplace result codes
// Organized by category: success, precondition, economic, authorization,
// transfer, local
const (
	// Success (0)
	Success Result = 0

	// Precondition failures (100-199)
	// The call named state the ledger does not hold
	NotOwner                  Result = 100
	CanNotBeOwner             Result = 101
	AlreadyListed             Result = 102
	NotListed                 Result = 103
	PriceMustBeAboveZero      Result = 104
	NotApprovedForMarketplace Result = 105
	AlreadyOffered            Result = 106
	NoOffered                 Result = 107
	NoProceeds                Result = 108

	// Economic failures (200-299)
	// State checks passed but the value attached does not cover the price
	PriceNotMet      Result = 200
	OfferPriceNotMet Result = 201
	FeesExceedLimit  Result = 202

	// Authorization failures (300-399)
	NotSignedByMarketplaceOwner Result = 300
	NotMarketplaceOwner         Result = 301
	FeeOutOfRange               Result = 302

	// Transfer failures (400-499)
	// A value or token movement inside settlement reported failure;
	// everything the call did is rolled back
	MarketplaceProceedsTransferFailed    Result = 400
	CollectionOwnerProceedsTransferFailed Result = 401
	SellerProceedsTransferFailed         Result = 402
	CancelOfferProceedsTransferFailed    Result = 403
	TokenTransferFailed                  Result = 404
	InsufficientFunds                    Result = 405

	// Local errors (negative)
	// The call never reached the engine
	ReentrancyRejected Result = -100
	Internal           Result = -199
)

// String returns the string representation of the result code
func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case NotOwner:
		return "notOwner"
	case CanNotBeOwner:
		return "canNotBeOwner"
	case AlreadyListed:
		return "alreadyListed"
	case NotListed:
		return "notListed"
	case PriceMustBeAboveZero:
		return "priceMustBeAboveZero"
	case NotApprovedForMarketplace:
		return "notApprovedForMarketplace"
	case AlreadyOffered:
		return "alreadyOffered"
	case NoOffered:
		return "noOffered"
	case NoProceeds:
		return "noProceeds"
	case PriceNotMet:
		return "priceNotMet"
	case OfferPriceNotMet:
		return "offerPriceNotMet"
	case FeesExceedLimit:
		return "feesExceedLimit"
	case NotSignedByMarketplaceOwner:
		return "notSignedByMarketplaceOwner"
	case NotMarketplaceOwner:
		return "notMarketplaceOwner"
	case FeeOutOfRange:
		return "feeOutOfRange"
	case MarketplaceProceedsTransferFailed:
		return "marketplaceProceedsTransferFailed"
	case CollectionOwnerProceedsTransferFailed:
		return "collectionOwnerProceedsTransferFailed"
	case SellerProceedsTransferFailed:
		return "sellerProceedsTransferFailed"
	case CancelOfferProceedsTransferFailed:
		return "cancelOfferProceedsTransferFailed"
	case TokenTransferFailed:
		return "tokenTransferFailed"
	case InsufficientFunds:
		return "insufficientFunds"
	case ReentrancyRejected:
		return "reentrancyRejected"
	case Internal:
		return "internal"
	default:
		return fmt.Sprintf("unknown(%d)", int(r))
	}
}

// IsSuccess returns true if the operation was applied
func (r Result) IsSuccess() bool {
	return r == Success
}

// IsPrecondition returns true for state precondition failures
func (r Result) IsPrecondition() bool {
	return r >= 100 && r < 200
}

// IsEconomic returns true for value shortfall failures
func (r Result) IsEconomic() bool {
	return r >= 200 && r < 300
}

// IsAuthorization returns true for authorization failures
func (r Result) IsAuthorization() bool {
	return r >= 300 && r < 400
}

// IsTransfer returns true for transfer failures raised inside settlement
func (r Result) IsTransfer() bool {
	return r >= 400 && r < 500
}

// IsLocal returns true if the call was rejected before reaching the engine
func (r Result) IsLocal() bool {
	return r < 0
}

// Message returns a human-readable message for the result
func (r Result) Message() string {
	switch r {
	case Success:
		return "The operation was applied."
	case NotOwner:
		return "Caller does not own the token."
	case CanNotBeOwner:
		return "The token owner cannot perform this operation."
	case AlreadyListed:
		return "The token is already listed."
	case NotListed:
		return "The token is not listed."
	case PriceMustBeAboveZero:
		return "Listing price must be above zero."
	case NotApprovedForMarketplace:
		return "The marketplace is not approved to transfer the token."
	case AlreadyOffered:
		return "An active offer from this account already exists."
	case NoOffered:
		return "No active offer from this account exists."
	case NoProceeds:
		return "No proceeds available to withdraw."
	case PriceNotMet:
		return "Attached value does not meet the listing price."
	case OfferPriceNotMet:
		return "Attached value does not back the offer amount."
	case FeesExceedLimit:
		return "Combined marketplace and collection fees exceed the whole."
	case NotSignedByMarketplaceOwner:
		return "Settlement authorization was not signed by the marketplace operator."
	case NotMarketplaceOwner:
		return "Caller is not the marketplace operator."
	case FeeOutOfRange:
		return "Fee is outside the allowed basis point range."
	case MarketplaceProceedsTransferFailed:
		return "Paying the marketplace share failed."
	case CollectionOwnerProceedsTransferFailed:
		return "Paying the collection owner share failed."
	case SellerProceedsTransferFailed:
		return "Paying the seller share failed."
	case CancelOfferProceedsTransferFailed:
		return "Refunding the canceled offer failed."
	case TokenTransferFailed:
		return "Transferring the token failed."
	case InsufficientFunds:
		return "Caller balance cannot cover the attached value."
	case ReentrancyRejected:
		return "Another marketplace call is in flight."
	case Internal:
		return "Internal error."
	default:
		return "Unknown result code."
	}
}
