// Package registry provides the ERC721-style token ownership registry the
// marketplace consults and transfers through. The marketplace itself only
// depends on the TokenRegistry interface; the Ledger implementation keeps
// token records in the same store as the marketplace state so token moves
// roll back together with the call that made them.
package registry

import (
	"errors"
	"fmt"

	"github.com/ugorji/go/codec"

	"github.com/LeJamon/marketd/internal/core/ledger"
	"github.com/LeJamon/marketd/internal/core/ledger/keylet"
	"github.com/LeJamon/marketd/internal/crypto"
)

var (
	// ErrTokenNotFound is returned when a token has no ownership record
	ErrTokenNotFound = errors.New("token does not exist")

	// ErrTokenExists is returned when minting an already minted token
	ErrTokenExists = errors.New("token already exists")

	// ErrNotAuthorized is returned when a transfer or approval is attempted
	// by a party that is neither the owner nor approved
	ErrNotAuthorized = errors.New("not authorized for token")

	// ErrWrongOwner is returned when a transfer names a from party that does
	// not own the token
	ErrWrongOwner = errors.New("from is not the token owner")
)

// TokenRegistry is the external ownership registry the marketplace consumes:
// ownerOf, getApproved and safeTransferFrom over a ledger view.
type TokenRegistry interface {
	OwnerOf(view ledger.View, asset crypto.AccountID, tokenID uint64) (crypto.AccountID, error)
	GetApproved(view ledger.View, asset crypto.AccountID, tokenID uint64) (crypto.AccountID, error)
	SafeTransferFrom(view ledger.View, from, to crypto.AccountID, asset crypto.AccountID, tokenID uint64) error
}

var cborHandle codec.CborHandle

// Token is an ownership record for one token in one asset collection.
type Token struct {
	Owner    crypto.AccountID `codec:"owner"`
	Approved crypto.AccountID `codec:"approved"`
}

// Encode serializes the token record.
func (t *Token) Encode() ([]byte, error) {
	var b []byte
	if err := codec.NewEncoderBytes(&b, &cborHandle).Encode(t); err != nil {
		return nil, fmt.Errorf("failed to encode token: %w", err)
	}
	return b, nil
}

// ParseToken deserializes a token record.
func ParseToken(data []byte) (*Token, error) {
	var t Token
	if err := codec.NewDecoderBytes(data, &cborHandle).Decode(&t); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	return &t, nil
}

// Ledger is the store-backed TokenRegistry implementation.
type Ledger struct{}

// OwnerOf returns the current owner of a token.
func (Ledger) OwnerOf(view ledger.View, asset crypto.AccountID, tokenID uint64) (crypto.AccountID, error) {
	tok, err := readToken(view, asset, tokenID)
	if err != nil {
		return crypto.AccountID{}, err
	}
	return tok.Owner, nil
}

// GetApproved returns the identity approved to transfer a token, or the zero
// identity when no approval stands.
func (Ledger) GetApproved(view ledger.View, asset crypto.AccountID, tokenID uint64) (crypto.AccountID, error) {
	tok, err := readToken(view, asset, tokenID)
	if err != nil {
		return crypto.AccountID{}, err
	}
	return tok.Approved, nil
}

// SafeTransferFrom moves a token between owners. The caller-side
// authorization check (owner or approved) has already happened at the
// marketplace boundary; this enforces the registry's own invariants: the
// token exists, from owns it, and the approval is cleared on transfer.
func (Ledger) SafeTransferFrom(view ledger.View, from, to crypto.AccountID, asset crypto.AccountID, tokenID uint64) error {
	tok, err := readToken(view, asset, tokenID)
	if err != nil {
		return err
	}
	if tok.Owner != from {
		return ErrWrongOwner
	}

	tok.Owner = to
	tok.Approved = crypto.AccountID{}
	data, err := tok.Encode()
	if err != nil {
		return err
	}
	return view.Update(keylet.Token(asset, tokenID), data)
}

// Mint creates a token owned by owner. Admin surface for standalone
// operation and tests.
func (Ledger) Mint(view ledger.View, asset crypto.AccountID, tokenID uint64, owner crypto.AccountID) error {
	k := keylet.Token(asset, tokenID)
	exists, err := view.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return ErrTokenExists
	}

	data, err := (&Token{Owner: owner}).Encode()
	if err != nil {
		return err
	}
	return view.Insert(k, data)
}

// Approve grants operator transfer rights over a token. Only the current
// owner may approve.
func (Ledger) Approve(view ledger.View, asset crypto.AccountID, tokenID uint64, operator, caller crypto.AccountID) error {
	tok, err := readToken(view, asset, tokenID)
	if err != nil {
		return err
	}
	if tok.Owner != caller {
		return ErrNotAuthorized
	}

	tok.Approved = operator
	data, err := tok.Encode()
	if err != nil {
		return err
	}
	return view.Update(keylet.Token(asset, tokenID), data)
}

func readToken(view ledger.View, asset crypto.AccountID, tokenID uint64) (*Token, error) {
	data, err := view.Read(keylet.Token(asset, tokenID))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrTokenNotFound
	}
	return ParseToken(data)
}
