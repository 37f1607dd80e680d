// Package bank is the value ledger: account balances held in the same
// persistent store as the marketplace state, so that settlement payouts
// commit or roll back together with the listing and offer mutations that
// caused them.
package bank

import (
	"errors"
	"fmt"
	"math"

	"github.com/ugorji/go/codec"

	"github.com/LeJamon/marketd/internal/core/ledger"
	"github.com/LeJamon/marketd/internal/core/ledger/keylet"
	"github.com/LeJamon/marketd/internal/crypto"
)

var (
	// ErrInsufficientFunds is returned when an account cannot cover a debit
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNoAccount is returned when debiting an account with no balance entry
	ErrNoAccount = errors.New("account does not exist")

	// ErrBalanceOverflow is returned when a credit would wrap the balance
	ErrBalanceOverflow = errors.New("balance overflow")
)

var cborHandle codec.CborHandle

// Account is a balance entry in the ledger store.
type Account struct {
	Balance uint64 `codec:"balance"`
}

// Encode serializes the account entry.
func (a *Account) Encode() ([]byte, error) {
	var b []byte
	if err := codec.NewEncoderBytes(&b, &cborHandle).Encode(a); err != nil {
		return nil, fmt.Errorf("failed to encode account: %w", err)
	}
	return b, nil
}

// ParseAccount deserializes an account entry.
func ParseAccount(data []byte) (*Account, error) {
	var a Account
	if err := codec.NewDecoderBytes(data, &cborHandle).Decode(&a); err != nil {
		return nil, fmt.Errorf("failed to decode account: %w", err)
	}
	return &a, nil
}

// Sink is the payout capability boundary. Settlement pays parties through a
// Sink and converts a false return into a typed failure; it never observes
// how the value actually moves. Transfer must not mutate state when it
// reports false.
type Sink interface {
	Transfer(view ledger.View, from, to crypto.AccountID, amount uint64) bool
}

// Book moves value between balance accounts on a ledger view. It implements
// Sink over the same sandboxed view the rest of an operation runs in.
type Book struct{}

// Balance returns the spendable balance of an account. Missing accounts
// read as zero.
func (Book) Balance(view ledger.View, id crypto.AccountID) (uint64, error) {
	acct, err := readAccount(view, id)
	if err != nil {
		return 0, err
	}
	if acct == nil {
		return 0, nil
	}
	return acct.Balance, nil
}

// Credit adds amount to an account, creating the entry if needed. Returns
// ErrBalanceOverflow when the new balance would wrap.
func (Book) Credit(view ledger.View, id crypto.AccountID, amount uint64) error {
	k := keylet.Account(id)
	acct, err := readAccount(view, id)
	if err != nil {
		return err
	}

	if acct == nil {
		data, err := (&Account{Balance: amount}).Encode()
		if err != nil {
			return err
		}
		return view.Insert(k, data)
	}

	if acct.Balance > math.MaxUint64-amount {
		return ErrBalanceOverflow
	}
	acct.Balance += amount
	data, err := acct.Encode()
	if err != nil {
		return err
	}
	return view.Update(k, data)
}

// Debit removes amount from an account. Returns ErrInsufficientFunds when
// the balance cannot cover it.
func (Book) Debit(view ledger.View, id crypto.AccountID, amount uint64) error {
	acct, err := readAccount(view, id)
	if err != nil {
		return err
	}
	if acct == nil {
		return ErrNoAccount
	}
	if acct.Balance < amount {
		return ErrInsufficientFunds
	}

	acct.Balance -= amount
	data, err := acct.Encode()
	if err != nil {
		return err
	}
	return view.Update(keylet.Account(id), data)
}

// Transfer moves amount between two accounts. It reports success or failure
// instead of an error. Both sides are checked before anything is written,
// so insufficient funds or a recipient overflow leave the view untouched;
// callers run it on a sandboxed view and discard the whole table when the
// enclosing operation fails anyway.
func (b Book) Transfer(view ledger.View, from, to crypto.AccountID, amount uint64) bool {
	if amount == 0 {
		return true
	}
	toBalance, err := b.Balance(view, to)
	if err != nil || toBalance > math.MaxUint64-amount {
		return false
	}
	if err := b.Debit(view, from, amount); err != nil {
		return false
	}
	if err := b.Credit(view, to, amount); err != nil {
		return false
	}
	return true
}

func readAccount(view ledger.View, id crypto.AccountID) (*Account, error) {
	data, err := view.Read(keylet.Account(id))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	return ParseAccount(data)
}
