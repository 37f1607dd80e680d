package bank

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LeJamon/marketd/internal/core/ledger"
	"github.com/LeJamon/marketd/internal/core/ledger/keylet"
	"github.com/LeJamon/marketd/internal/crypto"
)

type mapView struct {
	data map[[32]byte][]byte
}

func newMapView() *mapView { return &mapView{data: make(map[[32]byte][]byte)} }

func (v *mapView) Read(k keylet.Keylet) ([]byte, error) { return v.data[k.Key], nil }
func (v *mapView) Exists(k keylet.Keylet) (bool, error) {
	_, ok := v.data[k.Key]
	return ok, nil
}
func (v *mapView) Insert(k keylet.Keylet, data []byte) error {
	v.data[k.Key] = data
	return nil
}
func (v *mapView) Update(k keylet.Keylet, data []byte) error {
	v.data[k.Key] = data
	return nil
}
func (v *mapView) Erase(k keylet.Keylet) error {
	delete(v.data, k.Key)
	return nil
}
func (v *mapView) ForEach(fn func(key [32]byte, data []byte) bool) error {
	for k, d := range v.data {
		if !fn(k, d) {
			break
		}
	}
	return nil
}

var _ ledger.View = (*mapView)(nil)

func acct(seed byte) crypto.AccountID {
	var id crypto.AccountID
	id[0] = seed
	return id
}

func TestCreditAndBalance(t *testing.T) {
	view := newMapView()
	var book Book

	bal, err := book.Balance(view, acct(1))
	require.NoError(t, err)
	require.Zero(t, bal)

	require.NoError(t, book.Credit(view, acct(1), 500))
	require.NoError(t, book.Credit(view, acct(1), 250))

	bal, err = book.Balance(view, acct(1))
	require.NoError(t, err)
	require.Equal(t, uint64(750), bal)
}

func TestDebitInsufficientFunds(t *testing.T) {
	view := newMapView()
	var book Book

	require.ErrorIs(t, book.Debit(view, acct(1), 1), ErrNoAccount)

	require.NoError(t, book.Credit(view, acct(1), 100))
	require.ErrorIs(t, book.Debit(view, acct(1), 101), ErrInsufficientFunds)

	// Failed debit must not change the balance.
	bal, err := book.Balance(view, acct(1))
	require.NoError(t, err)
	require.Equal(t, uint64(100), bal)
}

func TestCreditOverflowRejected(t *testing.T) {
	view := newMapView()
	var book Book

	require.NoError(t, book.Credit(view, acct(1), math.MaxUint64-10))
	require.ErrorIs(t, book.Credit(view, acct(1), 11), ErrBalanceOverflow)

	// The rejected credit must not change the balance.
	bal, err := book.Balance(view, acct(1))
	require.NoError(t, err)
	require.Equal(t, uint64(math.MaxUint64-10), bal)

	require.NoError(t, book.Credit(view, acct(1), 10))
	bal, err = book.Balance(view, acct(1))
	require.NoError(t, err)
	require.Equal(t, uint64(math.MaxUint64), bal)
}

func TestTransfer(t *testing.T) {
	view := newMapView()
	var book Book

	require.NoError(t, book.Credit(view, acct(1), 1000))

	require.True(t, book.Transfer(view, acct(1), acct(2), 400))

	from, _ := book.Balance(view, acct(1))
	to, _ := book.Balance(view, acct(2))
	require.Equal(t, uint64(600), from)
	require.Equal(t, uint64(400), to)

	// Transfers the account cannot cover report failure without moving value.
	require.False(t, book.Transfer(view, acct(1), acct(2), 601))
	from, _ = book.Balance(view, acct(1))
	require.Equal(t, uint64(600), from)

	// Zero transfers succeed trivially.
	require.True(t, book.Transfer(view, acct(1), acct(2), 0))

	// A transfer that would wrap the recipient fails before the sender is
	// debited.
	require.NoError(t, book.Credit(view, acct(3), math.MaxUint64-100))
	require.False(t, book.Transfer(view, acct(1), acct(3), 101))
	from, _ = book.Balance(view, acct(1))
	require.Equal(t, uint64(600), from)
}

func TestAccountRoundTrip(t *testing.T) {
	a := &Account{Balance: 12345}
	data, err := a.Encode()
	require.NoError(t, err)

	parsed, err := ParseAccount(data)
	require.NoError(t, err)
	require.Equal(t, a.Balance, parsed.Balance)
}
