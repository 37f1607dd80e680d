package journal

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LeJamon/marketd/internal/core/market"
	"github.com/LeJamon/marketd/internal/crypto"
)

func openTestJournal(t *testing.T) *Journal {
	cfg := DefaultConfig(filepath.Join(t.TempDir(), "journal.db"))
	j, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, j.Open(context.Background()))
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordAndQueryOperations(t *testing.T) {
	j := openTestJournal(t)

	var asset, caller crypto.AccountID
	asset[0] = 0xAA
	caller[0] = 1

	require.NoError(t, j.RecordOperation("listItem", market.Success, asset, 7, caller, 1000))
	require.NoError(t, j.RecordOperation("buyItem", market.PriceNotMet, asset, 7, caller, 500))

	records, err := j.Operations(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first.
	require.Equal(t, "buyItem", records[0].Op)
	require.Equal(t, "priceNotMet", records[0].ResultStr)
	require.Equal(t, uint64(500), records[0].Amount)
	require.Equal(t, "listItem", records[1].Op)
	require.Equal(t, uint64(7), records[1].TokenID)
	require.Equal(t, caller.String(), records[1].Caller)
}

func TestRecordAndQuerySettlements(t *testing.T) {
	j := openTestJournal(t)

	var payee crypto.AccountID
	payee[0] = 2

	require.NoError(t, j.RecordSettlement(payee, 10_000, 200, 500, 9_300, 200, 500))

	records, err := j.Settlements(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, payee.String(), records[0].Payee)
	require.Equal(t, uint64(10_000), records[0].TotalPrice)
	require.Equal(t, records[0].TotalPrice, records[0].MarketplaceShare+records[0].CollectionShare+records[0].PayeeShare)
}

func TestClosedJournalRejectsWrites(t *testing.T) {
	cfg := DefaultConfig(filepath.Join(t.TempDir(), "journal.db"))
	j, err := New(cfg)
	require.NoError(t, err)

	require.ErrorIs(t, j.RecordOperation("listItem", market.Success, crypto.AccountID{}, 0, crypto.AccountID{}, 0), ErrClosed)

	require.NoError(t, j.Open(context.Background()))
	require.NoError(t, j.Close())
	_, err = j.Operations(context.Background(), 1)
	require.ErrorIs(t, err, ErrClosed)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig("")
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig("x.db")
	cfg.Driver = "mysql"
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig("x.db")
	require.NoError(t, cfg.Validate())
}
