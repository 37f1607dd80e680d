package keylet

import (
	"encoding/binary"

	"github.com/LeJamon/marketd/internal/crypto"
)

// Entry type identifiers for ledger state entries.
type Type uint16

const (
	TypeUnknown Type = 0
	TypeListing Type = 'l' // Fixed-price listing
	TypeOffer   Type = 'q' // Standing offer
	TypeAccount Type = 'a' // Balance account
	TypeToken   Type = 't' // Token ownership record
	TypeFees    Type = 'e' // Marketplace fee settings (singleton)
)

// Space identifiers for keylet generation. Each entry kind hashes its
// identifying fields under its own namespace so keys cannot collide across
// kinds.
const (
	spaceListing uint16 = 'l'
	spaceOffer   uint16 = 'q'
	spaceAccount uint16 = 'a'
	spaceToken   uint16 = 't'
	spaceFees    uint16 = 'e'
)

// Keylet represents an addressable location in the ledger state.
// It combines a type identifier with a 256-bit key.
type Keylet struct {
	Type Type
	Key  [32]byte
}

// indexHash computes a keylet key by hashing the space and provided data.
func indexHash(space uint16, data ...[]byte) [32]byte {
	spaceBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(spaceBytes, space)

	buf := make([]byte, 0, 64)
	buf = append(buf, spaceBytes...)
	for _, d := range data {
		buf = append(buf, d...)
	}

	return crypto.Sha512Half(buf)
}

// Listing returns the keylet for the fixed-price listing of a token.
// Exactly one listing may exist per (asset, token) pair.
func Listing(asset crypto.AccountID, tokenID uint64) Keylet {
	var seq [8]byte
	binary.BigEndian.PutUint64(seq[:], tokenID)
	return Keylet{
		Type: TypeListing,
		Key:  indexHash(spaceListing, asset[:], seq[:]),
	}
}

// Offer returns the keylet for a standing offer by one offerer on a token.
// Offers from distinct offerers occupy distinct keys.
func Offer(asset crypto.AccountID, tokenID uint64, offerer crypto.AccountID) Keylet {
	var seq [8]byte
	binary.BigEndian.PutUint64(seq[:], tokenID)
	return Keylet{
		Type: TypeOffer,
		Key:  indexHash(spaceOffer, asset[:], seq[:], offerer[:]),
	}
}

// Account returns the keylet for a balance account.
func Account(id crypto.AccountID) Keylet {
	return Keylet{
		Type: TypeAccount,
		Key:  indexHash(spaceAccount, id[:]),
	}
}

// Token returns the keylet for a token ownership record in an asset
// collection.
func Token(asset crypto.AccountID, tokenID uint64) Keylet {
	var seq [8]byte
	binary.BigEndian.PutUint64(seq[:], tokenID)
	return Keylet{
		Type: TypeToken,
		Key:  indexHash(spaceToken, asset[:], seq[:]),
	}
}

// Fees returns the singleton keylet for marketplace fee settings.
func Fees() Keylet {
	return Keylet{
		Type: TypeFees,
		Key:  indexHash(spaceFees),
	}
}
