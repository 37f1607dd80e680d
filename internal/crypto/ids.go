package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/decred/dcrd/crypto/ripemd160"
)

const (
	// AccountIDSize is the size of an account identifier in bytes
	AccountIDSize = 20
)

var (
	// ErrInvalidAccountID is returned when an account ID string cannot be decoded
	ErrInvalidAccountID = errors.New("invalid account id")
)

// AccountID identifies a party on the marketplace ledger: a holder, a buyer,
// the marketplace operator, or a collection royalty recipient.
type AccountID [AccountIDSize]byte

// CalcAccountID derives an account ID from a public key using
// RIPEMD160(SHA256(publicKey)).
func CalcAccountID(publicKey []byte) AccountID {
	sha256Hash := sha256.Sum256(publicKey)

	ripemd160Hasher := ripemd160.New()
	ripemd160Hasher.Write(sha256Hash[:])
	ripemd160Hash := ripemd160Hasher.Sum(nil)

	var result AccountID
	copy(result[:], ripemd160Hash)
	return result
}

// IsZero reports whether the account ID is the zero sentinel.
func (id AccountID) IsZero() bool {
	return id == AccountID{}
}

// String returns the uppercase hex form of the account ID.
func (id AccountID) String() string {
	return strings.ToUpper(hex.EncodeToString(id[:]))
}

// ParseAccountID decodes a 40-character hex account ID.
func ParseAccountID(s string) (AccountID, error) {
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != AccountIDSize {
		return AccountID{}, ErrInvalidAccountID
	}
	var id AccountID
	copy(id[:], b)
	return id, nil
}
