package crypto

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

var (
	// ErrInvalidPrivateKey is returned when a private key cannot be decoded
	ErrInvalidPrivateKey = errors.New("invalid private key format")

	// ErrInvalidSignature is returned when a signature cannot be decoded
	ErrInvalidSignature = errors.New("invalid signature format")
)

// Keypair holds a secp256k1 keypair in hex form. The public key is compressed
// (33 bytes, 66 hex characters).
type Keypair struct {
	PrivateKey string
	PublicKey  string
	AccountID  AccountID
}

// GenerateKeypair creates a fresh secp256k1 keypair and its derived account ID.
func GenerateKeypair() (*Keypair, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate private key: %w", err)
	}

	pubBytes := priv.PubKey().SerializeCompressed()
	return &Keypair{
		PrivateKey: strings.ToUpper(hex.EncodeToString(priv.Serialize())),
		PublicKey:  strings.ToUpper(hex.EncodeToString(pubBytes)),
		AccountID:  CalcAccountID(pubBytes),
	}, nil
}

// Sign produces a compact recoverable signature over Sha512Half(message).
// The returned signature is 65 bytes hex encoded: recovery byte followed by
// the 64-byte R||S pair.
func Sign(message []byte, privateKeyHex string) (string, error) {
	privBytes, err := hex.DecodeString(privateKeyHex)
	if err != nil || len(privBytes) != 32 {
		return "", ErrInvalidPrivateKey
	}

	priv := secp256k1.PrivKeyFromBytes(privBytes)
	digest := Sha512Half(message)

	sig := ecdsa.SignCompact(priv, digest[:], true)
	return strings.ToUpper(hex.EncodeToString(sig)), nil
}

// RecoverSigner recovers the account ID that produced a compact signature
// over Sha512Half(message). This is the signature oracle: callers compare the
// recovered identity against the expected signer.
func RecoverSigner(message []byte, signatureHex string) (AccountID, error) {
	sigBytes, err := hex.DecodeString(signatureHex)
	if err != nil || len(sigBytes) != 65 {
		return AccountID{}, ErrInvalidSignature
	}

	digest := Sha512Half(message)
	pub, _, err := ecdsa.RecoverCompact(sigBytes, digest[:])
	if err != nil {
		return AccountID{}, fmt.Errorf("signature recovery failed: %w", err)
	}

	return CalcAccountID(pub.SerializeCompressed()), nil
}
