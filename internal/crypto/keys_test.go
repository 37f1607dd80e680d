package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSha512Half(t *testing.T) {
	tt := []struct {
		description string
		input       []byte
		expected    [32]uint8
	}{
		{
			description: "hash of fakeRandomString",
			input:       []byte("fakeRandomString"),
			expected:    [32]uint8{0xbb, 0x3e, 0xca, 0x89, 0x85, 0xe1, 0x48, 0x4f, 0xa6, 0xa2, 0x8c, 0x4b, 0x30, 0xfb, 0x0, 0x42, 0xa2, 0xcc, 0x5d, 0xf3, 0xec, 0x8d, 0xc3, 0x7b, 0x5f, 0x3d, 0x12, 0x6d, 0xdf, 0xd3, 0xca, 0x14},
		},
	}

	for _, tc := range tt {
		t.Run(tc.description, func(t *testing.T) {
			got := Sha512Half(tc.input)
			require.Equal(t, tc.expected, got)
		})
	}
}

func TestSignAndRecover(t *testing.T) {
	kp, err := GenerateKeypair()
	require.NoError(t, err)

	msg := []byte("authorize: collection fee split")
	sig, err := Sign(msg, kp.PrivateKey)
	require.NoError(t, err)

	signer, err := RecoverSigner(msg, sig)
	require.NoError(t, err)
	require.Equal(t, kp.AccountID, signer)
}

func TestRecoverDifferentMessageYieldsDifferentSigner(t *testing.T) {
	kp, err := GenerateKeypair()
	require.NoError(t, err)

	sig, err := Sign([]byte("original message"), kp.PrivateKey)
	require.NoError(t, err)

	// Recovery over a different message either fails outright or yields a
	// different identity than the real signer. Both outcomes reject the
	// authorization.
	signer, err := RecoverSigner([]byte("tampered message"), sig)
	if err == nil {
		require.NotEqual(t, kp.AccountID, signer)
	}
}

func TestRecoverRejectsMalformedSignature(t *testing.T) {
	_, err := RecoverSigner([]byte("msg"), "ZZZZ")
	require.ErrorIs(t, err, ErrInvalidSignature)

	_, err = RecoverSigner([]byte("msg"), "00")
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestRandomBytes(t *testing.T) {
	b, err := RandomBytes(32)
	require.NoError(t, err)
	require.Len(t, b, 32)

	b2, err := RandomBytes(32)
	require.NoError(t, err)
	require.NotEqual(t, b, b2)

	empty, err := RandomBytes(0)
	require.NoError(t, err)
	require.Nil(t, empty)
}

func TestParseAccountID(t *testing.T) {
	kp, err := GenerateKeypair()
	require.NoError(t, err)

	parsed, err := ParseAccountID(kp.AccountID.String())
	require.NoError(t, err)
	require.Equal(t, kp.AccountID, parsed)

	_, err = ParseAccountID("not-hex")
	require.ErrorIs(t, err, ErrInvalidAccountID)
}
