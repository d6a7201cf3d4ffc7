// internal/ledger/attest_test.go
package ledger

import (
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/stretchr/testify/require"
)

// testOracle holds a secp256k1 key whose derived address has been granted
// the Oracle capability.
type testOracle struct {
	key  *secp256k1.PrivateKey
	addr Address
}

func newTestOracle(t *testing.T, env *testEnv) *testOracle {
	t.Helper()
	key, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	addr := AddressFromPublicKey(key.PubKey())
	require.NoError(t, env.ledger.SetOracle(admin, addr))
	return &testOracle{key: key, addr: addr}
}

func (o *testOracle) sign(digest Hash32) []byte {
	return secpecdsa.SignCompact(o.key, digest[:], true)
}

func TestRecoverSigner(t *testing.T) {
	key, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	digest := AIReceiptDigest(7, "receipt-1")

	sig := secpecdsa.SignCompact(key, digest[:], true)
	signer, err := RecoverSigner(digest, sig)
	require.NoError(t, err)
	require.Equal(t, AddressFromPublicKey(key.PubKey()), signer)

	// A different digest recovers a different (or no) signer, never the
	// original one.
	other := AIReceiptDigest(7, "receipt-2")
	recovered, err := RecoverSigner(other, sig)
	if err == nil {
		require.NotEqual(t, signer, recovered)
	}

	_, err = RecoverSigner(digest, sig[:64])
	require.ErrorIs(t, err, ErrInvalidSignature)

	_, err = RecoverSigner(digest, nil)
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestDigestDomainSeparation(t *testing.T) {
	var h1, h2 Hash32
	h1[0], h2[0] = 1, 2

	require.NotEqual(t, AIReceiptDigest(1, "ref"), AIReceiptDigest(2, "ref"))
	require.NotEqual(t, AIReceiptDigest(1, "ref"), AIReceiptDigest(1, "ref2"))
	require.NotEqual(t,
		TransferDigest(1, alice, bob, h1, h2),
		TransferDigest(1, alice, bob, h2, h1))
	require.NotEqual(t,
		TransferDigest(1, alice, bob, h1, h2),
		TransferDigest(1, bob, alice, h1, h2))
}

func TestVerifyAIProcessingReplayProtection(t *testing.T) {
	env := newTestEnv(t)
	env.register(alice, "alice")
	oracle := newTestOracle(t, env)

	cid, err := env.ledger.Publish(alice, "piece", "ref", ContentTypeImage, "", 0, false, nil)
	require.NoError(t, err)

	digest := AIReceiptDigest(cid, "ipfs://receipt")
	sig := oracle.sign(digest)

	require.NoError(t, env.ledger.VerifyAIProcessing(alice, cid, "ipfs://receipt", sig))
	content, _ := env.ledger.GetContent(cid)
	require.Equal(t, "ipfs://receipt", content.AIReceiptRef)
	require.True(t, env.ledger.DigestUsed(digest))

	// Second submission of the same signed message fails and mutates
	// nothing further.
	err = env.ledger.VerifyAIProcessing(alice, cid, "ipfs://receipt", sig)
	require.ErrorIs(t, err, ErrReplayedSignature)
}

func TestVerifyAIProcessingRejectsNonOracleSigner(t *testing.T) {
	env := newTestEnv(t)
	env.register(alice, "alice")

	cid, err := env.ledger.Publish(alice, "piece", "ref", ContentTypeImage, "", 0, false, nil)
	require.NoError(t, err)

	// Valid signature from a key without the Oracle capability.
	key, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	digest := AIReceiptDigest(cid, "ipfs://receipt")
	sig := secpecdsa.SignCompact(key, digest[:], true)

	err = env.ledger.VerifyAIProcessing(alice, cid, "ipfs://receipt", sig)
	require.ErrorIs(t, err, ErrInvalidSignature)

	// Failure is non-mutating: the digest is still unused, so a real oracle
	// signature for the same message succeeds afterwards.
	require.False(t, env.ledger.DigestUsed(digest))
	oracle := newTestOracle(t, env)
	require.NoError(t, env.ledger.VerifyAIProcessing(alice, cid, "ipfs://receipt", oracle.sign(digest)))
}

func TestRevokedOracleSignatureRejected(t *testing.T) {
	env := newTestEnv(t)
	env.register(alice, "alice")
	oracle := newTestOracle(t, env)

	cid, err := env.ledger.Publish(alice, "piece", "ref", ContentTypeImage, "", 0, false, nil)
	require.NoError(t, err)
	digest := AIReceiptDigest(cid, "receipt")
	sig := oracle.sign(digest)

	require.NoError(t, env.ledger.RevokeRole(admin, oracle.addr, RoleOracle))
	err = env.ledger.VerifyAIProcessing(alice, cid, "receipt", sig)
	require.ErrorIs(t, err, ErrInvalidSignature)
}
