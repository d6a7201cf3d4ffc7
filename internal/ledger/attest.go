// internal/ledger/attest.go
package ledger

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// Attestation verification: canonicalize message bytes, hash, recover the
// signer from a compact secp256k1 signature, require the Oracle capability,
// require the digest unused, then mark it used. Any failure leaves the
// used-digest set untouched.

// Domain separation tags for the two attested message families.
const (
	aiReceiptDomain = "creator-ledger/ai-receipt/v1"
	transferDomain  = "creator-ledger/asset-transfer/v1"
)

// CompactSignatureSize is the expected signature length: one recovery header
// byte followed by r and s (32 bytes each).
const CompactSignatureSize = 65

// AIReceiptDigest canonicalizes and hashes an AI-processing receipt message.
func AIReceiptDigest(contentID uint64, receiptRef string) Hash32 {
	h := sha256.New()
	h.Write([]byte(aiReceiptDomain))
	var id [8]byte
	binary.BigEndian.PutUint64(id[:], contentID)
	h.Write(id[:])
	refHash := sha256.Sum256([]byte(receiptRef))
	h.Write(refHash[:])
	var digest Hash32
	copy(digest[:], h.Sum(nil))
	return digest
}

// TransferDigest canonicalizes and hashes an intelligent-asset transfer
// authorization message.
func TransferDigest(assetID uint64, from, to Address, oldHash, newHash Hash32) Hash32 {
	h := sha256.New()
	h.Write([]byte(transferDomain))
	var id [8]byte
	binary.BigEndian.PutUint64(id[:], assetID)
	h.Write(id[:])
	fromHash := sha256.Sum256([]byte(from))
	h.Write(fromHash[:])
	toHash := sha256.Sum256([]byte(to))
	h.Write(toHash[:])
	h.Write(oldHash[:])
	h.Write(newHash[:])
	var digest Hash32
	copy(digest[:], h.Sum(nil))
	return digest
}

// AddressFromPublicKey derives the ledger identity of a secp256k1 public
// key: the first 20 bytes of the sha256 of its compressed encoding, hex
// encoded with a 0x prefix.
func AddressFromPublicKey(pub *secp256k1.PublicKey) Address {
	sum := sha256.Sum256(pub.SerializeCompressed())
	return Address("0x" + hex.EncodeToString(sum[:20]))
}

// RecoverSigner recovers the signing identity of digest from a 65-byte
// compact signature. Pure: no ledger state is consulted or mutated, so
// recovery and replay protection stay independently testable.
func RecoverSigner(digest Hash32, signature []byte) (Address, error) {
	if len(signature) != CompactSignatureSize {
		return "", errf(ErrInvalidSignature, "signature is %d bytes, want %d", len(signature), CompactSignatureSize)
	}
	pub, _, err := secpecdsa.RecoverCompact(signature, digest[:])
	if err != nil {
		return "", errf(ErrInvalidSignature, "recover signer: %v", err)
	}
	return AddressFromPublicKey(pub), nil
}

// verifyAndConsume runs the full attestation protocol for digest under the
// writer lock: recover, check the required role, check the replay set, mark
// used. Returns the recovered signer.
func (l *Ledger) verifyAndConsume(digest Hash32, signature []byte, required Role) (Address, error) {
	signer, err := RecoverSigner(digest, signature)
	if err != nil {
		return "", err
	}
	if !l.hasCapability(signer, required) {
		return "", errf(ErrInvalidSignature, "signer %s lacks %s capability", signer, required)
	}
	if l.state.usedDigests[digest] {
		return "", errf(ErrReplayedSignature, "digest %x already consumed", digest[:8])
	}
	l.state.usedDigests[digest] = true
	return signer, nil
}

// DigestUsed reports whether a digest has been consumed.
func (l *Ledger) DigestUsed(digest Hash32) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.usedDigests[digest]
}
