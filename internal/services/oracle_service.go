// internal/services/oracle_service.go
package services

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/creolabs/creator-ledger/internal/config"
	"github.com/creolabs/creator-ledger/internal/ledger"
)

// OracleService is a development-only in-process attestation signer. It
// stands in for the external oracle fleet so the proof-based flows can be
// exercised end to end without one. Config validation rejects an embedded
// key in production.
type OracleService struct {
	key *secp256k1.PrivateKey
}

var ErrOracleDisabled = errors.New("oracle signer not configured")

func NewOracleService(cfg *config.Config) (*OracleService, error) {
	if cfg.Oracle.PrivateKeyHex == "" {
		return &OracleService{}, nil
	}

	raw, err := hex.DecodeString(cfg.Oracle.PrivateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid oracle private key: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("oracle private key must be 32 bytes, got %d", len(raw))
	}

	return &OracleService{key: secp256k1.PrivKeyFromBytes(raw)}, nil
}

func (s *OracleService) Enabled() bool {
	return s.key != nil
}

// Address is the ledger identity of the signing key. It must be granted the
// oracle role before its attestations verify.
func (s *OracleService) Address() (ledger.Address, error) {
	if s.key == nil {
		return "", ErrOracleDisabled
	}
	return ledger.AddressFromPublicKey(s.key.PubKey()), nil
}

// SignAIReceipt attests that the AI processing behind receiptRef ran for the
// given content.
func (s *OracleService) SignAIReceipt(contentID uint64, receiptRef string) ([]byte, error) {
	if s.key == nil {
		return nil, ErrOracleDisabled
	}
	digest := ledger.AIReceiptDigest(contentID, receiptRef)
	return secpecdsa.SignCompact(s.key, digest[:], true), nil
}

// SignTransfer authorizes one intelligent-asset handover over the exact
// (asset, from, to, oldHash, newHash) tuple.
func (s *OracleService) SignTransfer(assetID uint64, from, to ledger.Address, oldHash, newHash ledger.Hash32) ([]byte, error) {
	if s.key == nil {
		return nil, ErrOracleDisabled
	}
	digest := ledger.TransferDigest(assetID, from, to, oldHash, newHash)
	return secpecdsa.SignCompact(s.key, digest[:], true), nil
}
