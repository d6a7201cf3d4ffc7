// internal/handlers/common.go
package handlers

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/creolabs/creator-ledger/internal/ledger"
	"github.com/creolabs/creator-ledger/internal/utils"
)

func ledgerAddress(s string) ledger.Address {
	return ledger.Address(s)
}

// requireAddress pulls the caller's ledger address from the auth context and
// writes the 401 itself when missing.
func requireAddress(c *gin.Context) (ledger.Address, bool) {
	addr, ok := utils.GetLedgerAddressFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
	}
	return addr, ok
}

func parseIDParam(c *gin.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

func decodeSignature(s string) ([]byte, error) {
	sig, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("signature must be hex encoded: %w", err)
	}
	if len(sig) != ledger.CompactSignatureSize {
		return nil, fmt.Errorf("signature must be %d bytes, got %d", ledger.CompactSignatureSize, len(sig))
	}
	return sig, nil
}

func decodeHash(s string) (ledger.Hash32, error) {
	raw, err := utils.ParseHash32(s)
	if err != nil {
		return ledger.Hash32{}, err
	}
	return ledger.Hash32(raw), nil
}
