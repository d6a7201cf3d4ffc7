// internal/utils/response_test.go
package utils

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/creolabs/creator-ledger/internal/ledger"
)

// Every ledger sentinel must map to a deliberate HTTP status; a code falling
// through to 500 means the two taxonomies drifted apart.
func TestLedgerErrorStatusCoversTaxonomy(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{ledger.ErrInvalidInput, http.StatusBadRequest},
		{ledger.ErrSelfReference, http.StatusBadRequest},
		{ledger.ErrArithmeticOverflow, http.StatusBadRequest},
		{ledger.ErrUnauthorized, http.StatusUnauthorized},
		{ledger.ErrInvalidSignature, http.StatusUnauthorized},
		{ledger.ErrNotFound, http.StatusNotFound},
		{ledger.ErrAlreadyExists, http.StatusConflict},
		{ledger.ErrAlreadyRegistered, http.StatusConflict},
		{ledger.ErrAlreadyMinted, http.StatusConflict},
		{ledger.ErrAlreadyFollowing, http.StatusConflict},
		{ledger.ErrNotFollowing, http.StatusConflict},
		{ledger.ErrReplayedSignature, http.StatusConflict},
		{ledger.ErrInsufficientPayment, http.StatusPaymentRequired},
		{ledger.ErrInsufficientBid, http.StatusPaymentRequired},
		{ledger.ErrPaymentFailed, http.StatusPaymentRequired},
		{ledger.ErrInactiveEntity, http.StatusUnprocessableEntity},
		{ledger.ErrInvalidStateTransition, http.StatusUnprocessableEntity},
		{ledger.ErrExpired, http.StatusUnprocessableEntity},
		{ledger.ErrPaused, http.StatusUnprocessableEntity},
	}

	for _, tc := range cases {
		code := ledger.ErrorCode(tc.err)
		assert.Equal(t, tc.status, ledgerErrorStatus(code), "code %s", code)
	}
}

// Errors from outside the taxonomy stay 500.
func TestLedgerErrorStatusUnknownCode(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, ledgerErrorStatus("INTERNAL"))
}
