// internal/ledger/errors.go
package ledger

import (
	"errors"
	"fmt"
)

// Sentinel errors forming the closed failure taxonomy of the ledger. Every
// operation that fails returns one of these (usually wrapped with context),
// so callers can match with errors.Is and map to a stable API code.
var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrNotFound               = errors.New("not found")
	ErrInactiveEntity         = errors.New("entity inactive")
	ErrAlreadyExists          = errors.New("already exists")
	ErrAlreadyRegistered      = errors.New("already registered")
	ErrAlreadyMinted          = errors.New("already minted")
	ErrAlreadyFollowing       = errors.New("already following")
	ErrNotFollowing           = errors.New("not following")
	ErrSelfReference          = errors.New("self reference")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrInsufficientPayment    = errors.New("insufficient payment")
	ErrInsufficientBid        = errors.New("insufficient bid")
	ErrPaymentFailed          = errors.New("payment failed")
	ErrReplayedSignature      = errors.New("replayed signature")
	ErrInvalidSignature       = errors.New("invalid signature")
	ErrExpired                = errors.New("expired")
	ErrPaused                 = errors.New("platform paused")
	ErrArithmeticOverflow     = errors.New("arithmetic overflow")
)

// ErrorCode maps a ledger error to its stable machine code, or "INTERNAL"
// for errors that did not originate in the taxonomy.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "INVALID_INPUT"
	case errors.Is(err, ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrInactiveEntity):
		return "INACTIVE_ENTITY"
	case errors.Is(err, ErrAlreadyRegistered):
		return "ALREADY_REGISTERED"
	case errors.Is(err, ErrAlreadyMinted):
		return "ALREADY_MINTED"
	case errors.Is(err, ErrAlreadyFollowing):
		return "ALREADY_FOLLOWING"
	case errors.Is(err, ErrNotFollowing):
		return "NOT_FOLLOWING"
	case errors.Is(err, ErrAlreadyExists):
		return "ALREADY_EXISTS"
	case errors.Is(err, ErrSelfReference):
		return "SELF_REFERENCE"
	case errors.Is(err, ErrInvalidStateTransition):
		return "INVALID_STATE_TRANSITION"
	case errors.Is(err, ErrInsufficientPayment):
		return "INSUFFICIENT_PAYMENT"
	case errors.Is(err, ErrInsufficientBid):
		return "INSUFFICIENT_BID"
	case errors.Is(err, ErrPaymentFailed):
		return "PAYMENT_FAILED"
	case errors.Is(err, ErrReplayedSignature):
		return "REPLAYED_SIGNATURE"
	case errors.Is(err, ErrInvalidSignature):
		return "INVALID_SIGNATURE"
	case errors.Is(err, ErrExpired):
		return "EXPIRED"
	case errors.Is(err, ErrPaused):
		return "PAUSED"
	case errors.Is(err, ErrArithmeticOverflow):
		return "ARITHMETIC_OVERFLOW"
	default:
		return "INTERNAL"
	}
}

func errf(sentinel error, format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, sentinel)...)
}
