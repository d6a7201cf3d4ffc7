// internal/ledger/math.go
package ledger

import "math"

// bpsDenominator is the basis-point scale shared by fees, royalties and
// revenue shares.
const bpsDenominator = 10000

// checkedAdd returns a+b, failing instead of wrapping around.
func checkedAdd(a, b int64) (int64, error) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, errf(ErrArithmeticOverflow, "add %d+%d", a, b)
	}
	if b < 0 && a < math.MinInt64-b {
		return 0, errf(ErrArithmeticOverflow, "add %d+%d", a, b)
	}
	return a + b, nil
}

// checkedMul returns a*b for non-negative operands, failing on overflow.
func checkedMul(a, b int64) (int64, error) {
	if a < 0 || b < 0 {
		return 0, errf(ErrInvalidInput, "negative amount in multiplication")
	}
	if a != 0 && b > math.MaxInt64/a {
		return 0, errf(ErrArithmeticOverflow, "mul %d*%d", a, b)
	}
	return a * b, nil
}

// bpsShare returns floor(amount*bps/10000). bps must not exceed the
// denominator so the share can never exceed the amount.
func bpsShare(amount int64, bps uint32) (int64, error) {
	if amount < 0 {
		return 0, errf(ErrInvalidInput, "negative amount %d", amount)
	}
	if bps > bpsDenominator {
		return 0, errf(ErrInvalidInput, "bps %d exceeds denominator", bps)
	}
	product, err := checkedMul(amount, int64(bps))
	if err != nil {
		return 0, err
	}
	return product / bpsDenominator, nil
}
