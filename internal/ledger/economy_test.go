// internal/ledger/economy_test.go
package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func publishPriced(t *testing.T, env *testEnv, creator Address, price int64) uint64 {
	t.Helper()
	id, err := env.ledger.Publish(creator, "piece", "bafyref", ContentTypeImage, "digital", price, price > 0, []string{"art"})
	require.NoError(t, err)
	return id
}

func TestPurchaseFeeSplit(t *testing.T) {
	env := newTestEnv(t)
	env.register(alice, "alice")
	env.register(bob, "bob")
	env.fund(bob, 100)

	cid := publishPriced(t, env, alice, 100)

	// fee = floor(100*250/10000) = 2, net = 98, refund (undebited) = 0.
	require.NoError(t, env.ledger.Purchase(bob, cid, 100))

	require.Equal(t, int64(98), env.ledger.BalanceOf(alice))
	require.Equal(t, int64(2), env.ledger.BalanceOf(treasury))
	require.Zero(t, env.ledger.BalanceOf(bob))

	creator, _ := env.ledger.GetCreator(alice)
	require.Equal(t, int64(98), creator.TotalEarnings)
}

func TestPurchaseGuards(t *testing.T) {
	env := newTestEnv(t)
	env.register(alice, "alice")
	env.register(bob, "bob")
	env.fund(bob, 500)

	cid := publishPriced(t, env, alice, 100)

	require.ErrorIs(t, env.ledger.Purchase(bob, cid, 99), ErrInsufficientPayment)
	require.ErrorIs(t, env.ledger.Purchase(alice, cid, 100), ErrSelfReference)
	require.ErrorIs(t, env.ledger.Purchase(bob, 999, 100), ErrNotFound)

	free, err := env.ledger.Publish(alice, "free", "ref2", ContentTypeText, "", 0, false, nil)
	require.NoError(t, err)
	require.ErrorIs(t, env.ledger.Purchase(bob, free, 100), ErrInvalidStateTransition)

	// Excess payment above the price is never debited.
	require.NoError(t, env.ledger.Purchase(bob, cid, 250))
	require.Equal(t, int64(400), env.ledger.BalanceOf(bob))
}

func TestPurchaseAtomicOnPaymentFailure(t *testing.T) {
	env := newTestEnv(t)
	env.register(alice, "alice")
	env.register(bob, "bob")
	env.fund(bob, 99) // claims payment=100 but cannot cover it

	cid := publishPriced(t, env, alice, 100)

	err := env.ledger.Purchase(bob, cid, 100)
	require.ErrorIs(t, err, ErrPaymentFailed)

	// No partial effect on any account or counter.
	require.Equal(t, int64(99), env.ledger.BalanceOf(bob))
	require.Zero(t, env.ledger.BalanceOf(alice))
	require.Zero(t, env.ledger.BalanceOf(treasury))
	creator, _ := env.ledger.GetCreator(alice)
	require.Zero(t, creator.TotalEarnings)
}

type feeLegFailBank struct {
	inner Bank
	deny  Address
}

func (b *feeLegFailBank) Transfer(from, to Address, amount int64) error {
	if to == b.deny {
		return errf(ErrPaymentFailed, "transfer to %s rejected", to)
	}
	return b.inner.Transfer(from, to, amount)
}
func (b *feeLegFailBank) BalanceOf(a Address) int64          { return b.inner.BalanceOf(a) }
func (b *feeLegFailBank) Credit(a Address, v int64) error    { return b.inner.Credit(a, v) }
func (b *feeLegFailBank) Debit(a Address, v int64) error     { return b.inner.Debit(a, v) }

func TestPurchaseEarningsOverflowFailsBeforeTransfers(t *testing.T) {
	env := newTestEnv(t)
	env.register(alice, "alice")
	env.register(bob, "bob")
	require.NoError(t, env.ledger.SetFeeBps(admin, 0))

	huge := int64(1)<<62 + 1
	cid := publishPriced(t, env, alice, huge)

	// First sale pushes the lifetime earnings counter past half the int64
	// range; the creator cashes out so account balances stay clear.
	env.fund(bob, huge)
	require.NoError(t, env.ledger.Purchase(bob, cid, huge))
	require.NoError(t, env.ledger.Withdraw(alice, huge))

	// The second sale would overflow the counter. It must fail with no
	// balance moved, not after the payment legs have committed.
	env.fund(bob, huge)
	err := env.ledger.Purchase(bob, cid, huge)
	require.ErrorIs(t, err, ErrArithmeticOverflow)
	require.Equal(t, huge, env.ledger.BalanceOf(bob))
	require.Zero(t, env.ledger.BalanceOf(alice))

	creator, _ := env.ledger.GetCreator(alice)
	require.Equal(t, huge, creator.TotalEarnings)
}

func TestTipFeeLegFailureReversesCreatorLeg(t *testing.T) {
	env := newTestEnv(t)
	env.register(alice, "alice")
	env.register(bob, "bob")
	env.fund(bob, 1000)
	cid := publishPriced(t, env, alice, 0)

	env.ledger.SetBank(&feeLegFailBank{inner: &creditBank{s: env.ledger.state}, deny: treasury})

	err := env.ledger.Tip(bob, cid, 400)
	require.ErrorIs(t, err, ErrPaymentFailed)

	require.Equal(t, int64(1000), env.ledger.BalanceOf(bob))
	require.Zero(t, env.ledger.BalanceOf(alice))
	content, _ := env.ledger.GetContent(cid)
	require.Zero(t, content.Tips)
}

func TestTip(t *testing.T) {
	env := newTestEnv(t)
	env.register(alice, "alice")
	env.register(bob, "bob")
	env.fund(bob, 1000)
	cid := publishPriced(t, env, alice, 0)

	require.ErrorIs(t, env.ledger.Tip(bob, cid, 0), ErrInvalidInput)
	require.ErrorIs(t, env.ledger.Tip(alice, cid, 10), ErrSelfReference)

	// fee = floor(400*250/10000) = 10, net = 390; net+fee == amount.
	require.NoError(t, env.ledger.Tip(bob, cid, 400))
	require.Equal(t, int64(390), env.ledger.BalanceOf(alice))
	require.Equal(t, int64(10), env.ledger.BalanceOf(treasury))

	content, _ := env.ledger.GetContent(cid)
	require.Equal(t, int64(1), content.Tips)
}

func TestSubscriptionStacking(t *testing.T) {
	env := newTestEnv(t)
	env.register(alice, "alice")
	env.register(bob, "bob")
	env.fund(bob, 10_000)

	require.NoError(t, env.ledger.CreateSubscription(alice, 100))
	require.ErrorIs(t, env.ledger.CreateSubscription(alice, 50), ErrAlreadyExists)

	require.ErrorIs(t, env.ledger.Subscribe(bob, alice, 0, 100), ErrInvalidInput)
	require.ErrorIs(t, env.ledger.Subscribe(bob, alice, 13, 10_000), ErrInvalidInput)
	require.ErrorIs(t, env.ledger.Subscribe(bob, alice, 2, 199), ErrInsufficientPayment)
	require.ErrorIs(t, env.ledger.Subscribe(alice, alice, 1, 100), ErrSelfReference)

	// First subscription: expiry = now + 1 month, subscriber count 1.
	require.NoError(t, env.ledger.Subscribe(bob, alice, 1, 100))
	firstExpiry := env.ledger.SubscriptionExpiry(bob, alice)
	require.Equal(t, env.now+MonthSeconds, firstExpiry)
	sub, _ := env.ledger.GetSubscription(alice)
	require.Equal(t, int64(1), sub.SubscriberCount)

	// Renewal with 10 days still remaining stacks on the old expiry, not on
	// now, and does not bump the subscriber count.
	env.advance(20 * 24 * 60 * 60)
	require.NoError(t, env.ledger.Subscribe(bob, alice, 3, 300))
	require.Equal(t, firstExpiry+3*MonthSeconds, env.ledger.SubscriptionExpiry(bob, alice))
	sub, _ = env.ledger.GetSubscription(alice)
	require.Equal(t, int64(1), sub.SubscriberCount)

	// A lapsed subscriber re-subscribing counts again and stacks on now.
	env.advance(200 * 24 * 60 * 60)
	require.NoError(t, env.ledger.Subscribe(bob, alice, 1, 100))
	require.Equal(t, env.now+MonthSeconds, env.ledger.SubscriptionExpiry(bob, alice))
	sub, _ = env.ledger.GetSubscription(alice)
	require.Equal(t, int64(2), sub.SubscriberCount)

	// Exact fee conservation across all three payments: 500 paid total,
	// fee = floor(100*250/10000)+floor(300*250/10000)+floor(100*250/10000) = 2+7+2.
	require.Equal(t, int64(11), env.ledger.BalanceOf(treasury))
	require.Equal(t, int64(489), env.ledger.BalanceOf(alice))
}
