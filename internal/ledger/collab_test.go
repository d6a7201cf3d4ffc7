// internal/ledger/collab_test.go
package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProposeCollaborationValidation(t *testing.T) {
	env := newTestEnv(t)
	env.register(alice, "alice")
	env.register(bob, "bob")
	deadline := env.now + 3600

	_, err := env.ledger.ProposeCollaboration(alice, []Address{alice}, []uint32{10000}, deadline)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.ledger.ProposeCollaboration(alice, []Address{alice, bob}, []uint32{10000}, deadline)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.ledger.ProposeCollaboration(alice, []Address{alice, bob}, []uint32{9000, 999}, deadline)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.ledger.ProposeCollaboration(alice, []Address{alice, bob}, []uint32{10000, 0}, deadline)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.ledger.ProposeCollaboration(alice, []Address{alice, dave}, []uint32{5000, 5000}, deadline)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = env.ledger.ProposeCollaboration(alice, []Address{alice, bob}, []uint32{5000, 5000}, env.now)
	require.ErrorIs(t, err, ErrInvalidInput)

	env.register(carol, "carol")
	_, err = env.ledger.ProposeCollaboration(carol, []Address{alice, bob}, []uint32{5000, 5000}, deadline)
	require.ErrorIs(t, err, ErrInvalidInput) // proposer not a participant

	id, err := env.ledger.ProposeCollaboration(alice, []Address{alice, bob}, []uint32{6000, 4000}, deadline)
	require.NoError(t, err)

	collab, err := env.ledger.GetCollaboration(id)
	require.NoError(t, err)
	require.Equal(t, CollabProposed, collab.Status)

	var sum uint64
	for _, s := range collab.Shares {
		sum += uint64(s)
	}
	require.Equal(t, uint64(10000), sum)
}

func TestCollaborationLifecycle(t *testing.T) {
	env := newTestEnv(t)
	env.register(alice, "alice")
	env.register(bob, "bob")
	deadline := env.now + 3600

	id, err := env.ledger.ProposeCollaboration(alice, []Address{alice, bob}, []uint32{6000, 4000}, deadline)
	require.NoError(t, err)

	require.ErrorIs(t, env.ledger.AcceptCollaboration(carol, id), ErrUnauthorized)
	require.ErrorIs(t, env.ledger.CompleteCollaboration(bob, id), ErrInvalidStateTransition)

	require.NoError(t, env.ledger.AcceptCollaboration(bob, id))
	collab, _ := env.ledger.GetCollaboration(id)
	require.Equal(t, CollabActive, collab.Status)

	require.ErrorIs(t, env.ledger.AcceptCollaboration(alice, id), ErrInvalidStateTransition)
	require.ErrorIs(t, env.ledger.CancelCollaboration(alice, id), ErrInvalidStateTransition)

	require.NoError(t, env.ledger.CompleteCollaboration(alice, id))
	collab, _ = env.ledger.GetCollaboration(id)
	require.Equal(t, CollabCompleted, collab.Status)
}

func TestCollaborationProposalExpires(t *testing.T) {
	env := newTestEnv(t)
	env.register(alice, "alice")
	env.register(bob, "bob")

	id, err := env.ledger.ProposeCollaboration(alice, []Address{alice, bob}, []uint32{5000, 5000}, env.now+100)
	require.NoError(t, err)

	env.advance(100) // now >= deadline
	require.ErrorIs(t, env.ledger.AcceptCollaboration(bob, id), ErrExpired)
}

func TestCancelCollaboration(t *testing.T) {
	env := newTestEnv(t)
	env.register(alice, "alice")
	env.register(bob, "bob")

	id, err := env.ledger.ProposeCollaboration(alice, []Address{alice, bob}, []uint32{5000, 5000}, env.now+3600)
	require.NoError(t, err)

	require.ErrorIs(t, env.ledger.CancelCollaboration(bob, id), ErrUnauthorized)
	require.NoError(t, env.ledger.CancelCollaboration(alice, id))
	collab, _ := env.ledger.GetCollaboration(id)
	require.Equal(t, CollabCancelled, collab.Status)

	require.ErrorIs(t, env.ledger.DistributeRevenue(carol, id, 100), ErrInvalidStateTransition)
}

func TestDistributeRevenueSplit(t *testing.T) {
	env := newTestEnv(t)
	env.register(alice, "alice")
	env.register(bob, "bob")
	env.register(carol, "carol")
	env.fund(carol, 1000)

	id, err := env.ledger.ProposeCollaboration(alice, []Address{alice, bob}, []uint32{6000, 4000}, env.now+3600)
	require.NoError(t, err)
	require.NoError(t, env.ledger.AcceptCollaboration(bob, id))

	// payment=1000, fee=25, distributable=975:
	// alice floor(975*6000/10000)=585, bob floor(975*4000/10000)=390.
	require.NoError(t, env.ledger.DistributeRevenue(carol, id, 1000))

	require.Equal(t, int64(585), env.ledger.BalanceOf(alice))
	require.Equal(t, int64(390), env.ledger.BalanceOf(bob))
	require.Equal(t, int64(25), env.ledger.BalanceOf(treasury))
	require.Zero(t, env.ledger.BalanceOf(carol))

	aliceRec, _ := env.ledger.GetCreator(alice)
	require.Equal(t, int64(585), aliceRec.TotalEarnings)

	collab, _ := env.ledger.GetCollaboration(id)
	require.Equal(t, int64(1000), collab.TotalRevenue)
}

func TestDistributeRevenueRemainderToTreasury(t *testing.T) {
	env := newTestEnv(t)
	env.register(alice, "alice")
	env.register(bob, "bob")
	env.register(carol, "carol")
	env.register(dave, "dave")
	env.fund(dave, 1000)

	// 3333+3333+3334 bps over distributable 97 leaves a rounding remainder.
	id, err := env.ledger.ProposeCollaboration(alice, []Address{alice, bob, carol}, []uint32{3333, 3333, 3334}, env.now+3600)
	require.NoError(t, err)
	require.NoError(t, env.ledger.AcceptCollaboration(bob, id))

	require.NoError(t, env.ledger.DistributeRevenue(dave, id, 100))
	// fee=2, distributable=98: shares 32/32/32, remainder 2 to treasury.
	require.Equal(t, int64(32), env.ledger.BalanceOf(alice))
	require.Equal(t, int64(32), env.ledger.BalanceOf(bob))
	require.Equal(t, int64(32), env.ledger.BalanceOf(carol))
	require.Equal(t, int64(4), env.ledger.BalanceOf(treasury))

	// Conservation: everything dave paid is accounted for.
	require.Zero(t, env.ledger.BalanceOf(dave))
}

func TestDistributeRevenueAtomicOnFailure(t *testing.T) {
	env := newTestEnv(t)
	env.register(alice, "alice")
	env.register(bob, "bob")
	env.register(carol, "carol")
	env.fund(carol, 500) // cannot cover a 1000 distribution

	id, err := env.ledger.ProposeCollaboration(alice, []Address{alice, bob}, []uint32{6000, 4000}, env.now+3600)
	require.NoError(t, err)
	require.NoError(t, env.ledger.AcceptCollaboration(bob, id))

	require.ErrorIs(t, env.ledger.DistributeRevenue(carol, id, 1000), ErrPaymentFailed)

	require.Equal(t, int64(500), env.ledger.BalanceOf(carol))
	require.Zero(t, env.ledger.BalanceOf(alice))
	require.Zero(t, env.ledger.BalanceOf(bob))
	collab, _ := env.ledger.GetCollaboration(id)
	require.Zero(t, collab.TotalRevenue)
}
