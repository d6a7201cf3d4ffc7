// internal/ledger/ledger_test.go
package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	admin    = Address("0xadmin")
	treasury = Address("0xtreasury")
	alice    = Address("0xalice")
	bob      = Address("0xbob")
	carol    = Address("0xcarol")
	dave     = Address("0xdave")
)

type testEnv struct {
	t      *testing.T
	now    int64
	ledger *Ledger
	events []Event
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{t: t, now: 1_000_000}
	l, err := New(Config{
		Admin:     admin,
		Treasury:  treasury,
		FeeBps:    250,
		Clock:     ClockFunc(func() int64 { return env.now }),
		EventSink: func(ev Event) { env.events = append(env.events, ev) },
	})
	require.NoError(t, err)
	env.ledger = l
	return env
}

func (e *testEnv) register(addr Address, username string) {
	e.t.Helper()
	require.NoError(e.t, e.ledger.Register(addr, username, "", "", CreatorTypeTraditional))
}

func (e *testEnv) fund(addr Address, amount int64) {
	e.t.Helper()
	require.NoError(e.t, e.ledger.Deposit(addr, amount))
}

func (e *testEnv) advance(seconds int64) { e.now += seconds }

func TestNewValidation(t *testing.T) {
	clock := ClockFunc(func() int64 { return 0 })

	_, err := New(Config{Treasury: treasury, FeeBps: 100, Clock: clock})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = New(Config{Admin: admin, Treasury: treasury, FeeBps: MaxFeeBps + 1, Clock: clock})
	require.ErrorIs(t, err, ErrInvalidInput)

	l, err := New(Config{Admin: admin, Treasury: treasury, FeeBps: 250, Clock: clock})
	require.NoError(t, err)
	require.True(t, l.HasCapability(admin, RoleAdmin))
}

func TestSetFeeBpsBounded(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.ledger.SetFeeBps(admin, MaxFeeBps))
	require.Equal(t, MaxFeeBps, env.ledger.FeeBps())

	err := env.ledger.SetFeeBps(admin, MaxFeeBps+1)
	require.ErrorIs(t, err, ErrInvalidInput)

	err = env.ledger.SetFeeBps(alice, 100)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestPauseBlocksMutations(t *testing.T) {
	env := newTestEnv(t)
	env.register(alice, "alice")

	require.NoError(t, env.ledger.Pause(admin))
	require.True(t, env.ledger.Paused())

	err := env.ledger.Register(bob, "bob", "", "", CreatorTypeTraditional)
	require.ErrorIs(t, err, ErrPaused)

	// Admin operations stay available while paused.
	require.NoError(t, env.ledger.GrantRole(admin, bob, RoleModerator))

	require.NoError(t, env.ledger.Unpause(admin))
	require.NoError(t, env.ledger.Register(bob, "bob", "", "", CreatorTypeTraditional))
}

func TestEmergencyWithdrawDrainsEscrow(t *testing.T) {
	env := newTestEnv(t)
	env.register(alice, "alice")
	env.register(bob, "bob")
	env.fund(bob, 100)

	cid, err := env.ledger.Publish(alice, "art", "ref", ContentTypeImage, "digital", 0, false, nil)
	require.NoError(t, err)
	require.NoError(t, env.ledger.GrantRole(admin, admin, RoleMinter))
	assetID, err := env.ledger.MintContentAsset(admin, cid, 0, true)
	require.NoError(t, err)
	require.NoError(t, env.ledger.List(alice, assetID, 50, 0, true, 5))
	require.NoError(t, env.ledger.PlaceBid(bob, assetID, 60))

	amount, err := env.ledger.EmergencyWithdraw(admin, treasury)
	require.NoError(t, err)
	require.Equal(t, int64(60), amount)
	require.Equal(t, int64(60), env.ledger.BalanceOf(treasury))

	_, err = env.ledger.EmergencyWithdraw(alice, treasury)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestEventOrdering(t *testing.T) {
	env := newTestEnv(t)
	env.register(alice, "alice")
	env.register(bob, "bob")

	var last uint64
	for _, ev := range env.events {
		require.Greater(t, ev.Seq, last)
		last = ev.Seq
	}
	require.Equal(t, "creator.registered", env.events[0].Kind)
}

func TestCheckedArithmetic(t *testing.T) {
	_, err := checkedAdd(int64(1)<<62, int64(1)<<62)
	require.ErrorIs(t, err, ErrArithmeticOverflow)

	_, err = checkedMul(int64(1)<<40, int64(1)<<40)
	require.ErrorIs(t, err, ErrArithmeticOverflow)

	share, err := bpsShare(100, 250)
	require.NoError(t, err)
	require.Equal(t, int64(2), share)

	_, err = bpsShare(100, bpsDenominator+1)
	require.ErrorIs(t, err, ErrInvalidInput)
}
