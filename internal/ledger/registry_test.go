// internal/ledger/registry_test.go
package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterOncePerIdentity(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.ledger.Register(alice, "alice", "bio", "ref", CreatorTypeHybrid))
	err := env.ledger.Register(alice, "alice2", "", "", CreatorTypeTraditional)
	require.ErrorIs(t, err, ErrAlreadyRegistered)

	err = env.ledger.Register(bob, "", "", "", CreatorTypeTraditional)
	require.ErrorIs(t, err, ErrInvalidInput)

	err = env.ledger.Register(bob, "bob", "", "", CreatorType("alien"))
	require.ErrorIs(t, err, ErrInvalidInput)

	creator, err := env.ledger.GetCreator(alice)
	require.NoError(t, err)
	require.True(t, creator.IsActive)
	require.Zero(t, creator.TotalEarnings)
	require.Zero(t, creator.ContentCount)
}

func TestFollowUnfollow(t *testing.T) {
	env := newTestEnv(t)
	env.register(alice, "alice")
	env.register(bob, "bob")
	env.register(carol, "carol")

	require.ErrorIs(t, env.ledger.Follow(alice, alice), ErrSelfReference)
	require.ErrorIs(t, env.ledger.Follow(alice, dave), ErrNotFound)

	require.NoError(t, env.ledger.Follow(alice, bob))
	require.ErrorIs(t, env.ledger.Follow(alice, bob), ErrAlreadyFollowing)
	require.NoError(t, env.ledger.Follow(alice, carol))

	bobRec, _ := env.ledger.GetCreator(bob)
	require.Equal(t, int64(1), bobRec.FollowerCount)

	require.ErrorIs(t, env.ledger.Unfollow(carol, bob), ErrNotFollowing)

	// Swap-remove: removing the first entry keeps the set correct even
	// though order is not preserved.
	require.NoError(t, env.ledger.Unfollow(alice, bob))
	require.ElementsMatch(t, []Address{carol}, env.ledger.Following(alice))
	bobRec, _ = env.ledger.GetCreator(bob)
	require.Zero(t, bobRec.FollowerCount)

	require.NoError(t, env.ledger.Follow(alice, bob))
	require.ElementsMatch(t, []Address{bob, carol}, env.ledger.Following(alice))
}

func TestVerifyCreatorIdempotent(t *testing.T) {
	env := newTestEnv(t)
	env.register(alice, "alice")

	err := env.ledger.VerifyCreator(bob, alice)
	require.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, env.ledger.GrantRole(admin, bob, RoleModerator))
	require.NoError(t, env.ledger.VerifyCreator(bob, alice))

	before, _ := env.ledger.GetCreator(alice)
	require.NoError(t, env.ledger.VerifyCreator(bob, alice))
	after, _ := env.ledger.GetCreator(alice)
	require.Equal(t, before, after)
	require.True(t, after.IsVerified)
}

func TestRoleGrantRevoke(t *testing.T) {
	env := newTestEnv(t)

	require.ErrorIs(t, env.ledger.GrantRole(alice, bob, RoleMinter), ErrUnauthorized)
	require.ErrorIs(t, env.ledger.GrantRole(admin, bob, Role("emperor")), ErrInvalidInput)

	require.NoError(t, env.ledger.GrantRole(admin, bob, RoleMinter))
	require.True(t, env.ledger.HasCapability(bob, RoleMinter))

	require.NoError(t, env.ledger.RevokeRole(admin, bob, RoleMinter))
	require.False(t, env.ledger.HasCapability(bob, RoleMinter))
}
