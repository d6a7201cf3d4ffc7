// internal/ledger/catalog_test.go
package ledger

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublishValidation(t *testing.T) {
	env := newTestEnv(t)
	env.register(alice, "alice")

	_, err := env.ledger.Publish(dave, "t", "ref", ContentTypeImage, "", 0, false, nil)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = env.ledger.Publish(alice, "", "ref", ContentTypeImage, "", 0, false, nil)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.ledger.Publish(alice, "t", "", ContentTypeImage, "", 0, false, nil)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.ledger.Publish(alice, "t", "ref", ContentType("hologram"), "", 0, false, nil)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.ledger.Publish(alice, "t", "ref", ContentTypeImage, "", 0, true, nil)
	require.ErrorIs(t, err, ErrInvalidInput) // for sale needs positive price

	tags := make([]string, MaxTags+1)
	for i := range tags {
		tags[i] = fmt.Sprintf("tag%d", i)
	}
	_, err = env.ledger.Publish(alice, "t", "ref", ContentTypeImage, "", 0, false, tags)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestPublishAssignsMonotonicIDsAndIndexes(t *testing.T) {
	env := newTestEnv(t)
	env.register(alice, "alice")
	env.register(bob, "bob")

	id1, err := env.ledger.Publish(alice, "one", "ref1", ContentTypeImage, "digital", 0, false, []string{"abstract"})
	require.NoError(t, err)
	id2, err := env.ledger.Publish(bob, "two", "ref2", ContentTypeImage, "photo", 0, false, []string{"abstract", "mono"})
	require.NoError(t, err)
	require.Greater(t, id2, id1)

	require.Equal(t, []uint64{id1, id2}, env.ledger.ContentIDsByType(ContentTypeImage))
	require.Equal(t, []uint64{id1}, env.ledger.ContentIDsByCategory("digital"))
	require.Equal(t, []uint64{id1, id2}, env.ledger.ContentIDsByTag("abstract"))
	require.Equal(t, []uint64{id2}, env.ledger.ContentIDsByOwner(bob))

	aliceRec, _ := env.ledger.GetCreator(alice)
	require.Equal(t, int64(1), aliceRec.ContentCount)
}

func TestRecordInteraction(t *testing.T) {
	env := newTestEnv(t)
	env.register(alice, "alice")
	cid, err := env.ledger.Publish(alice, "one", "ref", ContentTypeText, "", 0, false, nil)
	require.NoError(t, err)

	require.NoError(t, env.ledger.RecordInteraction(cid, InteractionView))
	require.NoError(t, env.ledger.RecordInteraction(cid, InteractionView))
	require.NoError(t, env.ledger.RecordInteraction(cid, InteractionLike))
	require.ErrorIs(t, env.ledger.RecordInteraction(cid, InteractionKind("share")), ErrInvalidInput)
	require.ErrorIs(t, env.ledger.RecordInteraction(999, InteractionView), ErrNotFound)

	content, _ := env.ledger.GetContent(cid)
	require.Equal(t, int64(2), content.Views)
	require.Equal(t, int64(1), content.Likes)
}

func TestSetForSale(t *testing.T) {
	env := newTestEnv(t)
	env.register(alice, "alice")
	cid, err := env.ledger.Publish(alice, "one", "ref", ContentTypeText, "", 0, false, nil)
	require.NoError(t, err)

	require.ErrorIs(t, env.ledger.SetForSale(bob, cid, true, 100), ErrUnauthorized)
	require.ErrorIs(t, env.ledger.SetForSale(alice, cid, true, 0), ErrInvalidInput)

	require.NoError(t, env.ledger.SetForSale(alice, cid, true, 100))
	content, _ := env.ledger.GetContent(cid)
	require.True(t, content.ForSale)
	require.Equal(t, int64(100), content.Price)
}
