package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "amparo/pkg/domain"
	"amparo/pkg/testutil"
)

func newMessage(sid id.SponsorshipID, role id.Role, body string, at time.Time) Message {
	return Message{
		ID:            id.NewMessageID(),
		SponsorshipID: sid,
		SenderID:      id.NewUserID(),
		SenderRole:    role,
		Body:          body,
		CreatedAt:     at,
	}
}

func TestInMemoryStoreReadTracking(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	sid := id.NewSponsorshipID()
	base := time.Now()

	testutil.Given(t, "a thread with messages from both roles", func(t *testing.T) {
		require.NoError(t, store.Append(ctx, newMessage(sid, id.RoleSponsor, "hello", base)))
		require.NoError(t, store.Append(ctx, newMessage(sid, id.RoleAdmin, "hi back", base.Add(time.Minute))))
		require.NoError(t, store.Append(ctx, newMessage(sid, id.RoleSponsor, "how is Ana?", base.Add(2*time.Minute))))
	})

	testutil.When(t, "the admin marks sponsor messages read", func(t *testing.T) {
		readAt := base.Add(3 * time.Minute)
		flipped, err := store.MarkRead(ctx, sid, id.RoleSponsor, readAt)
		require.NoError(t, err)
		assert.Equal(t, 2, flipped)
	})

	testutil.Then(t, "only sponsor messages carry the read stamp", func(t *testing.T) {
		msgs, err := store.ListBySponsorship(ctx, sid, OrderAsc)
		require.NoError(t, err)
		require.Len(t, msgs, 3)
		for _, m := range msgs {
			if m.SenderRole == id.RoleSponsor {
				assert.True(t, m.Read)
				assert.NotNil(t, m.ReadAt)
			} else {
				assert.False(t, m.Read)
				assert.Nil(t, m.ReadAt)
			}
		}
	})

	testutil.Then(t, "a repeat mark flips nothing", func(t *testing.T) {
		flipped, err := store.MarkRead(ctx, sid, id.RoleSponsor, base.Add(4*time.Minute))
		require.NoError(t, err)
		assert.Zero(t, flipped)
	})
}

func TestInMemoryStoreCountUnread(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	first := id.NewSponsorshipID()
	second := id.NewSponsorshipID()
	base := time.Now()

	require.NoError(t, store.Append(ctx, newMessage(first, id.RoleSponsor, "a", base)))
	require.NoError(t, store.Append(ctx, newMessage(second, id.RoleSponsor, "b", base)))
	require.NoError(t, store.Append(ctx, newMessage(second, id.RoleAdmin, "c", base)))

	t.Run("global count spans sponsorships", func(t *testing.T) {
		count, err := store.CountUnread(ctx, nil, id.RoleSponsor)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("scoped count filters by sponsorship", func(t *testing.T) {
		count, err := store.CountUnread(ctx, &second, id.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("ordering honors the requested direction", func(t *testing.T) {
		require.NoError(t, store.Append(ctx, newMessage(first, id.RoleAdmin, "newest", base.Add(time.Hour))))

		msgs, err := store.ListBySponsorship(ctx, first, OrderDesc)
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, "newest", msgs[0].Body)
	})
}
