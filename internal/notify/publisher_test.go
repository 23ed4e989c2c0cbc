package notify

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amparo/internal/users"
	id "amparo/pkg/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedUsers(t *testing.T, store *users.InMemoryStore, accounts ...users.User) {
	t.Helper()
	for _, u := range accounts {
		require.NoError(t, store.Save(context.Background(), u))
	}
}

func TestPublishToAdminsResolvesAudienceAtDispatch(t *testing.T) {
	ctx := context.Background()
	directory := users.NewInMemoryStore()
	sink := NewInMemorySink()
	pub := NewPublisher(directory, sink, discardLogger(), nil)

	adminA := users.User{ID: id.NewUserID(), Role: id.RoleAdmin, Active: true, CreatedAt: time.Now()}
	adminB := users.User{ID: id.NewUserID(), Role: id.RoleAdmin, Active: true, CreatedAt: time.Now()}
	sponsor := users.User{ID: id.NewUserID(), Role: id.RoleSponsor, Active: true, CreatedAt: time.Now()}
	seedUsers(t, directory, adminA, sponsor)

	pub.Publish(ctx, ToAdmins("New sponsorship", "A child was selected", SeverityInfo, "s-1"))

	events := sink.Events()
	require.Len(t, events, 1)
	assert.ElementsMatch(t, []id.UserID{adminA.ID}, events[0].TargetUserIDs)

	// An admin added later is picked up by the next dispatch, no cached list.
	seedUsers(t, directory, adminB)
	pub.Publish(ctx, ToAdmins("New message", "A sponsor wrote", SeverityInfo, "s-1"))

	events = sink.Events()
	require.Len(t, events, 2)
	assert.ElementsMatch(t, []id.UserID{adminA.ID, adminB.ID}, events[1].TargetUserIDs)
}

func TestPublishToUser(t *testing.T) {
	sink := NewInMemorySink()
	pub := NewPublisher(users.NewInMemoryStore(), sink, discardLogger(), nil)
	target := id.NewUserID()

	pub.Publish(context.Background(), ToUser(target, "New log entry", "Your godchild has news", SeverityInfo, "s-2"))

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, []id.UserID{target}, events[0].TargetUserIDs)
	assert.False(t, events[0].CreatedAt.IsZero())
}

func TestPublishDropsEventWithoutRecipients(t *testing.T) {
	sink := NewInMemorySink()
	pub := NewPublisher(users.NewInMemoryStore(), sink, discardLogger(), nil)

	// No admins registered yet.
	pub.Publish(context.Background(), ToAdmins("ping", "nobody home", SeverityInfo, ""))

	assert.Empty(t, sink.Events())
}
