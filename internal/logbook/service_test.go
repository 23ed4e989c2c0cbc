package logbook

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amparo/internal/notify"
	"amparo/internal/sponsorship"
	id "amparo/pkg/domain"
	dErrors "amparo/pkg/domain-errors"
	"amparo/pkg/platform/sentinel"
	"amparo/pkg/requestcontext"
)

type stubLedger struct {
	sponsorships map[id.SponsorshipID]sponsorship.Sponsorship
}

func (l *stubLedger) FindByID(_ context.Context, sid id.SponsorshipID) (sponsorship.Sponsorship, error) {
	if sp, ok := l.sponsorships[sid]; ok {
		return sp, nil
	}
	return sponsorship.Sponsorship{}, sentinel.ErrNotFound
}

type stubNotifier struct {
	events []notify.Event
}

func (n *stubNotifier) Publish(_ context.Context, event notify.Event) {
	n.events = append(n.events, event)
}

type logEnv struct {
	svc      *Service
	notifier *stubNotifier
	sponsor  id.UserID
	admin    id.UserID
	sid      id.SponsorshipID
}

func newLogEnv(t *testing.T) *logEnv {
	t.Helper()
	env := &logEnv{
		notifier: &stubNotifier{},
		sponsor:  id.NewUserID(),
		admin:    id.NewUserID(),
	}
	ledger := &stubLedger{sponsorships: make(map[id.SponsorshipID]sponsorship.Sponsorship)}
	sp := sponsorship.New(id.NewSponsorshipID(), env.sponsor, id.NewChildID(), time.Now())
	env.sid = sp.ID
	ledger.sponsorships[sp.ID] = sp

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env.svc = NewService(NewInMemoryStore(), ledger, env.notifier, logger)
	return env
}

func TestAdd(t *testing.T) {
	ctx := context.Background()

	t.Run("admin entry notifies the sponsor", func(t *testing.T) {
		env := newLogEnv(t)

		entry, err := env.svc.Add(ctx, env.sid, env.admin, id.RoleAdmin, "School enrollment", "Ana started third grade.", CategorySchool)
		require.NoError(t, err)
		assert.Equal(t, env.admin, entry.AuthorID)
		assert.Equal(t, CategorySchool, entry.Category)

		require.Len(t, env.notifier.events, 1)
		assert.Equal(t, []id.UserID{env.sponsor}, env.notifier.events[0].TargetUserIDs)
	})

	t.Run("sponsor cannot author, even on own sponsorship", func(t *testing.T) {
		env := newLogEnv(t)

		_, err := env.svc.Add(ctx, env.sid, env.sponsor, id.RoleSponsor, "Title", "Body", CategoryGeneral)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
		assert.Empty(t, env.notifier.events)
	})

	t.Run("gate runs before validation", func(t *testing.T) {
		env := newLogEnv(t)

		// Invalid input from a sponsor still reads as access denied, not
		// bad request, so the gate leaks nothing about the payload rules.
		_, err := env.svc.Add(ctx, env.sid, env.sponsor, id.RoleSponsor, "", "", Category("bogus"))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("invalid entries are rejected", func(t *testing.T) {
		env := newLogEnv(t)

		_, err := env.svc.Add(ctx, env.sid, env.admin, id.RoleAdmin, "", "Body", CategoryGeneral)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))

		_, err = env.svc.Add(ctx, env.sid, env.admin, id.RoleAdmin, "Title", "Body", Category("bogus"))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("unknown sponsorship", func(t *testing.T) {
		env := newLogEnv(t)
		_, err := env.svc.Add(ctx, id.NewSponsorshipID(), env.admin, id.RoleAdmin, "Title", "Body", CategoryGeneral)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestListEntries(t *testing.T) {
	ctx := context.Background()
	env := newLogEnv(t)

	base := time.Now()
	_, err := env.svc.Add(requestcontext.WithTime(ctx, base), env.sid, env.admin, id.RoleAdmin, "First", "Body", CategoryGeneral)
	require.NoError(t, err)
	second, err := env.svc.Add(requestcontext.WithTime(ctx, base.Add(time.Minute)), env.sid, env.admin, id.RoleAdmin, "Second", "Body", CategoryHealth)
	require.NoError(t, err)

	t.Run("owning sponsor reads newest first", func(t *testing.T) {
		entries, err := env.svc.List(ctx, env.sid, env.sponsor, id.RoleSponsor)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, second.ID, entries[0].ID)
	})

	t.Run("admin reads any sponsorship", func(t *testing.T) {
		entries, err := env.svc.List(ctx, env.sid, env.admin, id.RoleAdmin)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("stranger sponsor is denied", func(t *testing.T) {
		_, err := env.svc.List(ctx, env.sid, id.NewUserID(), id.RoleSponsor)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func TestParseCategory(t *testing.T) {
	for _, raw := range []string{"health", "school", "family", "general", "milestone"} {
		cat, err := ParseCategory(raw)
		require.NoError(t, err)
		assert.NotEmpty(t, cat.Label())
	}

	_, err := ParseCategory("finance")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}
