package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amparo/internal/chat"
	"amparo/internal/children"
	"amparo/internal/logbook"
	"amparo/internal/notify"
	"amparo/internal/platform/middleware"
	"amparo/internal/sponsorship"
	"amparo/internal/users"
	id "amparo/pkg/domain"
)

// staticValidator maps bearer tokens straight to claims, standing in for the
// identity provider in transport tests.
type staticValidator map[string]*middleware.Claims

func (v staticValidator) ValidateToken(token string) (*middleware.Claims, error) {
	if claims, ok := v[token]; ok {
		return claims, nil
	}
	return nil, assert.AnError
}

type fixture struct {
	router  http.Handler
	sink    *notify.InMemorySink
	userDir *users.InMemoryStore
	sponsor users.User
	admin   users.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	f := &fixture{
		sink:    notify.NewInMemorySink(),
		userDir: users.NewInMemoryStore(),
		sponsor: users.User{ID: id.NewUserID(), Name: "Marta", Role: id.RoleSponsor, Active: true, CreatedAt: time.Now()},
		admin:   users.User{ID: id.NewUserID(), Name: "Staff", Role: id.RoleAdmin, Active: true, CreatedAt: time.Now()},
	}
	require.NoError(t, f.userDir.Save(ctx, f.sponsor))
	require.NoError(t, f.userDir.Save(ctx, f.admin))

	publisher := notify.NewPublisher(f.userDir, f.sink, logger, nil)
	ledgerStore := sponsorship.NewInMemoryStore()
	childStore := children.NewInMemoryStore()

	ledger := sponsorship.NewService(ledgerStore, childStore, f.userDir, sponsorship.NewInMemoryTx(), publisher, nil, logger)
	chatSvc := chat.NewService(chat.NewInMemoryStore(), ledgerStore, publisher, nil, logger)
	logSvc := logbook.NewService(logbook.NewInMemoryStore(), ledgerStore, publisher, logger)
	childSvc := children.NewService(childStore)

	f.router = NewRouter(Deps{
		Sponsorships: ledger,
		Chat:         chatSvc,
		Logbook:      logSvc,
		Children:     childSvc,
		Validator: staticValidator{
			"sponsor-token": {UserID: f.sponsor.ID, Role: id.RoleSponsor},
			"admin-token":   {UserID: f.admin.ID, Role: id.RoleAdmin},
		},
		Logger: logger,
	})
	return f
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) createChild(t *testing.T, firstName string) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/children", "admin-token", map[string]any{
		"first_name": firstName,
		"last_name":  "Test",
		"birth_date": time.Date(2016, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp["id"].(string)
}

func (f *fixture) selectChild(t *testing.T, childID string) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/sponsorships", "sponsor-token", map[string]string{"child_id": childID})
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp["id"].(string)
}

func TestRouterAuth(t *testing.T) {
	f := newFixture(t)

	t.Run("missing token", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/sponsorships/active", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown token", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/sponsorships/active", "bogus", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("health needs no token", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/healthz", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("metrics needs no token", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/metrics", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestSponsorshipRoutes(t *testing.T) {
	t.Run("select then read active", func(t *testing.T) {
		f := newFixture(t)
		childID := f.createChild(t, "Ana")

		rec := f.do(t, http.MethodGet, "/sponsorships/active", "sponsor-token", nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		sid := f.selectChild(t, childID)

		rec = f.do(t, http.MethodGet, "/sponsorships/active", "sponsor-token", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp sponsorshipResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, sid, resp.ID)
		assert.Equal(t, "ACTIVE", resp.Status)
		assert.Equal(t, childID, resp.ChildID)
	})

	t.Run("select with malformed child id", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(t, http.MethodPost, "/sponsorships", "sponsor-token", map[string]string{"child_id": "not-a-uuid"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("double select reports invalid state with reason", func(t *testing.T) {
		f := newFixture(t)
		first := f.createChild(t, "Ana")
		second := f.createChild(t, "Luis")
		f.selectChild(t, first)

		rec := f.do(t, http.MethodPost, "/sponsorships", "sponsor-token", map[string]string{"child_id": second})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "invalid_state", body["error"])
		assert.Equal(t, "you are already sponsoring a child", body["error_description"])
	})

	t.Run("lifecycle over http", func(t *testing.T) {
		f := newFixture(t)
		sid := f.selectChild(t, f.createChild(t, "Ana"))

		rec := f.do(t, http.MethodPost, "/sponsorships/"+sid+"/pause", "sponsor-token", nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		// Reactivation is reserved for admins.
		rec = f.do(t, http.MethodPost, "/sponsorships/"+sid+"/reactivate", "sponsor-token", nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = f.do(t, http.MethodPost, "/sponsorships/"+sid+"/reactivate", "admin-token", nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = f.do(t, http.MethodPost, "/sponsorships/"+sid+"/end", "admin-token", map[string]bool{"deactivate_child": false})
		require.Equal(t, http.StatusOK, rec.Code)
		var resp sponsorshipResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ENDED", resp.Status)
		require.NotNil(t, resp.EndedAt)

		rec = f.do(t, http.MethodPost, "/sponsorships/"+sid+"/pause", "admin-token", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("notes update", func(t *testing.T) {
		f := newFixture(t)
		sid := f.selectChild(t, f.createChild(t, "Ana"))

		rec := f.do(t, http.MethodPatch, "/sponsorships/"+sid+"/notes", "sponsor-token", map[string]string{"notes": "payment set up"})
		require.Equal(t, http.StatusOK, rec.Code)
		var resp sponsorshipResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "payment set up", resp.Notes)
	})

	t.Run("unknown sponsorship id", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(t, http.MethodGet, "/sponsorships/"+id.NewSponsorshipID().String(), "admin-token", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestChatRoutes(t *testing.T) {
	f := newFixture(t)
	sid := f.selectChild(t, f.createChild(t, "Ana"))

	t.Run("post and list", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/sponsorships/"+sid+"/messages", "sponsor-token", map[string]string{"body": "hello"})
		assert.Equal(t, http.StatusCreated, rec.Code)

		rec = f.do(t, http.MethodPost, "/sponsorships/"+sid+"/messages", "admin-token", map[string]string{"body": "hi back"})
		assert.Equal(t, http.StatusCreated, rec.Code)

		rec = f.do(t, http.MethodGet, "/sponsorships/"+sid+"/messages", "sponsor-token", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var msgs []messageResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msgs))
		assert.Len(t, msgs, 2)
	})

	t.Run("empty body is rejected", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/sponsorships/"+sid+"/messages", "sponsor-token", map[string]string{"body": "  "})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unread and mark read", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/messages/unread", "admin-token", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var unread unreadResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &unread))
		assert.Equal(t, 1, unread.Unread)

		rec = f.do(t, http.MethodPost, "/sponsorships/"+sid+"/messages/read", "admin-token", nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = f.do(t, http.MethodGet, "/messages/unread", "admin-token", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &unread))
		assert.Zero(t, unread.Unread)

		rec = f.do(t, http.MethodGet, "/messages/unread", "sponsor-token", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &unread))
		assert.Equal(t, 1, unread.Unread)
	})
}

func TestLogbookRoutes(t *testing.T) {
	f := newFixture(t)
	sid := f.selectChild(t, f.createChild(t, "Ana"))

	t.Run("sponsor cannot author", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/sponsorships/"+sid+"/log", "sponsor-token", map[string]string{
			"title": "Note", "body": "Body", "category": "general",
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "access denied", body["error_description"])
	})

	t.Run("admin authors, sponsor reads", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/sponsorships/"+sid+"/log", "admin-token", map[string]string{
			"title": "School enrollment", "body": "Ana started third grade.", "category": "school",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = f.do(t, http.MethodGet, "/sponsorships/"+sid+"/log", "sponsor-token", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var entries []entryResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
		require.Len(t, entries, 1)
		assert.Equal(t, "school", entries[0].Category)
		assert.NotEmpty(t, entries[0].CategoryLabel)
	})

	t.Run("unknown category", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/sponsorships/"+sid+"/log", "admin-token", map[string]string{
			"title": "Note", "body": "Body", "category": "finance",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestChildrenRoutes(t *testing.T) {
	f := newFixture(t)

	t.Run("create is admin only", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/children", "sponsor-token", map[string]any{
			"first_name": "Ana", "last_name": "Test",
			"birth_date": time.Date(2016, 3, 1, 0, 0, 0, 0, time.UTC),
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("sponsor browses the available pool", func(t *testing.T) {
		childID := f.createChild(t, "Ana")

		rec := f.do(t, http.MethodGet, "/children", "sponsor-token", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var cs []childResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cs))
		require.Len(t, cs, 1)
		assert.Equal(t, childID, cs[0].ID)

		// Sponsored children leave the pool.
		f.selectChild(t, childID)
		rec = f.do(t, http.MethodGet, "/children", "sponsor-token", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cs))
		assert.Empty(t, cs)
	})

	t.Run("deactivate and reactivate", func(t *testing.T) {
		childID := f.createChild(t, "Luis")

		rec := f.do(t, http.MethodPost, "/children/"+childID+"/deactivate", "admin-token", nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = f.do(t, http.MethodPost, "/children/"+childID+"/reactivate", "admin-token", nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("deactivating a sponsored child is refused", func(t *testing.T) {
		// Ana was sponsored in the subtest above.
		rec := f.do(t, http.MethodGet, "/sponsorships/active", "sponsor-token", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var sp sponsorshipResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sp))

		rec = f.do(t, http.MethodPost, "/children/"+sp.ChildID+"/deactivate", "admin-token", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
