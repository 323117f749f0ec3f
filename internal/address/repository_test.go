package address

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kkmall-be/internal/records"
	"kkmall-be/internal/user"
)

// fakeAddressStore is an in-memory addresses collection behind the
// record store wire protocol.
type fakeAddressStore struct {
	mu    sync.Mutex
	seq   int
	rows  map[string]map[string]any
	sorts []string
}

func newFakeAddressStore() *fakeAddressStore {
	return &fakeAddressStore{rows: make(map[string]map[string]any)}
}

func (f *fakeAddressStore) seed(userID string, isDefault bool) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	id := fmt.Sprintf("addr%d", f.seq)
	f.rows[id] = map[string]any{
		"id": id, "user": userID,
		"label": "自宅", "recipient": "山田太郎",
		"phone": "090-0000-0000", "postal_code": "100-0001",
		"address": "東京都千代田区1-1", "is_default": isDefault,
	}
	return id
}

func (f *fakeAddressStore) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		const base = "/api/collections/addresses/records"

		switch {
		case r.Method == http.MethodGet && r.URL.Path == base:
			f.sorts = append(f.sorts, r.URL.Query().Get("sort"))
			filter := r.URL.Query().Get("filter")

			items := make([]map[string]any, 0)
			for _, row := range f.rows {
				if strings.Contains(filter, `is_default = true`) && row["is_default"] != true {
					continue
				}
				items = append(items, row)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"page": 1, "perPage": len(items),
				"totalItems": len(items), "totalPages": 1,
				"items": items,
			})

		case r.Method == http.MethodPost && r.URL.Path == base:
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)

			f.seq++
			id := fmt.Sprintf("addr%d", f.seq)
			body["id"] = id
			f.rows[id] = body
			json.NewEncoder(w).Encode(body)

		case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, base+"/"):
			id := strings.TrimPrefix(r.URL.Path, base+"/")
			row, ok := f.rows[id]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(map[string]any{"message": "not found"})
				return
			}

			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			for k, v := range body {
				row[k] = v
			}
			json.NewEncoder(w).Encode(row)

		case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, base+"/"):
			id := strings.TrimPrefix(r.URL.Path, base+"/")
			if _, ok := f.rows[id]; !ok {
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(map[string]any{"message": "not found"})
				return
			}
			delete(f.rows, id)
			w.WriteHeader(http.StatusNoContent)

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func (f *fakeAddressStore) defaults() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var ids []string
	for id, row := range f.rows {
		if row["is_default"] == true {
			ids = append(ids, id)
		}
	}
	return ids
}

func signedInSession(t *testing.T) *user.Session {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(records.AuthResponse{
			Token:  "tok",
			Record: records.Record{"id": "u1", "email": "u1@example.com"},
		})
	}))
	t.Cleanup(srv.Close)

	session := user.NewSession(records.NewClient(srv.URL))
	_, err := session.SignIn(context.Background(), "u1@example.com", "pw")
	require.NoError(t, err)
	return session
}

func newTestRepository(t *testing.T) (Repository, *fakeAddressStore) {
	t.Helper()

	fake := newFakeAddressStore()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	return NewRepository(records.NewClient(srv.URL), signedInSession(t)), fake
}

func TestRequiresSignIn(t *testing.T) {
	session := user.NewSession(records.NewClient("http://127.0.0.1:1"))
	repo := NewRepository(records.NewClient("http://127.0.0.1:1"), session)
	ctx := context.Background()

	_, err := repo.List(ctx)
	assert.ErrorIs(t, err, ErrAuthRequired)

	_, err = repo.Add(ctx, Params{Label: "自宅"})
	assert.ErrorIs(t, err, ErrAuthRequired)

	assert.ErrorIs(t, repo.Remove(ctx, "addr1"), ErrAuthRequired)
	assert.ErrorIs(t, repo.SetDefault(ctx, "addr1"), ErrAuthRequired)
}

func TestListSortsDefaultFirst(t *testing.T) {
	repo, fake := newTestRepository(t)
	fake.seed("u1", false)
	fake.seed("u1", true)

	addrs, err := repo.List(context.Background())
	require.NoError(t, err)

	assert.Len(t, addrs, 2)
	require.NotEmpty(t, fake.sorts)
	assert.Equal(t, "-is_default,-created", fake.sorts[0])
}

func TestAddDefaultClearsPrevious(t *testing.T) {
	repo, fake := newTestRepository(t)
	old := fake.seed("u1", true)

	added, err := repo.Add(context.Background(), Params{
		Label: "会社", Recipient: "山田太郎",
		Phone: "090-1111-2222", PostalCode: "150-0001",
		Detail: "東京都渋谷区2-2", IsDefault: true,
	})
	require.NoError(t, err)

	defaults := fake.defaults()
	assert.Equal(t, []string{added.ID}, defaults)
	assert.NotContains(t, defaults, old)
	assert.Equal(t, "u1", added.UserID)
}

func TestAddNonDefaultKeepsPrevious(t *testing.T) {
	repo, fake := newTestRepository(t)
	old := fake.seed("u1", true)

	_, err := repo.Add(context.Background(), Params{Label: "会社"})
	require.NoError(t, err)

	assert.Equal(t, []string{old}, fake.defaults())
}

func TestSetDefaultMovesFlag(t *testing.T) {
	repo, fake := newTestRepository(t)
	fake.seed("u1", true)
	next := fake.seed("u1", false)

	require.NoError(t, repo.SetDefault(context.Background(), next))

	assert.Equal(t, []string{next}, fake.defaults())
}

func TestSetDefaultUnknown(t *testing.T) {
	repo, _ := newTestRepository(t)

	err := repo.SetDefault(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdate(t *testing.T) {
	repo, fake := newTestRepository(t)
	id := fake.seed("u1", false)

	updated, err := repo.Update(context.Background(), id, Params{
		Label: "実家", Recipient: "山田花子",
		Phone: "090-3333-4444", PostalCode: "100-0001",
		Detail: "東京都千代田区1-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "実家", updated.Label)

	_, err = repo.Update(context.Background(), "missing", Params{Label: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveIdempotent(t *testing.T) {
	repo, fake := newTestRepository(t)
	id := fake.seed("u1", false)

	require.NoError(t, repo.Remove(context.Background(), id))
	assert.NoError(t, repo.Remove(context.Background(), id), "removing twice should not fail")
}
