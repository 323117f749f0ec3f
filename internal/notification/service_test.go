package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kkmall-be/internal/records"
)

// fakeNotificationStore is an in-memory notifications collection
// behind the record store wire protocol.
type fakeNotificationStore struct {
	mu      sync.Mutex
	seq     int
	rows    []map[string]any
	filters []string
	queries []string
}

func (f *fakeNotificationStore) seed(userID string, isRead bool, typ string) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	id := fmt.Sprintf("n%d", f.seq)
	f.rows = append(f.rows, map[string]any{
		"id": id, "userId": userID,
		"title": "お知らせ", "content": "本文",
		"type": typ, "isRead": isRead,
	})
	return id
}

func (f *fakeNotificationStore) matches(row map[string]any, filter string) bool {
	if strings.Contains(filter, `isRead = false`) && row["isRead"] == true {
		return false
	}
	if strings.Contains(filter, `isRead = true`) && row["isRead"] != true {
		return false
	}
	for _, typ := range []string{"order", "payment", "system"} {
		if strings.Contains(filter, `type = "`+typ+`"`) && row["type"] != typ {
			return false
		}
	}
	return true
}

func (f *fakeNotificationStore) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		const base = "/api/collections/notifications/records"
		f.queries = append(f.queries, r.URL.RawQuery)

		switch {
		case r.Method == http.MethodGet && r.URL.Path == base:
			filter := r.URL.Query().Get("filter")
			f.filters = append(f.filters, filter)

			matched := make([]map[string]any, 0)
			for _, row := range f.rows {
				if f.matches(row, filter) {
					matched = append(matched, row)
				}
			}

			perPage, _ := strconv.Atoi(r.URL.Query().Get("perPage"))
			page, _ := strconv.Atoi(r.URL.Query().Get("page"))
			if perPage <= 0 {
				perPage = len(matched)
			}
			if page <= 0 {
				page = 1
			}

			start := (page - 1) * perPage
			if start > len(matched) {
				start = len(matched)
			}
			end := start + perPage
			if end > len(matched) {
				end = len(matched)
			}

			totalPages := 0
			if perPage > 0 {
				totalPages = (len(matched) + perPage - 1) / perPage
			}

			json.NewEncoder(w).Encode(map[string]any{
				"page": page, "perPage": perPage,
				"totalItems": len(matched), "totalPages": totalPages,
				"items": matched[start:end],
			})

		case r.Method == http.MethodPost && r.URL.Path == base:
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)

			f.seq++
			body["id"] = fmt.Sprintf("n%d", f.seq)
			f.rows = append(f.rows, body)
			json.NewEncoder(w).Encode(body)

		case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, base+"/"):
			id := strings.TrimPrefix(r.URL.Path, base+"/")
			for _, row := range f.rows {
				if row["id"] == id {
					var body map[string]any
					json.NewDecoder(r.Body).Decode(&body)
					for k, v := range body {
						row[k] = v
					}
					json.NewEncoder(w).Encode(row)
					return
				}
			}
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{"message": "not found"})

		case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, base+"/"):
			id := strings.TrimPrefix(r.URL.Path, base+"/")
			for i, row := range f.rows {
				if row["id"] == id {
					f.rows = append(f.rows[:i], f.rows[i+1:]...)
					w.WriteHeader(http.StatusNoContent)
					return
				}
			}
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{"message": "not found"})

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func (f *fakeNotificationStore) unread() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, row := range f.rows {
		if row["isRead"] != true {
			count++
		}
	}
	return count
}

func newTestService(t *testing.T) (Service, *fakeNotificationStore) {
	t.Helper()

	fake := &fakeNotificationStore{}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	return NewService(records.NewClient(srv.URL)), fake
}

func TestListFilters(t *testing.T) {
	svc, fake := newTestService(t)
	fake.seed("u1", false, "order")
	fake.seed("u1", true, "order")
	fake.seed("u1", false, "payment")

	unread := false
	result, err := svc.List(context.Background(), "u1", 1, 20, ListFilter{IsRead: &unread, Type: TypeOrder})
	require.NoError(t, err)

	require.Len(t, result.Items, 1)
	assert.Equal(t, TypeOrder, result.Items[0].Type)
	assert.False(t, result.Items[0].IsRead)

	require.NotEmpty(t, fake.filters)
	assert.Equal(t, `userId = "u1" && isRead = false && type = "order"`, fake.filters[len(fake.filters)-1])
}

func TestListPagination(t *testing.T) {
	svc, fake := newTestService(t)
	for i := 0; i < 25; i++ {
		fake.seed("u1", false, "system")
	}

	result, err := svc.List(context.Background(), "u1", 2, 20, ListFilter{})
	require.NoError(t, err)

	assert.Len(t, result.Items, 5)
	assert.Equal(t, 25, result.TotalItems)
	assert.Equal(t, 2, result.TotalPages)
	assert.Equal(t, 2, result.Page)
}

func TestUnreadCount(t *testing.T) {
	svc, fake := newTestService(t)
	fake.seed("u1", false, "order")
	fake.seed("u1", false, "system")
	fake.seed("u1", true, "order")

	count, err := svc.UnreadCount(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// The count must come from totalItems of a single-row page, not
	// from fetching every record.
	last := fake.queries[len(fake.queries)-1]
	assert.Contains(t, last, "perPage=1")
}

func TestLatestUnread(t *testing.T) {
	svc, fake := newTestService(t)
	fake.seed("u1", false, "order")
	fake.seed("u1", true, "order")

	items, err := svc.LatestUnread(context.Background(), "u1", 5)
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.False(t, items[0].IsRead)
}

func TestMarkAllRead(t *testing.T) {
	svc, fake := newTestService(t)
	fake.seed("u1", false, "order")
	fake.seed("u1", false, "payment")
	fake.seed("u1", true, "order")

	require.NoError(t, svc.MarkAllRead(context.Background(), "u1"))
	assert.Equal(t, 0, fake.unread())
}

func TestMarkReadUnknown(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.MarkRead(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreate(t *testing.T) {
	svc, fake := newTestService(t)

	n, err := svc.Create(context.Background(), CreateParams{
		UserID: "u1", Title: "注文確認",
		Content: "ご注文ありがとうございます", Type: TypeOrder,
		Link: "/orders/o1",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, n.ID)
	assert.Equal(t, TypeOrder, n.Type)
	assert.False(t, n.IsRead)
	assert.Equal(t, 1, fake.unread())
}

func TestRemoveIdempotent(t *testing.T) {
	svc, fake := newTestService(t)
	id := fake.seed("u1", false, "order")

	require.NoError(t, svc.Remove(context.Background(), id))
	assert.NoError(t, svc.Remove(context.Background(), id), "removing twice should not fail")
}
