package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"kkmall-be/internal/records"

	"github.com/stretchr/testify/assert"
)

func newTestSession(t *testing.T, handler http.HandlerFunc) *Session {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewSession(records.NewClient(srv.URL))
}

func TestSessionSignIn(t *testing.T) {
	session := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(records.AuthResponse{
			Token: "tok",
			Record: records.Record{
				"id":          "u1",
				"email":       "mune@example.com",
				"name":        "Mune",
				"points":      float64(120),
				"memberLevel": float64(2),
				"verified":    true,
			},
		})
	})

	var transitions []*User
	session.Subscribe(func(u *User) { transitions = append(transitions, u) })

	u, err := session.SignIn(context.Background(), "mune@example.com", "pw")
	assert.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, 120, u.Points)
	assert.True(t, u.Verified)
	assert.Equal(t, u, session.Current())

	assert.Len(t, transitions, 1)
	assert.Equal(t, "u1", transitions[0].ID)
}

func TestSessionSignOut(t *testing.T) {
	session := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(records.AuthResponse{
			Token:  "tok",
			Record: records.Record{"id": "u1"},
		})
	})

	_, err := session.SignIn(context.Background(), "a", "b")
	assert.NoError(t, err)

	var got []*User
	session.Subscribe(func(u *User) { got = append(got, u) })

	session.SignOut()
	assert.Nil(t, session.Current())
	assert.Equal(t, []*User{nil}, got)
}

func TestSessionSignInFailure(t *testing.T) {
	session := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{"message": "Failed to authenticate."})
	})

	notified := false
	session.Subscribe(func(*User) { notified = true })

	_, err := session.SignIn(context.Background(), "a", "bad")
	assert.ErrorIs(t, err, records.ErrAuthFailed)
	assert.Nil(t, session.Current())
	assert.False(t, notified, "failed sign-in must not notify subscribers")
}

func TestSessionUnsubscribe(t *testing.T) {
	session := NewSession(records.NewClient("http://127.0.0.1:1"))

	calls := 0
	unsub := session.Subscribe(func(*User) { calls++ })
	unsub()

	session.SignOut()
	assert.Equal(t, 0, calls)
}
