package remote_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"trackr/internal/adapter/remote"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchUser(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/users/alice", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"user":{"username":"alice","weight":[{"date":"2023-05-01T00:00:00Z","weight":70.5}]}}`))
	}))
	defer ts.Close()

	resp, err := remote.New(ts.URL).FetchUser(context.Background(), "alice", "tok")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	require.NotNil(t, resp.Data.User)
	require.Len(t, resp.Data.User.Weight, 1)
	assert.Equal(t, "2023-05-01T00:00:00Z", resp.Data.User.Weight[0].Date)
	assert.InDelta(t, 70.5, resp.Data.User.Weight[0].Weight, 0)
}

func TestFetchUser_NoUserDocument(t *testing.T) {
	for _, body := range []string{"", "{}"} {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))

		resp, err := remote.New(ts.URL).FetchUser(context.Background(), "alice", "tok")
		ts.Close()
		require.NoError(t, err, "body %q", body)
		assert.Equal(t, http.StatusOK, resp.Status)
		assert.Nil(t, resp.Data.User, "body %q", body)
	}
}

func TestEntryCalls(t *testing.T) {
	type seen struct {
		method, path, query string
		body                map[string]any
	}
	var (
		mu   sync.Mutex
		last seen
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := seen{method: r.Method, path: r.URL.Path, query: r.URL.Query().Get("date")}
		if r.ContentLength > 0 {
			_ = json.NewDecoder(r.Body).Decode(&s.body)
		}
		mu.Lock()
		last = s
		mu.Unlock()
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()
	lastSeen := func() seen {
		mu.Lock()
		defer mu.Unlock()
		return last
	}

	c := remote.New(ts.URL + "/")
	ctx := context.Background()

	resp, err := c.AddEntry(ctx, "alice", "tok", "2023-06-01", 70)
	require.NoError(t, err)
	got := lastSeen()
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/api/users/alice/weight", got.path)
	assert.Equal(t, "2023-06-01", got.body["date"])
	assert.InDelta(t, 70.0, got.body["weight"], 0)

	_, err = c.ModifyEntry(ctx, "alice", "tok", "2023-06-01", 72)
	require.NoError(t, err)
	got = lastSeen()
	assert.Equal(t, http.MethodPut, got.method)
	assert.InDelta(t, 72.0, got.body["weight"], 0)

	_, err = c.DeleteEntry(ctx, "alice", "tok", "2023-06-01T10:00:00+02:00")
	require.NoError(t, err)
	got = lastSeen()
	assert.Equal(t, http.MethodDelete, got.method)
	assert.Equal(t, "2023-06-01T10:00:00+02:00", got.query)
}

func TestNon2xxIsRejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"entry already exists for date"}`))
	}))
	defer ts.Close()

	_, err := remote.New(ts.URL).AddEntry(context.Background(), "alice", "tok", "2023-06-01", 70)
	var se *remote.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusConflict, se.Code)
	assert.Equal(t, "entry already exists for date", se.Message)
}

func TestOther2xxResolvesWithStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	resp, err := remote.New(ts.URL).DeleteEntry(context.Background(), "alice", "tok", "2023-06-01")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.Status)
}

func TestTransportErrorIsRejected(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := remote.New(url).FetchUser(context.Background(), "alice", "tok")
	require.Error(t, err)
}

func TestLogin(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"token":"abc"}`))
	}))
	defer ts.Close()

	c := remote.New(ts.URL)
	tok, err := c.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	_, err = c.Login(context.Background(), "alice", "wrong")
	var se *remote.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.Code)
}
