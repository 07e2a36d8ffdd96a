package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/retriever"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredgpt/server/internal/agent/model"
	errx "github.com/fredgpt/server/internal/core/error"
)

func newServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(model.SearchConfig{URL: srv.URL + "/", Token: "tok", Timeout: 5 * time.Second})
	require.NoError(t, err)
	return c
}

func TestNewClient_HalfConfigured(t *testing.T) {
	_, err := NewClient(model.SearchConfig{URL: "http://search.local"})
	assert.Error(t, err)

	_, err = NewClient(model.SearchConfig{Token: "tok"})
	assert.Error(t, err)
}

func TestClient_NotConfigured(t *testing.T) {
	c, err := NewClient(model.SearchConfig{})
	require.NoError(t, err)
	assert.False(t, c.Configured())

	_, err = c.Search(context.Background(), "inflation")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestClient_Search(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/search/hybrid", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "1979 october meeting", body["query"])

		_, _ = w.Write([]byte(`{"data":{"results":[
			{"id":"a","content":"Volcker announced...","score":0.91,"title":"Statement"},
			{"id":"b","text":"Minutes of the meeting","score":0.52}]}}`))
	})

	results, err := c.Search(context.Background(), "1979 october meeting")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0]["id"])
}

func TestClient_SearchUpstreamFailure(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})

	_, err := c.Search(context.Background(), "q")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, errx.StatusOf(err))
	assert.Contains(t, err.Error(), "401")
}

func TestRetriever_Retrieve(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"results":[
			{"id":"a","content":"first","score":0.9,"title":"T1"},
			{"text":"second"},
			{"id":7,"content":"third"}]}}`))
	})

	docs, err := NewRetriever(c, 0).Retrieve(context.Background(), "q")
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "a", docs[0].ID)
	assert.Equal(t, "first", docs[0].Content)
	assert.InDelta(t, 0.9, docs[0].Score(), 1e-9)
	assert.Equal(t, "T1", docs[0].MetaData["title"])
	assert.Equal(t, "hit-1", docs[1].ID)
	assert.Equal(t, "second", docs[1].Content)
	assert.Equal(t, "7", docs[2].ID)

	limited, err := NewRetriever(c, 0).Retrieve(context.Background(), "q", retriever.WithTopK(1))
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
