package vector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietlegal/lawrag/internal/errors"
)

func TestNewRemoteIndex_RequiresEndpoint(t *testing.T) {
	_, err := NewRemoteIndex(RemoteConfig{})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfigInvalid, errors.GetCode(err))
}

func TestRemoteIndex_Query(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/query", r.URL.Path)
		require.Equal(t, "secret", r.Header.Get("Api-Key"))

		var req queryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 3, req.TopK)
		assert.True(t, req.IncludeMetadata)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"matches": []map[string]any{
				{"id": "c-17", "score": 0.91, "metadata": map[string]string{
					MetaClauseText: "Người lao động có quyền...",
					MetaLawTitle:   "Bộ luật Lao động",
				}},
				{"id": "c-4", "score": 0.82},
			},
		})
	}))
	defer server.Close()

	ix, err := NewRemoteIndex(RemoteConfig{Endpoint: server.URL, APIKey: "secret"})
	require.NoError(t, err)
	defer func() { _ = ix.Close() }()

	matches, err := ix.Query(context.Background(), []float32{0.1, 0.2}, 3)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, "c-17", matches[0].ID)
	assert.InDelta(t, 0.91, matches[0].Score, 1e-9)
	assert.Equal(t, "Bộ luật Lao động", matches[0].Meta(MetaLawTitle))

	// Missing metadata reads as empty strings, never panics.
	assert.Equal(t, "", matches[1].Meta(MetaClauseNo))
}

func TestRemoteIndex_ServerErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "index rebuilding", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ix, err := NewRemoteIndex(RemoteConfig{Endpoint: server.URL})
	require.NoError(t, err)

	_, err = ix.Query(context.Background(), []float32{1}, 5)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeVectorUnavailable, errors.GetCode(err))
	assert.True(t, errors.IsRetryable(err))
}

func TestRemoteIndex_TimeoutIsNotEmptyResult(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	ix, err := NewRemoteIndex(RemoteConfig{Endpoint: server.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	matches, err := ix.Query(context.Background(), []float32{1}, 5)
	require.Error(t, err)
	assert.Nil(t, matches)
	assert.Equal(t, errors.ErrCodeNetworkTimeout, errors.GetCode(err))
}

func TestRemoteIndex_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	ix, err := NewRemoteIndex(RemoteConfig{Endpoint: server.URL})
	require.NoError(t, err)

	_, err = ix.Query(context.Background(), []float32{1}, 5)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeVectorUnavailable, errors.GetCode(err))
}

func TestRemoteIndex_SkipsMatchesWithoutID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"matches": []map[string]any{
				{"id": "", "score": 0.9},
				{"id": "c-1", "score": 0.8},
			},
		})
	}))
	defer server.Close()

	ix, err := NewRemoteIndex(RemoteConfig{Endpoint: server.URL})
	require.NoError(t, err)

	matches, err := ix.Query(context.Background(), []float32{1}, 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "c-1", matches[0].ID)
}
