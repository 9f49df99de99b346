package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, text string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{"parts": []map[string]string{{"text": text}}}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestGenerateReturnsCandidateText(t *testing.T) {
	srv := newTestServer(t, "hello team")
	defer srv.Close()

	client := NewClient(ClientConfig{APIKey: "k", Endpoint: srv.URL})
	text, err := client.Generate(context.Background(), "say hello", Options{})
	require.NoError(t, err)
	assert.Equal(t, "hello team", text)
}

func TestGenerateUsesCache(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		resp := map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{"parts": []map[string]string{{"text": "cached"}}}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{APIKey: "k", Endpoint: srv.URL})
	_, err := client.Generate(context.Background(), "prompt", Options{})
	require.NoError(t, err)
	_, err = client.Generate(context.Background(), "prompt", Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestGenerateJSONExtractsBlock(t *testing.T) {
	srv := newTestServer(t, "sure, here you go: {\"members\": [\"member_002\"]} hope it helps")
	defer srv.Close()

	client := NewClient(ClientConfig{APIKey: "k", Endpoint: srv.URL})
	var out struct {
		Members []string `json:"members"`
	}
	err := client.GenerateJSON(context.Background(), "pick a team", Options{}, &out)
	require.NoError(t, err)
	assert.Equal(t, []string{"member_002"}, out.Members)
}

func TestRateLimitBlocksRequests(t *testing.T) {
	srv := newTestServer(t, "ok")
	defer srv.Close()

	client := NewClient(ClientConfig{APIKey: "k", Endpoint: srv.URL, RequestsPerMinute: 1})
	_, err := client.Generate(context.Background(), "one", Options{})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "two", Options{})
	require.Error(t, err)
	assert.False(t, client.Available())
	assert.Equal(t, 0, client.RemainingRequests())
}
