package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/Corphon/ComicProxy/internal/llm"
)

func TestInitialize_RequiresAPIKey(t *testing.T) {
	p := &Provider{}
	err := p.Initialize(context.Background(), map[string]string{})
	assert.Error(t, err)

	_, err = p.GenerateContent(context.Background(), "m", genai.Text("hi"), nil)
	assert.Error(t, err)
}

func TestRegistered(t *testing.T) {
	assert.Contains(t, llm.ListProviders(), Name)

	_, err := llm.GetProvider(context.Background(), "nope", nil)
	assert.ErrorIs(t, err, llm.ErrUnknownProvider)
}

func TestGenerateContent_UsesBaseURL(t *testing.T) {
	var hits atomic.Int32
	var gotPath, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"[]"}]},"finishReason":"STOP"}]}`))
	}))
	defer srv.Close()

	provider, err := llm.GetProvider(context.Background(), Name, map[string]string{
		"api_key":  "test-key",
		"base_url": srv.URL + "/",
	})
	require.NoError(t, err)
	assert.Equal(t, "google gemini", provider.GetName())

	resp, err := provider.GenerateContent(context.Background(), "gemini-test", genai.Text("hello"), nil)
	require.NoError(t, err)

	assert.EqualValues(t, 1, hits.Load())
	assert.Equal(t, "test-key", gotKey)
	assert.True(t, strings.Contains(gotPath, "gemini-test:generateContent"), gotPath)
	assert.Equal(t, "[]", resp.Text())
}
