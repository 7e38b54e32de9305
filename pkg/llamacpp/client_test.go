package llamacpp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/grid-locator/pkg/types"
)

func TestQuery(t *testing.T) {
	var got chatRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","choices":[{"index":0,"message":{"role":"assistant","content":"{\"elements\":[]}"}}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(Options{URL: srv.URL + "/", Model: "llava", APIKey: "secret"})
	require.NoError(t, err)

	text, err := c.Query(context.Background(), "list elements", types.EncodedImage{MediaType: "image/png", Data: "aGk="})
	require.NoError(t, err)
	assert.Equal(t, `{"elements":[]}`, text)

	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "llava", got.Model)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	require.Len(t, got.Messages, 1)

	parts, ok := got.Messages[0].Content.([]any)
	require.True(t, ok)
	require.Len(t, parts, 2)
	image := parts[0].(map[string]any)
	assert.Equal(t, "image_url", image["type"])
	assert.Equal(t, "data:image/png;base64,aGk=", image["image_url"].(map[string]any)["url"])
	text2 := parts[1].(map[string]any)
	assert.Equal(t, "list elements", text2["text"])
}

func TestQueryContentParts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":[{"type":"text","text":"{}"}]}}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(Options{URL: srv.URL})
	require.NoError(t, err)

	text, err := c.Query(context.Background(), "p", types.EncodedImage{Data: "aGk="})
	require.NoError(t, err)
	assert.Equal(t, "{}", text)
}

func TestQueryErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{"server error", http.StatusInternalServerError, `{"error":{"code":500,"message":"model not loaded"}}`, http.StatusInternalServerError},
		{"no choices", http.StatusOK, `{"choices":[]}`, 0},
		{"empty content", http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":""}}]}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, err := NewClient(Options{URL: srv.URL})
			require.NoError(t, err)

			_, err = c.Query(context.Background(), "p", types.EncodedImage{Data: "aGk="})
			var remoteErr *types.RemoteServiceError
			require.ErrorAs(t, err, &remoteErr)
			assert.Equal(t, tt.wantStatus, remoteErr.StatusCode)
		})
	}
}
