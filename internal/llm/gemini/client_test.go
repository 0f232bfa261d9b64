package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-auditor/internal/llm"
)

func TestClient_Generate(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Acme "},{"text":"Corp"}]},"finishReason":"STOP"}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "secret", BaseURL: srv.URL, Model: "gemini-test"}, nil)
	got, err := c.Generate(context.Background(), llm.Request{
		Prompt:     "who sold this?",
		Attachment: &llm.Attachment{MIMEType: "application/pdf", Data: []byte("%PDF-1.4"), Filename: "a.pdf"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", got)

	contents := captured["contents"].([]any)
	parts := contents[0].(map[string]any)["parts"].([]any)
	require.Len(t, parts, 2)
	assert.Equal(t, "who sold this?", parts[0].(map[string]any)["text"])
	inline := parts[1].(map[string]any)["inline_data"].(map[string]any)
	assert.Equal(t, "application/pdf", inline["mime_type"])
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("%PDF-1.4")), inline["data"])
}

func TestClient_Generate_Errors(t *testing.T) {
	t.Run("status error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"quota"}}`))
		}))
		defer srv.Close()

		c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)
		_, err := c.Generate(context.Background(), llm.Request{Prompt: "p"})

		var se *llm.StatusError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
		assert.True(t, llm.IsTransient(err))
	})

	t.Run("blocked prompt", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`))
		}))
		defer srv.Close()

		c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)
		_, err := c.Generate(context.Background(), llm.Request{Prompt: "p"})

		assert.ErrorIs(t, err, ErrEmptyResponse)
		assert.Contains(t, err.Error(), "SAFETY")
	})
}
