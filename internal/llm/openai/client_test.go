package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-auditor/internal/llm"
)

func TestClient_Generate(t *testing.T) {
	var captured struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string           `json:"role"`
			Content []map[string]any `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"overall_status\":\"Pass\"}"}}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL, Model: "gpt-test"}, nil)
	got, err := c.Generate(context.Background(), llm.Request{
		Prompt:     "scan",
		Attachment: &llm.Attachment{MIMEType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}, Filename: "a.png"},
	})

	require.NoError(t, err)
	assert.Equal(t, `{"overall_status":"Pass"}`, got)
	assert.Equal(t, "gpt-test", captured.Model)
	require.Len(t, captured.Messages, 1)
	require.Len(t, captured.Messages[0].Content, 2)
	assert.Equal(t, "image_url", captured.Messages[0].Content[1]["type"])
	url := captured.Messages[0].Content[1]["image_url"].(map[string]any)["url"].(string)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))
}

func TestBuildContent(t *testing.T) {
	t.Run("no attachment", func(t *testing.T) {
		parts := buildContent(llm.Request{Prompt: "p"})
		require.Len(t, parts, 1)
		assert.Equal(t, "p", parts[0]["text"])
	})

	t.Run("csv inline", func(t *testing.T) {
		parts := buildContent(llm.Request{Prompt: "p", Attachment: &llm.Attachment{MIMEType: "text/csv", Data: []byte("a,b\n1,2\n")}})
		require.Len(t, parts, 1)
		assert.Equal(t, "p\n\na,b\n1,2\n", parts[0]["text"])
	})

	t.Run("pdf as file part", func(t *testing.T) {
		parts := buildContent(llm.Request{Prompt: "p", Attachment: &llm.Attachment{MIMEType: "application/pdf", Data: []byte("%PDF"), Filename: "x.pdf"}})
		require.Len(t, parts, 2)
		assert.Equal(t, "file", parts[1]["type"])
		file := parts[1]["file"].(map[string]any)
		assert.Equal(t, "x.pdf", file["filename"])
	})
}

func TestClient_Generate_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)
	_, err := c.Generate(context.Background(), llm.Request{Prompt: "p"})
	assert.ErrorContains(t, err, "no choices")
}
