package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/invoice-auditor/internal/llm"
)

// Generate implements llm.Generator over chat/completions. Images travel as data URLs,
// PDFs as file parts and text attachments (CSV) inline after the prompt.
func (c *Client) Generate(ctx context.Context, req llm.Request) (string, error) {
	start := time.Now()
	c.logger.Info("llm.generate.start",
		"provider", "openai",
		"model", c.cfg.Model,
		"prompt_len", len(req.Prompt),
		"has_attachment", req.Attachment != nil,
	)

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"messages": []map[string]any{
			{"role": "user", "content": buildContent(req)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	raw, _, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		c.logger.Error("llm.generate.http_error",
			"provider", "openai", "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return "", fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return "", fmt.Errorf("no choices in openai response")
	}

	text := cc.Choices[0].Message.Content
	c.logger.Info("llm.generate.ok",
		"provider", "openai",
		"text_len", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}

func buildContent(req llm.Request) []map[string]any {
	a := req.Attachment
	if a == nil {
		return []map[string]any{{"type": "text", "text": req.Prompt}}
	}
	switch {
	case strings.HasPrefix(a.MIMEType, "image/"):
		return []map[string]any{
			{"type": "text", "text": req.Prompt},
			{"type": "image_url", "image_url": map[string]any{"url": dataURL(a)}},
		}
	case strings.HasPrefix(a.MIMEType, "text/"):
		return []map[string]any{
			{"type": "text", "text": req.Prompt + "\n\n" + string(a.Data)},
		}
	default:
		return []map[string]any{
			{"type": "text", "text": req.Prompt},
			{"type": "file", "file": map[string]any{"filename": a.Filename, "file_data": dataURL(a)}},
		}
	}
}

func dataURL(a *llm.Attachment) string {
	return "data:" + a.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(a.Data)
}
