// Package provider builds the configured model client.
package provider

import (
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/invoice-auditor/internal/common"
	"github.com/joseph-ayodele/invoice-auditor/internal/llm"
	"github.com/joseph-ayodele/invoice-auditor/internal/llm/gemini"
	"github.com/joseph-ayodele/invoice-auditor/internal/llm/openai"
)

// New returns a retrying Generator for cfg.Provider.
func New(cfg common.LLMConfig, logger *slog.Logger) (llm.Generator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var base llm.Generator
	switch cfg.Provider {
	case "gemini":
		base = gemini.NewClient(gemini.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger)
	case "openai":
		base = openai.NewClient(openai.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	logger.Info("llm.provider.ready", "provider", cfg.Provider, "model", cfg.Model, "max_retries", cfg.MaxRetries)
	return llm.NewRetrying(base, llm.RetryConfig{
		MaxRetries: cfg.MaxRetries,
		Backoff:    cfg.RetryBackoff,
		Timeout:    cfg.Timeout,
	}, logger), nil
}
