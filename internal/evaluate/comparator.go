package evaluate

import (
	"context"
	"errors"
	"log/slog"

	"github.com/joseph-ayodele/invoice-auditor/constants"
	"github.com/joseph-ayodele/invoice-auditor/internal/entity"
	"github.com/joseph-ayodele/invoice-auditor/internal/llm"
)

const notApplicable = "N/A"

// Judge produces a verdict for one ground-truth / extracted pair restricted to fields.
type Judge interface {
	Judge(ctx context.Context, invoice string, groundTruth, extracted entity.Record, fields entity.FieldSet) entity.Verdict
}

// Pair is one invoice's reference record and the record produced by extraction.
type Pair struct {
	Invoice     string
	GroundTruth entity.Record
	Extracted   entity.Record
}

// ModelJudge asks the model to referee the pair.
type ModelJudge struct {
	gen    llm.Generator
	logger *slog.Logger
}

func NewModelJudge(gen llm.Generator, logger *slog.Logger) *ModelJudge {
	if logger == nil {
		logger = slog.Default()
	}
	return &ModelJudge{gen: gen, logger: logger}
}

func (j *ModelJudge) Judge(ctx context.Context, invoice string, groundTruth, extracted entity.Record, fields entity.FieldSet) entity.Verdict {
	prompt := BuildComparisonPrompt(invoice, groundTruth, extracted, fields)
	text, err := j.gen.Generate(ctx, llm.Request{Prompt: prompt})
	if err != nil {
		return entity.Verdict{Invoice: invoice, Kind: constants.KindTransport, Detail: err.Error()}
	}

	obj, err := llm.RecoverJSON(text)
	if err != nil {
		kind := constants.KindJSONSyntax
		var re *llm.RecoverError
		if errors.As(err, &re) {
			kind = re.Kind
		}
		return entity.Verdict{Invoice: invoice, Kind: kind, Detail: text}
	}
	return j.interpret(invoice, obj)
}

// interpret maps a decoded verdict object onto the verdict vocabulary.
func (j *ModelJudge) interpret(invoice string, obj map[string]any) entity.Verdict {
	raw, present := obj["overall_status"]
	status, _ := raw.(string)

	switch constants.VerdictStatus(status) {
	case constants.StatusPass:
		if list, _ := obj["mismatches"].([]any); len(list) > 0 {
			j.logger.Warn("evaluate.verdict.pass_with_mismatches", "file", invoice, "mismatches", len(list))
		}
		return entity.Verdict{Invoice: invoice, Status: constants.StatusPass}

	case constants.StatusMismatch:
		list, _ := obj["mismatches"].([]any)
		if len(list) == 0 {
			return entity.Verdict{Invoice: invoice, Status: constants.StatusMismatch, Kind: constants.KindDegradedMismatch}
		}
		v := entity.Verdict{Invoice: invoice, Status: constants.StatusMismatch}
		for _, item := range list {
			entry, _ := item.(map[string]any)
			v.Mismatches = append(v.Mismatches, entity.MismatchEntry{
				Field:    lookup(entry, "field"),
				Expected: lookup(entry, "expected"),
				Actual:   lookup(entry, "actual"),
			})
		}
		return v
	}

	detail := "<missing>"
	if present {
		detail = entity.Stringify(raw)
	}
	return entity.Verdict{Invoice: invoice, Kind: constants.KindInvalidStatus, Detail: detail}
}

func lookup(entry map[string]any, key string) string {
	v, ok := entry[key]
	if !ok {
		return notApplicable
	}
	return entity.Stringify(v)
}

// Comparator judges pairs against the configured deal-breaker fields.
type Comparator struct {
	judge  Judge
	fields entity.FieldSet
	logger *slog.Logger
}

func NewComparator(judge Judge, fields entity.FieldSet, logger *slog.Logger) *Comparator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Comparator{judge: judge, fields: fields, logger: logger}
}

// Compare returns the verdict for one pair. It never fails; problems are carried in the verdict.
func (c *Comparator) Compare(ctx context.Context, p Pair) entity.Verdict {
	v := c.judge.Judge(ctx, p.Invoice, p.GroundTruth, p.Extracted, c.fields)
	v.Invoice = p.Invoice
	if v.Kind != constants.KindNone {
		c.logger.Warn("evaluate.verdict.error", "file", p.Invoice, "kind", string(v.Kind), "error", Err(v))
		return v
	}
	c.logger.Info("evaluate.verdict.ok", "file", p.Invoice, "status", string(v.Status), "mismatches", len(v.Mismatches))
	return v
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
