package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/joseph-ayodele/invoice-auditor/constants"
	"github.com/joseph-ayodele/invoice-auditor/internal/common"
)

// RecoverError reports that no JSON object could be recovered from model text.
type RecoverError struct {
	Kind constants.FailureKind
	Raw  string
	Err  error
}

func (e *RecoverError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("recover json (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("recover json (%s)", e.Kind)
}

func (e *RecoverError) Unwrap() []error {
	var sentinel error
	switch e.Kind {
	case constants.KindNoJSONSpan:
		sentinel = common.ErrNoJSONSpan
	default:
		sentinel = common.ErrJSONSyntax
	}
	if e.Err == nil {
		return []error{sentinel}
	}
	return []error{sentinel, e.Err}
}

// RecoverJSON pulls exactly one JSON object out of free-form model output.
// Code fences are stripped, then the span from the first '{' to the last '}'
// is decoded strictly. Numbers are kept as json.Number.
// A '{' with no closing brace after it is a syntax failure, not a missing span.
func RecoverJSON(text string) (map[string]any, error) {
	span, ok := jsonSpan(stripFences(text))
	if !ok {
		return nil, &RecoverError{Kind: constants.KindNoJSONSpan, Raw: text}
	}

	dec := json.NewDecoder(strings.NewReader(span))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &RecoverError{Kind: constants.KindJSONSyntax, Raw: text, Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &RecoverError{Kind: constants.KindJSONSyntax, Raw: text, Err: errors.New("trailing data after json object")}
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &RecoverError{Kind: constants.KindJSONSyntax, Raw: text, Err: errors.New("json value is not an object")}
	}
	return obj, nil
}

func stripFences(text string) string {
	s := strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(s, "```json"):
		s = s[len("```json"):]
	case strings.HasPrefix(s, "```JSON"):
		s = s[len("```JSON"):]
	case strings.HasPrefix(s, "```"):
		s = s[len("```"):]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func jsonSpan(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	end := strings.LastIndexByte(s, '}')
	if end < start {
		return s[start:], true
	}
	return s[start : end+1], true
}
