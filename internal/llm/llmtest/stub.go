// Package llmtest provides a deterministic llm.Generator for tests.
package llmtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/joseph-ayodele/invoice-auditor/internal/llm"
)

// Reply is one scripted answer.
type Reply struct {
	Text string
	Err  error
}

// Stub answers from a script and records every request it receives.
type Stub struct {
	mu      sync.Mutex
	handler func(llm.Request, int) Reply
	calls   []llm.Request
}

// Sequence replies in order; calls past the end fail.
func Sequence(replies ...Reply) *Stub {
	return &Stub{handler: func(_ llm.Request, n int) Reply {
		if n >= len(replies) {
			return Reply{Err: fmt.Errorf("llmtest: unexpected call %d", n+1)}
		}
		return replies[n]
	}}
}

// Fixed gives the same text to every call.
func Fixed(text string) *Stub {
	return &Stub{handler: func(llm.Request, int) Reply { return Reply{Text: text} }}
}

// ByFilename replies according to the attachment's file name.
func ByFilename(replies map[string]Reply) *Stub {
	return &Stub{handler: func(req llm.Request, _ int) Reply {
		if req.Attachment == nil {
			return Reply{Err: fmt.Errorf("llmtest: request without attachment")}
		}
		r, ok := replies[req.Attachment.Filename]
		if !ok {
			return Reply{Err: fmt.Errorf("llmtest: no reply for %q", req.Attachment.Filename)}
		}
		return r
	}}
}

// Func replies with an arbitrary function.
func Func(fn func(req llm.Request) (string, error)) *Stub {
	return &Stub{handler: func(req llm.Request, _ int) Reply {
		text, err := fn(req)
		return Reply{Text: text, Err: err}
	}}
}

func (s *Stub) Generate(ctx context.Context, req llm.Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	n := len(s.calls)
	s.calls = append(s.calls, req)
	s.mu.Unlock()

	r := s.handler(req, n)
	return r.Text, r.Err
}

// Calls returns a copy of the recorded requests.
func (s *Stub) Calls() []llm.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]llm.Request(nil), s.calls...)
}
