package stage

import (
	"context"
	"errors"
	"testing"

	"github.com/scarflab/scarf/internal/llm"
	"go.uber.org/zap"
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// stubGateway returns canned responses in call order and records every
// prompt and option set it saw.
type stubGateway struct {
	responses []stubCall
	prompts   []string
	opts      [][]llm.CallOption
}

type stubCall struct {
	text string
	err  error
}

func (g *stubGateway) Call(ctx context.Context, prompt string, opts ...llm.CallOption) (string, error) {
	g.prompts = append(g.prompts, prompt)
	g.opts = append(g.opts, opts)
	if len(g.responses) == 0 {
		return "", errors.New("stub exhausted")
	}
	r := g.responses[0]
	g.responses = g.responses[1:]
	return r.text, r.err
}

// failingGateway always errors.
type failingGateway struct{ err error }

func (g *failingGateway) Call(ctx context.Context, prompt string, opts ...llm.CallOption) (string, error) {
	return "", g.err
}

func collectProgress(t *testing.T) (ProgressFunc, *[]string) {
	t.Helper()
	var msgs []string
	return func(msg string) { msgs = append(msgs, msg) }, &msgs
}
