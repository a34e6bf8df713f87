// Package stage implements the seven pipeline stages: grounding, rhetorical
// segmentation, claim extraction, evidence linking, assumption mining, gap
// analysis and validation synthesis. Each stage is independently
// fault-tolerant: a bad model response costs the affected item, never the
// run.
package stage

import (
	"context"
	"fmt"

	"github.com/scarflab/scarf/internal/llm"
)

// Gateway is the slice of the model gateway the stages need.
type Gateway interface {
	Call(ctx context.Context, prompt string, opts ...llm.CallOption) (string, error)
}

// ProgressFunc receives human-readable progress messages from a stage.
// A nil ProgressFunc is valid and discards everything.
type ProgressFunc func(msg string)

func (f ProgressFunc) reportf(format string, args ...interface{}) {
	if f != nil {
		f(fmt.Sprintf(format, args...))
	}
}

// preview truncates section content for inclusion in a prompt.
func preview(content string, max int) string {
	if max <= 0 || len(content) <= max {
		return content
	}
	return content[:max]
}
