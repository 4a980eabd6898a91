package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"askpilot/internal/core"
)

// PipelineResult holds the per-stage outputs of one pipeline run.
type PipelineResult struct {
	Outputs map[Stage]string
}

// Answer returns the user-facing answer: the explainer output in full mode,
// the follow-up output in follow-up mode.
func (r *PipelineResult) Answer() string {
	if out, ok := r.Outputs[StageExplain]; ok {
		return out
	}
	return r.Outputs[StageFollowup]
}

// FactCheckReport returns the fact-check output, or "" when the stage did not run.
func (r *PipelineResult) FactCheckReport() string {
	return r.Outputs[StageFactCheck]
}

// Executor runs task pipelines strictly sequentially against the execution
// engine. Sequencing is deliberate: later stages consume earlier outputs, and
// serialized calls keep provider rate limits predictable.
type Executor struct {
	llm    core.LLMClient
	logger *zap.Logger
}

// NewExecutor creates a pipeline executor.
func NewExecutor(llm core.LLMClient, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{llm: llm, logger: logger}
}

// Run executes the task list in order. Every stage after the first receives
// the accumulated outputs of the preceding stages ahead of its own
// instructions, so the fact checker sees both the research items and the
// explanation it must grade. Any stage error aborts the whole run.
func (e *Executor) Run(ctx context.Context, tasks []TaskSpec) (*PipelineResult, error) {
	result := &PipelineResult{Outputs: make(map[Stage]string, len(tasks))}

	var prior []string
	for i, task := range tasks {
		prompt := task.Description
		if len(prior) > 0 {
			prompt = "Output of the preceding pipeline stages:\n\n" +
				strings.Join(prior, "\n\n---\n\n") +
				"\n\n" + task.Description
		}

		start := time.Now()
		out, err := e.llm.Complete(ctx, task.Role, prompt)
		if err != nil {
			return nil, fmt.Errorf("stage %s (task %d/%d) failed: %w", task.Stage, i+1, len(tasks), err)
		}

		e.logger.Debug("pipeline stage complete",
			zap.Stringer("stage", task.Stage),
			zap.String("role", task.Role.Name),
			zap.Duration("elapsed", time.Since(start)),
			zap.Int("output_len", len(out)))

		result.Outputs[task.Stage] = out
		prior = append(prior, out)
	}

	return result, nil
}
