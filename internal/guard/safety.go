// Package guard contains the decision gates applied before the agent pipeline
// runs: the LLM-backed safety gate and the pure conversation classifier.
package guard

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"askpilot/internal/core"
)

const safetyPrompt = "Decide whether the following user request is SAFE or UNSAFE.\n" +
	"Unsafe includes illegal activity, violence, hacking, exploitation, hate, sexual content, " +
	"or actionable medical/legal advice.\n" +
	"Respond with ONLY one word: SAFE or UNSAFE.\n" +
	"Request: %s"

// SafetyGate classifies queries as safe or unsafe via a guard model.
type SafetyGate struct {
	llm    core.LLMClient
	role   core.RoleConfig
	logger *zap.Logger
}

// NewSafetyGate creates a safety gate bound to the guard role.
func NewSafetyGate(llm core.LLMClient, role core.RoleConfig, logger *zap.Logger) *SafetyGate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SafetyGate{llm: llm, role: role, logger: logger}
}

// IsSafe runs a single guard-model call with a fixed classification prompt.
// Only a normalized "SAFE" verdict passes; any other output, including
// malformed or empty, is treated as unsafe (fail closed). A transport error is
// returned so the caller can distinguish a refusal from a system fault.
func (g *SafetyGate) IsSafe(ctx context.Context, query string) (bool, error) {
	out, err := g.llm.Complete(ctx, g.role, fmt.Sprintf(safetyPrompt, query))
	if err != nil {
		return false, fmt.Errorf("safety check failed: %w", err)
	}

	verdict := strings.ToUpper(strings.TrimSpace(out))
	safe := verdict == "SAFE"
	if !safe {
		g.logger.Info("query blocked by safety gate", zap.String("verdict", verdict))
	}
	return safe, nil
}
