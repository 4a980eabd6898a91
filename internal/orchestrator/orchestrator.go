// Package orchestrator is the single entry point for query processing. It
// applies the safety gate, assembles retrieval-augmented context, classifies
// the request, runs the agent pipeline, extracts confidence, and persists
// exactly one chat record per call.
package orchestrator

import (
	"context"

	"go.uber.org/zap"

	"askpilot/internal/agents"
	"askpilot/internal/core"
	"askpilot/internal/guard"
	"askpilot/internal/retrieval"
)

// RefusalMessage is the fixed text returned for queries the safety gate blocks.
const RefusalMessage = "❌ I can’t help with that request. " +
	"I can help with safe and legal alternatives if you want."

// InternalErrorMessage is the generic text returned on any pipeline failure.
// The underlying cause is logged, never sent to the caller.
const InternalErrorMessage = "Internal server error"

// Orchestrator wires the decision gates, retrieval, pipeline execution, and
// persistence into the ask sequence. All collaborators are injected; the
// orchestrator holds no mutable state, so concurrent asks are independent.
type Orchestrator struct {
	gate      *guard.SafetyGate
	retriever *retrieval.Retriever
	executor  *agents.Executor
	roles     agents.Roles
	embedder  core.Embedder
	archive   core.ChatArchive
	logger    *zap.Logger
}

// New creates an orchestrator.
func New(
	gate *guard.SafetyGate,
	retriever *retrieval.Retriever,
	executor *agents.Executor,
	roles agents.Roles,
	embedder core.Embedder,
	archive core.ChatArchive,
	logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		gate:      gate,
		retriever: retriever,
		executor:  executor,
		roles:     roles,
		embedder:  embedder,
		archive:   archive,
		logger:    logger,
	}
}

// Ask processes one request end to end. Every call appends exactly one chat
// record before returning: BLOCKED on a safety refusal, ERROR on any pipeline
// failure, ALLOWED on success. No partial results are ever returned.
func (o *Orchestrator) Ask(ctx context.Context, req core.AskRequest) core.AskResult {
	safe, err := o.gate.IsSafe(ctx, req.Topic)
	if err != nil {
		return o.fail(ctx, req, err)
	}
	if !safe {
		o.persist(ctx, core.ChatRecord{
			UserID:  req.UserID,
			Query:   req.Topic,
			Verdict: core.VerdictBlocked,
		})
		return core.AskResult{Status: core.AskSafetyRejected, Message: RefusalMessage}
	}

	memories, err := o.retriever.Retrieve(ctx, req.UserID, req.Topic, retrieval.DefaultTopK)
	if err != nil {
		return o.fail(ctx, req, err)
	}

	memoryText := retrieval.FormatMemories(memories)
	historyText := FormatHistory(req.History)

	followup := guard.IsFollowup(req.Topic) && historyText != ""
	factCheck := guard.NeedsFactCheck(req.Topic) && !followup

	o.logger.Debug("request classified",
		zap.String("user_id", req.UserID),
		zap.Bool("followup", followup),
		zap.Bool("fact_check", factCheck),
		zap.Int("memories", len(memories)))

	stages := agents.Plan(followup, factCheck)
	tasks := agents.BuildTasks(stages, o.roles, agents.Inputs{
		Topic:       req.Topic,
		MemoryText:  memoryText,
		HistoryText: historyText,
	})

	result, err := o.executor.Run(ctx, tasks)
	if err != nil {
		return o.fail(ctx, req, err)
	}

	answer := result.Answer()
	confidence := agents.ExtractConfidence(result.FactCheckReport())

	rec := core.ChatRecord{
		UserID:     req.UserID,
		Query:      req.Topic,
		Verdict:    core.VerdictAllowed,
		Response:   answer,
		Confidence: confidence,
	}
	if !followup {
		// Full-mode answers are embedded so later requests can retrieve them.
		emb, err := o.embedder.Embed(ctx, answer)
		if err != nil {
			return o.fail(ctx, req, err)
		}
		rec.Embedding = emb
	}

	if err := o.archive.Append(ctx, rec); err != nil {
		return o.fail(ctx, req, err)
	}

	return core.AskResult{
		Status:              core.AskSuccess,
		Topic:               req.Topic,
		Answer:              answer,
		Confidence:          confidence,
		FollowupUsedHistory: followup,
	}
}

// fail logs the cause, appends the ERROR record, and returns the generic
// failure result.
func (o *Orchestrator) fail(ctx context.Context, req core.AskRequest, cause error) core.AskResult {
	o.logger.Error("ask pipeline failed",
		zap.String("user_id", req.UserID),
		zap.Error(cause))
	o.persist(ctx, core.ChatRecord{
		UserID:  req.UserID,
		Query:   req.Topic,
		Verdict: core.VerdictError,
	})
	return core.AskResult{Status: core.AskPipelineFailure, Message: InternalErrorMessage}
}

// persist appends a record, logging rather than propagating a store failure:
// the caller-facing outcome is already decided at this point.
func (o *Orchestrator) persist(ctx context.Context, rec core.ChatRecord) {
	if err := o.archive.Append(ctx, rec); err != nil {
		o.logger.Error("failed to persist chat record",
			zap.String("user_id", rec.UserID),
			zap.String("verdict", string(rec.Verdict)),
			zap.Error(err))
	}
}
