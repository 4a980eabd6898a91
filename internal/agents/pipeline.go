package agents

import "askpilot/internal/core"

// Stage identifies one step of the task pipeline.
type Stage int

const (
	StageFollowup Stage = iota
	StageResearch
	StageExplain
	StageFactCheck
)

// String returns the stage name for logging.
func (s Stage) String() string {
	switch s {
	case StageFollowup:
		return "followup"
	case StageResearch:
		return "research"
	case StageExplain:
		return "explain"
	case StageFactCheck:
		return "fact_check"
	default:
		return "unknown"
	}
}

// Plan is the transition function from the request classification to the
// ordered stage list. Follow-up mode short-circuits to a single explainer
// task and never fact-checks, regardless of topic risk.
func Plan(followup, factCheck bool) []Stage {
	if followup {
		return []Stage{StageFollowup}
	}
	stages := []Stage{StageResearch, StageExplain}
	if factCheck {
		stages = append(stages, StageFactCheck)
	}
	return stages
}

// TaskSpec is one schedulable unit: a prompt template bound to the role that
// executes it, plus a short description of the expected output.
type TaskSpec struct {
	Stage          Stage
	Role           core.RoleConfig
	Description    string
	ExpectedOutput string
}

// Inputs is the per-request material task prompts are built from.
type Inputs struct {
	Topic       string
	MemoryText  string
	HistoryText string
}

// BuildTasks materializes the stage list into concrete task specs. Stage
// descriptions are static per request; runtime outputs of earlier stages are
// supplied by the executor, not baked into descriptions.
func BuildTasks(stages []Stage, roles Roles, in Inputs) []TaskSpec {
	tasks := make([]TaskSpec, 0, len(stages))
	for _, stage := range stages {
		switch stage {
		case StageFollowup:
			tasks = append(tasks, TaskSpec{
				Stage:          stage,
				Role:           roles.Explainer,
				Description:    followupPrompt(in.MemoryText, in.HistoryText, in.Topic),
				ExpectedOutput: "Context-aware follow-up answer.",
			})
		case StageResearch:
			tasks = append(tasks, TaskSpec{
				Stage:          stage,
				Role:           roles.Researcher,
				Description:    researchPrompt(in.Topic),
				ExpectedOutput: "Exactly 3 fact items, each with Fact, Evidence, and Source URL.",
			})
		case StageExplain:
			tasks = append(tasks, TaskSpec{
				Stage:          stage,
				Role:           roles.Explainer,
				Description:    explainPrompt(in.MemoryText, in.HistoryText, in.Topic),
				ExpectedOutput: "A helpful, context-aware answer.",
			})
		case StageFactCheck:
			tasks = append(tasks, TaskSpec{
				Stage:          stage,
				Role:           roles.FactChecker,
				Description:    factCheckPrompt,
				ExpectedOutput: "Explanation + Fact Check (3 claims) + Confidence as a single number.",
			})
		}
	}
	return tasks
}
