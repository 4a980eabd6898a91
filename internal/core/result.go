package core

// AskStatus tags the outcome of an orchestration call. Failures are values,
// not panics: the HTTP boundary maps each status to a response shape.
type AskStatus int

const (
	// AskSuccess: the pipeline produced a complete answer.
	AskSuccess AskStatus = iota
	// AskSafetyRejected: the safety gate refused the query. Not a system fault.
	AskSafetyRejected
	// AskPipelineFailure: retrieval, agent execution, or persistence failed.
	// The cause is logged, never surfaced to the caller.
	AskPipelineFailure
)

// AskResult is the tagged union returned by the orchestrator. Either a
// complete answer or an error message; never partial results.
type AskResult struct {
	Status AskStatus

	// Populated on AskSuccess.
	Topic               string
	Answer              string
	Confidence          *int
	FollowupUsedHistory bool

	// Populated on rejection and failure: the caller-facing text.
	Message string
}
