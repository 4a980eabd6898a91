// Package core defines the domain types and collaborator interfaces shared by
// the askpilot pipeline: chat records, ask requests, agent role configuration,
// and the tagged result returned by the orchestrator.
package core

import "time"

// Verdict is the outcome tag of a processed query.
type Verdict string

const (
	VerdictAllowed Verdict = "ALLOWED"
	VerdictBlocked Verdict = "BLOCKED"
	VerdictError   Verdict = "ERROR"
)

// ChatRecord is the canonical, append-only record of one /ask invocation.
// Response, Confidence, and Embedding are only populated for ALLOWED records;
// Embedding only when the full research pipeline produced the answer.
type ChatRecord struct {
	UserID     string
	Query      string
	Verdict    Verdict
	Response   string
	Confidence *int
	Embedding  []float32
	CreatedAt  time.Time
}

// Turn roles in conversation history supplied by the caller.
const (
	TurnRoleUser = "user"
	TurnRoleAI   = "ai"
)

// ConversationTurn is one prior turn supplied as history context.
// Turns are not persisted; the canonical record is the ChatRecord.
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AskRequest is one orchestration call.
type AskRequest struct {
	Topic   string             `json:"topic"`
	UserID  string             `json:"userId"`
	History []ConversationTurn `json:"history"`
}

// RetrievedMemory is a past allowed interaction borrowed from the archive for
// the duration of one request.
type RetrievedMemory struct {
	Query     string
	Response  string
	Embedding []float32
}

// User is an account in the user store.
type User struct {
	UserID       string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// RoleConfig binds a named agent capability to a model configuration.
// Roles are stateless across requests.
type RoleConfig struct {
	Name            string
	Model           string
	Temperature     float64
	MaxOutputTokens int
	WebSearch       bool
}
