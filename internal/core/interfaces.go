package core

import "context"

// LLMClient is the minimal completion interface pipeline stages use.
// The implementation owns context-window fitting and per-call timeouts.
type LLMClient interface {
	Complete(ctx context.Context, role RoleConfig, prompt string) (string, error)
}

// Embedder produces a fixed-length vector for a text. Deterministic for
// identical input.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ChatArchive is the append-only store of processed queries. Records are never
// updated or deleted, so concurrent readers need no coordination with writers.
type ChatArchive interface {
	Append(ctx context.Context, rec ChatRecord) error
	FindByUser(ctx context.Context, userID string) ([]ChatRecord, error)
	FindAllowedWithEmbedding(ctx context.Context, userID string) ([]ChatRecord, error)
	FindBlocked(ctx context.Context) ([]ChatRecord, error)
}

// UserStore looks up and creates accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, userID string) (*User, error)
}
