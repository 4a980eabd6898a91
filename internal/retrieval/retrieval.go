// Package retrieval ranks a user's past allowed interactions by semantic
// similarity to the current query.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"askpilot/internal/core"
	"askpilot/internal/embedding"
)

// DefaultTopK is how many memories one request borrows from the archive.
const DefaultTopK = 3

// Retriever fetches and ranks archive records for retrieval-augmented context.
type Retriever struct {
	archive  core.ChatArchive
	embedder core.Embedder
	logger   *zap.Logger
}

// New creates a retriever over the given archive and embedder.
func New(archive core.ChatArchive, embedder core.Embedder, logger *zap.Logger) *Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{archive: archive, embedder: embedder, logger: logger}
}

// Retrieve embeds the query, scores every stored ALLOWED record with an
// embedding by cosine similarity, and returns the top k in descending score
// order. The sort is stable: ties keep archive order. A user with no prior
// allowed interactions yields an empty result, not an error.
func (r *Retriever) Retrieve(ctx context.Context, userID, query string, k int) ([]core.RetrievedMemory, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	queryEmb, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	records, err := r.archive.FindAllowedWithEmbedding(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load archive records: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	type scored struct {
		score  float64
		memory core.RetrievedMemory
	}
	candidates := make([]scored, 0, len(records))
	for _, rec := range records {
		score, err := embedding.CosineSimilarity(queryEmb, rec.Embedding)
		if err != nil {
			// Dimension mismatch from an older embedding model; skip.
			r.logger.Warn("skipping record with incompatible embedding",
				zap.String("user_id", userID), zap.Error(err))
			continue
		}
		candidates = append(candidates, scored{
			score: score,
			memory: core.RetrievedMemory{
				Query:     rec.Query,
				Response:  rec.Response,
				Embedding: rec.Embedding,
			},
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}

	memories := make([]core.RetrievedMemory, len(candidates))
	for i, c := range candidates {
		memories[i] = c.memory
	}

	r.logger.Debug("retrieved memories",
		zap.String("user_id", userID),
		zap.Int("candidates", len(records)),
		zap.Int("returned", len(memories)))

	return memories, nil
}

// FormatMemories renders retrieved memories as the past Q/A block fed to the
// explainer and follow-up prompts.
func FormatMemories(memories []core.RetrievedMemory) string {
	blocks := make([]string, 0, len(memories))
	for _, m := range memories {
		blocks = append(blocks, fmt.Sprintf("Past Q: %s\nPast A: %s", m.Query, m.Response))
	}
	return strings.Join(blocks, "\n\n")
}
