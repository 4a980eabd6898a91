package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"askpilot/internal/core"
)

// Append writes one chat record. Records are append-only: there is no update
// or delete path. A zero CreatedAt is stamped with the current UTC time.
func (s *Store) Append(ctx context.Context, rec core.ChatRecord) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var embeddingJSON *string
	if len(rec.Embedding) > 0 {
		data, err := json.Marshal(rec.Embedding)
		if err != nil {
			return fmt.Errorf("failed to encode embedding: %w", err)
		}
		str := string(data)
		embeddingJSON = &str
	}

	var response *string
	if rec.Response != "" {
		response = &rec.Response
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chats (user_id, query, verdict, response, confidence, embedding, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.UserID, rec.Query, string(rec.Verdict), response, rec.Confidence,
		embeddingJSON, createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to append chat record: %w", err)
	}
	return nil
}

// FindByUser returns all records for a user, newest first.
func (s *Store) FindByUser(ctx context.Context, userID string) ([]core.ChatRecord, error) {
	return s.queryChats(ctx,
		`SELECT user_id, query, verdict, response, confidence, embedding, created_at
		 FROM chats WHERE user_id = ? ORDER BY id DESC`, userID)
}

// FindAllowedWithEmbedding returns the user's ALLOWED records that carry an
// embedding, in insertion order. These are the retrieval candidates.
func (s *Store) FindAllowedWithEmbedding(ctx context.Context, userID string) ([]core.ChatRecord, error) {
	return s.queryChats(ctx,
		`SELECT user_id, query, verdict, response, confidence, embedding, created_at
		 FROM chats WHERE user_id = ? AND verdict = ? AND embedding IS NOT NULL ORDER BY id ASC`,
		userID, string(core.VerdictAllowed))
}

// FindBlocked returns every BLOCKED record, newest first.
func (s *Store) FindBlocked(ctx context.Context) ([]core.ChatRecord, error) {
	return s.queryChats(ctx,
		`SELECT user_id, query, verdict, response, confidence, embedding, created_at
		 FROM chats WHERE verdict = ? ORDER BY id DESC`, string(core.VerdictBlocked))
}

func (s *Store) queryChats(ctx context.Context, query string, args ...interface{}) ([]core.ChatRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("chat query failed: %w", err)
	}
	defer rows.Close()

	var records []core.ChatRecord
	for rows.Next() {
		var (
			rec        core.ChatRecord
			verdict    string
			response   sql.NullString
			confidence sql.NullInt64
			embedding  sql.NullString
			createdAt  string
		)
		if err := rows.Scan(&rec.UserID, &rec.Query, &verdict, &response,
			&confidence, &embedding, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat record: %w", err)
		}

		rec.Verdict = core.Verdict(verdict)
		if response.Valid {
			rec.Response = response.String
		}
		if confidence.Valid {
			v := int(confidence.Int64)
			rec.Confidence = &v
		}
		if embedding.Valid && embedding.String != "" {
			if err := json.Unmarshal([]byte(embedding.String), &rec.Embedding); err != nil {
				return nil, fmt.Errorf("failed to decode embedding: %w", err)
			}
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)

		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("chat row iteration failed: %w", err)
	}
	return records, nil
}
