package store

import (
	"context"
	"fmt"

	"github.com/roach88/plusminus/internal/ir"
)

// GetLastSeq returns the highest seq number used in the store.
// Used for recovery to resume the logical clock from the correct position.
func (s *Store) GetLastSeq(ctx context.Context) (int64, error) {
	var maxSeq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM events
	`).Scan(&maxSeq)
	if err != nil {
		return 0, fmt.Errorf("get last seq: %w", err)
	}
	return maxSeq, nil
}

// ListFlowTokens returns all distinct flow tokens in the database.
// Used by the trace command to enumerate sessions.
// Results ordered by the first seq recorded under each token.
func (s *Store) ListFlowTokens(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT flow_token
		FROM events
		GROUP BY flow_token
		ORDER BY MIN(seq) ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list flow tokens: %w", err)
	}
	defer rows.Close()

	tokens := []string{}
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("scan flow token: %w", err)
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flow tokens: %w", err)
	}

	return tokens, nil
}

// ReadFlow returns the events recorded under one flow token ordered by seq.
func (s *Store) ReadFlow(ctx context.Context, flowToken string) ([]ir.Event, error) {
	return s.queryEvents(ctx, `
		SELECT seq, flow_token, block_id, block_type, kind, items, items_before, items_after
		FROM events
		WHERE flow_token = ?
		ORDER BY seq ASC
	`, flowToken)
}
