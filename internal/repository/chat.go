package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkwell-labs/inkwell/internal/domain"
	"github.com/inkwell-labs/inkwell/internal/pagination"
	"github.com/inkwell-labs/inkwell/internal/service"
)

type ChatRepository struct {
	db dbtx
}

func NewChatRepository(pool *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{db: pool}
}

func NewChatRepositoryWithTx(tx pgx.Tx) *ChatRepository {
	return &ChatRepository{db: tx}
}

func (r *ChatRepository) Create(ctx context.Context, t *domain.ChatTurn) error {
	metadata, err := json.Marshal(t.Metadata)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO chat_history (id, notebook_id, user_prompt, ai_response, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.NotebookID, t.UserPrompt, t.AIResponse, metadata, t.CreatedAt,
	)
	return err
}

func (r *ChatRepository) GetByID(ctx context.Context, id string) (*domain.ChatTurn, error) {
	var t domain.ChatTurn
	var metadata []byte
	err := r.db.QueryRow(ctx,
		`SELECT id, notebook_id, user_prompt, ai_response, metadata, created_at
		 FROM chat_history WHERE id = $1`,
		id,
	).Scan(&t.ID, &t.NotebookID, &t.UserPrompt, &t.AIResponse, &metadata, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrChatTurnNotFound
		}
		return nil, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &t.Metadata); err != nil {
			return nil, err
		}
	}
	return &t, nil
}

func (r *ChatRepository) ListByNotebook(ctx context.Context, notebookID string, cursor *pagination.Cursor, limit int) (*service.ChatPageResult, error) {
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT id, notebook_id, user_prompt, ai_response, metadata, created_at
			 FROM chat_history
			 WHERE notebook_id = $1 AND (created_at, id) < ($2, $3)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $4`,
			notebookID, cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT id, notebook_id, user_prompt, ai_response, metadata, created_at
			 FROM chat_history
			 WHERE notebook_id = $1
			 ORDER BY created_at DESC, id DESC
			 LIMIT $2`,
			notebookID, limit+1,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.ChatTurn
	for rows.Next() {
		var t domain.ChatTurn
		var metadata []byte
		if err := rows.Scan(&t.ID, &t.NotebookID, &t.UserPrompt, &t.AIResponse, &metadata, &t.CreatedAt); err != nil {
			return nil, err
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &t.Metadata); err != nil {
				return nil, err
			}
		}
		items = append(items, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(last.ID, last.CreatedAt)
	}

	return &service.ChatPageResult{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

// Delete removes one chat turn. Linked notes survive with their link cleared
// via ON DELETE SET NULL.
func (r *ChatRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM chat_history WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrChatTurnNotFound
	}
	return nil
}

func (r *ChatRepository) DeleteByNotebook(ctx context.Context, notebookID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM chat_history WHERE notebook_id = $1`, notebookID)
	return err
}
