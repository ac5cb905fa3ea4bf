package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkwell-labs/inkwell/internal/domain"
	"github.com/inkwell-labs/inkwell/internal/pagination"
	"github.com/inkwell-labs/inkwell/internal/service"
)

type NoteRepository struct {
	db dbtx
}

func NewNoteRepository(pool *pgxpool.Pool) *NoteRepository {
	return &NoteRepository{db: pool}
}

func NewNoteRepositoryWithTx(tx pgx.Tx) *NoteRepository {
	return &NoteRepository{db: tx}
}

func (r *NoteRepository) Create(ctx context.Context, n *domain.Note) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO notes (id, notebook_id, content, source_type, linked_chat_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		n.ID, n.NotebookID, n.Content, n.SourceType, nullableString(n.LinkedChatID), n.CreatedAt, n.UpdatedAt,
	)
	return err
}

func (r *NoteRepository) GetByID(ctx context.Context, id string) (*domain.Note, error) {
	var n domain.Note
	var linkedChatID *string
	err := r.db.QueryRow(ctx,
		`SELECT id, notebook_id, content, source_type, linked_chat_id, created_at, updated_at
		 FROM notes WHERE id = $1`,
		id,
	).Scan(&n.ID, &n.NotebookID, &n.Content, &n.SourceType, &linkedChatID, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoteNotFound
		}
		return nil, err
	}
	if linkedChatID != nil {
		n.LinkedChatID = *linkedChatID
	}
	return &n, nil
}

func (r *NoteRepository) ListByNotebook(ctx context.Context, notebookID string, cursor *pagination.Cursor, limit int) (*service.NotePageResult, error) {
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT id, notebook_id, content, source_type, linked_chat_id, created_at, updated_at
			 FROM notes
			 WHERE notebook_id = $1 AND (updated_at, id) < ($2, $3)
			 ORDER BY updated_at DESC, id DESC
			 LIMIT $4`,
			notebookID, cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT id, notebook_id, content, source_type, linked_chat_id, created_at, updated_at
			 FROM notes
			 WHERE notebook_id = $1
			 ORDER BY updated_at DESC, id DESC
			 LIMIT $2`,
			notebookID, limit+1,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.Note
	for rows.Next() {
		var n domain.Note
		var linkedChatID *string
		if err := rows.Scan(&n.ID, &n.NotebookID, &n.Content, &n.SourceType, &linkedChatID, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		if linkedChatID != nil {
			n.LinkedChatID = *linkedChatID
		}
		items = append(items, &n)
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
		nextCursor = pagination.EncodeCursor(last.ID, last.UpdatedAt)
	}

	return &service.NotePageResult{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

func (r *NoteRepository) Update(ctx context.Context, n *domain.Note) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE notes SET content = $1, updated_at = $2 WHERE id = $3`,
		n.Content, n.UpdatedAt, n.ID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}

func (r *NoteRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}
