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

type NotebookRepository struct {
	db dbtx
}

func NewNotebookRepository(pool *pgxpool.Pool) *NotebookRepository {
	return &NotebookRepository{db: pool}
}

func NewNotebookRepositoryWithTx(tx pgx.Tx) *NotebookRepository {
	return &NotebookRepository{db: tx}
}

func (r *NotebookRepository) Create(ctx context.Context, n *domain.Notebook) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO notebooks (id, user_id, title, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		n.ID, n.UserID, n.Title, n.CreatedAt, n.UpdatedAt,
	)
	return err
}

// GetByIDForUser looks up a notebook scoped to its owner. A notebook owned by
// another user is indistinguishable from a missing one.
func (r *NotebookRepository) GetByIDForUser(ctx context.Context, id, userID string) (*domain.Notebook, error) {
	var n domain.Notebook
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, title, created_at, updated_at
		 FROM notebooks WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&n.ID, &n.UserID, &n.Title, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotebookNotFound
		}
		return nil, err
	}
	return &n, nil
}

func (r *NotebookRepository) ListByUser(ctx context.Context, userID string, cursor *pagination.Cursor, limit int) (*service.NotebookPageResult, error) {
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT id, user_id, title, created_at, updated_at
			 FROM notebooks
			 WHERE user_id = $1 AND (updated_at, id) < ($2, $3)
			 ORDER BY updated_at DESC, id DESC
			 LIMIT $4`,
			userID, cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT id, user_id, title, created_at, updated_at
			 FROM notebooks
			 WHERE user_id = $1
			 ORDER BY updated_at DESC, id DESC
			 LIMIT $2`,
			userID, limit+1,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.Notebook
	for rows.Next() {
		var n domain.Notebook
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
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

	return &service.NotebookPageResult{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

func (r *NotebookRepository) Update(ctx context.Context, n *domain.Notebook) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE notebooks SET title = $1, updated_at = $2 WHERE id = $3`,
		n.Title, n.UpdatedAt, n.ID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrNotebookNotFound
	}
	return nil
}

// Delete removes a notebook. Documents, embeddings, chat history, and notes
// cascade via foreign keys.
func (r *NotebookRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM notebooks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrNotebookNotFound
	}
	return nil
}
