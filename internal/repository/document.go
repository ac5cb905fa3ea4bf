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

type DocumentRepository struct {
	db dbtx
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: pool}
}

func NewDocumentRepositoryWithTx(tx pgx.Tx) *DocumentRepository {
	return &DocumentRepository{db: tx}
}

func (r *DocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO documents (id, notebook_id, filename, file_type, content, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		d.ID, d.NotebookID, d.Filename, d.FileType, d.Content, d.CreatedAt,
	)
	return err
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	var d domain.Document
	err := r.db.QueryRow(ctx,
		`SELECT id, notebook_id, filename, file_type, content, created_at
		 FROM documents WHERE id = $1`,
		id,
	).Scan(&d.ID, &d.NotebookID, &d.Filename, &d.FileType, &d.Content, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	return &d, nil
}

// GetNames returns every document id in the notebook mapped to its filename.
// Doubles as the ownership set for scope validation.
func (r *DocumentRepository) GetNames(ctx context.Context, notebookID string) (map[string]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, filename FROM documents WHERE notebook_id = $1`,
		notebookID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[string]string)
	for rows.Next() {
		var id, filename string
		if err := rows.Scan(&id, &filename); err != nil {
			return nil, err
		}
		names[id] = filename
	}
	return names, rows.Err()
}

func (r *DocumentRepository) ListByNotebook(ctx context.Context, notebookID string, cursor *pagination.Cursor, limit int) (*service.DocumentPageResult, error) {
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT id, notebook_id, filename, file_type, content, created_at
			 FROM documents
			 WHERE notebook_id = $1 AND (created_at, id) < ($2, $3)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $4`,
			notebookID, cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT id, notebook_id, filename, file_type, content, created_at
			 FROM documents
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

	var items []*domain.Document
	for rows.Next() {
		var d domain.Document
		if err := rows.Scan(&d.ID, &d.NotebookID, &d.Filename, &d.FileType, &d.Content, &d.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &d)
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

	return &service.DocumentPageResult{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

// Delete removes a document. Its embeddings and queued ingestion jobs cascade
// via foreign keys.
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}
