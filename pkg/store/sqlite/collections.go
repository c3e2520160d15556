package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/getmockd/apisim/pkg/mock"
	"github.com/getmockd/apisim/pkg/store"
)

const collectionColumns = `id, project_id, name, slug, created_at`

// CreateCollection inserts c under an existing project.
func (s *Store) CreateCollection(ctx context.Context, c *mock.Collection) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		ok, err := exists(ctx, tx, `SELECT 1 FROM projects WHERE id = ?`, c.ProjectID)
		if err != nil {
			return fmt.Errorf("checking project: %w", err)
		}
		if !ok {
			return fmt.Errorf("project %s: %w", c.ProjectID, store.ErrNotFound)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO collections (`+collectionColumns+`) VALUES (?, ?, ?, ?, ?)`,
			c.ID, c.ProjectID, c.Name, c.Slug, formatTime(c.CreatedAt))
		if err != nil {
			return fmt.Errorf("inserting collection: %w", mapErr(err))
		}
		return nil
	})
}

// GetCollection returns a collection by ID.
func (s *Store) GetCollection(ctx context.Context, id string) (*mock.Collection, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+collectionColumns+` FROM collections WHERE id = ?`, id)
	c, err := scanCollection(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return c, nil
}

// ListCollections returns a project's collections, newest first.
func (s *Store) ListCollections(ctx context.Context, projectID string) ([]*mock.Collection, error) {
	return s.queryCollections(ctx,
		`SELECT `+collectionColumns+` FROM collections WHERE project_id = ? ORDER BY created_at DESC, rowid DESC`,
		projectID)
}

// CollectionsBySlug returns collections with slug in creation order.
func (s *Store) CollectionsBySlug(ctx context.Context, slug string) ([]*mock.Collection, error) {
	return s.queryCollections(ctx,
		`SELECT `+collectionColumns+` FROM collections WHERE slug = ? ORDER BY rowid ASC`,
		slug)
}

// DeleteCollection removes a collection and its APIs.
func (s *Store) DeleteCollection(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM apis WHERE collection_id = ?`, id); err != nil {
			return fmt.Errorf("deleting collection apis: %w", err)
		}
		return deleteByID(ctx, tx, "collections", id)
	})
}

func (s *Store) queryCollections(ctx context.Context, query string, args ...any) ([]*mock.Collection, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying collections: %w", err)
	}
	defer rows.Close()

	var out []*mock.Collection
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCollection(r rowScanner) (*mock.Collection, error) {
	var (
		c       mock.Collection
		created string
	)
	if err := r.Scan(&c.ID, &c.ProjectID, &c.Name, &c.Slug, &created); err != nil {
		return nil, err
	}
	t, err := parseTime(created)
	if err != nil {
		return nil, fmt.Errorf("collection %s created_at: %w", c.ID, err)
	}
	c.CreatedAt = t
	return &c, nil
}
