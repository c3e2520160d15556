package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/getmockd/apisim/pkg/mock"
	"github.com/getmockd/apisim/pkg/store"
)

const projectColumns = `id, name, slug, description, created_at`

// CreateProject inserts p, rejecting a duplicate slug.
func (s *Store) CreateProject(ctx context.Context, p *mock.Project) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		taken, err := exists(ctx, tx, `SELECT 1 FROM projects WHERE slug = ?`, p.Slug)
		if err != nil {
			return fmt.Errorf("checking project slug: %w", err)
		}
		if taken {
			return fmt.Errorf("project slug %q: %w", p.Slug, store.ErrConflict)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO projects (`+projectColumns+`) VALUES (?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.Slug, p.Description, formatTime(p.CreatedAt))
		if err != nil {
			return fmt.Errorf("inserting project: %w", mapErr(err))
		}
		return nil
	})
}

// GetProject returns a project by ID.
func (s *Store) GetProject(ctx context.Context, id string) (*mock.Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

// ListProjects returns all projects, newest first.
func (s *Store) ListProjects(ctx context.Context) ([]*mock.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var out []*mock.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeleteProject removes a project with its collections and their APIs.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM apis WHERE collection_id IN (SELECT id FROM collections WHERE project_id = ?)`, id); err != nil {
			return fmt.Errorf("deleting project apis: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM collections WHERE project_id = ?`, id); err != nil {
			return fmt.Errorf("deleting project collections: %w", err)
		}
		return deleteByID(ctx, tx, "projects", id)
	})
}

func scanProject(r rowScanner) (*mock.Project, error) {
	var (
		p       mock.Project
		created string
	)
	if err := r.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &created); err != nil {
		return nil, err
	}
	t, err := parseTime(created)
	if err != nil {
		return nil, fmt.Errorf("project %s created_at: %w", p.ID, err)
	}
	p.CreatedAt = t
	return &p, nil
}

// deleteByID deletes one row from table, returning ErrNotFound when no row
// matched. table is always a constant.
func deleteByID(ctx context.Context, tx *sql.Tx, table, id string) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
