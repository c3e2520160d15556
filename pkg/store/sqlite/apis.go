package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/getmockd/apisim/pkg/mock"
	"github.com/getmockd/apisim/pkg/store"
)

const apiColumns = `id, collection_id, method, endpoint, status_code, response_type, response_body, delay_ms, created_at, updated_at`

// CreateAPI inserts a after checking the collection exists and that no
// other API in it uses the same method and endpoint.
func (s *Store) CreateAPI(ctx context.Context, a *mock.API) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		ok, err := exists(ctx, tx, `SELECT 1 FROM collections WHERE id = ?`, a.CollectionID)
		if err != nil {
			return fmt.Errorf("checking collection: %w", err)
		}
		if !ok {
			return fmt.Errorf("collection %s: %w", a.CollectionID, store.ErrNotFound)
		}
		if err := checkCollision(ctx, tx, a); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO apis (`+apiColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.CollectionID, string(a.Method), a.Endpoint, a.StatusCode,
			string(a.ResponseType), a.ResponseBody, a.DelayMs, formatTime(a.CreatedAt), nullTime(a))
		if err != nil {
			return fmt.Errorf("inserting api: %w", mapErr(err))
		}
		return nil
	})
}

// GetAPI returns an API by ID.
func (s *Store) GetAPI(ctx context.Context, id string) (*mock.API, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+apiColumns+` FROM apis WHERE id = ?`, id)
	a, err := scanAPI(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return a, nil
}

// ListAPIs returns a collection's APIs, newest first.
func (s *Store) ListAPIs(ctx context.Context, collectionID string) ([]*mock.API, error) {
	return s.queryAPIs(ctx,
		`SELECT `+apiColumns+` FROM apis WHERE collection_id = ? ORDER BY created_at DESC, rowid DESC`,
		collectionID)
}

// APIsByCollectionMethod returns matching APIs in creation order.
func (s *Store) APIsByCollectionMethod(ctx context.Context, collectionID string, method mock.Method) ([]*mock.API, error) {
	return s.queryAPIs(ctx,
		`SELECT `+apiColumns+` FROM apis WHERE collection_id = ? AND method = ? ORDER BY rowid ASC`,
		collectionID, string(method))
}

// UpdateAPI replaces an API in place, keeping its rowid and so its
// position in creation order.
func (s *Store) UpdateAPI(ctx context.Context, a *mock.API) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		ok, err := exists(ctx, tx, `SELECT 1 FROM apis WHERE id = ?`, a.ID)
		if err != nil {
			return fmt.Errorf("checking api: %w", err)
		}
		if !ok {
			return store.ErrNotFound
		}
		if err := checkCollision(ctx, tx, a); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE apis SET method = ?, endpoint = ?, status_code = ?, response_type = ?,
				response_body = ?, delay_ms = ?, updated_at = ? WHERE id = ?`,
			string(a.Method), a.Endpoint, a.StatusCode, string(a.ResponseType),
			a.ResponseBody, a.DelayMs, nullTime(a), a.ID)
		if err != nil {
			return fmt.Errorf("updating api: %w", mapErr(err))
		}
		return nil
	})
}

// DeleteAPI removes an API.
func (s *Store) DeleteAPI(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return deleteByID(ctx, tx, "apis", id)
	})
}

// checkCollision fails with ErrConflict when another API in a's collection
// has the same method and endpoint.
func checkCollision(ctx context.Context, tx *sql.Tx, a *mock.API) error {
	taken, err := exists(ctx, tx,
		`SELECT 1 FROM apis WHERE collection_id = ? AND method = ? AND endpoint = ? AND id <> ?`,
		a.CollectionID, string(a.Method), a.Endpoint, a.ID)
	if err != nil {
		return fmt.Errorf("checking api collision: %w", err)
	}
	if taken {
		return fmt.Errorf("%s %s: %w", a.Method, a.Endpoint, store.ErrConflict)
	}
	return nil
}

func nullTime(a *mock.API) sql.NullString {
	if a.UpdatedAt == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*a.UpdatedAt), Valid: true}
}

func (s *Store) queryAPIs(ctx context.Context, query string, args ...any) ([]*mock.API, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying apis: %w", err)
	}
	defer rows.Close()

	var out []*mock.API
	for rows.Next() {
		a, err := scanAPI(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAPI(r rowScanner) (*mock.API, error) {
	var (
		a                mock.API
		method, respType string
		created          string
		updated          sql.NullString
	)
	err := r.Scan(&a.ID, &a.CollectionID, &method, &a.Endpoint, &a.StatusCode,
		&respType, &a.ResponseBody, &a.DelayMs, &created, &updated)
	if err != nil {
		return nil, err
	}
	a.Method = mock.Method(method)
	a.ResponseType = mock.ResponseType(respType)

	if a.CreatedAt, err = parseTime(created); err != nil {
		return nil, fmt.Errorf("api %s created_at: %w", a.ID, err)
	}
	if updated.Valid {
		t, err := parseTime(updated.String)
		if err != nil {
			return nil, fmt.Errorf("api %s updated_at: %w", a.ID, err)
		}
		a.UpdatedAt = &t
	}
	return &a, nil
}
