package shopping

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// timeLayout is fixed width so TEXT timestamps sort chronologically.
const timeLayout = "2006-01-02 15:04:05.000000000"

// Repository handles persistence of shopping lists and their consolidated view.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new shopping list repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Save stores a list and returns its ID, generating one when list.ID is empty.
func (r *Repository) Save(ctx context.Context, list *SavedList) (string, error) {
	if list.ID == "" {
		list.ID = uuid.NewString()
	}
	if list.CreatedAt.IsZero() {
		list.CreatedAt = time.Now().UTC()
	}

	originalJSON, err := json.Marshal(list.Result.Original)
	if err != nil {
		return "", fmt.Errorf("failed to marshal original shopping list: %w", err)
	}
	itemsJSON, err := json.Marshal(nonNil(list.Result.Items))
	if err != nil {
		return "", fmt.Errorf("failed to marshal consolidated items: %w", err)
	}
	droppedJSON, err := json.Marshal(nonNil(list.Result.Dropped))
	if err != nil {
		return "", fmt.Errorf("failed to marshal dropped items: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO shopping_lists (id, user_id, source, original, consolidated, dropped, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		list.ID, list.UserID, list.Source, string(originalJSON), string(itemsJSON), string(droppedJSON),
		list.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert shopping list: %w", err)
	}
	return list.ID, nil
}

// Get retrieves a saved list by ID.
func (r *Repository) Get(ctx context.Context, id string) (*SavedList, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, source, original, consolidated, dropped, created_at
		 FROM shopping_lists WHERE id = ?`, id)

	list, err := scanSavedList(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrListNotFound
		}
		return nil, fmt.Errorf("failed to get shopping list %s: %w", id, err)
	}
	return list, nil
}

// ListRecentByUser retrieves the N most recent lists for a user, newest first.
func (r *Repository) ListRecentByUser(ctx context.Context, userID string, limit int) ([]SavedList, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, source, original, consolidated, dropped, created_at
		 FROM shopping_lists WHERE user_id = ?
		 ORDER BY created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list shopping lists for user %s: %w", userID, err)
	}
	defer rows.Close()

	var lists []SavedList
	for rows.Next() {
		list, err := scanSavedList(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to read shopping list row: %w", err)
		}
		lists = append(lists, *list)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shopping lists: %w", err)
	}
	return lists, nil
}

// Delete removes a saved list. Deleting a missing list returns ErrListNotFound.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM shopping_lists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete shopping list %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrListNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSavedList(row rowScanner) (*SavedList, error) {
	var list SavedList
	var originalJSON, itemsJSON, droppedJSON, createdAt string
	if err := row.Scan(&list.ID, &list.UserID, &list.Source, &originalJSON, &itemsJSON, &droppedJSON, &createdAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(originalJSON), &list.Result.Original); err != nil {
		return nil, fmt.Errorf("failed to unmarshal original shopping list: %w", err)
	}
	if err := json.Unmarshal([]byte(itemsJSON), &list.Result.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal consolidated items: %w", err)
	}
	if err := json.Unmarshal([]byte(droppedJSON), &list.Result.Dropped); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dropped items: %w", err)
	}

	ts, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at %q: %w", createdAt, err)
	}
	list.CreatedAt = ts.UTC()
	return &list, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
