package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/quickai/quickai/internal/model"
)

// Common errors for creation repository operations.
var (
	ErrCreationNotFound = errors.New("creation not found")
)

// CreateCreation inserts a new creation into the database.
func (r *Repository) CreateCreation(ctx context.Context, c *model.Creation) error {
	query := `
		INSERT INTO creations (id, user_id, prompt, content, type, publish, likes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	likes := c.Likes
	if likes == nil {
		likes = []string{}
	}

	_, err := r.pool.Exec(ctx, query,
		c.ID,
		c.UserID,
		c.Prompt,
		c.Content,
		c.Type,
		c.Publish,
		pq.Array(likes),
		c.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create creation: %w", err)
	}

	return nil
}

// GetCreationByID retrieves a creation by its ID.
func (r *Repository) GetCreationByID(ctx context.Context, id string) (*model.Creation, error) {
	query := `
		SELECT id, user_id, prompt, content, type, publish, likes, created_at
		FROM creations
		WHERE id = $1
	`

	c, err := scanCreation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCreationNotFound
		}
		return nil, fmt.Errorf("failed to get creation by ID: %w", err)
	}

	return c, nil
}

// ListCreationsByUser retrieves all creations owned by a user,
// newest first. Both published and private rows are returned.
func (r *Repository) ListCreationsByUser(ctx context.Context, userID string) ([]*model.Creation, error) {
	query := `
		SELECT id, user_id, prompt, content, type, publish, likes, created_at
		FROM creations
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	return r.queryCreations(ctx, query, userID)
}

// ListPublishedCreations retrieves all published creations, newest first.
// This is the public community feed.
func (r *Repository) ListPublishedCreations(ctx context.Context) ([]*model.Creation, error) {
	query := `
		SELECT id, user_id, prompt, content, type, publish, likes, created_at
		FROM creations
		WHERE publish = TRUE
		ORDER BY created_at DESC
	`

	return r.queryCreations(ctx, query)
}

// SetCreationPublish updates the publish flag on a creation owned by the
// given user. The ownership predicate is part of the statement so a caller
// can never flip visibility on somebody else's creation.
func (r *Repository) SetCreationPublish(ctx context.Context, id, userID string, publish bool) error {
	query := `
		UPDATE creations
		SET publish = $3
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.pool.Exec(ctx, query, id, userID, publish)
	if err != nil {
		return fmt.Errorf("failed to update publish flag: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrCreationNotFound
	}

	return nil
}

// AddLike appends a user to the likes set if not already present.
// Returns true if the row was changed, false if the user had already liked it.
// The membership guard runs inside the UPDATE, so concurrent toggles from
// different users cannot overwrite each other.
func (r *Repository) AddLike(ctx context.Context, id, userID string) (bool, error) {
	query := `
		UPDATE creations
		SET likes = array_append(likes, $2)
		WHERE id = $1 AND NOT ($2 = ANY(likes))
	`

	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to add like: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// RemoveLike removes a user from the likes set if present.
// Returns true if the row was changed.
func (r *Repository) RemoveLike(ctx context.Context, id, userID string) (bool, error) {
	query := `
		UPDATE creations
		SET likes = array_remove(likes, $2)
		WHERE id = $1 AND $2 = ANY(likes)
	`

	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to remove like: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// queryCreations runs a query expected to return creation rows.
func (r *Repository) queryCreations(ctx context.Context, query string, args ...any) ([]*model.Creation, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list creations: %w", err)
	}
	defer rows.Close()

	var creations []*model.Creation
	for rows.Next() {
		c, err := scanCreation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan creation: %w", err)
		}
		creations = append(creations, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating creations: %w", err)
	}

	return creations, nil
}

// scanCreation scans a single row into a Creation model.
func scanCreation(row pgx.Row) (*model.Creation, error) {
	var c model.Creation
	var likes []string

	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Prompt,
		&c.Content,
		&c.Type,
		&c.Publish,
		pq.Array(&likes),
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if likes == nil {
		likes = []string{}
	}
	c.Likes = likes

	return &c, nil
}
