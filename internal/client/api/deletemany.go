package api

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// DefaultDeleteConcurrency caps DeleteMany when no limit is given.
const DefaultDeleteConcurrency = 4

// DeleteMany deletes every id with at most limit requests in flight. Every id
// is attempted regardless of other failures. It returns the ids the backend
// confirmed, in input order, and the joined errors of the rest.
func DeleteMany(ctx context.Context, c Client, ids []string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultDeleteConcurrency
	}

	errs := make([]error, len(ids))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, id := range ids {
		g.Go(func() error {
			if err := c.DeleteExpense(ctx, id); err != nil {
				errs[i] = fmt.Errorf("delete %s: %w", id, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	deleted := make([]string, 0, len(ids))
	for i, id := range ids {
		if errs[i] == nil {
			deleted = append(deleted, id)
		}
	}
	return deleted, errors.Join(errs...)
}
