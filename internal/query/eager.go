package query

import (
	"context"
	"fmt"

	"github.com/Sanilblank/blog-api/internal/platform/db"
)

// Loader attaches one relation to every item in place.
type Loader[T any] func(ctx context.Context, conn db.DBTX, items []T) error

// Eager runs the loaders named in with, in order. An unknown name is an error.
func Eager[T any](ctx context.Context, conn db.DBTX, items []T, with []string, loaders map[string]Loader[T]) error {
	if len(items) == 0 {
		return nil
	}
	for _, name := range with {
		load, ok := loaders[name]
		if !ok {
			return fmt.Errorf("query: no loader for relation %q", name)
		}
		if err := load(ctx, conn, items); err != nil {
			return fmt.Errorf("query: load %s: %w", name, err)
		}
	}
	return nil
}
