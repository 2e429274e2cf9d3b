package query

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/Sanilblank/blog-api/internal/filter"
	"github.com/Sanilblank/blog-api/internal/platform/db"
	"github.com/Sanilblank/blog-api/internal/shared"
)

// Index describes one listing request: fixed equality constraints, request
// filters, relations to eager load and the page to return.
type Index struct {
	Where      map[string]any
	Filters    filter.Values
	Definition filter.Definition
	With       []string
	Page       PageRequest
}

// Statement is rendered SQL with its arguments.
type Statement struct {
	SQL  string
	Args []any
}

// Lister runs listings and lookups against one table.
type Lister[T any] struct {
	Schema  Schema
	Columns string
	Scan    pgx.RowToFunc[T]
	Loaders map[string]Loader[T]
}

// Scope applies the where map then the filters to a fresh builder.
func (l Lister[T]) Scope(ix Index) Builder {
	scope := filter.Scope(From(l.Schema))

	keys := make([]string, 0, len(ix.Where))
	for k := range ix.Where {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		scope = scope.Where(k, ix.Where[k])
	}

	return filter.Apply(scope, ix.Definition, ix.Filters).(Builder)
}

// Build renders the page and count statements for ix. Rows are ordered
// newest id first.
func (l Lister[T]) Build(ix Index) (list Statement, count Statement, err error) {
	where, args, err := l.Scope(ix).WhereClause()
	if err != nil {
		return Statement{}, Statement{}, err
	}
	page := ix.Page.Normalize(DefaultPerPage)
	table := l.Schema.Table

	count = Statement{
		SQL:  fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", table, where),
		Args: args,
	}
	n := len(args)
	list = Statement{
		SQL: fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY %s.id DESC LIMIT $%d OFFSET $%d",
			l.Columns, table, where, table, n+1, n+2),
		Args: append(append(make([]any, 0, n+2), args...), page.PerPage, page.Offset()),
	}
	return list, count, nil
}

// List returns one page of ix. The count and page queries run concurrently
// unless conn is a transaction.
func (l Lister[T]) List(ctx context.Context, conn db.DBTX, ix Index) (Page[T], error) {
	list, count, err := l.Build(ix)
	if err != nil {
		return Page[T]{}, err
	}
	page := ix.Page.Normalize(DefaultPerPage)
	result := Page[T]{Page: page.Page, PerPage: page.PerPage}

	countFn := func(ctx context.Context) error {
		return conn.QueryRow(ctx, count.SQL, count.Args...).Scan(&result.Total)
	}
	listFn := func(ctx context.Context) error {
		rows, err := conn.Query(ctx, list.SQL, list.Args...)
		if err != nil {
			return err
		}
		items, err := pgx.CollectRows(rows, l.Scan)
		if err != nil {
			return err
		}
		result.Items = items
		return nil
	}

	if _, inTx := conn.(pgx.Tx); inTx {
		if err := countFn(ctx); err != nil {
			return Page[T]{}, fmt.Errorf("query: count %s: %w", l.Schema.Table, err)
		}
		if err := listFn(ctx); err != nil {
			return Page[T]{}, fmt.Errorf("query: list %s: %w", l.Schema.Table, err)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return countFn(gctx) })
		g.Go(func() error { return listFn(gctx) })
		if err := g.Wait(); err != nil {
			return Page[T]{}, fmt.Errorf("query: list %s: %w", l.Schema.Table, err)
		}
	}

	if result.Items == nil {
		result.Items = []T{}
	}
	if err := Eager(ctx, conn, result.Items, ix.With, l.Loaders); err != nil {
		return Page[T]{}, err
	}
	return result, nil
}

// Get loads the row with id and its relations. A missing row yields
// shared.ErrNotFound.
func (l Lister[T]) Get(ctx context.Context, conn db.DBTX, id int64, with ...string) (T, error) {
	var zero T
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE %s.id = $1", l.Columns, l.Schema.Table, l.Schema.Table)
	rows, err := conn.Query(ctx, sql, id)
	if err != nil {
		return zero, err
	}
	item, err := pgx.CollectExactlyOneRow(rows, l.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, shared.ErrNotFound
		}
		return zero, err
	}
	items := []T{item}
	if err := Eager(ctx, conn, items, with, l.Loaders); err != nil {
		return zero, err
	}
	return items[0], nil
}
