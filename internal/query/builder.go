// Package query renders filter scopes into PostgreSQL and runs paginated
// listings with eager-loaded relations.
package query

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/Sanilblank/blog-api/internal/filter"
)

// Relation describes how a related table correlates with an outer row.
// Join and On may use the {outer} and {inner} placeholders, which are
// replaced by the table aliases.
type Relation struct {
	Table string
	Join  string
	On    string
}

// Schema names a table and the relations filters may traverse.
type Schema struct {
	Table     string
	Relations map[string]Relation
}

var errForeignScope = errors.New("query: branch returned a foreign scope")

type expr struct {
	sql  string
	args []any
}

// Builder is an immutable WHERE clause under construction. It implements
// filter.Scope. Conditions combine with AND. Placeholders are written as ?
// and numbered when the statement is rendered.
type Builder struct {
	schema Schema
	alias  string
	depth  int
	conds  []expr
	err    error
}

var _ filter.Scope = Builder{}

// From starts a builder over schema; columns are qualified with the table name.
func From(schema Schema) Builder {
	return Builder{schema: schema, alias: schema.Table}
}

func (b Builder) with(e expr) Builder {
	next := b
	next.conds = append(slices.Clip(b.conds), e)
	return next
}

func (b Builder) fail(err error) Builder {
	next := b
	if next.err == nil {
		next.err = err
	}
	return next
}

func (b Builder) column(name string) string {
	if strings.ContainsAny(name, ".(") {
		return name
	}
	return b.alias + "." + name
}

// Where implements filter.Scope.
func (b Builder) Where(column string, value any) filter.Scope {
	if value == nil {
		return b.with(expr{sql: b.column(column) + " IS NULL"})
	}
	return b.with(expr{sql: b.column(column) + " = ?", args: []any{value}})
}

// WhereIn implements filter.Scope.
func (b Builder) WhereIn(column string, values ...any) filter.Scope {
	if len(values) == 0 {
		return b.with(expr{sql: "FALSE"})
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")
	return b.with(expr{sql: b.column(column) + " IN (" + marks + ")", args: slices.Clone(values)})
}

// Search implements filter.Scope with ILIKE on every column. LIKE wildcards
// in term are escaped so it matches literally.
func (b Builder) Search(term string, columns ...string) filter.Scope {
	if len(columns) == 0 {
		return b
	}
	pattern := "%" + escapeLike(term) + "%"
	parts := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, c := range columns {
		parts[i] = b.column(c) + " ILIKE ?"
		args[i] = pattern
	}
	sql := strings.Join(parts, " OR ")
	if len(parts) > 1 {
		sql = "(" + sql + ")"
	}
	return b.with(expr{sql: sql, args: args})
}

// WhereHas implements filter.Scope as a correlated EXISTS subquery.
func (b Builder) WhereHas(relation string, fn func(filter.Scope) filter.Scope) filter.Scope {
	rel, ok := b.schema.Relations[relation]
	if !ok {
		return b.fail(fmt.Errorf("query: %s has no relation %q", b.schema.Table, relation))
	}
	inner := Builder{
		schema: Schema{Table: rel.Table},
		alias:  "r" + strconv.Itoa(b.depth+1),
		depth:  b.depth + 1,
	}
	narrowed, ok := fn(inner).(Builder)
	if !ok {
		return b.fail(fmt.Errorf("query: relation %q returned a foreign scope", relation))
	}
	if narrowed.err != nil {
		return b.fail(narrowed.err)
	}

	replace := strings.NewReplacer("{outer}", b.alias, "{inner}", inner.alias)
	var sb strings.Builder
	sb.WriteString("EXISTS (SELECT 1 FROM ")
	sb.WriteString(rel.Table)
	sb.WriteString(" ")
	sb.WriteString(inner.alias)
	if rel.Join != "" {
		sb.WriteString(" ")
		sb.WriteString(replace.Replace(rel.Join))
	}
	sb.WriteString(" WHERE ")
	sb.WriteString(replace.Replace(rel.On))
	sql, args := narrowed.predicate()
	if len(narrowed.conds) > 0 {
		sb.WriteString(" AND ")
		sb.WriteString(sql)
	}
	sb.WriteString(")")
	return b.with(expr{sql: sb.String(), args: args})
}

// AnyOf implements filter.Scope. Each branch starts from an empty scope over
// the same table.
func (b Builder) AnyOf(branches ...func(filter.Scope) filter.Scope) filter.Scope {
	var (
		parts []string
		args  []any
	)
	for _, branch := range branches {
		empty := b
		empty.conds = nil
		narrowed, ok := branch(empty).(Builder)
		if !ok {
			return b.fail(errForeignScope)
		}
		if narrowed.err != nil {
			return b.fail(narrowed.err)
		}
		if len(narrowed.conds) == 0 {
			continue
		}
		sql, a := narrowed.predicate()
		if len(narrowed.conds) > 1 {
			sql = "(" + sql + ")"
		}
		parts = append(parts, sql)
		args = append(args, a...)
	}
	if len(parts) == 0 {
		return b
	}
	sql := strings.Join(parts, " OR ")
	if len(parts) > 1 {
		sql = "(" + sql + ")"
	}
	return b.with(expr{sql: sql, args: args})
}

// Err returns the first construction error, if any.
func (b Builder) Err() error {
	return b.err
}

// predicate joins the conditions with AND. It yields TRUE for an empty scope.
func (b Builder) predicate() (string, []any) {
	if len(b.conds) == 0 {
		return "TRUE", nil
	}
	parts := make([]string, len(b.conds))
	var args []any
	for i, c := range b.conds {
		parts[i] = c.sql
		args = append(args, c.args...)
	}
	return strings.Join(parts, " AND "), args
}

// WhereClause renders the predicate with $n placeholders starting at $1.
func (b Builder) WhereClause() (string, []any, error) {
	if b.err != nil {
		return "", nil, b.err
	}
	sql, args := b.predicate()
	return numberPlaceholders(sql, 1), args, nil
}

func numberPlaceholders(sql string, start int) string {
	var sb strings.Builder
	n := start
	for _, r := range sql {
		if r == '?' {
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			n++
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
