// Package filter applies declarative, per-resource filter definitions to a
// query scope.
package filter

import (
	"fmt"
	"maps"
	"slices"
	"sort"
)

// Scope is the narrowing surface a query builder exposes to filters. Every
// method returns a new scope; the receiver is left unchanged.
type Scope interface {
	// Where adds column = value.
	Where(column string, value any) Scope
	// WhereIn adds column IN (values). An empty list matches nothing.
	WhereIn(column string, values ...any) Scope
	// Search adds a case-insensitive substring match of term on any of columns.
	Search(term string, columns ...string) Scope
	// WhereHas requires a related row that satisfies fn.
	WhereHas(relation string, fn func(Scope) Scope) Scope
	// AnyOf requires at least one branch to hold. Branches that add nothing are ignored.
	AnyOf(branches ...func(Scope) Scope) Scope
}

// Handler narrows scope by a non-empty value.
type Handler func(scope Scope, value any) Scope

// Values maps filter names to request values.
type Values map[string]any

// Definition is the immutable set of filters a resource supports.
type Definition struct {
	handlers map[string]Handler
}

// NewDefinition copies handlers into a Definition. It panics on nil handlers
// since definitions are built once at package initialisation.
func NewDefinition(handlers map[string]Handler) Definition {
	for name, h := range handlers {
		if name == "" || h == nil {
			panic(fmt.Sprintf("filter: invalid handler %q", name))
		}
	}
	return Definition{handlers: maps.Clone(handlers)}
}

// Names returns the supported filter names in sorted order.
func (d Definition) Names() []string {
	return slices.Sorted(maps.Keys(d.handlers))
}

// Has reports whether name is a supported filter.
func (d Definition) Has(name string) bool {
	_, ok := d.handlers[name]
	return ok
}

// Apply narrows scope by every value whose name has a handler and whose value
// is not empty. Unknown names are ignored. Names are visited in sorted order
// so equal inputs always render the same query; all filters combine with AND.
func Apply(scope Scope, def Definition, values Values) Scope {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		handler, ok := def.handlers[name]
		if !ok {
			continue
		}
		value := values[name]
		if IsEmpty(value) {
			continue
		}
		scope = handler(scope, value)
	}
	return scope
}
