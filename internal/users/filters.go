package users

import "github.com/Sanilblank/blog-api/internal/filter"

// Filters is the user index filter set.
var Filters = filter.NewDefinition(map[string]filter.Handler{
	"search": func(s filter.Scope, v any) filter.Scope {
		term, ok := filter.String(v)
		if !ok {
			return s
		}
		return s.Search(term, "name", "email")
	},
	"roles": func(s filter.Scope, v any) filter.Scope {
		names := filter.Strings(v)
		return s.WhereHas("roles", func(r filter.Scope) filter.Scope {
			return r.WhereIn("name", names...)
		})
	},
})
