package comments

import "github.com/Sanilblank/blog-api/internal/filter"

// Filters is the comment index filter set.
var Filters = filter.NewDefinition(map[string]filter.Handler{
	"search": func(s filter.Scope, v any) filter.Scope {
		term, ok := filter.String(v)
		if !ok {
			return s
		}
		return s.AnyOf(
			func(q filter.Scope) filter.Scope { return q.Search(term, "body") },
			func(q filter.Scope) filter.Scope {
				return q.WhereHas("author", func(a filter.Scope) filter.Scope {
					return a.Search(term, "name", "email")
				})
			},
		)
	},
	"author": func(s filter.Scope, v any) filter.Scope {
		id, ok := filter.ID(v)
		if !ok {
			return s
		}
		return s.Where("user_id", id)
	},
})
