package posts

import "github.com/Sanilblank/blog-api/internal/filter"

// Filters is the post index filter set.
var Filters = filter.NewDefinition(map[string]filter.Handler{
	"search": func(s filter.Scope, v any) filter.Scope {
		term, ok := filter.String(v)
		if !ok {
			return s
		}
		return s.AnyOf(
			func(q filter.Scope) filter.Scope { return q.Search(term, "title", "body") },
			func(q filter.Scope) filter.Scope {
				return q.WhereHas("author", func(a filter.Scope) filter.Scope {
					return a.Search(term, "name", "email")
				})
			},
			func(q filter.Scope) filter.Scope {
				return q.WhereHas("category", func(c filter.Scope) filter.Scope {
					return c.Search(term, "name", "slug")
				})
			},
			func(q filter.Scope) filter.Scope {
				return q.WhereHas("tags", func(t filter.Scope) filter.Scope {
					return t.Search(term, "name", "slug")
				})
			},
		)
	},
	"category": func(s filter.Scope, v any) filter.Scope {
		id, ok := filter.ID(v)
		if !ok {
			return s
		}
		return s.Where("category_id", id)
	},
	"tags": func(s filter.Scope, v any) filter.Scope {
		ids := filter.IDs(v)
		if len(ids) == 0 {
			return s
		}
		return s.WhereHas("tags", func(t filter.Scope) filter.Scope {
			return t.WhereIn("id", ids...)
		})
	},
	"author": func(s filter.Scope, v any) filter.Scope {
		id, ok := filter.ID(v)
		if !ok {
			return s
		}
		return s.Where("user_id", id)
	},
})
