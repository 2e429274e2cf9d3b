package categories

import "github.com/Sanilblank/blog-api/internal/filter"

// Filters is the category index filter set.
var Filters = filter.NewDefinition(map[string]filter.Handler{
	"search": func(s filter.Scope, v any) filter.Scope {
		term, ok := filter.String(v)
		if !ok {
			return s
		}
		return s.Search(term, "name", "slug")
	},
})
