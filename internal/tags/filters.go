package tags

import "github.com/Sanilblank/blog-api/internal/filter"

// Filters is the tag index filter set.
var Filters = filter.NewDefinition(map[string]filter.Handler{
	"search": func(s filter.Scope, v any) filter.Scope {
		term, ok := filter.String(v)
		if !ok {
			return s
		}
		return s.Search(term, "name", "slug")
	},
})
