package filter

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recScope records every narrowing call as a predicate string.
type recScope struct {
	preds []string
}

func (s recScope) with(p string) Scope {
	return recScope{preds: append(slices.Clone(s.preds), p)}
}

func (s recScope) Where(column string, value any) Scope {
	return s.with(fmt.Sprintf("%s=%v", column, value))
}

func (s recScope) WhereIn(column string, values ...any) Scope {
	return s.with(fmt.Sprintf("%s in %v", column, values))
}

func (s recScope) Search(term string, columns ...string) Scope {
	return s.with(fmt.Sprintf("%s~%s", strings.Join(columns, "|"), term))
}

func (s recScope) WhereHas(relation string, fn func(Scope) Scope) Scope {
	inner := fn(recScope{}).(recScope)
	return s.with(fmt.Sprintf("has %s(%s)", relation, strings.Join(inner.preds, ",")))
}

func (s recScope) AnyOf(branches ...func(Scope) Scope) Scope {
	var parts []string
	for _, b := range branches {
		parts = append(parts, strings.Join(b(recScope{}).(recScope).preds, ","))
	}
	return s.with("any(" + strings.Join(parts, ";") + ")")
}

var testDef = NewDefinition(map[string]Handler{
	"search": func(s Scope, v any) Scope {
		term, _ := String(v)
		return s.Search(term, "name", "slug")
	},
	"category": func(s Scope, v any) Scope {
		id, _ := ID(v)
		return s.Where("category_id", id)
	},
	"tags": func(s Scope, v any) Scope {
		return s.WhereHas("tags", func(q Scope) Scope { return q.WhereIn("id", IDs(v)...) })
	},
})

func preds(s Scope) []string {
	return s.(recScope).preds
}

func TestApplyIgnoresEmptyValues(t *testing.T) {
	base := recScope{preds: []string{"base"}}
	empty := Apply(base, testDef, Values{"search": "", "tags": []string{}, "category": nil})
	assert.Equal(t, preds(Apply(base, testDef, Values{})), preds(empty))
	assert.Equal(t, []string{"base"}, preds(empty))

	allBlank := Apply(base, testDef, Values{"tags": []string{"", " "}, "category": 0})
	assert.Equal(t, []string{"base"}, preds(allBlank))
}

func TestApplyIgnoresUnknownNames(t *testing.T) {
	got := Apply(recScope{}, testDef, Values{"Search": "x", "page": 2, "search": "x"})
	assert.Equal(t, []string{"name|slug~x"}, preds(got))
}

func TestApplyIsOrderIndependent(t *testing.T) {
	both := Apply(recScope{}, testDef, Values{"search": "x", "category": 3})

	searchFirst := Apply(Apply(recScope{}, testDef, Values{"search": "x"}), testDef, Values{"category": 3})
	categoryFirst := Apply(Apply(recScope{}, testDef, Values{"category": 3}), testDef, Values{"search": "x"})

	assert.ElementsMatch(t, preds(searchFirst), preds(both))
	assert.ElementsMatch(t, preds(categoryFirst), preds(both))

	for range 20 {
		require.Equal(t, preds(both), preds(Apply(recScope{}, testDef, Values{"category": 3, "search": "x"})))
	}
}

func TestApplyLeavesBaseUntouched(t *testing.T) {
	base := recScope{preds: []string{"base"}}
	_ = Apply(base, testDef, Values{"search": "x"})
	assert.Equal(t, []string{"base"}, base.preds)
}

func TestApplyNestedRelation(t *testing.T) {
	got := Apply(recScope{}, testDef, Values{"tags": []string{"1", "", "x", "2"}})
	assert.Equal(t, []string{"has tags(id in [1 2])"}, preds(got))
}

func TestDefinition(t *testing.T) {
	assert.Equal(t, []string{"category", "search", "tags"}, testDef.Names())
	assert.True(t, testDef.Has("tags"))
	assert.False(t, testDef.Has("author"))

	assert.Panics(t, func() { NewDefinition(map[string]Handler{"x": nil}) })
	assert.Panics(t, func() {
		NewDefinition(map[string]Handler{"": func(s Scope, _ any) Scope { return s }})
	})
}

func TestIsEmpty(t *testing.T) {
	var nilPtr *string
	blank := " "
	word := "x"
	cases := []struct {
		in   any
		want bool
	}{
		{nil, true},
		{"", true},
		{"  ", true},
		{"0", false},
		{"x", false},
		{0, true},
		{int64(3), false},
		{false, true},
		{true, false},
		{[]string{}, true},
		{[]string{"", ""}, true},
		{[]string{"", "a"}, false},
		{[]int64{0}, true},
		{[]int64{0, 4}, false},
		{[]any{nil, ""}, true},
		{[]any{nil, 1}, false},
		{[]int{0, 0}, true},
		{nilPtr, true},
		{&blank, true},
		{&word, false},
		{map[string]int{}, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsEmpty(tc.in), "IsEmpty(%#v)", tc.in)
	}
}

func TestValueHelpers(t *testing.T) {
	id, ok := ID(" 12 ")
	assert.True(t, ok)
	assert.Equal(t, int64(12), id)
	_, ok = ID(-1)
	assert.False(t, ok)
	_, ok = ID(1.5)
	assert.False(t, ok)

	s, ok := String("  Sport ")
	assert.True(t, ok)
	assert.Equal(t, "Sport", s)
	_, ok = String(3)
	assert.False(t, ok)

	assert.Equal(t, []any{int64(1), int64(3)}, IDs([]string{"1", "a", "3", "0"}))
	assert.Equal(t, []any{"admin"}, Strings([]string{" admin ", ""}))
	assert.Equal(t, []any{int64(5)}, List([]int64{0, 5}))
	assert.Nil(t, List(""))
}
