package perf

import (
	"sort"
	"testing"
	"time"

	"github.com/Sanilblank/blog-api/internal/filter"
	"github.com/Sanilblank/blog-api/internal/observability"
	"github.com/Sanilblank/blog-api/internal/policy"
	"github.com/Sanilblank/blog-api/internal/posts"
	"github.com/Sanilblank/blog-api/internal/query"
	"github.com/Sanilblank/blog-api/internal/rbac"
)

type ownedPost struct{ id, owner int64 }

func (p ownedPost) GetID() int64   { return p.id }
func (p ownedPost) OwnerID() int64 { return p.owner }

var postIndex = query.Index{
	Where: map[string]any{"user_id": int64(7)},
	Filters: filter.Values{
		"search":   "derby",
		"category": "3",
		"tags":     []string{"1", "2", "3"},
		"author":   "7",
	},
	Definition: posts.Filters,
	Page:       query.PageRequest{Page: 2, PerPage: 25},
}

func buildPostIndex() error {
	l := query.Lister[posts.Post]{Schema: posts.Schema, Columns: "posts.id"}
	_, _, err := l.Build(postIndex)
	return err
}

func TestPostIndexBuildLatency(t *testing.T) {
	samples := make([]time.Duration, 0, 200)
	for range 200 {
		start := time.Now()
		if err := buildPostIndex(); err != nil {
			t.Fatalf("build post index: %v", err)
		}
		samples = append(samples, time.Since(start))
	}
	if p95 := percentile95(samples); p95 > 5*time.Millisecond {
		t.Fatalf("post index build regression: p95=%s threshold=5ms", p95)
	}
}

func BenchmarkPostIndexBuild(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		if err := buildPostIndex(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkPolicyCheck(b *testing.B) {
	gate := policy.NewGate(rbac.NewResolver(rbac.DefaultRegistry()), observability.NewMetrics())
	author := rbac.Actor{ID: 7, Roles: []rbac.RoleName{rbac.RoleAuthor}}
	post := ownedPost{id: 1, owner: 9}
	b.ReportAllocs()
	for b.Loop() {
		_ = gate.Check("posts.update", gate.Posts.Update(author, post))
	}
}

func percentile95(samples []time.Duration) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted[int(float64(len(sorted)-1)*0.95)]
}
