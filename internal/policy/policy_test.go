package policy

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sanilblank/blog-api/internal/rbac"
	"github.com/Sanilblank/blog-api/internal/shared"
)

type post struct{ id, owner int64 }

func (p post) GetID() int64   { return p.id }
func (p post) OwnerID() int64 { return p.owner }

type comment struct {
	id, owner int64
	parent    shared.Ref
}

func (c comment) GetID() int64       { return c.id }
func (c comment) OwnerID() int64     { return c.owner }
func (c comment) Parent() shared.Ref { return c.parent }

func onPost(id, owner, postID int64) comment {
	return comment{id: id, owner: owner, parent: shared.Ref{Kind: shared.KindPost, ID: postID}}
}

var (
	admin      = rbac.Actor{ID: 1, Roles: []rbac.RoleName{rbac.RoleAdmin}}
	otherAdmin = rbac.Actor{ID: 2, Roles: []rbac.RoleName{rbac.RoleAdmin}}
	author     = rbac.Actor{ID: 42, Roles: []rbac.RoleName{rbac.RoleAuthor}}
	stranger   = rbac.Actor{ID: 99, Roles: []rbac.RoleName{rbac.RoleAuthor}}
	roleless   = rbac.Actor{ID: 7}
	guest      = rbac.Actor{}
)

func newGate(rec Recorder) *Gate {
	return NewGate(rbac.NewResolver(rbac.DefaultRegistry()), rec)
}

func TestUserPolicy(t *testing.T) {
	p := newGate(nil).Users

	assert.True(t, p.ViewAll(admin))
	assert.False(t, p.ViewAll(author))
	assert.True(t, p.Create(admin))
	assert.False(t, p.Create(author))

	cases := []struct {
		name          string
		actor, target rbac.Actor
		show, manage  bool
	}{
		{"admin on self", admin, admin, true, true},
		{"admin on author", admin, author, true, true},
		{"admin on other admin", admin, otherAdmin, true, false},
		{"author on self", author, author, true, true},
		{"author on other author", author, stranger, false, false},
		{"author on admin", author, admin, false, false},
		{"roleless on self", roleless, roleless, false, false},
		{"guest on author", guest, author, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.show, p.Show(tc.actor, tc.target), "show")
			assert.Equal(t, tc.manage, p.Update(tc.actor, tc.target), "update")
			assert.Equal(t, tc.manage, p.Delete(tc.actor, tc.target), "delete")
		})
	}
}

func TestPostPolicyMatchesRule(t *testing.T) {
	p := newGate(nil).Posts
	resolver := rbac.NewResolver(rbac.DefaultRegistry())

	actors := []rbac.Actor{admin, otherAdmin, author, stranger, roleless, guest}
	posts := []post{{id: 1, owner: 42}, {id: 2, owner: 1}, {id: 3, owner: 99}}
	for _, a := range actors {
		for _, target := range posts {
			want := resolver.HasPermission(a, rbac.UpdatePost) &&
				(resolver.HasRole(a, rbac.RoleAdmin) || target.owner == a.ID)
			assert.Equal(t, want, p.Update(a, target), "actor %d post %d", a.ID, target.id)
		}
	}
}

func TestPostPolicyOwnership(t *testing.T) {
	p := newGate(nil).Posts
	owned := post{id: 10, owner: 42}

	assert.True(t, p.Create(author))
	assert.False(t, p.Create(roleless))
	assert.True(t, p.Delete(author, owned))
	assert.False(t, p.Delete(stranger, owned))
	assert.True(t, p.Delete(admin, owned))
}

func TestCommentPolicy(t *testing.T) {
	p := newGate(nil).Comments
	p1 := post{id: 1, owner: 99}
	p2 := post{id: 2, owner: 42}

	own := onPost(5, 42, 1)
	assert.True(t, p.Create(author))
	assert.False(t, p.Create(guest))
	assert.True(t, p.Update(author, p1, own))
	assert.False(t, p.Update(roleless, p1, onPost(6, 7, 1)))
	assert.True(t, p.Update(admin, p1, own))

	t.Run("post owner may delete but not edit", func(t *testing.T) {
		c := onPost(7, 42, 1)
		assert.True(t, p.Delete(stranger, p1, c))
		assert.False(t, p.Update(stranger, p1, c))
	})

	t.Run("cross post pairing is always denied", func(t *testing.T) {
		c := onPost(8, 42, 2)
		for _, a := range []rbac.Actor{admin, author, stranger} {
			assert.False(t, p.Update(a, p1, c), "update by %d", a.ID)
			assert.False(t, p.Delete(a, p1, c), "delete by %d", a.ID)
		}
		assert.True(t, p.Update(author, p2, c))
	})

	t.Run("foreign parent kind", func(t *testing.T) {
		c := comment{id: 9, owner: 42, parent: shared.Ref{Kind: "video", ID: 1}}
		assert.False(t, BelongsTo(c, p1))
		assert.False(t, p.Delete(admin, p1, c))
	})
}

func TestDecisionsArePure(t *testing.T) {
	g := newGate(nil)
	c := onPost(1, 42, 1)
	target := post{id: 1, owner: 99}
	first := fmt.Sprint(g.Comments.Delete(stranger, target, c), g.Posts.Update(author, target), g.Users.Show(author, stranger))
	for range 10 {
		again := fmt.Sprint(g.Comments.Delete(stranger, target, c), g.Posts.Update(author, target), g.Users.Show(author, stranger))
		require.Equal(t, first, again)
	}
}

type recorder struct {
	seen []string
}

func (r *recorder) ObserveDecision(ability string, allowed bool) {
	r.seen = append(r.seen, fmt.Sprintf("%s:%t", ability, allowed))
}

func TestGateCheck(t *testing.T) {
	rec := &recorder{}
	g := newGate(rec)

	require.NoError(t, g.Check("posts.create", g.Posts.Create(author)))
	err := g.Check("users.viewAll", g.Users.ViewAll(author))
	require.ErrorIs(t, err, shared.ErrForbidden)

	assert.Equal(t, []string{"posts.create:true", "users.viewAll:false"}, rec.seen)
	assert.NoError(t, newGate(nil).Check("posts.create", true))
}
