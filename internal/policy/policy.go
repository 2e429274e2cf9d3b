// Package policy holds the per-resource authorization decisions. Every
// decision is a pure function of the actor and the target records.
package policy

import (
	"github.com/Sanilblank/blog-api/internal/rbac"
	"github.com/Sanilblank/blog-api/internal/shared"
)

// Owned is a record that belongs to a user.
type Owned interface {
	GetID() int64
	OwnerID() int64
}

// Child is an owned record attached to a parent record.
type Child interface {
	Owned
	Parent() shared.Ref
}

// Recorder observes authorization outcomes.
type Recorder interface {
	ObserveDecision(ability string, allowed bool)
}

// Gate bundles the resource policies.
type Gate struct {
	Users    UserPolicy
	Posts    PostPolicy
	Comments CommentPolicy

	recorder Recorder
}

// NewGate builds the policies over resolver. recorder may be nil.
func NewGate(resolver rbac.Resolver, recorder Recorder) *Gate {
	return &Gate{
		Users:    UserPolicy{resolver: resolver},
		Posts:    PostPolicy{resolver: resolver},
		Comments: CommentPolicy{resolver: resolver},
		recorder: recorder,
	}
}

// Check turns a decision for ability into shared.ErrForbidden when denied.
func (g *Gate) Check(ability string, allowed bool) error {
	if g.recorder != nil {
		g.recorder.ObserveDecision(ability, allowed)
	}
	if !allowed {
		return shared.ErrForbidden
	}
	return nil
}
