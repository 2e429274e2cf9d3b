package shared

// ResourceKind names a table that can own polymorphic children.
type ResourceKind string

// KindPost is the only commentable kind today.
const KindPost ResourceKind = "post"

// Ref points at a record of a given kind.
type Ref struct {
	Kind ResourceKind `json:"type"`
	ID   int64        `json:"id"`
}

// Is reports whether r references the record (kind, id).
func (r Ref) Is(kind ResourceKind, id int64) bool {
	return r.Kind == kind && r.ID == id
}
