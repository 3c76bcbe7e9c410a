// Package protector implements the global protector registry that the
// borrow tree borrows read-only during every access and deallocation
// check. It is owned by whatever holds the call stack frame a tag was
// created in, not by the tree.
package protector

import "github.com/banks/treeborrows/pkg/tag"

// Kind distinguishes the two strengths a protector can hold.
type Kind int

const (
	// Weak protectors forbid the owning tag's location from transitioning
	// to Disabled once initialized, and participate in the FnExit implicit
	// access when released. They do not forbid deallocation.
	Weak Kind = iota
	// Strong protectors do everything a weak protector does and
	// additionally forbid deallocation anywhere in the allocation while
	// they are held.
	Strong
)

func (k Kind) String() string {
	if k == Strong {
		return "Strong"
	}
	return "Weak"
}

// Registry tracks which tags are currently protected and at what
// strength. The tree never mutates a Registry; callers Protect a tag when
// a function borrows it and Release it on function exit.
type Registry map[tag.Tag]Kind

// New returns an empty registry.
func New() Registry {
	return make(Registry)
}

// Protect marks t as protected at the given strength.
func (r Registry) Protect(t tag.Tag, k Kind) {
	r[t] = k
}

// Release removes any protection on t. It is a no-op if t was not
// protected.
func (r Registry) Release(t tag.Tag) {
	delete(r, t)
}

// Kind reports whether t is currently protected and, if so, at what
// strength.
func (r Registry) Kind(t tag.Tag) (Kind, bool) {
	k, ok := r[t]
	return k, ok
}

// IsProtected reports whether t is protected at any strength.
func (r Registry) IsProtected(t tag.Tag) bool {
	_, ok := r[t]
	return ok
}

// IsStrong reports whether t is protected with a StrongProtector.
func (r Registry) IsStrong(t tag.Tag) bool {
	return r[t] == Strong
}
