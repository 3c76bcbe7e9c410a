package treeborrows

import (
	"github.com/banks/treeborrows/pkg/diagnostics"
	"github.com/banks/treeborrows/pkg/locstate"
	"github.com/banks/treeborrows/pkg/permission"
	"github.com/banks/treeborrows/pkg/protector"
	"github.com/banks/treeborrows/pkg/rangemap"
	"github.com/banks/treeborrows/pkg/relatedness"
	"github.com/banks/treeborrows/pkg/tag"
)

// Access describes an explicit, caller-issued access: the byte range it
// touches, its kind, and why it happened.
type Access struct {
	Range rangemap.Range
	Kind  permission.AccessKind
	Cause diagnostics.AccessCause
}

// PerformAccess applies an access issued through t through the tag
// startTag. global is the protector registry, borrowed read-only for the
// duration of the call.
//
// For each maximal offset-slice the access's range overlaps, PerformAccess
// runs one ancestors-this-descendants-cousins traversal rooted at
// startTag, materializing lazy state as it goes, consulting the no-op
// skip memo, and applying the permission algebra at every visited node.
// The first error aborts the whole operation; the tree's state after an
// error is not rolled back and must be treated as invalid by the caller.
func (t *Tree) PerformAccess(startTag tag.Tag, access Access, global protector.Registry) error {
	startID, ok := t.tags.Get(startTag)
	if !ok {
		panic("treeborrows: PerformAccess on an unknown tag")
	}

	var rangeErr error
	t.rperm.IterMut(access.Range.Start, access.Range.Len(), func(r rangemap.Range, slice *locSlice) {
		if rangeErr != nil {
			return
		}
		rangeErr = t.traverse(startID, func(n *node, rel relatedness.Relatedness) (locstate.Decision, error) {
			ls := slice.entryOrUninit(n.id, n.defaultInitialPerm)

			decision := ls.SkipIfKnownNoop(access.Kind, rel)
			if decision == locstate.SkipChildren {
				(*slice)[n.id] = ls
				return locstate.SkipChildren, nil
			}

			protected := global.IsProtected(n.tag)
			transition, err := ls.PerformAccess(access.Kind, rel, protected)
			(*slice)[n.id] = ls
			if err != nil {
				if lsErr, ok := err.(*locstate.Error); ok {
					return locstate.Recurse, diagnostics.NewAccessError(
						lsErr, n.debugInfo, t.nodes[startID].debugInfo, access.Cause, t.allocID, r.Start,
					)
				}
				return locstate.Recurse, err
			}
			if !transition.IsNoop() {
				n.debugInfo.Push(diagnostics.Event{
					Transition:  transition,
					IsForeign:   rel.IsForeign(),
					Cause:       access.Cause,
					AccessRange: access.Range,
					Range:       [2]int{r.Start, r.End},
				})
			}
			return locstate.Recurse, nil
		})
	})
	return rangeErr
}

// ReleaseProtector performs the FnExit implicit access for a tag whose
// protector has just been released: at every offset-slice where this
// tag's state is already materialized and initialized, a Read or Write
// (whichever matches its current permission) is driven through it,
// visiting ancestors and cousins but never the tag's own descendants, so
// that a function exit never disturbs borrows the caller still holds.
func (t *Tree) ReleaseProtector(releasedTag tag.Tag, global protector.Registry) error {
	startID, ok := t.tags.Get(releasedTag)
	if !ok {
		panic("treeborrows: ReleaseProtector on an unknown tag")
	}

	var opErr error
	t.rperm.IterMutAll(func(r rangemap.Range, slice *locSlice) {
		if opErr != nil {
			return
		}
		ls, materialized := (*slice)[startID]
		if !materialized || !ls.Initialized {
			return
		}

		kind := permission.Read
		if ls.Permission.IsActive() {
			kind = permission.Write
		}
		cause := diagnostics.FnExitCause(kind)

		opErr = t.traverseNonchildren(startID, func(n *node, rel relatedness.Relatedness) (locstate.Decision, error) {
			nls := slice.entryOrUninit(n.id, n.defaultInitialPerm)

			decision := nls.SkipIfKnownNoop(kind, rel)
			if decision == locstate.SkipChildren {
				(*slice)[n.id] = nls
				return locstate.SkipChildren, nil
			}

			protected := global.IsProtected(n.tag)
			transition, err := nls.PerformAccess(kind, rel, protected)
			(*slice)[n.id] = nls
			if err != nil {
				if lsErr, ok := err.(*locstate.Error); ok {
					return locstate.Recurse, diagnostics.NewAccessError(
						lsErr, n.debugInfo, t.nodes[startID].debugInfo, cause, t.allocID, r.Start,
					)
				}
				return locstate.Recurse, err
			}
			if !transition.IsNoop() {
				n.debugInfo.Push(diagnostics.Event{
					Transition:  transition,
					IsForeign:   rel.IsForeign(),
					Cause:       cause,
					AccessRange: rangemap.Range{Start: 0, End: t.size},
					Range:       [2]int{r.Start, r.End},
				})
			}
			return locstate.Recurse, nil
		})
	})
	return opErr
}
