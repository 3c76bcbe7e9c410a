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

// Dealloc checks whether startTag is entitled to deallocate the given
// range. It first performs a full-range write access (as Dealloc is just
// the most exclusive access there is) to enforce the ordinary permission
// preconditions, then sweeps the entire tree looking for a strong
// protector anywhere in the allocation: a strong protector anywhere, not
// just on startTag's own ancestors or descendants, forbids the
// deallocation outright.
func (t *Tree) Dealloc(startTag tag.Tag, deallocRange rangemap.Range, global protector.Registry) error {
	startID, ok := t.tags.Get(startTag)
	if !ok {
		panic("treeborrows: Dealloc of an unknown tag")
	}

	if err := t.PerformAccess(startTag, Access{
		Range: deallocRange,
		Kind:  permission.Write,
		Cause: diagnostics.Dealloc,
	}, global); err != nil {
		return err
	}

	var opErr error
	t.rperm.IterMut(deallocRange.Start, deallocRange.Len(), func(_ rangemap.Range, slice *locSlice) {
		if opErr != nil {
			return
		}
		opErr = t.traverse(startID, func(n *node, _ relatedness.Relatedness) (locstate.Decision, error) {
			if global.IsStrong(n.tag) {
				return locstate.Recurse, &diagnostics.ErrProtectedDealloc{
					Protected: n.debugInfo,
					AllocID:   t.allocID,
				}
			}
			return locstate.Recurse, nil
		})
	})
	return opErr
}
