package main

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/banks/treeborrows"
	"github.com/banks/treeborrows/pkg/diagnostics"
	"github.com/banks/treeborrows/pkg/permission"
	"github.com/banks/treeborrows/pkg/protector"
	"github.com/banks/treeborrows/pkg/rangemap"
	"github.com/banks/treeborrows/pkg/tag"
)

// tagNamespace is a fixed namespace used only to derive a stable,
// human-correlatable UUID string per scenario tag name for debug-level
// log lines. It has no bearing on the tag.Tag values the engine actually
// sees, which are plain incrementing integers.
var tagNamespace = uuid.MustParse("7a3f0b7e-8c2b-4b0a-9e0a-5f2f8a8c9d10")

// session runs one allocation's operations against a live *treeborrows.Tree.
type session struct {
	alloc  string
	tree   *treeborrows.Tree
	global protector.Registry
	names  map[string]tag.Tag
	next   tag.Tag
	log    *zap.SugaredLogger
}

func newSession(allocID uint64, spec AllocationSpec, log *zap.SugaredLogger) (*session, error) {
	s := &session{
		alloc:  spec.Name,
		global: protector.New(),
		names:  make(map[string]tag.Tag),
		log:    log,
	}
	rootTag := s.mint(spec.RootTag)
	s.tree = treeborrows.New(rootTag, spec.Size, allocID)
	s.tree.AddName(rootTag, spec.RootTag)
	s.logTag("alloc", spec.RootTag, rootTag)
	return s, nil
}

// mint assigns a fresh dense tag.Tag to name if it hasn't been seen
// before in this allocation, or returns the one already assigned.
func (s *session) mint(name string) tag.Tag {
	if t, ok := s.names[name]; ok {
		return t
	}
	s.next++
	s.names[name] = s.next
	return s.next
}

func (s *session) logTag(verb, name string, t tag.Tag) {
	corr := uuid.NewSHA1(tagNamespace, []byte(name))
	s.log.Debugw(verb, "alloc", s.alloc, "name", name, "tag", t, "trace_id", corr.String())
}

func (s *session) resolve(name string) (tag.Tag, error) {
	t, ok := s.names[name]
	if !ok {
		return 0, fmt.Errorf("unknown tag %q", name)
	}
	return t, nil
}

func parsePerm(s string) (permission.Permission, error) {
	switch s {
	case "", "reserved":
		return permission.Reserved, nil
	case "active":
		return permission.Active, nil
	case "frozen":
		return permission.Frozen, nil
	case "disabled":
		return permission.Disabled, nil
	default:
		return 0, fmt.Errorf("unknown permission %q", s)
	}
}

func parseKind(s string) (permission.AccessKind, error) {
	switch s {
	case "read":
		return permission.Read, nil
	case "write":
		return permission.Write, nil
	default:
		return 0, fmt.Errorf("unknown access kind %q", s)
	}
}

func parseProtector(s string) (protector.Kind, error) {
	switch s {
	case "weak":
		return protector.Weak, nil
	case "strong":
		return protector.Strong, nil
	default:
		return 0, fmt.Errorf("unknown protector kind %q", s)
	}
}

// apply runs a single op against this session's tree, returning an error
// for either a malformed scenario reference or a reported UB violation.
func (s *session) apply(op OpSpec) error {
	switch op.Op {
	case "retag":
		parent, err := s.resolve(op.Parent)
		if err != nil {
			return err
		}
		perm, err := parsePerm(op.DefaultPerm)
		if err != nil {
			return err
		}
		child := s.mint(op.NewTag)
		s.tree.NewChild(parent, child, perm, rangemap.Range{Start: op.Start, End: op.End})
		s.tree.AddName(child, op.NewTag)
		s.logTag("retag", op.NewTag, child)
		return nil

	case "access":
		t, err := s.resolve(op.Tag)
		if err != nil {
			return err
		}
		kind, err := parseKind(op.Kind)
		if err != nil {
			return err
		}
		s.log.Debugw("access", "alloc", s.alloc, "tag", op.Tag, "kind", op.Kind, "start", op.Start, "end", op.End)
		return s.tree.PerformAccess(t, treeborrows.Access{
			Range: rangemap.Range{Start: op.Start, End: op.End},
			Kind:  kind,
			Cause: diagnostics.Normal,
		}, s.global)

	case "dealloc":
		t, err := s.resolve(op.Tag)
		if err != nil {
			return err
		}
		s.log.Debugw("dealloc", "alloc", s.alloc, "tag", op.Tag, "start", op.Start, "end", op.End)
		return s.tree.Dealloc(t, rangemap.Range{Start: op.Start, End: op.End}, s.global)

	case "protect":
		t, err := s.resolve(op.Tag)
		if err != nil {
			return err
		}
		kind, err := parseProtector(op.Protector)
		if err != nil {
			return err
		}
		s.global.Protect(t, kind)
		s.log.Debugw("protect", "alloc", s.alloc, "tag", op.Tag, "kind", op.Protector)
		return nil

	case "release":
		t, err := s.resolve(op.Tag)
		if err != nil {
			return err
		}
		s.global.Release(t)
		s.log.Debugw("release", "alloc", s.alloc, "tag", op.Tag)
		return s.tree.ReleaseProtector(t, s.global)

	case "gc":
		liveNames := append([]string(nil), op.Live...)
		treeborrows.SortNames(liveNames)
		live := make(map[tag.Tag]bool, len(liveNames))
		for _, name := range liveNames {
			t, err := s.resolve(name)
			if err != nil {
				return err
			}
			live[t] = true
		}
		s.log.Debugw("gc", "alloc", s.alloc, "live", op.Live)
		s.tree.RemoveUnreachableTags(live)
		return nil

	default:
		return fmt.Errorf("unknown op %q", op.Op)
	}
}
