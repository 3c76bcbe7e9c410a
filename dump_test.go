package treeborrows

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/banks/treeborrows/pkg/permission"
	"github.com/banks/treeborrows/pkg/protector"
	"github.com/banks/treeborrows/pkg/rangemap"
)

func TestDumpRendersTreeShape(t *testing.T) {
	require := require.New(t)

	tr := New(1, 4, 0)
	tr.NewChild(1, 2, permission.Reserved, rangemap.Range{Start: 0, End: 4})
	tr.NewChild(1, 3, permission.Reserved, rangemap.Range{Start: 0, End: 4})

	var buf bytes.Buffer
	tr.Dump(&buf)

	out := buf.String()
	require.Contains(out, "tag=1")
	require.Contains(out, "tag=2")
	require.Contains(out, "tag=3")
	require.True(strings.Index(out, "tag=1") < strings.Index(out, "tag=2"))
}

func TestDumpIncludesHistory(t *testing.T) {
	require := require.New(t)

	tr := New(1, 4, 0)
	tr.NewChild(1, 2, permission.Reserved, rangemap.Range{Start: 0, End: 4})
	global := protector.New()

	err := tr.PerformAccess(2, Access{Range: rangemap.Range{Start: 0, End: 4}, Kind: permission.Write}, global)
	require.NoError(err)

	var buf bytes.Buffer
	tr.Dump(&buf)
	require.Contains(buf.String(), "Reserved -> Active")
}
