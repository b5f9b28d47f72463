package document

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetNodeByIndex(t *testing.T) {
	root := New("PART")
	first := root.AddNode("ATTACHMENT")
	root.AddNode("OTHER")
	second := root.AddNode("ATTACHMENT")

	assert.Same(t, first, root.GetNode("ATTACHMENT", 0))
	assert.Same(t, second, root.GetNode("ATTACHMENT", 1))
	assert.Nil(t, root.GetNode("ATTACHMENT", 2))
	assert.Nil(t, root.GetNode("ATTACHMENT", -1))
	assert.Equal(t, 2, root.CountNodes("ATTACHMENT"))
	assert.True(t, root.HasNode("OTHER"))
	assert.False(t, root.HasNode("MISSING"))
}

func TestGetValueReturnsFirst(t *testing.T) {
	n := New("OFFSET")
	n.AddValue("position", "(1, 2, 3)")
	n.AddValue("position", "(4, 5, 6)")

	v, ok := n.GetValue("position")
	require.True(t, ok)
	assert.Equal(t, "(1, 2, 3)", v)

	_, ok = n.GetValue("rotation")
	assert.False(t, ok)
}

func TestNilNodeIsEmpty(t *testing.T) {
	var n *Node

	assert.Nil(t, n.GetNode("X", 0))
	assert.Equal(t, 0, n.CountNodes("X"))
	_, ok := n.GetValue("x")
	assert.False(t, ok)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	root := New("PART")
	a := root.AddNode("ATTACHMENT")
	a.AddValue("kind", "node")
	off := a.AddNode("OFFSET")
	off.AddValue("position", "(0.5, -1, 2)")

	path := filepath.Join(t.TempDir(), "state.yaml")
	require.NoError(t, Save(path, root))

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, root, got)
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	_, err := Unmarshal([]byte("name: [unterminated"))
	assert.Error(t, err)
}
