package cellname

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValid(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"a", "a"},
		{"a/b/c", "a/b/c"},
		{"/a/b/", "a/b"},
		{"a/", "a"},
		{"my-cell/child-1", "my-cell/child-1"},
	}
	for _, c := range cases {
		n, err := Parse(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, n.String())
	}
}

func TestParseInvalid(t *testing.T) {
	cases := []string{
		"",
		"/",
		"a//b",
		"-a",
		"a-",
		"a_b",
		string(make([]byte, 64)),
	}
	for _, c := range cases {
		_, err := Parse(c)
		assert.Error(t, err, c)
	}
}

func TestLeafAndRoot(t *testing.T) {
	n := MustParse("a/b/c")
	assert.Equal(t, "c", n.Leaf())
	assert.Equal(t, "a", n.Root().String())
}

func TestIsChildOf(t *testing.T) {
	parent := MustParse("a/b")
	child := MustParse("a/b/c")
	grandchild := MustParse("a/b/c/d")

	assert.True(t, child.IsChildOf(parent))
	assert.False(t, grandchild.IsChildOf(parent))
	assert.False(t, parent.IsChildOf(child))
}

func TestToChild(t *testing.T) {
	root := MustParse("a")
	descendant := MustParse("a/b/c")

	next, err := root.ToChild(descendant)
	require.NoError(t, err)
	assert.Equal(t, "a/b", next.String())

	_, err = root.ToChild(MustParse("z/y"))
	assert.Error(t, err)

	_, err = root.ToChild(root)
	assert.Error(t, err)
}

func TestTail(t *testing.T) {
	n := MustParse("a/b/c")
	tail, ok := n.Tail(n.Root())
	require.True(t, ok)
	assert.Equal(t, "b/c", tail.String())

	_, ok = n.Tail(MustParse("x"))
	assert.False(t, ok)

	_, ok = n.Tail(n)
	assert.False(t, ok)
}

func TestChild(t *testing.T) {
	parent := MustParse("a/b")

	child, err := parent.Child("c")
	require.NoError(t, err)
	assert.Equal(t, "a/b/c", child.String())
	assert.True(t, child.IsChildOf(parent))

	_, err = parent.Child("-bad")
	assert.Error(t, err)
}

func TestEqualAndDepth(t *testing.T) {
	a := MustParse("a/b")
	b := MustParse("a/b")
	c := MustParse("a/b/c")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.Equal(t, 2, a.Depth())
}
