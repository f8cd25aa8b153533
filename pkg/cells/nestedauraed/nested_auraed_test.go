//go:build linux

package nestedauraed

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"

	"github.com/aurae-runtime/aurae/pkg/cells/isolation"
)

func TestCloneFlagsAlwaysIncludesCgroup(t *testing.T) {
	flags := cloneFlags(isolation.Controls{})
	assert.NotZero(t, flags&unix.CLONE_NEWCGROUP)
	assert.Zero(t, flags&unix.CLONE_NEWPID)
	assert.Zero(t, flags&unix.CLONE_NEWNET)
}

func TestCloneFlagsProcessIsolation(t *testing.T) {
	flags := cloneFlags(isolation.Controls{IsolateProcess: true})
	assert.NotZero(t, flags&unix.CLONE_NEWNS)
	assert.NotZero(t, flags&unix.CLONE_NEWUTS)
	assert.NotZero(t, flags&unix.CLONE_NEWIPC)
	assert.NotZero(t, flags&unix.CLONE_NEWPID)
	assert.Zero(t, flags&unix.CLONE_NEWNET)
}

func TestCloneFlagsNetworkIsolation(t *testing.T) {
	flags := cloneFlags(isolation.Controls{IsolateNetwork: true})
	assert.NotZero(t, flags&unix.CLONE_NEWNET)
	assert.Zero(t, flags&unix.CLONE_NEWPID)
}

func TestIsChild(t *testing.T) {
	os.Unsetenv(ChildEnv)
	assert.False(t, IsChild())

	t.Setenv(ChildEnv, "a/b")
	assert.True(t, IsChild())
	assert.Equal(t, "a/b", ChildCellName())
}

func TestErrorWrap(t *testing.T) {
	assert.Nil(t, wrap("op", nil))

	err := wrap("clone", os.ErrPermission)
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.Contains(t, err.Error(), "clone")
}
