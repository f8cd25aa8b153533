package executables

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurae-runtime/aurae/pkg/shutdown"
)

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("worker-1"))
	assert.Error(t, ValidateName(""))
	assert.Error(t, ValidateName("a/b"))

	long := make([]byte, maxNameLength+1)
	for i := range long {
		long[i] = 'x'
	}
	assert.Error(t, ValidateName(string(long)))
}

func TestSpecValidate(t *testing.T) {
	assert.NoError(t, Spec{Name: "a", Command: "/bin/true"}.Validate())
	assert.Error(t, Spec{Name: "a", Command: ""}.Validate())
	assert.Error(t, Spec{Name: "", Command: "/bin/true"}.Validate())
}

func TestStartStopLifecycle(t *testing.T) {
	es := New(nil)

	exe, err := es.Start(Spec{Name: "sleeper", Command: "sleep", Args: []string{"30"}})
	require.NoError(t, err)
	assert.Equal(t, Started, exe.State())
	assert.NotZero(t, exe.Pid())

	_, found := es.Get("sleeper")
	assert.True(t, found)

	status, err := es.Stop("sleeper")
	require.NoError(t, err)
	assert.Equal(t, "killed", status.Signal)

	_, found = es.Get("sleeper")
	assert.False(t, found)
}

func TestStartDuplicateName(t *testing.T) {
	es := New(nil)
	_, err := es.Start(Spec{Name: "dup", Command: "sleep", Args: []string{"30"}})
	require.NoError(t, err)
	defer es.Stop("dup")

	_, err = es.Start(Spec{Name: "dup", Command: "sleep", Args: []string{"30"}})
	require.Error(t, err)
	assert.True(t, ErrExists(err))
}

func TestStopNotFound(t *testing.T) {
	es := New(nil)
	_, err := es.Stop("nope")
	require.Error(t, err)
	assert.True(t, ErrNotFound(err))
}

func TestStartFailureLeavesNoEntry(t *testing.T) {
	es := New(nil)
	_, err := es.Start(Spec{Name: "bogus", Command: "/no/such/binary-xyz"})
	require.Error(t, err)

	_, found := es.Get("bogus")
	assert.False(t, found)
}

func TestBroadcastStop(t *testing.T) {
	es := New(nil)
	for _, name := range []Name{"a", "b", "c"} {
		_, err := es.Start(Spec{Name: name, Command: "sleep", Args: []string{"30"}})
		require.NoError(t, err)
	}

	es.BroadcastStop()

	assert.Empty(t, es.List())
}

func TestShutdownBroadcastKillsRunningExecutable(t *testing.T) {
	bcast := shutdown.NewBroadcaster()
	es := New(bcast)

	exe, err := es.Start(Spec{Name: "sleeper", Command: "sleep", Args: []string{"30"}})
	require.NoError(t, err)

	bcast.Broadcast()
	bcast.Await()

	assert.Equal(t, Stopped, exe.State())
	assert.Equal(t, "killed", exe.ExitStatus().Signal)
}

func TestHubPublishSubscribe(t *testing.T) {
	hub := NewHub()
	ch := hub.Subscribe("x::stdout")
	hub.Publish("x::stdout", "hello")

	select {
	case line := <-ch:
		assert.Equal(t, "hello", line)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for published line")
	}

	hub.Close("x::stdout")
	_, open := <-ch
	assert.False(t, open)
}
