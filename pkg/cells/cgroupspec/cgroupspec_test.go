package cgroupspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeightValidation(t *testing.T) {
	_, err := NewWeight(100)
	assert.NoError(t, err)

	_, err = NewWeight(0)
	assert.Error(t, err)

	_, err = NewWeight(10001)
	assert.Error(t, err)

	w, err := NewWeight(10000)
	assert.NoError(t, err)
	assert.Equal(t, "10000", w.String())
}

func TestLimitValidation(t *testing.T) {
	_, err := NewLimit(-1)
	assert.Error(t, err)

	l, err := NewLimit(0)
	assert.NoError(t, err)
	assert.Equal(t, "0", l.String())
}

func TestCpusValidation(t *testing.T) {
	valid := []string{"", "0", "1,2", "1-3", "1,2-5,6"}
	for _, v := range valid {
		_, err := NewCpus(v)
		assert.NoError(t, err, v)
	}

	invalid := []string{"foo", "1:2", "1..3", "1,foo;5"}
	for _, v := range invalid {
		_, err := NewCpus(v)
		assert.Error(t, err, v)
	}
}

func TestMemsValidation(t *testing.T) {
	valid := []string{"", "0", "1,2", "1-3"}
	for _, v := range valid {
		_, err := NewMems(v)
		assert.NoError(t, err, v)
	}

	invalid := []string{"foo", "1:2"}
	for _, v := range invalid {
		_, err := NewMems(v)
		assert.Error(t, err, v)
	}
}

func TestSpecEnabledControllers(t *testing.T) {
	weight, _ := NewWeight(50)
	spec := Spec{
		CPU: &CPUController{Weight: &weight},
	}
	assert.Equal(t, []string{"cpu"}, spec.EnabledControllers())

	spec.Memory = &MemoryController{}
	assert.ElementsMatch(t, []string{"cpu", "memory"}, spec.EnabledControllers())
}
